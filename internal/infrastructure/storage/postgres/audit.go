package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	"rollstock/internal/core/id"
	"rollstock/internal/domain"
)

// compressionAlgo specifies how an audit payload is stored.
type compressionAlgo string

const (
	compressionNone compressionAlgo = "none"
	compressionZstd compressionAlgo = "zstd"
)

// AuditStore implements domain.AuditLogger on the sys_audit_log table.
// Payloads over the threshold are zstd-compressed; document payloads
// with many lines get large.
type AuditStore struct {
	txm               *TxManager
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int
}

// NewAuditStore creates a new audit store.
func NewAuditStore(txm *TxManager) (*AuditStore, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &AuditStore{
		txm:               txm,
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: 10 * 1024,
	}, nil
}

var _ domain.AuditLogger = (*AuditStore)(nil)

// LogOperation implements domain.AuditLogger.
func (s *AuditStore) LogOperation(ctx context.Context, entityType string, entityID id.ID, action domain.AuditAction, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	algo := compressionNone
	var compressed []byte
	if len(data) > s.compressThreshold {
		compressed = s.encoder.EncodeAll(data, nil)
		data = nil
		algo = compressionZstd
	}

	sql := `
		INSERT INTO sys_audit_log (
			id, entity_type, entity_id, action,
			payload, payload_compressed, compression_algo, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = s.txm.GetQuerier(ctx).Exec(ctx, sql,
		id.New(), entityType, entityID, action,
		data, compressed, algo, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// Payload returns the decoded payload for an audit entry.
func (s *AuditStore) Payload(ctx context.Context, entryID id.ID) (json.RawMessage, error) {
	sql := `
		SELECT payload, payload_compressed, compression_algo
		FROM sys_audit_log WHERE id = $1
	`
	var (
		payload    json.RawMessage
		compressed []byte
		algo       compressionAlgo
	)
	err := s.txm.GetQuerier(ctx).QueryRow(ctx, sql, entryID).Scan(&payload, &compressed, &algo)
	if err != nil {
		return nil, fmt.Errorf("select audit entry: %w", err)
	}

	if algo == compressionZstd {
		decoded, err := s.decoder.DecodeAll(compressed, nil)
		if err != nil {
			return nil, fmt.Errorf("decompress audit payload: %w", err)
		}
		return decoded, nil
	}
	if payload == nil {
		return nil, errors.New("audit entry has no payload")
	}
	return payload, nil
}
