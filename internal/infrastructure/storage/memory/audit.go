package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"rollstock/internal/core/id"
	"rollstock/internal/domain"
)

// AuditEntry is one recorded operation.
type AuditEntry struct {
	EntityType string
	EntityID   id.ID
	Action     domain.AuditAction
	Payload    json.RawMessage
	At         time.Time
}

// AuditLog is an in-memory domain.AuditLogger. Mostly useful in tests to
// assert which operations were recorded.
type AuditLog struct {
	base
	entries []AuditEntry
}

// NewAuditLog creates an empty audit log.
func NewAuditLog() *AuditLog {
	return &AuditLog{}
}

var _ domain.AuditLogger = (*AuditLog)(nil)

func (a *AuditLog) LogOperation(ctx context.Context, entityType string, entityID id.ID, action domain.AuditAction, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, AuditEntry{
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		Payload:    data,
		At:         time.Now().UTC(),
	})
	return nil
}

// Entries returns a snapshot of recorded entries, oldest first.
func (a *AuditLog) Entries() []AuditEntry {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]AuditEntry(nil), a.entries...)
}
