package domain

import (
	"context"

	"rollstock/internal/core/id"
)

// AuditAction represents the type of audited operation.
type AuditAction string

const (
	AuditActionCreate  AuditAction = "create"
	AuditActionApply   AuditAction = "apply"
	AuditActionReverse AuditAction = "reverse"
	AuditActionUpdate  AuditAction = "update"
	AuditActionDelete  AuditAction = "delete"
)

// AuditLogger records document applications for traceability. Logging is
// best-effort: services report failures in the log but never fail the
// ledger operation over it.
type AuditLogger interface {
	LogOperation(ctx context.Context, entityType string, entityID id.ID, action AuditAction, payload any) error
}

// NopAudit discards audit entries. Used where no audit store is wired.
type NopAudit struct{}

// LogOperation implements AuditLogger.
func (NopAudit) LogOperation(ctx context.Context, entityType string, entityID id.ID, action AuditAction, payload any) error {
	return nil
}
