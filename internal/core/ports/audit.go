package ports

import (
	"context"

	"github.com/placementcell/recruit-portal/internal/core/domain"
)

// AuditSink accepts audit events without blocking the caller. Delivery is
// best effort.
type AuditSink interface {
	Log(kind domain.AuditKind, message, email, ip string)
}

// AuditWriter is a downstream destination for audit events.
type AuditWriter interface {
	Write(ctx context.Context, event domain.AuditEvent) error
}

// AuditReader lists the most recent audit events, newest first.
type AuditReader interface {
	Recent(ctx context.Context, limit int) ([]domain.AuditEvent, error)
}

// AuditLogService serves the admin log to administrators.
type AuditLogService interface {
	Recent(ctx context.Context, caller *domain.Identity, limit int) ([]domain.AuditEvent, error)
}
