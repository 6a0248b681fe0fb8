package service

import (
	"context"

	"github.com/placementcell/recruit-portal/internal/core/access"
	"github.com/placementcell/recruit-portal/internal/core/domain"
	"github.com/placementcell/recruit-portal/internal/core/ports"
)

const (
	DefaultAuditPageSize = 50
	MaxAuditPageSize     = 200
)

// AuditLogService exposes the admin log to administrators.
type AuditLogService struct {
	reader ports.AuditReader
}

func NewAuditLogService(reader ports.AuditReader) *AuditLogService {
	return &AuditLogService{reader: reader}
}

// Recent returns up to limit events, newest first. limit is clamped to
// [1, MaxAuditPageSize] and zero selects DefaultAuditPageSize.
func (s *AuditLogService) Recent(ctx context.Context, caller *domain.Identity, limit int) ([]domain.AuditEvent, error) {
	if err := access.Authorize(caller, domain.RoleAdmin); err != nil {
		return nil, err
	}
	switch {
	case limit <= 0:
		limit = DefaultAuditPageSize
	case limit > MaxAuditPageSize:
		limit = MaxAuditPageSize
	}
	events, err := s.reader.Recent(ctx, limit)
	if err != nil {
		return nil, domain.Storage("Could not load the admin log.", err)
	}
	if events == nil {
		events = []domain.AuditEvent{}
	}
	return events, nil
}
