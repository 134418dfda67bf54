package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jwalitptl/clinic-data/internal/database"
	"github.com/jwalitptl/clinic-data/internal/model"
	"github.com/jwalitptl/clinic-data/internal/repository"
)

var _ repository.AuditRepository = (*AuditRepository)(nil)

// AuditRepository reads the audit trail written by SaveChanges
type AuditRepository struct {
	session *database.Session
}

func NewAuditRepository(s *database.Session) *AuditRepository {
	return &AuditRepository{session: s}
}

func (r *AuditRepository) ListForEntity(ctx context.Context, entityType, entityID string) ([]*model.AuditLog, error) {
	return database.ListSafe[*model.AuditLog](r.session.DB(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at"))
}

func (r *AuditRepository) List(ctx context.Context, filters *model.AuditFilters, page model.Pagination) (model.Page[*model.AuditLog], error) {
	q := r.session.DB(ctx).Model(&model.AuditLog{})
	if filters != nil {
		if filters.EntityType != "" {
			q = q.Where("entity_type = ?", filters.EntityType)
		}
		if filters.Action != "" {
			q = q.Where("action = ?", filters.Action)
		}
		if !filters.From.IsZero() {
			q = q.Where("created_at >= ?", filters.From)
		}
		if !filters.To.IsZero() {
			q = q.Where("created_at < ?", filters.To)
		}
	}
	p, err := database.Paginate[*model.AuditLog](q.Order("created_at DESC"), r.session.Page(page))
	if err != nil {
		return model.Page[*model.AuditLog]{}, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return p, nil
}

// DeleteBefore purges audit rows older than cutoff
func (r *AuditRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	n, err := database.Exec(ctx, r.session, `DELETE FROM audit_logs WHERE created_at < :cutoff`,
		map[string]interface{}{"cutoff": cutoff})
	if err != nil {
		return 0, fmt.Errorf("failed to delete audit logs: %w", err)
	}
	return n, nil
}
