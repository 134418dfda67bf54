package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/jwalitptl/clinic-data/internal/model"
)

// Paged is a gorm scope for one normalized page
func Paged(page, size int) func(*gorm.DB) *gorm.DB {
	p := model.Pagination{Page: page, PageSize: size}.Normalize()
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(p.Offset()).Limit(p.PageSize)
	}
}

// Page normalizes p and caps its size at the configured maximum
func (s *Session) Page(p model.Pagination) model.Pagination {
	p = p.Normalize()
	if limit := s.db.opts.MaxPageSize; limit > 0 && p.PageSize > limit {
		p.PageSize = limit
	}
	return p
}

// ListSafe runs q and never returns a nil slice. A nil query yields no rows.
func ListSafe[T any](q *gorm.DB) ([]T, error) {
	if q == nil {
		return []T{}, nil
	}
	var out []T
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// Paginate counts q and loads the requested page of it
func Paginate[T any](q *gorm.DB, p model.Pagination) (model.Page[T], error) {
	p = p.Normalize()

	var total int64
	cq := q.Session(&gorm.Session{})
	if cq.Statement.Model == nil {
		var zero T
		cq = cq.Model(&zero)
	}
	if err := cq.Count(&total).Error; err != nil {
		return model.Page[T]{}, fmt.Errorf("failed to count: %w", err)
	}

	items, err := ListSafe[T](q.Scopes(Paged(p.Page, p.PageSize)))
	if err != nil {
		return model.Page[T]{}, err
	}

	return model.Page[T]{
		Items:    items,
		Page:     p.Page,
		PageSize: p.PageSize,
		Total:    total,
	}, nil
}
