// Package dto converts between persisted entities and the shapes handed to
// callers. Conversions copy fields one for one; audit timestamps are
// exposed read-only and never copied back.
package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-data/internal/model"
)

// BaseDTO carries the key and the visibility flag of an entity
type BaseDTO struct {
	ID     uuid.UUID `json:"id"`
	Status bool      `json:"status"`
}

// AuditDTO exposes the audit timestamps of an entity
type AuditDTO struct {
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
	DeleteAt  *time.Time `json:"delete_at,omitempty"`
}

func baseToDTO(b model.Base) BaseDTO {
	return BaseDTO{ID: b.ID, Status: b.Status}
}

func baseFromDTO(d BaseDTO) model.Base {
	b := model.Base{ID: d.ID}
	b.Status = d.Status
	return b
}

func auditToDTO(a model.AuditFields) AuditDTO {
	return AuditDTO{CreatedAt: a.CreatedAt, UpdatedAt: a.UpdatedAt, DeleteAt: a.DeleteAt}
}

// mapSlice converts every element of in with fn
func mapSlice[S, D any](in []S, fn func(S) D) []D {
	out := make([]D, 0, len(in))
	for _, v := range in {
		out = append(out, fn(v))
	}
	return out
}
