package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Auditable is implemented by every persisted entity. The unit of work stamps
// these fields on save and the status filter reads Status.
type Auditable interface {
	Audit() *AuditFields
}

// AuditFields contains the audit columns shared by all tables
type AuditFields struct {
	CreatedAt time.Time  `gorm:"not null;autoCreateTime:false" json:"created_at"`
	UpdatedAt *time.Time `gorm:"autoUpdateTime:false" json:"updated_at,omitempty"`
	DeleteAt  *time.Time `json:"delete_at,omitempty"`
	Status    bool       `gorm:"not null;default:true" json:"status"`
}

func (a *AuditFields) Audit() *AuditFields {
	return a
}

// Active reports whether the row is visible to default reads
func (a *AuditFields) Active() bool {
	return a.Status
}

// Base contains common fields for all entities with a surrogate key
type Base struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	AuditFields
}

// BeforeCreate assigns a key to new rows
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Pagination represents common pagination parameters
type Pagination struct {
	Page     int `json:"page" form:"page"`
	PageSize int `json:"page_size" form:"page_size"`
}

// DefaultPageSize is used whenever a caller passes a non-positive page size
const DefaultPageSize = 10

// Normalize clamps the page to 1 and the size to DefaultPageSize when either is not positive
func (p Pagination) Normalize() Pagination {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	return p
}

// Offset returns the number of rows to skip for the normalized page
func (p Pagination) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.PageSize
}

// Page is a slice of results plus the paging that produced it
type Page[T any] struct {
	Items    []T   `json:"items"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
}
