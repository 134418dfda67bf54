package model

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog is an append-only record of every row written by the unit of work
type AuditLog struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	EntityType string    `gorm:"size:64;not null;index" json:"entity_type"`
	EntityID   string    `gorm:"size:128;not null;index" json:"entity_id"`
	Action     string    `gorm:"size:16;not null" json:"action"`
	Changes    string    `gorm:"type:text" json:"changes"`
	CreatedAt  time.Time `gorm:"not null;index" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

const (
	AuditActionCreate     = "create"
	AuditActionUpdate     = "update"
	AuditActionSoftDelete = "soft_delete"
	AuditActionDelete     = "delete"
)

// Models lists every table in dependency order
func Models() []interface{} {
	return []interface{}{
		&Country{},
		&Department{},
		&City{},
		&Neighborhood{},
		&Address{},
		&Person{},
		&Provider{},
		&User{},
		&Role{},
		&Permission{},
		&Form{},
		&Module{},
		&RolUser{},
		&FormModule{},
		&RolFormPermission{},
		&Appointment{},
		&AuditLog{},
	}
}

type AuditFilters struct {
	EntityType string
	Action     string
	From       time.Time
	To         time.Time
}
