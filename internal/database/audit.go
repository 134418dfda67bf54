package database

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jwalitptl/clinic-data/internal/model"
)

// stampAudit applies the audit rules to every pending entry:
// added rows get CreatedAt and Status = true, modified rows get UpdatedAt
// (and DeleteAt when Status was switched off), deleted rows get DeleteAt and
// Status = false before the physical delete.
func stampAudit(entries []*entry, now time.Time) {
	for _, en := range entries {
		a := en.entity.Audit()
		switch en.state {
		case Added:
			a.CreatedAt = now
			a.Status = true
		case Modified:
			a.UpdatedAt = timePtr(now)
			if en.statusModified && !a.Status {
				a.DeleteAt = timePtr(now)
			}
		case Deleted:
			a.DeleteAt = timePtr(now)
			a.Status = false
		}
	}
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func auditAction(en *entry) string {
	switch en.state {
	case Added:
		return model.AuditActionCreate
	case Deleted:
		return model.AuditActionDelete
	}
	if en.statusModified && !en.entity.Audit().Status {
		return model.AuditActionSoftDelete
	}
	return model.AuditActionUpdate
}

// newAuditLog describes one written entry. Changes holds the written columns
// as JSON; deletes only record the key.
func newAuditLog(tx *gorm.DB, en *entry, now time.Time) (model.AuditLog, error) {
	stmt := &gorm.Statement{DB: tx}
	if err := stmt.Parse(en.entity); err != nil {
		return model.AuditLog{}, fmt.Errorf("failed to parse %T: %w", en.entity, err)
	}
	rv := reflect.Indirect(reflect.ValueOf(en.entity))
	ctx := context.Background()

	keys := make([]string, 0, len(stmt.Schema.PrimaryFields))
	for _, f := range stmt.Schema.PrimaryFields {
		v, _ := f.ValueOf(ctx, rv)
		keys = append(keys, fmt.Sprint(v))
	}

	var changes string
	if en.state != Deleted {
		written := make(map[string]interface{})
		for _, f := range stmt.Schema.Fields {
			if f.DBName == "" || f.PrimaryKey || (en.changed != nil && !slices.Contains(en.changed, f.DBName)) {
				continue
			}
			if f.DBName == "password" {
				continue
			}
			v, _ := f.ValueOf(ctx, rv)
			written[f.DBName] = v
		}
		raw, err := json.Marshal(written)
		if err != nil {
			return model.AuditLog{}, fmt.Errorf("failed to encode audit changes: %w", err)
		}
		changes = string(raw)
	}

	return model.AuditLog{
		ID:         uuid.New(),
		EntityType: stmt.Schema.Table,
		EntityID:   strings.Join(keys, ":"),
		Action:     auditAction(en),
		Changes:    changes,
		CreatedAt:  now,
	}, nil
}
