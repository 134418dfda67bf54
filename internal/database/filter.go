package database

import (
	"reflect"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"

	"github.com/jwalitptl/clinic-data/internal/model"
)

const (
	statusFilterName = "clinic:status_filter"
	statusField      = "Status"
)

// RegisterStatusFilter makes every query over an auditable model return only
// rows whose status is true. Unfiltered lifts it for a single statement.
func RegisterStatusFilter(db *gorm.DB) error {
	if err := db.Callback().Query().Before("gorm:query").Register(statusFilterName, statusFilter); err != nil {
		return err
	}
	return db.Callback().Row().Before("gorm:row").Register(statusFilterName, statusFilter)
}

func statusFilter(db *gorm.DB) {
	if db.Error != nil || db.Statement.Unscoped || db.Statement.SQL.Len() > 0 {
		return
	}
	field := statusColumn(db.Statement.Schema)
	if field == nil {
		return
	}
	db.Statement.AddClause(activeClause(field))
}

// statusColumn returns the Status field of an auditable schema, or nil
func statusColumn(s *schema.Schema) *schema.Field {
	if s == nil || s.ModelType == nil {
		return nil
	}
	if _, ok := reflect.New(s.ModelType).Interface().(model.Auditable); !ok {
		return nil
	}
	field := s.LookUpField(statusField)
	if field == nil || field.DBName == "" {
		return nil
	}
	return field
}

func activeClause(field *schema.Field) clause.Where {
	return clause.Where{Exprs: []clause.Expression{
		clause.Eq{Column: clause.Column{Table: clause.CurrentTable, Name: field.DBName}, Value: true},
	}}
}

// Unfiltered returns a handle whose queries include inactive rows
func Unfiltered(db *gorm.DB) *gorm.DB {
	return db.Unscoped()
}

// ActiveSet queries T with an explicit status = true condition. Types without
// a Status column get the plain unfiltered query.
func ActiveSet[T any](db *gorm.DB) *gorm.DB {
	var zero T
	q := Unfiltered(db).Model(&zero)

	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(&zero); err != nil {
		return q
	}
	field := statusColumn(stmt.Schema)
	if field == nil {
		return q
	}
	return q.Clauses(activeClause(field))
}
