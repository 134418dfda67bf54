package database

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"sort"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jwalitptl/clinic-data/internal/model"
	apperrors "github.com/jwalitptl/clinic-data/pkg/errors"
)

var (
	ErrNoTransaction     = errors.New("no transaction in progress")
	ErrTransactionActive = errors.New("transaction already in progress")
	ErrNotTracked        = errors.New("entity is not tracked by this session")
)

// EntityState is the pending write recorded for a tracked entity
type EntityState int

const (
	Unchanged EntityState = iota
	Added
	Modified
	Deleted
)

func (s EntityState) String() string {
	switch s {
	case Added:
		return "added"
	case Modified:
		return "modified"
	case Deleted:
		return "deleted"
	default:
		return "unchanged"
	}
}

type entry struct {
	entity model.Auditable
	state  EntityState
	// snapshot holds column values captured by Attach; nil for untracked updates
	snapshot       map[string]interface{}
	originalStatus bool
	statusModified bool
	changed        []string
}

// Session is a unit of work. Entities registered with Add, Attach, Update
// or Remove are written together by SaveChanges. A session is not safe for
// concurrent use.
type Session struct {
	db      *DB
	tx      *gorm.DB
	entries []*entry
	index   map[model.Auditable]*entry
}

func newSession(db *DB) *Session {
	return &Session{
		db:    db,
		index: make(map[model.Auditable]*entry),
	}
}

func (s *Session) conn() *gorm.DB {
	if s.tx != nil {
		return s.tx
	}
	return s.db.gorm
}

// DB returns a filtered gorm handle bound to ctx and to the current
// transaction, if any.
func (s *Session) DB(ctx context.Context) *gorm.DB {
	return s.conn().WithContext(ctx)
}

// Unfiltered is DB without the status filter
func (s *Session) Unfiltered(ctx context.Context) *gorm.DB {
	return Unfiltered(s.DB(ctx))
}

// Dialect is the underlying gorm dialector name
func (s *Session) Dialect() string {
	return s.db.Dialect()
}

// Now is the clock used for audit stamps
func (s *Session) Now() time.Time {
	return s.db.opts.Now()
}

// InTransaction reports whether Begin has been called without Commit/Rollback
func (s *Session) InTransaction() bool {
	return s.tx != nil
}

// Begin opens an ambient transaction used by every read, save and raw query
// issued through the session until Commit or Rollback.
func (s *Session) Begin(ctx context.Context) error {
	if s.tx != nil {
		return ErrTransactionActive
	}
	tx := s.db.gorm.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}
	s.tx = tx
	return nil
}

func (s *Session) Commit() error {
	if s.tx == nil {
		return ErrNoTransaction
	}
	err := s.tx.Commit().Error
	s.tx = nil
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Session) Rollback() error {
	if s.tx == nil {
		return ErrNoTransaction
	}
	err := s.tx.Rollback().Error
	s.tx = nil
	if err != nil {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	return nil
}

// WithTx runs fn inside an ambient transaction, committing on success and
// rolling back on error or panic. Nested calls join the outer transaction.
// A failed rollback is joined onto fn's error.
func (s *Session) WithTx(ctx context.Context, fn func(*Session) error) (err error) {
	if s.tx != nil {
		return fn(s)
	}
	if err := s.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			if rbErr := s.Rollback(); rbErr != nil {
				s.db.log.Error(rbErr, "rollback after panic failed")
			}
			panic(p)
		}
	}()

	if err := fn(s); err != nil {
		if rbErr := s.Rollback(); rbErr != nil {
			return errors.Join(err, rbErr)
		}
		return err
	}

	return s.Commit()
}

// Add schedules e for insertion
func (s *Session) Add(e model.Auditable) {
	if en, ok := s.index[e]; ok {
		en.state = Added
		return
	}
	s.track(&entry{entity: e, state: Added})
}

// Attach starts tracking an entity loaded from the database. Column values
// are captured so SaveChanges can detect later modifications.
func (s *Session) Attach(e model.Auditable) error {
	snap, err := s.snapshot(e)
	if err != nil {
		return err
	}
	if en, ok := s.index[e]; ok {
		en.snapshot = snap
		en.originalStatus = e.Audit().Status
		en.state = Unchanged
		return nil
	}
	s.track(&entry{entity: e, state: Unchanged, snapshot: snap, originalStatus: e.Audit().Status})
	return nil
}

// Update schedules e for an update. Untracked entities are written in full
// and their Status counts as modified.
func (s *Session) Update(e model.Auditable) {
	if en, ok := s.index[e]; ok {
		if en.state == Unchanged {
			en.state = Modified
		}
		return
	}
	s.track(&entry{entity: e, state: Modified, statusModified: true})
}

// Remove schedules e for a physical delete. Removing an entity that was only
// added drops it from the session.
func (s *Session) Remove(e model.Auditable) {
	if en, ok := s.index[e]; ok {
		if en.state == Added {
			s.forget(en)
			return
		}
		en.state = Deleted
		return
	}
	s.track(&entry{entity: e, state: Deleted})
}

// SoftDelete clears Status and schedules the update; SaveChanges stamps DeleteAt
func (s *Session) SoftDelete(e model.Auditable) {
	e.Audit().Status = false
	s.Update(e)
}

// State returns the pending state of e
func (s *Session) State(e model.Auditable) (EntityState, error) {
	en, ok := s.index[e]
	if !ok {
		return Unchanged, ErrNotTracked
	}
	return en.state, nil
}

// Pending is the number of tracked entries that SaveChanges would write
func (s *Session) Pending() int {
	if err := s.detectChanges(); err != nil {
		return 0
	}
	n := 0
	for _, en := range s.entries {
		if en.state != Unchanged {
			n++
		}
	}
	return n
}

// Clear forgets every tracked entity
func (s *Session) Clear() {
	s.entries = nil
	s.index = make(map[model.Auditable]*entry)
}

func (s *Session) track(en *entry) {
	s.entries = append(s.entries, en)
	s.index[en.entity] = en
}

func (s *Session) forget(en *entry) {
	delete(s.index, en.entity)
	for i, other := range s.entries {
		if other == en {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return
		}
	}
}

// SaveChanges stamps audit fields, writes every pending entity and its audit
// log rows in one transaction and clears the session. It returns the number
// of entities written.
func (s *Session) SaveChanges(ctx context.Context) (int, error) {
	if err := s.detectChanges(); err != nil {
		return 0, err
	}

	pending := s.ordered()
	if len(pending) == 0 {
		return 0, nil
	}

	stampAudit(pending, s.db.opts.Now())

	write := func(tx *gorm.DB) error {
		logs := make([]model.AuditLog, 0, len(pending))
		for _, en := range pending {
			if err := s.write(tx, en); err != nil {
				return err
			}
			if s.db.opts.AuditLog {
				log, err := newAuditLog(tx, en, s.db.opts.Now())
				if err != nil {
					return err
				}
				logs = append(logs, log)
			}
		}
		if len(logs) == 0 {
			return nil
		}
		if err := tx.Create(&logs).Error; err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		if s.db.opts.Metrics != nil {
			s.db.opts.Metrics.AuditLogsWritten.Add(float64(len(logs)))
		}
		return nil
	}

	var err error
	if s.tx != nil {
		err = write(s.tx.WithContext(ctx))
	} else {
		err = s.db.gorm.WithContext(ctx).Transaction(write)
	}
	if err != nil {
		return 0, err
	}

	s.db.log.Debug("saved changes", "entities", len(pending))
	s.Clear()
	return len(pending), nil
}

func (s *Session) write(tx *gorm.DB, en *entry) error {
	resource := entityName(en.entity)

	switch en.state {
	case Added:
		if err := tx.Omit(clause.Associations).Create(en.entity).Error; err != nil {
			return fmt.Errorf("failed to create %s: %w", resource, apperrors.FromDB(resource, err))
		}
	case Modified:
		cols := []string{"*"}
		if en.changed != nil {
			cols = en.changed
		}
		res := tx.Model(en.entity).Select(cols).Omit(clause.Associations).Updates(en.entity)
		if res.Error != nil {
			return fmt.Errorf("failed to update %s: %w", resource, apperrors.FromDB(resource, res.Error))
		}
		if res.RowsAffected == 0 {
			return apperrors.NewNotFound(resource, gorm.ErrRecordNotFound)
		}
	case Deleted:
		res := tx.Delete(en.entity)
		if res.Error != nil {
			return fmt.Errorf("failed to delete %s: %w", resource, res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.NewNotFound(resource, gorm.ErrRecordNotFound)
		}
	}
	return nil
}

// detectChanges promotes attached entities whose columns differ from their
// snapshot to Modified and records which columns changed.
func (s *Session) detectChanges() error {
	for _, en := range s.entries {
		if en.snapshot == nil || (en.state != Unchanged && en.state != Modified) {
			continue
		}
		current, err := s.snapshot(en.entity)
		if err != nil {
			return err
		}

		var changed []string
		for name, before := range en.snapshot {
			if !reflect.DeepEqual(before, current[name]) {
				changed = append(changed, name)
			}
		}
		sort.Strings(changed)

		en.statusModified = en.originalStatus != en.entity.Audit().Status
		if len(changed) == 0 {
			if en.state == Modified {
				// explicit Update with nothing changed still bumps UpdatedAt
				en.changed = []string{"updated_at"}
			}
			continue
		}
		en.state = Modified
		en.changed = appendMissing(changed, "updated_at", "delete_at")
	}
	return nil
}

func appendMissing(cols []string, extra ...string) []string {
	for _, x := range extra {
		if !slices.Contains(cols, x) {
			cols = append(cols, x)
		}
	}
	return cols
}

// snapshot copies the column values of e keyed by column name
func (s *Session) snapshot(e model.Auditable) (map[string]interface{}, error) {
	stmt := &gorm.Statement{DB: s.db.gorm}
	if err := stmt.Parse(e); err != nil {
		return nil, fmt.Errorf("failed to parse %T: %w", e, err)
	}

	rv := reflect.Indirect(reflect.ValueOf(e))
	snap := make(map[string]interface{}, len(stmt.Schema.Fields))
	for _, f := range stmt.Schema.Fields {
		if f.DBName == "" || f.PrimaryKey {
			continue
		}
		v, _ := f.ValueOf(context.Background(), rv)
		snap[f.DBName] = derefCopy(v)
	}
	return snap, nil
}

// derefCopy stores pointer values by value so in-place edits are detected
func derefCopy(v interface{}) interface{} {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr {
		return v
	}
	if rv.IsNil() {
		return nil
	}
	return rv.Elem().Interface()
}

// ordered returns the pending entries: inserts and updates parents first,
// deletes children first.
func (s *Session) ordered() []*entry {
	var writes, deletes []*entry
	for _, en := range s.entries {
		switch en.state {
		case Added, Modified:
			writes = append(writes, en)
		case Deleted:
			deletes = append(deletes, en)
		}
	}
	sort.SliceStable(writes, func(i, j int) bool {
		return modelRank(writes[i].entity) < modelRank(writes[j].entity)
	})
	sort.SliceStable(deletes, func(i, j int) bool {
		return modelRank(deletes[i].entity) > modelRank(deletes[j].entity)
	})
	return append(writes, deletes...)
}

var modelRanks = func() map[reflect.Type]int {
	ranks := make(map[reflect.Type]int)
	for i, m := range model.Models() {
		ranks[reflect.TypeOf(m).Elem()] = i
	}
	return ranks
}()

func modelRank(e model.Auditable) int {
	t := reflect.TypeOf(e)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if r, ok := modelRanks[t]; ok {
		return r
	}
	return len(modelRanks)
}

func entityName(e interface{}) string {
	t := reflect.TypeOf(e)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
