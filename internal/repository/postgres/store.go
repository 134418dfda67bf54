package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jwalitptl/clinic-data/internal/database"
	"github.com/jwalitptl/clinic-data/internal/model"
	apperrors "github.com/jwalitptl/clinic-data/pkg/errors"
)

// entity is satisfied by pointers to models with a surrogate key
type entity[T any] interface {
	*T
	model.Auditable
}

// Store implements the common reads and writes for one model. Every write
// goes through the session and is saved immediately; wrap calls in
// Session.WithTx to make several of them atomic.
type Store[T any, P entity[T]] struct {
	session  *database.Session
	resource string
}

func NewStore[T any, P entity[T]](s *database.Session, resource string) *Store[T, P] {
	return &Store[T, P]{session: s, resource: resource}
}

// Session returns the unit of work the store writes through
func (st *Store[T, P]) Session() *database.Session {
	return st.session
}

func (st *Store[T, P]) Get(ctx context.Context, id uuid.UUID) (P, error) {
	return st.First(st.session.DB(ctx).Where(idColumn, id))
}

// GetUnfiltered loads the row even when it is inactive
func (st *Store[T, P]) GetUnfiltered(ctx context.Context, id uuid.UUID) (P, error) {
	return st.First(st.session.Unfiltered(ctx).Where(idColumn, id))
}

// First returns the first row of q
func (st *Store[T, P]) First(q *gorm.DB) (P, error) {
	var row T
	if err := q.First(&row).Error; err != nil {
		var zero P
		return zero, fmt.Errorf("failed to get %s: %w", st.resource, apperrors.FromDB(st.resource, err))
	}
	return P(&row), nil
}

// Find returns every row of q
func (st *Store[T, P]) Find(q *gorm.DB) ([]P, error) {
	rows, err := database.ListSafe[P](q)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", st.resource, err)
	}
	return rows, nil
}

func (st *Store[T, P]) List(ctx context.Context) ([]P, error) {
	return st.Find(st.session.DB(ctx))
}

// ListAll includes inactive rows
func (st *Store[T, P]) ListAll(ctx context.Context) ([]P, error) {
	return st.Find(st.session.Unfiltered(ctx))
}

func (st *Store[T, P]) ListPaged(ctx context.Context, q *gorm.DB, page model.Pagination) (model.Page[P], error) {
	if q == nil {
		q = st.session.DB(ctx)
	}
	p, err := database.Paginate[P](q.Model(new(T)), st.session.Page(page))
	if err != nil {
		return model.Page[P]{}, fmt.Errorf("failed to list %s: %w", st.resource, err)
	}
	return p, nil
}

func (st *Store[T, P]) Create(ctx context.Context, e P) error {
	st.session.Add(e)
	return st.save(ctx, "create")
}

func (st *Store[T, P]) Update(ctx context.Context, e P) error {
	st.session.Update(e)
	return st.save(ctx, "update")
}

// SoftDelete switches an active row off
func (st *Store[T, P]) SoftDelete(ctx context.Context, id uuid.UUID) error {
	e, err := st.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := st.session.Attach(e); err != nil {
		return err
	}
	st.session.SoftDelete(e)
	return st.save(ctx, "delete")
}

// Restore switches an inactive row back on
func (st *Store[T, P]) Restore(ctx context.Context, id uuid.UUID) error {
	e, err := st.GetUnfiltered(ctx, id)
	if err != nil {
		return err
	}
	if err := st.session.Attach(e); err != nil {
		return err
	}
	a := e.Audit()
	a.Status = true
	a.DeleteAt = nil
	return st.save(ctx, "restore")
}

// Delete removes the row physically, active or not
func (st *Store[T, P]) Delete(ctx context.Context, id uuid.UUID) error {
	e, err := st.GetUnfiltered(ctx, id)
	if err != nil {
		return err
	}
	st.session.Remove(e)
	return st.save(ctx, "delete")
}

func (st *Store[T, P]) save(ctx context.Context, op string) error {
	if _, err := st.session.SaveChanges(ctx); err != nil {
		st.session.Clear()
		return fmt.Errorf("failed to %s %s: %w", op, st.resource, apperrors.FromDB(st.resource, err))
	}
	return nil
}

const idColumn = "id = ?"
