package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-data/internal/database"
	"github.com/jwalitptl/clinic-data/internal/model"
	"github.com/jwalitptl/clinic-data/internal/repository"
	apperrors "github.com/jwalitptl/clinic-data/pkg/errors"
	"github.com/jwalitptl/clinic-data/pkg/security"
)

var _ repository.UserRepository = (*UserRepository)(nil)

type UserRepository struct {
	*Store[model.User, *model.User]
	hasher security.PasswordHasher
}

func NewUserRepository(s *database.Session, hasher security.PasswordHasher) *UserRepository {
	return &UserRepository{
		Store:  NewStore[model.User](s, "user"),
		hasher: hasher,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create hashes the password unless it already is a hash and rejects
// duplicate emails among active users.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	user.Email = normalizeEmail(user.Email)

	if _, err := r.GetByEmail(ctx, user.Email); err == nil {
		return apperrors.NewConflict("user", fmt.Errorf("email %s is taken", user.Email))
	} else if !apperrors.IsNotFound(err) {
		return err
	}

	if err := r.hashPassword(user); err != nil {
		return err
	}
	return r.Store.Create(ctx, user)
}

func (r *UserRepository) Update(ctx context.Context, user *model.User) error {
	user.Email = normalizeEmail(user.Email)
	if err := r.hashPassword(user); err != nil {
		return err
	}
	return r.Store.Update(ctx, user)
}

func (r *UserRepository) hashPassword(user *model.User) error {
	if r.hasher.IsHash(user.Password) {
		return nil
	}
	hash, err := r.hasher.Hash(user.Password)
	if err != nil {
		return apperrors.NewBadRequest("invalid password", err)
	}
	user.Password = hash
	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.First(r.session.DB(ctx).Where("email = ?", normalizeEmail(email)))
}

func (r *UserRepository) ChangePassword(ctx context.Context, id uuid.UUID, password string) error {
	user, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := r.session.Attach(user); err != nil {
		return err
	}
	hash, err := r.hasher.Hash(password)
	if err != nil {
		r.session.Clear()
		return apperrors.NewBadRequest("invalid password", err)
	}
	user.Password = hash
	return r.save(ctx, "update")
}

// Authenticate returns the active user whose password matches
func (r *UserRepository) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	user, err := r.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if err := r.hasher.Compare(user.Password, password); err != nil {
		return nil, apperrors.Unauthorized("invalid credentials", err)
	}
	return user, nil
}

func (r *UserRepository) TouchLogin(ctx context.Context, id uuid.UUID) error {
	user, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := r.session.Attach(user); err != nil {
		return err
	}
	now := r.session.Now()
	user.LastLoginDate = &now
	return r.save(ctx, "update")
}

func (r *UserRepository) List(ctx context.Context, page model.Pagination) (model.Page[*model.User], error) {
	return r.ListPaged(ctx, r.session.DB(ctx).Order("email"), page)
}

// AssignedRoles lists the role grants handed out by assignerID
func (r *UserRepository) AssignedRoles(ctx context.Context, assignerID uuid.UUID) ([]*model.RolUser, error) {
	return database.ListSafe[*model.RolUser](r.session.DB(ctx).Where("assigned_by_user_id = ?", assignerID))
}
