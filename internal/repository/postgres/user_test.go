package postgres_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-data/internal/database/dbtest"
	"github.com/jwalitptl/clinic-data/internal/model"
	apperrors "github.com/jwalitptl/clinic-data/pkg/errors"
)

func newUser(t *testing.T, r repos, email string) *model.User {
	t.Helper()
	p := dbtest.SeedPerson(t, r.db, r.geo, model.PersonKindEmployee, strings.Split(email, "@")[0])
	u := &model.User{Email: email, Password: "correct horse", PersonID: p.ID}
	require.NoError(t, r.users.Create(context.Background(), u))
	return u
}

func TestUserCreateHashesAndNormalizes(t *testing.T) {
	r := setup(t)
	ctx := context.Background()

	u := newUser(t, r, "  Ana@Clinic.Test ")
	assert.Equal(t, "ana@clinic.test", u.Email)
	assert.NotEqual(t, "correct horse", u.Password)
	assert.True(t, strings.HasPrefix(u.Password, "$2"))

	loaded, err := r.users.GetByEmail(ctx, "ANA@clinic.test")
	require.NoError(t, err)
	assert.Equal(t, u.ID, loaded.ID)
	assert.Equal(t, u.Password, loaded.Password)
}

func TestUserCreateRejectsDuplicateEmail(t *testing.T) {
	r := setup(t)
	ctx := context.Background()

	newUser(t, r, "ana@clinic.test")

	p := dbtest.SeedPerson(t, r.db, r.geo, model.PersonKindEmployee, "other")
	err := r.users.Create(ctx, &model.User{Email: "Ana@clinic.test", Password: "another secret", PersonID: p.ID})
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
}

func TestUserCreateRejectsShortPassword(t *testing.T) {
	r := setup(t)

	p := dbtest.SeedPerson(t, r.db, r.geo, model.PersonKindEmployee, "short")
	err := r.users.Create(context.Background(), &model.User{Email: "short@clinic.test", Password: "123", PersonID: p.ID})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrBadRequest))
}

func TestUserAuthenticate(t *testing.T) {
	r := setup(t)
	ctx := context.Background()
	u := newUser(t, r, "ana@clinic.test")

	got, err := r.users.Authenticate(ctx, "ana@clinic.test", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = r.users.Authenticate(ctx, "ana@clinic.test", "wrong horse")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrUnauthorized))

	_, err = r.users.Authenticate(ctx, "nobody@clinic.test", "correct horse")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestUserChangePasswordAndTouchLogin(t *testing.T) {
	r := setup(t)
	ctx := context.Background()
	u := newUser(t, r, "ana@clinic.test")

	require.NoError(t, r.users.ChangePassword(ctx, u.ID, "battery staple"))
	_, err := r.users.Authenticate(ctx, "ana@clinic.test", "battery staple")
	require.NoError(t, err)

	require.NoError(t, r.users.TouchLogin(ctx, u.ID))
	loaded, err := r.users.Get(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.LastLoginDate)
	assert.WithinDuration(t, dbtest.Now, *loaded.LastLoginDate, 0)
	require.NotNil(t, loaded.UpdatedAt)
	assert.WithinDuration(t, dbtest.Now, *loaded.UpdatedAt, 0)
}

func TestUserSoftDeleteHidesUser(t *testing.T) {
	r := setup(t)
	ctx := context.Background()
	u := newUser(t, r, "ana@clinic.test")

	require.NoError(t, r.users.SoftDelete(ctx, u.ID))

	_, err := r.users.GetByEmail(ctx, "ana@clinic.test")
	assert.True(t, apperrors.IsNotFound(err))

	hidden, err := r.users.GetUnfiltered(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, hidden.Status)
	assert.NotNil(t, hidden.DeleteAt)
}

func TestUserDeleteKeepsAssignmentsItHandedOut(t *testing.T) {
	r := setup(t)
	ctx := context.Background()

	admin := newUser(t, r, "admin@clinic.test")
	clerk := newUser(t, r, "clerk@clinic.test")
	role := &model.Role{Name: "Clerk", Description: "front desk", IsActive: true}
	require.NoError(t, r.rbac.CreateRole(ctx, role))
	require.NoError(t, r.rbac.AssignRole(ctx, clerk.ID, role.ID, &admin.ID))

	assigned, err := r.users.AssignedRoles(ctx, admin.ID)
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	assert.WithinDuration(t, dbtest.Now, assigned[0].AssignedDate, 0)

	require.NoError(t, r.users.Delete(ctx, admin.ID))

	var grants []*model.RolUser
	require.NoError(t, r.session.Unfiltered(ctx).Where("user_id = ?", clerk.ID).Find(&grants).Error)
	require.Len(t, grants, 1)
	assert.Nil(t, grants[0].AssignedByUserID)
	require.NotNil(t, grants[0].UpdatedAt)
	assert.WithinDuration(t, dbtest.Now, *grants[0].UpdatedAt, 0)

	assigned, err = r.users.AssignedRoles(ctx, admin.ID)
	require.NoError(t, err)
	assert.Empty(t, assigned)

	roles, err := r.rbac.UserRoles(ctx, clerk.ID)
	require.NoError(t, err)
	require.Len(t, roles, 1)
	assert.Equal(t, role.ID, roles[0].ID)
}

func TestUserDeleteCascadesItsOwnAssignments(t *testing.T) {
	r := setup(t)
	ctx := context.Background()

	clerk := newUser(t, r, "clerk@clinic.test")
	role := &model.Role{Name: "Clerk", Description: "front desk", IsActive: true}
	require.NoError(t, r.rbac.CreateRole(ctx, role))
	require.NoError(t, r.rbac.AssignRole(ctx, clerk.ID, role.ID, nil))

	require.NoError(t, r.users.Delete(ctx, clerk.ID))

	var count int64
	require.NoError(t, r.db.Gorm().Unscoped().Model(&model.RolUser{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUserListPages(t *testing.T) {
	r := setup(t)
	ctx := context.Background()
	for _, e := range []string{"c@clinic.test", "a@clinic.test", "b@clinic.test"} {
		newUser(t, r, e)
	}

	page, err := r.users.List(ctx, model.Pagination{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "a@clinic.test", page.Items[0].Email)
	assert.Equal(t, "b@clinic.test", page.Items[1].Email)
}
