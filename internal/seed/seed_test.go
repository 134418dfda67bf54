package seed_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-data/internal/database/dbtest"
	"github.com/jwalitptl/clinic-data/internal/model"
	"github.com/jwalitptl/clinic-data/internal/repository/postgres"
	"github.com/jwalitptl/clinic-data/internal/seed"
	"github.com/jwalitptl/clinic-data/pkg/security"
)

func TestRunCreatesCatalog(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()

	res, err := seed.NewSeeder(db.NewSession(), nil).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, seed.Result{Roles: 3, Permissions: 5, Modules: 3, Forms: 7, Links: 7, Grants: 48}, res)

	rbac := postgres.NewRBACRepository(db.NewSession())
	roles, err := rbac.ListRoles(ctx)
	require.NoError(t, err)
	require.Len(t, roles, 3)
	assert.Equal(t, seed.RoleAdministrator, roles[0].Name)
	assert.True(t, roles[0].IsSystemRole)

	clinical, err := rbac.GetModuleByCode(ctx, "clinical")
	require.NoError(t, err)
	forms, err := rbac.ModuleForms(ctx, clinical.ID)
	require.NoError(t, err)
	require.Len(t, forms, 3)
	assert.Equal(t, "patients", forms[0].Code)
}

func TestRunIsIdempotent(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	seeder := seed.NewSeeder(db.NewSession(), nil)

	_, err := seeder.Run(ctx)
	require.NoError(t, err)

	res, err := seeder.Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, res.Total())

	var count int64
	require.NoError(t, db.Gorm().Model(&model.RolFormPermission{}).Count(&count).Error)
	assert.Equal(t, int64(48), count)
}

func TestRunRestoresMissingRows(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	seeder := seed.NewSeeder(db.NewSession(), nil)
	_, err := seeder.Run(ctx)
	require.NoError(t, err)

	rbac := postgres.NewRBACRepository(db.NewSession())
	form, err := rbac.GetFormByCode(ctx, "providers")
	require.NoError(t, err)
	require.NoError(t, db.Gorm().Delete(form).Error)

	res, err := seeder.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, seed.Result{Forms: 1, Links: 1, Grants: 5}, res)
}

func TestSeededGrantsDrivePermissions(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	_, err := seed.NewSeeder(db.NewSession(), nil).Run(ctx)
	require.NoError(t, err)

	g := dbtest.SeedGeography(t, db)
	s := db.NewSession()
	users := postgres.NewUserRepository(s, security.NewBcryptHasher(4))
	rbac := postgres.NewRBACRepository(s)

	p := dbtest.SeedPerson(t, db, g, model.PersonKindEmployee, "desk")
	u := &model.User{Email: "desk@clinic.test", Password: "front desk 1", PersonID: p.ID}
	require.NoError(t, users.Create(ctx, u))

	receptionist, err := rbac.GetRoleByName(ctx, seed.RoleReceptionist)
	require.NoError(t, err)
	require.NoError(t, rbac.AssignRole(ctx, u.ID, receptionist.ID, nil))

	ok, err := rbac.HasPermission(ctx, u.ID, "appointments", seed.PermissionDelete)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = rbac.HasPermission(ctx, u.ID, "users", seed.PermissionRead)
	require.NoError(t, err)
	assert.False(t, ok)

	forms, err := rbac.FormsForUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, forms, 3)
}
