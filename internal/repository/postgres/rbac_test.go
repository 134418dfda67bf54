package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-data/internal/model"
	apperrors "github.com/jwalitptl/clinic-data/pkg/errors"
)

type rbacFixture struct {
	admin, viewer *model.Role
	read, write   *model.Permission
	patients      *model.Form
	reports       *model.Form
	hidden        *model.Form
}

// seedRBAC creates two roles: admin may read and write patients and read
// reports, viewer may only read patients.
func seedRBAC(t *testing.T, r repos) rbacFixture {
	t.Helper()
	ctx := context.Background()

	f := rbacFixture{
		admin:    &model.Role{Name: "Admin", Description: "everything", Priority: 1, IsActive: true},
		viewer:   &model.Role{Name: "Viewer", Description: "read only", Priority: 2, IsActive: true},
		read:     &model.Permission{Name: "read", Description: "read", Type: model.PermissionTypeRead, PermissionValue: 1},
		write:    &model.Permission{Name: "write", Description: "write", Type: model.PermissionTypeWrite, PermissionValue: 2},
		patients: &model.Form{Name: "Patients", Code: "patients", Description: "patients", Route: "/patients", Icon: "user", FormType: "list", DisplayOrder: 1, IsActive: true},
		reports:  &model.Form{Name: "Reports", Code: "reports", Description: "reports", Route: "/reports", Icon: "chart", FormType: "list", DisplayOrder: 2, IsActive: true},
		hidden:   &model.Form{Name: "Legacy", Code: "legacy", Description: "legacy", Route: "/legacy", Icon: "box", FormType: "list", DisplayOrder: 3, IsActive: false},
	}
	require.NoError(t, r.rbac.CreateRole(ctx, f.admin))
	require.NoError(t, r.rbac.CreateRole(ctx, f.viewer))
	require.NoError(t, r.rbac.CreatePermission(ctx, f.read))
	require.NoError(t, r.rbac.CreatePermission(ctx, f.write))
	require.NoError(t, r.rbac.CreateForm(ctx, f.patients))
	require.NoError(t, r.rbac.CreateForm(ctx, f.reports))
	require.NoError(t, r.rbac.CreateForm(ctx, f.hidden))

	require.NoError(t, r.rbac.GrantFormPermission(ctx, f.admin.ID, f.patients.ID, f.read.ID))
	require.NoError(t, r.rbac.GrantFormPermission(ctx, f.admin.ID, f.patients.ID, f.write.ID))
	require.NoError(t, r.rbac.GrantFormPermission(ctx, f.admin.ID, f.reports.ID, f.read.ID))
	require.NoError(t, r.rbac.GrantFormPermission(ctx, f.admin.ID, f.hidden.ID, f.read.ID))
	require.NoError(t, r.rbac.GrantFormPermission(ctx, f.viewer.ID, f.patients.ID, f.read.ID))
	return f
}

func formCodes(forms []*model.Form) []string {
	codes := make([]string, 0, len(forms))
	for _, f := range forms {
		codes = append(codes, f.Code)
	}
	return codes
}

func TestAssignRoleFirstGrantBecomesActive(t *testing.T) {
	r := setup(t)
	ctx := context.Background()
	f := seedRBAC(t, r)
	u := newUser(t, r, "ana@clinic.test")

	require.NoError(t, r.rbac.AssignRole(ctx, u.ID, f.admin.ID, nil))
	require.NoError(t, r.rbac.AssignRole(ctx, u.ID, f.viewer.ID, nil))

	active, err := r.rbac.ActiveRole(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, f.admin.ID, active.ID)

	roles, err := r.rbac.UserRoles(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, roles, 2)
	assert.Equal(t, "Admin", roles[0].Name)
	assert.Equal(t, "Viewer", roles[1].Name)

	err = r.rbac.AssignRole(ctx, u.ID, f.admin.ID, nil)
	assert.True(t, apperrors.IsConflict(err))
}

func TestActivateRoleKeepsOneActiveRole(t *testing.T) {
	r := setup(t)
	ctx := context.Background()
	f := seedRBAC(t, r)
	u := newUser(t, r, "ana@clinic.test")
	require.NoError(t, r.rbac.AssignRole(ctx, u.ID, f.admin.ID, nil))
	require.NoError(t, r.rbac.AssignRole(ctx, u.ID, f.viewer.ID, nil))

	require.NoError(t, r.rbac.ActivateRole(ctx, u.ID, f.viewer.ID))

	active, err := r.rbac.ActiveRole(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, f.viewer.ID, active.ID)

	var activeCount int64
	require.NoError(t, r.db.Gorm().Model(&model.RolUser{}).
		Where("user_id = ? AND is_active = ?", u.ID, true).Count(&activeCount).Error)
	assert.Equal(t, int64(1), activeCount)

	stranger := newUser(t, r, "bob@clinic.test")
	err = r.rbac.ActivateRole(ctx, stranger.ID, f.viewer.ID)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestHasPermissionFollowsActiveRole(t *testing.T) {
	r := setup(t)
	ctx := context.Background()
	f := seedRBAC(t, r)
	u := newUser(t, r, "ana@clinic.test")
	require.NoError(t, r.rbac.AssignRole(ctx, u.ID, f.admin.ID, nil))
	require.NoError(t, r.rbac.AssignRole(ctx, u.ID, f.viewer.ID, nil))

	ok, err := r.rbac.HasPermission(ctx, u.ID, "patients", "write")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, r.rbac.ActivateRole(ctx, u.ID, f.viewer.ID))

	ok, err = r.rbac.HasPermission(ctx, u.ID, "patients", "write")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = r.rbac.HasPermission(ctx, u.ID, "patients", "read")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.rbac.HasPermission(ctx, u.ID, "reports", "read")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHasPermissionIgnoresRevokedGrants(t *testing.T) {
	r := setup(t)
	ctx := context.Background()
	f := seedRBAC(t, r)
	u := newUser(t, r, "ana@clinic.test")
	require.NoError(t, r.rbac.AssignRole(ctx, u.ID, f.viewer.ID, nil))

	require.NoError(t, r.rbac.RevokeFormPermission(ctx, f.viewer.ID, f.patients.ID, f.read.ID))

	ok, err := r.rbac.HasPermission(ctx, u.ID, "patients", "read")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFormsForUserListsActiveFormsOfActiveRole(t *testing.T) {
	r := setup(t)
	ctx := context.Background()
	f := seedRBAC(t, r)
	u := newUser(t, r, "ana@clinic.test")

	forms, err := r.rbac.FormsForUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, forms)

	require.NoError(t, r.rbac.AssignRole(ctx, u.ID, f.admin.ID, nil))
	forms, err = r.rbac.FormsForUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"patients", "reports"}, formCodes(forms))
}

func TestRevokeRoleRemovesGrant(t *testing.T) {
	r := setup(t)
	ctx := context.Background()
	f := seedRBAC(t, r)
	u := newUser(t, r, "ana@clinic.test")
	require.NoError(t, r.rbac.AssignRole(ctx, u.ID, f.admin.ID, nil))

	require.NoError(t, r.rbac.RevokeRole(ctx, u.ID, f.admin.ID))

	_, err := r.rbac.ActiveRole(ctx, u.ID)
	assert.True(t, apperrors.IsNotFound(err))

	err = r.rbac.RevokeRole(ctx, u.ID, f.admin.ID)
	assert.True(t, apperrors.IsNotFound(err))

	// the role can be granted again
	require.NoError(t, r.rbac.AssignRole(ctx, u.ID, f.admin.ID, nil))
}

func TestDeleteRoleProtectsSystemRoles(t *testing.T) {
	r := setup(t)
	ctx := context.Background()
	f := seedRBAC(t, r)

	system := &model.Role{Name: "Root", Description: "system", IsActive: true, IsSystemRole: true}
	require.NoError(t, r.rbac.CreateRole(ctx, system))

	err := r.rbac.DeleteRole(ctx, system.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrForbidden))

	require.NoError(t, r.rbac.DeleteRole(ctx, f.viewer.ID))
	_, err = r.rbac.GetRole(ctx, f.viewer.ID)
	assert.True(t, apperrors.IsNotFound(err))

	perms, err := r.rbac.RolePermissions(ctx, f.viewer.ID)
	require.NoError(t, err)
	assert.Empty(t, perms)
}

func TestRolePermissionsPreloadsFormAndPermission(t *testing.T) {
	r := setup(t)
	ctx := context.Background()
	f := seedRBAC(t, r)

	perms, err := r.rbac.RolePermissions(ctx, f.viewer.ID)
	require.NoError(t, err)
	require.Len(t, perms, 1)
	require.NotNil(t, perms[0].Form)
	require.NotNil(t, perms[0].Permission)
	assert.Equal(t, "patients", perms[0].Form.Code)
	assert.Equal(t, "read", perms[0].Permission.Name)
}

func TestModuleForms(t *testing.T) {
	r := setup(t)
	ctx := context.Background()
	f := seedRBAC(t, r)

	mod := &model.Module{Name: "Clinical", Code: "clinical", Description: "clinical", Icon: "heart", DisplayOrder: 1, IsActive: true}
	require.NoError(t, r.rbac.CreateModule(ctx, mod))
	require.NoError(t, r.rbac.AddFormToModule(ctx, f.reports.ID, mod.ID))
	require.NoError(t, r.rbac.AddFormToModule(ctx, f.patients.ID, mod.ID))

	err := r.rbac.AddFormToModule(ctx, f.patients.ID, mod.ID)
	assert.True(t, apperrors.IsConflict(err))

	forms, err := r.rbac.ModuleForms(ctx, mod.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"patients", "reports"}, formCodes(forms))

	require.NoError(t, r.rbac.RemoveFormFromModule(ctx, f.reports.ID, mod.ID))
	forms, err = r.rbac.ModuleForms(ctx, mod.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"patients"}, formCodes(forms))

	got, err := r.rbac.GetModuleByCode(ctx, "clinical")
	require.NoError(t, err)
	assert.Equal(t, mod.ID, got.ID)
}
