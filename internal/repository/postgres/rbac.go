package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-data/internal/database"
	"github.com/jwalitptl/clinic-data/internal/model"
	"github.com/jwalitptl/clinic-data/internal/repository"
	apperrors "github.com/jwalitptl/clinic-data/pkg/errors"
)

var _ repository.RBACRepository = (*RBACRepository)(nil)

// RBACRepository manages roles, their assignment to users and the
// permissions a role holds on each form.
type RBACRepository struct {
	session     *database.Session
	roles       *Store[model.Role, *model.Role]
	permissions *Store[model.Permission, *model.Permission]
	forms       *Store[model.Form, *model.Form]
	modules     *Store[model.Module, *model.Module]
}

func NewRBACRepository(s *database.Session) *RBACRepository {
	return &RBACRepository{
		session:     s,
		roles:       NewStore[model.Role](s, "role"),
		permissions: NewStore[model.Permission](s, "permission"),
		forms:       NewStore[model.Form](s, "form"),
		modules:     NewStore[model.Module](s, "module"),
	}
}

func (r *RBACRepository) CreateRole(ctx context.Context, role *model.Role) error {
	return r.roles.Create(ctx, role)
}

func (r *RBACRepository) GetRole(ctx context.Context, id uuid.UUID) (*model.Role, error) {
	return r.roles.Get(ctx, id)
}

func (r *RBACRepository) GetRoleByName(ctx context.Context, name string) (*model.Role, error) {
	return r.roles.First(r.session.DB(ctx).Where("name = ?", name))
}

func (r *RBACRepository) ListRoles(ctx context.Context) ([]*model.Role, error) {
	return r.roles.Find(r.session.DB(ctx).Order("priority").Order("name"))
}

// DeleteRole removes a non-system role; its grants cascade
func (r *RBACRepository) DeleteRole(ctx context.Context, id uuid.UUID) error {
	role, err := r.roles.GetUnfiltered(ctx, id)
	if err != nil {
		return err
	}
	if role.IsSystemRole {
		return apperrors.Forbidden(fmt.Errorf("role %s is a system role", role.Name))
	}
	return r.roles.Delete(ctx, id)
}

func (r *RBACRepository) CreatePermission(ctx context.Context, permission *model.Permission) error {
	return r.permissions.Create(ctx, permission)
}

func (r *RBACRepository) GetPermissionByName(ctx context.Context, name string) (*model.Permission, error) {
	return r.permissions.First(r.session.DB(ctx).Where("name = ?", name))
}

func (r *RBACRepository) ListPermissions(ctx context.Context) ([]*model.Permission, error) {
	return r.permissions.Find(r.session.DB(ctx).Order("permission_value"))
}

func (r *RBACRepository) CreateForm(ctx context.Context, form *model.Form) error {
	return r.forms.Create(ctx, form)
}

func (r *RBACRepository) GetFormByCode(ctx context.Context, code string) (*model.Form, error) {
	return r.forms.First(r.session.DB(ctx).Where("code = ?", code))
}

func (r *RBACRepository) CreateModule(ctx context.Context, module *model.Module) error {
	return r.modules.Create(ctx, module)
}

func (r *RBACRepository) GetModuleByCode(ctx context.Context, code string) (*model.Module, error) {
	return r.modules.First(r.session.DB(ctx).Where("code = ?", code))
}

// AssignRole grants rolID to userID. The first active grant of a user becomes
// its active role. A revoked (inactive) grant is switched back on.
func (r *RBACRepository) AssignRole(ctx context.Context, userID, rolID uuid.UUID, assignedBy *uuid.UUID) error {
	return r.session.WithTx(ctx, func(s *database.Session) error {
		var grants []*model.RolUser
		if err := s.Unfiltered(ctx).Where("user_id = ?", userID).Find(&grants).Error; err != nil {
			return fmt.Errorf("failed to load role assignments: %w", err)
		}

		hasActive := false
		var existing *model.RolUser
		for _, g := range grants {
			if g.Status && g.IsActive {
				hasActive = true
			}
			if g.RolID == rolID {
				existing = g
			}
		}

		now := s.Now()
		if existing != nil {
			if existing.Status {
				return apperrors.NewConflict("role assignment", nil)
			}
			if err := s.Attach(existing); err != nil {
				return err
			}
			existing.Status = true
			existing.DeleteAt = nil
			existing.AssignedByUserID = assignedBy
			existing.AssignedDate = now
			existing.IsActive = !hasActive
		} else {
			s.Add(&model.RolUser{
				UserID:           userID,
				RolID:            rolID,
				AssignedByUserID: assignedBy,
				AssignedDate:     now,
				IsActive:         !hasActive,
			})
		}

		if _, err := s.SaveChanges(ctx); err != nil {
			s.Clear()
			return fmt.Errorf("failed to assign role: %w", apperrors.FromDB("role assignment", err))
		}
		return nil
	})
}

func (r *RBACRepository) RevokeRole(ctx context.Context, userID, rolID uuid.UUID) error {
	grant, err := r.grant(ctx, userID, rolID)
	if err != nil {
		return err
	}
	r.session.Remove(grant)
	if _, err := r.session.SaveChanges(ctx); err != nil {
		r.session.Clear()
		return fmt.Errorf("failed to revoke role: %w", err)
	}
	return nil
}

func (r *RBACRepository) grant(ctx context.Context, userID, rolID uuid.UUID) (*model.RolUser, error) {
	var grant model.RolUser
	err := r.session.DB(ctx).Where("user_id = ? AND rol_id = ?", userID, rolID).First(&grant).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get role assignment: %w", apperrors.FromDB("role assignment", err))
	}
	return &grant, nil
}

// ActivateRole makes rolID the only active role of userID
func (r *RBACRepository) ActivateRole(ctx context.Context, userID, rolID uuid.UUID) error {
	return r.session.WithTx(ctx, func(s *database.Session) error {
		var grants []*model.RolUser
		if err := s.DB(ctx).Where("user_id = ?", userID).Find(&grants).Error; err != nil {
			return fmt.Errorf("failed to load role assignments: %w", err)
		}

		found := false
		for _, g := range grants {
			if g.RolID == rolID {
				found = true
			}
		}
		if !found {
			return apperrors.NewNotFound("role assignment", nil)
		}

		for _, g := range grants {
			if err := s.Attach(g); err != nil {
				return err
			}
			g.IsActive = g.RolID == rolID
		}
		if _, err := s.SaveChanges(ctx); err != nil {
			s.Clear()
			return fmt.Errorf("failed to activate role: %w", err)
		}
		return nil
	})
}

func (r *RBACRepository) ActiveRole(ctx context.Context, userID uuid.UUID) (*model.Role, error) {
	q := r.session.DB(ctx).
		Joins("JOIN rol_users ON rol_users.rol_id = roles.id").
		Where("rol_users.user_id = ? AND rol_users.is_active = ? AND rol_users.status = ?", userID, true, true)
	return r.roles.First(q)
}

func (r *RBACRepository) UserRoles(ctx context.Context, userID uuid.UUID) ([]*model.Role, error) {
	q := r.session.DB(ctx).
		Joins("JOIN rol_users ON rol_users.rol_id = roles.id").
		Where("rol_users.user_id = ? AND rol_users.status = ?", userID, true).
		Order("roles.priority")
	return r.roles.Find(q)
}

func (r *RBACRepository) GrantFormPermission(ctx context.Context, rolID, formID, permissionID uuid.UUID) error {
	r.session.Add(&model.RolFormPermission{RolID: rolID, FormID: formID, PermissionID: permissionID})
	if _, err := r.session.SaveChanges(ctx); err != nil {
		r.session.Clear()
		return fmt.Errorf("failed to grant permission: %w", apperrors.FromDB("form permission", err))
	}
	return nil
}

func (r *RBACRepository) RevokeFormPermission(ctx context.Context, rolID, formID, permissionID uuid.UUID) error {
	var grant model.RolFormPermission
	err := r.session.Unfiltered(ctx).
		Where("rol_id = ? AND form_id = ? AND permission_id = ?", rolID, formID, permissionID).
		First(&grant).Error
	if err != nil {
		return fmt.Errorf("failed to get form permission: %w", apperrors.FromDB("form permission", err))
	}
	r.session.Remove(&grant)
	if _, err := r.session.SaveChanges(ctx); err != nil {
		r.session.Clear()
		return fmt.Errorf("failed to revoke permission: %w", err)
	}
	return nil
}

func (r *RBACRepository) RolePermissions(ctx context.Context, rolID uuid.UUID) ([]*model.RolFormPermission, error) {
	return database.ListSafe[*model.RolFormPermission](
		r.session.DB(ctx).Preload("Form").Preload("Permission").Where("rol_id = ?", rolID))
}

func (r *RBACRepository) AddFormToModule(ctx context.Context, formID, moduleID uuid.UUID) error {
	r.session.Add(&model.FormModule{FormID: formID, ModuleID: moduleID})
	if _, err := r.session.SaveChanges(ctx); err != nil {
		r.session.Clear()
		return fmt.Errorf("failed to add form to module: %w", apperrors.FromDB("form module", err))
	}
	return nil
}

func (r *RBACRepository) RemoveFormFromModule(ctx context.Context, formID, moduleID uuid.UUID) error {
	var link model.FormModule
	err := r.session.Unfiltered(ctx).Where("form_id = ? AND module_id = ?", formID, moduleID).First(&link).Error
	if err != nil {
		return fmt.Errorf("failed to get form module: %w", apperrors.FromDB("form module", err))
	}
	r.session.Remove(&link)
	if _, err := r.session.SaveChanges(ctx); err != nil {
		r.session.Clear()
		return fmt.Errorf("failed to remove form from module: %w", err)
	}
	return nil
}

func (r *RBACRepository) ModuleForms(ctx context.Context, moduleID uuid.UUID) ([]*model.Form, error) {
	links := r.session.DB(ctx).Model(&model.FormModule{}).Select("form_id").Where("module_id = ?", moduleID)
	return r.forms.Find(r.session.DB(ctx).Where("id IN (?)", links).Order("display_order"))
}

const hasPermissionQuery = `
	SELECT COUNT(*)
	FROM rol_users ru
	JOIN roles r ON r.id = ru.rol_id
	JOIN rol_form_permissions rfp ON rfp.rol_id = ru.rol_id
	JOIN forms f ON f.id = rfp.form_id
	JOIN permissions p ON p.id = rfp.permission_id
	WHERE ru.user_id = :user_id
		AND ru.is_active = :active AND ru.status = :active
		AND r.is_active = :active AND r.status = :active
		AND rfp.status = :active
		AND f.status = :active
		AND p.status = :active
		AND f.code = :form_code
		AND p.name = :permission
`

type permissionCheck struct {
	UserID     uuid.UUID `db:"user_id"`
	Active     bool      `db:"active"`
	FormCode   string    `db:"form_code"`
	Permission string    `db:"permission"`
}

// HasPermission evaluates permission on formCode against the user's active role
func (r *RBACRepository) HasPermission(ctx context.Context, userID uuid.UUID, formCode, permission string) (bool, error) {
	count, err := database.QueryFirstOrDefault[int64](ctx, r.session, hasPermissionQuery, permissionCheck{
		UserID:     userID,
		Active:     true,
		FormCode:   formCode,
		Permission: permission,
	})
	if err != nil {
		return false, fmt.Errorf("failed to check permission: %w", err)
	}
	return count != nil && *count > 0, nil
}

// FormsForUser lists the forms the active role of userID holds any permission on
func (r *RBACRepository) FormsForUser(ctx context.Context, userID uuid.UUID) ([]*model.Form, error) {
	granted := r.session.DB(ctx).
		Model(&model.RolFormPermission{}).
		Select("rol_form_permissions.form_id").
		Joins("JOIN rol_users ON rol_users.rol_id = rol_form_permissions.rol_id").
		Where("rol_users.user_id = ? AND rol_users.is_active = ? AND rol_users.status = ?", userID, true, true)

	q := r.session.DB(ctx).
		Where("id IN (?)", granted).
		Where("is_active = ?", true).
		Order("display_order")
	return r.forms.Find(q)
}
