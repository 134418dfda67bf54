// Package seed loads the system roles, permissions, modules and forms. Running
// it again only adds what is missing.
package seed

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-data/internal/database"
	"github.com/jwalitptl/clinic-data/internal/model"
	"github.com/jwalitptl/clinic-data/internal/repository"
	"github.com/jwalitptl/clinic-data/internal/repository/postgres"
	apperrors "github.com/jwalitptl/clinic-data/pkg/errors"
	"github.com/jwalitptl/clinic-data/pkg/logger"
)

// Result counts the rows a run created
type Result struct {
	Roles       int
	Permissions int
	Modules     int
	Forms       int
	Links       int
	Grants      int
}

// Total is the number of rows created
func (r Result) Total() int {
	return r.Roles + r.Permissions + r.Modules + r.Forms + r.Links + r.Grants
}

type Seeder struct {
	session *database.Session
	rbac    repository.RBACRepository
	log     *logger.Logger
}

func NewSeeder(s *database.Session, log *logger.Logger) *Seeder {
	if log == nil {
		log = logger.Nop()
	}
	return &Seeder{session: s, rbac: postgres.NewRBACRepository(s), log: log}
}

// Run creates the missing catalog rows in one transaction
func (s *Seeder) Run(ctx context.Context) (Result, error) {
	var res Result
	err := s.session.WithTx(ctx, func(_ *database.Session) error {
		roles, err := s.roles(ctx, &res)
		if err != nil {
			return err
		}
		perms, err := s.permissions(ctx, &res)
		if err != nil {
			return err
		}
		modules, err := s.modules(ctx, &res)
		if err != nil {
			return err
		}
		forms, err := s.forms(ctx, modules, &res)
		if err != nil {
			return err
		}
		return s.grants(ctx, roles, forms, perms, &res)
	})
	if err != nil {
		return Result{}, fmt.Errorf("failed to seed: %w", err)
	}

	s.log.Info("seed complete",
		"roles", res.Roles,
		"permissions", res.Permissions,
		"modules", res.Modules,
		"forms", res.Forms,
		"links", res.Links,
		"grants", res.Grants,
	)
	return res, nil
}

// ensure returns the row found by lookup or creates it
func ensure[T any](lookup func() (*T, error), create func(*T) error, row T, created *int) (*T, error) {
	found, err := lookup()
	if err == nil {
		return found, nil
	}
	if !apperrors.IsNotFound(err) {
		return nil, err
	}
	if err := create(&row); err != nil {
		return nil, err
	}
	*created++
	return &row, nil
}

func (s *Seeder) roles(ctx context.Context, res *Result) (map[string]uuid.UUID, error) {
	ids := make(map[string]uuid.UUID, len(systemRoles))
	for _, r := range systemRoles {
		role, err := ensure(
			func() (*model.Role, error) { return s.rbac.GetRoleByName(ctx, r.Name) },
			func(row *model.Role) error { return s.rbac.CreateRole(ctx, row) },
			r, &res.Roles)
		if err != nil {
			return nil, err
		}
		ids[role.Name] = role.ID
	}
	return ids, nil
}

func (s *Seeder) permissions(ctx context.Context, res *Result) (map[string]uuid.UUID, error) {
	ids := make(map[string]uuid.UUID, len(systemPermissions))
	for _, p := range systemPermissions {
		perm, err := ensure(
			func() (*model.Permission, error) { return s.rbac.GetPermissionByName(ctx, p.Name) },
			func(row *model.Permission) error { return s.rbac.CreatePermission(ctx, row) },
			p, &res.Permissions)
		if err != nil {
			return nil, err
		}
		ids[perm.Name] = perm.ID
	}
	return ids, nil
}

func (s *Seeder) modules(ctx context.Context, res *Result) (map[string]uuid.UUID, error) {
	ids := make(map[string]uuid.UUID, len(systemModules))
	for _, m := range systemModules {
		mod, err := ensure(
			func() (*model.Module, error) { return s.rbac.GetModuleByCode(ctx, m.Code) },
			func(row *model.Module) error { return s.rbac.CreateModule(ctx, row) },
			m, &res.Modules)
		if err != nil {
			return nil, err
		}
		ids[mod.Code] = mod.ID
	}
	return ids, nil
}

func (s *Seeder) forms(ctx context.Context, modules map[string]uuid.UUID, res *Result) (map[string]uuid.UUID, error) {
	ids := make(map[string]uuid.UUID, len(systemForms))
	linked := make(map[uuid.UUID]map[uuid.UUID]bool, len(modules))

	for _, fs := range systemForms {
		form, err := ensure(
			func() (*model.Form, error) { return s.rbac.GetFormByCode(ctx, fs.form.Code) },
			func(row *model.Form) error { return s.rbac.CreateForm(ctx, row) },
			fs.form, &res.Forms)
		if err != nil {
			return nil, err
		}
		ids[form.Code] = form.ID

		moduleID := modules[fs.module]
		if linked[moduleID] == nil {
			existing, err := s.rbac.ModuleForms(ctx, moduleID)
			if err != nil {
				return nil, err
			}
			linked[moduleID] = make(map[uuid.UUID]bool, len(existing))
			for _, f := range existing {
				linked[moduleID][f.ID] = true
			}
		}
		if linked[moduleID][form.ID] {
			continue
		}
		if err := s.rbac.AddFormToModule(ctx, form.ID, moduleID); err != nil {
			return nil, err
		}
		linked[moduleID][form.ID] = true
		res.Links++
	}
	return ids, nil
}

func (s *Seeder) grants(ctx context.Context, roles, forms, perms map[string]uuid.UUID, res *Result) error {
	plan := make(map[string]map[string][]string, len(grants)+1)
	for role, byForm := range grants {
		plan[role] = byForm
	}
	admin := make(map[string][]string, len(forms))
	for code := range forms {
		admin[code] = allPermissions
	}
	plan[RoleAdministrator] = admin

	for roleName, byForm := range plan {
		rolID := roles[roleName]
		existing, err := s.rbac.RolePermissions(ctx, rolID)
		if err != nil {
			return err
		}
		held := make(map[[2]uuid.UUID]bool, len(existing))
		for _, g := range existing {
			held[[2]uuid.UUID{g.FormID, g.PermissionID}] = true
		}

		for code, names := range byForm {
			for _, name := range names {
				key := [2]uuid.UUID{forms[code], perms[name]}
				if held[key] {
					continue
				}
				if err := s.rbac.GrantFormPermission(ctx, rolID, key[0], key[1]); err != nil {
					return err
				}
				held[key] = true
				res.Grants++
			}
		}
	}
	return nil
}
