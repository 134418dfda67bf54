package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-data/internal/model"
)

// All repository interfaces in one file
type (
	// UserRepository handles login identities
	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		Update(ctx context.Context, user *model.User) error
		ChangePassword(ctx context.Context, id uuid.UUID, password string) error
		Authenticate(ctx context.Context, email, password string) (*model.User, error)
		TouchLogin(ctx context.Context, id uuid.UUID) error
		SoftDelete(ctx context.Context, id uuid.UUID) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, page model.Pagination) (model.Page[*model.User], error)
		AssignedRoles(ctx context.Context, assignerID uuid.UUID) ([]*model.RolUser, error)
	}

	RBACRepository interface {
		CreateRole(ctx context.Context, role *model.Role) error
		GetRole(ctx context.Context, id uuid.UUID) (*model.Role, error)
		GetRoleByName(ctx context.Context, name string) (*model.Role, error)
		ListRoles(ctx context.Context) ([]*model.Role, error)
		DeleteRole(ctx context.Context, id uuid.UUID) error
		CreatePermission(ctx context.Context, permission *model.Permission) error
		GetPermissionByName(ctx context.Context, name string) (*model.Permission, error)
		ListPermissions(ctx context.Context) ([]*model.Permission, error)
		CreateForm(ctx context.Context, form *model.Form) error
		GetFormByCode(ctx context.Context, code string) (*model.Form, error)
		CreateModule(ctx context.Context, module *model.Module) error
		GetModuleByCode(ctx context.Context, code string) (*model.Module, error)

		AssignRole(ctx context.Context, userID, rolID uuid.UUID, assignedBy *uuid.UUID) error
		RevokeRole(ctx context.Context, userID, rolID uuid.UUID) error
		ActivateRole(ctx context.Context, userID, rolID uuid.UUID) error
		ActiveRole(ctx context.Context, userID uuid.UUID) (*model.Role, error)
		UserRoles(ctx context.Context, userID uuid.UUID) ([]*model.Role, error)

		GrantFormPermission(ctx context.Context, rolID, formID, permissionID uuid.UUID) error
		RevokeFormPermission(ctx context.Context, rolID, formID, permissionID uuid.UUID) error
		RolePermissions(ctx context.Context, rolID uuid.UUID) ([]*model.RolFormPermission, error)
		AddFormToModule(ctx context.Context, formID, moduleID uuid.UUID) error
		RemoveFormFromModule(ctx context.Context, formID, moduleID uuid.UUID) error
		ModuleForms(ctx context.Context, moduleID uuid.UUID) ([]*model.Form, error)

		HasPermission(ctx context.Context, userID uuid.UUID, formCode, permission string) (bool, error)
		FormsForUser(ctx context.Context, userID uuid.UUID) ([]*model.Form, error)
	}

	PersonRepository interface {
		Create(ctx context.Context, person *model.Person) error
		Get(ctx context.Context, id uuid.UUID) (*model.Person, error)
		GetWithAddress(ctx context.Context, id uuid.UUID) (*model.Person, error)
		GetByIdentification(ctx context.Context, number string) (*model.Person, error)
		Update(ctx context.Context, person *model.Person) error
		SoftDelete(ctx context.Context, id uuid.UUID) error
		Delete(ctx context.Context, id uuid.UUID) error
		ListByKind(ctx context.Context, kind model.PersonKind, page model.Pagination) (model.Page[*model.Person], error)
		ListDoctorsBySpecialty(ctx context.Context, specialty string) ([]*model.Person, error)
		GetPatientByDni(ctx context.Context, dni string) (*model.Person, error)
	}

	// GeographyRepository serves the reference hierarchy and addresses. Reads of
	// the hierarchy are cached.
	GeographyRepository interface {
		CreateCountry(ctx context.Context, country *model.Country) error
		CreateDepartment(ctx context.Context, department *model.Department) error
		CreateCity(ctx context.Context, city *model.City) error
		CreateNeighborhood(ctx context.Context, neighborhood *model.Neighborhood) error
		DeleteCountry(ctx context.Context, id uuid.UUID) error
		Countries(ctx context.Context) ([]*model.Country, error)
		Departments(ctx context.Context, countryID uuid.UUID) ([]*model.Department, error)
		Cities(ctx context.Context, departmentID uuid.UUID) ([]*model.City, error)
		Neighborhoods(ctx context.Context, cityID uuid.UUID) ([]*model.Neighborhood, error)

		CreateAddress(ctx context.Context, address *model.Address) error
		GetAddress(ctx context.Context, id uuid.UUID) (*model.Address, error)
		UpdateAddress(ctx context.Context, address *model.Address) error
	}

	ProviderRepository interface {
		Create(ctx context.Context, provider *model.Provider) error
		Get(ctx context.Context, id uuid.UUID) (*model.Provider, error)
		Update(ctx context.Context, provider *model.Provider) error
		SoftDelete(ctx context.Context, id uuid.UUID) error
		ListByType(ctx context.Context, providerType model.ProviderType) ([]*model.Provider, error)
	}

	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		Update(ctx context.Context, appointment *model.Appointment) error
		Cancel(ctx context.Context, id uuid.UUID) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
		ListForDoctor(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]*model.Appointment, error)
		ListForPatient(ctx context.Context, patientID uuid.UUID, from, to time.Time) ([]*model.Appointment, error)
		CheckConflicts(ctx context.Context, doctorID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (bool, error)
	}

	AuditRepository interface {
		ListForEntity(ctx context.Context, entityType, entityID string) ([]*model.AuditLog, error)
		List(ctx context.Context, filters *model.AuditFilters, page model.Pagination) (model.Page[*model.AuditLog], error)
		DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
	}
)
