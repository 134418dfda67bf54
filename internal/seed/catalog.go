package seed

import "github.com/jwalitptl/clinic-data/internal/model"

const (
	RoleAdministrator = "Administrator"
	RoleDoctor        = "Doctor"
	RoleReceptionist  = "Receptionist"

	PermissionRead   = "read"
	PermissionCreate = "create"
	PermissionUpdate = "update"
	PermissionDelete = "delete"
	PermissionAdmin  = "admin"
)

var systemRoles = []model.Role{
	{Name: RoleAdministrator, Description: "Full access to every form", Priority: 1, IsActive: true, IsSystemRole: true},
	{Name: RoleDoctor, Description: "Clinical staff", Priority: 2, IsActive: true, IsSystemRole: true},
	{Name: RoleReceptionist, Description: "Front desk and scheduling", Priority: 3, IsActive: true, IsSystemRole: true},
}

// permission values are bit flags so a role's grants on a form can be summed
var systemPermissions = []model.Permission{
	{Name: PermissionRead, Description: "View records", Type: model.PermissionTypeRead, PermissionValue: 1, IsSystemPermission: true},
	{Name: PermissionCreate, Description: "Create records", Type: model.PermissionTypeWrite, PermissionValue: 2, IsSystemPermission: true},
	{Name: PermissionUpdate, Description: "Edit records", Type: model.PermissionTypeWrite, PermissionValue: 4, IsSystemPermission: true},
	{Name: PermissionDelete, Description: "Remove records", Type: model.PermissionTypeDelete, PermissionValue: 8, IsSystemPermission: true},
	{Name: PermissionAdmin, Description: "Manage configuration", Type: model.PermissionTypeAdmin, PermissionValue: 16, IsSystemPermission: true},
}

var systemModules = []model.Module{
	{Name: "Security", Code: "security", Description: "Users, roles and permissions", Icon: "shield", DisplayOrder: 1, IsActive: true},
	{Name: "Clinical", Code: "clinical", Description: "Patients, doctors and appointments", Icon: "heart", DisplayOrder: 2, IsActive: true},
	{Name: "Parameters", Code: "parameters", Description: "Geography and providers", Icon: "settings", DisplayOrder: 3, IsActive: true},
}

type formSeed struct {
	form   model.Form
	module string
}

var systemForms = []formSeed{
	{model.Form{Name: "Users", Code: "users", Description: "Login accounts", Route: "/security/users", Icon: "user", FormType: "list", DisplayOrder: 1, IsActive: true}, "security"},
	{model.Form{Name: "Roles", Code: "roles", Description: "Roles and grants", Route: "/security/roles", Icon: "key", FormType: "list", DisplayOrder: 2, IsActive: true}, "security"},
	{model.Form{Name: "Patients", Code: "patients", Description: "Patient records", Route: "/clinical/patients", Icon: "users", FormType: "list", DisplayOrder: 1, IsActive: true}, "clinical"},
	{model.Form{Name: "Doctors", Code: "doctors", Description: "Medical staff", Route: "/clinical/doctors", Icon: "stethoscope", FormType: "list", DisplayOrder: 2, IsActive: true}, "clinical"},
	{model.Form{Name: "Appointments", Code: "appointments", Description: "Scheduling", Route: "/clinical/appointments", Icon: "calendar", FormType: "calendar", DisplayOrder: 3, IsActive: true}, "clinical"},
	{model.Form{Name: "Geography", Code: "geography", Description: "Countries to neighborhoods", Route: "/parameters/geography", Icon: "map", FormType: "tree", DisplayOrder: 1, IsActive: true}, "parameters"},
	{model.Form{Name: "Providers", Code: "providers", Description: "Suppliers", Route: "/parameters/providers", Icon: "truck", FormType: "list", DisplayOrder: 2, IsActive: true}, "parameters"},
}

var allPermissions = []string{PermissionRead, PermissionCreate, PermissionUpdate, PermissionDelete, PermissionAdmin}

// grants maps role → form code → permission names. The administrator gets
// everything and is filled in by Run.
var grants = map[string]map[string][]string{
	RoleDoctor: {
		"patients":     {PermissionRead, PermissionCreate, PermissionUpdate},
		"doctors":      {PermissionRead},
		"appointments": {PermissionRead, PermissionUpdate},
	},
	RoleReceptionist: {
		"patients":     {PermissionRead, PermissionCreate},
		"doctors":      {PermissionRead},
		"appointments": {PermissionRead, PermissionCreate, PermissionUpdate, PermissionDelete},
	},
}
