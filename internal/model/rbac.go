package model

import (
	"time"

	"github.com/google/uuid"
)

type Role struct {
	Base
	Name         string `gorm:"not null" json:"name"`
	Description  string `gorm:"not null" json:"description"`
	Priority     int    `json:"priority"`
	IsActive     bool   `json:"is_active"`
	IsSystemRole bool   `json:"is_system_role"`
}

func (Role) TableName() string {
	return "roles"
}

// PermissionType groups permissions by what they guard
type PermissionType int

const (
	PermissionTypeRead PermissionType = iota + 1
	PermissionTypeWrite
	PermissionTypeDelete
	PermissionTypeAdmin
)

type Permission struct {
	Base
	Name               string         `gorm:"not null" json:"name"`
	Description        string         `gorm:"not null" json:"description"`
	Type               PermissionType `json:"type"`
	PermissionValue    int            `json:"permission_value"`
	IsSystemPermission bool           `json:"is_system_permission"`
}

func (Permission) TableName() string {
	return "permissions"
}

type Form struct {
	Base
	Name         string `gorm:"not null" json:"name"`
	Code         string `gorm:"not null;index" json:"code"`
	Description  string `gorm:"not null" json:"description"`
	Route        string `gorm:"not null" json:"route"`
	Icon         string `gorm:"not null" json:"icon"`
	FormType     string `gorm:"not null" json:"form_type"`
	DisplayOrder int    `json:"display_order"`
	IsActive     bool   `json:"is_active"`
}

func (Form) TableName() string {
	return "forms"
}

type Module struct {
	Base
	Name         string `gorm:"not null" json:"name"`
	Code         string `gorm:"not null;index" json:"code"`
	Description  string `gorm:"not null" json:"description"`
	Icon         string `gorm:"not null" json:"icon"`
	DisplayOrder int    `json:"display_order"`
	IsActive     bool   `json:"is_active"`
}

func (Module) TableName() string {
	return "modules"
}

// RolUser grants a role to a user. Deleting the user or the role removes the
// grant; deleting the assigning user does not.
type RolUser struct {
	UserID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"user_id"`
	RolID            uuid.UUID  `gorm:"type:uuid;primaryKey;index" json:"rol_id"`
	AssignedByUserID *uuid.UUID `gorm:"type:uuid;index" json:"assigned_by_user_id,omitempty"`
	AssignedDate     time.Time  `gorm:"not null" json:"assigned_date"`
	IsActive         bool       `json:"is_active"`
	AuditFields

	User           *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Rol            *Role `gorm:"foreignKey:RolID;constraint:OnDelete:CASCADE" json:"rol,omitempty"`
	AssignedByUser *User `gorm:"foreignKey:AssignedByUserID;constraint:OnDelete:NO ACTION" json:"assigned_by_user,omitempty"`
}

func (RolUser) TableName() string {
	return "rol_users"
}

type FormModule struct {
	FormID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"form_id"`
	ModuleID uuid.UUID `gorm:"type:uuid;primaryKey;index" json:"module_id"`
	AuditFields

	Form   *Form   `gorm:"foreignKey:FormID;constraint:OnDelete:CASCADE" json:"form,omitempty"`
	Module *Module `gorm:"foreignKey:ModuleID;constraint:OnDelete:CASCADE" json:"module,omitempty"`
}

func (FormModule) TableName() string {
	return "form_modules"
}

// RolFormPermission says that a role may perform a permission on a form
type RolFormPermission struct {
	RolID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"rol_id"`
	FormID       uuid.UUID `gorm:"type:uuid;primaryKey;index" json:"form_id"`
	PermissionID uuid.UUID `gorm:"type:uuid;primaryKey;index" json:"permission_id"`
	AuditFields

	Rol        *Role       `gorm:"foreignKey:RolID;constraint:OnDelete:CASCADE" json:"rol,omitempty"`
	Form       *Form       `gorm:"foreignKey:FormID;constraint:OnDelete:CASCADE" json:"form,omitempty"`
	Permission *Permission `gorm:"foreignKey:PermissionID;constraint:OnDelete:CASCADE" json:"permission,omitempty"`
}

func (RolFormPermission) TableName() string {
	return "rol_form_permissions"
}
