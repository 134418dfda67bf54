package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-data/internal/model"
)

type RoleDTO struct {
	BaseDTO
	Name         string `json:"name" validate:"required,max=50"`
	Description  string `json:"description" validate:"max=200"`
	Priority     int    `json:"priority" validate:"gte=0"`
	IsActive     bool   `json:"is_active"`
	IsSystemRole bool   `json:"is_system_role"`
}

func RoleToDTO(r *model.Role) *RoleDTO {
	return &RoleDTO{
		BaseDTO:      baseToDTO(r.Base),
		Name:         r.Name,
		Description:  r.Description,
		Priority:     r.Priority,
		IsActive:     r.IsActive,
		IsSystemRole: r.IsSystemRole,
	}
}

func RoleFromDTO(d *RoleDTO) *model.Role {
	return &model.Role{
		Base:         baseFromDTO(d.BaseDTO),
		Name:         d.Name,
		Description:  d.Description,
		Priority:     d.Priority,
		IsActive:     d.IsActive,
		IsSystemRole: d.IsSystemRole,
	}
}

func RolesToDTO(in []*model.Role) []*RoleDTO {
	return mapSlice(in, RoleToDTO)
}

type PermissionDTO struct {
	BaseDTO
	Name               string               `json:"name" validate:"required,max=50"`
	Description        string               `json:"description" validate:"max=200"`
	Type               model.PermissionType `json:"type" validate:"min=1,max=4"`
	PermissionValue    int                  `json:"permission_value"`
	IsSystemPermission bool                 `json:"is_system_permission"`
}

func PermissionToDTO(p *model.Permission) *PermissionDTO {
	return &PermissionDTO{
		BaseDTO:            baseToDTO(p.Base),
		Name:               p.Name,
		Description:        p.Description,
		Type:               p.Type,
		PermissionValue:    p.PermissionValue,
		IsSystemPermission: p.IsSystemPermission,
	}
}

func PermissionFromDTO(d *PermissionDTO) *model.Permission {
	return &model.Permission{
		Base:               baseFromDTO(d.BaseDTO),
		Name:               d.Name,
		Description:        d.Description,
		Type:               d.Type,
		PermissionValue:    d.PermissionValue,
		IsSystemPermission: d.IsSystemPermission,
	}
}

type FormDTO struct {
	BaseDTO
	Name         string `json:"name" validate:"required,max=100"`
	Code         string `json:"code" validate:"required,max=50"`
	Description  string `json:"description"`
	Route        string `json:"route" validate:"required"`
	Icon         string `json:"icon"`
	FormType     string `json:"form_type"`
	DisplayOrder int    `json:"display_order"`
	IsActive     bool   `json:"is_active"`
}

func FormToDTO(f *model.Form) *FormDTO {
	return &FormDTO{
		BaseDTO:      baseToDTO(f.Base),
		Name:         f.Name,
		Code:         f.Code,
		Description:  f.Description,
		Route:        f.Route,
		Icon:         f.Icon,
		FormType:     f.FormType,
		DisplayOrder: f.DisplayOrder,
		IsActive:     f.IsActive,
	}
}

func FormFromDTO(d *FormDTO) *model.Form {
	return &model.Form{
		Base:         baseFromDTO(d.BaseDTO),
		Name:         d.Name,
		Code:         d.Code,
		Description:  d.Description,
		Route:        d.Route,
		Icon:         d.Icon,
		FormType:     d.FormType,
		DisplayOrder: d.DisplayOrder,
		IsActive:     d.IsActive,
	}
}

func FormsToDTO(in []*model.Form) []*FormDTO {
	return mapSlice(in, FormToDTO)
}

type ModuleDTO struct {
	BaseDTO
	Name         string `json:"name" validate:"required,max=100"`
	Code         string `json:"code" validate:"required,max=50"`
	Description  string `json:"description"`
	Icon         string `json:"icon"`
	DisplayOrder int    `json:"display_order"`
	IsActive     bool   `json:"is_active"`
}

func ModuleToDTO(m *model.Module) *ModuleDTO {
	return &ModuleDTO{
		BaseDTO:      baseToDTO(m.Base),
		Name:         m.Name,
		Code:         m.Code,
		Description:  m.Description,
		Icon:         m.Icon,
		DisplayOrder: m.DisplayOrder,
		IsActive:     m.IsActive,
	}
}

func ModuleFromDTO(d *ModuleDTO) *model.Module {
	return &model.Module{
		Base:         baseFromDTO(d.BaseDTO),
		Name:         d.Name,
		Code:         d.Code,
		Description:  d.Description,
		Icon:         d.Icon,
		DisplayOrder: d.DisplayOrder,
		IsActive:     d.IsActive,
	}
}

type RolUserDTO struct {
	UserID           uuid.UUID  `json:"user_id" validate:"required"`
	RolID            uuid.UUID  `json:"rol_id" validate:"required"`
	AssignedByUserID *uuid.UUID `json:"assigned_by_user_id,omitempty"`
	AssignedDate     time.Time  `json:"assigned_date"`
	IsActive         bool       `json:"is_active"`
	Status           bool       `json:"status"`
}

func RolUserToDTO(r *model.RolUser) *RolUserDTO {
	return &RolUserDTO{
		UserID:           r.UserID,
		RolID:            r.RolID,
		AssignedByUserID: r.AssignedByUserID,
		AssignedDate:     r.AssignedDate,
		IsActive:         r.IsActive,
		Status:           r.Status,
	}
}

func RolUserFromDTO(d *RolUserDTO) *model.RolUser {
	r := &model.RolUser{
		UserID:           d.UserID,
		RolID:            d.RolID,
		AssignedByUserID: d.AssignedByUserID,
		AssignedDate:     d.AssignedDate,
		IsActive:         d.IsActive,
	}
	r.Status = d.Status
	return r
}

type FormModuleDTO struct {
	FormID   uuid.UUID `json:"form_id" validate:"required"`
	ModuleID uuid.UUID `json:"module_id" validate:"required"`
	Status   bool      `json:"status"`
}

func FormModuleToDTO(f *model.FormModule) *FormModuleDTO {
	return &FormModuleDTO{FormID: f.FormID, ModuleID: f.ModuleID, Status: f.Status}
}

func FormModuleFromDTO(d *FormModuleDTO) *model.FormModule {
	f := &model.FormModule{FormID: d.FormID, ModuleID: d.ModuleID}
	f.Status = d.Status
	return f
}

type RolFormPermissionDTO struct {
	RolID        uuid.UUID `json:"rol_id" validate:"required"`
	FormID       uuid.UUID `json:"form_id" validate:"required"`
	PermissionID uuid.UUID `json:"permission_id" validate:"required"`
	Status       bool      `json:"status"`

	Form       *FormDTO       `json:"form,omitempty"`
	Permission *PermissionDTO `json:"permission,omitempty"`
}

func RolFormPermissionToDTO(r *model.RolFormPermission) *RolFormPermissionDTO {
	d := &RolFormPermissionDTO{RolID: r.RolID, FormID: r.FormID, PermissionID: r.PermissionID, Status: r.Status}
	if r.Form != nil {
		d.Form = FormToDTO(r.Form)
	}
	if r.Permission != nil {
		d.Permission = PermissionToDTO(r.Permission)
	}
	return d
}

func RolFormPermissionFromDTO(d *RolFormPermissionDTO) *model.RolFormPermission {
	r := &model.RolFormPermission{RolID: d.RolID, FormID: d.FormID, PermissionID: d.PermissionID}
	r.Status = d.Status
	return r
}
