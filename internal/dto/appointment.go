package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-data/internal/model"
)

type AppointmentDTO struct {
	BaseDTO
	AuditDTO
	PatientID       uuid.UUID              `json:"patient_id" validate:"required"`
	DoctorID        uuid.UUID              `json:"doctor_id" validate:"required"`
	ScheduledAt     time.Time              `json:"scheduled_at" validate:"required"`
	DurationMinutes int                    `json:"duration_minutes" validate:"gte=0,lte=480"`
	Reason          string                 `json:"reason" validate:"max=500"`
	Notes           string                 `json:"notes,omitempty"`
	State           model.AppointmentState `json:"state" validate:"omitempty,oneof=scheduled confirmed cancelled completed"`

	Patient *PatientDTO `json:"patient,omitempty"`
	Doctor  *DoctorDTO  `json:"doctor,omitempty"`
}

func AppointmentToDTO(a *model.Appointment) *AppointmentDTO {
	d := &AppointmentDTO{
		BaseDTO:         baseToDTO(a.Base),
		AuditDTO:        auditToDTO(a.AuditFields),
		PatientID:       a.PatientID,
		DoctorID:        a.DoctorID,
		ScheduledAt:     a.ScheduledAt,
		DurationMinutes: a.DurationMinutes,
		Reason:          a.Reason,
		Notes:           a.Notes,
		State:           a.State,
	}
	if a.Patient != nil {
		d.Patient = PatientToDTO(a.Patient)
	}
	if a.Doctor != nil {
		d.Doctor = DoctorToDTO(a.Doctor)
	}
	return d
}

func AppointmentFromDTO(d *AppointmentDTO) *model.Appointment {
	return &model.Appointment{
		Base:            baseFromDTO(d.BaseDTO),
		PatientID:       d.PatientID,
		DoctorID:        d.DoctorID,
		ScheduledAt:     d.ScheduledAt,
		DurationMinutes: d.DurationMinutes,
		Reason:          d.Reason,
		Notes:           d.Notes,
		State:           d.State,
	}
}

func AppointmentsToDTO(in []*model.Appointment) []*AppointmentDTO {
	return mapSlice(in, AppointmentToDTO)
}

type ProviderDTO struct {
	BaseDTO
	ProviderCode      string             `json:"provider_code" validate:"required,max=20"`
	CompanyName       string             `json:"company_name" validate:"required,max=200"`
	TradeName         string             `json:"trade_name" validate:"max=200"`
	TaxID             string             `json:"tax_id" validate:"required,max=20"`
	ContactPersonName string             `json:"contact_person_name"`
	ContactEmail      string             `json:"contact_email" validate:"omitempty,email"`
	ContactPhone      string             `json:"contact_phone"`
	ProviderType      model.ProviderType `json:"provider_type" validate:"min=1,max=3"`
	PersonID          *uuid.UUID         `json:"person_id,omitempty"`
	AddressID         *uuid.UUID         `json:"address_id,omitempty"`
}

func ProviderToDTO(p *model.Provider) *ProviderDTO {
	return &ProviderDTO{
		BaseDTO:           baseToDTO(p.Base),
		ProviderCode:      p.ProviderCode,
		CompanyName:       p.CompanyName,
		TradeName:         p.TradeName,
		TaxID:             p.TaxID,
		ContactPersonName: p.ContactPersonName,
		ContactEmail:      p.ContactEmail,
		ContactPhone:      p.ContactPhone,
		ProviderType:      p.ProviderType,
		PersonID:          p.PersonID,
		AddressID:         p.AddressID,
	}
}

func ProviderFromDTO(d *ProviderDTO) *model.Provider {
	return &model.Provider{
		Base:              baseFromDTO(d.BaseDTO),
		ProviderCode:      d.ProviderCode,
		CompanyName:       d.CompanyName,
		TradeName:         d.TradeName,
		TaxID:             d.TaxID,
		ContactPersonName: d.ContactPersonName,
		ContactEmail:      d.ContactEmail,
		ContactPhone:      d.ContactPhone,
		ProviderType:      d.ProviderType,
		PersonID:          d.PersonID,
		AddressID:         d.AddressID,
	}
}

type AuditLogDTO struct {
	ID         uuid.UUID `json:"id"`
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	Action     string    `json:"action"`
	Changes    string    `json:"changes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func AuditLogToDTO(l *model.AuditLog) *AuditLogDTO {
	return &AuditLogDTO{
		ID:         l.ID,
		EntityType: l.EntityType,
		EntityID:   l.EntityID,
		Action:     l.Action,
		Changes:    l.Changes,
		CreatedAt:  l.CreatedAt,
	}
}

func AuditLogFromDTO(d *AuditLogDTO) *model.AuditLog {
	return &model.AuditLog{
		ID:         d.ID,
		EntityType: d.EntityType,
		EntityID:   d.EntityID,
		Action:     d.Action,
		Changes:    d.Changes,
		CreatedAt:  d.CreatedAt,
	}
}

// PageToDTO maps the items of a page and keeps its paging
func PageToDTO[S, D any](p model.Page[S], fn func(S) D) model.Page[D] {
	return model.Page[D]{
		Items:    mapSlice(p.Items, fn),
		Page:     p.Page,
		PageSize: p.PageSize,
		Total:    p.Total,
	}
}
