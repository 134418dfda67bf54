package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentState string

const (
	AppointmentStateScheduled AppointmentState = "scheduled"
	AppointmentStateConfirmed AppointmentState = "confirmed"
	AppointmentStateCancelled AppointmentState = "cancelled"
	AppointmentStateCompleted AppointmentState = "completed"
)

// Appointment books a patient with a doctor. Both sides are persons rows of
// the matching kind.
type Appointment struct {
	Base
	PatientID       uuid.UUID        `gorm:"type:uuid;not null;index" json:"patient_id"`
	DoctorID        uuid.UUID        `gorm:"type:uuid;not null;index" json:"doctor_id"`
	ScheduledAt     time.Time        `gorm:"not null;index" json:"scheduled_at"`
	DurationMinutes int              `gorm:"not null;default:30" json:"duration_minutes"`
	Reason          string           `json:"reason"`
	Notes           string           `json:"notes,omitempty"`
	State           AppointmentState `gorm:"size:16;not null" json:"state"`

	Patient *Person `gorm:"foreignKey:PatientID;constraint:OnDelete:CASCADE" json:"patient,omitempty"`
	Doctor  *Person `gorm:"foreignKey:DoctorID;constraint:OnDelete:CASCADE" json:"doctor,omitempty"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// EndsAt returns the end of the booked slot
func (a *Appointment) EndsAt() time.Time {
	return a.ScheduledAt.Add(time.Duration(a.DurationMinutes) * time.Minute)
}

type AppointmentFilters struct {
	PatientID uuid.UUID
	DoctorID  uuid.UUID
	State     AppointmentState
	StartDate time.Time
	EndDate   time.Time
}
