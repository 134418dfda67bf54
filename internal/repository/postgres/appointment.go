package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-data/internal/database"
	"github.com/jwalitptl/clinic-data/internal/model"
	"github.com/jwalitptl/clinic-data/internal/repository"
	apperrors "github.com/jwalitptl/clinic-data/pkg/errors"
)

var _ repository.AppointmentRepository = (*AppointmentRepository)(nil)

// longest slot considered when looking for overlaps
const maxAppointmentSpan = 24 * time.Hour

type AppointmentRepository struct {
	*Store[model.Appointment, *model.Appointment]
	persons *Store[model.Person, *model.Person]
}

func NewAppointmentRepository(s *database.Session) *AppointmentRepository {
	return &AppointmentRepository{
		Store:   NewStore[model.Appointment](s, "appointment"),
		persons: NewStore[model.Person](s, "person"),
	}
}

// Create books the slot after checking that both persons have the right
// kind and that the doctor is free.
func (r *AppointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	if appointment.DurationMinutes <= 0 {
		appointment.DurationMinutes = 30
	}
	if appointment.State == "" {
		appointment.State = model.AppointmentStateScheduled
	}
	if err := r.checkParticipants(ctx, appointment); err != nil {
		return err
	}

	conflict, err := r.CheckConflicts(ctx, appointment.DoctorID, appointment.ScheduledAt, appointment.EndsAt(), nil)
	if err != nil {
		return err
	}
	if conflict {
		return apperrors.NewConflict("appointment", fmt.Errorf("doctor is not available at %s", appointment.ScheduledAt.Format(time.RFC3339)))
	}

	return r.Store.Create(ctx, appointment)
}

func (r *AppointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	if err := r.checkParticipants(ctx, appointment); err != nil {
		return err
	}
	if appointment.State != model.AppointmentStateCancelled {
		conflict, err := r.CheckConflicts(ctx, appointment.DoctorID, appointment.ScheduledAt, appointment.EndsAt(), &appointment.ID)
		if err != nil {
			return err
		}
		if conflict {
			return apperrors.NewConflict("appointment", nil)
		}
	}
	return r.Store.Update(ctx, appointment)
}

func (r *AppointmentRepository) checkParticipants(ctx context.Context, a *model.Appointment) error {
	want := []struct {
		id   uuid.UUID
		kind model.PersonKind
	}{
		{a.PatientID, model.PersonKindPatient},
		{a.DoctorID, model.PersonKindDoctor},
	}
	for _, w := range want {
		p, err := r.persons.Get(ctx, w.id)
		if err != nil {
			return err
		}
		if p.Kind != w.kind {
			return apperrors.NewBadRequest(fmt.Sprintf("person %s is a %s, not a %s", p.ID, p.Kind, w.kind), nil)
		}
	}
	return nil
}

func (r *AppointmentRepository) Cancel(ctx context.Context, id uuid.UUID) error {
	a, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := r.session.Attach(a); err != nil {
		return err
	}
	a.State = model.AppointmentStateCancelled
	return r.save(ctx, "cancel")
}

// CheckConflicts reports whether the doctor has a non-cancelled appointment
// overlapping [start, end).
func (r *AppointmentRepository) CheckConflicts(ctx context.Context, doctorID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (bool, error) {
	q := r.session.DB(ctx).
		Where("doctor_id = ? AND state <> ?", doctorID, model.AppointmentStateCancelled).
		Where("scheduled_at < ? AND scheduled_at > ?", end, start.Add(-maxAppointmentSpan))
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}
	candidates, err := r.Find(q)
	if err != nil {
		return false, err
	}
	for _, c := range candidates {
		if c.ScheduledAt.Before(end) && c.EndsAt().After(start) {
			return true, nil
		}
	}
	return false, nil
}

func (r *AppointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	q := r.session.DB(ctx)
	if filters != nil {
		if filters.PatientID != uuid.Nil {
			q = q.Where("patient_id = ?", filters.PatientID)
		}
		if filters.DoctorID != uuid.Nil {
			q = q.Where("doctor_id = ?", filters.DoctorID)
		}
		if filters.State != "" {
			q = q.Where("state = ?", filters.State)
		}
		if !filters.StartDate.IsZero() {
			q = q.Where("scheduled_at >= ?", filters.StartDate)
		}
		if !filters.EndDate.IsZero() {
			q = q.Where("scheduled_at < ?", filters.EndDate)
		}
	}
	return r.Find(q.Order("scheduled_at"))
}

func (r *AppointmentRepository) ListForDoctor(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]*model.Appointment, error) {
	return r.List(ctx, &model.AppointmentFilters{DoctorID: doctorID, StartDate: from, EndDate: to})
}

func (r *AppointmentRepository) ListForPatient(ctx context.Context, patientID uuid.UUID, from, to time.Time) ([]*model.Appointment, error) {
	return r.List(ctx, &model.AppointmentFilters{PatientID: patientID, StartDate: from, EndDate: to})
}
