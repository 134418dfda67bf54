package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-data/internal/database/dbtest"
	"github.com/jwalitptl/clinic-data/internal/model"
	apperrors "github.com/jwalitptl/clinic-data/pkg/errors"
)

type appointmentFixture struct {
	patient, doctor *model.Person
	nine            time.Time
}

func seedAppointmentParties(t *testing.T, r repos) appointmentFixture {
	t.Helper()
	return appointmentFixture{
		patient: dbtest.SeedPerson(t, r.db, r.geo, model.PersonKindPatient, "Ana"),
		doctor:  dbtest.SeedPerson(t, r.db, r.geo, model.PersonKindDoctor, "House"),
		nine:    time.Date(2024, time.March, 5, 9, 0, 0, 0, time.UTC),
	}
}

func TestAppointmentCreateDefaults(t *testing.T) {
	r := setup(t)
	ctx := context.Background()
	f := seedAppointmentParties(t, r)

	a := &model.Appointment{PatientID: f.patient.ID, DoctorID: f.doctor.ID, ScheduledAt: f.nine, Reason: "checkup"}
	require.NoError(t, r.appointments.Create(ctx, a))
	assert.Equal(t, 30, a.DurationMinutes)
	assert.Equal(t, model.AppointmentStateScheduled, a.State)

	loaded, err := r.appointments.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "checkup", loaded.Reason)
	assert.WithinDuration(t, f.nine, loaded.ScheduledAt, 0)
}

func TestAppointmentRejectsWrongKinds(t *testing.T) {
	r := setup(t)
	ctx := context.Background()
	f := seedAppointmentParties(t, r)

	// patient and doctor swapped
	err := r.appointments.Create(ctx, &model.Appointment{PatientID: f.doctor.ID, DoctorID: f.patient.ID, ScheduledAt: f.nine})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrBadRequest))

	list, err := r.appointments.List(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestAppointmentConflicts(t *testing.T) {
	r := setup(t)
	ctx := context.Background()
	f := seedAppointmentParties(t, r)

	first := &model.Appointment{PatientID: f.patient.ID, DoctorID: f.doctor.ID, ScheduledAt: f.nine, DurationMinutes: 60}
	require.NoError(t, r.appointments.Create(ctx, first))

	overlapping := &model.Appointment{PatientID: f.patient.ID, DoctorID: f.doctor.ID, ScheduledAt: f.nine.Add(30 * time.Minute)}
	err := r.appointments.Create(ctx, overlapping)
	assert.True(t, apperrors.IsConflict(err))

	adjacent := &model.Appointment{PatientID: f.patient.ID, DoctorID: f.doctor.ID, ScheduledAt: f.nine.Add(time.Hour)}
	require.NoError(t, r.appointments.Create(ctx, adjacent))

	// an appointment does not conflict with itself
	first.Notes = "bring results"
	require.NoError(t, r.appointments.Update(ctx, first))

	require.NoError(t, r.appointments.Cancel(ctx, first.ID))
	cancelled, err := r.appointments.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStateCancelled, cancelled.State)

	// the cancelled slot is free again
	conflict, err := r.appointments.CheckConflicts(ctx, f.doctor.ID, f.nine, f.nine.Add(time.Hour), nil)
	require.NoError(t, err)
	assert.False(t, conflict)
}

func TestAppointmentLists(t *testing.T) {
	r := setup(t)
	ctx := context.Background()
	f := seedAppointmentParties(t, r)
	other := dbtest.SeedPerson(t, r.db, r.geo, model.PersonKindPatient, "Beto")

	for i, p := range []*model.Person{f.patient, other, f.patient} {
		require.NoError(t, r.appointments.Create(ctx, &model.Appointment{
			PatientID:   p.ID,
			DoctorID:    f.doctor.ID,
			ScheduledAt: f.nine.Add(time.Duration(i) * 24 * time.Hour),
		}))
	}

	forDoctor, err := r.appointments.ListForDoctor(ctx, f.doctor.ID, f.nine, f.nine.Add(48*time.Hour))
	require.NoError(t, err)
	require.Len(t, forDoctor, 2)
	assert.True(t, forDoctor[0].ScheduledAt.Before(forDoctor[1].ScheduledAt))

	forPatient, err := r.appointments.ListForPatient(ctx, f.patient.ID, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Len(t, forPatient, 2)

	require.NoError(t, r.appointments.Cancel(ctx, forPatient[0].ID))
	cancelled, err := r.appointments.List(ctx, &model.AppointmentFilters{State: model.AppointmentStateCancelled})
	require.NoError(t, err)
	require.Len(t, cancelled, 1)
	assert.Equal(t, forPatient[0].ID, cancelled[0].ID)

	require.NoError(t, r.appointments.Delete(ctx, cancelled[0].ID))
	all, err := r.appointments.List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
