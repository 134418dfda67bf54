package database_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/jwalitptl/clinic-data/internal/database"
	"github.com/jwalitptl/clinic-data/internal/database/dbtest"
	"github.com/jwalitptl/clinic-data/internal/model"
	apperrors "github.com/jwalitptl/clinic-data/pkg/errors"
)

func TestSaveChangesStampsCreatedEntities(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	s := db.NewSession()

	country := &model.Country{Name: "Peru", IsoCode: "PE", NumericCode: "604"}
	country.Status = false
	s.Add(country)

	n, err := s.SaveChanges(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", country.ID.String())
	assert.Equal(t, dbtest.Now, country.CreatedAt)
	assert.True(t, country.Status)
	assert.Nil(t, country.UpdatedAt)
	assert.Nil(t, country.DeleteAt)

	var loaded model.Country
	require.NoError(t, s.DB(ctx).First(&loaded, "id = ?", country.ID).Error)
	assert.True(t, loaded.Status)
	assert.WithinDuration(t, dbtest.Now, loaded.CreatedAt, 0)
}

func TestSaveChangesStampsDeleteAtWhenStatusTurnsOff(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	g := dbtest.SeedGeography(t, db)

	s := db.NewSession()
	var country model.Country
	require.NoError(t, s.DB(ctx).First(&country, "id = ?", g.Country.ID).Error)
	require.NoError(t, s.Attach(&country))

	country.Status = false
	assert.Equal(t, 1, s.Pending())

	_, err := s.SaveChanges(ctx)
	require.NoError(t, err)
	require.NotNil(t, country.UpdatedAt)
	require.NotNil(t, country.DeleteAt)
	assert.Equal(t, dbtest.Now, *country.DeleteAt)

	err = s.DB(ctx).First(&model.Country{}, "id = ?", g.Country.ID).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var hidden model.Country
	require.NoError(t, s.Unfiltered(ctx).First(&hidden, "id = ?", g.Country.ID).Error)
	assert.False(t, hidden.Status)
	require.NotNil(t, hidden.DeleteAt)
}

func TestUpdateOnlyStampsUpdatedAtWhileActive(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	g := dbtest.SeedGeography(t, db)

	s := db.NewSession()
	var city model.City
	require.NoError(t, s.DB(ctx).First(&city, "id = ?", g.City.ID).Error)
	require.NoError(t, s.Attach(&city))
	city.Name = "Medellín"

	_, err := s.SaveChanges(ctx)
	require.NoError(t, err)
	require.NotNil(t, city.UpdatedAt)
	assert.Nil(t, city.DeleteAt)

	var reloaded model.City
	require.NoError(t, s.DB(ctx).First(&reloaded, "id = ?", g.City.ID).Error)
	assert.Equal(t, "Medellín", reloaded.Name)
	assert.Equal(t, g.City.MainPostalCode, reloaded.MainPostalCode)
}

func TestUntrackedUpdateTreatsStatusAsModified(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	g := dbtest.SeedGeography(t, db)

	detached := *g.Department
	detached.Status = false

	s := db.NewSession()
	s.Update(&detached)
	_, err := s.SaveChanges(ctx)
	require.NoError(t, err)
	require.NotNil(t, detached.DeleteAt)

	err = s.DB(ctx).First(&model.Department{}, "id = ?", g.Department.ID).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestSoftDeleteAndUnfiltered(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	dbtest.SeedGeography(t, db)

	s := db.NewSession()
	extra := &model.Country{Name: "Chile", IsoCode: "CL", NumericCode: "152"}
	s.Add(extra)
	_, err := s.SaveChanges(ctx)
	require.NoError(t, err)

	s.SoftDelete(extra)
	_, err = s.SaveChanges(ctx)
	require.NoError(t, err)

	var active []model.Country
	require.NoError(t, s.DB(ctx).Find(&active).Error)
	assert.Len(t, active, 1)

	var all []model.Country
	require.NoError(t, s.Unfiltered(ctx).Find(&all).Error)
	assert.Len(t, all, 2)

	var count int64
	require.NoError(t, s.DB(ctx).Model(&model.Country{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRemoveDeletesPhysicallyAndCascades(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	g := dbtest.SeedGeography(t, db)
	addr := dbtest.SeedAddress(t, db, g)

	s := db.NewSession()
	s.Remove(g.Country)
	_, err := s.SaveChanges(ctx)
	require.NoError(t, err)
	assert.False(t, g.Country.Status)
	require.NotNil(t, g.Country.DeleteAt)

	var departments, cities, hoods int64
	require.NoError(t, s.Unfiltered(ctx).Model(&model.Department{}).Count(&departments).Error)
	require.NoError(t, s.Unfiltered(ctx).Model(&model.City{}).Count(&cities).Error)
	require.NoError(t, s.Unfiltered(ctx).Model(&model.Neighborhood{}).Count(&hoods).Error)
	assert.Zero(t, departments)
	assert.Zero(t, cities)
	assert.Zero(t, hoods)

	var kept model.Address
	require.NoError(t, s.DB(ctx).First(&kept, "id = ?", addr.ID).Error)
	assert.Nil(t, kept.CountryID)
	assert.Nil(t, kept.NeighborhoodID)
}

func TestRemoveOfAddedEntityForgetsIt(t *testing.T) {
	db := dbtest.New(t)
	s := db.NewSession()

	c := &model.Country{Name: "Ecuador", IsoCode: "EC", NumericCode: "218"}
	s.Add(c)
	s.Remove(c)

	_, err := s.State(c)
	assert.ErrorIs(t, err, database.ErrNotTracked)
	n, err := s.SaveChanges(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestUpdateMissingRowIsNotFound(t *testing.T) {
	db := dbtest.New(t)
	s := db.NewSession()

	ghost := &model.Country{Name: "Atlantis", IsoCode: "AT", NumericCode: "000"}
	ghost.ID = [16]byte{1}
	s.Update(ghost)

	_, err := s.SaveChanges(context.Background())
	assert.True(t, apperrors.IsNotFound(err))
}

func TestSaveChangesWritesAuditLog(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	g := dbtest.SeedGeography(t, db)

	s := db.NewSession()
	s.SoftDelete(g.Neighborhood)
	_, err := s.SaveChanges(ctx)
	require.NoError(t, err)

	var logs []model.AuditLog
	require.NoError(t, s.DB(ctx).Find(&logs, "entity_type = ? AND entity_id = ?", "neighborhoods", g.Neighborhood.ID.String()).Error)
	require.Len(t, logs, 2)

	byAction := map[string]model.AuditLog{}
	for _, l := range logs {
		byAction[l.Action] = l
	}
	require.Contains(t, byAction, model.AuditActionCreate)
	require.Contains(t, byAction, model.AuditActionSoftDelete)
	assert.Contains(t, byAction[model.AuditActionSoftDelete].Changes, `"status":false`)
}

func TestAuditLogCanBeDisabled(t *testing.T) {
	db := dbtest.New(t, database.Options{SQLLogLevel: "silent"})
	dbtest.SeedGeography(t, db)

	var count int64
	require.NoError(t, db.Gorm().Model(&model.AuditLog{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestAmbientTransactionRollback(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	s := db.NewSession()

	require.NoError(t, s.Begin(ctx))
	assert.ErrorIs(t, s.Begin(ctx), database.ErrTransactionActive)

	s.Add(&model.Country{Name: "Bolivia", IsoCode: "BO", NumericCode: "068"})
	_, err := s.SaveChanges(ctx)
	require.NoError(t, err)

	var inside int64
	require.NoError(t, s.DB(ctx).Model(&model.Country{}).Count(&inside).Error)
	assert.Equal(t, int64(1), inside)

	require.NoError(t, s.Rollback())
	assert.ErrorIs(t, s.Rollback(), database.ErrNoTransaction)

	var after int64
	require.NoError(t, s.DB(ctx).Model(&model.Country{}).Count(&after).Error)
	assert.Zero(t, after)
}

func TestWithTxCommitsOrRollsBack(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	s := db.NewSession()

	err := s.WithTx(ctx, func(s *database.Session) error {
		s.Add(&model.Country{Name: "Uruguay", IsoCode: "UY", NumericCode: "858"})
		_, err := s.SaveChanges(ctx)
		return err
	})
	require.NoError(t, err)

	err = s.WithTx(ctx, func(s *database.Session) error {
		s.Add(&model.Country{Name: "Paraguay", IsoCode: "PY", NumericCode: "600"})
		if _, err := s.SaveChanges(ctx); err != nil {
			return err
		}
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)
	assert.False(t, s.InTransaction())

	var names []string
	require.NoError(t, s.DB(ctx).Model(&model.Country{}).Pluck("name", &names).Error)
	assert.Equal(t, []string{"Uruguay"}, names)
}

func TestWithTxReportsFailedRollback(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	s := db.NewSession()

	err := s.WithTx(ctx, func(s *database.Session) error {
		require.NoError(t, s.Rollback())
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)
	assert.ErrorIs(t, err, database.ErrNoTransaction)
	assert.False(t, s.InTransaction())
}

func TestSaveChangesOrdersParentsFirst(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	s := db.NewSession()

	country := &model.Country{Name: "Panama", IsoCode: "PA", NumericCode: "591"}
	country.ID = [16]byte{9}
	dep := &model.Department{Name: "Cocle", Code: "02", CountryID: country.ID}

	// child registered first
	s.Add(dep)
	s.Add(country)
	n, err := s.SaveChanges(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestPersonKindInvariant(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	g := dbtest.SeedGeography(t, db)
	addr := dbtest.SeedAddress(t, db, g)

	specialty := "cardiology"
	p := dbtest.NewPerson(model.PersonKindPatient, "ana", addr.ID)
	p.Doctor.Specialty = &specialty

	s := db.NewSession()
	s.Add(p)
	_, err := s.SaveChanges(ctx)
	assert.ErrorIs(t, err, model.ErrPersonPayloadMismatch)
}
