// Package dbtest opens migrated in-memory sqlite databases for tests.
package dbtest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"

	"github.com/jwalitptl/clinic-data/internal/database"
	"github.com/jwalitptl/clinic-data/internal/model"
)

// Now is the fixed clock every test database stamps with
var Now = time.Date(2024, time.March, 4, 10, 30, 0, 0, time.UTC)

// New returns a migrated database backed by a private in-memory sqlite
// file with foreign keys enforced. opts.Now defaults to the fixed clock.
func New(t testing.TB, opts ...database.Options) *database.DB {
	t.Helper()

	o := database.Options{AuditLog: true, SQLLogLevel: "silent"}
	if len(opts) > 0 {
		o = opts[0]
	}
	if o.Now == nil {
		o.Now = func() time.Time { return Now }
	}

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := database.OpenDialector(sqlite.Open(dsn), o)
	require.NoError(t, err)

	sqlDB, err := db.Gorm().DB()
	require.NoError(t, err)
	// a shared in-memory database lives as long as one connection does, and a
	// single connection serializes writers
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Migrate(context.Background()))
	t.Cleanup(func() { db.Close() })
	return db
}

// Geography is a saved country → department → city → neighborhood chain
type Geography struct {
	Country      *model.Country
	Department   *model.Department
	City         *model.City
	Neighborhood *model.Neighborhood
}

// SeedGeography saves one full geographic chain
func SeedGeography(t testing.TB, db *database.DB) Geography {
	t.Helper()

	s := db.NewSession()
	country := &model.Country{Name: "Colombia", IsoCode: "CO", NumericCode: "170"}
	s.Add(country)
	_, err := s.SaveChanges(context.Background())
	require.NoError(t, err)

	dep := &model.Department{Name: "Antioquia", Code: "05", CountryID: country.ID}
	s.Add(dep)
	_, err = s.SaveChanges(context.Background())
	require.NoError(t, err)

	city := &model.City{Name: "Medellin", Code: "05001", MainPostalCode: "050001", DepartmentID: dep.ID}
	s.Add(city)
	_, err = s.SaveChanges(context.Background())
	require.NoError(t, err)

	hood := &model.Neighborhood{Name: "El Poblado", PostalCode: "050021", ZoneType: "urban", CityID: city.ID}
	s.Add(hood)
	_, err = s.SaveChanges(context.Background())
	require.NoError(t, err)

	return Geography{Country: country, Department: dep, City: city, Neighborhood: hood}
}

// SeedAddress saves an address pointing at g
func SeedAddress(t testing.TB, db *database.DB, g Geography) *model.Address {
	t.Helper()

	addr := &model.Address{
		AddressLine:    "Calle 10 # 43-12",
		PostalCode:     "050021",
		AddressType:    "home",
		CountryID:      &g.Country.ID,
		DepartmentID:   &g.Department.ID,
		CityID:         &g.City.ID,
		NeighborhoodID: &g.Neighborhood.ID,
	}
	s := db.NewSession()
	s.Add(addr)
	_, err := s.SaveChanges(context.Background())
	require.NoError(t, err)
	return addr
}

// NewPerson builds an unsaved person of the given kind living at addressID
func NewPerson(kind model.PersonKind, first string, addressID uuid.UUID) *model.Person {
	return &model.Person{
		Kind:                 kind,
		FirstName:            first,
		LastName:             "Tester",
		IdentificationNumber: uuid.NewString()[:12],
		Email:                first + "@clinic.test",
		AddressID:            addressID,
	}
}

// SeedPerson saves a person of the given kind with its own address
func SeedPerson(t testing.TB, db *database.DB, g Geography, kind model.PersonKind, first string) *model.Person {
	t.Helper()

	addr := SeedAddress(t, db, g)
	p := NewPerson(kind, first, addr.ID)
	s := db.NewSession()
	s.Add(p)
	_, err := s.SaveChanges(context.Background())
	require.NoError(t, err)
	return p
}

// SeedUser saves a person and a user for it. The password is stored as given.
func SeedUser(t testing.TB, db *database.DB, g Geography, email string) *model.User {
	t.Helper()

	p := SeedPerson(t, db, g, model.PersonKindEmployee, "emp")
	u := &model.User{Email: email, Password: "not-a-hash", PersonID: p.ID}
	s := db.NewSession()
	s.Add(u)
	_, err := s.SaveChanges(context.Background())
	require.NoError(t, err)
	return u
}
