package postgres_test

import (
	"testing"

	"github.com/jwalitptl/clinic-data/internal/database"
	"github.com/jwalitptl/clinic-data/internal/database/dbtest"
	"github.com/jwalitptl/clinic-data/internal/repository/postgres"
	"github.com/jwalitptl/clinic-data/pkg/security"
)

type repos struct {
	db           *database.DB
	session      *database.Session
	geo          dbtest.Geography
	users        *postgres.UserRepository
	rbac         *postgres.RBACRepository
	persons      *postgres.PersonRepository
	geography    *postgres.GeographyRepository
	providers    *postgres.ProviderRepository
	appointments *postgres.AppointmentRepository
	audit        *postgres.AuditRepository
}

// setup returns every repository sharing one session over a seeded database
func setup(t *testing.T) repos {
	t.Helper()

	db := dbtest.New(t)
	s := db.NewSession()
	return repos{
		db:           db,
		session:      s,
		geo:          dbtest.SeedGeography(t, db),
		users:        postgres.NewUserRepository(s, security.NewBcryptHasher(4)),
		rbac:         postgres.NewRBACRepository(s),
		persons:      postgres.NewPersonRepository(s),
		geography:    postgres.NewGeographyRepository(s, nil),
		providers:    postgres.NewProviderRepository(s),
		appointments: postgres.NewAppointmentRepository(s),
		audit:        postgres.NewAuditRepository(s),
	}
}
