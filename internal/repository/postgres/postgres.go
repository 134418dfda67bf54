package postgres

import (
	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/clinic-data/internal/config"
	"github.com/jwalitptl/clinic-data/internal/database"
	"github.com/jwalitptl/clinic-data/internal/repository"
	"github.com/jwalitptl/clinic-data/pkg/security"
)

// Repositories groups every repository over one session, so writes made
// through any of them share the session's transaction.
type Repositories struct {
	Session      *database.Session
	Users        repository.UserRepository
	RBAC         repository.RBACRepository
	Persons      repository.PersonRepository
	Geography    repository.GeographyRepository
	Providers    repository.ProviderRepository
	Appointments repository.AppointmentRepository
	Audit        repository.AuditRepository
}

func NewRepositories(s *database.Session, cfg *config.Config) *Repositories {
	return &Repositories{
		Session:      s,
		Users:        NewUserRepository(s, security.NewBcryptHasher(cfg.Security.BcryptCost)),
		RBAC:         NewRBACRepository(s),
		Persons:      NewPersonRepository(s),
		Geography:    NewGeographyRepository(s, cache.New(cfg.Cache.TTL, cfg.Cache.CleanupInterval)),
		Providers:    NewProviderRepository(s),
		Appointments: NewAppointmentRepository(s),
		Audit:        NewAuditRepository(s),
	}
}
