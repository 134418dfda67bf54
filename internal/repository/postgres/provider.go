package postgres

import (
	"context"

	"github.com/jwalitptl/clinic-data/internal/database"
	"github.com/jwalitptl/clinic-data/internal/model"
	"github.com/jwalitptl/clinic-data/internal/repository"
)

var _ repository.ProviderRepository = (*ProviderRepository)(nil)

type ProviderRepository struct {
	*Store[model.Provider, *model.Provider]
}

func NewProviderRepository(s *database.Session) *ProviderRepository {
	return &ProviderRepository{Store: NewStore[model.Provider](s, "provider")}
}

func (r *ProviderRepository) ListByType(ctx context.Context, providerType model.ProviderType) ([]*model.Provider, error) {
	return r.Find(r.session.DB(ctx).Where("provider_type = ?", providerType).Order("company_name"))
}
