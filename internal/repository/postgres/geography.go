package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/clinic-data/internal/database"
	"github.com/jwalitptl/clinic-data/internal/model"
	"github.com/jwalitptl/clinic-data/internal/repository"
)

var _ repository.GeographyRepository = (*GeographyRepository)(nil)

// GeographyRepository caches hierarchy reads. Any write through the
// repository flushes the cache.
type GeographyRepository struct {
	session       *database.Session
	cache         *cache.Cache
	countries     *Store[model.Country, *model.Country]
	departments   *Store[model.Department, *model.Department]
	cities        *Store[model.City, *model.City]
	neighborhoods *Store[model.Neighborhood, *model.Neighborhood]
	addresses     *Store[model.Address, *model.Address]
}

// NewGeographyRepository uses c for hierarchy reads. A nil cache gets a
// private one with a ten minute TTL.
func NewGeographyRepository(s *database.Session, c *cache.Cache) *GeographyRepository {
	if c == nil {
		c = cache.New(10*time.Minute, 20*time.Minute)
	}
	return &GeographyRepository{
		session:       s,
		cache:         c,
		countries:     NewStore[model.Country](s, "country"),
		departments:   NewStore[model.Department](s, "department"),
		cities:        NewStore[model.City](s, "city"),
		neighborhoods: NewStore[model.Neighborhood](s, "neighborhood"),
		addresses:     NewStore[model.Address](s, "address"),
	}
}

// cached returns the value under key or loads, stores and returns it. Inside
// a transaction the cache is bypassed so uncommitted rows never reach it.
func cached[T any](r *GeographyRepository, key string, load func() (T, error)) (T, error) {
	if r.session.InTransaction() {
		return load()
	}
	if v, ok := r.cache.Get(key); ok {
		if t, ok := v.(T); ok {
			return t, nil
		}
	}
	t, err := load()
	if err != nil {
		return t, err
	}
	r.cache.SetDefault(key, t)
	return t, nil
}

func (r *GeographyRepository) flush(err error) error {
	if err == nil {
		r.cache.Flush()
	}
	return err
}

func (r *GeographyRepository) CreateCountry(ctx context.Context, country *model.Country) error {
	return r.flush(r.countries.Create(ctx, country))
}

func (r *GeographyRepository) CreateDepartment(ctx context.Context, department *model.Department) error {
	return r.flush(r.departments.Create(ctx, department))
}

func (r *GeographyRepository) CreateCity(ctx context.Context, city *model.City) error {
	return r.flush(r.cities.Create(ctx, city))
}

func (r *GeographyRepository) CreateNeighborhood(ctx context.Context, neighborhood *model.Neighborhood) error {
	return r.flush(r.neighborhoods.Create(ctx, neighborhood))
}

// DeleteCountry removes the country and, by cascade, its whole subtree
func (r *GeographyRepository) DeleteCountry(ctx context.Context, id uuid.UUID) error {
	return r.flush(r.countries.Delete(ctx, id))
}

func (r *GeographyRepository) Countries(ctx context.Context) ([]*model.Country, error) {
	return cached(r, "countries", func() ([]*model.Country, error) {
		return r.countries.Find(r.session.DB(ctx).Order("name"))
	})
}

func (r *GeographyRepository) Departments(ctx context.Context, countryID uuid.UUID) ([]*model.Department, error) {
	return cached(r, "departments:"+countryID.String(), func() ([]*model.Department, error) {
		return r.departments.Find(r.session.DB(ctx).Where("country_id = ?", countryID).Order("name"))
	})
}

func (r *GeographyRepository) Cities(ctx context.Context, departmentID uuid.UUID) ([]*model.City, error) {
	return cached(r, "cities:"+departmentID.String(), func() ([]*model.City, error) {
		return r.cities.Find(r.session.DB(ctx).Where("department_id = ?", departmentID).Order("name"))
	})
}

func (r *GeographyRepository) Neighborhoods(ctx context.Context, cityID uuid.UUID) ([]*model.Neighborhood, error) {
	return cached(r, "neighborhoods:"+cityID.String(), func() ([]*model.Neighborhood, error) {
		return r.neighborhoods.Find(r.session.DB(ctx).Where("city_id = ?", cityID).Order("name"))
	})
}

func (r *GeographyRepository) CreateAddress(ctx context.Context, address *model.Address) error {
	return r.addresses.Create(ctx, address)
}

func (r *GeographyRepository) GetAddress(ctx context.Context, id uuid.UUID) (*model.Address, error) {
	return r.addresses.First(r.session.DB(ctx).
		Preload("Country").Preload("Department").Preload("City").Preload("Neighborhood").
		Where("id = ?", id))
}

func (r *GeographyRepository) UpdateAddress(ctx context.Context, address *model.Address) error {
	return r.addresses.Update(ctx, address)
}
