package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-data/internal/database"
	"github.com/jwalitptl/clinic-data/internal/model"
	"github.com/jwalitptl/clinic-data/internal/repository"
	apperrors "github.com/jwalitptl/clinic-data/pkg/errors"
)

var _ repository.PersonRepository = (*PersonRepository)(nil)

type PersonRepository struct {
	*Store[model.Person, *model.Person]
}

func NewPersonRepository(s *database.Session) *PersonRepository {
	return &PersonRepository{Store: NewStore[model.Person](s, "person")}
}

// Create validates the kind payload before it reaches the database
func (r *PersonRepository) Create(ctx context.Context, person *model.Person) error {
	if err := validPerson(person); err != nil {
		return err
	}
	return r.Store.Create(ctx, person)
}

func (r *PersonRepository) Update(ctx context.Context, person *model.Person) error {
	if err := validPerson(person); err != nil {
		return err
	}
	return r.Store.Update(ctx, person)
}

func validPerson(p *model.Person) error {
	if err := p.Validate(); err != nil {
		if errors.Is(err, model.ErrPersonPayloadMismatch) || !p.Kind.Valid() {
			return apperrors.NewBadRequest("invalid person", err)
		}
		return err
	}
	return nil
}

func (r *PersonRepository) GetWithAddress(ctx context.Context, id uuid.UUID) (*model.Person, error) {
	return r.First(r.session.DB(ctx).Preload("Address").Where("id = ?", id))
}

func (r *PersonRepository) GetByIdentification(ctx context.Context, number string) (*model.Person, error) {
	return r.First(r.session.DB(ctx).Where("identification_number = ?", number))
}

func (r *PersonRepository) ListByKind(ctx context.Context, kind model.PersonKind, page model.Pagination) (model.Page[*model.Person], error) {
	q := r.session.DB(ctx).Where("discriminator = ?", kind).Order("last_name").Order("first_name")
	return r.ListPaged(ctx, q, page)
}

func (r *PersonRepository) ListDoctorsBySpecialty(ctx context.Context, specialty string) ([]*model.Person, error) {
	return r.Find(r.session.DB(ctx).
		Where("discriminator = ? AND specialty = ?", model.PersonKindDoctor, specialty).
		Order("last_name"))
}

func (r *PersonRepository) GetPatientByDni(ctx context.Context, dni string) (*model.Person, error) {
	return r.First(r.session.DB(ctx).Where("discriminator = ? AND dni = ?", model.PersonKindPatient, dni))
}
