package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-data/internal/model"
)

// UserDTO never carries the password hash
type UserDTO struct {
	BaseDTO
	AuditDTO
	Email         string     `json:"email" validate:"required,email"`
	PersonID      uuid.UUID  `json:"person_id" validate:"required"`
	LastLoginDate *time.Time `json:"last_login_date,omitempty"`
}

func UserToDTO(u *model.User) *UserDTO {
	return &UserDTO{
		BaseDTO:       baseToDTO(u.Base),
		AuditDTO:      auditToDTO(u.AuditFields),
		Email:         u.Email,
		PersonID:      u.PersonID,
		LastLoginDate: u.LastLoginDate,
	}
}

func UserFromDTO(d *UserDTO) *model.User {
	return &model.User{
		Base:          baseFromDTO(d.BaseDTO),
		Email:         d.Email,
		PersonID:      d.PersonID,
		LastLoginDate: d.LastLoginDate,
	}
}

func UsersToDTO(in []*model.User) []*UserDTO {
	return mapSlice(in, UserToDTO)
}

// CreateUserDTO is accepted when a login is opened for a person
type CreateUserDTO struct {
	Email    string    `json:"email" validate:"required,email"`
	Password string    `json:"password" validate:"required,min=8,max=72"`
	PersonID uuid.UUID `json:"person_id" validate:"required"`
}

func (d *CreateUserDTO) ToModel() *model.User {
	return &model.User{Email: d.Email, Password: d.Password, PersonID: d.PersonID}
}
