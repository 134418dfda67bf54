package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-data/internal/model"
	apperrors "github.com/jwalitptl/clinic-data/pkg/errors"
	"github.com/jwalitptl/clinic-data/pkg/validator"
)

// PersonInfoDTO holds the columns every kind of person shares
type PersonInfoDTO struct {
	BaseDTO
	AuditDTO
	FirstName              string     `json:"first_name" validate:"required,max=100"`
	MiddleName             string     `json:"middle_name,omitempty" validate:"max=100"`
	LastName               string     `json:"last_name" validate:"required,max=100"`
	IdentificationNumber   string     `json:"identification_number" validate:"required,max=20"`
	Gender                 string     `json:"gender,omitempty"`
	BirthDate              *time.Time `json:"birth_date,omitempty"`
	Email                  string     `json:"email,omitempty" validate:"omitempty,email"`
	PhoneNumber            string     `json:"phone_number,omitempty"`
	AlternativePhoneNumber string     `json:"alternative_phone_number,omitempty"`
	Nationality            string     `json:"nationality,omitempty"`
	ProfilePicturePath     string     `json:"profile_picture_path,omitempty"`
	AddressID              uuid.UUID  `json:"address_id" validate:"required"`

	Address *AddressDTO `json:"address,omitempty"`
}

type ClientDetailsDTO struct {
	ClientNumber     *string    `json:"client_number,omitempty"`
	ClientType       *string    `json:"client_type,omitempty"`
	RegistrationDate *time.Time `json:"registration_date,omitempty"`
}

type EmployeeDetailsDTO struct {
	EmployeeCode *string             `json:"employee_code,omitempty"`
	Position     *string             `json:"position,omitempty"`
	Department   *string             `json:"department,omitempty"`
	HireDate     *time.Time          `json:"hire_date,omitempty"`
	Salary       *float64            `json:"salary,omitempty" validate:"omitempty,gte=0"`
	ContractType *model.ContractType `json:"contract_type,omitempty"`
}

type PatientDetailsDTO struct {
	Dni              *string `json:"dni,omitempty"`
	BloodType        *string `json:"blood_type,omitempty"`
	EmergencyContact *string `json:"emergency_contact,omitempty"`
}

type DoctorDetailsDTO struct {
	Specialty     *string `json:"specialty,omitempty"`
	LicenseNumber *string `json:"license_number,omitempty"`
}

// PersonDTO carries any kind of person; only the payload matching Kind is set
type PersonDTO struct {
	PersonInfoDTO
	Kind     model.PersonKind    `json:"kind" validate:"required,oneof=Person Client Employee Patient Doctor"`
	Client   *ClientDetailsDTO   `json:"client,omitempty"`
	Employee *EmployeeDetailsDTO `json:"employee,omitempty"`
	Patient  *PatientDetailsDTO  `json:"patient,omitempty"`
	Doctor   *DoctorDetailsDTO   `json:"doctor,omitempty"`
}

// PatientDTO is the flattened view of a Patient row
type PatientDTO struct {
	PersonInfoDTO
	PatientDetailsDTO
}

// DoctorDTO is the flattened view of a Doctor row
type DoctorDTO struct {
	PersonInfoDTO
	DoctorDetailsDTO
}

func personInfoToDTO(p *model.Person) PersonInfoDTO {
	d := PersonInfoDTO{
		BaseDTO:                baseToDTO(p.Base),
		AuditDTO:               auditToDTO(p.AuditFields),
		FirstName:              p.FirstName,
		MiddleName:             p.MiddleName,
		LastName:               p.LastName,
		IdentificationNumber:   p.IdentificationNumber,
		Gender:                 p.Gender,
		BirthDate:              p.BirthDate,
		Email:                  p.Email,
		PhoneNumber:            p.PhoneNumber,
		AlternativePhoneNumber: p.AlternativePhoneNumber,
		Nationality:            p.Nationality,
		ProfilePicturePath:     p.ProfilePicturePath,
		AddressID:              p.AddressID,
	}
	if p.Address != nil {
		d.Address = AddressToDTO(p.Address)
	}
	return d
}

func personInfoFromDTO(d PersonInfoDTO, kind model.PersonKind) *model.Person {
	return &model.Person{
		Base:                   baseFromDTO(d.BaseDTO),
		Kind:                   kind,
		FirstName:              d.FirstName,
		MiddleName:             d.MiddleName,
		LastName:               d.LastName,
		IdentificationNumber:   d.IdentificationNumber,
		Gender:                 d.Gender,
		BirthDate:              d.BirthDate,
		Email:                  d.Email,
		PhoneNumber:            d.PhoneNumber,
		AlternativePhoneNumber: d.AlternativePhoneNumber,
		Nationality:            d.Nationality,
		ProfilePicturePath:     d.ProfilePicturePath,
		AddressID:              d.AddressID,
	}
}

func PersonToDTO(p *model.Person) *PersonDTO {
	d := &PersonDTO{PersonInfoDTO: personInfoToDTO(p), Kind: p.Kind}
	switch p.Kind {
	case model.PersonKindClient:
		c := ClientDetailsDTO(p.Client)
		d.Client = &c
	case model.PersonKindEmployee:
		e := EmployeeDetailsDTO(p.Employee)
		d.Employee = &e
	case model.PersonKindPatient:
		pt := PatientDetailsDTO(p.Patient)
		d.Patient = &pt
	case model.PersonKindDoctor:
		doc := DoctorDetailsDTO(p.Doctor)
		d.Doctor = &doc
	}
	return d
}

// PersonFromDTO copies every payload present; Person.Validate rejects a
// payload that does not belong to Kind.
func PersonFromDTO(d *PersonDTO) *model.Person {
	p := personInfoFromDTO(d.PersonInfoDTO, d.Kind)
	if d.Client != nil {
		p.Client = model.ClientDetails(*d.Client)
	}
	if d.Employee != nil {
		p.Employee = model.EmployeeDetails(*d.Employee)
	}
	if d.Patient != nil {
		p.Patient = model.PatientDetails(*d.Patient)
	}
	if d.Doctor != nil {
		p.Doctor = model.DoctorDetails(*d.Doctor)
	}
	return p
}

func PersonsToDTO(in []*model.Person) []*PersonDTO {
	return mapSlice(in, PersonToDTO)
}

func PatientToDTO(p *model.Person) *PatientDTO {
	return &PatientDTO{
		PersonInfoDTO:     personInfoToDTO(p),
		PatientDetailsDTO: PatientDetailsDTO(p.Patient),
	}
}

func PatientFromDTO(d *PatientDTO) *model.Person {
	p := personInfoFromDTO(d.PersonInfoDTO, model.PersonKindPatient)
	p.Patient = model.PatientDetails(d.PatientDetailsDTO)
	return p
}

func DoctorToDTO(p *model.Person) *DoctorDTO {
	return &DoctorDTO{
		PersonInfoDTO:    personInfoToDTO(p),
		DoctorDetailsDTO: DoctorDetailsDTO(p.Doctor),
	}
}

func DoctorFromDTO(d *DoctorDTO) *model.Person {
	p := personInfoFromDTO(d.PersonInfoDTO, model.PersonKindDoctor)
	p.Doctor = model.DoctorDetails(d.DoctorDetailsDTO)
	return p
}

// UpdatePatientDTO is the partial update accepted for a patient
type UpdatePatientDTO struct {
	BaseDTO
	Name  string `json:"name" validate:"required,max=200"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required,numeric,max=20"`
	Dni   string `json:"dni" validate:"required,numeric,max=20"`
}

// Apply validates d and copies it onto p. The first word of Name becomes the
// first name and the rest, when present, the last name.
func (d *UpdatePatientDTO) Apply(v validator.Validator, p *model.Person) error {
	if err := v.Validate(d); err != nil {
		return err
	}
	if p.Kind != model.PersonKindPatient {
		return apperrors.NewBadRequest("person is not a patient", model.ErrPersonPayloadMismatch)
	}
	if d.ID != uuid.Nil && d.ID != p.ID {
		return apperrors.NewBadRequest("id does not match the patient", nil)
	}

	parts := strings.Fields(d.Name)
	if len(parts) == 0 {
		return apperrors.NewBadRequest("Name is blank", nil)
	}
	p.FirstName = parts[0]
	if len(parts) > 1 {
		p.LastName = strings.Join(parts[1:], " ")
	}
	p.Email = d.Email
	p.PhoneNumber = d.Phone
	dni := d.Dni
	p.Patient.Dni = &dni
	return nil
}
