package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PersonKind is the discriminator stored with every persons row
type PersonKind string

const (
	PersonKindPerson   PersonKind = "Person"
	PersonKindClient   PersonKind = "Client"
	PersonKindEmployee PersonKind = "Employee"
	PersonKindPatient  PersonKind = "Patient"
	PersonKindDoctor   PersonKind = "Doctor"
)

// Valid reports whether k is one of the known kinds
func (k PersonKind) Valid() bool {
	switch k {
	case PersonKindPerson, PersonKindClient, PersonKindEmployee, PersonKindPatient, PersonKindDoctor:
		return true
	}
	return false
}

var ErrPersonPayloadMismatch = errors.New("person payload does not match its kind")

// ContractType of an employee
type ContractType int

const (
	ContractTypeFullTime ContractType = iota + 1
	ContractTypePartTime
	ContractTypeTemporary
	ContractTypeContractor
)

type ClientDetails struct {
	ClientNumber     *string    `json:"client_number,omitempty"`
	ClientType       *string    `json:"client_type,omitempty"`
	RegistrationDate *time.Time `json:"registration_date,omitempty"`
}

func (d ClientDetails) empty() bool {
	return d.ClientNumber == nil && d.ClientType == nil && d.RegistrationDate == nil
}

type EmployeeDetails struct {
	EmployeeCode *string       `json:"employee_code,omitempty"`
	Position     *string       `json:"position,omitempty"`
	Department   *string       `json:"department,omitempty"`
	HireDate     *time.Time    `json:"hire_date,omitempty"`
	Salary       *float64      `gorm:"type:decimal(18,2)" json:"salary,omitempty"`
	ContractType *ContractType `json:"contract_type,omitempty"`
}

func (d EmployeeDetails) empty() bool {
	return d.EmployeeCode == nil && d.Position == nil && d.Department == nil &&
		d.HireDate == nil && d.Salary == nil && d.ContractType == nil
}

type PatientDetails struct {
	Dni              *string `json:"dni,omitempty"`
	BloodType        *string `json:"blood_type,omitempty"`
	EmergencyContact *string `json:"emergency_contact,omitempty"`
}

func (d PatientDetails) empty() bool {
	return d.Dni == nil && d.BloodType == nil && d.EmergencyContact == nil
}

type DoctorDetails struct {
	Specialty     *string `json:"specialty,omitempty"`
	LicenseNumber *string `json:"license_number,omitempty"`
}

func (d DoctorDetails) empty() bool {
	return d.Specialty == nil && d.LicenseNumber == nil
}

// Person is stored in a single table; Kind selects which payload is meaningful.
type Person struct {
	Base
	Kind                   PersonKind `gorm:"column:discriminator;size:8;not null;index" json:"kind"`
	FirstName              string     `gorm:"not null" json:"first_name"`
	MiddleName             string     `json:"middle_name"`
	LastName               string     `gorm:"not null" json:"last_name"`
	IdentificationNumber   string     `gorm:"not null;index" json:"identification_number"`
	Gender                 string     `json:"gender"`
	BirthDate              *time.Time `json:"birth_date,omitempty"`
	Email                  string     `json:"email"`
	PhoneNumber            string     `json:"phone_number"`
	AlternativePhoneNumber string     `json:"alternative_phone_number"`
	Nationality            string     `json:"nationality"`
	ProfilePicturePath     string     `json:"profile_picture_path"`
	AddressID              uuid.UUID  `gorm:"type:uuid;not null;index" json:"address_id"`

	Client   ClientDetails   `gorm:"embedded" json:"client"`
	Employee EmployeeDetails `gorm:"embedded" json:"employee"`
	Patient  PatientDetails  `gorm:"embedded" json:"patient"`
	Doctor   DoctorDetails   `gorm:"embedded" json:"doctor"`

	Address *Address `gorm:"foreignKey:AddressID;constraint:OnDelete:CASCADE" json:"address,omitempty"`
}

func (Person) TableName() string {
	return "persons"
}

// FullName joins the non-empty name parts
func (p *Person) FullName() string {
	name := p.FirstName
	if p.MiddleName != "" {
		name += " " + p.MiddleName
	}
	if p.LastName != "" {
		name += " " + p.LastName
	}
	return name
}

// Validate checks that only the payload belonging to Kind is populated
func (p *Person) Validate() error {
	if p.Kind == "" {
		p.Kind = PersonKindPerson
	}
	if !p.Kind.Valid() {
		return fmt.Errorf("unknown person kind %q", p.Kind)
	}

	foreign := map[PersonKind]bool{
		PersonKindClient:   !p.Client.empty(),
		PersonKindEmployee: !p.Employee.empty(),
		PersonKindPatient:  !p.Patient.empty(),
		PersonKindDoctor:   !p.Doctor.empty(),
	}
	for kind, populated := range foreign {
		if populated && kind != p.Kind {
			return fmt.Errorf("%w: %s row carries %s fields", ErrPersonPayloadMismatch, p.Kind, kind)
		}
	}
	return nil
}

func (p *Person) BeforeSave(tx *gorm.DB) error {
	return p.Validate()
}

func (p *Person) AsClient() (ClientDetails, bool) {
	return p.Client, p.Kind == PersonKindClient
}

func (p *Person) AsEmployee() (EmployeeDetails, bool) {
	return p.Employee, p.Kind == PersonKindEmployee
}

func (p *Person) AsPatient() (PatientDetails, bool) {
	return p.Patient, p.Kind == PersonKindPatient
}

func (p *Person) AsDoctor() (DoctorDetails, bool) {
	return p.Doctor, p.Kind == PersonKindDoctor
}

// ProviderType classifies a supplier
type ProviderType int

const (
	ProviderTypeGoods ProviderType = iota + 1
	ProviderTypeServices
	ProviderTypeMixed
)

type Provider struct {
	Base
	ProviderCode      string       `gorm:"not null" json:"provider_code"`
	CompanyName       string       `gorm:"not null" json:"company_name"`
	TradeName         string       `gorm:"not null" json:"trade_name"`
	TaxID             string       `gorm:"not null" json:"tax_id"`
	ContactPersonName string       `gorm:"not null" json:"contact_person_name"`
	ContactEmail      string       `gorm:"not null" json:"contact_email"`
	ContactPhone      string       `gorm:"not null" json:"contact_phone"`
	ProviderType      ProviderType `gorm:"not null" json:"provider_type"`
	PersonID          *uuid.UUID   `gorm:"type:uuid;index" json:"person_id,omitempty"`
	AddressID         *uuid.UUID   `gorm:"type:uuid;index" json:"address_id,omitempty"`

	Person  *Person  `gorm:"foreignKey:PersonID;constraint:OnDelete:SET NULL" json:"person,omitempty"`
	Address *Address `gorm:"foreignKey:AddressID;constraint:OnDelete:SET NULL" json:"address,omitempty"`
}

func (Provider) TableName() string {
	return "providers"
}
