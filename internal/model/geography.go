package model

import "github.com/google/uuid"

type Country struct {
	Base
	Name        string `gorm:"not null" json:"name"`
	IsoCode     string `gorm:"not null" json:"iso_code"`
	NumericCode string `gorm:"not null" json:"numeric_code"`
}

func (Country) TableName() string {
	return "countries"
}

type Department struct {
	Base
	Name      string    `gorm:"not null" json:"name"`
	Code      string    `json:"code"`
	CountryID uuid.UUID `gorm:"type:uuid;not null;index" json:"country_id"`

	Country *Country `gorm:"foreignKey:CountryID;constraint:OnDelete:CASCADE" json:"country,omitempty"`
}

func (Department) TableName() string {
	return "departments"
}

type City struct {
	Base
	Name           string    `gorm:"not null" json:"name"`
	Code           string    `json:"code"`
	MainPostalCode string    `gorm:"not null" json:"main_postal_code"`
	DepartmentID   uuid.UUID `gorm:"type:uuid;not null;index" json:"department_id"`

	Department *Department `gorm:"foreignKey:DepartmentID;constraint:OnDelete:CASCADE" json:"department,omitempty"`
}

func (City) TableName() string {
	return "cities"
}

type Neighborhood struct {
	Base
	Name       string    `gorm:"not null" json:"name"`
	PostalCode string    `gorm:"not null" json:"postal_code"`
	ZoneType   string    `gorm:"not null" json:"zone_type"`
	CityID     uuid.UUID `gorm:"type:uuid;not null;index" json:"city_id"`

	City *City `gorm:"foreignKey:CityID;constraint:OnDelete:CASCADE" json:"city,omitempty"`
}

func (Neighborhood) TableName() string {
	return "neighborhoods"
}

// Address is referenced by persons and providers. Every level of the
// geographic hierarchy is optional and is cleared when the referenced row goes away.
type Address struct {
	Base
	AddressLine    string     `gorm:"not null" json:"address_line"`
	AddressLine2   *string    `json:"address_line2,omitempty"`
	PostalCode     string     `gorm:"not null" json:"postal_code"`
	AddressType    string     `gorm:"not null" json:"address_type"`
	CountryID      *uuid.UUID `gorm:"type:uuid;index" json:"country_id,omitempty"`
	DepartmentID   *uuid.UUID `gorm:"type:uuid;index" json:"department_id,omitempty"`
	CityID         *uuid.UUID `gorm:"type:uuid;index" json:"city_id,omitempty"`
	NeighborhoodID *uuid.UUID `gorm:"type:uuid;index" json:"neighborhood_id,omitempty"`

	Country      *Country      `gorm:"foreignKey:CountryID;constraint:OnDelete:SET NULL" json:"country,omitempty"`
	Department   *Department   `gorm:"foreignKey:DepartmentID;constraint:OnDelete:SET NULL" json:"department,omitempty"`
	City         *City         `gorm:"foreignKey:CityID;constraint:OnDelete:SET NULL" json:"city,omitempty"`
	Neighborhood *Neighborhood `gorm:"foreignKey:NeighborhoodID;constraint:OnDelete:SET NULL" json:"neighborhood,omitempty"`
}

func (Address) TableName() string {
	return "addresses"
}
