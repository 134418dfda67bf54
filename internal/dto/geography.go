package dto

import (
	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-data/internal/model"
)

type CountryDTO struct {
	BaseDTO
	Name        string `json:"name" validate:"required,max=100"`
	IsoCode     string `json:"iso_code" validate:"required,len=2"`
	NumericCode string `json:"numeric_code" validate:"required,numeric,len=3"`
}

func CountryToDTO(c *model.Country) *CountryDTO {
	return &CountryDTO{
		BaseDTO:     baseToDTO(c.Base),
		Name:        c.Name,
		IsoCode:     c.IsoCode,
		NumericCode: c.NumericCode,
	}
}

func CountryFromDTO(d *CountryDTO) *model.Country {
	return &model.Country{
		Base:        baseFromDTO(d.BaseDTO),
		Name:        d.Name,
		IsoCode:     d.IsoCode,
		NumericCode: d.NumericCode,
	}
}

func CountriesToDTO(in []*model.Country) []*CountryDTO {
	return mapSlice(in, CountryToDTO)
}

type DepartmentDTO struct {
	BaseDTO
	Name      string    `json:"name" validate:"required,max=100"`
	Code      string    `json:"code"`
	CountryID uuid.UUID `json:"country_id" validate:"required"`
}

func DepartmentToDTO(d *model.Department) *DepartmentDTO {
	return &DepartmentDTO{
		BaseDTO:   baseToDTO(d.Base),
		Name:      d.Name,
		Code:      d.Code,
		CountryID: d.CountryID,
	}
}

func DepartmentFromDTO(d *DepartmentDTO) *model.Department {
	return &model.Department{
		Base:      baseFromDTO(d.BaseDTO),
		Name:      d.Name,
		Code:      d.Code,
		CountryID: d.CountryID,
	}
}

type CityDTO struct {
	BaseDTO
	Name           string    `json:"name" validate:"required,max=100"`
	Code           string    `json:"code"`
	MainPostalCode string    `json:"main_postal_code" validate:"required"`
	DepartmentID   uuid.UUID `json:"department_id" validate:"required"`
}

func CityToDTO(c *model.City) *CityDTO {
	return &CityDTO{
		BaseDTO:        baseToDTO(c.Base),
		Name:           c.Name,
		Code:           c.Code,
		MainPostalCode: c.MainPostalCode,
		DepartmentID:   c.DepartmentID,
	}
}

func CityFromDTO(d *CityDTO) *model.City {
	return &model.City{
		Base:           baseFromDTO(d.BaseDTO),
		Name:           d.Name,
		Code:           d.Code,
		MainPostalCode: d.MainPostalCode,
		DepartmentID:   d.DepartmentID,
	}
}

type NeighborhoodDTO struct {
	BaseDTO
	Name       string    `json:"name" validate:"required,max=100"`
	PostalCode string    `json:"postal_code" validate:"required"`
	ZoneType   string    `json:"zone_type" validate:"required,oneof=urban rural"`
	CityID     uuid.UUID `json:"city_id" validate:"required"`
}

func NeighborhoodToDTO(n *model.Neighborhood) *NeighborhoodDTO {
	return &NeighborhoodDTO{
		BaseDTO:    baseToDTO(n.Base),
		Name:       n.Name,
		PostalCode: n.PostalCode,
		ZoneType:   n.ZoneType,
		CityID:     n.CityID,
	}
}

func NeighborhoodFromDTO(d *NeighborhoodDTO) *model.Neighborhood {
	return &model.Neighborhood{
		Base:       baseFromDTO(d.BaseDTO),
		Name:       d.Name,
		PostalCode: d.PostalCode,
		ZoneType:   d.ZoneType,
		CityID:     d.CityID,
	}
}

type AddressDTO struct {
	BaseDTO
	AddressLine    string     `json:"address_line" validate:"required,max=200"`
	AddressLine2   *string    `json:"address_line2,omitempty"`
	PostalCode     string     `json:"postal_code" validate:"required"`
	AddressType    string     `json:"address_type" validate:"required"`
	CountryID      *uuid.UUID `json:"country_id,omitempty"`
	DepartmentID   *uuid.UUID `json:"department_id,omitempty"`
	CityID         *uuid.UUID `json:"city_id,omitempty"`
	NeighborhoodID *uuid.UUID `json:"neighborhood_id,omitempty"`

	// read-only, filled when the hierarchy was preloaded
	Country      *CountryDTO      `json:"country,omitempty"`
	Department   *DepartmentDTO   `json:"department,omitempty"`
	City         *CityDTO         `json:"city,omitempty"`
	Neighborhood *NeighborhoodDTO `json:"neighborhood,omitempty"`
}

func AddressToDTO(a *model.Address) *AddressDTO {
	d := &AddressDTO{
		BaseDTO:        baseToDTO(a.Base),
		AddressLine:    a.AddressLine,
		AddressLine2:   a.AddressLine2,
		PostalCode:     a.PostalCode,
		AddressType:    a.AddressType,
		CountryID:      a.CountryID,
		DepartmentID:   a.DepartmentID,
		CityID:         a.CityID,
		NeighborhoodID: a.NeighborhoodID,
	}
	if a.Country != nil {
		d.Country = CountryToDTO(a.Country)
	}
	if a.Department != nil {
		d.Department = DepartmentToDTO(a.Department)
	}
	if a.City != nil {
		d.City = CityToDTO(a.City)
	}
	if a.Neighborhood != nil {
		d.Neighborhood = NeighborhoodToDTO(a.Neighborhood)
	}
	return d
}

func AddressFromDTO(d *AddressDTO) *model.Address {
	return &model.Address{
		Base:           baseFromDTO(d.BaseDTO),
		AddressLine:    d.AddressLine,
		AddressLine2:   d.AddressLine2,
		PostalCode:     d.PostalCode,
		AddressType:    d.AddressType,
		CountryID:      d.CountryID,
		DepartmentID:   d.DepartmentID,
		CityID:         d.CityID,
		NeighborhoodID: d.NeighborhoodID,
	}
}
