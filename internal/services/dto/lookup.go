package dto

// LookupRequest - тело запроса для любого справочника.
// Дополнительные поля используются только своей сущностью.
type LookupRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=150"`
	Description string `json:"description" validate:"max=2000"`

	// country
	Code string `json:"code" validate:"omitempty,min=2,max=3"`
	// province
	CountryID *string `json:"countryId" validate:"omitempty,uuid"`
	// city
	ProvinceID string `json:"provinceId" validate:"omitempty,uuid"`
	// workExperience
	MinYears *int `json:"minYears" validate:"omitempty,gte=0,lte=60"`
	MaxYears *int `json:"maxYears" validate:"omitempty,gte=0,lte=60"`
}
