package models

// Lookup - общие поля справочников (сектор, страна, регион, город,
// квалификация, формат работы, опыт работы).
type Lookup struct {
	BaseModel
	Name        string `gorm:"size:150;not null" json:"name"`
	Slug        string `gorm:"size:180;not null;uniqueIndex" json:"slug"`
	Description string `gorm:"type:text" json:"description,omitempty"`
}

func (l *Lookup) GetID() string           { return l.ID }
func (l *Lookup) GetName() string         { return l.Name }
func (l *Lookup) GetSlug() string         { return l.Slug }
func (l *Lookup) SetSlug(slug string)     { l.Slug = slug }
func (l *Lookup) SetName(name string)     { l.Name = name }
func (l *Lookup) SetDescription(d string) { l.Description = d }

type Sector struct {
	Lookup
}

type Country struct {
	Lookup
	Code string `gorm:"size:3" json:"code,omitempty"`
}

type Province struct {
	Lookup
	CountryID *string  `gorm:"type:varchar(36);index" json:"countryId,omitempty"`
	Country   *Country `gorm:"constraint:OnDelete:SET NULL" json:"country,omitempty"`
}

type City struct {
	Lookup
	ProvinceID string    `gorm:"type:varchar(36);not null;index" json:"provinceId"`
	Province   *Province `gorm:"constraint:OnDelete:RESTRICT" json:"province,omitempty"`
}

type Qualification struct {
	Lookup
}

type WorkMode struct {
	Lookup
}

type WorkExperience struct {
	Lookup
	MinYears int `gorm:"not null" json:"minYears"`
	MaxYears int `gorm:"not null" json:"maxYears"`
}
