package models

type Office struct {
	BaseModel
	Name           string `gorm:"size:150;not null" json:"name"`
	Slug           string `gorm:"size:180;not null;uniqueIndex" json:"slug"`
	Address        string `gorm:"size:255" json:"address,omitempty"`
	City           string `gorm:"size:120" json:"city,omitempty"`
	Phone          string `gorm:"size:40" json:"phone,omitempty"`
	Email          string `gorm:"size:255" json:"email,omitempty"`
	Description    string `gorm:"type:text" json:"description,omitempty"`
	IsHeadquarters bool   `json:"isHeadquarters"`
	ImageURL       string `json:"imageUrl,omitempty"`
	ThumbnailURL   string `json:"thumbnailUrl,omitempty"`
}

func (o *Office) GetID() string       { return o.ID }
func (o *Office) GetName() string     { return o.Name }
func (o *Office) GetSlug() string     { return o.Slug }
func (o *Office) SetSlug(slug string) { o.Slug = slug }
