package dto

type OfficeRequest struct {
	Name           string `json:"name" validate:"required,min=2,max=150"`
	Address        string `json:"address" validate:"max=255"`
	City           string `json:"city" validate:"max=120"`
	Phone          string `json:"phone" validate:"max=40"`
	Email          string `json:"email" validate:"omitempty,email"`
	Description    string `json:"description" validate:"max=2000"`
	IsHeadquarters bool   `json:"isHeadquarters"`
}
