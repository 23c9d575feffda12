package dto

type SubscribeRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
	Name  string `json:"name" validate:"omitempty,max=120"`
}

type UnsubscribeRequest struct {
	Token string `json:"token" validate:"required"`
}

type SubscriberListQuery struct {
	ListQuery
	Active *bool `form:"active"`
}
