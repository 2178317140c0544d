package dto

type CreateRegistrationDTO struct {
	EventID string `json:"eventId" binding:"required,objectid"`
}
