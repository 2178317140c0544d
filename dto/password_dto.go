package dto

// ChangeMyPasswordDTO applies the same length rule as registration.
type ChangeMyPasswordDTO struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8,max=32,nefield=CurrentPassword"`
}
