package dto

type RegisterDTO struct {
	Username string `json:"username" binding:"required,notblank,min=4,max=10"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=32"`
	Avatar   string `json:"avatar" binding:"omitempty,url"`
	Role     string `json:"role" binding:"omitempty,oneof=organizer user"`
}

// CreateUserDTO is the admin-only variant of RegisterDTO.
type CreateUserDTO struct {
	Username string `json:"username" binding:"required,notblank,min=4,max=10"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=32"`
	Role     string `json:"role" binding:"required,oneof=admin organizer user"`
}

type LoginDTO struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshDTO is optional; the refreshToken cookie is used when the body is empty.
type RefreshDTO struct {
	RefreshToken string `json:"refreshToken"`
}
