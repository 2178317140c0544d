package dto

import "time"

// CreateEventDTO arrives either as a JSON body or as the "data" field of a multipart form.
type CreateEventDTO struct {
	Title       string    `json:"title" binding:"required,notblank,min=4,max=50"`
	Description string    `json:"description" binding:"required,min=10,max=1000"`
	Location    string    `json:"location" binding:"required,notblank"`
	Date        time.Time `json:"date" binding:"required"`
	Capacity    int       `json:"capacity" binding:"required,gt=0"`
	IsPublished bool      `json:"isPublished"`
}

// UpdateEventDTO has no capacity field on purpose.
type UpdateEventDTO struct {
	Title       *string    `json:"title" binding:"omitempty,notblank,min=4,max=50"`
	Description *string    `json:"description" binding:"omitempty,min=10,max=1000"`
	Location    *string    `json:"location" binding:"omitempty,notblank"`
	Date        *time.Time `json:"date"`
	IsPublished *bool      `json:"isPublished"`
}
