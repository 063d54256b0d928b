package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// ========================================
// WRITE DTOs
// ========================================

// RateBookRequest creates or replaces the caller's rating for a title.
type RateBookRequest struct {
	Score  int    `json:"score" binding:"required"`
	Review string `json:"review,omitempty"`
}

func (r RateBookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Score,
			validation.Required.Error("score is required"),
			validation.Min(1).Error("score must be between 1 and 5"),
			validation.Max(5).Error("score must be between 1 and 5"),
		),
		validation.Field(&r.Review, validation.Length(0, 2000)),
	)
}

// ========================================
// READ DTOs
// ========================================

// RatingDTO is the public rating representation.
type RatingDTO struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	BookID    uuid.UUID `json:"book_id"`
	Score     int       `json:"score"`
	Review    *string   `json:"review,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *Rating) ToDTO() RatingDTO {
	return RatingDTO{
		ID:        r.ID,
		UserID:    r.UserID,
		BookID:    r.BookID,
		Score:     r.Score,
		Review:    r.Review,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// ListRatingsRequest pages through a title's ratings.
type ListRatingsRequest struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}

// SetDefaults sets default values for pagination
func (r *ListRatingsRequest) SetDefaults() {
	if r.Page == 0 {
		r.Page = 1
	}
	if r.Limit == 0 {
		r.Limit = 20
	}
}

func (r ListRatingsRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Page, validation.Min(1)),
		validation.Field(&r.Limit, validation.Min(1), validation.Max(100)),
	)
}

// PaginationMeta - pagination metadata
type PaginationMeta struct {
	CurrentPage int `json:"current_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
	TotalPages  int `json:"total_pages"`
}

// ListRatingsResponse is a paginated ratings page.
type ListRatingsResponse struct {
	Ratings    []RatingDTO    `json:"ratings"`
	Pagination PaginationMeta `json:"pagination"`
}
