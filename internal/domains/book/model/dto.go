package model

import (
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var isbnPattern = regexp.MustCompile(`^[0-9]{13}$`)

// ========================================
// WRITE DTOs (librarian)
// ========================================

// CreateBookRequest adds a title to the catalog.
type CreateBookRequest struct {
	Title           string     `json:"title" binding:"required"`
	Author          string     `json:"author" binding:"required"`
	ISBN            string     `json:"isbn" binding:"required"`
	Publisher       string     `json:"publisher,omitempty"`
	PublicationDate *time.Time `json:"publication_date,omitempty"`
	Genre           Genre      `json:"genre" binding:"required"`
	Description     string     `json:"description,omitempty"`
	Pages           *int       `json:"pages,omitempty"`
	Language        string     `json:"language,omitempty"`
	TotalCopies     int        `json:"total_copies"`
	// Optional override, defaults to TotalCopies when nil
	AvailableCopies *int   `json:"available_copies,omitempty"`
	ShelfLocation   string `json:"shelf_location,omitempty"`
}

func (r CreateBookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title,
			validation.Required.Error("title is required"),
			validation.Length(1, 500),
		),
		validation.Field(&r.Author,
			validation.Required.Error("author is required"),
			validation.Length(1, 300),
		),
		validation.Field(&r.ISBN,
			validation.Required.Error("isbn is required"),
			validation.Match(isbnPattern).Error("isbn must be exactly 13 digits"),
		),
		validation.Field(&r.Genre,
			validation.Required,
			validation.By(validateGenre),
		),
		validation.Field(&r.Pages,
			validation.When(r.Pages != nil, validation.Min(1)),
		),
		// Required so the zero value is rejected too; ozzo skips rules
		// on empty values otherwise.
		validation.Field(&r.TotalCopies,
			validation.Required.Error("total_copies is required"),
			validation.Min(1).Error("total_copies must be at least 1"),
		),
		validation.Field(&r.AvailableCopies,
			validation.When(r.AvailableCopies != nil,
				validation.Min(0),
				validation.Max(r.TotalCopies).Error("available_copies cannot exceed total_copies"),
			),
		),
	)
}

func validateGenre(value interface{}) error {
	g, _ := value.(Genre)
	if !g.IsValid() {
		return validation.NewError("validation_genre", "invalid genre")
	}
	return nil
}

// UpdateBookRequest partially updates catalog metadata.
// Copy counters change through UpdateCapacityRequest, not here.
type UpdateBookRequest struct {
	Title           *string    `json:"title,omitempty"`
	Author          *string    `json:"author,omitempty"`
	Publisher       *string    `json:"publisher,omitempty"`
	PublicationDate *time.Time `json:"publication_date,omitempty"`
	Genre           *Genre     `json:"genre,omitempty"`
	Description     *string    `json:"description,omitempty"`
	Pages           *int       `json:"pages,omitempty"`
	Language        *string    `json:"language,omitempty"`
	ShelfLocation   *string    `json:"shelf_location,omitempty"`
}

func (r UpdateBookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title,
			validation.When(r.Title != nil, validation.Length(1, 500)),
		),
		validation.Field(&r.Author,
			validation.When(r.Author != nil, validation.Length(1, 300)),
		),
		validation.Field(&r.Genre,
			validation.When(r.Genre != nil, validation.By(func(interface{}) error {
				if !r.Genre.IsValid() {
					return validation.NewError("validation_genre", "invalid genre")
				}
				return nil
			})),
		),
		validation.Field(&r.Pages,
			validation.When(r.Pages != nil, validation.Min(1)),
		),
	)
}

// UpdateCapacityRequest changes the number of owned copies.
type UpdateCapacityRequest struct {
	TotalCopies int `json:"total_copies"`
}

func (r UpdateCapacityRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.TotalCopies,
			validation.Required.Error("total_copies is required"),
			validation.Min(1).Error("total_copies must be at least 1"),
		),
	)
}

// UpdateStatusRequest moves a title into a manually managed state
// (maintenance, lost, damaged, reserved) or back to circulation.
type UpdateStatusRequest struct {
	Status Status `json:"status" binding:"required"`
}

func (r UpdateStatusRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Status,
			validation.Required,
			validation.By(func(interface{}) error {
				if !r.Status.IsValid() {
					return validation.NewError("validation_status", "invalid status")
				}
				return nil
			}),
		),
	)
}

// ========================================
// READ DTOs
// ========================================

// ListBooksRequest filters the catalog.
type ListBooksRequest struct {
	Genre         Genre  `form:"genre"`
	Status        Status `form:"status"`
	Author        string `form:"author"`
	Language      string `form:"language"`
	Search        string `form:"search"` // title, author or ISBN
	AvailableOnly bool   `form:"available_only"`
	YearFrom      *int   `form:"year_from"`
	YearTo        *int   `form:"year_to"`
	Page          int    `form:"page"`
	Limit         int    `form:"limit"`
	SortBy        string `form:"sort_by"`    // "created_at", "title", "author", "publication_date", "average_rating"
	SortOrder     string `form:"sort_order"` // "asc", "desc"
}

// SetDefaults sets default values for pagination
func (r *ListBooksRequest) SetDefaults() {
	if r.Page == 0 {
		r.Page = 1
	}
	if r.Limit == 0 {
		r.Limit = 20
	}
	if r.SortBy == "" {
		r.SortBy = "created_at"
	}
	if r.SortOrder == "" {
		r.SortOrder = "desc"
	}
}

func (r ListBooksRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Genre,
			validation.When(r.Genre != "", validation.By(func(interface{}) error {
				if !r.Genre.IsValid() {
					return validation.NewError("validation_genre", "invalid genre")
				}
				return nil
			})),
		),
		validation.Field(&r.Status,
			validation.When(r.Status != "", validation.By(func(interface{}) error {
				if !r.Status.IsValid() {
					return validation.NewError("validation_status", "invalid status")
				}
				return nil
			})),
		),
		validation.Field(&r.Page, validation.Min(1)),
		validation.Field(&r.Limit, validation.Min(1), validation.Max(100)),
		validation.Field(&r.SortBy,
			validation.In("created_at", "title", "author", "publication_date", "average_rating"),
		),
		validation.Field(&r.SortOrder, validation.In("asc", "desc")),
	)
}

// BookDTO is the public catalog representation.
type BookDTO struct {
	ID              uuid.UUID       `json:"id"`
	Title           string          `json:"title"`
	Author          string          `json:"author"`
	ISBN            string          `json:"isbn"`
	Publisher       *string         `json:"publisher,omitempty"`
	PublicationDate *time.Time      `json:"publication_date,omitempty"`
	Genre           Genre           `json:"genre"`
	Description     *string         `json:"description,omitempty"`
	Pages           *int            `json:"pages,omitempty"`
	Language        string          `json:"language"`
	TotalCopies     int             `json:"total_copies"`
	AvailableCopies int             `json:"available_copies"`
	Status          Status          `json:"status"`
	IsAvailable     bool            `json:"is_available"`
	ShelfLocation   *string         `json:"shelf_location,omitempty"`
	CoverURL        *string         `json:"cover_url,omitempty"`
	ThumbnailURL    *string         `json:"thumbnail_url,omitempty"`
	AverageRating   decimal.Decimal `json:"average_rating"`
	TotalRatings    int             `json:"total_ratings"`
	TimesBorrowed   int             `json:"times_borrowed"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (b *Book) ToDTO() BookDTO {
	return BookDTO{
		ID:              b.ID,
		Title:           b.Title,
		Author:          b.Author,
		ISBN:            b.ISBN,
		Publisher:       b.Publisher,
		PublicationDate: b.PublicationDate,
		Genre:           b.Genre,
		Description:     b.Description,
		Pages:           b.Pages,
		Language:        b.Language,
		TotalCopies:     b.TotalCopies,
		AvailableCopies: b.AvailableCopies,
		Status:          b.Status,
		IsAvailable:     b.IsAvailable(),
		ShelfLocation:   b.ShelfLocation,
		CoverURL:        b.CoverURL,
		ThumbnailURL:    b.ThumbnailURL,
		AverageRating:   b.AverageRating,
		TotalRatings:    b.TotalRatings,
		TimesBorrowed:   b.TimesBorrowed,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

// PaginationMeta - pagination metadata
type PaginationMeta struct {
	CurrentPage int `json:"current_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
	TotalPages  int `json:"total_pages"`
}

// ListBooksResponse is a paginated catalog page.
type ListBooksResponse struct {
	Books      []BookDTO      `json:"books"`
	Pagination PaginationMeta `json:"pagination"`
}
