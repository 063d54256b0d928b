package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Genre represents valid catalog genres
type Genre string

const (
	GenreFiction        Genre = "fiction"
	GenreNonFiction     Genre = "non_fiction"
	GenreMystery        Genre = "mystery"
	GenreRomance        Genre = "romance"
	GenreScienceFiction Genre = "science_fiction"
	GenreFantasy        Genre = "fantasy"
	GenreBiography      Genre = "biography"
	GenreHistory        Genre = "history"
	GenreScience        Genre = "science"
	GenreTechnology     Genre = "technology"
	GenreSelfHelp       Genre = "self_help"
	GenreChildren       Genre = "children"
	GenreYoungAdult     Genre = "young_adult"
	GenrePoetry         Genre = "poetry"
	GenreDrama          Genre = "drama"
	GenreOther          Genre = "other"
)

// Genres lists every valid genre value.
var Genres = []Genre{
	GenreFiction, GenreNonFiction, GenreMystery, GenreRomance,
	GenreScienceFiction, GenreFantasy, GenreBiography, GenreHistory,
	GenreScience, GenreTechnology, GenreSelfHelp, GenreChildren,
	GenreYoungAdult, GenrePoetry, GenreDrama, GenreOther,
}

func (g Genre) IsValid() bool {
	for _, v := range Genres {
		if g == v {
			return true
		}
	}
	return false
}

func (g Genre) String() string {
	return string(g)
}

// Status represents the circulation state of a title
type Status string

const (
	StatusAvailable   Status = "available"
	StatusBorrowed    Status = "borrowed" // every copy out on loan
	StatusReserved    Status = "reserved"
	StatusMaintenance Status = "maintenance"
	StatusLost        Status = "lost"
	StatusDamaged     Status = "damaged"
)

var Statuses = []Status{
	StatusAvailable, StatusBorrowed, StatusReserved,
	StatusMaintenance, StatusLost, StatusDamaged,
}

func (s Status) IsValid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// =====================================================
// ENTITY: Book
// =====================================================

type Book struct {
	ID     uuid.UUID `json:"id"`
	Title  string    `json:"title"`
	Author string    `json:"author"`
	ISBN   string    `json:"isbn"` // unique, 13 digits

	Publisher       *string    `json:"publisher,omitempty"`
	PublicationDate *time.Time `json:"publication_date,omitempty"`
	Genre           Genre      `json:"genre"`
	Description     *string    `json:"description,omitempty"`
	Pages           *int       `json:"pages,omitempty"`
	Language        string     `json:"language"`

	// Inventory counters. Invariant: 0 <= AvailableCopies <= TotalCopies.
	TotalCopies     int    `json:"total_copies"`
	AvailableCopies int    `json:"available_copies"`
	Status          Status `json:"status"`

	ShelfLocation *string `json:"shelf_location,omitempty"`
	CoverURL      *string `json:"cover_url,omitempty"`
	ThumbnailURL  *string `json:"thumbnail_url,omitempty"`

	// Rating aggregates, recomputed whenever a rating changes.
	AverageRating decimal.Decimal `json:"average_rating"` // 2dp, 0.00 when unrated
	TotalRatings  int             `json:"total_ratings"`

	// All-time borrow counter, bumped once per successful borrow.
	TimesBorrowed int `json:"times_borrowed"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsAvailable reports whether at least one copy can be borrowed right now.
func (b *Book) IsAvailable() bool {
	return b.Status == StatusAvailable && b.AvailableCopies > 0
}
