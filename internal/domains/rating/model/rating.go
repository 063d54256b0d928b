package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =====================================================
// ENTITY: Rating
// =====================================================

// Rating is one member's score for a title. One rating per member and
// title; re-rating overwrites the previous score.
type Rating struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"user_id"`
	BookID uuid.UUID `json:"book_id"`

	Score  int     `json:"score"` // 1..5
	Review *string `json:"review,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AggregateRatings computes the average over the given scores, rounded
// to two decimals. No scores means 0.00, never null.
func AggregateRatings(scores []int) (decimal.Decimal, int) {
	if len(scores) == 0 {
		return decimal.Zero.Round(2), 0
	}

	sum := int64(0)
	for _, s := range scores {
		sum += int64(s)
	}

	avg := decimal.NewFromInt(sum).
		Div(decimal.NewFromInt(int64(len(scores)))).
		Round(2)
	return avg, len(scores)
}
