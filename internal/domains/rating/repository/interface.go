package repository

import (
	"context"

	"github.com/google/uuid"

	"library-backend/internal/domains/rating/model"
)

// RatingRepository persists ratings and keeps the per-book aggregates
// (average_rating, total_ratings) consistent in the same transaction
// as every mutation.
type RatingRepository interface {
	// Upsert inserts or replaces the member's rating for a book, then
	// recomputes the book aggregates.
	Upsert(ctx context.Context, rating *model.Rating) error

	// Delete removes the member's rating and recomputes the aggregates,
	// falling back to 0.00 / 0 when the last rating goes away.
	Delete(ctx context.Context, userID, bookID uuid.UUID) error

	GetByUserAndBook(ctx context.Context, userID, bookID uuid.UUID) (*model.Rating, error)
	ListByBook(ctx context.Context, bookID uuid.UUID, req *model.ListRatingsRequest) ([]*model.Rating, int, error)
}
