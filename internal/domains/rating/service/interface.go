package service

import (
	"context"

	"github.com/google/uuid"

	"library-backend/internal/domains/rating/model"
)

// ServiceInterface exposes rating operations.
type ServiceInterface interface {
	RateBook(ctx context.Context, userID, bookID uuid.UUID, req model.RateBookRequest) (*model.RatingDTO, error)
	DeleteRating(ctx context.Context, userID, bookID uuid.UUID) error
	GetMyRating(ctx context.Context, userID, bookID uuid.UUID) (*model.RatingDTO, error)
	ListRatings(ctx context.Context, bookID uuid.UUID, req *model.ListRatingsRequest) (*model.ListRatingsResponse, error)
}
