package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"library-backend/internal/domains/rating/model"
	"library-backend/internal/domains/rating/repository"
	"library-backend/internal/shared/utils"
	"library-backend/pkg/cache"
	"library-backend/pkg/logger"
)

type ratingService struct {
	ratingRepo repository.RatingRepository
	cache      cache.Cache
}

func NewRatingService(
	ratingRepo repository.RatingRepository,
	cacheClient cache.Cache,
) ServiceInterface {
	return &ratingService{
		ratingRepo: ratingRepo,
		cache:      cacheClient,
	}
}

// invalidateBook drops cached book entries whose aggregates just moved.
func (s *ratingService) invalidateBook(ctx context.Context, bookID uuid.UUID) {
	if err := s.cache.DeletePattern(ctx, "books:*"); err != nil {
		logger.Warn("Failed to invalidate book cache", map[string]interface{}{
			"book_id": bookID.String(),
			"error":   err.Error(),
		})
	}
}

func (s *ratingService) RateBook(ctx context.Context, userID, bookID uuid.UUID, req model.RateBookRequest) (*model.RatingDTO, error) {
	// Step 1: Validate request
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Step 2: Reuse the existing row ID on a re-rate so the upsert
	// keeps created_at stable
	now := time.Now()
	rating := &model.Rating{
		ID:        uuid.New(),
		UserID:    userID,
		BookID:    bookID,
		Score:     req.Score,
		Review:    utils.StringPtr(req.Review),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if existing, err := s.ratingRepo.GetByUserAndBook(ctx, userID, bookID); err == nil {
		rating.ID = existing.ID
		rating.CreatedAt = existing.CreatedAt
	} else if !errors.Is(err, model.ErrRatingNotFound) {
		return nil, err
	}

	// Step 3: Persist; aggregates move in the same transaction
	if err := s.ratingRepo.Upsert(ctx, rating); err != nil {
		return nil, err
	}
	s.invalidateBook(ctx, bookID)

	dto := rating.ToDTO()
	return &dto, nil
}

func (s *ratingService) DeleteRating(ctx context.Context, userID, bookID uuid.UUID) error {
	if err := s.ratingRepo.Delete(ctx, userID, bookID); err != nil {
		return err
	}
	s.invalidateBook(ctx, bookID)
	return nil
}

func (s *ratingService) GetMyRating(ctx context.Context, userID, bookID uuid.UUID) (*model.RatingDTO, error) {
	rating, err := s.ratingRepo.GetByUserAndBook(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}
	dto := rating.ToDTO()
	return &dto, nil
}

func (s *ratingService) ListRatings(ctx context.Context, bookID uuid.UUID, req *model.ListRatingsRequest) (*model.ListRatingsResponse, error) {
	req.SetDefaults()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ratings, total, err := s.ratingRepo.ListByBook(ctx, bookID, req)
	if err != nil {
		return nil, err
	}

	dtos := make([]model.RatingDTO, 0, len(ratings))
	for _, r := range ratings {
		dtos = append(dtos, r.ToDTO())
	}

	totalPages := (total + req.Limit - 1) / req.Limit

	return &model.ListRatingsResponse{
		Ratings: dtos,
		Pagination: model.PaginationMeta{
			CurrentPage: req.Page,
			PerPage:     req.Limit,
			Total:       total,
			TotalPages:  totalPages,
		},
	}, nil
}
