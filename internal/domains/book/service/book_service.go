package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"library-backend/internal/domains/book/model"
	"library-backend/internal/domains/book/repository"
	"library-backend/internal/infrastructure/storage"
	"library-backend/internal/shared/utils"
	"library-backend/pkg/cache"
	"library-backend/pkg/logger"
)

const (
	bookCacheTTL     = 10 * time.Minute
	bookCachePattern = "books:*"
)

type bookService struct {
	bookRepo  repository.BookRepository
	cache     cache.Cache
	storage   *storage.MinIOStorage
	processor *storage.ImageProcessor
}

func NewBookService(
	bookRepo repository.BookRepository,
	cacheClient cache.Cache,
	minioStorage *storage.MinIOStorage,
	processor *storage.ImageProcessor,
) ServiceInterface {
	return &bookService{
		bookRepo:  bookRepo,
		cache:     cacheClient,
		storage:   minioStorage,
		processor: processor,
	}
}

func bookCacheKey(id uuid.UUID) string {
	return fmt.Sprintf("books:detail:%s", id)
}

// invalidate drops the detail entry and every cached listing.
func (s *bookService) invalidate(ctx context.Context, id uuid.UUID) {
	if err := s.cache.DeletePattern(ctx, bookCachePattern); err != nil {
		logger.Warn("Failed to invalidate book cache", map[string]interface{}{
			"book_id": id.String(),
			"error":   err.Error(),
		})
	}
}

// =====================================================
// CREATE
// =====================================================

func (s *bookService) CreateBook(ctx context.Context, req model.CreateBookRequest) (*model.BookDTO, error) {
	// Step 1: Validate request
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Step 2: Derive counters. Available defaults to total so a fresh
	// title starts fully on the shelf.
	available := req.TotalCopies
	if req.AvailableCopies != nil {
		available = *req.AvailableCopies
	}

	status := model.StatusAvailable
	if available == 0 {
		status = model.StatusBorrowed
	}

	language := req.Language
	if language == "" {
		language = "English"
	}

	now := time.Now()
	book := &model.Book{
		ID:              uuid.New(),
		Title:           req.Title,
		Author:          req.Author,
		ISBN:            req.ISBN,
		Publisher:       utils.StringPtr(req.Publisher),
		PublicationDate: req.PublicationDate,
		Genre:           req.Genre,
		Description:     utils.StringPtr(req.Description),
		Pages:           req.Pages,
		Language:        language,
		TotalCopies:     req.TotalCopies,
		AvailableCopies: available,
		Status:          status,
		ShelfLocation:   utils.StringPtr(req.ShelfLocation),
		AverageRating:   decimal.Zero,
		TotalRatings:    0,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	// Step 3: Persist
	if err := s.bookRepo.Create(ctx, book); err != nil {
		return nil, err
	}

	s.invalidate(ctx, book.ID)

	dto := book.ToDTO()
	return &dto, nil
}

// =====================================================
// READ
// =====================================================

func (s *bookService) GetBook(ctx context.Context, id uuid.UUID) (*model.BookDTO, error) {
	// Cache-aside: serve the detail from Redis when present
	var cached model.BookDTO
	if hit, err := s.cache.Get(ctx, bookCacheKey(id), &cached); err == nil && hit {
		return &cached, nil
	}

	book, err := s.bookRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	dto := book.ToDTO()
	if err := s.cache.Set(ctx, bookCacheKey(id), dto, bookCacheTTL); err != nil {
		logger.Warn("Failed to cache book detail", map[string]interface{}{
			"book_id": id.String(),
			"error":   err.Error(),
		})
	}
	return &dto, nil
}

func (s *bookService) ListBooks(ctx context.Context, req *model.ListBooksRequest) (*model.ListBooksResponse, error) {
	req.SetDefaults()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	books, total, err := s.bookRepo.List(ctx, req)
	if err != nil {
		return nil, err
	}

	dtos := make([]model.BookDTO, 0, len(books))
	for _, b := range books {
		dtos = append(dtos, b.ToDTO())
	}

	totalPages := (total + req.Limit - 1) / req.Limit

	return &model.ListBooksResponse{
		Books: dtos,
		Pagination: model.PaginationMeta{
			CurrentPage: req.Page,
			PerPage:     req.Limit,
			Total:       total,
			TotalPages:  totalPages,
		},
	}, nil
}

func (s *bookService) PopularBooks(ctx context.Context, limit int) ([]model.BookDTO, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	books, err := s.bookRepo.Popular(ctx, limit)
	if err != nil {
		return nil, err
	}
	return toDTOs(books), nil
}

func (s *bookService) TopRatedBooks(ctx context.Context, limit int) ([]model.BookDTO, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	books, err := s.bookRepo.TopRated(ctx, limit)
	if err != nil {
		return nil, err
	}
	return toDTOs(books), nil
}

func toDTOs(books []*model.Book) []model.BookDTO {
	dtos := make([]model.BookDTO, 0, len(books))
	for _, b := range books {
		dtos = append(dtos, b.ToDTO())
	}
	return dtos
}

// =====================================================
// UPDATE
// =====================================================

func (s *bookService) UpdateBook(ctx context.Context, id uuid.UUID, req model.UpdateBookRequest) (*model.BookDTO, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	book, err := s.bookRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Partial update: only non-nil fields are applied
	if req.Title != nil {
		book.Title = *req.Title
	}
	if req.Author != nil {
		book.Author = *req.Author
	}
	if req.Publisher != nil {
		book.Publisher = req.Publisher
	}
	if req.PublicationDate != nil {
		book.PublicationDate = req.PublicationDate
	}
	if req.Genre != nil {
		book.Genre = *req.Genre
	}
	if req.Description != nil {
		book.Description = req.Description
	}
	if req.Pages != nil {
		book.Pages = req.Pages
	}
	if req.Language != nil {
		book.Language = *req.Language
	}
	if req.ShelfLocation != nil {
		book.ShelfLocation = req.ShelfLocation
	}

	if err := s.bookRepo.Update(ctx, book); err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)

	dto := book.ToDTO()
	return &dto, nil
}

func (s *bookService) UpdateCapacity(ctx context.Context, id uuid.UUID, req model.UpdateCapacityRequest) (*model.BookDTO, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// The re-base runs on a locked row so a borrow committing between
	// read and write cannot be overwritten.
	book, err := s.bookRepo.AdjustCapacity(ctx, id, req.TotalCopies)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)

	dto := book.ToDTO()
	return &dto, nil
}

func (s *bookService) UpdateStatus(ctx context.Context, id uuid.UUID, req model.UpdateStatusRequest) (*model.BookDTO, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	book, err := s.bookRepo.SetStatus(ctx, id, req.Status)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)

	dto := book.ToDTO()
	return &dto, nil
}

// =====================================================
// DELETE
// =====================================================

func (s *bookService) DeleteBook(ctx context.Context, id uuid.UUID) error {
	if err := s.bookRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)

	// Best effort: orphaned cover objects are harmless
	if s.storage != nil {
		if err := s.storage.DeleteByPrefix(ctx, fmt.Sprintf("covers/%s/", id)); err != nil {
			logger.Warn("Failed to delete cover objects", map[string]interface{}{
				"book_id": id.String(),
				"error":   err.Error(),
			})
		}
	}
	return nil
}

// =====================================================
// COVER UPLOAD
// =====================================================

func (s *bookService) UploadCover(ctx context.Context, id uuid.UUID, data []byte) (*model.BookDTO, error) {
	// The container tolerates a missing object store at startup, so the
	// handle can be nil here.
	if s.storage == nil {
		return nil, model.ErrStorageUnavailable
	}

	book, err := s.bookRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.processor.ValidateImage(data); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidImage, err)
	}

	variants, err := s.processor.ProcessCover(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidImage, err)
	}

	var coverURL, thumbURL *string
	for name, payload := range variants {
		key := fmt.Sprintf("covers/%s/%s.jpg", id, name)
		url, err := s.storage.Upload(ctx, key, payload, "image/jpeg")
		if err != nil {
			return nil, fmt.Errorf("failed to upload cover variant %s: %w", name, err)
		}
		switch name {
		case "cover":
			coverURL = &url
		case "thumbnail":
			thumbURL = &url
		}
	}

	if err := s.bookRepo.UpdateCoverURLs(ctx, id, coverURL, thumbURL); err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)

	book.CoverURL = coverURL
	book.ThumbnailURL = thumbURL
	dto := book.ToDTO()
	return &dto, nil
}
