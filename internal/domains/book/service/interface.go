package service

import (
	"context"

	"github.com/google/uuid"

	"library-backend/internal/domains/book/model"
)

// ServiceInterface exposes catalog operations.
type ServiceInterface interface {
	CreateBook(ctx context.Context, req model.CreateBookRequest) (*model.BookDTO, error)
	GetBook(ctx context.Context, id uuid.UUID) (*model.BookDTO, error)
	UpdateBook(ctx context.Context, id uuid.UUID, req model.UpdateBookRequest) (*model.BookDTO, error)
	UpdateCapacity(ctx context.Context, id uuid.UUID, req model.UpdateCapacityRequest) (*model.BookDTO, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, req model.UpdateStatusRequest) (*model.BookDTO, error)
	DeleteBook(ctx context.Context, id uuid.UUID) error
	ListBooks(ctx context.Context, req *model.ListBooksRequest) (*model.ListBooksResponse, error)
	PopularBooks(ctx context.Context, limit int) ([]model.BookDTO, error)
	TopRatedBooks(ctx context.Context, limit int) ([]model.BookDTO, error)
	UploadCover(ctx context.Context, id uuid.UUID, data []byte) (*model.BookDTO, error)
}
