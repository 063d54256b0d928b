package repository

import (
	"context"

	"github.com/google/uuid"

	"library-backend/internal/domains/book/model"
)

// BookRepository persists catalog titles and their copy counters.
type BookRepository interface {
	Create(ctx context.Context, book *model.Book) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Book, error)
	GetByISBN(ctx context.Context, isbn string) (*model.Book, error)
	Update(ctx context.Context, book *model.Book) error

	// AdjustCapacity re-bases the copy counters for a new total inside
	// one transaction that locks the book row, so a borrow committing
	// in between cannot be overwritten.
	AdjustCapacity(ctx context.Context, id uuid.UUID, newTotal int) (*model.Book, error)

	// SetStatus moves a title between circulation states on a locked
	// row, reconciling the available/borrowed split against the
	// current counters.
	SetStatus(ctx context.Context, id uuid.UUID, status model.Status) (*model.Book, error)

	// Delete removes a title. Fails with ErrBookHasLoans when loan
	// history references it.
	Delete(ctx context.Context, id uuid.UUID) error

	List(ctx context.Context, req *model.ListBooksRequest) ([]*model.Book, int, error)

	// Popular ranks titles by the all-time borrow counter.
	Popular(ctx context.Context, limit int) ([]*model.Book, error)

	// TopRated ranks titles by average rating, rated titles only.
	TopRated(ctx context.Context, limit int) ([]*model.Book, error)

	UpdateCoverURLs(ctx context.Context, id uuid.UUID, coverURL, thumbnailURL *string) error
}
