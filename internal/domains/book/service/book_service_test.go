package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-backend/internal/domains/book/model"
)

// =====================================================
// FAKES
// =====================================================

// fakeBookRepo keeps books in memory. Counter mutations run under one
// mutex, mirroring the row-locked transactions of the real repository.
type fakeBookRepo struct {
	mu    sync.Mutex
	books map[uuid.UUID]*model.Book
}

func newFakeBookRepo() *fakeBookRepo {
	return &fakeBookRepo{books: map[uuid.UUID]*model.Book{}}
}

func (f *fakeBookRepo) addBook(total, available int) uuid.UUID {
	id := uuid.New()
	status := model.StatusAvailable
	if available == 0 {
		status = model.StatusBorrowed
	}
	f.books[id] = &model.Book{
		ID:              id,
		TotalCopies:     total,
		AvailableCopies: available,
		Status:          status,
	}
	return id
}

// borrowOne stands in for a borrow transaction committing concurrently.
func (f *fakeBookRepo) borrowOne(id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	book, ok := f.books[id]
	if !ok {
		return model.ErrBookNotFound
	}
	return book.ApplyBorrowDelta()
}

func (f *fakeBookRepo) Create(_ context.Context, book *model.Book) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *book
	f.books[book.ID] = &cp
	return nil
}

func (f *fakeBookRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	book, ok := f.books[id]
	if !ok {
		return nil, model.ErrBookNotFound
	}
	cp := *book
	return &cp, nil
}

func (f *fakeBookRepo) GetByISBN(_ context.Context, isbn string) (*model.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.books {
		if b.ISBN == isbn {
			cp := *b
			return &cp, nil
		}
	}
	return nil, model.ErrBookNotFound
}

func (f *fakeBookRepo) Update(_ context.Context, book *model.Book) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.books[book.ID]; !ok {
		return model.ErrBookNotFound
	}
	cp := *book
	f.books[book.ID] = &cp
	return nil
}

func (f *fakeBookRepo) AdjustCapacity(_ context.Context, id uuid.UUID, newTotal int) (*model.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	book, ok := f.books[id]
	if !ok {
		return nil, model.ErrBookNotFound
	}
	if err := book.AdjustForCapacityChange(newTotal); err != nil {
		return nil, err
	}
	cp := *book
	return &cp, nil
}

func (f *fakeBookRepo) SetStatus(_ context.Context, id uuid.UUID, status model.Status) (*model.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	book, ok := f.books[id]
	if !ok {
		return nil, model.ErrBookNotFound
	}
	book.ChangeStatus(status)
	cp := *book
	return &cp, nil
}

func (f *fakeBookRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.books[id]; !ok {
		return model.ErrBookNotFound
	}
	delete(f.books, id)
	return nil
}

func (f *fakeBookRepo) List(context.Context, *model.ListBooksRequest) ([]*model.Book, int, error) {
	return nil, 0, nil
}

func (f *fakeBookRepo) Popular(context.Context, int) ([]*model.Book, error) {
	return nil, nil
}

func (f *fakeBookRepo) TopRated(context.Context, int) ([]*model.Book, error) {
	return nil, nil
}

func (f *fakeBookRepo) UpdateCoverURLs(context.Context, uuid.UUID, *string, *string) error {
	return nil
}

// fakeCache is a no-op cache; every read misses.
type fakeCache struct{}

func (fakeCache) Get(context.Context, string, interface{}) (bool, error) { return false, nil }

func (fakeCache) Set(context.Context, string, interface{}, time.Duration) error { return nil }

func (fakeCache) Delete(context.Context, ...string) error { return nil }

func (fakeCache) DeletePattern(context.Context, string) error { return nil }

func (fakeCache) Ping(context.Context) error { return nil }

// =====================================================
// TESTS
// =====================================================

func newTestBookService(repo *fakeBookRepo) ServiceInterface {
	return NewBookService(repo, fakeCache{}, nil, nil)
}

func TestCreateBook(t *testing.T) {
	ctx := context.Background()
	repo := newFakeBookRepo()
	svc := newTestBookService(repo)

	t.Run("available defaults to total", func(t *testing.T) {
		dto, err := svc.CreateBook(ctx, model.CreateBookRequest{
			Title:       "Piranesi",
			Author:      "Susanna Clarke",
			ISBN:        "9781635575637",
			Genre:       model.GenreFantasy,
			TotalCopies: 4,
		})
		require.NoError(t, err)
		assert.Equal(t, 4, dto.AvailableCopies)
		assert.Equal(t, model.StatusAvailable, dto.Status)
		assert.Equal(t, "English", dto.Language)
		assert.Equal(t, 0, dto.TimesBorrowed)
	})

	t.Run("zero total copies rejected", func(t *testing.T) {
		_, err := svc.CreateBook(ctx, model.CreateBookRequest{
			Title:       "Piranesi",
			Author:      "Susanna Clarke",
			ISBN:        "9781635575638",
			Genre:       model.GenreFantasy,
			TotalCopies: 0,
		})
		assert.Error(t, err)
	})
}

func TestUpdateCapacity(t *testing.T) {
	ctx := context.Background()

	t.Run("grow preserves the copies on loan", func(t *testing.T) {
		repo := newFakeBookRepo()
		svc := newTestBookService(repo)
		id := repo.addBook(5, 3) // 2 copies out

		dto, err := svc.UpdateCapacity(ctx, id, model.UpdateCapacityRequest{TotalCopies: 10})
		require.NoError(t, err)
		assert.Equal(t, 10, dto.TotalCopies)
		assert.Equal(t, 8, dto.AvailableCopies)
	})

	t.Run("zero total rejected before touching the repo", func(t *testing.T) {
		repo := newFakeBookRepo()
		svc := newTestBookService(repo)
		id := repo.addBook(3, 3)

		_, err := svc.UpdateCapacity(ctx, id, model.UpdateCapacityRequest{TotalCopies: 0})
		require.Error(t, err)

		book, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 3, book.TotalCopies)
	})

	t.Run("concurrent borrows survive a capacity change", func(t *testing.T) {
		repo := newFakeBookRepo()
		svc := newTestBookService(repo)
		id := repo.addBook(5, 5)

		// Three borrows and one capacity change race. Whatever the
		// interleaving, the re-base happens on the current counters, so
		// no committed borrow is overwritten.
		var wg sync.WaitGroup
		for i := 0; i < 3; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, repo.borrowOne(id))
			}()
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.UpdateCapacity(ctx, id, model.UpdateCapacityRequest{TotalCopies: 8})
			assert.NoError(t, err)
		}()
		wg.Wait()

		book, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 8, book.TotalCopies)
		assert.Equal(t, 5, book.AvailableCopies, "three copies stay out on loan")
	})
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()
	repo := newFakeBookRepo()
	svc := newTestBookService(repo)

	t.Run("moves into maintenance", func(t *testing.T) {
		id := repo.addBook(2, 2)
		dto, err := svc.UpdateStatus(ctx, id, model.UpdateStatusRequest{Status: model.StatusMaintenance})
		require.NoError(t, err)
		assert.Equal(t, model.StatusMaintenance, dto.Status)
	})

	t.Run("re-entering circulation with no copy lands on borrowed", func(t *testing.T) {
		id := repo.addBook(2, 0)
		_, err := svc.UpdateStatus(ctx, id, model.UpdateStatusRequest{Status: model.StatusMaintenance})
		require.NoError(t, err)

		dto, err := svc.UpdateStatus(ctx, id, model.UpdateStatusRequest{Status: model.StatusAvailable})
		require.NoError(t, err)
		assert.Equal(t, model.StatusBorrowed, dto.Status)
		assert.False(t, dto.IsAvailable)
	})
}

func TestUploadCoverStorageUnavailable(t *testing.T) {
	ctx := context.Background()
	repo := newFakeBookRepo()
	svc := newTestBookService(repo)
	id := repo.addBook(1, 1)

	// The container starts without an object store when MinIO is down;
	// uploads must fail cleanly instead of panicking.
	_, err := svc.UploadCover(ctx, id, []byte("not-an-image"))
	assert.ErrorIs(t, err, model.ErrStorageUnavailable)
}
