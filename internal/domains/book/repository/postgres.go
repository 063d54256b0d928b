package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"library-backend/internal/domains/book/model"
)

// =====================================================
// POSTGRES REPOSITORY IMPLEMENTATION
// =====================================================

type postgresBookRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresBookRepository(pool *pgxpool.Pool) BookRepository {
	return &postgresBookRepository{pool: pool}
}

const bookColumns = `
	id, title, author, isbn,
	publisher, publication_date, genre, description, pages, language,
	total_copies, available_copies, status,
	shelf_location, cover_url, thumbnail_url,
	average_rating, total_ratings, times_borrowed,
	created_at, updated_at
`

func scanBook(row pgx.Row) (*model.Book, error) {
	b := &model.Book{}
	err := row.Scan(
		&b.ID,
		&b.Title,
		&b.Author,
		&b.ISBN,
		&b.Publisher,
		&b.PublicationDate,
		&b.Genre,
		&b.Description,
		&b.Pages,
		&b.Language,
		&b.TotalCopies,
		&b.AvailableCopies,
		&b.Status,
		&b.ShelfLocation,
		&b.CoverURL,
		&b.ThumbnailURL,
		&b.AverageRating,
		&b.TotalRatings,
		&b.TimesBorrowed,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// =====================================================
// CREATE
// =====================================================

func (r *postgresBookRepository) Create(ctx context.Context, book *model.Book) error {
	query := `
		INSERT INTO books (
			id, title, author, isbn,
			publisher, publication_date, genre, description, pages, language,
			total_copies, available_copies, status,
			shelf_location, cover_url, thumbnail_url,
			average_rating, total_ratings, times_borrowed,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21
		)
	`

	_, err := r.pool.Exec(ctx, query,
		book.ID,
		book.Title,
		book.Author,
		book.ISBN,
		book.Publisher,
		book.PublicationDate,
		book.Genre,
		book.Description,
		book.Pages,
		book.Language,
		book.TotalCopies,
		book.AvailableCopies,
		book.Status,
		book.ShelfLocation,
		book.CoverURL,
		book.ThumbnailURL,
		book.AverageRating,
		book.TotalRatings,
		book.TimesBorrowed,
		book.CreatedAt,
		book.UpdatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return model.ErrISBNExists
		}
		return fmt.Errorf("failed to create book: %w", err)
	}

	return nil
}

// =====================================================
// GET
// =====================================================

func (r *postgresBookRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1`

	book, err := scanBook(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to get book: %w", err)
	}
	return book, nil
}

func (r *postgresBookRepository) GetByISBN(ctx context.Context, isbn string) (*model.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE isbn = $1`

	book, err := scanBook(r.pool.QueryRow(ctx, query, isbn))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to get book by isbn: %w", err)
	}
	return book, nil
}

// =====================================================
// UPDATE
// =====================================================

func (r *postgresBookRepository) Update(ctx context.Context, book *model.Book) error {
	query := `
		UPDATE books SET
			title = $2,
			author = $3,
			publisher = $4,
			publication_date = $5,
			genre = $6,
			description = $7,
			pages = $8,
			language = $9,
			total_copies = $10,
			available_copies = $11,
			status = $12,
			shelf_location = $13,
			updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		book.ID,
		book.Title,
		book.Author,
		book.Publisher,
		book.PublicationDate,
		book.Genre,
		book.Description,
		book.Pages,
		book.Language,
		book.TotalCopies,
		book.AvailableCopies,
		book.Status,
		book.ShelfLocation,
	)
	if err != nil {
		return fmt.Errorf("failed to update book: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrBookNotFound
	}
	return nil
}

// lockBook reads the book row FOR UPDATE inside the given transaction.
func lockBook(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Book, error) {
	book, err := scanBook(tx.QueryRow(ctx,
		`SELECT `+bookColumns+` FROM books WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to lock book: %w", err)
	}
	return book, nil
}

// writeCounters persists counters and status for a row already locked
// in the same transaction.
func writeCounters(ctx context.Context, tx pgx.Tx, book *model.Book) error {
	_, err := tx.Exec(ctx, `
		UPDATE books SET
			total_copies = $2,
			available_copies = $3,
			status = $4,
			updated_at = NOW()
		WHERE id = $1
	`, book.ID, book.TotalCopies, book.AvailableCopies, book.Status)
	if err != nil {
		return fmt.Errorf("failed to update book counters: %w", err)
	}
	return nil
}

// AdjustCapacity re-bases the counters on a locked row so it never
// overwrites a borrow or return that committed after the caller last
// read the book.
func (r *postgresBookRepository) AdjustCapacity(ctx context.Context, id uuid.UUID, newTotal int) (*model.Book, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	book, err := lockBook(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if err := book.AdjustForCapacityChange(newTotal); err != nil {
		return nil, err
	}

	if err := writeCounters(ctx, tx, book); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit capacity change: %w", err)
	}
	return book, nil
}

func (r *postgresBookRepository) SetStatus(ctx context.Context, id uuid.UUID, status model.Status) (*model.Book, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	book, err := lockBook(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	book.ChangeStatus(status)

	if err := writeCounters(ctx, tx, book); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit status change: %w", err)
	}
	return book, nil
}

func (r *postgresBookRepository) UpdateCoverURLs(ctx context.Context, id uuid.UUID, coverURL, thumbnailURL *string) error {
	query := `
		UPDATE books SET
			cover_url = $2,
			thumbnail_url = $3,
			updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id, coverURL, thumbnailURL)
	if err != nil {
		return fmt.Errorf("failed to update cover urls: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrBookNotFound
	}
	return nil
}

// =====================================================
// DELETE
// =====================================================

func (r *postgresBookRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM books WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		// Loan rows reference books with ON DELETE RESTRICT, so a title
		// with circulation history cannot be removed.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return model.ErrBookHasLoans
		}
		return fmt.Errorf("failed to delete book: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrBookNotFound
	}
	return nil
}

// =====================================================
// LIST
// =====================================================

func (r *postgresBookRepository) List(ctx context.Context, req *model.ListBooksRequest) ([]*model.Book, int, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1

	if req.Genre != "" {
		conditions = append(conditions, fmt.Sprintf("genre = $%d", argIdx))
		args = append(args, req.Genre)
		argIdx++
	}
	if req.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, req.Status)
		argIdx++
	}
	if req.Author != "" {
		conditions = append(conditions, fmt.Sprintf("author ILIKE $%d", argIdx))
		args = append(args, "%"+req.Author+"%")
		argIdx++
	}
	if req.Language != "" {
		conditions = append(conditions, fmt.Sprintf("language = $%d", argIdx))
		args = append(args, req.Language)
		argIdx++
	}
	if req.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(title ILIKE $%d OR author ILIKE $%d OR isbn = $%d)",
			argIdx, argIdx, argIdx+1,
		))
		args = append(args, "%"+req.Search+"%", req.Search)
		argIdx += 2
	}
	if req.AvailableOnly {
		conditions = append(conditions, "status = 'available' AND available_copies > 0")
	}
	if req.YearFrom != nil {
		conditions = append(conditions, fmt.Sprintf("EXTRACT(YEAR FROM publication_date) >= $%d", argIdx))
		args = append(args, *req.YearFrom)
		argIdx++
	}
	if req.YearTo != nil {
		conditions = append(conditions, fmt.Sprintf("EXTRACT(YEAR FROM publication_date) <= $%d", argIdx))
		args = append(args, *req.YearTo)
		argIdx++
	}

	where := strings.Join(conditions, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM books WHERE ` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count books: %w", err)
	}

	// Sort column is whitelisted by DTO validation
	orderBy := fmt.Sprintf("%s %s", req.SortBy, strings.ToUpper(req.SortOrder))

	query := fmt.Sprintf(
		`SELECT %s FROM books WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		bookColumns, where, orderBy, argIdx, argIdx+1,
	)
	args = append(args, req.Limit, (req.Page-1)*req.Limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list books: %w", err)
	}
	defer rows.Close()

	books := []*model.Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed reading book rows: %w", err)
	}

	return books, total, nil
}

// =====================================================
// RANKINGS
// =====================================================

func (r *postgresBookRepository) Popular(ctx context.Context, limit int) ([]*model.Book, error) {
	query := `SELECT ` + bookColumns + `
		FROM books
		WHERE times_borrowed > 0
		ORDER BY times_borrowed DESC, title ASC
		LIMIT $1
	`

	return r.queryBooks(ctx, query, limit)
}

func (r *postgresBookRepository) TopRated(ctx context.Context, limit int) ([]*model.Book, error) {
	query := `SELECT ` + bookColumns + `
		FROM books
		WHERE total_ratings > 0
		ORDER BY average_rating DESC, total_ratings DESC, title ASC
		LIMIT $1
	`

	return r.queryBooks(ctx, query, limit)
}

func (r *postgresBookRepository) queryBooks(ctx context.Context, query string, args ...interface{}) ([]*model.Book, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query books: %w", err)
	}
	defer rows.Close()

	books := []*model.Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading book rows: %w", err)
	}
	return books, nil
}
