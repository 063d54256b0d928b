package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	bookmodel "library-backend/internal/domains/book/model"
	"library-backend/internal/domains/rating/model"
	"library-backend/pkg/database"
)

// =====================================================
// POSTGRES REPOSITORY IMPLEMENTATION
// =====================================================

type postgresRatingRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRatingRepository(pool *pgxpool.Pool) RatingRepository {
	return &postgresRatingRepository{pool: pool}
}

const ratingColumns = `
	id, user_id, book_id, score, review, created_at, updated_at
`

func scanRating(row pgx.Row) (*model.Rating, error) {
	r := &model.Rating{}
	err := row.Scan(
		&r.ID,
		&r.UserID,
		&r.BookID,
		&r.Score,
		&r.Review,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// =====================================================
// UPSERT (transactional, recomputes aggregates)
// =====================================================

func (r *postgresRatingRepository) Upsert(ctx context.Context, rating *model.Rating) error {
	return database.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		// Step 1: Lock the book row so concurrent rating writes serialize
		// their aggregate recomputes
		if err := lockBook(ctx, tx, rating.BookID); err != nil {
			return err
		}

		// Step 2: One rating per member and title, re-rating overwrites
		query := `
			INSERT INTO ratings (id, user_id, book_id, score, review, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (user_id, book_id) DO UPDATE SET
				score = EXCLUDED.score,
				review = EXCLUDED.review,
				updated_at = NOW()
		`
		_, err := tx.Exec(ctx, query,
			rating.ID,
			rating.UserID,
			rating.BookID,
			rating.Score,
			rating.Review,
			rating.CreatedAt,
			rating.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert rating: %w", err)
		}

		// Step 3: Recompute aggregates inside the same transaction
		return recomputeAggregates(ctx, tx, rating.BookID)
	})
}

// =====================================================
// DELETE (transactional, recomputes aggregates)
// =====================================================

func (r *postgresRatingRepository) Delete(ctx context.Context, userID, bookID uuid.UUID) error {
	return database.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		if err := lockBook(ctx, tx, bookID); err != nil {
			return err
		}

		tag, err := tx.Exec(ctx,
			`DELETE FROM ratings WHERE user_id = $1 AND book_id = $2`, userID, bookID)
		if err != nil {
			return fmt.Errorf("failed to delete rating: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return model.ErrRatingNotFound
		}

		return recomputeAggregates(ctx, tx, bookID)
	})
}

// =====================================================
// READS
// =====================================================

func (r *postgresRatingRepository) GetByUserAndBook(ctx context.Context, userID, bookID uuid.UUID) (*model.Rating, error) {
	rating, err := scanRating(r.pool.QueryRow(ctx,
		`SELECT `+ratingColumns+` FROM ratings WHERE user_id = $1 AND book_id = $2`,
		userID, bookID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrRatingNotFound
		}
		return nil, fmt.Errorf("failed to get rating: %w", err)
	}
	return rating, nil
}

func (r *postgresRatingRepository) ListByBook(ctx context.Context, bookID uuid.UUID, req *model.ListRatingsRequest) ([]*model.Rating, int, error) {
	var total int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM ratings WHERE book_id = $1`, bookID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count ratings: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+ratingColumns+` FROM ratings
		 WHERE book_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		bookID, req.Limit, (req.Page-1)*req.Limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list ratings: %w", err)
	}
	defer rows.Close()

	ratings := []*model.Rating{}
	for rows.Next() {
		rating, err := scanRating(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan rating: %w", err)
		}
		ratings = append(ratings, rating)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed reading rating rows: %w", err)
	}

	return ratings, total, nil
}

// =====================================================
// HELPERS
// =====================================================

func lockBook(ctx context.Context, tx pgx.Tx, bookID uuid.UUID) error {
	var id uuid.UUID
	err := tx.QueryRow(ctx, `SELECT id FROM books WHERE id = $1 FOR UPDATE`, bookID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return bookmodel.ErrBookNotFound
		}
		return fmt.Errorf("failed to lock book: %w", err)
	}
	return nil
}

// recomputeAggregates recalculates average_rating and total_ratings
// from the surviving rating rows. The average lives in Go so the
// rounding matches AggregateRatings exactly.
func recomputeAggregates(ctx context.Context, tx pgx.Tx, bookID uuid.UUID) error {
	rows, err := tx.Query(ctx, `SELECT score FROM ratings WHERE book_id = $1`, bookID)
	if err != nil {
		return fmt.Errorf("failed to load scores: %w", err)
	}
	defer rows.Close()

	scores := []int{}
	for rows.Next() {
		var s int
		if err := rows.Scan(&s); err != nil {
			return fmt.Errorf("failed to scan score: %w", err)
		}
		scores = append(scores, s)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed reading score rows: %w", err)
	}

	avg, count := model.AggregateRatings(scores)

	_, err = tx.Exec(ctx,
		`UPDATE books SET average_rating = $2, total_ratings = $3, updated_at = NOW() WHERE id = $1`,
		bookID, avg, count)
	if err != nil {
		return fmt.Errorf("failed to update book aggregates: %w", err)
	}
	return nil
}
