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

	"library-backend/internal/domains/user/model"
)

// =====================================================
// POSTGRES REPOSITORY IMPLEMENTATION
// =====================================================

type postgresUserRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresUserRepository(pool *pgxpool.Pool) UserRepository {
	return &postgresUserRepository{pool: pool}
}

const userColumns = `
	id, email, username, password_hash,
	first_name, last_name, phone_number, address, date_of_birth,
	is_librarian, is_active_member, membership_date,
	created_at, updated_at
`

func scanUser(row pgx.Row) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Username,
		&u.PasswordHash,
		&u.FirstName,
		&u.LastName,
		&u.PhoneNumber,
		&u.Address,
		&u.DateOfBirth,
		&u.IsLibrarian,
		&u.IsActiveMember,
		&u.MembershipDate,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// =====================================================
// CREATE
// =====================================================

func (r *postgresUserRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (
			id, email, username, password_hash,
			first_name, last_name, phone_number, address, date_of_birth,
			is_librarian, is_active_member, membership_date,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Email,
		user.Username,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.PhoneNumber,
		user.Address,
		user.DateOfBirth,
		user.IsLibrarian,
		user.IsActiveMember,
		user.MembershipDate,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		// Check unique constraint violation
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if strings.Contains(pgErr.ConstraintName, "username") {
				return model.ErrUsernameExists
			}
			return model.ErrEmailExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// =====================================================
// GET
// =====================================================

func (r *postgresUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (r *postgresUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

// =====================================================
// UPDATE
// =====================================================

func (r *postgresUserRepository) Update(ctx context.Context, user *model.User) error {
	query := `
		UPDATE users SET
			email = $2,
			username = $3,
			password_hash = $4,
			first_name = $5,
			last_name = $6,
			phone_number = $7,
			address = $8,
			date_of_birth = $9,
			is_librarian = $10,
			is_active_member = $11,
			updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Email,
		user.Username,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.PhoneNumber,
		user.Address,
		user.DateOfBirth,
		user.IsLibrarian,
		user.IsActiveMember,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if strings.Contains(pgErr.ConstraintName, "username") {
				return model.ErrUsernameExists
			}
			return model.ErrEmailExists
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrUserNotFound
	}

	return nil
}

// =====================================================
// LIST (librarian directory)
// =====================================================

func (r *postgresUserRepository) List(ctx context.Context, req *model.ListUsersRequest) ([]*model.User, int, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1

	if req.IsLibrarian != nil {
		conditions = append(conditions, fmt.Sprintf("is_librarian = $%d", argIdx))
		args = append(args, *req.IsLibrarian)
		argIdx++
	}
	if req.IsActiveMember != nil {
		conditions = append(conditions, fmt.Sprintf("is_active_member = $%d", argIdx))
		args = append(args, *req.IsActiveMember)
		argIdx++
	}
	if req.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(email ILIKE $%d OR username ILIKE $%d OR first_name ILIKE $%d OR last_name ILIKE $%d)",
			argIdx, argIdx, argIdx, argIdx,
		))
		args = append(args, "%"+req.Search+"%")
		argIdx++
	}

	where := strings.Join(conditions, " AND ")

	// Count total
	var total int
	countQuery := `SELECT COUNT(*) FROM users WHERE ` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	// Sort column is whitelisted by DTO validation
	orderBy := fmt.Sprintf("%s %s", req.SortBy, strings.ToUpper(req.SortOrder))

	query := fmt.Sprintf(
		`SELECT %s FROM users WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		userColumns, where, orderBy, argIdx, argIdx+1,
	)
	args = append(args, req.Limit, (req.Page-1)*req.Limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []*model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed reading user rows: %w", err)
	}

	return users, total, nil
}

// =====================================================
// ACTIVE LOAN COUNT
// =====================================================

func (r *postgresUserRepository) CountActiveLoans(ctx context.Context, userID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM loans WHERE user_id = $1 AND status = 'borrowed'`

	var count int
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count active loans: %w", err)
	}
	return count, nil
}
