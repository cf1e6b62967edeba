package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/yaojiejia/portfolioAnalysis/internal/apperrors"
	"github.com/yaojiejia/portfolioAnalysis/internal/model"
)

// UserRepository provides data access methods for the users table.
type UserRepository struct {
	db sqlx.ExtContext
}

// NewUserRepository creates a new UserRepository with the provided database connection.
func NewUserRepository(db sqlx.ExtContext) *UserRepository {
	return &UserRepository{db: db}
}

type userRow struct {
	ID           string `db:"id"`
	Username     string `db:"username"`
	Email        string `db:"email"`
	PasswordHash string `db:"password_hash"`
	CreatedAt    string `db:"created_at"`
}

func (row userRow) toModel() (model.User, error) {
	createdAt, err := ParseTime(row.CreatedAt)
	if err != nil {
		return model.User{}, err
	}
	return model.User{
		ID:           row.ID,
		Username:     row.Username,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		CreatedAt:    createdAt,
	}, nil
}

// InsertUser creates a user. Returns apperrors.ErrDuplicateEntry when the
// username or email is already taken.
func (r *UserRepository) InsertUser(ctx context.Context, u *model.User) error {
	query := `
		INSERT INTO users (id, username, email, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, r.db.Rebind(query), u.ID, u.Username, u.Email, u.PasswordHash, FormatTime(u.CreatedAt))
	if isUniqueViolation(err) {
		return apperrors.ErrDuplicateEntry
	}
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// ExistsByUsernameOrEmail reports whether either value is already registered.
func (r *UserRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM users WHERE username = ? OR email = ?`
	if err := sqlx.GetContext(ctx, r.db, &count, r.db.Rebind(query), username, email); err != nil {
		return false, fmt.Errorf("failed to query users: %w", err)
	}
	return count > 0, nil
}

// GetUserByID returns apperrors.ErrUserNotFound when no row matches.
func (r *UserRepository) GetUserByID(ctx context.Context, id string) (model.User, error) {
	return r.getUser(ctx, `SELECT id, username, email, password_hash, created_at FROM users WHERE id = ?`, id)
}

// GetUserByEmail returns apperrors.ErrUserNotFound when no row matches.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	return r.getUser(ctx, `SELECT id, username, email, password_hash, created_at FROM users WHERE email = ?`, email)
}

func (r *UserRepository) getUser(ctx context.Context, query string, arg string) (model.User, error) {
	var row userRow
	err := sqlx.GetContext(ctx, r.db, &row, r.db.Rebind(query), arg)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, apperrors.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("failed to query users: %w", err)
	}
	return row.toModel()
}
