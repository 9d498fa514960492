package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	domain "github.com/open-builders/gws-backend/internal/domain/user"
)

// UserRepository reads user profiles from Postgres. Rows are written by the account service.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository { return &UserRepository{db: db} }

// GetByID returns a user or domain.ErrProfileNotFound.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const q = `SELECT id, username, COALESCE(external_handle, ''), role, created_at FROM users WHERE id=$1`
	var u domain.User
	err := r.db.QueryRowContext(ctx, q, id).Scan(&u.ID, &u.Username, &u.ExternalHandle, &u.Role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select user: %w", err)
	}
	return &u, nil
}
