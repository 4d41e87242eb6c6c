package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dsamate/dsamate/internal/identity"
	httperrors "github.com/dsamate/dsamate/pkg/http/errors"
)

// Users is the storage adapter for the identity store.
type Users struct {
	pool *pgxpool.Pool
}

// NewUsers wraps the identity pool for account access.
func NewUsers(pool *pgxpool.Pool) *Users {
	return &Users{pool: pool}
}

// Create inserts an account and its role grants in one transaction.
func (r *Users) Create(ctx context.Context, user identity.User, roles []string) (identity.User, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return identity.User{}, err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO users (email, password_hash)
		 VALUES ($1, $2)
		 RETURNING id, created_at`,
		user.Email, user.PasswordHash,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return identity.User{}, fmt.Errorf("user %q: %w", user.Email, httperrors.ErrAlreadyExists)
		}
		return identity.User{}, err
	}

	for _, role := range roles {
		if _, err := tx.Exec(ctx,
			`INSERT INTO user_roles (user_id, role) VALUES ($1, $2)
			 ON CONFLICT (user_id, role) DO NOTHING`,
			user.ID, role); err != nil {
			return identity.User{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return identity.User{}, err
	}
	return user, nil
}

// GetByEmail fetches an account by email.
func (r *Users) GetByEmail(ctx context.Context, email string) (identity.User, error) {
	var user identity.User
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, password_hash, created_at, last_login_at
		 FROM users WHERE email = $1`, email,
	).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.LastLoginAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return identity.User{}, fmt.Errorf("user: %w", httperrors.ErrNotFound)
		}
		return identity.User{}, err
	}
	return user, nil
}

// RolesFor returns the role grants for an account.
func (r *Users) RolesFor(ctx context.Context, userID uuid.UUID) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT role FROM user_roles WHERE user_id = $1", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []string
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

// UpdateLastLogin records the last login timestamp.
func (r *Users) UpdateLastLogin(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		"UPDATE users SET last_login_at = now() WHERE id = $1", userID)
	return err
}
