package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CreateUser stores a user whose password has already been hashed
func (db *DB) CreateUser(ctx context.Context, username, hashedPassword string, isAdmin bool) (*User, error) {
	user := &User{
		ID:             uuid.NewString(),
		Username:       username,
		HashedPassword: hashedPassword,
		IsAdmin:        isAdmin,
		CreatedAt:      time.Now().UTC(),
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO users (id, username, hashed_password, is_admin, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		user.ID, user.Username, user.HashedPassword, user.IsAdmin, user.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// GetUserByUsername retrieves a user by username
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	user := &User{}
	err := db.QueryRowContext(ctx,
		`SELECT id, username, hashed_password, is_admin, created_at FROM users WHERE username = $1`,
		username,
	).Scan(&user.ID, &user.Username, &user.HashedPassword, &user.IsAdmin, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// SetUserPassword replaces the stored hash, used by the seed script to reset the admin
func (db *DB) SetUserPassword(ctx context.Context, username, hashedPassword string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE users SET hashed_password = $1 WHERE username = $2`,
		hashedPassword, username,
	)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
