package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/gw-newsletter/internal/models"
	"github.com/sbilibin2017/gw-newsletter/internal/txctx"
)

// ErrUserNotFound is returned when an update targets a missing user.
var ErrUserNotFound = errors.New("user not found")

type UserReadRepository struct {
	db *sqlx.DB
}

func NewUserReadRepository(db *sqlx.DB) *UserReadRepository {
	return &UserReadRepository{db: db}
}

// GetCredentials returns the stored hash for username, or nil when no such user exists.
func (r *UserReadRepository) GetCredentials(ctx context.Context, username string) (*models.UserCredentials, error) {
	const query = `
		SELECT user_id, password_hash
		FROM users
		WHERE username = $1
	`

	var creds models.UserCredentials
	err := sqlx.GetContext(ctx, txctx.Executor(ctx, r.db), &creds, query, username)

	// The hash itself is never logged.
	logQuery(query, []any{username}, creds.UserID, err)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &creds, nil
}

// GetUsername returns the username of userID.
func (r *UserReadRepository) GetUsername(ctx context.Context, userID uuid.UUID) (string, error) {
	const query = `
		SELECT username
		FROM users
		WHERE user_id = $1
	`

	var username string
	err := sqlx.GetContext(ctx, txctx.Executor(ctx, r.db), &username, query, userID)

	logQuery(query, []any{userID}, username, err)

	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrUserNotFound
	}
	return username, err
}

type UserWriteRepository struct {
	db *sqlx.DB
}

func NewUserWriteRepository(db *sqlx.DB) *UserWriteRepository {
	return &UserWriteRepository{db: db}
}

// Save creates a user, or replaces the password hash of an existing username.
func (r *UserWriteRepository) Save(ctx context.Context, userID uuid.UUID, username, passwordHash string) error {
	const query = `
		INSERT INTO users (user_id, username, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (username) DO UPDATE
		SET password_hash = EXCLUDED.password_hash,
		    updated_at = NOW()
	`

	res, err := txctx.Executor(ctx, r.db).ExecContext(ctx, query, userID, username, passwordHash)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}

	logQuery(query, []any{userID, username}, rowsAffected, err)

	return err
}

// UpdatePasswordHash replaces the stored hash of userID.
func (r *UserWriteRepository) UpdatePasswordHash(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	const query = `
		UPDATE users
		SET password_hash = $2, updated_at = NOW()
		WHERE user_id = $1
	`

	res, err := txctx.Executor(ctx, r.db).ExecContext(ctx, query, userID, passwordHash)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}

	logQuery(query, []any{userID}, rowsAffected, err)

	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
