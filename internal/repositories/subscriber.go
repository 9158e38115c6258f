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

// SubscriberWriteRepository handles subscription writes
type SubscriberWriteRepository struct {
	db *sqlx.DB
}

func NewSubscriberWriteRepository(db *sqlx.DB) *SubscriberWriteRepository {
	return &SubscriberWriteRepository{db: db}
}

// Save inserts a subscriber in the pending_confirmation state.
func (r *SubscriberWriteRepository) Save(ctx context.Context, id uuid.UUID, email models.SubscriberEmail, name models.SubscriberName) error {
	const query = `
		INSERT INTO subscriptions (id, email, name, subscribed_at, status)
		VALUES ($1, $2, $3, NOW(), $4)
	`

	args := []any{id, email.String(), name.String(), models.SubscriptionPending}
	res, err := txctx.Executor(ctx, r.db).ExecContext(ctx, query, args...)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}

	logQuery(query, args, rowsAffected, err)

	return err
}

// SaveToken stores a confirmation token for subscriberID.
func (r *SubscriberWriteRepository) SaveToken(ctx context.Context, token string, subscriberID uuid.UUID) error {
	const query = `
		INSERT INTO subscription_tokens (subscription_token, subscriber_id)
		VALUES ($1, $2)
	`

	res, err := txctx.Executor(ctx, r.db).ExecContext(ctx, query, token, subscriberID)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}

	logQuery(query, []any{subscriberID}, rowsAffected, err)

	return err
}

// Confirm marks subscriberID as confirmed.
func (r *SubscriberWriteRepository) Confirm(ctx context.Context, subscriberID uuid.UUID) error {
	const query = `
		UPDATE subscriptions
		SET status = $2
		WHERE id = $1
	`

	args := []any{subscriberID, models.SubscriptionConfirmed}
	res, err := txctx.Executor(ctx, r.db).ExecContext(ctx, query, args...)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}

	logQuery(query, args, rowsAffected, err)

	return err
}

// SubscriberReadRepository handles subscription reads
type SubscriberReadRepository struct {
	db *sqlx.DB
}

func NewSubscriberReadRepository(db *sqlx.DB) *SubscriberReadRepository {
	return &SubscriberReadRepository{db: db}
}

// GetSubscriberIDByToken resolves a confirmation token. ok is false for unknown tokens.
func (r *SubscriberReadRepository) GetSubscriberIDByToken(ctx context.Context, token string) (id uuid.UUID, ok bool, err error) {
	const query = `
		SELECT subscriber_id
		FROM subscription_tokens
		WHERE subscription_token = $1
	`

	err = sqlx.GetContext(ctx, txctx.Executor(ctx, r.db), &id, query, token)

	logQuery(query, []any{"[token]"}, id, err)

	if errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, err
	}
	return id, true, nil
}

// ListConfirmedEmails returns the stored address of every confirmed subscriber.
// Addresses are returned as stored and may fail validation.
func (r *SubscriberReadRepository) ListConfirmedEmails(ctx context.Context) ([]string, error) {
	const query = `
		SELECT email
		FROM subscriptions
		WHERE status = $1
		ORDER BY subscribed_at, email
	`

	var emails []string
	err := sqlx.SelectContext(ctx, txctx.Executor(ctx, r.db), &emails, query, models.SubscriptionConfirmed)

	logQuery(query, []any{models.SubscriptionConfirmed}, len(emails), err)

	if err != nil {
		return nil, err
	}
	return emails, nil
}
