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

// ErrIdempotencyRecordNotFound is returned when a response is saved for a key that was never claimed.
var ErrIdempotencyRecordNotFound = errors.New("idempotency record not found")

// IdempotencyRepository stores one row per (user, idempotency key).
// All statements run on the transaction carried by the context, if any.
type IdempotencyRepository struct {
	db *sqlx.DB
}

func NewIdempotencyRepository(db *sqlx.DB) *IdempotencyRepository {
	return &IdempotencyRepository{db: db}
}

// TryInsert claims key for userID. It reports false when a row already exists.
// While another transaction holds an uncommitted claim for the same key the
// statement blocks until that transaction commits or rolls back.
func (r *IdempotencyRepository) TryInsert(ctx context.Context, userID uuid.UUID, key models.IdempotencyKey) (bool, error) {
	const query = `
		INSERT INTO idempotency (user_id, idempotency_key, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT DO NOTHING
	`

	res, err := txctx.Executor(ctx, r.db).ExecContext(ctx, query, userID, key.String())
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}

	logQuery(query, []any{userID, key}, rowsAffected, err)

	if err != nil {
		return false, err
	}
	return rowsAffected > 0, nil
}

// Get returns the record for (userID, key), or nil when there is none.
func (r *IdempotencyRepository) Get(ctx context.Context, userID uuid.UUID, key models.IdempotencyKey) (*models.IdempotencyRecord, error) {
	const query = `
		SELECT user_id, idempotency_key, response_status_code,
		       response_headers, response_body, created_at
		FROM idempotency
		WHERE user_id = $1 AND idempotency_key = $2
	`

	var rec models.IdempotencyRecord
	err := sqlx.GetContext(ctx, txctx.Executor(ctx, r.db), &rec, query, userID, key.String())

	logQuery(query, []any{userID, key}, rec.ResponseStatusCode, err)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// SaveResponse fills the response fields of a claimed record.
func (r *IdempotencyRepository) SaveResponse(ctx context.Context, userID uuid.UUID, key models.IdempotencyKey, resp *models.SavedResponse) error {
	const query = `
		UPDATE idempotency
		SET response_status_code = $3,
		    response_headers = $4,
		    response_body = $5
		WHERE user_id = $1 AND idempotency_key = $2
	`

	headers, err := resp.Headers.Value()
	if err != nil {
		return err
	}
	body := resp.Body
	if body == nil {
		body = []byte{}
	}

	res, err := txctx.Executor(ctx, r.db).ExecContext(ctx, query,
		userID, key.String(), resp.StatusCode, headers, body)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}

	logQuery(query, []any{userID, key, resp.StatusCode}, rowsAffected, err)

	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrIdempotencyRecordNotFound
	}
	return nil
}
