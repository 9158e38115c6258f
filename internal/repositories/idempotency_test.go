package repositories

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/gw-newsletter/internal/models"
	"github.com/sbilibin2017/gw-newsletter/internal/txctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestIdempotencyRepository_TryInsert(t *testing.T) {
	userID := uuid.New()
	key := models.IdempotencyKey("abc123")

	tests := []struct {
		name     string
		affected int64
		execErr  error
		want     bool
		wantErr  bool
	}{
		{name: "claimed", affected: 1, want: true},
		{name: "already exists", affected: 0, want: false},
		{name: "db error", execErr: errors.New("boom"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewIdempotencyRepository(db)

			exp := mock.ExpectExec(regexp.QuoteMeta("INSERT INTO idempotency")).
				WithArgs(userID, "abc123")
			if tt.execErr != nil {
				exp.WillReturnError(tt.execErr)
			} else {
				exp.WillReturnResult(sqlmock.NewResult(0, tt.affected))
			}

			got, err := repo.TryInsert(context.Background(), userID, key)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestIdempotencyRepository_Get(t *testing.T) {
	userID := uuid.New()
	key := models.IdempotencyKey("abc123")
	columns := []string{"user_id", "idempotency_key", "response_status_code", "response_headers", "response_body", "created_at"}

	t.Run("completed record", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewIdempotencyRepository(db)

		headers, err := models.HeaderPairs{{Name: "Location", Value: []byte("/admin/newsletters")}}.Value()
		require.NoError(t, err)

		mock.ExpectQuery(regexp.QuoteMeta("FROM idempotency")).
			WithArgs(userID, "abc123").
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow(userID.String(), "abc123", int64(303), []byte(headers.(string)), []byte{}, time.Now()))

		rec, err := repo.Get(context.Background(), userID, key)
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.True(t, rec.Completed())

		resp := rec.Response()
		assert.Equal(t, 303, resp.StatusCode)
		require.Len(t, resp.Headers, 1)
		assert.Equal(t, "Location", resp.Headers[0].Name)
		assert.Equal(t, []byte("/admin/newsletters"), resp.Headers[0].Value)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("in progress record", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewIdempotencyRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta("FROM idempotency")).
			WithArgs(userID, "abc123").
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow(userID.String(), "abc123", nil, nil, nil, time.Now()))

		rec, err := repo.Get(context.Background(), userID, key)
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.False(t, rec.Completed())
		assert.Nil(t, rec.Response())
	})

	t.Run("missing record", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewIdempotencyRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta("FROM idempotency")).
			WithArgs(userID, "abc123").
			WillReturnRows(sqlmock.NewRows(columns))

		rec, err := repo.Get(context.Background(), userID, key)
		assert.NoError(t, err)
		assert.Nil(t, rec)
	})
}

func TestIdempotencyRepository_SaveResponse(t *testing.T) {
	userID := uuid.New()
	key := models.IdempotencyKey("abc123")
	resp := models.SeeOther("/admin/newsletters")

	t.Run("saved on transaction", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewIdempotencyRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("UPDATE idempotency")).
			WithArgs(userID, "abc123", 303, sqlmock.AnyArg(), []byte{}).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		tx, err := db.Beginx()
		require.NoError(t, err)
		ctx := txctx.With(context.Background(), tx)

		assert.NoError(t, repo.SaveResponse(ctx, userID, key, resp))
		assert.NoError(t, tx.Commit())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unclaimed key", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewIdempotencyRepository(db)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE idempotency")).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.SaveResponse(context.Background(), userID, key, resp)
		assert.ErrorIs(t, err, ErrIdempotencyRecordNotFound)
	})
}
