package services

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/gw-newsletter/internal/models"
	"github.com/sbilibin2017/gw-newsletter/internal/txctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIdempotencyFixture(t *testing.T, opts ...IdempotencyOption) (*IdempotencyService, *MockIdempotencyStore, sqlmock.Sqlmock) {
	t.Helper()
	ctrl := gomock.NewController(t)
	store := NewMockIdempotencyStore(ctrl)

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	db := sqlx.NewDb(sqlDB, "sqlmock")

	opts = append([]IdempotencyOption{WithRetryInterval(time.Millisecond)}, opts...)
	return NewIdempotencyService(db, store, opts...), store, mock
}

func intPtr(v int) *int { return &v }

func completedRecord(userID uuid.UUID, key models.IdempotencyKey, resp *models.SavedResponse) *models.IdempotencyRecord {
	return &models.IdempotencyRecord{
		UserID:             userID,
		IdempotencyKey:     key.String(),
		ResponseStatusCode: intPtr(resp.StatusCode),
		ResponseHeaders:    resp.Headers,
		ResponseBody:       resp.Body,
	}
}

func TestIdempotencyService_TryBegin_FreshKey(t *testing.T) {
	svc, store, mock := newIdempotencyFixture(t)
	userID, key := uuid.New(), models.IdempotencyKey("abc123")
	resp := models.SeeOther("/admin/newsletters")

	mock.ExpectBegin()
	store.EXPECT().TryInsert(gomock.Any(), userID, key).Return(true, nil)
	store.EXPECT().SaveResponse(gomock.Any(), userID, key, resp).Return(nil)
	mock.ExpectCommit()

	action, err := svc.TryBegin(context.Background(), key, userID)
	require.NoError(t, err)

	start, ok := action.(StartProcessing)
	require.True(t, ok, "expected StartProcessing, got %T", action)
	assert.NotNil(t, txctx.Get(start.Tx.Context()))

	require.NoError(t, start.Tx.Complete(resp))
	// Rollback after Complete is a no-op.
	assert.NoError(t, start.Tx.Rollback())
	assert.ErrorIs(t, start.Tx.Complete(resp), sql.ErrTxDone)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotencyService_TryBegin_CompletedKey(t *testing.T) {
	svc, store, mock := newIdempotencyFixture(t)
	userID, key := uuid.New(), models.IdempotencyKey("abc123")
	saved := &models.SavedResponse{
		StatusCode: http.StatusSeeOther,
		Headers:    models.HeaderPairs{{Name: "Location", Value: []byte("/admin/newsletters")}},
		Body:       []byte{},
	}

	mock.ExpectBegin()
	store.EXPECT().TryInsert(gomock.Any(), userID, key).Return(false, nil)
	store.EXPECT().Get(gomock.Any(), userID, key).Return(completedRecord(userID, key, saved), nil)
	mock.ExpectRollback()

	action, err := svc.TryBegin(context.Background(), key, userID)
	require.NoError(t, err)

	replay, ok := action.(ReturnSavedResponse)
	require.True(t, ok, "expected ReturnSavedResponse, got %T", action)
	assert.Equal(t, saved, replay.Response)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotencyService_TryBegin_WaitsForInProgressKey(t *testing.T) {
	svc, store, mock := newIdempotencyFixture(t)
	userID, key := uuid.New(), models.IdempotencyKey("abc123")
	saved := models.SeeOther("/admin/newsletters")

	inProgress := &models.IdempotencyRecord{UserID: userID, IdempotencyKey: key.String()}

	mock.ExpectBegin()
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectRollback()
	gomock.InOrder(
		store.EXPECT().TryInsert(gomock.Any(), userID, key).Return(false, nil),
		store.EXPECT().Get(gomock.Any(), userID, key).Return(inProgress, nil),
		store.EXPECT().TryInsert(gomock.Any(), userID, key).Return(false, nil),
		store.EXPECT().Get(gomock.Any(), userID, key).Return(completedRecord(userID, key, saved), nil),
	)

	action, err := svc.TryBegin(context.Background(), key, userID)
	require.NoError(t, err)
	assert.IsType(t, ReturnSavedResponse{}, action)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotencyService_TryBegin_RolledBackClaimIsRetaken(t *testing.T) {
	svc, store, mock := newIdempotencyFixture(t)
	userID, key := uuid.New(), models.IdempotencyKey("abc123")

	mock.ExpectBegin()
	mock.ExpectRollback()
	mock.ExpectBegin()
	gomock.InOrder(
		store.EXPECT().TryInsert(gomock.Any(), userID, key).Return(false, nil),
		store.EXPECT().Get(gomock.Any(), userID, key).Return(nil, nil),
		store.EXPECT().TryInsert(gomock.Any(), userID, key).Return(true, nil),
	)

	action, err := svc.TryBegin(context.Background(), key, userID)
	require.NoError(t, err)
	assert.IsType(t, StartProcessing{}, action)
}

func TestIdempotencyService_TryBegin_Timeout(t *testing.T) {
	svc, store, mock := newIdempotencyFixture(t, WithWaitTimeout(20*time.Millisecond))
	userID, key := uuid.New(), models.IdempotencyKey("abc123")
	inProgress := &models.IdempotencyRecord{UserID: userID, IdempotencyKey: key.String()}

	mock.MatchExpectationsInOrder(true)
	for i := 0; i < 100; i++ {
		mock.ExpectBegin()
		mock.ExpectRollback()
	}
	store.EXPECT().TryInsert(gomock.Any(), userID, key).Return(false, nil).AnyTimes()
	store.EXPECT().Get(gomock.Any(), userID, key).Return(inProgress, nil).AnyTimes()

	action, err := svc.TryBegin(context.Background(), key, userID)
	assert.ErrorIs(t, err, ErrIdempotencyTimeout)
	assert.Nil(t, action)
}

func TestIdempotencyService_TryBegin_BlockedInsertTimesOut(t *testing.T) {
	svc, store, mock := newIdempotencyFixture(t, WithWaitTimeout(20*time.Millisecond))
	userID, key := uuid.New(), models.IdempotencyKey("abc123")

	mock.ExpectBegin()
	mock.ExpectRollback()
	store.EXPECT().TryInsert(gomock.Any(), userID, key).DoAndReturn(
		func(ctx context.Context, _ uuid.UUID, _ models.IdempotencyKey) (bool, error) {
			<-ctx.Done()
			return false, ctx.Err()
		})

	_, err := svc.TryBegin(context.Background(), key, userID)
	assert.ErrorIs(t, err, ErrIdempotencyTimeout)
}

func TestIdempotencyService_TryBegin_CallerCancelled(t *testing.T) {
	svc, store, mock := newIdempotencyFixture(t, WithRetryInterval(time.Second))
	userID, key := uuid.New(), models.IdempotencyKey("abc123")
	inProgress := &models.IdempotencyRecord{UserID: userID, IdempotencyKey: key.String()}

	ctx, cancel := context.WithCancel(context.Background())

	mock.ExpectBegin()
	mock.ExpectRollback()
	store.EXPECT().TryInsert(gomock.Any(), userID, key).Return(false, nil)
	store.EXPECT().Get(gomock.Any(), userID, key).DoAndReturn(
		func(context.Context, uuid.UUID, models.IdempotencyKey) (*models.IdempotencyRecord, error) {
			cancel()
			return inProgress, nil
		})

	_, err := svc.TryBegin(ctx, key, userID)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIdempotencyService_TryBegin_StoreErrors(t *testing.T) {
	userID, key := uuid.New(), models.IdempotencyKey("abc123")

	t.Run("begin fails", func(t *testing.T) {
		svc, _, mock := newIdempotencyFixture(t)
		mock.ExpectBegin().WillReturnError(errors.New("pool exhausted"))

		_, err := svc.TryBegin(context.Background(), key, userID)
		assert.ErrorContains(t, err, "pool exhausted")
	})

	t.Run("insert fails", func(t *testing.T) {
		svc, store, mock := newIdempotencyFixture(t)
		mock.ExpectBegin()
		mock.ExpectRollback()
		store.EXPECT().TryInsert(gomock.Any(), userID, key).Return(false, errors.New("boom"))

		_, err := svc.TryBegin(context.Background(), key, userID)
		assert.ErrorContains(t, err, "boom")
		assert.NotErrorIs(t, err, ErrIdempotencyTimeout)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("get fails", func(t *testing.T) {
		svc, store, mock := newIdempotencyFixture(t)
		mock.ExpectBegin()
		mock.ExpectRollback()
		store.EXPECT().TryInsert(gomock.Any(), userID, key).Return(false, nil)
		store.EXPECT().Get(gomock.Any(), userID, key).Return(nil, errors.New("boom"))

		_, err := svc.TryBegin(context.Background(), key, userID)
		assert.ErrorContains(t, err, "boom")
	})
}

func TestIdempotencyTx_CompleteFailureRollsBack(t *testing.T) {
	svc, store, mock := newIdempotencyFixture(t)
	userID, key := uuid.New(), models.IdempotencyKey("abc123")
	resp := models.SeeOther("/admin/newsletters")

	mock.ExpectBegin()
	store.EXPECT().TryInsert(gomock.Any(), userID, key).Return(true, nil)
	store.EXPECT().SaveResponse(gomock.Any(), userID, key, resp).Return(errors.New("disk full"))
	mock.ExpectRollback()

	action, err := svc.TryBegin(context.Background(), key, userID)
	require.NoError(t, err)

	err = action.(StartProcessing).Tx.Complete(resp)
	assert.ErrorContains(t, err, "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotencyService_Execute(t *testing.T) {
	userID, key := uuid.New(), models.IdempotencyKey("abc123")
	resp := models.SeeOther("/admin/newsletters")

	t.Run("runs workflow on the claim transaction", func(t *testing.T) {
		svc, store, mock := newIdempotencyFixture(t)
		mock.ExpectBegin()
		store.EXPECT().TryInsert(gomock.Any(), userID, key).Return(true, nil)
		store.EXPECT().SaveResponse(gomock.Any(), userID, key, resp).Return(nil)
		mock.ExpectCommit()

		got, executed, err := svc.Execute(context.Background(), key, userID, func(ctx context.Context) (*models.SavedResponse, error) {
			assert.NotNil(t, txctx.Get(ctx))
			return resp, nil
		})
		require.NoError(t, err)
		assert.True(t, executed)
		assert.Equal(t, resp, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("replays without running workflow", func(t *testing.T) {
		svc, store, mock := newIdempotencyFixture(t)
		mock.ExpectBegin()
		store.EXPECT().TryInsert(gomock.Any(), userID, key).Return(false, nil)
		store.EXPECT().Get(gomock.Any(), userID, key).Return(completedRecord(userID, key, resp), nil)
		mock.ExpectRollback()

		got, executed, err := svc.Execute(context.Background(), key, userID, func(context.Context) (*models.SavedResponse, error) {
			t.Fatal("workflow must not run for a completed key")
			return nil, nil
		})
		require.NoError(t, err)
		assert.False(t, executed)
		assert.Equal(t, resp.StatusCode, got.StatusCode)
		assert.Equal(t, resp.Headers, got.Headers)
	})

	t.Run("workflow error releases the claim", func(t *testing.T) {
		svc, store, mock := newIdempotencyFixture(t)
		mock.ExpectBegin()
		store.EXPECT().TryInsert(gomock.Any(), userID, key).Return(true, nil)
		mock.ExpectRollback()

		_, executed, err := svc.Execute(context.Background(), key, userID, func(context.Context) (*models.SavedResponse, error) {
			return nil, errors.New("smtp down")
		})
		assert.ErrorContains(t, err, "smtp down")
		assert.False(t, executed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("workflow panic releases the claim", func(t *testing.T) {
		svc, store, mock := newIdempotencyFixture(t)
		mock.ExpectBegin()
		store.EXPECT().TryInsert(gomock.Any(), userID, key).Return(true, nil)
		mock.ExpectRollback()

		assert.Panics(t, func() {
			_, _, _ = svc.Execute(context.Background(), key, userID, func(context.Context) (*models.SavedResponse, error) {
				panic("boom")
			})
		})
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
