package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/gw-newsletter/internal/logger"
	"github.com/sbilibin2017/gw-newsletter/internal/metrics"
	"github.com/sbilibin2017/gw-newsletter/internal/models"
	"github.com/sbilibin2017/gw-newsletter/internal/txctx"
)

//go:generate mockgen -source=idempotency.go -destination=idempotency_mock.go -package=services

// Default wait settings for keys claimed by a concurrent request.
const (
	DefaultIdempotencyRetryInterval = 100 * time.Millisecond
	DefaultIdempotencyWaitTimeout   = 10 * time.Second
)

// ErrIdempotencyTimeout is returned when a key stays claimed by another
// request for longer than the wait timeout. The client may retry.
var ErrIdempotencyTimeout = errors.New("idempotency key is still being processed")

// IdempotencyStore persists idempotency records.
type IdempotencyStore interface {
	TryInsert(ctx context.Context, userID uuid.UUID, key models.IdempotencyKey) (bool, error)
	Get(ctx context.Context, userID uuid.UUID, key models.IdempotencyKey) (*models.IdempotencyRecord, error)
	SaveResponse(ctx context.Context, userID uuid.UUID, key models.IdempotencyKey, resp *models.SavedResponse) error
}

// TxBeginner starts database transactions.
type TxBeginner interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// NextAction tells the caller of TryBegin what to do next.
// It is either StartProcessing or ReturnSavedResponse.
type NextAction interface {
	nextAction()
}

// StartProcessing means the caller owns the key and must run the workflow
// on Tx, then Complete or Rollback it.
type StartProcessing struct {
	Tx *IdempotencyTx
}

// ReturnSavedResponse means the request already completed; Response must
// be replayed unchanged.
type ReturnSavedResponse struct {
	Response *models.SavedResponse
}

func (StartProcessing) nextAction()     {}
func (ReturnSavedResponse) nextAction() {}

// IdempotencyTx is an open claim on an idempotency key. The claim and
// everything written through Context() commit together in Complete.
type IdempotencyTx struct {
	tx     *sqlx.Tx
	ctx    context.Context
	store  IdempotencyStore
	userID uuid.UUID
	key    models.IdempotencyKey
	done   bool
}

// Context carries the claim's transaction. Repositories given this context
// write inside the claim.
func (t *IdempotencyTx) Context() context.Context {
	return t.ctx
}

// Complete stores resp in the claimed record and commits. On failure the
// claim is rolled back, so a retry runs the workflow again.
func (t *IdempotencyTx) Complete(resp *models.SavedResponse) error {
	if t.done {
		return sql.ErrTxDone
	}
	t.done = true

	if err := t.store.SaveResponse(t.ctx, t.userID, t.key, resp); err != nil {
		_ = t.tx.Rollback()
		return fmt.Errorf("save idempotent response: %w", err)
	}
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("commit idempotent response: %w", err)
	}

	metrics.IdempotencyOutcomesTotal.WithLabelValues(metrics.OutcomeCompleted).Inc()
	return nil
}

// Rollback releases the claim. It is a no-op after Complete or a previous Rollback.
func (t *IdempotencyTx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true

	metrics.IdempotencyOutcomesTotal.WithLabelValues(metrics.OutcomeAborted).Inc()
	return t.tx.Rollback()
}

// IdempotencyService makes a workflow run at most once per (user, key).
type IdempotencyService struct {
	db            TxBeginner
	store         IdempotencyStore
	retryInterval time.Duration
	waitTimeout   time.Duration
}

// IdempotencyOption configures an IdempotencyService.
type IdempotencyOption func(*IdempotencyService)

// WithRetryInterval sets how long to wait before re-checking an in-progress key.
func WithRetryInterval(d time.Duration) IdempotencyOption {
	return func(s *IdempotencyService) {
		if d > 0 {
			s.retryInterval = d
		}
	}
}

// WithWaitTimeout bounds the total time spent waiting on a key claimed by another request.
func WithWaitTimeout(d time.Duration) IdempotencyOption {
	return func(s *IdempotencyService) {
		if d > 0 {
			s.waitTimeout = d
		}
	}
}

// NewIdempotencyService creates a new IdempotencyService.
func NewIdempotencyService(db TxBeginner, store IdempotencyStore, opts ...IdempotencyOption) *IdempotencyService {
	s := &IdempotencyService{
		db:            db,
		store:         store,
		retryInterval: DefaultIdempotencyRetryInterval,
		waitTimeout:   DefaultIdempotencyWaitTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TryBegin claims key for userID.
//
// A fresh key yields StartProcessing. A completed key yields its saved
// response. A key whose claim is visible but has no response yet is
// re-checked every retry interval until the wait timeout, then
// ErrIdempotencyTimeout is returned.
func (s *IdempotencyService) TryBegin(ctx context.Context, key models.IdempotencyKey, userID uuid.UUID) (NextAction, error) {
	deadline := time.Now().Add(s.waitTimeout)

	for {
		action, err := s.tryOnce(ctx, key, userID, deadline)
		if err != nil {
			return nil, err
		}
		if action != nil {
			return action, nil
		}

		metrics.IdempotencyOutcomesTotal.WithLabelValues(metrics.OutcomeWaited).Inc()
		logger.Log.Infow("idempotency key in progress, waiting", "user_id", userID, "key", key)

		wait := time.NewTimer(s.retryInterval)
		select {
		case <-ctx.Done():
			wait.Stop()
			return nil, ctx.Err()
		case <-wait.C:
		}
		if time.Now().After(deadline) {
			metrics.IdempotencyOutcomesTotal.WithLabelValues(metrics.OutcomeTimeout).Inc()
			return nil, ErrIdempotencyTimeout
		}
	}
}

// tryOnce returns a nil action when the key is claimed but not yet completed.
func (s *IdempotencyService) tryOnce(ctx context.Context, key models.IdempotencyKey, userID uuid.UUID, deadline time.Time) (NextAction, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin idempotency transaction: %w", err)
	}
	txCtx := txctx.With(ctx, tx)

	// The insert blocks while another transaction holds an uncommitted claim
	// on the key, so only the statement is bounded by the wait deadline.
	claimCtx, cancel := context.WithDeadline(txCtx, deadline)
	inserted, err := s.store.TryInsert(claimCtx, userID, key)
	claimErr := claimCtx.Err()
	cancel()
	if err != nil {
		_ = tx.Rollback()
		if ctx.Err() == nil && errors.Is(claimErr, context.DeadlineExceeded) {
			metrics.IdempotencyOutcomesTotal.WithLabelValues(metrics.OutcomeTimeout).Inc()
			return nil, ErrIdempotencyTimeout
		}
		return nil, fmt.Errorf("claim idempotency key: %w", err)
	}

	if inserted {
		metrics.IdempotencyOutcomesTotal.WithLabelValues(metrics.OutcomeStarted).Inc()
		return StartProcessing{Tx: &IdempotencyTx{
			tx:     tx,
			ctx:    txCtx,
			store:  s.store,
			userID: userID,
			key:    key,
		}}, nil
	}

	rec, err := s.store.Get(txCtx, userID, key)
	_ = tx.Rollback()
	if err != nil {
		return nil, fmt.Errorf("load idempotency record: %w", err)
	}
	if rec == nil || !rec.Completed() {
		// A missing record means the competing claim was rolled back; the
		// next attempt can take the key.
		return nil, nil
	}

	metrics.IdempotencyOutcomesTotal.WithLabelValues(metrics.OutcomeReplayed).Inc()
	return ReturnSavedResponse{Response: rec.Response()}, nil
}

// Execute runs fn at most once per (userID, key) and returns its response.
// Repeated calls return the saved response with executed set to false.
// fn runs on the claim's context; an error or panic from fn releases the claim.
func (s *IdempotencyService) Execute(
	ctx context.Context,
	key models.IdempotencyKey,
	userID uuid.UUID,
	fn func(ctx context.Context) (*models.SavedResponse, error),
) (resp *models.SavedResponse, executed bool, err error) {
	action, err := s.TryBegin(ctx, key, userID)
	if err != nil {
		return nil, false, err
	}

	switch a := action.(type) {
	case ReturnSavedResponse:
		return a.Response, false, nil
	case StartProcessing:
		defer func() {
			if p := recover(); p != nil {
				_ = a.Tx.Rollback()
				panic(p)
			}
		}()

		resp, err := fn(a.Tx.Context())
		if err != nil {
			if rbErr := a.Tx.Rollback(); rbErr != nil {
				logger.Log.Errorw("failed to roll back idempotency claim", "user_id", userID, "key", key, "error", rbErr)
			}
			return nil, false, err
		}

		if err := a.Tx.Complete(resp); err != nil {
			return nil, false, err
		}
		return resp, true, nil
	default:
		return nil, false, fmt.Errorf("unexpected next action %T", action)
	}
}
