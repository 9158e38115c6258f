package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-newsletter/internal/logger"
)

//go:generate mockgen -source=session.go -destination=session_mock.go -package=services

// ErrNoSession is returned when a token does not name a live session.
var ErrNoSession = errors.New("no active session")

// SessionStore keeps session-to-user bindings.
type SessionStore interface {
	Get(ctx context.Context, sessionID string) (uuid.UUID, bool, error)
	Set(ctx context.Context, sessionID string, userID uuid.UUID) error
	Clear(ctx context.Context, sessionID string) error
}

// TokenSigner turns session ids into signed tokens and back.
type TokenSigner interface {
	Generate(ctx context.Context, sessionID string) (string, error)
	GetSessionID(ctx context.Context, token string) (string, error)
}

// SessionService creates, resolves and destroys login sessions.
type SessionService struct {
	store  SessionStore
	signer TokenSigner
}

// NewSessionService creates a new SessionService.
func NewSessionService(store SessionStore, signer TokenSigner) *SessionService {
	return &SessionService{
		store:  store,
		signer: signer,
	}
}

// Create opens a session for userID under a fresh id and returns the signed token.
func (s *SessionService) Create(ctx context.Context, userID uuid.UUID) (string, error) {
	sessionID := uuid.NewString()

	if err := s.store.Set(ctx, sessionID, userID); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}

	token, err := s.signer.Generate(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}

	logger.Log.Infow("session created", "user_id", userID)
	return token, nil
}

// Resolve returns the user behind token. Invalid, expired and cleared
// sessions yield ErrNoSession.
func (s *SessionService) Resolve(ctx context.Context, token string) (uuid.UUID, error) {
	sessionID, err := s.signer.GetSessionID(ctx, token)
	if err != nil {
		logger.Log.Infow("rejected session token", "error", err)
		return uuid.Nil, ErrNoSession
	}

	userID, ok, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("load session: %w", err)
	}
	if !ok {
		return uuid.Nil, ErrNoSession
	}

	return userID, nil
}

// Destroy ends the session behind token. Unknown sessions are ignored.
func (s *SessionService) Destroy(ctx context.Context, token string) error {
	sessionID, err := s.signer.GetSessionID(ctx, token)
	if err != nil {
		return nil
	}
	return s.store.Clear(ctx, sessionID)
}
