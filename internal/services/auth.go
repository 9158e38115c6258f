package services

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-newsletter/internal/logger"
	"github.com/sbilibin2017/gw-newsletter/internal/metrics"
	"github.com/sbilibin2017/gw-newsletter/internal/models"
)

//go:generate mockgen -source=auth.go -destination=auth_mock.go -package=services

// Password length bounds, in characters.
const (
	MinPasswordLength = 12
	MaxPasswordLength = 128
)

// Error variables
var (
	ErrInvalidCredentials       = errors.New("invalid username or password")
	ErrUnexpected               = errors.New("unexpected authentication error")
	ErrPasswordMismatch         = errors.New("you entered two different new passwords - the field values must match")
	ErrCurrentPasswordIncorrect = errors.New("the current password is incorrect")
	ErrPasswordLength           = fmt.Errorf("password length must be between %d and %d", MinPasswordLength, MaxPasswordLength)
)

// UserReader defines read-only operations for users.
type UserReader interface {
	GetCredentials(ctx context.Context, username string) (*models.UserCredentials, error)
	GetUsername(ctx context.Context, userID uuid.UUID) (string, error)
}

// UserWriter defines write operations for users.
type UserWriter interface {
	UpdatePasswordHash(ctx context.Context, userID uuid.UUID, passwordHash string) error
}

// PasswordHasher computes and checks password hashes off the request goroutine.
type PasswordHasher interface {
	Verify(ctx context.Context, password []byte, encoded string) (bool, error)
	Hash(ctx context.Context, password []byte) (string, error)
	DummyHash() string
}

// SessionCreator opens a session for an authenticated user and returns its token.
type SessionCreator interface {
	Create(ctx context.Context, userID uuid.UUID) (string, error)
}

// AuthService validates credentials, logs users in and changes passwords.
type AuthService struct {
	reader    UserReader
	writer    UserWriter
	hasher    PasswordHasher
	sessions  SessionCreator
	dummyHash string
}

// NewAuthService creates a new AuthService instance. The dummy hash used
// for unknown usernames is computed here, once.
func NewAuthService(reader UserReader, writer UserWriter, hasher PasswordHasher, sessions SessionCreator) *AuthService {
	return &AuthService{
		reader:    reader,
		writer:    writer,
		hasher:    hasher,
		sessions:  sessions,
		dummyHash: hasher.DummyHash(),
	}
}

// ValidateCredentials returns the id of the user creds belong to.
//
// An unknown username costs one hash verification, same as a known one,
// and both failures return ErrInvalidCredentials. The password buffer is
// wiped before returning.
func (svc *AuthService) ValidateCredentials(ctx context.Context, creds models.Credentials) (uuid.UUID, error) {
	defer creds.Wipe()

	var (
		userID   uuid.UUID
		expected = svc.dummyHash
	)

	stored, err := svc.reader.GetCredentials(ctx, creds.Username)
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		logger.Log.Errorw("failed to get stored credentials", "username", creds.Username, "error", err)
		return uuid.Nil, fmt.Errorf("%w: get stored credentials: %v", ErrUnexpected, err)
	}
	if stored != nil {
		userID = stored.UserID
		expected = stored.PasswordHash
	}

	ok, err := svc.hasher.Verify(ctx, creds.Password, expected)
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		logger.Log.Errorw("failed to verify password hash", "username", creds.Username, "error", err)
		return uuid.Nil, fmt.Errorf("%w: verify password hash: %v", ErrUnexpected, err)
	}

	if stored == nil || !ok {
		metrics.LoginAttemptsTotal.WithLabelValues("invalid").Inc()
		logger.Log.Infow("invalid credentials", "username", creds.Username, "known_user", stored != nil)
		return uuid.Nil, ErrInvalidCredentials
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	return userID, nil
}

// Login validates creds and opens a new session, returning its token.
// Every successful login gets a fresh session id.
func (svc *AuthService) Login(ctx context.Context, creds models.Credentials) (string, error) {
	userID, err := svc.ValidateCredentials(ctx, creds)
	if err != nil {
		return "", err
	}

	token, err := svc.sessions.Create(ctx, userID)
	if err != nil {
		logger.Log.Errorw("failed to create session", "user_id", userID, "error", err)
		return "", fmt.Errorf("%w: create session: %v", ErrUnexpected, err)
	}

	return token, nil
}

// Username returns the username of userID.
func (svc *AuthService) Username(ctx context.Context, userID uuid.UUID) (string, error) {
	username, err := svc.reader.GetUsername(ctx, userID)
	if err != nil {
		logger.Log.Errorw("failed to get username", "user_id", userID, "error", err)
		return "", err
	}
	return username, nil
}

// ChangePassword replaces the password of userID after checking the
// current one. All password buffers are wiped before returning.
func (svc *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, current, newPassword, newPasswordCheck []byte) error {
	defer wipe(newPassword)
	defer wipe(newPasswordCheck)

	if string(newPassword) != string(newPasswordCheck) {
		wipe(current)
		return ErrPasswordMismatch
	}

	username, err := svc.Username(ctx, userID)
	if err != nil {
		wipe(current)
		return fmt.Errorf("%w: %v", ErrUnexpected, err)
	}

	creds := models.Credentials{Username: username, Password: current}
	if _, err := svc.ValidateCredentials(ctx, creds); err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return ErrCurrentPasswordIncorrect
		}
		return err
	}

	if n := utf8.RuneCount(newPassword); n < MinPasswordLength || n > MaxPasswordLength {
		return ErrPasswordLength
	}

	hash, err := svc.hasher.Hash(ctx, newPassword)
	if err != nil {
		logger.Log.Errorw("failed to hash new password", "user_id", userID, "error", err)
		return fmt.Errorf("%w: hash password: %v", ErrUnexpected, err)
	}

	if err := svc.writer.UpdatePasswordHash(ctx, userID, hash); err != nil {
		logger.Log.Errorw("failed to update password hash", "user_id", userID, "error", err)
		return fmt.Errorf("%w: update password: %v", ErrUnexpected, err)
	}

	logger.Log.Infow("password changed", "user_id", userID)
	return nil
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
