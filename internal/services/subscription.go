package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/url"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-newsletter/internal/logger"
	"github.com/sbilibin2017/gw-newsletter/internal/metrics"
	"github.com/sbilibin2017/gw-newsletter/internal/models"
)

//go:generate mockgen -source=subscription.go -destination=subscription_mock.go -package=services

// SubscriptionTokenLength is the length of a confirmation token.
const SubscriptionTokenLength = 25

const tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// ErrUnknownToken is returned when a confirmation token matches no subscriber.
var ErrUnknownToken = errors.New("unknown subscription token")

// SubscriberWriter stores subscribers and their confirmation tokens.
type SubscriberWriter interface {
	Save(ctx context.Context, id uuid.UUID, email models.SubscriberEmail, name models.SubscriberName) error
	SaveToken(ctx context.Context, token string, subscriberID uuid.UUID) error
	Confirm(ctx context.Context, subscriberID uuid.UUID) error
}

// SubscriberTokenReader resolves confirmation tokens.
type SubscriberTokenReader interface {
	GetSubscriberIDByToken(ctx context.Context, token string) (uuid.UUID, bool, error)
}

// SubscriptionService handles sign-ups and their confirmation.
type SubscriptionService struct {
	writer  SubscriberWriter
	tokens  SubscriberTokenReader
	email   EmailSender
	baseURL string
}

// NewSubscriptionService creates a new SubscriptionService. baseURL is the
// public address confirmation links point to.
func NewSubscriptionService(writer SubscriberWriter, tokens SubscriberTokenReader, email EmailSender, baseURL string) *SubscriptionService {
	return &SubscriptionService{
		writer:  writer,
		tokens:  tokens,
		email:   email,
		baseURL: baseURL,
	}
}

// Subscribe stores a pending subscriber and emails the confirmation link.
// Validation failures return models.ErrInvalidSubscriberName or
// models.ErrInvalidSubscriberEmail. Writes use the transaction in ctx, if any.
func (s *SubscriptionService) Subscribe(ctx context.Context, name, email string) error {
	subscriberName, err := models.ParseSubscriberName(name)
	if err != nil {
		return err
	}
	subscriberEmail, err := models.ParseSubscriberEmail(email)
	if err != nil {
		return err
	}

	id := uuid.New()
	if err := s.writer.Save(ctx, id, subscriberEmail, subscriberName); err != nil {
		logger.Log.Errorw("failed to save subscriber", "error", err)
		return fmt.Errorf("save subscriber: %w", err)
	}

	token, err := GenerateSubscriptionToken()
	if err != nil {
		return err
	}
	if err := s.writer.SaveToken(ctx, token, id); err != nil {
		logger.Log.Errorw("failed to save subscription token", "subscriber_id", id, "error", err)
		return fmt.Errorf("save subscription token: %w", err)
	}

	if err := s.sendConfirmation(ctx, subscriberEmail, token); err != nil {
		metrics.EmailsSentTotal.WithLabelValues("confirmation", "error").Inc()
		logger.Log.Errorw("failed to send confirmation email", "subscriber_id", id, "error", err)
		return fmt.Errorf("send confirmation email: %w", err)
	}
	metrics.EmailsSentTotal.WithLabelValues("confirmation", "ok").Inc()

	logger.Log.Infow("new subscriber saved", "subscriber_id", id)
	return nil
}

func (s *SubscriptionService) sendConfirmation(ctx context.Context, to models.SubscriberEmail, token string) error {
	link := fmt.Sprintf("%s/subscriptions/confirm?subscription_token=%s", s.baseURL, url.QueryEscape(token))
	body := fmt.Sprintf("Welcome to our newsletter!<br />Click <a href=\"%s\">here</a> to confirm your subscription.", link)
	return s.email.Send(ctx, to.String(), "Welcome!", body)
}

// Confirm marks the subscriber behind token as confirmed.
func (s *SubscriptionService) Confirm(ctx context.Context, token string) error {
	id, ok, err := s.tokens.GetSubscriberIDByToken(ctx, token)
	if err != nil {
		logger.Log.Errorw("failed to resolve subscription token", "error", err)
		return fmt.Errorf("resolve subscription token: %w", err)
	}
	if !ok {
		return ErrUnknownToken
	}

	if err := s.writer.Confirm(ctx, id); err != nil {
		logger.Log.Errorw("failed to confirm subscriber", "subscriber_id", id, "error", err)
		return fmt.Errorf("confirm subscriber: %w", err)
	}

	logger.Log.Infow("subscriber confirmed", "subscriber_id", id)
	return nil
}

// GenerateSubscriptionToken returns a random alphanumeric token.
func GenerateSubscriptionToken() (string, error) {
	max := big.NewInt(int64(len(tokenAlphabet)))
	b := make([]byte, SubscriptionTokenLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate subscription token: %w", err)
		}
		b[i] = tokenAlphabet[n.Int64()]
	}
	return string(b), nil
}
