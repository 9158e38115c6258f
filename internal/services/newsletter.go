package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-newsletter/internal/logger"
	"github.com/sbilibin2017/gw-newsletter/internal/metrics"
	"github.com/sbilibin2017/gw-newsletter/internal/models"
	"github.com/segmentio/kafka-go"
)

//go:generate mockgen -source=newsletter.go -destination=newsletter_mock.go -package=services

// NewslettersLocation is where a successful publish redirects to.
const NewslettersLocation = "/admin/newsletters"

// SubscriberReader lists newsletter recipients.
type SubscriberReader interface {
	ListConfirmedEmails(ctx context.Context) ([]string, error)
}

// IssueWriter records published issues.
type IssueWriter interface {
	Save(ctx context.Context, issueID, userID uuid.UUID, title, content string) error
}

// EmailSender delivers a single email.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// IdempotentExecutor runs a workflow at most once per (user, key).
type IdempotentExecutor interface {
	Execute(ctx context.Context, key models.IdempotencyKey, userID uuid.UUID, fn func(ctx context.Context) (*models.SavedResponse, error)) (*models.SavedResponse, bool, error)
}

// KafkaWriter defines a Kafka writer abstraction.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error // Writes messages to Kafka
	Close() error                                                   // Closes the Kafka writer
}

// NewsletterService publishes newsletter issues to confirmed subscribers.
type NewsletterService struct {
	executor    IdempotentExecutor
	subscribers SubscriberReader
	issues      IssueWriter
	email       EmailSender
	kafkaWriter KafkaWriter
}

// NewNewsletterService creates a new NewsletterService. kafkaWriter may be nil.
func NewNewsletterService(
	executor IdempotentExecutor,
	subscribers SubscriberReader,
	issues IssueWriter,
	email EmailSender,
	kafkaWriter KafkaWriter,
) *NewsletterService {
	return &NewsletterService{
		executor:    executor,
		subscribers: subscribers,
		issues:      issues,
		email:       email,
		kafkaWriter: kafkaWriter,
	}
}

// Publish sends an issue to every confirmed subscriber, once per key.
//
// The issue row, the recipient query and the saved response share the
// claim's transaction. The first delivery failure aborts the dispatch and
// releases the key, so a retry with the same key sends to everyone again.
// A repeated key returns the first response without sending anything.
func (s *NewsletterService) Publish(ctx context.Context, userID uuid.UUID, key models.IdempotencyKey, title, content string) (*models.SavedResponse, error) {
	var (
		issueID    = uuid.New()
		recipients int
	)

	resp, executed, err := s.executor.Execute(ctx, key, userID, func(ctx context.Context) (*models.SavedResponse, error) {
		if err := s.issues.Save(ctx, issueID, userID, title, content); err != nil {
			logger.Log.Errorw("failed to store newsletter issue", "issue_id", issueID, "error", err)
			return nil, fmt.Errorf("store newsletter issue: %w", err)
		}

		emails, err := s.subscribers.ListConfirmedEmails(ctx)
		if err != nil {
			logger.Log.Errorw("failed to list confirmed subscribers", "error", err)
			return nil, fmt.Errorf("list confirmed subscribers: %w", err)
		}

		for _, raw := range emails {
			addr, err := models.ParseSubscriberEmail(raw)
			if err != nil {
				logger.Log.Warnw("skipping confirmed subscriber with invalid email", "email", raw, "error", err)
				continue
			}

			if err := s.email.Send(ctx, addr.String(), title, content); err != nil {
				metrics.EmailsSentTotal.WithLabelValues("newsletter", "error").Inc()
				logger.Log.Errorw("failed to send newsletter issue", "issue_id", issueID, "recipient", addr, "error", err)
				return nil, fmt.Errorf("failed to send newsletter issue to %s: %w", addr, err)
			}
			metrics.EmailsSentTotal.WithLabelValues("newsletter", "ok").Inc()
			recipients++
		}

		return models.SeeOther(NewslettersLocation), nil
	})
	if err != nil {
		return nil, err
	}

	if executed {
		metrics.NewslettersPublishedTotal.Inc()
		logger.Log.Infow("newsletter issue published", "issue_id", issueID, "user_id", userID, "recipients", recipients)
		s.publishIssue(ctx, models.IssuePublished{
			IssueID:        issueID.String(),
			UserID:         userID.String(),
			IdempotencyKey: key.String(),
			Title:          title,
			Recipients:     recipients,
			Timestamp:      time.Now().Unix(),
		})
	} else {
		logger.Log.Infow("replaying saved newsletter response", "user_id", userID, "key", key)
	}

	return resp, nil
}

// publishIssue publishes an issue event to Kafka.
func (s *NewsletterService) publishIssue(ctx context.Context, evt models.IssuePublished) {
	if s.kafkaWriter == nil {
		logger.Log.Warnw("Kafka writer not configured, skipping publishing", "issue_id", evt.IssueID)
		return
	}

	data, err := json.Marshal(evt)
	if err != nil {
		logger.Log.Errorw("Failed to marshal issue event for Kafka", "issue_id", evt.IssueID, "error", err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(evt.IssueID),
		Value: data,
	}

	if err := s.kafkaWriter.WriteMessages(ctx, msg); err != nil {
		logger.Log.Errorw("Failed to publish issue event to Kafka", "issue_id", evt.IssueID, "error", err)
	} else {
		logger.Log.Infow("Issue event published to Kafka", "issue_id", evt.IssueID, "recipients", evt.Recipients)
	}
}
