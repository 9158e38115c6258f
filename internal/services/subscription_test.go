package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-newsletter/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func newSubscriptionFixture(t *testing.T) (*SubscriptionService, *MockSubscriberWriter, *MockSubscriberTokenReader, *MockEmailSender) {
	ctrl := gomock.NewController(t)
	writer := NewMockSubscriberWriter(ctrl)
	tokens := NewMockSubscriberTokenReader(ctrl)
	email := NewMockEmailSender(ctrl)
	return NewSubscriptionService(writer, tokens, email, "http://127.0.0.1:8080"), writer, tokens, email
}

func TestSubscriptionService_Subscribe(t *testing.T) {
	t.Run("stores pending subscriber and sends confirmation link", func(t *testing.T) {
		svc, writer, _, email := newSubscriptionFixture(t)

		var subscriberID uuid.UUID
		var token string
		writer.EXPECT().Save(gomock.Any(), gomock.Any(), models.SubscriberEmail("ursula_le_guin@gmail.com"), models.SubscriberName("le guin")).
			DoAndReturn(func(_ context.Context, id uuid.UUID, _ models.SubscriberEmail, _ models.SubscriberName) error {
				subscriberID = id
				return nil
			})
		writer.EXPECT().SaveToken(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, tok string, id uuid.UUID) error {
				token = tok
				assert.Equal(t, subscriberID, id)
				return nil
			})
		email.EXPECT().Send(gomock.Any(), "ursula_le_guin@gmail.com", "Welcome!", gomock.Any()).
			DoAndReturn(func(_ context.Context, _, _, body string) error {
				assert.Contains(t, body, "http://127.0.0.1:8080/subscriptions/confirm?subscription_token="+token)
				return nil
			})

		require.NoError(t, svc.Subscribe(context.Background(), "le guin", "ursula_le_guin@gmail.com"))
		assert.Len(t, token, SubscriptionTokenLength)
	})

	t.Run("invalid input is rejected before any write", func(t *testing.T) {
		svc, _, _, _ := newSubscriptionFixture(t)

		cases := []struct {
			name, email string
			want        error
		}{
			{"", "ursula_le_guin@gmail.com", models.ErrInvalidSubscriberName},
			{"Ursula", "", models.ErrInvalidSubscriberEmail},
			{"Ursula", "definitely-not-an-email", models.ErrInvalidSubscriberEmail},
			{"Ursula<script>", "ursula_le_guin@gmail.com", models.ErrInvalidSubscriberName},
			{strings.Repeat("a", 257), "ursula_le_guin@gmail.com", models.ErrInvalidSubscriberName},
		}
		for _, c := range cases {
			assert.ErrorIs(t, svc.Subscribe(context.Background(), c.name, c.email), c.want)
		}
	})

	t.Run("email failure is reported", func(t *testing.T) {
		svc, writer, _, email := newSubscriptionFixture(t)
		writer.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		writer.EXPECT().SaveToken(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		email.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("smtp down"))

		assert.ErrorContains(t, svc.Subscribe(context.Background(), "Ursula", "ursula@example.com"), "smtp down")
	})

	t.Run("store failure is reported", func(t *testing.T) {
		svc, writer, _, _ := newSubscriptionFixture(t)
		writer.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("duplicate"))

		assert.ErrorContains(t, svc.Subscribe(context.Background(), "Ursula", "ursula@example.com"), "duplicate")
	})
}

func TestSubscriptionService_Confirm(t *testing.T) {
	id := uuid.New()

	t.Run("known token", func(t *testing.T) {
		svc, writer, tokens, _ := newSubscriptionFixture(t)
		tokens.EXPECT().GetSubscriberIDByToken(gomock.Any(), "tok").Return(id, true, nil)
		writer.EXPECT().Confirm(gomock.Any(), id).Return(nil)

		assert.NoError(t, svc.Confirm(context.Background(), "tok"))
	})

	t.Run("unknown token", func(t *testing.T) {
		svc, _, tokens, _ := newSubscriptionFixture(t)
		tokens.EXPECT().GetSubscriberIDByToken(gomock.Any(), "nope").Return(uuid.Nil, false, nil)

		assert.ErrorIs(t, svc.Confirm(context.Background(), "nope"), ErrUnknownToken)
	})

	t.Run("lookup failure", func(t *testing.T) {
		svc, _, tokens, _ := newSubscriptionFixture(t)
		tokens.EXPECT().GetSubscriberIDByToken(gomock.Any(), "tok").Return(uuid.Nil, false, errors.New("boom"))

		err := svc.Confirm(context.Background(), "tok")
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrUnknownToken)
	})
}

func TestGenerateSubscriptionToken(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tok, err := GenerateSubscriptionToken()
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if len(tok) != SubscriptionTokenLength {
			t.Fatalf("token %q has length %d", tok, len(tok))
		}
		for _, r := range tok {
			if r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r)) {
				t.Fatalf("token %q contains %q", tok, r)
			}
		}
	})
}
