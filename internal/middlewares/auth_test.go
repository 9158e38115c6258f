package middlewares

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-newsletter/internal/services"
	"github.com/stretchr/testify/assert"
)

func TestSessionMiddleware(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userID := uuid.New()

	tests := []struct {
		name             string
		mockSetup        func(tok *MockTokener, sess *MockSessionResolver)
		expectedStatus   int
		expectedLocation string
		expectNextCalled bool
	}{
		{
			name: "NoToken",
			mockSetup: func(tok *MockTokener, sess *MockSessionResolver) {
				tok.EXPECT().GetTokenFromRequest(gomock.Any(), gomock.Any()).
					Return("", errors.New("no token"))
			},
			expectedStatus:   http.StatusSeeOther,
			expectedLocation: LoginPath,
		},
		{
			name: "UnknownSession",
			mockSetup: func(tok *MockTokener, sess *MockSessionResolver) {
				tok.EXPECT().GetTokenFromRequest(gomock.Any(), gomock.Any()).Return("sometoken", nil)
				sess.EXPECT().Resolve(gomock.Any(), "sometoken").Return(uuid.Nil, services.ErrNoSession)
			},
			expectedStatus:   http.StatusSeeOther,
			expectedLocation: LoginPath,
		},
		{
			name: "StoreFailure",
			mockSetup: func(tok *MockTokener, sess *MockSessionResolver) {
				tok.EXPECT().GetTokenFromRequest(gomock.Any(), gomock.Any()).Return("sometoken", nil)
				sess.EXPECT().Resolve(gomock.Any(), "sometoken").Return(uuid.Nil, errors.New("redis down"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name: "ValidSession",
			mockSetup: func(tok *MockTokener, sess *MockSessionResolver) {
				tok.EXPECT().GetTokenFromRequest(gomock.Any(), gomock.Any()).Return("validtoken", nil)
				sess.EXPECT().Resolve(gomock.Any(), "validtoken").Return(userID, nil)
			},
			expectedStatus:   http.StatusOK,
			expectNextCalled: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := NewMockTokener(ctrl)
			sess := NewMockSessionResolver(ctrl)
			tt.mockSetup(tok, sess)

			nextCalled := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				got, ok := UserIDFromContext(r.Context())
				assert.True(t, ok)
				assert.Equal(t, userID, got)
				w.WriteHeader(http.StatusOK)
			})

			handler := SessionMiddleware(tok, sess)(next)
			req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Equal(t, tt.expectedLocation, rr.Header().Get("Location"))
			assert.Equal(t, tt.expectNextCalled, nextCalled)
		})
	}
}

func TestUserIDFromContext_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := UserIDFromContext(req.Context())
	assert.False(t, ok)
}
