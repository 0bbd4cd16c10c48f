package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/studycast/internal/api/shared"
	"github.com/phrazzld/studycast/internal/mocks"
	"github.com/phrazzld/studycast/internal/service/auth"
	"github.com/stretchr/testify/assert"
)

func TestAuthMiddleware_Authenticate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		authHeader      string
		validateErr     error
		claims          *auth.Claims
		expectedStatus  int
		expectedSubject string
	}{
		{
			name:            "valid token",
			authHeader:      "Bearer valid-token",
			claims:          &auth.Claims{Subject: "frontend"},
			expectedStatus:  http.StatusOK,
			expectedSubject: "frontend",
		},
		{
			name:            "lowercase scheme",
			authHeader:      "bearer valid-token",
			claims:          &auth.Claims{Subject: "cli"},
			expectedStatus:  http.StatusOK,
			expectedSubject: "cli",
		},
		{
			name:           "missing auth header",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "invalid auth format",
			authHeader:     "InvalidFormat",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "wrong scheme",
			authHeader:     "Basic dXNlcjpwYXNz",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "expired token",
			authHeader:     "Bearer expired-token",
			validateErr:    auth.ErrExpiredToken,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "invalid token",
			authHeader:     "Bearer invalid-token",
			validateErr:    auth.ErrInvalidToken,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "unexpected validation failure",
			authHeader:     "Bearer some-token",
			validateErr:    errors.New("keystore offline"),
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			jwtService := &mocks.MockJWTService{
				ValidateErr: tt.validateErr,
				Claims:      tt.claims,
			}
			middleware := NewAuthMiddleware(jwtService)

			var captured string
			var called bool
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				captured, _ = GetSubject(r)
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/process", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			recorder := httptest.NewRecorder()

			middleware.Authenticate(next).ServeHTTP(recorder, req)

			assert.Equal(t, tt.expectedStatus, recorder.Code)
			assert.Equal(t, tt.expectedStatus == http.StatusOK, called)
			assert.Equal(t, tt.expectedSubject, captured)
			if tt.expectedStatus != http.StatusOK {
				assert.NotContains(t, recorder.Body.String(), "keystore")
			}
		})
	}
}

func TestGetSubject(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := GetSubject(req)
	assert.False(t, ok)

	req = req.WithContext(shared.SetSubject(req.Context(), "ops"))
	subject, ok := GetSubject(req)
	assert.True(t, ok)
	assert.Equal(t, "ops", subject)
}
