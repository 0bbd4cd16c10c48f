package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/phrazzld/studycast/internal/config"
	"github.com/phrazzld/studycast/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "token-cli-secret-that-is-long-enough-for-hs256"

func TestRun(t *testing.T) {
	t.Parallel()

	authCfg := config.AuthConfig{JWTSecret: testSecret, TokenLifetimeMinutes: 30}

	t.Run("signs a token for the subject", func(t *testing.T) {
		t.Parallel()
		var out bytes.Buffer
		require.NoError(t, run(context.Background(), []string{"--subject", "frontend", "-l", "10"}, &out, authCfg))

		svc, err := auth.NewJWTService(authCfg)
		require.NoError(t, err)
		claims, err := svc.ValidateToken(context.Background(), strings.TrimSpace(out.String()))
		require.NoError(t, err)
		assert.Equal(t, "frontend", claims.Subject)
		assert.WithinDuration(t, claims.IssuedAt.Add(10*time.Minute), claims.ExpiresAt, time.Second)
	})

	t.Run("default subject", func(t *testing.T) {
		t.Parallel()
		var out bytes.Buffer
		require.NoError(t, run(context.Background(), nil, &out, authCfg))
		assert.NotEmpty(t, strings.TrimSpace(out.String()))
	})

	t.Run("auth disabled", func(t *testing.T) {
		t.Parallel()
		err := run(context.Background(), nil, &bytes.Buffer{}, config.AuthConfig{})
		assert.ErrorContains(t, err, "auth.jwt_secret")
	})

	t.Run("weak secret", func(t *testing.T) {
		t.Parallel()
		err := run(context.Background(), nil, &bytes.Buffer{}, config.AuthConfig{JWTSecret: "short"})
		assert.ErrorIs(t, err, auth.ErrWeakSecret)
	})

	t.Run("negative lifetime", func(t *testing.T) {
		t.Parallel()
		err := run(context.Background(), []string{"--lifetime", "-1"}, &bytes.Buffer{}, authCfg)
		assert.Error(t, err)
	})

	t.Run("unknown flag", func(t *testing.T) {
		t.Parallel()
		err := run(context.Background(), []string{"--nope"}, &bytes.Buffer{}, authCfg)
		assert.Error(t, err)
	})
}
