// Package main implements the token CLI, which signs a bearer token for the
// StudyCast API using the configured auth.jwt_secret.
//
// Usage:
//
//	STUDYCAST_AUTH_JWT_SECRET=... token --subject frontend --lifetime 60
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/phrazzld/studycast/internal/config"
	"github.com/phrazzld/studycast/internal/service/auth"
	"github.com/spf13/pflag"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "token: failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := run(context.Background(), os.Args[1:], os.Stdout, cfg.Auth); err != nil {
		fmt.Fprintf(os.Stderr, "token: %v\n", err)
		os.Exit(1)
	}
}

// run parses args, signs one token and writes it to out followed by a newline.
func run(ctx context.Context, args []string, out io.Writer, authCfg config.AuthConfig) error {
	flags := pflag.NewFlagSet("token", pflag.ContinueOnError)
	subject := flags.StringP("subject", "s", "studycast-client", "subject recorded in the token")
	lifetime := flags.IntP("lifetime", "l", 0, "token lifetime in minutes (default auth.token_lifetime_minutes)")
	if err := flags.Parse(args); err != nil {
		return err
	}

	if !authCfg.Enabled() {
		return errors.New("auth.jwt_secret is not set; the API does not require tokens")
	}
	if *lifetime < 0 {
		return fmt.Errorf("lifetime must not be negative, got %d", *lifetime)
	}
	if *lifetime > 0 {
		authCfg.TokenLifetimeMinutes = *lifetime
	}

	svc, err := auth.NewJWTService(authCfg)
	if err != nil {
		return err
	}
	token, err := svc.GenerateToken(ctx, *subject)
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}

	_, err = fmt.Fprintln(out, token)
	return err
}
