// Command token mints a bearer token for an operator, host or agency account
// using the server's JWT_SECRET, e.g. for seeding the first admin or for
// scripted calls against the API.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/mmynk/tourledger/internal/auth"
	"github.com/mmynk/tourledger/internal/config"
	"github.com/mmynk/tourledger/internal/models"
	"github.com/mmynk/tourledger/pkg/logging"
)

func main() {
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	if err := run(os.Args[1:], os.Stdout, cfg.JWTSecret, cfg.JWTTTL); err != nil {
		slog.Error("Failed to issue token", "error", err)
		os.Exit(1)
	}
}

// run parses args and writes a signed token for the described actor to out.
func run(args []string, out io.Writer, secret string, lifetime time.Duration) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	userID := fs.String("user", "", "user id carried in the token")
	email := fs.String("email", "", "account email; agencies are matched to their roster entry by it")
	role := fs.String("role", string(models.RoleAdmin), "admin, host or agency")
	ttl := fs.Duration("ttl", lifetime, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *userID == "" {
		return errors.New("-user is required")
	}
	actor := models.Actor{
		UserID: *userID,
		Email:  strings.ToLower(strings.TrimSpace(*email)),
		Role:   models.Role(strings.ToLower(*role)),
	}
	if actor.Role == models.RoleAgency && actor.Email == "" {
		return errors.New("-email is required for agency tokens")
	}

	if *ttl <= 0 {
		return fmt.Errorf("-ttl must be positive, got %s", *ttl)
	}

	manager := auth.NewJWTManager(secret, *ttl)
	token, err := manager.Generate(actor)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, token)
	return err
}
