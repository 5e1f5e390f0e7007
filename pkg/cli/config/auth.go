package config

import (
	"log/slog"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/shelfcheck/pkg/domain/interfaces"
	"github.com/secmon-lab/shelfcheck/pkg/domain/model/auth"
	"github.com/secmon-lab/shelfcheck/pkg/usecase"
	"github.com/secmon-lab/shelfcheck/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Auth holds the admin login gate settings. An admin given by flags is added to those of
// the configuration file.
type Auth struct {
	noAuth            string
	adminEmail        string
	adminName         string
	adminPasswordHash string
	tokenTTL          time.Duration
}

func (x *Auth) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "no-auth",
			Usage:       "Skip authentication and act as the given email (development only)",
			Category:    "Authentication",
			Sources:     cli.EnvVars("SHELFCHECK_NO_AUTH"),
			Destination: &x.noAuth,
		},
		&cli.StringFlag{
			Name:        "admin-email",
			Usage:       "Email of an admin allowed to sign in",
			Category:    "Authentication",
			Sources:     cli.EnvVars("SHELFCHECK_ADMIN_EMAIL"),
			Destination: &x.adminEmail,
		},
		&cli.StringFlag{
			Name:        "admin-name",
			Usage:       "Display name of the admin",
			Category:    "Authentication",
			Sources:     cli.EnvVars("SHELFCHECK_ADMIN_NAME"),
			Destination: &x.adminName,
		},
		&cli.StringFlag{
			Name:        "admin-password-hash",
			Usage:       "bcrypt hash of the admin password (see hash-password)",
			Category:    "Authentication",
			Sources:     cli.EnvVars("SHELFCHECK_ADMIN_PASSWORD_HASH"),
			Destination: &x.adminPasswordHash,
		},
		&cli.DurationFlag{
			Name:        "token-ttl",
			Usage:       "Lifetime of a login session",
			Category:    "Authentication",
			Value:       auth.DefaultTokenTTL,
			Sources:     cli.EnvVars("SHELFCHECK_TOKEN_TTL"),
			Destination: &x.tokenTTL,
		},
	}
}

func (x Auth) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("no_auth", x.noAuth != ""),
		slog.String("admin_email", x.adminEmail),
		slog.Int("admin-password-hash.len", len(x.adminPasswordHash)),
		slog.Duration("token_ttl", x.tokenTTL),
	)
}

// IsNoAuthMode returns true if no-auth mode is enabled
func (x *Auth) IsNoAuthMode() bool {
	return x.noAuth != ""
}

// Configure creates the login gate. no-auth takes precedence over admins; without either
// an error is returned.
func (x *Auth) Configure(repo interfaces.Repository, admins []usecase.Admin) (usecase.AuthUseCaseInterface, error) {
	if x.noAuth != "" {
		if len(admins) > 0 || x.adminEmail != "" {
			logging.Default().Warn("--no-auth is set, ignoring configured admins")
		}
		return usecase.NewNoAuthnUseCase(x.noAuth, ""), nil
	}

	if x.adminEmail != "" {
		def := AdminDef{Email: x.adminEmail, Name: x.adminName, PasswordHash: x.adminPasswordHash}
		if err := def.Validate(); err != nil {
			return nil, err
		}
		name := x.adminName
		if name == "" {
			name = x.adminEmail
		}
		admins = append(admins, usecase.Admin{
			Email:        strings.TrimSpace(x.adminEmail),
			Name:         name,
			PasswordHash: x.adminPasswordHash,
		})
	}

	if len(admins) == 0 {
		return nil, goerr.Wrap(ErrMissingSetting,
			"no admin configured: add [[admin]] to the config file, set --admin-email and --admin-password-hash, or use --no-auth")
	}

	return usecase.NewAuthUseCase(repo, admins, usecase.WithTokenTTL(x.tokenTTL)), nil
}
