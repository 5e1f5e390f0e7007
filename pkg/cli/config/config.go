package config

import (
	"log/slog"
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	domainConfig "github.com/secmon-lab/shelfcheck/pkg/domain/model/config"
	"github.com/secmon-lab/shelfcheck/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// AppConfig is the shelfcheck configuration file
type AppConfig struct {
	path string

	Stores           []Store    `toml:"store"`
	Contests         []Contest  `toml:"contest"`
	Admins           []AdminDef `toml:"admin"`
	RejectionReasons []string   `toml:"rejection_reasons"`
}

// Store is a store entry of the catalog
type Store struct {
	Name string `toml:"name"`
}

// Contest is a brand contest with the names of the stores taking part
type Contest struct {
	Name   string   `toml:"name"`
	Payout int64    `toml:"payout"`
	Stores []string `toml:"stores"`
}

// AdminDef is a reviewer allowed to sign in
type AdminDef struct {
	Email        string `toml:"email"`
	Name         string `toml:"name"`
	PasswordHash string `toml:"password_hash" masq:"secret"`
}

// Validate checks if the Contest is valid
func (c *Contest) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return goerr.Wrap(ErrMissingName, "contest name is required")
	}
	if c.Payout <= 0 {
		return goerr.Wrap(ErrInvalidPayout, "invalid contest", goerr.V(NameKey, c.Name), goerr.V("payout", c.Payout))
	}
	return nil
}

// Validate checks if the AdminDef is valid
func (a *AdminDef) Validate() error {
	if !strings.Contains(a.Email, "@") {
		return goerr.Wrap(ErrInvalidAdmin, "admin email is invalid", goerr.V("email", a.Email))
	}
	if !strings.HasPrefix(a.PasswordHash, "$2") {
		return goerr.Wrap(ErrInvalidAdmin, "admin password_hash must be a bcrypt hash", goerr.V("email", a.Email))
	}
	return nil
}

// Validate checks names are present and unique ignoring case, and that contests only
// reference listed stores
func (a *AppConfig) Validate() error {
	stores := make(map[string]bool)
	for _, s := range a.Stores {
		key := strings.ToLower(strings.TrimSpace(s.Name))
		if key == "" {
			return goerr.Wrap(ErrMissingName, "store name is required")
		}
		if stores[key] {
			return goerr.Wrap(ErrDuplicateName, "duplicate store", goerr.V(NameKey, s.Name))
		}
		stores[key] = true
	}

	contests := make(map[string]bool)
	for _, c := range a.Contests {
		if err := c.Validate(); err != nil {
			return goerr.Wrap(err, "invalid contest")
		}
		key := strings.ToLower(strings.TrimSpace(c.Name))
		if contests[key] {
			return goerr.Wrap(ErrDuplicateName, "duplicate contest", goerr.V(NameKey, c.Name))
		}
		contests[key] = true

		for _, name := range c.Stores {
			if !stores[strings.ToLower(strings.TrimSpace(name))] {
				return goerr.Wrap(ErrUnknownStore, "contest references an unlisted store",
					goerr.V(NameKey, c.Name), goerr.V("store", name))
			}
		}
	}

	admins := make(map[string]bool)
	for _, admin := range a.Admins {
		if err := admin.Validate(); err != nil {
			return goerr.Wrap(err, "invalid admin")
		}
		key := strings.ToLower(strings.TrimSpace(admin.Email))
		if admins[key] {
			return goerr.Wrap(ErrDuplicateName, "duplicate admin", goerr.V("email", admin.Email))
		}
		admins[key] = true
	}

	for _, r := range a.RejectionReasons {
		if strings.TrimSpace(r) == "" {
			return goerr.Wrap(ErrInvalidConfig, "rejection reason must not be empty")
		}
	}

	return nil
}

// Flags returns the configuration file flag
func (a *AppConfig) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Configuration file (TOML) with stores, contests, admins and rejection reasons",
			Sources:     cli.EnvVars("SHELFCHECK_CONFIG"),
			Destination: &a.path,
		},
	}
}

func (a AppConfig) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("path", a.path),
		slog.Int("stores", len(a.Stores)),
		slog.Int("contests", len(a.Contests)),
		slog.Int("admins", len(a.Admins)),
	)
}

// Path returns the configuration file path
func (a *AppConfig) Path() string {
	return a.path
}

// Configure loads the file given by --config. Without a path the configuration stays empty.
func (a *AppConfig) Configure() error {
	if a.path == "" {
		return nil
	}
	loaded, err := LoadAppConfiguration(a.path)
	if err != nil {
		return err
	}
	loaded.path = a.path
	*a = *loaded
	return nil
}

// LoadAppConfiguration loads the application configuration from a TOML file
func LoadAppConfiguration(path string) (*AppConfig, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V(ConfigPathKey, path))
	}

	var config AppConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, goerr.Wrap(err, "failed to parse TOML config", goerr.V(ConfigPathKey, path))
	}

	if err := config.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V(ConfigPathKey, path))
	}

	return &config, nil
}

// ToDomainCatalog converts AppConfig to the catalog seeded into the repository
func (a *AppConfig) ToDomainCatalog() *domainConfig.Catalog {
	stores := make([]domainConfig.StoreSeed, len(a.Stores))
	for i, s := range a.Stores {
		stores[i] = domainConfig.StoreSeed{Name: s.Name}
	}

	brands := make([]domainConfig.BrandSeed, len(a.Contests))
	for i, c := range a.Contests {
		brands[i] = domainConfig.BrandSeed{
			Name:         c.Name,
			PayoutAmount: c.Payout,
			Stores:       c.Stores,
		}
	}

	return &domainConfig.Catalog{
		Stores:           stores,
		Brands:           brands,
		RejectionReasons: a.RejectionReasons,
	}
}

// ToAdmins converts the admin entries for the login gate
func (a *AppConfig) ToAdmins() []usecase.Admin {
	admins := make([]usecase.Admin, len(a.Admins))
	for i, admin := range a.Admins {
		admins[i] = usecase.Admin{
			Email:        strings.TrimSpace(admin.Email),
			Name:         admin.Name,
			PasswordHash: admin.PasswordHash,
		}
	}
	return admins
}
