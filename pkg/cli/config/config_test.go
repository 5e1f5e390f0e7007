package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/shelfcheck/pkg/cli/config"
)

const bcryptLike = "$2a$10$abcdefghijklmnopqrstuuJq0e4mC0n1yI0t0y1Vd1oHq8m2b6eS."

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	gt.NoError(t, os.WriteFile(path, []byte(content), 0600)).Required()
	return path
}

func TestLoadAppConfiguration(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
		invalid bool
	}{
		{
			name: "valid configuration",
			content: `
rejection_reasons = ["Blurry", "Wrong store"]

[[store]]
name = "Store A"

[[store]]
name = "Store B"

[[contest]]
name = "Acme"
payout = 50
stores = ["Store A", "store b"]

[[admin]]
email = "admin@example.com"
name = "Admin"
password_hash = "` + bcryptLike + `"
`,
		},
		{
			name:    "empty file",
			content: ``,
		},
		{
			name: "duplicate store ignoring case",
			content: `
[[store]]
name = "Store A"
[[store]]
name = "store a"
`,
			wantErr: config.ErrDuplicateName,
		},
		{
			name: "store without name",
			content: `
[[store]]
name = "  "
`,
			wantErr: config.ErrMissingName,
		},
		{
			name: "contest with unlisted store",
			content: `
[[store]]
name = "Store A"
[[contest]]
name = "Acme"
payout = 50
stores = ["Store Z"]
`,
			wantErr: config.ErrUnknownStore,
		},
		{
			name: "contest without payout",
			content: `
[[contest]]
name = "Acme"
`,
			wantErr: config.ErrInvalidPayout,
		},
		{
			name: "admin with plain password",
			content: `
[[admin]]
email = "admin@example.com"
password_hash = "hunter2"
`,
			wantErr: config.ErrInvalidAdmin,
		},
		{
			name: "empty rejection reason",
			content: `
rejection_reasons = ["Blurry", ""]
`,
			wantErr: config.ErrInvalidConfig,
		},
		{
			name:    "broken TOML",
			content: `[[store]`,
			invalid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.LoadAppConfiguration(writeConfig(t, tt.content))
			if tt.wantErr != nil {
				gt.Error(t, err).Is(tt.wantErr)
				return
			}
			if tt.invalid {
				gt.Value(t, err).NotNil()
				return
			}
			gt.NoError(t, err).Required()
			gt.Value(t, cfg).NotNil()
		})
	}
}

func TestLoadAppConfigurationMissingFile(t *testing.T) {
	_, err := config.LoadAppConfiguration(filepath.Join(t.TempDir(), "missing.toml"))
	gt.Value(t, err).NotNil()
}

func TestAppConfigConversion(t *testing.T) {
	cfg, err := config.LoadAppConfiguration(writeConfig(t, `
rejection_reasons = ["Blurry"]

[[store]]
name = "Store A"

[[contest]]
name = "Acme"
payout = 50
stores = ["Store A"]

[[admin]]
email = " admin@example.com "
name = "Admin"
password_hash = "`+bcryptLike+`"
`))
	gt.NoError(t, err).Required()

	catalog := cfg.ToDomainCatalog()
	gt.Array(t, catalog.Stores).Length(1).Required()
	gt.Value(t, catalog.Stores[0].Name).Equal("Store A")
	gt.Array(t, catalog.Brands).Length(1).Required()
	gt.Value(t, catalog.Brands[0].Name).Equal("Acme")
	gt.Value(t, catalog.Brands[0].PayoutAmount).Equal(int64(50))
	gt.Value(t, catalog.Brands[0].Stores).Equal([]string{"Store A"})
	gt.Value(t, catalog.RejectionReasons).Equal([]string{"Blurry"})

	admins := cfg.ToAdmins()
	gt.Array(t, admins).Length(1).Required()
	gt.Value(t, admins[0].Email).Equal("admin@example.com")
	gt.Value(t, admins[0].PasswordHash).Equal(bcryptLike)
}

func TestAppConfigConfigureWithoutPath(t *testing.T) {
	var cfg config.AppConfig
	gt.NoError(t, cfg.Configure()).Required()
	gt.Array(t, cfg.Stores).Length(0)
	gt.Array(t, cfg.ToAdmins()).Length(0)
}
