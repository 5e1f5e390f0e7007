package config_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/shelfcheck/pkg/cli/config"
	"github.com/secmon-lab/shelfcheck/pkg/service/storage"
	"github.com/secmon-lab/shelfcheck/pkg/utils/logging"
)

func TestRepositoryValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.Repository
		wantErr error
	}{
		{name: "memory", cfg: config.NewRepositoryForTest("memory", "", "")},
		{name: "firestore", cfg: config.NewRepositoryForTest("firestore", "my-project", "")},
		{name: "postgres", cfg: config.NewRepositoryForTest("postgres", "", "postgres://localhost/shelfcheck")},
		{name: "firestore without project", cfg: config.NewRepositoryForTest("firestore", "", ""), wantErr: config.ErrMissingSetting},
		{name: "postgres without dsn", cfg: config.NewRepositoryForTest("postgres", "", ""), wantErr: config.ErrMissingSetting},
		{name: "unknown backend", cfg: config.NewRepositoryForTest("mysql", "", ""), wantErr: config.ErrInvalidBackend},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr != nil {
				gt.Error(t, err).Is(tt.wantErr)
				return
			}
			gt.NoError(t, err)
		})
	}
}

func TestRepositoryConfigureMemory(t *testing.T) {
	repo, err := config.NewRepositoryForTest("memory", "", "").Configure(context.Background())
	gt.NoError(t, err).Required()
	gt.NoError(t, repo.Close())
}

func TestStorageConfigure(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		blob, err := config.NewStorageForTest("memory", "photos").Configure(context.Background())
		gt.NoError(t, err).Required()

		url, err := blob.Put(context.Background(), "a.jpg", []byte("jpeg"), "image/jpeg")
		gt.NoError(t, err).Required()
		gt.Value(t, url).Equal(storage.PublicURL(storage.DefaultMemoryBaseURL, "photos", "a.jpg"))
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := config.NewStorageForTest("ftp", "photos").Configure(context.Background())
		gt.Error(t, err).Is(config.ErrInvalidBackend)
	})
}

func TestLoggerConfigure(t *testing.T) {
	t.Cleanup(func() {
		logging.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	})

	t.Run("json to file", func(t *testing.T) {
		closer, err := config.NewLoggerForTest("debug", "json", t.TempDir()+"/shelfcheck.log").Configure()
		gt.NoError(t, err).Required()
		closer()
	})

	t.Run("invalid level", func(t *testing.T) {
		_, err := config.NewLoggerForTest("verbose", "console", "stdout").Configure()
		gt.Error(t, err).Is(config.ErrInvalidConfig)
	})

	t.Run("invalid format", func(t *testing.T) {
		_, err := config.NewLoggerForTest("info", "xml", "stdout").Configure()
		gt.Error(t, err).Is(config.ErrInvalidConfig)
	})
}
