package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/shelfcheck/pkg/domain/interfaces"
	"github.com/secmon-lab/shelfcheck/pkg/service/storage"
	"github.com/secmon-lab/shelfcheck/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Storage backends
const (
	StorageGCS    = "gcs"
	StorageS3     = "s3"
	StorageMemory = "memory"
)

// Storage holds the blob store settings for imported photo files
type Storage struct {
	backend       string
	bucket        string
	publicBaseURL string

	s3Region       string
	s3Endpoint     string
	s3AccessKeyID  string
	s3SecretKey    string
	s3UsePathStyle bool
}

func (x *Storage) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "storage-backend",
			Usage:       "Blob storage backend (gcs, s3 or memory)",
			Category:    "Storage",
			Value:       StorageGCS,
			Sources:     cli.EnvVars("SHELFCHECK_STORAGE_BACKEND"),
			Destination: &x.backend,
		},
		&cli.StringFlag{
			Name:        "storage-bucket",
			Usage:       "Bucket photo files are uploaded to",
			Category:    "Storage",
			Value:       storage.DefaultBucket,
			Sources:     cli.EnvVars("SHELFCHECK_STORAGE_BUCKET"),
			Destination: &x.bucket,
		},
		&cli.StringFlag{
			Name:        "storage-public-base-url",
			Usage:       "Prefix of public photo URLs (bucket and object name are appended)",
			Category:    "Storage",
			Sources:     cli.EnvVars("SHELFCHECK_STORAGE_PUBLIC_BASE_URL"),
			Destination: &x.publicBaseURL,
		},
		&cli.StringFlag{
			Name:        "s3-region",
			Usage:       "S3 region",
			Category:    "Storage",
			Sources:     cli.EnvVars("SHELFCHECK_S3_REGION"),
			Destination: &x.s3Region,
		},
		&cli.StringFlag{
			Name:        "s3-endpoint",
			Usage:       "S3 compatible endpoint (e.g. Supabase storage)",
			Category:    "Storage",
			Sources:     cli.EnvVars("SHELFCHECK_S3_ENDPOINT"),
			Destination: &x.s3Endpoint,
		},
		&cli.StringFlag{
			Name:        "s3-access-key-id",
			Usage:       "S3 access key ID (default credential chain when empty)",
			Category:    "Storage",
			Sources:     cli.EnvVars("SHELFCHECK_S3_ACCESS_KEY_ID"),
			Destination: &x.s3AccessKeyID,
		},
		&cli.StringFlag{
			Name:        "s3-secret-access-key",
			Usage:       "S3 secret access key",
			Category:    "Storage",
			Sources:     cli.EnvVars("SHELFCHECK_S3_SECRET_ACCESS_KEY"),
			Destination: &x.s3SecretKey,
		},
		&cli.BoolFlag{
			Name:        "s3-path-style",
			Usage:       "Use path style S3 addressing",
			Category:    "Storage",
			Sources:     cli.EnvVars("SHELFCHECK_S3_PATH_STYLE"),
			Destination: &x.s3UsePathStyle,
		},
	}
}

func (x Storage) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("backend", x.backend),
		slog.String("bucket", x.bucket),
		slog.String("public_base_url", x.publicBaseURL),
		slog.String("s3_endpoint", x.s3Endpoint),
		slog.Int("s3-secret.len", len(x.s3SecretKey)),
	)
}

// Configure creates the blob store of the selected backend
func (x *Storage) Configure(ctx context.Context) (interfaces.BlobStore, error) {
	switch x.backend {
	case StorageGCS:
		var opts []storage.GCSOption
		if x.publicBaseURL != "" {
			opts = append(opts, storage.WithGCSBaseURL(x.publicBaseURL))
		}
		blob, err := storage.NewGCS(ctx, x.bucket, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize GCS storage")
		}
		logging.Default().Info("Using Cloud Storage", "bucket", x.bucket)
		return blob, nil

	case StorageS3:
		blob, err := storage.NewS3(ctx, storage.S3Config{
			Bucket:          x.bucket,
			Region:          x.s3Region,
			Endpoint:        x.s3Endpoint,
			AccessKeyID:     x.s3AccessKeyID,
			SecretAccessKey: x.s3SecretKey,
			PublicBaseURL:   x.publicBaseURL,
			UsePathStyle:    x.s3UsePathStyle,
		})
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize S3 storage")
		}
		logging.Default().Info("Using S3 storage", "bucket", x.bucket, "endpoint", x.s3Endpoint)
		return blob, nil

	case StorageMemory:
		logging.Default().Warn("Using in-memory blob storage (development mode)")
		return storage.NewMemory(x.bucket), nil

	default:
		return nil, goerr.Wrap(ErrInvalidBackend, "invalid storage backend", goerr.V(BackendKey, x.backend))
	}
}
