package storage

import (
	"context"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/shelfcheck/pkg/domain/interfaces"
	"github.com/secmon-lab/shelfcheck/pkg/utils/safe"
	"google.golang.org/api/option"
)

// DefaultGCSBaseURL serves public objects of Cloud Storage buckets
const DefaultGCSBaseURL = "https://storage.googleapis.com"

// GCS stores blobs in a Cloud Storage bucket
type GCS struct {
	client  *storage.Client
	bucket  string
	baseURL string
}

var _ interfaces.BlobStore = &GCS{}

// GCSOption configures the GCS store
type GCSOption func(*gcsConfig)

type gcsConfig struct {
	baseURL    string
	clientOpts []option.ClientOption
}

// WithGCSBaseURL overrides the public URL prefix, e.g. for a CDN in front of the bucket
func WithGCSBaseURL(baseURL string) GCSOption {
	return func(c *gcsConfig) {
		c.baseURL = baseURL
	}
}

// WithGCSClientOptions passes options to the Cloud Storage client
func WithGCSClientOptions(opts ...option.ClientOption) GCSOption {
	return func(c *gcsConfig) {
		c.clientOpts = append(c.clientOpts, opts...)
	}
}

// NewGCS creates a Cloud Storage blob store using application default credentials
func NewGCS(ctx context.Context, bucket string, opts ...GCSOption) (*GCS, error) {
	if bucket == "" {
		return nil, ErrBucketRequired
	}

	cfg := &gcsConfig{baseURL: DefaultGCSBaseURL}
	for _, opt := range opts {
		opt(cfg)
	}

	client, err := storage.NewClient(ctx, cfg.clientOpts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Cloud Storage client")
	}

	return &GCS{
		client:  client,
		bucket:  bucket,
		baseURL: cfg.baseURL,
	}, nil
}

// Put uploads data, overwriting any object with the same name
func (g *GCS) Put(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	if err := validatePut(g.bucket, name); err != nil {
		return "", err
	}

	w := g.client.Bucket(g.bucket).Object(name).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := w.Write(data); err != nil {
		safe.Close(ctx, w)
		return "", goerr.Wrap(err, "failed to write object", goerr.V("bucket", g.bucket), goerr.V("name", name))
	}
	if err := w.Close(); err != nil {
		return "", goerr.Wrap(err, "failed to upload object", goerr.V("bucket", g.bucket), goerr.V("name", name))
	}

	return PublicURL(g.baseURL, g.bucket, name), nil
}

// Close releases the underlying client
func (g *GCS) Close() error {
	return g.client.Close()
}
