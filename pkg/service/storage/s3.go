package storage

import (
	"bytes"
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/shelfcheck/pkg/domain/interfaces"
)

// S3Config holds the connection settings for any S3 compatible endpoint
type S3Config struct {
	Bucket string
	Region string
	// Endpoint overrides the AWS endpoint, e.g. "https://<project>.supabase.co/storage/v1/s3"
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string `masq:"secret"`
	// PublicBaseURL prefixes bucket and object name in returned URLs. Defaults to Endpoint.
	PublicBaseURL string
	UsePathStyle  bool
}

// S3 stores blobs in an S3 compatible bucket
type S3 struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

var _ interfaces.BlobStore = &S3{}

// NewS3 creates an S3 blob store. Static credentials are used when both keys are set,
// otherwise the default AWS credential chain applies.
func NewS3(ctx context.Context, cfg S3Config) (*S3, error) {
	if cfg.Bucket == "" {
		return nil, ErrBucketRequired
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load AWS config")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
	})

	baseURL := cfg.PublicBaseURL
	if baseURL == "" {
		baseURL = defaultS3BaseURL(cfg)
	}

	return &S3{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: baseURL,
	}, nil
}

func defaultS3BaseURL(cfg S3Config) string {
	if cfg.Endpoint != "" {
		return strings.TrimRight(cfg.Endpoint, "/")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	return "https://s3." + region + ".amazonaws.com"
}

// Put uploads data, overwriting any object with the same name
func (s *S3) Put(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	if err := validatePut(s.bucket, name); err != nil {
		return "", err
	}

	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(name),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", goerr.Wrap(err, "failed to put object", goerr.V("bucket", s.bucket), goerr.V("name", name))
	}

	return PublicURL(s.baseURL, s.bucket, name), nil
}
