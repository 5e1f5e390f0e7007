// Package storage provides the blob store backends that hold imported photo files.
// Every backend overwrites on Put and returns the public URL of the object.
package storage

import (
	"net/url"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// DefaultBucket is the bucket photos are uploaded to unless configured otherwise
const DefaultBucket = "execution-images"

var (
	ErrBucketRequired = goerr.New("bucket name is required")
	ErrNameRequired   = goerr.New("object name is required")
)

// PublicURL joins base, bucket and the escaped object name
func PublicURL(base, bucket, name string) string {
	return strings.TrimRight(base, "/") + "/" + url.PathEscape(bucket) + "/" + escapeObjectName(name)
}

func escapeObjectName(name string) string {
	parts := strings.Split(name, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

func validatePut(bucket, name string) error {
	if bucket == "" {
		return ErrBucketRequired
	}
	if name == "" {
		return ErrNameRequired
	}
	return nil
}
