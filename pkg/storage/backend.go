package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
)

// ErrNotExist is returned by Read when no object is stored under the key
var ErrNotExist = errors.New("object does not exist")

// Backend stores whole objects under string keys. Exists reports a missing
// object as false with a nil error; any other failure is returned.
type Backend interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, data []byte) error
	Exists(ctx context.Context, key string) (bool, error)
}

// Options configures the remote backends selected by Open
type Options struct {
	Region   string
	Endpoint string
}

const s3Scheme = "s3://"

// Open returns the backend and key for a dataset location. Locations of the
// form s3://bucket/key are stored in S3, anything else is a local file path.
func Open(ctx context.Context, location string, opts Options) (Backend, string, error) {
	if !strings.HasPrefix(location, s3Scheme) {
		return NewFileBackend(), location, nil
	}

	bucket, key, err := ParseS3Location(location)
	if err != nil {
		return nil, "", err
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	return NewS3Backend(NewS3Client(awsCfg, opts.Endpoint), bucket), key, nil
}

// ParseS3Location splits s3://bucket/key into bucket and key
func ParseS3Location(location string) (string, string, error) {
	rest := strings.TrimPrefix(location, s3Scheme)
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("invalid S3 location %q: expected s3://bucket/key", location)
	}
	return bucket, key, nil
}
