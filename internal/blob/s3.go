package blob

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rotisserie/eris"
)

// S3Options configures an S3-compatible object store source.
type S3Options struct {
	Endpoint  string
	Bucket    string
	Prefix    string
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool
}

// S3Source reads documents from {bucket}/{prefix}/{name}.json.
type S3Source struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewS3Source creates an S3Source. Empty keys sign requests anonymously,
// which suits public data buckets.
func NewS3Source(opts S3Options) (*S3Source, error) {
	if opts.Endpoint == "" {
		return nil, eris.New("s3: endpoint is required")
	}
	if opts.Bucket == "" {
		return nil, eris.New("s3: bucket is required")
	}

	if opts.Region == "" {
		opts.Region = "us-east-1"
	}

	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
		Region: opts.Region,
	})
	if err != nil {
		return nil, eris.Wrap(err, "s3: create client")
	}

	return &S3Source{
		client: client,
		bucket: opts.Bucket,
		prefix: strings.Trim(opts.Prefix, "/"),
	}, nil
}

func (s *S3Source) key(p string) string {
	if s.prefix == "" {
		return p
	}
	return s.prefix + "/" + p
}

// Fetch downloads the named object.
func (s *S3Source) Fetch(ctx context.Context, name string) ([]byte, error) {
	p, err := objectPath(name)
	if err != nil {
		return nil, err
	}
	key := s.key(p)

	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, s.mapError(err, name)
	}
	defer obj.Close() //nolint:errcheck

	data, err := readDocument(obj, name, maxDocumentBytes)
	if err != nil {
		if errors.Is(err, ErrTooLarge) {
			return nil, err
		}
		return nil, s.mapError(err, name)
	}
	return data, nil
}

func (s *S3Source) mapError(err error, name string) error {
	resp := minio.ToErrorResponse(err)
	if resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound {
		return eris.Wrapf(ErrNotFound, "blob: %s", name)
	}
	return eris.Wrapf(err, "s3: get %s from bucket %s", name, s.bucket)
}
