// Package objectstore publishes generated documentation to S3-compatible
// storage.
package objectstore

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"logicdoc/internal/core/ports"
)

var _ ports.Publisher = (*S3Publisher)(nil)

type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
	UseSSL    bool
}

// bucketClient is the subset of *minio.Client the publisher needs.
type bucketClient interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	FPutObject(ctx context.Context, bucketName, objectName, filePath string, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

type S3Publisher struct {
	client bucketClient
	bucket string
	prefix string
	region string

	initOnce sync.Once
	initErr  error
}

func NewS3Publisher(cfg S3Config) (*S3Publisher, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint is required")
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, fmt.Errorf("s3 access key and secret key are required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}
	return newPublisher(client, cfg.Bucket, cfg.Prefix, region)
}

func newPublisher(client bucketClient, bucket, prefix, region string) (*S3Publisher, error) {
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	return &S3Publisher{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(strings.TrimSpace(prefix), "/"),
		region: region,
	}, nil
}

func (p *S3Publisher) ensureBucket(ctx context.Context) error {
	p.initOnce.Do(func() {
		exists, err := p.client.BucketExists(ctx, p.bucket)
		if err != nil {
			p.initErr = err
			return
		}
		if exists {
			return
		}
		p.initErr = p.client.MakeBucket(ctx, p.bucket, minio.MakeBucketOptions{Region: p.region})
	})
	return p.initErr
}

// Publish uploads each artifact to <bucket>/<prefix>/<runID>/<name> and
// returns the object keys in artifact order.
func (p *S3Publisher) Publish(ctx context.Context, runID string, artifacts []ports.Artifact) ([]string, error) {
	runID = strings.TrimSpace(runID)
	if runID == "" {
		return nil, fmt.Errorf("run_id is required")
	}
	if len(artifacts) == 0 {
		return nil, nil
	}
	if err := p.ensureBucket(ctx); err != nil {
		return nil, fmt.Errorf("ensure bucket %q: %w", p.bucket, err)
	}

	keys := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		key := ObjectKey(p.prefix, runID, a.Name)
		contentType := a.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		info, err := p.client.FPutObject(ctx, p.bucket, key, a.Path, minio.PutObjectOptions{ContentType: contentType})
		if err != nil {
			return keys, fmt.Errorf("upload %q to %s/%s: %w", a.Path, p.bucket, key, err)
		}
		slog.Debug("published artifact", "bucket", p.bucket, "key", key, "bytes", info.Size)
		keys = append(keys, key)
	}
	return keys, nil
}

func ObjectKey(prefix, runID, name string) string {
	name = strings.TrimLeft(strings.TrimSpace(name), "/")
	parts := make([]string, 0, 3)
	if p := strings.Trim(strings.TrimSpace(prefix), "/"); p != "" {
		parts = append(parts, p)
	}
	parts = append(parts, strings.TrimSpace(runID), name)
	return path.Join(parts...)
}
