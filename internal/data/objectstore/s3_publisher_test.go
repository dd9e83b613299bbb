package objectstore

import (
	"context"
	"errors"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logicdoc/internal/core/ports"
)

type fakeBucket struct {
	exists     bool
	existsErr  error
	made       []string
	uploads    map[string]string
	failOnPath string
	checks     int
}

func (f *fakeBucket) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	f.checks++
	return f.exists, f.existsErr
}

func (f *fakeBucket) MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error {
	f.made = append(f.made, bucketName+"@"+opts.Region)
	return nil
}

func (f *fakeBucket) FPutObject(ctx context.Context, bucketName, objectName, filePath string, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	if filePath == f.failOnPath {
		return minio.UploadInfo{}, errors.New("boom")
	}
	if f.uploads == nil {
		f.uploads = make(map[string]string)
	}
	f.uploads[bucketName+"/"+objectName] = opts.ContentType
	return minio.UploadInfo{Key: objectName, Size: 10}, nil
}

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "docs/run-1/backend_documentation.md", ObjectKey("/docs/", "run-1", "backend_documentation.md"))
	assert.Equal(t, "run-1/functions.tsv", ObjectKey("", "run-1", "/functions.tsv"))
}

func TestPublish_CreatesBucketOnceAndUploads(t *testing.T) {
	fake := &fakeBucket{}
	p, err := newPublisher(fake, "reports", "logicdoc", "eu-west-1")
	require.NoError(t, err)

	artifacts := []ports.Artifact{
		{Name: "backend_documentation.md", Path: "/tmp/a.md", ContentType: "text/markdown"},
		{Name: "functions.tsv", Path: "/tmp/b.tsv"},
	}
	keys, err := p.Publish(context.Background(), "run-1", artifacts)
	require.NoError(t, err)
	assert.Equal(t, []string{"logicdoc/run-1/backend_documentation.md", "logicdoc/run-1/functions.tsv"}, keys)
	assert.Equal(t, []string{"reports@eu-west-1"}, fake.made)
	assert.Equal(t, "text/markdown", fake.uploads["reports/logicdoc/run-1/backend_documentation.md"])
	assert.Equal(t, "application/octet-stream", fake.uploads["reports/logicdoc/run-1/functions.tsv"])

	_, err = p.Publish(context.Background(), "run-2", artifacts[:1])
	require.NoError(t, err)
	assert.Equal(t, 1, fake.checks, "bucket existence should be checked once")
}

func TestPublish_Errors(t *testing.T) {
	_, err := newPublisher(&fakeBucket{}, " ", "", "")
	require.Error(t, err)

	p, err := newPublisher(&fakeBucket{exists: true}, "reports", "", "")
	require.NoError(t, err)
	_, err = p.Publish(context.Background(), "", []ports.Artifact{{Name: "a"}})
	require.Error(t, err)

	failing, err := newPublisher(&fakeBucket{existsErr: errors.New("denied")}, "reports", "", "")
	require.NoError(t, err)
	_, err = failing.Publish(context.Background(), "run", []ports.Artifact{{Name: "a", Path: "a"}})
	require.ErrorContains(t, err, "denied")

	partial, err := newPublisher(&fakeBucket{exists: true, failOnPath: "b"}, "reports", "", "")
	require.NoError(t, err)
	keys, err := partial.Publish(context.Background(), "run", []ports.Artifact{{Name: "a", Path: "a"}, {Name: "b", Path: "b"}})
	require.Error(t, err)
	assert.Equal(t, []string{"run/a"}, keys)
}

func TestNewS3Publisher_Validation(t *testing.T) {
	_, err := NewS3Publisher(S3Config{})
	require.ErrorContains(t, err, "endpoint")

	_, err = NewS3Publisher(S3Config{Endpoint: "localhost:9000", Bucket: "b"})
	require.ErrorContains(t, err, "access key")

	p, err := NewS3Publisher(S3Config{Endpoint: "localhost:9000", Bucket: "b", AccessKey: "k", SecretKey: "s"})
	require.NoError(t, err)
	assert.Equal(t, "us-east-1", p.region)
}
