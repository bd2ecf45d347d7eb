package backup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"path"
	"time"

	"invite-tracker/internal/config"
	"invite-tracker/internal/storage"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectPutter is the slice of the S3 API used for backups
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// NewS3Client builds an S3 client for any S3-compatible endpoint (AWS, R2, MinIO)
func NewS3Client(ctx context.Context, cfg config.BackupConfig) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID, cfg.AccessKeySecret, "",
		)))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load backup storage config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// Uploader copies every persisted document to a bucket under a timestamped prefix
type Uploader struct {
	client ObjectPutter
	store  storage.DocumentStore
	bucket string
	prefix string
	now    func() time.Time
}

func NewUploader(client ObjectPutter, store storage.DocumentStore, bucket, prefix string) *Uploader {
	return &Uploader{
		client: client,
		store:  store,
		bucket: bucket,
		prefix: prefix,
		now:    time.Now,
	}
}

// Run uploads a snapshot of all documents and returns the number uploaded.
// A failed document does not stop the others.
func (u *Uploader) Run(ctx context.Context) (int, error) {
	names, err := u.store.Names(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list documents: %w", err)
	}

	stamp := u.now().UTC().Format("20060102T150405Z")
	var (
		uploaded int
		errs     []error
	)
	for _, name := range names {
		data, err := u.store.Load(ctx, name)
		if err != nil {
			errs = append(errs, fmt.Errorf("load %s: %w", name, err))
			continue
		}

		key := path.Join(u.prefix, stamp, name)
		_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(u.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(data),
			ContentType: aws.String("application/json"),
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("upload %s: %w", key, err))
			continue
		}
		uploaded++
	}

	log.Printf("[Backup] Uploaded %d/%d documents to %s/%s", uploaded, len(names), u.bucket, path.Join(u.prefix, stamp))
	return uploaded, errors.Join(errs...)
}
