package repositories

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"cambistas-backend/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"
)

// S3API is the part of *s3.Client the blob store calls
type S3API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, opts ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3BlobStore keeps blobs as objects in an S3 compatible bucket (Cloudflare R2)
type S3BlobStore struct {
	client S3API
	bucket string
	prefix string
	logger *zap.Logger
}

// S3BlobStoreOption is a functional option for configuring S3BlobStore
type S3BlobStoreOption func(*S3BlobStore)

// WithS3Logger sets the logger
func WithS3Logger(logger *zap.Logger) S3BlobStoreOption {
	return func(s *S3BlobStore) {
		s.logger = logger
	}
}

// WithS3Prefix stores every key under prefix
func WithS3Prefix(prefix string) S3BlobStoreOption {
	return func(s *S3BlobStore) {
		s.prefix = prefix
	}
}

// NewS3Client builds an R2 client from configuration
func NewS3Client(ctx context.Context, cfg config.R2Config) (*s3.Client, error) {
	if !cfg.Configured() {
		return nil, errors.New("r2 endpoint, bucket and credentials are required")
	}
	region := cfg.Region
	if region == "" {
		region = "auto"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
		awsconfig.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to configure R2 client: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true
	}), nil
}

func NewS3BlobStore(client S3API, bucket string, opts ...S3BlobStoreOption) *S3BlobStore {
	s := &S3BlobStore{client: client, bucket: bucket, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *S3BlobStore) objectKey(key string) string {
	return s.prefix + key + ".json"
}

func (s *S3BlobStore) Load(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("get object %s: %w", key, err)
	}
	defer out.Body.Close()
	return io.ReadAll(out.Body)
}

func (s *S3BlobStore) Save(ctx context.Context, key string, data []byte) error {
	return s.put(ctx, s.objectKey(key), data)
}

func (s *S3BlobStore) put(ctx context.Context, objectKey string, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(objectKey),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", objectKey, err)
	}
	s.logger.Debug("object stored", zap.String("key", objectKey), zap.Int("bytes", len(data)))
	return nil
}

func (s *S3BlobStore) Ping(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	return err
}

// BackupObject describes a stored backup
type BackupObject struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// PutBackup writes a timestamped copy of a blob outside the live keys
func (s *S3BlobStore) PutBackup(ctx context.Context, prefix, key string, at time.Time, data []byte) (string, error) {
	objectKey := fmt.Sprintf("%s%s_%s.json", prefix, key, at.UTC().Format("20060102_150405"))
	return objectKey, s.put(ctx, objectKey, data)
}

// ListBackups returns stored backups under prefix, newest first
func (s *S3BlobStore) ListBackups(ctx context.Context, prefix string, limit int) ([]BackupObject, error) {
	var (
		backups []BackupObject
		token   *string
	)
	for {
		out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("list backups: %w", err)
		}
		for _, obj := range out.Contents {
			key := aws.ToString(obj.Key)
			if !strings.HasSuffix(key, ".json") {
				continue
			}
			backups = append(backups, BackupObject{
				Key:          key,
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
			})
		}
		if !aws.ToBool(out.IsTruncated) {
			break
		}
		token = out.NextContinuationToken
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].LastModified.After(backups[j].LastModified)
	})
	if limit > 0 && len(backups) > limit {
		backups = backups[:limit]
	}
	return backups, nil
}
