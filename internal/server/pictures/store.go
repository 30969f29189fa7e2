// Package pictures issues upload locations for plant pictures kept in an
// S3-compatible object store (MinIO in development).
package pictures

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Store hands out a storage key and a presigned upload URL for it.
type Store interface {
	PresignUpload(ctx context.Context, userID int64) (key, url string, err error)
}

type Config struct {
	Region       string
	AccessKey    string
	SecretKey    string
	BaseEndpoint string
	Bucket       string
	URLExpiry    time.Duration
}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}

	now = time.Now
)

var ErrNotConfigured = errors.New("picture store is not configured")

type S3Store struct {
	presign *s3.PresignClient
	bucket  string
	expiry  time.Duration
}

// NewS3Store builds the presign client once. Bucket and endpoint are required.
func NewS3Store(ctx context.Context, cfg Config) (*S3Store, error) {
	if cfg.Bucket == "" || cfg.BaseEndpoint == "" {
		return nil, ErrNotConfigured
	}

	awsCfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey, cfg.SecretKey, "",
		)))
	if err != nil {
		return nil, fmt.Errorf("load s3 config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
		o.UsePathStyle = true
	})

	expiry := cfg.URLExpiry
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}
	return &S3Store{presign: s3.NewPresignClient(client), bucket: cfg.Bucket, expiry: expiry}, nil
}

// StorageKey returns a fresh object key under the user's prefix.
func StorageKey(userID int64) string {
	d := now().UTC()
	return fmt.Sprintf("users/%d/%d/%02d/%02d/%v", userID, d.Year(), d.Month(), d.Day(), uuid.New())
}

func (s *S3Store) PresignUpload(ctx context.Context, userID int64) (string, string, error) {
	key := StorageKey(userID)
	req, err := presignPutObject(s.presign, ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.expiry))
	if err != nil {
		return "", "", fmt.Errorf("presign upload: %w", err)
	}
	return key, req.URL, nil
}
