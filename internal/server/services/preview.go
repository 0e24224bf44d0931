package services

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Seams over the AWS SDK, replaced in tests.
var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
)

// Presigner hands out short-lived upload URLs for object keys.
type Presigner interface {
	PresignPut(ctx context.Context, key string) (url string, expiresAt time.Time, err error)
}

// S3Settings locate the bucket that holds preview images. BaseEndpoint
// points at MinIO or another S3-compatible server; leave it empty for AWS.
type S3Settings struct {
	AccessKey    string
	SecretKey    string
	Bucket       string
	Region       string
	BaseEndpoint string
	Expiry       time.Duration
}

type S3Presigner struct {
	client *s3.PresignClient
	bucket string
	expiry time.Duration
	now    func() time.Time
}

func NewS3Presigner(ctx context.Context, st S3Settings) (*S3Presigner, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(st.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(st.AccessKey, st.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if st.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(st.BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	expiry := st.Expiry
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}

	return &S3Presigner{
		client: newS3PresignClient(client),
		bucket: st.Bucket,
		expiry: expiry,
		now:    time.Now,
	}, nil
}

func (p *S3Presigner) PresignPut(ctx context.Context, key string) (string, time.Time, error) {
	expiresAt := p.now().Add(p.expiry)

	req, err := presignPutObject(p.client, ctx, &s3.PutObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(p.expiry))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("presign put: %w", err)
	}

	return req.URL, expiresAt, nil
}

// PreviewStorageKey returns a fresh object key for a book's preview image.
func PreviewStorageKey(bookID string, at time.Time) string {
	return fmt.Sprintf("previews/%d/%02d/%02d/%s/%s", at.Year(), at.Month(), at.Day(), bookID, uuid.New())
}
