package images

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"eventsapi/config"
	"eventsapi/models"
)

// Store holds profile images keyed by username.
type Store interface {
	Put(ctx context.Context, username, dataURI string) error
	Get(ctx context.Context, username string) (string, error)
}

type s3Store struct {
	client *s3.Client
	bucket string
}

// NewS3Store builds a client against the configured endpoint (AWS proper or a
// MinIO-compatible override).
func NewS3Store(ctx context.Context, cfg *config.Config) (Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKey,
			cfg.S3SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	return &s3Store{client: client, bucket: cfg.S3Bucket}, nil
}

// Put uploads the decoded image under the username key with a public-read
// ACL, overwriting any previous image.
func (s *s3Store) Put(ctx context.Context, username, dataURI string) error {
	contentType, data, err := DecodeDataURI(dataURI)
	if err != nil {
		return err
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(username),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		ACL:         types.ObjectCannedACLPublicRead,
	})
	return err
}

func (s *s3Store) Get(ctx context.Context, username string) (string, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(username),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return "", models.ErrNotFound
		}
		return "", err
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return "", err
	}

	contentType := "image/png"
	if out.ContentType != nil && *out.ContentType != "" {
		contentType = *out.ContentType
	}
	return EncodeDataURI(contentType, data), nil
}
