// Package storage keeps uploaded post images in S3 or a MinIO bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"blogicum/internal/config"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// MaxImageSize caps a single upload at 10MB.
const MaxImageSize = 10 << 20

var (
	ErrNotImage      = errors.New("file is not an image")
	ErrImageTooLarge = errors.New("image is larger than 10MB")
)

// ImageStore saves an uploaded image and returns its public URL.
type ImageStore interface {
	Save(ctx context.Context, file *multipart.FileHeader) (string, error)
}

type S3Store struct {
	client     *s3.S3
	bucket     string
	endpoint   string
	region     string
	disableSSL bool
}

func NewS3Store(cfg *config.Config) (*S3Store, error) {
	awsConfig := &aws.Config{
		Region: aws.String(cfg.AWSRegion),
		Credentials: credentials.NewStaticCredentials(
			cfg.AWSAccessKeyID,
			cfg.AWSSecretAccessKey,
			"",
		),
	}

	// MinIO for local development
	if cfg.AWSEndpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.AWSEndpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
		awsConfig.DisableSSL = aws.Bool(!cfg.S3UseSSL)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("create AWS session: %w", err)
	}

	store := &S3Store{
		client:     s3.New(sess),
		bucket:     cfg.S3BucketName,
		endpoint:   cfg.AWSEndpoint,
		region:     cfg.AWSRegion,
		disableSSL: !cfg.S3UseSSL,
	}

	// a fresh MinIO has no bucket yet
	if _, err := store.client.HeadBucket(&s3.HeadBucketInput{Bucket: aws.String(store.bucket)}); err != nil {
		if _, err := store.client.CreateBucket(&s3.CreateBucketInput{Bucket: aws.String(store.bucket)}); err != nil {
			return nil, fmt.Errorf("create bucket %q: %w", store.bucket, err)
		}
	}

	return store, nil
}

func (s *S3Store) Save(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	file, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	contentType, err := CheckImage(fh.Size, file)
	if err != nil {
		return "", err
	}

	key := ObjectKey(fh.Filename)
	_, err = s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s to S3: %w", key, err)
	}

	return ObjectURL(s.endpoint, s.region, s.bucket, key, s.disableSSL), nil
}

// CheckImage sniffs the content type from the leading bytes of body and
// rewinds it. SVG is refused since it can carry scripts.
func CheckImage(size int64, body io.ReadSeeker) (string, error) {
	if size > MaxImageSize {
		return "", ErrImageTooLarge
	}

	mtype, err := mimetype.DetectReader(body)
	if err != nil {
		return "", fmt.Errorf("detect image type: %w", err)
	}
	if _, err := body.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}

	if !strings.HasPrefix(mtype.String(), "image/") || mtype.Is("image/svg+xml") {
		return "", ErrNotImage
	}
	return mtype.String(), nil
}

// ObjectKey returns images/<uuid><ext> for an upload.
func ObjectKey(filename string) string {
	return "images/" + uuid.New().String() + strings.ToLower(filepath.Ext(filename))
}

// ObjectURL builds the public URL of an object, path style for custom
// endpoints and virtual-host style for AWS.
func ObjectURL(endpoint, region, bucket, key string, disableSSL bool) string {
	if endpoint != "" && !strings.Contains(endpoint, "amazonaws.com") {
		protocol := "https"
		if disableSSL {
			protocol = "http"
		}
		endpoint = strings.TrimPrefix(endpoint, "http://")
		endpoint = strings.TrimPrefix(endpoint, "https://")
		return fmt.Sprintf("%s://%s/%s/%s", protocol, endpoint, bucket, key)
	}

	if region == "" {
		region = "us-east-1"
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, region, key)
}
