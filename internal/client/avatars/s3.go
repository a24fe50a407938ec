// Package avatars keeps profile pictures in an S3-compatible bucket. Uploads
// go through a presigned PUT URL, deletes through the S3 API.
package avatars

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/Kaktotak00p/notes/internal/logging"
	"github.com/Kaktotak00p/notes/internal/netx"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var (
	loadDefaultAWSConfig  = config.LoadDefaultConfig
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

const presignExpiry = 15 * time.Minute

// Config locates the bucket. Endpoint may be empty for AWS itself.
type Config struct {
	Bucket   string
	Region   string
	Endpoint string
	User     string
	Password string
}

type S3Store struct {
	bucket  string
	client  *s3.Client
	presign *s3.PresignClient
	http    *http.Client
	logger  logging.Logger
	now     func() time.Time
}

// NewS3Store builds the S3 clients. httpClient is used for both the API calls
// and the presigned upload; nil means the SDK and net/http defaults.
func NewS3Store(ctx context.Context, c Config, httpClient *http.Client, logger logging.Logger) (*S3Store, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(c.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(c.User, c.Password, "")))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if c.Endpoint != "" {
			o.BaseEndpoint = aws.String(c.Endpoint)
		}
		o.UsePathStyle = true
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		if httpClient != nil {
			o.HTTPClient = httpClient
		}
	})

	return &S3Store{
		bucket:  c.Bucket,
		client:  client,
		presign: s3.NewPresignClient(client),
		http:    httpClient,
		logger:  logger.With("module", "avatars"),
		now:     time.Now,
	}, nil
}

// ObjectKey names an upload "<owner>/<unix millis>-<base name>", so a new
// picture never overwrites the one still referenced by the profile.
func ObjectKey(ownerID, fileName string, now time.Time) string {
	name := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	if name == "." || name == "/" {
		name = "avatar"
	}
	return fmt.Sprintf("%s/%d-%s", ownerID, now.UnixMilli(), name)
}

// Put uploads data and returns its object key.
func (s *S3Store) Put(ctx context.Context, ownerID, fileName string, data []byte, contentType string) (string, error) {
	key := ObjectKey(ownerID, fileName, s.now())

	in := &s3.PutObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(key)}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	req, err := s.presign.PresignPutObject(ctx, in, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}

	if err := netx.UploadToPresignedURL(ctx, s.http, req.URL, data, contentType); err != nil {
		s.logger.Error(ctx, "avatar upload failed", "key", key, "error", err)
		return "", fmt.Errorf("upload %s: %w", key, err)
	}

	s.logger.Debug(ctx, "avatar uploaded", "key", key, "size", len(data))
	return key, nil
}

func (s *S3Store) Remove(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(key)})
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
