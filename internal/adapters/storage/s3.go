package storage

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"eventboard/internal/domain"
)

// S3Config holds configuration for the S3 image uploader.
type S3Config struct {
	Bucket          string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	// PublicBaseURL, when set, is used instead of the default
	// virtual-hosted bucket URL when building returned URLs.
	PublicBaseURL string
}

// UploaderConfig holds configuration for creating an image uploader.
type UploaderConfig struct {
	Provider string
	S3       S3Config
}

// NewImageUploader creates an uploader from config. Provider "s3" uses
// AWS S3; "noop" or unknown uses a no-op uploader that returns an empty URL.
func NewImageUploader(config UploaderConfig) (domain.ImageUploader, error) {
	switch config.Provider {
	case "s3":
		s3Cfg := config.S3
		if s3Cfg.Bucket == "" {
			return nil, fmt.Errorf("s3 uploader requires a bucket")
		}
		awsCfg := aws.Config{
			Region: s3Cfg.Region,
			Credentials: aws.NewCredentialsCache(
				credentials.NewStaticCredentialsProvider(
					s3Cfg.AccessKeyID,
					s3Cfg.SecretAccessKey,
					"",
				),
			),
		}
		client := s3.NewFromConfig(awsCfg)
		return &s3Uploader{
			client:        client,
			bucket:        s3Cfg.Bucket,
			region:        s3Cfg.Region,
			publicBaseURL: strings.TrimSuffix(s3Cfg.PublicBaseURL, "/"),
		}, nil
	case "noop":
		return &noopUploader{}, nil
	default:
		log.Printf("[UPLOADER] Unknown uploader provider %q, using noop", config.Provider)
		return &noopUploader{}, nil
	}
}

type s3Uploader struct {
	client        *s3.Client
	bucket        string
	region        string
	publicBaseURL string
}

// extensions maps supported image content types to object key suffixes.
var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

func (u *s3Uploader) Upload(ctx context.Context, img *domain.ImagePayload) (string, error) {
	if img == nil || len(img.Data) == 0 {
		return "", fmt.Errorf("%w: empty payload", domain.ErrUploadFailed)
	}
	ext, ok := extensions[img.ContentType]
	if !ok {
		return "", fmt.Errorf("%w: unsupported content type %q", domain.ErrUploadFailed, img.ContentType)
	}
	key := "events/" + uuid.NewString() + ext
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(img.Data),
		ContentType: aws.String(img.ContentType),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUploadFailed, err)
	}
	if u.publicBaseURL != "" {
		return u.publicBaseURL + "/" + key, nil
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.bucket, u.region, key), nil
}

type noopUploader struct{}

func (noopUploader) Upload(ctx context.Context, img *domain.ImagePayload) (string, error) {
	log.Printf("[UPLOADER] Image would be uploaded (noop), %d bytes", len(img.Data))
	return "", nil
}
