package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"metaladmin/internal/config"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	ErrStorageDisabled = errors.New("image previews are not configured")
	ErrNotAnImage      = errors.New("file is not a PNG, JPEG or WebP image")
	ErrNotAPreviewKey  = errors.New("not a preview key")
)

// previewPrefix keeps staged previews apart from anything else in the bucket;
// a lifecycle rule on it should expire objects after a day.
const previewPrefix = "previews"

// Preview is a staged image and the short-lived URL that displays it.
type Preview struct {
	Key         string    `json:"key"`
	URL         string    `json:"url"`
	ContentType string    `json:"contentType"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// StorageService stages selected images on S3-compatible storage so the
// dashboard can preview them before the form is submitted.
type StorageService struct {
	s3Client s3iface.S3API
	bucket   string
	ttl      time.Duration
	now      func() time.Time
}

// NewStorageService returns nil when storage is not configured.
func NewStorageService(cfg config.StorageConfig) (*StorageService, error) {
	if !cfg.Enabled() {
		return nil, nil
	}

	awsCfg := &aws.Config{
		Region: aws.String(cfg.Region),
		Credentials: credentials.NewStaticCredentials(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		),
		DisableSSL:       aws.Bool(cfg.DisableSSL),
		S3ForcePathStyle: aws.Bool(cfg.Endpoint != ""),
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	return newStorageService(s3.New(sess), cfg.Bucket, cfg.PreviewTTL), nil
}

func newStorageService(client s3iface.S3API, bucket string, ttl time.Duration) *StorageService {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &StorageService{s3Client: client, bucket: bucket, ttl: ttl, now: time.Now}
}

// previewTypes maps accepted sniffed content types to object extensions.
var previewTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// StagePreview uploads data and returns a presigned GET URL for it. The
// content type is sniffed, not trusted from the client.
func (s *StorageService) StagePreview(ctx context.Context, filename string, data []byte) (*Preview, error) {
	if s == nil {
		return nil, ErrStorageDisabled
	}

	contentType := http.DetectContentType(data)
	ext, ok := previewTypes[contentType]
	if !ok {
		return nil, ErrNotAnImage
	}

	key := fmt.Sprintf("%s/%s/%s%s", previewPrefix, s.now().UTC().Format("2006-01-02"), uuid.NewString(), ext)
	_, err := s.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
		Metadata: map[string]*string{
			"original-name": aws.String(sanitizeFilename(filename)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload preview: %w", err)
	}

	req, _ := s.s3Client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	url, err := req.Presign(s.ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to sign preview url: %w", err)
	}

	log.Debug().Str("key", key).Str("content_type", contentType).Int("size", len(data)).Msg("Image preview staged")
	return &Preview{
		Key:         key,
		URL:         url,
		ContentType: contentType,
		ExpiresAt:   s.now().Add(s.ttl),
	}, nil
}

// DeletePreview removes a staged preview once the form is closed.
func (s *StorageService) DeletePreview(ctx context.Context, key string) error {
	if s == nil {
		return ErrStorageDisabled
	}
	if !strings.HasPrefix(key, previewPrefix+"/") {
		return fmt.Errorf("%w: %q", ErrNotAPreviewKey, key)
	}
	_, err := s.s3Client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete preview: %w", err)
	}
	return nil
}

func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		if r < 0x20 || r > 0x7e {
			b.WriteRune('_')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
