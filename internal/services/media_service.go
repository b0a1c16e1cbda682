package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path"
	"strings"

	"filmsoc-backend/internal/config"
	"filmsoc-backend/internal/repositories"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// ErrMediaDisabled is returned when no object storage credentials are
// configured; uploads are a soft feature and the rest of the system
// keeps working without them.
var ErrMediaDisabled = errors.New("media storage is not configured")

// MediaService uploads equipment photos to an S3-compatible bucket
// (Cloudflare R2 in production) and records the public URL.
type MediaService struct {
	client    *s3.Client
	bucket    string
	publicURL string
	repo      *repositories.EquipmentRepository
}

func NewMediaService(cfg *config.Config, repo *repositories.EquipmentRepository) *MediaService {
	svc := &MediaService{
		bucket:    cfg.Media.Bucket,
		publicURL: strings.TrimSuffix(cfg.Media.PublicURL, "/"),
		repo:      repo,
	}

	if cfg.Media.AccessKey == "" {
		log.Printf("[Media] No access key configured, uploads disabled")
		return svc
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.Media.AccessKey,
			cfg.Media.SecretKey,
			"",
		)),
		awsconfig.WithRegion(cfg.Media.Region),
	)
	if err != nil {
		log.Printf("[Media] S3 client config failed, uploads disabled: %v", err)
		return svc
	}

	svc.client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Media.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Media.Endpoint)
		}
	})
	return svc
}

// Enabled reports whether object storage is configured
func (s *MediaService) Enabled() bool {
	return s.client != nil
}

var contentTypeExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// UploadEquipmentImage stores an image under equipment/<id>/ and saves
// the resulting URL on the equipment row
func (s *MediaService) UploadEquipmentImage(ctx context.Context, equipmentID, contentType string, body io.Reader) (string, error) {
	if s.client == nil {
		return "", ErrMediaDisabled
	}

	ext, ok := contentTypeExt[contentType]
	if !ok {
		return "", fmt.Errorf("unsupported content type %q", contentType)
	}

	if _, err := s.repo.Get(ctx, equipmentID); err != nil {
		return "", err
	}

	key := path.Join("equipment", equipmentID, uuid.NewString()+ext)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("upload failed: %w", err)
	}

	url := s.publicURL + "/" + key
	if err := s.repo.SetImageURL(ctx, equipmentID, url); err != nil {
		return "", err
	}

	log.Printf("[Media] Uploaded image for equipment %s: %s", equipmentID, key)
	return url, nil
}
