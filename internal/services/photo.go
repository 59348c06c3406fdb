package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"memory-map-backend/internal/config"
	"memory-map-backend/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rwcarlsen/goexif/exif"
)

const uploadURLExpiry = 5 * time.Minute

var photoExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/heic": ".heic",
}

// PhotoService hands out upload URLs for memory photos and reads photo metadata
type PhotoService struct {
	s3Client *s3.Client
	s3Bucket string
	region   string
	endpoint string
}

// NewPhotoService creates a new photo service. Without a bucket the service
// still inspects EXIF data but refuses upload URLs.
func NewPhotoService(ctx context.Context, cfg config.AWSConfig) (*PhotoService, error) {
	s := &PhotoService{
		s3Bucket: cfg.S3Bucket,
		region:   cfg.Region,
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
	}
	if cfg.S3Bucket == "" {
		return s, nil
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s.s3Client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if s.endpoint != "" {
			o.BaseEndpoint = aws.String(s.endpoint)
			o.UsePathStyle = true
		}
	})
	return s, nil
}

// UploadRequest represents a request to get a pre-signed URL
type UploadRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
}

// UploadResponse represents the response with pre-signed URL
type UploadResponse struct {
	UploadURL string `json:"upload_url"`
	PhotoURL  string `json:"photo_url"`
	Key       string `json:"key"`
	ExpiresIn int    `json:"expires_in"`
}

// GetPreSignedURL generates a pre-signed PUT URL for a memory photo
func (s *PhotoService) GetPreSignedURL(ctx context.Context, userID string, req UploadRequest) (*UploadResponse, error) {
	if s.s3Client == nil {
		return nil, ErrPhotoStorageDisabled
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = "image/jpeg"
	}
	ext, ok := photoExtensions[contentType]
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a supported image type", ErrValidation, contentType)
	}

	key := fmt.Sprintf("memories/%s/%s%s", userID, uuid.New().String(), ext)

	presignClient := s3.NewPresignClient(s.s3Client)
	request, err := presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = uploadURLExpiry
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate pre-signed URL: %w", err)
	}

	return &UploadResponse{
		UploadURL: request.URL,
		PhotoURL:  s.objectURL(key),
		Key:       key,
		ExpiresIn: int(uploadURLExpiry.Seconds()),
	}, nil
}

func (s *PhotoService) objectURL(key string) string {
	if s.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", s.endpoint, s.s3Bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.s3Bucket, s.region, key)
}

// PhotoMetadata is what a photo's EXIF block says about where and when it was taken
type PhotoMetadata struct {
	Latitude  float64      `json:"latitude"`
	Longitude float64      `json:"longitude"`
	Date      *models.Date `json:"date,omitempty"`
}

// InspectEXIF extracts GPS coordinates and the capture date from a photo so the
// add-memory form can be prefilled
func (s *PhotoService) InspectEXIF(r io.Reader) (*PhotoMetadata, error) {
	x, err := exif.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoEXIFLocation, err)
	}

	lat, lng, err := x.LatLong()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoEXIFLocation, err)
	}

	meta := &PhotoMetadata{Latitude: lat, Longitude: lng}
	if taken, err := x.DateTime(); err == nil {
		d := models.NewDate(taken)
		meta.Date = &d
	}
	return meta, nil
}
