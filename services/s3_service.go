package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	appConfig "github.com/kendall-kelly/technician-finder-api/config"
	"github.com/kendall-kelly/technician-finder-api/utils"
	"go.uber.org/zap"
)

// S3Interface defines the interface for S3 operations
type S3Interface interface {
	// UploadFile stores the file under keyPrefix and returns the generated object key
	UploadFile(ctx context.Context, fileHeader *multipart.FileHeader, keyPrefix string) (string, error)
	// PublicURL returns the stable, non-expiring URL of an object
	PublicURL(s3Key string) string
	DeleteFile(ctx context.Context, s3Key string) error
}

// S3Service handles all S3-related operations
type S3Service struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
	logger        *zap.Logger
}

// InitS3Service initializes the S3 service with AWS credentials.
// Static credentials are used when both keys are configured; otherwise the
// default AWS credential chain applies.
func InitS3Service(ctx context.Context, cfg *appConfig.Config, logger *zap.Logger) (S3Interface, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.AWSRegion)}
	if cfg.AWSAccessKeyID != "" && cfg.AWSSecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AWSAccessKeyID,
			cfg.AWSSecretAccessKey,
			"",
		)))
	}

	awsConfig, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &S3Service{
		client:        s3.NewFromConfig(awsConfig),
		bucket:        cfg.AWSS3Bucket,
		publicBaseURL: cfg.PublicBaseURL(),
		logger:        logger,
	}, nil
}

// UploadFile streams a file to S3 and returns its key.
// Format: {keyPrefix}/{uuid}{ext}
func (s *S3Service) UploadFile(ctx context.Context, fileHeader *multipart.FileHeader, keyPrefix string) (string, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			s.logger.Warn("failed to close upload", zap.Error(closeErr))
		}
	}()

	s3Key := fmt.Sprintf("%s/%s%s", keyPrefix, uuid.NewString(), utils.ImageExtension(fileHeader.Filename))

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s3Key),
		Body:          file,
		ContentLength: aws.Int64(fileHeader.Size),
		ContentType:   aws.String(utils.ImageContentType(fileHeader.Filename)),
		CacheControl:  aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	s.logger.Debug("uploaded object", zap.String("key", s3Key), zap.Int64("size", fileHeader.Size))
	return s3Key, nil
}

// PublicURL joins the configured public base URL and the object key
func (s *S3Service) PublicURL(s3Key string) string {
	if s3Key == "" {
		return ""
	}
	return s.publicBaseURL + "/" + strings.TrimLeft(s3Key, "/")
}

// DeleteFile deletes a file from S3
func (s *S3Service) DeleteFile(ctx context.Context, s3Key string) error {
	if s3Key == "" {
		return nil
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s3Key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from S3: %w", err)
	}

	return nil
}
