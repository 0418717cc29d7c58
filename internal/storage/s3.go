package storage

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsCfg "github.com/aws/aws-sdk-go-v2/config" // Alias config to avoid clash
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"lexdesk/training-monitor/internal/config"
)

// s3Storage implements the FileStorage interface using an S3-compatible backend.
type s3Storage struct {
	presignClient *s3.PresignClient
	bucketName    string
	expiry        time.Duration
	logger        *zap.Logger
}

// NewS3Storage creates a new S3 storage service instance.
func NewS3Storage(ctx context.Context, cfg config.S3Config, logger *zap.Logger) (FileStorage, error) {
	awsSDKConfig, err := awsCfg.LoadDefaultConfig(ctx,
		awsCfg.WithRegion(cfg.Region),
		awsCfg.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
	)
	if err != nil {
		logger.Error("failed to load AWS SDK config for S3", zap.Error(err))
		return nil, err
	}

	// Path-style addressing is required by most S3-compatible services (MinIO).
	s3Client := s3.NewFromConfig(awsSDKConfig, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = true
	})

	expiry := cfg.URLExpiry
	if expiry <= 0 {
		expiry = DefaultPresignedURLExpiry
	}

	logger.Info("S3 storage initialized",
		zap.String("endpoint", cfg.Endpoint),
		zap.String("bucket", cfg.BucketName),
		zap.Duration("url_expiry", expiry))

	return &s3Storage{
		presignClient: s3.NewPresignClient(s3Client),
		bucketName:    cfg.BucketName,
		expiry:        expiry,
		logger:        logger,
	}, nil
}

// GeneratePresignedUploadURL creates a temporary URL for uploading (PUT).
func (s *s3Storage) GeneratePresignedUploadURL(ctx context.Context, objectKey string, contentType string) (string, error) {
	presignParams := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(objectKey),
		ContentType: aws.String(contentType), // Client MUST send this header on upload
	}

	req, err := s.presignClient.PresignPutObject(ctx, presignParams, s3.WithPresignExpires(s.expiry))
	if err != nil {
		s.logger.Error("failed to presign PUT", zap.String("key", objectKey), zap.Error(err))
		return "", err
	}
	return req.URL, nil
}

// GeneratePresignedDownloadURL creates a temporary URL for downloading (GET).
func (s *s3Storage) GeneratePresignedDownloadURL(ctx context.Context, objectKey string) (string, error) {
	presignParams := &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(objectKey),
	}

	req, err := s.presignClient.PresignGetObject(ctx, presignParams, s3.WithPresignExpires(s.expiry))
	if err != nil {
		s.logger.Error("failed to presign GET", zap.String("key", objectKey), zap.Error(err))
		return "", err
	}
	return req.URL, nil
}
