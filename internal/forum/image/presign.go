// Copyright (c) 2026 Backalley. All rights reserved.

package image

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// # Object Storage Signing

// URLSigner produces short-lived upload URLs for bucket objects.
type URLSigner interface {
	// SignUpload returns a pre-signed PUT URL for the given object key,
	// bound to the declared content type and size.
	SignUpload(ctx context.Context, key, contentType string, size int64) (string, error)
}

// S3Signer implements [URLSigner] against an S3-compatible bucket.
//
// Cloudflare R2 is the production target; any S3-compatible endpoint works
// because only standard pre-signed PUTs are used.
type S3Signer struct {
	presign *s3.PresignClient
	bucket  string
}

// S3Config carries the credentials and location of the target bucket.
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// NewS3Signer constructs an [S3Signer] from static credentials.
func NewS3Signer(ctx context.Context, cfg S3Config) (*S3Signer, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("image: failed to load object storage config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(options *s3.Options) {
		if cfg.Endpoint != "" {
			options.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return &S3Signer{
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
	}, nil
}

// SignUpload returns a pre-signed PUT URL valid for [PresignTTL].
func (signer *S3Signer) SignUpload(ctx context.Context, key, contentType string, size int64) (string, error) {
	request, err := signer.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(signer.bucket),
		Key:           aws.String(key),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	}, s3.WithPresignExpires(PresignTTL))
	if err != nil {
		return "", fmt.Errorf("image: failed to presign upload: %w", err)
	}

	return request.URL, nil
}

// extensionFor maps an allowed MIME type to the object key suffix.
func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	default:
		// Callers validate against the allowlist first.
		return "." + strings.TrimPrefix(contentType, "image/")
	}
}
