// Package storage issues short-lived presigned URLs for documents kept in
// S3-compatible object storage (insurance policy PDFs). The service never
// proxies the file body itself.
package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rescue-chip/core/internal/config"
)

// Presigner creates presigned GET URLs for stored objects.
type Presigner struct {
	cfg      config.S3Options
	presign  *s3.PresignClient
	lifetime time.Duration
}

// NewPresigner builds a presigner from static credentials. Returns nil when
// object storage is not configured; callers treat a nil presigner as "no
// document links available".
func NewPresigner(cfg config.S3Options) *Presigner {
	if cfg.Bucket == "" || cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		return nil
	}

	awsCfg := aws.Config{
		Region:      cfg.Region,
		Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	ttl := time.Duration(cfg.PresignTTLMin) * time.Minute
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Presigner{
		cfg:      cfg,
		presign:  s3.NewPresignClient(client),
		lifetime: ttl,
	}
}

// DocumentURL returns a presigned GET URL for the given object key.
func (p *Presigner) DocumentURL(ctx context.Context, key string) (string, error) {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if key == "" {
		return "", fmt.Errorf("storage: empty object key")
	}

	req, err := p.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.cfg.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(p.lifetime))
	if err != nil {
		return "", fmt.Errorf("storage: presign %s: %w", key, err)
	}
	return req.URL, nil
}
