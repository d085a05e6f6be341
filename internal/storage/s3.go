// Package storage persists scan reports and history to AWS. Both stores
// degrade to no-ops when their bucket or table is not configured, a scan
// never fails because persistence is absent.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/hashicorp/go-hclog"

	"github.com/devguard-io/devguard/internal/findings"
	"github.com/devguard-io/devguard/pkg/shared/config"
)

const (
	defaultRegion        = "us-east-1"
	defaultPresignExpiry = time.Hour
)

// S3Store uploads scan reports to an S3 bucket and hands out presigned
// download links.
type S3Store struct {
	api           s3iface.S3API
	bucket        string
	presignExpiry time.Duration
	logger        hclog.Logger
	now           func() time.Time
}

// NewS3Store builds the report store from the storage configuration. It
// returns nil when no bucket is configured, the nil store is safe to use
// and skips every operation.
func NewS3Store(cfg *config.Config, logger hclog.Logger) *S3Store {
	if cfg.Storage.S3Bucket == "" {
		logger.Debug("no S3 bucket configured, report upload disabled")
		return nil
	}

	sess := session.Must(session.NewSession(&aws.Config{
		Region: aws.String(config.SetThen(cfg.Storage.Region, defaultRegion)),
	}))

	return &S3Store{
		api:           s3.New(sess),
		bucket:        cfg.Storage.S3Bucket,
		presignExpiry: config.SetThen(cfg.Storage.PresignExpiry.Std(), defaultPresignExpiry),
		logger:        logger,
		now:           time.Now,
	}
}

// Enabled reports whether uploads will actually happen.
func (s *S3Store) Enabled() bool {
	return s != nil && s.bucket != ""
}

// ReportKey lays out object keys as reports/YYYY/MM/DD/report_<id>.<ext>.
func ReportKey(t time.Time, reportID, ext string) string {
	return fmt.Sprintf("reports/%s/report_%s.%s", t.Format("2006/01/02"), reportID, ext)
}

// UploadReport stores the report as an encrypted JSON object and returns its
// key. Reports without findings are not uploaded.
func (s *S3Store) UploadReport(ctx context.Context, report *findings.Report) (string, error) {
	if !s.Enabled() || report == nil || len(report.Findings) == 0 {
		return "", nil
	}

	body, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize report: %w", err)
	}

	key := ReportKey(s.now(), report.ReportID, "json")
	if err := s.putObject(ctx, key, body, "application/json"); err != nil {
		return "", err
	}

	s.logger.Info("uploaded report to S3", "bucket", s.bucket, "key", key)
	return key, nil
}

// UploadCSV stores an already rendered CSV export next to the JSON report.
func (s *S3Store) UploadCSV(ctx context.Context, reportID, csvContent string) (string, error) {
	if !s.Enabled() || csvContent == "" {
		return "", nil
	}

	key := ReportKey(s.now(), reportID, "csv")
	if err := s.putObject(ctx, key, []byte(csvContent), "text/csv"); err != nil {
		return "", err
	}

	s.logger.Info("uploaded CSV report to S3", "bucket", s.bucket, "key", key)
	return key, nil
}

func (s *S3Store) putObject(ctx context.Context, key string, body []byte, contentType string) error {
	_, err := s.api.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:               aws.String(s.bucket),
		Key:                  aws.String(key),
		Body:                 bytes.NewReader(body),
		ContentType:          aws.String(contentType),
		ServerSideEncryption: aws.String("AES256"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %q to S3: %w", key, err)
	}
	return nil
}

// ReportURL generates a presigned download link for an uploaded object. A
// zero expiry falls back to the configured default.
func (s *S3Store) ReportURL(s3Key string, expiresIn time.Duration) (string, error) {
	if !s.Enabled() || s3Key == "" {
		return "", nil
	}

	req, _ := s.api.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s3Key),
	})
	url, err := req.Presign(config.SetThen(expiresIn, s.presignExpiry))
	if err != nil {
		return "", fmt.Errorf("failed to presign %q: %w", s3Key, err)
	}
	return url, nil
}
