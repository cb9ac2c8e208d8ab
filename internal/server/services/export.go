package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dmitrijs2005/signin/internal/logging"
	sc "github.com/dmitrijs2005/signin/internal/server/config"
	"github.com/dmitrijs2005/signin/internal/server/models"
	"github.com/dmitrijs2005/signin/internal/server/repositories/accounts"
	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const exportURLValidity = 15 * time.Minute

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// ExportHeader is the first row of every account export.
var ExportHeader = []string{"email", "first_name", "last_name", "title", "phone", "is_staff", "is_active"}

// AccountLister is the read side ExportService needs.
type AccountLister interface {
	List(ctx context.Context, q accounts.ListQuery) ([]*models.Account, error)
}

// ExportResult describes an uploaded export.
type ExportResult struct {
	Key   string
	URL   string
	Count int
}

// ExportService writes account listings as CSV to object storage and hands
// back a short-lived download link.
type ExportService struct {
	accounts AccountLister
	config   *sc.Config
	logger   logging.Logger
}

func NewExportService(lister AccountLister, cfg *sc.Config, logger logging.Logger) *ExportService {
	return &ExportService{
		accounts: lister,
		config:   cfg,
		logger:   logger.With("module", "export"),
	}
}

// GetExportKey returns a unique object key under a date prefix.
func GetExportKey(d time.Time) string {
	return fmt.Sprintf("exports/%d/%02d/%02d/%v.csv", d.Year(), d.Month(), d.Day(), uuid.New())
}

// WriteAccountsCSV writes ExportHeader followed by one row per account.
func WriteAccountsCSV(w io.Writer, list []*models.Account) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return err
	}
	for _, a := range list {
		row := []string{
			a.Email, a.FirstName, a.LastName, a.Title, a.Phone,
			strconv.FormatBool(a.IsStaff), strconv.FormatBool(a.IsActive),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (s *ExportService) getClient(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	}), nil
}

// Export uploads the accounts matching q and returns the object key and a
// presigned GET URL valid for 15 minutes.
func (s *ExportService) Export(ctx context.Context, q accounts.ListQuery) (*ExportResult, error) {
	list, err := s.accounts.List(ctx, q)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := WriteAccountsCSV(&buf, list); err != nil {
		return nil, fmt.Errorf("error writing csv: %w", err)
	}

	client, err := s.getClient(ctx)
	if err != nil {
		return nil, err
	}

	bucket := s.config.S3Bucket
	key := GetExportKey(time.Now())

	if _, err := putObject(client, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("text/csv"),
	}); err != nil {
		return nil, fmt.Errorf("error uploading export: %w", err)
	}

	req, err := presignGetObject(newS3PresignClient(client), ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(exportURLValidity))
	if err != nil {
		return nil, fmt.Errorf("error presigning export: %w", err)
	}

	s.logger.Info(ctx, "accounts exported", "key", key, "count", len(list))
	return &ExportResult{Key: key, URL: req.URL, Count: len(list)}, nil
}
