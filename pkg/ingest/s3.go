// pkg/ingest/s3.go

package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	"github.com/mayursurani/datapipe/pkg/config"
	"github.com/mayursurani/datapipe/pkg/model"
)

// S3Manager handles object storage for raw inputs and pipeline exports.
type S3Manager struct {
	client     *s3.Client
	uploader   *manager.Uploader
	downloader *manager.Downloader
	bucket     string
	region     string
	prefix     string
	logger     *zap.Logger
}

// NewS3Manager creates a manager using the default AWS credential chain.
func NewS3Manager(ctx context.Context, cfg *config.S3Config) (*S3Manager, error) {
	if cfg == nil || cfg.Bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	client := s3.NewFromConfig(awsCfg)
	return &S3Manager{
		client:     client,
		uploader:   manager.NewUploader(client),
		downloader: manager.NewDownloader(client),
		bucket:     cfg.Bucket,
		region:     cfg.Region,
		prefix:     strings.Trim(cfg.Prefix, "/"),
		logger:     zap.L().Named("s3-manager"),
	}, nil
}

// ListBuckets returns the names of all buckets in the account.
func (m *S3Manager) ListBuckets(ctx context.Context) ([]string, error) {
	out, err := m.client.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to list buckets: %w", err)
	}

	names := make([]string, 0, len(out.Buckets))
	for _, b := range out.Buckets {
		names = append(names, aws.ToString(b.Name))
	}
	return names, nil
}

// EnsureBucket creates the configured bucket if it does not exist.
func (m *S3Manager) EnsureBucket(ctx context.Context) error {
	_, err := m.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(m.bucket)})
	if err == nil {
		return nil
	}

	input := &s3.CreateBucketInput{Bucket: aws.String(m.bucket)}
	// us-east-1 rejects an explicit location constraint.
	if m.region != "" && m.region != "us-east-1" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(m.region),
		}
	}

	if _, err := m.client.CreateBucket(ctx, input); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", m.bucket, err)
	}

	m.logger.Info("created bucket",
		zap.String("bucket", m.bucket),
		zap.String("region", m.region))
	return nil
}

// UploadFile uploads a local file under the configured prefix.
func (m *S3Manager) UploadFile(ctx context.Context, localPath, key string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", localPath, err)
	}
	defer f.Close()

	fullKey := m.objectKey(key)
	_, err = m.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(m.bucket),
		Key:    aws.String(fullKey),
		Body:   f,
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s to s3://%s/%s: %w", localPath, m.bucket, fullKey, err)
	}

	m.logger.Info("uploaded file",
		zap.String("local_path", localPath),
		zap.String("bucket", m.bucket),
		zap.String("key", fullKey))
	return nil
}

// DownloadFile downloads an object to a local file.
func (m *S3Manager) DownloadFile(ctx context.Context, key, localPath string) error {
	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", localPath, err)
	}

	f, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", localPath, err)
	}
	defer f.Close()

	fullKey := m.objectKey(key)
	_, err = m.downloader.Download(ctx, f, &s3.GetObjectInput{
		Bucket: aws.String(m.bucket),
		Key:    aws.String(fullKey),
	})
	if err != nil {
		return fmt.Errorf("failed to download s3://%s/%s: %w", m.bucket, fullKey, err)
	}

	m.logger.Info("downloaded file",
		zap.String("bucket", m.bucket),
		zap.String("key", fullKey),
		zap.String("local_path", localPath))
	return nil
}

// ListObjects returns the keys under the configured prefix.
func (m *S3Manager) ListObjects(ctx context.Context) ([]string, error) {
	input := &s3.ListObjectsV2Input{Bucket: aws.String(m.bucket)}
	if m.prefix != "" {
		input.Prefix = aws.String(m.prefix + "/")
	}

	var keys []string
	paginator := s3.NewListObjectsV2Paginator(m.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list objects in %s: %w", m.bucket, err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
	}
	return keys, nil
}

// DeleteObject removes an object under the configured prefix.
func (m *S3Manager) DeleteObject(ctx context.Context, key string) error {
	fullKey := m.objectKey(key)
	_, err := m.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(m.bucket),
		Key:    aws.String(fullKey),
	})
	if err != nil {
		return fmt.Errorf("failed to delete s3://%s/%s: %w", m.bucket, fullKey, err)
	}

	m.logger.Info("deleted object",
		zap.String("bucket", m.bucket),
		zap.String("key", fullKey))
	return nil
}

// UploadTable serializes a table as csv or json and uploads it.
func (m *S3Manager) UploadTable(ctx context.Context, tbl *model.Table, key, format string) error {
	var buf bytes.Buffer

	switch format {
	case "csv":
		if err := WriteCSVTo(&buf, tbl); err != nil {
			return fmt.Errorf("failed to encode table %s as csv: %w", tbl.Name, err)
		}
	case "json":
		data, err := json.MarshalIndent(tbl.Rows, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode table %s as json: %w", tbl.Name, err)
		}
		buf.Write(data)
	default:
		return fmt.Errorf("unsupported upload format: %s", format)
	}

	fullKey := m.objectKey(key)
	_, err := m.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(m.bucket),
		Key:    aws.String(fullKey),
		Body:   bytes.NewReader(buf.Bytes()),
	})
	if err != nil {
		return fmt.Errorf("failed to upload table %s to s3://%s/%s: %w", tbl.Name, m.bucket, fullKey, err)
	}

	m.logger.Info("uploaded table",
		zap.String("table", tbl.Name),
		zap.String("bucket", m.bucket),
		zap.String("key", fullKey),
		zap.Int("rows", len(tbl.Rows)),
		zap.String("format", format))
	return nil
}

// ReadTable downloads and parses a csv or json object into a table. The
// format is taken from the key extension.
func (m *S3Manager) ReadTable(ctx context.Context, key, tableName string) (*model.Table, error) {
	fullKey := m.objectKey(key)
	out, err := m.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(m.bucket),
		Key:    aws.String(fullKey),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get s3://%s/%s: %w", m.bucket, fullKey, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read s3://%s/%s: %w", m.bucket, fullKey, err)
	}

	if tableName == "" {
		tableName = tableNameFromPath(key)
	}

	switch strings.ToLower(path.Ext(key)) {
	case ".csv":
		return csvBytesToTable(data, tableName)
	case ".json":
		records, err := decodeJSONRecords(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse s3://%s/%s: %w", m.bucket, fullKey, err)
		}
		return tableFromRecords(tableName, records), nil
	default:
		return nil, fmt.Errorf("unsupported object format: %s", key)
	}
}

func (m *S3Manager) objectKey(key string) string {
	key = strings.TrimLeft(key, "/")
	if m.prefix == "" {
		return key
	}
	return m.prefix + "/" + key
}
