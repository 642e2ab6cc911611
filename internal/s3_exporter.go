package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"reflect"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/lychee-technology/rowmap"
	"go.uber.org/zap"
)

// S3Uploader is implemented by *manager.Uploader.
type S3Uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// S3BucketAPI is the bucket subset of *s3.Client.
type S3BucketAPI interface {
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
}

// S3Exporter uploads encoded records to S3 as newline-delimited JSON.
type S3Exporter struct {
	cfg      rowmap.ExportConfig
	mapper   rowmap.FieldMapper
	uploader S3Uploader
	buckets  S3BucketAPI

	mu      sync.Mutex // guards ensured
	ensured bool
}

var _ rowmap.RecordExporter = (*S3Exporter)(nil)

func NewS3Exporter(cfg rowmap.ExportConfig, mapper rowmap.FieldMapper, uploader S3Uploader, buckets S3BucketAPI) *S3Exporter {
	return &S3Exporter{
		cfg:      cfg,
		mapper:   mapper,
		uploader: uploader,
		buckets:  buckets,
	}
}

// NewS3ExporterFromConfig builds the S3 client from static keys when configured, else the
// default AWS credential chain. A custom endpoint targets S3-compatible stores.
func NewS3ExporterFromConfig(ctx context.Context, cfg rowmap.ExportConfig, mapper rowmap.FieldMapper) (*S3Exporter, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("export.bucket is required")
	}

	var loadOpts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(cfg.Region))
	}
	if cfg.Endpoint != "" {
		loadOpts = append(loadOpts, config.WithBaseEndpoint(cfg.Endpoint))
	}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
	})
	return NewS3Exporter(cfg, mapper, manager.NewUploader(client), client), nil
}

// Export encodes records and uploads them under prefix/key.
func (e *S3Exporter) Export(ctx context.Context, key string, records []any) (*rowmap.ExportResult, error) {
	if key == "" {
		return nil, fmt.Errorf("object key is required")
	}
	body, err := e.encode(records)
	if err != nil {
		return nil, err
	}
	if e.cfg.CreateBucket {
		if err := e.ensureBucketOnce(ctx); err != nil {
			return nil, err
		}
	}

	objectKey := key
	if e.cfg.Prefix != "" {
		objectKey = path.Join(e.cfg.Prefix, key)
	}
	_, err = e.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(e.cfg.Bucket),
		Key:         aws.String(objectKey),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/x-ndjson"),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 upload: %w", err)
	}

	zap.S().Infow("exported records", "bucket", e.cfg.Bucket, "key", objectKey, "records", len(records))
	return &rowmap.ExportResult{Bucket: e.cfg.Bucket, Key: objectKey, Records: len(records)}, nil
}

func (e *S3Exporter) encode(records []any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for i, record := range records {
		values, err := e.mapper.Encode(record)
		if err != nil {
			return nil, fmt.Errorf("encode record %d: %w", i, err)
		}
		if e.cfg.ValidateRecord {
			plan, err := e.mapper.Plan(reflect.TypeOf(record))
			if err != nil {
				return nil, fmt.Errorf("plan record %d: %w", i, err)
			}
			if err := ValidateValues(plan, values); err != nil {
				return nil, fmt.Errorf("validate record %d: %w", i, err)
			}
		}
		if err := enc.Encode(values); err != nil {
			return nil, fmt.Errorf("marshal record %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}

// ensureBucketOnce checks the bucket until one check succeeds; a failed check is retried on the next export.
func (e *S3Exporter) ensureBucketOnce(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ensured {
		return nil
	}
	if err := e.ensureBucket(ctx); err != nil {
		return err
	}
	e.ensured = true
	return nil
}

func (e *S3Exporter) ensureBucket(ctx context.Context) error {
	bucket := aws.String(e.cfg.Bucket)
	if _, err := e.buckets.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: bucket}); err == nil {
		return nil
	}
	if _, err := e.buckets.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: bucket}); err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			code := apiErr.ErrorCode()
			if code == "BucketAlreadyOwnedByYou" || code == "BucketAlreadyExists" {
				return nil
			}
		}
		return fmt.Errorf("create bucket: %w", err)
	}
	return nil
}
