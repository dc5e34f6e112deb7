package writer

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	appconfig "watchlist/config"
	"watchlist/logger"
	"watchlist/models"
)

const contentType = "text/plain; charset=utf-8"

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Writer uploads watchlist artifacts under <prefix>/<date>/<LABEL>.txt.
type S3Writer struct {
	client  objectPutter
	bucket  string
	prefix  string
	version string
	runID   string
	now     func() time.Time
	log     *logger.Log
}

// NewS3Writer creates an S3 writer from the output configuration. Static
// credentials are used when both keys are set; otherwise the default AWS
// credential chain applies.
func NewS3Writer(ctx context.Context, cfg *appconfig.Config) (*S3Writer, error) {
	s3cfg := cfg.Output.S3
	if !s3cfg.Enabled {
		return nil, fmt.Errorf("s3 output disabled")
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(s3cfg.Region)}
	if s3cfg.AccessKeyID != "" && s3cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				s3cfg.AccessKeyID,
				s3cfg.SecretAccessKey,
				"",
			),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if s3cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(s3cfg.Endpoint)
		}
		o.UsePathStyle = s3cfg.PathStyle
	})

	w := newS3Writer(client, s3cfg.Bucket, s3cfg.Prefix, cfg.App.Version)
	w.log.WithComponent("s3_writer").WithFields(logger.Fields{
		"bucket": w.bucket,
		"prefix": w.prefix,
		"run_id": w.runID,
	}).Info("s3 writer initialized")
	return w, nil
}

func newS3Writer(client objectPutter, bucket, prefix, version string) *S3Writer {
	return &S3Writer{
		client:  client,
		bucket:  bucket,
		prefix:  strings.Trim(prefix, "/"),
		version: version,
		runID:   uuid.NewString(),
		now:     time.Now,
		log:     logger.GetLogger(),
	}
}

// RunID identifies every object uploaded by this writer.
func (w *S3Writer) RunID() string { return w.runID }

// Key returns the object key of label for the current day.
func (w *S3Writer) Key(label string) string {
	key := filepath.Join(w.prefix, w.now().UTC().Format("2006-01-02"), label+".txt")
	return filepath.ToSlash(key)
}

func (w *S3Writer) Write(ctx context.Context, label string, wl models.Watchlist) (string, error) {
	log := w.log.WithComponent("s3_writer").WithFields(logger.Fields{"label": label})
	key := w.Key(label)

	input := &s3.PutObjectInput{
		Bucket:      aws.String(w.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(wl.Lines()),
		ContentType: aws.String(contentType),
		Metadata: map[string]string{
			"run-id":            w.runID,
			"ticker-count":      strconv.Itoa(len(wl)),
			"watchlist-version": w.version,
		},
	}

	start := time.Now()
	if _, err := w.client.PutObject(ctx, input); err != nil {
		log.WithError(err).Warn("failed to upload watchlist")
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	logger.LogPerformanceEntry(log, "s3_writer", "put_object", time.Since(start), logger.Fields{"key": key})

	loc := fmt.Sprintf("s3://%s/%s", w.bucket, key)
	logger.LogDataFlowEntry(log, "pipeline", loc, len(wl), "tickers")
	return loc, nil
}
