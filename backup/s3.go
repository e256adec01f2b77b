package backup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// ArchivePrefix is the key prefix for archived database backups.
const ArchivePrefix = "backups/"

// ErrNoBucket is returned when S3 is used without a bucket configured.
var ErrNoBucket = errors.New("s3 bucket not configured")

// S3Config locates the bucket used for backups and media.
type S3Config struct {
	Bucket   string `mapstructure:"bucket"`
	Region   string `mapstructure:"region"`
	Profile  string `mapstructure:"profile"`
	Endpoint string `mapstructure:"endpoint"`
	// PublicURL is the base URL objects are served from. When empty the
	// uploader's location is used.
	PublicURL string `mapstructure:"public_url"`
	PathStyle bool   `mapstructure:"path_style"`
}

// Enabled reports whether a bucket is set.
func (c S3Config) Enabled() bool { return c.Bucket != "" }

type uploader interface {
	Upload(ctx context.Context, in *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

type deleter interface {
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Bucket writes objects to one S3 bucket.
type Bucket struct {
	name      string
	publicURL string
	up        uploader
	del       deleter
	logger    *zap.Logger
}

// NewBucket loads the default AWS configuration and returns a Bucket for
// cfg.Bucket.
func NewBucket(ctx context.Context, cfg S3Config, logger *zap.Logger) (*Bucket, error) {
	if !cfg.Enabled() {
		return nil, ErrNoBucket
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	var opts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	if cfg.Profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(cfg.Profile))
	}
	loadCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	awsCfg, err := config.LoadDefaultConfig(loadCtx, opts...)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.PathStyle
	})
	return &Bucket{
		name:      cfg.Bucket,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
		up:        manager.NewUploader(client),
		del:       client,
		logger:    logger,
	}, nil
}

// Name returns the bucket name.
func (b *Bucket) Name() string { return b.name }

func (b *Bucket) log() *zap.Logger {
	if b.logger == nil {
		return zap.NewNop()
	}
	return b.logger
}

// Put uploads body under key and returns the URL it can be fetched from.
func (b *Bucket) Put(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	in := &s3.PutObjectInput{
		Bucket: aws.String(b.name),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	out, err := b.up.Upload(ctx, in)
	if err != nil {
		return "", fmt.Errorf("upload s3://%s/%s: %w", b.name, key, err)
	}
	b.log().Info("s3 object stored", zap.String("bucket", b.name), zap.String("key", key))
	if b.publicURL != "" {
		return b.publicURL + "/" + key, nil
	}
	return out.Location, nil
}

// Delete removes key from the bucket. Deleting a missing key is not an error.
func (b *Bucket) Delete(ctx context.Context, key string) error {
	if b.del == nil {
		return ErrNoBucket
	}
	if _, err := b.del.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.name),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("delete s3://%s/%s: %w", b.name, key, err)
	}
	b.log().Info("s3 object deleted", zap.String("bucket", b.name), zap.String("key", key))
	return nil
}

// ArchiveKey returns the object key for a backup file name.
func ArchiveKey(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		base = "backup.db.gz"
	}
	return ArchivePrefix + base
}

// Archive stores a backup stream under backups/<filename>.
func (b *Bucket) Archive(ctx context.Context, filename string, body io.Reader) (string, error) {
	key := ArchiveKey(filename)
	if _, err := b.Put(ctx, key, "application/gzip", body); err != nil {
		return "", err
	}
	return key, nil
}
