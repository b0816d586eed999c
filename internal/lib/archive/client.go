// Package archive сохраняет отчеты о запусках движка решений в объектное хранилище.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"leasing_hub/internal/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Client — интерфейс архива отчетов.
type Client interface {
	// Store сохраняет отчет и возвращает имя объекта.
	Store(ctx context.Context, at time.Time, report any) (string, error)
	IsEnabled() bool
}

type minioClient struct {
	client *minio.Client
	bucket string
	prefix string
	log    *slog.Logger
}

// NewClient создаёт клиента MinIO. Если архив выключен, возвращается noop-клиент.
func NewClient(ctx context.Context, cfg config.MinioConfig, log *slog.Logger) (Client, error) {
	const op = "archive.NewClient"

	if !cfg.Enabled {
		log.Info("report archive disabled")
		return &noopClient{}, nil
	}

	endpoint := cfg.MinioEndpoint
	if cfg.Port > 0 && !strings.Contains(endpoint, ":") {
		endpoint = fmt.Sprintf("%s:%d", endpoint, cfg.Port)
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioRootUser, cfg.MinioRootPassword, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	exists, err := client.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("%s: check bucket: %w", op, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("%s: create bucket: %w", op, err)
		}
		log.Info("report bucket created", slog.String("bucket", cfg.BucketName))
	}

	return &minioClient{
		client: client,
		bucket: cfg.BucketName,
		prefix: cfg.ReportPrefix,
		log:    log,
	}, nil
}

// ObjectName — имя объекта для отчета: <prefix>/YYYY/MM/DD/<timestamp>.json.
func ObjectName(prefix string, at time.Time) string {
	at = at.UTC()
	return path.Join(prefix, at.Format("2006/01/02"), at.Format("20060102T150405.000Z")+".json")
}

func (c *minioClient) Store(ctx context.Context, at time.Time, report any) (string, error) {
	const op = "archive.Store"

	data, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("%s: marshal: %w", op, err)
	}

	name := ObjectName(c.prefix, at)
	_, err = c.client.PutObject(ctx, c.bucket, name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("%s: put %s: %w", op, name, err)
	}

	c.log.Debug("execution report archived",
		slog.String("bucket", c.bucket),
		slog.String("object", name),
		slog.Int("bytes", len(data)),
	)
	return name, nil
}

func (c *minioClient) IsEnabled() bool {
	return true
}

type noopClient struct{}

func (c *noopClient) Store(ctx context.Context, at time.Time, report any) (string, error) {
	return "", nil
}

func (c *noopClient) IsEnabled() bool {
	return false
}
