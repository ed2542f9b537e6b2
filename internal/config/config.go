// Package config loads server configuration from the environment and
// builds the concrete services out of it.
package config

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ssgl/ourtransfer/internal/email"
	"github.com/ssgl/ourtransfer/pkg/transfer"
	"github.com/ssgl/ourtransfer/pkg/transfer/storage"
	fsstorage "github.com/ssgl/ourtransfer/pkg/transfer/storage/fs"
	memorystorage "github.com/ssgl/ourtransfer/pkg/transfer/storage/memory"
	s3storage "github.com/ssgl/ourtransfer/pkg/transfer/storage/s3"
)

// Config is read once at startup. The listen port is handled by
// chi-demo's app from its own PORT variable.
type Config struct {
	AppOrigin string `env:"APP_ORIGIN" env-default:"http://localhost:4000"`

	Storage  StorageConfig
	Download DownloadConfig
	DB       DbConfig
	Auth     AuthConfig
	Email    EmailConfig
}

type StorageConfig struct {
	// AccountName and SigningKey drive grant issuance. An empty value
	// for either leaves the transfer service unconfigured.
	AccountName string `env:"STORAGE_ACCOUNT"`
	SigningKey  string `env:"STORAGE_SIGNING_KEY"`
	Container   string `env:"STORAGE_CONTAINER" env-default:"temporales"`
	BaseURL     string `env:"STORAGE_BASE_URL"`

	// URL selects the blob gateway backend:
	//   "memory://"          - in-memory storage (default)
	//   "file:///path/to/d"  - filesystem storage
	//   "s3://bucket"        - S3 storage, credentials from the AWS_* vars
	URL string `env:"STORAGE_URL" env-default:"memory://"`
	S3  S3Config
}

type S3Config struct {
	Endpoint        string `env:"AWS_S3_ENDPOINT"`
	AccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	Region          string `env:"AWS_S3_REGION" env-default:"us-east-1"`
	UsePathStyle    bool   `env:"AWS_S3_USE_PATH_STYLE" env-default:"false"`
}

type DownloadConfig struct {
	HostSuffix      string        `env:"STORAGE_HOST_SUFFIX" env-default:".blob.ssgl.cloud"`
	UpstreamTimeout time.Duration `env:"DOWNLOAD_UPSTREAM_TIMEOUT" env-default:"10m"`
}

type DbConfig struct {
	Port     uint16 `env:"TRANSFER_PG_PORT" env-default:"5432"`
	Host     string `env:"TRANSFER_PG_HOST" env-default:"localhost"`
	Name     string `env:"TRANSFER_PG_NAME" env-default:"transfer_db"`
	User     string `env:"TRANSFER_PG_USER" env-default:"transfer"`
	Password string `env:"TRANSFER_PG_PASSWORD" env-default:"pwd"`
}

type AuthConfig struct {
	SigningKey string        `env:"JWT_SIGNING_KEY"`
	TokenTTL   time.Duration `env:"JWT_TTL" env-default:"8h"`
}

type EmailConfig struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT" env-default:"587"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"EMAIL_SENDER_ADDRESS"`
}

func (c DbConfig) toDatabaseUrl() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   c.Name,
	}
	return u.String()
}

// NewDbPool opens and pings a pgx connection pool for the login store.
func NewDbPool(ctx context.Context, dbConfig DbConfig) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dbConfig.toDatabaseUrl())
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

// BuildTransferService assembles the grant issuing service from the
// storage settings.
func (c Config) BuildTransferService() (transfer.Service, *transfer.Signer, error) {
	signer := transfer.NewSigner(transfer.WithSecretKey([]byte(c.Storage.SigningKey)))
	svc, err := transfer.New(
		transfer.WithSigner(signer),
		transfer.WithAccount(c.Storage.AccountName),
		transfer.WithContainer(c.Storage.Container),
		transfer.WithStorageBaseURL(c.Storage.BaseURL),
	)
	if err != nil {
		return nil, nil, err
	}
	return svc, signer, nil
}

// BuildBlobStore selects a blob backend from STORAGE_URL.
func (c Config) BuildBlobStore() (storage.BlobStore, error) {
	storageURL := c.Storage.URL
	if storageURL == "" || storageURL == "memory" || storageURL == "memory://" {
		return memorystorage.New(), nil
	}

	switch {
	case strings.HasPrefix(storageURL, "file://"):
		path := strings.TrimPrefix(storageURL, "file://")
		if path == "" {
			return nil, fmt.Errorf("filesystem path cannot be empty in STORAGE_URL")
		}
		return fsstorage.New(fsstorage.Config{BaseDir: path})
	case strings.HasPrefix(storageURL, "s3://"):
		bucket := strings.TrimPrefix(storageURL, "s3://")
		if idx := strings.IndexByte(bucket, '?'); idx >= 0 {
			bucket = bucket[:idx]
		}
		if bucket == "" {
			return nil, fmt.Errorf("S3 bucket name cannot be empty in STORAGE_URL")
		}
		return s3storage.New(s3storage.Config{
			Region:          c.Storage.S3.Region,
			Bucket:          bucket,
			AccessKeyID:     c.Storage.S3.AccessKeyID,
			SecretAccessKey: c.Storage.S3.SecretAccessKey,
			Endpoint:        c.Storage.S3.Endpoint,
			UsePathStyle:    c.Storage.S3.UsePathStyle,
		})
	}
	return nil, fmt.Errorf("unsupported STORAGE_URL format: %s (use 'memory://', 'file://...', or 's3://...')", storageURL)
}

// BuildEmailSender returns nil when no SMTP relay is configured, which
// the send-email handler reports as a configuration error.
func (c Config) BuildEmailSender() (email.Sender, error) {
	if c.Email.Host == "" || c.Email.From == "" {
		return nil, nil
	}
	return email.NewSMTPSender(email.SMTPConfig{
		Host:     c.Email.Host,
		Port:     c.Email.Port,
		Username: c.Email.Username,
		Password: c.Email.Password,
		From:     c.Email.From,
	})
}
