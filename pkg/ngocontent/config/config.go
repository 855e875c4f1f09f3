package config

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/tendant/ngo-content/pkg/ngocontent"
	"github.com/tendant/ngo-content/pkg/ngocontent/repo/memory"
	repopg "github.com/tendant/ngo-content/pkg/ngocontent/repo/postgres"
	"github.com/tendant/ngo-content/pkg/ngocontent/repo/sqldb"
	fsstorage "github.com/tendant/ngo-content/pkg/ngocontent/storage/fs"
	memorystorage "github.com/tendant/ngo-content/pkg/ngocontent/storage/memory"
	s3storage "github.com/tendant/ngo-content/pkg/ngocontent/storage/s3"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:         "8080",
		Environment:  "development",
		DatabaseType: "memory",
		AutoMigrate:  true,
		Storage: StorageConfig{
			Type:   "memory",
			Region: "us-east-1",
		},
		PageSize:    ngocontent.DefaultPageSize,
		ImagesRoute: "/images",
	}
}

// ServerConfig represents server configuration for the ngo-content service
type ServerConfig struct {
	Port        string
	Environment string // development, production, testing

	// Database configuration
	DatabaseType string // "memory", "postgres", "sqlite", "mysql"
	DatabaseURL  string // connection string or DSN for the selected type
	DBSchema     string // Postgres schema to use
	AutoMigrate  bool   // create tables on startup
	DatabaseLog  bool   // log SQL for the bun backends

	Storage StorageConfig

	// PageSize is used when a listing request does not name one
	PageSize int
	// LinkBaseURL prefixes page links; empty keeps them relative
	LinkBaseURL string
	// JWTSecret signs and verifies bearer tokens (HS256)
	JWTSecret string
	// AllowInsecureLocators accepts non-https image urls, for local development
	AllowInsecureLocators bool
	// ImagesRoute is where filesystem images are served
	ImagesRoute string
}

// StorageConfig selects and configures the image blob store
type StorageConfig struct {
	Type string // "memory", "fs", "s3"

	// PublicBaseURL is the url images are reachable under
	PublicBaseURL string

	// fs
	BaseDir string

	// s3
	Bucket          string
	Region          string
	Endpoint        string
	UsePathStyle    bool
	AccessKeyID     string
	SecretAccessKey string
	CreateBucket    bool
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	switch c.DatabaseType {
	case "memory":
	case "postgres", "sqlite", "mysql":
		if c.DatabaseURL == "" {
			return fmt.Errorf("database_url is required when using %s", c.DatabaseType)
		}
	default:
		return fmt.Errorf("database_type must be one of memory, postgres, sqlite, mysql, got: %s", c.DatabaseType)
	}

	switch c.Storage.Type {
	case "memory":
	case "fs":
		if c.Storage.BaseDir == "" {
			return errors.New("storage base directory is required for fs storage")
		}
		if c.Storage.PublicBaseURL == "" && !c.AllowInsecureLocators {
			return errors.New("fs storage needs a public https url unless insecure locators are allowed")
		}
	case "s3":
		if c.Storage.Bucket == "" {
			return errors.New("storage bucket is required for s3 storage")
		}
	default:
		return fmt.Errorf("storage type must be one of memory, fs, s3, got: %s", c.Storage.Type)
	}

	if c.PageSize <= 0 {
		return fmt.Errorf("page size must be positive, got: %d", c.PageSize)
	}
	if c.Environment == "production" && c.JWTSecret == "" {
		return errors.New("jwt secret is required in production")
	}

	return nil
}

// BuildServices creates the entity services from the server configuration
func (c *ServerConfig) BuildServices(ctx context.Context, opts ...ngocontent.Option) (*ngocontent.Services, error) {
	store, err := c.BuildStore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build store: %w", err)
	}

	blobs, err := c.BuildBlobStore(ctx)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to build blob store: %w", err)
	}

	var coordOpts []ngocontent.CoordinatorOption
	if c.AllowInsecureLocators {
		coordOpts = append(coordOpts, ngocontent.WithLocatorPolicy(ngocontent.AllowAnyLocator))
	}

	options := []ngocontent.Option{
		ngocontent.WithStore(store),
		ngocontent.WithBlobStore(blobs),
		ngocontent.WithCoordinatorOptions(coordOpts...),
		ngocontent.WithLinkBuilder(ngocontent.NewQueryLinkBuilder(c.LinkBaseURL)),
	}
	services, err := ngocontent.New(append(options, opts...)...)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return services, nil
}

// BuildStore creates the relational store and migrates it when AutoMigrate is set
func (c *ServerConfig) BuildStore(ctx context.Context) (ngocontent.Store, error) {
	switch c.DatabaseType {
	case "memory":
		return memory.New(), nil
	case "postgres":
		store, err := repopg.Connect(ctx, c.DatabaseURL, c.DBSchema)
		if err != nil {
			return nil, err
		}
		if c.AutoMigrate {
			if err := store.Migrate(ctx); err != nil {
				_ = store.Close()
				return nil, err
			}
		}
		return store, nil
	case "sqlite", "mysql":
		cfg := sqldb.Config{Driver: c.DatabaseType, DSN: c.DatabaseURL, Debug: c.DatabaseLog}
		if c.DatabaseType == "sqlite" {
			cfg.MaxOpenConns = 1
		}
		store, err := sqldb.Open(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if c.AutoMigrate {
			if err := store.Migrate(ctx); err != nil {
				_ = store.Close()
				return nil, err
			}
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
}

// BuildBlobStore creates the image blob store
func (c *ServerConfig) BuildBlobStore(ctx context.Context) (ngocontent.BlobStore, error) {
	switch c.Storage.Type {
	case "memory":
		return memorystorage.New(c.Storage.PublicBaseURL)
	case "fs":
		return fsstorage.New(fsstorage.Config{
			BaseDir: c.Storage.BaseDir,
			BaseURL: c.filesystemBaseURL(),
		})
	case "s3":
		return s3storage.New(ctx, s3storage.Config{
			Region:                 c.Storage.Region,
			Bucket:                 c.Storage.Bucket,
			AccessKeyID:            c.Storage.AccessKeyID,
			SecretAccessKey:        c.Storage.SecretAccessKey,
			Endpoint:               c.Storage.Endpoint,
			UsePathStyle:           c.Storage.UsePathStyle,
			PublicBaseURL:          c.Storage.PublicBaseURL,
			CreateBucketIfNotExist: c.Storage.CreateBucket,
		})
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", c.Storage.Type)
	}
}

// ImageHandler serves filesystem images. It reports false for other storage types.
func (c *ServerConfig) ImageHandler() (http.Handler, bool, error) {
	if c.Storage.Type != "fs" {
		return nil, false, nil
	}
	backend, err := fsstorage.New(fsstorage.Config{BaseDir: c.Storage.BaseDir, BaseURL: c.filesystemBaseURL()})
	if err != nil {
		return nil, false, err
	}
	return http.StripPrefix(c.ImagesRoute, backend.Handler()), true, nil
}

func (c *ServerConfig) filesystemBaseURL() string {
	if c.Storage.PublicBaseURL != "" {
		return c.Storage.PublicBaseURL
	}
	return fmt.Sprintf("http://localhost:%s%s", c.Port, c.ImagesRoute)
}
