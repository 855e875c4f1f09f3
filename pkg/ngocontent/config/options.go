package config

import (
	"fmt"
	"net/url"
)

// WithPort sets the server port
func WithPort(port string) Option {
	return func(c *ServerConfig) error {
		if port == "" {
			return fmt.Errorf("port cannot be empty")
		}
		c.Port = port
		return nil
	}
}

// WithEnvironment sets the environment (development, production, testing)
func WithEnvironment(env string) Option {
	return func(c *ServerConfig) error {
		if env == "" {
			return fmt.Errorf("environment cannot be empty")
		}
		c.Environment = env
		return nil
	}
}

// WithDatabase configures the database backend
func WithDatabase(dbType, url string) Option {
	return func(c *ServerConfig) error {
		switch dbType {
		case "memory":
		case "postgres", "sqlite", "mysql":
			if url == "" {
				return fmt.Errorf("database URL is required for %s", dbType)
			}
		default:
			return fmt.Errorf("database type must be 'memory', 'postgres', 'sqlite' or 'mysql', got: %s", dbType)
		}
		c.DatabaseType = dbType
		c.DatabaseURL = url
		return nil
	}
}

// WithDatabaseSchema sets the database schema (for Postgres)
func WithDatabaseSchema(schema string) Option {
	return func(c *ServerConfig) error {
		c.DBSchema = schema
		return nil
	}
}

// WithAutoMigrate toggles table creation on startup
func WithAutoMigrate(enabled bool) Option {
	return func(c *ServerConfig) error {
		c.AutoMigrate = enabled
		return nil
	}
}

// WithMemoryStorage keeps images in process memory
func WithMemoryStorage(publicBaseURL string) Option {
	return func(c *ServerConfig) error {
		c.Storage = StorageConfig{Type: "memory", PublicBaseURL: publicBaseURL, Region: c.Storage.Region}
		return nil
	}
}

// WithFilesystemStorage stores images under baseDir
func WithFilesystemStorage(baseDir, publicBaseURL string) Option {
	return func(c *ServerConfig) error {
		if baseDir == "" {
			return fmt.Errorf("filesystem base directory cannot be empty")
		}
		c.Storage = StorageConfig{Type: "fs", BaseDir: baseDir, PublicBaseURL: publicBaseURL, Region: c.Storage.Region}
		return nil
	}
}

// WithS3Storage stores images in an S3 bucket
func WithS3Storage(bucket, region string) Option {
	return func(c *ServerConfig) error {
		if bucket == "" {
			return fmt.Errorf("S3 bucket cannot be empty")
		}
		if region == "" {
			region = "us-east-1"
		}
		c.Storage.Type = "s3"
		c.Storage.Bucket = bucket
		c.Storage.Region = region
		return nil
	}
}

// WithS3Credentials sets static AWS credentials for S3 storage
func WithS3Credentials(accessKeyID, secretAccessKey string) Option {
	return func(c *ServerConfig) error {
		c.Storage.AccessKeyID = accessKeyID
		c.Storage.SecretAccessKey = secretAccessKey
		return nil
	}
}

// WithS3Endpoint sets a custom S3 endpoint (for MinIO, LocalStack, etc.)
func WithS3Endpoint(endpoint string, usePathStyle bool) Option {
	return func(c *ServerConfig) error {
		c.Storage.Endpoint = endpoint
		c.Storage.UsePathStyle = usePathStyle
		return nil
	}
}

// WithPublicBaseURL sets the url stored images are served under
func WithPublicBaseURL(baseURL string) Option {
	return func(c *ServerConfig) error {
		if baseURL != "" {
			u, err := url.Parse(baseURL)
			if err != nil || u.Scheme == "" || u.Host == "" {
				return fmt.Errorf("public base url must be absolute, got: %s", baseURL)
			}
		}
		c.Storage.PublicBaseURL = baseURL
		return nil
	}
}

// WithPageSize sets the default listing page size
func WithPageSize(size int) Option {
	return func(c *ServerConfig) error {
		if size <= 0 {
			return fmt.Errorf("page size must be positive, got: %d", size)
		}
		c.PageSize = size
		return nil
	}
}

// WithJWTSecret sets the HS256 secret for bearer tokens
func WithJWTSecret(secret string) Option {
	return func(c *ServerConfig) error {
		c.JWTSecret = secret
		return nil
	}
}

// WithInsecureLocators allows image urls that are not https
func WithInsecureLocators(allow bool) Option {
	return func(c *ServerConfig) error {
		c.AllowInsecureLocators = allow
		return nil
	}
}
