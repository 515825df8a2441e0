package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Store backends for conversations.
const (
	StoreBackendPostgres = "postgres"
	StoreBackendMongo    = "mongo"
	StoreBackendMemory   = "memory"
)

// Config holds the environment driven configuration for the messaging service.
type Config struct {
	// Service Configuration
	ServiceName     string        `env:"SERVICE_NAME" envDefault:"messaging-api"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort        int           `env:"MESSAGING_API_PORT" envDefault:"8290"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"json"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// OpenTelemetry
	EnableTracing bool   `env:"OTEL_ENABLED" envDefault:"false"`
	OTLPEndpoint  string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`

	// Conversation store selection
	StoreBackend string `env:"CONVERSATION_STORE_BACKEND" envDefault:"postgres"` // Options: "postgres", "mongo" or "memory"

	// Database
	DBPostgresqlWriteDSN string        `env:"DB_POSTGRESQL_WRITE_DSN"`
	DBMaxIdleConns       int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	DBMaxOpenConns       int           `env:"DB_MAX_OPEN_CONNS" envDefault:"15"`
	DBConnLifetime       time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`

	// MongoDB
	MongoURI      string `env:"MONGO_URI"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"messaging"`

	// Profile cache
	RedisURL        string        `env:"REDIS_URL"`
	ProfileCacheTTL time.Duration `env:"PROFILE_CACHE_TTL" envDefault:"5m"`

	// Attachment storage
	StorageBackend   string `env:"ATTACHMENT_STORAGE_BACKEND" envDefault:"s3"` // Options: "s3" or "local"
	LocalStoragePath string `env:"ATTACHMENT_LOCAL_STORAGE_PATH"`

	S3Endpoint     string `env:"ATTACHMENT_S3_ENDPOINT"`
	S3Region       string `env:"ATTACHMENT_S3_REGION" envDefault:"us-west-2"`
	S3Bucket       string `env:"ATTACHMENT_S3_BUCKET"`
	S3AccessKeyID  string `env:"ATTACHMENT_S3_ACCESS_KEY_ID"`
	S3SecretKey    string `env:"ATTACHMENT_S3_SECRET_ACCESS_KEY"`
	S3UsePathStyle bool   `env:"ATTACHMENT_S3_USE_PATH_STYLE" envDefault:"true"`

	MaxAttachmentBytes     int64    `env:"ATTACHMENT_MAX_BYTES" envDefault:"20971520"`
	AllowedAttachmentTypes []string `env:"ATTACHMENT_ALLOWED_TYPES" envSeparator:","`
	// Blobs of hard-deleted conversations are kept unless this is set.
	PurgeAttachmentsOnDelete bool `env:"ATTACHMENT_PURGE_ON_DELETE" envDefault:"false"`

	// Authentication
	AuthEnabled         bool     `env:"AUTH_ENABLED" envDefault:"false"`
	AuthIssuer          string   `env:"AUTH_ISSUER"`
	AuthAudience        string   `env:"AUTH_AUDIENCE"`
	AuthJWKSURL         string   `env:"AUTH_JWKS_URL"`
	AuthStaffRoles      []string `env:"AUTH_STAFF_ROLES" envSeparator:"," envDefault:"staff"`
	AuthPrivilegedRoles []string `env:"AUTH_PRIVILEGED_ROLES" envSeparator:"," envDefault:"admin,owner"`

	// Rate limiting for conversation writes
	RateLimitWritesPerMinute int `env:"RATE_LIMIT_WRITES_PER_MINUTE" envDefault:"60"`
}

// Load parses environment variables into Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) normalize() error {
	c.StoreBackend = strings.ToLower(strings.TrimSpace(c.StoreBackend))
	c.StorageBackend = strings.ToLower(strings.TrimSpace(c.StorageBackend))
	c.S3Bucket = strings.TrimSpace(c.S3Bucket)
	c.S3AccessKeyID = strings.TrimSpace(c.S3AccessKeyID)
	c.S3SecretKey = strings.TrimSpace(c.S3SecretKey)
	c.S3Endpoint = strings.TrimSpace(c.S3Endpoint)
	c.AllowedAttachmentTypes = trimAll(c.AllowedAttachmentTypes)
	c.AuthStaffRoles = trimAll(c.AuthStaffRoles)
	c.AuthPrivilegedRoles = trimAll(c.AuthPrivilegedRoles)

	if c.MaxAttachmentBytes <= 0 {
		c.MaxAttachmentBytes = 20 * 1024 * 1024
	}

	switch c.StoreBackend {
	case StoreBackendPostgres:
		if strings.TrimSpace(c.DBPostgresqlWriteDSN) == "" {
			return fmt.Errorf("DB_POSTGRESQL_WRITE_DSN is required when CONVERSATION_STORE_BACKEND is postgres")
		}
	case StoreBackendMongo:
		if strings.TrimSpace(c.MongoURI) == "" {
			return fmt.Errorf("MONGO_URI is required when CONVERSATION_STORE_BACKEND is mongo")
		}
	case StoreBackendMemory:
	default:
		return fmt.Errorf("unsupported CONVERSATION_STORE_BACKEND %q", c.StoreBackend)
	}

	if !c.IsLocalStorage() && !c.IsS3Storage() {
		return fmt.Errorf("unsupported ATTACHMENT_STORAGE_BACKEND %q", c.StorageBackend)
	}

	if c.AuthEnabled {
		if strings.TrimSpace(c.AuthIssuer) == "" {
			return fmt.Errorf("AUTH_ISSUER is required when AUTH_ENABLED is true")
		}
		if strings.TrimSpace(c.AuthJWKSURL) == "" {
			return fmt.Errorf("AUTH_JWKS_URL is required when AUTH_ENABLED is true")
		}
	}
	return nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// IsLocalStorage returns true if local storage backend is configured.
func (c *Config) IsLocalStorage() bool {
	return strings.ToLower(strings.TrimSpace(c.StorageBackend)) == "local"
}

// IsS3Storage returns true if S3 storage backend is configured.
func (c *Config) IsS3Storage() bool {
	backend := strings.ToLower(strings.TrimSpace(c.StorageBackend))
	return backend == "" || backend == "s3"
}

// ProfileCacheEnabled reports whether a redis profile cache is configured.
func (c *Config) ProfileCacheEnabled() bool {
	return strings.TrimSpace(c.RedisURL) != ""
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
