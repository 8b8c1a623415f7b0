package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"

	"github.com/dmitrijs2005/dogwalk/internal/flagx"
)

const (
	BlobBackendFile = "file"
	BlobBackendS3   = "s3"
)

type S3Config struct {
	Region       string
	Endpoint     string
	AccessKey    string
	SecretKey    string
	Bucket       string
	Prefix       string
	UsePathStyle bool
}

// Config holds runtime settings for the dogwalk client.
//
// BaseURL, APIKey and ProductID identify the origin and this application to
// it. DataDir holds the SQLite database and, for the file backend, the
// durable cache blobs.
type Config struct {
	BaseURL        string
	APIKey         string
	ProductID      string
	RequestTimeout time.Duration
	MaxRetries     int
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration
	RefreshTimeout time.Duration
	CacheEntries   int
	DataDir        string
	BlobBackend    string
	S3             S3Config
	LogLevel       string
}

func (c *Config) LoadDefaults() {
	c.BaseURL = "http://127.0.0.1:8080"
	c.APIKey = ""
	c.ProductID = "dogwalk"
	c.RequestTimeout = 10 * time.Second
	c.MaxRetries = 3
	c.RetryBaseDelay = 200 * time.Millisecond
	c.RetryMaxDelay = 2 * time.Second
	c.RefreshTimeout = 10 * time.Second
	c.CacheEntries = 256
	c.DataDir = defaultDataDir()
	c.BlobBackend = BlobBackendFile
	c.S3 = S3Config{Region: "us-east-1", Bucket: "dogwalk", Prefix: "content", UsePathStyle: true}
	c.LogLevel = "info"
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "dogwalk")
	}
	return ".dogwalk"
}

func (c *Config) DBPath() string  { return filepath.Join(c.DataDir, "dogwalk.db") }
func (c *Config) BlobDir() string  { return filepath.Join(c.DataDir, "blobs") }

func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base url is required")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries must not be negative")
	}
	switch c.BlobBackend {
	case BlobBackendFile:
	case BlobBackendS3:
		if c.S3.Bucket == "" {
			return fmt.Errorf("s3 bucket is required for the s3 blob backend")
		}
	default:
		return fmt.Errorf("unknown blob backend %q", c.BlobBackend)
	}
	return nil
}

func settings() []flagx.Setting[Config] {
	return []flagx.Setting[Config]{
		flagx.StringVar("base-url", "a", "DOGWALK_BASE_URL", "origin base URL", func(c *Config) *string { return &c.BaseURL }),
		flagx.StringVar("api-key", "k", "DOGWALK_API_KEY", "application key sent as SeSACKey", func(c *Config) *string { return &c.APIKey }),
		flagx.StringVar("product-id", "", "DOGWALK_PRODUCT_ID", "product id sent as ProductId", func(c *Config) *string { return &c.ProductID }),
		flagx.DurationVar("request-timeout", "", "DOGWALK_REQUEST_TIMEOUT", "timeout of a single request", func(c *Config) *time.Duration { return &c.RequestTimeout }),
		flagx.IntVar("max-retries", "r", "DOGWALK_MAX_RETRIES", "retries after the first attempt", func(c *Config) *int { return &c.MaxRetries }),
		flagx.DurationVar("retry-base-delay", "", "DOGWALK_RETRY_BASE_DELAY", "first backoff delay, 0 disables waiting", func(c *Config) *time.Duration { return &c.RetryBaseDelay }),
		flagx.DurationVar("retry-max-delay", "", "DOGWALK_RETRY_MAX_DELAY", "backoff cap", func(c *Config) *time.Duration { return &c.RetryMaxDelay }),
		flagx.DurationVar("refresh-timeout", "", "DOGWALK_REFRESH_TIMEOUT", "bound of one credential refresh", func(c *Config) *time.Duration { return &c.RefreshTimeout }),
		flagx.IntVar("cache-entries", "", "DOGWALK_CACHE_ENTRIES", "in-memory cache capacity", func(c *Config) *int { return &c.CacheEntries }),
		flagx.StringVar("data-dir", "d", "DOGWALK_DATA_DIR", "directory for the database and blobs", func(c *Config) *string { return &c.DataDir }),
		flagx.StringVar("blob-backend", "", "DOGWALK_BLOB_BACKEND", "durable blob backend: file or s3", func(c *Config) *string { return &c.BlobBackend }),
		flagx.StringVar("s3-region", "", "DOGWALK_S3_REGION", "S3 region", func(c *Config) *string { return &c.S3.Region }),
		flagx.StringVar("s3-endpoint", "", "DOGWALK_S3_ENDPOINT", "S3 endpoint for S3-compatible storage", func(c *Config) *string { return &c.S3.Endpoint }),
		flagx.StringVar("", "", "DOGWALK_S3_ACCESS_KEY", "", func(c *Config) *string { return &c.S3.AccessKey }),
		flagx.StringVar("", "", "DOGWALK_S3_SECRET_KEY", "", func(c *Config) *string { return &c.S3.SecretKey }),
		flagx.StringVar("s3-bucket", "", "DOGWALK_S3_BUCKET", "S3 bucket", func(c *Config) *string { return &c.S3.Bucket }),
		flagx.StringVar("s3-prefix", "", "DOGWALK_S3_PREFIX", "S3 key prefix", func(c *Config) *string { return &c.S3.Prefix }),
		flagx.BoolVar("s3-path-style", "", "DOGWALK_S3_PATH_STYLE", "use path-style S3 addressing", func(c *Config) *bool { return &c.S3.UsePathStyle }),
		flagx.StringVar("log-level", "", "DOGWALK_LOG_LEVEL", "debug, info, warn or error", func(c *Config) *string { return &c.LogLevel }),
	}
}

// RegisterFlags adds the client flags to fs. Defaults shown in help are the
// built-in defaults.
func RegisterFlags(fs *pflag.FlagSet) {
	var d Config
	d.LoadDefaults()
	flagx.Register(fs, &d, settings())
}

type LoadOptions struct {
	ConfigFile string
	EnvFile    string
	Flags      *pflag.FlagSet
	// LookupEnv replaces the environment; used by tests.
	LookupEnv func(string) (string, bool)
}

// Load builds a Config from defaults, the JSON file, the environment and
// explicitly set flags, later sources winning.
func Load(opts LoadOptions) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, opts.ConfigFile); err != nil {
		return nil, err
	}

	lookup := opts.LookupEnv
	if lookup == nil {
		var err error
		if lookup, err = flagx.EnvLookup(opts.EnvFile); err != nil {
			return nil, err
		}
	}
	if err := flagx.ApplyEnv(cfg, settings(), lookup); err != nil {
		return nil, err
	}
	if err := flagx.ApplyFlags(cfg, opts.Flags, settings()); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
