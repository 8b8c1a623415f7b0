package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/dogwalk/internal/timex"
)

// JsonConfig is the on-disk shape of Config. Absent or zero fields leave the
// current value alone.
type JsonConfig struct {
	BaseURL        string          `json:"base_url"`
	APIKey         string          `json:"api_key"`
	ProductID      string          `json:"product_id"`
	RequestTimeout timex.Duration  `json:"request_timeout"`
	MaxRetries     *int            `json:"max_retries"`
	RetryBaseDelay *timex.Duration `json:"retry_base_delay"`
	RetryMaxDelay  timex.Duration  `json:"retry_max_delay"`
	RefreshTimeout timex.Duration  `json:"refresh_timeout"`
	CacheEntries   int             `json:"cache_entries"`
	DataDir        string          `json:"data_dir"`
	BlobBackend    string          `json:"blob_backend"`
	S3             *JsonS3Config   `json:"s3"`
	LogLevel       string          `json:"log_level"`
}

type JsonS3Config struct {
	Region       string `json:"region"`
	Endpoint     string `json:"endpoint"`
	AccessKey    string `json:"access_key"`
	SecretKey    string `json:"secret_key"`
	Bucket       string `json:"bucket"`
	Prefix       string `json:"prefix"`
	UsePathStyle *bool  `json:"use_path_style"`
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// parseJson overlays the file at path onto config. An empty path loads
// nothing.
func parseJson(config *Config, path string) error {
	if path == "" {
		return nil
	}
	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&config.BaseURL, c.BaseURL)
	setString(&config.APIKey, c.APIKey)
	setString(&config.ProductID, c.ProductID)
	if c.RequestTimeout.Duration > 0 {
		config.RequestTimeout = c.RequestTimeout.Duration
	}
	if c.MaxRetries != nil {
		config.MaxRetries = *c.MaxRetries
	}
	if c.RetryBaseDelay != nil {
		config.RetryBaseDelay = c.RetryBaseDelay.Duration
	}
	if c.RetryMaxDelay.Duration > 0 {
		config.RetryMaxDelay = c.RetryMaxDelay.Duration
	}
	if c.RefreshTimeout.Duration > 0 {
		config.RefreshTimeout = c.RefreshTimeout.Duration
	}
	if c.CacheEntries > 0 {
		config.CacheEntries = c.CacheEntries
	}
	setString(&config.DataDir, c.DataDir)
	setString(&config.BlobBackend, c.BlobBackend)
	setString(&config.LogLevel, c.LogLevel)

	if s := c.S3; s != nil {
		setString(&config.S3.Region, s.Region)
		setString(&config.S3.Endpoint, s.Endpoint)
		setString(&config.S3.AccessKey, s.AccessKey)
		setString(&config.S3.SecretKey, s.SecretKey)
		setString(&config.S3.Bucket, s.Bucket)
		setString(&config.S3.Prefix, s.Prefix)
		if s.UsePathStyle != nil {
			config.S3.UsePathStyle = *s.UsePathStyle
		}
	}
	return nil
}
