// Package config handles configuration for the development origin,
// including defaults, JSON overlay, environment and command-line flags.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/dmitrijs2005/dogwalk/internal/flagx"
)

// Config holds runtime settings for the development origin.
//
// SecretKey signs access tokens; an empty key is replaced by a random one at
// startup. APIKey and ProductID are the values clients must send. The demo
// account is created at startup so a client can log in right away.
type Config struct {
	Addr                         string
	SecretKey                    string
	APIKey                       string
	ProductID                    string
	AccessTokenValidityDuration  time.Duration
	RefreshTokenValidityDuration time.Duration
	ImageDir                     string
	DemoEmail                    string
	DemoPassword                 string
	DemoNick                     string
	LogLevel                     string
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.Addr = ":8080"
	c.SecretKey = ""
	c.APIKey = "dev-key"
	c.ProductID = "dogwalk"
	c.AccessTokenValidityDuration = 1 * time.Minute
	c.RefreshTokenValidityDuration = 24 * time.Hour
	c.ImageDir = ""
	c.DemoEmail = "walker@dog.walk"
	c.DemoPassword = "walker"
	c.DemoNick = "walker"
	c.LogLevel = "info"
}

func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("listen address is required")
	}
	if c.AccessTokenValidityDuration <= 0 || c.RefreshTokenValidityDuration <= 0 {
		return fmt.Errorf("token lifetimes must be positive")
	}
	return nil
}

func settings() []flagx.Setting[Config] {
	return []flagx.Setting[Config]{
		flagx.StringVar("addr", "a", "DOGWALK_SERVER_ADDR", "address and port to listen on", func(c *Config) *string { return &c.Addr }),
		flagx.StringVar("secret-key", "s", "DOGWALK_SERVER_SECRET_KEY", "HMAC key for access tokens", func(c *Config) *string { return &c.SecretKey }),
		flagx.StringVar("api-key", "k", "DOGWALK_SERVER_API_KEY", "required SeSACKey value", func(c *Config) *string { return &c.APIKey }),
		flagx.StringVar("product-id", "", "DOGWALK_SERVER_PRODUCT_ID", "required ProductId value", func(c *Config) *string { return &c.ProductID }),
		flagx.DurationVar("access-ttl", "t", "DOGWALK_SERVER_ACCESS_TTL", "access token lifetime", func(c *Config) *time.Duration { return &c.AccessTokenValidityDuration }),
		flagx.DurationVar("refresh-ttl", "r", "DOGWALK_SERVER_REFRESH_TTL", "refresh token lifetime", func(c *Config) *time.Duration { return &c.RefreshTokenValidityDuration }),
		flagx.StringVar("image-dir", "i", "DOGWALK_SERVER_IMAGE_DIR", "directory served under /images", func(c *Config) *string { return &c.ImageDir }),
		flagx.StringVar("demo-email", "", "DOGWALK_SERVER_DEMO_EMAIL", "demo account email", func(c *Config) *string { return &c.DemoEmail }),
		flagx.StringVar("demo-password", "", "DOGWALK_SERVER_DEMO_PASSWORD", "demo account password", func(c *Config) *string { return &c.DemoPassword }),
		flagx.StringVar("demo-nick", "", "DOGWALK_SERVER_DEMO_NICK", "demo account nick", func(c *Config) *string { return &c.DemoNick }),
		flagx.StringVar("log-level", "", "DOGWALK_SERVER_LOG_LEVEL", "debug, info, warn or error", func(c *Config) *string { return &c.LogLevel }),
	}
}

func RegisterFlags(fs *pflag.FlagSet) {
	var d Config
	d.LoadDefaults()
	flagx.Register(fs, &d, settings())
}

type LoadOptions struct {
	ConfigFile string
	EnvFile    string
	Flags      *pflag.FlagSet
	LookupEnv  func(string) (string, bool)
}

// LoadConfig builds a Config by applying defaults, then the JSON file, the
// environment and finally explicitly set flags.
func LoadConfig(opts LoadOptions) (*Config, error) {
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
