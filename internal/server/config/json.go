package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/dogwalk/internal/timex"
)

// JsonConfig is the on-disk shape of Config. Durations accept "1m" or
// integer nanoseconds. Absent fields keep their current value.
type JsonConfig struct {
	Addr                         string         `json:"addr"`
	SecretKey                    string         `json:"secret_key"`
	APIKey                       string         `json:"api_key"`
	ProductID                    string         `json:"product_id"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	ImageDir                     string         `json:"image_dir"`
	DemoEmail                    string         `json:"demo_email"`
	DemoPassword                 string         `json:"demo_password"`
	DemoNick                     string         `json:"demo_nick"`
	LogLevel                     string         `json:"log_level"`
}

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

	for dst, v := range map[*string]string{
		&config.Addr:         c.Addr,
		&config.SecretKey:    c.SecretKey,
		&config.APIKey:       c.APIKey,
		&config.ProductID:    c.ProductID,
		&config.ImageDir:     c.ImageDir,
		&config.DemoEmail:    c.DemoEmail,
		&config.DemoPassword: c.DemoPassword,
		&config.DemoNick:     c.DemoNick,
		&config.LogLevel:     c.LogLevel,
	} {
		if v != "" {
			*dst = v
		}
	}
	if c.AccessTokenValidityDuration.Duration > 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.RefreshTokenValidityDuration.Duration > 0 {
		config.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	}
	return nil
}
