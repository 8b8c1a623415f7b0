// Package config loads runtime configuration for the dogwalk client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c/--config.
//  3. Environment variables (DOGWALK_*), with a .env file as fallback.
//  4. Command-line flags given explicitly.
//
// # JSON schema
//
// Durations use timex.Duration, so values are either strings like "3s" or
// integer nanoseconds:
//
//	{
//	  "base_url": "http://127.0.0.1:8080",
//	  "api_key": "dev-key",
//	  "product_id": "dogwalk",
//	  "request_timeout": "10s",
//	  "max_retries": 3,
//	  "cache_entries": 256,
//	  "data_dir": "~/.dogwalk",
//	  "blob_backend": "file"
//	}
package config
