package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnv(string) (string, bool) { return "", false }

func envFrom(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) { v, ok := m[k]; return v, ok }
}

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://127.0.0.1:8080", c.BaseURL)
	assert.Equal(t, "dogwalk", c.ProductID)
	assert.Equal(t, 10*time.Second, c.RequestTimeout)
	assert.Equal(t, 3, c.MaxRetries)
	assert.Equal(t, 256, c.CacheEntries)
	assert.Equal(t, BlobBackendFile, c.BlobBackend)
	assert.NotEmpty(t, c.DataDir)
	require.NoError(t, c.Validate())
}

func TestLoad_DefaultsOnly(t *testing.T) {
	cfg, err := Load(LoadOptions{LookupEnv: noEnv})
	require.NoError(t, err)

	var want Config
	want.LoadDefaults()
	if diff := cmp.Diff(&want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Precedence(t *testing.T) {
	path := writeTempJSON(t, "", "", map[string]any{
		"base_url":        "http://json:1",
		"api_key":         "json-key",
		"max_retries":     5,
		"request_timeout": "4s",
		"cache_entries":   64,
	})
	fs := pflag.NewFlagSet("client", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"--max-retries", "1"}))

	cfg, err := Load(LoadOptions{
		ConfigFile: path,
		Flags:      fs,
		LookupEnv: envFrom(map[string]string{
			"DOGWALK_API_KEY":     "env-key",
			"DOGWALK_MAX_RETRIES": "2",
		}),
	})
	require.NoError(t, err)

	var want Config
	want.LoadDefaults()
	want.BaseURL = "http://json:1"
	want.APIKey = "env-key"
	want.MaxRetries = 1
	want.RequestTimeout = 4 * time.Second
	want.CacheEntries = 64
	if diff := cmp.Diff(&want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_UnsetFlagsDoNotMaskEnv(t *testing.T) {
	fs := pflag.NewFlagSet("client", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(nil))

	cfg, err := Load(LoadOptions{
		Flags:     fs,
		LookupEnv: envFrom(map[string]string{"DOGWALK_BASE_URL": "http://env:2"}),
	})
	require.NoError(t, err)
	assert.Equal(t, "http://env:2", cfg.BaseURL)
}

func TestLoad_S3FromEnv(t *testing.T) {
	cfg, err := Load(LoadOptions{LookupEnv: envFrom(map[string]string{
		"DOGWALK_BLOB_BACKEND":  "s3",
		"DOGWALK_S3_ENDPOINT":   "http://minio:9000",
		"DOGWALK_S3_ACCESS_KEY": "minio",
		"DOGWALK_S3_SECRET_KEY": "minio123",
		"DOGWALK_S3_PATH_STYLE": "false",
	})})
	require.NoError(t, err)

	want := S3Config{Region: "us-east-1", Endpoint: "http://minio:9000", AccessKey: "minio", SecretKey: "minio123", Bucket: "dogwalk", Prefix: "content"}
	if diff := cmp.Diff(want, cfg.S3); diff != "" {
		t.Fatalf("s3 mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"backend":      {"DOGWALK_BLOB_BACKEND": "tape"},
		"retries":      {"DOGWALK_MAX_RETRIES": "-1"},
		"bad int":      {"DOGWALK_MAX_RETRIES": "three"},
		"bad dur":      {"DOGWALK_REQUEST_TIMEOUT": "soon"},
		"empty base":   {"DOGWALK_BASE_URL": ""},
		"no s3 bucket": {"DOGWALK_BLOB_BACKEND": "s3", "DOGWALK_S3_BUCKET": ""},
	}
	for name, env := range cases {
		_, err := Load(LoadOptions{LookupEnv: envFrom(env)})
		assert.Error(t, err, name)
	}
}

func TestPaths(t *testing.T) {
	c := Config{DataDir: "/var/dogwalk"}
	assert.Equal(t, "/var/dogwalk/dogwalk.db", c.DBPath())
	assert.Equal(t, "/var/dogwalk/blobs", c.BlobDir())
}
