package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// fileConfig mirrors the TOML layout; empty values keep what is already set.
type fileConfig struct {
	BaseAddress    string            `toml:"base_address"`
	Timeout        string            `toml:"timeout"`
	DefaultHeaders map[string]string `toml:"default_headers"`
	UserAgent      string            `toml:"user_agent"`
	LoginPath      string            `toml:"login_path"`
	LoginEndpoint  string            `toml:"login_endpoint"`
	RefreshPath    string            `toml:"refresh_path"`
	Log            struct {
		Level  string `toml:"level"`
		Format string `toml:"format"`
	} `toml:"log"`
	Credentials struct {
		Backend     string `toml:"backend"`
		File        string `toml:"file"`
		RedisAddr   string `toml:"redis_addr"`
		RedisPrefix string `toml:"redis_prefix"`
		S3Bucket    string `toml:"s3_bucket"`
		S3Prefix    string `toml:"s3_prefix"`
		S3Region    string `toml:"s3_region"`
		S3Endpoint  string `toml:"s3_endpoint"`
	} `toml:"credentials"`
}

// LoadEnv builds a config from defaults overlaid with NETPIPE_* variables.
// A .env file in the working directory is honoured when present.
func LoadEnv() PipelineConfig {
	_ = godotenv.Load()

	cfg := DefaultPipelineConfig()
	cfg.BaseAddress = getEnv("NETPIPE_BASE_URL", cfg.BaseAddress)
	if raw := os.Getenv("NETPIPE_TIMEOUT"); raw != "" {
		if d, err := parseTimeout(raw); err == nil && d > 0 {
			cfg.RequestTimeout = d
		}
	}
	if raw := os.Getenv("NETPIPE_HEADERS"); raw != "" {
		_ = cfg.DefaultHeaders.Set(raw)
	}
	cfg.UserAgent = getEnv("NETPIPE_USER_AGENT", cfg.UserAgent)
	cfg.LoginPath = getEnv("NETPIPE_LOGIN_PATH", cfg.LoginPath)
	cfg.LoginEndpoint = getEnv("NETPIPE_LOGIN_ENDPOINT", cfg.LoginEndpoint)
	cfg.RefreshPath = getEnv("NETPIPE_REFRESH_PATH", cfg.RefreshPath)
	cfg.LogLevel = getEnv("NETPIPE_LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("NETPIPE_LOG_FORMAT", cfg.LogFormat)
	cfg.CredentialBackend = getEnv("NETPIPE_CREDENTIALS", cfg.CredentialBackend)
	cfg.CredentialFile = getEnv("NETPIPE_CREDENTIALS_FILE", cfg.CredentialFile)
	cfg.RedisAddr = getEnv("NETPIPE_REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisPrefix = getEnv("NETPIPE_REDIS_PREFIX", cfg.RedisPrefix)
	cfg.S3Bucket = getEnv("NETPIPE_S3_BUCKET", cfg.S3Bucket)
	cfg.S3Prefix = getEnv("NETPIPE_S3_PREFIX", cfg.S3Prefix)
	cfg.S3Region = getEnv("NETPIPE_S3_REGION", cfg.S3Region)
	cfg.S3Endpoint = getEnv("NETPIPE_S3_ENDPOINT", cfg.S3Endpoint)
	return cfg
}

// LoadFile overlays a TOML file onto cfg. A missing file is not an error.
func LoadFile(path string, cfg *PipelineConfig) error {
	resolved, err := ExpandPath(path)
	if err != nil {
		return fmt.Errorf("resolve config path: %w", err)
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}

	var raw fileConfig
	if err := toml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse config %s: %w", resolved, err)
	}

	if raw.Timeout != "" {
		d, err := parseTimeout(raw.Timeout)
		if err != nil {
			return fmt.Errorf("parse timeout %q: %w", raw.Timeout, err)
		}
		cfg.RequestTimeout = d
	}
	cfg.WithDefaultHeaders(raw.DefaultHeaders)
	overlay(&cfg.BaseAddress, raw.BaseAddress)
	overlay(&cfg.UserAgent, raw.UserAgent)
	overlay(&cfg.LoginPath, raw.LoginPath)
	overlay(&cfg.LoginEndpoint, raw.LoginEndpoint)
	overlay(&cfg.RefreshPath, raw.RefreshPath)
	overlay(&cfg.LogLevel, raw.Log.Level)
	overlay(&cfg.LogFormat, raw.Log.Format)
	overlay(&cfg.CredentialBackend, raw.Credentials.Backend)
	overlay(&cfg.CredentialFile, raw.Credentials.File)
	overlay(&cfg.RedisAddr, raw.Credentials.RedisAddr)
	overlay(&cfg.RedisPrefix, raw.Credentials.RedisPrefix)
	overlay(&cfg.S3Bucket, raw.Credentials.S3Bucket)
	overlay(&cfg.S3Prefix, raw.Credentials.S3Prefix)
	overlay(&cfg.S3Region, raw.Credentials.S3Region)
	overlay(&cfg.S3Endpoint, raw.Credentials.S3Endpoint)
	return nil
}

// ExpandPath resolves a leading "~/" against the user's home directory.
func ExpandPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
	}
	return path, nil
}

// parseTimeout accepts a Go duration ("30s") or bare milliseconds ("60000").
func parseTimeout(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	return time.ParseDuration(raw)
}

func overlay(dst *string, v string) {
	if strings.TrimSpace(v) != "" {
		*dst = v
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
