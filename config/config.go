// Package config holds the pipeline configuration and its loaders.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joy-dx/netpipe/dto"
	"github.com/joy-dx/netpipe/relays"
	relayDTO "github.com/joy-dx/relay/dto"
)

const (
	DefaultRequestTimeout = 60 * time.Second
	DefaultLoginPath      = "/login"
	DefaultRefreshPath    = "/auth/refresh"
	DefaultLoginEndpoint  = "/auth/login"
)

// Credential backends understood by credstore.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendS3     = "s3"
)

var ErrInvalidConfig = errors.New("invalid config")

var validate = validator.New(validator.WithRequiredStructEnabled())

type PipelineConfig struct {
	BaseAddress    string           `validate:"required,url"`
	RequestTimeout time.Duration    `validate:"gt=0"`
	DefaultHeaders dto.ExtraHeaders `validate:"-"`
	UserAgent      string
	// LoginPath is the client route the Navigator redirects to.
	LoginPath string `validate:"required,startswith=/"`
	// LoginEndpoint and RefreshPath are API paths exempt from refresh-on-401.
	LoginEndpoint string `validate:"required,startswith=/"`
	RefreshPath   string `validate:"required,startswith=/"`

	LogLevel  string `validate:"omitempty,oneof=debug info warn warning error"`
	LogFormat string `validate:"omitempty,oneof=text json"`

	CredentialBackend string `validate:"oneof=memory file redis s3"`
	CredentialFile    string `validate:"required_if=CredentialBackend file"`
	RedisAddr         string `validate:"required_if=CredentialBackend redis"`
	RedisPrefix       string
	S3Bucket          string `validate:"required_if=CredentialBackend s3"`
	S3Prefix          string
	S3Region          string
	S3Endpoint        string `validate:"omitempty,url"`

	relay relayDTO.RelayInterface
}

func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		RequestTimeout: DefaultRequestTimeout,
		DefaultHeaders: dto.ExtraHeaders{
			"Content-Type": "application/json",
		},
		UserAgent:         "netpipe/1.0",
		LoginPath:         DefaultLoginPath,
		LoginEndpoint:     DefaultLoginEndpoint,
		RefreshPath:       DefaultRefreshPath,
		LogLevel:          "info",
		LogFormat:         "text",
		CredentialBackend: BackendMemory,
		RedisPrefix:       "netpipe:",
		S3Prefix:          "netpipe/credentials/",
	}
}

func (c *PipelineConfig) WithBaseAddress(address string) *PipelineConfig {
	c.BaseAddress = address
	return c
}

func (c *PipelineConfig) WithRequestTimeout(d time.Duration) *PipelineConfig {
	c.RequestTimeout = d
	return c
}

func (c *PipelineConfig) WithDefaultHeaders(headers map[string]string) *PipelineConfig {
	if c.DefaultHeaders == nil {
		c.DefaultHeaders = dto.ExtraHeaders{}
	}
	for k, v := range headers {
		c.DefaultHeaders[k] = v
	}
	return c
}

func (c *PipelineConfig) WithLoginPath(path string) *PipelineConfig {
	c.LoginPath = path
	return c
}

func (c *PipelineConfig) WithRefreshPath(path string) *PipelineConfig {
	c.RefreshPath = path
	return c
}

func (c *PipelineConfig) WithCredentialBackend(backend string) *PipelineConfig {
	c.CredentialBackend = backend
	return c
}

func (c *PipelineConfig) WithRelay(relay relayDTO.RelayInterface) *PipelineConfig {
	c.relay = relay
	return c
}

// Relay returns the configured relay, falling back to the default slog logger.
func (c *PipelineConfig) Relay() relayDTO.RelayInterface {
	if c.relay == nil {
		c.relay = relays.NewSlogRelay(slog.Default())
	}
	return c.relay
}

// Headers returns a copy of the default headers with the user agent applied.
func (c *PipelineConfig) Headers() map[string]string {
	out := make(map[string]string, len(c.DefaultHeaders)+1)
	for k, v := range c.DefaultHeaders {
		out[http.CanonicalHeaderKey(k)] = v
	}
	if c.UserAgent != "" {
		if _, ok := out["User-Agent"]; !ok {
			out["User-Agent"] = c.UserAgent
		}
	}
	return out
}

func (c *PipelineConfig) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: nil config", ErrInvalidConfig)
	}
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
