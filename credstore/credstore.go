// Package credstore provides dto.CredentialStore backends.
//
// Every backend stores opaque string values under the dto.CredentialAccessToken
// and dto.CredentialRefreshToken keys and reports missing keys with an error
// matching ErrNotFound.
package credstore

import (
	"context"
	"fmt"

	"github.com/joy-dx/netpipe/config"
	"github.com/joy-dx/netpipe/dto"
)

var ErrNotFound = dto.ErrCredentialNotFound

const defaultFilePath = "~/.config/netpipe/credentials.toml"

// New builds the backend selected by cfg.CredentialBackend.
func New(ctx context.Context, cfg *config.PipelineConfig) (dto.CredentialStore, error) {
	switch cfg.CredentialBackend {
	case "", config.BackendMemory:
		return NewMemory(nil), nil
	case config.BackendFile:
		path := cfg.CredentialFile
		if path == "" {
			path = defaultFilePath
		}
		store, err := NewFile(path)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.BackendRedis:
		return NewRedis(cfg.RedisAddr, cfg.RedisPrefix), nil
	case config.BackendS3:
		store, err := NewS3(ctx, S3Config{
			Bucket:   cfg.S3Bucket,
			Prefix:   cfg.S3Prefix,
			Region:   cfg.S3Region,
			Endpoint: cfg.S3Endpoint,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("%w: unknown credential backend %q", config.ErrInvalidConfig, cfg.CredentialBackend)
	}
}

func notFound(key string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, key)
}
