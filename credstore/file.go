package credstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/joy-dx/netpipe/config"
	toml "github.com/pelletier/go-toml/v2"
)

type fileLayout struct {
	Credentials map[string]string `toml:"credentials"`
}

// File persists credentials to a TOML file readable only by the owner.
// The file is re-read on every call so several processes can share it.
type File struct {
	mu   sync.Mutex
	path string
}

func NewFile(path string) (*File, error) {
	resolved, err := config.ExpandPath(path)
	if err != nil {
		return nil, fmt.Errorf("resolve credentials path: %w", err)
	}
	resolved, err = filepath.Abs(resolved)
	if err != nil {
		return nil, fmt.Errorf("resolve credentials path: %w", err)
	}
	return &File{path: resolved}, nil
}

func (f *File) Path() string { return f.path }

func (f *File) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return "", err
	}
	v, ok := values[key]
	if !ok {
		return "", notFound(key)
	}
	return v, nil
}

func (f *File) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return err
	}
	values[key] = value
	return f.save(values)
}

func (f *File) Remove(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return f.save(values)
}

func (f *File) load() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read credentials: %w", err)
	}

	var layout fileLayout
	if err := toml.Unmarshal(data, &layout); err != nil {
		return nil, fmt.Errorf("parse credentials %s: %w", f.path, err)
	}
	if layout.Credentials == nil {
		layout.Credentials = map[string]string{}
	}
	return layout.Credentials, nil
}

func (f *File) save(values map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create credentials dir: %w", err)
	}

	data, err := toml.Marshal(fileLayout{Credentials: values})
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}

	if err := os.WriteFile(f.path, data, 0o600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	return nil
}
