package repositories

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileBlobStore writes each key to <dir>/<key>.json. Saves go through a
// temporary file and a rename so a crash never leaves a torn blob.
type FileBlobStore struct {
	dir string
}

func NewFileBlobStore(dir string) (*FileBlobStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &FileBlobStore{dir: dir}, nil
}

func (f *FileBlobStore) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.HasPrefix(key, ".") {
		return "", fmt.Errorf("invalid blob key %q", key)
	}
	return filepath.Join(f.dir, key+".json"), nil
}

func (f *FileBlobStore) Load(_ context.Context, key string) ([]byte, error) {
	p, err := f.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrBlobNotFound
	}
	return data, err
}

func (f *FileBlobStore) Save(_ context.Context, key string, data []byte) error {
	p, err := f.path(key)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.dir, "."+key+"-*")
	if err != nil {
		return fmt.Errorf("create temp blob: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write blob: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close blob: %w", err)
	}
	return os.Rename(tmp.Name(), p)
}

// Ping checks the directory is still there and writable
func (f *FileBlobStore) Ping(context.Context) error {
	probe, err := os.CreateTemp(f.dir, ".ping-*")
	if err != nil {
		return err
	}
	probe.Close()
	return os.Remove(probe.Name())
}
