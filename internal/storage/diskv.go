package storage

import (
	"context"
	"encoding/json"
	"errors"
	"os"

	"github.com/peterbourgon/diskv/v3"
)

// DiskvStorage implements Storage with one file per key under a directory.
type DiskvStorage struct {
	d        *diskv.Diskv
	basePath string
}

// NewDiskvStorage creates a DiskvStorage rooted at basePath.
func NewDiskvStorage(basePath string) *DiskvStorage {
	return &DiskvStorage{
		d: diskv.New(diskv.Options{
			BasePath:     basePath,
			Transform:    func(string) []string { return []string{} },
			CacheSizeMax: 1024 * 1024, // 1MB
		}),
		basePath: basePath,
	}
}

// Path returns the storage directory.
func (s *DiskvStorage) Path() string {
	return s.basePath
}

func (s *DiskvStorage) Get(ctx context.Context, key string, def json.RawMessage) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	val, err := s.d.Read(key)
	if errors.Is(err, os.ErrNotExist) {
		return def, nil
	}
	if err != nil {
		return nil, err
	}
	return json.RawMessage(val), nil
}

func (s *DiskvStorage) Set(ctx context.Context, key string, value json.RawMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.d.Write(key, value)
}

func (s *DiskvStorage) Close() error {
	return nil
}
