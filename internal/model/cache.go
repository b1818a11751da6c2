package model

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"time"
)

// GenCache stores raw generations on disk keyed by a digest of model id and
// prompt. It exists for deterministic re-runs during development; the
// pipeline works identically without it.
type GenCache struct {
	Dir string
}

// KeyFrom builds a cache key from model id and prompt text.
func KeyFrom(modelID string, promptText string) string {
	h := sha256.Sum256([]byte(modelID + "\n\n" + promptText))
	return hex.EncodeToString(h[:])
}

func (c *GenCache) ensureDir() error {
	if c == nil || c.Dir == "" {
		return errors.New("cache dir not configured")
	}
	return os.MkdirAll(c.Dir, 0o755)
}

func (c *GenCache) pathFor(key string) string {
	return filepath.Join(c.Dir, key+".txt")
}

// Get returns cached bytes if present.
func (c *GenCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	if err := c.ensureDir(); err != nil {
		return nil, false, err
	}
	p := c.pathFor(key)
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, false, nil
	}
	// Touch file mtime on access for LRU purposes
	now := time.Now()
	_ = os.Chtimes(p, now, now)
	return b, true, nil
}

// Save writes bytes to cache.
func (c *GenCache) Save(_ context.Context, key string, data []byte) error {
	if err := c.ensureDir(); err != nil {
		return err
	}
	return os.WriteFile(c.pathFor(key), data, 0o644)
}
