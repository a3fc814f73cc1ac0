package embedding

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// ErrEmptyCache is returned when the cache file exists but holds no vector.
var ErrEmptyCache = errors.New("embedding cache file is empty")

// Cache owns the persisted profile embedding. The file's presence is the
// only cache-hit signal; there is no content hash of the source document,
// so recomputation after a profile edit requires an explicit force.
type Cache struct {
	path     string
	embedder Embedder
	logger   *zap.Logger
}

// NewCache creates a cache persisting to path and filling misses through
// the given embedder.
func NewCache(path string, embedder Embedder, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{path: path, embedder: embedder, logger: logger}
}

// Exists reports whether a persisted embedding is present.
func (c *Cache) Exists() bool {
	info, err := os.Stat(c.path)
	return err == nil && !info.IsDir()
}

// GetOrCreate returns the persisted embedding when present and force is
// unset; otherwise it embeds profileText, persists the result and returns
// it. A provider or I/O failure is fatal to the call since nothing can be
// scored without the vector.
func (c *Cache) GetOrCreate(ctx context.Context, profileText string, force bool) ([]float32, error) {
	if c.Exists() && !force {
		vec, err := c.load()
		if err != nil {
			return nil, fmt.Errorf("loading cached embedding: %w", err)
		}
		c.logger.Debug("loaded cached profile embedding",
			zap.String("path", c.path),
			zap.Int("dimensions", len(vec)),
		)
		return vec, nil
	}

	c.logger.Info("creating profile embedding", zap.String("model", c.embedder.Model()))

	vec, err := c.embedder.Embed(ctx, profileText)
	if err != nil {
		return nil, fmt.Errorf("embedding profile: %w", err)
	}
	if len(vec) == 0 {
		return nil, errors.New("embedding provider returned an empty vector")
	}

	if err := c.store(vec); err != nil {
		return nil, fmt.Errorf("persisting profile embedding: %w", err)
	}

	c.logger.Info("profile embedding saved",
		zap.String("path", c.path),
		zap.Int("dimensions", len(vec)),
	)

	return vec, nil
}

// The on-disk format is the raw vector as little-endian float32 words.
func (c *Cache) load() ([]float32, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrEmptyCache
	}
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("cache file %q is corrupt: %d bytes is not a float32 vector", c.path, len(data))
	}

	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec, nil
}

func (c *Cache) store(vec []float32) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return err
	}

	buf := make([]byte, len(vec)*4)
	for i, f := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}

	return os.WriteFile(c.path, buf, 0o644)
}
