// Package cache persists generated DEM text on disk, keyed by the circuit
// configuration that produced it. Regenerating a DEM through the external
// stim engine is the expensive step of a comparison; a cache hit skips it.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/qecbench/demdiff/internal/circuit"
)

// Cache stores DEM text files under a directory.
type Cache struct {
	dir string
	mu  sync.Mutex
}

// New creates a cache rooted at dir. The directory is created lazily on the
// first Put.
func New(dir string) *Cache {
	return &Cache{dir: dir}
}

// Key derives a stable cache key from everything that determines the DEM
// text: family, distance, rounds, noise and the decompose flag.
func Key(opts circuit.Options) string {
	h := sha256.New()
	fmt.Fprintln(h, opts.Family)
	fmt.Fprintln(h, opts.Distance)
	fmt.Fprintln(h, opts.Rounds)
	fmt.Fprintln(h, strconv.FormatFloat(opts.Noise, 'g', -1, 64))
	fmt.Fprintln(h, opts.DecomposeErrors)
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// Get returns the cached DEM text for key, with ok reporting whether the
// entry exists. A missing entry is not an error.
func (c *Cache) Get(key string) (text string, ok bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.path(key))
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading cache entry %s: %w", key, err)
	}
	return string(data), true, nil
}

// Put stores text under key, overwriting any previous entry.
func (c *Cache) Put(key, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}
	if err := os.WriteFile(c.path(key), []byte(text), 0o644); err != nil {
		return fmt.Errorf("writing cache entry %s: %w", key, err)
	}
	return nil
}

// Clear removes the whole cache directory.
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return os.RemoveAll(c.dir)
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.dir, key+".dem")
}
