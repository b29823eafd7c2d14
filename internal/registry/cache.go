package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/coffeeauras/coffeeupdate/internal/addon"
	"github.com/coffeeauras/coffeeupdate/internal/config"
	"github.com/coffeeauras/coffeeupdate/internal/log"
)

// ManifestCache wraps a ManifestSource with a single-entry, TTL-based
// read-through cache. With WithCacheFile the entry is also kept on disk, so
// the TTL spans separate runs of the CLI.
//
// Behavior of Get:
//   - force, nothing cached yet, or entry older than the TTL: fetch
//   - fetch succeeded: replace the entry and return it
//   - fetch failed: keep the old entry untouched and return the error
//   - otherwise: return the cached manifest without a network call
//
// A missing or unreadable cache file is a miss. Concurrent refreshes are not
// deduplicated. The mutex only keeps the manifest and its timestamp
// consistent with each other.
type ManifestCache struct {
	source ManifestSource
	ttl    time.Duration
	now    func() time.Time
	logger log.Logger
	path   string

	mu        sync.Mutex
	loaded    bool
	manifest  *addon.Manifest
	fetchedAt time.Time
}

// cacheEntry is the on-disk form of the cached manifest.
type cacheEntry struct {
	FetchedAt time.Time       `json:"fetched_at"`
	Manifest  *addon.Manifest `json:"manifest"`
}

// CacheOption configures a ManifestCache.
type CacheOption func(*ManifestCache)

// WithTTL overrides config.GetManifestTTL.
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *ManifestCache) {
		c.ttl = ttl
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) CacheOption {
	return func(c *ManifestCache) {
		c.now = now
	}
}

// WithCacheLogger sets the cache logger.
func WithCacheLogger(l log.Logger) CacheOption {
	return func(c *ManifestCache) {
		c.logger = l
	}
}

// WithCacheFile keeps the cached manifest in path between runs.
func WithCacheFile(path string) CacheOption {
	return func(c *ManifestCache) {
		c.path = path
	}
}

// NewManifestCache creates a cache in front of source. Nothing is read from
// disk until the first Get or Cached call.
func NewManifestCache(source ManifestSource, opts ...CacheOption) *ManifestCache {
	c := &ManifestCache{
		source: source,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.ttl <= 0 {
		c.ttl = config.GetManifestTTL()
	}
	c.logger = log.OrDefault(c.logger)
	return c
}

// Get returns the current manifest, refreshing it when forced or expired.
func (c *ManifestCache) Get(ctx context.Context, force bool) (*addon.Manifest, error) {
	c.mu.Lock()
	c.loadLocked()
	cached, fetchedAt := c.manifest, c.fetchedAt
	c.mu.Unlock()

	now := c.now()
	age := now.Sub(fetchedAt)
	switch {
	case force:
		c.logger.Info("forcing manifest refresh")
	case cached == nil:
		c.logger.Info("no manifest cached, fetching")
	case age < 0 || age >= c.ttl:
		c.logger.Info("cached manifest expired, fetching", "age", formatDuration(age))
	default:
		c.logger.Debug("using cached manifest", "age", formatDuration(age))
		return cached, nil
	}

	manifest, err := c.source.FetchManifest(ctx)
	if err != nil {
		c.logger.Error("manifest refresh failed", "error", err)
		return nil, err
	}
	if manifest == nil {
		return nil, &RegistryError{Type: ErrTypeParsing, Message: "manifest source returned no manifest"}
	}

	c.mu.Lock()
	c.manifest = manifest
	c.fetchedAt = c.now()
	entry := cacheEntry{FetchedAt: c.fetchedAt, Manifest: manifest}
	c.mu.Unlock()

	if c.path != "" {
		if err := writeCacheEntry(c.path, entry); err != nil {
			c.logger.Warn("failed to write manifest cache", "path", c.path, "error", err)
		}
	}
	return manifest, nil
}

// Cached returns the cached manifest and when it was fetched without
// touching the network. The manifest is nil if nothing was ever fetched.
func (c *ManifestCache) Cached() (*addon.Manifest, time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loadLocked()
	return c.manifest, c.fetchedAt
}

// Path returns the cache file, or "" when the cache lives in memory only.
func (c *ManifestCache) Path() string {
	return c.path
}

// Invalidate drops the cached manifest, including the cache file, so the
// next Get fetches.
func (c *ManifestCache) Invalidate() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaded = true
	c.manifest = nil
	c.fetchedAt = time.Time{}

	if c.path == "" {
		return nil
	}
	if err := os.Remove(c.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove manifest cache: %w", err)
	}
	return nil
}

// loadLocked reads the cache file once. c.mu must be held.
func (c *ManifestCache) loadLocked() {
	if c.loaded || c.path == "" {
		return
	}
	c.loaded = true

	entry, err := readCacheEntry(c.path)
	if err != nil {
		c.logger.Warn("ignoring unreadable manifest cache", "path", c.path, "error", err)
		return
	}
	if entry == nil {
		c.logger.Debug("no manifest cache on disk", "path", c.path)
		return
	}
	c.manifest = entry.Manifest
	c.fetchedAt = entry.FetchedAt
}

// readCacheEntry returns nil, nil if the file does not exist.
func readCacheEntry(path string) (*cacheEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to parse manifest cache: %w", err)
	}
	if entry.Manifest == nil || entry.FetchedAt.IsZero() {
		return nil, errors.New("manifest cache is incomplete")
	}
	return &entry, nil
}

// writeCacheEntry replaces path atomically.
func writeCacheEntry(path string, entry cacheEntry) error {
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest cache: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".manifest-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write manifest cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close manifest cache: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace manifest cache: %w", err)
	}
	return nil
}

// formatDuration formats a manifest age for log output.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%d seconds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%d minutes", int(d.Minutes()))
	}
	hours := int(d.Hours())
	if hours == 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", hours)
}
