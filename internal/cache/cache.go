package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/evalgate/evalgate/internal/models"
)

// Cache provides caching for per-case evaluation results
type Cache struct {
	dir string
	mu  sync.Mutex
}

// New creates a new cache instance with the specified directory
func New(dir string) *Cache {
	return &Cache{dir: dir}
}

// CacheKey generates a unique cache key for a test case run
// The key is based on:
// - the rendered prompt template
// - the test case definition and its expectations
// - suite configuration that affects the verdict (mode, model, checks, min_score)
func CacheKey(suite *models.EvalSuite, promptTemplate string, tc *models.TestCase, expected *models.ExpectedResult) (string, error) {
	h := sha256.New()

	if err := writeString(h, suite.Name); err != nil {
		return "", err
	}
	if err := writeString(h, string(suite.EffectiveMode())); err != nil {
		return "", err
	}
	if err := writeString(h, suite.Config.Model); err != nil {
		return "", err
	}
	if err := writeString(h, suite.Config.JudgeModel); err != nil {
		return "", err
	}
	if err := writeFloat(h, suite.EffectiveMinScore()); err != nil {
		return "", err
	}

	checksJSON, err := json.Marshal(suite.Checks)
	if err != nil {
		return "", fmt.Errorf("marshaling checks: %w", err)
	}
	if _, err := h.Write(checksJSON); err != nil {
		return "", err
	}

	judgeJSON, err := json.Marshal(suite.Judge)
	if err != nil {
		return "", fmt.Errorf("marshaling judge config: %w", err)
	}
	if _, err := h.Write(judgeJSON); err != nil {
		return "", err
	}

	if err := writeString(h, promptTemplate); err != nil {
		return "", err
	}

	caseJSON, err := json.Marshal(tc)
	if err != nil {
		return "", fmt.Errorf("marshaling test case: %w", err)
	}
	if _, err := h.Write(caseJSON); err != nil {
		return "", err
	}

	if expected != nil {
		expectedJSON, err := json.Marshal(expected)
		if err != nil {
			return "", fmt.Errorf("marshaling expectations: %w", err)
		}
		if _, err := h.Write(expectedJSON); err != nil {
			return "", err
		}
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// Get retrieves a cached case verdict if it exists
func (c *Cache) Get(key string) (*models.CaseVerdict, bool) {
	if c.dir == "" {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	path := c.cachePath(key)
	data, err := os.ReadFile(path)
	if err != nil {
		// Cache miss
		return nil, false
	}

	var verdict models.CaseVerdict
	if err := json.Unmarshal(data, &verdict); err != nil {
		// Invalid cache entry, treat as miss
		return nil, false
	}

	return &verdict, true
}

// Put stores a case verdict in the cache
func (c *Cache) Put(key string, verdict *models.CaseVerdict) error {
	if c.dir == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Ensure cache directory exists
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	data, err := json.MarshalIndent(verdict, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling verdict: %w", err)
	}

	path := c.cachePath(key)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing cache file: %w", err)
	}

	return nil
}

// Clear removes all cached results
func (c *Cache) Clear() error {
	if c.dir == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Check if directory exists
	if _, err := os.Stat(c.dir); os.IsNotExist(err) {
		return nil
	}

	// Safety check: verify this looks like a cache directory before removing
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return fmt.Errorf("reading cache directory: %w", err)
	}

	// If directory is not empty, verify it contains only cache files
	if len(entries) > 0 {
		hasValidCache := false
		for _, entry := range entries {
			if entry.IsDir() {
				return fmt.Errorf("cache directory contains subdirectories - refusing to delete for safety")
			}
			if filepath.Ext(entry.Name()) == ".json" {
				hasValidCache = true
			} else {
				return fmt.Errorf("cache directory contains non-cache files - refusing to delete for safety")
			}
		}
		if !hasValidCache {
			return fmt.Errorf("no valid cache files found in directory - refusing to delete for safety")
		}
	}

	return os.RemoveAll(c.dir)
}

// cachePath returns the file path for a cache key
func (c *Cache) cachePath(key string) string {
	return filepath.Join(c.dir, key+".json")
}

// Cacheable reports whether a suite's results are safe to cache. Full mode
// runs the judge, whose scores are not deterministic, so only quick-mode
// verdicts are cached.
func Cacheable(suite *models.EvalSuite) bool {
	return suite.EffectiveMode() == models.ModeQuick
}

// Helper functions

func writeString(w io.Writer, s string) error {
	// Write string with null byte delimiter to prevent hash collisions
	_, err := w.Write([]byte(s + "\x00"))
	return err
}

func writeFloat(w io.Writer, f float64) error {
	// Write float with null byte delimiter to prevent hash collisions
	_, err := fmt.Fprintf(w, "%g\x00", f)
	return err
}
