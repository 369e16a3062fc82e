package fs

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/fwojciec/revise"
)

// Compile-time interface verification.
var _ revise.Explainer = (*ExplainCache)(nil)

// explainContext is how much base text around a conflict keys the cache.
const explainContext = 200

// ExplainCache wraps an Explainer with file-based caching.
type ExplainCache struct {
	inner    revise.Explainer
	cacheDir string
}

// NewExplainCache creates a new caching explainer.
func NewExplainCache(inner revise.Explainer, cacheDir string) *ExplainCache {
	return &ExplainCache{
		inner:    inner,
		cacheDir: cacheDir,
	}
}

// Explain returns a cached explanation or delegates to the inner explainer.
func (c *ExplainCache) Explain(ctx context.Context, conflict revise.Conflict, base string) (string, error) {
	hash := c.hashInput(conflict, base)

	// Check cache
	if cached, err := c.loadFromCache(hash); err == nil {
		return cached, nil
	}

	// Cache miss - delegate to inner
	result, err := c.inner.Explain(ctx, conflict, base)
	if err != nil {
		return "", err
	}

	// Store in cache (best-effort)
	_ = c.saveToCache(hash, result)

	return result, nil
}

type cacheKey struct {
	Original string          `json:"original"`
	Changes  []revise.Change `json:"changes"`
	Context  string          `json:"context"`
}

// hashInput keys on the alternatives and surrounding text, not on the
// conflict id or its resolution, which change between runs.
func (c *ExplainCache) hashInput(conflict revise.Conflict, base string) string {
	key := cacheKey{Original: conflict.Original, Changes: conflict.Changes}
	if conflict.Start >= 0 && conflict.End <= len(base) && conflict.Start <= conflict.End {
		key.Context = base[max(0, conflict.Start-explainContext):min(len(base), conflict.End+explainContext)]
	}
	data, _ := json.Marshal(key)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func (c *ExplainCache) cachePath(hash string) string {
	return filepath.Join(c.cacheDir, hash+".json")
}

type cacheEntry struct {
	Explanation string `json:"explanation"`
}

func (c *ExplainCache) loadFromCache(hash string) (string, error) {
	data, err := os.ReadFile(c.cachePath(hash))
	if err != nil {
		return "", err
	}

	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return "", err
	}

	return entry.Explanation, nil
}

func (c *ExplainCache) saveToCache(hash, explanation string) error {
	if err := os.MkdirAll(c.cacheDir, 0755); err != nil {
		return err
	}

	data, err := json.Marshal(cacheEntry{Explanation: explanation})
	if err != nil {
		return err
	}

	return os.WriteFile(c.cachePath(hash), data, 0644)
}
