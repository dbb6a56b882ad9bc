package inference

import (
	"context"
	"fmt"
	"strconv"

	"github.com/cespare/xxhash"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/spacesedan/emotionflow/internal/labels"
)

// Cache stores predictions by cleaned text. The pipeline is deterministic,
// so a hit is indistinguishable from a fresh run. Implementations must be
// safe for concurrent use; lookup failures are treated as misses.
type Cache interface {
	Get(ctx context.Context, key string) (labels.Prediction, bool)
	Set(ctx context.Context, key string, pred labels.Prediction)
}

// CacheKey derives a compact key. namespace separates model versions
// sharing one backend.
func CacheKey(namespace, cleaned string) string {
	sum := strconv.FormatUint(xxhash.Sum64String(cleaned), 16)
	if namespace == "" {
		return sum
	}
	return namespace + ":" + sum
}

// MemoryCache is an in-process LRU.
type MemoryCache struct {
	cache *lru.Cache[string, labels.Prediction]
}

func NewMemoryCache(size int) (*MemoryCache, error) {
	if size <= 0 {
		return nil, fmt.Errorf("cache size must be greater than zero")
	}
	cache, err := lru.New[string, labels.Prediction](size)
	if err != nil {
		return nil, fmt.Errorf("init cache: %w", err)
	}
	return &MemoryCache{cache: cache}, nil
}

func (m *MemoryCache) Get(_ context.Context, key string) (labels.Prediction, bool) {
	return m.cache.Get(key)
}

func (m *MemoryCache) Set(_ context.Context, key string, pred labels.Prediction) {
	m.cache.Add(key, pred)
}

func (m *MemoryCache) Len() int {
	return m.cache.Len()
}
