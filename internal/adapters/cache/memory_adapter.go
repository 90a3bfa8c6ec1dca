package cache

import (
	"context"
	"fmt"
	"math"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/raunelaunch/fooddiscovery/internal/domain/providers"
)

// DefaultMemoryEntries bounds the in-memory store.
const DefaultMemoryEntries = 10000

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// MemoryAdapter implements KeyValueStore on a bounded LRU with per-key expiry.
// It backs the profile store and the response cache when Redis is disabled.
type MemoryAdapter struct {
	entries *lru.Cache[string, memoryEntry]
	now     func() time.Time
}

// NewMemoryAdapter creates an in-memory store holding at most size entries
func NewMemoryAdapter(size int) (*MemoryAdapter, error) {
	if size <= 0 {
		size = DefaultMemoryEntries
	}
	entries, err := lru.New[string, memoryEntry](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create memory store: %w", err)
	}
	return &MemoryAdapter{entries: entries, now: time.Now}, nil
}

// NewDurableMemoryAdapter creates an in-memory store that never evicts; keys
// leave only by expiry or Delete. It holds records that must outlive cache
// churn, such as accounts and sessions.
func NewDurableMemoryAdapter() *MemoryAdapter {
	entries, _ := lru.New[string, memoryEntry](math.MaxInt32)
	return &MemoryAdapter{entries: entries, now: time.Now}
}

// Get retrieves a value
func (a *MemoryAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	entry, ok := a.entries.Get(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", providers.ErrKeyNotFound, key)
	}
	if entry.expired(a.now()) {
		a.entries.Remove(key)
		return nil, fmt.Errorf("%w: %s", providers.ErrKeyNotFound, key)
	}
	out := make([]byte, len(entry.value))
	copy(out, entry.value)
	return out, nil
}

// Set stores a copy of value; expirationSeconds <= 0 keeps it until evicted
func (a *MemoryAdapter) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	entry := memoryEntry{value: make([]byte, len(value))}
	copy(entry.value, value)
	if expirationSeconds > 0 {
		entry.expiresAt = a.now().Add(time.Duration(expirationSeconds) * time.Second)
	}
	a.entries.Add(key, entry)
	return nil
}

// Delete removes a value
func (a *MemoryAdapter) Delete(ctx context.Context, key string) error {
	a.entries.Remove(key)
	return nil
}

// Exists checks if a live key exists and marks it recently used
func (a *MemoryAdapter) Exists(ctx context.Context, key string) (bool, error) {
	entry, ok := a.entries.Get(key)
	if !ok {
		return false, nil
	}
	if entry.expired(a.now()) {
		a.entries.Remove(key)
		return false, nil
	}
	return true, nil
}
