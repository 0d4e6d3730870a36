package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/golang/groupcache/lru"
)

type memoryItem struct {
	data     []byte
	expireAt time.Time
}

func (m *memoryItem) expired(now time.Time) bool {
	return now.After(m.expireAt)
}

// MemoryCache implements Service in process with LRU eviction and per-entry TTL.
// Values are stored JSON encoded so Get behaves like the Redis backend.
type MemoryCache struct {
	mu         sync.Mutex
	lru        *lru.Cache
	defaultTTL time.Duration
	stop       chan struct{}
	done       chan struct{}
	closeOnce  sync.Once
	now        func() time.Time
}

// NewMemoryCache creates an in-memory cache and starts its sweeper.
func NewMemoryCache(opts ...MemoryOption) *MemoryCache {
	cfg := &MemoryConfig{
		MaxSize:         1000,
		DefaultTTL:      24 * time.Hour,
		CleanupInterval: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = 1000
	}

	mc := &MemoryCache{
		lru:        lru.New(cfg.MaxSize),
		defaultTTL: cfg.DefaultTTL,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		now:        time.Now,
	}
	go mc.cleanupExpired(cfg.CleanupInterval)
	return mc
}

func (mc *MemoryCache) Set(_ context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: encode %s: %w", key, err)
	}
	mc.setRaw(key, data, expiration)
	return nil
}

func (mc *MemoryCache) setRaw(key string, data []byte, expiration time.Duration) {
	if expiration <= 0 {
		expiration = mc.defaultTTL
	}
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.lru.Add(key, &memoryItem{data: data, expireAt: mc.now().Add(expiration)})
}

func (mc *MemoryCache) Get(_ context.Context, key string, dest interface{}) error {
	data, ok := mc.getRaw(key)
	if !ok {
		return ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (mc *MemoryCache) getRaw(key string) ([]byte, bool) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	v, ok := mc.lru.Get(key)
	if !ok {
		return nil, false
	}
	item := v.(*memoryItem)
	if item.expired(mc.now()) {
		mc.lru.Remove(key)
		return nil, false
	}
	return item.data, true
}

func (mc *MemoryCache) Delete(_ context.Context, keys ...string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	for _, key := range keys {
		mc.lru.Remove(key)
	}
	return nil
}

// Len reports live and not yet swept entries.
func (mc *MemoryCache) Len() int {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mc.lru.Len()
}

// sweep drops expired entries. The LRU has no iterator, so it pops from the
// oldest end and re-adds live entries in their original order.
func (mc *MemoryCache) sweep() {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	now := mc.now()
	type kept struct {
		key  lru.Key
		item *memoryItem
	}
	var live []kept
	prev := mc.lru.OnEvicted
	mc.lru.OnEvicted = func(key lru.Key, value interface{}) {
		item := value.(*memoryItem)
		if !item.expired(now) {
			live = append(live, kept{key: key, item: item})
		}
	}
	for mc.lru.Len() > 0 {
		mc.lru.RemoveOldest()
	}
	mc.lru.OnEvicted = prev
	for _, k := range live {
		mc.lru.Add(k.key, k.item)
	}
}

func (mc *MemoryCache) cleanupExpired(interval time.Duration) {
	defer close(mc.done)
	if interval <= 0 {
		<-mc.stop
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			mc.sweep()
		case <-mc.stop:
			return
		}
	}
}

// Close stops the sweeper. It is safe to call more than once.
func (mc *MemoryCache) Close() error {
	mc.closeOnce.Do(func() {
		close(mc.stop)
		<-mc.done
	})
	return nil
}
