package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// Cache is the subset of cache.Cache the catalog needs.
type Cache interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	GenerateKey(operation, key string) string
}

// CachedProvider is a read-through cache in front of another Provider.
// Cache failures are logged and never fail a read.
type CachedProvider struct {
	next   Provider
	cache  Cache
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedProvider(next Provider, c Cache, ttl time.Duration, logger *zap.Logger) *CachedProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedProvider{next: next, cache: c, ttl: ttl, logger: logger}
}

func (p *CachedProvider) List(ctx context.Context, cat Category) ([]Item, error) {
	key := p.cache.GenerateKey("catalog", string(cat))

	var items []Item
	if p.lookup(ctx, key, &items) {
		for i := range items {
			items[i].Category = cat
		}
		return items, nil
	}

	items, err := p.next.List(ctx, cat)
	if err != nil {
		return nil, err
	}
	p.store(ctx, key, items)
	return items, nil
}

func (p *CachedProvider) Get(ctx context.Context, cat Category, id int) (Item, error) {
	key := p.cache.GenerateKey("item", string(cat)+":"+strconv.Itoa(id))

	var it Item
	if p.lookup(ctx, key, &it) {
		it.Category = cat
		return it, nil
	}

	it, err := p.next.Get(ctx, cat, id)
	if err != nil {
		return Item{}, err
	}
	p.store(ctx, key, it)
	return it, nil
}

func (p *CachedProvider) lookup(ctx context.Context, key string, dst any) bool {
	raw, err := p.cache.Get(ctx, key)
	if err != nil {
		p.logger.Warn("catalog cache get failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if raw == "" {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		p.logger.Warn("catalog cache entry corrupt", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (p *CachedProvider) store(ctx context.Context, key string, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		p.logger.Warn("catalog cache encode failed", zap.String("key", key), zap.Error(fmt.Errorf("marshal: %w", err)))
		return
	}
	if err := p.cache.Set(ctx, key, body, p.ttl); err != nil {
		p.logger.Warn("catalog cache set failed", zap.String("key", key), zap.Error(err))
	}
}
