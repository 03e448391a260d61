package utxo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/allegro/bigcache/v3"
)

// CachedSource 以 bigcache 缓存查询结果
//
// 键由网络与排序后的地址组成；值为 JSON 编码的输出列表。
type CachedSource struct {
	next  Source
	cache *bigcache.BigCache
}

// NewCachedSource 创建带缓存的数据源，ttl 为条目有效期
func NewCachedSource(ctx context.Context, next Source, ttl time.Duration) (*CachedSource, error) {
	cfg := bigcache.DefaultConfig(ttl)
	cfg.Shards = 16
	cfg.MaxEntriesInWindow = 1024
	cfg.CleanWindow = ttl
	cfg.Verbose = false
	cache, err := bigcache.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create utxo cache: %w", err)
	}
	return &CachedSource{next: next, cache: cache}, nil
}

// UnspentOutputs 命中缓存时直接返回，否则查询下游并写入缓存
func (c *CachedSource) UnspentOutputs(ctx context.Context, network string, addresses []string) ([]UTXO, error) {
	key := cacheKey(network, addresses)
	if data, err := c.cache.Get(key); err == nil {
		var utxos []UTXO
		if err := json.Unmarshal(data, &utxos); err == nil {
			return utxos, nil
		}
	} else if !errors.Is(err, bigcache.ErrEntryNotFound) {
		return nil, fmt.Errorf("read utxo cache: %w", err)
	}

	utxos, err := c.next.UnspentOutputs(ctx, network, addresses)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(utxos); err == nil {
		_ = c.cache.Set(key, data)
	}
	return utxos, nil
}

// Invalidate 交易广播后调用，丢弃全部缓存
func (c *CachedSource) Invalidate() error {
	return c.cache.Reset()
}

// Close 释放缓存
func (c *CachedSource) Close() error {
	return c.cache.Close()
}

func cacheKey(network string, addresses []string) string {
	sorted := append([]string(nil), addresses...)
	sort.Strings(sorted)
	return network + "|" + strings.Join(sorted, ",")
}
