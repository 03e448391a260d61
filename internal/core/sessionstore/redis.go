package sessionstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/weisyn/bargain/internal/core/message"
	"github.com/weisyn/bargain/internal/core/negotiation"
	"github.com/weisyn/bargain/pkg/interfaces/infrastructure/clock"
)

// RedisStore Redis 存储
//
// 键为 {prefix}{id}，值为 JSON 快照。已有付款方过期时间的议价设置 TTL =
// 过期时间 + grace - now，由 Redis 兜底清理；Sweeper 仍负责发布清理事件。
type RedisStore struct {
	client    redisClient
	keyPrefix string
	grace     time.Duration
	clock     clock.Clock
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore 包装已连接的 go-redis 客户端
func NewRedisStore(client *redis.Client, keyPrefix string, grace time.Duration, clk clock.Clock) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client cannot be nil")
	}
	return newRedisStore(&goRedisClient{client: client}, keyPrefix, grace, clk)
}

func newRedisStore(client redisClient, keyPrefix string, grace time.Duration, clk clock.Clock) (*RedisStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &RedisStore{client: client, keyPrefix: keyPrefix, grace: grace, clock: clk}, nil
}

func (s *RedisStore) key(id string) string { return s.keyPrefix + id }

// ttl 0 表示不过期
func (s *RedisStore) ttl(n *negotiation.Negotiation) time.Duration {
	expiry, ok := n.ExpiryForRole(message.RolePayer)
	if !ok {
		return 0
	}
	left := time.Unix(expiry, 0).Add(s.grace).Sub(s.clock.Now())
	if left < time.Second {
		return time.Second
	}
	return left
}

func (s *RedisStore) Create(ctx context.Context, id string, n *negotiation.Negotiation) error {
	data, err := encode(n)
	if err != nil {
		return err
	}
	ok, err := s.client.SetNX(ctx, s.key(id), data, s.ttl(n))
	if err != nil {
		return fmt.Errorf("create negotiation %s: %w", id, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, id)
	}
	return nil
}

func (s *RedisStore) Update(ctx context.Context, id string, n *negotiation.Negotiation) error {
	data, err := encode(n)
	if err != nil {
		return err
	}
	ok, err := s.client.SetXX(ctx, s.key(id), data, s.ttl(n))
	if err != nil {
		return fmt.Errorf("update negotiation %s: %w", id, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*negotiation.Negotiation, error) {
	data, err := s.client.Get(ctx, s.key(id))
	if errors.Is(err, errKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get negotiation %s: %w", id, err)
	}
	return decode(data)
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if _, err := s.client.Del(ctx, s.key(id)); err != nil {
		return fmt.Errorf("delete negotiation %s: %w", id, err)
	}
	return nil
}

// List 读取期间过期的键被跳过
func (s *RedisStore) List(ctx context.Context) ([]*negotiation.Negotiation, error) {
	keys, err := s.client.ScanKeys(ctx, s.keyPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scan negotiations: %w", err)
	}
	out := make([]*negotiation.Negotiation, 0, len(keys))
	for _, k := range keys {
		data, err := s.client.Get(ctx, k)
		if errors.Is(err, errKeyNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("get %s: %w", k, err)
		}
		n, err := decode(data)
		if err != nil {
			return nil, fmt.Errorf("key %s: %w", strings.TrimPrefix(k, s.keyPrefix), err)
		}
		out = append(out, n)
	}
	sortByCreation(out)
	return out, nil
}

func (s *RedisStore) Close() error { return s.client.Close() }
