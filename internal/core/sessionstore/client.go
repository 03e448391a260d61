package sessionstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	storeconfig "github.com/weisyn/bargain/internal/config/store"
)

// errKeyNotFound redis 中不存在该键
var errKeyNotFound = errors.New("key not found")

// redisClient RedisStore 使用的最小 Redis 操作集，测试中以 mock 替换
type redisClient interface {
	// SetNX 键不存在时写入
	SetNX(ctx context.Context, key string, value []byte, expiration time.Duration) (bool, error)
	// SetXX 键存在时覆盖
	SetXX(ctx context.Context, key string, value []byte, expiration time.Duration) (bool, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Del(ctx context.Context, keys ...string) (int64, error)
	// ScanKeys 遍历匹配模式的全部键
	ScanKeys(ctx context.Context, pattern string) ([]string, error)
	Ping(ctx context.Context) error
	Close() error
}

// goRedisClient 基于 go-redis 的实现
type goRedisClient struct {
	client *redis.Client
}

var _ redisClient = (*goRedisClient)(nil)

// NewRedisClient 按配置创建 go-redis 客户端并检查连通性
func NewRedisClient(opts *storeconfig.StoreOptions) (*redis.Client, error) {
	if opts == nil || opts.RedisAddr == "" {
		return nil, fmt.Errorf("redis address cannot be empty")
	}
	client := redis.NewClient(&redis.Options{
		Addr:         opts.RedisAddr,
		Password:     opts.RedisPassword,
		DB:           opts.RedisDB,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", opts.RedisAddr, err)
	}
	return client, nil
}

func (c *goRedisClient) SetNX(ctx context.Context, key string, value []byte, expiration time.Duration) (bool, error) {
	return c.client.SetNX(ctx, key, value, expiration).Result()
}

func (c *goRedisClient) SetXX(ctx context.Context, key string, value []byte, expiration time.Duration) (bool, error) {
	return c.client.SetXX(ctx, key, value, expiration).Result()
}

func (c *goRedisClient) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", errKeyNotFound, key)
	}
	return data, err
}

func (c *goRedisClient) Del(ctx context.Context, keys ...string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	return c.client.Del(ctx, keys...).Result()
}

func (c *goRedisClient) ScanKeys(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	return keys, iter.Err()
}

func (c *goRedisClient) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *goRedisClient) Close() error {
	return c.client.Close()
}
