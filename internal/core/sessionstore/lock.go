package sessionstore

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"

	storeconfig "github.com/weisyn/bargain/internal/config/store"
	"github.com/weisyn/bargain/pkg/interfaces/infrastructure/log"
)

// ErrEmptyLockKey 议价 id 为空
var ErrEmptyLockKey = errors.New("lock key cannot be empty")

// Locker 按议价 id 的独占访问
type Locker interface {
	// WithLock 持有 id 的锁期间执行 fn，fn 返回或 panic 后释放
	WithLock(ctx context.Context, id string, fn func(ctx context.Context) error) error
}

// LocalLocker 进程内按 id 的互斥锁，无人等待的锁会被回收
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	ch   chan struct{}
	refs int
}

var _ Locker = (*LocalLocker)(nil)

// NewLocalLocker 创建进程内锁
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[string]*refMutex)}
}

func (l *LocalLocker) acquire(id string) *refMutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[id]
	if !ok {
		m = &refMutex{ch: make(chan struct{}, 1)}
		l.locks[id] = m
	}
	m.refs++
	return m
}

func (l *LocalLocker) release(id string, m *refMutex) {
	l.mu.Lock()
	defer l.mu.Unlock()
	m.refs--
	if m.refs == 0 {
		delete(l.locks, id)
	}
}

// WithLock 等待锁时响应 ctx 取消
func (l *LocalLocker) WithLock(ctx context.Context, id string, fn func(ctx context.Context) error) error {
	if id == "" {
		return ErrEmptyLockKey
	}
	m := l.acquire(id)
	defer l.release(id, m)

	select {
	case m.ch <- struct{}{}:
	case <-ctx.Done():
		return fmt.Errorf("acquire lock %s: %w", id, ctx.Err())
	}
	defer func() { <-m.ch }()
	return fn(ctx)
}

// size 当前持有或等待中的 id 数
func (l *LocalLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

// RedisLocker 基于 redsync 的分布式锁，多个付款方进程共享同一存储时使用
type RedisLocker struct {
	rs     *redsync.Redsync
	client *redis.Client
	owned  bool // 客户端由锁独占，Close 时一并关闭
	prefix string
	opts   *storeconfig.StoreOptions
	logger log.Logger
}

var _ Locker = (*RedisLocker)(nil)

// NewRedisLocker 创建分布式锁
func NewRedisLocker(client *redis.Client, opts *storeconfig.StoreOptions, logger log.Logger) (*RedisLocker, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client cannot be nil")
	}
	return &RedisLocker{
		rs:     redsync.New(goredis.NewPool(client)),
		client: client,
		prefix: opts.LockPrefix,
		opts:   opts,
		logger: logger,
	}, nil
}

func (l *RedisLocker) WithLock(ctx context.Context, id string, fn func(ctx context.Context) error) error {
	if id == "" {
		return ErrEmptyLockKey
	}
	mutex := l.rs.NewMutex(
		l.key(id),
		redsync.WithExpiry(l.opts.LockExpiry),
		redsync.WithTries(l.opts.LockTries),
		redsync.WithRetryDelay(l.opts.LockRetryDelay),
	)
	if err := mutex.LockContext(ctx); err != nil {
		return fmt.Errorf("acquire lock %s: %w", id, err)
	}
	defer func() {
		if ok, err := mutex.UnlockContext(ctx); !ok || err != nil {
			if l.logger != nil {
				l.logger.Warnf("release lock %s: ok=%t err=%v", id, ok, err)
			}
		}
	}()
	return fn(ctx)
}

func (l *RedisLocker) key(id string) string { return l.prefix + id }

// Close 关闭独占的 redis 客户端
func (l *RedisLocker) Close() error {
	if l.owned {
		return l.client.Close()
	}
	return nil
}
