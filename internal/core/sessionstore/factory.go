package sessionstore

import (
	"fmt"
	"strings"
	"time"

	storeconfig "github.com/weisyn/bargain/internal/config/store"
	"github.com/weisyn/bargain/pkg/interfaces/infrastructure/clock"
	"github.com/weisyn/bargain/pkg/interfaces/infrastructure/log"
)

// 存储后端
const (
	BackendMemory = "memory"
	BackendBadger = "badger"
	BackendRedis  = "redis"

	LockLocal = "local"
	LockRedis = "redis"
)

// Open 按配置创建存储与锁
func Open(opts *storeconfig.StoreOptions, clk clock.Clock, logger log.Logger) (Store, Locker, error) {
	var store Store
	switch opts.Backend {
	case BackendMemory:
		store = NewMemoryStore()
	case BackendBadger, "":
		s, err := NewBadgerStore(opts.BadgerPath, opts.KeyPrefix, logger)
		if err != nil {
			return nil, nil, err
		}
		store = s
	case BackendRedis:
		if opts.Lock == LockRedis && strings.HasPrefix(opts.LockPrefix, opts.KeyPrefix) {
			return nil, nil, fmt.Errorf("lock prefix %q lies inside key prefix %q", opts.LockPrefix, opts.KeyPrefix)
		}
		client, err := NewRedisClient(opts)
		if err != nil {
			return nil, nil, err
		}
		s, err := NewRedisStore(client, opts.KeyPrefix, time.Duration(opts.GCGrace)*time.Second, clk)
		if err != nil {
			client.Close()
			return nil, nil, err
		}
		store = s
		if opts.Lock == LockRedis {
			locker, err := NewRedisLocker(client, opts, logger)
			if err != nil {
				s.Close()
				return nil, nil, err
			}
			return store, locker, nil
		}
	default:
		return nil, nil, fmt.Errorf("unknown session store backend %q", opts.Backend)
	}

	switch opts.Lock {
	case LockLocal, "":
		return store, NewLocalLocker(), nil
	case LockRedis:
		// 非 redis 后端仍可使用分布式锁
		client, err := NewRedisClient(opts)
		if err != nil {
			store.Close()
			return nil, nil, err
		}
		locker, err := NewRedisLocker(client, opts, logger)
		if err != nil {
			client.Close()
			store.Close()
			return nil, nil, err
		}
		locker.owned = true
		return store, locker, nil
	default:
		store.Close()
		return nil, nil, fmt.Errorf("unknown lock kind %q", opts.Lock)
	}
}
