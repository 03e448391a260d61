// Package store 提供议价会话存储的配置
package store

import (
	"path/filepath"
	"time"

	"github.com/weisyn/bargain/pkg/types"
	"github.com/weisyn/bargain/pkg/utils"
)

// StoreOptions 会话存储配置选项
type StoreOptions struct {
	Backend       string `json:"backend"` // memory | badger | redis
	BadgerPath    string `json:"badger_path"`
	RedisAddr     string `json:"redis_addr"`
	RedisPassword string `json:"-"`
	RedisDB       int    `json:"redis_db"`
	KeyPrefix     string `json:"key_prefix"`

	Lock           string        `json:"lock"`        // local | redis
	LockPrefix     string        `json:"lock_prefix"` // 与 KeyPrefix 不得重叠
	LockExpiry     time.Duration `json:"lock_expiry"`
	LockTries      int           `json:"lock_tries"`
	LockRetryDelay time.Duration `json:"lock_retry_delay"`

	GCGrace    int64         `json:"gc_grace"` // 秒
	GCInterval time.Duration `json:"gc_interval"`
}

// Config 会话存储配置实现
type Config struct {
	options *StoreOptions
}

// New 创建会话存储配置。dataDir 非空时 Badger 目录默认位于其下
func New(userConfig *types.UserStoreConfig, dataDir string) *Config {
	opts := &StoreOptions{
		Backend:        defaultBackend,
		BadgerPath:     defaultBadgerPath,
		RedisAddr:      defaultRedisAddr,
		KeyPrefix:      defaultKeyPrefix,
		Lock:           defaultLock,
		LockPrefix:     defaultLockPrefix,
		LockExpiry:     defaultLockExpiry,
		LockTries:      defaultLockTries,
		LockRetryDelay: defaultLockRetryDelay,
		GCGrace:        defaultGCGrace,
		GCInterval:     defaultGCInterval,
	}
	if dataDir != "" {
		opts.BadgerPath = filepath.Join(dataDir, "negotiations")
	}
	if u := userConfig; u != nil {
		if u.Backend != nil {
			opts.Backend = *u.Backend
		}
		if u.BadgerPath != nil {
			opts.BadgerPath = utils.ExpandPath(*u.BadgerPath)
		}
		if u.RedisAddr != nil {
			opts.RedisAddr = *u.RedisAddr
		}
		if u.RedisPassword != nil {
			opts.RedisPassword = *u.RedisPassword
		}
		if u.RedisDB != nil {
			opts.RedisDB = *u.RedisDB
		}
		if u.KeyPrefix != nil {
			opts.KeyPrefix = *u.KeyPrefix
		}
		if u.Lock != nil {
			opts.Lock = *u.Lock
		}
		if u.LockPrefix != nil {
			opts.LockPrefix = *u.LockPrefix
		}
		if u.GCGraceSec != nil && *u.GCGraceSec >= 0 {
			opts.GCGrace = *u.GCGraceSec
		}
		if u.GCIntervalSec != nil && *u.GCIntervalSec >= 0 {
			opts.GCInterval = time.Duration(*u.GCIntervalSec) * time.Second
		}
	}
	return &Config{options: opts}
}

func (c *Config) GetOptions() *StoreOptions { return c.options }
