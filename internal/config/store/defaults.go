package store

import "time"

const (
	defaultBackend    = "badger"
	defaultBadgerPath = "./data/negotiations"
	defaultRedisAddr  = "localhost:6379"
	defaultKeyPrefix  = "bargain:nego:"
	defaultLock       = "local"

	// defaultGCGrace 付款方过期时间之后再保留一小时
	defaultGCGrace    int64 = 3600
	defaultGCInterval       = 10 * time.Minute

	// 分布式锁参数；锁键放在议价键空间之外，SCAN 议价时不会读到锁
	defaultLockPrefix     = "bargain:lock:"
	defaultLockExpiry     = 60 * time.Second
	defaultLockTries      = 32
	defaultLockRetryDelay = 250 * time.Millisecond
)
