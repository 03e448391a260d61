package clock

import (
	"sync"
	"time"

	"github.com/beevik/ntp"
	infraClock "github.com/weisyn/bargain/pkg/interfaces/infrastructure/clock"
)

// queryFunc 返回本地时钟相对 NTP 服务器的偏移
type queryFunc func(server string) (time.Duration, error)

func ntpOffset(server string) (time.Duration, error) {
	resp, err := ntp.Query(server)
	if err != nil {
		return 0, err
	}
	return resp.ClockOffset, nil
}

// NTPClock 通过NTP周期性校正偏移的时钟实现
type NTPClock struct {
	mu                 sync.Mutex
	server             string
	query              queryFunc
	offset             time.Duration
	lastSync           time.Time
	syncInterval       time.Duration
	backoff            time.Duration
	backoffInitial     time.Duration
	backoffMax         time.Duration
	unhealthyThreshold time.Duration
	lastError          error
}

// NewNTPClock 创建NTP时钟
// server 例如 "time.google.com"，首次同步失败时偏移置零，后续按退避重试
func NewNTPClock(server string, syncInterval, backoffInitial, backoffMax, threshold time.Duration) infraClock.Clock {
	return newNTPClock(server, syncInterval, backoffInitial, backoffMax, threshold, ntpOffset)
}

func newNTPClock(server string, syncInterval, backoffInitial, backoffMax, threshold time.Duration, q queryFunc) *NTPClock {
	c := &NTPClock{
		server:             server,
		query:              q,
		syncInterval:       syncInterval,
		backoffInitial:     backoffInitial,
		backoffMax:         backoffMax,
		unhealthyThreshold: threshold,
	}
	c.mu.Lock()
	if err := c.sync(); err != nil {
		c.offset = 0
		c.lastError = err
		c.backoff = c.backoffInitial
	}
	c.mu.Unlock()
	return c
}

func (c *NTPClock) Now() time.Time {
	c.mu.Lock()
	c.maybeSync()
	offset := c.offset
	c.mu.Unlock()
	return time.Now().Add(offset)
}

func (c *NTPClock) Since(t time.Time) time.Duration { return c.Now().Sub(t) }
func (c *NTPClock) Unix() int64                     { return c.Now().Unix() }
func (c *NTPClock) UnixNano() int64                 { return c.Now().UnixNano() }

// Health 返回当前健康状态与关键指标
func (c *NTPClock) Health() (healthy bool, offset time.Duration, lastError error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	offset, lastError = c.offset, c.lastError
	if c.unhealthyThreshold > 0 && (offset < -c.unhealthyThreshold || offset > c.unhealthyThreshold) {
		return false, offset, lastError
	}
	return lastError == nil, offset, lastError
}

// maybeSync 调用方需持有 c.mu
func (c *NTPClock) maybeSync() {
	effective := c.syncInterval
	if c.backoff > 0 {
		if c.backoff > c.backoffMax {
			c.backoff = c.backoffMax
		}
		effective = c.backoff
	}
	if time.Since(c.lastSync) < effective {
		return
	}
	if err := c.sync(); err != nil {
		c.lastError = err
		if c.backoff == 0 {
			c.backoff = c.backoffInitial
		} else {
			c.backoff *= 2
		}
		return
	}
	c.backoff = 0
}

func (c *NTPClock) sync() error {
	// 失败同样记录时间点，退避从此刻开始计算
	c.lastSync = time.Now()
	offset, err := c.query(c.server)
	if err != nil {
		return err
	}
	c.offset = offset
	c.lastError = nil
	return nil
}
