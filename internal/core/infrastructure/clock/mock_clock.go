package clock

import (
	"sync"
	"time"

	infraClock "github.com/weisyn/bargain/pkg/interfaces/infrastructure/clock"
)

// MockClock 测试用时钟，时间可控
type MockClock struct {
	mu          sync.RWMutex
	currentTime time.Time
}

func NewMockClock(initial time.Time) *MockClock { return &MockClock{currentTime: initial} }

func (c *MockClock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.currentTime
}

func (c *MockClock) Since(t time.Time) time.Duration { return c.Now().Sub(t) }
func (c *MockClock) Unix() int64                     { return c.Now().Unix() }
func (c *MockClock) UnixNano() int64                 { return c.Now().UnixNano() }

// Advance 推进时间
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.currentTime = c.currentTime.Add(d)
	c.mu.Unlock()
}

// Set 直接设置当前时间
func (c *MockClock) Set(t time.Time) {
	c.mu.Lock()
	c.currentTime = t
	c.mu.Unlock()
}

var _ infraClock.Clock = (*MockClock)(nil)
