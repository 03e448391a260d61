package sessionstore

import (
	"context"
	"errors"
	"time"

	infraevent "github.com/weisyn/bargain/internal/core/infrastructure/event"
	"github.com/weisyn/bargain/internal/core/message"
	"github.com/weisyn/bargain/internal/core/negotiation"
	"github.com/weisyn/bargain/pkg/interfaces/infrastructure/clock"
	"github.com/weisyn/bargain/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/bargain/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/bargain/pkg/types"
)

// Sweeper 清理付款方过期时间早于 now - grace 的议价
//
// 尚无付款方过期时间（未收到 REQUEST_ACK）的议价不会被清理。
type Sweeper struct {
	store  Store
	locker Locker
	clock  clock.Clock
	grace  time.Duration
	bus    event.EventBus
	logger log.Logger
}

// NewSweeper 创建清理器；bus 与 logger 可为空
func NewSweeper(store Store, locker Locker, clk clock.Clock, grace time.Duration, bus event.EventBus, logger log.Logger) *Sweeper {
	if locker == nil {
		locker = NewLocalLocker()
	}
	return &Sweeper{store: store, locker: locker, clock: clk, grace: grace, bus: bus, logger: logger}
}

// Expired 议价在 now 时刻是否应被清理
func Expired(n *negotiation.Negotiation, now time.Time, grace time.Duration) bool {
	expiry, ok := n.ExpiryForRole(message.RolePayer)
	if !ok {
		return false
	}
	return time.Unix(expiry, 0).Add(grace).Before(now)
}

// Sweep 执行一次清理，返回被删除的 id
func (s *Sweeper) Sweep(ctx context.Context) ([]string, error) {
	started := time.Now()
	defer func() { sweepDurationSeconds.Observe(time.Since(started).Seconds()) }()
	sweepRunsTotal.Inc()

	list, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	var evicted []string
	for _, n := range list {
		if !Expired(n, s.clock.Now(), s.grace) {
			continue
		}
		id := n.ID()
		err := s.locker.WithLock(ctx, id, func(ctx context.Context) error {
			// 加锁后重新读取，期间可能已被删除
			current, err := s.store.Get(ctx, id)
			if err != nil {
				return err
			}
			if !Expired(current, s.clock.Now(), s.grace) {
				return nil
			}
			if err := s.store.Delete(ctx, id); err != nil {
				return err
			}
			evicted = append(evicted, id)
			expiry, _ := current.ExpiryForRole(message.RolePayer)
			s.publish(id, expiry)
			return nil
		})
		if err != nil && !errors.Is(err, ErrSessionNotFound) {
			return evicted, err
		}
	}

	evictedTotal.Add(float64(len(evicted)))
	if len(evicted) > 0 && s.logger != nil {
		s.logger.Infof("session store: evicted %d expired negotiations", len(evicted))
	}
	return evicted, nil
}

func (s *Sweeper) publish(id string, expiry int64) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(infraevent.EventTypeEvicted, types.NegotiationEvictedEvent{
		NegotiationID: id,
		PayerExpiry:   expiry,
	})
}

// Run 每隔 interval 清理一次，直到 ctx 结束
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil && s.logger != nil && ctx.Err() == nil {
				s.logger.Warnf("session store sweep failed: %v", err)
			}
		}
	}
}
