package sessionstore

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLockerSerializesSameID(t *testing.T) {
	l := NewLocalLocker()
	var (
		inside  int32
		maxSeen int32
		wg      sync.WaitGroup
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := l.WithLock(context.Background(), "same", func(context.Context) error {
				v := atomic.AddInt32(&inside, 1)
				for {
					old := atomic.LoadInt32(&maxSeen)
					if v <= old || atomic.CompareAndSwapInt32(&maxSeen, old, v) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&inside, -1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), atomic.LoadInt32(&maxSeen))
	assert.Zero(t, l.size())
}

func TestLocalLockerIndependentIDs(t *testing.T) {
	l := NewLocalLocker()
	entered := make(chan struct{})
	release := make(chan struct{})

	go func() {
		_ = l.WithLock(context.Background(), "a", func(context.Context) error {
			close(entered)
			<-release
			return nil
		})
	}()
	<-entered

	done := make(chan error, 1)
	go func() {
		done <- l.WithLock(context.Background(), "b", func(context.Context) error { return nil })
	}()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("lock on b blocked by a")
	}
	close(release)
}

func TestLocalLockerContextAndErrors(t *testing.T) {
	l := NewLocalLocker()
	entered := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = l.WithLock(context.Background(), "a", func(context.Context) error {
			close(entered)
			<-release
			return nil
		})
	}()
	<-entered

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := l.WithLock(ctx, "a", func(context.Context) error { return nil })
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	close(release)

	boom := errors.New("boom")
	assert.ErrorIs(t, l.WithLock(context.Background(), "c", func(context.Context) error { return boom }), boom)
	assert.ErrorIs(t, l.WithLock(context.Background(), "", func(context.Context) error { return nil }), ErrEmptyLockKey)
}

func TestLocalLockerReleasesOnPanic(t *testing.T) {
	l := NewLocalLocker()
	require.Panics(t, func() {
		_ = l.WithLock(context.Background(), "p", func(context.Context) error { panic("x") })
	})
	assert.NoError(t, l.WithLock(context.Background(), "p", func(context.Context) error { return nil }))
}
