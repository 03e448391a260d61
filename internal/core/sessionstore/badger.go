package sessionstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	badgerdb "github.com/dgraph-io/badger/v3"
	"github.com/golang/snappy"

	"github.com/weisyn/bargain/internal/core/negotiation"
	"github.com/weisyn/bargain/pkg/interfaces/infrastructure/log"
)

// errClosed 存储已关闭
var errClosed = errors.New("store is closed")

// BadgerStore 基于 BadgerDB 的持久化存储，值为 snappy 压缩的 JSON 快照
type BadgerStore struct {
	db     *badgerdb.DB
	prefix []byte
	logger log.Logger

	// Close 期间拒绝新的写入
	closing int32
	writeWg sync.WaitGroup
}

var _ Store = (*BadgerStore)(nil)

// NewBadgerStore 打开 path 下的数据库；path 为空时使用内存模式
func NewBadgerStore(path, keyPrefix string, logger log.Logger) (*BadgerStore, error) {
	var opts badgerdb.Options
	if path == "" {
		opts = badgerdb.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(path, 0700); err != nil {
			return nil, fmt.Errorf("create badger dir %s: %w", path, err)
		}
		opts = badgerdb.DefaultOptions(path)
		opts.SyncWrites = true
	}
	// 议价快照很小，缩小缓存与 value log
	opts.ValueLogFileSize = 64 << 20
	opts.BlockCacheSize = 16 << 20
	opts.IndexCacheSize = 8 << 20
	opts.NumMemtables = 2
	opts.NumCompactors = 2
	opts.Logger = newBadgerLogger(logger)

	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", path, err)
	}
	if logger != nil {
		if path == "" {
			logger.Info("session store: in-memory badger")
		} else {
			logger.Infof("session store: badger at %s", path)
		}
	}
	return &BadgerStore{db: db, prefix: []byte(keyPrefix), logger: logger}, nil
}

func (s *BadgerStore) key(id string) []byte {
	return append(append([]byte(nil), s.prefix...), id...)
}

func (s *BadgerStore) beginWrite() (func(), error) {
	if atomic.LoadInt32(&s.closing) == 1 {
		return nil, errClosed
	}
	s.writeWg.Add(1)
	if atomic.LoadInt32(&s.closing) == 1 {
		s.writeWg.Done()
		return nil, errClosed
	}
	return s.writeWg.Done, nil
}

func (s *BadgerStore) put(id string, n *negotiation.Negotiation, mustExist bool) error {
	data, err := encode(n)
	if err != nil {
		return err
	}
	done, err := s.beginWrite()
	if err != nil {
		return err
	}
	defer done()

	return s.db.Update(func(txn *badgerdb.Txn) error {
		k := s.key(id)
		_, err := txn.Get(k)
		switch {
		case err == nil && !mustExist:
			return fmt.Errorf("%w: %s", ErrAlreadyExists, id)
		case errors.Is(err, badgerdb.ErrKeyNotFound) && mustExist:
			return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
		case err != nil && !errors.Is(err, badgerdb.ErrKeyNotFound):
			return err
		}
		return txn.Set(k, snappy.Encode(nil, data))
	})
}

func (s *BadgerStore) Create(_ context.Context, id string, n *negotiation.Negotiation) error {
	return s.put(id, n, false)
}

func (s *BadgerStore) Update(_ context.Context, id string, n *negotiation.Negotiation) error {
	return s.put(id, n, true)
}

func (s *BadgerStore) Get(_ context.Context, id string) (*negotiation.Negotiation, error) {
	var raw []byte
	err := s.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(s.key(id))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return decodeCompressed(raw)
}

func (s *BadgerStore) Delete(_ context.Context, id string) error {
	done, err := s.beginWrite()
	if err != nil {
		return err
	}
	defer done()
	return s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Delete(s.key(id))
	})
}

func (s *BadgerStore) List(_ context.Context) ([]*negotiation.Negotiation, error) {
	var out []*negotiation.Negotiation
	err := s.db.View(func(txn *badgerdb.Txn) error {
		it := txn.NewIterator(badgerdb.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(s.prefix); it.ValidForPrefix(s.prefix); it.Next() {
			raw, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			n, err := decodeCompressed(raw)
			if err != nil {
				return fmt.Errorf("key %s: %w", it.Item().Key(), err)
			}
			out = append(out, n)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortByCreation(out)
	return out, nil
}

// Close 等待进行中的写入完成后关闭数据库
func (s *BadgerStore) Close() error {
	if !atomic.CompareAndSwapInt32(&s.closing, 0, 1) {
		return nil
	}
	s.writeWg.Wait()
	return s.db.Close()
}

func decodeCompressed(raw []byte) (*negotiation.Negotiation, error) {
	data, err := snappy.Decode(nil, raw)
	if err != nil {
		return nil, fmt.Errorf("decompress negotiation: %w", err)
	}
	return decode(data)
}

// badgerLogger 将 Badger 日志转到统一日志接口
type badgerLogger struct {
	logger log.Logger
}

func newBadgerLogger(logger log.Logger) badgerdb.Logger {
	return &badgerLogger{logger: logger}
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	if l.logger != nil {
		l.logger.Errorf("[badger] "+format, args...)
	}
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	if l.logger != nil {
		l.logger.Warnf("[badger] "+format, args...)
	}
}

// Infof Badger 的 info 日志过于频繁，降为 debug
func (l *badgerLogger) Infof(format string, args ...interface{}) {
	if l.logger != nil {
		l.logger.Debugf("[badger] "+format, args...)
	}
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	if l.logger != nil {
		l.logger.Debugf("[badger] "+format, args...)
	}
}
