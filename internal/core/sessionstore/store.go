// Package sessionstore 按议价 id 保存议价，并负责按过期时间清理
package sessionstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/weisyn/bargain/internal/core/negotiation"
)

var (
	// ErrSessionNotFound 议价不存在
	ErrSessionNotFound = negotiation.ErrSessionNotFound
	// ErrAlreadyExists Create 时 id 已存在
	ErrAlreadyExists = negotiation.ErrAlreadyExists
)

// Store 议价存储
//
// 实现须并发安全；同一 id 的读改写串行化由 Locker 负责。
type Store interface {
	Create(ctx context.Context, id string, n *negotiation.Negotiation) error
	Get(ctx context.Context, id string) (*negotiation.Negotiation, error)
	Update(ctx context.Context, id string, n *negotiation.Negotiation) error
	// Delete 删除不存在的 id 不报错
	Delete(ctx context.Context, id string) error
	// List 按创建时间排序
	List(ctx context.Context) ([]*negotiation.Negotiation, error)
	Close() error
}

func encode(n *negotiation.Negotiation) ([]byte, error) {
	if n == nil {
		return nil, fmt.Errorf("encode negotiation: nil")
	}
	data, err := json.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("encode negotiation %s: %w", n.ID(), err)
	}
	return data, nil
}

func decode(data []byte) (*negotiation.Negotiation, error) {
	var n negotiation.Negotiation
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("decode negotiation: %w", err)
	}
	return &n, nil
}

func sortByCreation(list []*negotiation.Negotiation) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt() != list[j].CreatedAt() {
			return list[i].CreatedAt() < list[j].CreatedAt()
		}
		return list[i].ID() < list[j].ID()
	})
}
