package utxo

import (
	"context"
	"fmt"
	"sync"
)

// StaticSource 内存数据源，用于 regtest 与测试
type StaticSource struct {
	mu      sync.RWMutex
	network string
	byAddr  map[string][]UTXO
}

// NewStaticSource 创建内存数据源
func NewStaticSource(network string) *StaticSource {
	return &StaticSource{network: network, byAddr: make(map[string][]UTXO)}
}

// Add 为地址添加输出，保持添加顺序
func (s *StaticSource) Add(utxos ...UTXO) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range utxos {
		s.byAddr[u.Address] = append(s.byAddr[u.Address], u)
	}
}

// Reset 清空全部输出
func (s *StaticSource) Reset() {
	s.mu.Lock()
	s.byAddr = make(map[string][]UTXO)
	s.mu.Unlock()
}

// UnspentOutputs 按地址顺序返回输出
func (s *StaticSource) UnspentOutputs(_ context.Context, network string, addresses []string) ([]UTXO, error) {
	if network != s.network {
		return nil, fmt.Errorf("%w: %q vs %q", ErrNetworkMismatch, network, s.network)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []UTXO
	for _, a := range addresses {
		out = append(out, s.byAddr[a]...)
	}
	return out, nil
}
