// Package utxo 提供付款地址的未花费输出查询
package utxo

import (
	"context"
	"errors"
)

var (
	// ErrNetworkMismatch 查询的网络与数据源配置的网络不一致
	ErrNetworkMismatch = errors.New("utxo source network mismatch")
	// ErrUnavailable 数据源不可用（包括熔断打开）
	ErrUnavailable = errors.New("utxo source unavailable")
	// ErrBadResponse 数据源返回了无法解析的数据
	ErrBadResponse = errors.New("utxo source returned a bad response")
)

// UTXO 一个可花费的输出
type UTXO struct {
	TxID      string `json:"txid"`
	Vout      uint32 `json:"vout"`
	Value     int64  `json:"value"` // 聪
	Script    []byte `json:"script"`
	Address   string `json:"address"`
	Confirmed bool   `json:"confirmed"`
}

// Source 给定网络与地址集合，返回可花费输出
type Source interface {
	UnspentOutputs(ctx context.Context, network string, addresses []string) ([]UTXO, error)
}

// Balance 地址集合的余额（聪）
func Balance(ctx context.Context, src Source, network string, addresses []string) (int64, error) {
	if len(addresses) == 0 {
		return 0, nil
	}
	utxos, err := src.UnspentOutputs(ctx, network, addresses)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, u := range utxos {
		total += u.Value
	}
	return total, nil
}
