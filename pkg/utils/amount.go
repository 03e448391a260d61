package utils

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// BTCExponent 1 BTC = 1e8 聪
const BTCExponent = 8

// MaxSatoshis 比特币总供应量（聪）
const MaxSatoshis int64 = 21_000_000 * 100_000_000

var maxSatoshis = decimal.NewFromInt(MaxSatoshis)

// ParseBTC 解析以 BTC 为单位的金额字符串为聪
//
// 最多 8 位小数，不允许负数，且不超过总供应量。
func ParseBTC(s string) (int64, error) {
	s = strings.TrimSpace(s)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("invalid amount %q: must not be negative", s)
	}
	sats := d.Shift(BTCExponent)
	if !sats.IsInteger() {
		return 0, fmt.Errorf("invalid amount %q: more than %d decimal places", s, BTCExponent)
	}
	if sats.GreaterThan(maxSatoshis) {
		return 0, fmt.Errorf("invalid amount %q: out of range", s)
	}
	return sats.IntPart(), nil
}

// FormatBTC 聪转换为固定 8 位小数的 BTC 字符串
func FormatBTC(sats int64) string {
	return decimal.New(sats, -BTCExponent).StringFixed(BTCExponent)
}
