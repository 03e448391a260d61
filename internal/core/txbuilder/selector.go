package txbuilder

import (
	"fmt"
	"sort"

	"github.com/weisyn/bargain/internal/core/wallet/utxo"
)

// Selector 币选择策略
//
// 实现必须对相同的输入顺序给出相同结果。
type Selector interface {
	Select(available []utxo.UTXO, target int64) ([]utxo.UTXO, error)
}

// SelectorFunc 函数适配器
type SelectorFunc func(available []utxo.UTXO, target int64) ([]utxo.UTXO, error)

// Select 调用 f
func (f SelectorFunc) Select(available []utxo.UTXO, target int64) ([]utxo.UTXO, error) {
	return f(available, target)
}

var (
	// InOrderSelector 按给定顺序累加直至覆盖目标
	InOrderSelector Selector = SelectorFunc(SelectUTXOs)
	// FirstFitSelector 优先选用能单独覆盖目标的最小输出
	FirstFitSelector Selector = SelectorFunc(selectFirstFit)
	// LargestFirstSelector 从大到小累加
	LargestFirstSelector Selector = SelectorFunc(selectLargestFirst)
)

// SelectorByName 按名称返回策略，未知名称回退到 InOrderSelector
func SelectorByName(name string) Selector {
	switch name {
	case "first_fit":
		return FirstFitSelector
	case "largest_first":
		return LargestFirstSelector
	default:
		return InOrderSelector
	}
}

// SelectUTXOs 按顺序累加输出直到总额 >= target
func SelectUTXOs(available []utxo.UTXO, target int64) ([]utxo.UTXO, error) {
	if target < 0 {
		return nil, fmt.Errorf("%w: target %d", ErrInvalidAmount, target)
	}
	var (
		selected []utxo.UTXO
		sum      int64
	)
	for _, u := range available {
		if sum >= target && len(selected) > 0 {
			break
		}
		if u.Value <= 0 {
			continue
		}
		selected = append(selected, u)
		sum += u.Value
	}
	if sum < target {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrInsufficientFunds, sum, target)
	}
	return selected, nil
}

func selectFirstFit(available []utxo.UTXO, target int64) ([]utxo.UTXO, error) {
	if target < 0 {
		return nil, fmt.Errorf("%w: target %d", ErrInvalidAmount, target)
	}
	best := -1
	for i, u := range available {
		if u.Value >= target && u.Value > 0 && (best < 0 || u.Value < available[best].Value) {
			best = i
		}
	}
	if best >= 0 {
		return []utxo.UTXO{available[best]}, nil
	}
	return selectLargestFirst(available, target)
}

func selectLargestFirst(available []utxo.UTXO, target int64) ([]utxo.UTXO, error) {
	sorted := append([]utxo.UTXO(nil), available...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Value > sorted[j].Value })
	return SelectUTXOs(sorted, target)
}

func sumValues(utxos []utxo.UTXO) int64 {
	var total int64
	for _, u := range utxos {
		total += u.Value
	}
	return total
}
