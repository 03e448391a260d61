package negotiation

import "errors"

var (
	// ErrSessionNotFound 议价不存在
	ErrSessionNotFound = errors.New("negotiation not found")
	// ErrChainOrder 消息不满足前驱类型约束，或议价已结束
	ErrChainOrder = errors.New("illegal message order")
	// ErrConsistency 消息与消息链中已有内容不一致
	ErrConsistency = errors.New("message inconsistent with negotiation")
	// ErrAlreadyExists 议价 id 已存在
	ErrAlreadyExists = errors.New("negotiation already exists")
)
