package payer

import (
	"errors"

	"github.com/weisyn/bargain/internal/core/negotiation"
)

var (
	// ErrSessionNotFound 议价不存在
	ErrSessionNotFound = negotiation.ErrSessionNotFound
	// ErrNotSent 决策引擎拒绝构建消息，没有发送任何内容
	ErrNotSent = errors.New("message not sent")
	// ErrNothingToRetry 最后一条消息不是待应答的付款方消息
	ErrNothingToRetry = errors.New("nothing to retry")
)
