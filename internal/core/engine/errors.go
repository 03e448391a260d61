package engine

import (
	"errors"

	"github.com/weisyn/bargain/internal/core/negotiation"
	"github.com/weisyn/bargain/internal/core/txbuilder"
)

var (
	// ErrSessionNotFound 议价不存在
	ErrSessionNotFound = negotiation.ErrSessionNotFound
	// ErrTurn 当前不是付款方回合
	ErrTurn = errors.New("not the payer's turn")
	// ErrNoValidAction 当前状态下没有可发送的消息
	ErrNoValidAction = errors.New("no valid action in the current state")
	// ErrFormat 构建的消息未通过格式校验
	ErrFormat = errors.New("message format check failed")
	// ErrConsistency 构建的消息与消息链不一致
	ErrConsistency = negotiation.ErrConsistency
	// ErrSign 消息签名或编码失败
	ErrSign = errors.New("message signing failed")
)

// 返回给调用方的错误文案
const (
	msgSessionNotFound   = "Unable to find the negotiation"
	msgTurn              = "Unable to send a new message. Still waiting for an answer from the payee"
	msgNoValidAction     = "Unable to send a new message in the current state of the negotiation"
	msgInsufficientFunds = "Not enough funds to build the payment transaction"
	msgBuildFailed       = "Unable to build the payment transaction"
	msgSignFailed        = "Unable to sign the message"
)

// Describe 将 Decide 的错误转换为面向用户的文案
func Describe(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrSessionNotFound):
		return msgSessionNotFound
	case errors.Is(err, ErrTurn):
		return msgTurn
	case errors.Is(err, ErrNoValidAction):
		return msgNoValidAction
	case errors.Is(err, txbuilder.ErrInsufficientFunds):
		return msgInsufficientFunds
	case errors.Is(err, ErrSign):
		return msgSignFailed
	default:
		return msgBuildFailed + ": " + err.Error()
	}
}
