// Package engine 决定付款方下一条要发送的消息并构建其载荷
package engine

import (
	"context"
	"fmt"

	negotiationconfig "github.com/weisyn/bargain/internal/config/negotiation"
	"github.com/weisyn/bargain/internal/core/message"
	"github.com/weisyn/bargain/internal/core/negotiation"
	"github.com/weisyn/bargain/internal/core/txbuilder"
	"github.com/weisyn/bargain/internal/core/wallet"
	"github.com/weisyn/bargain/pkg/interfaces/infrastructure/clock"
	"github.com/weisyn/bargain/pkg/interfaces/infrastructure/log"
)

// PaymentBuilder 为出价构建支付交易
type PaymentBuilder interface {
	BuildSingleTx(ctx context.Context, amount, fees int64, outputs []message.Output) (*txbuilder.BuildResult, error)
}

// Intent 付款方本回合的意图；Amount 为 0 表示取消
type Intent struct {
	Memo   string
	Amount int64
	Fees   int64
}

// Decision 一次决策的产物
type Decision struct {
	Message *message.Message
	Tx      *txbuilder.BuildResult // 仅 PROPOSAL 非空
}

// Engine 付款方决策引擎
type Engine struct {
	keys    *wallet.KeyStore
	codec   message.Codec
	builder PaymentBuilder
	clock   clock.Clock
	opts    *negotiationconfig.NegotiationOptions
	logger  log.Logger
}

// New 创建决策引擎
func New(keys *wallet.KeyStore, codec message.Codec, builder PaymentBuilder, clk clock.Clock,
	opts *negotiationconfig.NegotiationOptions, logger log.Logger) *Engine {
	if opts == nil {
		opts = negotiationconfig.New(nil).GetOptions()
	}
	return &Engine{keys: keys, codec: codec, builder: builder, clock: clk, opts: opts, logger: logger}
}

// Process 构建下一条消息
//
// 从不返回 error：失败通过字符串列表表达，列表非空时调用方不得发送消息。
// 格式或一致性校验失败时返回的消息带有错误且未编码。
func (e *Engine) Process(ctx context.Context, n *negotiation.Negotiation, memo string, amount, fees int64) (*message.Message, []string) {
	d, err := e.Decide(ctx, n, Intent{Memo: memo, Amount: amount, Fees: fees})
	if d != nil && d.Message != nil && len(d.Message.Errors) > 0 {
		return d.Message, d.Message.Errors
	}
	if err != nil {
		return nil, []string{Describe(err)}
	}
	return d.Message, nil
}

// Decide 按状态表选择动作，构建、校验、签名并编码消息
func (e *Engine) Decide(ctx context.Context, n *negotiation.Negotiation, intent Intent) (*Decision, error) {
	if n == nil {
		return nil, ErrSessionNotFound
	}
	if role := n.NextActiveRole(); role != message.RolePayer {
		return nil, fmt.Errorf("%w: next active role is %q", ErrTurn, role)
	}

	d, err := e.dispatch(ctx, n, intent)
	if err != nil {
		return nil, err
	}
	msg := d.Message
	last := n.LastMessage()

	if !e.codec.CheckFormat(msg, n.Network()) {
		return d, fmt.Errorf("%w: %v", ErrFormat, msg.Errors)
	}
	signKey := e.keys.SignKey()
	if err := e.codec.Sign(msg, last, message.SignECDSASHA256, signKey.PubKey(), signKey); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSign, err)
	}
	if !n.CheckConsistency(msg) {
		return d, fmt.Errorf("%w: %v", ErrConsistency, msg.Errors)
	}

	payload, err := e.codec.Serialize(msg)
	if err != nil {
		return nil, fmt.Errorf("%w: serialize: %v", ErrSign, err)
	}
	msg.Payload = payload

	if e.logger != nil {
		e.logger.Debugf("negotiation %s: built %s (%d bytes)", n.ID(), msg.Type, len(payload))
	}
	return d, nil
}

// dispatch 决策表
func (e *Engine) dispatch(ctx context.Context, n *negotiation.Negotiation, intent Intent) (*Decision, error) {
	last := n.LastMessage()
	status := n.Status()

	switch {
	case last == nil && status == negotiation.StatusInitialization:
		return &Decision{Message: e.buildRequest(n)}, nil
	case last == nil:
		// 无消息却不在初始化状态
	case last.Status == message.StatusKO:
		return &Decision{Message: e.buildCancellation(n, last, intent.Memo)}, nil
	case last.Status == message.StatusOK && status == negotiation.StatusNegotiation && intent.Amount == 0:
		return &Decision{Message: e.buildCancellation(n, last, intent.Memo)}, nil
	case last.Status == message.StatusOK && status == negotiation.StatusNegotiation && intent.Amount > 0:
		return e.buildProposal(ctx, n, last, intent)
	}
	return nil, fmt.Errorf("%w: status %s", ErrNoValidAction, status)
}

func (e *Engine) now() int64 { return e.clock.Unix() }

func (e *Engine) buildRequest(n *negotiation.Negotiation) *message.Message {
	now := e.now()
	return message.New(&message.RequestDetails{
		Common: message.Common{
			Time:      now,
			PayerData: n.PayerData(),
		},
		Network:    n.Network(),
		Expires:    now + int64(e.opts.RequestTTL.Seconds()),
		BargainURI: e.opts.BargainURI,
	})
}

func (e *Engine) buildCancellation(n *negotiation.Negotiation, last *message.Message, memo string) *message.Message {
	return message.New(&message.CancellationDetails{
		Common: message.Common{
			Time:      e.now(),
			PayerData: n.PayerData(),
			PayeeData: last.Common().PayeeData,
			Memo:      memo,
		},
	})
}

func (e *Engine) buildProposal(ctx context.Context, n *negotiation.Negotiation, last *message.Message, intent Intent) (*Decision, error) {
	demanded, ok := last.Amount()
	if !ok {
		return nil, fmt.Errorf("%w: last message %s carries no amount", ErrNoValidAction, last.Type)
	}

	tx, err := e.builder.BuildSingleTx(ctx, intent.Amount, intent.Fees, last.Outputs())
	if err != nil {
		return nil, fmt.Errorf("build payment for %s: %w", n.ID(), err)
	}

	// 找零与退款回到付款地址
	msg := message.New(&message.ProposalDetails{
		Common: message.Common{
			Time:      e.now(),
			PayerData: n.PayerData(),
			PayeeData: last.Common().PayeeData,
			Memo:      intent.Memo,
		},
		Transactions: [][]byte{tx.Raw},
		RefundTo:     []message.Output{{Script: e.keys.Script()}},
		Amount:       intent.Amount,
		Fees:         intent.Fees,
		Redeemable:   Redeemable(intent.Amount, demanded),
	})
	return &Decision{Message: msg, Tx: tx}, nil
}

// Redeemable 出价达到对方最近要价时即为最终支付
func Redeemable(amount, lastAmount int64) bool {
	return amount >= lastAmount
}
