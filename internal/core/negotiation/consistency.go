package negotiation

import (
	"bytes"

	"github.com/weisyn/bargain/internal/core/message"
)

// CheckConsistency 将 msg 与链上最后一条消息交叉校验
//
// 不一致时写入 msg 的错误列表并将其状态降为 KO，消息本身不被丢弃。
// msg 的发送方视为当前的 NextActiveRole。
func (n *Negotiation) CheckConsistency(msg *message.Message) bool {
	if msg == nil || msg.Details == nil {
		return false
	}
	before := len(msg.Errors)
	last := n.LastMessage()
	common := msg.Details.Base()

	if common.PayerData != n.PayerData() && !(last == nil && n.role == message.RolePayee) {
		msg.Fail("payer data %q does not match negotiation %s", common.PayerData, n.id)
	}

	switch d := msg.Details.(type) {
	case *message.RequestDetails:
		if d.Network != n.network {
			msg.Fail("request network %q does not match negotiation network %q", d.Network, n.network)
		}
	case *message.RequestAckDetails:
		if d.Network != n.network {
			msg.Fail("request ack network %q does not match negotiation network %q", d.Network, n.network)
		}
	}

	if last != nil {
		// 付款方的消息必须原样带回收款方关联数据
		if n.NextActiveRole() == message.RolePayer && common.PayeeData != last.Common().PayeeData {
			msg.Fail("payee data does not match the last received message")
		}

		if msg.IsSigned() && !bytes.Equal(msg.PrevHash, last.Hash()) {
			msg.Fail("prev_hash does not reference the last message of the chain")
		}

		switch d := msg.Details.(type) {
		case *message.ProposalDetails:
			if lastAmount, ok := last.Amount(); ok {
				if d.Redeemable != (d.Amount >= lastAmount) {
					msg.Fail("redeemable flag is %t but amount %d vs demanded %d", d.Redeemable, d.Amount, lastAmount)
				}
			} else {
				msg.Fail("proposal does not answer a demand")
			}
		case *message.CompletionDetails:
			if p, ok := last.Details.(*message.ProposalDetails); !ok || !p.Redeemable {
				msg.Fail("completion must answer a redeemable proposal")
			}
		}
	} else if msg.IsSigned() && len(msg.PrevHash) != 0 {
		msg.Fail("first message must not reference a predecessor")
	}

	return len(msg.Errors) == before
}
