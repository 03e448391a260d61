package message

import (
	"bytes"

	"github.com/btcsuite/btcd/wire"
)

// CheckFormat 校验消息结构；失败原因写入 Errors 并将状态置为 KO，否则置为 OK
func (c *ProtoCodec) CheckFormat(msg *Message, network string) bool {
	return CheckFormat(msg, network)
}

// CheckFormat 包级实现，供其他 Codec 复用
func CheckFormat(msg *Message, network string) bool {
	if msg == nil {
		return false
	}
	if msg.Details == nil || !msg.Type.Valid() || msg.Details.Type() != msg.Type {
		msg.Fail("invalid message type %q", msg.Type)
		return false
	}

	before := len(msg.Errors)
	common := msg.Details.Base()
	if common.Time <= 0 {
		msg.Fail("missing message time")
	}

	switch d := msg.Details.(type) {
	case *RequestDetails:
		checkNetwork(msg, d.Network, network)
		checkExpires(msg, common.Time, d.Expires)
	case *RequestAckDetails:
		checkNetwork(msg, d.Network, network)
		checkExpires(msg, common.Time, d.Expires)
		checkAmount(msg, "amount", d.Amount)
		checkOutputs(msg, "outputs", d.Outputs)
	case *ProposalDetails:
		checkAmount(msg, "amount", d.Amount)
		checkAmount(msg, "fees", d.Fees)
		checkOutputs(msg, "refund_to", d.RefundTo)
		checkTransactions(msg, d.Transactions)
	case *ProposalAckDetails:
		checkAmount(msg, "amount", d.Amount)
		checkOutputs(msg, "outputs", d.Outputs)
	case *CompletionDetails, *CancellationDetails:
	}

	if msg.IsSigned() {
		if err := VerifySignature(msg); err != nil {
			msg.Fail("%v", err)
		}
	}

	if len(msg.Errors) > before {
		msg.Status = StatusKO
		return false
	}
	if msg.Status != StatusKO {
		msg.Status = StatusOK
	}
	return msg.Status == StatusOK
}

func checkNetwork(msg *Message, got, want string) {
	if got != want {
		msg.Fail("network mismatch: got %q, expected %q", got, want)
	}
}

func checkExpires(msg *Message, created, expires int64) {
	if expires <= created {
		msg.Fail("expiry %d is not after message time %d", expires, created)
	}
}

func checkAmount(msg *Message, name string, v int64) {
	if v < 0 {
		msg.Fail("%s must not be negative (got %d)", name, v)
	}
}

func checkOutputs(msg *Message, name string, outs []Output) {
	if len(outs) == 0 {
		msg.Fail("%s must contain at least one output", name)
		return
	}
	for i, o := range outs {
		if len(o.Script) == 0 {
			msg.Fail("%s[%d] has an empty script", name, i)
		}
		if o.Amount < 0 {
			msg.Fail("%s[%d] has a negative amount", name, i)
		}
	}
}

func checkTransactions(msg *Message, txs [][]byte) {
	if len(txs) == 0 {
		msg.Fail("proposal must contain at least one transaction")
		return
	}
	for i, raw := range txs {
		var tx wire.MsgTx
		if err := tx.Deserialize(bytes.NewReader(raw)); err != nil {
			msg.Fail("transactions[%d] is not a valid bitcoin transaction: %v", i, err)
			continue
		}
		if len(tx.TxIn) == 0 || len(tx.TxOut) == 0 {
			msg.Fail("transactions[%d] has no inputs or outputs", i)
		}
	}
}
