// Package txbuilder 选择付款输入并构建带找零的签名交易
package txbuilder

import (
	"bytes"
	"context"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/shopspring/decimal"

	"github.com/weisyn/bargain/internal/core/message"
	"github.com/weisyn/bargain/internal/core/wallet"
	"github.com/weisyn/bargain/internal/core/wallet/utxo"
	"github.com/weisyn/bargain/pkg/interfaces/infrastructure/log"
)

// Input 待花费的输出及其私钥
type Input struct {
	UTXO utxo.UTXO
	Key  *btcec.PrivateKey
}

// BuildResult 交易构建结果
//
// 满足 sum(Inputs) == Amount + Fees + Change。
type BuildResult struct {
	Inputs  []utxo.UTXO
	Outputs []message.Output // 含找零输出（若有）
	Amount  int64
	Fees    int64
	Change  int64
	Tx      *wire.MsgTx
	Raw     []byte
	TxID    string
}

// BuildTxWithChange 用给定输入构建交易，找零发往 changeAddress
func BuildTxWithChange(inputs []Input, outputs []message.Output, amount, fees int64, changeAddress btcutil.Address) (*BuildResult, error) {
	if amount < 0 || fees < 0 {
		return nil, fmt.Errorf("%w: amount %d fees %d", ErrInvalidAmount, amount, fees)
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: no inputs", ErrInsufficientFunds)
	}

	scaled, err := ScaleOutputs(outputs, amount)
	if err != nil {
		return nil, err
	}

	tx := wire.NewMsgTx(wire.TxVersion)
	spent := make([]utxo.UTXO, 0, len(inputs))
	var inTotal int64
	for _, in := range inputs {
		hash, err := chainhash.NewHashFromStr(in.UTXO.TxID)
		if err != nil {
			return nil, fmt.Errorf("%w: txid %q: %v", ErrInvalidUTXO, in.UTXO.TxID, err)
		}
		if len(in.UTXO.Script) == 0 {
			return nil, fmt.Errorf("%w: %s:%d has no script", ErrInvalidUTXO, in.UTXO.TxID, in.UTXO.Vout)
		}
		tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(hash, in.UTXO.Vout), nil, nil))
		spent = append(spent, in.UTXO)
		inTotal += in.UTXO.Value
	}

	for _, o := range scaled {
		tx.AddTxOut(wire.NewTxOut(o.Amount, o.Script))
	}

	change := inTotal - amount - fees
	if change < 0 {
		return nil, fmt.Errorf("%w: inputs %d, amount %d, fees %d", ErrNegativeChange, inTotal, amount, fees)
	}
	if change > 0 {
		if changeAddress == nil {
			return nil, fmt.Errorf("%w: change %d without change address", ErrInvalidOutputs, change)
		}
		script, err := txscript.PayToAddrScript(changeAddress)
		if err != nil {
			return nil, fmt.Errorf("%w: change address: %v", ErrInvalidOutputs, err)
		}
		tx.AddTxOut(wire.NewTxOut(change, script))
		scaled = append(scaled, message.Output{Amount: change, Script: script})
	}

	for i, in := range inputs {
		if in.Key == nil {
			return nil, fmt.Errorf("%w: input %d has no key", ErrSigning, i)
		}
		sigScript, err := txscript.SignatureScript(tx, i, in.UTXO.Script, txscript.SigHashAll, in.Key, true)
		if err != nil {
			return nil, fmt.Errorf("%w: input %d: %v", ErrSigning, i, err)
		}
		tx.TxIn[i].SignatureScript = sigScript
	}

	var buf bytes.Buffer
	if err := tx.Serialize(&buf); err != nil {
		return nil, fmt.Errorf("serialize tx: %w", err)
	}

	return &BuildResult{
		Inputs:  spent,
		Outputs: scaled,
		Amount:  amount,
		Fees:    fees,
		Change:  change,
		Tx:      tx,
		Raw:     buf.Bytes(),
		TxID:    tx.TxHash().String(),
	}, nil
}

// ScaleOutputs 使输出总额等于 amount
//
// 总额已相等时原样返回；否则按比例分配，余数计入最后一个输出。
func ScaleOutputs(outputs []message.Output, amount int64) ([]message.Output, error) {
	if len(outputs) == 0 {
		return nil, fmt.Errorf("%w: no outputs", ErrInvalidOutputs)
	}
	var total int64
	for i, o := range outputs {
		if o.Amount < 0 || len(o.Script) == 0 {
			return nil, fmt.Errorf("%w: output %d", ErrInvalidOutputs, i)
		}
		total += o.Amount
	}

	scaled := make([]message.Output, len(outputs))
	copy(scaled, outputs)
	if total == amount {
		return scaled, nil
	}
	if total == 0 {
		return nil, fmt.Errorf("%w: requested outputs total zero", ErrInvalidOutputs)
	}

	target := decimal.NewFromInt(amount)
	sum := decimal.NewFromInt(total)
	var assigned int64
	for i := range scaled[:len(scaled)-1] {
		v := decimal.NewFromInt(scaled[i].Amount).Mul(target).Div(sum).Floor().IntPart()
		scaled[i].Amount = v
		assigned += v
	}
	scaled[len(scaled)-1].Amount = amount - assigned
	return scaled, nil
}

// Builder 使用 KeyStore 地址上的输出构建付款交易
type Builder struct {
	keys     *wallet.KeyStore
	source   utxo.Source
	selector Selector
	logger   log.Logger
}

// NewBuilder 创建构建器；selector 为 nil 时使用 InOrderSelector
func NewBuilder(keys *wallet.KeyStore, source utxo.Source, selector Selector, logger log.Logger) *Builder {
	if selector == nil {
		selector = InOrderSelector
	}
	return &Builder{keys: keys, source: source, selector: selector, logger: logger}
}

// BuildSingleTx 构建 sum(inputs) = amount + fees + change 的交易，输出为收款方要求的输出
func (b *Builder) BuildSingleTx(ctx context.Context, amount, fees int64, outputs []message.Output) (*BuildResult, error) {
	addr := b.keys.AddressString()
	available, err := b.source.UnspentOutputs(ctx, b.keys.Network(), []string{addr})
	if err != nil {
		return nil, fmt.Errorf("fetch utxos for %s: %w", addr, err)
	}

	selected, err := b.selector.Select(available, amount+fees)
	if err != nil {
		return nil, err
	}

	inputs := make([]Input, len(selected))
	for i, u := range selected {
		if len(u.Script) == 0 {
			u.Script = b.keys.Script()
		}
		inputs[i] = Input{UTXO: u, Key: b.keys.PayKey()}
	}

	res, err := BuildTxWithChange(inputs, outputs, amount, fees, b.keys.Address())
	if err != nil {
		return nil, err
	}
	if b.logger != nil {
		b.logger.Debugf("built tx %s: inputs=%d amount=%d fees=%d change=%d",
			res.TxID, len(res.Inputs), res.Amount, res.Fees, res.Change)
	}
	return res, nil
}
