package txbuilder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/bargain/internal/core/message"
	"github.com/weisyn/bargain/internal/core/wallet"
	"github.com/weisyn/bargain/internal/core/wallet/utxo"
)

func newKeys(t *testing.T, phrase string) *wallet.KeyStore {
	t.Helper()
	ks, err := wallet.NewFromPassphrases(wallet.NetworkTest, phrase, phrase+" sign")
	require.NoError(t, err)
	return ks
}

func fakeTxID(i int) string {
	return strings.Repeat(fmt.Sprintf("%02x", i+1), 32)
}

func fund(ks *wallet.KeyStore, values ...int64) []utxo.UTXO {
	out := make([]utxo.UTXO, len(values))
	for i, v := range values {
		out[i] = utxo.UTXO{
			TxID:    fakeTxID(i),
			Vout:    uint32(i),
			Value:   v,
			Script:  ks.Script(),
			Address: ks.AddressString(),
		}
	}
	return out
}

func verifyInputs(t *testing.T, tx *wire.MsgTx, spent []utxo.UTXO) {
	t.Helper()
	for i, u := range spent {
		fetcher := txscript.NewCannedPrevOutputFetcher(u.Script, u.Value)
		vm, err := txscript.NewEngine(u.Script, tx, i, txscript.StandardVerifyFlags, nil,
			txscript.NewTxSigHashes(tx, fetcher), u.Value, fetcher)
		require.NoError(t, err)
		require.NoError(t, vm.Execute(), "input %d", i)
	}
}

func TestSelectUTXOs(t *testing.T) {
	avail := fund(newKeys(t, "sel"), 100, 200, 300)

	tests := []struct {
		name    string
		target  int64
		want    int
		wantErr error
	}{
		{"first covers", 50, 1, nil},
		{"exact two", 300, 2, nil},
		{"all", 600, 3, nil},
		{"zero target picks one", 0, 1, nil},
		{"insufficient", 601, 0, ErrInsufficientFunds},
		{"negative", -1, 0, ErrInvalidAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SelectUTXOs(avail, tt.target)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
			assert.GreaterOrEqual(t, sumValues(got), tt.target)
		})
	}
}

func TestSelectUTXOsCoversWheneverPossible(t *testing.T) {
	avail := fund(newKeys(t, "prop"), 7, 1, 13, 2, 40, 5)
	total := sumValues(avail)
	for target := int64(0); target <= total+3; target++ {
		got, err := SelectUTXOs(avail, target)
		if target > total {
			assert.ErrorIs(t, err, ErrInsufficientFunds)
			continue
		}
		require.NoError(t, err, "target %d", target)
		assert.GreaterOrEqual(t, sumValues(got), target)

		again, err := SelectUTXOs(avail, target)
		require.NoError(t, err)
		assert.Equal(t, got, again)
	}
}

func TestSelectorStrategies(t *testing.T) {
	avail := fund(newKeys(t, "strat"), 100, 500, 250, 50)

	got, err := FirstFitSelector.Select(avail, 200)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(250), got[0].Value)

	got, err = FirstFitSelector.Select(avail, 800)
	require.NoError(t, err)
	assert.Equal(t, []int64{500, 250, 100}, values(got))

	got, err = LargestFirstSelector.Select(avail, 600)
	require.NoError(t, err)
	assert.Equal(t, []int64{500, 250}, values(got))

	_, err = LargestFirstSelector.Select(avail, 901)
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	assert.NotNil(t, SelectorByName("unknown"))
}

func values(us []utxo.UTXO) []int64 {
	out := make([]int64, len(us))
	for i, u := range us {
		out[i] = u.Value
	}
	return out
}

func TestBuildTxWithChange(t *testing.T) {
	payer := newKeys(t, "payer")
	payee := newKeys(t, "payee")
	avail := fund(payer, 400000, 300000)

	inputs := []Input{{UTXO: avail[0], Key: payer.PayKey()}, {UTXO: avail[1], Key: payer.PayKey()}}
	outputs := []message.Output{{Amount: 600000, Script: payee.Script()}}

	res, err := BuildTxWithChange(inputs, outputs, 600000, 1000, payer.Address())
	require.NoError(t, err)

	assert.Equal(t, int64(99000), res.Change)
	require.Len(t, res.Tx.TxOut, 2)
	assert.Equal(t, int64(600000), res.Tx.TxOut[0].Value)
	assert.Equal(t, payer.Script(), res.Tx.TxOut[1].PkScript)
	assert.Len(t, res.Outputs, 2)

	var outSum int64
	for _, o := range res.Tx.TxOut {
		outSum += o.Value
	}
	assert.Equal(t, sumValues(res.Inputs), outSum+res.Fees)

	decoded := wire.NewMsgTx(wire.TxVersion)
	require.NoError(t, decoded.Deserialize(bytes.NewReader(res.Raw)))
	assert.Equal(t, res.TxID, decoded.TxHash().String())

	verifyInputs(t, res.Tx, res.Inputs)
}

func TestBuildTxWithoutChange(t *testing.T) {
	payer := newKeys(t, "payer")
	payee := newKeys(t, "payee")
	avail := fund(payer, 10500)

	res, err := BuildTxWithChange([]Input{{UTXO: avail[0], Key: payer.PayKey()}},
		[]message.Output{{Amount: 10000, Script: payee.Script()}}, 10000, 500, nil)
	require.NoError(t, err)
	assert.Zero(t, res.Change)
	assert.Len(t, res.Tx.TxOut, 1)
	verifyInputs(t, res.Tx, res.Inputs)
}

func TestBuildTxWithChangeErrors(t *testing.T) {
	payer := newKeys(t, "payer")
	payee := newKeys(t, "payee")
	avail := fund(payer, 1000)
	outs := []message.Output{{Amount: 900, Script: payee.Script()}}
	ok := []Input{{UTXO: avail[0], Key: payer.PayKey()}}

	badTx := avail[0]
	badTx.TxID = "nothex"
	noScript := avail[0]
	noScript.Script = nil

	tests := []struct {
		name    string
		inputs  []Input
		outputs []message.Output
		amount  int64
		fees    int64
		wantErr error
	}{
		{"negative change", ok, outs, 900, 200, ErrNegativeChange},
		{"negative fees", ok, outs, 900, -1, ErrInvalidAmount},
		{"no inputs", nil, outs, 900, 0, ErrInsufficientFunds},
		{"no outputs", ok, nil, 900, 0, ErrInvalidOutputs},
		{"zero outputs", ok, []message.Output{{Amount: 0, Script: payee.Script()}}, 900, 0, ErrInvalidOutputs},
		{"bad txid", []Input{{UTXO: badTx, Key: payer.PayKey()}}, outs, 900, 0, ErrInvalidUTXO},
		{"no script", []Input{{UTXO: noScript, Key: payer.PayKey()}}, outs, 900, 0, ErrInvalidUTXO},
		{"no key", []Input{{UTXO: avail[0]}}, outs, 900, 100, ErrSigning},
		{"change without address", ok, outs, 900, 50, ErrInvalidOutputs},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := BuildTxWithChange(tt.inputs, tt.outputs, tt.amount, tt.fees, nil)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestScaleOutputs(t *testing.T) {
	script := []byte{0x51}
	outs := []message.Output{{Amount: 300, Script: script}, {Amount: 700, Script: script}}

	same, err := ScaleOutputs(outs, 1000)
	require.NoError(t, err)
	assert.Equal(t, outs, same)

	up, err := ScaleOutputs(outs, 1501)
	require.NoError(t, err)
	assert.Equal(t, int64(450), up[0].Amount)
	assert.Equal(t, int64(1051), up[1].Amount)
	assert.Equal(t, int64(300), outs[0].Amount)

	single, err := ScaleOutputs(outs[:1], 77)
	require.NoError(t, err)
	assert.Equal(t, int64(77), single[0].Amount)
}

type failingSource struct{}

func (failingSource) UnspentOutputs(context.Context, string, []string) ([]utxo.UTXO, error) {
	return nil, errors.New("offline")
}

func TestBuilderBuildSingleTx(t *testing.T) {
	payer := newKeys(t, "payer")
	payee := newKeys(t, "payee")

	src := utxo.NewStaticSource(wallet.NetworkTest)
	for _, u := range fund(payer, 250000, 250000, 250000) {
		u.Script = nil
		src.Add(u)
	}

	b := NewBuilder(payer, src, nil, nil)
	res, err := b.BuildSingleTx(context.Background(), 600000, 1000,
		[]message.Output{{Amount: 500000, Script: payee.Script()}})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, sumValues(res.Inputs), int64(601000))
	assert.Len(t, res.Inputs, 3)
	assert.Equal(t, int64(600000), res.Tx.TxOut[0].Value)
	assert.Equal(t, int64(149000), res.Change)
	verifyInputs(t, res.Tx, res.Inputs)

	_, err = b.BuildSingleTx(context.Background(), 800000, 0,
		[]message.Output{{Amount: 500000, Script: payee.Script()}})
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	_, err = NewBuilder(payer, failingSource{}, nil, nil).BuildSingleTx(context.Background(), 1, 0,
		[]message.Output{{Amount: 1, Script: payee.Script()}})
	assert.Error(t, err)
}
