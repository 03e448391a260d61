package message

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testNetwork = "test"

func testKey(t *testing.T, phrase string) *btcec.PrivateKey {
	t.Helper()
	sum := sha256.Sum256([]byte(phrase))
	priv, _ := btcec.PrivKeyFromBytes(sum[:])
	return priv
}

func rawTx(t *testing.T) []byte {
	t.Helper()
	tx := wire.NewMsgTx(wire.TxVersion)
	tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(&chainhash.Hash{1}, 0), []byte{0x51}, nil))
	tx.AddTxOut(wire.NewTxOut(1000, []byte{0x76, 0xa9}))
	var buf bytes.Buffer
	require.NoError(t, tx.Serialize(&buf))
	return buf.Bytes()
}

func sampleMessages(t *testing.T) []*Message {
	common := Common{Time: 1_700_000_000, PayerData: `{"nid":"n1"}`, PayeeData: "seller-42", Memo: "hello"}
	return []*Message{
		New(&RequestDetails{Common: common, Network: testNetwork, Expires: 1_700_001_800, BargainURI: "http://payer/cb"}),
		New(&RequestAckDetails{Common: common, Network: testNetwork, Expires: 1_700_001_800, BargainURI: "http://payee/bargain",
			Amount: 500000, Outputs: []Output{{Amount: 300000, Script: []byte{0x76}}, {Amount: 200000, Script: []byte{0xa9}}}}),
		New(&ProposalDetails{Common: common, Transactions: [][]byte{rawTx(t)}, RefundTo: []Output{{Script: []byte{0x76}}},
			Amount: 600000, Fees: 1000, Redeemable: true}),
		New(&ProposalAckDetails{Common: common, Amount: 550000, Outputs: []Output{{Amount: 550000, Script: []byte{0x76}}}}),
		New(&CompletionDetails{Common: common}),
		New(&CancellationDetails{Common: common}),
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	codec := NewProtoCodec()
	for _, msg := range sampleMessages(t) {
		t.Run(string(msg.Type), func(t *testing.T) {
			payload, err := codec.Serialize(msg)
			require.NoError(t, err)

			decoded, err := codec.Deserialize(payload)
			require.NoError(t, err)
			assert.Equal(t, msg.Type, decoded.Type)
			assert.Equal(t, msg.Details, decoded.Details)
			assert.Equal(t, StatusUndetermined, decoded.Status)
			assert.Equal(t, payload, decoded.Payload)

			again, err := codec.Serialize(decoded)
			require.NoError(t, err)
			assert.Equal(t, payload, again, "编码应当确定")
		})
	}
}

func TestDeserializeErrors(t *testing.T) {
	codec := NewProtoCodec()

	_, err := codec.Deserialize(nil)
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = codec.Deserialize([]byte{0xff, 0xff, 0xff})
	assert.ErrorIs(t, err, ErrMalformed)

	var e encoder
	e.putVarint(fieldVersion, envelopeVersion)
	e.putString(fieldType, "bargainingunknown")
	_, err = codec.Deserialize(e.b)
	assert.ErrorIs(t, err, ErrUnknownType)

	var v encoder
	v.putVarint(fieldVersion, 9)
	v.putString(fieldType, string(TypeCompletion))
	_, err = codec.Deserialize(v.b)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestSignAndVerify(t *testing.T) {
	codec := NewProtoCodec()
	priv := testKey(t, "signer")
	msgs := sampleMessages(t)

	first := msgs[0]
	require.NoError(t, codec.Sign(first, nil, SignECDSASHA256, priv.PubKey(), priv))
	assert.Nil(t, first.PrevHash)
	first.Payload, _ = codec.Serialize(first)

	second := msgs[1]
	require.NoError(t, codec.Sign(second, first, SignECDSASHA256, nil, priv))
	assert.Equal(t, first.Hash(), second.PrevHash)
	payload, err := codec.Serialize(second)
	require.NoError(t, err)

	decoded, err := codec.Deserialize(payload)
	require.NoError(t, err)
	assert.NoError(t, VerifySignature(decoded))
	assert.True(t, codec.CheckFormat(decoded, testNetwork))

	// 篡改 details 后签名失效
	decoded.Details.(*RequestAckDetails).Amount = 1
	assert.ErrorIs(t, VerifySignature(decoded), ErrSignature)
}

func TestSignRejects(t *testing.T) {
	codec := NewProtoCodec()
	priv := testKey(t, "a")
	other := testKey(t, "b")
	msg := sampleMessages(t)[0]

	assert.ErrorIs(t, codec.Sign(msg, nil, SignNone, nil, priv), ErrUnsupportedSignType)
	assert.ErrorIs(t, codec.Sign(msg, nil, SignECDSASHA256, other.PubKey(), priv), ErrSignature)
	assert.ErrorIs(t, codec.Sign(msg, nil, SignECDSASHA256, nil, nil), ErrSignature)
	assert.ErrorIs(t, codec.Sign(nil, nil, SignECDSASHA256, nil, priv), ErrNilMessage)
}

func TestMediaTypes(t *testing.T) {
	typ, err := ParseMediaType("application/bitcoin-bargainingrequestack; charset=binary")
	require.NoError(t, err)
	assert.Equal(t, TypeRequestAck, typ)

	typ, err = ParseMediaType("text/plain;application/bitcoin-bargainingcompletion")
	require.NoError(t, err)
	assert.Equal(t, TypeCompletion, typ)

	_, err = ParseMediaType("application/json")
	assert.ErrorIs(t, err, ErrUnknownType)

	assert.Equal(t,
		"application/bitcoin-bargainingproposal,application/bitcoin-bargainingcancellation",
		JoinMediaTypes([]Type{TypeProposal, TypeCancellation}))
}

func TestTypeAuthor(t *testing.T) {
	tests := []struct {
		typ      Type
		author   Role
		terminal bool
	}{
		{TypeRequest, RolePayer, false},
		{TypeRequestAck, RolePayee, false},
		{TypeProposal, RolePayer, false},
		{TypeProposalAck, RolePayee, false},
		{TypeCompletion, RolePayee, true},
		{TypeCancellation, RoleNone, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.author, tt.typ.Author(), tt.typ)
		assert.Equal(t, tt.terminal, tt.typ.IsTerminal(), tt.typ)
	}
	assert.Equal(t, RolePayee, RolePayer.Counterpart())
	assert.Equal(t, RoleNone, RoleNone.Counterpart())
}

func TestJSONPersistsPayloadAndStatus(t *testing.T) {
	codec := NewProtoCodec()
	msg := sampleMessages(t)[1]
	var err error
	msg.Payload, err = codec.Serialize(msg)
	require.NoError(t, err)
	msg.Fail("amount mismatch")

	data, err := json.Marshal(msg)
	require.NoError(t, err)

	var restored Message
	require.NoError(t, json.Unmarshal(data, &restored))
	assert.Equal(t, StatusKO, restored.Status)
	assert.Equal(t, []string{"amount mismatch"}, restored.Errors)
	assert.Equal(t, msg.Details, restored.Details)
	assert.Equal(t, msg.Hash(), restored.Hash())

	_, err = json.Marshal(New(&CompletionDetails{}))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestAmountAndOutputs(t *testing.T) {
	msgs := sampleMessages(t)
	amount, ok := msgs[1].Amount()
	assert.True(t, ok)
	assert.Equal(t, int64(500000), amount)
	assert.Len(t, msgs[1].Outputs(), 2)

	_, ok = msgs[0].Amount()
	assert.False(t, ok)
	assert.Nil(t, msgs[4].Outputs())
	assert.Equal(t, "seller-42", msgs[5].Common().PayeeData)
}
