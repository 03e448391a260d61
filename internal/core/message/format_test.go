package message

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckFormatValid(t *testing.T) {
	for _, msg := range sampleMessages(t) {
		assert.True(t, CheckFormat(msg, testNetwork), "%s: %v", msg.Type, msg.Errors)
		assert.Equal(t, StatusOK, msg.Status)
		assert.Empty(t, msg.Errors)
	}
}

func TestCheckFormatErrors(t *testing.T) {
	common := Common{Time: 100}
	tests := []struct {
		name    string
		details Details
		network string
	}{
		{"missing time", &CompletionDetails{}, testNetwork},
		{"request network mismatch", &RequestDetails{Common: common, Network: "main", Expires: 200}, testNetwork},
		{"request expiry before time", &RequestDetails{Common: common, Network: testNetwork, Expires: 50}, testNetwork},
		{"ack without outputs", &RequestAckDetails{Common: common, Network: testNetwork, Expires: 200, Amount: 10}, testNetwork},
		{"ack negative amount", &RequestAckDetails{Common: common, Network: testNetwork, Expires: 200, Amount: -1,
			Outputs: []Output{{Amount: 1, Script: []byte{1}}}}, testNetwork},
		{"ack empty script", &RequestAckDetails{Common: common, Network: testNetwork, Expires: 200,
			Outputs: []Output{{Amount: 1}}}, testNetwork},
		{"proposal without tx", &ProposalDetails{Common: common, RefundTo: []Output{{Script: []byte{1}}}}, testNetwork},
		{"proposal garbage tx", &ProposalDetails{Common: common, Transactions: [][]byte{{0x01, 0x02}},
			RefundTo: []Output{{Script: []byte{1}}}}, testNetwork},
		{"proposal negative fees", &ProposalDetails{Common: common, Transactions: [][]byte{rawTx(t)}, Fees: -5,
			RefundTo: []Output{{Script: []byte{1}}}}, testNetwork},
		{"proposal without refund", &ProposalDetails{Common: common, Transactions: [][]byte{rawTx(t)}}, testNetwork},
		{"proposal ack without outputs", &ProposalAckDetails{Common: common, Amount: 5}, testNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := New(tt.details)
			assert.False(t, CheckFormat(msg, tt.network))
			assert.Equal(t, StatusKO, msg.Status)
			assert.NotEmpty(t, msg.Errors)
		})
	}
}

func TestCheckFormatRejectsBadSignature(t *testing.T) {
	msg := New(&CompletionDetails{Common: Common{Time: 1}})
	msg.SignType = SignECDSASHA256
	msg.PubKey = []byte{0x02, 0x01}
	msg.Signature = []byte{0x30}

	assert.False(t, CheckFormat(msg, testNetwork))
	assert.Equal(t, StatusKO, msg.Status)
}

func TestCheckFormatTypeMismatch(t *testing.T) {
	msg := New(&CompletionDetails{Common: Common{Time: 1}})
	msg.Type = TypeProposal
	assert.False(t, CheckFormat(msg, testNetwork))
	assert.False(t, CheckFormat(nil, testNetwork))
}
