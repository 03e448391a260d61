package exchange

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	exchangeconfig "github.com/weisyn/bargain/internal/config/exchange"
	negotiationconfig "github.com/weisyn/bargain/internal/config/negotiation"
	"github.com/weisyn/bargain/internal/core/engine"
	infraclock "github.com/weisyn/bargain/internal/core/infrastructure/clock"
	"github.com/weisyn/bargain/internal/core/message"
	"github.com/weisyn/bargain/internal/core/negotiation"
	"github.com/weisyn/bargain/internal/core/txbuilder"
	"github.com/weisyn/bargain/internal/core/wallet"
	"github.com/weisyn/bargain/internal/core/wallet/utxo"
	"github.com/weisyn/bargain/internal/testutil/payee"
)

type harness struct {
	server *payee.Server
	engine *engine.Engine
	driver *Driver
	nego   *negotiation.Negotiation
}

func newHarness(t *testing.T, opts *exchangeconfig.ExchangeOptions) *harness {
	t.Helper()
	clk := infraclock.NewMockClock(time.Unix(1_700_000_000, 0))
	keys, err := wallet.NewFromPassphrases(wallet.NetworkTest, "payer", "payer sign")
	require.NoError(t, err)
	payeeKeys, err := wallet.NewFromPassphrases(wallet.NetworkTest, "payee", "payee sign")
	require.NoError(t, err)

	src := utxo.NewStaticSource(wallet.NetworkTest)
	src.Add(utxo.UTXO{TxID: strings.Repeat("ab", 32), Value: 1_000_000, Script: keys.Script(), Address: keys.AddressString()})

	srv := payee.NewServer(payee.Config{
		Network: wallet.NetworkTest,
		Script:  payeeKeys.Script(),
		Ask:     500000,
		Floor:   400000,
	}, clk)
	t.Cleanup(srv.Close)

	if opts == nil {
		opts = exchangeconfig.New(nil).GetOptions()
	}
	opts.InitialURI = srv.InitialURI()

	codec := message.NewProtoCodec()
	eng := engine.New(keys, codec, txbuilder.NewBuilder(keys, src, nil, nil), clk,
		&negotiationconfig.NegotiationOptions{RequestTTL: 30 * time.Minute}, nil)
	return &harness{
		server: srv,
		engine: eng,
		driver: New(opts, codec, nil),
		nego:   negotiation.New("nego-7", message.RolePayer, wallet.NetworkTest, clk.Unix()),
	}
}

func (h *harness) next(t *testing.T, amount int64) *message.Message {
	t.Helper()
	msg, errs := h.engine.Process(context.Background(), h.nego, "", amount, 1000)
	require.Empty(t, errs)
	return msg
}

func (h *harness) uri() string {
	if h.nego.Len() == 0 {
		return h.driver.InitialURI()
	}
	return h.nego.BargainURIForRole(message.RolePayer)
}

func (h *harness) exchange(t *testing.T, amount int64) (*Outcome, error) {
	t.Helper()
	uri := h.uri()
	return h.driver.Exchange(context.Background(), h.nego, h.next(t, amount), uri)
}

func TestExchangeRequest(t *testing.T) {
	h := newHarness(t, nil)

	out, err := h.exchange(t, 0)
	require.NoError(t, err)
	require.NotNil(t, out.Received)
	assert.False(t, out.Duplicate)
	assert.Equal(t, message.TypeRequestAck, out.Received.Type)
	assert.Equal(t, message.StatusOK, out.Received.Status, out.Received.Errors)
	assert.Equal(t, 2, h.nego.Len())
	assert.Equal(t, h.server.URL+"/nego", h.nego.BargainURIForRole(message.RolePayer))

	xs := h.server.Exchanges()
	require.Len(t, xs, 1)
	assert.Equal(t, "application/bitcoin-bargainingrequest", xs[0].ContentType)
	assert.Equal(t, "binary", xs[0].TransferEncode)
	assert.Equal(t, "application/bitcoin-bargainingrequestack,application/bitcoin-bargainingcancellation", xs[0].Accept)
	assert.Equal(t, http.StatusOK, xs[0].ResponseStatus)
}

func TestExchangeFullNegotiation(t *testing.T) {
	h := newHarness(t, nil)

	_, err := h.exchange(t, 0)
	require.NoError(t, err)

	out, err := h.exchange(t, 450000)
	require.NoError(t, err)
	assert.Equal(t, message.TypeProposalAck, out.Received.Type)

	amount, _ := out.Received.Amount()
	out, err = h.exchange(t, amount)
	require.NoError(t, err)
	assert.Equal(t, message.TypeCompletion, out.Received.Type)
	assert.Equal(t, negotiation.StatusCompleted, h.nego.Status())

	xs := h.server.Exchanges()
	require.Len(t, xs, 3)
	assert.Equal(t, "application/bitcoin-bargainingproposal", xs[1].ContentType)
	assert.Equal(t, "application/bitcoin-bargainingproposalack,application/bitcoin-bargainingcompletion,application/bitcoin-bargainingcancellation", xs[1].Accept)
}

func TestExchangeCancellation(t *testing.T) {
	h := newHarness(t, nil)
	_, err := h.exchange(t, 0)
	require.NoError(t, err)

	out, err := h.exchange(t, 0)
	require.NoError(t, err)
	assert.Nil(t, out.Received)
	assert.Equal(t, message.TypeCancellation, out.Sent.Type)
	assert.Equal(t, negotiation.StatusCancelled, h.nego.Status())
	assert.Empty(t, h.server.Exchanges()[1].Accept)
}

func TestExchangeTerminalResponseHeaders(t *testing.T) {
	h := newHarness(t, nil)
	_, err := h.exchange(t, 0)
	require.NoError(t, err)

	h.server.SetOverride(func(c *gin.Context) { c.String(http.StatusOK, "cancelled") })
	out, err := h.exchange(t, 0)
	assert.Nil(t, out)
	require.ErrorIs(t, err, ErrFormat)
	assert.Equal(t, msgProcessing, UserMessage(err))

	// 取消消息在发送前已写入
	assert.Equal(t, negotiation.StatusCancelled, h.nego.Status())
	assert.Equal(t, 3, h.nego.Len())
}

func TestExchangeRemoteErrors(t *testing.T) {
	h := newHarness(t, nil)
	h.server.SetOverride(func(c *gin.Context) { c.String(http.StatusInternalServerError, "boom") })

	out, err := h.exchange(t, 0)
	assert.Nil(t, out)
	require.ErrorIs(t, err, ErrRemote)

	var remote *RemoteError
	require.True(t, errors.As(err, &remote))
	assert.Equal(t, http.StatusInternalServerError, remote.StatusCode)
	assert.Equal(t, "boom", remote.Body)
	assert.Equal(t, msgRemote, UserMessage(err))

	// 发送前已追加，收款方应答未写入
	assert.Equal(t, 1, h.nego.Len())
}

func TestExchangeTimeout(t *testing.T) {
	opts := exchangeconfig.New(nil).GetOptions()
	opts.RequestTimeout = 50 * time.Millisecond
	h := newHarness(t, opts)
	h.server.SetOverride(func(c *gin.Context) {
		time.Sleep(300 * time.Millisecond)
		c.Status(http.StatusOK)
	})

	_, err := h.exchange(t, 0)
	assert.ErrorIs(t, err, ErrRemote)
	assert.Equal(t, 1, h.nego.Len())
}

func TestExchangeUnreachable(t *testing.T) {
	h := newHarness(t, nil)
	msg := h.next(t, 0)
	_, err := h.driver.Exchange(context.Background(), h.nego, msg, "http://127.0.0.1:1/bargain")
	assert.ErrorIs(t, err, ErrRemote)
}

func TestExchangeFormatErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler gin.HandlerFunc
	}{
		{"missing transfer encoding", func(c *gin.Context) {
			c.Data(http.StatusOK, message.TypeRequestAck.MediaType(), []byte{0x08, 0x01})
		}},
		{"unknown content type", func(c *gin.Context) {
			c.Header("Content-Transfer-Encoding", "binary")
			c.Data(http.StatusOK, "text/plain", []byte("hello"))
		}},
		{"type not accepted", func(c *gin.Context) {
			c.Header("Content-Transfer-Encoding", "binary")
			c.Data(http.StatusOK, message.TypeCompletion.MediaType(), []byte{0x08, 0x01})
		}},
		{"undecodable payload", func(c *gin.Context) {
			c.Header("Content-Transfer-Encoding", "binary")
			c.Data(http.StatusOK, message.TypeRequestAck.MediaType(), []byte{0xff, 0xff})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, nil)
			h.server.SetOverride(tt.handler)
			_, err := h.exchange(t, 0)
			assert.ErrorIs(t, err, ErrFormat)
			assert.Equal(t, msgProcessing, UserMessage(err))
			assert.Equal(t, 1, h.nego.Len())
		})
	}
}

func TestExchangeMalformedPolicy(t *testing.T) {
	badNetwork := func(m *message.Message) {
		if d, ok := m.Details.(*message.RequestAckDetails); ok {
			d.Network = wallet.NetworkMain
		}
	}

	t.Run("append", func(t *testing.T) {
		h := newHarness(t, nil)
		h.server.Payee().SetMutate(badNetwork)
		out, err := h.exchange(t, 0)
		require.NoError(t, err)
		assert.Equal(t, message.StatusKO, out.Received.Status)
		assert.NotEmpty(t, out.Received.Errors)
		assert.Equal(t, 2, h.nego.Len())
	})

	t.Run("reject", func(t *testing.T) {
		opts := exchangeconfig.New(nil).GetOptions()
		opts.AppendMalformed = false
		h := newHarness(t, opts)
		h.server.Payee().SetMutate(badNetwork)
		_, err := h.exchange(t, 0)
		assert.ErrorIs(t, err, ErrFormat)
		assert.Equal(t, 1, h.nego.Len())
	})
}

func TestExchangeDuplicateResponse(t *testing.T) {
	h := newHarness(t, nil)
	_, err := h.exchange(t, 0)
	require.NoError(t, err)
	out, err := h.exchange(t, 450000)
	require.NoError(t, err)
	counter := out.Received

	h.server.SetOverride(func(c *gin.Context) {
		c.Header("Content-Transfer-Encoding", "binary")
		c.Data(http.StatusOK, counter.Type.MediaType(), counter.Payload)
	})
	out, err = h.exchange(t, 460000)
	require.NoError(t, err)
	assert.True(t, out.Duplicate)
	assert.Nil(t, out.Received)
	assert.Equal(t, 5, h.nego.Len())
}

func TestExchangeRejectsUnsendable(t *testing.T) {
	h := newHarness(t, nil)

	_, err := h.driver.Exchange(context.Background(), h.nego, message.New(&message.CancellationDetails{}), h.uri())
	assert.ErrorIs(t, err, ErrProcessing)

	_, err = h.exchange(t, 0)
	require.NoError(t, err)

	// 链上已有 REQUEST，再次追加违反顺序
	req := message.New(&message.RequestDetails{})
	req.Payload = []byte{0x01}
	_, err = h.driver.Exchange(context.Background(), h.nego, req, h.uri())
	assert.ErrorIs(t, err, ErrProcessing)
	assert.ErrorIs(t, err, negotiation.ErrChainOrder)

	_, err = h.driver.Send(context.Background(), h.nego, h.nego.LastMessage(), "")
	assert.ErrorIs(t, err, ErrProcessing)
}

func TestUserMessage(t *testing.T) {
	assert.Empty(t, UserMessage(nil))
	assert.Equal(t, msgRemote, UserMessage(&RemoteError{StatusCode: 502}))
	assert.Equal(t, msgProcessing, UserMessage(ErrProcessing))
	assert.Contains(t, (&RemoteError{StatusCode: 404}).Error(), "404")
}
