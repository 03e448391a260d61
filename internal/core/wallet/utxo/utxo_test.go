package utxo_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	walletconfig "github.com/weisyn/bargain/internal/config/wallet"
	"github.com/weisyn/bargain/internal/core/wallet"
	"github.com/weisyn/bargain/internal/core/wallet/utxo"
)

func testAddress(t *testing.T, phrase string) string {
	t.Helper()
	ks, err := wallet.NewFromPassphrases(wallet.NetworkTest, phrase, "sign")
	require.NoError(t, err)
	return ks.AddressString()
}

func esploraOptions(url string) *walletconfig.WalletOptions {
	return &walletconfig.WalletOptions{
		EsploraURL:     url,
		RequestTimeout: 2 * time.Second,
		Breaker: walletconfig.BreakerOptions{
			MaxRequests:         1,
			Interval:            time.Minute,
			Timeout:             time.Minute,
			ConsecutiveFailures: 2,
		},
	}
}

func txid(b byte) string {
	return strings.Repeat(fmt.Sprintf("%02x", b), 32)
}

func TestStaticSource(t *testing.T) {
	src := utxo.NewStaticSource("test")
	src.Add(
		utxo.UTXO{TxID: txid(1), Value: 100, Address: "a"},
		utxo.UTXO{TxID: txid(2), Value: 200, Address: "b"},
		utxo.UTXO{TxID: txid(3), Value: 300, Address: "a"},
	)

	got, err := src.UnspentOutputs(context.Background(), "test", []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, int64(100), got[0].Value)
	assert.Equal(t, int64(300), got[1].Value)
	assert.Equal(t, int64(200), got[2].Value)

	_, err = src.UnspentOutputs(context.Background(), "main", []string{"a"})
	assert.ErrorIs(t, err, utxo.ErrNetworkMismatch)

	bal, err := utxo.Balance(context.Background(), src, "test", []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, int64(400), bal)

	src.Reset()
	bal, err = utxo.Balance(context.Background(), src, "test", []string{"a", "b"})
	require.NoError(t, err)
	assert.Zero(t, bal)
}

func TestBalanceNoAddresses(t *testing.T) {
	bal, err := utxo.Balance(context.Background(), utxo.NewStaticSource("test"), "main", nil)
	require.NoError(t, err)
	assert.Zero(t, bal)
}

func TestEsploraSource(t *testing.T) {
	addrA := testAddress(t, "alpha")
	addrB := testAddress(t, "beta")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/address/" + addrA + "/utxo":
			fmt.Fprintf(w, `[{"txid":%q,"vout":1,"value":5000,"status":{"confirmed":true}}]`, txid(0xaa))
		case "/address/" + addrB + "/utxo":
			fmt.Fprintf(w, `[{"txid":%q,"vout":0,"value":700,"status":{"confirmed":false}},{"txid":%q,"vout":2,"value":300,"status":{"confirmed":true}}]`, txid(0xbb), txid(0xcc))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	src := utxo.NewEsploraSource("test", &chaincfg.TestNet3Params, esploraOptions(srv.URL+"/"), nil)
	got, err := src.UnspentOutputs(context.Background(), "test", []string{addrA, addrB})
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, txid(0xaa), got[0].TxID)
	assert.Equal(t, uint32(1), got[0].Vout)
	assert.True(t, got[0].Confirmed)
	assert.Equal(t, addrA, got[0].Address)
	assert.NotEmpty(t, got[0].Script)

	assert.Equal(t, int64(700), got[1].Value)
	assert.False(t, got[1].Confirmed)
	assert.Equal(t, addrB, got[2].Address)

	ks, err := wallet.NewFromPassphrases(wallet.NetworkTest, "alpha", "sign")
	require.NoError(t, err)
	assert.Equal(t, ks.Script(), got[0].Script)
}

func TestEsploraSourceErrors(t *testing.T) {
	addr := testAddress(t, "alpha")

	t.Run("network mismatch", func(t *testing.T) {
		src := utxo.NewEsploraSource("test", &chaincfg.TestNet3Params, esploraOptions("http://127.0.0.1:1"), nil)
		_, err := src.UnspentOutputs(context.Background(), "main", []string{addr})
		assert.ErrorIs(t, err, utxo.ErrNetworkMismatch)
	})

	t.Run("bad address", func(t *testing.T) {
		src := utxo.NewEsploraSource("test", &chaincfg.TestNet3Params, esploraOptions("http://127.0.0.1:1"), nil)
		_, err := src.UnspentOutputs(context.Background(), "test", []string{"not-an-address"})
		assert.Error(t, err)
	})

	t.Run("bad json", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("{"))
		}))
		defer srv.Close()
		src := utxo.NewEsploraSource("test", &chaincfg.TestNet3Params, esploraOptions(srv.URL), nil)
		_, err := src.UnspentOutputs(context.Background(), "test", []string{addr})
		assert.ErrorIs(t, err, utxo.ErrBadResponse)
	})

	t.Run("bad txid", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[{"txid":"zz","vout":0,"value":1}]`))
		}))
		defer srv.Close()
		src := utxo.NewEsploraSource("test", &chaincfg.TestNet3Params, esploraOptions(srv.URL), nil)
		_, err := src.UnspentOutputs(context.Background(), "test", []string{addr})
		assert.ErrorIs(t, err, utxo.ErrBadResponse)
	})
}

func TestEsploraBreakerOpens(t *testing.T) {
	addr := testAddress(t, "alpha")
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	src := utxo.NewEsploraSource("test", &chaincfg.TestNet3Params, esploraOptions(srv.URL), nil)
	for i := 0; i < 2; i++ {
		_, err := src.UnspentOutputs(context.Background(), "test", []string{addr})
		assert.ErrorIs(t, err, utxo.ErrUnavailable)
	}

	_, err := src.UnspentOutputs(context.Background(), "test", []string{addr})
	require.ErrorIs(t, err, utxo.ErrUnavailable)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

type countingSource struct {
	calls int32
	inner utxo.Source
	fail  error
}

func (c *countingSource) UnspentOutputs(ctx context.Context, network string, addresses []string) ([]utxo.UTXO, error) {
	atomic.AddInt32(&c.calls, 1)
	if c.fail != nil {
		return nil, c.fail
	}
	return c.inner.UnspentOutputs(ctx, network, addresses)
}

func TestCachedSource(t *testing.T) {
	static := utxo.NewStaticSource("test")
	static.Add(utxo.UTXO{TxID: txid(1), Vout: 3, Value: 42, Address: "a", Script: []byte{0x51}})
	next := &countingSource{inner: static}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cached, err := utxo.NewCachedSource(ctx, next, time.Minute)
	require.NoError(t, err)
	defer cached.Close()

	first, err := cached.UnspentOutputs(ctx, "test", []string{"a", "b"})
	require.NoError(t, err)
	second, err := cached.UnspentOutputs(ctx, "test", []string{"b", "a"})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&next.calls))

	require.NoError(t, cached.Invalidate())
	_, err = cached.UnspentOutputs(ctx, "test", []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&next.calls))
}

func TestCachedSourceDoesNotCacheErrors(t *testing.T) {
	next := &countingSource{fail: errors.New("down")}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cached, err := utxo.NewCachedSource(ctx, next, time.Minute)
	require.NoError(t, err)
	defer cached.Close()

	for i := 0; i < 2; i++ {
		_, err := cached.UnspentOutputs(ctx, "test", []string{"a"})
		assert.Error(t, err)
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(&next.calls))
}
