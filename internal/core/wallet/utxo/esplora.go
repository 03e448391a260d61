package utxo

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/sony/gobreaker"
	"golang.org/x/sync/errgroup"

	walletconfig "github.com/weisyn/bargain/internal/config/wallet"
	"github.com/weisyn/bargain/pkg/interfaces/infrastructure/log"
)

// maxParallelLookups 同时查询的地址数上限
const maxParallelLookups = 4

// esploraUTXO GET /address/:address/utxo 的响应元素
type esploraUTXO struct {
	TxID   string `json:"txid"`
	Vout   uint32 `json:"vout"`
	Value  int64  `json:"value"`
	Status struct {
		Confirmed bool `json:"confirmed"`
	} `json:"status"`
}

// EsploraSource 基于 Esplora REST API 的数据源
type EsploraSource struct {
	baseURL    string
	network    string
	params     *chaincfg.Params
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     log.Logger
}

// NewEsploraSource 创建 Esplora 数据源
func NewEsploraSource(network string, params *chaincfg.Params, opts *walletconfig.WalletOptions, logger log.Logger) *EsploraSource {
	s := &EsploraSource{
		baseURL: strings.TrimRight(opts.EsploraURL, "/"),
		network: network,
		params:  params,
		httpClient: &http.Client{
			Timeout: opts.RequestTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger: logger,
	}
	b := opts.Breaker
	s.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "esplora",
		MaxRequests: b.MaxRequests,
		Interval:    b.Interval,
		Timeout:     b.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= b.ConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if s.logger != nil {
				s.logger.Warnf("circuit breaker %s: %s -> %s", name, from, to)
			}
		},
	})
	return s
}

// UnspentOutputs 并发查询每个地址，结果按地址顺序拼接
func (s *EsploraSource) UnspentOutputs(ctx context.Context, network string, addresses []string) ([]UTXO, error) {
	if network != s.network {
		return nil, fmt.Errorf("%w: %q vs %q", ErrNetworkMismatch, network, s.network)
	}

	results := make([][]UTXO, len(addresses))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelLookups)
	for i, addr := range addresses {
		i, addr := i, addr
		g.Go(func() error {
			utxos, err := s.lookup(gctx, addr)
			if err != nil {
				return err
			}
			results[i] = utxos
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []UTXO
	for _, r := range results {
		out = append(out, r...)
	}
	return out, nil
}

// lookup 经过熔断器查询单个地址
func (s *EsploraSource) lookup(ctx context.Context, addr string) ([]UTXO, error) {
	decoded, err := btcutil.DecodeAddress(addr, s.params)
	if err != nil {
		return nil, fmt.Errorf("decode address %s: %w", addr, err)
	}
	script, err := txscript.PayToAddrScript(decoded)
	if err != nil {
		return nil, fmt.Errorf("script for %s: %w", addr, err)
	}

	raw, err := s.breaker.Execute(func() (interface{}, error) {
		return s.fetch(ctx, addr)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return nil, err
	}

	entries := raw.([]esploraUTXO)
	out := make([]UTXO, 0, len(entries))
	for _, e := range entries {
		if _, err := hex.DecodeString(e.TxID); err != nil || len(e.TxID) != 64 {
			return nil, fmt.Errorf("%w: txid %q", ErrBadResponse, e.TxID)
		}
		out = append(out, UTXO{
			TxID:      e.TxID,
			Vout:      e.Vout,
			Value:     e.Value,
			Script:    script,
			Address:   addr,
			Confirmed: e.Status.Confirmed,
		})
	}
	return out, nil
}

func (s *EsploraSource) fetch(ctx context.Context, addr string) ([]esploraUTXO, error) {
	endpoint := fmt.Sprintf("%s/address/%s/utxo", s.baseURL, url.PathEscape(addr))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: http %d: %s", ErrUnavailable, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var entries []esploraUTXO
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	return entries, nil
}
