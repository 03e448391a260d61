package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infraclock "github.com/weisyn/bargain/internal/core/infrastructure/clock"
	"github.com/weisyn/bargain/internal/core/message"
	"github.com/weisyn/bargain/internal/core/negotiation"
	"github.com/weisyn/bargain/internal/core/wallet"
	"github.com/weisyn/bargain/internal/testutil/payee"
	"github.com/weisyn/bargain/pkg/types"
)

func ptr[T any](v T) *T { return &v }

func testConfig(initialURI string) *types.AppConfig {
	return &types.AppConfig{
		Log: &types.UserLogConfig{Level: ptr("error")},
		Wallet: &types.UserWalletConfig{
			Network:     ptr(wallet.NetworkTest),
			UTXOSource:  ptr("static"),
			CacheTTLSec: ptr(0),
		},
		Exchange: &types.UserExchangeConfig{InitialURI: ptr(initialURI)},
		Store:    &types.UserStoreConfig{Backend: ptr("memory")},
	}
}

func TestStartWiresPayerService(t *testing.T) {
	srv := payee.NewServer(payee.Config{
		Network: wallet.NetworkTest,
		Script:  []byte{0x51},
		Ask:     10000,
		Floor:   9000,
	}, infraclock.NewSystemClock())
	defer srv.Close()

	a, err := Start(WithAppConfig(testConfig(srv.InitialURI())))
	require.NoError(t, err)
	defer func() { assert.NoError(t, a.Stop()) }()

	svc := a.Service()
	require.NotNil(t, svc)
	assert.NotEmpty(t, svc.Address())

	report, err := svc.Start(context.Background())
	require.NoError(t, err)
	require.NotNil(t, report.Received)
	assert.Equal(t, message.TypeRequestAck, report.Received.Type)

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, negotiation.StatusNegotiation, list[0].Status())

	// 静态来源没有 UTXO
	balance, err := svc.Balance(context.Background())
	require.NoError(t, err)
	assert.Zero(t, balance)
}

func TestStartRejectsUnknownBackend(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1/bargain")
	cfg.Store.Backend = ptr("etcd")
	_, err := Start(WithAppConfig(cfg))
	assert.Error(t, err)
}

func TestLoadAppConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"store":{"backend":"memory"}}`), 0o600))

	cfg, err := loadAppConfig(newOptions(WithConfigFile(path)))
	require.NoError(t, err)
	require.NotNil(t, cfg.Store)
	assert.Equal(t, "memory", *cfg.Store.Backend)

	t.Setenv(ConfigPathEnv, filepath.Join(t.TempDir(), "missing.json"))
	_, err = loadAppConfig(newOptions(WithConfigFile(path)))
	assert.Error(t, err)

	explicit := &types.AppConfig{}
	cfg, err = loadAppConfig(newOptions(WithAppConfig(explicit), WithConfigFile(path)))
	require.NoError(t, err)
	assert.Same(t, explicit, cfg)
}
