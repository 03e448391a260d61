package wallet

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg"
)

// 支持的网络名称
const (
	NetworkMain    = "main"
	NetworkTest    = "test"
	NetworkRegtest = "regtest"
)

// NetworkParams 网络名称到链参数的映射
func NetworkParams(network string) (*chaincfg.Params, error) {
	switch network {
	case NetworkMain:
		return &chaincfg.MainNetParams, nil
	case NetworkTest:
		return &chaincfg.TestNet3Params, nil
	case NetworkRegtest:
		return &chaincfg.RegressionNetParams, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownNetwork, network)
	}
}

// coinType BIP-44 币种编号，主网为 0，其余网络为 1
func coinType(network string) uint32 {
	if network == NetworkMain {
		return 0
	}
	return 1
}
