// Package wallet 提供付款方的密钥、地址与输出脚本
//
// KeyStore 在启动时构造一次，之后只读，由决策引擎与交易构建器共享。
package wallet

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/tyler-smith/go-bip39"

	walletconfig "github.com/weisyn/bargain/internal/config/wallet"
)

var (
	// ErrUnknownNetwork 未知的网络名称
	ErrUnknownNetwork = errors.New("unknown network")
	// ErrInvalidMnemonic 助记词校验失败
	ErrInvalidMnemonic = errors.New("invalid mnemonic")
	// ErrEmptyPassphrase 口令为空
	ErrEmptyPassphrase = errors.New("passphrase is empty")
)

// KeyStore 付款方密钥材料（不可变）
type KeyStore struct {
	network string
	params  *chaincfg.Params

	payKey  *btcec.PrivateKey
	address *btcutil.AddressPubKeyHash
	script  []byte

	signKey *btcec.PrivateKey
}

// New 根据配置构造 KeyStore：助记词优先，否则使用口令
func New(opts *walletconfig.WalletOptions) (*KeyStore, error) {
	if opts.Mnemonic != "" {
		return NewFromMnemonic(opts.Network, opts.Mnemonic, "")
	}
	return NewFromPassphrases(opts.Network, opts.Passphrase, opts.SignPassphrase)
}

// NewFromPassphrases 以口令的 SHA-256 作为私钥
func NewFromPassphrases(network, payPhrase, signPhrase string) (*KeyStore, error) {
	if payPhrase == "" || signPhrase == "" {
		return nil, ErrEmptyPassphrase
	}
	payKey, _ := btcec.PrivKeyFromBytes(sha256Bytes(payPhrase))
	signKey, _ := btcec.PrivKeyFromBytes(sha256Bytes(signPhrase))
	return newKeyStore(network, payKey, signKey)
}

// NewFromMnemonic 按 BIP-44 派生：m/44'/coin'/0'/0/0 用于支付，m/44'/coin'/0'/1/0 用于消息签名
func NewFromMnemonic(network, mnemonic, password string) (*KeyStore, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, ErrInvalidMnemonic
	}
	params, err := NetworkParams(network)
	if err != nil {
		return nil, err
	}
	master, err := hdkeychain.NewMaster(bip39.NewSeed(mnemonic, password), params)
	if err != nil {
		return nil, fmt.Errorf("derive master key: %w", err)
	}
	account, err := derivePath(master,
		hdkeychain.HardenedKeyStart+44,
		hdkeychain.HardenedKeyStart+coinType(network),
		hdkeychain.HardenedKeyStart+0,
	)
	if err != nil {
		return nil, err
	}
	payKey, err := deriveKey(account, 0, 0)
	if err != nil {
		return nil, err
	}
	signKey, err := deriveKey(account, 1, 0)
	if err != nil {
		return nil, err
	}
	return newKeyStore(network, payKey, signKey)
}

func derivePath(key *hdkeychain.ExtendedKey, path ...uint32) (*hdkeychain.ExtendedKey, error) {
	var err error
	for _, idx := range path {
		if key, err = key.Derive(idx); err != nil {
			return nil, fmt.Errorf("derive child %d: %w", idx, err)
		}
	}
	return key, nil
}

func deriveKey(account *hdkeychain.ExtendedKey, branch, index uint32) (*btcec.PrivateKey, error) {
	child, err := derivePath(account, branch, index)
	if err != nil {
		return nil, err
	}
	return child.ECPrivKey()
}

func newKeyStore(network string, payKey, signKey *btcec.PrivateKey) (*KeyStore, error) {
	params, err := NetworkParams(network)
	if err != nil {
		return nil, err
	}
	addr, err := btcutil.NewAddressPubKeyHash(btcutil.Hash160(payKey.PubKey().SerializeCompressed()), params)
	if err != nil {
		return nil, fmt.Errorf("build address: %w", err)
	}
	script, err := txscript.PayToAddrScript(addr)
	if err != nil {
		return nil, fmt.Errorf("build output script: %w", err)
	}
	return &KeyStore{
		network: network,
		params:  params,
		payKey:  payKey,
		address: addr,
		script:  script,
		signKey: signKey,
	}, nil
}

func sha256Bytes(s string) []byte {
	sum := sha256.Sum256([]byte(s))
	return sum[:]
}

// Network 网络名称
func (k *KeyStore) Network() string { return k.network }

// Params 链参数
func (k *KeyStore) Params() *chaincfg.Params { return k.params }

// Address 付款地址（P2PKH，压缩公钥）
func (k *KeyStore) Address() btcutil.Address { return k.address }

// AddressString 付款地址的字符串形式
func (k *KeyStore) AddressString() string { return k.address.EncodeAddress() }

// Script 付款地址的输出脚本（找零与退款也使用该脚本）
func (k *KeyStore) Script() []byte {
	out := make([]byte, len(k.script))
	copy(out, k.script)
	return out
}

// PayKey 花费 UTXO 的私钥
func (k *KeyStore) PayKey() *btcec.PrivateKey { return k.payKey }

// SignKey 消息签名私钥
func (k *KeyStore) SignKey() *btcec.PrivateKey { return k.signKey }

// SignPubKey 消息签名公钥
func (k *KeyStore) SignPubKey() *btcec.PublicKey { return k.signKey.PubKey() }
