package wallet

import (
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	walletconfig "github.com/weisyn/bargain/internal/config/wallet"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func TestNewFromPassphrasesDeterministic(t *testing.T) {
	a, err := NewFromPassphrases(NetworkTest, "This is a private key", "sign")
	require.NoError(t, err)
	b, err := NewFromPassphrases(NetworkTest, "This is a private key", "sign")
	require.NoError(t, err)

	assert.Equal(t, a.AddressString(), b.AddressString())
	assert.Equal(t, a.Script(), b.Script())
	assert.False(t, a.PayKey().PubKey().IsEqual(a.SignPubKey()), "支付密钥与签名密钥应当不同")

	decoded, err := btcutil.DecodeAddress(a.AddressString(), a.Params())
	require.NoError(t, err)
	assert.True(t, decoded.IsForNet(a.Params()))

	class, addrs, _, err := txscript.ExtractPkScriptAddrs(a.Script(), a.Params())
	require.NoError(t, err)
	assert.Equal(t, txscript.PubKeyHashTy, class)
	assert.Equal(t, a.AddressString(), addrs[0].EncodeAddress())
}

func TestNetworkChangesAddress(t *testing.T) {
	test, err := NewFromPassphrases(NetworkTest, "k", "s")
	require.NoError(t, err)
	mainnet, err := NewFromPassphrases(NetworkMain, "k", "s")
	require.NoError(t, err)

	assert.NotEqual(t, test.AddressString(), mainnet.AddressString())
	assert.Equal(t, test.Script(), mainnet.Script(), "脚本只依赖公钥哈希")
	assert.Equal(t, byte('1'), mainnet.AddressString()[0])
}

func TestNewFromMnemonic(t *testing.T) {
	ks, err := NewFromMnemonic(NetworkMain, testMnemonic, "")
	require.NoError(t, err)
	// BIP-44 标准测试向量 m/44'/0'/0'/0/0
	assert.Equal(t, "1LqBGSKuX5yYUonjxT5qGfpUsXKYYWeabA", ks.AddressString())

	again, err := NewFromMnemonic(NetworkMain, testMnemonic, "")
	require.NoError(t, err)
	assert.True(t, ks.SignPubKey().IsEqual(again.SignPubKey()))

	_, err = NewFromMnemonic(NetworkMain, "not a mnemonic", "")
	assert.ErrorIs(t, err, ErrInvalidMnemonic)
}

func TestNewErrors(t *testing.T) {
	_, err := NewFromPassphrases("litecoin", "a", "b")
	assert.ErrorIs(t, err, ErrUnknownNetwork)

	_, err = NewFromPassphrases(NetworkTest, "", "b")
	assert.ErrorIs(t, err, ErrEmptyPassphrase)
}

func TestNewFromOptions(t *testing.T) {
	opts := walletconfig.New(nil).GetOptions()
	ks, err := New(opts)
	require.NoError(t, err)
	assert.Equal(t, NetworkTest, ks.Network())

	opts.Mnemonic = testMnemonic
	opts.Network = NetworkMain
	ks, err = New(opts)
	require.NoError(t, err)
	assert.Equal(t, "1LqBGSKuX5yYUonjxT5qGfpUsXKYYWeabA", ks.AddressString())
}

func TestScriptIsCopy(t *testing.T) {
	ks, err := NewFromPassphrases(NetworkTest, "k", "s")
	require.NoError(t, err)
	s := ks.Script()
	s[0] = 0x00
	assert.NotEqual(t, s[0], ks.Script()[0])
}
