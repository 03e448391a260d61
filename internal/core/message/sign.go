package message

import (
	"crypto/sha256"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
)

// Sign 设置签名算法、公钥与 prev_hash，并对不含签名字段的信封做 ECDSA 签名
//
// prev 为 nil 或没有 Payload 时，prev_hash 为空（消息链的第一条消息）。
func (c *ProtoCodec) Sign(msg, prev *Message, alg SignType, pub *btcec.PublicKey, priv *btcec.PrivateKey) error {
	if msg == nil || msg.Details == nil {
		return ErrNilMessage
	}
	if alg != SignECDSASHA256 {
		return fmt.Errorf("%w: %q", ErrUnsupportedSignType, alg)
	}
	if priv == nil {
		return fmt.Errorf("%w: private key is nil", ErrSignature)
	}
	if pub == nil {
		pub = priv.PubKey()
	}
	if !pub.IsEqual(priv.PubKey()) {
		return fmt.Errorf("%w: public key does not match private key", ErrSignature)
	}

	msg.SignType = alg
	msg.PubKey = pub.SerializeCompressed()
	msg.PrevHash = prev.Hash()
	msg.Signature = nil

	digest, err := signatureDigest(msg)
	if err != nil {
		return err
	}
	msg.Signature = ecdsa.Sign(priv, digest).Serialize()
	return nil
}

// VerifySignature 校验签名，未签名的消息返回 nil
func VerifySignature(msg *Message) error {
	if msg == nil {
		return ErrNilMessage
	}
	if !msg.IsSigned() {
		return nil
	}
	if msg.SignType != SignECDSASHA256 {
		return fmt.Errorf("%w: %q", ErrUnsupportedSignType, msg.SignType)
	}
	pub, err := btcec.ParsePubKey(msg.PubKey)
	if err != nil {
		return fmt.Errorf("%w: pubkey: %v", ErrSignature, err)
	}
	sig, err := ecdsa.ParseDERSignature(msg.Signature)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSignature, err)
	}
	digest, err := signatureDigest(msg)
	if err != nil {
		return err
	}
	if !sig.Verify(digest, pub) {
		return fmt.Errorf("%w: verification failed", ErrSignature)
	}
	return nil
}

func signatureDigest(msg *Message) ([]byte, error) {
	unsigned, err := encodeEnvelope(msg, false)
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256(unsigned)
	return sum[:], nil
}
