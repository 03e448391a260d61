package message

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"google.golang.org/protobuf/encoding/protowire"
)

// Codec 消息编解码与签名协作方
type Codec interface {
	// Serialize 编码为线格式（包含签名字段）
	Serialize(msg *Message) ([]byte, error)
	// Deserialize 解码线格式，结果状态为 UNDETERMINED，Payload 为输入的副本
	Deserialize(data []byte) (*Message, error)
	// CheckFormat 按网络校验消息格式，写入 Status/Errors 并返回是否通过
	CheckFormat(msg *Message, network string) bool
	// Sign 以 prev 为前驱对消息签名
	Sign(msg, prev *Message, alg SignType, pub *btcec.PublicKey, priv *btcec.PrivateKey) error
}

// envelopeVersion 当前信封版本
const envelopeVersion = 1

// 信封字段
const (
	fieldVersion   protowire.Number = 1
	fieldType      protowire.Number = 2
	fieldDetails   protowire.Number = 3
	fieldSignType  protowire.Number = 4
	fieldPubKey    protowire.Number = 5
	fieldPrevHash  protowire.Number = 6
	fieldSignature protowire.Number = 7
)

// details 字段，各类型共用同一编号空间
const (
	fieldTime         protowire.Number = 1
	fieldPayerData    protowire.Number = 2
	fieldPayeeData    protowire.Number = 3
	fieldMemo         protowire.Number = 4
	fieldNetwork      protowire.Number = 10
	fieldExpires      protowire.Number = 11
	fieldBargainURI   protowire.Number = 12
	fieldAmount       protowire.Number = 13
	fieldOutputs      protowire.Number = 14
	fieldTransactions protowire.Number = 20
	fieldRefundTo     protowire.Number = 21
	fieldFees         protowire.Number = 22
	fieldRedeemable   protowire.Number = 23

	fieldOutputAmount protowire.Number = 1
	fieldOutputScript protowire.Number = 2
)

// ProtoCodec 基于 protobuf 线格式的默认实现
type ProtoCodec struct{}

// NewProtoCodec 创建默认编解码器
func NewProtoCodec() *ProtoCodec { return &ProtoCodec{} }

var _ Codec = (*ProtoCodec)(nil)

// Serialize 编码完整信封
func (c *ProtoCodec) Serialize(msg *Message) ([]byte, error) {
	if msg == nil || msg.Details == nil {
		return nil, ErrNilMessage
	}
	return encodeEnvelope(msg, true)
}

// Deserialize 解码完整信封
func (c *ProtoCodec) Deserialize(data []byte) (*Message, error) {
	return decode(data)
}

// ---------------------------------------------------------------------------
// 编码
// ---------------------------------------------------------------------------

type encoder struct{ b []byte }

func (e *encoder) putVarint(num protowire.Number, v uint64) {
	if v == 0 {
		return
	}
	e.b = protowire.AppendTag(e.b, num, protowire.VarintType)
	e.b = protowire.AppendVarint(e.b, v)
}

func (e *encoder) putInt64(num protowire.Number, v int64) { e.putVarint(num, uint64(v)) }

func (e *encoder) putBool(num protowire.Number, v bool) { e.putVarint(num, protowire.EncodeBool(v)) }

func (e *encoder) putBytes(num protowire.Number, v []byte) {
	if len(v) == 0 {
		return
	}
	e.b = protowire.AppendTag(e.b, num, protowire.BytesType)
	e.b = protowire.AppendBytes(e.b, v)
}

func (e *encoder) putString(num protowire.Number, v string) { e.putBytes(num, []byte(v)) }

func (e *encoder) putOutputs(num protowire.Number, outs []Output) {
	for _, o := range outs {
		var inner encoder
		inner.putInt64(fieldOutputAmount, o.Amount)
		inner.putBytes(fieldOutputScript, o.Script)
		// 空输出也需要占位，否则重复字段的条数会丢失
		e.b = protowire.AppendTag(e.b, num, protowire.BytesType)
		e.b = protowire.AppendBytes(e.b, inner.b)
	}
}

// encodeEnvelope withSignature 为 false 时得到签名摘要的输入
func encodeEnvelope(msg *Message, withSignature bool) ([]byte, error) {
	details, err := encodeDetails(msg.Details)
	if err != nil {
		return nil, err
	}
	var e encoder
	e.putVarint(fieldVersion, envelopeVersion)
	e.putString(fieldType, string(msg.Type))
	e.putBytes(fieldDetails, details)
	if msg.SignType != SignNone {
		e.putString(fieldSignType, string(msg.SignType))
	}
	e.putBytes(fieldPubKey, msg.PubKey)
	e.putBytes(fieldPrevHash, msg.PrevHash)
	if withSignature {
		e.putBytes(fieldSignature, msg.Signature)
	}
	return e.b, nil
}

func encodeCommon(e *encoder, c *Common) {
	e.putInt64(fieldTime, c.Time)
	e.putString(fieldPayerData, c.PayerData)
	e.putString(fieldPayeeData, c.PayeeData)
	e.putString(fieldMemo, c.Memo)
}

func encodeDetails(d Details) ([]byte, error) {
	var e encoder
	encodeCommon(&e, d.Base())
	switch v := d.(type) {
	case *RequestDetails:
		e.putString(fieldNetwork, v.Network)
		e.putInt64(fieldExpires, v.Expires)
		e.putString(fieldBargainURI, v.BargainURI)
	case *RequestAckDetails:
		e.putString(fieldNetwork, v.Network)
		e.putInt64(fieldExpires, v.Expires)
		e.putString(fieldBargainURI, v.BargainURI)
		e.putInt64(fieldAmount, v.Amount)
		e.putOutputs(fieldOutputs, v.Outputs)
	case *ProposalDetails:
		for _, tx := range v.Transactions {
			e.b = protowire.AppendTag(e.b, fieldTransactions, protowire.BytesType)
			e.b = protowire.AppendBytes(e.b, tx)
		}
		e.putOutputs(fieldRefundTo, v.RefundTo)
		e.putInt64(fieldAmount, v.Amount)
		e.putInt64(fieldFees, v.Fees)
		e.putBool(fieldRedeemable, v.Redeemable)
	case *ProposalAckDetails:
		e.putInt64(fieldAmount, v.Amount)
		e.putOutputs(fieldOutputs, v.Outputs)
	case *CompletionDetails, *CancellationDetails:
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownType, d)
	}
	return e.b, nil
}

// ---------------------------------------------------------------------------
// 解码
// ---------------------------------------------------------------------------

// field 一个已解析的字段
type field struct {
	num    protowire.Number
	typ    protowire.Type
	varint uint64
	bytes  []byte
}

// parseFields 逐个读取字段，只接受 varint 与 length-delimited 两种线类型
func parseFields(b []byte) ([]field, error) {
	var fields []field
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
		}
		b = b[n:]
		f := field{num: num, typ: typ}
		switch typ {
		case protowire.VarintType:
			v, m := protowire.ConsumeVarint(b)
			if m < 0 {
				return nil, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(m))
			}
			f.varint = v
			b = b[m:]
		case protowire.BytesType:
			v, m := protowire.ConsumeBytes(b)
			if m < 0 {
				return nil, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(m))
			}
			f.bytes = append([]byte(nil), v...)
			b = b[m:]
		default:
			m := protowire.ConsumeFieldValue(num, typ, b)
			if m < 0 {
				return nil, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(m))
			}
			b = b[m:]
			continue
		}
		fields = append(fields, f)
	}
	return fields, nil
}

func decode(data []byte) (*Message, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrMalformed)
	}
	fields, err := parseFields(data)
	if err != nil {
		return nil, err
	}

	msg := &Message{Status: StatusUndetermined, SignType: SignNone}
	var rawDetails []byte
	for _, f := range fields {
		switch f.num {
		case fieldVersion:
			if f.varint != envelopeVersion {
				return nil, fmt.Errorf("%w: unsupported version %d", ErrMalformed, f.varint)
			}
		case fieldType:
			msg.Type = Type(f.bytes)
		case fieldDetails:
			rawDetails = f.bytes
		case fieldSignType:
			msg.SignType = SignType(f.bytes)
		case fieldPubKey:
			msg.PubKey = f.bytes
		case fieldPrevHash:
			msg.PrevHash = f.bytes
		case fieldSignature:
			msg.Signature = f.bytes
		}
	}

	details, err := newDetails(msg.Type)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", err, msg.Type)
	}
	if err := decodeDetails(details, rawDetails); err != nil {
		return nil, err
	}
	msg.Details = details
	msg.Payload = append([]byte(nil), data...)
	return msg, nil
}

func decodeOutput(b []byte) (Output, error) {
	fields, err := parseFields(b)
	if err != nil {
		return Output{}, err
	}
	var o Output
	for _, f := range fields {
		switch f.num {
		case fieldOutputAmount:
			o.Amount = int64(f.varint)
		case fieldOutputScript:
			o.Script = f.bytes
		}
	}
	return o, nil
}

func decodeDetails(d Details, b []byte) error {
	fields, err := parseFields(b)
	if err != nil {
		return err
	}
	c := d.Base()
	for _, f := range fields {
		switch f.num {
		case fieldTime:
			c.Time = int64(f.varint)
			continue
		case fieldPayerData:
			c.PayerData = string(f.bytes)
			continue
		case fieldPayeeData:
			c.PayeeData = string(f.bytes)
			continue
		case fieldMemo:
			c.Memo = string(f.bytes)
			continue
		}

		switch v := d.(type) {
		case *RequestDetails:
			switch f.num {
			case fieldNetwork:
				v.Network = string(f.bytes)
			case fieldExpires:
				v.Expires = int64(f.varint)
			case fieldBargainURI:
				v.BargainURI = string(f.bytes)
			}
		case *RequestAckDetails:
			switch f.num {
			case fieldNetwork:
				v.Network = string(f.bytes)
			case fieldExpires:
				v.Expires = int64(f.varint)
			case fieldBargainURI:
				v.BargainURI = string(f.bytes)
			case fieldAmount:
				v.Amount = int64(f.varint)
			case fieldOutputs:
				o, err := decodeOutput(f.bytes)
				if err != nil {
					return err
				}
				v.Outputs = append(v.Outputs, o)
			}
		case *ProposalDetails:
			switch f.num {
			case fieldTransactions:
				v.Transactions = append(v.Transactions, f.bytes)
			case fieldRefundTo:
				o, err := decodeOutput(f.bytes)
				if err != nil {
					return err
				}
				v.RefundTo = append(v.RefundTo, o)
			case fieldAmount:
				v.Amount = int64(f.varint)
			case fieldFees:
				v.Fees = int64(f.varint)
			case fieldRedeemable:
				v.Redeemable = protowire.DecodeBool(f.varint)
			}
		case *ProposalAckDetails:
			switch f.num {
			case fieldAmount:
				v.Amount = int64(f.varint)
			case fieldOutputs:
				o, err := decodeOutput(f.bytes)
				if err != nil {
					return err
				}
				v.Outputs = append(v.Outputs, o)
			}
		}
	}
	return nil
}
