package message

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
)

// Message 一条议价消息
//
// 写入消息链后不再修改；Payload 为线格式字节，也是 Hash 的输入。
type Message struct {
	Type    Type
	Details Details

	Status Status
	Errors []string

	SignType  SignType
	PubKey    []byte // 压缩公钥
	PrevHash  []byte // 前一条消息 Payload 的 SHA-256
	Signature []byte // DER 编码

	Payload []byte
}

// New 创建待校验的消息，类型取自 details
func New(details Details) *Message {
	return &Message{
		Type:     details.Type(),
		Details:  details,
		Status:   StatusUndetermined,
		SignType: SignNone,
	}
}

// Hash 返回 Payload 的 SHA-256，Payload 为空时返回 nil
func (m *Message) Hash() []byte {
	if m == nil || len(m.Payload) == 0 {
		return nil
	}
	sum := sha256.Sum256(m.Payload)
	return sum[:]
}

// Fail 记录一条错误并将状态置为 KO
func (m *Message) Fail(format string, args ...interface{}) {
	m.Errors = append(m.Errors, fmt.Sprintf(format, args...))
	m.Status = StatusKO
}

// IsSigned 是否携带签名
func (m *Message) IsSigned() bool {
	return m.SignType != "" && m.SignType != SignNone
}

// Common 返回共有字段，Details 为空时返回零值
func (m *Message) Common() Common {
	if m == nil || m.Details == nil {
		return Common{}
	}
	return *m.Details.Base()
}

// Amount 报价或出价金额。只有 REQUEST_ACK、PROPOSAL、PROPOSAL_ACK 携带金额
func (m *Message) Amount() (int64, bool) {
	switch d := m.Details.(type) {
	case *RequestAckDetails:
		return d.Amount, true
	case *ProposalDetails:
		return d.Amount, true
	case *ProposalAckDetails:
		return d.Amount, true
	default:
		return 0, false
	}
}

// Outputs 收款方要求的输出（REQUEST_ACK 或 PROPOSAL_ACK）
func (m *Message) Outputs() []Output {
	switch d := m.Details.(type) {
	case *RequestAckDetails:
		return d.Outputs
	case *ProposalAckDetails:
		return d.Outputs
	default:
		return nil
	}
}

// record 持久化格式：线格式字节加本地校验结果
type record struct {
	Payload []byte   `json:"payload"`
	Status  Status   `json:"status"`
	Errors  []string `json:"errors,omitempty"`
}

// MarshalJSON 只持久化 Payload 与校验结果，其余字段在读取时重新解码
func (m *Message) MarshalJSON() ([]byte, error) {
	if len(m.Payload) == 0 {
		return nil, fmt.Errorf("%w: message %s has no payload", ErrMalformed, m.Type)
	}
	return json.Marshal(record{Payload: m.Payload, Status: m.Status, Errors: m.Errors})
}

// UnmarshalJSON 解码 Payload 并恢复校验结果
func (m *Message) UnmarshalJSON(data []byte) error {
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	decoded, err := decode(rec.Payload)
	if err != nil {
		return err
	}
	*m = *decoded
	m.Status = rec.Status
	m.Errors = rec.Errors
	return nil
}
