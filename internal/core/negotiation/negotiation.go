// Package negotiation 维护单个议价的消息链、状态与各角色的过期时间
package negotiation

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/weisyn/bargain/internal/core/message"
)

// Status 议价状态，由消息链推导，终止后不再变化
type Status string

const (
	StatusInitialization Status = "initialization"
	StatusNegotiation    Status = "negotiation"
	StatusCompleted      Status = "completed"
	StatusCancelled      Status = "cancelled"
)

// IsTerminal 是否为终止状态
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// payerDataKey PayerData JSON 中的议价 id 字段
const payerDataKey = "nid"

// Negotiation 一次议价
//
// 非并发安全：同一议价的读改写由会话存储的按 id 加锁保证串行。
type Negotiation struct {
	id        string
	role      message.Role
	network   string
	createdAt int64

	chain  []*message.Message
	status Status
	expiry map[message.Role]int64
}

// New 创建空议价，createdAt 为 Unix 秒
func New(id string, role message.Role, network string, createdAt int64) *Negotiation {
	return &Negotiation{
		id:        id,
		role:      role,
		network:   network,
		createdAt: createdAt,
		status:    StatusInitialization,
		expiry:    make(map[message.Role]int64),
	}
}

func (n *Negotiation) ID() string         { return n.id }
func (n *Negotiation) Role() message.Role { return n.role }
func (n *Negotiation) Network() string    { return n.network }
func (n *Negotiation) CreatedAt() int64   { return n.createdAt }
func (n *Negotiation) Status() Status     { return n.status }
func (n *Negotiation) Len() int           { return len(n.chain) }
func (n *Negotiation) IsTerminal() bool   { return n.status.IsTerminal() }

// Messages 返回消息链的副本（元素为共享指针，调用方不得修改）
func (n *Negotiation) Messages() []*message.Message {
	out := make([]*message.Message, len(n.chain))
	copy(out, n.chain)
	return out
}

// LastMessage 最近一条消息，链为空时返回 nil
func (n *Negotiation) LastMessage() *message.Message {
	if len(n.chain) == 0 {
		return nil
	}
	return n.chain[len(n.chain)-1]
}

// PayerData 付款方关联数据 {"nid": <id>}
func (n *Negotiation) PayerData() string {
	data, _ := json.Marshal(map[string]string{payerDataKey: n.id})
	return string(data)
}

// ExpiryForRole 角色的过期时间（Unix 秒）
//
// 收款方过期时间来自 REQUEST，付款方过期时间来自第一条 REQUEST_ACK。
func (n *Negotiation) ExpiryForRole(role message.Role) (int64, bool) {
	v, ok := n.expiry[role]
	return v, ok
}

// BargainURIForRole role 方发送后续消息的目标地址，即对方在首条消息中声明的地址
func (n *Negotiation) BargainURIForRole(role message.Role) string {
	for _, m := range n.chain {
		switch d := m.Details.(type) {
		case *message.RequestAckDetails:
			if role == message.RolePayer {
				return d.BargainURI
			}
		case *message.RequestDetails:
			if role == message.RolePayee {
				return d.BargainURI
			}
		}
	}
	return ""
}

// NextActiveRole 下一个应当发送消息的角色
//
// 空链时付款方行动；之后严格交替；终止消息之后返回 RoleNone。
func (n *Negotiation) NextActiveRole() message.Role {
	last := n.LastMessage()
	if last == nil {
		return message.RolePayer
	}
	if last.Type.IsTerminal() {
		return message.RoleNone
	}
	return last.Type.Author().Counterpart()
}

// NextMessageTypes 下一条消息可以取的类型，用于 Accept 头与追加校验
func (n *Negotiation) NextMessageTypes() []message.Type {
	last := n.LastMessage()
	if last == nil {
		return []message.Type{message.TypeRequest}
	}
	switch last.Type {
	case message.TypeRequest:
		return []message.Type{message.TypeRequestAck, message.TypeCancellation}
	case message.TypeRequestAck, message.TypeProposalAck:
		return []message.Type{message.TypeProposal, message.TypeCancellation}
	case message.TypeProposal:
		return []message.Type{message.TypeProposalAck, message.TypeCompletion, message.TypeCancellation}
	default:
		return nil
	}
}

// Append 追加消息并重新计算状态与过期时间
func (n *Negotiation) Append(msg *message.Message) error {
	if msg == nil || msg.Details == nil {
		return fmt.Errorf("%w: %v", ErrChainOrder, message.ErrNilMessage)
	}
	if n.status.IsTerminal() {
		return fmt.Errorf("%w: negotiation %s is %s", ErrChainOrder, n.id, n.status)
	}
	allowed := n.NextMessageTypes()
	if !containsType(allowed, msg.Type) {
		prev := "none"
		if last := n.LastMessage(); last != nil {
			prev = string(last.Type)
		}
		return fmt.Errorf("%w: %s cannot follow %s", ErrChainOrder, msg.Type, prev)
	}

	n.chain = append(n.chain, msg)
	n.apply(msg)
	return nil
}

// apply 根据新消息更新状态与过期时间
func (n *Negotiation) apply(msg *message.Message) {
	switch d := msg.Details.(type) {
	case *message.RequestDetails:
		if _, ok := n.expiry[message.RolePayee]; !ok && d.Expires > 0 {
			n.expiry[message.RolePayee] = d.Expires
		}
	case *message.RequestAckDetails:
		if _, ok := n.expiry[message.RolePayer]; !ok && d.Expires > 0 {
			n.expiry[message.RolePayer] = d.Expires
		}
		n.status = StatusNegotiation
	case *message.ProposalDetails, *message.ProposalAckDetails:
		n.status = StatusNegotiation
	case *message.CompletionDetails:
		n.status = StatusCompleted
	case *message.CancellationDetails:
		n.status = StatusCancelled
	}
}

// AlreadyReceived msg 是否已经在链上：字节完全相同，或者类型相同且指向同一前驱
func (n *Negotiation) AlreadyReceived(msg *message.Message) bool {
	if msg == nil {
		return false
	}
	for _, m := range n.chain {
		if len(msg.Payload) > 0 && bytes.Equal(m.Payload, msg.Payload) {
			return true
		}
		if len(msg.PrevHash) > 0 && m.Type == msg.Type && bytes.Equal(m.PrevHash, msg.PrevHash) {
			return true
		}
	}
	return false
}

func containsType(types []message.Type, t message.Type) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}
