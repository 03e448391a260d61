package negotiation

import (
	"encoding/json"
	"fmt"

	"github.com/weisyn/bargain/internal/core/message"
)

// snapshot 持久化格式
type snapshot struct {
	ID        string             `json:"id"`
	Role      message.Role       `json:"role"`
	Network   string             `json:"network"`
	CreatedAt int64              `json:"created_at"`
	Messages  []*message.Message `json:"messages"`
}

// MarshalJSON 保存消息链，状态与过期时间在读取时由链重新推导
func (n *Negotiation) MarshalJSON() ([]byte, error) {
	return json.Marshal(snapshot{
		ID:        n.id,
		Role:      n.role,
		Network:   n.network,
		CreatedAt: n.createdAt,
		Messages:  n.chain,
	})
}

// UnmarshalJSON 按顺序重放消息链
func (n *Negotiation) UnmarshalJSON(data []byte) error {
	var s snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	restored := New(s.ID, s.Role, s.Network, s.CreatedAt)
	for i, m := range s.Messages {
		if err := restored.Append(m); err != nil {
			return fmt.Errorf("replay message %d of negotiation %s: %w", i, s.ID, err)
		}
	}
	*n = *restored
	return nil
}

// Clone 经由 JSON 深拷贝
func (n *Negotiation) Clone() (*Negotiation, error) {
	data, err := json.Marshal(n)
	if err != nil {
		return nil, err
	}
	var out Negotiation
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
