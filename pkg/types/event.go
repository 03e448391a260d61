package types

// MessageAppendedEvent 消息写入议价消息链
type MessageAppendedEvent struct {
	NegotiationID string   `json:"negotiation_id"`
	MessageType   string   `json:"message_type"`
	Direction     string   `json:"direction"` // outgoing | incoming
	Status        string   `json:"status"`
	Errors        []string `json:"errors,omitempty"`
}

// NegotiationStatusChangedEvent 议价状态变化
type NegotiationStatusChangedEvent struct {
	NegotiationID string `json:"negotiation_id"`
	From          string `json:"from"`
	To            string `json:"to"`
}

// NegotiationEvictedEvent 过期议价被清理
type NegotiationEvictedEvent struct {
	NegotiationID string `json:"negotiation_id"`
	PayerExpiry   int64  `json:"payer_expiry"`
}
