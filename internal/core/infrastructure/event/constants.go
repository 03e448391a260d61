package event

import "github.com/weisyn/bargain/pkg/interfaces/infrastructure/event"

// 议价相关事件主题
const (
	// EventTypeMessageAppended 参数：types.MessageAppendedEvent
	EventTypeMessageAppended event.EventType = "negotiation.message_appended"
	// EventTypeStatusChanged 参数：types.NegotiationStatusChangedEvent
	EventTypeStatusChanged event.EventType = "negotiation.status_changed"
	// EventTypeEvicted 参数：types.NegotiationEvictedEvent
	EventTypeEvicted event.EventType = "negotiation.evicted"
)
