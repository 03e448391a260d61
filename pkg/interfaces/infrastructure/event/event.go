// Package event 定义进程内事件总线接口
package event

// EventType 事件类型（即订阅主题）
type EventType string

// EventBus 事件总线接口
//
// handler 为任意函数，参数需与 Publish 传入的参数一一对应。
type EventBus interface {
	Subscribe(eventType EventType, handler interface{}) error
	SubscribeAsync(eventType EventType, handler interface{}, transactional bool) error
	Unsubscribe(eventType EventType, handler interface{}) error
	Publish(eventType EventType, args ...interface{})
	// WaitAsync 等待所有异步处理器执行完毕
	WaitAsync()
}
