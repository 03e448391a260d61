// Package event 基于asaskevich/EventBus的事件总线实现
package event

import (
	"fmt"

	evbus "github.com/asaskevich/EventBus"
	"github.com/weisyn/bargain/pkg/interfaces/infrastructure/event"
	"go.uber.org/fx"
)

// EventBus 对 evbus.Bus 的薄封装，主题使用 event.EventType
type EventBus struct {
	bus evbus.Bus
}

// New 创建事件总线实例
func New() event.EventBus {
	return &EventBus{bus: evbus.New()}
}

// Subscribe 同步订阅
func (eb *EventBus) Subscribe(eventType event.EventType, handler interface{}) error {
	if err := eb.bus.Subscribe(string(eventType), handler); err != nil {
		return fmt.Errorf("订阅事件 %s 失败: %w", eventType, err)
	}
	return nil
}

// SubscribeAsync 异步订阅；transactional 为 true 时同一处理器串行执行
func (eb *EventBus) SubscribeAsync(eventType event.EventType, handler interface{}, transactional bool) error {
	if err := eb.bus.SubscribeAsync(string(eventType), handler, transactional); err != nil {
		return fmt.Errorf("订阅事件 %s 失败: %w", eventType, err)
	}
	return nil
}

// Unsubscribe 取消订阅
func (eb *EventBus) Unsubscribe(eventType event.EventType, handler interface{}) error {
	return eb.bus.Unsubscribe(string(eventType), handler)
}

// Publish 发布事件
func (eb *EventBus) Publish(eventType event.EventType, args ...interface{}) {
	eb.bus.Publish(string(eventType), args...)
}

// WaitAsync 等待异步处理器完成
func (eb *EventBus) WaitAsync() {
	eb.bus.WaitAsync()
}

// Module 返回事件模块
func Module() fx.Option {
	return fx.Module("event",
		fx.Provide(New),
	)
}
