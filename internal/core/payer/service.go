// Package payer 串联决策引擎、消息交换与会话存储，对外提供付款方议价操作
package payer

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/weisyn/bargain/internal/core/exchange"
	infraevent "github.com/weisyn/bargain/internal/core/infrastructure/event"
	"github.com/weisyn/bargain/internal/core/message"
	"github.com/weisyn/bargain/internal/core/negotiation"
	"github.com/weisyn/bargain/internal/core/sessionstore"
	"github.com/weisyn/bargain/internal/core/wallet"
	"github.com/weisyn/bargain/internal/core/wallet/utxo"
	"github.com/weisyn/bargain/pkg/interfaces/infrastructure/clock"
	"github.com/weisyn/bargain/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/bargain/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/bargain/pkg/types"
)

// Processor 构建付款方的下一条消息
type Processor interface {
	Process(ctx context.Context, n *negotiation.Negotiation, memo string, amount, fees int64) (*message.Message, []string)
}

// Exchanger 发送消息并写入应答
type Exchanger interface {
	InitialURI() string
	Exchange(ctx context.Context, n *negotiation.Negotiation, msg *message.Message, uri string) (*exchange.Outcome, error)
	Send(ctx context.Context, n *negotiation.Negotiation, msg *message.Message, uri string) (*exchange.Outcome, error)
}

// invalidator 可清空缓存的 UTXO 来源
type invalidator interface {
	Invalidate() error
}

// Report 一轮交互的结果
type Report struct {
	Negotiation *negotiation.Negotiation
	Sent        *message.Message
	Received    *message.Message
	Duplicate   bool
	Errors      []string
}

// Service 付款方议价服务
//
// 同一议价的操作由 Locker 串行化；每一步的结果都写回 Store。
type Service struct {
	processor Processor
	exchanger Exchanger
	store     sessionstore.Store
	locker    sessionstore.Locker
	sweeper   *sessionstore.Sweeper
	keys      *wallet.KeyStore
	source    utxo.Source
	clock     clock.Clock
	bus       event.EventBus
	logger    log.Logger

	newID func() string
}

// Deps 服务依赖；Sweeper、Bus 与 Logger 可为空
type Deps struct {
	Processor Processor
	Exchanger Exchanger
	Store     sessionstore.Store
	Locker    sessionstore.Locker
	Sweeper   *sessionstore.Sweeper
	Keys      *wallet.KeyStore
	Source    utxo.Source
	Clock     clock.Clock
	Bus       event.EventBus
	Logger    log.Logger
}

// New 创建服务
func New(d Deps) (*Service, error) {
	switch {
	case d.Processor == nil:
		return nil, fmt.Errorf("processor cannot be nil")
	case d.Exchanger == nil:
		return nil, fmt.Errorf("exchanger cannot be nil")
	case d.Store == nil:
		return nil, fmt.Errorf("session store cannot be nil")
	case d.Keys == nil:
		return nil, fmt.Errorf("key store cannot be nil")
	case d.Clock == nil:
		return nil, fmt.Errorf("clock cannot be nil")
	}
	if d.Locker == nil {
		d.Locker = sessionstore.NewLocalLocker()
	}
	return &Service{
		processor: d.Processor,
		exchanger: d.Exchanger,
		store:     d.Store,
		locker:    d.Locker,
		sweeper:   d.Sweeper,
		keys:      d.Keys,
		source:    d.Source,
		clock:     d.Clock,
		bus:       d.Bus,
		logger:    d.Logger,
		newID:     uuid.NewString,
	}, nil
}

// Start 创建议价并向收款方发送 REQUEST
func (s *Service) Start(ctx context.Context) (*Report, error) {
	id := s.newID()
	n := negotiation.New(id, message.RolePayer, s.keys.Network(), s.clock.Unix())
	if err := s.store.Create(ctx, id, n); err != nil {
		return nil, err
	}
	if s.logger != nil {
		s.logger.Infof("negotiation %s: started on %s", id, s.keys.Network())
	}
	return s.cycle(ctx, actionStart, id, "", 0, 0)
}

// Advance 执行一轮 process-send-ingest：amount 为正时出价，为 0 时取消
func (s *Service) Advance(ctx context.Context, id, memo string, amount, fees int64) (*Report, error) {
	return s.cycle(ctx, actionAdvance, id, memo, amount, fees)
}

// Cancel 取消议价
func (s *Service) Cancel(ctx context.Context, id, memo string) (*Report, error) {
	return s.cycle(ctx, actionAdvance, id, memo, 0, 0)
}

func (s *Service) cycle(ctx context.Context, action, id, memo string, amount, fees int64) (report *Report, err error) {
	defer func() { cyclesTotal.WithLabelValues(action, resultOf(err)).Inc() }()

	err = s.locker.WithLock(ctx, id, func(ctx context.Context) error {
		n, err := s.store.Get(ctx, id)
		if err != nil {
			return err
		}
		report = &Report{Negotiation: n}

		msg, errs := s.processor.Process(ctx, n, memo, amount, fees)
		if len(errs) > 0 {
			report.Errors = errs
			return fmt.Errorf("%w: %s", ErrNotSent, errs[0])
		}

		uri := s.uriFor(n, msg)
		return s.exchange(ctx, report, func(ctx context.Context) (*exchange.Outcome, error) {
			return s.exchanger.Exchange(ctx, n, msg, uri)
		})
	})
	return report, err
}

// Retry 重新发送最后一条未获应答的付款方消息
func (s *Service) Retry(ctx context.Context, id string) (report *Report, err error) {
	defer func() { cyclesTotal.WithLabelValues(actionRetry, resultOf(err)).Inc() }()

	err = s.locker.WithLock(ctx, id, func(ctx context.Context) error {
		n, err := s.store.Get(ctx, id)
		if err != nil {
			return err
		}
		report = &Report{Negotiation: n}

		last := n.LastMessage()
		if last == nil || last.Type.Author() != message.RolePayer || last.Type.IsTerminal() {
			report.Errors = []string{"The last message is not waiting for an answer from the payee"}
			return ErrNothingToRetry
		}
		uri := s.uriFor(n, last)
		return s.exchange(ctx, report, func(ctx context.Context) (*exchange.Outcome, error) {
			return s.exchanger.Send(ctx, n, last, uri)
		})
	})
	return report, err
}

// exchange 执行 run，持久化消息链变化并发布事件
func (s *Service) exchange(ctx context.Context, report *Report, run func(context.Context) (*exchange.Outcome, error)) error {
	n := report.Negotiation
	before := n.Len()
	status := n.Status()

	out, sendErr := run(ctx)
	if out != nil {
		report.Sent = out.Sent
		report.Received = out.Received
		report.Duplicate = out.Duplicate
	}
	if sendErr != nil {
		report.Errors = []string{exchange.UserMessage(sendErr)}
	}

	if n.Len() != before {
		if err := s.store.Update(ctx, n.ID(), n); err != nil {
			if sendErr != nil {
				return fmt.Errorf("%w (persist: %v)", sendErr, err)
			}
			return err
		}
		s.publishAppended(n, n.Messages()[before:])
	}
	if n.Status() != status {
		s.publishStatus(n, status)
	}
	if report.Sent != nil && report.Sent.Type == message.TypeProposal {
		s.invalidateUTXOs()
	}
	return sendErr
}

// uriFor REQUEST 发往初始地址，后续消息发往收款方在 REQUEST_ACK 中声明的地址
func (s *Service) uriFor(n *negotiation.Negotiation, msg *message.Message) string {
	if msg.Type != message.TypeRequest {
		if uri := n.BargainURIForRole(message.RolePayer); uri != "" {
			return uri
		}
	}
	return s.exchanger.InitialURI()
}

// Get 读取议价
func (s *Service) Get(ctx context.Context, id string) (*negotiation.Negotiation, error) {
	return s.store.Get(ctx, id)
}

// List 列出全部议价，按创建时间排序
func (s *Service) List(ctx context.Context) ([]*negotiation.Negotiation, error) {
	return s.store.List(ctx)
}

// Sweep 清理过期议价
func (s *Service) Sweep(ctx context.Context) ([]string, error) {
	if s.sweeper == nil {
		return nil, nil
	}
	return s.sweeper.Sweep(ctx)
}

// Balance 付款地址的未花费余额（聪）
func (s *Service) Balance(ctx context.Context) (int64, error) {
	if s.source == nil {
		return 0, fmt.Errorf("%w: no utxo source configured", utxo.ErrUnavailable)
	}
	return utxo.Balance(ctx, s.source, s.keys.Network(), []string{s.keys.AddressString()})
}

// Address 付款地址
func (s *Service) Address() string { return s.keys.AddressString() }

func (s *Service) invalidateUTXOs() {
	c, ok := s.source.(invalidator)
	if !ok {
		return
	}
	if err := c.Invalidate(); err != nil && s.logger != nil {
		s.logger.Warnf("invalidate utxo cache: %v", err)
	}
}

func (s *Service) publishAppended(n *negotiation.Negotiation, msgs []*message.Message) {
	if s.bus == nil {
		return
	}
	for _, m := range msgs {
		direction := "incoming"
		if m.Type.Author() == message.RolePayer {
			direction = "outgoing"
		}
		s.bus.Publish(infraevent.EventTypeMessageAppended, types.MessageAppendedEvent{
			NegotiationID: n.ID(),
			MessageType:   string(m.Type),
			Direction:     direction,
			Status:        string(m.Status),
			Errors:        m.Errors,
		})
	}
}

func (s *Service) publishStatus(n *negotiation.Negotiation, from negotiation.Status) {
	if n.IsTerminal() {
		finishedTotal.WithLabelValues(string(n.Status())).Inc()
	}
	if s.logger != nil {
		s.logger.Infof("negotiation %s: %s -> %s", n.ID(), from, n.Status())
	}
	if s.bus == nil {
		return
	}
	s.bus.Publish(infraevent.EventTypeStatusChanged, types.NegotiationStatusChangedEvent{
		NegotiationID: n.ID(),
		From:          string(from),
		To:            string(n.Status()),
	})
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return resultOK
	case errors.Is(err, ErrNotSent), errors.Is(err, ErrNothingToRetry):
		return resultRejected
	default:
		return resultFailed
	}
}
