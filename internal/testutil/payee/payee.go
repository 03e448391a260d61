// Package payee 提供测试用的收款方：按简单策略应答付款方消息
package payee

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/weisyn/bargain/internal/core/message"
	"github.com/weisyn/bargain/internal/core/negotiation"
	"github.com/weisyn/bargain/pkg/interfaces/infrastructure/clock"
)

// ErrUnknownNegotiation 收到的非 REQUEST 消息找不到对应议价
var ErrUnknownNegotiation = errors.New("unknown negotiation")

// Config 收款方策略
type Config struct {
	Network    string
	Script     []byte // 收款输出脚本
	Ask        int64  // 首次要价
	Floor      int64  // 还价下限
	BargainURI string // REQUEST_ACK 中声明的地址
	TTL        int64  // REQUEST_ACK 过期（秒）
	SignPhrase string
}

// Payee 收款方。并发安全
type Payee struct {
	mu       sync.Mutex
	cfg      Config
	codec    message.Codec
	clock    clock.Clock
	key      *btcec.PrivateKey
	sessions map[string]*negotiation.Negotiation
	mutate   func(*message.Message)
}

// New 创建收款方
func New(cfg Config, clk clock.Clock) *Payee {
	if cfg.TTL == 0 {
		cfg.TTL = 1800
	}
	if cfg.SignPhrase == "" {
		cfg.SignPhrase = "payee signing key"
	}
	sum := sha256.Sum256([]byte(cfg.SignPhrase))
	key, _ := btcec.PrivKeyFromBytes(sum[:])
	return &Payee{
		cfg:      cfg,
		codec:    message.NewProtoCodec(),
		clock:    clk,
		key:      key,
		sessions: make(map[string]*negotiation.Negotiation),
	}
}

// SetMutate f 在签名前修改应答，用于构造异常消息
func (p *Payee) SetMutate(f func(*message.Message)) {
	p.mu.Lock()
	p.mutate = f
	p.mu.Unlock()
}

// Negotiation 收款方视角的议价
func (p *Payee) Negotiation(nid string) *negotiation.Negotiation {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sessions[nid]
}

// Handle 解码并应答一条消息；终止消息返回 nil
func (p *Payee) Handle(payload []byte) (*message.Message, error) {
	msg, err := p.codec.Deserialize(payload)
	if err != nil {
		return nil, err
	}
	return p.Respond(msg)
}

// Respond 记录收到的消息并生成应答
func (p *Payee) Respond(msg *message.Message) (*message.Message, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	nid, err := negotiationID(msg.Common().PayerData)
	if err != nil {
		return nil, err
	}
	n, ok := p.sessions[nid]
	if !ok {
		if msg.Type != message.TypeRequest {
			return nil, fmt.Errorf("%w: %s", ErrUnknownNegotiation, nid)
		}
		n = negotiation.New(nid, message.RolePayee, p.cfg.Network, p.clock.Unix())
		p.sessions[nid] = n
	}
	if n.AlreadyReceived(msg) {
		// 重发的消息：再次返回已发出的应答
		if last := n.LastMessage(); last.Type != msg.Type {
			return last, nil
		}
		return nil, nil
	}

	p.codec.CheckFormat(msg, n.Network())
	n.CheckConsistency(msg)
	if err := n.Append(msg); err != nil {
		return nil, err
	}

	reply := p.reply(n, msg)
	if reply == nil {
		return nil, nil
	}
	if p.mutate != nil {
		p.mutate(reply)
	}
	if err := p.codec.Sign(reply, msg, message.SignECDSASHA256, p.key.PubKey(), p.key); err != nil {
		return nil, err
	}
	reply.Payload, err = p.codec.Serialize(reply)
	if err != nil {
		return nil, err
	}
	reply.Status = message.StatusOK
	if err := n.Append(reply); err != nil {
		return nil, err
	}
	return reply, nil
}

func (p *Payee) reply(n *negotiation.Negotiation, msg *message.Message) *message.Message {
	now := p.clock.Unix()
	common := message.Common{
		Time:      now,
		PayerData: msg.Common().PayerData,
		PayeeData: fmt.Sprintf(`{"sid":%q}`, n.ID()),
	}

	if msg.Status == message.StatusKO {
		return message.New(&message.CancellationDetails{Common: common})
	}

	switch d := msg.Details.(type) {
	case *message.RequestDetails:
		return message.New(&message.RequestAckDetails{
			Common:     common,
			Network:    p.cfg.Network,
			Expires:    now + p.cfg.TTL,
			BargainURI: p.cfg.BargainURI,
			Amount:     p.cfg.Ask,
			Outputs:    []message.Output{{Amount: p.cfg.Ask, Script: p.cfg.Script}},
		})
	case *message.ProposalDetails:
		if d.Redeemable {
			return message.New(&message.CompletionDetails{Common: common})
		}
		ask := p.counter(n, d.Amount)
		return message.New(&message.ProposalAckDetails{
			Common:  common,
			Amount:  ask,
			Outputs: []message.Output{{Amount: ask, Script: p.cfg.Script}},
		})
	default:
		return nil
	}
}

// counter 取上次要价与出价的中点，不低于下限
func (p *Payee) counter(n *negotiation.Negotiation, offered int64) int64 {
	last := p.cfg.Ask
	msgs := n.Messages()
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Type.Author() == message.RolePayee {
			if a, ok := msgs[i].Amount(); ok {
				last = a
				break
			}
		}
	}
	ask := (last + offered) / 2
	if ask < p.cfg.Floor {
		ask = p.cfg.Floor
	}
	return ask
}

func negotiationID(payerData string) (string, error) {
	var data map[string]string
	if err := json.Unmarshal([]byte(payerData), &data); err != nil {
		return "", fmt.Errorf("payer data %q: %w", payerData, err)
	}
	nid := data["nid"]
	if nid == "" {
		return "", fmt.Errorf("payer data %q has no nid", payerData)
	}
	return nid, nil
}
