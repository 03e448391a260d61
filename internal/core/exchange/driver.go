// Package exchange 通过 HTTP 与收款方交换议价消息
package exchange

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	exchangeconfig "github.com/weisyn/bargain/internal/config/exchange"
	"github.com/weisyn/bargain/internal/core/message"
	"github.com/weisyn/bargain/internal/core/negotiation"
	"github.com/weisyn/bargain/pkg/interfaces/infrastructure/log"
)

const (
	headerContentType      = "Content-Type"
	headerTransferEncoding = "Content-Transfer-Encoding"
	headerAccept           = "Accept"
	headerUserAgent        = "User-Agent"
	binaryEncoding         = "binary"

	maxResponseBytes = 1 << 20
)

// Outcome 一次交换的结果
type Outcome struct {
	Sent      *message.Message
	Received  *message.Message // 终止消息或重复应答时为空
	Duplicate bool
}

// Driver 消息交换驱动
type Driver struct {
	client *http.Client
	codec  message.Codec
	opts   *exchangeconfig.ExchangeOptions
	logger log.Logger
}

// New 创建交换驱动，请求超时取自配置
func New(opts *exchangeconfig.ExchangeOptions, codec message.Codec, logger log.Logger) *Driver {
	if opts == nil {
		opts = exchangeconfig.New(nil).GetOptions()
	}
	return &Driver{
		client: &http.Client{Timeout: opts.RequestTimeout},
		codec:  codec,
		opts:   opts,
		logger: logger,
	}
}

// InitialURI 发送 REQUEST 的默认地址
func (d *Driver) InitialURI() string { return d.opts.InitialURI }

// Exchange 追加 msg，将其发送到 uri 并把应答写入议价
func (d *Driver) Exchange(ctx context.Context, n *negotiation.Negotiation, msg *message.Message, uri string) (*Outcome, error) {
	if msg == nil || len(msg.Payload) == 0 {
		return nil, fmt.Errorf("%w: message has no payload", ErrProcessing)
	}
	if err := n.Append(msg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProcessing, err)
	}
	return d.Send(ctx, n, msg, uri)
}

// Send 发送已在链上的 msg 并处理应答，用于首次发送与重试
func (d *Driver) Send(ctx context.Context, n *negotiation.Negotiation, msg *message.Message, uri string) (out *Outcome, err error) {
	if n == nil || msg == nil {
		return nil, fmt.Errorf("%w: nothing to send", ErrProcessing)
	}
	started := time.Now()
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("%w: %v", ErrProcessing, r)
		}
		roundTripSeconds.WithLabelValues(string(msg.Type)).Observe(time.Since(started).Seconds())
		exchangesTotal.WithLabelValues(string(msg.Type), resultOf(out, err)).Inc()
		if err != nil && d.logger != nil {
			d.logger.Warnf("negotiation %s: exchange %s with %s failed: %v", n.ID(), msg.Type, uri, err)
		}
	}()

	if uri == "" {
		return nil, fmt.Errorf("%w: no bargain uri", ErrProcessing)
	}

	accept := n.NextMessageTypes()
	resp, err := d.post(ctx, msg, uri, accept)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &RemoteError{StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &RemoteError{StatusCode: resp.StatusCode, Body: truncate(string(body), 256)}
	}

	out = &Outcome{Sent: msg}
	if msg.Type.IsTerminal() {
		// 终止消息没有后继；应答体为空即可，非空时仍须带正确的头部
		if len(body) > 0 {
			if _, err := checkHeaders(resp.Header); err != nil {
				return nil, err
			}
		}
		return out, nil
	}

	in, err := d.decode(resp.Header, body, accept)
	if err != nil {
		return nil, err
	}
	if n.AlreadyReceived(in) {
		out.Duplicate = true
		return out, nil
	}

	d.codec.CheckFormat(in, n.Network())
	n.CheckConsistency(in)
	receivedTotal.WithLabelValues(string(in.Type), string(in.Status)).Inc()

	if in.Status == message.StatusKO && !d.opts.AppendMalformed {
		return nil, fmt.Errorf("%w: %s rejected: %s", ErrFormat, in.Type, strings.Join(in.Errors, "; "))
	}
	if err := n.Append(in); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProcessing, err)
	}
	out.Received = in
	return out, nil
}

func (d *Driver) post(ctx context.Context, msg *message.Message, uri string, accept []message.Type) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uri, bytes.NewReader(msg.Payload))
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", ErrProcessing, err)
	}
	req.Header.Set(headerContentType, msg.Type.MediaType())
	req.Header.Set(headerTransferEncoding, binaryEncoding)
	if len(accept) > 0 {
		req.Header.Set(headerAccept, message.JoinMediaTypes(accept))
	}
	if d.opts.UserAgent != "" {
		req.Header.Set(headerUserAgent, d.opts.UserAgent)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, &RemoteError{Err: err}
	}
	return resp, nil
}

// decode 校验应答头并解码载荷
// checkHeaders 校验应答的媒体类型与传输编码，返回声明的消息类型
func checkHeaders(header http.Header) (message.Type, error) {
	t, err := message.ParseMediaType(header.Get(headerContentType))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if enc := header.Get(headerTransferEncoding); enc != binaryEncoding {
		return "", fmt.Errorf("%w: transfer encoding %q", ErrFormat, enc)
	}
	return t, nil
}

func (d *Driver) decode(header http.Header, body []byte, accept []message.Type) (*message.Message, error) {
	t, err := checkHeaders(header)
	if err != nil {
		return nil, err
	}
	if !containsType(accept, t) {
		return nil, fmt.Errorf("%w: unexpected message type %s", ErrFormat, t)
	}

	in, err := d.codec.Deserialize(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if in.Type != t {
		return nil, fmt.Errorf("%w: content type %s carries %s", ErrFormat, t, in.Type)
	}
	return in, nil
}

func containsType(types []message.Type, t message.Type) bool {
	for _, x := range types {
		if x == t {
			return true
		}
	}
	return false
}

func resultOf(out *Outcome, err error) string {
	switch {
	case err == nil && out != nil && out.Duplicate:
		return resultDuplicate
	case err == nil:
		return resultOK
	case errors.Is(err, ErrRemote):
		return resultRemote
	case errors.Is(err, ErrFormat):
		return resultFormat
	default:
		return resultProcessing
	}
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
