package exchange

import (
	"errors"
	"fmt"
)

var (
	// ErrRemote 远端返回非 2xx、超时或连接失败
	ErrRemote = errors.New("remote node error")
	// ErrFormat 应答的媒体类型、传输编码或载荷不合法
	ErrFormat = errors.New("invalid response format")
	// ErrProcessing 处理应答时发生意外错误，议价可能未更新
	ErrProcessing = errors.New("processing error")
)

// 面向用户的错误文案
const (
	msgRemote     = "Remote node returned an error"
	msgProcessing = "A problem occurred while processing the message sent by the remote node"
)

// RemoteError 远端错误，StatusCode 为 0 表示未收到 HTTP 应答
type RemoteError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *RemoteError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("remote node error: %v", e.Err)
	}
	if e.Body != "" {
		return fmt.Sprintf("remote node returned HTTP %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("remote node returned HTTP %d", e.StatusCode)
}

// Is 使 errors.Is(err, ErrRemote) 成立
func (e *RemoteError) Is(target error) bool { return target == ErrRemote }

func (e *RemoteError) Unwrap() error { return e.Err }

// UserMessage 将交换错误归为两类用户可见文案
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrRemote):
		return msgRemote
	default:
		return msgProcessing
	}
}
