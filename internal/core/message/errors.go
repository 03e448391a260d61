package message

import "errors"

var (
	// ErrUnknownType 未知的消息类型或媒体类型
	ErrUnknownType = errors.New("unknown message type")
	// ErrMalformed 线格式无法解析
	ErrMalformed = errors.New("malformed message payload")
	// ErrUnsupportedSignType 不支持的签名算法
	ErrUnsupportedSignType = errors.New("unsupported signature type")
	// ErrSignature 签名无效或无法生成
	ErrSignature = errors.New("invalid signature")
	// ErrNilMessage 消息为空
	ErrNilMessage = errors.New("message is nil")
)
