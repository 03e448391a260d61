// Package message 定义议价协议的消息模型与默认编解码实现
//
// 📋 **职责**
// - 六种消息类型及其 details 载荷（封闭的标签变体）
// - protobuf 线格式的序列化与反序列化
// - ECDSA-SHA256 签名链（prev_hash 绑定前一条消息）
// - 按网络进行的消息格式校验
package message

import (
	"fmt"
	"strings"
)

// Type 消息类型，取值即线上名称
type Type string

const (
	TypeRequest      Type = "bargainingrequest"
	TypeRequestAck   Type = "bargainingrequestack"
	TypeProposal     Type = "bargainingproposal"
	TypeProposalAck  Type = "bargainingproposalack"
	TypeCompletion   Type = "bargainingcompletion"
	TypeCancellation Type = "bargainingcancellation"
)

// MediaTypePrefix HTTP 媒体类型前缀
const MediaTypePrefix = "application/bitcoin-"

// AllTypes 全部消息类型
var AllTypes = []Type{TypeRequest, TypeRequestAck, TypeProposal, TypeProposalAck, TypeCompletion, TypeCancellation}

// Valid 是否为已知类型
func (t Type) Valid() bool {
	for _, known := range AllTypes {
		if t == known {
			return true
		}
	}
	return false
}

// IsTerminal COMPLETION 与 CANCELLATION 之后议价结束
func (t Type) IsTerminal() bool {
	return t == TypeCompletion || t == TypeCancellation
}

// Author 非终止消息的发送方角色。CANCELLATION 双方都可发送，返回 RoleNone
func (t Type) Author() Role {
	switch t {
	case TypeRequest, TypeProposal:
		return RolePayer
	case TypeRequestAck, TypeProposalAck, TypeCompletion:
		return RolePayee
	default:
		return RoleNone
	}
}

// MediaType 返回 application/bitcoin-<type>
func (t Type) MediaType() string {
	return MediaTypePrefix + string(t)
}

// ParseMediaType 解析 Content-Type 头。头部可能带有 ';' 分隔的参数，
// 任一段为已知媒体类型即可
func ParseMediaType(header string) (Type, error) {
	for _, part := range strings.Split(header, ";") {
		part = strings.TrimSpace(strings.ToLower(part))
		if !strings.HasPrefix(part, MediaTypePrefix) {
			continue
		}
		t := Type(strings.TrimPrefix(part, MediaTypePrefix))
		if t.Valid() {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownType, header)
}

// JoinMediaTypes 生成 Accept 头：逗号分隔的媒体类型
func JoinMediaTypes(types []Type) string {
	parts := make([]string, 0, len(types))
	for _, t := range types {
		parts = append(parts, t.MediaType())
	}
	return strings.Join(parts, ",")
}

// Status 消息校验状态
type Status string

const (
	StatusOK           Status = "ok"
	StatusUndetermined Status = "und"
	StatusKO           Status = "ko"
)

// Role 议价参与方角色
type Role string

const (
	RolePayer Role = "payer"
	RolePayee Role = "payee"
	// RoleNone 议价已结束，没有任何一方需要行动
	RoleNone Role = ""
)

// Counterpart 返回对方角色
func (r Role) Counterpart() Role {
	switch r {
	case RolePayer:
		return RolePayee
	case RolePayee:
		return RolePayer
	default:
		return RoleNone
	}
}

// SignType 签名算法
type SignType string

const (
	SignNone        SignType = "none"
	SignECDSASHA256 SignType = "ecdsa_sha256"
)
