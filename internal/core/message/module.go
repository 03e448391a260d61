package message

import "go.uber.org/fx"

// Module 提供默认编解码器
func Module() fx.Option {
	return fx.Module("message",
		fx.Provide(func() Codec { return NewProtoCodec() }),
	)
}
