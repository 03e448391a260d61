// Package exchange 提供与收款方交换议价消息的 HTTP 配置
package exchange

import (
	"time"

	"github.com/weisyn/bargain/pkg/types"
)

// ExchangeOptions 消息交换配置选项
type ExchangeOptions struct {
	InitialURI      string        `json:"initial_uri"`
	RequestTimeout  time.Duration `json:"request_timeout"`
	UserAgent       string        `json:"user_agent"`
	AppendMalformed bool          `json:"append_malformed"`
}

// Config 消息交换配置实现
type Config struct {
	options *ExchangeOptions
}

// New 创建消息交换配置
func New(userConfig *types.UserExchangeConfig) *Config {
	opts := &ExchangeOptions{
		InitialURI:      defaultInitialURI,
		RequestTimeout:  defaultRequestTimeout,
		UserAgent:       defaultUserAgent,
		AppendMalformed: defaultAppendMalformed,
	}
	if u := userConfig; u != nil {
		if u.InitialURI != nil {
			opts.InitialURI = *u.InitialURI
		}
		if u.RequestTimeoutSec != nil && *u.RequestTimeoutSec > 0 {
			opts.RequestTimeout = time.Duration(*u.RequestTimeoutSec) * time.Second
		}
		if u.UserAgent != nil {
			opts.UserAgent = *u.UserAgent
		}
		if u.AppendMalformed != nil {
			opts.AppendMalformed = *u.AppendMalformed
		}
	}
	return &Config{options: opts}
}

func (c *Config) GetOptions() *ExchangeOptions { return c.options }
