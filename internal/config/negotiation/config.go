// Package negotiation 提供付款方议价决策的配置
package negotiation

import (
	"time"

	"github.com/weisyn/bargain/pkg/types"
)

// NegotiationOptions 议价配置选项
type NegotiationOptions struct {
	RequestTTL  time.Duration `json:"request_ttl"`
	BargainURI  string        `json:"bargain_uri"`
	DefaultFees int64         `json:"default_fees"`
}

// Config 议价配置实现
type Config struct {
	options *NegotiationOptions
}

// New 创建议价配置
func New(userConfig *types.UserNegotiationConfig) *Config {
	opts := &NegotiationOptions{
		RequestTTL:  defaultRequestTTL,
		BargainURI:  defaultBargainURI,
		DefaultFees: defaultFees,
	}
	if u := userConfig; u != nil {
		if u.RequestTTLSec != nil && *u.RequestTTLSec > 0 {
			opts.RequestTTL = time.Duration(*u.RequestTTLSec) * time.Second
		}
		if u.BargainURI != nil {
			opts.BargainURI = *u.BargainURI
		}
		if u.DefaultFees != nil && *u.DefaultFees >= 0 {
			opts.DefaultFees = *u.DefaultFees
		}
	}
	return &Config{options: opts}
}

func (c *Config) GetOptions() *NegotiationOptions { return c.options }
