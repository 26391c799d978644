package llm

import (
	"net/http"

	"github.com/sashabaranov/go-openai"
)

// Option 调整底层 OpenAI 客户端配置
type Option func(*openai.ClientConfig)

// WithHTTPClient 指定发起请求使用的 HTTP 客户端（如带代理的客户端）
func WithHTTPClient(hc *http.Client) Option {
	return func(cfg *openai.ClientConfig) {
		cfg.HTTPClient = hc
	}
}
