package llm

import (
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// NewClient creates an OpenAI-compatible client. An empty baseURL keeps the
// library default.
func NewClient(baseURL, apiKey string, timeout time.Duration) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if timeout > 0 {
		cfg.HTTPClient = &http.Client{Timeout: timeout}
	}
	return openai.NewClientWithConfig(cfg)
}
