// Package llm provides an abstraction over the chat completion API used to
// evaluate finished calls.
package llm

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
)

// LLMClient defines the interface for LLM API operations.
type LLMClient interface {
	// CreateChatCompletion sends a chat completion request (non-streaming).
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Ensure the OpenAI client implements LLMClient interface.
var _ LLMClient = (*openai.Client)(nil)
