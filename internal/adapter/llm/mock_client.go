package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// MockClient is a mock implementation of LLMClient for local runs and tests.
// It answers every request with a fixed scorecard.
type MockClient struct {
	calls atomic.Int64
}

// NewMockClient creates a new mock LLM client.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// Ensure MockClient implements LLMClient interface.
var _ LLMClient = (*MockClient)(nil)

// Calls returns how many completions were requested.
func (m *MockClient) Calls() int64 {
	return m.calls.Load()
}

// CreateChatCompletion returns a mock scorecard.
func (m *MockClient) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	m.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return openai.ChatCompletionResponse{}, err
	}

	content := m.generateMockResponse(req)
	return openai.ChatCompletionResponse{
		ID:      fmt.Sprintf("mock-chatcmpl-%d", time.Now().UnixNano()),
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   req.Model,
		Choices: []openai.ChatCompletionChoice{
			{
				Index: 0,
				Message: openai.ChatCompletionMessage{
					Role:    openai.ChatMessageRoleAssistant,
					Content: content,
				},
				FinishReason: openai.FinishReasonStop,
			},
		},
		Usage: openai.Usage{
			PromptTokens:     m.estimateTokens(req),
			CompletionTokens: len(content) / 4,
			TotalTokens:      m.estimateTokens(req) + len(content)/4,
		},
	}, nil
}

// generateMockResponse builds a scorecard that mentions how long the prompt was.
func (m *MockClient) generateMockResponse(req openai.ChatCompletionRequest) string {
	var prompt strings.Builder
	for _, msg := range req.Messages {
		prompt.WriteString(msg.Content)
	}
	turns := strings.Count(prompt.String(), "\n")

	card := map[string]interface{}{
		"term_understanding":  70,
		"description_breadth": 65,
		"conciseness":         60,
		"objection_handling":  55,
		"usp_framing":         68,
		"confidence":          72,
		"overall":             65,
		"detailed_feedback": map[string]interface{}{
			"per_answer_feedback": []interface{}{},
			"strengths":           []string{"[MOCK] Clear opening"},
			"improvements":        []string{fmt.Sprintf("[MOCK] Tighten answers across %d transcript lines", turns)},
			"rambling_instances":  0,
		},
	}
	data, _ := json.Marshal(card)
	return string(data)
}

// estimateTokens provides a rough token count estimate.
func (m *MockClient) estimateTokens(req openai.ChatCompletionRequest) int {
	total := 0
	for _, msg := range req.Messages {
		total += len(msg.Content) / 4
	}
	return total
}
