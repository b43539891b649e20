package llm

import (
	"log"
	"os"
	"time"
)

const (
	// EnvCoachMode is the environment variable name for mode selection.
	EnvCoachMode = "COACH_MODE"
	// ModeMock indicates mock mode should be used.
	ModeMock = "MOCK"
)

// NewLLMClient creates an LLM client based on the COACH_MODE environment variable.
// If COACH_MODE=MOCK, returns a MockClient; otherwise returns a real client.
func NewLLMClient(baseURL, apiKey string, timeout time.Duration) LLMClient {
	if os.Getenv(EnvCoachMode) == ModeMock {
		log.Println("COACH_MODE=MOCK detected, using mock LLM client")
		return NewMockClient()
	}

	if apiKey == "" {
		log.Println("WARN: OPENAI_API_KEY is empty, scoring requests will fail")
	}
	return NewClient(baseURL, apiKey, timeout)
}
