package domain

import openai "github.com/sashabaranov/go-openai"

// CallConfig is the assistant configuration handed to the voice platform when
// a practice call starts. It is inert data.
type CallConfig struct {
	Model            ModelConfig        `json:"model"`
	Voice            VoiceConfig        `json:"voice"`
	FirstMessage     string             `json:"firstMessage"`
	ServerURL        string             `json:"serverUrl"`
	ServerMessages   []WebhookEventType `json:"serverMessages"`
	StopSpeakingPlan StopSpeakingPlan   `json:"stopSpeakingPlan"`
	EndCallPhrases   []string           `json:"endCallPhrases"`
	Metadata         CallMetadata       `json:"metadata"`
}

// ModelConfig configures the language model that plays the buyer.
type ModelConfig struct {
	Provider string                         `json:"provider"`
	Model    string                         `json:"model"`
	Messages []openai.ChatCompletionMessage `json:"messages"`
	Tools    []openai.Tool                  `json:"tools"`
}

// VoiceConfig selects the synthetic voice.
type VoiceConfig struct {
	Provider string `json:"provider"`
	VoiceID  string `json:"voiceId"`
}

// StopSpeakingPlan controls how eagerly the buyer yields when interrupted.
type StopSpeakingPlan struct {
	NumWords       int     `json:"numWords"`
	VoiceSeconds   float64 `json:"voiceSeconds"`
	BackoffSeconds float64 `json:"backoffSeconds"`
}

// CallMetadata is echoed back by the platform for correlation.
type CallMetadata struct {
	SessionID string `json:"session_id"`
}
