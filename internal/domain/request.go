package domain

import (
	"encoding/json"
	"time"
)

// WebhookMessage is one event delivered by the voice platform. Only the fields
// of the kind named by Type are populated.
type WebhookMessage struct {
	Type         string           `json:"type"`
	Call         WebhookCall      `json:"call"`
	ToolCallList WebhookToolCalls `json:"toolCallList,omitempty"`
	Artifact     WebhookArtifact  `json:"artifact"`
	Role         string           `json:"role,omitempty"`
	Transcript   string           `json:"transcript,omitempty"`
	Status       string           `json:"status,omitempty"`
}

// EventType classifies the message into the closed set of known kinds.
func (m *WebhookMessage) EventType() WebhookEventType {
	return ParseWebhookEventType(m.Type)
}

// TranscriptText returns the fragment text of a transcript event.
func (m *WebhookMessage) TranscriptText() string {
	if m.Artifact.Transcript != "" {
		return m.Artifact.Transcript
	}
	return m.Transcript
}

// WebhookCall identifies the external call an event belongs to.
type WebhookCall struct {
	ID string `json:"id"`
}

// UnmarshalJSON accepts a string or numeric id and ignores any other shape.
func (c *WebhookCall) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		*c = WebhookCall{}
		return nil
	}
	c.ID = looseString(raw.ID)
	return nil
}

// WebhookArtifact carries transcript data attached to an event.
type WebhookArtifact struct {
	Messages   []TranscriptTurn `json:"messages,omitempty"`
	Transcript string           `json:"transcript,omitempty"`
}

// WebhookToolCalls is a tool-calls batch. Entries are decoded one by one so a
// badly shaped entry never hides the others.
type WebhookToolCalls []WebhookToolCall

// UnmarshalJSON keeps every array entry. Anything other than an array decodes
// to an empty batch.
func (l *WebhookToolCalls) UnmarshalJSON(data []byte) error {
	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		*l = nil
		return nil
	}
	calls := make(WebhookToolCalls, len(entries))
	for i, entry := range entries {
		calls[i] = decodeToolCall(entry)
	}
	*l = calls
	return nil
}

func decodeToolCall(data []byte) WebhookToolCall {
	var raw struct {
		ID       json.RawMessage `json:"id"`
		Function json.RawMessage `json:"function"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return WebhookToolCall{}
	}

	call := WebhookToolCall{ID: looseString(raw.ID)}
	var fn struct {
		Name      json.RawMessage `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}
	if err := json.Unmarshal(raw.Function, &fn); err == nil {
		call.Function = WebhookToolFunction{Name: looseString(fn.Name), Arguments: fn.Arguments}
	}
	return call
}

// looseString reads a JSON string or number as text. Other values are empty.
func looseString(data json.RawMessage) string {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		return n.String()
	}
	return ""
}

// WebhookToolCall is a single function invocation inside a tool-calls batch.
type WebhookToolCall struct {
	ID       string              `json:"id"`
	Function WebhookToolFunction `json:"function"`
}

// WebhookToolFunction names the function and carries its arguments, either as
// a JSON object or as a JSON-encoded string.
type WebhookToolFunction struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// ToolCallResult acknowledges one tool call back to the voice platform.
type ToolCallResult struct {
	Name       string `json:"name"`
	ToolCallID string `json:"toolCallId"`
	Result     string `json:"result"` // JSON-encoded
}

// ToolCallsResponse is the webhook response for a tool-calls batch.
type ToolCallsResponse struct {
	Results []ToolCallResult `json:"results"`
}

// StatusResponse is the webhook response for every other event.
type StatusResponse struct {
	Status string `json:"status"`
}

// ScoreResponseArgs are the arguments of a score_response tool call after
// lenient decoding.
type ScoreResponseArgs struct {
	Question       string
	AnswerSummary  string
	TermAccuracy   float64
	Conciseness    float64
	FramingQuality float64
	Feedback       string
}

// CreateSessionRequest represents the request to start a practice session.
type CreateSessionRequest struct {
	ProductID       string `json:"product_id"`
	PersonalityType string `json:"personality_type"`
}

// PersonalitySummary is the public view of a catalog entry.
type PersonalitySummary struct {
	Type        string `json:"type,omitempty"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// CreateSessionResponse carries the new session id and the configuration the
// client hands to the voice platform.
type CreateSessionResponse struct {
	SessionID   string             `json:"session_id"`
	VapiConfig  *CallConfig        `json:"vapi_config"`
	Personality PersonalitySummary `json:"personality"`
}

// UpdateCallIDRequest binds the external call id to a session.
type UpdateCallIDRequest struct {
	VapiCallID string `json:"vapi_call_id"`
}

// SessionListItem is one row of the session history.
type SessionListItem struct {
	ID              string        `json:"id"`
	ProductName     string        `json:"product_name"`
	PersonalityType string        `json:"personality_type"`
	Status          SessionStatus `json:"status"`
	OverallScore    *float64      `json:"overall_score"`
	CreatedAt       time.Time     `json:"created_at"`
}

// SessionDetail is a session together with its scores.
type SessionDetail struct {
	ID              string           `json:"id"`
	ProductName     string           `json:"product_name"`
	PersonalityType string           `json:"personality_type"`
	Status          SessionStatus    `json:"status"`
	Transcript      []TranscriptTurn `json:"transcript"`
	CreatedAt       time.Time        `json:"created_at"`
	Scores          *Score           `json:"scores"`
	AnswerScores    []AnswerScore    `json:"answer_scores"`
}

// UnmarshalJSON accepts both {"role","content"} and the platform's
// {"role","message"} message shape.
func (t *TranscriptTurn) UnmarshalJSON(data []byte) error {
	var raw struct {
		Role    string `json:"role"`
		Content string `json:"content"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	t.Role = raw.Role
	t.Content = raw.Content
	if t.Content == "" {
		t.Content = raw.Message
	}
	return nil
}
