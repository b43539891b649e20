package domain

import (
	"errors"
	"time"
)

var (
	ErrSessionNotFound     = errors.New("session not found")
	ErrProductNotFound     = errors.New("product not found")
	ErrUnknownPersonality  = errors.New("unknown personality type")
	ErrCallIDConflict      = errors.New("call id already bound to another session")
	ErrMalformedEvaluation = errors.New("malformed evaluation result")
)

// TranscriptTurn is one utterance of a practice call.
type TranscriptTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Session represents one simulated sales call.
type Session struct {
	SessionID       string           `json:"session_id"`
	UserID          string           `json:"user_id"`
	ProductID       string           `json:"product_id"`
	PersonalityType string           `json:"personality_type"`
	CallID          string           `json:"vapi_call_id,omitempty"` // empty until the platform reports it
	Status          SessionStatus    `json:"status"`
	Transcript      []TranscriptTurn `json:"transcript"`
	CreatedAt       time.Time        `json:"created_at"`
}

// AnswerScore is the in-call score of a single Q&A exchange.
type AnswerScore struct {
	AnswerScoreID  string    `json:"answer_score_id"`
	SessionID      string    `json:"session_id"`
	Question       string    `json:"question"`
	AnswerSummary  string    `json:"answer_summary"`
	TermAccuracy   float64   `json:"term_accuracy"`
	Conciseness    float64   `json:"conciseness"`
	FramingQuality float64   `json:"framing_quality"`
	Feedback       string    `json:"feedback"`
	CreatedAt      time.Time `json:"created_at"`
}

// PerAnswerFeedback is the evaluator's judgement of one exchange.
type PerAnswerFeedback struct {
	Question      string  `json:"question"`
	AnswerSummary string  `json:"answer_summary"`
	Score         float64 `json:"score"`
	Feedback      string  `json:"feedback"`
	Improvement   string  `json:"improvement"`
}

// ScoreFeedback is the structured feedback document stored with a Score.
type ScoreFeedback struct {
	PerAnswerFeedback []PerAnswerFeedback `json:"per_answer_feedback"`
	Strengths         []string            `json:"strengths"`
	Improvements      []string            `json:"improvements"`
	RamblingInstances int                 `json:"rambling_instances"`
}

// Score is the final evaluation of a completed session. There is at most one
// per session.
type Score struct {
	ScoreID            string        `json:"score_id"`
	SessionID          string        `json:"session_id"`
	TermUnderstanding  float64       `json:"term_understanding"`
	DescriptionBreadth float64       `json:"description_breadth"`
	Conciseness        float64       `json:"conciseness"`
	ObjectionHandling  float64       `json:"objection_handling"`
	USPFraming         float64       `json:"usp_framing"`
	Confidence         float64       `json:"confidence"`
	Overall            float64       `json:"overall"`
	Feedback           ScoreFeedback `json:"detailed_feedback"`
	CreatedAt          time.Time     `json:"created_at"`
}

// Evaluation is the structured result returned by an evaluator.
type Evaluation struct {
	TermUnderstanding  float64
	DescriptionBreadth float64
	Conciseness        float64
	ObjectionHandling  float64
	USPFraming         float64
	Confidence         float64
	Overall            float64
	Feedback           ScoreFeedback
}
