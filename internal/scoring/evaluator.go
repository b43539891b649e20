// Package scoring evaluates finished practice calls and decodes in-call
// answer scores.
package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	openai "github.com/sashabaranov/go-openai"

	"github.com/maddoxeriksen-12/Calling-Coach/internal/adapter/llm"
	"github.com/maddoxeriksen-12/Calling-Coach/internal/domain"
)

// Evaluator turns a full transcript into a final evaluation.
type Evaluator interface {
	Evaluate(ctx context.Context, transcript []domain.TranscriptTurn, product domain.ProductKnowledge, personalityType string) (*domain.Evaluation, error)
}

// LLMEvaluator asks a chat completion model for a JSON scorecard.
type LLMEvaluator struct {
	client      llm.LLMClient
	model       string
	temperature float32
}

var _ Evaluator = (*LLMEvaluator)(nil)

// NewLLMEvaluator creates an evaluator using model. An empty model means gpt-4o.
func NewLLMEvaluator(client llm.LLMClient, model string) *LLMEvaluator {
	if model == "" {
		model = openai.GPT4o
	}
	return &LLMEvaluator{client: client, model: model, temperature: 0.3}
}

const evaluatorSystemMessage = "You are a strict sales performance evaluator. Return only valid JSON."

var scoringPrompt = template.Must(template.New("scoring").Parse(`You are a strict sales coach evaluating a salesperson's performance in a practice call.

PRODUCT CONTEXT:
USPs: {{.USPs}}
Key Terms: {{.KeyTerms}}

PERSONALITY TYPE: {{.PersonalityType}}

FULL TRANSCRIPT:
{{.Transcript}}
Evaluate the salesperson across the dimensions below on a 0-100 scale. Be critical: most salespeople should land between 40 and 75, and only genuinely excellent work earns 80 or more.

Return a JSON object with:

1. "term_understanding" (0-100): correct use and explanation of product terminology, including definitions when challenged.
2. "description_breadth" (0-100): coverage of features and benefits across several USPs, connected to customer value.
3. "conciseness" (0-100): crisp, direct answers. Penalize rambling, filler words and circular explanations heavily.
4. "objection_handling" (0-100): acknowledging pushback, answering with evidence, staying confident under pressure.
5. "usp_framing" (0-100): tailoring the pitch to this buyer personality. A skeptic needs proof, an executive needs brevity, an analyst needs data.
6. "confidence" (0-100): sounding knowledgeable and assured. Penalize hedging and backing down too easily.
7. "overall" (0-100): weighted average of the dimensions with extra weight on the weakest areas.
8. "per_answer_feedback": one object per Q&A exchange with "question", "answer_summary", "score" (0-100), "feedback" (1-2 actionable sentences) and "improvement" (a brief example of a better answer).
9. "strengths": 2-3 specific things done well.
10. "improvements": 3-5 specific things to work on, highest priority first.
11. "rambling_instances": how many times the salesperson rambled.

Return ONLY valid JSON.`))

// Evaluate scores the transcript. Malformed or out-of-range model output yields
// domain.ErrMalformedEvaluation.
func (e *LLMEvaluator) Evaluate(ctx context.Context, transcript []domain.TranscriptTurn, product domain.ProductKnowledge, personalityType string) (*domain.Evaluation, error) {
	prompt, err := BuildPrompt(transcript, product, personalityType)
	if err != nil {
		return nil, err
	}

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: evaluatorSystemMessage},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature:    e.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to call evaluator model: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices returned", domain.ErrMalformedEvaluation)
	}

	return ParseEvaluation(resp.Choices[0].Message.Content)
}

// BuildPrompt renders the evaluation prompt for a transcript.
func BuildPrompt(transcript []domain.TranscriptTurn, product domain.ProductKnowledge, personalityType string) (string, error) {
	usps, err := json.MarshalIndent(nonNil(product.USPs), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal usps: %w", err)
	}
	terms, err := json.MarshalIndent(nonNil(product.KeyTerms), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal key terms: %w", err)
	}

	var buf strings.Builder
	err = scoringPrompt.Execute(&buf, map[string]string{
		"USPs":            string(usps),
		"KeyTerms":        string(terms),
		"PersonalityType": personalityType,
		"Transcript":      FormatTranscript(transcript),
	})
	if err != nil {
		return "", fmt.Errorf("failed to render scoring prompt: %w", err)
	}
	return buf.String(), nil
}

// FormatTranscript renders turns as "ROLE: content" lines.
func FormatTranscript(transcript []domain.TranscriptTurn) string {
	var b strings.Builder
	for _, turn := range transcript {
		role := turn.Role
		if role == "" {
			role = "unknown"
		}
		b.WriteString(strings.ToUpper(role))
		b.WriteString(": ")
		b.WriteString(turn.Content)
		b.WriteString("\n")
	}
	return b.String()
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

type scorecard struct {
	TermUnderstanding  float64 `json:"term_understanding"`
	DescriptionBreadth float64 `json:"description_breadth"`
	Conciseness        float64 `json:"conciseness"`
	ObjectionHandling  float64 `json:"objection_handling"`
	USPFraming         float64 `json:"usp_framing"`
	Confidence         float64 `json:"confidence"`
	Overall            float64 `json:"overall"`

	PerAnswerFeedback []domain.PerAnswerFeedback `json:"per_answer_feedback"`
	Strengths         []string                   `json:"strengths"`
	Improvements      []string                   `json:"improvements"`
	RamblingInstances int                        `json:"rambling_instances"`

	// Some models nest the feedback fields.
	DetailedFeedback *domain.ScoreFeedback `json:"detailed_feedback"`
}

// ParseEvaluation decodes a model scorecard. Missing metrics count as 0.
func ParseEvaluation(content string) (*domain.Evaluation, error) {
	content = stripCodeFence(content)
	if content == "" {
		return nil, fmt.Errorf("%w: empty response", domain.ErrMalformedEvaluation)
	}

	var card scorecard
	if err := json.Unmarshal([]byte(content), &card); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedEvaluation, err)
	}

	metrics := map[string]float64{
		"term_understanding":  card.TermUnderstanding,
		"description_breadth": card.DescriptionBreadth,
		"conciseness":         card.Conciseness,
		"objection_handling":  card.ObjectionHandling,
		"usp_framing":         card.USPFraming,
		"confidence":          card.Confidence,
		"overall":             card.Overall,
	}
	for name, v := range metrics {
		if v < 0 || v > 100 {
			return nil, fmt.Errorf("%w: %s=%v outside 0-100", domain.ErrMalformedEvaluation, name, v)
		}
	}

	feedback := domain.ScoreFeedback{
		PerAnswerFeedback: card.PerAnswerFeedback,
		Strengths:         card.Strengths,
		Improvements:      card.Improvements,
		RamblingInstances: card.RamblingInstances,
	}
	if card.DetailedFeedback != nil && len(feedback.PerAnswerFeedback)+len(feedback.Strengths)+len(feedback.Improvements) == 0 {
		feedback = *card.DetailedFeedback
	}
	if feedback.PerAnswerFeedback == nil {
		feedback.PerAnswerFeedback = []domain.PerAnswerFeedback{}
	}
	if feedback.Strengths == nil {
		feedback.Strengths = []string{}
	}
	if feedback.Improvements == nil {
		feedback.Improvements = []string{}
	}

	return &domain.Evaluation{
		TermUnderstanding:  card.TermUnderstanding,
		DescriptionBreadth: card.DescriptionBreadth,
		Conciseness:        card.Conciseness,
		ObjectionHandling:  card.ObjectionHandling,
		USPFraming:         card.USPFraming,
		Confidence:         card.Confidence,
		Overall:            card.Overall,
		Feedback:           feedback,
	}, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
