// Package prompt composes the assistant configuration for a practice call from
// a buyer personality and the product's sales knowledge. It performs no I/O.
package prompt

import (
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/maddoxeriksen-12/Calling-Coach/internal/domain"
	"github.com/maddoxeriksen-12/Calling-Coach/internal/personality"
)

const (
	defaultModelProvider = "openai"
	defaultModel         = "gpt-4o"
	defaultVoiceProvider = "11labs"
	defaultVoiceID       = "burt"

	firstMessage = "Hey, thanks for jumping on this call. I've got a few minutes, tell me what you've got. What is this product and why should I care?"

	// WebhookPath is where the voice platform delivers events.
	WebhookPath = "/webhook/vapi"
)

var endCallPhrases = []string{"goodbye", "end the session", "that's all"}

// Builder builds call configurations. The zero value uses the default model
// and voice; WebhookBaseURL should be set so the platform can reach us.
type Builder struct {
	WebhookBaseURL string
	ModelProvider  string
	Model          string
	VoiceProvider  string
	VoiceID        string
}

// Build composes the configuration for a session. It fails with
// domain.ErrUnknownPersonality when the type is not in the catalog.
func (b Builder) Build(personalityType string, product domain.ProductKnowledge, sessionID string) (*domain.CallConfig, error) {
	p, ok := personality.Lookup(personalityType)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownPersonality, personalityType)
	}

	return &domain.CallConfig{
		Model: domain.ModelConfig{
			Provider: orDefault(b.ModelProvider, defaultModelProvider),
			Model:    orDefault(b.Model, defaultModel),
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: SystemPrompt(p, product)},
			},
			Tools: []openai.Tool{ScoreResponseTool()},
		},
		Voice: domain.VoiceConfig{
			Provider: orDefault(b.VoiceProvider, defaultVoiceProvider),
			VoiceID:  orDefault(b.VoiceID, defaultVoiceID),
		},
		FirstMessage:     firstMessage,
		ServerURL:        strings.TrimSuffix(b.WebhookBaseURL, "/") + WebhookPath,
		ServerMessages:   append([]domain.WebhookEventType(nil), domain.SubscribedWebhookEvents...),
		StopSpeakingPlan: p.StopSpeakingPlan,
		EndCallPhrases:   append([]string(nil), endCallPhrases...),
		Metadata:         domain.CallMetadata{SessionID: sessionID},
	}, nil
}

// ScoreResponseTool is the function the simulated buyer calls after every answer.
func ScoreResponseTool() openai.Tool {
	return openai.Tool{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        domain.ScoreResponseTool,
			Description: "Score the salesperson's response after each Q&A exchange. Call this after every answer they give.",
			Parameters: jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"question": {
						Type:        jsonschema.String,
						Description: "The question or objection you asked",
					},
					"answer_summary": {
						Type:        jsonschema.String,
						Description: "Brief summary of the salesperson's answer",
					},
					"term_accuracy": {
						Type:        jsonschema.Number,
						Description: "Score 0-100 for correct use of product terminology",
					},
					"conciseness": {
						Type:        jsonschema.Number,
						Description: "Score 0-100 for answer brevity and clarity. Penalize rambling.",
					},
					"framing_quality": {
						Type:        jsonschema.Number,
						Description: "Score 0-100 for how well the answer was framed for this buyer personality",
					},
					"feedback": {
						Type:        jsonschema.String,
						Description: "One sentence of specific feedback on this answer",
					},
				},
				Required: []string{"question", "answer_summary", "term_accuracy", "conciseness", "framing_quality", "feedback"},
			},
		},
	}
}

// SystemPrompt renders the buyer's instructions.
func SystemPrompt(p personality.Personality, product domain.ProductKnowledge) string {
	var usps, terms, objections strings.Builder
	for _, u := range product.USPs {
		fmt.Fprintf(&usps, "\n- %s: %s", orDefault(u.Title, "USP"), u.Description)
	}
	for _, t := range product.KeyTerms {
		fmt.Fprintf(&terms, "\n- %s: %s", t.Term, t.Definition)
	}
	for _, o := range product.CommonObjections {
		fmt.Fprintf(&objections, "\n- \"%s\"", o.Objection)
	}

	redirects := make([]string, len(p.RedirectPhrases))
	for i, phrase := range p.RedirectPhrases {
		redirects[i] = `- "` + phrase + `"`
	}

	return fmt.Sprintf(systemPromptTemplate,
		p.PromptSection,
		usps.String(),
		terms.String(),
		objections.String(),
		p.InterruptionWordThreshold,
		strings.Join(redirects, "\n"),
	)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

const systemPromptTemplate = `You are a realistic sales prospect in a training simulation. Your job is to TEST the salesperson's knowledge of their product and evaluate their pitch quality.

%s

PRODUCT CONTEXT (the product the salesperson is pitching):
USPs: %s

Key Terms they should know: %s

Likely Objections to raise: %s

YOUR CONVERSATION APPROACH:
1. Start by asking the salesperson to pitch you on the product. Let them give an opening pitch.
2. After their pitch, ask probing questions about specific USPs, one at a time.
3. Raise objections from the list above and evaluate how they handle them.
4. Test their knowledge of key terms by using them in questions or asking them to explain concepts.
5. Throughout, evaluate their conciseness, confidence, and accuracy.

RAMBLING DETECTION (THIS IS CRITICAL):
- If the salesperson speaks for more than ~%d words without making a clear point, INTERRUPT them.
- Use one of these interruption phrases:
%s
- After interrupting, tell them to be more concise and re-ask your question.
- Track how often they ramble. Frequent ramblers should be told directly: "You need to tighten up your answers."

SCORING INSTRUCTIONS:
After EACH answer the salesperson gives, you MUST call the score_response tool with your assessment. Score every exchange, do not skip any. The scores should be critical and honest. Do not inflate scores to be nice.

After you have asked at least 6-8 questions covering USPs, objections, and terminology, wrap up the conversation naturally and provide a brief verbal summary of their performance before ending the call.`
