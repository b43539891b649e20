package prompt

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maddoxeriksen-12/Calling-Coach/internal/domain"
	"github.com/maddoxeriksen-12/Calling-Coach/internal/personality"
)

func testProduct() domain.ProductKnowledge {
	return domain.ProductKnowledge{
		USPs: []domain.USP{
			{Title: "Zero-downtime sync", Description: "Replicates writes without locking."},
			{Description: "Untitled differentiator"},
		},
		KeyTerms: []domain.KeyTerm{
			{Term: "CDC", Definition: "Change data capture"},
		},
		CommonObjections: []domain.Objection{
			{Objection: "We already have a replication tool"},
		},
	}
}

func TestBuildBusyExecutive(t *testing.T) {
	b := Builder{WebhookBaseURL: "https://coach.example.com/"}

	cfg, err := b.Build(personality.BusyExecutive, testProduct(), "sess_1")
	require.NoError(t, err)

	require.Len(t, cfg.Model.Messages, 1)
	system := cfg.Model.Messages[0].Content
	assert.Contains(t, system, "more than ~30 words")
	assert.Contains(t, system, `"Stop. I need that in one sentence."`)
	assert.Contains(t, system, "BUSY EXECUTIVE")
	assert.Contains(t, system, "- Zero-downtime sync: Replicates writes without locking.")
	assert.Contains(t, system, "- USP: Untitled differentiator")
	assert.Contains(t, system, "- CDC: Change data capture")
	assert.Contains(t, system, `- "We already have a replication tool"`)

	assert.Equal(t, "https://coach.example.com/webhook/vapi", cfg.ServerURL)
	assert.Equal(t, "sess_1", cfg.Metadata.SessionID)
	assert.Equal(t, domain.StopSpeakingPlan{NumWords: 2, VoiceSeconds: 0.15, BackoffSeconds: 0.5}, cfg.StopSpeakingPlan)
	assert.Equal(t, "gpt-4o", cfg.Model.Model)
	assert.Equal(t, "burt", cfg.Voice.VoiceID)

	want := []domain.WebhookEventType{"end-of-call-report", "tool-calls", "transcript", "status-update"}
	if diff := cmp.Diff(want, cfg.ServerMessages); diff != "" {
		t.Fatalf("server messages mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"goodbye", "end the session", "that's all"}, cfg.EndCallPhrases); diff != "" {
		t.Fatalf("end call phrases mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildUnknownPersonality(t *testing.T) {
	_, err := Builder{}.Build("angry_pirate", testProduct(), "sess_1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnknownPersonality))
}

func TestBuildEveryPersonalityEmbedsThreshold(t *testing.T) {
	for _, pt := range personality.Types() {
		p, _ := personality.Lookup(pt)
		cfg, err := Builder{}.Build(pt, domain.ProductKnowledge{}, "s")
		require.NoError(t, err, pt)

		system := cfg.Model.Messages[0].Content
		assert.Contains(t, system, p.PromptSection, pt)
		for _, phrase := range p.RedirectPhrases {
			assert.True(t, strings.Contains(system, phrase), "%s missing %q", pt, phrase)
		}
	}
}

func TestScoreResponseToolSchema(t *testing.T) {
	raw, err := json.Marshal(ScoreResponseTool())
	require.NoError(t, err)

	var decoded struct {
		Type     string `json:"type"`
		Function struct {
			Name       string `json:"name"`
			Parameters struct {
				Type       string                     `json:"type"`
				Properties map[string]json.RawMessage `json:"properties"`
				Required   []string                   `json:"required"`
			} `json:"parameters"`
		} `json:"function"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, "function", decoded.Type)
	assert.Equal(t, "score_response", decoded.Function.Name)
	assert.Equal(t, "object", decoded.Function.Parameters.Type)
	assert.Len(t, decoded.Function.Parameters.Properties, 6)
	assert.ElementsMatch(t,
		[]string{"question", "answer_summary", "term_accuracy", "conciseness", "framing_quality", "feedback"},
		decoded.Function.Parameters.Required)
}

func TestCallConfigJSONShape(t *testing.T) {
	cfg, err := Builder{WebhookBaseURL: "https://x"}.Build(personality.TechnicalExpert, domain.ProductKnowledge{}, "sess_9")
	require.NoError(t, err)

	raw, err := json.Marshal(cfg)
	require.NoError(t, err)

	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &m))
	for _, key := range []string{"model", "voice", "firstMessage", "serverUrl", "serverMessages", "stopSpeakingPlan", "endCallPhrases", "metadata"} {
		assert.Contains(t, m, key)
	}
	assert.JSONEq(t, `{"session_id":"sess_9"}`, string(m["metadata"]))
}
