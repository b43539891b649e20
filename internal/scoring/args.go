package scoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/maddoxeriksen-12/Calling-Coach/internal/domain"
)

// DecodeScoreResponseArgs decodes score_response arguments sent either as a
// JSON object or as a JSON-encoded string. Fields that are missing or of the
// wrong type fall back to zero values. The returned args are always usable;
// the error only reports that the payload could not be read at all.
func DecodeScoreResponseArgs(raw json.RawMessage) (domain.ScoreResponseArgs, error) {
	var args domain.ScoreResponseArgs

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return args, nil
	}

	if raw[0] == '"' {
		var encoded string
		if err := json.Unmarshal(raw, &encoded); err != nil {
			return args, fmt.Errorf("failed to decode arguments string: %w", err)
		}
		raw = json.RawMessage(strings.TrimSpace(encoded))
		if len(raw) == 0 {
			return args, nil
		}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return args, fmt.Errorf("failed to decode arguments: %w", err)
	}

	args.Question = textField(fields["question"])
	args.AnswerSummary = textField(fields["answer_summary"])
	args.TermAccuracy = metricField(fields["term_accuracy"])
	args.Conciseness = metricField(fields["conciseness"])
	args.FramingQuality = metricField(fields["framing_quality"])
	args.Feedback = textField(fields["feedback"])
	return args, nil
}

func textField(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// metricField reads a number or a numeric string and clamps it to 0-100.
func metricField(raw json.RawMessage) float64 {
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0
		}
		v = parsed
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Max(0, math.Min(100, v))
}
