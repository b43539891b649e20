package policy

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/rego"

	"github.com/maddoxeriksen-12/Calling-Coach/internal/domain"
)

// Unchanged is the decision returned when an event does not move the session.
const Unchanged = "unchanged"

// Engine is the OPA policy engine deciding session status transitions.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine creates a new policy engine with the given policy content.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.session_policy.decision"),
		rego.Module("session_policy.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// NewDefaultEngine creates an engine loaded with DefaultTransitionPolicy.
func NewDefaultEngine(ctx context.Context) (*Engine, error) {
	return NewEngine(ctx, DefaultTransitionPolicy)
}

// Evaluate runs the policy against input and returns the decision string.
// Input should be a map with keys: current, event, reported.
func (e *Engine) Evaluate(ctx context.Context, input map[string]interface{}) (string, error) {
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return "", fmt.Errorf("failed to evaluate policy: %w", err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return Unchanged, nil
	}

	if s, ok := results[0].Expressions[0].Value.(string); ok {
		return s, nil
	}
	return Unchanged, nil
}

// Next decides the status a session in current moves to after event. reported
// carries the platform call status for status-update events. The boolean is
// false when the session stays where it is.
func (e *Engine) Next(ctx context.Context, current domain.SessionStatus, event domain.LifecycleEvent, reported string) (domain.SessionStatus, bool, error) {
	decision, err := e.Evaluate(ctx, map[string]interface{}{
		"current":  string(current),
		"event":    string(event),
		"reported": reported,
	})
	if err != nil {
		return current, false, err
	}
	if decision == Unchanged {
		return current, false, nil
	}

	next := domain.SessionStatus(decision)
	if !next.Valid() {
		return current, false, fmt.Errorf("policy returned unknown status %q", decision)
	}
	return next, true, nil
}

// DefaultTransitionPolicy encodes pending -> active -> completed. Targets at or
// below the current rank are refused, so replays and late events are no-ops.
const DefaultTransitionPolicy = `
package session_policy

default decision = "unchanged"

rank = {"pending": 0, "active": 1, "completed": 2}

target = "active" {
	input.event == "call-bound"
}

target = "active" {
	input.event == "status-update"
	input.reported == "in-progress"
}

target = "completed" {
	input.event == "status-update"
	input.reported == "ended"
}

target = "completed" {
	input.event == "end-of-call-report"
}

decision = target {
	rank[target] > rank[input.current]
}
`
