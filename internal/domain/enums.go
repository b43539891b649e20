// Package domain defines the core domain models for the calling coach.
package domain

// SessionStatus represents the lifecycle status of a practice call session.
type SessionStatus string

const (
	SessionStatusPending   SessionStatus = "pending"
	SessionStatusActive    SessionStatus = "active"
	SessionStatusCompleted SessionStatus = "completed"
)

// Rank orders statuses along the lifecycle. Unknown statuses rank below pending.
func (s SessionStatus) Rank() int {
	switch s {
	case SessionStatusPending:
		return 0
	case SessionStatusActive:
		return 1
	case SessionStatusCompleted:
		return 2
	}
	return -1
}

// Valid reports whether s is one of the three lifecycle statuses.
func (s SessionStatus) Valid() bool {
	return s.Rank() >= 0
}

// WebhookEventType is the discriminator of an inbound voice platform event.
type WebhookEventType string

const (
	WebhookEventToolCalls       WebhookEventType = "tool-calls"
	WebhookEventEndOfCallReport WebhookEventType = "end-of-call-report"
	WebhookEventTranscript      WebhookEventType = "transcript"
	WebhookEventStatusUpdate    WebhookEventType = "status-update"
	WebhookEventUnknown         WebhookEventType = ""
)

// ParseWebhookEventType maps a raw discriminator onto the closed set of known
// event kinds. Anything else is WebhookEventUnknown.
func ParseWebhookEventType(raw string) WebhookEventType {
	switch t := WebhookEventType(raw); t {
	case WebhookEventToolCalls, WebhookEventEndOfCallReport, WebhookEventTranscript, WebhookEventStatusUpdate:
		return t
	}
	return WebhookEventUnknown
}

// SubscribedWebhookEvents is the set of events requested from the voice platform.
var SubscribedWebhookEvents = []WebhookEventType{
	WebhookEventEndOfCallReport,
	WebhookEventToolCalls,
	WebhookEventTranscript,
	WebhookEventStatusUpdate,
}

// Call status strings reported by status-update events.
const (
	CallStatusInProgress = "in-progress"
	CallStatusEnded      = "ended"
)

// LifecycleEvent names an input to the session state machine.
type LifecycleEvent string

const (
	LifecycleCallBound    LifecycleEvent = "call-bound"
	LifecycleStatusUpdate LifecycleEvent = "status-update"
	LifecycleCallEnded    LifecycleEvent = "end-of-call-report"
)

// ScoreResponseTool is the only tool the simulated buyer may call.
const ScoreResponseTool = "score_response"
