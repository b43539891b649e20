package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/maddoxeriksen-12/Calling-Coach/internal/domain"
)

var (
	scoredResult      = mustResult(map[string]string{"status": "scored", "message": "Score recorded. Continue the conversation."})
	unknownToolResult = mustResult(map[string]string{"status": "unknown_tool"})
	okResponse        = domain.StatusResponse{Status: "ok"}
)

func mustResult(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(data)
}

// HandleWebhook dispatches one voice platform event and returns the body to
// acknowledge it with. The response is always usable; a non-nil error only
// reports an internal failure for logging.
func (s *Service) HandleWebhook(ctx context.Context, msg *domain.WebhookMessage) (interface{}, error) {
	eventType := msg.EventType()
	s.metrics.RecordWebhook(string(eventType))

	var err error
	switch eventType {
	case domain.WebhookEventToolCalls:
		return s.handleToolCalls(ctx, msg), nil
	case domain.WebhookEventEndOfCallReport:
		// Scoring outlives the platform's request.
		err = s.HandleEndOfCall(context.WithoutCancel(ctx), msg.Call.ID, msg.Artifact.Messages)
	case domain.WebhookEventTranscript:
		err = s.AppendTranscript(ctx, msg.Call.ID, msg.Role, msg.TranscriptText())
	case domain.WebhookEventStatusUpdate:
		err = s.ApplyStatusUpdate(ctx, msg.Call.ID, msg.Status)
	case domain.WebhookEventUnknown:
		s.debugf("ignoring webhook event type %q", msg.Type)
	}

	if err != nil {
		s.metrics.RecordWebhookError(string(eventType))
		return okResponse, fmt.Errorf("%s for call %s: %w", eventType, msg.Call.ID, err)
	}
	return okResponse, nil
}

// handleToolCalls answers every call in the batch. Calls are handled
// independently, so one bad call does not affect the others.
func (s *Service) handleToolCalls(ctx context.Context, msg *domain.WebhookMessage) domain.ToolCallsResponse {
	results := make([]domain.ToolCallResult, 0, len(msg.ToolCallList))
	for _, call := range msg.ToolCallList {
		result := domain.ToolCallResult{
			Name:       call.Function.Name,
			ToolCallID: call.ID,
			Result:     unknownToolResult,
		}
		if call.Function.Name == domain.ScoreResponseTool {
			if err := s.ScoreAnswer(ctx, msg.Call.ID, call.Function.Arguments); err != nil {
				s.metrics.RecordWebhookError(string(domain.WebhookEventToolCalls))
				log.Printf("ERROR: tool call %s for call %s: %v", call.ID, msg.Call.ID, err)
			}
			result.Result = scoredResult
		}
		results = append(results, result)
	}
	return domain.ToolCallsResponse{Results: results}
}
