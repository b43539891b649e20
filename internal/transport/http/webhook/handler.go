// Package webhook receives voice platform events. Every request is answered
// with 200 so the platform never retries or backs off because of us.
package webhook

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/maddoxeriksen-12/Calling-Coach/internal/domain"
	"github.com/maddoxeriksen-12/Calling-Coach/internal/prompt"
	"github.com/maddoxeriksen-12/Calling-Coach/internal/service"
)

const maxBodyBytes = 4 << 20

// Handler handles voice platform webhooks.
type Handler struct {
	service *service.Service
}

// NewHandler creates a new webhook handler.
func NewHandler(service *service.Service) *Handler {
	return &Handler{
		service: service,
	}
}

// RegisterRoutes registers the webhook route with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST(prompt.WebhookPath, h.Receive)
}

// Receive dispatches one event.
// POST /webhook/vapi
func (h *Handler) Receive(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxBodyBytes))
	if err != nil {
		log.Printf("WARN: failed to read webhook body: %v", err)
		return c.JSON(http.StatusOK, domain.StatusResponse{Status: "ok"})
	}

	msg, err := decodeMessage(body)
	if err != nil {
		log.Printf("WARN: ignoring undecodable webhook: %v", err)
		return c.JSON(http.StatusOK, domain.StatusResponse{Status: "ok"})
	}

	resp, err := h.service.HandleWebhook(c.Request().Context(), msg)
	if err != nil {
		log.Printf("ERROR: webhook %v", err)
	}
	return c.JSON(http.StatusOK, resp)
}

// decodeMessage accepts the {"message": {...}} envelope the platform sends
// as well as a bare message.
func decodeMessage(body []byte) (*domain.WebhookMessage, error) {
	var envelope struct {
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}

	payload := body
	if trimmed := bytes.TrimSpace(envelope.Message); len(trimmed) > 0 && trimmed[0] == '{' {
		payload = trimmed
	}

	var msg domain.WebhookMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return nil, fmt.Errorf("invalid message: %w", err)
	}
	return &msg, nil
}
