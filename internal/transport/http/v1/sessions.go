package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/maddoxeriksen-12/Calling-Coach/internal/auth"
	"github.com/maddoxeriksen-12/Calling-Coach/internal/domain"
)

// ListPersonalities lists the buyer personalities.
// GET /v1/personalities
func (h *Handler) ListPersonalities(c echo.Context) error {
	return c.JSON(http.StatusOK, h.service.ListPersonalities())
}

// CreateSession starts a practice session.
// POST /v1/sessions
func (h *Handler) CreateSession(c echo.Context) error {
	ctx := c.Request().Context()

	var req domain.CreateSessionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.ProductID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "product_id is required"})
	}
	if req.PersonalityType == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "personality_type is required"})
	}

	resp, err := h.service.CreateSession(ctx, auth.UserID(c), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, resp)
}

// UpdateCallID binds the voice platform's call id to a session.
// PATCH /v1/sessions/:session_id/call-id
func (h *Handler) UpdateCallID(c echo.Context) error {
	ctx := c.Request().Context()

	var req domain.UpdateCallIDRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	if err := h.service.BindCallID(ctx, auth.UserID(c), c.Param("session_id"), req.VapiCallID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "updated"})
}

// ListSessions lists the caller's sessions, newest first.
// GET /v1/sessions
func (h *Handler) ListSessions(c echo.Context) error {
	items, err := h.service.ListSessions(c.Request().Context(), auth.UserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

// GetSession returns a session with its transcript and scores.
// GET /v1/sessions/:session_id
func (h *Handler) GetSession(c echo.Context) error {
	detail, err := h.service.GetSessionDetail(c.Request().Context(), auth.UserID(c), c.Param("session_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, detail)
}

// ScoreSession retries final scoring of a completed session.
// POST /v1/sessions/:session_id/score
func (h *Handler) ScoreSession(c echo.Context) error {
	ctx := c.Request().Context()
	sessionID := c.Param("session_id")

	// Ownership check before spending an evaluator call.
	if _, err := h.service.GetSessionDetail(ctx, auth.UserID(c), sessionID); err != nil {
		return writeError(c, err)
	}

	score, err := h.service.ScoreSession(ctx, sessionID)
	if err != nil {
		return writeError(c, err)
	}
	if score == nil {
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": "session cannot be scored: product not found"})
	}
	return c.JSON(http.StatusOK, score)
}
