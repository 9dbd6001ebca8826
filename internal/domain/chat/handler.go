package chat

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/dentalcare/dentalcare/internal/platform/apperr"
	"github.com/dentalcare/dentalcare/internal/platform/auth"
	"github.com/dentalcare/dentalcare/internal/platform/inference"
	"github.com/dentalcare/dentalcare/internal/platform/validate"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the chat routes. The group must sit behind the
// authorization gate.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/:chatSessionId", h.Turn)
	g.GET("/:chatSessionId/history", h.History)
}

type messageInput struct {
	Role    string `json:"role" validate:"required,oneof=user assistant system"`
	Content string `json:"content" validate:"required"`
}

type turnRequest struct {
	Messages []messageInput `json:"messages" validate:"required,min=1,dive"`
}

func (h *Handler) Turn(c echo.Context) error {
	id, sessionID, err := caller(c)
	if err != nil {
		return err
	}

	var req turnRequest
	if err := validate.Bind(c, &req); err != nil {
		return err
	}
	msgs := make([]inference.Message, len(req.Messages))
	for i, m := range req.Messages {
		msgs[i] = inference.Message{Role: m.Role, Content: m.Content}
	}

	reply, err := h.svc.Turn(c.Request().Context(), id, sessionID, msgs)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, reply)
}

func (h *Handler) History(c echo.Context) error {
	id, sessionID, err := caller(c)
	if err != nil {
		return err
	}
	items, err := h.svc.History(c.Request().Context(), id, sessionID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

// caller resolves the gate's identity and the session path parameter.
func caller(c echo.Context) (auth.Identity, int64, error) {
	id, ok := auth.IdentityFromContext(c.Request().Context())
	if !ok {
		return auth.Identity{}, 0, apperr.Unauthenticated("missing authorization header")
	}
	sessionID, err := strconv.ParseInt(c.Param("chatSessionId"), 10, 64)
	if err != nil || sessionID <= 0 {
		return auth.Identity{}, 0, apperr.Validation(map[string]string{"chatSessionId": "must be a positive integer"})
	}
	return id, sessionID, nil
}
