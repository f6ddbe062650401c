package chat

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/0xsim0/My-Hammer-Syria-sub000/internal/httpx"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Post - participant sends a message in a conversation
func (h *Handler) Post(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return httpx.Unauthorized(c)
	}
	convID := c.Param("id")
	if convID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing conversation id"})
	}

	var body struct {
		Content string `json:"content"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payload"})
	}

	msg, err := h.svc.Post(c.Request().Context(), convID, userID, body.Content)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": msg})
}

// MarkRead - participant marks the whole conversation read
func (h *Handler) MarkRead(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return httpx.Unauthorized(c)
	}
	convID := c.Param("id")
	if convID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing conversation id"})
	}
	if err := h.svc.MarkRead(c.Request().Context(), convID, userID); err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "ok"})
}

// History - chronological messages, optionally bounded by ?limit=
func (h *Handler) History(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return httpx.Unauthorized(c)
	}
	convID := c.Param("id")
	if convID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing conversation id"})
	}

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid limit"})
		}
		limit = n
	}

	msgs, err := h.svc.History(c.Request().Context(), convID, userID, limit)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"messages": msgs})
}

// Unread - unread count for the current user in a conversation
func (h *Handler) Unread(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return httpx.Unauthorized(c)
	}
	convID := c.Param("id")
	if convID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing conversation id"})
	}
	count, err := h.svc.Unread(c.Request().Context(), convID, userID)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"unread": count})
}

// List - the current user's conversations, most recently active first
func (h *Handler) List(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return httpx.Unauthorized(c)
	}
	list, err := h.svc.Conversations(c.Request().Context(), userID)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"conversations": list})
}
