package notify

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/0xsim0/My-Hammer-Syria-sub000/internal/httpx"
	"github.com/0xsim0/My-Hammer-Syria-sub000/internal/store"
)

type Handler struct {
	store store.Store
}

func NewHandler(st store.Store) *Handler {
	return &Handler{store: st}
}

// List returns the current user's notifications, newest first, with the
// unread count the client badges with.
func (h *Handler) List(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return httpx.Unauthorized(c)
	}

	items, err := h.store.ListNotifications(c.Request().Context(), userID)
	if err != nil {
		return httpx.Error(c, err)
	}
	unread, err := h.store.UnreadNotificationCount(c.Request().Context(), userID)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"notifications": items, "unread": unread})
}

// MarkRead marks one notification read. Marking an already-read
// notification again is a no-op.
func (h *Handler) MarkRead(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return httpx.Unauthorized(c)
	}
	nid := c.Param("id")
	if nid == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing notification id"})
	}
	if err := h.store.MarkNotificationRead(c.Request().Context(), userID, nid); err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "ok"})
}

// MarkAllRead marks every unread notification read. Idempotent.
func (h *Handler) MarkAllRead(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return httpx.Unauthorized(c)
	}
	if err := h.store.MarkAllNotificationsRead(c.Request().Context(), userID); err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "ok"})
}
