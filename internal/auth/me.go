package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/0xsim0/My-Hammer-Syria-sub000/internal/httpx"
)

// Me - returns the authenticated user's profile
func (h *Handler) Me(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return httpx.Unauthorized(c)
	}

	user, err := h.store.GetUserByID(c.Request().Context(), userID)
	if err != nil {
		return httpx.Error(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
		"role":  user.Role,
	})
}
