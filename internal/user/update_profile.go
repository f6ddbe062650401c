package user

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/0xsim0/My-Hammer-Syria-sub000/internal/db"
)

type UpdateProfileRequest struct {
	Name string `json:"name"`
}

// UpdateProfile - PATCH /users/profile
// Postgres-only, talks to db.Conn directly.
func UpdateProfile(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or missing token"})
	}
	if db.Conn == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "database not configured"})
	}

	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	query := `
		UPDATE users
		SET name = COALESCE(NULLIF($1, ''), name)
		WHERE id = $2
	`
	if _, err := db.Conn.Exec(c.Request().Context(), query, req.Name, userID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update profile"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "profile updated successfully",
	})
}
