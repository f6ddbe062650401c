package realtime

import (
	"net/http"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/0xsim0/My-Hammer-Syria-sub000/internal/httpx"
	"github.com/0xsim0/My-Hammer-Syria-sub000/internal/store"
)

// ChannelAuthHandler grants a short-lived subscription token after the
// requester proves membership of the channel's scope.
func ChannelAuthHandler(st store.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, ok := c.Get("user_id").(string)
		if !ok || userID == "" {
			return httpx.Unauthorized(c)
		}

		var req struct {
			Channel string `json:"channel"`
		}
		if err := c.Bind(&req); err != nil || req.Channel == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing channel"})
		}

		if err := Authorize(c.Request().Context(), st, req.Channel, userID); err != nil {
			return httpx.Error(c, err)
		}

		claims := jwt.MapClaims{
			"user_id": userID,
			"channel": req.Channel,
			"exp":     time.Now().Add(5 * time.Minute).Unix(),
		}
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		signed, err := token.SignedString([]byte(os.Getenv("JWT_SECRET")))
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token generation failed"})
		}
		return c.JSON(http.StatusOK, echo.Map{"channel": req.Channel, "token": signed})
	}
}
