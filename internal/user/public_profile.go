package user

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/0xsim0/My-Hammer-Syria-sub000/internal/domain"
	"github.com/0xsim0/My-Hammer-Syria-sub000/internal/httpx"
	"github.com/0xsim0/My-Hammer-Syria-sub000/internal/store"
)

type Handler struct {
	store store.Store
}

func NewHandler(st store.Store) *Handler {
	return &Handler{store: st}
}

// GetPublicProfile - GET /users/:id/profile
// For craftsmen the payload includes their review aggregate.
func (h *Handler) GetPublicProfile(c echo.Context) error {
	userID := c.Param("id")
	if userID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing user id"})
	}

	u, err := h.store.GetUserByID(c.Request().Context(), userID)
	if err != nil {
		return httpx.Error(c, err)
	}

	profile := echo.Map{
		"id":         u.ID,
		"name":       u.Name,
		"role":       u.Role,
		"created_at": u.CreatedAt.Format(time.RFC3339),
	}

	if u.Role == domain.RoleCraftsman {
		reviews, err := h.store.ListReviewsForCraftsman(c.Request().Context(), userID)
		if err != nil {
			return httpx.Error(c, err)
		}
		var sum int
		for _, r := range reviews {
			sum += r.Rating
		}
		avg := 0.0
		if len(reviews) > 0 {
			avg = float64(sum) / float64(len(reviews))
		}
		profile["review_count"] = len(reviews)
		profile["average_rating"] = avg
	}

	return c.JSON(http.StatusOK, profile)
}
