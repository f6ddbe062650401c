package reviews

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/0xsim0/My-Hammer-Syria-sub000/internal/httpx"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Create - customer reviews the craftsman after completing a job
func (h *Handler) Create(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return httpx.Unauthorized(c)
	}
	jobID := c.Param("id")
	if jobID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing job id"})
	}

	var in Input
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payload"})
	}

	review, err := h.svc.Create(c.Request().Context(), jobID, userID, in)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"review": review})
}

// ForJob - fetch the review left on a job, if any
func (h *Handler) ForJob(c echo.Context) error {
	jobID := c.Param("id")
	if jobID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing job id"})
	}
	review, err := h.svc.ForJob(c.Request().Context(), jobID)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"review": review})
}

// ListForCraftsman - public list of a craftsman's reviews
func (h *Handler) ListForCraftsman(c echo.Context) error {
	craftsmanID := c.Param("id")
	if craftsmanID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing craftsman id"})
	}
	list, err := h.svc.ListForCraftsman(c.Request().Context(), craftsmanID)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reviews": list})
}
