package jobs

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/0xsim0/My-Hammer-Syria-sub000/internal/domain"
	"github.com/0xsim0/My-Hammer-Syria-sub000/internal/httpx"
	"github.com/0xsim0/My-Hammer-Syria-sub000/internal/store"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Create - customer posts a new job
func (h *Handler) Create(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return httpx.Unauthorized(c)
	}

	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payload"})
	}

	job, err := h.svc.Create(c.Request().Context(), userID, in)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"job": job})
}

// Get - fetch a single job by id
func (h *Handler) Get(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing job id"})
	}
	job, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"job": job})
}

// List - browse jobs, optionally by status and category
func (h *Handler) List(c echo.Context) error {
	f := store.JobFilter{
		CategoryID: c.QueryParam("category"),
	}
	if s := c.QueryParam("status"); s != "" {
		status := domain.JobStatus(s)
		if !domain.ValidJobStatus(status) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown job status"})
		}
		f.Status = status
	}

	list, err := h.svc.List(c.Request().Context(), f)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"jobs": list})
}

// Mine - list the authenticated customer's own jobs
func (h *Handler) Mine(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return httpx.Unauthorized(c)
	}

	list, err := h.svc.List(c.Request().Context(), store.JobFilter{CustomerID: userID})
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"jobs": list})
}

// Complete - owner marks an in-progress job done
func (h *Handler) Complete(c echo.Context) error {
	return h.changeStatus(c, h.svc.Complete)
}

// Cancel - owner cancels an open or in-progress job
func (h *Handler) Cancel(c echo.Context) error {
	return h.changeStatus(c, h.svc.Cancel)
}

func (h *Handler) changeStatus(c echo.Context, fn func(ctx context.Context, jobID, requesterID string) (domain.Job, error)) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return httpx.Unauthorized(c)
	}
	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing job id"})
	}

	job, err := fn(c.Request().Context(), id, userID)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"job": job})
}

// Delete - owner or admin removes a job
func (h *Handler) Delete(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return httpx.Unauthorized(c)
	}
	role, _ := c.Get("role").(string)
	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing job id"})
	}

	if err := h.svc.Delete(c.Request().Context(), id, userID, role); err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": true})
}
