package bids

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/0xsim0/My-Hammer-Syria-sub000/internal/domain"
	"github.com/0xsim0/My-Hammer-Syria-sub000/internal/httpx"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Submit - craftsman places a bid on an open job
func (h *Handler) Submit(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return httpx.Unauthorized(c)
	}
	jobID := c.Param("id")
	if jobID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing job id"})
	}

	var t Terms
	if err := c.Bind(&t); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payload"})
	}

	bid, err := h.svc.Submit(c.Request().Context(), jobID, userID, t)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"bid": bid})
}

// Accept - customer accepts a pending bid
func (h *Handler) Accept(c echo.Context) error {
	return h.transition(c, domain.BidAccepted)
}

// Reject - customer rejects a pending bid
func (h *Handler) Reject(c echo.Context) error {
	return h.transition(c, domain.BidRejected)
}

// Withdraw - craftsman withdraws their own pending bid
func (h *Handler) Withdraw(c echo.Context) error {
	return h.transition(c, domain.BidWithdrawn)
}

func (h *Handler) transition(c echo.Context, target domain.BidStatus) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return httpx.Unauthorized(c)
	}
	jobID := c.Param("id")
	bidID := c.Param("bid_id")
	if jobID == "" || bidID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing job or bid id"})
	}

	bid, err := h.svc.Transition(c.Request().Context(), jobID, bidID, userID, target)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"bid": bid})
}

// ListForJob - customer sees every bid, a craftsman only their own
func (h *Handler) ListForJob(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return httpx.Unauthorized(c)
	}
	jobID := c.Param("id")
	if jobID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing job id"})
	}

	list, err := h.svc.ListForJob(c.Request().Context(), jobID, userID)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"bids": list})
}
