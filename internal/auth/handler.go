package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

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

type SignupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"required"`
}

type SignupResponse struct {
	Token string `json:"token"`
}

// Signup - register as customer or craftsman
func (h *Handler) Signup(c echo.Context) error {
	req := new(SignupRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and email are required"})
	}
	if len(req.Password) < 6 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be at least 6 characters"})
	}
	if !domain.ValidRole(req.Role) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "role must be customer or craftsman"})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}

	user := domain.User{
		ID:           uuid.New().String(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hashed),
		Role:         req.Role,
		CreatedAt:    time.Now().UTC(),
	}
	if err := h.store.CreateUser(c.Request().Context(), user); err != nil {
		if domain.Is(err, domain.CodeConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
		}
		return httpx.Error(c, err)
	}

	signed, err := IssueToken(user.ID, user.Role)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token generation failed"})
	}
	return c.JSON(http.StatusCreated, SignupResponse{Token: signed})
}
