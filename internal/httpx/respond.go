package httpx

import (
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/0xsim0/My-Hammer-Syria-sub000/internal/domain"
)

// Error maps a domain error to its HTTP status and a precise message so
// the UI can tell the user why the operation failed.
func Error(c echo.Context, err error) error {
	code := domain.CodeOf(err)
	status := http.StatusInternalServerError
	switch code {
	case domain.CodeUnauthorized:
		status = http.StatusUnauthorized
	case domain.CodeForbidden:
		status = http.StatusForbidden
	case domain.CodeNotFound:
		status = http.StatusNotFound
	case domain.CodeInvalidState:
		status = http.StatusConflict
	case domain.CodeConflict:
		status = http.StatusConflict
	case domain.CodeValidation:
		status = http.StatusBadRequest
	}

	msg := "internal error"
	var de *domain.Error
	if errors.As(err, &de) && de.Code != domain.CodeInternal {
		msg = de.Message
	} else {
		log.Printf("[http] internal error: %v", err)
	}
	return c.JSON(status, echo.Map{"error": msg, "code": code})
}

// Unauthorized is the response for requests with no identity.
func Unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized", "code": domain.CodeUnauthorized})
}
