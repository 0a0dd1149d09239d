package http

import (
	"errors"
	"net/http"

	"lending-engine/internal/domain/loan"
	"lending-engine/internal/usecase/lending"

	"github.com/labstack/echo/v4"
)

// Envelope is the body of every lending response.
type Envelope struct {
	Success  bool         `json:"success"`
	Message  string       `json:"message"`
	Data     any          `json:"data,omitempty"`
	Warnings []string     `json:"warnings,omitempty"`
	Details  []FieldError `json:"details,omitempty"`
}

type outcome interface{ Outcome() lending.Notice }

func respond(c echo.Context, code int, dto outcome) error {
	n := dto.Outcome()
	return c.JSON(code, Envelope{Success: true, Message: n.Message, Data: dto, Warnings: n.Warnings})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, Envelope{Message: msg})
}

func invalid(c echo.Context, err error) error {
	return c.JSON(http.StatusUnprocessableEntity, Envelope{Message: "validation failed", Details: ToFieldErrors(err)})
}

// StatusFor maps domain error kinds to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, loan.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, loan.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, loan.ErrStateConflict):
		return http.StatusConflict
	case errors.Is(err, loan.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, loan.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
