package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/keystone-labs/rbac-core/internal/core/domain"
)

// Envelope is the body of every API response, successful or not.
type Envelope struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Data       any    `json:"data,omitempty"`
	Meta       *Meta  `json:"meta,omitempty"`
	Total      *int64 `json:"total,omitempty"`
}

// Meta carries pagination details.
type Meta struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

func respond(c echo.Context, code int, msg string, data any) error {
	return c.JSON(code, Envelope{StatusCode: code, Message: msg, Data: data})
}

// bind decodes the request into req and runs the registered validator.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domain.Validation(domain.ErrInvalidInput)
	}
	return c.Validate(req)
}
