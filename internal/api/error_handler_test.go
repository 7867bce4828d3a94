package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/keystone-labs/rbac-core/internal/api/handler"
	"github.com/keystone-labs/rbac-core/internal/core/domain"
)

func TestHTTPErrorHandler(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"validation", domain.Validation(domain.ErrPasswordMismatch), http.StatusBadRequest, "Passwords do not match"},
		{"unauthenticated", domain.Unauthenticated(domain.ErrTokenNotFound), http.StatusUnauthorized, "Token not found"},
		{"forbidden", domain.Forbidden(domain.ErrNotAdmin), http.StatusForbidden, "Admin access required"},
		{"not found", domain.NotFound(domain.ErrUserNotFound), http.StatusNotFound, "User not found"},
		{"conflict", domain.Conflict(domain.ErrRoleInUse), http.StatusConflict, "Role is still assigned to users"},
		{"wrapped kind", fmt.Errorf("update: %w", domain.Conflict(domain.ErrUserExists)), http.StatusConflict, "User already exists"},
		{"bare sentinel", fmt.Errorf("logout: %w", domain.ErrTokenNotFound), http.StatusUnauthorized, "Token not found"},
		{"echo error", echo.NewHTTPError(http.StatusMethodNotAllowed, "method not allowed"), http.StatusMethodNotAllowed, "method not allowed"},
		{"internal", errors.New("mongo: connection reset"), http.StatusInternalServerError, "Something went wrong"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			NewHTTPErrorHandler(zerolog.Nop())(tt.err, c)

			if rec.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, rec.Code)
			}
			var body handler.Envelope
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.StatusCode != tt.wantCode || body.Message != tt.wantMsg {
				t.Fatalf("unexpected envelope: %+v", body)
			}
			if body.Data != nil {
				t.Fatalf("error envelope must not carry data")
			}
		})
	}
}

func TestHTTPErrorHandler_SkipsCommittedResponse(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	_ = c.NoContent(http.StatusNoContent)

	NewHTTPErrorHandler(zerolog.Nop())(domain.NotFound(domain.ErrUserNotFound), c)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected committed status to stay 204, got %d", rec.Code)
	}
}
