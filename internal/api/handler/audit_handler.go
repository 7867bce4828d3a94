package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/keystone-labs/rbac-core/internal/core/domain"
	"github.com/keystone-labs/rbac-core/internal/core/ports"
)

// AuditHandler serves the audit log queries.
type AuditHandler struct {
	audit ports.AuditService
}

func NewAuditHandler(audit ports.AuditService) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// ByUser lists the entries of one user, newest first.
//
// @Summary      Audit logs by user
// @Tags         audit
// @Produce      json
// @Security     BearerAuth
// @Param        userId  query     string  true  "User ID"
// @Success      200     {object}  Envelope{data=[]domain.AuditEntry}
// @Failure      400     {object}  Envelope
// @Failure      404     {object}  Envelope
// @Router       /admin/audit-logs/user [get]
func (h *AuditHandler) ByUser(c echo.Context) error {
	userID := strings.TrimSpace(c.QueryParam("userId"))
	if userID == "" {
		return domain.Validation(errors.New("userId is required"))
	}

	entries, err := h.audit.ByUser(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "User audit logs fetched successfully", entries)
}

// ByAction lists the entries of one action kind, newest first.
//
// @Summary      Audit logs by action
// @Tags         audit
// @Produce      json
// @Security     BearerAuth
// @Param        action  query     string  true  "Action, e.g. LOGIN"
// @Success      200     {object}  Envelope{data=[]domain.AuditEntry}
// @Failure      400     {object}  Envelope
// @Failure      404     {object}  Envelope
// @Router       /admin/audit-logs/action [get]
func (h *AuditHandler) ByAction(c echo.Context) error {
	action := strings.TrimSpace(c.QueryParam("action"))
	if action == "" {
		return domain.Validation(errors.New("action is required"))
	}

	entries, err := h.audit.ByAction(c.Request().Context(), action)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, fmt.Sprintf("Logs for action: %s fetched successfully", action), entries)
}

// Cleanup deletes entries older than the given number of days.
//
// @Summary      Delete old audit logs
// @Tags         audit
// @Produce      json
// @Security     BearerAuth
// @Param        days  query     int  true  "Age threshold in days"
// @Success      200   {object}  Envelope{data=cleanupResponse}
// @Failure      400   {object}  Envelope
// @Router       /admin/audit-logs/cleanup [delete]
func (h *AuditHandler) Cleanup(c echo.Context) error {
	var days int
	err := echo.QueryParamsBinder(c).MustInt("days", &days).BindError()
	if err != nil || days <= 0 {
		return domain.Validation(errors.New("days must be a positive integer"))
	}

	n, err := h.audit.Cleanup(c.Request().Context(), days)
	if err != nil {
		return err
	}
	msg := fmt.Sprintf("%d logs older than %d days were deleted successfully", n, days)
	return respond(c, http.StatusOK, msg, cleanupResponse{Deleted: n})
}

// Paginate returns one page of the whole log, newest first.
//
// @Summary      Paginated audit logs
// @Tags         audit
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page number"     default(1)
// @Param        limit  query     int  false  "Items per page"  default(10)
// @Success      200    {object}  Envelope{data=[]domain.AuditEntry}
// @Failure      400    {object}  Envelope
// @Router       /admin/audit-logs/paginate [get]
func (h *AuditHandler) Paginate(c echo.Context) error {
	page, limit, err := pageParams(c)
	if err != nil {
		return err
	}

	res, err := h.audit.Page(c.Request().Context(), page, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, Envelope{
		StatusCode: http.StatusOK,
		Message:    "Paginated audit logs fetched successfully",
		Data:       res.Items,
		Meta:       &Meta{Total: res.Total, Page: res.Page, Limit: res.Limit},
	})
}
