package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/keystone-labs/rbac-core/internal/core/domain"
	"github.com/keystone-labs/rbac-core/internal/core/ports"
)

// RoleHandler serves role and permission administration.
type RoleHandler struct {
	roles ports.RoleService
}

func NewRoleHandler(roles ports.RoleService) *RoleHandler {
	return &RoleHandler{roles: roles}
}

// List returns every role.
//
// @Summary      List roles
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  Envelope{data=[]domain.Role}
// @Failure      403  {object}  Envelope
// @Router       /roles [get]
func (h *RoleHandler) List(c echo.Context) error {
	roles, err := h.roles.List(c.Request().Context())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Roles fetched successfully", roles)
}

// Get returns a single role.
//
// @Summary      Get role
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Role ID"
// @Success      200  {object}  Envelope{data=domain.Role}
// @Failure      404  {object}  Envelope
// @Router       /roles/{id} [get]
func (h *RoleHandler) Get(c echo.Context) error {
	role, err := h.roles.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Role fetched successfully", role)
}

// Create adds a role.
//
// @Summary      Create role
// @Tags         roles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createRoleRequest  true  "Role name and permissions"
// @Success      201   {object}  Envelope{data=domain.Role}
// @Failure      400   {object}  Envelope
// @Failure      409   {object}  Envelope
// @Router       /admin/create-roles [post]
func (h *RoleHandler) Create(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req createRoleRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	role, err := h.roles.Create(c.Request().Context(), actor, req.Name, req.Permissions)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Role created successfully", role)
}

// Update replaces the name and/or permission set of a role.
//
// @Summary      Update role
// @Tags         roles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Role ID"
// @Param        body  body      updateRoleRequest  true  "Fields to replace"
// @Success      200   {object}  Envelope{data=domain.Role}
// @Failure      400   {object}  Envelope
// @Failure      404   {object}  Envelope
// @Failure      409   {object}  Envelope
// @Router       /admin/update-roles/{id} [patch]
func (h *RoleHandler) Update(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req updateRoleRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	role, err := h.roles.Update(c.Request().Context(), actor, c.Param("id"), domain.RoleUpdate{
		Name:        req.Name,
		Permissions: req.Permissions,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Role updated successfully", role)
}

// Delete removes a role that no user references.
//
// @Summary      Delete role
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Role ID"
// @Success      200  {object}  Envelope
// @Failure      404  {object}  Envelope
// @Failure      409  {object}  Envelope
// @Router       /admin/delete-roles/{id} [delete]
func (h *RoleHandler) Delete(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	if err := h.roles.Delete(c.Request().Context(), actor, c.Param("id")); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Role deleted successfully", nil)
}

// AssignPermissions adds permissions to a role.
//
// @Summary      Assign permissions
// @Tags         roles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                    true  "Role ID"
// @Param        body  body      assignPermissionsRequest  true  "Permissions to add"
// @Success      200   {object}  Envelope{data=domain.Role}
// @Failure      400   {object}  Envelope
// @Failure      404   {object}  Envelope
// @Router       /admin/roles/{id}/permissions [post]
func (h *RoleHandler) AssignPermissions(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req assignPermissionsRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	role, err := h.roles.AssignPermissions(c.Request().Context(), actor, c.Param("id"), req.Permissions)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Permissions assigned successfully", role)
}
