package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/keystone-labs/rbac-core/internal/core/domain"
	"github.com/keystone-labs/rbac-core/internal/core/ports"
)

// AdminHandler serves administrator user management.
type AdminHandler struct {
	users ports.UserService
}

func NewAdminHandler(users ports.UserService) *AdminHandler {
	return &AdminHandler{users: users}
}

// ListUsers returns one page of users, numbered across pages.
//
// @Summary      List users
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page number"     default(1)
// @Param        limit  query     int  false  "Items per page"  default(10)
// @Success      200    {object}  Envelope{data=[]ports.UserListItem}
// @Failure      400    {object}  Envelope
// @Failure      403    {object}  Envelope
// @Router       /admin/view-users [get]
func (h *AdminHandler) ListUsers(c echo.Context) error {
	page, limit, err := pageParams(c)
	if err != nil {
		return err
	}

	res, err := h.users.ListUsers(c.Request().Context(), page, limit)
	if err != nil {
		return err
	}

	total := res.Total
	return c.JSON(http.StatusOK, Envelope{
		StatusCode: http.StatusOK,
		Message:    "Users retrieved successfully",
		Data:       res.Items,
		Total:      &total,
	})
}

// GetUser returns a single user.
//
// @Summary      Get user
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  Envelope{data=domain.User}
// @Failure      404  {object}  Envelope
// @Router       /admin/view-users/{id} [get]
func (h *AdminHandler) GetUser(c echo.Context) error {
	user, err := h.users.GetUser(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "User retrieved successfully", user)
}

// CreateUser creates an account with the named role.
//
// @Summary      Create user
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createUserRequest  true  "User details"
// @Success      201   {object}  Envelope{data=domain.User}
// @Failure      400   {object}  Envelope
// @Failure      404   {object}  Envelope
// @Failure      409   {object}  Envelope
// @Router       /admin/create-user [post]
func (h *AdminHandler) CreateUser(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req createUserRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.users.CreateUser(c.Request().Context(), actor, ports.CreateUserInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		PhoneNo:   req.PhoneNo,
		Email:     req.Email,
		Password:  req.Password,
		Role:      req.Role,
	})
	if err != nil {
		return err
	}

	return respond(c, http.StatusCreated, "User created successfully", user)
}

// UpdateUser replaces the provided fields of a user.
//
// @Summary      Update user
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "User ID"
// @Param        body  body      updateUserRequest  true  "Fields to replace"
// @Success      200   {object}  Envelope{data=domain.User}
// @Failure      400   {object}  Envelope
// @Failure      404   {object}  Envelope
// @Failure      409   {object}  Envelope
// @Router       /admin/update-user/{id} [put]
func (h *AdminHandler) UpdateUser(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req updateUserRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.users.UpdateUser(c.Request().Context(), actor, c.Param("id"), ports.AdminUpdateInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		PhoneNo:   req.PhoneNo,
		Email:     req.Email,
		Role:      req.Role,
	})
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "Account updated successfully", user)
}

// DeleteUser removes a user together with its sessions and reset codes.
//
// @Summary      Delete user
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  Envelope
// @Failure      404  {object}  Envelope
// @Router       /admin/delete-user/{id} [delete]
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	if err := h.users.DeleteUser(c.Request().Context(), actor, c.Param("id")); err != nil {
		return err
	}

	return respond(c, http.StatusOK, "Account deleted successfully", nil)
}

// pageParams reads the optional page and limit query parameters.
func pageParams(c echo.Context) (page, limit int, err error) {
	page, limit = 1, domain.DefaultPageLimit
	err = echo.QueryParamsBinder(c).
		Int("page", &page).
		Int("limit", &limit).
		BindError()
	if err != nil {
		return 0, 0, domain.Validation(domain.ErrInvalidInput)
	}
	return page, limit, nil
}
