package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/keystone-labs/rbac-core/internal/api/middleware"
	"github.com/keystone-labs/rbac-core/internal/core/ports"
)

// ProfileHandler serves the self-service profile routes.
type ProfileHandler struct {
	users ports.UserService
}

func NewProfileHandler(users ports.UserService) *ProfileHandler {
	return &ProfileHandler{users: users}
}

// Get returns the caller's own profile.
//
// @Summary      View own profile
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  Envelope{data=domain.User}
// @Failure      401  {object}  Envelope
// @Failure      403  {object}  Envelope
// @Failure      404  {object}  Envelope
// @Router       /user-profile/{id} [get]
func (h *ProfileHandler) Get(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	user, err := h.users.GetProfile(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "User retrieved successfully", user)
}

// Update edits the caller's own profile. Accepts JSON or a multipart form
// with an optional profileImage file.
//
// @Summary      Update own profile
// @Tags         profile
// @Accept       json,mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        id            path      string  true   "User ID"
// @Param        firstName     formData  string  false  "First name"
// @Param        lastName      formData  string  false  "Last name"
// @Param        phoneNo       formData  string  false  "Phone number"
// @Param        email         formData  string  false  "Email"
// @Param        profileImage  formData  file    false  "JPEG or PNG, at most 1 MB"
// @Success      200  {object}  Envelope{data=domain.User}
// @Failure      400  {object}  Envelope
// @Failure      403  {object}  Envelope
// @Failure      404  {object}  Envelope
// @Failure      409  {object}  Envelope
// @Router       /user-profile/update/{id} [put]
func (h *ProfileHandler) Update(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	if err := middleware.UploadError(c); err != nil {
		return err
	}

	var req profileUpdateRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.users.UpdateProfile(c.Request().Context(), actor, c.Param("id"), ports.ProfileUpdateInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		PhoneNo:   req.PhoneNo,
		Email:     req.Email,
		Image:     middleware.ImageFrom(c),
	})
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "User profile updated successfully", user)
}

// Delete removes the caller's own account.
//
// @Summary      Delete own account
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  Envelope
// @Failure      401  {object}  Envelope
// @Failure      404  {object}  Envelope
// @Router       /user/delete/{id} [delete]
func (h *ProfileHandler) Delete(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	if err := h.users.DeleteAccount(c.Request().Context(), actor, c.Param("id")); err != nil {
		return err
	}

	return respond(c, http.StatusOK, "Account deleted successfully", nil)
}
