package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/keystone-labs/rbac-core/internal/api/metrics"
	"github.com/keystone-labs/rbac-core/internal/core/domain"
	"github.com/keystone-labs/rbac-core/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register creates a new account with the "user" role.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  Envelope{data=domain.User}
// @Failure      400   {object}  Envelope
// @Failure      409   {object}  Envelope
// @Failure      500   {object}  Envelope
// @Router       /register-user [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		PhoneNo:   req.PhoneNo,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		return err
	}

	return respond(c, http.StatusCreated, "Registered successfully", user)
}

// Login authenticates a user and returns a bearer token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  Envelope{data=loginResponse}
// @Failure      400   {object}  Envelope
// @Failure      401   {object}  Envelope
// @Failure      429   {object}  Envelope
// @Router       /user/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	res, err := h.authService.Login(c.Request().Context(), req.Email, req.Password, c.RealIP())
	metrics.LoginAttemptsTotal.WithLabelValues(loginResult(err)).Inc()
	if err != nil {
		return err
	}
	metrics.SessionsTotal.WithLabelValues("issued").Inc()

	return respond(c, http.StatusOK, "Logged in successfully", loginResponse{Token: res.Token, User: res.User})
}

// Logout revokes the presented token.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  Envelope
// @Failure      401  {object}  Envelope
// @Router       /user/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	if err := h.authService.Logout(c.Request().Context(), id, c.RealIP()); err != nil {
		return err
	}
	metrics.SessionsTotal.WithLabelValues("revoked").Inc()

	return respond(c, http.StatusOK, "User logged out successfully", nil)
}

// ChangePassword replaces the caller's password and signs out every session.
//
// @Summary      Change password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      changePasswordRequest  true  "Old and new password"
// @Success      200   {object}  Envelope
// @Failure      400   {object}  Envelope
// @Failure      401   {object}  Envelope
// @Router       /user/changepassword [post]
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req changePasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	err = h.authService.ChangePassword(c.Request().Context(), id.UserID, ports.ChangePasswordInput{
		OldPassword:     req.OldPassword,
		NewPassword:     req.NewPassword,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "Password changed successfully", nil)
}

// ForgotPassword mails a one-time reset code.
//
// @Summary      Request a password reset code
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      forgotPasswordRequest  true  "Account email"
// @Success      200   {object}  Envelope
// @Failure      404   {object}  Envelope
// @Failure      500   {object}  Envelope
// @Router       /user/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotPasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if err := h.authService.ForgotPassword(c.Request().Context(), req.Email); err != nil {
		return err
	}

	return respond(c, http.StatusOK, "Password reset code sent to your mail", nil)
}

// VerifyResetCode checks a reset code without consuming it.
//
// @Summary      Verify a password reset code
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      verifyCodeRequest  true  "Reset code"
// @Success      200   {object}  Envelope{data=verifyCodeResponse}
// @Failure      400   {object}  Envelope
// @Router       /user/reset-password [post]
func (h *AuthHandler) VerifyResetCode(c echo.Context) error {
	var req verifyCodeRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	userID, err := h.authService.VerifyResetCode(c.Request().Context(), req.OTP)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "OTP verified successfully", verifyCodeResponse{UserID: userID})
}

// ResetPassword sets a new password using a valid reset code.
//
// @Summary      Reset password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      newPasswordRequest  true  "Reset code and new password"
// @Success      200   {object}  Envelope
// @Failure      400   {object}  Envelope
// @Failure      404   {object}  Envelope
// @Router       /user/newpassword [post]
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req newPasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if err := h.authService.ResetPassword(c.Request().Context(), req.OTP, req.NewPassword, req.ConfirmPassword); err != nil {
		return err
	}

	return respond(c, http.StatusOK, "Password reset successfully", nil)
}

func loginResult(err error) string {
	if err == nil {
		return "success"
	}
	switch domain.KindOf(err) {
	case domain.KindUnauthenticated:
		return "invalid_credentials"
	case domain.KindInternal:
		return "error"
	default:
		return "rejected"
	}
}
