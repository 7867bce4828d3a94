package handler

import "github.com/keystone-labs/rbac-core/internal/core/domain"

// --- Auth ---

type registerRequest struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName"  validate:"required"`
	PhoneNo   string `json:"phoneNo"   validate:"required,numeric"`
	Email     string `json:"email"     validate:"required,email"`
	Password  string `json:"password"  validate:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// loginResponse is the data of a successful login: the token plus the user
// fields inline.
type loginResponse struct {
	Token string `json:"token"`
	*domain.User
}

type changePasswordRequest struct {
	OldPassword     string `json:"oldPassword"     validate:"required"`
	NewPassword     string `json:"newPassword"     validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type verifyCodeRequest struct {
	OTP string `json:"otp" validate:"required,len=6,numeric"`
}

type verifyCodeResponse struct {
	UserID string `json:"userId"`
}

type newPasswordRequest struct {
	OTP             string `json:"otp"             validate:"required,len=6,numeric"`
	NewPassword     string `json:"newPassword"     validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

// --- Profile ---

type profileUpdateRequest struct {
	FirstName string `json:"firstName" form:"firstName"`
	LastName  string `json:"lastName"  form:"lastName"`
	PhoneNo   string `json:"phoneNo"   form:"phoneNo"   validate:"omitempty,numeric"`
	Email     string `json:"email"     form:"email"     validate:"omitempty,email"`
}

// --- Admin users ---

type createUserRequest struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName"  validate:"required"`
	PhoneNo   string `json:"phoneNo"   validate:"required,numeric"`
	Email     string `json:"email"     validate:"required,email"`
	Password  string `json:"password"  validate:"required,min=6"`
	Role      string `json:"role"`
}

type updateUserRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	PhoneNo   *string `json:"phoneNo"   validate:"omitempty,numeric"`
	Email     *string `json:"email"     validate:"omitempty,email"`
	Role      *string `json:"role"`
}

// --- Roles ---

type createRoleRequest struct {
	Name        string   `json:"name" validate:"required"`
	Permissions []string `json:"permissions"`
}

type updateRoleRequest struct {
	Name        *string  `json:"name"`
	Permissions []string `json:"permissions"`
}

type assignPermissionsRequest struct {
	Permissions []string `json:"permissions" validate:"required,min=1"`
}

// --- Audit ---

type cleanupResponse struct {
	Deleted int64 `json:"deleted"`
}
