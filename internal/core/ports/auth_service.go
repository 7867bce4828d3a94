package ports

import (
	"context"

	"github.com/keystone-labs/rbac-core/internal/core/domain"
)

// Actor identifies who is performing an operation and from where.
type Actor struct {
	UserID string
	IP     string
}

// RegisterInput carries self-service registration data.
type RegisterInput struct {
	FirstName string
	LastName  string
	PhoneNo   string
	Email     string
	Password  string
}

// LoginResult is returned on a successful login.
type LoginResult struct {
	Token string
	User  *domain.User
}

// ChangePasswordInput carries an authenticated password change.
type ChangePasswordInput struct {
	OldPassword     string
	NewPassword     string
	ConfirmPassword string
}

// AuthService covers registration and the session/credential lifecycle.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password, ip string) (*LoginResult, error)
	Logout(ctx context.Context, id domain.Identity, ip string) error
	ChangePassword(ctx context.Context, userID string, in ChangePasswordInput) error
	ForgotPassword(ctx context.Context, email string) error
	// VerifyResetCode returns the ID of the user owning otp.
	VerifyResetCode(ctx context.Context, otp string) (string, error)
	ResetPassword(ctx context.Context, otp, newPassword, confirmPassword string) error
}

// Decision is the outcome of a permission gate. Audited is false when the
// audit write failed; the decision itself still stands.
type Decision struct {
	Allowed bool
	Audited bool
}
