package domain

import "errors"

// Kind classifies a failure into the response taxonomy rendered by the API layer.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error attaches a Kind to an underlying sentinel. The same sentinel can surface
// with different kinds depending on which gate produced it (a missing user is a
// 401 at the admin gate but a 404 at the permission gate).
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string { return e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Err: err}
}

func Validation(err error) error      { return newError(KindValidation, err) }
func Unauthenticated(err error) error { return newError(KindUnauthenticated, err) }
func Forbidden(err error) error       { return newError(KindForbidden, err) }
func NotFound(err error) error        { return newError(KindNotFound, err) }
func Conflict(err error) error        { return newError(KindConflict, err) }

// Cause returns the first well-known sentinel in err's chain, or nil.
func Cause(err error) error {
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s
		}
	}
	return nil
}

// KindOf reports the classification of err, falling back to the default kind
// of well-known sentinels and finally to KindInternal.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	switch {
	case errors.Is(err, ErrMissingHeader), errors.Is(err, ErrTokenNotFound),
		errors.Is(err, ErrSignatureInvalid), errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrDeleteNotOwner):
		return KindUnauthenticated
	case errors.Is(err, ErrNotAdmin), errors.Is(err, ErrPermissionDenied):
		return KindForbidden
	case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrRoleNotFound),
		errors.Is(err, ErrLogsNotFound):
		return KindNotFound
	case errors.Is(err, ErrUserExists), errors.Is(err, ErrRoleExists),
		errors.Is(err, ErrRoleInUse):
		return KindConflict
	case errors.Is(err, ErrIncorrectOldPassword), errors.Is(err, ErrPasswordMismatch),
		errors.Is(err, ErrOTPInvalid), errors.Is(err, ErrOTPExpired),
		errors.Is(err, ErrInvalidImage), errors.Is(err, ErrImageTooLarge),
		errors.Is(err, ErrInvalidInput):
		return KindValidation
	}
	return KindInternal
}

// Authentication.
var (
	ErrMissingHeader      = errors.New("authorization header is missing")
	ErrTokenNotFound      = errors.New("token not found")
	ErrSignatureInvalid   = errors.New("token verification failed")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDeleteNotOwner     = errors.New("you are unauthorized to delete this account")
)

// Authorization.
var (
	ErrNotAdmin         = errors.New("admin access required")
	ErrPermissionDenied = errors.New("you do not have permission to perform this action")
)

// Identity and role store.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
	ErrRoleNotFound = errors.New("role not found")
	ErrRoleExists   = errors.New("role already exists")
	ErrRoleInUse    = errors.New("role is still assigned to users")
)

// Credential lifecycle.
var (
	ErrIncorrectOldPassword = errors.New("invalid old password")
	ErrPasswordMismatch     = errors.New("passwords do not match")
	ErrOTPInvalid           = errors.New("invalid OTP")
	ErrOTPExpired           = errors.New("expired OTP")
)

// Input.
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidImage  = errors.New("please upload a valid image file")
	ErrImageTooLarge = errors.New("file size should be less than 1 MB")
	ErrLogsNotFound  = errors.New("no audit logs found")
)

var sentinels = []error{
	ErrMissingHeader, ErrTokenNotFound, ErrSignatureInvalid, ErrInvalidCredentials, ErrDeleteNotOwner,
	ErrNotAdmin, ErrPermissionDenied,
	ErrUserNotFound, ErrUserExists, ErrRoleNotFound, ErrRoleExists, ErrRoleInUse,
	ErrIncorrectOldPassword, ErrPasswordMismatch, ErrOTPInvalid, ErrOTPExpired,
	ErrInvalidInput, ErrInvalidImage, ErrImageTooLarge, ErrLogsNotFound,
}
