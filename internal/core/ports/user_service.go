package ports

import (
	"context"

	"github.com/keystone-labs/rbac-core/internal/core/domain"
)

// ProfileUpdateInput is a self-service profile edit. Empty strings keep the
// current value.
type ProfileUpdateInput struct {
	FirstName string
	LastName  string
	PhoneNo   string
	Email     string
	Image     *Image
}

// CreateUserInput is an administrator-created account. Role is a role name
// and defaults to "user".
type CreateUserInput struct {
	FirstName string
	LastName  string
	PhoneNo   string
	Email     string
	Password  string
	Role      string
}

// AdminUpdateInput replaces the fields that are set. Role is a role name.
type AdminUpdateInput struct {
	FirstName *string
	LastName  *string
	PhoneNo   *string
	Email     *string
	Role      *string
}

// UserListItem numbers users across pages.
type UserListItem struct {
	SrNo int          `json:"srNo"`
	User *domain.User `json:"user"`
}

// UserPage is one page of the administrator user listing.
type UserPage struct {
	Items []UserListItem
	Total int64
	Page  int
	Limit int
}

// UserService covers profiles and administrator user management.
type UserService interface {
	GetProfile(ctx context.Context, actor Actor, id string) (*domain.User, error)
	UpdateProfile(ctx context.Context, actor Actor, id string, in ProfileUpdateInput) (*domain.User, error)
	DeleteAccount(ctx context.Context, actor Actor, id string) error

	ListUsers(ctx context.Context, page, limit int) (*UserPage, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
	CreateUser(ctx context.Context, actor Actor, in CreateUserInput) (*domain.User, error)
	UpdateUser(ctx context.Context, actor Actor, id string, in AdminUpdateInput) (*domain.User, error)
	DeleteUser(ctx context.Context, actor Actor, id string) error
}
