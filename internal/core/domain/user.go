package domain

import "time"

// DefaultProfileImage is assigned to accounts that never uploaded a picture.
const DefaultProfileImage = "default_user.jpg"

// User models an account. RoleID is the stored reference; Role is only set
// after the reference has been resolved against the role store.
type User struct {
	ID           string    `json:"id"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	PhoneNo      string    `json:"phoneNo"`
	Email        string    `json:"email"`
	RoleID       string    `json:"roleId"`
	Role         *Role     `json:"role,omitempty"`
	PasswordHash string    `json:"-"`
	ProfileImage string    `json:"profileImage"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserUpdate is a partial update; nil fields are left untouched.
type UserUpdate struct {
	FirstName    *string
	LastName     *string
	PhoneNo      *string
	Email        *string
	RoleID       *string
	ProfileImage *string
}

// Empty reports whether the update would change nothing.
func (u UserUpdate) Empty() bool {
	return u.FirstName == nil && u.LastName == nil && u.PhoneNo == nil &&
		u.Email == nil && u.RoleID == nil && u.ProfileImage == nil
}
