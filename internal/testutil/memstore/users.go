// Package memstore provides in-memory implementations of the core ports for
// service and API tests.
package memstore

import (
	"context"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/keystone-labs/rbac-core/internal/core/domain"
)

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	c := *u
	c.Role = nil
	return &c
}

// Users is an in-memory ports.UserRepository.
type Users struct {
	mu    sync.Mutex
	seq   int
	order []string
	byID  map[string]*domain.User
}

func NewUsers() *Users {
	return &Users{byID: make(map[string]*domain.User)}
}

func (r *Users) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == user.Email || (user.PhoneNo != "" && u.PhoneNo == user.PhoneNo) {
			return nil, domain.ErrUserExists
		}
	}
	c := cloneUser(user)
	if c.ID == "" {
		r.seq++
		c.ID = "u" + strconv.Itoa(r.seq)
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
		c.UpdatedAt = c.CreatedAt
	}
	r.byID[c.ID] = c
	r.order = append(r.order, c.ID)
	return cloneUser(c), nil
}

func (r *Users) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *Users) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Email == email })
}

func (r *Users) FindByPhone(_ context.Context, phone string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.PhoneNo == phone })
}

func (r *Users) find(match func(*domain.User) bool) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if match(u) {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *Users) List(_ context.Context, offset, limit int) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.User, 0, limit)
	for i, id := range r.order {
		if i < offset {
			continue
		}
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, cloneUser(r.byID[id]))
	}
	return out, nil
}

func (r *Users) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.byID)), nil
}

func (r *Users) CountByRole(_ context.Context, roleID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, u := range r.byID {
		if u.RoleID == roleID {
			n++
		}
	}
	return n, nil
}

func (r *Users) Update(_ context.Context, id string, upd domain.UserUpdate) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	for oid, o := range r.byID {
		if oid == id {
			continue
		}
		if (upd.Email != nil && o.Email == *upd.Email) || (upd.PhoneNo != nil && *upd.PhoneNo != "" && o.PhoneNo == *upd.PhoneNo) {
			return nil, domain.ErrUserExists
		}
	}
	setIf(&u.FirstName, upd.FirstName)
	setIf(&u.LastName, upd.LastName)
	setIf(&u.PhoneNo, upd.PhoneNo)
	setIf(&u.Email, upd.Email)
	setIf(&u.RoleID, upd.RoleID)
	setIf(&u.ProfileImage, upd.ProfileImage)
	u.UpdatedAt = time.Now().UTC()
	return cloneUser(u), nil
}

func (r *Users) UpdatePassword(_ context.Context, id, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (r *Users) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.byID, id)
	r.order = slices.DeleteFunc(r.order, func(s string) bool { return s == id })
	return nil
}

// SetRoleID rewrites a stored role reference without validation, to simulate
// dangling references.
func (r *Users) SetRoleID(id, roleID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byID[id]; ok {
		u.RoleID = roleID
	}
}

func setIf(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
