package memstore

import (
	"context"
	"slices"
	"strconv"
	"sync"

	"github.com/keystone-labs/rbac-core/internal/core/domain"
)

func cloneRole(r *domain.Role) *domain.Role {
	if r == nil {
		return nil
	}
	c := *r
	c.Permissions = slices.Clone(r.Permissions)
	return &c
}

// Roles is an in-memory ports.RoleRepository.
type Roles struct {
	mu    sync.Mutex
	seq   int
	order []string
	byID  map[string]*domain.Role
}

func NewRoles() *Roles {
	return &Roles{byID: make(map[string]*domain.Role)}
}

func (r *Roles) Create(_ context.Context, role *domain.Role) (*domain.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.byID {
		if o.Name == role.Name {
			return nil, domain.ErrRoleExists
		}
	}
	c := cloneRole(role)
	c.Permissions = domain.NormalizePermissions(c.Permissions)
	r.seq++
	c.ID = "r" + strconv.Itoa(r.seq)
	c.Version = 1
	r.byID[c.ID] = c
	r.order = append(r.order, c.ID)
	return cloneRole(c), nil
}

func (r *Roles) FindByID(_ context.Context, id string) (*domain.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	role, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrRoleNotFound
	}
	return cloneRole(role), nil
}

func (r *Roles) FindByName(_ context.Context, name string) (*domain.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, role := range r.byID {
		if role.Name == name {
			return cloneRole(role), nil
		}
	}
	return nil, domain.ErrRoleNotFound
}

func (r *Roles) List(_ context.Context) ([]*domain.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Role, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, cloneRole(r.byID[id]))
	}
	return out, nil
}

func (r *Roles) Update(_ context.Context, id string, upd domain.RoleUpdate) (*domain.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	role, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrRoleNotFound
	}
	if upd.Name != nil {
		for oid, o := range r.byID {
			if oid != id && o.Name == *upd.Name {
				return nil, domain.ErrRoleExists
			}
		}
		role.Name = *upd.Name
	}
	if upd.Permissions != nil {
		role.Permissions = domain.NormalizePermissions(upd.Permissions)
	}
	role.Version++
	return cloneRole(role), nil
}

func (r *Roles) AddPermissions(_ context.Context, id string, perms []string) (*domain.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	role, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrRoleNotFound
	}
	role.Grant(perms...)
	role.Version++
	return cloneRole(role), nil
}

func (r *Roles) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domain.ErrRoleNotFound
	}
	delete(r.byID, id)
	r.order = slices.DeleteFunc(r.order, func(s string) bool { return s == id })
	return nil
}

// Cache is an in-memory ports.PermissionCache that counts hits.
type Cache struct {
	mu     sync.Mutex
	roles  map[string]*domain.Role
	fences map[string]int64
	Hits   int
}

func NewCache() *Cache {
	return &Cache{roles: make(map[string]*domain.Role), fences: make(map[string]int64)}
}

func (c *Cache) Get(_ context.Context, roleID string) (*domain.Role, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	role, ok := c.roles[roleID]
	if ok {
		c.Hits++
	}
	return cloneRole(role), ok, nil
}

func (c *Cache) Set(_ context.Context, role *domain.Role) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if role.Version < c.fences[role.ID] {
		return nil
	}
	c.roles[role.ID] = cloneRole(role)
	return nil
}

func (c *Cache) Invalidate(_ context.Context, roleID string, minVersion int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if minVersion > c.fences[roleID] {
		c.fences[roleID] = minVersion
	}
	delete(c.roles, roleID)
	return nil
}
