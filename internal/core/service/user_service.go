package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/keystone-labs/rbac-core/internal/core/domain"
	"github.com/keystone-labs/rbac-core/internal/core/ports"
)

// UserService implements self-service profiles and administrator user
// management.
type UserService struct {
	users    ports.UserRepository
	roles    ports.RoleRepository
	sessions ports.SessionRepository
	codes    ports.ResetCodeRepository
	images   ports.ImageStore
	audit    auditRecorder
	now      func() time.Time
	log      zerolog.Logger
}

func NewUserService(
	users ports.UserRepository,
	roles ports.RoleRepository,
	sessions ports.SessionRepository,
	codes ports.ResetCodeRepository,
	images ports.ImageStore,
	audit ports.AuditRepository,
	log zerolog.Logger,
) *UserService {
	return &UserService{
		users:    users,
		roles:    roles,
		sessions: sessions,
		codes:    codes,
		images:   images,
		audit:    newAuditRecorder(audit, log),
		now:      time.Now,
		log:      log,
	}
}

// GetProfile returns the caller's own profile.
func (s *UserService) GetProfile(ctx context.Context, actor ports.Actor, id string) (*domain.User, error) {
	if actor.UserID != id {
		return nil, domain.Forbidden(domain.ErrPermissionDenied)
	}
	user, err := s.users.FindByID(ctx, id)
	if errors.Is(err, domain.ErrUserNotFound) {
		s.record(ctx, actor, domain.AuditViewProfile, fmt.Sprintf("Profile not found for user ID: %s", id), nil)
		return nil, domain.NotFound(err)
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	s.attachRole(ctx, user)
	s.record(ctx, actor, domain.AuditViewProfile, fmt.Sprintf("User %s viewed their profile", id), nil)
	return user, nil
}

// UpdateProfile edits the caller's own profile and optionally replaces the
// profile image.
func (s *UserService) UpdateProfile(ctx context.Context, actor ports.Actor, id string, in ports.ProfileUpdateInput) (*domain.User, error) {
	if actor.UserID != id {
		return nil, domain.Forbidden(domain.ErrPermissionDenied)
	}
	user, err := s.users.FindByID(ctx, id)
	if errors.Is(err, domain.ErrUserNotFound) {
		s.record(ctx, actor, domain.AuditUpdateProfile, fmt.Sprintf("Profile not found for user ID: %s", id), nil)
		return nil, domain.NotFound(err)
	}
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	var upd domain.UserUpdate
	if in.FirstName != "" {
		upd.FirstName = &in.FirstName
	}
	if in.LastName != "" {
		upd.LastName = &in.LastName
	}
	if in.PhoneNo != "" {
		upd.PhoneNo = &in.PhoneNo
	}
	if in.Email != "" {
		email := normalizeEmail(in.Email)
		upd.Email = &email
	}

	var stored string
	if in.Image != nil {
		firstName := user.FirstName
		if upd.FirstName != nil {
			firstName = *upd.FirstName
		}
		img := *in.Image
		img.Name = imageName(firstName, in.Image.Name, s.now())
		if stored, err = s.images.Save(ctx, img); err != nil {
			return nil, fmt.Errorf("update profile: store image: %w", err)
		}
		upd.ProfileImage = &stored
	}

	updated, err := s.applyUpdate(ctx, id, upd, user)
	if err != nil {
		if stored != "" {
			s.dropImage(ctx, stored)
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	if stored != "" {
		s.dropImage(ctx, user.ProfileImage)
	}

	s.attachRole(ctx, updated)
	s.record(ctx, actor, domain.AuditUpdateProfile, fmt.Sprintf("User %s updated their profile", id), changedFields(upd))
	return updated, nil
}

// DeleteAccount removes the caller's own account.
func (s *UserService) DeleteAccount(ctx context.Context, actor ports.Actor, id string) error {
	if actor.UserID != id {
		return domain.Unauthenticated(domain.ErrDeleteNotOwner)
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if err := s.remove(ctx, user); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	s.record(ctx, actor, domain.AuditDelete, fmt.Sprintf("User %s deleted their account", id), nil)
	return nil
}

func (s *UserService) ListUsers(ctx context.Context, page, limit int) (*ports.UserPage, error) {
	p := domain.NewPage(page, limit)
	total, err := s.users.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: count: %w", err)
	}
	users, err := s.users.List(ctx, p.Offset(), p.Limit)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	roles := make(map[string]*domain.Role)
	items := make([]ports.UserListItem, 0, len(users))
	for i, u := range users {
		if _, seen := roles[u.RoleID]; !seen {
			roles[u.RoleID] = s.lookupRole(ctx, u.RoleID)
		}
		u.Role = roles[u.RoleID]
		items = append(items, ports.UserListItem{SrNo: p.Offset() + i + 1, User: u})
	}
	return &ports.UserPage{Items: items, Total: total, Page: p.Number, Limit: p.Limit}, nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	s.attachRole(ctx, user)
	return user, nil
}

func (s *UserService) CreateUser(ctx context.Context, actor ports.Actor, in ports.CreateUserInput) (*domain.User, error) {
	if in.FirstName == "" || in.Email == "" || in.Password == "" {
		return nil, domain.Validation(domain.ErrInvalidInput)
	}
	roleName := in.Role
	if roleName == "" {
		roleName = domain.RoleUser
	}
	role, err := s.roleByName(ctx, roleName)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	created, err := createUser(ctx, s.users, &domain.User{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		PhoneNo:   in.PhoneNo,
		Email:     normalizeEmail(in.Email),
		RoleID:    role.ID,
	}, in.Password, s.now())
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	created.Role = role
	s.record(ctx, actor, domain.AuditCreate, fmt.Sprintf("User %s created with role '%s'", created.ID, role.Name),
		map[string]any{"targetUserId": created.ID})
	return created, nil
}

func (s *UserService) UpdateUser(ctx context.Context, actor ports.Actor, id string, in ports.AdminUpdateInput) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	upd := domain.UserUpdate{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		PhoneNo:   in.PhoneNo,
	}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		upd.Email = &email
	}
	if in.Role != nil {
		role, err := s.roleByName(ctx, *in.Role)
		if err != nil {
			return nil, fmt.Errorf("update user: %w", err)
		}
		upd.RoleID = &role.ID
	}

	updated, err := s.applyUpdate(ctx, id, upd, user)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	s.attachRole(ctx, updated)

	info := changedFields(upd)
	info["targetUserId"] = id
	s.record(ctx, actor, domain.AuditUpdate, fmt.Sprintf("User %s updated", id), info)
	return updated, nil
}

func (s *UserService) DeleteUser(ctx context.Context, actor ports.Actor, id string) error {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if err := s.remove(ctx, user); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	s.record(ctx, actor, domain.AuditDelete, fmt.Sprintf("User %s deleted", id),
		map[string]any{"targetUserId": id, "email": user.Email})
	return nil
}

// remove deletes user together with its sessions, reset codes and stored
// profile image.
func (s *UserService) remove(ctx context.Context, user *domain.User) error {
	if err := s.users.Delete(ctx, user.ID); err != nil {
		return err
	}
	if _, err := s.sessions.DeleteByUser(ctx, user.ID); err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}
	if _, err := s.codes.DeleteByUser(ctx, user.ID); err != nil {
		return fmt.Errorf("drop reset codes: %w", err)
	}
	s.dropImage(ctx, user.ProfileImage)
	return nil
}

func (s *UserService) applyUpdate(ctx context.Context, id string, upd domain.UserUpdate, current *domain.User) (*domain.User, error) {
	if upd.Empty() {
		return current, nil
	}
	if upd.Email != nil && *upd.Email != current.Email {
		if err := s.ensureFree(ctx, s.users.FindByEmail, *upd.Email, id); err != nil {
			return nil, err
		}
	}
	if upd.PhoneNo != nil && *upd.PhoneNo != "" && *upd.PhoneNo != current.PhoneNo {
		if err := s.ensureFree(ctx, s.users.FindByPhone, *upd.PhoneNo, id); err != nil {
			return nil, err
		}
	}
	updated, err := s.users.Update(ctx, id, upd)
	if errors.Is(err, domain.ErrUserExists) {
		return nil, domain.Conflict(err)
	}
	return updated, err
}

func (s *UserService) ensureFree(ctx context.Context, find func(context.Context, string) (*domain.User, error), value, owner string) error {
	other, err := find(ctx, value)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if other.ID != owner {
		return domain.Conflict(domain.ErrUserExists)
	}
	return nil
}

func (s *UserService) roleByName(ctx context.Context, name string) (*domain.Role, error) {
	role, err := s.roles.FindByName(ctx, strings.TrimSpace(name))
	if errors.Is(err, domain.ErrRoleNotFound) {
		return nil, domain.NotFound(err)
	}
	return role, err
}

func (s *UserService) attachRole(ctx context.Context, user *domain.User) {
	user.Role = s.lookupRole(ctx, user.RoleID)
}

// lookupRole returns the role for display, or nil when it cannot be loaded.
// Store failures are logged so they are not mistaken for a dangling reference.
func (s *UserService) lookupRole(ctx context.Context, roleID string) *domain.Role {
	role, err := s.roles.FindByID(ctx, roleID)
	if err != nil {
		if !errors.Is(err, domain.ErrRoleNotFound) {
			s.log.Error().Err(err).Str("role_id", roleID).Msg("failed to load role")
		}
		return nil
	}
	return role
}

func (s *UserService) dropImage(ctx context.Context, ref string) {
	if ref == "" || ref == domain.DefaultProfileImage {
		return
	}
	if err := s.images.Delete(ctx, ref); err != nil {
		s.log.Warn().Err(err).Str("image", ref).Msg("failed to delete profile image")
	}
}

func (s *UserService) record(ctx context.Context, actor ports.Actor, action domain.AuditAction, desc string, info map[string]any) {
	s.audit.record(ctx, domain.AuditEntry{
		Action:         action,
		Description:    desc,
		UserID:         actor.UserID,
		IPAddress:      actor.IP,
		AdditionalInfo: info,
	})
}

// imageName derives the stored object name of a profile image.
func imageName(firstName, original string, now time.Time) string {
	millis := strconv.FormatInt(now.UnixMilli(), 10)
	if firstName = strings.TrimSpace(firstName); firstName != "" {
		return firstName + "_" + millis + strings.ToLower(filepath.Ext(original))
	}
	return millis + "_" + filepath.Base(original)
}

func changedFields(upd domain.UserUpdate) map[string]any {
	var fields []string
	for name, set := range map[string]bool{
		"firstName":    upd.FirstName != nil,
		"lastName":     upd.LastName != nil,
		"phoneNo":      upd.PhoneNo != nil,
		"email":        upd.Email != nil,
		"roleId":       upd.RoleID != nil,
		"profileImage": upd.ProfileImage != nil,
	} {
		if set {
			fields = append(fields, name)
		}
	}
	slices.Sort(fields)
	return map[string]any{"fields": fields}
}

var _ ports.UserService = (*UserService)(nil)
