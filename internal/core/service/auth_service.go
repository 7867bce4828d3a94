package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"html"
	"math/big"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/keystone-labs/rbac-core/internal/core/domain"
	"github.com/keystone-labs/rbac-core/internal/core/ports"
)

const (
	otpDigits   = 6
	otpAttempts = 5
)

// AuthConfig holds the signing secret and lifetimes used by AuthService.
type AuthConfig struct {
	Secret       string
	SessionTTL   time.Duration
	ResetCodeTTL time.Duration
}

// AuthService implements registration, login and the credential lifecycle.
type AuthService struct {
	users    ports.UserRepository
	roles    ports.RoleRepository
	sessions ports.SessionRepository
	codes    ports.ResetCodeRepository
	mailer   ports.Mailer
	audit    auditRecorder
	cfg      AuthConfig
	now      func() time.Time
	log      zerolog.Logger
}

func NewAuthService(
	users ports.UserRepository,
	roles ports.RoleRepository,
	sessions ports.SessionRepository,
	codes ports.ResetCodeRepository,
	mailer ports.Mailer,
	audit ports.AuditRepository,
	cfg AuthConfig,
	log zerolog.Logger,
) *AuthService {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = domain.DefaultSessionTTL
	}
	if cfg.ResetCodeTTL <= 0 {
		cfg.ResetCodeTTL = domain.DefaultResetCodeTTL
	}
	return &AuthService{
		users:    users,
		roles:    roles,
		sessions: sessions,
		codes:    codes,
		mailer:   mailer,
		audit:    newAuditRecorder(audit, log),
		cfg:      cfg,
		now:      time.Now,
		log:      log,
	}
}

// Register creates a self-service account. The role is always "user".
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	if in.FirstName == "" || in.Email == "" || in.Password == "" {
		return nil, domain.Validation(domain.ErrInvalidInput)
	}

	role, err := s.roles.FindByName(ctx, domain.RoleUser)
	if err != nil {
		return nil, fmt.Errorf("register: resolve default role: %w", err)
	}

	user := &domain.User{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		PhoneNo:   in.PhoneNo,
		Email:     normalizeEmail(in.Email),
		RoleID:    role.ID,
	}
	created, err := createUser(ctx, s.users, user, in.Password, s.now())
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	created.Role = role
	return created, nil
}

// Login checks credentials, replaces any earlier session of the user and
// returns a fresh token. Every attempt is audited.
func (s *AuthService) Login(ctx context.Context, email, password, ip string) (*ports.LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		s.audit.record(ctx, domain.AuditEntry{
			Action:         domain.AuditLogin,
			Description:    fmt.Sprintf("Failed login attempt for email: %s. Missing credentials.", email),
			IPAddress:      ip,
			AdditionalInfo: map[string]any{"email": email, "success": false},
		})
		return nil, domain.Validation(domain.ErrInvalidInput)
	}

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		s.audit.record(ctx, domain.AuditEntry{
			Action:         domain.AuditLogin,
			Description:    fmt.Sprintf("Failed login attempt for email: %s. User not found.", email),
			IPAddress:      ip,
			AdditionalInfo: map[string]any{"email": email, "success": false},
		})
		return nil, domain.Unauthenticated(domain.ErrInvalidCredentials)
	}
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.audit.record(ctx, domain.AuditEntry{
			Action:         domain.AuditLogin,
			Description:    fmt.Sprintf("Failed login attempt for user: %s. Incorrect password.", user.ID),
			UserID:         user.ID,
			IPAddress:      ip,
			AdditionalInfo: map[string]any{"email": email, "success": false},
		})
		return nil, domain.Unauthenticated(domain.ErrInvalidCredentials)
	}

	if _, err := s.sessions.DeleteByUser(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("login: drop previous sessions: %w", err)
	}

	now := s.now().UTC()
	token, err := issueToken([]byte(s.cfg.Secret), user.ID, now, s.cfg.SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("login: sign token: %w", err)
	}
	if err := s.sessions.Create(ctx, &domain.Session{
		Token:     token,
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.SessionTTL),
	}); err != nil {
		return nil, fmt.Errorf("login: store session: %w", err)
	}

	s.audit.record(ctx, domain.AuditEntry{
		Action:         domain.AuditLogin,
		Description:    fmt.Sprintf("User %s logged in successfully.", user.ID),
		UserID:         user.ID,
		IPAddress:      ip,
		AdditionalInfo: map[string]any{"email": email, "success": true},
	})

	if role, err := s.roles.FindByID(ctx, user.RoleID); err == nil {
		user.Role = role
	}
	return &ports.LoginResult{Token: token, User: user}, nil
}

// Logout deletes the presented session token.
func (s *AuthService) Logout(ctx context.Context, id domain.Identity, ip string) error {
	removed, err := s.sessions.DeleteByToken(ctx, id.Token)
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	if !removed {
		return domain.Unauthenticated(domain.ErrTokenNotFound)
	}
	s.audit.record(ctx, domain.AuditEntry{
		Action:      domain.AuditLogout,
		Description: fmt.Sprintf("User %s logged out.", id.UserID),
		UserID:      id.UserID,
		IPAddress:   ip,
	})
	return nil
}

// ChangePassword replaces the credential of userID and revokes all of its
// sessions.
func (s *AuthService) ChangePassword(ctx context.Context, userID string, in ports.ChangePasswordInput) error {
	if in.OldPassword == "" || in.NewPassword == "" {
		return domain.Validation(domain.ErrInvalidInput)
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.OldPassword)) != nil {
		return domain.Validation(domain.ErrIncorrectOldPassword)
	}
	if in.NewPassword != in.ConfirmPassword {
		return domain.Validation(domain.ErrPasswordMismatch)
	}
	if err := s.setPassword(ctx, user.ID, in.NewPassword); err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	return nil
}

// ForgotPassword issues a reset code for email and mails it. Earlier codes
// for the same user are discarded.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return fmt.Errorf("forgot password: %w", err)
	}

	if _, err := s.codes.DeleteByUser(ctx, user.ID); err != nil {
		return fmt.Errorf("forgot password: drop previous codes: %w", err)
	}

	rc := &domain.ResetCode{UserID: user.ID, ExpiresAt: s.now().UTC().Add(s.cfg.ResetCodeTTL)}
	for attempt := 0; ; attempt++ {
		if rc.Code, err = generateOTP(otpDigits); err != nil {
			return fmt.Errorf("forgot password: generate code: %w", err)
		}
		err = s.codes.Create(ctx, rc)
		if err == nil {
			break
		}
		if !errors.Is(err, domain.ErrOTPInvalid) || attempt+1 == otpAttempts {
			return fmt.Errorf("forgot password: store code: %w", err)
		}
	}

	msg := ports.MailMessage{
		To:      user.Email,
		Subject: "Password Reset",
		HTML:    resetMailBody(user.FirstName, rc.Code, s.cfg.ResetCodeTTL),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("forgot password: send mail: %w", err)
	}
	s.log.Info().Str("user_id", user.ID).Msg("password reset code issued")
	return nil
}

// VerifyResetCode returns the owner of otp if it exists and has not expired.
func (s *AuthService) VerifyResetCode(ctx context.Context, otp string) (string, error) {
	rc, err := s.lookupCode(ctx, otp)
	if err != nil {
		return "", err
	}
	return rc.UserID, nil
}

// ResetPassword sets a new credential for the owner of otp, consumes the
// code and revokes every session of the user.
func (s *AuthService) ResetPassword(ctx context.Context, otp, newPassword, confirmPassword string) error {
	if newPassword == "" {
		return domain.Validation(domain.ErrInvalidInput)
	}
	if newPassword != confirmPassword {
		return domain.Validation(domain.ErrPasswordMismatch)
	}
	rc, err := s.lookupCode(ctx, otp)
	if err != nil {
		return err
	}
	if err := s.setPassword(ctx, rc.UserID, newPassword); err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	if _, err := s.codes.DeleteByUser(ctx, rc.UserID); err != nil {
		return fmt.Errorf("reset password: consume code: %w", err)
	}
	return nil
}

func (s *AuthService) lookupCode(ctx context.Context, otp string) (*domain.ResetCode, error) {
	if otp == "" {
		return nil, domain.Validation(domain.ErrOTPInvalid)
	}
	rc, err := s.codes.FindByCode(ctx, otp)
	if errors.Is(err, domain.ErrOTPInvalid) {
		return nil, domain.Validation(domain.ErrOTPInvalid)
	}
	if err != nil {
		return nil, fmt.Errorf("lookup reset code: %w", err)
	}
	if rc.Expired(s.now()) {
		return nil, domain.Validation(domain.ErrOTPExpired)
	}
	return rc, nil
}

func (s *AuthService) setPassword(ctx context.Context, userID, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return err
	}
	if _, err := s.sessions.DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}
	return nil
}

// createUser hashes password and inserts user after checking that its email
// and phone are free.
func createUser(ctx context.Context, users ports.UserRepository, user *domain.User, password string, now time.Time) (*domain.User, error) {
	if _, err := users.FindByEmail(ctx, user.Email); err == nil {
		return nil, domain.Conflict(domain.ErrUserExists)
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}
	if user.PhoneNo != "" {
		if _, err := users.FindByPhone(ctx, user.PhoneNo); err == nil {
			return nil, domain.Conflict(domain.ErrUserExists)
		} else if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = string(hash)
	if user.ProfileImage == "" {
		user.ProfileImage = domain.DefaultProfileImage
	}
	user.CreatedAt = now.UTC()
	user.UpdatedAt = user.CreatedAt

	created, err := users.Create(ctx, user)
	if errors.Is(err, domain.ErrUserExists) {
		return nil, domain.Conflict(err)
	}
	return created, err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// generateOTP returns a uniformly random numeric code of n digits without a
// leading zero.
func generateOTP(n int) (string, error) {
	low := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n-1)), nil)
	span := new(big.Int).Sub(new(big.Int).Mul(low, big.NewInt(10)), low)
	v, err := rand.Int(rand.Reader, span)
	if err != nil {
		return "", err
	}
	return v.Add(v, low).String(), nil
}

func resetMailBody(name, code string, ttl time.Duration) string {
	if name == "" {
		name = "there"
	}
	return fmt.Sprintf(
		"<p>Hi %s,</p><p>Your password reset code is <strong>%s</strong>.</p><p>It expires in %d minutes.</p>",
		html.EscapeString(name), code, int(ttl.Minutes()),
	)
}

var _ ports.AuthService = (*AuthService)(nil)
