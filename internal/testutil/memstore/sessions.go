package memstore

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/keystone-labs/rbac-core/internal/core/domain"
)

// Sessions is an in-memory ports.SessionRepository.
type Sessions struct {
	mu      sync.Mutex
	seq     int
	byToken map[string]domain.Session
}

func NewSessions() *Sessions {
	return &Sessions{byToken: make(map[string]domain.Session)}
}

func (r *Sessions) Create(_ context.Context, s *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	s.ID = "s" + strconv.Itoa(r.seq)
	r.byToken[s.Token] = *s
	return nil
}

func (r *Sessions) FindByToken(_ context.Context, token string, now time.Time) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byToken[token]
	if !ok || !s.ExpiresAt.After(now) {
		return nil, domain.ErrTokenNotFound
	}
	return &s, nil
}

func (r *Sessions) DeleteByToken(_ context.Context, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byToken[token]; !ok {
		return false, nil
	}
	delete(r.byToken, token)
	return true, nil
}

func (r *Sessions) DeleteByUser(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for tok, s := range r.byToken {
		if s.UserID == userID {
			delete(r.byToken, tok)
			n++
		}
	}
	return n, nil
}

// CountByUser reports how many sessions userID holds, expired or not.
func (r *Sessions) CountByUser(userID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.byToken {
		if s.UserID == userID {
			n++
		}
	}
	return n
}

// ResetCodes is an in-memory ports.ResetCodeRepository.
type ResetCodes struct {
	mu     sync.Mutex
	byCode map[string]domain.ResetCode
}

func NewResetCodes() *ResetCodes {
	return &ResetCodes{byCode: make(map[string]domain.ResetCode)}
}

func (r *ResetCodes) Create(_ context.Context, rc *domain.ResetCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byCode[rc.Code]; ok {
		return domain.ErrOTPInvalid
	}
	rc.ID = "otp-" + rc.Code
	r.byCode[rc.Code] = *rc
	return nil
}

func (r *ResetCodes) FindByCode(_ context.Context, code string) (*domain.ResetCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rc, ok := r.byCode[code]
	if !ok {
		return nil, domain.ErrOTPInvalid
	}
	return &rc, nil
}

func (r *ResetCodes) DeleteByUser(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for code, rc := range r.byCode {
		if rc.UserID == userID {
			delete(r.byCode, code)
			n++
		}
	}
	return n, nil
}

// Expire moves the expiry of code into the past.
func (r *ResetCodes) Expire(code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rc, ok := r.byCode[code]; ok {
		rc.ExpiresAt = time.Now().Add(-time.Minute)
		r.byCode[code] = rc
	}
}

// Codes returns every stored code for userID.
func (r *ResetCodes) Codes(userID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for code, rc := range r.byCode {
		if rc.UserID == userID {
			out = append(out, code)
		}
	}
	return out
}
