package domain

import "time"

const (
	DefaultSessionTTL   = 24 * time.Hour
	DefaultResetCodeTTL = time.Hour
)

// Session is a persisted bearer token. Presence in the store is what keeps a
// token valid; the signature alone is not enough.
type Session struct {
	ID        string
	Token     string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Identity is the outcome of a successful authentication.
type Identity struct {
	UserID string
	Token  string
}

// ResetCode is a one-time numeric code authorizing a password reset.
type ResetCode struct {
	ID        string
	Code      string
	UserID    string
	ExpiresAt time.Time
}

// Expired reports whether now is strictly after the expiry instant.
func (r *ResetCode) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}
