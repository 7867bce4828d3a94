package domain

import "time"

// AuditAction enumerates audit entry kinds.
type AuditAction string

const (
	AuditCreate          AuditAction = "CREATE"
	AuditRead            AuditAction = "READ"
	AuditUpdate          AuditAction = "UPDATE"
	AuditDelete          AuditAction = "DELETE"
	AuditLogin           AuditAction = "LOGIN"
	AuditLogout          AuditAction = "LOGOUT"
	AuditPermissionCheck AuditAction = "PERMISSION_CHECK"
	AuditViewProfile     AuditAction = "VIEW_PROFILE"
	AuditUpdateProfile   AuditAction = "UPDATE_PROFILE"
)

var auditActions = map[AuditAction]struct{}{
	AuditCreate: {}, AuditRead: {}, AuditUpdate: {}, AuditDelete: {},
	AuditLogin: {}, AuditLogout: {}, AuditPermissionCheck: {},
	AuditViewProfile: {}, AuditUpdateProfile: {},
}

// Valid reports whether a is one of the known kinds.
func (a AuditAction) Valid() bool {
	_, ok := auditActions[a]
	return ok
}

// AuditEntry is an immutable audit record. UserID is empty when the actor is
// unknown (e.g. a login attempt for an unregistered email).
type AuditEntry struct {
	ID             string         `json:"id"`
	Action         AuditAction    `json:"action"`
	Description    string         `json:"description"`
	UserID         string         `json:"userId,omitempty"`
	User           *AuditActor    `json:"user,omitempty"`
	IPAddress      string         `json:"ipAddress,omitempty"`
	AdditionalInfo map[string]any `json:"additionalInfo,omitempty"`
	Timestamp      time.Time      `json:"timestamp"`
}

// AuditActor is the subset of user fields embedded into audit listings.
type AuditActor struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}
