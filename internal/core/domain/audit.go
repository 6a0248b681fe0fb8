package domain

import "time"

// AuditKind names an audit event.
type AuditKind string

const (
	AuditRegisterSuccess AuditKind = "register_success"
	AuditRegisterFail    AuditKind = "register_fail"
	AuditRegisterError   AuditKind = "register_error"
	AuditLoginSuccess    AuditKind = "login_success"
	AuditLoginFail       AuditKind = "login_fail"
	AuditProfileUpdated  AuditKind = "profile_update_success"
	AuditProfileInvalid  AuditKind = "profile_update_invalid"
	AuditProfileConflict AuditKind = "profile_update_conflict"
	AuditProfileError    AuditKind = "profile_update_error"
	AuditResumeDenied    AuditKind = "resume_access_denied"
)

// AuditEvent is a single fire-and-forget admin log record.
type AuditEvent struct {
	Kind      AuditKind `json:"event_type"`
	Message   string    `json:"message"`
	UserEmail string    `json:"user_email,omitempty"`
	IP        string    `json:"ip,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
