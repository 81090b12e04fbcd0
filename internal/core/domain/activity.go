package domain

import "time"

// ActivityType enumerates the auth events written to the audit trail.
type ActivityType string

const (
	ActivityLoginSuccess       ActivityType = "auth.login.success"
	ActivityLoginFailure       ActivityType = "auth.login.failure"
	ActivityLogout             ActivityType = "auth.logout"
	ActivitySignup             ActivityType = "auth.signup"
	ActivityEmailVerified      ActivityType = "auth.email.verified"
	ActivityPasswordResetAsked ActivityType = "auth.password.reset_requested"
	ActivityPasswordReset      ActivityType = "auth.password.reset"
)

// ActivityEvent is a single audit record.
type ActivityEvent struct {
	Type       ActivityType
	UserID     string
	Username   string
	Email      string
	Metadata   map[string]string
	OccurredAt time.Time
}
