package models

import "time"

// AuditAction names a console mutation recorded in the audit trail.
type AuditAction string

const (
	AuditActionSignIn  AuditAction = "SIGN_IN"
	AuditActionSignOut AuditAction = "SIGN_OUT"
	AuditActionSubmit  AuditAction = "SUBMIT"
	AuditActionDelete  AuditAction = "DELETE"
)

// AuditStatus records whether the upstream call behind the action succeeded.
type AuditStatus string

const (
	AuditStatusSucceeded AuditStatus = "SUCCEEDED"
	AuditStatusFailed    AuditStatus = "FAILED"
)

// AuditLog represents an audit trail record.
type AuditLog struct {
	ID               string      `db:"id" json:"id"`
	ConsoleSessionID string      `db:"console_session_id" json:"consoleSessionId"`
	Subject          *string     `db:"subject" json:"subject,omitempty"`
	Action           AuditAction `db:"action" json:"action"`
	Resource         string      `db:"resource" json:"resource"`
	ResourceID       *string     `db:"resource_id" json:"resourceId,omitempty"`
	Payload          []byte      `db:"payload" json:"payload,omitempty"`
	Status           AuditStatus `db:"status" json:"status"`
	ErrorMessage     *string     `db:"error_message" json:"errorMessage,omitempty"`
	CreatedAt        time.Time   `db:"created_at" json:"createdAt"`
}

// AuditFilter narrows audit trail listings.
type AuditFilter struct {
	ConsoleSessionID string
	Resource         string
	Page             int
	PageSize         int
}
