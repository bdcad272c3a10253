package models

import "time"

// AuditAction constants represent actions to be logged.
const (
	AuditActionClassCreate    = "CLASS_CREATE"
	AuditActionClassStatus    = "CLASS_STATUS_UPDATE"
	AuditActionClassFeedback  = "CLASS_FEEDBACK_UPDATE"
	AuditActionPaymentRecord  = "PAYMENT_RECORD"
	AuditActionUserRoleUpdate = "USER_ROLE_UPDATE"
	AuditActionUserDelete     = "USER_DELETE"
)

// AuditLog represents an audit trail record.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	ActorEmail *string   `db:"actor_email" json:"actorEmail,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resourceId,omitempty"`
	NewValues  []byte    `db:"new_values" json:"newValues,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ipAddress"`
	UserAgent  string    `db:"user_agent" json:"userAgent"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}
