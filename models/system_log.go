// models/system_log.go
package models

import "time"

// Audit log action vocabulary emitted by the lifecycle engine. Controllers
// add a few more (Login, Logout, user management, CRM activity).
const (
	ActionCreateQRF  = "Create QRF"
	ActionAssignUW   = "Assign Underwriter"
	ActionReassignUW = "Re-Assign Underwriter"
	ActionUnassignUW = "Unassign Underwriter"
	ActionSubmitQRF  = "Submit QRF"
	ActionApproveQRF = "Approve QRF"
	ActionRejectQRF  = "Reject QRF"
	ActionUnlockQRF  = "Unlock QRF"
)

// SystemLog is one audit trail entry.
type SystemLog struct {
	ID        string    `json:"id" bson:"_id"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
	UserID    string    `json:"userId" bson:"userId"`
	UserName  string    `json:"userName" bson:"userName"`
	UserRole  string    `json:"userRole" bson:"userRole"`
	Action    string    `json:"action" bson:"action"`
	Details   string    `json:"details" bson:"details"`
	IPAddress string    `json:"ipAddress,omitempty" bson:"ipAddress,omitempty"`
}
