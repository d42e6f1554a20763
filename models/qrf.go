// models/qrf.go
package models

import "time"

// QRF lifecycle statuses
const (
	StatusDraft     = "DRAFT"
	StatusSubmitted = "SUBMITTED"
	StatusApproved  = "APPROVED" // accepted by underwriting, terminal
	StatusRejected  = "REJECTED" // sent back to the agent
)

// QRF product types
const (
	TypeMedical = "MEDICAL"
	TypeLife    = "LIFE"
	TypePension = "PENSION"
	TypeCredit  = "CREDIT"
)

// Rejection reasons an underwriter may pick
var RejectionReasons = []string{
	"Missing data",
	"Missing documents",
	"Wrong Data",
	"Other",
}

// Attachment is an uploaded supporting document. The payload itself is an
// opaque base64 blob; this service never inspects it.
type Attachment struct {
	ID         string    `json:"id" bson:"id"`
	Name       string    `json:"name" bson:"name"`
	Size       int64     `json:"size" bson:"size"`
	Type       string    `json:"type" bson:"type"`
	Data       string    `json:"data,omitempty" bson:"data,omitempty"`
	UploadedAt time.Time `json:"uploadedAt" bson:"uploadedAt"`
}

// CategoryValues holds the per-category column values of a benefit row
// (col0, col1, ...).
type CategoryValues map[string]string

// QRFData is the form payload of a quote request.
type QRFData struct {
	AccountName            string                    `json:"accountName" bson:"accountName"`
	BrokerName             string                    `json:"brokerName,omitempty" bson:"brokerName,omitempty"`
	BrokerCode             string                    `json:"brokerCode,omitempty" bson:"brokerCode,omitempty"`
	QuoteDate              string                    `json:"quoteDate" bson:"quoteDate"`
	ExistingInsurer        string                    `json:"existingInsurer" bson:"existingInsurer"`
	NatureOfBusiness       string                    `json:"natureOfBusiness" bson:"natureOfBusiness"`
	RequestedBenefits      string                    `json:"requestedBenefits,omitempty" bson:"requestedBenefits,omitempty"`
	CountMembers           string                    `json:"countMembers" bson:"countMembers"`
	CountCategories        string                    `json:"countCategories,omitempty" bson:"countCategories,omitempty"`
	AdditionalNotes        string                    `json:"additionalNotes,omitempty" bson:"additionalNotes,omitempty"`
	ShowAdditionalBenefits bool                      `json:"showAdditionalBenefits" bson:"showAdditionalBenefits"`
	Fields                 map[string]string         `json:"fields,omitempty" bson:"fields,omitempty"`
	CategoryRows           map[string]CategoryValues `json:"categoryRows,omitempty" bson:"categoryRows,omitempty"`
	Attachments            []Attachment              `json:"attachments" bson:"attachments"`
	ProposalAttachments    []Attachment              `json:"proposalAttachments,omitempty" bson:"proposalAttachments,omitempty"`
}

// QRFHistoryItem is the snapshot of a closed rejection cycle. Entries are
// append-only, oldest first.
type QRFHistoryItem struct {
	Status          string     `json:"status" bson:"status"`
	SubmittedAt     *time.Time `json:"submittedAt,omitempty" bson:"submittedAt,omitempty"`
	DecidedAt       *time.Time `json:"decidedAt,omitempty" bson:"decidedAt,omitempty"`
	AssignedToName  string     `json:"assignedToName,omitempty" bson:"assignedToName,omitempty"`
	AssignedAt      *time.Time `json:"assignedAt,omitempty" bson:"assignedAt,omitempty"`
	RejectionReason string     `json:"rejectionReason,omitempty" bson:"rejectionReason,omitempty"`
}

// QRF is a quote request form.
type QRF struct {
	ID              string   `json:"id" bson:"_id"`
	ReferenceNumber string   `json:"referenceNumber" bson:"referenceNumber"`
	Name            string   `json:"name" bson:"name"`
	Types           []string `json:"types" bson:"types"`

	AgentID   string `json:"agentId" bson:"agentId"`
	AgentName string `json:"agentName" bson:"agentName"`

	Status      string     `json:"status" bson:"status"`
	CreatedAt   time.Time  `json:"createdAt" bson:"createdAt"`
	SubmittedAt *time.Time `json:"submittedAt,omitempty" bson:"submittedAt,omitempty"`

	AssignedToID   string     `json:"assignedToId,omitempty" bson:"assignedToId,omitempty"`
	AssignedToName string     `json:"assignedToName,omitempty" bson:"assignedToName,omitempty"`
	AssignedAt     *time.Time `json:"assignedAt,omitempty" bson:"assignedAt,omitempty"`

	// Set when an assignment is cleared without a replacement; wiped again
	// by the next assignment.
	UnassignedBy           string     `json:"unassignedBy,omitempty" bson:"unassignedBy,omitempty"`
	UnassignedAt           *time.Time `json:"unassignedAt,omitempty" bson:"unassignedAt,omitempty"`
	PreviousAssignedToName string     `json:"previousAssignedToName,omitempty" bson:"previousAssignedToName,omitempty"`

	DecidedAt *time.Time `json:"decidedAt,omitempty" bson:"decidedAt,omitempty"`

	// Advisory review lock. The backend never enforces it beyond what the
	// permission rules derive from it.
	IsLocked *bool `json:"isLocked,omitempty" bson:"isLocked,omitempty"`

	RejectionReason string `json:"rejectionReason,omitempty" bson:"rejectionReason,omitempty"`
	RejectionNote   string `json:"rejectionNote,omitempty" bson:"rejectionNote,omitempty"`

	Data QRFData `json:"data" bson:"data"`

	History []QRFHistoryItem `json:"history,omitempty" bson:"history,omitempty"`
}

// Locked resolves the advisory lock flag, treating "unset" as unlocked.
func (q QRF) Locked() bool {
	return q.IsLocked != nil && *q.IsLocked
}

// IsTerminal reports whether the QRF reached its final status.
func (q QRF) IsTerminal() bool {
	return q.Status == StatusApproved
}

// HasType reports whether the QRF covers the given product type.
func (q QRF) HasType(t string) bool {
	for _, qt := range q.Types {
		if qt == t {
			return true
		}
	}
	return false
}

type AssignRequest struct {
	UnderwriterID string `json:"underwriterId" validate:"required"`
}

type RejectRequest struct {
	Reason string `json:"reason" validate:"required"`
	Note   string `json:"note,omitempty"`
}
