// lifecycle/tat.go
package lifecycle

import (
	"time"

	"github.com/gig-portal/eqrf_backend/models"
)

// TatNotApplicable is returned for records that were never submitted.
const TatNotApplicable = -1

// TatDays computes turnaround time in whole days for one submit cycle.
//
// The clock starts at submission. It stops at the decision when one was made,
// otherwise at assignment when an assignee is set, otherwise it keeps running
// against now. Negative spans clamp to zero.
func TatDays(submittedAt *time.Time, status, assignee string, assignedAt, decidedAt *time.Time, now time.Time) int {
	if submittedAt == nil {
		return TatNotApplicable
	}
	end := now
	if status == models.StatusApproved || status == models.StatusRejected {
		if decidedAt != nil {
			end = *decidedAt
		}
	} else if assignee != "" {
		if assignedAt != nil {
			end = *assignedAt
		}
	}
	diff := end.Sub(*submittedAt)
	if diff < 0 {
		diff = 0
	}
	return int(diff.Hours() / 24)
}

// TatForQRF computes the live record's turnaround time.
func TatForQRF(q models.QRF, now time.Time) int {
	return TatDays(q.SubmittedAt, q.Status, q.AssignedToID, q.AssignedAt, q.DecidedAt, now)
}

// TatForHistory computes the turnaround time of a closed cycle snapshot.
func TatForHistory(h models.QRFHistoryItem, now time.Time) int {
	return TatDays(h.SubmittedAt, h.Status, h.AssignedToName, h.AssignedAt, h.DecidedAt, now)
}
