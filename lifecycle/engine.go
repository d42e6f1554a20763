// lifecycle/engine.go
//
// The QRF lifecycle engine. ApplyTransition is a pure reducer over
// (previous, candidate) that computes the authoritative next record plus the
// audit events describing what changed. It touches no storage; callers fetch
// the previous record, run the reducer, then persist the result and append
// the events in one go.
package lifecycle

import (
	"fmt"
	"time"

	"github.com/gig-portal/eqrf_backend/models"
)

// AuditEvent is one audit trail entry derived from a state delta.
type AuditEvent struct {
	Action  string
	Details string
}

// legal status edges; same-status saves are not transitions and always pass
var transitions = map[string][]string{
	models.StatusDraft:     {models.StatusSubmitted},
	models.StatusSubmitted: {models.StatusApproved, models.StatusRejected},
	models.StatusRejected:  {models.StatusSubmitted},
	models.StatusApproved:  {}, // terminal
}

func transitionAllowed(from, to string) bool {
	if from == to {
		return true
	}
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// ApplyTransition computes the record to persist from the previously stored
// QRF (nil for a brand new one) and the caller's intended next state.
// existingRefs is the set of reference numbers already in use, consulted only
// on creation.
func ApplyTransition(prev *models.QRF, candidate models.QRF, existingRefs []string, now time.Time) (models.QRF, []AuditEvent, error) {
	if prev == nil {
		return applyCreate(candidate, existingRefs)
	}
	return applyUpdate(*prev, candidate, now)
}

func applyCreate(candidate models.QRF, existingRefs []string) (models.QRF, []AuditEvent, error) {
	if candidate.Status != models.StatusDraft && candidate.Status != models.StatusSubmitted {
		return models.QRF{}, nil, &IllegalTransitionError{To: candidate.Status}
	}

	next := candidate
	next.ReferenceNumber = NextReference(existingRefs)
	unlocked := false
	next.IsLocked = &unlocked

	// The Medi-Life shortcut always pairs MEDICAL with LIFE.
	if next.HasType(models.TypeMedical) && !next.HasType(models.TypeLife) {
		next.Types = append(next.Types, models.TypeLife)
	}

	events := []AuditEvent{{
		Action:  models.ActionCreateQRF,
		Details: fmt.Sprintf("Created new eQRF: %s", next.ReferenceNumber),
	}}
	return next, events, nil
}

func applyUpdate(prev, candidate models.QRF, now time.Time) (models.QRF, []AuditEvent, error) {
	if !transitionAllowed(prev.Status, candidate.Status) {
		return models.QRF{}, nil, &IllegalTransitionError{From: prev.Status, To: candidate.Status}
	}

	next := candidate
	var events []AuditEvent

	// Identity and ownership never change after creation.
	next.ReferenceNumber = prev.ReferenceNumber
	next.AgentID = prev.AgentID
	next.AgentName = prev.AgentName
	next.CreatedAt = prev.CreatedAt

	// Assignment delta
	switch {
	case prev.AssignedToID == "" && next.AssignedToID != "":
		next.AssignedAt = &now
		next.UnassignedBy = ""
		next.UnassignedAt = nil
		next.PreviousAssignedToName = ""
		events = append(events, AuditEvent{
			Action:  models.ActionAssignUW,
			Details: fmt.Sprintf("Assigned %s to %s", next.ReferenceNumber, next.AssignedToName),
		})
	case prev.AssignedToID != "" && next.AssignedToID != "" && prev.AssignedToID != next.AssignedToID:
		next.AssignedAt = &now
		next.UnassignedBy = ""
		next.UnassignedAt = nil
		next.PreviousAssignedToName = ""
		events = append(events, AuditEvent{
			Action:  models.ActionReassignUW,
			Details: fmt.Sprintf("Re-assigned %s from %s to %s", next.ReferenceNumber, prev.AssignedToName, next.AssignedToName),
		})
	default:
		next.AssignedAt = prev.AssignedAt
	}

	// Status delta
	decided := (next.Status == models.StatusApproved || next.Status == models.StatusRejected) && prev.Status != next.Status
	resubmitted := next.Status == models.StatusSubmitted && prev.Status != models.StatusSubmitted

	switch {
	case decided:
		next.DecidedAt = &now
		next.History = prev.History
		if next.SubmittedAt == nil {
			next.SubmittedAt = prev.SubmittedAt
		}
		unlocked := false
		next.IsLocked = &unlocked
		action := models.ActionApproveQRF
		if next.Status == models.StatusRejected {
			action = models.ActionRejectQRF
		}
		events = append(events, AuditEvent{
			Action:  action,
			Details: fmt.Sprintf("%s %s", action, next.ReferenceNumber),
		})
	case resubmitted:
		next.DecidedAt = nil
		next.RejectionReason = ""
		next.RejectionNote = ""
		if next.SubmittedAt == nil {
			next.SubmittedAt = &now
		}
		events = append(events, AuditEvent{
			Action:  models.ActionSubmitQRF,
			Details: fmt.Sprintf("Submitted %s for review", next.ReferenceNumber),
		})
		// Moving forward out of REJECTED closes a cycle; preserve it.
		next.History = prev.History
		if prev.Status == models.StatusRejected {
			next.History = append(append([]models.QRFHistoryItem{}, prev.History...), models.QRFHistoryItem{
				Status:          models.StatusRejected,
				SubmittedAt:     prev.SubmittedAt,
				DecidedAt:       prev.DecidedAt,
				AssignedToName:  prev.AssignedToName,
				AssignedAt:      prev.AssignedAt,
				RejectionReason: prev.RejectionReason,
			})
		}
	default:
		next.DecidedAt = prev.DecidedAt
		next.History = prev.History
		if next.SubmittedAt == nil {
			next.SubmittedAt = prev.SubmittedAt
		}
	}

	if next.IsLocked == nil {
		next.IsLocked = prev.IsLocked
	}

	return next, events, nil
}
