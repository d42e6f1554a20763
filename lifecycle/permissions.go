// lifecycle/permissions.go
package lifecycle

import "github.com/gig-portal/eqrf_backend/models"

// Action is a workflow operation a user may be offered on a QRF.
type Action string

const (
	ActionEdit     Action = "EDIT"
	ActionSubmit   Action = "SUBMIT"
	ActionAssign   Action = "ASSIGN"
	ActionReassign Action = "REASSIGN"
	ActionUnassign Action = "UNASSIGN"
	ActionApprove  Action = "APPROVE"
	ActionReject   Action = "REJECT"
	ActionUnlock   Action = "UNLOCK"
)

// IsOwner reports whether the user created the QRF.
func IsOwner(user models.User, qrf models.QRF) bool {
	return qrf.AgentID == user.ID.Hex()
}

// IsAssignedUnderwriter reports whether the user is the underwriter currently
// responsible for the QRF.
func IsAssignedUnderwriter(user models.User, qrf models.QRF) bool {
	return user.IsUnderwritingSide() && qrf.AssignedToID != "" && qrf.AssignedToID == user.ID.Hex()
}

// CanEdit is the single source of truth for edit rights, checked before every
// write regardless of what any screen shows.
//
// Owner may edit while DRAFT or REJECTED; the assigned underwriter may edit
// while SUBMITTED; nobody edits an APPROVED record.
func CanEdit(user models.User, qrf models.QRF) bool {
	if qrf.Status == models.StatusApproved {
		return false
	}
	if IsOwner(user, qrf) && (qrf.Status == models.StatusDraft || qrf.Status == models.StatusRejected) {
		return true
	}
	return IsAssignedUnderwriter(user, qrf) && qrf.Status == models.StatusSubmitted
}

// IsReadOnly is the complement of CanEdit.
func IsReadOnly(user models.User, qrf models.QRF) bool {
	return !CanEdit(user, qrf)
}

// VisibleActions returns the workflow actions the user should be offered for
// the QRF in its current state.
func VisibleActions(user models.User, qrf models.QRF) []Action {
	var actions []Action

	if CanEdit(user, qrf) {
		actions = append(actions, ActionEdit)
	}
	if IsOwner(user, qrf) && (qrf.Status == models.StatusDraft || qrf.Status == models.StatusRejected) {
		actions = append(actions, ActionSubmit)
	}

	if user.HasAssignmentAuthority() && !qrf.IsTerminal() && !qrf.Locked() {
		if qrf.AssignedToID == "" {
			actions = append(actions, ActionAssign)
		} else {
			actions = append(actions, ActionReassign, ActionUnassign)
		}
	}

	if IsAssignedUnderwriter(user, qrf) && qrf.Status == models.StatusSubmitted {
		actions = append(actions, ActionApprove, ActionReject)
	}

	if qrf.Locked() && qrf.Status == models.StatusSubmitted &&
		(IsOwner(user, qrf) || IsAssignedUnderwriter(user, qrf)) {
		actions = append(actions, ActionUnlock)
	}

	return actions
}

// HasAction reports whether the action is offered to the user for the QRF.
func HasAction(user models.User, qrf models.QRF, action Action) bool {
	for _, a := range VisibleActions(user, qrf) {
		if a == action {
			return true
		}
	}
	return false
}
