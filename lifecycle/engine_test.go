package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gig-portal/eqrf_backend/models"
)

func timeAt(day int) time.Time {
	return time.Date(2024, 3, day, 10, 0, 0, 0, time.UTC)
}

func draftQRF() models.QRF {
	return models.QRF{
		ID:        "q1",
		Name:      "Acme Group Medical",
		Types:     []string{models.TypeMedical, models.TypeLife},
		AgentID:   "agent-1",
		AgentName: "Alice Agent",
		Status:    models.StatusDraft,
		CreatedAt: timeAt(1),
		Data: models.QRFData{
			AccountName: "Acme Corp",
			Attachments: []models.Attachment{{ID: "a1", Name: "census.xlsx"}},
		},
	}
}

func TestCreateAssignsReferenceAndUnlocks(t *testing.T) {
	next, events, err := ApplyTransition(nil, draftQRF(), []string{"00001", "00002"}, timeAt(1))
	require.NoError(t, err)
	require.Equal(t, "00003", next.ReferenceNumber)
	require.NotNil(t, next.IsLocked)
	require.False(t, *next.IsLocked)
	require.Len(t, events, 1)
	require.Equal(t, models.ActionCreateQRF, events[0].Action)
	require.Contains(t, events[0].Details, "00003")
}

func TestCreatePairsMedicalWithLife(t *testing.T) {
	q := draftQRF()
	q.Types = []string{models.TypeMedical}
	next, _, err := ApplyTransition(nil, q, nil, timeAt(1))
	require.NoError(t, err)
	require.True(t, next.HasType(models.TypeLife))
}

func TestCreateRejectsDecidedStatus(t *testing.T) {
	q := draftQRF()
	q.Status = models.StatusApproved
	_, _, err := ApplyTransition(nil, q, nil, timeAt(1))
	var ite *IllegalTransitionError
	require.ErrorAs(t, err, &ite)
}

func TestReferenceNumberImmutable(t *testing.T) {
	prev := draftQRF()
	prev.ReferenceNumber = "00042"

	candidate := prev
	candidate.ReferenceNumber = "99999" // caller tampering is ignored
	next, _, err := ApplyTransition(&prev, candidate, nil, timeAt(2))
	require.NoError(t, err)
	require.Equal(t, "00042", next.ReferenceNumber)

	// Survives any number of subsequent saves.
	for day := 3; day < 8; day++ {
		candidate = next
		candidate.ReferenceNumber = ""
		next, _, err = ApplyTransition(&next, candidate, nil, timeAt(day))
		require.NoError(t, err)
		require.Equal(t, "00042", next.ReferenceNumber)
	}
}

func TestAssignmentTimestamps(t *testing.T) {
	prev := draftQRF()
	prev.ReferenceNumber = "00042"
	prev.Status = models.StatusSubmitted
	sub := timeAt(2)
	prev.SubmittedAt = &sub

	// First assignment stamps assignedAt and emits the assign event.
	candidate := prev
	candidate.AssignedToID = "uw-1"
	candidate.AssignedToName = "Omar UW"
	next, events, err := ApplyTransition(&prev, candidate, nil, timeAt(3))
	require.NoError(t, err)
	require.Equal(t, timeAt(3), *next.AssignedAt)
	require.Len(t, events, 1)
	require.Equal(t, models.ActionAssignUW, events[0].Action)

	// Saving again with the same assignee leaves assignedAt untouched,
	// even when the candidate omits it.
	candidate = next
	candidate.AssignedAt = nil
	again, events, err := ApplyTransition(&next, candidate, nil, timeAt(5))
	require.NoError(t, err)
	require.Equal(t, timeAt(3), *again.AssignedAt)
	require.Empty(t, events)

	// A different assignee refreshes it and emits the re-assign event.
	candidate = again
	candidate.AssignedToID = "uw-2"
	candidate.AssignedToName = "Nadia UW"
	final, events, err := ApplyTransition(&again, candidate, nil, timeAt(6))
	require.NoError(t, err)
	require.Equal(t, timeAt(6), *final.AssignedAt)
	require.Len(t, events, 1)
	require.Equal(t, models.ActionReassignUW, events[0].Action)
	require.Contains(t, events[0].Details, "Omar UW")
	require.Contains(t, events[0].Details, "Nadia UW")
}

func TestAssignmentClearsUnassignTrace(t *testing.T) {
	prev := draftQRF()
	prev.Status = models.StatusSubmitted
	sub := timeAt(2)
	prev.SubmittedAt = &sub
	ua := timeAt(4)
	prev.UnassignedBy = "Super Admin"
	prev.UnassignedAt = &ua
	prev.PreviousAssignedToName = "Omar UW"

	candidate := prev
	candidate.AssignedToID = "uw-2"
	candidate.AssignedToName = "Nadia UW"
	next, _, err := ApplyTransition(&prev, candidate, nil, timeAt(5))
	require.NoError(t, err)
	require.Empty(t, next.UnassignedBy)
	require.Nil(t, next.UnassignedAt)
	require.Empty(t, next.PreviousAssignedToName)
}

func TestRejectionThenResubmissionAppendsHistory(t *testing.T) {
	t1 := timeAt(2)
	t2 := timeAt(4)
	t3 := timeAt(6)

	prev := draftQRF()
	prev.ReferenceNumber = "00042"
	prev.Status = models.StatusRejected
	prev.SubmittedAt = &t1
	prev.DecidedAt = &t2
	prev.AssignedToID = "uw-1"
	prev.AssignedToName = "Omar UW"
	prev.RejectionReason = "Missing data"

	candidate := prev
	candidate.Status = models.StatusSubmitted
	candidate.SubmittedAt = &t3
	next, events, err := ApplyTransition(&prev, candidate, nil, t3)
	require.NoError(t, err)

	require.Len(t, next.History, 1)
	cycle := next.History[0]
	require.Equal(t, models.StatusRejected, cycle.Status)
	require.Equal(t, t1, *cycle.SubmittedAt)
	require.Equal(t, t2, *cycle.DecidedAt)
	require.Equal(t, "Missing data", cycle.RejectionReason)
	require.Equal(t, "Omar UW", cycle.AssignedToName)

	require.Equal(t, t3, *next.SubmittedAt)
	require.Nil(t, next.DecidedAt)
	require.Empty(t, next.RejectionReason)
	require.Empty(t, next.RejectionNote)

	require.Len(t, events, 1)
	require.Equal(t, models.ActionSubmitQRF, events[0].Action)
}

func TestNoOpSaveCarriesEverythingForward(t *testing.T) {
	t1 := timeAt(2)
	t2 := timeAt(3)
	prev := draftQRF()
	prev.ReferenceNumber = "00042"
	prev.Status = models.StatusSubmitted
	prev.SubmittedAt = &t1
	prev.AssignedToID = "uw-1"
	prev.AssignedToName = "Omar UW"
	prev.AssignedAt = &t2
	prev.History = []models.QRFHistoryItem{{Status: models.StatusRejected}}
	locked := true
	prev.IsLocked = &locked

	candidate := prev
	candidate.AssignedAt = nil
	candidate.DecidedAt = nil
	candidate.History = nil
	candidate.IsLocked = nil
	candidate.Data.AdditionalNotes = "touched a note"

	next, events, err := ApplyTransition(&prev, candidate, nil, timeAt(9))
	require.NoError(t, err)
	require.Empty(t, events)
	require.Equal(t, prev.AssignedAt, next.AssignedAt)
	require.Equal(t, prev.DecidedAt, next.DecidedAt)
	require.Equal(t, prev.History, next.History)
	require.Equal(t, prev.SubmittedAt, next.SubmittedAt)
	require.True(t, next.Locked())
}

func TestDecisionStampsAndUnlocks(t *testing.T) {
	t1 := timeAt(2)
	prev := draftQRF()
	prev.ReferenceNumber = "00042"
	prev.Status = models.StatusSubmitted
	prev.SubmittedAt = &t1
	prev.AssignedToID = "uw-1"
	locked := true
	prev.IsLocked = &locked

	candidate := prev
	candidate.Status = models.StatusApproved
	next, events, err := ApplyTransition(&prev, candidate, nil, timeAt(5))
	require.NoError(t, err)
	require.Equal(t, timeAt(5), *next.DecidedAt)
	require.False(t, next.Locked())
	require.Equal(t, t1, *next.SubmittedAt)
	require.Len(t, events, 1)
	require.Equal(t, models.ActionApproveQRF, events[0].Action)
}

func TestIllegalTransitions(t *testing.T) {
	cases := []struct{ from, to string }{
		{models.StatusApproved, models.StatusSubmitted},
		{models.StatusApproved, models.StatusRejected},
		{models.StatusApproved, models.StatusDraft},
		{models.StatusDraft, models.StatusApproved},
		{models.StatusDraft, models.StatusRejected},
		{models.StatusSubmitted, models.StatusDraft},
		{models.StatusRejected, models.StatusApproved},
		{models.StatusRejected, models.StatusDraft},
	}
	for _, tc := range cases {
		prev := draftQRF()
		prev.Status = tc.from
		candidate := prev
		candidate.Status = tc.to
		_, _, err := ApplyTransition(&prev, candidate, nil, timeAt(2))
		var ite *IllegalTransitionError
		require.ErrorAs(t, err, &ite, "%s -> %s must be rejected", tc.from, tc.to)
	}
}

// Full workflow end to end: create, submit, assign, reject,
// resubmit, re-assign, approve. Verifies both the final state and the exact
// audit event sequence.
func TestFullWorkflowTrace(t *testing.T) {
	var trail []AuditEvent
	record := func(events []AuditEvent) {
		trail = append(trail, events...)
	}

	// Agent creates a draft.
	created, events, err := ApplyTransition(nil, draftQRF(), nil, timeAt(1))
	require.NoError(t, err)
	record(events)

	// Agent submits at T1.
	t1 := timeAt(2)
	candidate := created
	candidate.Status = models.StatusSubmitted
	candidate.SubmittedAt = &t1
	submitted, events, err := ApplyTransition(&created, candidate, nil, t1)
	require.NoError(t, err)
	record(events)

	// Admin assigns underwriter A at T2.
	t2 := timeAt(3)
	candidate = submitted
	candidate.AssignedToID = "uw-a"
	candidate.AssignedToName = "Underwriter A"
	assigned, events, err := ApplyTransition(&submitted, candidate, nil, t2)
	require.NoError(t, err)
	record(events)
	require.Equal(t, t2, *assigned.AssignedAt)

	// Underwriter A rejects at T3.
	t3 := timeAt(4)
	candidate = assigned
	candidate.Status = models.StatusRejected
	candidate.RejectionReason = "Wrong Data"
	rejected, events, err := ApplyTransition(&assigned, candidate, nil, t3)
	require.NoError(t, err)
	record(events)
	require.Equal(t, t3, *rejected.DecidedAt)

	// Agent fixes and resubmits at T4.
	t4 := timeAt(5)
	candidate = rejected
	candidate.Status = models.StatusSubmitted
	candidate.SubmittedAt = &t4
	resubmitted, events, err := ApplyTransition(&rejected, candidate, nil, t4)
	require.NoError(t, err)
	record(events)
	require.Len(t, resubmitted.History, 1)
	require.Equal(t, t1, *resubmitted.History[0].SubmittedAt)
	require.Equal(t, t3, *resubmitted.History[0].DecidedAt)
	require.Equal(t, "Wrong Data", resubmitted.History[0].RejectionReason)

	// Admin re-assigns underwriter B at T5.
	t5 := timeAt(6)
	candidate = resubmitted
	candidate.AssignedToID = "uw-b"
	candidate.AssignedToName = "Underwriter B"
	reassigned, events, err := ApplyTransition(&resubmitted, candidate, nil, t5)
	require.NoError(t, err)
	record(events)
	require.Equal(t, t5, *reassigned.AssignedAt)

	// Underwriter B approves at T6 with a proposal present.
	t6 := timeAt(7)
	candidate = reassigned
	candidate.Status = models.StatusApproved
	candidate.Data.ProposalAttachments = []models.Attachment{{ID: "p1", Name: "proposal.pdf"}}
	require.NoError(t, ValidateApproval(candidate))
	approved, events, err := ApplyTransition(&reassigned, candidate, nil, t6)
	require.NoError(t, err)
	record(events)

	require.Equal(t, models.StatusApproved, approved.Status)
	require.Equal(t, t6, *approved.DecidedAt)
	require.False(t, approved.Locked())
	require.Len(t, approved.History, 1)

	actions := make([]string, len(trail))
	for i, e := range trail {
		actions[i] = e.Action
	}
	require.Equal(t, []string{
		models.ActionCreateQRF,
		models.ActionSubmitQRF,
		models.ActionAssignUW,
		models.ActionRejectQRF,
		models.ActionSubmitQRF,
		models.ActionReassignUW,
		models.ActionApproveQRF,
	}, actions)
}
