// controllers/qrf_controller.go
package controllers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/gig-portal/eqrf_backend/lifecycle"
	"github.com/gig-portal/eqrf_backend/middleware"
	"github.com/gig-portal/eqrf_backend/models"
	"github.com/gig-portal/eqrf_backend/repositories"
	"github.com/gig-portal/eqrf_backend/utils"
	"github.com/gig-portal/eqrf_backend/websocket"
)

// QRFView is a QRF plus the per-viewer metadata the dashboards render.
type QRFView struct {
	models.QRF
	TatDays  int                `json:"tatDays"`
	Actions  []lifecycle.Action `json:"actions"`
	ReadOnly bool               `json:"readOnly"`
}

type QRFController struct {
	qrfs  repositories.QRFStore
	users repositories.UserStore
	logs  repositories.LogStore
	hub   *websocket.Hub
}

func NewQRFController(qrfs repositories.QRFStore, users repositories.UserStore, logs repositories.LogStore, hub *websocket.Hub) *QRFController {
	return &QRFController{qrfs: qrfs, users: users, logs: logs, hub: hub}
}

func (qc *QRFController) caller(ctx context.Context, c echo.Context) (*models.User, error) {
	return qc.users.FindByID(ctx, middleware.GetUserIDFromToken(c))
}

// canView mirrors list scoping for single-record reads.
func canView(user models.User, qrf models.QRF) bool {
	switch user.Role {
	case models.RoleSuperAdmin, models.RoleAdmin, models.RoleUWAdmin:
		return true
	default:
		return lifecycle.IsOwner(user, qrf) || qrf.AssignedToID == user.ID.Hex()
	}
}

func (qc *QRFController) view(user models.User, qrf models.QRF, now time.Time) QRFView {
	return QRFView{
		QRF:      qrf,
		TatDays:  lifecycle.TatForQRF(qrf, now),
		Actions:  lifecycle.VisibleActions(user, qrf),
		ReadOnly: lifecycle.IsReadOnly(user, qrf),
	}
}

// ListQRFs returns the QRFs the caller is entitled to see. Admin roles see the
// whole book; agents and underwriters only their own desk.
func (qc *QRFController) ListQRFs(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user, err := qc.caller(ctx, c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "User not found",
		})
	}

	filterID := ""
	switch user.Role {
	case models.RoleSuperAdmin, models.RoleAdmin, models.RoleUWAdmin:
		if c.QueryParam("mine") == "true" {
			filterID = user.ID.Hex()
		}
	default:
		filterID = user.ID.Hex()
	}

	qrfs, err := qc.qrfs.FetchAllQRFs(ctx, filterID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve QRFs",
		})
	}

	now := time.Now()
	views := make([]QRFView, 0, len(qrfs))
	for _, qrf := range qrfs {
		views = append(views, qc.view(*user, qrf, now))
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "QRFs retrieved successfully",
		Data:    views,
	})
}

// GetQRF returns a single QRF with the caller's metadata.
func (qc *QRFController) GetQRF(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user, err := qc.caller(ctx, c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "User not found",
		})
	}

	qrf, err := qc.qrfs.FetchQRF(ctx, c.Param("id"))
	if err != nil {
		return qrfNotFound(c, err)
	}

	if !canView(*user, *qrf) {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "You do not have access to this QRF",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "QRF retrieved successfully",
		Data:    qc.view(*user, *qrf, time.Now()),
	})
}

// CreateQRF creates a new quote request owned by the caller. The record may
// start as DRAFT or go straight to SUBMITTED.
func (qc *QRFController) CreateQRF(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user, err := qc.caller(ctx, c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "User not found",
		})
	}

	var candidate models.QRF
	if err := c.Bind(&candidate); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	now := time.Now()
	if candidate.ID == "" {
		candidate.ID = uuid.New().String()
	}
	candidate.AgentID = user.ID.Hex()
	candidate.AgentName = user.FullName
	candidate.CreatedAt = now
	if candidate.Status == "" {
		candidate.Status = models.StatusDraft
	}
	if candidate.Status == models.StatusSubmitted {
		if err := lifecycle.ValidateSubmission(candidate); err != nil {
			return validationFailed(c, err)
		}
		candidate.SubmittedAt = &now
	}

	refs, err := qc.qrfs.ExistingReferenceNumbers(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to allocate reference number",
		})
	}

	next, events, err := lifecycle.ApplyTransition(nil, candidate, refs, now)
	if err != nil {
		return transitionFailed(c, err)
	}
	if next.Status == models.StatusSubmitted {
		events = append(events, lifecycle.AuditEvent{
			Action:  models.ActionSubmitQRF,
			Details: "Submitted " + next.ReferenceNumber + " for review",
		})
	}

	saved, err := qc.qrfs.PersistQRF(ctx, next)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to save QRF",
		})
	}

	qc.appendEvents(ctx, c, *user, events)

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "QRF created successfully",
		Data:    qc.view(*user, saved, now),
	})
}

// SaveQRF handles form edits and owner submissions on an existing record.
// Assignment and decision changes have their own endpoints and are rejected
// here.
func (qc *QRFController) SaveQRF(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user, err := qc.caller(ctx, c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "User not found",
		})
	}

	prev, err := qc.qrfs.FetchQRF(ctx, c.Param("id"))
	if err != nil {
		return qrfNotFound(c, err)
	}

	var candidate models.QRF
	if err := c.Bind(&candidate); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	candidate.ID = prev.ID

	if !lifecycle.CanEdit(*user, *prev) {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "This QRF is read-only for you",
		})
	}

	// Workflow fields never travel through the generic save.
	candidate.AssignedToID = prev.AssignedToID
	candidate.AssignedToName = prev.AssignedToName
	candidate.UnassignedBy = prev.UnassignedBy
	candidate.UnassignedAt = prev.UnassignedAt
	candidate.PreviousAssignedToName = prev.PreviousAssignedToName
	candidate.IsLocked = prev.IsLocked
	candidate.RejectionReason = prev.RejectionReason
	candidate.RejectionNote = prev.RejectionNote

	// A same-status save of a decided record is an edit, not a decision.
	decisionChange := candidate.Status != prev.Status &&
		(candidate.Status == models.StatusApproved || candidate.Status == models.StatusRejected)
	if decisionChange {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Decisions must go through the approve or reject endpoints",
		})
	}

	submitting := candidate.Status == models.StatusSubmitted && prev.Status != models.StatusSubmitted
	if submitting {
		if !lifecycle.HasAction(*user, *prev, lifecycle.ActionSubmit) {
			return c.JSON(http.StatusForbidden, models.Response{
				Status:  http.StatusForbidden,
				Message: "Only the owner may submit this QRF",
			})
		}
		if err := lifecycle.ValidateSubmission(candidate); err != nil {
			return validationFailed(c, err)
		}
	}

	now := time.Now()
	next, events, err := lifecycle.ApplyTransition(prev, candidate, nil, now)
	if err != nil {
		return transitionFailed(c, err)
	}

	saved, err := qc.qrfs.PersistQRF(ctx, next)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to save QRF",
		})
	}

	qc.appendEvents(ctx, c, *user, events)

	if submitting && saved.AssignedToID != "" {
		if err := qc.hub.NotifyQRFSubmitted(saved.AssignedToID, saved.ReferenceNumber, saved.ID); err != nil {
			log.Printf("WebSocket notify failed for %s: %v", saved.ReferenceNumber, err)
		}
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "QRF saved successfully",
		Data:    qc.view(*user, saved, now),
	})
}

// AssignUnderwriter assigns or re-assigns the QRF. Restricted to assignment
// authority by the route.
func (qc *QRFController) AssignUnderwriter(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user, err := qc.caller(ctx, c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "User not found",
		})
	}

	prev, err := qc.qrfs.FetchQRF(ctx, c.Param("id"))
	if err != nil {
		return qrfNotFound(c, err)
	}

	var req models.AssignRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "underwriterId is required",
		})
	}

	wanted := lifecycle.ActionAssign
	if prev.AssignedToID != "" {
		wanted = lifecycle.ActionReassign
	}
	if !lifecycle.HasAction(*user, *prev, wanted) {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "This QRF cannot be assigned right now",
		})
	}

	underwriter, err := qc.users.FindByID(ctx, req.UnderwriterID)
	if err != nil || !underwriter.IsUnderwritingSide() || !underwriter.IsActive {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Underwriter not found",
		})
	}

	candidate := *prev
	candidate.AssignedToID = underwriter.ID.Hex()
	candidate.AssignedToName = underwriter.FullName

	now := time.Now()
	next, events, err := lifecycle.ApplyTransition(prev, candidate, nil, now)
	if err != nil {
		return transitionFailed(c, err)
	}

	saved, err := qc.qrfs.PersistQRF(ctx, next)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to save QRF",
		})
	}

	qc.appendEvents(ctx, c, *user, events)

	if err := qc.hub.NotifyQRFAssigned(saved.AssignedToID, saved.ReferenceNumber, saved.ID); err != nil {
		log.Printf("WebSocket notify failed for %s: %v", saved.ReferenceNumber, err)
	}
	go utils.NotifyAssignment(*underwriter, saved, user.FullName)

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "QRF assigned successfully",
		Data:    qc.view(*user, saved, now),
	})
}

// UnassignUnderwriter clears the assignment, keeping a trace of who removed
// whom.
func (qc *QRFController) UnassignUnderwriter(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user, err := qc.caller(ctx, c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "User not found",
		})
	}

	prev, err := qc.qrfs.FetchQRF(ctx, c.Param("id"))
	if err != nil {
		return qrfNotFound(c, err)
	}

	if !lifecycle.HasAction(*user, *prev, lifecycle.ActionUnassign) {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "This QRF cannot be unassigned right now",
		})
	}

	now := time.Now()
	candidate := *prev
	candidate.AssignedToID = ""
	candidate.AssignedToName = ""
	candidate.UnassignedBy = user.FullName
	candidate.UnassignedAt = &now
	candidate.PreviousAssignedToName = prev.AssignedToName

	next, events, err := lifecycle.ApplyTransition(prev, candidate, nil, now)
	if err != nil {
		return transitionFailed(c, err)
	}
	events = append(events, lifecycle.AuditEvent{
		Action:  models.ActionUnassignUW,
		Details: "Unassigned " + prev.AssignedToName + " from " + prev.ReferenceNumber,
	})

	saved, err := qc.qrfs.PersistQRF(ctx, next)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to save QRF",
		})
	}

	qc.appendEvents(ctx, c, *user, events)

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "QRF unassigned successfully",
		Data:    qc.view(*user, saved, now),
	})
}

// ApproveQRF records the underwriter's approval. Terminal.
func (qc *QRFController) ApproveQRF(c echo.Context) error {
	return qc.decide(c, models.StatusApproved)
}

// RejectQRF sends the QRF back to the agent with a reason.
func (qc *QRFController) RejectQRF(c echo.Context) error {
	return qc.decide(c, models.StatusRejected)
}

func (qc *QRFController) decide(c echo.Context, status string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user, err := qc.caller(ctx, c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "User not found",
		})
	}

	prev, err := qc.qrfs.FetchQRF(ctx, c.Param("id"))
	if err != nil {
		return qrfNotFound(c, err)
	}

	wanted := lifecycle.ActionApprove
	if status == models.StatusRejected {
		wanted = lifecycle.ActionReject
	}
	if !lifecycle.HasAction(*user, *prev, wanted) {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "Only the assigned underwriter may decide a submitted QRF",
		})
	}

	candidate := *prev
	candidate.Status = status

	if status == models.StatusApproved {
		if err := lifecycle.ValidateApproval(*prev); err != nil {
			return validationFailed(c, err)
		}
	} else {
		var req models.RejectRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid request body",
			})
		}
		if err := lifecycle.ValidateRejectionReason(req.Reason); err != nil {
			return validationFailed(c, err)
		}
		candidate.RejectionReason = req.Reason
		candidate.RejectionNote = req.Note
	}

	now := time.Now()
	next, events, err := lifecycle.ApplyTransition(prev, candidate, nil, now)
	if err != nil {
		return transitionFailed(c, err)
	}

	saved, err := qc.qrfs.PersistQRF(ctx, next)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to save QRF",
		})
	}

	qc.appendEvents(ctx, c, *user, events)

	if err := qc.hub.NotifyQRFDecided(saved.AgentID, saved.ReferenceNumber, saved.Status, saved.ID); err != nil {
		log.Printf("WebSocket notify failed for %s: %v", saved.ReferenceNumber, err)
	}
	if agent, err := qc.users.FindByID(ctx, saved.AgentID); err == nil {
		go utils.NotifyDecision(*agent, saved)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "QRF " + saved.Status,
		Data:    qc.view(*user, saved, now),
	})
}

// LockQRF sets the advisory review lock while the underwriter works the
// record.
func (qc *QRFController) LockQRF(c echo.Context) error {
	return qc.setLock(c, true)
}

// UnlockQRF releases the lock so the record can be re-assigned.
func (qc *QRFController) UnlockQRF(c echo.Context) error {
	return qc.setLock(c, false)
}

func (qc *QRFController) setLock(c echo.Context, locked bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user, err := qc.caller(ctx, c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "User not found",
		})
	}

	prev, err := qc.qrfs.FetchQRF(ctx, c.Param("id"))
	if err != nil {
		return qrfNotFound(c, err)
	}

	if locked {
		// Only the underwriter working the record locks it.
		if !lifecycle.IsAssignedUnderwriter(*user, *prev) || prev.Status != models.StatusSubmitted {
			return c.JSON(http.StatusForbidden, models.Response{
				Status:  http.StatusForbidden,
				Message: "Only the assigned underwriter may lock a submitted QRF",
			})
		}
	} else if !lifecycle.HasAction(*user, *prev, lifecycle.ActionUnlock) {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "This QRF cannot be unlocked right now",
		})
	}

	now := time.Now()
	candidate := *prev
	candidate.IsLocked = &locked

	next, events, err := lifecycle.ApplyTransition(prev, candidate, nil, now)
	if err != nil {
		return transitionFailed(c, err)
	}
	if !locked {
		events = append(events, lifecycle.AuditEvent{
			Action:  models.ActionUnlockQRF,
			Details: "Unlocked " + prev.ReferenceNumber + " for re-assignment",
		})
	}

	saved, err := qc.qrfs.PersistQRF(ctx, next)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to save QRF",
		})
	}

	qc.appendEvents(ctx, c, *user, events)

	message := "QRF locked"
	if !locked {
		message = "QRF unlocked"
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: message,
		Data:    qc.view(*user, saved, now),
	})
}

// NotificationsCount returns the caller's badge counter. Agents count their
// open requests, underwriters count submissions waiting on them.
func (qc *QRFController) NotificationsCount(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user, err := qc.caller(ctx, c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "User not found",
		})
	}

	var count int64
	switch {
	case user.Role == models.RoleAgent:
		count, err = qc.qrfs.CountActiveForAgent(ctx, user.ID.Hex())
	case user.IsUnderwritingSide():
		count, err = qc.qrfs.CountAssignedSubmitted(ctx, user.ID.Hex())
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to count notifications",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Notification count retrieved",
		Data:    map[string]int64{"count": count},
	})
}

func (qc *QRFController) appendEvents(ctx context.Context, c echo.Context, user models.User, events []lifecycle.AuditEvent) {
	for _, event := range events {
		entry := models.SystemLog{
			Timestamp: time.Now(),
			UserID:    user.ID.Hex(),
			UserName:  user.FullName,
			UserRole:  user.Role,
			Action:    event.Action,
			Details:   event.Details,
			IPAddress: c.RealIP(),
		}
		if err := qc.logs.Append(ctx, entry); err != nil {
			log.Printf("Failed to append audit log: %v", err)
		}
	}
}

func qrfNotFound(c echo.Context, err error) error {
	if err == repositories.ErrNotFound {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "QRF not found",
		})
	}
	return c.JSON(http.StatusInternalServerError, models.Response{
		Status:  http.StatusInternalServerError,
		Message: "Failed to retrieve QRF",
	})
}

func validationFailed(c echo.Context, err error) error {
	if verr, ok := err.(*lifecycle.ValidationError); ok {
		return c.JSON(http.StatusUnprocessableEntity, models.Response{
			Status:  http.StatusUnprocessableEntity,
			Message: "Validation failed",
			Data:    verr.Fields,
		})
	}
	return c.JSON(http.StatusUnprocessableEntity, models.Response{
		Status:  http.StatusUnprocessableEntity,
		Message: err.Error(),
	})
}

func transitionFailed(c echo.Context, err error) error {
	if terr, ok := err.(*lifecycle.IllegalTransitionError); ok {
		return c.JSON(http.StatusConflict, models.Response{
			Status:  http.StatusConflict,
			Message: terr.Error(),
		})
	}
	return c.JSON(http.StatusInternalServerError, models.Response{
		Status:  http.StatusInternalServerError,
		Message: "Failed to apply change",
	})
}
