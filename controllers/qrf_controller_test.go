// controllers/qrf_controller_test.go
package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/gig-portal/eqrf_backend/models"
	"github.com/gig-portal/eqrf_backend/repositories"
	"github.com/gig-portal/eqrf_backend/websocket"
)

type testValidator struct {
	validator *validator.Validate
}

func (tv *testValidator) Validate(i interface{}) error {
	return tv.validator.Struct(i)
}

type fakeQRFStore struct {
	qrfs map[string]models.QRF
}

func newFakeQRFStore() *fakeQRFStore {
	return &fakeQRFStore{qrfs: make(map[string]models.QRF)}
}

func (f *fakeQRFStore) FetchQRF(_ context.Context, id string) (*models.QRF, error) {
	qrf, ok := f.qrfs[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &qrf, nil
}

func (f *fakeQRFStore) FetchAllQRFs(_ context.Context, filterUserID string) ([]models.QRF, error) {
	var out []models.QRF
	for _, qrf := range f.qrfs {
		if filterUserID == "" || qrf.AgentID == filterUserID || qrf.AssignedToID == filterUserID {
			out = append(out, qrf)
		}
	}
	return out, nil
}

func (f *fakeQRFStore) PersistQRF(_ context.Context, qrf models.QRF) (models.QRF, error) {
	f.qrfs[qrf.ID] = qrf
	return qrf, nil
}

func (f *fakeQRFStore) ExistingReferenceNumbers(_ context.Context) ([]string, error) {
	var refs []string
	for _, qrf := range f.qrfs {
		refs = append(refs, qrf.ReferenceNumber)
	}
	return refs, nil
}

func (f *fakeQRFStore) CountActiveForAgent(_ context.Context, agentID string) (int64, error) {
	var count int64
	for _, qrf := range f.qrfs {
		if qrf.AgentID == agentID && qrf.Status != models.StatusApproved {
			count++
		}
	}
	return count, nil
}

func (f *fakeQRFStore) CountAssignedSubmitted(_ context.Context, underwriterID string) (int64, error) {
	var count int64
	for _, qrf := range f.qrfs {
		if qrf.AssignedToID == underwriterID && qrf.Status == models.StatusSubmitted {
			count++
		}
	}
	return count, nil
}

type fakeUserStore struct {
	users map[string]models.User
}

func newFakeUserStore(users ...models.User) *fakeUserStore {
	f := &fakeUserStore{users: make(map[string]models.User)}
	for _, u := range users {
		f.users[u.ID.Hex()] = u
	}
	return f
}

func (f *fakeUserStore) FindByID(_ context.Context, id string) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &user, nil
}

func (f *fakeUserStore) FindByUsername(_ context.Context, username string) (*models.User, error) {
	for _, user := range f.users {
		if user.Username == username {
			return &user, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeUserStore) ListByRoles(_ context.Context, roles ...string) ([]models.User, error) {
	var out []models.User
	for _, user := range f.users {
		if len(roles) == 0 {
			out = append(out, user)
			continue
		}
		for _, role := range roles {
			if user.Role == role {
				out = append(out, user)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeUserStore) Create(_ context.Context, user models.User) (models.User, error) {
	f.users[user.ID.Hex()] = user
	return user, nil
}

func (f *fakeUserStore) Update(_ context.Context, user models.User) error {
	f.users[user.ID.Hex()] = user
	return nil
}

func (f *fakeUserStore) UpdateLastLogin(_ context.Context, _ primitive.ObjectID, _ time.Time) error {
	return nil
}

func (f *fakeUserStore) Delete(_ context.Context, id string) error {
	delete(f.users, id)
	return nil
}

type fakeLogStore struct {
	entries []models.SystemLog
}

func (f *fakeLogStore) Append(_ context.Context, entry models.SystemLog) error {
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeLogStore) ListForUser(_ context.Context, _ models.User, _ int64) ([]models.SystemLog, error) {
	return f.entries, nil
}

func (f *fakeLogStore) actions() []string {
	var out []string
	for _, e := range f.entries {
		out = append(out, e.Action)
	}
	return out
}

func newTestUser(role string) models.User {
	return models.User{
		ID:       primitive.NewObjectID(),
		Username: strings.ToLower(role),
		FullName: role + " User",
		Role:     role,
		IsActive: true,
	}
}

type qrfTestEnv struct {
	e     *echo.Echo
	qrfs  *fakeQRFStore
	users *fakeUserStore
	logs  *fakeLogStore
	ctrl  *QRFController
}

func newQRFTestEnv(users ...models.User) *qrfTestEnv {
	e := echo.New()
	e.Validator = &testValidator{validator: validator.New()}

	qrfs := newFakeQRFStore()
	userStore := newFakeUserStore(users...)
	logs := &fakeLogStore{}

	return &qrfTestEnv{
		e:     e,
		qrfs:  qrfs,
		users: userStore,
		logs:  logs,
		ctrl:  NewQRFController(qrfs, userStore, logs, websocket.NewHub()),
	}
}

func (env *qrfTestEnv) request(method, path, body string, as models.User) (echo.Context, *httptest.ResponseRecorder) {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := env.e.NewContext(req, rec)
	c.Set("userId", as.ID.Hex())
	c.Set("username", as.Username)
	c.Set("role", as.Role)
	return c, rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp models.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok, "response data should be an object, got %T", resp.Data)
	return data
}

func TestCreateQRFAssignsReference(t *testing.T) {
	agent := newTestUser(models.RoleAgent)
	env := newQRFTestEnv(agent)

	body := `{"id":"qrf-1","name":"Acme Medical Plan","types":["MEDICAL"],"status":"DRAFT","data":{}}`
	c, rec := env.request(http.MethodPost, "/api/qrfs", body, agent)

	require.NoError(t, env.ctrl.CreateQRF(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	data := decodeData(t, rec)
	require.Equal(t, "00001", data["referenceNumber"])

	saved := env.qrfs.qrfs["qrf-1"]
	require.Equal(t, agent.ID.Hex(), saved.AgentID)
	require.ElementsMatch(t, []string{"MEDICAL", "LIFE"}, saved.Types)
	require.Contains(t, env.logs.actions(), models.ActionCreateQRF)
}

func TestCreateQRFSubmittedRequiresAttachments(t *testing.T) {
	agent := newTestUser(models.RoleAgent)
	env := newQRFTestEnv(agent)

	body := `{"id":"qrf-1","name":"Life Plan","types":["LIFE"],"status":"SUBMITTED","data":{}}`
	c, rec := env.request(http.MethodPost, "/api/qrfs", body, agent)

	require.NoError(t, env.ctrl.CreateQRF(c))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Empty(t, env.qrfs.qrfs)
}

func TestSaveQRFForbiddenForNonOwner(t *testing.T) {
	agent := newTestUser(models.RoleAgent)
	other := newTestUser(models.RoleAgent)
	env := newQRFTestEnv(agent, other)

	env.qrfs.qrfs["qrf-1"] = models.QRF{
		ID:      "qrf-1",
		AgentID: agent.ID.Hex(),
		Status:  models.StatusDraft,
	}

	c, rec := env.request(http.MethodPut, "/api/qrfs/qrf-1", `{"name":"Hijacked"}`, other)
	c.SetParamNames("id")
	c.SetParamValues("qrf-1")

	require.NoError(t, env.ctrl.SaveQRF(c))
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestOwnerSavesRejectedQRFWithoutResubmitting(t *testing.T) {
	agent := newTestUser(models.RoleAgent)
	env := newQRFTestEnv(agent)

	submittedAt := time.Now().Add(-72 * time.Hour)
	decidedAt := time.Now().Add(-24 * time.Hour)
	env.qrfs.qrfs["qrf-1"] = models.QRF{
		ID:              "qrf-1",
		ReferenceNumber: "00001",
		AgentID:         agent.ID.Hex(),
		Status:          models.StatusRejected,
		SubmittedAt:     &submittedAt,
		DecidedAt:       &decidedAt,
		RejectionReason: "Missing data",
		Data:            models.QRFData{AccountName: "Acme"},
	}

	body := `{"status":"REJECTED","data":{"accountName":"Acme Trading"}}`
	c, rec := env.request(http.MethodPut, "/api/qrfs/qrf-1", body, agent)
	c.SetParamNames("id")
	c.SetParamValues("qrf-1")

	require.NoError(t, env.ctrl.SaveQRF(c))
	require.Equal(t, http.StatusOK, rec.Code)

	saved := env.qrfs.qrfs["qrf-1"]
	require.Equal(t, models.StatusRejected, saved.Status)
	require.Equal(t, "Acme Trading", saved.Data.AccountName)
	// Editing a rejected record does not touch the decision.
	require.Equal(t, "Missing data", saved.RejectionReason)
	require.NotNil(t, saved.DecidedAt)
	require.True(t, saved.DecidedAt.Equal(decidedAt))
}

func TestSaveCannotDecideDirectly(t *testing.T) {
	agent := newTestUser(models.RoleAgent)
	env := newQRFTestEnv(agent)

	env.qrfs.qrfs["qrf-1"] = models.QRF{
		ID:      "qrf-1",
		AgentID: agent.ID.Hex(),
		Status:  models.StatusDraft,
	}

	body := `{"status":"APPROVED"}`
	c, rec := env.request(http.MethodPut, "/api/qrfs/qrf-1", body, agent)
	c.SetParamNames("id")
	c.SetParamValues("qrf-1")

	require.NoError(t, env.ctrl.SaveQRF(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, models.StatusDraft, env.qrfs.qrfs["qrf-1"].Status)
}

func TestAssignUnderwriterStampsAndLogs(t *testing.T) {
	uwAdmin := newTestUser(models.RoleUWAdmin)
	underwriter := newTestUser(models.RoleUnderwriter)
	env := newQRFTestEnv(uwAdmin, underwriter)

	env.qrfs.qrfs["qrf-1"] = models.QRF{
		ID:              "qrf-1",
		ReferenceNumber: "00001",
		AgentID:         primitive.NewObjectID().Hex(),
		Status:          models.StatusSubmitted,
	}

	body := `{"underwriterId":"` + underwriter.ID.Hex() + `"}`
	c, rec := env.request(http.MethodPost, "/api/qrfs/qrf-1/assign", body, uwAdmin)
	c.SetParamNames("id")
	c.SetParamValues("qrf-1")

	require.NoError(t, env.ctrl.AssignUnderwriter(c))
	require.Equal(t, http.StatusOK, rec.Code)

	saved := env.qrfs.qrfs["qrf-1"]
	require.Equal(t, underwriter.ID.Hex(), saved.AssignedToID)
	require.Equal(t, underwriter.FullName, saved.AssignedToName)
	require.NotNil(t, saved.AssignedAt)
	require.Contains(t, env.logs.actions(), models.ActionAssignUW)
}

func TestAssignLockedQRFIsRefused(t *testing.T) {
	uwAdmin := newTestUser(models.RoleUWAdmin)
	underwriter := newTestUser(models.RoleUnderwriter)
	env := newQRFTestEnv(uwAdmin, underwriter)

	locked := true
	env.qrfs.qrfs["qrf-1"] = models.QRF{
		ID:       "qrf-1",
		AgentID:  primitive.NewObjectID().Hex(),
		Status:   models.StatusSubmitted,
		IsLocked: &locked,
	}

	body := `{"underwriterId":"` + underwriter.ID.Hex() + `"}`
	c, rec := env.request(http.MethodPost, "/api/qrfs/qrf-1/assign", body, uwAdmin)
	c.SetParamNames("id")
	c.SetParamValues("qrf-1")

	require.NoError(t, env.ctrl.AssignUnderwriter(c))
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUnassignKeepsTrace(t *testing.T) {
	uwAdmin := newTestUser(models.RoleUWAdmin)
	env := newQRFTestEnv(uwAdmin)

	assignedAt := time.Now().Add(-24 * time.Hour)
	env.qrfs.qrfs["qrf-1"] = models.QRF{
		ID:              "qrf-1",
		ReferenceNumber: "00001",
		AgentID:         primitive.NewObjectID().Hex(),
		Status:          models.StatusSubmitted,
		AssignedToID:    primitive.NewObjectID().Hex(),
		AssignedToName:  "Una Writer",
		AssignedAt:      &assignedAt,
	}

	c, rec := env.request(http.MethodPost, "/api/qrfs/qrf-1/unassign", "", uwAdmin)
	c.SetParamNames("id")
	c.SetParamValues("qrf-1")

	require.NoError(t, env.ctrl.UnassignUnderwriter(c))
	require.Equal(t, http.StatusOK, rec.Code)

	saved := env.qrfs.qrfs["qrf-1"]
	require.Empty(t, saved.AssignedToID)
	require.Equal(t, "Una Writer", saved.PreviousAssignedToName)
	require.Equal(t, uwAdmin.FullName, saved.UnassignedBy)
	require.NotNil(t, saved.UnassignedAt)
	// The previous assignment timestamp survives an unassignment.
	require.NotNil(t, saved.AssignedAt)
	require.True(t, saved.AssignedAt.Equal(assignedAt))
	require.Contains(t, env.logs.actions(), models.ActionUnassignUW)
}

func TestApproveRequiresProposalDocument(t *testing.T) {
	underwriter := newTestUser(models.RoleUnderwriter)
	env := newQRFTestEnv(underwriter)

	submittedAt := time.Now().Add(-48 * time.Hour)
	env.qrfs.qrfs["qrf-1"] = models.QRF{
		ID:           "qrf-1",
		AgentID:      primitive.NewObjectID().Hex(),
		Status:       models.StatusSubmitted,
		SubmittedAt:  &submittedAt,
		AssignedToID: underwriter.ID.Hex(),
	}

	c, rec := env.request(http.MethodPost, "/api/qrfs/qrf-1/approve", "", underwriter)
	c.SetParamNames("id")
	c.SetParamValues("qrf-1")

	require.NoError(t, env.ctrl.ApproveQRF(c))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Equal(t, models.StatusSubmitted, env.qrfs.qrfs["qrf-1"].Status)
}

func TestApproveStampsDecisionAndUnlocks(t *testing.T) {
	underwriter := newTestUser(models.RoleUnderwriter)
	agent := newTestUser(models.RoleAgent)
	env := newQRFTestEnv(underwriter, agent)

	submittedAt := time.Now().Add(-48 * time.Hour)
	locked := true
	env.qrfs.qrfs["qrf-1"] = models.QRF{
		ID:              "qrf-1",
		ReferenceNumber: "00001",
		AgentID:         agent.ID.Hex(),
		Status:          models.StatusSubmitted,
		SubmittedAt:     &submittedAt,
		AssignedToID:    underwriter.ID.Hex(),
		IsLocked:        &locked,
		Data: models.QRFData{
			ProposalAttachments: []models.Attachment{{ID: "p1", Name: "proposal.pdf"}},
		},
	}

	c, rec := env.request(http.MethodPost, "/api/qrfs/qrf-1/approve", "", underwriter)
	c.SetParamNames("id")
	c.SetParamValues("qrf-1")

	require.NoError(t, env.ctrl.ApproveQRF(c))
	require.Equal(t, http.StatusOK, rec.Code)

	saved := env.qrfs.qrfs["qrf-1"]
	require.Equal(t, models.StatusApproved, saved.Status)
	require.NotNil(t, saved.DecidedAt)
	require.False(t, saved.Locked())
	require.NotNil(t, saved.SubmittedAt)
	require.Contains(t, env.logs.actions(), models.ActionApproveQRF)
}

func TestRejectWithUnknownReasonIsRefused(t *testing.T) {
	underwriter := newTestUser(models.RoleUnderwriter)
	env := newQRFTestEnv(underwriter)

	submittedAt := time.Now()
	env.qrfs.qrfs["qrf-1"] = models.QRF{
		ID:           "qrf-1",
		AgentID:      primitive.NewObjectID().Hex(),
		Status:       models.StatusSubmitted,
		SubmittedAt:  &submittedAt,
		AssignedToID: underwriter.ID.Hex(),
	}

	c, rec := env.request(http.MethodPost, "/api/qrfs/qrf-1/reject", `{"reason":"Just because"}`, underwriter)
	c.SetParamNames("id")
	c.SetParamValues("qrf-1")

	require.NoError(t, env.ctrl.RejectQRF(c))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestRejectOnlyByAssignedUnderwriter(t *testing.T) {
	assigned := newTestUser(models.RoleUnderwriter)
	other := newTestUser(models.RoleUnderwriter)
	env := newQRFTestEnv(assigned, other)

	submittedAt := time.Now()
	env.qrfs.qrfs["qrf-1"] = models.QRF{
		ID:           "qrf-1",
		AgentID:      primitive.NewObjectID().Hex(),
		Status:       models.StatusSubmitted,
		SubmittedAt:  &submittedAt,
		AssignedToID: assigned.ID.Hex(),
	}

	c, rec := env.request(http.MethodPost, "/api/qrfs/qrf-1/reject", `{"reason":"Missing data"}`, other)
	c.SetParamNames("id")
	c.SetParamValues("qrf-1")

	require.NoError(t, env.ctrl.RejectQRF(c))
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestOwnerUnlocksSubmittedQRF(t *testing.T) {
	agent := newTestUser(models.RoleAgent)
	env := newQRFTestEnv(agent)

	submittedAt := time.Now()
	locked := true
	env.qrfs.qrfs["qrf-1"] = models.QRF{
		ID:              "qrf-1",
		ReferenceNumber: "00001",
		AgentID:         agent.ID.Hex(),
		Status:          models.StatusSubmitted,
		SubmittedAt:     &submittedAt,
		IsLocked:        &locked,
	}

	c, rec := env.request(http.MethodPost, "/api/qrfs/qrf-1/unlock", "", agent)
	c.SetParamNames("id")
	c.SetParamValues("qrf-1")

	require.NoError(t, env.ctrl.UnlockQRF(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.False(t, env.qrfs.qrfs["qrf-1"].Locked())
	require.Contains(t, env.logs.actions(), models.ActionUnlockQRF)
}

func TestLockOnlyByAssignedUnderwriter(t *testing.T) {
	agent := newTestUser(models.RoleAgent)
	env := newQRFTestEnv(agent)

	submittedAt := time.Now()
	env.qrfs.qrfs["qrf-1"] = models.QRF{
		ID:          "qrf-1",
		AgentID:     agent.ID.Hex(),
		Status:      models.StatusSubmitted,
		SubmittedAt: &submittedAt,
	}

	c, rec := env.request(http.MethodPost, "/api/qrfs/qrf-1/lock", "", agent)
	c.SetParamNames("id")
	c.SetParamValues("qrf-1")

	require.NoError(t, env.ctrl.LockQRF(c))
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestListQRFsScopedForAgent(t *testing.T) {
	agent := newTestUser(models.RoleAgent)
	env := newQRFTestEnv(agent)

	env.qrfs.qrfs["mine"] = models.QRF{ID: "mine", AgentID: agent.ID.Hex(), Status: models.StatusDraft}
	env.qrfs.qrfs["other"] = models.QRF{ID: "other", AgentID: primitive.NewObjectID().Hex(), Status: models.StatusDraft}

	c, rec := env.request(http.MethodGet, "/api/qrfs", "", agent)

	require.NoError(t, env.ctrl.ListQRFs(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	list, ok := resp.Data.([]interface{})
	require.True(t, ok)
	require.Len(t, list, 1)
}

func TestNotificationsCountForAgent(t *testing.T) {
	agent := newTestUser(models.RoleAgent)
	env := newQRFTestEnv(agent)

	env.qrfs.qrfs["a"] = models.QRF{ID: "a", AgentID: agent.ID.Hex(), Status: models.StatusDraft}
	env.qrfs.qrfs["b"] = models.QRF{ID: "b", AgentID: agent.ID.Hex(), Status: models.StatusRejected}
	env.qrfs.qrfs["c"] = models.QRF{ID: "c", AgentID: agent.ID.Hex(), Status: models.StatusApproved}

	c, rec := env.request(http.MethodGet, "/api/qrfs/notifications/count", "", agent)

	require.NoError(t, env.ctrl.NotificationsCount(c))
	require.Equal(t, http.StatusOK, rec.Code)

	data := decodeData(t, rec)
	require.Equal(t, float64(2), data["count"])
}
