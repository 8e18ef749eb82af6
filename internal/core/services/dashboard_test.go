package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AchilleasB/baby-kliniek/intake-dashboard-service/internal/adapters/credstore"
	"github.com/AchilleasB/baby-kliniek/intake-dashboard-service/internal/core/domain"
	"github.com/AchilleasB/baby-kliniek/intake-dashboard-service/internal/core/ports"
)

// fakeAPI implements ports.IntakeAPI against an in-memory request list.
type fakeAPI struct {
	store        ports.CredentialStore
	pair         domain.CredentialPair
	authErr      error
	requests     []domain.IntakeRequest
	listErr      error
	actResult    domain.IntakeRequest
	actErr       error
	approveCalls int
	rejectCalls  int
	lastComment  string
	notified     []string
}

func (f *fakeAPI) Authenticate(ctx context.Context, username, password string) error {
	if f.authErr != nil {
		return f.authErr
	}
	return f.store.SetPair(ctx, f.pair)
}

func (f *fakeAPI) ListRequests(context.Context) ([]domain.IntakeRequest, error) {
	return f.requests, f.listErr
}

func (f *fakeAPI) Approve(_ context.Context, id int64, comment string) (domain.IntakeRequest, error) {
	f.approveCalls++
	f.lastComment = comment
	return f.actResult, f.actErr
}

func (f *fakeAPI) Reject(_ context.Context, id int64, comment string) (domain.IntakeRequest, error) {
	f.rejectCalls++
	f.lastComment = comment
	return f.actResult, f.actErr
}

func (f *fakeAPI) Notify(_ context.Context, id int64, message string) error {
	f.notified = append(f.notified, message)
	return nil
}

type fakePublisher struct {
	events []ports.DecisionEvent
}

func (f *fakePublisher) PublishDecision(_ context.Context, evt ports.DecisionEvent) error {
	f.events = append(f.events, evt)
	return nil
}

func reviewerToken(t *testing.T, role domain.Role) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"role": string(role),
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func newTestDashboard(t *testing.T, role domain.Role, api *fakeAPI, publisher ports.DecisionPublisher) (*Dashboard, ports.CredentialStore) {
	t.Helper()
	store := credstore.NewMemoryStore()
	api.store = store
	require.NoError(t, store.SetPair(context.Background(), domain.CredentialPair{
		Access:  reviewerToken(t, role),
		Refresh: "refresh-token",
	}))
	return NewDashboard(api, store, publisher, zap.NewNop()), store
}

func TestDashboard_Login(t *testing.T) {
	store := credstore.NewMemoryStore()
	api := &fakeAPI{
		store: store,
		pair: domain.CredentialPair{
			Access:  reviewerToken(t, domain.RoleAccountant),
			Refresh: "refresh-token",
		},
	}
	dash := NewDashboard(api, store, nil, zap.NewNop())

	role, err := dash.Login(context.Background(), "anna", "secret")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAccountant, role)
}

func TestDashboard_Login_BadCredentials(t *testing.T) {
	store := credstore.NewMemoryStore()
	api := &fakeAPI{store: store, authErr: domain.ErrInvalidCredentials}
	dash := NewDashboard(api, store, nil, zap.NewNop())

	_, err := dash.Login(context.Background(), "anna", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestDashboard_Role_NoCredentials(t *testing.T) {
	store := credstore.NewMemoryStore()
	dash := NewDashboard(&fakeAPI{store: store}, store, nil, zap.NewNop())

	_, err := dash.Role(context.Background())
	assert.ErrorIs(t, err, domain.ErrSessionExpired)
}

func TestDashboard_Overview(t *testing.T) {
	now := time.Date(2025, 7, 10, 12, 0, 0, 0, time.UTC)
	api := &fakeAPI{
		requests: []domain.IntakeRequest{
			{ID: 1, SubmittedAt: now.AddDate(0, 0, -5)}, // waiting, overdue
			{ID: 2, SubmittedAt: now.AddDate(0, 0, -1), Facts: domain.ApprovalFacts{ApprovedByDoctor: true}},
			{ID: 3, SubmittedAt: now.AddDate(0, 0, -10), Facts: domain.ApprovalFacts{ApprovedByDoctor: true, ApprovedByAccountant: true}},
			{ID: 4, SubmittedAt: now.AddDate(0, 0, -10), Facts: domain.ApprovalFacts{RejectedByAccountant: true}},
		},
	}
	dash, _ := newTestDashboard(t, domain.RoleDoctor, api, nil)

	overview, err := dash.Overview(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, Stats{Total: 4, Approved: 1, Rejected: 1, Waiting: 2, Overdue: 1}, overview.Stats)
	require.Len(t, overview.Requests, 4)
	assert.Equal(t, domain.StatusWaiting, overview.Requests[0].Status)
	assert.True(t, overview.Requests[0].Lateness.Overdue)
	assert.Equal(t, domain.StatusApprovedByDoctor, overview.Requests[1].Status)
	assert.False(t, overview.Requests[2].Lateness.Overdue, "terminal requests are never overdue")
	assert.False(t, overview.Requests[3].Lateness.Overdue, "terminal requests are never overdue")
}

func TestDashboard_Act_ApprovePublishesDecision(t *testing.T) {
	publisher := &fakePublisher{}
	api := &fakeAPI{
		requests: []domain.IntakeRequest{{ID: 7, PatientID: "P-007"}},
		actResult: domain.IntakeRequest{
			ID:        7,
			PatientID: "P-007",
			Facts:     domain.ApprovalFacts{ApprovedByDoctor: true},
		},
	}
	dash, _ := newTestDashboard(t, domain.RoleDoctor, api, publisher)

	view, err := dash.Act(context.Background(), 7, domain.DecisionApprove, "looks fine")
	require.NoError(t, err)

	assert.Equal(t, domain.StatusApprovedByDoctor, view.Status)
	assert.Equal(t, 1, api.approveCalls)
	assert.Equal(t, "looks fine", api.lastComment)

	require.Len(t, publisher.events, 1)
	evt := publisher.events[0]
	assert.Equal(t, int64(7), evt.RequestID)
	assert.Equal(t, "P-007", evt.PatientID)
	assert.Equal(t, "doctor", evt.Role)
	assert.Equal(t, "approve", evt.Decision)
	assert.NotEmpty(t, evt.EventID)
}

func TestDashboard_Act_AlreadyActedLocally(t *testing.T) {
	api := &fakeAPI{
		requests: []domain.IntakeRequest{
			{ID: 7, Facts: domain.ApprovalFacts{ApprovedByDoctor: true}},
		},
	}
	dash, _ := newTestDashboard(t, domain.RoleDoctor, api, nil)

	_, err := dash.Act(context.Background(), 7, domain.DecisionApprove, "")
	assert.ErrorIs(t, err, domain.ErrAlreadyActed)
	assert.Zero(t, api.approveCalls, "local validation must short-circuit before any network call")
}

func TestDashboard_Act_TerminalRequest(t *testing.T) {
	api := &fakeAPI{
		requests: []domain.IntakeRequest{
			{ID: 7, Facts: domain.ApprovalFacts{RejectedByDoctor: true}},
		},
	}
	dash, _ := newTestDashboard(t, domain.RoleAccountant, api, nil)

	_, err := dash.Act(context.Background(), 7, domain.DecisionReject, "")
	assert.ErrorIs(t, err, domain.ErrAlreadyActed)
	assert.Zero(t, api.rejectCalls)
}

func TestDashboard_Act_UnknownRequest(t *testing.T) {
	dash, _ := newTestDashboard(t, domain.RoleDoctor, &fakeAPI{}, nil)

	_, err := dash.Act(context.Background(), 42, domain.DecisionApprove, "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDashboard_Act_RejectOverridesOtherRole(t *testing.T) {
	api := &fakeAPI{
		requests: []domain.IntakeRequest{
			{ID: 9, Facts: domain.ApprovalFacts{ApprovedByDoctor: true}},
		},
		actResult: domain.IntakeRequest{
			ID:    9,
			Facts: domain.ApprovalFacts{ApprovedByDoctor: true, RejectedByAccountant: true},
		},
	}
	dash, _ := newTestDashboard(t, domain.RoleAccountant, api, nil)

	view, err := dash.Act(context.Background(), 9, domain.DecisionReject, "missing paperwork")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, view.Status)
}

func TestDashboard_Logout(t *testing.T) {
	dash, store := newTestDashboard(t, domain.RoleDoctor, &fakeAPI{}, nil)

	require.NoError(t, dash.Logout(context.Background()))

	_, err := store.Get(context.Background(), domain.CredentialAccess)
	assert.ErrorIs(t, err, domain.ErrNoCredential)
	_, err = store.Get(context.Background(), domain.CredentialRefresh)
	assert.ErrorIs(t, err, domain.ErrNoCredential)
}

func TestDashboard_Overview_PropagatesSessionExpiry(t *testing.T) {
	api := &fakeAPI{listErr: domain.ErrSessionExpired}
	dash, _ := newTestDashboard(t, domain.RoleDoctor, api, nil)

	_, err := dash.Overview(context.Background(), time.Now())
	assert.True(t, errors.Is(err, domain.ErrSessionExpired))
}
