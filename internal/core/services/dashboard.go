package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AchilleasB/baby-kliniek/intake-dashboard-service/internal/core/domain"
	"github.com/AchilleasB/baby-kliniek/intake-dashboard-service/internal/core/ports"
)

const publishTimeout = 5 * time.Second

// Dashboard drives one staff session: listing intake requests with derived
// status and lateness, and recording approval decisions. All state lives in
// the clinic API; a read is always a fresh fetch.
type Dashboard struct {
	api       ports.IntakeAPI
	store     ports.CredentialStore
	publisher ports.DecisionPublisher
	logger    *zap.Logger
}

// NewDashboard wires a session service. The publisher may be nil when no
// broker is configured; decision events are then skipped.
func NewDashboard(api ports.IntakeAPI, store ports.CredentialStore, publisher ports.DecisionPublisher, logger *zap.Logger) *Dashboard {
	return &Dashboard{
		api:       api,
		store:     store,
		publisher: publisher,
		logger:    logger,
	}
}

// RequestView is one intake request decorated for display.
type RequestView struct {
	ID                int64                `json:"id"`
	PatientID         string               `json:"patient_id"`
	FullName          string               `json:"full_name"`
	PhoneNumber       string               `json:"phone_number"`
	BirthDate         string               `json:"birth_date"`
	SubmittedAt       time.Time            `json:"created_at"`
	Facts             domain.ApprovalFacts `json:"facts"`
	DoctorComment     string               `json:"doctor_comment,omitempty"`
	AccountantComment string               `json:"accountant_comment,omitempty"`
	DocumentsURL      string               `json:"documents_url,omitempty"`
	Status            domain.Status        `json:"status"`
	Lateness          LatenessReport       `json:"lateness"`
}

// Stats are the dashboard's headline counters.
type Stats struct {
	Total    int `json:"total"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
	Waiting  int `json:"waiting"`
	Overdue  int `json:"overdue"`
}

type Overview struct {
	Requests []RequestView `json:"requests"`
	Stats    Stats         `json:"stats"`
}

// Login authenticates against the clinic API, stores the credential pair
// and returns the reviewer role read from the access token's claims.
func (d *Dashboard) Login(ctx context.Context, username, password string) (domain.Role, error) {
	if err := d.api.Authenticate(ctx, username, password); err != nil {
		return "", err
	}
	role, err := d.Role(ctx)
	if err != nil {
		return "", err
	}
	d.logger.Info("staff member logged in", zap.String("role", string(role)))
	return role, nil
}

// Logout discards the credential pair. Safe to call on an already-empty
// store.
func (d *Dashboard) Logout(ctx context.Context) error {
	return d.store.Clear(ctx)
}

// Role reads the current reviewer role from the stored access credential.
func (d *Dashboard) Role(ctx context.Context) (domain.Role, error) {
	access, err := d.store.Get(ctx, domain.CredentialAccess)
	if err != nil {
		if errors.Is(err, domain.ErrNoCredential) {
			return "", domain.ErrSessionExpired
		}
		return "", err
	}
	return domain.RoleFromToken(access)
}

// Overview fetches the current request list and derives status, lateness
// and the headline counters. Status comes from the fact set on every read,
// never from a stored label.
func (d *Dashboard) Overview(ctx context.Context, now time.Time) (Overview, error) {
	requests, err := d.api.ListRequests(ctx)
	if err != nil {
		return Overview{}, err
	}

	out := Overview{Requests: make([]RequestView, 0, len(requests))}
	for _, req := range requests {
		view := newRequestView(req, now)
		out.Requests = append(out.Requests, view)

		out.Stats.Total++
		switch view.Status {
		case domain.StatusFullyApproved:
			out.Stats.Approved++
		case domain.StatusRejected:
			out.Stats.Rejected++
		default:
			out.Stats.Waiting++
		}
		if view.Lateness.Overdue {
			out.Stats.Overdue++
		}
	}
	return out, nil
}

// Act records one reviewer decision. The transition is validated locally
// against the latest known facts before any network call; the server's
// acknowledgment is then reconciled by recomputing status from the returned
// fact set.
func (d *Dashboard) Act(ctx context.Context, id int64, decision domain.Decision, comment string) (RequestView, error) {
	role, err := d.Role(ctx)
	if err != nil {
		return RequestView{}, err
	}

	current, err := d.findRequest(ctx, id)
	if err != nil {
		return RequestView{}, err
	}

	action := domain.Action{Role: role, Decision: decision}
	if _, err := Apply(current.Facts, action); err != nil {
		return RequestView{}, err
	}

	var updated domain.IntakeRequest
	switch decision {
	case domain.DecisionApprove:
		updated, err = d.api.Approve(ctx, id, comment)
	case domain.DecisionReject:
		updated, err = d.api.Reject(ctx, id, comment)
	default:
		return RequestView{}, fmt.Errorf("unknown decision %q", decision)
	}
	if err != nil {
		return RequestView{}, err
	}

	view := newRequestView(updated, time.Now())
	d.publishDecision(updated, action, comment)
	return view, nil
}

// Notify forwards a message for the patient behind the given request.
func (d *Dashboard) Notify(ctx context.Context, id int64, message string) error {
	return d.api.Notify(ctx, id, message)
}

func (d *Dashboard) findRequest(ctx context.Context, id int64) (domain.IntakeRequest, error) {
	requests, err := d.api.ListRequests(ctx)
	if err != nil {
		return domain.IntakeRequest{}, err
	}
	for _, req := range requests {
		if req.ID == id {
			return req, nil
		}
	}
	return domain.IntakeRequest{}, fmt.Errorf("request %d: %w", id, domain.ErrNotFound)
}

// publishDecision is best effort: a broker outage must not fail the
// decision that the clinic API has already acknowledged.
func (d *Dashboard) publishDecision(req domain.IntakeRequest, action domain.Action, comment string) {
	if d.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	evt := ports.DecisionEvent{
		EventID:   uuid.NewString(),
		RequestID: req.ID,
		PatientID: req.PatientID,
		Role:      string(action.Role),
		Decision:  string(action.Decision),
		Comment:   comment,
		Status:    string(req.Status()),
		DecidedAt: time.Now().UTC(),
	}
	if err := d.publisher.PublishDecision(ctx, evt); err != nil {
		d.logger.Warn("decision event not published",
			zap.Int64("request_id", req.ID),
			zap.Error(err),
		)
	}
}

func newRequestView(req domain.IntakeRequest, now time.Time) RequestView {
	status := req.Status()
	return RequestView{
		ID:                req.ID,
		PatientID:         req.PatientID,
		FullName:          req.FullName,
		PhoneNumber:       req.PhoneNumber,
		BirthDate:         req.BirthDate,
		SubmittedAt:       req.SubmittedAt,
		Facts:             req.Facts,
		DoctorComment:     req.DoctorComment,
		AccountantComment: req.AccountantComment,
		DocumentsURL:      req.DocumentsURL,
		Status:            status,
		Lateness:          Classify(req.SubmittedAt, status, now),
	}
}
