package client

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/AchilleasB/baby-kliniek/intake-dashboard-service/internal/core/domain"
	"github.com/AchilleasB/baby-kliniek/intake-dashboard-service/internal/core/ports"
)

// IntakeClient is the thin client for the clinic API. One method per
// endpoint, no business logic: it validates identifiers, dispatches through
// the coordinator and maps wire payloads to domain records.
type IntakeClient struct {
	coord  *Coordinator
	logger *zap.Logger
}

var _ ports.IntakeAPI = (*IntakeClient)(nil)

func NewIntakeClient(coord *Coordinator, logger *zap.Logger) *IntakeClient {
	return &IntakeClient{coord: coord, logger: logger}
}

// intakePayload is the clinic API's request record. The status string the
// server sends along is informational only: the domain status is always
// recomputed from the four facts, and a mismatch is logged as drift.
type intakePayload struct {
	ID                   int64     `json:"id"`
	PatientID            string    `json:"patient_id"`
	FullName             string    `json:"full_name"`
	PhoneNumber          string    `json:"phone_number"`
	BirthDate            string    `json:"birth_date"`
	CreatedAt            time.Time `json:"created_at"`
	ApprovedByDoctor     bool      `json:"approved_by_doctor"`
	RejectedByDoctor     bool      `json:"rejected_by_doctor"`
	ApprovedByAccountant bool      `json:"approved_by_accountant"`
	RejectedByAccountant bool      `json:"rejected_by_accountant"`
	DoctorComment        string    `json:"doctor_comment"`
	AccountantComment    string    `json:"accountant_comment"`
	DocumentsURL         string    `json:"documents_url"`
	Status               string    `json:"status"`
}

func (c *IntakeClient) Authenticate(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return domain.ErrInvalidCredentials
	}
	return c.coord.Authenticate(ctx, username, password)
}

func (c *IntakeClient) ListRequests(ctx context.Context) ([]domain.IntakeRequest, error) {
	var payload []intakePayload
	resp, err := c.coord.Execute(ctx, "list_requests", func(req *resty.Request) (*resty.Response, error) {
		return req.SetResult(&payload).Get("/api/patients/")
	})
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("list requests returned status %d", resp.StatusCode())
	}

	requests := make([]domain.IntakeRequest, 0, len(payload))
	for _, p := range payload {
		requests = append(requests, c.toDomain(p))
	}
	return requests, nil
}

func (c *IntakeClient) Approve(ctx context.Context, id int64, comment string) (domain.IntakeRequest, error) {
	return c.act(ctx, id, "approve", comment)
}

func (c *IntakeClient) Reject(ctx context.Context, id int64, comment string) (domain.IntakeRequest, error) {
	return c.act(ctx, id, "reject", comment)
}

func (c *IntakeClient) Notify(ctx context.Context, id int64, message string) error {
	if id <= 0 {
		return fmt.Errorf("request id is required")
	}
	if message == "" {
		return fmt.Errorf("notification message is required")
	}

	resp, err := c.coord.Execute(ctx, "notify", func(req *resty.Request) (*resty.Response, error) {
		return req.
			SetBody(map[string]string{"message": message}).
			Post(fmt.Sprintf("/api/patients/%d/notify/", id))
	})
	if err != nil {
		return err
	}
	if resp.StatusCode() == http.StatusNotFound {
		return fmt.Errorf("request %d: %w", id, domain.ErrNotFound)
	}
	if resp.IsError() {
		return fmt.Errorf("notify returned status %d", resp.StatusCode())
	}
	return nil
}

func (c *IntakeClient) act(ctx context.Context, id int64, verb, comment string) (domain.IntakeRequest, error) {
	if id <= 0 {
		return domain.IntakeRequest{}, fmt.Errorf("request id is required")
	}

	var payload intakePayload
	resp, err := c.coord.Execute(ctx, verb, func(req *resty.Request) (*resty.Response, error) {
		return req.
			SetBody(map[string]string{"comment": comment}).
			SetResult(&payload).
			Post(fmt.Sprintf("/api/patients/%d/%s/", id, verb))
	})
	if err != nil {
		return domain.IntakeRequest{}, err
	}
	if resp.StatusCode() == http.StatusNotFound {
		return domain.IntakeRequest{}, fmt.Errorf("request %d: %w", id, domain.ErrNotFound)
	}
	if resp.IsError() {
		return domain.IntakeRequest{}, fmt.Errorf("%s returned status %d", verb, resp.StatusCode())
	}
	return c.toDomain(payload), nil
}

func (c *IntakeClient) toDomain(p intakePayload) domain.IntakeRequest {
	req := domain.IntakeRequest{
		ID:          p.ID,
		PatientID:   p.PatientID,
		FullName:    p.FullName,
		PhoneNumber: p.PhoneNumber,
		BirthDate:   p.BirthDate,
		SubmittedAt: p.CreatedAt,
		Facts: domain.ApprovalFacts{
			ApprovedByDoctor:     p.ApprovedByDoctor,
			RejectedByDoctor:     p.RejectedByDoctor,
			ApprovedByAccountant: p.ApprovedByAccountant,
			RejectedByAccountant: p.RejectedByAccountant,
		},
		DoctorComment:     p.DoctorComment,
		AccountantComment: p.AccountantComment,
		DocumentsURL:      p.DocumentsURL,
	}
	if p.Status != "" && p.Status != string(req.Status()) {
		c.logger.Warn("server status diverges from approval facts",
			zap.Int64("request_id", p.ID),
			zap.String("server_status", p.Status),
			zap.String("derived_status", string(req.Status())),
		)
	}
	return req
}
