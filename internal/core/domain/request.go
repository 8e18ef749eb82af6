package domain

import (
	"fmt"
	"time"
)

// Status is the lifecycle label of an intake request. It is always derived
// from the four approval facts and never stored on its own.
type Status string

const (
	StatusWaiting              Status = "waiting"
	StatusApprovedByDoctor     Status = "approved_by_doctor"
	StatusApprovedByAccountant Status = "approved_by_accountant"
	StatusFullyApproved        Status = "fully_approved"
	StatusRejected             Status = "rejected"
)

// Terminal reports whether no further transitions are permitted.
func (s Status) Terminal() bool {
	return s == StatusFullyApproved || s == StatusRejected
}

type Role string

const (
	RoleDoctor     Role = "doctor"
	RoleAccountant Role = "accountant"
)

func (r Role) Valid() bool {
	return r == RoleDoctor || r == RoleAccountant
}

type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// Action is one reviewer's decision on a request. The role is threaded in
// explicitly so the transition logic never reads ambient state.
type Action struct {
	Role     Role
	Decision Decision
}

// ApprovalFacts are the persisted per-role booleans. Within a role the two
// facts are mutually exclusive.
type ApprovalFacts struct {
	ApprovedByDoctor     bool `json:"approved_by_doctor"`
	RejectedByDoctor     bool `json:"rejected_by_doctor"`
	ApprovedByAccountant bool `json:"approved_by_accountant"`
	RejectedByAccountant bool `json:"rejected_by_accountant"`
}

// Status recomputes the derived status from the full fact set. Rejection by
// either role wins over everything else.
func (f ApprovalFacts) Status() Status {
	switch {
	case f.RejectedByDoctor || f.RejectedByAccountant:
		return StatusRejected
	case f.ApprovedByDoctor && f.ApprovedByAccountant:
		return StatusFullyApproved
	case f.ApprovedByDoctor:
		return StatusApprovedByDoctor
	case f.ApprovedByAccountant:
		return StatusApprovedByAccountant
	default:
		return StatusWaiting
	}
}

// Acted reports whether the given role has already recorded a decision.
func (f ApprovalFacts) Acted(role Role) bool {
	switch role {
	case RoleDoctor:
		return f.ApprovedByDoctor || f.RejectedByDoctor
	case RoleAccountant:
		return f.ApprovedByAccountant || f.RejectedByAccountant
	default:
		return false
	}
}

// Validate rejects fact sets where a role both approved and rejected.
func (f ApprovalFacts) Validate() error {
	if f.ApprovedByDoctor && f.RejectedByDoctor {
		return fmt.Errorf("doctor facts conflict: approved and rejected both set")
	}
	if f.ApprovedByAccountant && f.RejectedByAccountant {
		return fmt.Errorf("accountant facts conflict: approved and rejected both set")
	}
	return nil
}

// IntakeRequest is one patient-intake record as served by the clinic API.
// SubmittedAt is immutable once created.
type IntakeRequest struct {
	ID                int64
	PatientID         string
	FullName          string
	PhoneNumber       string
	BirthDate         string
	SubmittedAt       time.Time
	Facts             ApprovalFacts
	DoctorComment     string
	AccountantComment string
	DocumentsURL      string
}

func (r IntakeRequest) Status() Status {
	return r.Facts.Status()
}
