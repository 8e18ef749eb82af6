package services

import (
	"fmt"

	"github.com/AchilleasB/baby-kliniek/intake-dashboard-service/internal/core/domain"
)

// Apply computes the approval facts that result from one reviewer's action.
// It is pure transition logic: no side effects, no ambient state. The caller
// persists the result through the clinic API and reconciles from the
// acknowledgment, recomputing the derived status from the returned facts.
//
// A request that has reached a terminal state accepts no further actions,
// and a role may not act twice; both violations fail with
// domain.ErrAlreadyActed before any network call is made.
func Apply(facts domain.ApprovalFacts, action domain.Action) (domain.ApprovalFacts, error) {
	if !action.Role.Valid() {
		return facts, fmt.Errorf("unknown role %q", action.Role)
	}
	if action.Decision != domain.DecisionApprove && action.Decision != domain.DecisionReject {
		return facts, fmt.Errorf("unknown decision %q", action.Decision)
	}
	if err := facts.Validate(); err != nil {
		return facts, err
	}
	if facts.Status().Terminal() {
		return facts, domain.ErrAlreadyActed
	}
	if facts.Acted(action.Role) {
		return facts, domain.ErrAlreadyActed
	}

	switch action.Role {
	case domain.RoleDoctor:
		if action.Decision == domain.DecisionApprove {
			facts.ApprovedByDoctor = true
		} else {
			facts.RejectedByDoctor = true
		}
	case domain.RoleAccountant:
		if action.Decision == domain.DecisionApprove {
			facts.ApprovedByAccountant = true
		} else {
			facts.RejectedByAccountant = true
		}
	}
	return facts, nil
}
