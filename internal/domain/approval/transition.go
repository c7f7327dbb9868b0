package approval

import (
	"strings"
	"time"

	"emsspace/internal/domain/auth"
)

// InitialStatus returns the status a freshly submitted record starts in.
// Team leaders skip their own stage and land directly at the manager.
func InitialStatus(submitter auth.Role) Status {
	if submitter == auth.RoleTeamLeader {
		return StatusPendingManager
	}
	return StatusPendingLeader
}

// Stamps is what a transition computes: the next status plus the side-effect
// fields the caller must persist in the same update.
type Stamps struct {
	Status          Status
	RejectionReason string
	UpdatedAt       time.Time

	// Stage flags tell the caller which audit fields to fill. Requisitions
	// ignore them; leave requests map them to the per-stage approver columns.
	LeaderStage  bool
	ManagerStage bool
	Final        bool
}

// Apply computes the transition for approve/reject. It enforces the state
// machine only; whether the actor may act at all is the matrix's job and must
// be checked against the freshest record before calling.
func Apply(current Status, action Action, reason string, now time.Time) (Stamps, error) {
	if current.Terminal() {
		return Stamps{}, ErrInvalidState
	}

	switch action {
	case ActionApprove:
		switch current {
		case StatusPendingLeader:
			return Stamps{Status: StatusPendingManager, LeaderStage: true, UpdatedAt: now}, nil
		case StatusPendingManager:
			return Stamps{Status: StatusApproved, ManagerStage: true, Final: true, UpdatedAt: now}, nil
		}
	case ActionReject:
		trimmed := strings.TrimSpace(reason)
		if trimmed == "" {
			return Stamps{}, ErrReasonRequired
		}
		switch current {
		case StatusPendingLeader, StatusPendingManager:
			return Stamps{Status: StatusRejected, RejectionReason: trimmed, UpdatedAt: now}, nil
		}
	}

	return Stamps{}, ErrNotAllowed
}
