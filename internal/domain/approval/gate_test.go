package approval

import (
	"errors"
	"testing"

	"emsspace/internal/domain/auth"
)

func TestGateRequiresConfiguredPIN(t *testing.T) {
	if err := VerifyPIN(auth.RoleManager, "", "1234"); !errors.Is(err, ErrPINNotSet) {
		t.Fatalf("expected ErrPINNotSet, got %v", err)
	}
}

func TestGateRejectsWrongPIN(t *testing.T) {
	if err := VerifyPIN(auth.RoleTeamLeader, "4321", "1111"); !errors.Is(err, ErrPINMismatch) {
		t.Fatalf("expected ErrPINMismatch, got %v", err)
	}
}

func TestGateAcceptsExactMatch(t *testing.T) {
	if err := VerifyPIN(auth.RoleManager, "9999", "9999"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGateBypassedForNonApproverRoles(t *testing.T) {
	for _, role := range []auth.Role{auth.RoleEmployee, auth.RoleAdmin, auth.RoleFinanceManager, auth.RoleContractor} {
		if err := VerifyPIN(role, "", "anything"); err != nil {
			t.Fatalf("expected role %s to bypass the gate, got %v", role, err)
		}
	}
}
