package approval

import "emsspace/internal/domain/auth"

// RequiresPIN reports whether the role must confirm approve/reject with its
// approval PIN. Other roles never reach the gate.
func RequiresPIN(role auth.Role) bool {
	return role == auth.RoleTeamLeader || role == auth.RoleManager
}

// VerifyPIN is a confirmation step, not a security boundary: the PIN is an
// exact string match with no lockout on repeated failures. Real access control
// lives in the authorization matrix and the token layer.
func VerifyPIN(role auth.Role, storedPIN, candidate string) error {
	if !RequiresPIN(role) {
		return nil
	}
	if storedPIN == "" {
		return ErrPINNotSet
	}
	if candidate != storedPIN {
		return ErrPINMismatch
	}
	return nil
}
