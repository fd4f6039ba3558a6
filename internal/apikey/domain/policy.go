package domain

import "strings"

// CanAct reports whether actor may perform op on key. Admins may act on any key;
// everyone else only on USER keys they own.
func CanAct(actor Actor, key *APIKey, op Operation) bool {
	if actor.IsAdmin {
		return true
	}
	if key.Scope != ScopeUser || key.OwnerEmail == nil {
		return false
	}
	switch op {
	case OperationView, OperationRename, OperationRevoke, OperationRotate:
		return strings.EqualFold(*key.OwnerEmail, actor.Email)
	default:
		return false
	}
}

// CanCreate reports whether actor may create a key of scope for itself.
// System principals cannot own USER keys.
func CanCreate(actor Actor, scope Scope) bool {
	switch scope {
	case ScopeSystem:
		return actor.IsAdmin
	case ScopeUser:
		return actor.Email != "" && !actor.IsSystem
	default:
		return false
	}
}

// CanIssueFor reports whether actor may create a USER key owned by ownerEmail.
func CanIssueFor(actor Actor, ownerEmail string) bool {
	return actor.IsAdmin && ownerEmail != ""
}

// Authorize returns ErrForbidden when actor may not perform op on key.
func Authorize(actor Actor, key *APIKey, op Operation) error {
	if !CanAct(actor, key, op) {
		return ErrForbidden
	}
	return nil
}
