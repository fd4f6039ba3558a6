package domain

import "time"

// ResolveStatus derives the lifecycle status. Revocation wins over expiry,
// expiry wins over the expiring-soon window.
func ResolveStatus(now, expiresAt time.Time, revokedAt *time.Time) Status {
	switch {
	case revokedAt != nil:
		return StatusRevoked
	case !expiresAt.After(now):
		return StatusExpired
	case expiresAt.Sub(now) <= ExpiringSoonWindow:
		return StatusExpiringSoon
	default:
		return StatusActive
	}
}

// IsUsable reports whether a status permits authentication.
func (s Status) IsUsable() bool {
	return s == StatusActive || s == StatusExpiringSoon
}
