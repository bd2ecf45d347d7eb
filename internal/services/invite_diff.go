package services

import (
	"invite-tracker/internal/models"
)

// ResolveUsedInvite finds the invite whose use count grew the most since prev.
// Codes missing from prev count from zero. Ties go to the invite listed first
// in current. Returns nil when no invite grew.
func ResolveUsedInvite(prev models.InviteSnapshot, current []models.Invite) *models.Invite {
	var (
		best      *models.Invite
		bestDelta int
	)
	for i := range current {
		delta := current[i].Uses - prev[current[i].Code]
		if delta > bestDelta {
			best = &current[i]
			bestDelta = delta
		}
	}
	if best == nil {
		return nil
	}
	inv := *best
	return &inv
}
