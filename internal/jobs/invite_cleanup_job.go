package jobs

import (
	"context"
	"log"

	"invite-tracker/internal/services"
)

// InviteCleanupJob sweeps unused invites in every guild
type InviteCleanupJob struct {
	cleanup *services.CleanupService
}

func NewInviteCleanupJob(cleanup *services.CleanupService) *InviteCleanupJob {
	return &InviteCleanupJob{cleanup: cleanup}
}

// Run sweeps all guilds once
func (j *InviteCleanupJob) Run(ctx context.Context) {
	results := j.cleanup.SweepAll(ctx)

	deleted := 0
	for _, r := range results {
		deleted += r.Deleted
	}
	if deleted > 0 {
		log.Printf("[InviteCleanup] Deleted %d unused invites across %d guilds", deleted, len(results))
	}
}
