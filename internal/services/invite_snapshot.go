package services

import (
	"context"
	"fmt"
	"log"

	"invite-tracker/internal/models"
	"invite-tracker/internal/platform"
)

// SnapshotService keeps the per-guild invite use counts in step with the platform
type SnapshotService struct {
	platform platform.Platform
	ledger   *InviteLedger
}

func NewSnapshotService(p platform.Platform, ledger *InviteLedger) *SnapshotService {
	return &SnapshotService{
		platform: p,
		ledger:   ledger,
	}
}

// Refresh fetches the live invites and overwrites the cached snapshot.
// On failure the cached snapshot is left untouched.
func (s *SnapshotService) Refresh(ctx context.Context, guildID string) ([]models.Invite, error) {
	invites, err := s.platform.GuildInvites(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh invites for guild %s: %w", guildID, err)
	}

	if err := s.ledger.SetSnapshot(ctx, guildID, models.SnapshotOf(invites)); err != nil {
		return nil, err
	}
	return invites, nil
}

// RefreshAll refreshes every guild the bot is in, logging failures per guild
func (s *SnapshotService) RefreshAll(ctx context.Context) {
	guilds, err := s.platform.Guilds(ctx)
	if err != nil {
		log.Printf("[Snapshot] Failed to list guilds: %v", err)
		return
	}
	for _, g := range guilds {
		invites, err := s.Refresh(ctx, g)
		if err != nil {
			log.Printf("[Snapshot] %v", err)
			continue
		}
		log.Printf("[Snapshot] Cached %d invites for guild %s", len(invites), g)
	}
}

// Get returns the last cached snapshot, empty if never refreshed
func (s *SnapshotService) Get(guildID string) models.InviteSnapshot {
	return s.ledger.Snapshot(guildID)
}

// TrackCreated records a newly created invite
func (s *SnapshotService) TrackCreated(ctx context.Context, guildID, code string, uses int) error {
	return s.ledger.Update(ctx, guildID, func(b *models.GuildBucket) error {
		b.InviteCache[code] = uses
		return nil
	})
}

// TrackDeleted drops a deleted invite from the snapshot
func (s *SnapshotService) TrackDeleted(ctx context.Context, guildID, code string) error {
	return s.ledger.Update(ctx, guildID, func(b *models.GuildBucket) error {
		delete(b.InviteCache, code)
		return nil
	})
}
