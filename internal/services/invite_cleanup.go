package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"invite-tracker/internal/models"
	"invite-tracker/internal/platform"
)

// CleanupConfig sets the soft cap and pacing of invite sweeps
type CleanupConfig struct {
	MaxInvites  int
	Target      int
	DeleteDelay time.Duration
}

// SweepResult summarizes one guild sweep
type SweepResult struct {
	GuildID string `json:"guild_id"`
	Before  int    `json:"before"`
	Deleted int    `json:"deleted"`
	Failed  int    `json:"failed"`
	After   int    `json:"after"`
	Skipped bool   `json:"skipped"`
}

// CleanupService deletes unused invites once a guild nears the platform's invite limit
type CleanupService struct {
	platform  platform.Platform
	snapshots *SnapshotService
	cfg       CleanupConfig

	mu      sync.Mutex
	running map[string]bool
}

func NewCleanupService(p platform.Platform, snapshots *SnapshotService, cfg CleanupConfig) *CleanupService {
	return &CleanupService{
		platform:  p,
		snapshots: snapshots,
		cfg:       cfg,
		running:   make(map[string]bool),
	}
}

func (s *CleanupService) acquire(guildID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running[guildID] {
		return false
	}
	s.running[guildID] = true
	return true
}

func (s *CleanupService) release(guildID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.running, guildID)
}

// SweepGuild deletes up to count-Target zero-use invites, oldest first,
// when the guild has at least MaxInvites invites.
func (s *CleanupService) SweepGuild(ctx context.Context, guildID string) (*SweepResult, error) {
	if !s.acquire(guildID) {
		return nil, ErrSweepInProgress
	}
	defer s.release(guildID)

	invites, err := s.snapshots.Refresh(ctx, guildID)
	if err != nil {
		return nil, err
	}

	result := &SweepResult{GuildID: guildID, Before: len(invites), After: len(invites)}
	if len(invites) < s.cfg.MaxInvites {
		result.Skipped = true
		return result, nil
	}

	candidates := SelectSweepCandidates(invites, len(invites)-s.cfg.Target)
	log.Printf("[Cleanup] Guild %s has %d invites, deleting %d unused", guildID, len(invites), len(candidates))

	for i, inv := range candidates {
		if i > 0 && s.cfg.DeleteDelay > 0 {
			select {
			case <-time.After(s.cfg.DeleteDelay):
			case <-ctx.Done():
				return result, ctx.Err()
			}
		}
		if err := s.platform.DeleteInvite(ctx, inv.Code); err != nil {
			log.Printf("[Cleanup] Failed to delete invite %s in guild %s: %v", inv.Code, guildID, err)
			result.Failed++
			continue
		}
		result.Deleted++
	}

	after, err := s.snapshots.Refresh(ctx, guildID)
	if err != nil {
		log.Printf("[Cleanup] Post-sweep refresh failed for guild %s: %v", guildID, err)
		result.After = result.Before - result.Deleted
		return result, nil
	}
	result.After = len(after)

	log.Printf("[Cleanup] Guild %s: deleted %d, failed %d, %d invites remain", guildID, result.Deleted, result.Failed, result.After)
	return result, nil
}

// PurgeGuild deletes every invite of a guild, used when an admin resets the server
func (s *CleanupService) PurgeGuild(ctx context.Context, guildID string) (*SweepResult, error) {
	if !s.acquire(guildID) {
		return nil, ErrSweepInProgress
	}
	defer s.release(guildID)

	invites, err := s.platform.GuildInvites(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invites for guild %s: %w", guildID, err)
	}

	result := &SweepResult{GuildID: guildID, Before: len(invites)}
	for i, inv := range invites {
		if i > 0 && s.cfg.DeleteDelay > 0 {
			select {
			case <-time.After(s.cfg.DeleteDelay):
			case <-ctx.Done():
				return result, ctx.Err()
			}
		}
		if err := s.platform.DeleteInvite(ctx, inv.Code); err != nil {
			result.Failed++
			continue
		}
		result.Deleted++
	}
	result.After = result.Before - result.Deleted

	if err := s.snapshots.ledger.SetSnapshot(ctx, guildID, models.InviteSnapshot{}); err != nil {
		return result, err
	}
	log.Printf("[Cleanup] Purged %d invites in guild %s (%d failed)", result.Deleted, guildID, result.Failed)
	return result, nil
}

// SweepAll sweeps every guild the bot is in, one after another
func (s *CleanupService) SweepAll(ctx context.Context) []SweepResult {
	guilds, err := s.platform.Guilds(ctx)
	if err != nil {
		log.Printf("[Cleanup] Failed to list guilds: %v", err)
		return nil
	}

	var results []SweepResult
	for _, g := range guilds {
		res, err := s.SweepGuild(ctx, g)
		if err != nil {
			log.Printf("[Cleanup] Sweep of guild %s failed: %v", g, err)
			continue
		}
		results = append(results, *res)
	}
	return results
}

// SelectSweepCandidates picks at most limit zero-use invites, oldest created first
func SelectSweepCandidates(invites []models.Invite, limit int) []models.Invite {
	if limit <= 0 {
		return nil
	}

	var unused []models.Invite
	for _, inv := range invites {
		if inv.Uses == 0 {
			unused = append(unused, inv)
		}
	}
	sort.SliceStable(unused, func(i, j int) bool {
		return unused[i].CreatedAt.Before(unused[j].CreatedAt)
	})

	if len(unused) > limit {
		unused = unused[:limit]
	}
	return unused
}
