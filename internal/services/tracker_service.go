package services

import (
	"context"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"invite-tracker/internal/models"
	"invite-tracker/internal/platform"
)

const defaultJoinTimeout = time.Minute

// TrackerConfig tunes join attribution
type TrackerConfig struct {
	AltAccountDays  int
	SettleDelay     time.Duration
	RejoinDetection bool
	// JoinTimeout bounds one join once it holds the join lock
	JoinTimeout time.Duration
}

// Attribution is the result of handling one join
type Attribution struct {
	Outcome   Outcome
	Invite    *models.Invite
	InviterID string
	Balance   models.Balance
	Notified  bool
}

// TrackerService attributes member joins to inviters
type TrackerService struct {
	snapshots *SnapshotService
	ledger    *InviteLedger
	platform  platform.Platform
	cfg       TrackerConfig
	now       func() time.Time

	// joinMu serializes join handling across every guild
	joinMu sync.Mutex
}

func NewTrackerService(snapshots *SnapshotService, ledger *InviteLedger, p platform.Platform, cfg TrackerConfig) *TrackerService {
	return &TrackerService{
		snapshots: snapshots,
		ledger:    ledger,
		platform:  p,
		cfg:       cfg,
		now:       time.Now,
	}
}

// HandleJoin waits for the platform counters to settle, diffs the invite
// snapshot, classifies the join and persists the outcome. The snapshot is
// replaced before classification, so replaying a join credits nobody.
//
// The deadline starts once the join lock is held and ignores the caller's
// cancellation, so a join queued behind others still refreshes the snapshot.
// Skipping that refresh would leave its use in the next join's diff.
func (s *TrackerService) HandleJoin(ctx context.Context, ev JoinEvent) (*Attribution, error) {
	if ev.Bot {
		return &Attribution{Outcome: OutcomeBotMember}, nil
	}

	s.joinMu.Lock()
	defer s.joinMu.Unlock()

	timeout := s.cfg.JoinTimeout
	if timeout <= 0 {
		timeout = defaultJoinTimeout
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	if s.cfg.SettleDelay > 0 {
		select {
		case <-time.After(s.cfg.SettleDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	prev := s.snapshots.Get(ev.GuildID)
	invites, err := s.snapshots.Refresh(ctx, ev.GuildID)
	if err != nil {
		return nil, err
	}

	used := ResolveUsedInvite(prev, invites)
	now := s.now().UTC()

	var previous *models.MemberRecord
	if rec, ok := s.ledger.Member(ev.GuildID, ev.UserID); ok {
		previous = &rec
	}

	outcome := ClassifyJoin(ClassifyInput{
		Member:          ev,
		Invite:          used,
		Previous:        previous,
		Now:             now,
		AltDays:         s.cfg.AltAccountDays,
		RejoinDetection: s.cfg.RejoinDetection,
	})

	result := &Attribution{Outcome: outcome, Invite: used}
	if used != nil && used.HasInviter() {
		result.InviterID = used.InviterID
	}

	// a join that cannot be attributed does not overwrite a live record
	if outcome == OutcomeUnresolved && previous != nil && !previous.HasLeft() {
		log.Printf("[Tracker] Join of %s in guild %s could not be attributed", ev.UserID, ev.GuildID)
		return result, nil
	}

	err = s.ledger.Update(ctx, ev.GuildID, func(b *models.GuildBucket) error {
		rec := models.MemberRecord{JoinedAt: now}
		if result.InviterID != "" {
			inviter := result.InviterID
			rec.InviterID = &inviter
		}
		b.Members[ev.UserID] = rec

		if outcome.Credited() {
			result.Balance = credit(b, result.InviterID, outcome == OutcomeFake)
		} else if result.InviterID != "" {
			result.Balance = models.BalanceOf(b.Users[result.InviterID])
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[Tracker] Join of %s in guild %s: %s (inviter %q)", ev.UserID, ev.GuildID, outcome, result.InviterID)

	result.Notified = s.notify(ctx, ev, result)
	return result, nil
}

func (s *TrackerService) notify(ctx context.Context, ev JoinEvent, result *Attribution) bool {
	settings := s.ledger.Settings(ev.GuildID)
	if settings.ChannelID == "" || result.Invite == nil {
		return false
	}

	var template string
	switch {
	case result.Outcome.Credited():
		template = settings.JoinMessage()
	case result.Outcome.NoCredit():
		template = settings.NoCreditMessage()
	default:
		return false
	}

	msg := FormatJoinMessage(template, ev.UserName, ev.UserID, result.Invite.InviterName, result.InviterID, result.Balance.Valid)
	if err := s.platform.SendMessage(ctx, settings.ChannelID, msg); err != nil {
		log.Printf("[Tracker] Failed to send join message in guild %s: %v", ev.GuildID, err)
		return false
	}
	return true
}

// HandleLeave stamps the leave time on the member record
func (s *TrackerService) HandleLeave(ctx context.Context, guildID, userID string) error {
	return s.ledger.RecordLeave(ctx, guildID, userID, s.now())
}

// FormatJoinMessage fills the placeholders of a join template
func FormatJoinMessage(template, joinerName, joinerID, inviterName, inviterID string, amount int) string {
	inviterMention := "Unknown"
	if inviterID != "" {
		inviterMention = "<@" + inviterID + ">"
	}
	if inviterName == "" {
		inviterName = "Unknown"
	}

	r := strings.NewReplacer(
		models.PlaceholderJoinerName, joinerName,
		models.PlaceholderJoinerMention, "<@"+joinerID+">",
		models.PlaceholderInviterName, inviterName,
		models.PlaceholderInviterMention, inviterMention,
		models.PlaceholderAmount, strconv.Itoa(amount),
	)
	return r.Replace(template)
}
