package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"invite-tracker/internal/models"
	"invite-tracker/internal/storage"
)

// InviteLedger owns invites.json: per-guild counters, member history,
// the cached invite snapshot, notification settings and boost orders.
// Every mutation is persisted before it returns.
type InviteLedger struct {
	store storage.DocumentStore
	mu    sync.RWMutex
	doc   *models.InvitesDoc
}

func NewInviteLedger(store storage.DocumentStore) *InviteLedger {
	return &InviteLedger{
		store: store,
		doc:   models.NewInvitesDoc(),
	}
}

// Load reads the ledger from the store. A missing document starts empty.
func (l *InviteLedger) Load(ctx context.Context) error {
	doc := models.NewInvitesDoc()
	err := storage.LoadJSON(ctx, l.store, models.InvitesDocument, doc)
	if errors.Is(err, storage.ErrNotFound) {
		log.Printf("[Ledger] No %s found, starting empty", models.InvitesDocument)
		err = nil
	}
	if err != nil {
		return fmt.Errorf("failed to load ledger: %w", err)
	}

	doc.Normalize()
	doc.Version = models.DocumentVersion

	l.mu.Lock()
	l.doc = doc
	l.mu.Unlock()
	return nil
}

// Update runs fn on a copy of the guild bucket. The copy replaces the live
// bucket only when fn succeeds and the ledger is saved.
func (l *InviteLedger) Update(ctx context.Context, guildID string, fn func(b *models.GuildBucket) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	prev, existed := l.doc.Servers[guildID]
	var work *models.GuildBucket
	if existed && prev != nil {
		work = prev.Clone()
	} else {
		work = models.NewGuildBucket()
	}
	if err := fn(work); err != nil {
		return err
	}

	l.doc.Servers[guildID] = work
	if err := l.saveLocked(ctx); err != nil {
		if existed {
			l.doc.Servers[guildID] = prev
		} else {
			delete(l.doc.Servers, guildID)
		}
		return err
	}
	return nil
}

func (l *InviteLedger) saveLocked(ctx context.Context) error {
	if err := storage.SaveJSON(ctx, l.store, models.InvitesDocument, l.doc); err != nil {
		return fmt.Errorf("failed to save ledger: %w", err)
	}
	return nil
}

// Balance returns the counters of a user; unknown users are all zero
func (l *InviteLedger) Balance(guildID, userID string) models.Balance {
	l.mu.RLock()
	defer l.mu.RUnlock()

	b, ok := l.doc.Servers[guildID]
	if !ok {
		return models.Balance{}
	}
	return models.BalanceOf(b.Users[userID])
}

// AdjustBonus adds delta to the bonus counter. Nothing is clamped.
func (l *InviteLedger) AdjustBonus(ctx context.Context, guildID, userID string, delta int) (models.Balance, error) {
	var out models.Balance
	err := l.Update(ctx, guildID, func(b *models.GuildBucket) error {
		stats := b.Users[userID]
		stats.Bonus += delta
		b.Users[userID] = stats
		out = models.BalanceOf(stats)
		return nil
	})
	return out, err
}

// Spend deducts amount from bonus if the valid balance covers it
func (l *InviteLedger) Spend(ctx context.Context, guildID, userID string, amount int) (models.Balance, error) {
	var out models.Balance
	err := l.Update(ctx, guildID, func(b *models.GuildBucket) error {
		stats := b.Users[userID]
		if stats.Valid() < amount {
			return ErrInsufficientInvites
		}
		stats.Bonus -= amount
		b.Users[userID] = stats
		out = models.BalanceOf(stats)
		return nil
	})
	return out, err
}

// Credit adds one regular or fake invite to a user
func (l *InviteLedger) Credit(ctx context.Context, guildID, userID string, fake bool) (models.Balance, error) {
	var out models.Balance
	err := l.Update(ctx, guildID, func(b *models.GuildBucket) error {
		out = credit(b, userID, fake)
		return nil
	})
	return out, err
}

func credit(b *models.GuildBucket, userID string, fake bool) models.Balance {
	stats := b.Users[userID]
	if fake {
		stats.Fake++
	} else {
		stats.Regular++
	}
	b.Users[userID] = stats
	return models.BalanceOf(stats)
}

// Reset clears every user counter and the invite snapshot of a guild.
// Member history and orders are kept.
func (l *InviteLedger) Reset(ctx context.Context, guildID string) error {
	return l.Update(ctx, guildID, func(b *models.GuildBucket) error {
		b.Users = make(map[string]models.InviteStats)
		b.InviteCache = make(models.InviteSnapshot)
		return nil
	})
}

// Member returns the join history of a member
func (l *InviteLedger) Member(guildID, userID string) (models.MemberRecord, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	b, ok := l.doc.Servers[guildID]
	if !ok {
		return models.MemberRecord{}, false
	}
	rec, ok := b.Members[userID]
	return rec, ok
}

// RecordLeave stamps LeftAt on a member, creating the record if needed
func (l *InviteLedger) RecordLeave(ctx context.Context, guildID, userID string, at time.Time) error {
	return l.Update(ctx, guildID, func(b *models.GuildBucket) error {
		rec := b.Members[userID]
		left := at.UTC()
		rec.LeftAt = &left
		b.Members[userID] = rec
		return nil
	})
}

// Snapshot returns a copy of the cached invite snapshot
func (l *InviteLedger) Snapshot(guildID string) models.InviteSnapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()

	b, ok := l.doc.Servers[guildID]
	if !ok {
		return models.InviteSnapshot{}
	}
	return b.InviteCache.Clone()
}

// SetSnapshot replaces the cached invite snapshot
func (l *InviteLedger) SetSnapshot(ctx context.Context, guildID string, snap models.InviteSnapshot) error {
	return l.Update(ctx, guildID, func(b *models.GuildBucket) error {
		b.InviteCache = snap.Clone()
		return nil
	})
}

// Settings returns the notification settings of a guild
func (l *InviteLedger) Settings(guildID string) models.GuildSettings {
	l.mu.RLock()
	defer l.mu.RUnlock()

	b, ok := l.doc.Servers[guildID]
	if !ok {
		return models.GuildSettings{}
	}
	return b.Settings
}

// UpdateSettings replaces the notification settings of a guild
func (l *InviteLedger) UpdateSettings(ctx context.Context, guildID string, settings models.GuildSettings) error {
	return l.Update(ctx, guildID, func(b *models.GuildBucket) error {
		b.Settings = settings
		return nil
	})
}

// Orders returns a copy of a user's boost orders
func (l *InviteLedger) Orders(guildID, userID string) []models.Order {
	l.mu.RLock()
	defer l.mu.RUnlock()

	b, ok := l.doc.Servers[guildID]
	if !ok {
		return nil
	}
	return append([]models.Order(nil), b.Orders[userID]...)
}

// UserBalance pairs a user id with their balance
type UserBalance struct {
	UserID string `json:"user_id"`
	models.Balance
}

// TopBalances returns up to limit users ordered by valid invites, highest first
func (l *InviteLedger) TopBalances(guildID string, limit int) []UserBalance {
	l.mu.RLock()
	defer l.mu.RUnlock()

	b, ok := l.doc.Servers[guildID]
	if !ok {
		return nil
	}

	out := make([]UserBalance, 0, len(b.Users))
	for id, stats := range b.Users {
		out = append(out, UserBalance{UserID: id, Balance: models.BalanceOf(stats)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Valid != out[j].Valid {
			return out[i].Valid > out[j].Valid
		}
		return out[i].UserID < out[j].UserID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Guilds lists every guild that has a bucket
func (l *InviteLedger) Guilds() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ids := make([]string, 0, len(l.doc.Servers))
	for id := range l.doc.Servers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
