package models

import (
	"time"
)

// Invite is a live invite link as reported by the platform
type Invite struct {
	Code        string    `json:"code"`
	Uses        int       `json:"uses"`
	InviterID   string    `json:"inviter_id,omitempty"`
	InviterName string    `json:"inviter_name,omitempty"`
	InviterBot  bool      `json:"inviter_bot,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// HasInviter reports whether the invite was created by a known user
func (i Invite) HasInviter() bool {
	return i.InviterID != ""
}

// InviteSnapshot maps invite code to its use count for one guild
type InviteSnapshot map[string]int

// SnapshotOf builds a snapshot from a list of live invites
func SnapshotOf(invites []Invite) InviteSnapshot {
	snap := make(InviteSnapshot, len(invites))
	for _, inv := range invites {
		snap[inv.Code] = inv.Uses
	}
	return snap
}

// Clone returns an independent copy of the snapshot
func (s InviteSnapshot) Clone() InviteSnapshot {
	out := make(InviteSnapshot, len(s))
	for code, uses := range s {
		out[code] = uses
	}
	return out
}

// MemberRecord is the join history of a single member in a guild
type MemberRecord struct {
	InviterID *string    `json:"inviter_id"`
	JoinedAt  time.Time  `json:"joined_at"`
	LeftAt    *time.Time `json:"left_at"`
}

// HasLeft reports whether the member left after their last join
func (m MemberRecord) HasLeft() bool {
	return m.LeftAt != nil
}

// InviteStats are the raw per-user ledger counters
type InviteStats struct {
	Regular int `json:"regular"`
	Fake    int `json:"fake"`
	Bonus   int `json:"bonus"`
}

// Valid is the spendable invite balance
func (s InviteStats) Valid() int {
	return s.Regular - s.Fake + s.Bonus
}

// Balance is InviteStats plus the derived spendable total
type Balance struct {
	Regular int `json:"regular"`
	Fake    int `json:"fake"`
	Bonus   int `json:"bonus"`
	Valid   int `json:"valid"`
}

// BalanceOf derives a Balance from stored stats
func BalanceOf(s InviteStats) Balance {
	return Balance{
		Regular: s.Regular,
		Fake:    s.Fake,
		Bonus:   s.Bonus,
		Valid:   s.Valid(),
	}
}
