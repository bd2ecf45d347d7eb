package services

import (
	"time"

	"invite-tracker/internal/models"
)

// Outcome is the classification of one member join
type Outcome string

const (
	OutcomeBotMember  Outcome = "bot_member"
	OutcomeUnresolved Outcome = "unresolved"
	OutcomeSelfInvite Outcome = "self_invite"
	OutcomeBotInviter Outcome = "bot_inviter"
	OutcomeRejoin     Outcome = "rejoin"
	OutcomeFake       Outcome = "fake"
	OutcomeRegular    Outcome = "regular"
)

// Credited reports whether the outcome changes the inviter's counters
func (o Outcome) Credited() bool {
	return o == OutcomeFake || o == OutcomeRegular
}

// NoCredit reports whether the join had an inviter who earns nothing for it
func (o Outcome) NoCredit() bool {
	return o == OutcomeSelfInvite || o == OutcomeBotInviter
}

// JoinEvent is a member join as delivered by the gateway
type JoinEvent struct {
	GuildID        string
	UserID         string
	UserName       string
	Bot            bool
	AccountCreated time.Time
}

// ClassifyInput carries everything ClassifyJoin looks at
type ClassifyInput struct {
	Member   JoinEvent
	Invite   *models.Invite
	Previous *models.MemberRecord
	Now      time.Time
	AltDays  int
	// RejoinDetection withholds credit from members who left and came back
	RejoinDetection bool
}

// ClassifyJoin applies the attribution rules in order: bot member, unresolved
// invite, self-invite, bot inviter, rejoin, account age.
func ClassifyJoin(in ClassifyInput) Outcome {
	switch {
	case in.Member.Bot:
		return OutcomeBotMember
	case in.Invite == nil || !in.Invite.HasInviter():
		return OutcomeUnresolved
	case in.Invite.InviterID == in.Member.UserID:
		return OutcomeSelfInvite
	case in.Invite.InviterBot:
		return OutcomeBotInviter
	case in.RejoinDetection && in.Previous != nil && in.Previous.HasLeft():
		return OutcomeRejoin
	case AccountAgeDays(in.Member.AccountCreated, in.Now) <= in.AltDays:
		return OutcomeFake
	}
	return OutcomeRegular
}

// AccountAgeDays is the number of whole days between created and now
func AccountAgeDays(created, now time.Time) int {
	return int(now.Sub(created) / (24 * time.Hour))
}
