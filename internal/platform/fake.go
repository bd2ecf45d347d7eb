package platform

import (
	"context"
	"errors"
	"sync"

	"invite-tracker/internal/models"
)

// SentMessage records one SendMessage call on Fake
type SentMessage struct {
	ChannelID string
	Content   string
}

// Fake is an in-memory Platform for tests and local dry runs
type Fake struct {
	mu       sync.Mutex
	invites  map[string][]models.Invite
	members  map[string]map[string]bool
	messages []SentMessage
	deleted  []string
	calls    map[string]int

	// FailInvites makes the next N GuildInvites calls fail with a transient error
	FailInvites int
	// DeleteErrs maps an invite code to the error DeleteInvite returns for it
	DeleteErrs map[string]error
}

func NewFake() *Fake {
	return &Fake{
		invites:    make(map[string][]models.Invite),
		members:    make(map[string]map[string]bool),
		calls:      make(map[string]int),
		DeleteErrs: make(map[string]error),
	}
}

// SetInvites replaces the live invites of a guild
func (f *Fake) SetInvites(guildID string, invites []models.Invite) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invites[guildID] = append([]models.Invite(nil), invites...)
}

// Use bumps the use count of an invite as if someone joined through it
func (f *Fake) Use(guildID, code string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.invites[guildID] {
		if f.invites[guildID][i].Code == code {
			f.invites[guildID][i].Uses++
		}
	}
}

// AddMember marks userID as a member of guildID
func (f *Fake) AddMember(guildID, userID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.members[guildID] == nil {
		f.members[guildID] = make(map[string]bool)
	}
	f.members[guildID][userID] = true
}

// Messages returns every message sent so far
func (f *Fake) Messages() []SentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]SentMessage(nil), f.messages...)
}

// Deleted returns the codes of every deleted invite
func (f *Fake) Deleted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

// Calls returns how many times a method was invoked
func (f *Fake) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *Fake) GuildInvites(ctx context.Context, guildID string) ([]models.Invite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["GuildInvites"]++
	if f.FailInvites > 0 {
		f.FailInvites--
		return nil, errors.New("gateway timeout")
	}
	return append([]models.Invite(nil), f.invites[guildID]...), nil
}

func (f *Fake) DeleteInvite(ctx context.Context, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["DeleteInvite"]++
	if err, ok := f.DeleteErrs[code]; ok {
		return err
	}
	for gid, invs := range f.invites {
		for i, inv := range invs {
			if inv.Code == code {
				f.invites[gid] = append(invs[:i:i], invs[i+1:]...)
				f.deleted = append(f.deleted, code)
				return nil
			}
		}
	}
	return &RequestError{Op: "delete invite", StatusCode: 404, Err: errors.New("unknown invite")}
}

func (f *Fake) SendMessage(ctx context.Context, channelID, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["SendMessage"]++
	f.messages = append(f.messages, SentMessage{ChannelID: channelID, Content: content})
	return nil
}

func (f *Fake) Guilds(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["Guilds"]++
	ids := make([]string, 0, len(f.invites))
	for id := range f.invites {
		ids = append(ids, id)
	}
	return ids, nil
}

func (f *Fake) IsMember(ctx context.Context, guildID, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["IsMember"]++
	return f.members[guildID][userID], nil
}
