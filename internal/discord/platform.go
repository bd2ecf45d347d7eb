package discord

import (
	"context"
	"errors"
	"fmt"

	"invite-tracker/internal/models"
	"invite-tracker/internal/platform"

	"github.com/bwmarrin/discordgo"
)

// Platform adapts a discordgo session to platform.Platform
type Platform struct {
	session *discordgo.Session
}

// NewSession creates a bot session with the intents invite tracking needs.
// Rate limits are surfaced as errors so the retry policy decides when to try again.
func NewSession(token string) (*discordgo.Session, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers | discordgo.IntentsGuildInvites
	s.ShouldRetryOnRateLimit = false
	return s, nil
}

func NewPlatform(session *discordgo.Session) *Platform {
	return &Platform{session: session}
}

func (p *Platform) GuildInvites(ctx context.Context, guildID string) ([]models.Invite, error) {
	invs, err := p.session.GuildInvites(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, translate("list invites", err)
	}

	out := make([]models.Invite, 0, len(invs))
	for _, inv := range invs {
		out = append(out, ConvertInvite(inv))
	}
	return out, nil
}

func (p *Platform) DeleteInvite(ctx context.Context, code string) error {
	if _, err := p.session.InviteDelete(code, discordgo.WithContext(ctx)); err != nil {
		return translate("delete invite", err)
	}
	return nil
}

func (p *Platform) SendMessage(ctx context.Context, channelID, content string) error {
	if _, err := p.session.ChannelMessageSend(channelID, content, discordgo.WithContext(ctx)); err != nil {
		return translate("send message", err)
	}
	return nil
}

// Guilds returns the guilds known to the gateway state, falling back to REST
func (p *Platform) Guilds(ctx context.Context) ([]string, error) {
	if p.session.State != nil {
		p.session.State.RLock()
		ids := make([]string, 0, len(p.session.State.Guilds))
		for _, g := range p.session.State.Guilds {
			ids = append(ids, g.ID)
		}
		p.session.State.RUnlock()
		if len(ids) > 0 {
			return ids, nil
		}
	}

	guilds, err := p.session.UserGuilds(200, "", "", false, discordgo.WithContext(ctx))
	if err != nil {
		return nil, translate("list guilds", err)
	}
	ids := make([]string, 0, len(guilds))
	for _, g := range guilds {
		ids = append(ids, g.ID)
	}
	return ids, nil
}

func (p *Platform) IsMember(ctx context.Context, guildID, userID string) (bool, error) {
	_, err := p.session.GuildMember(guildID, userID, discordgo.WithContext(ctx))
	if err == nil {
		return true, nil
	}
	err = translate("check member", err)
	if platform.IsNotFound(err) {
		return false, nil
	}
	return false, err
}

// ConvertInvite maps a discordgo invite to the domain shape
func ConvertInvite(inv *discordgo.Invite) models.Invite {
	out := models.Invite{
		Code:      inv.Code,
		Uses:      inv.Uses,
		CreatedAt: inv.CreatedAt,
	}
	if inv.Inviter != nil {
		out.InviterID = inv.Inviter.ID
		out.InviterName = inv.Inviter.Username
		out.InviterBot = inv.Inviter.Bot
	}
	return out
}

func translate(op string, err error) error {
	var rl *discordgo.RateLimitError
	if errors.As(err, &rl) && rl.RateLimit != nil && rl.TooManyRequests != nil {
		return &platform.RateLimitError{Op: op, RetryAfter: rl.RetryAfter}
	}

	var rest *discordgo.RESTError
	if errors.As(err, &rest) && rest.Response != nil {
		return &platform.RequestError{Op: op, StatusCode: rest.Response.StatusCode, Err: err}
	}

	return fmt.Errorf("%s: %w", op, err)
}
