package interactions

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"invite-tracker/internal/models"
)

func settingsEmbed(s models.GuildSettings) *Embed {
	channel := "None"
	if s.ChannelID != "" {
		channel = "<#" + s.ChannelID + ">"
	}
	return &Embed{
		Description: fmt.Sprintf("**Join Message:**\n%s\n\n**Invite Tracking Channel:**\n%s", s.JoinMessage(), channel),
	}
}

func (b *Bot) setupInvites(ctx context.Context, req *Request) (*Reply, error) {
	return &Reply{
		Embed:     settingsEmbed(b.svc.Ledger.Settings(req.GuildID)),
		Buttons:   []Button{{Label: "Edit", ActionID: NewActionID("invites-edit")}},
		Ephemeral: true,
	}, nil
}

func (b *Bot) editInvitesSettings(ctx context.Context, req *Request) (*Reply, error) {
	s := b.svc.Ledger.Settings(req.GuildID)
	return &Reply{Modal: &Modal{
		ActionID: NewActionID("invites-settings"),
		Title:    "Edit Invite Settings",
		Inputs: []TextInput{
			{ID: "channel_id", Label: "Invite Tracking Channel ID (optional)", Value: s.ChannelID, Optional: true},
			{ID: "join_template", Label: "Join Message Template", Value: s.JoinMessage(), Paragraph: true},
			{ID: "no_credit_template", Label: "No-Credit Message Template (optional)", Value: s.NoCreditTemplate, Paragraph: true, Optional: true},
		},
	}}, nil
}

func (b *Bot) saveInvitesSettings(ctx context.Context, req *Request) (*Reply, error) {
	channel := strings.TrimSpace(req.Values["channel_id"])
	if _, err := strconv.ParseUint(channel, 10, 64); err != nil {
		channel = ""
	}
	settings := models.GuildSettings{
		ChannelID:        channel,
		JoinTemplate:     strings.TrimSpace(req.Values["join_template"]),
		NoCreditTemplate: strings.TrimSpace(req.Values["no_credit_template"]),
	}
	if err := b.svc.Ledger.UpdateSettings(ctx, req.GuildID, settings); err != nil {
		return nil, err
	}
	return &Reply{
		Content:   "✅ Settings updated.",
		Embed:     settingsEmbed(settings),
		Ephemeral: true,
	}, nil
}

func (b *Bot) invitesReply(guildID, userID string) *Reply {
	bal := b.svc.Ledger.Balance(guildID, userID)
	return &Reply{
		Embed: &Embed{
			Title:       "Invites",
			Description: mention(userID),
			Fields: []Field{{
				Name:  "Valid Invites",
				Value: fmt.Sprintf("**%d** (Real: %d - Fake: %d + Bonus: %d)", bal.Valid, bal.Regular, bal.Fake, bal.Bonus),
			}},
		},
		Ephemeral: true,
	}
}

func (b *Bot) showInvites(ctx context.Context, req *Request) (*Reply, error) {
	target := req.UserID
	if u := req.Options["user"]; u != "" {
		target = u
	}
	return b.invitesReply(req.GuildID, target), nil
}

func (b *Bot) showOwnInvites(ctx context.Context, req *Request) (*Reply, error) {
	return b.invitesReply(req.GuildID, req.UserID), nil
}
