package interactions

import (
	"context"
	"log"
	"time"

	"invite-tracker/internal/services"

	"github.com/bwmarrin/discordgo"
)

const eventTimeout = time.Minute

// Attach registers the bot's gateway handlers on the session
func (b *Bot) Attach(s *discordgo.Session) {
	s.AddHandler(b.OnInteraction)
	s.AddHandler(b.onReady)
	s.AddHandler(b.onGuildCreate)
	s.AddHandler(b.onMemberAdd)
	s.AddHandler(b.onMemberRemove)
	s.AddHandler(b.onInviteCreate)
	s.AddHandler(b.onInviteDelete)
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	log.Printf("[Events] Logged in as %s in %d guilds", r.User.Username, len(r.Guilds))
	b.background(func(ctx context.Context) {
		b.svc.Snapshots.RefreshAll(ctx)
	})
}

func (b *Bot) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	guildID := g.ID
	b.background(func(ctx context.Context) {
		if _, err := b.svc.Snapshots.Refresh(ctx, guildID); err != nil {
			log.Printf("[Events] Failed to cache invites for guild %s: %v", guildID, err)
		}
	})
}

// joinEvent converts a member join into the tracker's input
func joinEvent(m *discordgo.Member) services.JoinEvent {
	ev := services.JoinEvent{GuildID: m.GuildID}
	if m.User == nil {
		return ev
	}
	ev.UserID = m.User.ID
	ev.UserName = m.User.Username
	ev.Bot = m.User.Bot
	if created, err := discordgo.SnowflakeTimestamp(m.User.ID); err == nil {
		ev.AccountCreated = created
	}
	return ev
}

func (b *Bot) onMemberAdd(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
	if m.Member == nil || m.User == nil {
		return
	}
	// HandleJoin applies its own deadline once the join lock is held
	ev := joinEvent(m.Member)
	if _, err := b.svc.Tracker.HandleJoin(context.Background(), ev); err != nil {
		log.Printf("[Events] Join of %s in guild %s failed: %v", ev.UserID, ev.GuildID, err)
	}
}

func (b *Bot) onMemberRemove(s *discordgo.Session, m *discordgo.GuildMemberRemove) {
	if m.Member == nil || m.User == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()

	if err := b.svc.Tracker.HandleLeave(ctx, m.GuildID, m.User.ID); err != nil {
		log.Printf("[Events] Leave of %s in guild %s failed: %v", m.User.ID, m.GuildID, err)
	}
}

func (b *Bot) onInviteCreate(s *discordgo.Session, inv *discordgo.InviteCreate) {
	if inv.Invite == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()

	if err := b.svc.Snapshots.TrackCreated(ctx, inv.GuildID, inv.Code, inv.Uses); err != nil {
		log.Printf("[Events] Failed to record invite %s: %v", inv.Code, err)
	}
}

func (b *Bot) onInviteDelete(s *discordgo.Session, inv *discordgo.InviteDelete) {
	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()

	if err := b.svc.Snapshots.TrackDeleted(ctx, inv.GuildID, inv.Code); err != nil {
		log.Printf("[Events] Failed to drop invite %s: %v", inv.Code, err)
	}
}
