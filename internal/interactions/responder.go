package interactions

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"
)

const handlerTimeout = 30 * time.Second

// requestFrom converts a gateway interaction into a routable request.
// ok is false for interaction types the bot does not handle.
func requestFrom(i *discordgo.Interaction, adminUserID string) (kind Kind, id string, req *Request, ok bool) {
	req = &Request{GuildID: i.GuildID}

	switch {
	case i.Member != nil && i.Member.User != nil:
		req.UserID = i.Member.User.ID
		req.UserName = i.Member.User.Username
		req.Admin = i.Member.Permissions&discordgo.PermissionAdministrator != 0
	case i.User != nil:
		req.UserID = i.User.ID
		req.UserName = i.User.Username
	}
	if adminUserID != "" && req.UserID == adminUserID {
		req.Admin = true
	}

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		data := i.ApplicationCommandData()
		req.Options = make(map[string]string, len(data.Options))
		for _, opt := range data.Options {
			switch opt.Type {
			case discordgo.ApplicationCommandOptionInteger:
				req.Options[opt.Name] = strconv.FormatInt(opt.IntValue(), 10)
			case discordgo.ApplicationCommandOptionString, discordgo.ApplicationCommandOptionUser:
				if s, isString := opt.Value.(string); isString {
					req.Options[opt.Name] = s
				}
			}
		}
		return KindCommand, data.Name, req, true

	case discordgo.InteractionMessageComponent:
		return KindAction, i.MessageComponentData().CustomID, req, true

	case discordgo.InteractionModalSubmit:
		data := i.ModalSubmitData()
		req.Values = make(map[string]string)
		for _, c := range data.Components {
			row, isRow := c.(*discordgo.ActionsRow)
			if !isRow {
				continue
			}
			for _, rc := range row.Components {
				if in, isInput := rc.(*discordgo.TextInput); isInput {
					req.Values[in.CustomID] = in.Value
				}
			}
		}
		return KindModal, data.CustomID, req, true
	}
	return 0, "", nil, false
}

// OnInteraction is the discordgo handler for interaction events
func (b *Bot) OnInteraction(s *discordgo.Session, ic *discordgo.InteractionCreate) {
	kind, id, req, ok := requestFrom(ic.Interaction, b.opts.AdminUserID)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	if b.router.Deferred(kind, id) {
		ack := &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
		}
		if err := s.InteractionRespond(ic.Interaction, ack); err != nil {
			log.Printf("[Interactions] Failed to acknowledge %s %q: %v", kind, id, err)
			return
		}
		reply := b.Dispatch(ctx, kind, id, req)
		if _, err := s.FollowupMessageCreate(ic.Interaction, false, reply.followup()); err != nil {
			log.Printf("[Interactions] Failed to send follow-up for %s %q: %v", kind, id, err)
		}
		return
	}

	reply := b.Dispatch(ctx, kind, id, req)
	if err := s.InteractionRespond(ic.Interaction, reply.response()); err != nil {
		log.Printf("[Interactions] Failed to respond to %s %q: %v", kind, id, err)
	}
}
