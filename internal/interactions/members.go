package interactions

import (
	"context"
	"fmt"

	"invite-tracker/internal/services"
)

const pullBotPermissions = 268437507

func (b *Bot) members(ctx context.Context, req *Request) (*Reply, error) {
	desc := "__REAL__ Discord Members to your server for __FREE__ by using invites.\n\n"
	if b.opts.PullBotID != "" {
		desc += fmt.Sprintf("Before adding any members, add the bot to your designated server:\n"+
			"https://discord.com/oauth2/authorize?client_id=%s&permissions=%d&scope=bot\n", b.opts.PullBotID, pullBotPermissions)
	}
	desc += fmt.Sprintf("**# 1 Invite = %d Members**", services.MembersPerInvite)

	return &Reply{
		Embed: &Embed{Title: "Members Farm", Description: desc},
		Buttons: []Button{
			{Label: "Add Members", ActionID: NewActionID("members-add")},
			{Label: "Tutorial", Style: StyleSuccess, ActionID: NewActionID("members-tutorial")},
		},
	}, nil
}

func (b *Bot) membersForm(ctx context.Context, req *Request) (*Reply, error) {
	return &Reply{Modal: &Modal{
		ActionID: NewActionID("members"),
		Title:    "Add Members",
		Inputs: []TextInput{
			{ID: "invites", Label: "Invites to spend", Placeholder: fmt.Sprintf("%d-%d", services.MinFarmInvites, services.MaxFarmInvites)},
			{ID: "server_id", Label: "Server ID", Placeholder: "123456789012345678"},
			{ID: "server_name", Label: "Server display name"},
		},
	}}, nil
}

func (b *Bot) membersTutorial(ctx context.Context, req *Request) (*Reply, error) {
	return &Reply{
		Embed: &Embed{
			Title: "How to add members",
			Fields: []Field{
				{Name: "Step 1", Value: "Add the PULL bot to your designated server."},
				{Name: "Step 2", Value: "Enable **Developer Mode**: Discord Settings → Advanced → Developer Mode."},
				{Name: "Step 3", Value: "Right-click your server icon and choose **Copy Server ID**."},
				{Name: "Step 4", Value: "Press **Add Members** and fill in the form."},
			},
		},
		Ephemeral: true,
	}, nil
}

func (b *Bot) pullMembers(ctx context.Context, req *Request) (*Reply, error) {
	invites, ok := atoi(req.Values["invites"])
	if !ok {
		return nil, fmt.Errorf("%w: invalid number", services.ErrInvalidAmount)
	}
	limit, err := b.svc.Members.Pull(ctx, services.PullRequest{
		GuildID:     req.GuildID,
		UserID:      req.UserID,
		Invites:     invites,
		ServerID:    req.Values["server_id"],
		DisplayName: req.Values["server_name"],
	})
	if err != nil {
		return nil, err
	}
	return private(fmt.Sprintf("✅ Pulling up to **%d** members into your server. This can take a while.", limit)), nil
}
