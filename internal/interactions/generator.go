package interactions

import (
	"context"
	"errors"
	"fmt"

	"invite-tracker/internal/models"
	"invite-tracker/internal/services"
)

func generatorEmbed(cfg models.GeneratorConfig) *Embed {
	return &Embed{Title: cfg.Title, Description: cfg.Text, Image: cfg.Image}
}

func generatorButtons() []Button {
	return []Button{
		{Label: "Claim Account", ActionID: NewActionID("claim")},
		{Label: "Check Invites", Style: StyleSecondary, ActionID: NewActionID("my-invites")},
	}
}

func (b *Bot) generator(ctx context.Context, req *Request) (*Reply, error) {
	return &Reply{
		Embed:   generatorEmbed(b.svc.Config.Generator(req.GuildID)),
		Buttons: generatorButtons(),
	}, nil
}

func (b *Bot) claimAccount(ctx context.Context, req *Request) (*Reply, error) {
	claim, err := b.svc.Stock.Claim(ctx, req.GuildID, req.UserID)
	if errors.Is(err, services.ErrInsufficientInvites) {
		return &Reply{
			Embed: &Embed{
				Title:       "Not enough invites ❌",
				Description: "You need at least **1** invite to claim an account.",
			},
			Ephemeral: true,
		}, nil
	}
	if err != nil {
		return nil, err
	}
	return private(fmt.Sprintf("✅ Successfully claimed an account! Your account:\n```%s```", claim.Account)), nil
}

func (b *Bot) restock(ctx context.Context, req *Request) (*Reply, error) {
	return &Reply{Modal: &Modal{
		ActionID: NewActionID("restock"),
		Title:    "Restock Accounts",
		Inputs: []TextInput{
			{ID: "accounts", Label: "Accounts (one per line)", Placeholder: "email1:pass1\nemail2:pass2", Paragraph: true},
		},
	}}, nil
}

func (b *Bot) saveRestock(ctx context.Context, req *Request) (*Reply, error) {
	n, err := b.svc.Stock.RestockText(ctx, req.GuildID, req.Values["accounts"])
	if err != nil {
		return nil, err
	}
	return private(fmt.Sprintf("✅ Added %d accounts to stock.", n)), nil
}

func generatorSetupButtons() []Button {
	return []Button{
		{Label: "Edit", ActionID: NewActionID("generator-edit")},
		{Label: "Confirm", Style: StyleSuccess, ActionID: NewActionID("generator-publish")},
	}
}

func (b *Bot) setupGenerator(ctx context.Context, req *Request) (*Reply, error) {
	return &Reply{
		Embed:     generatorEmbed(b.svc.Config.Generator(req.GuildID)),
		Buttons:   generatorSetupButtons(),
		Ephemeral: true,
	}, nil
}

func (b *Bot) editGenerator(ctx context.Context, req *Request) (*Reply, error) {
	cfg := b.svc.Config.Generator(req.GuildID)
	return &Reply{Modal: &Modal{
		ActionID: NewActionID("generator"),
		Title:    "Edit /generator Embed",
		Inputs: []TextInput{
			{ID: "title", Label: "Title", Value: cfg.Title},
			{ID: "text", Label: "Text", Value: cfg.Text, Paragraph: true},
			{ID: "image", Label: "Image URL (optional)", Value: cfg.Image, Optional: true},
		},
	}}, nil
}

func (b *Bot) saveGenerator(ctx context.Context, req *Request) (*Reply, error) {
	cfg := models.GeneratorConfig{
		Title: req.Values["title"],
		Text:  req.Values["text"],
		Image: req.Values["image"],
	}
	if err := b.svc.Config.UpdateGenerator(ctx, req.GuildID, cfg); err != nil {
		return nil, err
	}
	return &Reply{
		Embed:     generatorEmbed(b.svc.Config.Generator(req.GuildID)),
		Buttons:   generatorSetupButtons(),
		Ephemeral: true,
	}, nil
}

func (b *Bot) publishGenerator(ctx context.Context, req *Request) (*Reply, error) {
	return b.generator(ctx, req)
}

func (b *Bot) help(ctx context.Context, req *Request) (*Reply, error) {
	return &Reply{
		Embed: &Embed{
			Title: "Help",
			Fields: []Field{
				{
					Name: "Setup Commands",
					Value: "- `/setup-generator` to configure & publish the generator embed\n" +
						"- `/setup-social` to configure & publish the social embed\n" +
						"- `/setup-invites` to configure join-message tracking",
				},
				{
					Name:  "Generator",
					Value: "- `/restock` to add accounts\n- Users click the generator embed to claim",
				},
				{
					Name: "Rewards",
					Value: "- `/invites` to check your balance\n- `/social`, `/compensation` and `/refill` for boosts\n" +
						"- `/members` to trade invites for members",
				},
			},
		},
		Ephemeral: true,
	}, nil
}
