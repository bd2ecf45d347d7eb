package interactions

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"invite-tracker/internal/services"
)

func platformButtons(platforms []string, prefix string) []Button {
	buttons := make([]Button, 0, len(platforms))
	for _, p := range platforms {
		buttons = append(buttons, Button{Label: title(p), ActionID: NewActionID(prefix, p)})
	}
	return buttons
}

func serviceButtons(platform string, svcs []string, prefix string) []Button {
	buttons := make([]Button, 0, len(svcs))
	for _, s := range svcs {
		buttons = append(buttons, Button{Label: title(s), ActionID: NewActionID(prefix, platform, s)})
	}
	return buttons
}

func (b *Bot) socialEmbed(guildID string) *Embed {
	cfg := b.svc.Config.Social(guildID)
	return &Embed{Title: cfg.Title, Description: cfg.Text, Image: cfg.Image}
}

func (b *Bot) setupSocial(ctx context.Context, req *Request) (*Reply, error) {
	if key := req.Options["api_key"]; key != "" {
		if err := b.svc.Config.SetAPIKey(ctx, req.GuildID, key); err != nil {
			return nil, err
		}
	}

	buttons := []Button{{Label: "Edit Embed", ActionID: NewActionID("social-edit")}}
	for _, p := range b.svc.Config.Catalog().Platforms() {
		buttons = append(buttons, Button{Label: title(p) + " Pricing", Style: StyleSecondary, ActionID: NewActionID("social-pricing", p)})
	}
	buttons = append(buttons, Button{Label: "Publish", Style: StyleSuccess, ActionID: NewActionID("social-publish")})

	return &Reply{Embed: b.socialEmbed(req.GuildID), Buttons: buttons, Ephemeral: true}, nil
}

func (b *Bot) editSocialEmbed(ctx context.Context, req *Request) (*Reply, error) {
	cfg := b.svc.Config.Social(req.GuildID)
	return &Reply{Modal: &Modal{
		ActionID: NewActionID("social-embed"),
		Title:    "Edit /social Embed",
		Inputs: []TextInput{
			{ID: "title", Label: "Title", Value: cfg.Title},
			{ID: "text", Label: "Text", Value: cfg.Text, Paragraph: true},
			{ID: "image", Label: "Image URL (optional)", Value: cfg.Image, Optional: true},
		},
	}}, nil
}

func (b *Bot) saveSocialEmbed(ctx context.Context, req *Request) (*Reply, error) {
	err := b.svc.Config.UpdateSocialEmbed(ctx, req.GuildID, req.Values["title"], req.Values["text"], req.Values["image"])
	if err != nil {
		return nil, err
	}
	return &Reply{Content: "✅ Embed updated.", Embed: b.socialEmbed(req.GuildID), Ephemeral: true}, nil
}

func (b *Bot) showPricing(ctx context.Context, req *Request) (*Reply, error) {
	platform, ok := resolvePlatform(b.svc.Config.Catalog(), req.Args)
	if !ok {
		return nil, services.ErrUnknownService
	}

	svcs := b.svc.Config.Catalog().Services(platform)
	var fields []Field
	for _, s := range svcs {
		spec, err := b.svc.Config.Pricing(req.GuildID, platform, s)
		if err != nil {
			return nil, err
		}
		fields = append(fields, Field{
			Name:  title(s),
			Value: fmt.Sprintf("%d per invite, min %d invites", spec.PerInvite, spec.MinInvites),
		})
	}
	return &Reply{
		Embed:     &Embed{Title: title(platform) + " Pricing", Description: "Current Quantities:", Fields: fields},
		Buttons:   serviceButtons(platform, svcs, "social-price"),
		Ephemeral: true,
	}, nil
}

func (b *Bot) editPrice(ctx context.Context, req *Request) (*Reply, error) {
	platform, service, ok := resolveService(b.svc.Config.Catalog(), req.Args)
	if !ok {
		return nil, services.ErrUnknownService
	}
	spec, err := b.svc.Config.Pricing(req.GuildID, platform, service)
	if err != nil {
		return nil, err
	}
	return &Reply{Modal: &Modal{
		ActionID: NewActionID("social-price", platform, service),
		Title:    title(platform) + " " + title(service),
		Inputs: []TextInput{
			{ID: "per_invite", Label: "Quantity per invite", Value: fmt.Sprint(spec.PerInvite)},
			{ID: "min_invites", Label: "Minimum invites", Value: fmt.Sprint(spec.MinInvites)},
		},
	}}, nil
}

func (b *Bot) savePrice(ctx context.Context, req *Request) (*Reply, error) {
	platform, service, ok := resolveService(b.svc.Config.Catalog(), req.Args)
	if !ok {
		return nil, services.ErrUnknownService
	}
	perInvite, ok1 := atoi(req.Values["per_invite"])
	minInvites, ok2 := atoi(req.Values["min_invites"])
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("%w: enter whole numbers", services.ErrInvalidAmount)
	}
	if err := b.svc.Config.SetServicePricing(ctx, req.GuildID, platform, service, perInvite, minInvites); err != nil {
		return nil, err
	}
	return private(fmt.Sprintf("✅ %s %s: %d per invite, min %d invites.", title(platform), title(service), perInvite, minInvites)), nil
}

func (b *Bot) socialReply(guildID string) (*Reply, error) {
	if b.svc.Config.Social(guildID).APIKey == "" {
		return nil, services.ErrNoAPIKey
	}
	return &Reply{
		Embed:   b.socialEmbed(guildID),
		Buttons: platformButtons(b.svc.Config.Catalog().Platforms(), "boost"),
	}, nil
}

func (b *Bot) publishSocial(ctx context.Context, req *Request) (*Reply, error) {
	return b.socialReply(req.GuildID)
}

func (b *Bot) social(ctx context.Context, req *Request) (*Reply, error) {
	return b.socialReply(req.GuildID)
}

func (b *Bot) showBoostServices(ctx context.Context, req *Request) (*Reply, error) {
	platform, ok := resolvePlatform(b.svc.Config.Catalog(), req.Args)
	if !ok {
		return nil, services.ErrUnknownService
	}

	svcs := b.svc.Config.Catalog().Services(platform)
	var lines []string
	for _, s := range svcs {
		spec, err := b.svc.Config.Pricing(req.GuildID, platform, s)
		if err != nil {
			return nil, err
		}
		line := fmt.Sprintf("%d %s = 1 invite", spec.PerInvite, title(s))
		if spec.MinInvites > 1 {
			line += fmt.Sprintf(" (min %d invites)", spec.MinInvites)
		}
		lines = append(lines, line)
	}

	return &Reply{
		Embed: &Embed{
			Title:       title(platform) + " Boost",
			Description: fmt.Sprintf("Boost your %s account for __FREE!__\n\n%s", title(platform), strings.Join(lines, "\n")),
		},
		Buttons:   serviceButtons(platform, svcs, "order"),
		Ephemeral: true,
	}, nil
}

func (b *Bot) orderForm(ctx context.Context, req *Request) (*Reply, error) {
	platform, service, ok := resolveService(b.svc.Config.Catalog(), req.Args)
	if !ok {
		return nil, services.ErrUnknownService
	}
	spec, err := b.svc.Config.Pricing(req.GuildID, platform, service)
	if err != nil {
		return nil, err
	}
	return &Reply{Modal: &Modal{
		ActionID: NewActionID("order", platform, service),
		Title:    title(platform) + " " + title(service),
		Inputs: []TextInput{
			{ID: "invites", Label: "Invites to spend", Placeholder: fmt.Sprintf("Min %d invites", spec.MinInvites)},
			{ID: "link", Label: "Link", Placeholder: fmt.Sprintf("https://%s.com/...", platform)},
		},
	}}, nil
}

func (b *Bot) placeOrder(ctx context.Context, req *Request) (*Reply, error) {
	platform, service, ok := resolveService(b.svc.Config.Catalog(), req.Args)
	if !ok {
		return nil, services.ErrUnknownService
	}
	invites, ok := atoi(req.Values["invites"])
	if !ok {
		return nil, fmt.Errorf("%w: invalid number", services.ErrInvalidAmount)
	}

	_, err := b.svc.Boost.PlaceOrder(ctx, services.OrderRequest{
		GuildID:  req.GuildID,
		UserID:   req.UserID,
		Platform: platform,
		Service:  service,
		Link:     req.Values["link"],
		Invites:  invites,
	})
	if err != nil {
		return nil, err
	}
	return private("✅ Order placed! May take up to 48h."), nil
}

func (b *Bot) compensation(ctx context.Context, req *Request) (*Reply, error) {
	return &Reply{
		Embed: &Embed{
			Title: "Social Boost Issues / Compensation",
			Description: "Didn’t receive what you claimed?\nAccidentally used the wrong link?\n\n" +
				"**Select your platform to refund invites!**",
		},
		Buttons: platformButtons(b.svc.Config.Catalog().Platforms(), "comp"),
	}, nil
}

func (b *Bot) compensationServices(ctx context.Context, req *Request) (*Reply, error) {
	platform, ok := resolvePlatform(b.svc.Config.Catalog(), req.Args)
	if !ok {
		return nil, services.ErrUnknownService
	}
	return &Reply{
		Embed:     &Embed{Title: title(platform) + " Issues", Description: "Which service had an issue?"},
		Buttons:   serviceButtons(platform, b.svc.Config.Catalog().Services(platform), "comp-svc"),
		Ephemeral: true,
	}, nil
}

func (b *Bot) compensate(ctx context.Context, req *Request) (*Reply, error) {
	platform, service, ok := resolveService(b.svc.Config.Catalog(), req.Args)
	if !ok {
		return nil, services.ErrUnknownService
	}
	res, err := b.svc.Boost.Compensate(ctx, req.GuildID, req.UserID, platform, service)
	if err != nil {
		return nil, err
	}
	return private(res.Message()), nil
}

func (b *Bot) refillPlatforms() []string {
	var out []string
	catalog := b.svc.Config.Catalog()
	for _, p := range catalog.Platforms() {
		if len(catalog.RefillableServices(p)) > 0 {
			out = append(out, p)
		}
	}
	return out
}

func (b *Bot) refill(ctx context.Context, req *Request) (*Reply, error) {
	return &Reply{
		Embed: &Embed{
			Title:       "Refill your Boosts",
			Description: "Lost any Followers, Likes, Views?\n**Select your platform to refill!**",
		},
		Buttons: platformButtons(b.refillPlatforms(), "refill"),
	}, nil
}

func (b *Bot) refillServices(ctx context.Context, req *Request) (*Reply, error) {
	platform, ok := resolvePlatform(b.svc.Config.Catalog(), req.Args)
	if !ok {
		return nil, services.ErrUnknownService
	}

	catalog := b.svc.Config.Catalog()
	svcs := catalog.RefillableServices(platform)
	windows := make([]string, 0, len(svcs))
	for _, s := range svcs {
		spec, _ := catalog.Lookup(platform, s)
		windows = append(windows, fmt.Sprintf("%s (%dd)", title(s), spec.RefillDays))
	}
	return &Reply{
		Embed:     &Embed{Title: title(platform) + " Refill", Description: strings.Join(windows, ", ")},
		Buttons:   serviceButtons(platform, svcs, "refill-svc"),
		Ephemeral: true,
	}, nil
}

func (b *Bot) refillOrders(ctx context.Context, req *Request) (*Reply, error) {
	platform, service, ok := resolveService(b.svc.Config.Catalog(), req.Args)
	if !ok {
		return nil, services.ErrUnknownService
	}
	res, err := b.svc.Boost.Refill(ctx, req.GuildID, req.UserID, platform, service)
	if errors.Is(err, services.ErrNoOrders) {
		return private("No recent orders to refill."), nil
	}
	if err != nil {
		return nil, err
	}
	return private(res.Message()), nil
}
