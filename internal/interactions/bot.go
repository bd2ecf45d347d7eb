package interactions

import (
	"context"
	"strconv"
	"strings"

	"invite-tracker/internal/services"
)

// Services are the domain services the interaction layer drives
type Services struct {
	Ledger    *services.InviteLedger
	Snapshots *services.SnapshotService
	Tracker   *services.TrackerService
	Cleanup   *services.CleanupService
	Stock     *services.StockService
	Config    *services.GuildConfigService
	Boost     *services.BoostService
	Members   *services.MembersFarmService
	Audit     *services.AuditLog
}

// Options carries deployment settings the handlers need
type Options struct {
	AdminUserID  string
	AccountsFile string
	PullBotID    string
}

// Bot owns the routing table and the handlers behind it
type Bot struct {
	svc    Services
	opts   Options
	router *Router

	// background runs work that outlives the interaction
	background func(fn func(ctx context.Context))
}

func NewBot(svc Services, opts Options) *Bot {
	b := &Bot{
		svc:    svc,
		opts:   opts,
		router: NewRouter(),
		background: func(fn func(ctx context.Context)) {
			go fn(context.Background())
		},
	}
	b.routes()
	return b
}

// Router exposes the routing table
func (b *Bot) Router() *Router {
	return b.router
}

func (b *Bot) routes() {
	r := b.router

	r.Command("setup-invites", true, b.setupInvites)
	r.Action("invites-edit", true, b.editInvitesSettings)
	r.Modal("invites-settings", true, b.saveInvitesSettings)
	r.Command("invites", false, b.showInvites)
	r.Action("my-invites", false, b.showOwnInvites)

	r.Command("generator", false, b.generator)
	r.Action("claim", false, b.claimAccount)
	r.Command("restock", true, b.restock)
	r.Modal("restock", true, b.saveRestock)
	r.Command("setup-generator", true, b.setupGenerator)
	r.Action("generator-edit", true, b.editGenerator)
	r.Modal("generator", true, b.saveGenerator)
	r.Action("generator-publish", true, b.publishGenerator)
	r.Command("help", false, b.help)

	r.Command("setup-social", true, b.setupSocial)
	r.Action("social-edit", true, b.editSocialEmbed)
	r.Modal("social-embed", true, b.saveSocialEmbed)
	r.Action("social-pricing", true, b.showPricing)
	r.Action("social-price", true, b.editPrice)
	r.Modal("social-price", true, b.savePrice)
	r.Action("social-publish", true, b.publishSocial)
	r.Command("social", false, b.social)
	r.Action("boost", false, b.showBoostServices)
	r.Action("order", false, b.orderForm)
	r.SlowModal("order", b.placeOrder)

	r.Command("compensation", false, b.compensation)
	r.Action("comp", false, b.compensationServices)
	r.SlowAction("comp-svc", b.compensate)
	r.Command("refill", false, b.refill)
	r.Action("refill", false, b.refillServices)
	r.SlowAction("refill-svc", b.refillOrders)

	r.Command("members", false, b.members)
	r.Action("members-add", false, b.membersForm)
	r.Action("members-tutorial", false, b.membersTutorial)
	r.SlowModal("members", b.pullMembers)

	r.Command("resetserverinvites", true, b.resetServerInvites)
	r.Command("addbonus", true, b.addBonus)
	r.Command("removebonus", true, b.removeBonus)
	r.Command("reloadaccounts", true, b.reloadAccounts)
}

// Dispatch routes one request
func (b *Bot) Dispatch(ctx context.Context, kind Kind, id string, req *Request) *Reply {
	return b.router.Dispatch(ctx, kind, id, req)
}

func mention(userID string) string {
	return "<@" + userID + ">"
}

func title(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func atoi(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	return n, err == nil
}
