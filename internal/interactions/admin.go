package interactions

import (
	"context"
	"fmt"
	"log"
)

func (b *Bot) resetServerInvites(ctx context.Context, req *Request) (*Reply, error) {
	if err := b.svc.Ledger.Reset(ctx, req.GuildID); err != nil {
		return nil, err
	}

	guildID := req.GuildID
	b.background(func(ctx context.Context) {
		if _, err := b.svc.Cleanup.PurgeGuild(ctx, guildID); err != nil {
			log.Printf("[Interactions] Invite purge for guild %s failed: %v", guildID, err)
		}
	})

	b.svc.Audit.Post(ctx, fmt.Sprintf("⚠️ Invites reset for guild %s by %s", req.GuildID, mention(req.UserID)))
	return private("✅ Server invite data reset!"), nil
}

func bonusArgs(req *Request) (string, int, bool) {
	user := req.Options["user"]
	amount, ok := atoi(req.Options["amount"])
	if user == "" || !ok {
		return "", 0, false
	}
	return user, max(amount, 0), true
}

func (b *Bot) addBonus(ctx context.Context, req *Request) (*Reply, error) {
	user, amount, ok := bonusArgs(req)
	if !ok {
		return private("❌ A user and an amount are required."), nil
	}
	if _, err := b.svc.Ledger.AdjustBonus(ctx, req.GuildID, user, amount); err != nil {
		return nil, err
	}
	return private(fmt.Sprintf("✅ Added **%d** bonus invite(s) to %s.", amount, mention(user))), nil
}

func (b *Bot) removeBonus(ctx context.Context, req *Request) (*Reply, error) {
	user, amount, ok := bonusArgs(req)
	if !ok {
		return private("❌ A user and an amount are required."), nil
	}
	if _, err := b.svc.Ledger.AdjustBonus(ctx, req.GuildID, user, -amount); err != nil {
		return nil, err
	}
	return private(fmt.Sprintf("✅ Removed **%d** bonus invite(s) from %s.", amount, mention(user))), nil
}

func (b *Bot) reloadAccounts(ctx context.Context, req *Request) (*Reply, error) {
	n, err := b.svc.Stock.ReloadFromFile(ctx, req.GuildID, b.opts.AccountsFile)
	if err != nil {
		return private(fmt.Sprintf("❌ Error reloading accounts: %v", err)), nil
	}
	return private(fmt.Sprintf("✅ Reloaded **%d** accounts.", n)), nil
}
