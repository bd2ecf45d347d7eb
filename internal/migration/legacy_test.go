package migration

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"invite-tracker/internal/models"
	"invite-tracker/internal/services"
	"invite-tracker/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const legacyInvitesJSON = `{
  "inviters": {"100": {"regular": 5, "fake": 1, "bonus": 2}},
  "members": {
    "200": {"inviter": "100", "joined_at": "2024-03-01T10:00:00.123456+00:00"},
    "201": {"inviter": 100, "joined_at": "2024-03-02T10:00:00", "left_at": "2024-03-05T08:30:00+00:00"}
  },
  "servers": {
    "777": {
      "users": {"300": {"regular": 1, "fake": 0, "bonus": 0}},
      "members": {},
      "invite_cache": {"abc": 4},
      "settings": {"channel_id": 0, "join_template": "hi <joinerName>"}
    }
  }
}`

func TestMigrateInvites(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Save(ctx, models.InvitesDocument, []byte(legacyInvitesJSON)))

	report, err := NewMigrator(store, "999").Run(ctx, "")
	require.NoError(t, err)
	assert.True(t, report.Invites)
	assert.Equal(t, 2, report.Users)
	assert.Equal(t, 2, report.Members)

	ledger := services.NewInviteLedger(store)
	require.NoError(t, ledger.Load(ctx))

	bal := ledger.Balance("999", "100")
	assert.Equal(t, 6, bal.Valid)

	rec, ok := ledger.Member("999", "201")
	require.True(t, ok)
	require.NotNil(t, rec.InviterID)
	assert.Equal(t, "100", *rec.InviterID)
	assert.True(t, rec.HasLeft())
	assert.Equal(t, time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC), rec.JoinedAt)

	assert.Equal(t, 1, ledger.Balance("777", "300").Valid)
	assert.Equal(t, models.InviteSnapshot{"abc": 4}, ledger.Snapshot("777"))
	assert.Empty(t, ledger.Settings("777").ChannelID)
	assert.Equal(t, "hi <joinerName>", ledger.Settings("777").JoinMessage())
}

func TestMigrateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Save(ctx, models.InvitesDocument, []byte(legacyInvitesJSON)))

	m := NewMigrator(store, "999")
	_, err := m.Run(ctx, "")
	require.NoError(t, err)
	saves := store.SaveCount()

	report, err := m.Run(ctx, "")
	require.NoError(t, err)
	assert.False(t, report.Invites)
	assert.Equal(t, saves, store.SaveCount())
}

func TestMigrateStocksAndAccountsFile(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Save(ctx, models.StocksDocument, []byte(`{"999": ["a:1"], "777": ["z:9"]}`)))

	accounts := filepath.Join(t.TempDir(), "accounts.txt")
	require.NoError(t, os.WriteFile(accounts, []byte("a:1\nb:2\n\nc:3\n"), 0o644))

	report, err := NewMigrator(store, "999").Run(ctx, accounts)
	require.NoError(t, err)
	assert.True(t, report.Stocks)
	assert.Equal(t, 2, report.Accounts)

	stock := services.NewStockService(store, services.NewInviteLedger(store), nil)
	require.NoError(t, stock.Load(ctx))
	assert.Equal(t, 3, stock.Count("999"))
	assert.Equal(t, 1, stock.Count("777"))
}

func TestMigrateConfigs(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Save(ctx, models.GeneratorDocument, []byte(`{"999": {"title": "Gen", "text": "Free", "image": null}}`)))
	require.NoError(t, store.Save(ctx, models.SocialDocument, []byte(`{"999": {"api_key": " key ", "title": "S", "text": "T", "image": null,
		"platforms": {"tiktok": {"likes": {"service_id": 11989, "per_invite": 150, "min_invites": 2, "link_type": "video"}}}}}`)))

	report, err := NewMigrator(store, "999").Run(ctx, "")
	require.NoError(t, err)
	assert.True(t, report.Generator)
	assert.True(t, report.Social)

	cfg := services.NewGuildConfigService(store, models.DefaultCatalog())
	require.NoError(t, cfg.Load(ctx))
	assert.Equal(t, "Gen", cfg.Generator("999").Title)
	assert.Equal(t, "key", cfg.Social("999").APIKey)

	spec, err := cfg.Pricing("999", "tiktok", "likes")
	require.NoError(t, err)
	assert.Equal(t, 150, spec.PerInvite)
	assert.Equal(t, 2, spec.MinInvites)
}

func TestMigrateRequiresMainGuild(t *testing.T) {
	_, err := NewMigrator(storage.NewMemoryStore(), "").Run(context.Background(), "")
	assert.Error(t, err)
}
