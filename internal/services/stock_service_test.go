package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"invite-tracker/internal/platform"
	"invite-tracker/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStock(t *testing.T) (*StockService, *InviteLedger, *platform.Fake) {
	ledger, _ := setupLedger(t)
	fake := platform.NewFake()
	svc := NewStockService(storage.NewMemoryStore(), ledger, NewAuditLog(fake, "logs"))
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("failed to load stock: %v", err)
	}
	svc.pick = func(n int) int { return 0 }
	return svc, ledger, fake
}

func TestClaimEmptyStock(t *testing.T) {
	svc, ledger, _ := setupStock(t)
	ctx := context.Background()
	_, err := ledger.AdjustBonus(ctx, "g1", "u1", 3)
	require.NoError(t, err)

	_, err = svc.Claim(ctx, "g1", "u1")
	assert.ErrorIs(t, err, ErrNoAccounts)
	assert.Equal(t, 3, ledger.Balance("g1", "u1").Bonus)
}

func TestClaimWithoutInvites(t *testing.T) {
	svc, _, _ := setupStock(t)
	ctx := context.Background()
	_, err := svc.Restock(ctx, "g1", []string{"acc1"})
	require.NoError(t, err)

	_, err = svc.Claim(ctx, "g1", "u1")
	assert.ErrorIs(t, err, ErrInsufficientInvites)
	assert.Equal(t, 1, svc.Count("g1"))
}

func TestClaimLastAccount(t *testing.T) {
	svc, ledger, fake := setupStock(t)
	ctx := context.Background()
	_, err := ledger.Credit(ctx, "g1", "u1", false)
	require.NoError(t, err)
	_, err = svc.Restock(ctx, "g1", []string{"user:pass"})
	require.NoError(t, err)

	claim, err := svc.Claim(ctx, "g1", "u1")
	require.NoError(t, err)

	assert.Equal(t, "user:pass", claim.Account)
	assert.Equal(t, 0, claim.Remaining)
	assert.Equal(t, 0, svc.Count("g1"))
	assert.Equal(t, -1, ledger.Balance("g1", "u1").Bonus)
	assert.Equal(t, 0, ledger.Balance("g1", "u1").Valid)

	msgs := fake.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "logs", msgs[0].ChannelID)
	assert.Contains(t, msgs[0].Content, "Account Claim")
}

func TestRestockSkipsBlankLines(t *testing.T) {
	svc, _, _ := setupStock(t)

	n, err := svc.RestockText(context.Background(), "g1", "a\n\n  b  \n")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, svc.Count("g1"))
	assert.Equal(t, 0, svc.Count("g2"))
}

func TestReloadFromFile(t *testing.T) {
	svc, _, _ := setupStock(t)
	path := filepath.Join(t.TempDir(), "accounts.txt")
	require.NoError(t, os.WriteFile(path, []byte("one\ntwo\n\nthree\n"), 0o644))

	_, err := svc.Restock(context.Background(), "g1", []string{"old"})
	require.NoError(t, err)

	n, err := svc.ReloadFromFile(context.Background(), "g1", path)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 3, svc.Count("g1"))
}
