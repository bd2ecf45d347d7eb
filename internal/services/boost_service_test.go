package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"invite-tracker/internal/bulkmedya"
	"invite-tracker/internal/models"
	"invite-tracker/internal/platform"
	"invite-tracker/internal/storage"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePanel struct {
	mu       sync.Mutex
	nextID   string
	addErr   error
	added    []int
	statuses map[string]bulkmedya.OrderStatus
	refilled []string
}

func (p *fakePanel) AddOrder(ctx context.Context, apiKey string, serviceID int, link string, quantity int) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.addErr != nil {
		return "", p.addErr
	}
	p.added = append(p.added, quantity)
	return p.nextID, nil
}

func (p *fakePanel) Status(ctx context.Context, apiKey string, orderIDs []string) (map[string]bulkmedya.OrderStatus, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[string]bulkmedya.OrderStatus)
	for _, id := range orderIDs {
		if st, ok := p.statuses[id]; ok {
			out[id] = st
		}
	}
	return out, nil
}

func (p *fakePanel) Refill(ctx context.Context, apiKey string, orderIDs []string) (map[string]bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[string]bool)
	for _, id := range orderIDs {
		out[id] = true
		p.refilled = append(p.refilled, id)
	}
	return out, nil
}

type boostFixture struct {
	panel  *fakePanel
	ledger *InviteLedger
	config *GuildConfigService
	boost  *BoostService
	now    time.Time
}

func setupBoost(t *testing.T) *boostFixture {
	ctx := context.Background()
	ledger, _ := setupLedger(t)
	config := NewGuildConfigService(storage.NewMemoryStore(), models.DefaultCatalog())
	require.NoError(t, config.Load(ctx))
	require.NoError(t, config.SetAPIKey(ctx, "g1", "panel-key"))

	panel := &fakePanel{nextID: "1001", statuses: make(map[string]bulkmedya.OrderStatus)}
	f := &boostFixture{
		panel:  panel,
		ledger: ledger,
		config: config,
		boost:  NewBoostService(panel, config, ledger, NewAuditLog(platform.NewFake(), "logs")),
		now:    time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	f.boost.now = func() time.Time { return f.now }
	return f
}

func tiktokLikes(invites int) OrderRequest {
	return OrderRequest{
		GuildID:  "g1",
		UserID:   "u1",
		Platform: "tiktok",
		Service:  "likes",
		Link:     "https://www.tiktok.com/@me/video/1",
		Invites:  invites,
	}
}

func TestPlaceOrder(t *testing.T) {
	f := setupBoost(t)
	ctx := context.Background()
	_, err := f.ledger.AdjustBonus(ctx, "g1", "u1", 5)
	require.NoError(t, err)

	order, err := f.boost.PlaceOrder(ctx, tiktokLikes(2))
	require.NoError(t, err)

	assert.Equal(t, "1001", order.OrderID)
	assert.Equal(t, 200, order.Quantity)
	assert.Equal(t, []int{200}, f.panel.added)
	assert.Equal(t, 3, f.ledger.Balance("g1", "u1").Valid)
	assert.Len(t, f.ledger.Orders("g1", "u1"), 1)
}

func TestPlaceOrderValidation(t *testing.T) {
	f := setupBoost(t)
	ctx := context.Background()
	_, err := f.ledger.AdjustBonus(ctx, "g1", "u1", 1)
	require.NoError(t, err)

	req := tiktokLikes(1)
	req.Link = "https://youtube.com/watch?v=1"
	_, err = f.boost.PlaceOrder(ctx, req)
	assert.ErrorIs(t, err, ErrInvalidLink)

	_, err = f.boost.PlaceOrder(ctx, tiktokLikes(2))
	assert.ErrorIs(t, err, ErrInsufficientInvites)

	req = tiktokLikes(1)
	req.Service = "followers"
	_, err = f.boost.PlaceOrder(ctx, req)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	req = tiktokLikes(1)
	req.GuildID = "g2"
	_, err = f.boost.PlaceOrder(ctx, req)
	assert.ErrorIs(t, err, ErrNoAPIKey)

	assert.Empty(t, f.panel.added)
	assert.Equal(t, 1, f.ledger.Balance("g1", "u1").Valid)
}

func TestPlaceOrderPanelFailureRefunds(t *testing.T) {
	f := setupBoost(t)
	ctx := context.Background()
	_, err := f.ledger.AdjustBonus(ctx, "g1", "u1", 2)
	require.NoError(t, err)
	f.panel.addErr = &bulkmedya.APIError{StatusCode: 200, Message: "Not enough funds on balance"}

	_, err = f.boost.PlaceOrder(ctx, tiktokLikes(2))
	require.Error(t, err)

	var apiErr *bulkmedya.APIError
	assert.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 2, f.ledger.Balance("g1", "u1").Valid)
	assert.Empty(t, f.ledger.Orders("g1", "u1"))
}

func TestCompensateRefundsCanceledOnce(t *testing.T) {
	f := setupBoost(t)
	ctx := context.Background()
	_, err := f.ledger.AdjustBonus(ctx, "g1", "u1", 3)
	require.NoError(t, err)
	_, err = f.boost.PlaceOrder(ctx, tiktokLikes(3))
	require.NoError(t, err)

	f.panel.statuses["1001"] = bulkmedya.OrderStatus{Status: "Canceled", Charge: decimal.Zero}

	res, err := f.boost.Compensate(ctx, "g1", "u1", "tiktok", "likes")
	require.NoError(t, err)
	assert.Equal(t, 3, res.Refunded)
	assert.Equal(t, 3, f.ledger.Balance("g1", "u1").Valid)

	again, err := f.boost.Compensate(ctx, "g1", "u1", "tiktok", "likes")
	require.NoError(t, err)
	assert.Equal(t, 0, again.Refunded)
	assert.Equal(t, 3, f.ledger.Balance("g1", "u1").Valid)
}

func TestCompensateReportsLatestStatus(t *testing.T) {
	f := setupBoost(t)
	ctx := context.Background()
	_, err := f.ledger.AdjustBonus(ctx, "g1", "u1", 1)
	require.NoError(t, err)
	_, err = f.boost.PlaceOrder(ctx, tiktokLikes(1))
	require.NoError(t, err)

	f.panel.statuses["1001"] = bulkmedya.OrderStatus{Status: "In progress", Charge: decimal.RequireFromString("0.1")}

	res, err := f.boost.Compensate(ctx, "g1", "u1", "tiktok", "likes")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusInProgress, res.LatestStatus)
	assert.Equal(t, "Still in progress—please wait.", res.Message())

	_, err = f.boost.Compensate(ctx, "g1", "u1", "tiktok", "views")
	assert.ErrorIs(t, err, ErrNoOrders)
}

func TestRefillCooldown(t *testing.T) {
	f := setupBoost(t)
	ctx := context.Background()
	_, err := f.ledger.AdjustBonus(ctx, "g1", "u1", 1)
	require.NoError(t, err)
	_, err = f.boost.PlaceOrder(ctx, tiktokLikes(1))
	require.NoError(t, err)

	f.panel.statuses["1001"] = bulkmedya.OrderStatus{Status: "Completed"}
	f.now = f.now.Add(48 * time.Hour)

	res, err := f.boost.Refill(ctx, "g1", "u1", "tiktok", "likes")
	require.NoError(t, err)
	assert.Equal(t, RefillRequested, res.Outcome)
	assert.Equal(t, []string{"1001"}, f.panel.refilled)

	f.now = f.now.Add(time.Hour)
	res, err = f.boost.Refill(ctx, "g1", "u1", "tiktok", "likes")
	require.NoError(t, err)
	assert.Equal(t, RefillCooldown, res.Outcome)

	// likes refill for 7 days
	f.now = f.now.Add(10 * 24 * time.Hour)
	_, err = f.boost.Refill(ctx, "g1", "u1", "tiktok", "likes")
	assert.ErrorIs(t, err, ErrNoOrders)
}

func TestRefillNotRefillable(t *testing.T) {
	f := setupBoost(t)
	_, err := f.boost.Refill(context.Background(), "g1", "u1", "tiktok", "views")
	assert.ErrorIs(t, err, ErrUnknownService)
}
