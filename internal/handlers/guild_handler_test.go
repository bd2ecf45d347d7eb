package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invite-tracker/internal/auth"
	"invite-tracker/internal/models"
	"invite-tracker/internal/platform"
	"invite-tracker/internal/services"
	"invite-tracker/internal/storage"
)

type apiFixture struct {
	router *gin.Engine
	ledger *services.InviteLedger
	stock  *services.StockService
	fake   *platform.Fake
}

func setupAPI(t *testing.T) *apiFixture {
	gin.SetMode(gin.TestMode)
	auth.InitJWT("test-secret")

	fake := platform.NewFake()
	store := storage.NewMemoryStore()
	ledger := services.NewInviteLedger(store)
	audit := services.NewAuditLog(fake, "")
	snapshots := services.NewSnapshotService(fake, ledger)
	stock := services.NewStockService(store, ledger, audit)
	cleanup := services.NewCleanupService(fake, snapshots, services.CleanupConfig{MaxInvites: 3, Target: 2})

	return &apiFixture{
		router: NewRouter(NewGuildHandler(ledger, stock, cleanup, audit), []string{"http://localhost:3000"}),
		ledger: ledger,
		stock:  stock,
		fake:   fake,
	}
}

func token(t *testing.T, guildID string) string {
	tok, err := auth.GenerateToken("ops", guildID, time.Hour)
	require.NoError(t, err)
	return tok
}

func (f *apiFixture) do(t *testing.T, method, path, tok, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	f := setupAPI(t)
	w := f.do(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequiresToken(t *testing.T) {
	f := setupAPI(t)

	w := f.do(t, http.MethodGet, "/api/guilds/g1/balance/u1", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(t, http.MethodGet, "/api/guilds/g1/balance/u1", "garbage", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(t, http.MethodGet, "/api/guilds/g1/balance/u1", token(t, "g2"), "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdjustBonusAndBalance(t *testing.T) {
	f := setupAPI(t)
	tok := token(t, "")

	w := f.do(t, http.MethodPost, "/api/guilds/g1/bonus", tok, `{"user_id":"u1","amount":5}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodPost, "/api/guilds/g1/bonus", tok, `{"user_id":"u1","amount":-2}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/api/guilds/g1/balance/u1", tok, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Balance models.Balance `json:"balance"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Balance.Bonus)
	assert.Equal(t, 3, resp.Balance.Valid)

	w = f.do(t, http.MethodPost, "/api/guilds/g1/bonus", tok, `{"amount":1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTopBalances(t *testing.T) {
	f := setupAPI(t)
	ctx := context.Background()
	for user, n := range map[string]int{"a": 1, "b": 7, "c": 4} {
		_, err := f.ledger.AdjustBonus(ctx, "g1", user, n)
		require.NoError(t, err)
	}

	w := f.do(t, http.MethodGet, "/api/guilds/g1/top?limit=2", token(t, "g1"), "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Balances []services.UserBalance `json:"balances"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Balances, 2)
	assert.Equal(t, "b", resp.Balances[0].UserID)
	assert.Equal(t, "c", resp.Balances[1].UserID)
}

func TestRestockAndCount(t *testing.T) {
	f := setupAPI(t)
	tok := token(t, "g1")

	w := f.do(t, http.MethodPost, "/api/guilds/g1/stock", tok, `{"accounts":["a:1"],"text":"b:2\n\nc:3"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, f.stock.Count("g1"))

	w = f.do(t, http.MethodGet, "/api/guilds/g1/stock", tok, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"count":3}`, w.Body.String())
}

func TestTriggerCleanup(t *testing.T) {
	f := setupAPI(t)
	f.fake.SetInvites("g1", []models.Invite{
		{Code: "a", InviterID: "u1", CreatedAt: time.Unix(1, 0)},
		{Code: "b", InviterID: "u1", CreatedAt: time.Unix(2, 0)},
		{Code: "c", InviterID: "u1", CreatedAt: time.Unix(3, 0)},
		{Code: "d", InviterID: "u1", CreatedAt: time.Unix(4, 0), Uses: 2},
	})

	w := f.do(t, http.MethodPost, "/api/guilds/g1/cleanup", token(t, "g1"), "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Result services.SweepResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Result.Deleted)
	assert.Equal(t, []string{"a", "b"}, f.fake.Deleted())
}
