package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"invite-tracker/internal/auth"
	"invite-tracker/internal/services"
)

const (
	defaultTopLimit = 10
	maxTopLimit     = 100
)

// GuildHandler exposes per-guild ledger and stock operations to operators
type GuildHandler struct {
	ledger  *services.InviteLedger
	stock   *services.StockService
	cleanup *services.CleanupService
	audit   *services.AuditLog
}

// NewGuildHandler creates a new GuildHandler
func NewGuildHandler(ledger *services.InviteLedger, stock *services.StockService, cleanup *services.CleanupService, audit *services.AuditLog) *GuildHandler {
	return &GuildHandler{
		ledger:  ledger,
		stock:   stock,
		cleanup: cleanup,
		audit:   audit,
	}
}

// GetBalance returns a member's invite counters
func (h *GuildHandler) GetBalance(c *gin.Context) {
	guildID := c.Param("guild_id")
	userID := c.Param("user_id")

	c.JSON(http.StatusOK, gin.H{
		"guild_id": guildID,
		"user_id":  userID,
		"balance":  h.ledger.Balance(guildID, userID),
	})
}

// AdjustBonusRequest moves a member's bonus counter by Amount, which may be negative
type AdjustBonusRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Amount int    `json:"amount" binding:"required"`
}

// AdjustBonus adds or removes bonus invites
func (h *GuildHandler) AdjustBonus(c *gin.Context) {
	guildID := c.Param("guild_id")

	var req AdjustBonusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	balance, err := h.ledger.AdjustBonus(c.Request.Context(), guildID, req.UserID, req.Amount)
	if err != nil {
		log.Printf("[AdminAPI] Failed to adjust bonus for %s: %v", req.UserID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to adjust bonus"})
		return
	}

	operator, _ := auth.GetOperator(c)
	h.audit.Post(c.Request.Context(), "🛠️ Bonus "+strconv.Itoa(req.Amount)+" for <@"+req.UserID+"> via admin API by "+operator)

	c.JSON(http.StatusOK, gin.H{
		"user_id": req.UserID,
		"balance": balance,
	})
}

// GetTopBalances returns the members with the highest valid balance
func (h *GuildHandler) GetTopBalances(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultTopLimit)))
	if err != nil || limit < 1 {
		limit = defaultTopLimit
	}
	limit = min(limit, maxTopLimit)

	c.JSON(http.StatusOK, gin.H{
		"balances": h.ledger.TopBalances(c.Param("guild_id"), limit),
	})
}

// GetOrders returns a member's boost orders
func (h *GuildHandler) GetOrders(c *gin.Context) {
	orders := h.ledger.Orders(c.Param("guild_id"), c.Param("user_id"))
	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"count":  len(orders),
	})
}

// GetStock returns how many accounts are in stock
func (h *GuildHandler) GetStock(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"count": h.stock.Count(c.Param("guild_id")),
	})
}

// RestockRequest carries accounts as a list or newline-separated text
type RestockRequest struct {
	Accounts []string `json:"accounts"`
	Text     string   `json:"text"`
}

// Restock appends accounts to the guild's stock
func (h *GuildHandler) Restock(c *gin.Context) {
	guildID := c.Param("guild_id")

	var req RestockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lines := req.Accounts
	if req.Text != "" {
		lines = append(lines, strings.Split(req.Text, "\n")...)
	}

	added, err := h.stock.Restock(c.Request.Context(), guildID, lines)
	if err != nil {
		log.Printf("[AdminAPI] Restock for guild %s failed: %v", guildID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to restock"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"added": added,
		"count": h.stock.Count(guildID),
	})
}

// TriggerCleanup runs an invite sweep for the guild right away
func (h *GuildHandler) TriggerCleanup(c *gin.Context) {
	guildID := c.Param("guild_id")

	result, err := h.cleanup.SweepGuild(c.Request.Context(), guildID)
	if errors.Is(err, services.ErrSweepInProgress) {
		c.JSON(http.StatusConflict, gin.H{"error": "Cleanup already running"})
		return
	}
	if err != nil {
		log.Printf("[AdminAPI] Cleanup for guild %s failed: %v", guildID, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Cleanup failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": result})
}
