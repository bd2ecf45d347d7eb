package services

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"strings"
	"sync"

	"invite-tracker/internal/models"
	"invite-tracker/internal/storage"
)

// Claim is a successfully claimed stock account
type Claim struct {
	Account   string         `json:"account"`
	Balance   models.Balance `json:"balance"`
	Remaining int            `json:"remaining"`
}

// StockService manages the per-guild account stock
type StockService struct {
	store  storage.DocumentStore
	ledger *InviteLedger
	audit  *AuditLog

	// mu is the stock lock, held across the whole claim read-modify-write
	mu  sync.Mutex
	doc *models.StocksDoc

	pick func(n int) int
}

func NewStockService(store storage.DocumentStore, ledger *InviteLedger, audit *AuditLog) *StockService {
	return &StockService{
		store:  store,
		ledger: ledger,
		audit:  audit,
		doc:    models.NewStocksDoc(),
		pick:   rand.IntN,
	}
}

// Load reads stocks.json; a missing document starts empty
func (s *StockService) Load(ctx context.Context) error {
	doc := models.NewStocksDoc()
	err := storage.LoadJSON(ctx, s.store, models.StocksDocument, doc)
	if errors.Is(err, storage.ErrNotFound) {
		err = nil
	}
	if err != nil {
		return fmt.Errorf("failed to load stock: %w", err)
	}
	if doc.Guilds == nil {
		doc.Guilds = make(map[string][]string)
	}
	doc.Version = models.DocumentVersion

	s.mu.Lock()
	s.doc = doc
	s.mu.Unlock()
	return nil
}

func (s *StockService) saveLocked(ctx context.Context) error {
	if err := storage.SaveJSON(ctx, s.store, models.StocksDocument, s.doc); err != nil {
		return fmt.Errorf("failed to save stock: %w", err)
	}
	return nil
}

// Claim pops a random account for a user holding at least one valid invite
// and charges one bonus invite for it.
func (s *StockService) Claim(ctx context.Context, guildID, userID string) (*Claim, error) {
	if s.ledger.Balance(guildID, userID).Valid < 1 {
		return nil, ErrInsufficientInvites
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stock := s.doc.Guilds[guildID]
	if len(stock) == 0 {
		return nil, ErrNoAccounts
	}

	balance, err := s.ledger.Spend(ctx, guildID, userID, 1)
	if err != nil {
		return nil, err
	}

	idx := s.pick(len(stock))
	account := stock[idx]
	rest := make([]string, 0, len(stock)-1)
	rest = append(rest, stock[:idx]...)
	rest = append(rest, stock[idx+1:]...)
	s.doc.Guilds[guildID] = rest

	if err := s.saveLocked(ctx); err != nil {
		s.doc.Guilds[guildID] = stock
		if _, rerr := s.ledger.AdjustBonus(ctx, guildID, userID, 1); rerr != nil {
			log.Printf("[Stock] Failed to refund claim for %s: %v", userID, rerr)
		}
		return nil, err
	}

	log.Printf("[Stock] %s claimed an account in guild %s, %d left", userID, guildID, len(rest))
	s.audit.Post(ctx, fmt.Sprintf("🎁 **Account Claim**\n• User: <@%s> (`%s`)\n• Account: `%s`\n• Invites Spent: 1\n• Remaining Invites: %d",
		userID, userID, account, balance.Valid))

	return &Claim{Account: account, Balance: balance, Remaining: len(rest)}, nil
}

// Restock appends non-empty trimmed lines to the guild's stock
func (s *StockService) Restock(ctx context.Context, guildID string, lines []string) (int, error) {
	var clean []string
	for _, ln := range lines {
		if ln = strings.TrimSpace(ln); ln != "" {
			clean = append(clean, ln)
		}
	}
	if len(clean) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.doc.Guilds[guildID]
	s.doc.Guilds[guildID] = append(append([]string(nil), prev...), clean...)
	if err := s.saveLocked(ctx); err != nil {
		s.doc.Guilds[guildID] = prev
		return 0, err
	}
	return len(clean), nil
}

// RestockText splits text into lines and restocks them
func (s *StockService) RestockText(ctx context.Context, guildID, text string) (int, error) {
	return s.Restock(ctx, guildID, strings.Split(text, "\n"))
}

// ReloadFromFile replaces the guild's stock with the lines of a file
func (s *StockService) ReloadFromFile(ctx context.Context, guildID, path string) (int, error) {
	lines, err := ReadAccountsFile(path)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.doc.Guilds[guildID]
	s.doc.Guilds[guildID] = lines
	if err := s.saveLocked(ctx); err != nil {
		s.doc.Guilds[guildID] = prev
		return 0, err
	}
	log.Printf("[Stock] Reloaded %d accounts for guild %s from %s", len(lines), guildID, path)
	return len(lines), nil
}

// Count returns the number of accounts in stock
func (s *StockService) Count(guildID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.doc.Guilds[guildID])
}

// ReadAccountsFile reads one account per line, skipping blanks
func ReadAccountsFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open accounts file: %w", err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if ln := strings.TrimSpace(sc.Text()); ln != "" {
			lines = append(lines, ln)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read accounts file: %w", err)
	}
	return lines, nil
}
