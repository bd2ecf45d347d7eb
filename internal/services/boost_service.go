package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"invite-tracker/internal/bulkmedya"
	"invite-tracker/internal/models"

	"github.com/google/uuid"
)

const refillCooldown = 24 * time.Hour

// PanelClient is the boost panel API
type PanelClient interface {
	AddOrder(ctx context.Context, apiKey string, serviceID int, link string, quantity int) (string, error)
	Status(ctx context.Context, apiKey string, orderIDs []string) (map[string]bulkmedya.OrderStatus, error)
	Refill(ctx context.Context, apiKey string, orderIDs []string) (map[string]bool, error)
}

// OrderRequest is a user's request to spend invites on a boost
type OrderRequest struct {
	GuildID  string
	UserID   string
	Platform string
	Service  string
	Link     string
	Invites  int
}

// CompensationResult reports refunds or the state of the latest order
type CompensationResult struct {
	Refunded     int      `json:"refunded"`
	OrderIDs     []string `json:"order_ids,omitempty"`
	LatestStatus string   `json:"latest_status,omitempty"`
}

// Message is the user-facing summary
func (r CompensationResult) Message() string {
	if r.Refunded > 0 {
		return fmt.Sprintf("💸 Refunded %d invites.", r.Refunded)
	}
	switch r.LatestStatus {
	case models.OrderStatusPending:
		return "Still pending—please wait."
	case models.OrderStatusInProgress, models.OrderStatusProcessing:
		return "Still in progress—please wait."
	case models.OrderStatusCompleted:
		return "Already completed!"
	}
	return "No refundable orders found."
}

// RefillOutcome classifies a refill attempt
type RefillOutcome string

const (
	RefillRequested  RefillOutcome = "requested"
	RefillCooldown   RefillOutcome = "cooldown"
	RefillIncomplete RefillOutcome = "incomplete"
	RefillNothing    RefillOutcome = "nothing"
	RefillRejected   RefillOutcome = "rejected"
)

// RefillResult is the outcome of a refill request
type RefillResult struct {
	Outcome  RefillOutcome `json:"outcome"`
	OrderIDs []string      `json:"order_ids,omitempty"`
}

// Message is the user-facing summary
func (r RefillResult) Message() string {
	switch r.Outcome {
	case RefillRequested:
		return "Successfully requested refill! Up to 24–48h."
	case RefillCooldown:
		return "Refilled recently—cooldown."
	case RefillIncomplete:
		return "Order not completed yet."
	case RefillRejected:
		return "Error—try again later."
	}
	return "Nothing to refill."
}

// BoostService sells panel boosts for invites
type BoostService struct {
	panel  PanelClient
	config *GuildConfigService
	ledger *InviteLedger
	audit  *AuditLog
	now    func() time.Time
}

func NewBoostService(panel PanelClient, config *GuildConfigService, ledger *InviteLedger, audit *AuditLog) *BoostService {
	return &BoostService{
		panel:  panel,
		config: config,
		ledger: ledger,
		audit:  audit,
		now:    time.Now,
	}
}

// PlaceOrder validates the request, deducts the invites and creates the panel order.
// The deduction is refunded when the panel rejects the order.
func (s *BoostService) PlaceOrder(ctx context.Context, req OrderRequest) (*models.Order, error) {
	social := s.config.Social(req.GuildID)
	if social.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	spec, err := s.config.Pricing(req.GuildID, req.Platform, req.Service)
	if err != nil {
		return nil, err
	}
	if req.Invites < spec.MinInvites {
		return nil, fmt.Errorf("%w: you need at least %d invites", ErrInvalidAmount, spec.MinInvites)
	}
	link := strings.TrimSpace(req.Link)
	if !models.LinkMatchesPlatform(req.Platform, link) {
		return nil, ErrInvalidLink
	}

	if _, err := s.ledger.Spend(ctx, req.GuildID, req.UserID, req.Invites); err != nil {
		return nil, err
	}

	quantity := req.Invites * spec.PerInvite
	orderID, err := s.panel.AddOrder(ctx, social.APIKey, spec.ServiceID, link, quantity)
	if err != nil {
		if _, rerr := s.ledger.AdjustBonus(ctx, req.GuildID, req.UserID, req.Invites); rerr != nil {
			log.Printf("[Boost] Failed to refund %d invites to %s: %v", req.Invites, req.UserID, rerr)
		}
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	order := models.Order{
		ID:           uuid.New(),
		OrderID:      orderID,
		Platform:     req.Platform,
		Service:      req.Service,
		Link:         link,
		Quantity:     quantity,
		InvitesSpent: req.Invites,
		Timestamp:    s.now().UTC(),
	}
	err = s.ledger.Update(ctx, req.GuildID, func(b *models.GuildBucket) error {
		b.Orders[req.UserID] = append(b.Orders[req.UserID], order)
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[Boost] %s ordered %s %s x%d (panel order %s)", req.UserID, req.Platform, req.Service, quantity, orderID)
	s.audit.Post(ctx, fmt.Sprintf("🚀 <@%s> ordered %s %s qty=%d, oid=%s", req.UserID, req.Platform, req.Service, quantity, orderID))
	return &order, nil
}

func matching(orders []models.Order, platform, service string) []models.Order {
	var out []models.Order
	for _, o := range orders {
		if o.Platform == platform && o.Service == service {
			out = append(out, o)
		}
	}
	return out
}

func orderIDs(orders []models.Order) []string {
	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.OrderID)
	}
	return ids
}

// Compensate refunds orders the panel canceled without charging.
// Refunds are added to bonus rather than regular, so they stay spendable
// after a server reset and the valid total is unchanged.
// When nothing is refundable it reports the status of the latest order.
func (s *BoostService) Compensate(ctx context.Context, guildID, userID, platform, service string) (*CompensationResult, error) {
	social := s.config.Social(guildID)
	if social.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	relevant := matching(s.ledger.Orders(guildID, userID), platform, service)
	if len(relevant) == 0 {
		return nil, ErrNoOrders
	}

	statuses, err := s.panel.Status(ctx, social.APIKey, orderIDs(relevant))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch order status: %w", err)
	}

	result := &CompensationResult{}
	err = s.ledger.Update(ctx, guildID, func(b *models.GuildBucket) error {
		orders := b.Orders[userID]
		for i := range orders {
			o := &orders[i]
			if o.Platform != platform || o.Service != service || o.Refunded {
				continue
			}
			st, ok := statuses[o.OrderID]
			if !ok || st.Normalized() != models.OrderStatusCanceled || !st.Charge.IsZero() {
				continue
			}
			o.Refunded = true
			result.Refunded += o.InvitesSpent
			result.OrderIDs = append(result.OrderIDs, o.OrderID)
		}
		if result.Refunded == 0 {
			return errNothingToSave
		}
		stats := b.Users[userID]
		stats.Bonus += result.Refunded
		b.Users[userID] = stats
		return nil
	})
	if err != nil && !errors.Is(err, errNothingToSave) {
		return nil, err
	}

	if result.Refunded > 0 {
		log.Printf("[Boost] Refunded %d invites to %s (orders %v)", result.Refunded, userID, result.OrderIDs)
		s.audit.Post(ctx, fmt.Sprintf("Refunded %d invites for <@%s> (orders: %s)", result.Refunded, userID, strings.Join(result.OrderIDs, ", ")))
		return result, nil
	}

	sort.Slice(relevant, func(i, j int) bool {
		return relevant[i].Timestamp.After(relevant[j].Timestamp)
	})
	if st, ok := statuses[relevant[0].OrderID]; ok {
		result.LatestStatus = st.Normalized()
		if models.IsFinished(result.LatestStatus) {
			result.LatestStatus = models.OrderStatusCompleted
		}
	}
	return result, nil
}

// Refill asks the panel to top up completed orders still inside the service's refill window
func (s *BoostService) Refill(ctx context.Context, guildID, userID, platform, service string) (*RefillResult, error) {
	social := s.config.Social(guildID)
	if social.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	spec, err := s.config.Pricing(guildID, platform, service)
	if err != nil {
		return nil, err
	}
	if spec.RefillDays <= 0 {
		return nil, fmt.Errorf("%w: %s %s is not refillable", ErrUnknownService, platform, service)
	}

	now := s.now().UTC()
	cutoff := now.AddDate(0, 0, -spec.RefillDays)

	var eligible []models.Order
	for _, o := range matching(s.ledger.Orders(guildID, userID), platform, service) {
		if !o.Timestamp.Before(cutoff) {
			eligible = append(eligible, o)
		}
	}
	if len(eligible) == 0 {
		return nil, ErrNoOrders
	}

	statuses, err := s.panel.Status(ctx, social.APIKey, orderIDs(eligible))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch order status: %w", err)
	}

	var (
		toRefill   []string
		cooldown   bool
		incomplete bool
	)
	for _, o := range eligible {
		st, ok := statuses[o.OrderID]
		if !ok {
			continue
		}
		if !models.IsFinished(st.Normalized()) {
			incomplete = true
			continue
		}
		if o.LastRefillAt != nil && now.Sub(*o.LastRefillAt) < refillCooldown {
			cooldown = true
			continue
		}
		toRefill = append(toRefill, o.OrderID)
	}

	if len(toRefill) == 0 {
		switch {
		case cooldown:
			return &RefillResult{Outcome: RefillCooldown}, nil
		case incomplete:
			return &RefillResult{Outcome: RefillIncomplete}, nil
		}
		return &RefillResult{Outcome: RefillNothing}, nil
	}

	accepted, err := s.panel.Refill(ctx, social.APIKey, toRefill)
	if err != nil {
		log.Printf("[Boost] Refill request for %v failed: %v", toRefill, err)
		return &RefillResult{Outcome: RefillRejected}, nil
	}

	var done []string
	for _, id := range toRefill {
		if accepted[id] {
			done = append(done, id)
		}
	}
	if len(done) == 0 {
		return &RefillResult{Outcome: RefillRejected}, nil
	}

	err = s.ledger.Update(ctx, guildID, func(b *models.GuildBucket) error {
		orders := b.Orders[userID]
		for i := range orders {
			for _, id := range done {
				if orders[i].OrderID == id {
					at := now
					orders[i].LastRefillAt = &at
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Post(ctx, fmt.Sprintf("Refill requested for %s/%s: %s", platform, service, strings.Join(done, ", ")))
	return &RefillResult{Outcome: RefillRequested, OrderIDs: done}, nil
}
