package models

import (
	"time"

	"github.com/google/uuid"
)

// Panel order statuses
const (
	OrderStatusPending    = "pending"
	OrderStatusInProgress = "in progress"
	OrderStatusProcessing = "processing"
	OrderStatusCompleted  = "completed"
	OrderStatusPartial    = "partial"
	OrderStatusCanceled   = "canceled"
)

// Order is a boost order placed with the panel and paid in invites
type Order struct {
	ID           uuid.UUID  `json:"id"`
	OrderID      string     `json:"order_id"`
	Platform     string     `json:"platform"`
	Service      string     `json:"service"`
	Link         string     `json:"link"`
	Quantity     int        `json:"quantity"`
	InvitesSpent int        `json:"invites_spent"`
	Refunded     bool       `json:"refunded"`
	Timestamp    time.Time  `json:"timestamp"`
	LastRefillAt *time.Time `json:"last_refill_at,omitempty"`
}

// IsFinished reports whether a panel status counts as delivered
func IsFinished(status string) bool {
	return status == OrderStatusCompleted || status == OrderStatusPartial
}
