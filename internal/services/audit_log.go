package services

import (
	"context"
	"log"

	"invite-tracker/internal/platform"
)

// AuditLog posts reward activity to the configured log channel
type AuditLog struct {
	platform  platform.Platform
	channelID string
}

func NewAuditLog(p platform.Platform, channelID string) *AuditLog {
	return &AuditLog{platform: p, channelID: channelID}
}

// Post sends msg to the log channel. Failures are logged and dropped.
func (a *AuditLog) Post(ctx context.Context, msg string) {
	if a == nil || a.channelID == "" {
		return
	}
	if err := a.platform.SendMessage(ctx, a.channelID, msg); err != nil {
		log.Printf("[Audit] Failed to post to log channel: %v", err)
	}
}
