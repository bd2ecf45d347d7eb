package platform

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"invite-tracker/internal/models"
)

// ErrUnavailable is returned once the retry policy gives up on a platform call
var ErrUnavailable = errors.New("platform unavailable")

// Platform is the subset of the chat platform the bot depends on
type Platform interface {
	GuildInvites(ctx context.Context, guildID string) ([]models.Invite, error)
	DeleteInvite(ctx context.Context, code string) error
	SendMessage(ctx context.Context, channelID, content string) error
	Guilds(ctx context.Context) ([]string, error)
	IsMember(ctx context.Context, guildID, userID string) (bool, error)
}

// RequestError is a platform REST failure with its HTTP status
type RequestError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s: status %d: %v", e.Op, e.StatusCode, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// Permanent reports whether retrying cannot succeed
func (e *RequestError) Permanent() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500 && e.StatusCode != http.StatusTooManyRequests
}

// RateLimitError asks the caller to wait before the next attempt
type RateLimitError struct {
	Op         string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s: rate limited, retry after %s", e.Op, e.RetryAfter)
}

// IsPermanent reports whether err should not be retried
func IsPermanent(err error) bool {
	var re *RequestError
	return errors.As(err, &re) && re.Permanent()
}

// IsNotFound reports whether err is a 404 from the platform
func IsNotFound(err error) bool {
	var re *RequestError
	return errors.As(err, &re) && re.StatusCode == http.StatusNotFound
}
