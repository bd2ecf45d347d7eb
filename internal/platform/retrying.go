package platform

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"invite-tracker/internal/models"

	"github.com/cenkalti/backoff/v5"
)

// RetryingPlatform applies one retry policy to every call of the wrapped platform
type RetryingPlatform struct {
	inner       Platform
	maxAttempts int
	interval    time.Duration
}

// NewRetryingPlatform retries up to maxAttempts times with a fixed interval between attempts
func NewRetryingPlatform(inner Platform, maxAttempts int, interval time.Duration) *RetryingPlatform {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &RetryingPlatform{
		inner:       inner,
		maxAttempts: maxAttempts,
		interval:    interval,
	}
}

func retry[T any](ctx context.Context, p *RetryingPlatform, op string, fn func() (T, error)) (T, error) {
	attempt := func() (T, error) {
		v, err := fn()
		if err == nil {
			return v, nil
		}

		var rl *RateLimitError
		if errors.As(err, &rl) {
			return v, &backoff.RetryAfterError{Duration: rl.RetryAfter}
		}
		if IsPermanent(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}

	v, err := backoff.Retry(ctx, attempt,
		backoff.WithBackOff(backoff.NewConstantBackOff(p.interval)),
		backoff.WithMaxTries(uint(p.maxAttempts)),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, next time.Duration) {
			log.Printf("[Platform] %s failed, retrying in %s: %v", op, next, err)
		}),
	)
	if err == nil {
		return v, nil
	}

	if IsPermanent(err) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return v, err
	}
	return v, fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
}

func (p *RetryingPlatform) GuildInvites(ctx context.Context, guildID string) ([]models.Invite, error) {
	return retry(ctx, p, "list invites", func() ([]models.Invite, error) {
		return p.inner.GuildInvites(ctx, guildID)
	})
}

func (p *RetryingPlatform) DeleteInvite(ctx context.Context, code string) error {
	_, err := retry(ctx, p, "delete invite", func() (struct{}, error) {
		return struct{}{}, p.inner.DeleteInvite(ctx, code)
	})
	return err
}

func (p *RetryingPlatform) SendMessage(ctx context.Context, channelID, content string) error {
	_, err := retry(ctx, p, "send message", func() (struct{}, error) {
		return struct{}{}, p.inner.SendMessage(ctx, channelID, content)
	})
	return err
}

func (p *RetryingPlatform) Guilds(ctx context.Context) ([]string, error) {
	return retry(ctx, p, "list guilds", func() ([]string, error) {
		return p.inner.Guilds(ctx)
	})
}

func (p *RetryingPlatform) IsMember(ctx context.Context, guildID, userID string) (bool, error) {
	return retry(ctx, p, "check member", func() (bool, error) {
		return p.inner.IsMember(ctx, guildID, userID)
	})
}
