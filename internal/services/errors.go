package services

import (
	"errors"

	"invite-tracker/internal/platform"
)

var (
	ErrInsufficientInvites = errors.New("not enough invites")
	ErrNoAccounts          = errors.New("no accounts in stock")
	ErrInvalidLink         = errors.New("invalid link")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidInput        = errors.New("invalid input")
	ErrUnknownService      = errors.New("unknown service")
	ErrNoAPIKey            = errors.New("no API key configured")
	ErrNoOrders            = errors.New("no recent orders")
	ErrInvalidServerID     = errors.New("invalid server id")
	ErrBotNotInServer      = errors.New("pull bot is not in that server")
	ErrSweepInProgress     = errors.New("cleanup already running for guild")

	// errNothingToSave aborts a ledger update without persisting
	errNothingToSave = errors.New("nothing to save")

	// ErrPlatformUnavailable is returned when platform calls keep failing after retries
	ErrPlatformUnavailable = platform.ErrUnavailable
)
