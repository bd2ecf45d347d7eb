package services

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"invite-tracker/internal/platform"
)

const (
	MembersPerInvite = 10
	MinFarmInvites   = 1
	MaxFarmInvites   = 10
)

// MemberPuller is the members farm API
type MemberPuller interface {
	RegisterServer(ctx context.Context, name, botID, serverID string) error
	PullMembers(ctx context.Context, serverID string, limit int) error
}

// PullRequest asks to spend invites on members for another server
type PullRequest struct {
	GuildID     string
	UserID      string
	Invites     int
	ServerID    string
	DisplayName string
}

// MembersFarmService trades invites for members pulled into a user's own server
type MembersFarmService struct {
	puller    MemberPuller
	platform  platform.Platform
	ledger    *InviteLedger
	audit     *AuditLog
	pullBotID string
}

func NewMembersFarmService(puller MemberPuller, p platform.Platform, ledger *InviteLedger, audit *AuditLog, pullBotID string) *MembersFarmService {
	return &MembersFarmService{
		puller:    puller,
		platform:  p,
		ledger:    ledger,
		audit:     audit,
		pullBotID: pullBotID,
	}
}

// Pull validates the request, registers the server, deducts the invites and
// starts the pull. The invites are refunded if the pull cannot start.
func (s *MembersFarmService) Pull(ctx context.Context, req PullRequest) (int, error) {
	if req.Invites < MinFarmInvites || req.Invites > MaxFarmInvites {
		return 0, fmt.Errorf("%w: you can spend between %d and %d invites", ErrInvalidAmount, MinFarmInvites, MaxFarmInvites)
	}
	if s.ledger.Balance(req.GuildID, req.UserID).Valid < req.Invites {
		return 0, ErrInsufficientInvites
	}

	serverID := strings.TrimSpace(req.ServerID)
	if _, err := strconv.ParseUint(serverID, 10, 64); err != nil {
		return 0, ErrInvalidServerID
	}

	present, err := s.platform.IsMember(ctx, serverID, s.pullBotID)
	if err != nil {
		return 0, fmt.Errorf("failed to check pull bot membership: %w", err)
	}
	if !present {
		return 0, ErrBotNotInServer
	}

	name := strings.TrimSpace(req.DisplayName)
	if name == "" {
		return 0, fmt.Errorf("%w: server display name cannot be empty", ErrInvalidInput)
	}

	if err := s.puller.RegisterServer(ctx, name, s.pullBotID, serverID); err != nil {
		return 0, fmt.Errorf("failed to register server: %w", err)
	}

	if _, err := s.ledger.Spend(ctx, req.GuildID, req.UserID, req.Invites); err != nil {
		return 0, err
	}

	limit := req.Invites * MembersPerInvite
	if err := s.puller.PullMembers(ctx, serverID, limit); err != nil {
		if _, rerr := s.ledger.AdjustBonus(ctx, req.GuildID, req.UserID, req.Invites); rerr != nil {
			log.Printf("[Members] Failed to refund %d invites to %s: %v", req.Invites, req.UserID, rerr)
		}
		return 0, fmt.Errorf("failed to start pull: %w", err)
	}

	log.Printf("[Members] %s spent %d invites for %d members into %s", req.UserID, req.Invites, limit, serverID)
	s.audit.Post(ctx, fmt.Sprintf("👥 Members Pull • User: <@%s> • Server: %s • Invites: %d", req.UserID, serverID, req.Invites))
	return limit, nil
}
