package services

import (
	"context"
	"errors"
	"testing"

	"invite-tracker/internal/platform"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePuller struct {
	registered []string
	pulls      map[string]int
	pullErr    error
}

func (p *fakePuller) RegisterServer(ctx context.Context, name, botID, serverID string) error {
	p.registered = append(p.registered, serverID)
	return nil
}

func (p *fakePuller) PullMembers(ctx context.Context, serverID string, limit int) error {
	if p.pullErr != nil {
		return p.pullErr
	}
	if p.pulls == nil {
		p.pulls = make(map[string]int)
	}
	p.pulls[serverID] += limit
	return nil
}

func setupFarm(t *testing.T) (*MembersFarmService, *fakePuller, *InviteLedger, *platform.Fake) {
	ledger, _ := setupLedger(t)
	fake := platform.NewFake()
	fake.AddMember("555", "pullbot")
	puller := &fakePuller{}
	svc := NewMembersFarmService(puller, fake, ledger, NewAuditLog(fake, "logs"), "pullbot")
	return svc, puller, ledger, fake
}

func farmRequest(invites int) PullRequest {
	return PullRequest{GuildID: "g1", UserID: "u1", Invites: invites, ServerID: "555", DisplayName: "My Server"}
}

func TestPullMembers(t *testing.T) {
	svc, puller, ledger, fake := setupFarm(t)
	ctx := context.Background()
	_, err := ledger.AdjustBonus(ctx, "g1", "u1", 4)
	require.NoError(t, err)

	limit, err := svc.Pull(ctx, farmRequest(3))
	require.NoError(t, err)

	assert.Equal(t, 30, limit)
	assert.Equal(t, []string{"555"}, puller.registered)
	assert.Equal(t, 30, puller.pulls["555"])
	assert.Equal(t, 1, ledger.Balance("g1", "u1").Valid)
	require.Len(t, fake.Messages(), 1)
	assert.Equal(t, "👥 Members Pull • User: <@u1> • Server: 555 • Invites: 3", fake.Messages()[0].Content)
}

func TestPullMembersValidation(t *testing.T) {
	svc, puller, ledger, _ := setupFarm(t)
	ctx := context.Background()
	_, err := ledger.AdjustBonus(ctx, "g1", "u1", 20)
	require.NoError(t, err)

	_, err = svc.Pull(ctx, farmRequest(11))
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = svc.Pull(ctx, farmRequest(0))
	assert.ErrorIs(t, err, ErrInvalidAmount)

	req := farmRequest(1)
	req.ServerID = "abc"
	_, err = svc.Pull(ctx, req)
	assert.ErrorIs(t, err, ErrInvalidServerID)

	req = farmRequest(1)
	req.ServerID = "777"
	_, err = svc.Pull(ctx, req)
	assert.ErrorIs(t, err, ErrBotNotInServer)

	req = farmRequest(1)
	req.DisplayName = "   "
	_, err = svc.Pull(ctx, req)
	assert.ErrorIs(t, err, ErrInvalidInput)

	assert.Empty(t, puller.registered)
	assert.Equal(t, 20, ledger.Balance("g1", "u1").Valid)
}

func TestPullMembersInsufficientInvites(t *testing.T) {
	svc, _, _, _ := setupFarm(t)
	_, err := svc.Pull(context.Background(), farmRequest(1))
	assert.ErrorIs(t, err, ErrInsufficientInvites)
}

func TestPullMembersFailureRefunds(t *testing.T) {
	svc, puller, ledger, _ := setupFarm(t)
	ctx := context.Background()
	_, err := ledger.AdjustBonus(ctx, "g1", "u1", 2)
	require.NoError(t, err)
	puller.pullErr = errors.New("no members available")

	_, err = svc.Pull(ctx, farmRequest(2))
	require.Error(t, err)
	assert.Equal(t, 2, ledger.Balance("g1", "u1").Valid)
}
