package jobs

import (
	"context"
	"fmt"
	"testing"
	"time"

	"invite-tracker/internal/models"
	"invite-tracker/internal/platform"
	"invite-tracker/internal/services"
	"invite-tracker/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerRunsImmediately(t *testing.T) {
	s, err := NewScheduler()
	require.NoError(t, err)

	ran := make(chan struct{}, 1)
	require.NoError(t, s.Every("probe", time.Hour, func(ctx context.Context) {
		select {
		case ran <- struct{}{}:
		default:
		}
	}))
	s.Start()
	defer s.Stop()

	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatalf("job did not run after start")
	}
}

func TestInviteCleanupJobSweepsEveryGuild(t *testing.T) {
	fake := platform.NewFake()
	for _, g := range []string{"g1", "g2"} {
		invites := make([]models.Invite, 0, 12)
		for i := 0; i < 12; i++ {
			invites = append(invites, models.Invite{Code: fmt.Sprintf("%s-%d", g, i), CreatedAt: time.Unix(int64(i), 0)})
		}
		fake.SetInvites(g, invites)
	}

	ledger := services.NewInviteLedger(storage.NewMemoryStore())
	cleanup := services.NewCleanupService(fake, services.NewSnapshotService(fake, ledger), services.CleanupConfig{MaxInvites: 10, Target: 8})

	NewInviteCleanupJob(cleanup).Run(context.Background())

	assert.Len(t, fake.Deleted(), 8)
}
