package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emmoscript/AutoSlot/internal/domain"
	"github.com/emmoscript/AutoSlot/internal/repository"
)

func TestFindRecentDefaultLimit(t *testing.T) {
	repo := NewSpaceEventLogRepository(500)
	ctx := context.Background()
	start := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 150; i++ {
		require.NoError(t, repo.Create(ctx, &domain.SpaceEvent{
			ID:        fmt.Sprintf("ev-%d", i),
			SpaceID:   1,
			LotID:     1,
			Timestamp: start.Add(time.Duration(i) * time.Second),
		}))
	}

	events, err := repo.FindRecent(ctx, nil, 0)
	require.NoError(t, err)
	require.Len(t, events, repository.DefaultEventLimit)
	assert.Equal(t, "ev-149", events[0].ID)

	events, err = repo.FindRecent(ctx, nil, 5)
	require.NoError(t, err)
	assert.Len(t, events, 5)
}

func TestEventLogDropsOldestOverCapacity(t *testing.T) {
	repo := NewSpaceEventLogRepository(3)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Create(ctx, &domain.SpaceEvent{ID: fmt.Sprintf("ev-%d", i)}))
	}

	events, err := repo.FindRecent(ctx, nil, 10)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "ev-4", events[0].ID)
	assert.Equal(t, "ev-2", events[2].ID)
}
