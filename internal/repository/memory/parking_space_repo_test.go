package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emmoscript/AutoSlot/internal/domain"
	"github.com/emmoscript/AutoSlot/internal/repository"
)

func newTestRegistry(t *testing.T, availability ...bool) (*Store, repository.ParkingSpaceRepository, domain.ParkingLot) {
	t.Helper()
	store := NewStore()
	lot := store.Load(domain.ParkingLot{Name: "Test Lot"}, func(lotID int) []domain.ParkingSpace {
		spaces := make([]domain.ParkingSpace, 0, len(availability))
		for i, available := range availability {
			spaces = append(spaces, domain.ParkingSpace{
				Name:        string(rune('A'+i)) + "1",
				Level:       1,
				ZoneType:    domain.ZoneStandard,
				BasePrice:   100,
				IsAvailable: available,
			})
		}
		return spaces
	})
	return store, NewParkingSpaceRepository(store), lot
}

func TestFindByIDNotFound(t *testing.T) {
	_, repo, _ := newTestRegistry(t, true)

	_, err := repo.FindByID(context.Background(), 999)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = repo.SetAvailability(context.Background(), 999, false)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSetAvailabilityRefreshesUpdatedAt(t *testing.T) {
	store, repo, _ := newTestRegistry(t, true)
	later := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time { return later })

	sp, err := repo.SetAvailability(context.Background(), 1, true)
	require.NoError(t, err)
	assert.True(t, sp.IsAvailable)
	assert.Equal(t, later, sp.UpdatedAt)
}

func TestCompareAndSetAvailability(t *testing.T) {
	_, repo, _ := newTestRegistry(t, true)
	ctx := context.Background()

	sp, err := repo.CompareAndSetAvailability(ctx, 1, true, false)
	require.NoError(t, err)
	assert.False(t, sp.IsAvailable)

	sp, err = repo.CompareAndSetAvailability(ctx, 1, true, false)
	assert.ErrorIs(t, err, repository.ErrConflict)
	require.NotNil(t, sp)
	assert.False(t, sp.IsAvailable)
}

func TestToggleAvailabilityIsAtomic(t *testing.T) {
	_, repo, _ := newTestRegistry(t, true)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.ToggleAvailability(ctx, 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	sp, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.True(t, sp.IsAvailable, "an even number of toggles must end where it started")
}

func TestResetAllReturnsChangedCount(t *testing.T) {
	_, repo, lot := newTestRegistry(t, true, false, false, true, false)
	ctx := context.Background()

	changed, err := repo.ResetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, changed)

	spaces, err := repo.FindByLotID(ctx, lot.ID)
	require.NoError(t, err)
	require.Len(t, spaces, 5)
	for _, sp := range spaces {
		assert.True(t, sp.IsAvailable)
	}

	changed, err = repo.ResetAll(ctx)
	require.NoError(t, err)
	assert.Zero(t, changed)
}

func TestSeededStore(t *testing.T) {
	store := NewSeededStore(repository.DemoLots())
	lots, err := NewParkingLotRepository(store).FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, lots, 4)

	spaces, err := NewParkingSpaceRepository(store).FindAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, spaces, 30+54+48+54)
}

func TestCreateLotRejectsDuplicateName(t *testing.T) {
	store := NewStore()
	repo := NewParkingLotRepository(store)
	ctx := context.Background()

	lot, err := repo.Create(ctx, &domain.ParkingLot{Name: "Blue Mall"})
	require.NoError(t, err)
	assert.Equal(t, 1, lot.ID)

	_, err = repo.Create(ctx, &domain.ParkingLot{Name: "blue mall"})
	assert.ErrorIs(t, err, repository.ErrDuplicateEntry)
}
