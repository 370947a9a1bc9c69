package pricing

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestStoreUpdateMergesPartialPatch(t *testing.T) {
	store, err := NewStore(DefaultFactors())
	require.NoError(t, err)

	updated, err := store.Update(FactorsPatch{TimeMultiplier: ptr(1.8)})
	require.NoError(t, err)

	want := DefaultFactors()
	want.TimeMultiplier = 1.8
	assert.Equal(t, want, updated)
	assert.Equal(t, want, store.Get())
}

func TestStoreUpdateRejectsOutOfRange(t *testing.T) {
	tests := []struct {
		name  string
		patch FactorsPatch
	}{
		{"occupancy below one", FactorsPatch{OccupancyMultiplier: ptr(0.9)}},
		{"occupancy above cap", FactorsPatch{OccupancyMultiplier: ptr(3.1)}},
		{"time above cap", FactorsPatch{TimeMultiplier: ptr(2.5)}},
		{"event above cap", FactorsPatch{EventMultiplier: ptr(4.0)}},
		{"demand below one", FactorsPatch{DemandMultiplier: ptr(0.0)}},
		{"non-positive base price", FactorsPatch{BasePrice: ptr(0.0)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := NewStore(DefaultFactors())
			require.NoError(t, err)

			current, err := store.Update(tt.patch)
			assert.ErrorIs(t, err, ErrInvalidFactors)
			assert.Equal(t, DefaultFactors(), current)
			assert.Equal(t, DefaultFactors(), store.Get())
		})
	}
}

func TestStoreAcceptsCaps(t *testing.T) {
	store, err := NewStore(DefaultFactors())
	require.NoError(t, err)

	_, err = store.Update(FactorsPatch{
		OccupancyMultiplier: ptr(MaxOccupancyMultiplier),
		TimeMultiplier:      ptr(MaxTimeMultiplier),
		EventMultiplier:     ptr(1.0),
		DemandMultiplier:    ptr(MaxDemandMultiplier),
	})
	assert.NoError(t, err)
}

func TestStoreToggle(t *testing.T) {
	store, err := NewStore(DefaultFactors())
	require.NoError(t, err)

	assert.False(t, store.Toggle().Enabled)
	assert.True(t, store.Toggle().Enabled)
}

func TestStoreConcurrentPatchesDoNotLoseFields(t *testing.T) {
	store, err := NewStore(DefaultFactors())
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			_, _ = store.Update(FactorsPatch{TimeMultiplier: ptr(1.7)})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			_, _ = store.Update(FactorsPatch{EventMultiplier: ptr(2.5)})
		}
	}()
	wg.Wait()

	f := store.Get()
	assert.Equal(t, 1.7, f.TimeMultiplier)
	assert.Equal(t, 2.5, f.EventMultiplier)
}

func TestNewStoreRejectsInvalidInitial(t *testing.T) {
	f := DefaultFactors()
	f.TimeMultiplier = 0.5
	_, err := NewStore(f)
	assert.ErrorIs(t, err, ErrInvalidFactors)
}
