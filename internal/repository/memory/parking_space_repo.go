package memory

import (
	"context"

	"github.com/emmoscript/AutoSlot/internal/domain"
	"github.com/emmoscript/AutoSlot/internal/repository"
)

type parkingSpaceRepository struct {
	store *Store
}

func NewParkingSpaceRepository(store *Store) repository.ParkingSpaceRepository {
	return &parkingSpaceRepository{store: store}
}

func (r *parkingSpaceRepository) FindByID(ctx context.Context, id int) (*domain.ParkingSpace, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	sp, ok := r.store.spaces[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &sp, nil
}

func (r *parkingSpaceRepository) FindByLotID(ctx context.Context, lotID int) ([]domain.ParkingSpace, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return r.store.sortedSpaces(func(sp domain.ParkingSpace) bool { return sp.LotID == lotID }), nil
}

func (r *parkingSpaceRepository) FindAll(ctx context.Context) ([]domain.ParkingSpace, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return r.store.sortedSpaces(nil), nil
}

func (r *parkingSpaceRepository) SetAvailability(ctx context.Context, id int, available bool) (*domain.ParkingSpace, error) {
	return r.update(id, func(sp *domain.ParkingSpace) error {
		sp.IsAvailable = available
		return nil
	})
}

func (r *parkingSpaceRepository) CompareAndSetAvailability(ctx context.Context, id int, expected, next bool) (*domain.ParkingSpace, error) {
	return r.update(id, func(sp *domain.ParkingSpace) error {
		if sp.IsAvailable != expected {
			return repository.ErrConflict
		}
		sp.IsAvailable = next
		return nil
	})
}

func (r *parkingSpaceRepository) ToggleAvailability(ctx context.Context, id int) (*domain.ParkingSpace, error) {
	return r.update(id, func(sp *domain.ParkingSpace) error {
		sp.IsAvailable = !sp.IsAvailable
		return nil
	})
}

func (r *parkingSpaceRepository) ResetAll(ctx context.Context) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := r.store.now()
	changed := 0
	for id, sp := range r.store.spaces {
		if sp.IsAvailable {
			continue
		}
		sp.IsAvailable = true
		sp.UpdatedAt = now
		r.store.spaces[id] = sp
		changed++
	}
	return changed, nil
}

// update applies fn under the write lock. On ErrConflict the current,
// unmodified space is returned alongside the error.
func (r *parkingSpaceRepository) update(id int, fn func(sp *domain.ParkingSpace) error) (*domain.ParkingSpace, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	sp, ok := r.store.spaces[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	current := sp
	if err := fn(&sp); err != nil {
		return &current, err
	}
	sp.UpdatedAt = r.store.now()
	r.store.spaces[id] = sp
	return &sp, nil
}
