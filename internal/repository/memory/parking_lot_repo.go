package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/emmoscript/AutoSlot/internal/domain"
	"github.com/emmoscript/AutoSlot/internal/repository"
)

type parkingLotRepository struct {
	store *Store
}

func NewParkingLotRepository(store *Store) repository.ParkingLotRepository {
	return &parkingLotRepository{store: store}
}

func (r *parkingLotRepository) Create(ctx context.Context, lot *domain.ParkingLot) (*domain.ParkingLot, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.lots {
		if strings.EqualFold(existing.Name, lot.Name) {
			return nil, fmt.Errorf("%w: parking lot '%s' already exists", repository.ErrDuplicateEntry, lot.Name)
		}
	}
	created := r.store.loadLocked(*lot, nil)
	return &created, nil
}

func (r *parkingLotRepository) FindByID(ctx context.Context, id int) (*domain.ParkingLot, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	lot, ok := r.store.lots[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &lot, nil
}

func (r *parkingLotRepository) FindAll(ctx context.Context) ([]domain.ParkingLot, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	lots := make([]domain.ParkingLot, 0, len(r.store.lots))
	for _, lot := range r.store.lots {
		lots = append(lots, lot)
	}
	sort.Slice(lots, func(i, j int) bool { return lots[i].Name < lots[j].Name })
	return lots, nil
}
