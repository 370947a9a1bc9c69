// Package memory is an in-process implementation of the repository
// interfaces, used as the default storage driver and as a test fake.
package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/emmoscript/AutoSlot/internal/domain"
	"github.com/emmoscript/AutoSlot/internal/repository"
)

// Store holds lots and spaces behind one RWMutex so every single-space
// read-modify-write is linearizable.
type Store struct {
	mu          sync.RWMutex
	lots        map[int]domain.ParkingLot
	spaces      map[int]domain.ParkingSpace
	nextLotID   int
	nextSpaceID int
	now         func() time.Time
}

func NewStore() *Store {
	return &Store{
		lots:        make(map[int]domain.ParkingLot),
		spaces:      make(map[int]domain.ParkingSpace),
		nextLotID:   1,
		nextSpaceID: 1,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// NewSeededStore returns a store loaded with the given lots.
func NewSeededStore(seed []repository.SeedLot) *Store {
	s := NewStore()
	for _, lot := range seed {
		s.Load(lot.Lot, func(lotID int) []domain.ParkingSpace { return lot.Spaces(lotID) })
	}
	return s
}

// Load inserts a lot and the spaces built for its assigned id.
func (s *Store) Load(lot domain.ParkingLot, spaces func(lotID int) []domain.ParkingSpace) domain.ParkingLot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loadLocked(lot, spaces)
}

func (s *Store) loadLocked(lot domain.ParkingLot, spaces func(lotID int) []domain.ParkingSpace) domain.ParkingLot {
	now := s.now()
	lot.ID = s.nextLotID
	s.nextLotID++
	lot.CreatedAt, lot.UpdatedAt = now, now
	s.lots[lot.ID] = lot

	if spaces != nil {
		for _, sp := range spaces(lot.ID) {
			sp.ID = s.nextSpaceID
			s.nextSpaceID++
			sp.LotID = lot.ID
			sp.CreatedAt, sp.UpdatedAt = now, now
			s.spaces[sp.ID] = sp
		}
	}
	return lot
}

func (s *Store) sortedSpaces(filter func(domain.ParkingSpace) bool) []domain.ParkingSpace {
	out := make([]domain.ParkingSpace, 0)
	for _, sp := range s.spaces {
		if filter == nil || filter(sp) {
			out = append(out, sp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Level != out[j].Level {
			return out[i].Level < out[j].Level
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// SetClock replaces the clock used for CreatedAt/UpdatedAt stamps.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}
