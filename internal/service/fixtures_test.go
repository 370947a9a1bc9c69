package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"

	"github.com/emmoscript/AutoSlot/internal/domain"
	"github.com/emmoscript/AutoSlot/internal/repository"
	"github.com/emmoscript/AutoSlot/internal/repository/memory"
)

type recordingHub struct {
	mu   sync.Mutex
	sent []domain.LiveNotification
}

func (h *recordingHub) Broadcast(n domain.LiveNotification) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sent = append(h.sent, n)
}

func (h *recordingHub) ofType(kind domain.NotificationType) []domain.LiveNotification {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []domain.LiveNotification
	for _, n := range h.sent {
		if n.Type == kind {
			out = append(out, n)
		}
	}
	return out
}

// fixedRand always picks index 0 and returns f from Float64.
type fixedRand struct{ f float64 }

func (r fixedRand) Intn(n int) int   { return 0 }
func (r fixedRand) Float64() float64 { return r.f }
func (r fixedRand) Perm(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

type fixture struct {
	store     *memory.Store
	lotRepo   repository.ParkingLotRepository
	spaceRepo repository.ParkingSpaceRepository
	eventLog  repository.SpaceEventLogRepository
	hub       *recordingHub
	notifier  *Notifier
	simulator *SimulatorService
}

func newFixture(t *testing.T, strict bool) *fixture {
	t.Helper()
	store := memory.NewStore()
	f := &fixture{
		store:     store,
		lotRepo:   memory.NewParkingLotRepository(store),
		spaceRepo: memory.NewParkingSpaceRepository(store),
		eventLog:  memory.NewSpaceEventLogRepository(100),
		hub:       &recordingHub{},
	}
	f.notifier = NewNotifier(f.hub)
	f.simulator = NewSimulatorService(f.lotRepo, f.spaceRepo, f.eventLog, f.notifier, strict, NewRandomizer(42))
	return f
}

// addLot loads a lot whose spaces have the given initial availability and
// returns their ids in order.
func (f *fixture) addLot(name string, zone domain.ZoneType, availability ...bool) (domain.ParkingLot, []int) {
	lot := f.store.Load(domain.ParkingLot{Name: name, Address: "Av. Test"}, func(lotID int) []domain.ParkingSpace {
		spaces := make([]domain.ParkingSpace, 0, len(availability))
		for i, available := range availability {
			spaces = append(spaces, domain.ParkingSpace{
				Name:        string(rune('A'+i)) + "1",
				Level:       1,
				ZoneType:    zone,
				BasePrice:   100,
				IsAvailable: available,
			})
		}
		return spaces
	})

	spaces, _ := f.spaceRepo.FindByLotID(context.Background(), lot.ID)
	var ids []int
	for _, sp := range spaces {
		ids = append(ids, sp.ID)
	}
	return lot, ids
}

func (f *fixture) sessions(t *testing.T, cfg SessionConfig) *SessionService {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	s := NewSessionService(f.simulator, f.spaceRepo, f.notifier, node, NewRandomizer(7), cfg)
	f.simulator.AddListener(s)
	f.simulator.AddResetListener(s)
	return s
}

type steppingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *steppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *steppingClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
