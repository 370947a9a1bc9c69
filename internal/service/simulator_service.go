package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/emmoscript/AutoSlot/internal/domain"
	"github.com/emmoscript/AutoSlot/internal/repository"
)

const (
	MaxBatchSize    = 500
	autoTickTimeout = 30 * time.Second
	eventLogTimeout = 5 * time.Second
)

// SpaceEventListener observes transitions produced outside the session
// tracker (random batches, auto mode, manual triggers, SQS).
type SpaceEventListener interface {
	HandleSpaceEvent(ctx context.Context, event domain.SpaceEvent)
}

// ResetListener is told when every space has been made available.
type ResetListener interface {
	HandleReset(ctx context.Context)
}

// SimulatorService is the only writer of space availability. It turns sensor
// events into registry writes and keeps the auto-mode schedule.
type SimulatorService struct {
	lotRepo   repository.ParkingLotRepository
	spaceRepo repository.ParkingSpaceRepository
	eventLog  repository.SpaceEventLogRepository
	notifier  *Notifier
	strict    bool
	rng       Randomizer
	now       func() time.Time

	// writeMu orders every non-LPR write with its listener dispatch. LPR
	// writes are serialized by the session tracker instead.
	writeMu        sync.Mutex
	listeners      []SpaceEventListener
	resetListeners []ResetListener

	autoMu sync.Mutex
	auto   *autoRun
}

type autoRun struct {
	cancel    context.CancelFunc
	done      chan struct{}
	status    domain.AutoModeStatus
	ticks     atomic.Int64
	failures  atomic.Int64
	lastError atomic.Value
}

func NewSimulatorService(
	lotRepo repository.ParkingLotRepository,
	spaceRepo repository.ParkingSpaceRepository,
	eventLog repository.SpaceEventLogRepository,
	notifier *Notifier,
	strictGuard bool,
	rng Randomizer,
) *SimulatorService {
	if rng == nil {
		rng = NewRandomizer(0)
	}
	return &SimulatorService{
		lotRepo:   lotRepo,
		spaceRepo: spaceRepo,
		eventLog:  eventLog,
		notifier:  notifier,
		strict:    strictGuard,
		rng:       rng,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// AddListener must be called before the simulator starts serving.
func (s *SimulatorService) AddListener(l SpaceEventListener) {
	s.listeners = append(s.listeners, l)
}

func (s *SimulatorService) AddResetListener(l ResetListener) {
	s.resetListeners = append(s.resetListeners, l)
}

// TriggerEvent validates a raw sensor trigger and applies it.
func (s *SimulatorService) TriggerEvent(ctx context.Context, dto domain.TriggerEventDTO, source domain.EventSource) (*domain.TriggerEventResult, error) {
	if dto.SpaceID == 0 || dto.EventType == "" {
		return nil, validationError("Missing required fields: space_id, event_type")
	}
	eventType := domain.SensorEventType(dto.EventType)
	if !eventType.Valid() {
		return nil, validationError(`Invalid event_type. Must be "vehicle_entered" or "vehicle_exited"`)
	}

	space, event, err := s.Apply(ctx, dto.SpaceID, eventType, source)
	if err != nil {
		return nil, err
	}
	return &domain.TriggerEventResult{
		Message: fmt.Sprintf("Sensor event %s processed for space %s", eventType, space.Name),
		Space:   space,
		Event:   event,
	}, nil
}

// Apply writes the availability implied by eventType. With the strict guard a
// space already in the target state yields ErrConflict and is left untouched;
// otherwise the write goes through and refreshes UpdatedAt.
func (s *SimulatorService) Apply(ctx context.Context, spaceID int, eventType domain.SensorEventType, source domain.EventSource) (*domain.ParkingSpace, domain.SpaceEvent, error) {
	if source != domain.SourceLPR {
		s.writeMu.Lock()
		defer s.writeMu.Unlock()
	}
	target := eventType.TargetAvailability()

	var space *domain.ParkingSpace
	var err error
	if s.strict {
		space, err = s.spaceRepo.CompareAndSetAvailability(ctx, spaceID, !target, target)
	} else {
		space, err = s.spaceRepo.SetAvailability(ctx, spaceID, target)
	}
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return space, domain.SpaceEvent{}, fmt.Errorf("%w: parking space %d is already %s", repository.ErrConflict, spaceID, availabilityWord(target))
		}
		return nil, domain.SpaceEvent{}, fmt.Errorf("SimulatorService.Apply: %w", err)
	}

	event := s.record(ctx, space, eventType, source, s.lotName(ctx, space.LotID))
	return space, event, nil
}

// SetAvailability is the admin override: it always writes.
func (s *SimulatorService) SetAvailability(ctx context.Context, spaceID int, available bool) (*domain.ParkingSpace, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	space, err := s.spaceRepo.SetAvailability(ctx, spaceID, available)
	if err != nil {
		return nil, fmt.Errorf("SimulatorService.SetAvailability: %w", err)
	}
	s.record(ctx, space, domain.EventTypeFor(available), domain.SourceManual, s.lotName(ctx, space.LotID))
	return space, nil
}

// ResetAll makes every space available and returns how many changed.
func (s *SimulatorService) ResetAll(ctx context.Context) (int, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	changed, err := s.spaceRepo.ResetAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("SimulatorService.ResetAll: %w", err)
	}
	for _, l := range s.resetListeners {
		l.HandleReset(ctx)
	}
	s.notifier.Reset(changed)
	log.Printf("Simulator: reset %d spaces to available", changed)
	return changed, nil
}

// SimulateRandomBatch applies count toggles to spaces picked from the pool
// (one lot, or every lot when lotID is nil). Picks are drawn without
// replacement until the pool is exhausted, so a batch no larger than the pool
// touches distinct spaces. Event types follow from each space's state.
func (s *SimulatorService) SimulateRandomBatch(ctx context.Context, count int, lotID *int) ([]domain.SpaceEvent, error) {
	return s.simulateBatch(ctx, count, lotID, domain.SourceRandom)
}

func (s *SimulatorService) simulateBatch(ctx context.Context, count int, lotID *int, source domain.EventSource) ([]domain.SpaceEvent, error) {
	if count < 1 || count > MaxBatchSize {
		return nil, validationError(fmt.Sprintf("count must be between 1 and %d", MaxBatchSize))
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var candidates []domain.ParkingSpace
	var err error
	if lotID != nil {
		candidates, err = s.spaceRepo.FindByLotID(ctx, *lotID)
	} else {
		candidates, err = s.spaceRepo.FindAll(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("SimulatorService.SimulateRandomBatch: %w", err)
	}
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}

	lotNames := s.lotNames(ctx)
	events := make([]domain.SpaceEvent, 0, count)
	var order []int
	for i := 0; i < count; i++ {
		if len(order) == 0 {
			order = s.rng.Perm(len(candidates))
		}
		idx := order[0]
		order = order[1:]

		updated, err := s.spaceRepo.ToggleAvailability(ctx, candidates[idx].ID)
		if err != nil {
			return events, fmt.Errorf("SimulatorService.SimulateRandomBatch (space %d): %w", candidates[idx].ID, err)
		}
		candidates[idx] = *updated

		events = append(events, s.record(ctx, updated, domain.EventTypeFor(updated.IsAvailable), source, lotNames[updated.LotID]))
	}
	return events, nil
}

// record logs, broadcasts and forwards one applied transition.
func (s *SimulatorService) record(ctx context.Context, space *domain.ParkingSpace, eventType domain.SensorEventType, source domain.EventSource, lotName string) domain.SpaceEvent {
	event := domain.SpaceEvent{
		ID:              uuid.NewString(),
		SpaceID:         space.ID,
		SpaceName:       space.Name,
		LotID:           space.LotID,
		LotName:         lotName,
		Level:           space.Level,
		EventType:       eventType,
		NewAvailability: space.IsAvailable,
		Source:          source,
		Timestamp:       s.now(),
	}

	if s.eventLog != nil {
		logCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), eventLogTimeout)
		if err := s.eventLog.Create(logCtx, &event); err != nil {
			log.Printf("Simulator: failed to log event for space %d: %v", space.ID, err)
		}
		cancel()
	}
	s.notifier.SpaceEvent(ctx, event)

	if source != domain.SourceLPR {
		for _, l := range s.listeners {
			l.HandleSpaceEvent(ctx, event)
		}
	}
	return event
}

// RecentEvents returns the newest logged transitions first.
func (s *SimulatorService) RecentEvents(ctx context.Context, lotID *int, limit int) ([]domain.SpaceEvent, error) {
	if s.eventLog == nil {
		return []domain.SpaceEvent{}, nil
	}
	events, err := s.eventLog.FindRecent(ctx, lotID, limit)
	if err != nil {
		return nil, fmt.Errorf("SimulatorService.RecentEvents: %w", err)
	}
	return events, nil
}

// PruneEventLog drops logged events older than retention.
func (s *SimulatorService) PruneEventLog(ctx context.Context, retention time.Duration) (int, error) {
	if s.eventLog == nil {
		return 0, nil
	}
	return s.eventLog.DeleteOlderThan(ctx, s.now().Add(-retention))
}

// StartAutoMode schedules a random batch every interval. It is a no-op
// returning started=false when auto mode is already running.
func (s *SimulatorService) StartAutoMode(interval time.Duration, eventsPerInterval int, lotID *int) (domain.AutoModeStatus, bool, error) {
	if interval <= 0 {
		return domain.AutoModeStatus{}, false, validationError("interval must be positive")
	}
	if eventsPerInterval < 1 || eventsPerInterval > MaxBatchSize {
		return domain.AutoModeStatus{}, false, validationError(fmt.Sprintf("events_per_interval must be between 1 and %d", MaxBatchSize))
	}

	s.autoMu.Lock()
	defer s.autoMu.Unlock()

	if s.auto != nil {
		return s.statusLocked(), false, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	run := &autoRun{
		cancel: cancel,
		done:   make(chan struct{}),
		status: domain.AutoModeStatus{
			Running:           true,
			IntervalSeconds:   int(interval / time.Second),
			EventsPerInterval: eventsPerInterval,
			LotID:             lotID,
		},
	}
	s.auto = run
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		s.runAuto(ctx, run, ticker.C, eventsPerInterval, lotID)
	}()

	log.Printf("Simulator: auto mode started (interval %s, %d events per tick)", interval, eventsPerInterval)
	return s.statusLocked(), true, nil
}

// runAuto runs one batch per tick. A tick already buffered when the run is
// cancelled is dropped.
func (s *SimulatorService) runAuto(ctx context.Context, run *autoRun, ticks <-chan time.Time, perInterval int, lotID *int) {
	defer close(run.done)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticks:
			if ctx.Err() != nil {
				return
			}
			// A tick in flight is allowed to finish after a stop.
			tickCtx, cancel := context.WithTimeout(context.Background(), autoTickTimeout)
			_, err := s.simulateBatch(tickCtx, perInterval, lotID, domain.SourceAuto)
			cancel()
			run.ticks.Add(1)
			if err != nil {
				run.failures.Add(1)
				run.lastError.Store(err.Error())
				log.Printf("Simulator: auto mode tick failed: %v", err)
			}
		}
	}
}

// StopAutoMode cancels the schedule and waits for the loop to exit. Stopping
// when not running is a no-op returning false.
func (s *SimulatorService) StopAutoMode() bool {
	s.autoMu.Lock()
	defer s.autoMu.Unlock()

	if s.auto == nil {
		return false
	}
	s.auto.cancel()
	<-s.auto.done
	s.auto = nil
	log.Println("Simulator: auto mode stopped")
	return true
}

func (s *SimulatorService) AutoModeStatus() domain.AutoModeStatus {
	s.autoMu.Lock()
	defer s.autoMu.Unlock()
	return s.statusLocked()
}

func (s *SimulatorService) statusLocked() domain.AutoModeStatus {
	if s.auto == nil {
		return domain.AutoModeStatus{Running: false}
	}
	st := s.auto.status
	st.Ticks = s.auto.ticks.Load()
	st.FailedTicks = s.auto.failures.Load()
	if msg, ok := s.auto.lastError.Load().(string); ok {
		st.LastError = msg
	}
	return st
}

func (s *SimulatorService) lotName(ctx context.Context, lotID int) string {
	lot, err := s.lotRepo.FindByID(ctx, lotID)
	if err != nil {
		return ""
	}
	return lot.Name
}

func (s *SimulatorService) lotNames(ctx context.Context) map[int]string {
	names := make(map[int]string)
	lots, err := s.lotRepo.FindAll(ctx)
	if err != nil {
		log.Printf("Simulator: could not load lot names: %v", err)
		return names
	}
	for _, lot := range lots {
		names[lot.ID] = lot.Name
	}
	return names
}

func availabilityWord(available bool) string {
	if available {
		return "available"
	}
	return "occupied"
}
