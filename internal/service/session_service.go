package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"gopkg.in/guregu/null.v4"

	"github.com/emmoscript/AutoSlot/internal/domain"
	"github.com/emmoscript/AutoSlot/internal/repository"
)

// SpaceEventApplier is the simulator operation the tracker drives.
type SpaceEventApplier interface {
	Apply(ctx context.Context, spaceID int, eventType domain.SensorEventType, source domain.EventSource) (*domain.ParkingSpace, domain.SpaceEvent, error)
}

type SessionConfig struct {
	StrictGuard  bool
	MinimumFare  float64
	HourlyRate   float64
	HistoryLimit int
}

type activeSession struct {
	session domain.VehicleSession
	record  domain.LPRRecord
}

// SessionService tracks synthetic LPR vehicle visits per space and settles
// them on exit. All state is guarded by mu. LPR writes go to the simulator
// with mu held; other writes reach the tracker through listeners, which the
// simulator calls under its write lock.
type SessionService struct {
	mu        sync.Mutex
	applier   SpaceEventApplier
	spaceRepo repository.ParkingSpaceRepository
	notifier  *Notifier
	ids       *snowflake.Node
	rng       Randomizer
	now       func() time.Time
	cfg       SessionConfig

	active       map[int]*activeSession
	records      []domain.LPRRecord
	sessions     []domain.VehicleSession
	transactions []domain.Transaction
}

func NewSessionService(
	applier SpaceEventApplier,
	spaceRepo repository.ParkingSpaceRepository,
	notifier *Notifier,
	ids *snowflake.Node,
	rng Randomizer,
	cfg SessionConfig,
) *SessionService {
	if rng == nil {
		rng = NewRandomizer(0)
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 1000
	}
	return &SessionService{
		applier:   applier,
		spaceRepo: spaceRepo,
		notifier:  notifier,
		ids:       ids,
		rng:       rng,
		now:       func() time.Time { return time.Now().UTC() },
		cfg:       cfg,
		active:    make(map[int]*activeSession),
	}
}

// SetClock replaces the clock used for entry and exit times.
func (s *SessionService) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// OnEntry detects a vehicle entering spaceID: it occupies the space, then
// opens an LPR record and a session for it.
func (s *SessionService) OnEntry(ctx context.Context, spaceID int) (*domain.LPRRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.active[spaceID]
	if existing != nil && s.cfg.StrictGuard {
		return nil, fmt.Errorf("%w: parking space %d already has an active session (%s)", repository.ErrConflict, spaceID, existing.record.LicensePlate)
	}

	space, _, err := s.applier.Apply(ctx, spaceID, domain.EventVehicleEntered, domain.SourceLPR)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if existing != nil {
		s.supersedeLocked(existing, now)
	}
	entry := s.openLocked(space, now)
	log.Printf("SessionService: vehicle %s entered space %d", entry.record.LicensePlate, spaceID)
	record := entry.record
	return &record, nil
}

// OnExit settles the active session of spaceID and frees the space.
func (s *SessionService) OnExit(ctx context.Context, spaceID int) (*domain.ExitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.active[spaceID]
	if entry == nil {
		if _, err := s.spaceRepo.FindByID(ctx, spaceID); err != nil {
			return nil, fmt.Errorf("SessionService.OnExit: %w", err)
		}
		return nil, fmt.Errorf("%w: parking space %d", repository.ErrNoActiveSession, spaceID)
	}

	_, _, err := s.applier.Apply(ctx, spaceID, domain.EventVehicleExited, domain.SourceLPR)
	if err != nil {
		if !errors.Is(err, repository.ErrConflict) {
			return nil, err
		}
		// The space was already freed by another path; the visit still settles.
		log.Printf("SessionService: space %d already available on exit: %v", spaceID, err)
	}

	result := s.settleLocked(entry, s.now())
	s.notifier.Settlement(ctx, result.Transaction)
	log.Printf("SessionService: vehicle %s left space %d after %d min, charged %.2f",
		result.LPRRecord.LicensePlate, spaceID, result.Transaction.DurationMinutes, result.Transaction.TotalCost)
	return result, nil
}

// HandleSpaceEvent keeps sessions in step with transitions the tracker did
// not initiate. Events can reach it after a later LPR write to the same
// space, so the registry state wins over the event type. It never writes to
// the registry.
func (s *SessionService) HandleSpaceEvent(ctx context.Context, event domain.SpaceEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	space, err := s.spaceRepo.FindByID(ctx, event.SpaceID)
	if err != nil {
		log.Printf("SessionService: could not reconcile space %d: %v", event.SpaceID, err)
		return
	}

	entry := s.active[event.SpaceID]
	switch {
	case !space.IsAvailable && entry == nil:
		s.openLocked(space, event.Timestamp)
	case space.IsAvailable && entry != nil:
		result := s.settleLocked(entry, event.Timestamp)
		s.notifier.Settlement(ctx, result.Transaction)
	}
}

// HandleReset closes, without charging, every active session whose space is
// now available. A session opened on a space after the reset is kept.
func (s *SessionService) HandleReset(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	spaces, err := s.spaceRepo.FindAll(ctx)
	if err != nil {
		log.Printf("SessionService: could not reconcile sessions after reset: %v", err)
		return
	}
	occupied := make(map[int]bool, len(spaces))
	for _, sp := range spaces {
		occupied[sp.ID] = !sp.IsAvailable
	}

	now := s.now()
	for spaceID, entry := range s.active {
		if !occupied[spaceID] {
			s.supersedeLocked(entry, now)
		}
	}
}

func (s *SessionService) openLocked(space *domain.ParkingSpace, at time.Time) *activeSession {
	record := domain.LPRRecord{
		ID:              s.ids.Generate(),
		LotID:           space.LotID,
		SpaceID:         space.ID,
		LicensePlate:    GeneratePlate(s.rng),
		VehicleType:     PickVehicleType(s.rng),
		EntryTime:       at,
		CameraLocation:  domain.CameraEntrance,
		ConfidenceScore: confidenceScore(s.rng),
		Status:          domain.LPRStatusEntered,
		PaymentStatus:   domain.PaymentPending,
		CreatedAt:       at,
		UpdatedAt:       at,
	}
	entry := &activeSession{
		record: record,
		session: domain.VehicleSession{
			LPRRecordID:  record.ID,
			SpaceID:      space.ID,
			LotID:        space.LotID,
			LicensePlate: record.LicensePlate,
			EntryTime:    at,
			IsActive:     true,
		},
	}
	s.active[space.ID] = entry
	return entry
}

// Settle computes the charge for a visit: minutes are rounded, the cost is
// the hourly rate prorated and rounded up, never below the minimum fare.
func Settle(elapsed time.Duration, minimumFare, hourlyRate float64) (int, float64) {
	if elapsed < 0 {
		elapsed = 0
	}
	minutes := int(math.Round(elapsed.Minutes()))
	cost := math.Ceil(float64(minutes) / 60 * hourlyRate)
	return minutes, math.Max(minimumFare, cost)
}

func (s *SessionService) settleLocked(entry *activeSession, at time.Time) *domain.ExitResult {
	minutes, cost := Settle(at.Sub(entry.record.EntryTime), s.cfg.MinimumFare, s.cfg.HourlyRate)

	tx := domain.Transaction{
		ID:              uuid.NewString(),
		SpaceID:         entry.session.SpaceID,
		LotID:           entry.session.LotID,
		LPRRecordID:     entry.record.ID,
		LicensePlate:    entry.record.LicensePlate,
		VehicleType:     entry.record.VehicleType,
		StartTime:       entry.record.EntryTime,
		EndTime:         at,
		DurationMinutes: minutes,
		TotalCost:       cost,
		Status:          domain.TransactionCompleted,
	}

	record := entry.record
	record.ExitTime = null.TimeFrom(at)
	record.DurationMinutes = null.IntFrom(int64(minutes))
	record.Status = domain.LPRStatusExited
	record.PaymentStatus = domain.PaymentPaid
	record.TransactionID = null.StringFrom(tx.ID)
	record.UpdatedAt = at

	s.closeLocked(entry, record, at)
	s.transactions = appendCapped(s.transactions, tx, s.cfg.HistoryLimit)
	return &domain.ExitResult{LPRRecord: record, Transaction: tx}
}

// supersedeLocked closes a session that will never be charged.
func (s *SessionService) supersedeLocked(entry *activeSession, at time.Time) {
	record := entry.record
	record.ExitTime = null.TimeFrom(at)
	record.Status = domain.LPRStatusExited
	record.PaymentStatus = domain.PaymentUnpaid
	record.UpdatedAt = at
	s.closeLocked(entry, record, at)
}

func (s *SessionService) closeLocked(entry *activeSession, record domain.LPRRecord, at time.Time) {
	session := entry.session
	session.IsActive = false
	session.ExitTime = null.TimeFrom(at)

	delete(s.active, session.SpaceID)
	s.records = appendCapped(s.records, record, s.cfg.HistoryLimit)
	s.sessions = appendCapped(s.sessions, session, s.cfg.HistoryLimit)
}

func appendCapped[T any](list []T, item T, limit int) []T {
	list = append(list, item)
	if over := len(list) - limit; over > 0 {
		list = append(list[:0:0], list[over:]...)
	}
	return list
}

// ActiveSessions returns open sessions ordered by entry time.
func (s *SessionService) ActiveSessions() []domain.VehicleSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.VehicleSession, 0, len(s.active))
	for _, entry := range s.active {
		out = append(out, entry.session)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntryTime.Before(out[j].EntryTime) })
	return out
}

// LPRHistory returns active and closed records, newest entry first.
func (s *SessionService) LPRHistory(limit int) []domain.LPRRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.historyLocked(limit)
}

func (s *SessionService) historyLocked(limit int) []domain.LPRRecord {
	out := make([]domain.LPRRecord, 0, len(s.active)+len(s.records))
	for _, entry := range s.active {
		out = append(out, entry.record)
	}
	out = append(out, s.records...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].EntryTime.After(out[j].EntryTime) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Transactions returns settlements newest first.
func (s *SessionService) Transactions(limit int) []domain.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Transaction, 0, len(s.transactions))
	for i := len(s.transactions) - 1; i >= 0; i-- {
		if limit > 0 && len(out) >= limit {
			break
		}
		out = append(out, s.transactions[i])
	}
	return out
}

// Analytics summarizes the retained LPR history.
func (s *SessionService) Analytics() domain.LPRAnalytics {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.historyLocked(0)
	a := domain.LPRAnalytics{
		TotalVehicles:  len(records),
		ActiveVehicles: len(s.active),
		VehiclesByType: make(map[domain.VehicleType]int),
		VehiclesByHour: make(map[int]int),
		TopPlates:      []domain.PlateVisits{},
	}

	visits := make(map[string]int)
	durationSum, durationCount := 0, 0
	for _, r := range records {
		a.VehiclesByType[r.VehicleType]++
		a.VehiclesByHour[r.EntryTime.Hour()]++
		visits[r.LicensePlate]++
		if r.DurationMinutes.Valid {
			durationSum += int(r.DurationMinutes.Int64)
			durationCount++
		}
	}
	if durationCount > 0 {
		a.AverageDuration = math.Round(float64(durationSum)/float64(durationCount)*100) / 100
	}
	for _, tx := range s.transactions {
		a.TotalRevenue += tx.TotalCost
	}

	for plate, n := range visits {
		a.TopPlates = append(a.TopPlates, domain.PlateVisits{Plate: plate, Visits: n})
	}
	sort.Slice(a.TopPlates, func(i, j int) bool {
		if a.TopPlates[i].Visits != a.TopPlates[j].Visits {
			return a.TopPlates[i].Visits > a.TopPlates[j].Visits
		}
		return a.TopPlates[i].Plate < a.TopPlates[j].Plate
	})
	if len(a.TopPlates) > 5 {
		a.TopPlates = a.TopPlates[:5]
	}

	a.RecentActivity = records
	if len(a.RecentActivity) > 10 {
		a.RecentActivity = a.RecentActivity[:10]
	}
	return a
}
