package service

import (
	"context"
	"fmt"
	"time"

	"github.com/emmoscript/AutoSlot/internal/domain"
	"github.com/emmoscript/AutoSlot/internal/pricing"
	"github.com/emmoscript/AutoSlot/internal/repository"
)

// PricingSnapshot is what the dashboard's pricing panel renders.
type PricingSnapshot struct {
	Factors      pricing.Factors       `json:"factors"`
	Enabled      bool                  `json:"enabled"`
	NearbyEvents []pricing.NearbyEvent `json:"nearby_events"`
}

type PricingPreviewRequest struct {
	BasePrice float64
	Zone      domain.ZoneType
	Occupancy float64
	At        time.Time
}

type PricingPreview struct {
	BasePrice    float64               `json:"base_price"`
	ZoneType     domain.ZoneType       `json:"zone_type"`
	Occupancy    float64               `json:"occupancy"`
	IsWeekend    bool                  `json:"is_weekend"`
	CurrentPrice float64               `json:"current_price"`
	Curve        []pricing.HourlyPrice `json:"curve"`
}

// PricingService quotes dynamic prices from a registry snapshot, the clock,
// the nearby-event feed and the current factor set.
type PricingService struct {
	lotRepo   repository.ParkingLotRepository
	spaceRepo repository.ParkingSpaceRepository
	factors   *pricing.Store
	events    func() []pricing.NearbyEvent
	now       func() time.Time
}

func NewPricingService(lotRepo repository.ParkingLotRepository, spaceRepo repository.ParkingSpaceRepository, factors *pricing.Store) *PricingService {
	return &PricingService{
		lotRepo:   lotRepo,
		spaceRepo: spaceRepo,
		factors:   factors,
		events:    pricing.DefaultNearbyEvents,
		now:       time.Now,
	}
}

func (s *PricingService) SetClock(now func() time.Time) { s.now = now }

func (s *PricingService) SetNearbyEvents(events func() []pricing.NearbyEvent) { s.events = events }

func (s *PricingService) Snapshot() PricingSnapshot {
	f := s.factors.Get()
	return PricingSnapshot{Factors: f, Enabled: f.Enabled, NearbyEvents: s.events()}
}

func (s *PricingService) UpdateFactors(patch pricing.FactorsPatch) (PricingSnapshot, error) {
	if _, err := s.factors.Update(patch); err != nil {
		return s.Snapshot(), err
	}
	return s.Snapshot(), nil
}

func (s *PricingService) Toggle() PricingSnapshot {
	s.factors.Toggle()
	return s.Snapshot()
}

// QuoteSpace prices one space at the given instant; a zero at means now.
func (s *PricingService) QuoteSpace(ctx context.Context, spaceID int, at time.Time) (*domain.SpacePrice, error) {
	space, err := s.spaceRepo.FindByID(ctx, spaceID)
	if err != nil {
		return nil, fmt.Errorf("PricingService.QuoteSpace: %w", err)
	}
	lotSpaces, err := s.spaceRepo.FindByLotID(ctx, space.LotID)
	if err != nil {
		return nil, fmt.Errorf("PricingService.QuoteSpace: %w", err)
	}
	quote := s.quote(*space, occupancyOf(lotSpaces), s.instant(at), s.factors.Get())
	return &quote, nil
}

// QuoteLot prices every space of a lot against one factor snapshot.
func (s *PricingService) QuoteLot(ctx context.Context, lotID int, at time.Time) ([]domain.SpacePrice, error) {
	if _, err := s.lotRepo.FindByID(ctx, lotID); err != nil {
		return nil, fmt.Errorf("PricingService.QuoteLot: %w", err)
	}
	spaces, err := s.spaceRepo.FindByLotID(ctx, lotID)
	if err != nil {
		return nil, fmt.Errorf("PricingService.QuoteLot: %w", err)
	}

	ratio := occupancyOf(spaces)
	when := s.instant(at)
	f := s.factors.Get()
	out := make([]domain.SpacePrice, 0, len(spaces))
	for _, sp := range spaces {
		out = append(out, s.quote(sp, ratio, when, f))
	}
	return out, nil
}

// Preview prices a hypothetical space over a whole day.
func (s *PricingService) Preview(req PricingPreviewRequest) (*PricingPreview, error) {
	if req.BasePrice <= 0 {
		return nil, validationError("base_price must be greater than 0")
	}
	if req.Zone == "" {
		req.Zone = domain.ZoneStandard
	}
	if !req.Zone.Valid() {
		return nil, validationError(`Invalid zone. Must be "premium", "standard" or "economy"`)
	}
	if req.Occupancy < 0 || req.Occupancy > 1 {
		return nil, validationError("occupancy must be between 0 and 1")
	}

	when := s.instant(req.At)
	f := s.factors.Get()
	in := pricing.Input{
		BasePrice:                req.BasePrice,
		OccupancyRatio:           req.Occupancy,
		IsPeakHour:               pricing.IsPeakHour(when.Hour()),
		IsWeekend:                pricing.IsWeekend(when.Weekday()),
		HasHighImpactNearbyEvent: pricing.HasHighImpactNearbyEvent(s.events()),
		ZoneType:                 req.Zone,
	}
	return &PricingPreview{
		BasePrice:    req.BasePrice,
		ZoneType:     req.Zone,
		Occupancy:    req.Occupancy,
		IsWeekend:    in.IsWeekend,
		CurrentPrice: pricing.ComputePrice(in, f),
		Curve:        pricing.DailyCurve(in, f),
	}, nil
}

func (s *PricingService) quote(sp domain.ParkingSpace, ratio float64, at time.Time, f pricing.Factors) domain.SpacePrice {
	in := pricing.Input{
		BasePrice:                sp.BasePrice,
		OccupancyRatio:           ratio,
		IsPeakHour:               pricing.IsPeakHour(at.Hour()),
		IsWeekend:                pricing.IsWeekend(at.Weekday()),
		HasHighImpactNearbyEvent: pricing.HasHighImpactNearbyEvent(s.events()),
		ZoneType:                 sp.ZoneType,
	}
	return domain.SpacePrice{
		SpaceID:         sp.ID,
		SpaceName:       sp.Name,
		LotID:           sp.LotID,
		Level:           sp.Level,
		ZoneType:        sp.ZoneType,
		IsAvailable:     sp.IsAvailable,
		BasePrice:       sp.BasePrice,
		CurrentPrice:    pricing.ComputePrice(in, f),
		OccupancyRatio:  ratio,
		IsPeakHour:      in.IsPeakHour,
		IsWeekend:       in.IsWeekend,
		HighImpactEvent: in.HasHighImpactNearbyEvent,
		PricingEnabled:  f.Enabled,
		QuotedAt:        at,
	}
}

func (s *PricingService) instant(at time.Time) time.Time {
	if at.IsZero() {
		return s.now()
	}
	return at
}

func occupancyOf(spaces []domain.ParkingSpace) float64 {
	occupied := 0
	for _, sp := range spaces {
		if !sp.IsAvailable {
			occupied++
		}
	}
	return pricing.OccupancyRatio(occupied, len(spaces))
}
