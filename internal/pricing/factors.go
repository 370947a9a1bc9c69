package pricing

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

var ErrInvalidFactors = errors.New("invalid pricing factors")

const (
	MaxOccupancyMultiplier = 3.0
	MaxTimeMultiplier      = 2.0
	MaxEventMultiplier     = 3.0
	MaxDemandMultiplier    = 3.0
)

// Factors is one immutable snapshot of the admin-tunable pricing knobs.
type Factors struct {
	OccupancyMultiplier float64 `json:"occupancy_multiplier"`
	TimeMultiplier      float64 `json:"time_multiplier"`
	EventMultiplier     float64 `json:"event_multiplier"`
	DemandMultiplier    float64 `json:"demand_multiplier"`
	BasePrice           float64 `json:"base_price"`
	Enabled             bool    `json:"enabled"`
}

func DefaultFactors() Factors {
	return Factors{
		OccupancyMultiplier: 1.5,
		TimeMultiplier:      1.2,
		EventMultiplier:     2.0,
		DemandMultiplier:    1.3,
		BasePrice:           5.0,
		Enabled:             true,
	}
}

// FactorsPatch is a partial update; nil fields keep their current value.
type FactorsPatch struct {
	OccupancyMultiplier *float64 `json:"occupancy_multiplier"`
	TimeMultiplier      *float64 `json:"time_multiplier"`
	EventMultiplier     *float64 `json:"event_multiplier"`
	DemandMultiplier    *float64 `json:"demand_multiplier"`
	BasePrice           *float64 `json:"base_price"`
	Enabled             *bool    `json:"enabled"`
}

// Merge returns f with every non-nil patch field applied.
func (f Factors) Merge(p FactorsPatch) Factors {
	if p.OccupancyMultiplier != nil {
		f.OccupancyMultiplier = *p.OccupancyMultiplier
	}
	if p.TimeMultiplier != nil {
		f.TimeMultiplier = *p.TimeMultiplier
	}
	if p.EventMultiplier != nil {
		f.EventMultiplier = *p.EventMultiplier
	}
	if p.DemandMultiplier != nil {
		f.DemandMultiplier = *p.DemandMultiplier
	}
	if p.BasePrice != nil {
		f.BasePrice = *p.BasePrice
	}
	if p.Enabled != nil {
		f.Enabled = *p.Enabled
	}
	return f
}

func (f Factors) Validate() error {
	checks := []struct {
		name  string
		value float64
		max   float64
	}{
		{"occupancy_multiplier", f.OccupancyMultiplier, MaxOccupancyMultiplier},
		{"time_multiplier", f.TimeMultiplier, MaxTimeMultiplier},
		{"event_multiplier", f.EventMultiplier, MaxEventMultiplier},
		{"demand_multiplier", f.DemandMultiplier, MaxDemandMultiplier},
	}
	for _, c := range checks {
		if c.value < 1 || c.value > c.max {
			return fmt.Errorf("%w: %s must be between 1 and %g, got %g", ErrInvalidFactors, c.name, c.max, c.value)
		}
	}
	if f.BasePrice <= 0 {
		return fmt.Errorf("%w: base_price must be positive, got %g", ErrInvalidFactors, f.BasePrice)
	}
	return nil
}

// Store is the process-wide holder of the current Factors. Reads are
// lock-free; writers are serialized so partial merges never interleave.
type Store struct {
	mu      sync.Mutex
	current atomic.Pointer[Factors]
}

func NewStore(initial Factors) (*Store, error) {
	if err := initial.Validate(); err != nil {
		return nil, err
	}
	s := &Store{}
	s.current.Store(&initial)
	return s, nil
}

// Get returns the current snapshot.
func (s *Store) Get() Factors {
	return *s.current.Load()
}

// Update merges the patch into the current snapshot. An invalid result is
// rejected and the current snapshot stays in place.
func (s *Store) Update(p FactorsPatch) (Factors, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current.Load().Merge(p)
	if err := next.Validate(); err != nil {
		return s.Get(), err
	}
	s.current.Store(&next)
	return next, nil
}

// Toggle flips Enabled and returns the new snapshot.
func (s *Store) Toggle() Factors {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := *s.current.Load()
	next.Enabled = !next.Enabled
	s.current.Store(&next)
	return next
}
