package memory

import (
	"context"
	"sync"
	"time"

	"github.com/emmoscript/AutoSlot/internal/domain"
	"github.com/emmoscript/AutoSlot/internal/repository"
)

type spaceEventLogRepository struct {
	mu       sync.RWMutex
	events   []domain.SpaceEvent
	capacity int
}

// NewSpaceEventLogRepository keeps at most capacity events, dropping the oldest.
func NewSpaceEventLogRepository(capacity int) repository.SpaceEventLogRepository {
	if capacity <= 0 {
		capacity = 1000
	}
	return &spaceEventLogRepository{capacity: capacity}
}

func (r *spaceEventLogRepository) Create(ctx context.Context, event *domain.SpaceEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, *event)
	if over := len(r.events) - r.capacity; over > 0 {
		r.events = append(r.events[:0:0], r.events[over:]...)
	}
	return nil
}

// FindRecent returns newest first.
func (r *spaceEventLogRepository) FindRecent(ctx context.Context, lotID *int, limit int) ([]domain.SpaceEvent, error) {
	if limit <= 0 {
		limit = repository.DefaultEventLimit
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.SpaceEvent, 0)
	for i := len(r.events) - 1; i >= 0; i-- {
		if len(out) >= limit {
			break
		}
		if lotID != nil && r.events[i].LotID != *lotID {
			continue
		}
		out = append(out, r.events[i])
	}
	return out, nil
}

func (r *spaceEventLogRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.events[:0]
	removed := 0
	for _, ev := range r.events {
		if ev.Timestamp.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, ev)
	}
	r.events = kept
	return removed, nil
}
