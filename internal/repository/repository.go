package repository

import (
	"context"
	"errors"
	"time"

	"github.com/emmoscript/AutoSlot/internal/domain"
)

var ErrNotFound = errors.New("record not found")
var ErrDuplicateEntry = errors.New("record already exists")
var ErrNoActiveSession = errors.New("no active session for the given space")
var ErrConflict = errors.New("state conflict")

// DefaultEventLimit applies when FindRecent is called without a positive limit.
const DefaultEventLimit = 100

type ParkingLotRepository interface {
	Create(ctx context.Context, lot *domain.ParkingLot) (*domain.ParkingLot, error)
	FindByID(ctx context.Context, id int) (*domain.ParkingLot, error)
	FindAll(ctx context.Context) ([]domain.ParkingLot, error)
}

// ParkingSpaceRepository is the space registry: the single owner of
// ParkingSpace.IsAvailable. Every write is atomic per space.
type ParkingSpaceRepository interface {
	FindByID(ctx context.Context, id int) (*domain.ParkingSpace, error)
	FindByLotID(ctx context.Context, lotID int) ([]domain.ParkingSpace, error)
	FindAll(ctx context.Context) ([]domain.ParkingSpace, error)
	// SetAvailability always writes and refreshes UpdatedAt.
	SetAvailability(ctx context.Context, id int, available bool) (*domain.ParkingSpace, error)
	// CompareAndSetAvailability writes only when the current value equals
	// expected, otherwise it returns ErrConflict with the current space.
	CompareAndSetAvailability(ctx context.Context, id int, expected, next bool) (*domain.ParkingSpace, error)
	// ToggleAvailability flips the current value in one step.
	ToggleAvailability(ctx context.Context, id int) (*domain.ParkingSpace, error)
	// ResetAll marks every space available and returns how many changed.
	ResetAll(ctx context.Context) (int, error)
}

// SpaceEventLogRepository keeps the log of applied availability transitions.
type SpaceEventLogRepository interface {
	Create(ctx context.Context, event *domain.SpaceEvent) error
	FindRecent(ctx context.Context, lotID *int, limit int) ([]domain.SpaceEvent, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}
