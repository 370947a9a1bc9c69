package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/emmoscript/AutoSlot/internal/domain"
	"github.com/emmoscript/AutoSlot/internal/repository"
)

const spaceColumns = `id, lot_id, name, level, zone_type, base_price, is_available, created_at, updated_at`

type pgParkingSpaceRepository struct {
	db *sql.DB
}

// NewPgParkingSpaceRepository relies on single-statement UPDATEs for per-space
// atomicity; no explicit row locks are taken.
func NewPgParkingSpaceRepository(db *sql.DB) repository.ParkingSpaceRepository {
	return &pgParkingSpaceRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSpace(row rowScanner) (*domain.ParkingSpace, error) {
	sp := &domain.ParkingSpace{}
	var zone string
	err := row.Scan(&sp.ID, &sp.LotID, &sp.Name, &sp.Level, &zone, &sp.BasePrice, &sp.IsAvailable, &sp.CreatedAt, &sp.UpdatedAt)
	if err != nil {
		return nil, err
	}
	sp.ZoneType = domain.ZoneType(zone)
	sp.CreatedAt = sp.CreatedAt.In(time.UTC)
	sp.UpdatedAt = sp.UpdatedAt.In(time.UTC)
	return sp, nil
}

func (r *pgParkingSpaceRepository) FindByID(ctx context.Context, id int) (*domain.ParkingSpace, error) {
	query := `SELECT ` + spaceColumns + ` FROM parking_spaces WHERE id = $1`
	sp, err := scanSpace(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("ParkingSpaceRepository.FindByID: %w", err)
	}
	return sp, nil
}

func (r *pgParkingSpaceRepository) FindByLotID(ctx context.Context, lotID int) ([]domain.ParkingSpace, error) {
	query := `SELECT ` + spaceColumns + ` FROM parking_spaces WHERE lot_id = $1 ORDER BY level, name, id`
	return r.list(ctx, "FindByLotID", query, lotID)
}

func (r *pgParkingSpaceRepository) FindAll(ctx context.Context) ([]domain.ParkingSpace, error) {
	query := `SELECT ` + spaceColumns + ` FROM parking_spaces ORDER BY level, name, id`
	return r.list(ctx, "FindAll", query)
}

func (r *pgParkingSpaceRepository) list(ctx context.Context, op, query string, args ...any) ([]domain.ParkingSpace, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ParkingSpaceRepository.%s: %w", op, err)
	}
	defer rows.Close()

	spaces := make([]domain.ParkingSpace, 0)
	for rows.Next() {
		sp, err := scanSpace(rows)
		if err != nil {
			return nil, fmt.Errorf("ParkingSpaceRepository.%s (scanning row): %w", op, err)
		}
		spaces = append(spaces, *sp)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("ParkingSpaceRepository.%s (rows error): %w", op, err)
	}
	return spaces, nil
}

func (r *pgParkingSpaceRepository) SetAvailability(ctx context.Context, id int, available bool) (*domain.ParkingSpace, error) {
	query := `UPDATE parking_spaces SET is_available = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $1 RETURNING ` + spaceColumns
	sp, err := scanSpace(r.db.QueryRowContext(ctx, query, id, available))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("ParkingSpaceRepository.SetAvailability: %w", err)
	}
	return sp, nil
}

func (r *pgParkingSpaceRepository) CompareAndSetAvailability(ctx context.Context, id int, expected, next bool) (*domain.ParkingSpace, error) {
	query := `UPDATE parking_spaces SET is_available = $3, updated_at = CURRENT_TIMESTAMP
	           WHERE id = $1 AND is_available = $2 RETURNING ` + spaceColumns
	sp, err := scanSpace(r.db.QueryRowContext(ctx, query, id, expected, next))
	if err == nil {
		return sp, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("ParkingSpaceRepository.CompareAndSetAvailability: %w", err)
	}
	// Either the space does not exist or it is not in the expected state.
	current, findErr := r.FindByID(ctx, id)
	if findErr != nil {
		return nil, findErr
	}
	return current, repository.ErrConflict
}

func (r *pgParkingSpaceRepository) ToggleAvailability(ctx context.Context, id int) (*domain.ParkingSpace, error) {
	query := `UPDATE parking_spaces SET is_available = NOT is_available, updated_at = CURRENT_TIMESTAMP WHERE id = $1 RETURNING ` + spaceColumns
	sp, err := scanSpace(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("ParkingSpaceRepository.ToggleAvailability: %w", err)
	}
	return sp, nil
}

func (r *pgParkingSpaceRepository) ResetAll(ctx context.Context) (int, error) {
	query := `UPDATE parking_spaces SET is_available = TRUE, updated_at = CURRENT_TIMESTAMP WHERE is_available = FALSE`
	result, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("ParkingSpaceRepository.ResetAll: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("ParkingSpaceRepository.ResetAll (checking rows affected): %w", err)
	}
	return int(rowsAffected), nil
}
