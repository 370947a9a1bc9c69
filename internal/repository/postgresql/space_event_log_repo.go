package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/emmoscript/AutoSlot/internal/domain"
	"github.com/emmoscript/AutoSlot/internal/repository"
)

type pgSpaceEventLogRepository struct {
	db *sql.DB
}

func NewPgSpaceEventLogRepository(db *sql.DB) repository.SpaceEventLogRepository {
	return &pgSpaceEventLogRepository{db: db}
}

func (r *pgSpaceEventLogRepository) Create(ctx context.Context, event *domain.SpaceEvent) error {
	query := `INSERT INTO space_events (id, space_id, lot_id, event_type, new_availability, source, occurred_at)
	           VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.ExecContext(ctx, query,
		event.ID, event.SpaceID, event.LotID, string(event.EventType), event.NewAvailability, string(event.Source), event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("SpaceEventLogRepository.Create: %w", err)
	}
	return nil
}

func (r *pgSpaceEventLogRepository) FindRecent(ctx context.Context, lotID *int, limit int) ([]domain.SpaceEvent, error) {
	if limit <= 0 {
		limit = repository.DefaultEventLimit
	}
	query := `SELECT e.id, e.space_id, s.name, e.lot_id, l.name, s.level, e.event_type, e.new_availability, e.source, e.occurred_at
	           FROM space_events e
	           JOIN parking_spaces s ON s.id = e.space_id
	           JOIN parking_lots l ON l.id = e.lot_id
	           WHERE ($1::INTEGER IS NULL OR e.lot_id = $1)
	           ORDER BY e.occurred_at DESC
	           LIMIT $2`
	var lotFilter sql.NullInt64
	if lotID != nil {
		lotFilter = sql.NullInt64{Int64: int64(*lotID), Valid: true}
	}
	rows, err := r.db.QueryContext(ctx, query, lotFilter, limit)
	if err != nil {
		return nil, fmt.Errorf("SpaceEventLogRepository.FindRecent: %w", err)
	}
	defer rows.Close()

	events := make([]domain.SpaceEvent, 0)
	for rows.Next() {
		var ev domain.SpaceEvent
		var eventType, source string
		if err := rows.Scan(&ev.ID, &ev.SpaceID, &ev.SpaceName, &ev.LotID, &ev.LotName, &ev.Level,
			&eventType, &ev.NewAvailability, &source, &ev.Timestamp); err != nil {
			return nil, fmt.Errorf("SpaceEventLogRepository.FindRecent (scanning row): %w", err)
		}
		ev.EventType = domain.SensorEventType(eventType)
		ev.Source = domain.EventSource(source)
		ev.Timestamp = ev.Timestamp.In(time.UTC)
		events = append(events, ev)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("SpaceEventLogRepository.FindRecent (rows error): %w", err)
	}
	return events, nil
}

func (r *pgSpaceEventLogRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM space_events WHERE occurred_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("SpaceEventLogRepository.DeleteOlderThan: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("SpaceEventLogRepository.DeleteOlderThan (checking rows affected): %w", err)
	}
	return int(rowsAffected), nil
}
