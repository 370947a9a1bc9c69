package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/emmoscript/AutoSlot/internal/config"
	"github.com/emmoscript/AutoSlot/internal/repository"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func NewDB(cfg *config.Config) (*sql.DB, error) {
	psqlInfo := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSslMode)

	db, err := sql.Open("pgx", psqlInfo)
	if err != nil {
		return nil, fmt.Errorf("error opening database connection: %w", err)
	}

	err = db.Ping()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("error pinging database: %w", err)
	}
	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS parking_lots (
	id         SERIAL PRIMARY KEY,
	name       TEXT NOT NULL UNIQUE,
	address    TEXT NOT NULL,
	latitude   DOUBLE PRECISION NOT NULL,
	longitude  DOUBLE PRECISION NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS parking_spaces (
	id           SERIAL PRIMARY KEY,
	lot_id       INTEGER NOT NULL REFERENCES parking_lots(id) ON DELETE CASCADE,
	name         TEXT NOT NULL,
	level        INTEGER NOT NULL,
	zone_type    TEXT NOT NULL CHECK (zone_type IN ('premium', 'standard', 'economy')),
	base_price   NUMERIC(10, 2) NOT NULL CHECK (base_price > 0),
	is_available BOOLEAN NOT NULL DEFAULT TRUE,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE (lot_id, level, name)
);

CREATE TABLE IF NOT EXISTS space_events (
	id               UUID PRIMARY KEY,
	space_id         INTEGER NOT NULL REFERENCES parking_spaces(id) ON DELETE CASCADE,
	lot_id           INTEGER NOT NULL,
	event_type       TEXT NOT NULL,
	new_availability BOOLEAN NOT NULL,
	source           TEXT NOT NULL,
	occurred_at      TIMESTAMPTZ NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_parking_lots_name_lower ON parking_lots (LOWER(name));

CREATE INDEX IF NOT EXISTS idx_space_events_occurred_at ON space_events (occurred_at DESC);
`

// Migrate creates the tables if they do not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("postgresql.Migrate: %w", err)
	}
	return nil
}

// Seed loads the demo lots into an empty database. A database that already
// holds lots is left untouched.
func Seed(ctx context.Context, db *sql.DB, lots []repository.SeedLot) error {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM parking_lots`).Scan(&count); err != nil {
		return fmt.Errorf("postgresql.Seed (counting lots): %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgresql.Seed (begin): %w", err)
	}
	defer tx.Rollback()

	for _, seed := range lots {
		var lotID int
		err := tx.QueryRowContext(ctx,
			`INSERT INTO parking_lots (name, address, latitude, longitude) VALUES ($1, $2, $3, $4) RETURNING id`,
			seed.Lot.Name, seed.Lot.Address, seed.Lot.Latitude, seed.Lot.Longitude,
		).Scan(&lotID)
		if err != nil {
			return fmt.Errorf("postgresql.Seed (lot %s): %w", seed.Lot.Name, err)
		}
		spaces := seed.Spaces(lotID)
		for _, sp := range spaces {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO parking_spaces (lot_id, name, level, zone_type, base_price, is_available) VALUES ($1, $2, $3, $4, $5, $6)`,
				sp.LotID, sp.Name, sp.Level, sp.ZoneType, sp.BasePrice, sp.IsAvailable,
			)
			if err != nil {
				return fmt.Errorf("postgresql.Seed (space %s): %w", sp.Name, err)
			}
		}
		log.Printf("Seeded lot %s (ID: %d) with %d spaces", seed.Lot.Name, lotID, len(spaces))
	}
	return tx.Commit()
}
