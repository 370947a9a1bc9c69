package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gopkg.in/guregu/null.v4"
)

// VehicleSession ties an entry LPRRecord to the space the vehicle occupies.
// Sessions are deactivated on exit, never removed while active.
type VehicleSession struct {
	LPRRecordID  snowflake.ID `json:"lpr_record_id"`
	SpaceID      int          `json:"space_id"`
	LotID        int          `json:"lot_id"`
	LicensePlate string       `json:"license_plate"`
	EntryTime    time.Time    `json:"entry_time"`
	ExitTime     null.Time    `json:"exit_time"`
	IsActive     bool         `json:"is_active"`
}

type TransactionStatus string

const (
	TransactionCompleted TransactionStatus = "completed"
)

// Transaction is the settlement of one completed session.
type Transaction struct {
	ID              string            `json:"id"`
	SpaceID         int               `json:"space_id"`
	LotID           int               `json:"lot_id"`
	LPRRecordID     snowflake.ID      `json:"lpr_record_id"`
	LicensePlate    string            `json:"license_plate"`
	VehicleType     VehicleType       `json:"vehicle_type"`
	StartTime       time.Time         `json:"start_time"`
	EndTime         time.Time         `json:"end_time"`
	DurationMinutes int               `json:"duration_minutes"`
	TotalCost       float64           `json:"total_cost"`
	Status          TransactionStatus `json:"status"`
}

type SessionSpaceDTO struct {
	SpaceID int `json:"space_id" binding:"required"`
}

type ExitResult struct {
	LPRRecord   LPRRecord   `json:"lpr_record"`
	Transaction Transaction `json:"transaction"`
}
