package domain

import "time"

type ZoneType string

const (
	ZonePremium  ZoneType = "premium"
	ZoneStandard ZoneType = "standard"
	ZoneEconomy  ZoneType = "economy"
)

func (z ZoneType) Valid() bool {
	switch z {
	case ZonePremium, ZoneStandard, ZoneEconomy:
		return true
	}
	return false
}

// ParkingSpace is a single addressable slot. IsAvailable is the only field
// that changes after seeding, and only through the space registry.
type ParkingSpace struct {
	ID          int       `json:"id"`
	LotID       int       `json:"lot_id"`
	Name        string    `json:"name"`
	Level       int       `json:"level"`
	ZoneType    ZoneType  `json:"zone_type"`
	BasePrice   float64   `json:"base_price"`
	IsAvailable bool      `json:"is_available"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type UpdateAvailabilityDTO struct {
	IsAvailable *bool `json:"is_available" binding:"required"`
}

// SpacePrice is a dynamic price quote for one space at a given instant.
type SpacePrice struct {
	SpaceID         int       `json:"space_id"`
	SpaceName       string    `json:"space_name"`
	LotID           int       `json:"lot_id"`
	Level           int       `json:"level"`
	ZoneType        ZoneType  `json:"zone_type"`
	IsAvailable     bool      `json:"is_available"`
	BasePrice       float64   `json:"base_price"`
	CurrentPrice    float64   `json:"current_price"`
	OccupancyRatio  float64   `json:"occupancy_ratio"`
	IsPeakHour      bool      `json:"is_peak_hour"`
	IsWeekend       bool      `json:"is_weekend"`
	HighImpactEvent bool      `json:"high_impact_event"`
	PricingEnabled  bool      `json:"pricing_enabled"`
	QuotedAt        time.Time `json:"quoted_at"`
}
