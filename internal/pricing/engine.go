// Package pricing computes dynamic parking prices. Everything here is a pure
// function of its arguments; callers inject the wall clock and the factor
// snapshot.
package pricing

import (
	"math"
	"time"

	"github.com/emmoscript/AutoSlot/internal/domain"
)

const WeekendFactor = 1.1

// Input carries the per-space signals a price depends on.
type Input struct {
	BasePrice                float64
	OccupancyRatio           float64
	IsPeakHour               bool
	IsWeekend                bool
	HasHighImpactNearbyEvent bool
	ZoneType                 domain.ZoneType
}

// ComputePrice applies the occupancy, time, weekend, event and zone factors
// to the base price and rounds to cents. When pricing is disabled the base
// price is returned unchanged. A non-positive base price falls back to
// f.BasePrice.
func ComputePrice(in Input, f Factors) float64 {
	if !f.Enabled {
		return in.BasePrice
	}

	base := in.BasePrice
	if base <= 0 {
		base = f.BasePrice
	}

	occupancyFactor := 1 + ClampRatio(in.OccupancyRatio)*(f.OccupancyMultiplier-1)

	timeFactor := 1.0
	if in.IsPeakHour {
		timeFactor = f.TimeMultiplier
	}

	weekendFactor := 1.0
	if in.IsWeekend {
		weekendFactor = WeekendFactor
	}

	eventFactor := 1.0
	if in.HasHighImpactNearbyEvent {
		eventFactor = f.EventMultiplier
	}

	return RoundCents(base * occupancyFactor * timeFactor * weekendFactor * eventFactor * ZoneFactor(in.ZoneType, f))
}

func ZoneFactor(zone domain.ZoneType, f Factors) float64 {
	switch zone {
	case domain.ZonePremium:
		return f.DemandMultiplier
	case domain.ZoneStandard, domain.ZoneEconomy:
		return 1
	}
	return 1
}

// RoundCents rounds half up on the cent.
func RoundCents(x float64) float64 {
	return math.Round(x*100) / 100
}

// IsPeakHour reports whether hour falls in 8-10 or 17-19, both inclusive.
func IsPeakHour(hour int) bool {
	return (hour >= 8 && hour <= 10) || (hour >= 17 && hour <= 19)
}

func IsWeekend(day time.Weekday) bool {
	return day == time.Saturday || day == time.Sunday
}

// OccupancyRatio is occupied/total clamped to [0,1]; an empty lot is 0.
func OccupancyRatio(occupied, total int) float64 {
	if total <= 0 {
		return 0
	}
	return ClampRatio(float64(occupied) / float64(total))
}

func ClampRatio(r float64) float64 {
	if r < 0 || math.IsNaN(r) {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}

// HourlyPrice is one point of a 24-hour price curve.
type HourlyPrice struct {
	Hour       int     `json:"hour"`
	Price      float64 `json:"price"`
	IsPeakHour bool    `json:"is_peak_hour"`
}

// DailyCurve prices every hour of a day with the other inputs held fixed.
func DailyCurve(in Input, f Factors) []HourlyPrice {
	curve := make([]HourlyPrice, 0, 24)
	for h := 0; h < 24; h++ {
		in.IsPeakHour = IsPeakHour(h)
		curve = append(curve, HourlyPrice{Hour: h, Price: ComputePrice(in, f), IsPeakHour: in.IsPeakHour})
	}
	return curve
}
