package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emmoscript/AutoSlot/internal/domain"
)

func TestComputePriceDisabledReturnsBase(t *testing.T) {
	f := DefaultFactors()
	f.Enabled = false

	for _, ratio := range []float64{0, 0.5, 1} {
		for _, zone := range []domain.ZoneType{domain.ZonePremium, domain.ZoneStandard, domain.ZoneEconomy} {
			in := Input{
				BasePrice:                150,
				OccupancyRatio:           ratio,
				IsPeakHour:               true,
				IsWeekend:                true,
				HasHighImpactNearbyEvent: true,
				ZoneType:                 zone,
			}
			assert.Equal(t, 150.0, ComputePrice(in, f))
		}
	}
}

func TestComputePriceRounding(t *testing.T) {
	f := Factors{OccupancyMultiplier: 1.5, TimeMultiplier: 1.2, EventMultiplier: 2, DemandMultiplier: 1.3, BasePrice: 5, Enabled: true}
	in := Input{BasePrice: 5.0, OccupancyRatio: 0.6, IsPeakHour: true, ZoneType: domain.ZoneStandard}

	assert.Equal(t, 7.8, ComputePrice(in, f))
}

func TestComputePriceAllFactors(t *testing.T) {
	f := DefaultFactors()
	in := Input{
		BasePrice:                100,
		OccupancyRatio:           1,
		IsPeakHour:               true,
		IsWeekend:                true,
		HasHighImpactNearbyEvent: true,
		ZoneType:                 domain.ZonePremium,
	}
	// 100 * 1.5 * 1.2 * 1.1 * 2.0 * 1.3
	assert.Equal(t, 514.8, ComputePrice(in, f))
}

func TestComputePriceFallsBackToDefaultBase(t *testing.T) {
	f := DefaultFactors()
	assert.Equal(t, 5.0, ComputePrice(Input{ZoneType: domain.ZoneEconomy}, f))
}

func TestComputePriceMonotonicInOccupancy(t *testing.T) {
	f := DefaultFactors()
	prev := 0.0
	for i := 0; i <= 20; i++ {
		in := Input{BasePrice: 97.5, OccupancyRatio: float64(i) / 20, ZoneType: domain.ZonePremium}
		price := ComputePrice(in, f)
		assert.GreaterOrEqual(t, price, prev)
		prev = price
	}
}

func TestComputePriceMonotonicInMultipliers(t *testing.T) {
	in := Input{
		BasePrice:                80,
		OccupancyRatio:           0.7,
		IsPeakHour:               true,
		HasHighImpactNearbyEvent: true,
		ZoneType:                 domain.ZonePremium,
	}
	setters := map[string]func(f *Factors, v float64){
		"occupancy": func(f *Factors, v float64) { f.OccupancyMultiplier = v },
		"time":      func(f *Factors, v float64) { f.TimeMultiplier = v },
		"event":     func(f *Factors, v float64) { f.EventMultiplier = v },
		"demand":    func(f *Factors, v float64) { f.DemandMultiplier = v },
	}
	for name, set := range setters {
		t.Run(name, func(t *testing.T) {
			prev := 0.0
			for v := 1.0; v <= 2.0; v += 0.1 {
				f := DefaultFactors()
				set(&f, v)
				price := ComputePrice(in, f)
				assert.GreaterOrEqual(t, price, prev)
				prev = price
			}
		})
	}
}

func TestIsPeakHour(t *testing.T) {
	peak := map[int]bool{8: true, 9: true, 10: true, 17: true, 18: true, 19: true}
	for h := 0; h < 24; h++ {
		assert.Equal(t, peak[h], IsPeakHour(h), "hour %d", h)
	}
}

func TestIsWeekend(t *testing.T) {
	assert.True(t, IsWeekend(time.Sunday))
	assert.True(t, IsWeekend(time.Saturday))
	for d := time.Monday; d <= time.Friday; d++ {
		assert.False(t, IsWeekend(d))
	}
}

func TestOccupancyRatio(t *testing.T) {
	assert.Equal(t, 0.0, OccupancyRatio(0, 0))
	assert.Equal(t, 0.5, OccupancyRatio(2, 4))
	assert.Equal(t, 1.0, OccupancyRatio(5, 4))
	assert.Equal(t, 0.0, OccupancyRatio(-1, 4))
}

func TestHasHighImpactNearbyEvent(t *testing.T) {
	assert.True(t, HasHighImpactNearbyEvent(DefaultNearbyEvents()))
	assert.False(t, HasHighImpactNearbyEvent([]NearbyEvent{
		{Name: "far", DistanceKm: 1.0, Impact: ImpactHigh},
		{Name: "medium", DistanceKm: 0.1, AttendeeCount: 100000, Impact: ImpactMedium},
	}))
	assert.False(t, HasHighImpactNearbyEvent(nil))
}

func TestDailyCurve(t *testing.T) {
	curve := DailyCurve(Input{BasePrice: 100, ZoneType: domain.ZoneStandard}, DefaultFactors())
	require.Len(t, curve, 24)
	assert.Equal(t, 100.0, curve[3].Price)
	assert.Equal(t, 120.0, curve[9].Price)
	assert.True(t, curve[18].IsPeakHour)
}
