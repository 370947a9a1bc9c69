package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emmoscript/AutoSlot/internal/domain"
	"github.com/emmoscript/AutoSlot/internal/pricing"
	"github.com/emmoscript/AutoSlot/internal/repository"
)

func newPricingService(t *testing.T, f *fixture) *PricingService {
	t.Helper()
	store, err := pricing.NewStore(pricing.DefaultFactors())
	require.NoError(t, err)
	svc := NewPricingService(f.lotRepo, f.spaceRepo, store)
	svc.SetNearbyEvents(func() []pricing.NearbyEvent { return nil })
	return svc
}

// Monday 2024-03-04.
var mondayPeak = time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

func TestQuoteLotUsesLotOccupancy(t *testing.T) {
	f := newFixture(t, true)
	lot, _ := f.addLot("Galería 360", domain.ZoneStandard, true, true, false, false)
	f.addLot("Sambil", domain.ZoneStandard, false, false)
	svc := newPricingService(t, f)
	svc.SetClock(func() time.Time { return mondayPeak })

	quotes, err := svc.QuoteLot(context.Background(), lot.ID, time.Time{})
	require.NoError(t, err)
	require.Len(t, quotes, 4)
	for _, q := range quotes {
		assert.Equal(t, 0.5, q.OccupancyRatio)
		assert.True(t, q.IsPeakHour)
		assert.False(t, q.IsWeekend)
		// 100 * (1 + 0.5*0.5) * 1.2
		assert.Equal(t, 150.0, q.CurrentPrice)
		assert.Equal(t, mondayPeak, q.QuotedAt)
	}
}

func TestQuoteSpaceAtOverride(t *testing.T) {
	f := newFixture(t, true)
	_, ids := f.addLot("Blue Mall", domain.ZonePremium, true)
	svc := newPricingService(t, f)
	svc.SetClock(func() time.Time { return mondayPeak })

	saturdayNight := time.Date(2024, 3, 9, 22, 0, 0, 0, time.UTC)
	q, err := svc.QuoteSpace(context.Background(), ids[0], saturdayNight)
	require.NoError(t, err)
	assert.False(t, q.IsPeakHour)
	assert.True(t, q.IsWeekend)
	// 100 * 1 * 1 * 1.1 * 1 * 1.3
	assert.Equal(t, 143.0, q.CurrentPrice)
}

func TestQuoteWithPricingDisabledReturnsBase(t *testing.T) {
	f := newFixture(t, true)
	_, ids := f.addLot("Blue Mall", domain.ZonePremium, false)
	svc := newPricingService(t, f)
	svc.SetClock(func() time.Time { return mondayPeak })
	svc.SetNearbyEvents(pricing.DefaultNearbyEvents)

	snap := svc.Toggle()
	require.False(t, snap.Enabled)

	q, err := svc.QuoteSpace(context.Background(), ids[0], time.Time{})
	require.NoError(t, err)
	assert.True(t, q.HighImpactEvent)
	assert.Equal(t, 100.0, q.CurrentPrice)
}

func TestQuoteNotFound(t *testing.T) {
	f := newFixture(t, true)
	svc := newPricingService(t, f)

	_, err := svc.QuoteSpace(context.Background(), 42, time.Time{})
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = svc.QuoteLot(context.Background(), 42, time.Time{})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUpdateFactorsRejectsInvalid(t *testing.T) {
	f := newFixture(t, true)
	svc := newPricingService(t, f)

	tooHigh := 5.0
	snap, err := svc.UpdateFactors(pricing.FactorsPatch{TimeMultiplier: &tooHigh})
	assert.ErrorIs(t, err, pricing.ErrInvalidFactors)
	assert.Equal(t, 1.2, snap.Factors.TimeMultiplier)

	ok := 1.8
	snap, err = svc.UpdateFactors(pricing.FactorsPatch{TimeMultiplier: &ok})
	require.NoError(t, err)
	assert.Equal(t, 1.8, snap.Factors.TimeMultiplier)
	assert.Equal(t, 1.5, snap.Factors.OccupancyMultiplier)
}

func TestPreview(t *testing.T) {
	f := newFixture(t, true)
	svc := newPricingService(t, f)
	svc.SetClock(func() time.Time { return mondayPeak })

	p, err := svc.Preview(PricingPreviewRequest{BasePrice: 100, Occupancy: 0})
	require.NoError(t, err)
	assert.Equal(t, domain.ZoneStandard, p.ZoneType)
	assert.Equal(t, 120.0, p.CurrentPrice)
	require.Len(t, p.Curve, 24)
	assert.Equal(t, 100.0, p.Curve[3].Price)

	_, err = svc.Preview(PricingPreviewRequest{BasePrice: 0})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.Preview(PricingPreviewRequest{BasePrice: 10, Zone: "vip"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.Preview(PricingPreviewRequest{BasePrice: 10, Occupancy: 1.5})
	assert.ErrorIs(t, err, ErrValidation)
}
