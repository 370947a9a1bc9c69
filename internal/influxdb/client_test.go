package influxdb

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emmoscript/AutoSlot/internal/domain"
)

type capturingWriter struct {
	mu      sync.Mutex
	points  []*write.Point
	flushed int
}

func (w *capturingWriter) WritePoint(p *write.Point) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.points = append(w.points, p)
}

func (w *capturingWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.flushed++
}

func (w *capturingWriter) lines() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.points))
	for _, p := range w.points {
		out = append(out, write.PointToLineProtocol(p, time.Second))
	}
	return out
}

func TestSpaceEventPoint(t *testing.T) {
	w := &capturingWriter{}
	c := NewClientWithWriter(w)

	err := c.PublishSpaceEvent(context.Background(), domain.SpaceEvent{
		SpaceID:   3,
		LotID:     1,
		Level:     2,
		EventType: domain.EventVehicleEntered,
		Source:    domain.SourceRandom,
		Timestamp: time.Unix(1700000000, 0),
	})
	require.NoError(t, err)

	lines := w.lines()
	require.Len(t, lines, 1)
	assert.True(t, strings.HasPrefix(lines[0], "space_event,"))
	assert.Contains(t, lines[0], "space_id=3")
	assert.Contains(t, lines[0], "occupied=1i")
	assert.True(t, strings.HasSuffix(lines[0], " 1700000000\n") || strings.HasSuffix(lines[0], " 1700000000"))
}

func TestSettlementPoint(t *testing.T) {
	w := &capturingWriter{}
	c := NewClientWithWriter(w)

	require.NoError(t, c.PublishSettlement(context.Background(), domain.Transaction{
		LotID:           2,
		VehicleType:     domain.VehicleTruck,
		DurationMinutes: 90,
		TotalCost:       75,
		EndTime:         time.Unix(1700000000, 0),
	}))

	lines := w.lines()
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "settlement,")
	assert.Contains(t, lines[0], "vehicle_type=truck")
	assert.Contains(t, lines[0], "total_cost=75")
}

type staticSource struct{ lots []domain.LotSensorStatus }

func (s staticSource) SensorStatus(ctx context.Context) ([]domain.LotSensorStatus, error) {
	return s.lots, nil
}

func TestOccupancyReporter(t *testing.T) {
	w := &capturingWriter{}
	c := NewClientWithWriter(w)
	source := staticSource{lots: []domain.LotSensorStatus{
		{LotID: 1, LotName: "Acropolis", TotalSpaces: 30, AvailableSpaces: 20, OccupiedSpaces: 10, OccupancyRate: 33.33},
		{LotID: 2, LotName: "Sambil", TotalSpaces: 54, AvailableSpaces: 54},
	}}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.RunOccupancyReporter(ctx, source, 5*time.Millisecond) }()

	assert.Eventually(t, func() bool { return len(w.lines()) >= 4 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	assert.Contains(t, w.lines()[0], "lot_occupancy,")
	c.Close()
	assert.Equal(t, 1, w.flushed)
}

func TestOccupancyReporterDefaultsNonPositiveInterval(t *testing.T) {
	c := NewClientWithWriter(&capturingWriter{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, interval := range []time.Duration{0, -time.Second} {
		assert.NotPanics(t, func() {
			assert.NoError(t, c.RunOccupancyReporter(ctx, staticSource{}, interval))
		})
	}
}
