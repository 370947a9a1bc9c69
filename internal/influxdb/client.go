package influxdb

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/emmoscript/AutoSlot/internal/config"
	"github.com/emmoscript/AutoSlot/internal/domain"
)

// DefaultReportInterval replaces a non-positive occupancy report interval.
const DefaultReportInterval = time.Minute

// PointWriter is the non-blocking write API of the InfluxDB client.
type PointWriter interface {
	WritePoint(point *write.Point)
	Flush()
}

// OccupancySource provides the per-lot snapshot the reporter records.
type OccupancySource interface {
	SensorStatus(ctx context.Context) ([]domain.LotSensorStatus, error)
}

// Client records space events, settlements and occupancy snapshots.
type Client struct {
	client   influxdb2.Client
	writeAPI PointWriter
	now      func() time.Time
}

// NewClient initializes the InfluxDB v2 client and verifies connectivity.
func NewClient(ctx context.Context, cfg config.InfluxDBConfig) (*Client, error) {
	client := influxdb2.NewClient(cfg.URL, cfg.Token)

	if _, err := client.Health(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to InfluxDB: %w", err)
	}

	writeAPI := client.WriteAPI(cfg.Org, cfg.Bucket)
	go func() {
		for err := range writeAPI.Errors() {
			log.Printf("InfluxDB: write error: %v", err)
		}
	}()

	log.Printf("InfluxDB: connected to %s (bucket %s)", cfg.URL, cfg.Bucket)
	return &Client{client: client, writeAPI: writeAPI, now: time.Now}, nil
}

// NewClientWithWriter is used when the write API is provided externally.
func NewClientWithWriter(w PointWriter) *Client {
	return &Client{writeAPI: w, now: time.Now}
}

func (c *Client) PublishSpaceEvent(ctx context.Context, event domain.SpaceEvent) error {
	occupied := 0
	if !event.NewAvailability {
		occupied = 1
	}
	c.writeAPI.WritePoint(write.NewPoint(
		"space_event",
		map[string]string{
			"lot_id":     strconv.Itoa(event.LotID),
			"space_id":   strconv.Itoa(event.SpaceID),
			"level":      strconv.Itoa(event.Level),
			"event_type": string(event.EventType),
			"source":     string(event.Source),
		},
		map[string]interface{}{
			"occupied": occupied,
		},
		event.Timestamp,
	))
	return nil
}

func (c *Client) PublishSettlement(ctx context.Context, tx domain.Transaction) error {
	c.writeAPI.WritePoint(write.NewPoint(
		"settlement",
		map[string]string{
			"lot_id":       strconv.Itoa(tx.LotID),
			"vehicle_type": string(tx.VehicleType),
		},
		map[string]interface{}{
			"duration_minutes": tx.DurationMinutes,
			"total_cost":       tx.TotalCost,
		},
		tx.EndTime,
	))
	return nil
}

// WriteLotOccupancy records one snapshot point per lot.
func (c *Client) WriteLotOccupancy(lots []domain.LotSensorStatus, timestamp time.Time) {
	for _, lot := range lots {
		c.writeAPI.WritePoint(write.NewPoint(
			"lot_occupancy",
			map[string]string{
				"lot_id":   strconv.Itoa(lot.LotID),
				"lot_name": lot.LotName,
			},
			map[string]interface{}{
				"total_spaces":     lot.TotalSpaces,
				"available_spaces": lot.AvailableSpaces,
				"occupied_spaces":  lot.OccupiedSpaces,
				"occupancy_rate":   lot.OccupancyRate,
			},
			timestamp,
		))
	}
}

// RunOccupancyReporter writes a snapshot every interval until ctx is done.
func (c *Client) RunOccupancyReporter(ctx context.Context, source OccupancySource, interval time.Duration) error {
	if interval <= 0 {
		log.Printf("InfluxDB: report interval %s is not positive, using %s", interval, DefaultReportInterval)
		interval = DefaultReportInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			lots, err := source.SensorStatus(ctx)
			if err != nil {
				log.Printf("InfluxDB: could not read occupancy: %v", err)
				continue
			}
			c.WriteLotOccupancy(lots, c.now())
		}
	}
}

// Close flushes pending writes.
func (c *Client) Close() {
	c.writeAPI.Flush()
	if c.client != nil {
		c.client.Close()
	}
}
