package domain

import "time"

type SensorEventType string

const (
	EventVehicleEntered SensorEventType = "vehicle_entered"
	EventVehicleExited  SensorEventType = "vehicle_exited"
)

func (t SensorEventType) Valid() bool {
	switch t {
	case EventVehicleEntered, EventVehicleExited:
		return true
	}
	return false
}

// TargetAvailability is the availability a space has after the event.
func (t SensorEventType) TargetAvailability() bool {
	return t == EventVehicleExited
}

// EventTypeFor derives the event that produced the given availability.
func EventTypeFor(nowAvailable bool) SensorEventType {
	if nowAvailable {
		return EventVehicleExited
	}
	return EventVehicleEntered
}

type EventSource string

const (
	SourceManual EventSource = "manual"
	SourceRandom EventSource = "random"
	SourceAuto   EventSource = "auto"
	SourceSQS    EventSource = "sqs"
	SourceLPR    EventSource = "lpr"
)

// SpaceEvent records one availability transition applied to the registry.
type SpaceEvent struct {
	ID              string          `json:"id"`
	SpaceID         int             `json:"space_id"`
	SpaceName       string          `json:"space_name"`
	LotID           int             `json:"lot_id"`
	LotName         string          `json:"lot_name,omitempty"`
	Level           int             `json:"level"`
	EventType       SensorEventType `json:"event_type"`
	NewAvailability bool            `json:"new_availability"`
	Source          EventSource     `json:"source"`
	Timestamp       time.Time       `json:"timestamp"`
}

type TriggerEventDTO struct {
	SpaceID   int    `json:"space_id"`
	EventType string `json:"event_type"`
}

type TriggerEventResult struct {
	Message string        `json:"message"`
	Space   *ParkingSpace `json:"space"`
	Event   SpaceEvent    `json:"event"`
}

type SimulateRandomDTO struct {
	Count int  `json:"count"`
	LotID *int `json:"lotId"`
}

type AutoModeDTO struct {
	IntervalSeconds   int  `json:"interval_seconds" binding:"required,min=1"`
	EventsPerInterval int  `json:"events_per_interval" binding:"required,min=1"`
	LotID             *int `json:"lot_id"`
}

type AutoModeStatus struct {
	Running           bool   `json:"running"`
	IntervalSeconds   int    `json:"interval_seconds,omitempty"`
	EventsPerInterval int    `json:"events_per_interval,omitempty"`
	LotID             *int   `json:"lot_id,omitempty"`
	Ticks             int64  `json:"ticks"`
	FailedTicks       int64  `json:"failed_ticks"`
	LastError         string `json:"last_error,omitempty"`
}

// SensorMessage is the body of a sensor message delivered through SQS.
type SensorMessage struct {
	SpaceID   int    `json:"space_id"`
	EventType string `json:"event_type"`
	DeviceID  string `json:"device_id,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// SpaceStatusMessage is published to the IoT topic of a space after every transition.
type SpaceStatusMessage struct {
	SpaceID     int             `json:"space_id"`
	LotID       int             `json:"lot_id"`
	Level       int             `json:"level"`
	IsAvailable bool            `json:"is_available"`
	EventType   SensorEventType `json:"event_type"`
	Source      EventSource     `json:"source"`
	Timestamp   string          `json:"timestamp"`
}

type SpaceSensorStatus struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Level       int       `json:"level"`
	IsAvailable bool      `json:"is_available"`
	LastUpdated time.Time `json:"last_updated"`
}

type LotSensorStatus struct {
	LotID           int                 `json:"lot_id"`
	LotName         string              `json:"lot_name"`
	TotalSpaces     int                 `json:"total_spaces"`
	AvailableSpaces int                 `json:"available_spaces"`
	OccupiedSpaces  int                 `json:"occupied_spaces"`
	OccupancyRate   float64             `json:"occupancy_rate"`
	Spaces          []SpaceSensorStatus `json:"spaces"`
}
