package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gopkg.in/guregu/null.v4"
)

type VehicleType string

const (
	VehicleCar        VehicleType = "car"
	VehicleTruck      VehicleType = "truck"
	VehicleMotorcycle VehicleType = "motorcycle"
	VehicleBus        VehicleType = "bus"
)

// VehicleTypes lists every vehicle type in weighting order.
var VehicleTypes = []VehicleType{VehicleCar, VehicleTruck, VehicleMotorcycle, VehicleBus}

type CameraLocation string

const (
	CameraEntrance CameraLocation = "entrance"
	CameraExit     CameraLocation = "exit"
	CameraLevel1   CameraLocation = "level_1"
	CameraLevel2   CameraLocation = "level_2"
)

type LPRStatus string

const (
	LPRStatusEntered LPRStatus = "entered"
	LPRStatusActive  LPRStatus = "active"
	LPRStatusExited  LPRStatus = "exited"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentUnpaid  PaymentStatus = "unpaid"
)

// LPRRecord is one synthetic license plate detection for a vehicle visit.
type LPRRecord struct {
	ID              snowflake.ID   `json:"id"`
	LotID           int            `json:"lot_id"`
	SpaceID         int            `json:"space_id"`
	LicensePlate    string         `json:"license_plate"`
	VehicleType     VehicleType    `json:"vehicle_type"`
	EntryTime       time.Time      `json:"entry_time"`
	ExitTime        null.Time      `json:"exit_time"`
	DurationMinutes null.Int       `json:"duration_minutes"`
	CameraLocation  CameraLocation `json:"camera_location"`
	ConfidenceScore float64        `json:"confidence_score"`
	Status          LPRStatus      `json:"status"`
	PaymentStatus   PaymentStatus  `json:"payment_status"`
	TransactionID   null.String    `json:"transaction_id"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

type PlateVisits struct {
	Plate  string `json:"plate"`
	Visits int    `json:"visits"`
}

type LPRAnalytics struct {
	TotalVehicles   int                 `json:"total_vehicles"`
	ActiveVehicles  int                 `json:"active_vehicles"`
	AverageDuration float64             `json:"average_duration"`
	TotalRevenue    float64             `json:"total_revenue"`
	VehiclesByType  map[VehicleType]int `json:"vehicles_by_type"`
	VehiclesByHour  map[int]int         `json:"vehicles_by_hour"`
	TopPlates       []PlateVisits       `json:"top_plates"`
	RecentActivity  []LPRRecord         `json:"recent_activity"`
}
