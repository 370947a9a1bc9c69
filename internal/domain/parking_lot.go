package domain

import "time"

type ParkingLot struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ParkingLotWithSpaces is the shape returned by the lot endpoints.
type ParkingLotWithSpaces struct {
	ParkingLot
	Spaces []ParkingSpace `json:"spaces"`
}

// Latitude/Longitude are pointers so that 0 is still a supplied value.
type ParkingLotDTO struct {
	Name      string   `json:"name" binding:"required"`
	Address   string   `json:"address" binding:"required"`
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
}
