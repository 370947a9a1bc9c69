package repository

import (
	"fmt"

	"github.com/emmoscript/AutoSlot/internal/domain"
)

type SeedZone struct {
	Prefix    string
	ZoneType  domain.ZoneType
	BasePrice float64
}

type SeedLevel struct {
	Level         int
	SpacesPerZone int
	Zones         []SeedZone
}

type SeedLot struct {
	Lot    domain.ParkingLot
	Levels []SeedLevel
}

func levelOf(level, perZone int, prefixes [3]string, prices [3]float64) SeedLevel {
	return SeedLevel{
		Level:         level,
		SpacesPerZone: perZone,
		Zones: []SeedZone{
			{Prefix: prefixes[0], ZoneType: domain.ZonePremium, BasePrice: prices[0]},
			{Prefix: prefixes[1], ZoneType: domain.ZoneStandard, BasePrice: prices[1]},
			{Prefix: prefixes[2], ZoneType: domain.ZoneEconomy, BasePrice: prices[2]},
		},
	}
}

// DemoLots is the Santo Domingo demo data set.
func DemoLots() []SeedLot {
	abc := [3]string{"A", "B", "C"}
	pse := [3]string{"P", "S", "E"}
	return []SeedLot{
		{
			Lot: domain.ParkingLot{Name: "Acrópolis Center", Address: "Av. Winston Churchill, Santo Domingo", Latitude: 18.4861, Longitude: -69.9312},
			Levels: []SeedLevel{
				levelOf(1, 5, abc, [3]float64{150, 100, 75}),
				levelOf(2, 5, abc, [3]float64{140, 95, 70}),
			},
		},
		{
			Lot: domain.ParkingLot{Name: "Blue Mall", Address: "Av. Sarasota, Santo Domingo", Latitude: 18.4567, Longitude: -69.9289},
			Levels: []SeedLevel{
				levelOf(1, 6, pse, [3]float64{160, 110, 80}),
				levelOf(2, 6, pse, [3]float64{150, 105, 75}),
				levelOf(3, 6, pse, [3]float64{140, 100, 70}),
			},
		},
		{
			Lot: domain.ParkingLot{Name: "Galería 360", Address: "Av. John F. Kennedy, Santo Domingo", Latitude: 18.4678, Longitude: -69.9315},
			Levels: []SeedLevel{
				levelOf(1, 8, abc, [3]float64{145, 98, 72}),
				levelOf(2, 8, abc, [3]float64{135, 92, 68}),
			},
		},
		{
			Lot: domain.ParkingLot{Name: "Sambil Santo Domingo", Address: "Av. John F. Kennedy, Santo Domingo", Latitude: 18.4723, Longitude: -69.9345},
			Levels: []SeedLevel{
				levelOf(1, 9, pse, [3]float64{155, 105, 78}),
				levelOf(2, 9, pse, [3]float64{145, 100, 73}),
			},
		},
	}
}

// Spaces expands the seeded levels of one lot. Roughly every third space
// starts occupied so the dashboard has something to show.
func (s SeedLot) Spaces(lotID int) []domain.ParkingSpace {
	var spaces []domain.ParkingSpace
	n := 0
	for _, level := range s.Levels {
		for _, zone := range level.Zones {
			for i := 1; i <= level.SpacesPerZone; i++ {
				n++
				spaces = append(spaces, domain.ParkingSpace{
					LotID:       lotID,
					Name:        fmt.Sprintf("%s%d", zone.Prefix, i),
					Level:       level.Level,
					ZoneType:    zone.ZoneType,
					BasePrice:   zone.BasePrice,
					IsAvailable: n%3 != 0,
				})
			}
		}
	}
	return spaces
}
