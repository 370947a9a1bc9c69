package service

import (
	"strings"

	"github.com/emmoscript/AutoSlot/internal/domain"
)

// PlatePrefixes are the Dominican Republic plate series codes.
var PlatePrefixes = []string{
	"A", "B", "C", "D", "F", "G", "L", "H", "I", "T", "P", "U", "J", "R", "S", "M",
	"OE", "OF", "OM", "OP", "EA", "EG", "EL", "EM", "ED", "EI", "VC", "WD", "OI", "EX", "YX",
	"Z", "NZ", "DD", "X", "K",
}

const plateLength = 7

// GeneratePlate draws a prefix and fills up to seven characters with digits.
// Leading zeros are allowed in the numeric part.
func GeneratePlate(r Randomizer) string {
	prefix := PlatePrefixes[r.Intn(len(PlatePrefixes))]
	digits := plateLength - len(prefix)
	if digits < 1 {
		digits = 1
	}
	var b strings.Builder
	b.Grow(len(prefix) + digits)
	b.WriteString(prefix)
	for i := 0; i < digits; i++ {
		b.WriteByte(byte('0' + r.Intn(10)))
	}
	return b.String()
}

// vehicleWeights must list every domain.VehicleType; the draw is cumulative.
var vehicleWeights = map[domain.VehicleType]float64{
	domain.VehicleCar:        0.85,
	domain.VehicleTruck:      0.10,
	domain.VehicleMotorcycle: 0.04,
	domain.VehicleBus:        0.01,
}

// PickVehicleType draws car 85%, truck 10%, motorcycle 4%, bus 1%.
func PickVehicleType(r Randomizer) domain.VehicleType {
	x := r.Float64()
	cumulative := 0.0
	for _, vt := range domain.VehicleTypes {
		cumulative += vehicleWeights[vt]
		if x < cumulative {
			return vt
		}
	}
	return domain.VehicleCar
}

// confidenceScore is uniform in [0.9, 1.0).
func confidenceScore(r Randomizer) float64 {
	return 0.9 + r.Float64()*0.1
}
