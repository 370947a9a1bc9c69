package pricing

type Impact string

const (
	ImpactHigh   Impact = "high"
	ImpactMedium Impact = "medium"
)

// HighImpactRadiusKm is the distance under which a high-impact event counts.
const HighImpactRadiusKm = 1.0

type NearbyEvent struct {
	Name          string  `json:"name"`
	DistanceKm    float64 `json:"distance_km"`
	AttendeeCount int     `json:"attendee_count"`
	Impact        Impact  `json:"impact"`
}

// DefaultNearbyEvents is the simulated demand signal shown on the dashboard.
func DefaultNearbyEvents() []NearbyEvent {
	return []NearbyEvent{
		{Name: "Concierto Central Park", DistanceKm: 0.5, AttendeeCount: 5000, Impact: ImpactHigh},
		{Name: "Feria Gastronómica", DistanceKm: 1.2, AttendeeCount: 2000, Impact: ImpactMedium},
		{Name: "Maratón Ciudad", DistanceKm: 2.0, AttendeeCount: 10000, Impact: ImpactHigh},
	}
}

// HasHighImpactNearbyEvent is a boolean gate: attendance does not scale it.
func HasHighImpactNearbyEvent(events []NearbyEvent) bool {
	for _, e := range events {
		if e.Impact == ImpactHigh && e.DistanceKm < HighImpactRadiusKm {
			return true
		}
	}
	return false
}
