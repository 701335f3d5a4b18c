package trips

// The standard line the calendar is maintained for. Outbound trips run the
// route top to bottom; return trips run it reversed. The two optional cities
// extend the route past Salgueiro when requested.
var (
	baseRoute = []string{
		"Paulo Afonso-BA",
		"Petrolândia-PE",
		"Floresta-PE",
		"Cabrobó-PE",
		"Salgueiro-PE",
	}

	optionalStops = []string{
		"Juazeiro do Norte-CE",
		"Brejo Santo-CE",
	}
)

// DefaultCapacity is the seat count new trips start with
const DefaultCapacity = 3

// KnownStops returns the full list of cities offered for stop entry,
// including the optional extension cities.
func KnownStops() []string {
	stops := append([]string(nil), baseRoute...)
	return append(stops, optionalStops...)
}

// Template builds a new unsaved trip following the standard route for the
// given direction. With extended set, the optional cities are appended to the
// route before any reversal. ID, date and title are left for the caller to
// fill in.
func Template(direction Direction, extended bool) Trip {
	stops := append([]string(nil), baseRoute...)
	if extended {
		stops = append(stops, optionalStops...)
	}
	if direction == DirectionReturn {
		for i, j := 0, len(stops)-1; i < j; i, j = i+1, j-1 {
			stops[i], stops[j] = stops[j], stops[i]
		}
	}
	return Trip{
		Direction: direction,
		Capacity:  DefaultCapacity,
		Stops:     stops,
		Bookings:  []Booking{},
	}
}
