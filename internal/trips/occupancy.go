package trips

// SegmentOccupancy describes seat usage on one leg of a trip: the segment
// between two consecutive stops, how many bookings ride it, and how many
// seats remain.
type SegmentOccupancy struct {
	From string `json:"from"`
	To   string `json:"to"`
	Used int    `json:"used"`
	Free int    `json:"free"`
}

// ComputeOccupancy returns one SegmentOccupancy per consecutive stop pair, in
// stop order. It is a pure function and never fails: bookings that reference
// stops absent from the route, or whose from and to resolve to the same
// position, are silently excluded rather than reported. The document may be
// mid-edit (a stop renamed or removed after bookings were taken), and the
// occupancy view has to stay usable through that.
//
// A booking covers the half-open index span [low, high), so a booking from
// stop 0 to stop 3 occupies segments 0, 1 and 2. Direction does not matter;
// only the span of stops covered counts. When capacity is zero or negative,
// free is reported as 0 for every segment regardless of usage; free is never
// negative even when a segment is overbooked.
func ComputeOccupancy(stops []string, capacity int, bookings []Booking) []SegmentOccupancy {
	if len(stops) < 2 {
		return nil
	}
	if capacity < 0 {
		capacity = 0
	}

	// First occurrence wins if a stop name repeats.
	index := make(map[string]int, len(stops))
	for i, s := range stops {
		if _, seen := index[s]; !seen {
			index[s] = i
		}
	}

	type span struct {
		low, high int
	}
	spans := make([]span, 0, len(bookings))
	for _, b := range bookings {
		from, okFrom := index[b.From]
		to, okTo := index[b.To]
		if !okFrom || !okTo || from == to {
			continue
		}
		if from < to {
			spans = append(spans, span{low: from, high: to})
		} else {
			spans = append(spans, span{low: to, high: from})
		}
	}

	segments := make([]SegmentOccupancy, 0, len(stops)-1)
	for k := 0; k < len(stops)-1; k++ {
		used := 0
		for _, sp := range spans {
			if sp.low <= k && k < sp.high {
				used++
			}
		}
		free := 0
		if capacity > 0 && capacity > used {
			free = capacity - used
		}
		segments = append(segments, SegmentOccupancy{
			From: stops[k],
			To:   stops[k+1],
			Used: used,
			Free: free,
		})
	}
	return segments
}

// Occupancy computes the per-segment seat usage for this trip.
func (t Trip) Occupancy() []SegmentOccupancy {
	return ComputeOccupancy(t.Stops, t.Capacity, t.Bookings)
}

// StaleBookings returns the bookings that ComputeOccupancy would exclude:
// spans referencing stops no longer on the route, or degenerate from==to
// spans. The calculator itself never surfaces these; the check command uses
// this to warn the user separately.
func (t Trip) StaleBookings() []Booking {
	index := make(map[string]int, len(t.Stops))
	for i, s := range t.Stops {
		if _, seen := index[s]; !seen {
			index[s] = i
		}
	}

	var stale []Booking
	for _, b := range t.Bookings {
		from, okFrom := index[b.From]
		to, okTo := index[b.To]
		if !okFrom || !okTo || from == to {
			stale = append(stale, b)
		}
	}
	return stale
}
