package trips

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	tripeditErrors "github.com/vanroute/tripedit/internal/errors"
)

// Direction indicates which way a trip runs. The on-disk values "ida"
// (outbound) and "volta" (return) are kept as-is for compatibility with
// existing calendar files.
type Direction string

const (
	// DirectionOutbound is the outbound leg of the line ("ida")
	DirectionOutbound Direction = "ida"

	// DirectionReturn is the return leg of the line ("volta")
	DirectionReturn Direction = "volta"
)

// Valid reports whether d is one of the two known directions.
func (d Direction) Valid() bool {
	return d == DirectionOutbound || d == DirectionReturn
}

// Label returns the short uppercase form shown in listings.
func (d Direction) Label() string {
	switch d {
	case DirectionOutbound:
		return "IDA"
	case DirectionReturn:
		return "VOLTA"
	default:
		return string(d)
	}
}

// Capacity bounds enforced when applying trip edits
const (
	MinCapacity = 1
	MaxCapacity = 10
)

// Booking is one passenger's reserved span between two stop names.
type Booking struct {
	PassengerName string `json:"name"`
	From          string `json:"from"`
	To            string `json:"to"`
}

// Validate checks the edit-boundary rules for a booking: all fields present
// and a non-degenerate span. The occupancy calculator never calls this; it
// tolerates bookings that predate these rules.
func (b Booking) Validate() error {
	if strings.TrimSpace(b.PassengerName) == "" {
		return tripeditErrors.Wrap(tripeditErrors.ErrInvalidTrip, "booking passenger name is required")
	}
	if strings.TrimSpace(b.From) == "" || strings.TrimSpace(b.To) == "" {
		return tripeditErrors.Wrap(tripeditErrors.ErrInvalidTrip, "booking needs both a from and a to stop")
	}
	if b.From == b.To {
		return tripeditErrors.Wrap(tripeditErrors.ErrInvalidTrip, "booking from and to stops cannot be equal")
	}
	return nil
}

// Trip is one scheduled journey: an ordered route of stop cities plus the
// passenger bookings riding parts of it. Field names and JSON tags match the
// legacy trips.json format.
type Trip struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"`
	Direction Direction `json:"direction"`
	Title     string    `json:"title"`
	Capacity  int       `json:"capacity"`
	Stops     []string  `json:"stops"`
	Bookings  []Booking `json:"bookings"`
}

// dateRE validates ISO calendar date strings (YYYY-MM-DD)
var dateRE = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// NormalizeDate pads a lenient user-entered date such as "2026-2-3" into
// canonical YYYY-MM-DD form. Anything it cannot recognize is returned
// unchanged for Validate to reject.
func NormalizeDate(date string) string {
	date = strings.TrimSpace(date)
	if date == "" || dateRE.MatchString(date) || !strings.Contains(date, "-") {
		return date
	}
	parts := strings.Split(date, "-")
	if len(parts) != 3 {
		return date
	}
	for _, p := range parts {
		if p == "" || strings.IndexFunc(p, func(r rune) bool { return r < '0' || r > '9' }) >= 0 {
			return date
		}
	}
	if len(parts[0]) != 4 {
		return date
	}
	pad := func(p string) string {
		if len(p) == 1 {
			return "0" + p
		}
		return p
	}
	return fmt.Sprintf("%s-%s-%s", parts[0], pad(parts[1]), pad(parts[2]))
}

// CleanStops trims stop names and drops empty entries, preserving order.
func CleanStops(stops []string) []string {
	cleaned := make([]string, 0, len(stops))
	for _, s := range stops {
		s = strings.TrimSpace(s)
		if s != "" {
			cleaned = append(cleaned, s)
		}
	}
	return cleaned
}

// Validate checks the edit-boundary rules the form enforced before applying
// changes: id present, real ISO date, known direction, capacity within
// bounds, and at least two stops. Uniqueness of the id across the document
// is the document's job, not the trip's.
func (t *Trip) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return tripeditErrors.Wrap(tripeditErrors.ErrInvalidTrip, "trip id is required")
	}
	if !dateRE.MatchString(t.Date) {
		return tripeditErrors.Wrapf(tripeditErrors.ErrInvalidTrip,
			"invalid date %q: use YYYY-MM-DD (e.g. 2026-02-03)", t.Date)
	}
	if _, err := time.Parse("2006-01-02", t.Date); err != nil {
		return tripeditErrors.Wrapf(tripeditErrors.ErrInvalidTrip,
			"date %q does not exist on the calendar", t.Date)
	}
	if !t.Direction.Valid() {
		return tripeditErrors.Wrapf(tripeditErrors.ErrInvalidTrip,
			"direction must be %q or %q", DirectionOutbound, DirectionReturn)
	}
	if t.Capacity < MinCapacity || t.Capacity > MaxCapacity {
		return tripeditErrors.Wrapf(tripeditErrors.ErrInvalidTrip,
			"capacity must be an integer between %d and %d", MinCapacity, MaxCapacity)
	}
	if len(CleanStops(t.Stops)) < 2 {
		return tripeditErrors.Wrap(tripeditErrors.ErrInvalidTrip, "trip needs at least 2 stops")
	}
	return nil
}

// Label returns the one-line listing form of the trip: "date • IDA • title".
func (t Trip) Label() string {
	date := t.Date
	if date == "" {
		date = "????-??-??"
	}
	direction := t.Direction.Label()
	if direction == "" {
		direction = "?"
	}
	return strings.Trim(fmt.Sprintf("%s • %s • %s", date, direction, t.Title), " •")
}

// Clone returns a deep copy of the trip so edits to the copy never leak into
// the original's stop or booking slices.
func (t Trip) Clone() Trip {
	dup := t
	dup.Stops = append([]string(nil), t.Stops...)
	dup.Bookings = append([]Booking(nil), t.Bookings...)
	return dup
}

// SortTrips orders trips by date, then direction, then id.
func SortTrips(ts []Trip) {
	sort.SliceStable(ts, func(i, j int) bool {
		if ts[i].Date != ts[j].Date {
			return ts[i].Date < ts[j].Date
		}
		if ts[i].Direction != ts[j].Direction {
			return ts[i].Direction < ts[j].Direction
		}
		return ts[i].ID < ts[j].ID
	})
}

var nonSlugRE = regexp.MustCompile(`[^a-z0-9]+`)

// accentStripper decomposes characters and drops combining marks, so that
// "Petrolândia" slugs to "petrolandia".
var accentStripper = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify converts an arbitrary stop or title string into a lowercase,
// ASCII-only, hyphen-separated identifier component.
func Slugify(text string) string {
	stripped, _, err := transform.String(accentStripper, text)
	if err != nil {
		stripped = text
	}
	clean := strings.ToLower(strings.TrimSpace(stripped))
	clean = nonSlugRE.ReplaceAllString(clean, "-")
	return strings.Trim(clean, "-")
}

// maxGeneratedIDLen bounds generated ids so filenames and commit subjects
// built from them stay readable
const maxGeneratedIDLen = 60

// GenerateID derives a trip id from its date, direction and the first and
// last stops, e.g. "2026-02-03_ida_paulo-afonso-ba-salgueiro-pe". The caller
// must have at least a date, direction and two stops; UniqueID handles
// collisions with existing ids.
func GenerateID(t Trip) string {
	stops := CleanStops(t.Stops)
	if len(stops) == 0 {
		return ""
	}
	first := Slugify(stops[0])
	last := Slugify(stops[len(stops)-1])
	base := fmt.Sprintf("%s_%s_%s-%s", t.Date, t.Direction, first, last)
	if len(base) > maxGeneratedIDLen {
		base = strings.TrimRight(base[:maxGeneratedIDLen], "-")
	}
	return base
}

// UniqueID returns base if no existing trip uses it, otherwise the first
// "base_02", "base_03", ... candidate that is free.
func UniqueID(base string, existing []string) string {
	taken := make(map[string]bool, len(existing))
	for _, id := range existing {
		taken[id] = true
	}
	if base != "" && !taken[base] {
		return base
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s_%02d", base, n)
		if !taken[candidate] {
			return candidate
		}
	}
}
