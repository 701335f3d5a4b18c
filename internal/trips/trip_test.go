package trips

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tripeditErrors "github.com/vanroute/tripedit/internal/errors"
)

func validTrip() Trip {
	return Trip{
		ID:        "2026-02-03_ida_paulo-afonso-ba-salgueiro-pe",
		Date:      "2026-02-03",
		Direction: DirectionOutbound,
		Title:     "Feira",
		Capacity:  3,
		Stops:     []string{"Paulo Afonso-BA", "Salgueiro-PE"},
		Bookings:  []Booking{},
	}
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2026-02-03", "2026-02-03"},
		{"2026-2-3", "2026-02-03"},
		{"2026-2-13", "2026-02-13"},
		{" 2026-2-3 ", "2026-02-03"},
		{"", ""},
		{"03/02/2026", "03/02/2026"},
		{"2026-2", "2026-2"},
		{"26-2-3", "26-2-3"},
		{"2026-x-3", "2026-x-3"},
		{"amanhã", "amanhã"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeDate(tt.in), "input %q", tt.in)
	}
}

func TestCleanStops(t *testing.T) {
	got := CleanStops([]string{" Paulo Afonso-BA ", "", "  ", "Salgueiro-PE"})
	assert.Equal(t, []string{"Paulo Afonso-BA", "Salgueiro-PE"}, got)
}

func TestTripValidate(t *testing.T) {
	trip := validTrip()
	require.NoError(t, trip.Validate())

	tests := []struct {
		name   string
		mutate func(*Trip)
	}{
		{"missing id", func(tr *Trip) { tr.ID = "  " }},
		{"malformed date", func(tr *Trip) { tr.Date = "3 de fevereiro" }},
		{"impossible date", func(tr *Trip) { tr.Date = "2026-02-30" }},
		{"unknown direction", func(tr *Trip) { tr.Direction = "round-trip" }},
		{"capacity too low", func(tr *Trip) { tr.Capacity = 0 }},
		{"capacity too high", func(tr *Trip) { tr.Capacity = 11 }},
		{"single stop", func(tr *Trip) { tr.Stops = []string{"Paulo Afonso-BA"} }},
		{"blank stops don't count", func(tr *Trip) { tr.Stops = []string{"Paulo Afonso-BA", " ", ""} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trip := validTrip()
			tt.mutate(&trip)
			err := trip.Validate()
			require.Error(t, err)
			assert.True(t, tripeditErrors.Is(err, tripeditErrors.ErrInvalidTrip))
		})
	}
}

func TestBookingValidate(t *testing.T) {
	ok := Booking{PassengerName: "Maria", From: "A", To: "B"}
	require.NoError(t, ok.Validate())

	assert.Error(t, Booking{From: "A", To: "B"}.Validate())
	assert.Error(t, Booking{PassengerName: "Maria", To: "B"}.Validate())
	assert.Error(t, Booking{PassengerName: "Maria", From: "A"}.Validate())
	assert.Error(t, Booking{PassengerName: "Maria", From: "A", To: "A"}.Validate())
}

func TestTripLabel(t *testing.T) {
	trip := validTrip()
	assert.Equal(t, "2026-02-03 • IDA • Feira", trip.Label())

	trip.Title = ""
	assert.Equal(t, "2026-02-03 • IDA", trip.Label())

	assert.Equal(t, "????-??-?? • ?", Trip{}.Label())
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Paulo Afonso-BA", "paulo-afonso-ba"},
		{"Petrolândia-PE", "petrolandia-pe"},
		{"Cabrobó-PE", "cabrobo-pe"},
		{"Juazeiro do Norte-CE", "juazeiro-do-norte-ce"},
		{"  São Paulo!  ", "sao-paulo"},
		{"---", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), "input %q", tt.in)
	}
}

func TestGenerateID(t *testing.T) {
	trip := validTrip()
	assert.Equal(t, "2026-02-03_ida_paulo-afonso-ba-salgueiro-pe", GenerateID(trip))

	trip.Stops = nil
	assert.Equal(t, "", GenerateID(trip))
}

func TestGenerateIDTruncates(t *testing.T) {
	trip := validTrip()
	trip.Stops = []string{strings.Repeat("Tupanatinga ", 6), "Salgueiro-PE"}
	id := GenerateID(trip)
	assert.LessOrEqual(t, len(id), 60)
	assert.False(t, strings.HasSuffix(id, "-"))
}

func TestUniqueID(t *testing.T) {
	assert.Equal(t, "x", UniqueID("x", nil))
	assert.Equal(t, "x_02", UniqueID("x", []string{"x"}))
	assert.Equal(t, "x_03", UniqueID("x", []string{"x", "x_02"}))
}

func TestSortTrips(t *testing.T) {
	ts := []Trip{
		{ID: "c", Date: "2026-03-01", Direction: DirectionReturn},
		{ID: "b", Date: "2026-02-03", Direction: DirectionReturn},
		{ID: "a", Date: "2026-02-03", Direction: DirectionOutbound},
		{ID: "d", Date: "2026-02-03", Direction: DirectionOutbound},
	}
	SortTrips(ts)

	ids := []string{ts[0].ID, ts[1].ID, ts[2].ID, ts[3].ID}
	assert.Equal(t, []string{"a", "d", "b", "c"}, ids)
}

func TestCloneIsDeep(t *testing.T) {
	trip := validTrip()
	trip.Bookings = []Booking{{PassengerName: "Maria", From: "Paulo Afonso-BA", To: "Salgueiro-PE"}}

	dup := trip.Clone()
	dup.Stops[0] = "changed"
	dup.Bookings[0].PassengerName = "changed"

	assert.Equal(t, "Paulo Afonso-BA", trip.Stops[0])
	assert.Equal(t, "Maria", trip.Bookings[0].PassengerName)
}

func TestDirection(t *testing.T) {
	assert.True(t, DirectionOutbound.Valid())
	assert.True(t, DirectionReturn.Valid())
	assert.False(t, Direction("round-trip").Valid())

	assert.Equal(t, "IDA", DirectionOutbound.Label())
	assert.Equal(t, "VOLTA", DirectionReturn.Label())
	assert.Equal(t, "x", Direction("x").Label())
}
