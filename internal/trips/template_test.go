package trips

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateOutbound(t *testing.T) {
	trip := Template(DirectionOutbound, false)

	assert.Equal(t, DirectionOutbound, trip.Direction)
	assert.Equal(t, DefaultCapacity, trip.Capacity)
	require.Len(t, trip.Stops, 5)
	assert.Equal(t, "Paulo Afonso-BA", trip.Stops[0])
	assert.Equal(t, "Salgueiro-PE", trip.Stops[4])
	assert.NotNil(t, trip.Bookings)
	assert.Empty(t, trip.Bookings)
}

func TestTemplateReturnReversesRoute(t *testing.T) {
	trip := Template(DirectionReturn, false)

	require.Len(t, trip.Stops, 5)
	assert.Equal(t, "Salgueiro-PE", trip.Stops[0])
	assert.Equal(t, "Paulo Afonso-BA", trip.Stops[4])
}

func TestTemplateExtended(t *testing.T) {
	outbound := Template(DirectionOutbound, true)
	require.Len(t, outbound.Stops, 7)
	assert.Equal(t, "Brejo Santo-CE", outbound.Stops[6])

	// The optional cities extend the route before any reversal, so the return
	// trip starts from the far end
	ret := Template(DirectionReturn, true)
	require.Len(t, ret.Stops, 7)
	assert.Equal(t, "Brejo Santo-CE", ret.Stops[0])
	assert.Equal(t, "Paulo Afonso-BA", ret.Stops[6])
}

func TestKnownStops(t *testing.T) {
	stops := KnownStops()
	assert.Len(t, stops, 7)
	assert.Contains(t, stops, "Juazeiro do Norte-CE")

	// Callers get their own copy
	stops[0] = "changed"
	assert.Equal(t, "Paulo Afonso-BA", KnownStops()[0])
}

func TestTemplateDoesNotShareRoute(t *testing.T) {
	a := Template(DirectionOutbound, false)
	a.Stops[0] = "changed"
	b := Template(DirectionOutbound, false)
	assert.Equal(t, "Paulo Afonso-BA", b.Stops[0])
}
