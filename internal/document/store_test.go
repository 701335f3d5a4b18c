package document

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tripeditErrors "github.com/vanroute/tripedit/internal/errors"
	"github.com/vanroute/tripedit/internal/trips"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trips.json")
	writeFile(t, path, `{
  "trips": [
    {
      "id": "2026-02-03_ida_paulo-afonso-ba-salgueiro-pe",
      "date": "2026-02-03",
      "direction": "ida",
      "title": "Feira",
      "capacity": 3,
      "stops": ["Paulo Afonso-BA", "Salgueiro-PE"],
      "bookings": [{"name": "Maria", "from": "Paulo Afonso-BA", "to": "Salgueiro-PE"}]
    }
  ]
}`)

	doc, err := Load(path)
	require.NoError(t, err)
	require.Len(t, doc.Trips, 1)

	tr := doc.Trips[0]
	assert.Equal(t, trips.DirectionOutbound, tr.Direction)
	assert.Equal(t, 3, tr.Capacity)
	require.Len(t, tr.Bookings, 1)
	assert.Equal(t, "Maria", tr.Bookings[0].PassengerName)
}

func TestLoadIgnoresExtraRootKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trips.json")
	writeFile(t, path, `{"version": 2, "trips": []}`)

	doc, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, doc.Trips)
}

func TestLoadRejectsWrongShape(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{"not json", "not json at all"},
		{"array root", `[{"id": "x"}]`},
		{"missing trips key", `{"viagens": []}`},
		{"trips not an array", `{"trips": {"id": "x"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, strings.ReplaceAll(tt.name, " ", "_")+".json")
			writeFile(t, path, tt.content)

			_, err := Load(path)
			require.Error(t, err)
			assert.True(t, tripeditErrors.Is(err, tripeditErrors.ErrInvalidDocument))

			var docErr *tripeditErrors.DocumentError
			require.True(t, tripeditErrors.As(err, &docErr))
			assert.Equal(t, path, docErr.Path)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.True(t, tripeditErrors.Is(err, os.ErrNotExist))
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trips.json")

	doc := New()
	tr := trips.Trip{
		ID:        "feira",
		Date:      "2026-02-03",
		Direction: trips.DirectionReturn,
		Title:     "Feira & Consulta",
		Capacity:  3,
		Stops:     []string{"Salgueiro-PE", "Petrolândia-PE", "Paulo Afonso-BA"},
		Bookings:  []trips.Booking{{PassengerName: "João", From: "Salgueiro-PE", To: "Paulo Afonso-BA"}},
	}
	_, err := doc.Append(tr)
	require.NoError(t, err)

	require.NoError(t, Save(path, doc))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, doc.Trips, loaded.Trips)

	// Human-readable output: indented and without HTML escaping
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "  \"trips\"")
	assert.Contains(t, string(data), "Feira & Consulta")
	assert.NotContains(t, string(data), `\u0026`)
}

func TestSaveReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trips.json")
	writeFile(t, path, `{"trips": []}`)

	require.NoError(t, Save(path, New()))

	// No temp files left behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "trips.json", entries[0].Name())
}
