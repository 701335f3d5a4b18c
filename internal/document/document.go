package document

import (
	"strings"

	tripeditErrors "github.com/vanroute/tripedit/internal/errors"
	"github.com/vanroute/tripedit/internal/trips"
)

// Document is the in-memory form of a trips.json file: an ordered list of
// trips. All mutations go through methods that enforce the edit-boundary
// rules; the file on disk may still contain data that predates them.
type Document struct {
	Trips []trips.Trip `json:"trips"`
}

// New returns an empty document.
func New() *Document {
	return &Document{Trips: []trips.Trip{}}
}

// IDs returns the ids of every trip in document order.
func (d *Document) IDs() []string {
	ids := make([]string, 0, len(d.Trips))
	for _, t := range d.Trips {
		ids = append(ids, t.ID)
	}
	return ids
}

// Find returns a pointer to the trip with the given id and its index.
func (d *Document) Find(id string) (*trips.Trip, int, error) {
	for i := range d.Trips {
		if d.Trips[i].ID == id {
			return &d.Trips[i], i, nil
		}
	}
	return nil, -1, tripeditErrors.Wrapf(tripeditErrors.ErrTripNotFound, "no trip with id %q", id)
}

// Append validates t and adds it to the document. When t has no id, one is
// generated from its date, direction and route, uniquified against the
// existing trips.
func (d *Document) Append(t trips.Trip) (trips.Trip, error) {
	t.Stops = trips.CleanStops(t.Stops)
	t.Date = trips.NormalizeDate(t.Date)
	if t.Bookings == nil {
		t.Bookings = []trips.Booking{}
	}
	if strings.TrimSpace(t.ID) == "" {
		t.ID = trips.UniqueID(trips.GenerateID(t), d.IDs())
	}
	if err := t.Validate(); err != nil {
		return trips.Trip{}, err
	}
	if _, _, err := d.Find(t.ID); err == nil {
		return trips.Trip{}, tripeditErrors.Wrapf(tripeditErrors.ErrDuplicateTripID,
			"a trip with id %q already exists", t.ID)
	}
	d.Trips = append(d.Trips, t)
	return t, nil
}

// Apply replaces the trip currently stored under id with the validated
// updated record. The update may rename the trip as long as the new id is
// not taken by another trip.
func (d *Document) Apply(id string, updated trips.Trip) error {
	_, idx, err := d.Find(id)
	if err != nil {
		return err
	}
	updated.Stops = trips.CleanStops(updated.Stops)
	updated.Date = trips.NormalizeDate(updated.Date)
	if updated.Bookings == nil {
		updated.Bookings = d.Trips[idx].Bookings
	}
	if updated.Bookings == nil {
		updated.Bookings = []trips.Booking{}
	}
	if err := updated.Validate(); err != nil {
		return err
	}
	for i := range d.Trips {
		if i != idx && d.Trips[i].ID == updated.ID {
			return tripeditErrors.Wrapf(tripeditErrors.ErrDuplicateTripID,
				"a different trip already uses id %q", updated.ID)
		}
	}
	d.Trips[idx] = updated
	return nil
}

// Duplicate deep-copies the trip with the given id, gives the copy a
// "-copy"-suffixed unique id, and appends it.
func (d *Document) Duplicate(id string) (trips.Trip, error) {
	src, _, err := d.Find(id)
	if err != nil {
		return trips.Trip{}, err
	}
	dup := src.Clone()
	dup.ID = trips.UniqueID(strings.Trim(src.ID+"-copy", "-"), d.IDs())
	d.Trips = append(d.Trips, dup)
	return dup, nil
}

// Remove deletes the trip with the given id.
func (d *Document) Remove(id string) error {
	_, idx, err := d.Find(id)
	if err != nil {
		return err
	}
	d.Trips = append(d.Trips[:idx], d.Trips[idx+1:]...)
	return nil
}

// Sort orders the trips by date, direction and id.
func (d *Document) Sort() {
	trips.SortTrips(d.Trips)
}

// AddBooking validates b and appends it to the trip's bookings. The booking's
// stops are not required to resolve against the current route; the occupancy
// calculator tolerates stale spans and the check command reports them.
func (d *Document) AddBooking(id string, b trips.Booking) error {
	t, _, err := d.Find(id)
	if err != nil {
		return err
	}
	if err := b.Validate(); err != nil {
		return err
	}
	t.Bookings = append(t.Bookings, b)
	return nil
}

// UpdateBooking replaces the booking at position index (0-based) on the trip.
func (d *Document) UpdateBooking(id string, index int, b trips.Booking) error {
	t, _, err := d.Find(id)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(t.Bookings) {
		return tripeditErrors.Errorf("booking index %d out of range (trip has %d bookings)", index, len(t.Bookings))
	}
	if err := b.Validate(); err != nil {
		return err
	}
	t.Bookings[index] = b
	return nil
}

// RemoveBooking deletes the booking at position index (0-based) on the trip.
func (d *Document) RemoveBooking(id string, index int) error {
	t, _, err := d.Find(id)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(t.Bookings) {
		return tripeditErrors.Errorf("booking index %d out of range (trip has %d bookings)", index, len(t.Bookings))
	}
	t.Bookings = append(t.Bookings[:index], t.Bookings[index+1:]...)
	return nil
}
