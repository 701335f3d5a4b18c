// Package trips holds the domain model of the trips calendar: the Trip and
// Booking records stored in trips.json, edit-boundary validation, id
// generation, calendar grouping, and the per-segment seat occupancy
// calculator.
//
// The occupancy calculator (ComputeOccupancy) is the one deliberately
// tolerant piece: it treats the document as possibly mid-edit and degrades by
// excluding bookings it cannot resolve instead of failing. Everything that
// should reject bad input does so in Validate, before a trip is written back
// into the document.
package trips
