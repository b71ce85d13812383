// Package occupancy holds the booking rules for a single room: the
// availability check and the room status state machine. Everything here is
// pure and operates on a *domain.Room the caller already holds exclusively.
//
// Dates are canonical yyyy-mm-dd strings and are compared lexicographically.
package occupancy

import "kos-backend-trusted/internal/domain"

// IsRangeFree reports whether [checkIn, checkOut) can be booked on room.
// An open-ended request (checkOut nil) is free only on a room with no bookings.
func IsRangeFree(room *domain.Room, checkIn string, checkOut *string) bool {
	return len(Conflicts(room, checkIn, checkOut, "")) == 0
}

// Conflicts returns the bookings on room that overlap [checkIn, checkOut),
// ignoring the booking with id exclude. Open-ended bookings occupy
// [b.CheckIn, +inf). Stays that touch at a boundary do not overlap.
func Conflicts(room *domain.Room, checkIn string, checkOut *string, exclude string) []domain.Booking {
	var out []domain.Booking
	for _, b := range room.Bookings {
		if b.ID == exclude {
			continue
		}
		if checkOut == nil || overlaps(checkIn, *checkOut, b) {
			out = append(out, b)
		}
	}
	return out
}

func overlaps(checkIn, checkOut string, b domain.Booking) bool {
	if b.CheckOut != nil && checkIn >= *b.CheckOut {
		return false
	}
	return checkOut > b.CheckIn
}

// StaysOverlap reports whether two existing bookings share at least one night.
func StaysOverlap(a, b domain.Booking) bool {
	aEndsFirst := a.CheckOut != nil && *a.CheckOut <= b.CheckIn
	bEndsFirst := b.CheckOut != nil && *b.CheckOut <= a.CheckIn
	return !aEndsFirst && !bEndsFirst
}

// ValidRange reports whether checkOut, when present, is strictly after checkIn.
func ValidRange(checkIn string, checkOut *string) bool {
	return checkOut == nil || *checkOut > checkIn
}
