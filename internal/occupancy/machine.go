package occupancy

import (
	"fmt"

	"kos-backend-trusted/internal/domain"
)

// Accept attaches b to room. A booking starting after today leaves an idle
// room BOOKED; one starting today or earlier moves the occupant in immediately.
// Future stays may queue behind an active one, but a second immediate stay on
// an occupied room is refused. On error room is left untouched.
func Accept(room *domain.Room, b domain.Booking, today string) error {
	if !ValidRange(b.CheckIn, b.CheckOut) {
		return domain.ErrDateRangeInvalid
	}
	if !IsRangeFree(room, b.CheckIn, b.CheckOut) {
		return fmt.Errorf("room %s: %w", room.Number, domain.ErrDateRangeConflict)
	}
	immediate := b.CheckIn <= today
	if room.Status == domain.RoomStatusOccupied && immediate {
		return fmt.Errorf("room %s is occupied: %w", room.Number, domain.ErrRoomNotAvailable)
	}

	b.RoomID = room.ID
	room.Bookings = append(room.Bookings, b)
	switch {
	case immediate:
		occupy(room, b)
	case room.Status != domain.RoomStatusOccupied:
		room.Status = domain.RoomStatusBooked
	}
	return nil
}

// CheckIn promotes a pending booking to the active stay. Promoting a booking
// before its check-in date moves the check-in to today, which must not run
// into another booking. The returned flag reports whether the stay was re-dated.
func CheckIn(room *domain.Room, bookingID, today string) (*domain.Booking, bool, error) {
	if room.Status == domain.RoomStatusOccupied {
		return nil, false, fmt.Errorf("room %s is occupied: %w", room.Number, domain.ErrRoomNotAvailable)
	}
	idx := room.FindBooking(bookingID)
	if idx < 0 {
		return nil, false, domain.ErrBookingNotFound
	}

	b := room.Bookings[idx]
	redated := false
	if b.CheckIn > today {
		if !ValidRange(today, b.CheckOut) {
			return nil, false, domain.ErrDateRangeInvalid
		}
		if len(Conflicts(room, today, b.CheckOut, b.ID)) > 0 {
			return nil, false, fmt.Errorf("room %s: %w", room.Number, domain.ErrDateRangeConflict)
		}
		room.Bookings[idx].CheckIn = today
		redated = true
	}

	occupy(room, room.Bookings[idx])
	out := room.Bookings[idx].Clone()
	return &out, redated, nil
}

// Checkout ends the active stay and returns the booking it removed. The room
// falls back to BOOKED when other bookings remain, otherwise AVAILABLE.
func Checkout(room *domain.Room) (*domain.Booking, error) {
	if room.Status != domain.RoomStatusOccupied {
		return nil, fmt.Errorf("room %s is %s: %w", room.Number, room.Status, domain.ErrInvalidTransition)
	}

	var removed *domain.Booking
	if room.OccupantTenantID != nil {
		for i, b := range room.Bookings {
			if b.TenantID == *room.OccupantTenantID {
				out := b.Clone()
				removed = &out
				room.Bookings = append(room.Bookings[:i], room.Bookings[i+1:]...)
				break
			}
		}
	}

	room.Occupant = nil
	room.OccupantTenantID = nil
	settle(room)
	return removed, nil
}

// Cancel removes a booking that has not started. The active stay can only be
// ended through Checkout.
func Cancel(room *domain.Room, bookingID string) (*domain.Booking, error) {
	idx := room.FindBooking(bookingID)
	if idx < 0 {
		return nil, domain.ErrBookingNotFound
	}
	b := room.Bookings[idx]
	if room.IsOccupiedBy(b.TenantID) {
		return nil, fmt.Errorf("booking %s is the active stay: %w", b.ID, domain.ErrInvalidTransition)
	}

	room.Bookings = append(room.Bookings[:idx], room.Bookings[idx+1:]...)
	if room.Status != domain.RoomStatusOccupied {
		settle(room)
	}
	out := b.Clone()
	return &out, nil
}

// DueBooking returns the earliest booking whose check-in is today or earlier,
// or nil when none is due.
func DueBooking(room *domain.Room, today string) *domain.Booking {
	var due *domain.Booking
	for i := range room.Bookings {
		b := &room.Bookings[i]
		if b.CheckIn > today {
			continue
		}
		if due == nil || b.CheckIn < due.CheckIn {
			due = b
		}
	}
	return due
}

// Validate checks the room status invariants as of today.
func Validate(room *domain.Room, today string) error {
	for i := range room.Bookings {
		for j := i + 1; j < len(room.Bookings); j++ {
			a, b := room.Bookings[i], room.Bookings[j]
			if StaysOverlap(a, b) {
				return fmt.Errorf("room %s: bookings %s and %s overlap", room.Number, a.ID, b.ID)
			}
		}
	}

	switch room.Status {
	case domain.RoomStatusAvailable:
		if room.Occupant != nil || len(room.Bookings) > 0 {
			return fmt.Errorf("room %s: available room has occupant or bookings", room.Number)
		}
	case domain.RoomStatusBooked:
		if room.Occupant != nil || len(room.Bookings) == 0 {
			return fmt.Errorf("room %s: booked room must have bookings and no occupant", room.Number)
		}
		for _, b := range room.Bookings {
			if b.CheckIn <= today {
				return fmt.Errorf("room %s: booking %s is due but room is still booked", room.Number, b.ID)
			}
		}
	case domain.RoomStatusOccupied:
		if room.Occupant == nil || room.OccupantTenantID == nil {
			return fmt.Errorf("room %s: occupied room has no occupant", room.Number)
		}
		b := room.BookingForTenant(*room.OccupantTenantID)
		if b == nil || b.OccupantName != *room.Occupant {
			return fmt.Errorf("room %s: occupant has no matching booking", room.Number)
		}
		if b.CheckIn > today {
			return fmt.Errorf("room %s: occupant's stay starts in the future", room.Number)
		}
	default:
		return fmt.Errorf("room %s: unknown status %q", room.Number, room.Status)
	}
	return nil
}

func occupy(room *domain.Room, b domain.Booking) {
	name := b.OccupantName
	tenantID := b.TenantID
	room.Occupant = &name
	room.OccupantTenantID = &tenantID
	room.Status = domain.RoomStatusOccupied
}

func settle(room *domain.Room) {
	if len(room.Bookings) > 0 {
		room.Status = domain.RoomStatusBooked
		return
	}
	room.Status = domain.RoomStatusAvailable
}
