package occupancy

import (
	"fmt"
	"testing"

	"kos-backend-trusted/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const today = "2024-08-12"

func newRoom() *domain.Room {
	return &domain.Room{ID: "room-1", Number: "A03", Category: domain.RoomCategoryShortStay, BaseRate: 250000, Status: domain.RoomStatusAvailable}
}

func TestAccept(t *testing.T) {
	t.Run("Immediate stay occupies room", func(t *testing.T) {
		room := newRoom()
		err := Accept(room, booking("b1", "2024-08-12", strPtr("2024-08-15")), today)
		require.NoError(t, err)
		assert.Equal(t, domain.RoomStatusOccupied, room.Status)
		require.NotNil(t, room.Occupant)
		assert.Equal(t, "Guest b1", *room.Occupant)
		assert.Equal(t, "t-b1", *room.OccupantTenantID)
		assert.Equal(t, "room-1", room.Bookings[0].RoomID)
		assert.NoError(t, Validate(room, today))
	})

	t.Run("Past check-in occupies room", func(t *testing.T) {
		room := newRoom()
		require.NoError(t, Accept(room, booking("b1", "2024-08-01", strPtr("2024-08-03")), today))
		assert.Equal(t, domain.RoomStatusOccupied, room.Status)
	})

	t.Run("Future stay books room", func(t *testing.T) {
		room := newRoom()
		require.NoError(t, Accept(room, booking("b1", "2024-09-01", strPtr("2024-09-03")), today))
		assert.Equal(t, domain.RoomStatusBooked, room.Status)
		assert.Nil(t, room.Occupant)
		assert.NoError(t, Validate(room, today))
	})

	t.Run("Second future stay keeps room booked", func(t *testing.T) {
		room := newRoom()
		require.NoError(t, Accept(room, booking("b1", "2024-09-01", strPtr("2024-09-03")), today))
		require.NoError(t, Accept(room, booking("b2", "2024-09-03", strPtr("2024-09-05")), today))
		assert.Equal(t, domain.RoomStatusBooked, room.Status)
		assert.Len(t, room.Bookings, 2)
		assert.Equal(t, "b1", room.Bookings[0].ID)
		assert.Equal(t, "b2", room.Bookings[1].ID)
	})

	t.Run("Immediate stay on booked room", func(t *testing.T) {
		room := newRoom()
		require.NoError(t, Accept(room, booking("b1", "2024-09-01", strPtr("2024-09-03")), today))
		require.NoError(t, Accept(room, booking("b2", "2024-08-12", strPtr("2024-08-14")), today))
		assert.Equal(t, domain.RoomStatusOccupied, room.Status)
		assert.Equal(t, "Guest b2", *room.Occupant)
		assert.NoError(t, Validate(room, today))
	})

	t.Run("Overlap is rejected without mutation", func(t *testing.T) {
		room := newRoom()
		require.NoError(t, Accept(room, booking("b1", "2024-08-12", strPtr("2024-08-15")), today))
		before := room.Clone()

		err := Accept(room, booking("b2", "2024-08-13", strPtr("2024-08-14")), today)
		assert.ErrorIs(t, err, domain.ErrDateRangeConflict)
		assert.Equal(t, before, *room)
	})

	t.Run("Future stay queues behind active stay", func(t *testing.T) {
		room := newRoom()
		require.NoError(t, Accept(room, booking("b1", today, strPtr("2024-08-15")), today))
		require.NoError(t, Accept(room, booking("b2", "2024-08-15", strPtr("2024-08-17")), today))
		assert.Equal(t, domain.RoomStatusOccupied, room.Status)
		assert.Equal(t, "Guest b1", *room.Occupant)
		assert.Len(t, room.Bookings, 2)
		assert.NoError(t, Validate(room, today))
	})

	t.Run("Second immediate stay on occupied room", func(t *testing.T) {
		room := newRoom()
		require.NoError(t, Accept(room, booking("b1", "2024-08-10", strPtr("2024-08-15")), today))
		before := room.Clone()

		err := Accept(room, booking("b2", "2024-08-01", strPtr("2024-08-03")), today)
		assert.ErrorIs(t, err, domain.ErrRoomNotAvailable)
		assert.Equal(t, before, *room)
	})

	t.Run("Overlap on booked room", func(t *testing.T) {
		room := newRoom()
		require.NoError(t, Accept(room, booking("b1", "2024-09-01", strPtr("2024-09-05")), today))
		before := room.Clone()

		err := Accept(room, booking("b2", "2024-09-04", strPtr("2024-09-06")), today)
		assert.ErrorIs(t, err, domain.ErrDateRangeConflict)
		assert.Equal(t, before, *room)
	})

	t.Run("Inverted range", func(t *testing.T) {
		room := newRoom()
		err := Accept(room, booking("b1", "2024-08-15", strPtr("2024-08-12")), today)
		assert.ErrorIs(t, err, domain.ErrDateRangeInvalid)
		assert.Empty(t, room.Bookings)
		assert.Equal(t, domain.RoomStatusAvailable, room.Status)
	})

	t.Run("Open-ended stay needs an empty room", func(t *testing.T) {
		room := newRoom()
		require.NoError(t, Accept(room, booking("b1", "2024-09-01", strPtr("2024-09-03")), today))
		err := Accept(room, booking("b2", "2024-10-01", nil), today)
		assert.ErrorIs(t, err, domain.ErrDateRangeConflict)
	})
}

func TestCheckIn(t *testing.T) {
	t.Run("Due booking", func(t *testing.T) {
		room := newRoom()
		require.NoError(t, Accept(room, booking("b1", "2024-08-13", strPtr("2024-08-15")), today))

		b, redated, err := CheckIn(room, "b1", "2024-08-13")
		require.NoError(t, err)
		assert.False(t, redated)
		assert.Equal(t, "2024-08-13", b.CheckIn)
		assert.Equal(t, domain.RoomStatusOccupied, room.Status)
		assert.NoError(t, Validate(room, "2024-08-13"))
	})

	t.Run("Early promotion re-dates stay", func(t *testing.T) {
		room := newRoom()
		require.NoError(t, Accept(room, booking("b1", "2024-08-20", strPtr("2024-08-22")), today))

		b, redated, err := CheckIn(room, "b1", today)
		require.NoError(t, err)
		assert.True(t, redated)
		assert.Equal(t, today, b.CheckIn)
		assert.Equal(t, today, room.Bookings[0].CheckIn)
		assert.NoError(t, Validate(room, today))
	})

	t.Run("Early promotion blocked by earlier booking", func(t *testing.T) {
		room := newRoom()
		require.NoError(t, Accept(room, booking("b1", "2024-08-14", strPtr("2024-08-16")), today))
		require.NoError(t, Accept(room, booking("b2", "2024-08-20", strPtr("2024-08-22")), today))
		before := room.Clone()

		_, _, err := CheckIn(room, "b2", today)
		assert.ErrorIs(t, err, domain.ErrDateRangeConflict)
		assert.Equal(t, before, *room)
	})

	t.Run("Occupied room", func(t *testing.T) {
		room := newRoom()
		require.NoError(t, Accept(room, booking("b1", today, strPtr("2024-08-14")), today))
		require.NoError(t, Accept(room, booking("b2", "2024-08-20", strPtr("2024-08-21")), today))

		_, _, err := CheckIn(room, "b2", today)
		assert.ErrorIs(t, err, domain.ErrRoomNotAvailable)
	})

	t.Run("Unknown booking", func(t *testing.T) {
		room := newRoom()
		_, _, err := CheckIn(room, "missing", today)
		assert.ErrorIs(t, err, domain.ErrBookingNotFound)
	})
}

func TestCheckout(t *testing.T) {
	t.Run("Last stay frees room", func(t *testing.T) {
		room := newRoom()
		require.NoError(t, Accept(room, booking("b1", today, strPtr("2024-08-15")), today))

		removed, err := Checkout(room)
		require.NoError(t, err)
		require.NotNil(t, removed)
		assert.Equal(t, "b1", removed.ID)
		assert.Equal(t, domain.RoomStatusAvailable, room.Status)
		assert.Nil(t, room.Occupant)
		assert.Nil(t, room.OccupantTenantID)
		assert.Empty(t, room.Bookings)
		assert.NoError(t, Validate(room, today))
	})

	t.Run("Future bookings keep room booked", func(t *testing.T) {
		room := newRoom()
		require.NoError(t, Accept(room, booking("future", "2024-09-01", strPtr("2024-09-03")), today))
		require.NoError(t, Accept(room, booking("now", today, strPtr("2024-08-15")), today))

		removed, err := Checkout(room)
		require.NoError(t, err)
		assert.Equal(t, "now", removed.ID)
		assert.Equal(t, domain.RoomStatusBooked, room.Status)
		assert.Len(t, room.Bookings, 1)
		assert.Equal(t, "future", room.Bookings[0].ID)
		assert.NoError(t, Validate(room, today))
	})

	t.Run("Room not occupied", func(t *testing.T) {
		room := newRoom()
		_, err := Checkout(room)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})
}

func TestCancel(t *testing.T) {
	t.Run("Sole booking frees room", func(t *testing.T) {
		room := newRoom()
		require.NoError(t, Accept(room, booking("b1", "2024-09-01", strPtr("2024-09-03")), today))

		removed, err := Cancel(room, "b1")
		require.NoError(t, err)
		assert.Equal(t, "b1", removed.ID)
		assert.Equal(t, domain.RoomStatusAvailable, room.Status)
		assert.Empty(t, room.Bookings)
	})

	t.Run("Other bookings keep room booked", func(t *testing.T) {
		room := newRoom()
		require.NoError(t, Accept(room, booking("b1", "2024-09-01", strPtr("2024-09-03")), today))
		require.NoError(t, Accept(room, booking("b2", "2024-09-10", strPtr("2024-09-12")), today))

		_, err := Cancel(room, "b1")
		require.NoError(t, err)
		assert.Equal(t, domain.RoomStatusBooked, room.Status)
		assert.Len(t, room.Bookings, 1)
	})

	t.Run("Future booking on occupied room", func(t *testing.T) {
		room := newRoom()
		require.NoError(t, Accept(room, booking("b1", "2024-09-01", strPtr("2024-09-03")), today))
		require.NoError(t, Accept(room, booking("b2", today, strPtr("2024-08-14")), today))

		_, err := Cancel(room, "b1")
		require.NoError(t, err)
		assert.Equal(t, domain.RoomStatusOccupied, room.Status)
		assert.Equal(t, "Guest b2", *room.Occupant)
	})

	t.Run("Active stay cannot be cancelled", func(t *testing.T) {
		room := newRoom()
		require.NoError(t, Accept(room, booking("b1", today, strPtr("2024-08-14")), today))

		_, err := Cancel(room, "b1")
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
		assert.Len(t, room.Bookings, 1)
	})

	t.Run("Unknown booking", func(t *testing.T) {
		_, err := Cancel(newRoom(), "missing")
		assert.ErrorIs(t, err, domain.ErrBookingNotFound)
	})
}

func TestDueBooking(t *testing.T) {
	room := newRoom()
	require.NoError(t, Accept(room, booking("late", "2024-08-20", strPtr("2024-08-22")), today))
	require.NoError(t, Accept(room, booking("early", "2024-08-14", strPtr("2024-08-16")), today))

	assert.Nil(t, DueBooking(room, today))
	due := DueBooking(room, "2024-08-21")
	require.NotNil(t, due)
	assert.Equal(t, "early", due.ID)
}

func TestValidate_Violations(t *testing.T) {
	t.Run("Available with bookings", func(t *testing.T) {
		room := newRoom()
		room.Bookings = []domain.Booking{booking("b1", "2024-09-01", nil)}
		assert.Error(t, Validate(room, today))
	})

	t.Run("Booked with due booking", func(t *testing.T) {
		room := newRoom()
		require.NoError(t, Accept(room, booking("b1", "2024-08-13", strPtr("2024-08-15")), today))
		assert.NoError(t, Validate(room, today))
		assert.Error(t, Validate(room, "2024-08-13"))
	})

	t.Run("Overlapping bookings", func(t *testing.T) {
		room := newRoom()
		room.Status = domain.RoomStatusBooked
		room.Bookings = []domain.Booking{
			booking("b1", "2024-09-01", strPtr("2024-09-05")),
			booking("b2", "2024-09-04", strPtr("2024-09-06")),
		}
		assert.Error(t, Validate(room, today))
	})
}

// Random sequences of accepted bookings never produce overlapping stays.
func TestAccept_NonOverlapProperty(t *testing.T) {
	room := newRoom()
	starts := []string{"2024-08-12", "2024-08-13", "2024-08-14", "2024-08-15", "2024-08-16", "2024-08-18", "2024-08-20", "2024-08-21"}
	ends := []string{"2024-08-13", "2024-08-14", "2024-08-16", "2024-08-19", "2024-08-21", "2024-08-25"}

	n := 0
	for _, in := range starts {
		for _, out := range ends {
			n++
			_ = Accept(room, booking(fmt.Sprintf("b%d", n), in, strPtr(out)), today)
			require.NoError(t, Validate(room, today))
		}
	}
	assert.NotEmpty(t, room.Bookings)
}
