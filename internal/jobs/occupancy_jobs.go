package jobs

import (
	"context"

	"kos-backend-trusted/internal/domain"
	"kos-backend-trusted/internal/logger"
	"kos-backend-trusted/internal/occupancy"
)

// PromoteDueBookings checks in the earliest due booking of every BOOKED room,
// so a room never stays BOOKED past its guest's arrival date.
func (jr *JobRunner) PromoteDueBookings() {
	jr.runWithRecovery("PromoteDueBookings", func() {
		promoted, err := jr.promoteDueBookings(context.Background())
		if err != nil {
			logger.Error("Failed to promote due bookings", "error", err)
			return
		}
		logger.Info("Promoted due bookings", "count", promoted)
	})
}

func (jr *JobRunner) promoteDueBookings(ctx context.Context) (int, error) {
	today := jr.today()
	rooms, err := jr.services.Queries.ListRooms(ctx, domain.RoomFilter{Status: domain.RoomStatusBooked})
	if err != nil {
		return 0, err
	}

	promoted := 0
	for i := range rooms {
		room := &rooms[i]
		due := occupancy.DueBooking(room, today)
		if due == nil {
			continue
		}
		log := logger.WithRoom(room.ID, room.Number)
		tenant, err := jr.services.Tenancy.ManualCheckIn(ctx, room.ID, due.ID)
		if err != nil {
			log.Error("Failed to check in due booking", "booking_id", due.ID, "error", err)
			continue
		}
		log.Info("Checked in due booking", "booking_id", due.ID, "tenant", tenant.Name, "check_in", tenant.CheckIn)
		promoted++
	}
	return promoted, nil
}

// ReportOverdueStays logs occupied rooms whose guest has reached the checkout
// date without being checked out.
func (jr *JobRunner) ReportOverdueStays() {
	jr.runWithRecovery("ReportOverdueStays", func() {
		overdue, err := jr.overdueStays(context.Background())
		if err != nil {
			logger.Error("Failed to list overdue stays", "error", err)
			return
		}
		logger.Info("Overdue stays reported", "count", len(overdue))
	})
}

func (jr *JobRunner) overdueStays(ctx context.Context) ([]domain.Booking, error) {
	today := jr.today()
	rooms, err := jr.services.Queries.ListRooms(ctx, domain.RoomFilter{Status: domain.RoomStatusOccupied})
	if err != nil {
		return nil, err
	}

	var overdue []domain.Booking
	for i := range rooms {
		room := &rooms[i]
		if room.OccupantTenantID == nil {
			continue
		}
		stay := room.BookingForTenant(*room.OccupantTenantID)
		if stay == nil || stay.CheckOut == nil || *stay.CheckOut > today {
			continue
		}
		logger.WithRoom(room.ID, room.Number).Warn("Stay past checkout date",
			"tenant", stay.OccupantName, "check_out", *stay.CheckOut)
		overdue = append(overdue, *stay)
	}
	return overdue, nil
}
