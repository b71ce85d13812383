package utils

import (
	"fmt"
	"math"
	"time"

	"kos-backend-trusted/internal/domain"
)

// DateLayout is the calendar date format used across the API and storage.
const DateLayout = "2006-01-02"

// ParseDate converts a yyyy-mm-dd formatted string into a UTC midnight time.
func ParseDate(dateStr string) (time.Time, error) {
	t, err := time.Parse(DateLayout, dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", domain.ErrInvalidDate, dateStr)
	}
	return t, nil
}

// FormatDate renders t's calendar date in loc.
func FormatDate(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DateLayout)
}

const secondsPerDay = 24 * 60 * 60

// NightCount returns the number of calendar days between check-in and
// check-out. Equal or inverted dates yield 0.
func NightCount(checkIn, checkOut string) (int64, error) {
	start, err := ParseDate(checkIn)
	if err != nil {
		return 0, err
	}
	end, err := ParseDate(checkOut)
	if err != nil {
		return 0, err
	}
	// Both are UTC midnights, so the division is exact on either side of 1970.
	nights := end.Unix()/secondsPerDay - start.Unix()/secondsPerDay
	if nights <= 0 {
		return 0, nil
	}
	return nights, nil
}

// StayCharge multiplies a nightly rate by a night count. A charge that is not
// positive or does not fit in an int64 is rejected.
func StayCharge(rate, nights int64) (int64, error) {
	if rate <= 0 || nights <= 0 {
		return 0, fmt.Errorf("%w: rate %d for %d nights", domain.ErrInvalidAmount, rate, nights)
	}
	if rate > math.MaxInt64/nights {
		return 0, fmt.Errorf("%w: rate %d for %d nights overflows", domain.ErrInvalidAmount, rate, nights)
	}
	return rate * nights, nil
}

// ComputePrice returns the amount owed for a stay in room.
//
// Monthly stays in long-stay rooms cost the room's base rate regardless of dates.
// Daily stays cost a nightly rate times the night count: short-stay rooms use
// their base rate, long-stay rooms need overrideDailyRate since they have no
// nightly price of their own. Short-stay rooms are always billed daily.
func ComputePrice(room *domain.Room, mode domain.RentalMode, checkIn string, checkOut *string, overrideDailyRate int64) (int64, error) {
	rate, err := NightlyRate(room, mode, overrideDailyRate)
	if err != nil {
		return 0, err
	}
	if room.Category == domain.RoomCategoryLongStay && mode == domain.RentalModeMonthly {
		if room.BaseRate <= 0 {
			return 0, fmt.Errorf("%w: room %s has no monthly rate", domain.ErrInvalidAmount, room.Number)
		}
		return room.BaseRate, nil
	}

	if checkOut == nil || *checkOut == "" {
		return 0, fmt.Errorf("%w: check_out is required for daily stays", domain.ErrMissingRequiredField)
	}
	nights, err := NightCount(checkIn, *checkOut)
	if err != nil {
		return 0, err
	}
	if nights == 0 {
		return 0, domain.ErrDateRangeInvalid
	}
	return StayCharge(rate, nights)
}

// NightlyRate resolves the rate snapshot stored on a booking: the monthly base
// rate for monthly stays, otherwise the rate charged per night.
func NightlyRate(room *domain.Room, mode domain.RentalMode, overrideDailyRate int64) (int64, error) {
	switch room.Category {
	case domain.RoomCategoryShortStay:
		return room.BaseRate, nil
	case domain.RoomCategoryLongStay:
		if mode == domain.RentalModeMonthly {
			return room.BaseRate, nil
		}
		if overrideDailyRate <= 0 {
			return 0, fmt.Errorf("%w: daily_rate is required for daily stays in long-stay rooms", domain.ErrMissingRequiredField)
		}
		return overrideDailyRate, nil
	default:
		return 0, fmt.Errorf("unknown room category %q", room.Category)
	}
}

// EffectiveMode normalizes the requested rental mode for room. Short-stay rooms
// only rent by the night; long-stay rooms default to monthly.
func EffectiveMode(room *domain.Room, requested domain.RentalMode) domain.RentalMode {
	if room.Category == domain.RoomCategoryShortStay {
		return domain.RentalModeDaily
	}
	if requested == "" {
		return domain.RentalModeMonthly
	}
	return requested
}
