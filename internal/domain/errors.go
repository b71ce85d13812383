package domain

import "errors"

var (
	ErrRoomNotFound         = errors.New("room not found")
	ErrTenantNotFound       = errors.New("tenant not found")
	ErrBookingNotFound      = errors.New("booking not found")
	ErrDateRangeInvalid     = errors.New("check-out must be after check-in")
	ErrDateRangeConflict    = errors.New("date range overlaps an existing booking")
	ErrRoomNotAvailable     = errors.New("room is not available for booking")
	ErrAlreadySettled       = errors.New("tenant has no pending charge")
	ErrMissingRequiredField = errors.New("missing required field")
	ErrInvalidTransition    = errors.New("transition not allowed in current state")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrInvalidDate          = errors.New("invalid date, expected yyyy-mm-dd")
)

var errorKinds = []struct {
	err  error
	kind string
}{
	{ErrRoomNotFound, "ROOM_NOT_FOUND"},
	{ErrTenantNotFound, "TENANT_NOT_FOUND"},
	{ErrBookingNotFound, "BOOKING_NOT_FOUND"},
	{ErrDateRangeInvalid, "DATE_RANGE_INVALID"},
	{ErrDateRangeConflict, "DATE_RANGE_CONFLICT"},
	{ErrRoomNotAvailable, "ROOM_NOT_AVAILABLE"},
	{ErrAlreadySettled, "ALREADY_SETTLED"},
	{ErrMissingRequiredField, "MISSING_REQUIRED_FIELD"},
	{ErrInvalidTransition, "INVALID_TRANSITION"},
	{ErrInvalidAmount, "INVALID_AMOUNT"},
	{ErrInvalidDate, "INVALID_DATE"},
}

// ErrorKind maps err to a stable machine-readable code, or "INTERNAL" for
// anything that is not a domain error.
func ErrorKind(err error) string {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return "INTERNAL"
}

// IsRejection reports whether err is a caller-correctable domain error
// rather than an infrastructure failure.
func IsRejection(err error) bool {
	return ErrorKind(err) != "INTERNAL"
}
