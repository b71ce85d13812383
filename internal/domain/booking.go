package domain

// Booking is a reserved or active stay. It lives only inside its Room.
type Booking struct {
	ID           string  `json:"id"`
	RoomID       string  `json:"room_id"`
	TenantID     string  `json:"tenant_id"`
	OccupantName string  `json:"occupant_name"`
	CheckIn      string  `json:"check_in"`
	CheckOut     *string `json:"check_out,omitempty"`
	// Price snapshot captured at booking time. For monthly stays this is the
	// room's base rate, for daily stays the nightly rate that was charged.
	RentalMode RentalMode `json:"rental_mode"`
	Rate       int64      `json:"rate"`
	CreatedOn  string     `json:"created_on"`
}

func (b Booking) Clone() Booking {
	out := b
	if b.CheckOut != nil {
		co := *b.CheckOut
		out.CheckOut = &co
	}
	return out
}

// IsOpenEnded reports whether the stay has no scheduled checkout.
func (b Booking) IsOpenEnded() bool {
	return b.CheckOut == nil
}
