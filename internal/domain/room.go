package domain

type RoomCategory string

const (
	RoomCategoryLongStay  RoomCategory = "LONG_STAY"
	RoomCategoryShortStay RoomCategory = "SHORT_STAY"
)

func (c RoomCategory) Valid() bool {
	return c == RoomCategoryLongStay || c == RoomCategoryShortStay
}

type RoomStatus string

const (
	RoomStatusAvailable RoomStatus = "AVAILABLE"
	RoomStatusBooked    RoomStatus = "BOOKED"
	RoomStatusOccupied  RoomStatus = "OCCUPIED"
)

type Room struct {
	ID         string       `json:"id"`
	Number     string       `json:"number"`
	Category   RoomCategory `json:"category"`
	BaseRate   int64        `json:"base_rate"`
	Floor      int32        `json:"floor"`
	Facilities []string     `json:"facilities"`
	Status     RoomStatus   `json:"status"`
	// Occupant is set only while the room is OCCUPIED.
	Occupant         *string   `json:"occupant,omitempty"`
	OccupantTenantID *string   `json:"occupant_tenant_id,omitempty"`
	Bookings         []Booking `json:"bookings"`
	CreatedOn        string    `json:"created_on"`
	UpdatedOn        string    `json:"updated_on"`
}

// Clone returns a deep copy so callers can mutate it without touching shared state.
func (r Room) Clone() Room {
	out := r
	if r.Facilities != nil {
		out.Facilities = append([]string(nil), r.Facilities...)
	}
	if r.Occupant != nil {
		name := *r.Occupant
		out.Occupant = &name
	}
	if r.OccupantTenantID != nil {
		id := *r.OccupantTenantID
		out.OccupantTenantID = &id
	}
	if r.Bookings != nil {
		out.Bookings = make([]Booking, len(r.Bookings))
		for i, b := range r.Bookings {
			out.Bookings[i] = b.Clone()
		}
	}
	return out
}

// FindBooking returns the index of the booking with the given id, or -1.
func (r *Room) FindBooking(bookingID string) int {
	for i := range r.Bookings {
		if r.Bookings[i].ID == bookingID {
			return i
		}
	}
	return -1
}

// BookingForTenant returns the booking held by tenantID, or nil.
func (r *Room) BookingForTenant(tenantID string) *Booking {
	for i := range r.Bookings {
		if r.Bookings[i].TenantID == tenantID {
			return &r.Bookings[i]
		}
	}
	return nil
}

// IsOccupiedBy reports whether tenantID is the room's current occupant.
func (r *Room) IsOccupiedBy(tenantID string) bool {
	return r.Status == RoomStatusOccupied && r.OccupantTenantID != nil && *r.OccupantTenantID == tenantID
}

// RoomFilter narrows room listings. Empty fields match everything.
type RoomFilter struct {
	Status   RoomStatus
	Category RoomCategory
	Query    string
}
