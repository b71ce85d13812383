package domain

type RentalMode string

const (
	RentalModeMonthly RentalMode = "monthly"
	RentalModeDaily   RentalMode = "daily"
)

func (m RentalMode) Valid() bool {
	return m == RentalModeMonthly || m == RentalModeDaily
}

type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusPending PaymentStatus = "pending"
)

type Vehicle struct {
	Type  string `json:"type"`
	Plate string `json:"plate"`
}

type Tenant struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	RoomID        string        `json:"room_id"`
	RoomNumber    string        `json:"room_number"`
	BookingID     string        `json:"booking_id"`
	Phone         string        `json:"phone"`
	CheckIn       string        `json:"check_in"`
	CheckOut      *string       `json:"check_out,omitempty"`
	RentalMode    RentalMode    `json:"rental_mode"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	LastPayment   *string       `json:"last_payment,omitempty"`
	AmountOwed    int64         `json:"amount_owed"`
	Vehicle       *Vehicle      `json:"vehicle,omitempty"`
	CreatedOn     string        `json:"created_on"`
	UpdatedOn     string        `json:"updated_on"`
}

func (t Tenant) Clone() Tenant {
	out := t
	if t.CheckOut != nil {
		co := *t.CheckOut
		out.CheckOut = &co
	}
	if t.LastPayment != nil {
		lp := *t.LastPayment
		out.LastPayment = &lp
	}
	if t.Vehicle != nil {
		v := *t.Vehicle
		out.Vehicle = &v
	}
	return out
}
