package domain

const PaymentStatusConfirmed = "confirmed"

// Payment method labels used by the front desk. Other labels are accepted as free text.
const (
	PaymentMethodBankTransfer = "BANK_TRANSFER"
	PaymentMethodCash         = "CASH"
	PaymentMethodEWallet      = "E_WALLET"
	PaymentMethodUpfront      = "UPFRONT"
)

// Payment is an immutable settlement record.
type Payment struct {
	ID         string     `json:"id"`
	TenantID   string     `json:"tenant_id"`
	RoomID     string     `json:"room_id"`
	TenantName string     `json:"tenant_name"`
	RoomNumber string     `json:"room_number"`
	Amount     int64      `json:"amount"`
	Date       string     `json:"date"`
	RentalMode RentalMode `json:"rental_mode"`
	Method     string     `json:"method"`
	Status     string     `json:"status"`
	CreatedOn  string     `json:"created_on"`
}
