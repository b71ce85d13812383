package domain

import "strings"

// Period selects payments by date. Prefix ("2024-08") wins over From/To when set.
// From and To are inclusive yyyy-mm-dd bounds; an empty bound is unbounded.
type Period struct {
	Prefix string `json:"prefix,omitempty"`
	From   string `json:"from,omitempty"`
	To     string `json:"to,omitempty"`
}

// Contains reports whether date falls inside the period. Dates are canonical
// yyyy-mm-dd strings, which order lexicographically.
func (p Period) Contains(date string) bool {
	if p.Prefix != "" {
		return strings.HasPrefix(date, p.Prefix)
	}
	if p.From != "" && date < p.From {
		return false
	}
	if p.To != "" && date > p.To {
		return false
	}
	return true
}

type Summary struct {
	OccupiedRooms    int32            `json:"occupied_rooms"`
	AvailableRooms   int32            `json:"available_rooms"`
	BookedRooms      int32            `json:"booked_rooms"`
	PendingPayments  int32            `json:"pending_payments"`
	Revenue          int64            `json:"revenue"`
	TransactionCount int32            `json:"transaction_count"`
	Period           Period           `json:"period"`
	StatusCount      map[string]int32 `json:"status_count"`
}

// Summarize computes dashboard aggregates from a snapshot. Nothing is cached;
// every call re-derives the numbers from the records passed in.
func Summarize(rooms []Room, tenants []Tenant, payments []Payment, period Period) Summary {
	s := Summary{
		Period:      period,
		StatusCount: make(map[string]int32),
	}
	for _, r := range rooms {
		s.StatusCount[string(r.Status)]++
		switch r.Status {
		case RoomStatusOccupied:
			s.OccupiedRooms++
		case RoomStatusAvailable:
			s.AvailableRooms++
		case RoomStatusBooked:
			s.BookedRooms++
		}
	}
	for _, t := range tenants {
		if t.PaymentStatus == PaymentStatusPending {
			s.PendingPayments++
		}
	}
	s.Revenue, s.TransactionCount = Revenue(payments, period)
	return s
}

// Revenue sums confirmed payments dated inside period.
func Revenue(payments []Payment, period Period) (int64, int32) {
	var total int64
	var count int32
	for _, p := range payments {
		if p.Status != PaymentStatusConfirmed || !period.Contains(p.Date) {
			continue
		}
		total += p.Amount
		count++
	}
	return total, count
}

// MatchRoom applies f to r. Query matches number, category or occupant name,
// case-insensitively.
func MatchRoom(r Room, f RoomFilter) bool {
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if f.Category != "" && r.Category != f.Category {
		return false
	}
	if f.Query == "" {
		return true
	}
	q := strings.ToLower(f.Query)
	if strings.Contains(strings.ToLower(r.Number), q) || strings.Contains(strings.ToLower(string(r.Category)), q) {
		return true
	}
	return r.Occupant != nil && strings.Contains(strings.ToLower(*r.Occupant), q)
}

// MatchTenant reports whether the tenant's name contains query, case-insensitively.
func MatchTenant(t Tenant, query string) bool {
	return query == "" || strings.Contains(strings.ToLower(t.Name), strings.ToLower(query))
}
