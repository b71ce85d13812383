package http

import (
	"net/http"

	"kos-backend-trusted/internal/domain"
	"kos-backend-trusted/internal/service"

	"github.com/gorilla/mux"
)

type vehicleBody struct {
	Type  string `json:"type" validate:"required"`
	Plate string `json:"plate" validate:"required"`
}

func (v *vehicleBody) toDomain() *domain.Vehicle {
	if v == nil {
		return nil
	}
	return &domain.Vehicle{Type: v.Type, Plate: v.Plate}
}

type createBookingBody struct {
	TenantName string       `json:"tenant_name" validate:"required"`
	Phone      string       `json:"phone"`
	CheckIn    string       `json:"check_in" validate:"required,isodate"`
	CheckOut   *string      `json:"check_out" validate:"omitempty,isodate"`
	RentalMode string       `json:"rental_mode" validate:"omitempty,oneof=daily monthly"`
	DailyRate  int64        `json:"daily_rate" validate:"gte=0"`
	Vehicle    *vehicleBody `json:"vehicle" validate:"omitempty"`
}

type bookingResponse struct {
	Tenant  *domain.Tenant  `json:"tenant"`
	Booking *domain.Booking `json:"booking"`
}

type roomQuery struct {
	Status   string `validate:"omitempty,oneof=AVAILABLE BOOKED OCCUPIED"`
	Category string `validate:"omitempty,oneof=LONG_STAY SHORT_STAY"`
}

func (h *Handler) ListRooms(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := roomQuery{Status: q.Get("status"), Category: q.Get("category")}
	if err := h.validate.Struct(query); err != nil {
		writeError(w, &requestError{msg: err.Error()})
		return
	}

	rooms, err := h.queries.ListRooms(r.Context(), domain.RoomFilter{
		Status:   domain.RoomStatus(query.Status),
		Category: domain.RoomCategory(query.Category),
		Query:    q.Get("q"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rooms)
}

func (h *Handler) GetRoom(w http.ResponseWriter, r *http.Request) {
	room, err := h.queries.GetRoom(r.Context(), mux.Vars(r)["roomID"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var body createBookingBody
	if err := h.decode(r, &body); err != nil {
		writeError(w, err)
		return
	}

	tenant, booking, err := h.tenancy.CreateBooking(r.Context(), mux.Vars(r)["roomID"], service.BookingRequest{
		TenantName:        body.TenantName,
		Phone:             body.Phone,
		CheckIn:           body.CheckIn,
		CheckOut:          body.CheckOut,
		RentalMode:        domain.RentalMode(body.RentalMode),
		OverrideDailyRate: body.DailyRate,
		Vehicle:           body.Vehicle.toDomain(),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, bookingResponse{Tenant: tenant, Booking: booking})
}

func (h *Handler) CheckIn(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	tenant, err := h.tenancy.ManualCheckIn(r.Context(), vars["roomID"], vars["bookingID"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tenant)
}

func (h *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.tenancy.CancelBooking(r.Context(), vars["roomID"], vars["bookingID"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	if err := h.tenancy.Checkout(r.Context(), mux.Vars(r)["roomID"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
