package http

import (
	"net/http"

	"kos-backend-trusted/internal/domain"
	"kos-backend-trusted/internal/service"

	"github.com/gorilla/mux"
)

type editTenantBody struct {
	Name         *string      `json:"name"`
	Phone        *string      `json:"phone"`
	Vehicle      *vehicleBody `json:"vehicle" validate:"omitempty"`
	ClearVehicle bool         `json:"clear_vehicle"`
}

type paymentBody struct {
	Method string `json:"method" validate:"required"`
	Date   string `json:"date" validate:"omitempty,isodate"`
	Amount int64  `json:"amount" validate:"gte=0"`
}

type periodQuery struct {
	Period string `validate:"omitempty,yearmonth"`
	From   string `validate:"omitempty,isodate"`
	To     string `validate:"omitempty,isodate"`
}

func (h *Handler) period(r *http.Request) (domain.Period, error) {
	q := r.URL.Query()
	pq := periodQuery{Period: q.Get("period"), From: q.Get("from"), To: q.Get("to")}
	if err := h.validate.Struct(pq); err != nil {
		return domain.Period{}, &requestError{msg: err.Error()}
	}
	return domain.Period{Prefix: pq.Period, From: pq.From, To: pq.To}, nil
}

func (h *Handler) ListTenants(w http.ResponseWriter, r *http.Request) {
	tenants, err := h.queries.ListTenants(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tenants)
}

func (h *Handler) GetTenant(w http.ResponseWriter, r *http.Request) {
	tenant, err := h.queries.GetTenant(r.Context(), mux.Vars(r)["tenantID"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tenant)
}

func (h *Handler) EditTenant(w http.ResponseWriter, r *http.Request) {
	var body editTenantBody
	if err := h.decode(r, &body); err != nil {
		writeError(w, err)
		return
	}

	tenant, err := h.tenancy.EditTenant(r.Context(), mux.Vars(r)["tenantID"], service.EditTenantRequest{
		Name:         body.Name,
		Phone:        body.Phone,
		Vehicle:      body.Vehicle.toDomain(),
		ClearVehicle: body.ClearVehicle,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tenant)
}

func (h *Handler) DeleteTenant(w http.ResponseWriter, r *http.Request) {
	if err := h.tenancy.DeleteTenant(r.Context(), mux.Vars(r)["tenantID"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var body paymentBody
	if err := h.decode(r, &body); err != nil {
		writeError(w, err)
		return
	}

	payment, err := h.payments.RecordPayment(r.Context(), mux.Vars(r)["tenantID"], service.PaymentRequest{
		Method: body.Method,
		Date:   body.Date,
		Amount: body.Amount,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, payment)
}

func (h *Handler) OpenCharge(w http.ResponseWriter, r *http.Request) {
	tenant, err := h.payments.OpenCharge(r.Context(), mux.Vars(r)["tenantID"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tenant)
}

func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	period, err := h.period(r)
	if err != nil {
		writeError(w, err)
		return
	}
	payments, err := h.queries.ListPayments(r.Context(), period)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payments)
}

func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	period, err := h.period(r)
	if err != nil {
		writeError(w, err)
		return
	}
	summary, err := h.queries.Summary(r.Context(), period)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
