package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"kos-backend-trusted/internal/domain"
	"kos-backend-trusted/internal/logger"
	"kos-backend-trusted/internal/service"
	"kos-backend-trusted/internal/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler serves the front-desk JSON API.
type Handler struct {
	tenancy  service.TenancyService
	payments service.PaymentService
	queries  service.QueryService
	health   Pinger
	validate *validator.Validate
}

func NewHandler(svc *service.Services, health Pinger) *Handler {
	return &Handler{
		tenancy:  svc.Tenancy,
		payments: svc.Payments,
		queries:  svc.Queries,
		health:   health,
		validate: newValidator(),
	}
}

// newValidator registers the date formats used by request bodies and query strings.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := utils.ParseDate(fl.Field().String())
		return err == nil
	})
	v.RegisterValidation("yearmonth", func(fl validator.FieldLevel) bool {
		_, err := time.Parse("2006-01", fl.Field().String())
		return err == nil
	})
	return v
}

// RegisterRoutes mounts the API on router.
func RegisterRoutes(router *mux.Router, h *Handler) {
	router.HandleFunc("/healthz", h.Health).Methods("GET")

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/rooms", h.ListRooms).Methods("GET")
	api.HandleFunc("/rooms/{roomID}", h.GetRoom).Methods("GET")
	api.HandleFunc("/rooms/{roomID}/bookings", h.CreateBooking).Methods("POST")
	api.HandleFunc("/rooms/{roomID}/bookings/{bookingID}/check-in", h.CheckIn).Methods("POST")
	api.HandleFunc("/rooms/{roomID}/bookings/{bookingID}", h.CancelBooking).Methods("DELETE")
	api.HandleFunc("/rooms/{roomID}/checkout", h.Checkout).Methods("POST")

	api.HandleFunc("/tenants", h.ListTenants).Methods("GET")
	api.HandleFunc("/tenants/{tenantID}", h.GetTenant).Methods("GET")
	api.HandleFunc("/tenants/{tenantID}", h.EditTenant).Methods("PATCH")
	api.HandleFunc("/tenants/{tenantID}", h.DeleteTenant).Methods("DELETE")
	api.HandleFunc("/tenants/{tenantID}/payments", h.RecordPayment).Methods("POST")
	api.HandleFunc("/tenants/{tenantID}/charges", h.OpenCharge).Methods("POST")

	api.HandleFunc("/payments", h.ListPayments).Methods("GET")
	api.HandleFunc("/summary", h.Summary).Methods("GET")
}

// NewRouter returns a router with every route and the request logger installed.
func NewRouter(h *Handler) *mux.Router {
	router := mux.NewRouter()
	router.Use(requestLogger)
	RegisterRoutes(router, h)
	return router
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.health.Ping(r.Context()); err != nil {
		logger.Error("Health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// errInvalidRequest marks bodies and query strings that fail to decode or validate.
var errInvalidRequest = errors.New("invalid request")

func (h *Handler) decode(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return &requestError{msg: "malformed JSON body: " + err.Error()}
	}
	if err := h.validate.Struct(dst); err != nil {
		return &requestError{msg: err.Error()}
	}
	return nil
}

type requestError struct {
	msg string
}

func (e *requestError) Error() string { return e.msg }
func (e *requestError) Unwrap() error { return errInvalidRequest }

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// statusFor maps domain error kinds to HTTP status codes.
func statusFor(kind string) int {
	switch kind {
	case "ROOM_NOT_FOUND", "TENANT_NOT_FOUND", "BOOKING_NOT_FOUND":
		return http.StatusNotFound
	case "DATE_RANGE_CONFLICT", "ROOM_NOT_AVAILABLE", "ALREADY_SETTLED", "INVALID_TRANSITION":
		return http.StatusConflict
	case "DATE_RANGE_INVALID", "MISSING_REQUIRED_FIELD", "INVALID_AMOUNT", "INVALID_DATE":
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, errInvalidRequest) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "INVALID_REQUEST", Message: err.Error()})
		return
	}
	kind := domain.ErrorKind(err)
	status := statusFor(kind)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error("Request failed", "error", err)
		msg = "internal error"
	}
	writeJSON(w, status, errorResponse{Error: kind, Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("HTTP request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "duration_ms", time.Since(start).Milliseconds())
	})
}
