package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"kos-backend-trusted/internal/domain"
	"kos-backend-trusted/internal/logger"
	"kos-backend-trusted/internal/occupancy"
	"kos-backend-trusted/internal/repository"
	"kos-backend-trusted/internal/utils"

	"github.com/google/uuid"
)

type tenancyService struct {
	base
}

func NewTenancyService(deps Deps) TenancyService {
	return &tenancyService{base: newBase(deps)}
}

func (s *tenancyService) CreateBooking(ctx context.Context, roomRef string, req BookingRequest) (*domain.Tenant, *domain.Booking, error) {
	logger.EnterMethod("tenancyService.CreateBooking", "room", roomRef, "checkIn", req.CheckIn)

	req.TenantName = strings.TrimSpace(req.TenantName)
	if err := validateBookingRequest(req); err != nil {
		logger.ExitMethodWithError("tenancyService.CreateBooking", err, "room", roomRef)
		return nil, nil, err
	}

	roomID, unlock, err := s.lockRoom(ctx, roomRef)
	if err != nil {
		logger.ExitMethodWithError("tenancyService.CreateBooking", err, "room", roomRef)
		return nil, nil, err
	}
	defer unlock()

	var (
		tenant  *domain.Tenant
		booking *domain.Booking
		room    *domain.Room
		from    domain.RoomStatus
		upfront bool
	)
	today, now := s.today(), s.timestamp()
	err = s.store.WithinTx(ctx, func(repos repository.Repositories) error {
		var err error
		room, err = repos.Rooms.GetByID(ctx, roomID)
		if err != nil {
			return err
		}
		from = room.Status

		mode := utils.EffectiveMode(room, req.RentalMode)
		price, err := utils.ComputePrice(room, mode, req.CheckIn, req.CheckOut, req.OverrideDailyRate)
		if err != nil {
			return err
		}
		if price <= 0 {
			return fmt.Errorf("%w: price %d", domain.ErrInvalidAmount, price)
		}
		rate, err := utils.NightlyRate(room, mode, req.OverrideDailyRate)
		if err != nil {
			return err
		}

		b := domain.Booking{
			ID:           uuid.NewString(),
			RoomID:       room.ID,
			TenantID:     uuid.NewString(),
			OccupantName: req.TenantName,
			CheckIn:      req.CheckIn,
			CheckOut:     req.CheckOut,
			RentalMode:   mode,
			Rate:         rate,
			CreatedOn:    now,
		}
		if err := occupancy.Accept(room, b, today); err != nil {
			return err
		}
		room.UpdatedOn = now
		if err := repos.Rooms.Update(ctx, room); err != nil {
			return err
		}

		t := &domain.Tenant{
			ID:            b.TenantID,
			Name:          req.TenantName,
			RoomID:        room.ID,
			RoomNumber:    room.Number,
			BookingID:     b.ID,
			Phone:         strings.TrimSpace(req.Phone),
			CheckIn:       b.CheckIn,
			CheckOut:      b.CheckOut,
			RentalMode:    mode,
			PaymentStatus: domain.PaymentStatusPending,
			AmountOwed:    price,
			Vehicle:       copyVehicle(req.Vehicle),
			CreatedOn:     now,
			UpdatedOn:     now,
		}

		// Immediate short stays are paid for at the front desk on arrival.
		upfront = b.CheckIn <= today && room.Category == domain.RoomCategoryShortStay
		if upfront {
			checkIn := b.CheckIn
			t.PaymentStatus = domain.PaymentStatusPaid
			t.LastPayment = &checkIn
		}
		if err := repos.Tenants.Create(ctx, t); err != nil {
			return err
		}

		if upfront {
			p := &domain.Payment{
				ID:         uuid.NewString(),
				TenantID:   t.ID,
				RoomID:     room.ID,
				TenantName: t.Name,
				RoomNumber: room.Number,
				Amount:     price,
				Date:       b.CheckIn,
				RentalMode: mode,
				Method:     s.upfrontMethod,
				Status:     domain.PaymentStatusConfirmed,
				CreatedOn:  now,
			}
			if err := repos.Payments.Create(ctx, p); err != nil {
				return err
			}
		}

		tenant = t
		booking = &b
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("tenancyService.CreateBooking", err, "room", roomRef)
		return nil, nil, err
	}

	if from != room.Status {
		logger.Transition(room.Number, string(from), string(room.Status), "booking_id", booking.ID, "tenant_id", tenant.ID)
	}
	logger.ExitMethod("tenancyService.CreateBooking", "room", room.Number, "bookingID", booking.ID, "amount", tenant.AmountOwed, "upfront", upfront)
	return tenant, booking, nil
}

func validateBookingRequest(req BookingRequest) error {
	if req.TenantName == "" {
		return fmt.Errorf("%w: tenant name", domain.ErrMissingRequiredField)
	}
	if req.CheckIn == "" {
		return fmt.Errorf("%w: check_in", domain.ErrMissingRequiredField)
	}
	if _, err := utils.ParseDate(req.CheckIn); err != nil {
		return err
	}
	if req.CheckOut != nil {
		if _, err := utils.ParseDate(*req.CheckOut); err != nil {
			return err
		}
	}
	if req.RentalMode != "" && !req.RentalMode.Valid() {
		return fmt.Errorf("%w: unknown rental mode %q", domain.ErrMissingRequiredField, req.RentalMode)
	}
	if req.OverrideDailyRate < 0 {
		return fmt.Errorf("%w: daily rate must not be negative", domain.ErrInvalidAmount)
	}
	return nil
}

func (s *tenancyService) EditTenant(ctx context.Context, tenantID string, req EditTenantRequest) (*domain.Tenant, error) {
	logger.EnterMethod("tenancyService.EditTenant", "tenantID", tenantID)

	var newName string
	if req.Name != nil {
		newName = strings.TrimSpace(*req.Name)
		if newName == "" {
			err := fmt.Errorf("%w: tenant name", domain.ErrMissingRequiredField)
			logger.ExitMethodWithError("tenancyService.EditTenant", err, "tenantID", tenantID)
			return nil, err
		}
	}

	unlock, err := s.lockTenantRoom(ctx, tenantID)
	if err != nil {
		logger.ExitMethodWithError("tenancyService.EditTenant", err, "tenantID", tenantID)
		return nil, err
	}
	defer unlock()

	var tenant *domain.Tenant
	now := s.timestamp()
	err = s.store.WithinTx(ctx, func(repos repository.Repositories) error {
		t, err := repos.Tenants.GetByID(ctx, tenantID)
		if err != nil {
			return err
		}

		if req.Name != nil && newName != t.Name {
			if err := renameOccupant(ctx, repos, t, newName, now); err != nil {
				return err
			}
			if err := repos.Payments.RenameTenant(ctx, t.ID, newName); err != nil {
				return err
			}
			t.Name = newName
		}
		if req.Phone != nil {
			t.Phone = strings.TrimSpace(*req.Phone)
		}
		switch {
		case req.ClearVehicle:
			t.Vehicle = nil
		case req.Vehicle != nil:
			t.Vehicle = copyVehicle(req.Vehicle)
		}

		t.UpdatedOn = now
		if err := repos.Tenants.Update(ctx, t); err != nil {
			return err
		}
		tenant = t
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("tenancyService.EditTenant", err, "tenantID", tenantID)
		return nil, err
	}

	logger.ExitMethod("tenancyService.EditTenant", "tenantID", tenantID)
	return tenant, nil
}

// renameOccupant carries a tenant rename onto the booking and, for the active
// stay, the room's occupant field.
func renameOccupant(ctx context.Context, repos repository.Repositories, t *domain.Tenant, name, now string) error {
	room, err := repos.Rooms.GetByID(ctx, t.RoomID)
	if err != nil {
		return err
	}
	b := room.BookingForTenant(t.ID)
	if b == nil {
		return nil
	}
	b.OccupantName = name
	if room.IsOccupiedBy(t.ID) {
		occupant := name
		room.Occupant = &occupant
	}
	room.UpdatedOn = now
	return repos.Rooms.Update(ctx, room)
}

func (s *tenancyService) Checkout(ctx context.Context, roomRef string) error {
	logger.EnterMethod("tenancyService.Checkout", "room", roomRef)

	roomID, unlock, err := s.lockRoom(ctx, roomRef)
	if err != nil {
		logger.ExitMethodWithError("tenancyService.Checkout", err, "room", roomRef)
		return err
	}
	defer unlock()

	var room *domain.Room
	var tenantID string
	err = s.store.WithinTx(ctx, func(repos repository.Repositories) error {
		var err error
		room, err = repos.Rooms.GetByID(ctx, roomID)
		if err != nil {
			return err
		}
		if room.OccupantTenantID != nil {
			tenantID = *room.OccupantTenantID
		}
		if _, err := occupancy.Checkout(room); err != nil {
			return err
		}
		room.UpdatedOn = s.timestamp()
		if err := repos.Rooms.Update(ctx, room); err != nil {
			return err
		}
		// Payments stay behind as revenue history.
		return deleteTenantRecord(ctx, repos, tenantID)
	})
	if err != nil {
		logger.ExitMethodWithError("tenancyService.Checkout", err, "room", roomRef)
		return err
	}

	logger.Transition(room.Number, string(domain.RoomStatusOccupied), string(room.Status), "tenant_id", tenantID, "event", "checkout")
	logger.ExitMethod("tenancyService.Checkout", "room", room.Number)
	return nil
}

func (s *tenancyService) CancelBooking(ctx context.Context, roomRef, bookingID string) error {
	logger.EnterMethod("tenancyService.CancelBooking", "room", roomRef, "bookingID", bookingID)

	roomID, unlock, err := s.lockRoom(ctx, roomRef)
	if err != nil {
		logger.ExitMethodWithError("tenancyService.CancelBooking", err, "room", roomRef)
		return err
	}
	defer unlock()

	var room *domain.Room
	var from domain.RoomStatus
	err = s.store.WithinTx(ctx, func(repos repository.Repositories) error {
		var err error
		room, err = repos.Rooms.GetByID(ctx, roomID)
		if err != nil {
			return err
		}
		from = room.Status
		b, err := occupancy.Cancel(room, bookingID)
		if err != nil {
			return err
		}
		room.UpdatedOn = s.timestamp()
		if err := repos.Rooms.Update(ctx, room); err != nil {
			return err
		}
		if err := deleteTenantRecord(ctx, repos, b.TenantID); err != nil {
			return err
		}
		return repos.Payments.DeleteByTenant(ctx, b.TenantID)
	})
	if err != nil {
		logger.ExitMethodWithError("tenancyService.CancelBooking", err, "room", roomRef, "bookingID", bookingID)
		return err
	}

	if from != room.Status {
		logger.Transition(room.Number, string(from), string(room.Status), "booking_id", bookingID, "event", "cancel")
	}
	logger.ExitMethod("tenancyService.CancelBooking", "room", room.Number, "bookingID", bookingID)
	return nil
}

// DeleteTenant removes a tenant wherever it stands: the active occupant is
// checked out, a pending booking is cancelled. Its payments go with it.
func (s *tenancyService) DeleteTenant(ctx context.Context, tenantID string) error {
	logger.EnterMethod("tenancyService.DeleteTenant", "tenantID", tenantID)

	unlock, err := s.lockTenantRoom(ctx, tenantID)
	if err != nil {
		logger.ExitMethodWithError("tenancyService.DeleteTenant", err, "tenantID", tenantID)
		return err
	}
	defer unlock()

	var room *domain.Room
	var from domain.RoomStatus
	err = s.store.WithinTx(ctx, func(repos repository.Repositories) error {
		t, err := repos.Tenants.GetByID(ctx, tenantID)
		if err != nil {
			return err
		}
		room, err = repos.Rooms.GetByID(ctx, t.RoomID)
		if err != nil {
			return err
		}
		from = room.Status

		switch b := room.BookingForTenant(t.ID); {
		case room.IsOccupiedBy(t.ID):
			_, err = occupancy.Checkout(room)
		case b != nil:
			_, err = occupancy.Cancel(room, b.ID)
		default:
			// Nothing on the room refers to this tenant.
			room = nil
		}
		if err != nil {
			return err
		}
		if room != nil {
			room.UpdatedOn = s.timestamp()
			if err := repos.Rooms.Update(ctx, room); err != nil {
				return err
			}
		}

		if err := repos.Tenants.Delete(ctx, t.ID); err != nil {
			return err
		}
		return repos.Payments.DeleteByTenant(ctx, t.ID)
	})
	if err != nil {
		logger.ExitMethodWithError("tenancyService.DeleteTenant", err, "tenantID", tenantID)
		return err
	}

	if room != nil && from != room.Status {
		logger.Transition(room.Number, string(from), string(room.Status), "tenant_id", tenantID, "event", "delete_tenant")
	}
	logger.ExitMethod("tenancyService.DeleteTenant", "tenantID", tenantID)
	return nil
}

// ManualCheckIn moves a booked guest in. A guest arriving early has the
// stay re-dated to today and, if still unpaid, the charge recomputed.
func (s *tenancyService) ManualCheckIn(ctx context.Context, roomRef, bookingID string) (*domain.Tenant, error) {
	logger.EnterMethod("tenancyService.ManualCheckIn", "room", roomRef, "bookingID", bookingID)

	roomID, unlock, err := s.lockRoom(ctx, roomRef)
	if err != nil {
		logger.ExitMethodWithError("tenancyService.ManualCheckIn", err, "room", roomRef)
		return nil, err
	}
	defer unlock()

	var (
		tenant  *domain.Tenant
		room    *domain.Room
		from    domain.RoomStatus
		redated bool
	)
	today, now := s.today(), s.timestamp()
	err = s.store.WithinTx(ctx, func(repos repository.Repositories) error {
		var err error
		room, err = repos.Rooms.GetByID(ctx, roomID)
		if err != nil {
			return err
		}
		from = room.Status

		idx := room.FindBooking(bookingID)
		if idx < 0 {
			return domain.ErrBookingNotFound
		}
		t, err := repos.Tenants.GetByID(ctx, room.Bookings[idx].TenantID)
		if err != nil {
			return err
		}

		b, moved, err := occupancy.CheckIn(room, bookingID, today)
		if err != nil {
			return err
		}
		redated = moved
		room.UpdatedOn = now
		if err := repos.Rooms.Update(ctx, room); err != nil {
			return err
		}

		t.CheckIn = b.CheckIn
		if redated && t.PaymentStatus == domain.PaymentStatusPending {
			amount, err := rechargeAmount(b)
			if err != nil {
				return err
			}
			t.AmountOwed = amount
		}
		t.UpdatedOn = now
		if err := repos.Tenants.Update(ctx, t); err != nil {
			return err
		}
		tenant = t
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("tenancyService.ManualCheckIn", err, "room", roomRef, "bookingID", bookingID)
		return nil, err
	}

	logger.Transition(room.Number, string(from), string(room.Status), "booking_id", bookingID, "event", "check_in", "redated", redated)
	logger.ExitMethod("tenancyService.ManualCheckIn", "room", room.Number, "tenantID", tenant.ID)
	return tenant, nil
}

// rechargeAmount prices a booking from its rate snapshot.
func rechargeAmount(b *domain.Booking) (int64, error) {
	if b.RentalMode == domain.RentalModeMonthly || b.CheckOut == nil {
		return b.Rate, nil
	}
	nights, err := utils.NightCount(b.CheckIn, *b.CheckOut)
	if err != nil {
		return 0, err
	}
	return utils.StayCharge(b.Rate, nights)
}

// deleteTenantRecord removes the tenant row if there is one. A booking whose
// tenant is already gone is not an error.
func deleteTenantRecord(ctx context.Context, repos repository.Repositories, tenantID string) error {
	if tenantID == "" {
		return nil
	}
	err := repos.Tenants.Delete(ctx, tenantID)
	if errors.Is(err, domain.ErrTenantNotFound) {
		return nil
	}
	return err
}

func copyVehicle(v *domain.Vehicle) *domain.Vehicle {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
