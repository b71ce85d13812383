package service

import (
	"context"
	"fmt"
	"strings"

	"kos-backend-trusted/internal/domain"
	"kos-backend-trusted/internal/logger"
	"kos-backend-trusted/internal/repository"
	"kos-backend-trusted/internal/utils"

	"github.com/google/uuid"
)

type paymentService struct {
	base
}

func NewPaymentService(deps Deps) PaymentService {
	return &paymentService{base: newBase(deps)}
}

// RecordPayment settles the tenant's pending charge in full. A tenant that is
// already paid is rejected so a double submission never books revenue twice.
func (s *paymentService) RecordPayment(ctx context.Context, tenantID string, req PaymentRequest) (*domain.Payment, error) {
	logger.EnterMethod("paymentService.RecordPayment", "tenantID", tenantID, "method", req.Method, "amount", req.Amount)

	req.Method = strings.TrimSpace(req.Method)
	if req.Method == "" {
		err := fmt.Errorf("%w: payment method", domain.ErrMissingRequiredField)
		logger.ExitMethodWithError("paymentService.RecordPayment", err, "tenantID", tenantID)
		return nil, err
	}
	if req.Date == "" {
		req.Date = s.today()
	}
	if _, err := utils.ParseDate(req.Date); err != nil {
		logger.ExitMethodWithError("paymentService.RecordPayment", err, "tenantID", tenantID)
		return nil, err
	}
	if req.Amount < 0 {
		err := fmt.Errorf("%w: %d", domain.ErrInvalidAmount, req.Amount)
		logger.ExitMethodWithError("paymentService.RecordPayment", err, "tenantID", tenantID)
		return nil, err
	}

	unlock, err := s.lockTenantRoom(ctx, tenantID)
	if err != nil {
		logger.ExitMethodWithError("paymentService.RecordPayment", err, "tenantID", tenantID)
		return nil, err
	}
	defer unlock()

	var payment *domain.Payment
	now := s.timestamp()
	err = s.store.WithinTx(ctx, func(repos repository.Repositories) error {
		t, err := repos.Tenants.GetByID(ctx, tenantID)
		if err != nil {
			return err
		}
		if t.PaymentStatus != domain.PaymentStatusPending {
			return fmt.Errorf("tenant %s: %w", t.Name, domain.ErrAlreadySettled)
		}
		if t.AmountOwed <= 0 {
			return fmt.Errorf("%w: tenant %s owes %d", domain.ErrInvalidAmount, t.Name, t.AmountOwed)
		}
		amount := req.Amount
		if amount == 0 {
			amount = t.AmountOwed
		}
		if amount != t.AmountOwed {
			return fmt.Errorf("%w: got %d, owed %d", domain.ErrInvalidAmount, amount, t.AmountOwed)
		}

		p := &domain.Payment{
			ID:         uuid.NewString(),
			TenantID:   t.ID,
			RoomID:     t.RoomID,
			TenantName: t.Name,
			RoomNumber: t.RoomNumber,
			Amount:     amount,
			Date:       req.Date,
			RentalMode: t.RentalMode,
			Method:     req.Method,
			Status:     domain.PaymentStatusConfirmed,
			CreatedOn:  now,
		}
		if err := repos.Payments.Create(ctx, p); err != nil {
			return err
		}

		date := req.Date
		t.PaymentStatus = domain.PaymentStatusPaid
		t.LastPayment = &date
		t.UpdatedOn = now
		if err := repos.Tenants.Update(ctx, t); err != nil {
			return err
		}
		payment = p
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("paymentService.RecordPayment", err, "tenantID", tenantID)
		return nil, err
	}

	logger.Info("Payment recorded", "tenant_id", tenantID, "room_number", payment.RoomNumber, "amount", payment.Amount, "method", payment.Method)
	logger.ExitMethod("paymentService.RecordPayment", "tenantID", tenantID, "paymentID", payment.ID)
	return payment, nil
}

// OpenCharge starts the next billing period of a monthly tenant. The charge
// is the monthly rate captured on the tenant's booking.
func (s *paymentService) OpenCharge(ctx context.Context, tenantID string) (*domain.Tenant, error) {
	logger.EnterMethod("paymentService.OpenCharge", "tenantID", tenantID)

	unlock, err := s.lockTenantRoom(ctx, tenantID)
	if err != nil {
		logger.ExitMethodWithError("paymentService.OpenCharge", err, "tenantID", tenantID)
		return nil, err
	}
	defer unlock()

	var tenant *domain.Tenant
	opened := false
	err = s.store.WithinTx(ctx, func(repos repository.Repositories) error {
		t, err := repos.Tenants.GetByID(ctx, tenantID)
		if err != nil {
			return err
		}
		if t.RentalMode != domain.RentalModeMonthly {
			return fmt.Errorf("tenant %s rents %s: %w", t.Name, t.RentalMode, domain.ErrInvalidTransition)
		}
		tenant = t
		if t.PaymentStatus == domain.PaymentStatusPending {
			return nil
		}

		room, err := repos.Rooms.GetByID(ctx, t.RoomID)
		if err != nil {
			return err
		}
		rate := room.BaseRate
		if b := room.BookingForTenant(t.ID); b != nil && b.Rate > 0 {
			rate = b.Rate
		}

		t.PaymentStatus = domain.PaymentStatusPending
		t.AmountOwed = rate
		t.UpdatedOn = s.timestamp()
		opened = true
		return repos.Tenants.Update(ctx, t)
	})
	if err != nil {
		logger.ExitMethodWithError("paymentService.OpenCharge", err, "tenantID", tenantID)
		return nil, err
	}

	logger.ExitMethod("paymentService.OpenCharge", "tenantID", tenantID, "opened", opened, "amountOwed", tenant.AmountOwed)
	return tenant, nil
}
