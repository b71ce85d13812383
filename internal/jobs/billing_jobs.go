package jobs

import (
	"context"

	"kos-backend-trusted/internal/domain"
	"kos-backend-trusted/internal/logger"
)

// OpenMonthlyCharges opens the new month's charge for every monthly tenant
// whose last settlement falls in an earlier month.
func (jr *JobRunner) OpenMonthlyCharges() {
	jr.runWithRecovery("OpenMonthlyCharges", func() {
		opened, err := jr.openMonthlyCharges(context.Background())
		if err != nil {
			logger.Error("Failed to open monthly charges", "error", err)
			return
		}
		logger.Info("Opened monthly charges", "count", opened)
	})
}

func (jr *JobRunner) openMonthlyCharges(ctx context.Context) (int, error) {
	month := jr.today()[:7]
	tenants, err := jr.services.Queries.ListTenants(ctx, "")
	if err != nil {
		return 0, err
	}

	opened := 0
	for _, t := range tenants {
		if t.RentalMode != domain.RentalModeMonthly || t.PaymentStatus != domain.PaymentStatusPaid {
			continue
		}
		if t.LastPayment == nil || len(*t.LastPayment) < 7 || (*t.LastPayment)[:7] >= month {
			continue
		}
		updated, err := jr.services.Payments.OpenCharge(ctx, t.ID)
		if err != nil {
			logger.Error("Failed to open charge", "tenant_id", t.ID, "room_number", t.RoomNumber, "error", err)
			continue
		}
		logger.Info("Opened monthly charge", "tenant_id", t.ID, "room_number", t.RoomNumber, "amount_owed", updated.AmountOwed)
		opened++
	}
	return opened, nil
}
