package postgres

import (
	"context"

	"kos-backend-trusted/internal/domain"
)

const paymentColumns = `id, tenant_id, room_id, tenant_name, room_number, amount, to_char(date, 'YYYY-MM-DD'), rental_mode, method, status, created_on`

type paymentRepository struct {
	db dbtx
}

func (r *paymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	query := `INSERT INTO payments (id, tenant_id, room_id, tenant_name, room_number, amount, date, rental_mode, method, status, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.db.ExecContext(ctx, query, p.ID, p.TenantID, p.RoomID, p.TenantName, p.RoomNumber, p.Amount, p.Date, p.RentalMode, p.Method, p.Status, p.CreatedOn)
	return mapWriteError(err)
}

func (r *paymentRepository) ListByTenant(ctx context.Context, tenantID string) ([]domain.Payment, error) {
	return r.list(ctx, `SELECT `+paymentColumns+` FROM payments WHERE tenant_id = $1 ORDER BY date, created_on`, tenantID)
}

func (r *paymentRepository) List(ctx context.Context) ([]domain.Payment, error) {
	return r.list(ctx, `SELECT `+paymentColumns+` FROM payments ORDER BY date, created_on`)
}

func (r *paymentRepository) RenameTenant(ctx context.Context, tenantID, name string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE payments SET tenant_name = $1 WHERE tenant_id = $2`, name, tenantID)
	return mapWriteError(err)
}

func (r *paymentRepository) DeleteByTenant(ctx context.Context, tenantID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM payments WHERE tenant_id = $1`, tenantID)
	return mapWriteError(err)
}

func (r *paymentRepository) list(ctx context.Context, query string, args ...interface{}) ([]domain.Payment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		var p domain.Payment
		if err := rows.Scan(&p.ID, &p.TenantID, &p.RoomID, &p.TenantName, &p.RoomNumber, &p.Amount, &p.Date, &p.RentalMode, &p.Method, &p.Status, &p.CreatedOn); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
