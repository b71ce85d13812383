package postgres

import (
	"context"
	"database/sql"
	"errors"

	"kos-backend-trusted/internal/domain"
)

const tenantColumns = `id, name, room_id, room_number, booking_id, phone, to_char(check_in, 'YYYY-MM-DD'), to_char(check_out, 'YYYY-MM-DD'), rental_mode, payment_status, to_char(last_payment, 'YYYY-MM-DD'), amount_owed, vehicle_type, vehicle_plate, created_on, updated_on`

type tenantRepository struct {
	db dbtx
}

func (r *tenantRepository) Create(ctx context.Context, t *domain.Tenant) error {
	query := `INSERT INTO tenants (id, name, room_id, room_number, booking_id, phone, check_in, check_out, rental_mode, payment_status, last_payment, amount_owed, vehicle_type, vehicle_plate, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	vehicleType, vehiclePlate := vehicleArgs(t.Vehicle)
	_, err := r.db.ExecContext(ctx, query, t.ID, t.Name, t.RoomID, t.RoomNumber, t.BookingID, t.Phone, t.CheckIn, t.CheckOut, t.RentalMode, t.PaymentStatus, t.LastPayment, t.AmountOwed, vehicleType, vehiclePlate, t.CreatedOn, t.UpdatedOn)
	return mapWriteError(err)
}

func (r *tenantRepository) GetByID(ctx context.Context, id string) (*domain.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE id = $1`
	t, err := scanTenant(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrTenantNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *tenantRepository) Update(ctx context.Context, t *domain.Tenant) error {
	query := `UPDATE tenants SET name=$1, room_id=$2, room_number=$3, booking_id=$4, phone=$5, check_in=$6, check_out=$7, rental_mode=$8, payment_status=$9, last_payment=$10, amount_owed=$11, vehicle_type=$12, vehicle_plate=$13, updated_on=$14 WHERE id=$15`
	vehicleType, vehiclePlate := vehicleArgs(t.Vehicle)
	result, err := r.db.ExecContext(ctx, query, t.Name, t.RoomID, t.RoomNumber, t.BookingID, t.Phone, t.CheckIn, t.CheckOut, t.RentalMode, t.PaymentStatus, t.LastPayment, t.AmountOwed, vehicleType, vehiclePlate, t.UpdatedOn, t.ID)
	if err != nil {
		return err
	}
	return expectOne(result, domain.ErrTenantNotFound)
}

func (r *tenantRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tenants WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectOne(result, domain.ErrTenantNotFound)
}

func (r *tenantRepository) List(ctx context.Context) ([]domain.Tenant, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+tenantColumns+` FROM tenants ORDER BY created_on, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tenants []domain.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, *t)
	}
	return tenants, rows.Err()
}

func scanTenant(s scanner) (*domain.Tenant, error) {
	t := &domain.Tenant{}
	var vehicleType, vehiclePlate sql.NullString
	err := s.Scan(&t.ID, &t.Name, &t.RoomID, &t.RoomNumber, &t.BookingID, &t.Phone, &t.CheckIn, &t.CheckOut, &t.RentalMode, &t.PaymentStatus, &t.LastPayment, &t.AmountOwed, &vehicleType, &vehiclePlate, &t.CreatedOn, &t.UpdatedOn)
	if err != nil {
		return nil, err
	}
	if vehicleType.Valid || vehiclePlate.Valid {
		t.Vehicle = &domain.Vehicle{Type: vehicleType.String, Plate: vehiclePlate.String}
	}
	return t, nil
}

func vehicleArgs(v *domain.Vehicle) (interface{}, interface{}) {
	if v == nil {
		return nil, nil
	}
	return v.Type, v.Plate
}

func expectOne(result sql.Result, notFound error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return notFound
	}
	return nil
}
