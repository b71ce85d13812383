package postgres

import (
	"context"
	"database/sql"
	"errors"

	"kos-backend-trusted/internal/domain"
	"kos-backend-trusted/internal/repository"

	"github.com/lib/pq"
)

const roomColumns = `id, number, category, base_rate, floor, facilities, status, occupant, occupant_tenant_id, created_on, updated_on`

const bookingColumns = `id, room_id, tenant_id, occupant_name, to_char(check_in, 'YYYY-MM-DD'), to_char(check_out, 'YYYY-MM-DD'), rental_mode, rate, created_on`

type roomRepository struct {
	db dbtx
	// lock adds FOR UPDATE to room reads; only meaningful inside a transaction.
	lock bool
}

func (r *roomRepository) Create(ctx context.Context, room *domain.Room) error {
	query := `INSERT INTO rooms (id, number, category, base_rate, floor, facilities, status, occupant, occupant_tenant_id, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.db.ExecContext(ctx, query, room.ID, room.Number, room.Category, room.BaseRate, room.Floor, pq.Array(facilities(room)), room.Status, room.Occupant, room.OccupantTenantID, room.CreatedOn, room.UpdatedOn)
	if err != nil {
		return mapWriteError(err)
	}
	return r.insertBookings(ctx, room.Bookings)
}

func (r *roomRepository) GetByID(ctx context.Context, id string) (*domain.Room, error) {
	return r.getOne(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id = $1`, id)
}

func (r *roomRepository) GetByNumber(ctx context.Context, number string) (*domain.Room, error) {
	return r.getOne(ctx, `SELECT `+roomColumns+` FROM rooms WHERE number = $1`, number)
}

func (r *roomRepository) getOne(ctx context.Context, query string, arg string) (*domain.Room, error) {
	if r.lock {
		query += ` FOR UPDATE`
	}
	room, err := scanRoom(r.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}

	bookings, err := r.listBookings(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE room_id = $1 ORDER BY created_on, id`, room.ID)
	if err != nil {
		return nil, err
	}
	room.Bookings = bookings[room.ID]
	return room, nil
}

// Update writes the room row and replaces its booking set.
func (r *roomRepository) Update(ctx context.Context, room *domain.Room) error {
	query := `UPDATE rooms SET number=$1, category=$2, base_rate=$3, floor=$4, facilities=$5, status=$6, occupant=$7, occupant_tenant_id=$8, updated_on=$9 WHERE id=$10`
	result, err := r.db.ExecContext(ctx, query, room.Number, room.Category, room.BaseRate, room.Floor, pq.Array(facilities(room)), room.Status, room.Occupant, room.OccupantTenantID, room.UpdatedOn, room.ID)
	if err != nil {
		return mapWriteError(err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrRoomNotFound
	}

	if _, err := r.db.ExecContext(ctx, `DELETE FROM bookings WHERE room_id = $1`, room.ID); err != nil {
		return err
	}
	return r.insertBookings(ctx, room.Bookings)
}

func (r *roomRepository) List(ctx context.Context) ([]domain.Room, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+roomColumns+` FROM rooms ORDER BY number`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []domain.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, *room)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	bookings, err := r.listBookings(ctx, `SELECT `+bookingColumns+` FROM bookings ORDER BY room_id, created_on, id`)
	if err != nil {
		return nil, err
	}
	for i := range rooms {
		rooms[i].Bookings = bookings[rooms[i].ID]
	}
	return rooms, nil
}

func (r *roomRepository) insertBookings(ctx context.Context, bookings []domain.Booking) error {
	query := `INSERT INTO bookings (id, room_id, tenant_id, occupant_name, check_in, check_out, rental_mode, rate, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	for _, b := range bookings {
		if _, err := r.db.ExecContext(ctx, query, b.ID, b.RoomID, b.TenantID, b.OccupantName, b.CheckIn, b.CheckOut, b.RentalMode, b.Rate, b.CreatedOn); err != nil {
			return mapWriteError(err)
		}
	}
	return nil
}

// listBookings groups the selected bookings by room id, keeping the order in
// which they were accepted.
func (r *roomRepository) listBookings(ctx context.Context, query string, args ...interface{}) (map[string][]domain.Booking, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]domain.Booking)
	for rows.Next() {
		var b domain.Booking
		if err := rows.Scan(&b.ID, &b.RoomID, &b.TenantID, &b.OccupantName, &b.CheckIn, &b.CheckOut, &b.RentalMode, &b.Rate, &b.CreatedOn); err != nil {
			return nil, err
		}
		out[b.RoomID] = append(out[b.RoomID], b)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRoom(s scanner) (*domain.Room, error) {
	room := &domain.Room{}
	err := s.Scan(&room.ID, &room.Number, &room.Category, &room.BaseRate, &room.Floor, pq.Array(&room.Facilities), &room.Status, &room.Occupant, &room.OccupantTenantID, &room.CreatedOn, &room.UpdatedOn)
	if err != nil {
		return nil, err
	}
	return room, nil
}

// facilities never sends NULL for the NOT NULL array column.
func facilities(room *domain.Room) []string {
	if room.Facilities == nil {
		return []string{}
	}
	return room.Facilities
}

func mapWriteError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case "23505":
		return repository.ErrDuplicate
	case "25006":
		return repository.ErrReadOnly
	}
	return err
}
