package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"kos-backend-trusted/internal/domain"
	"kos-backend-trusted/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedRoom(t *testing.T, s *Store, id, number string) {
	t.Helper()
	err := s.Repos().Rooms.Create(context.Background(), &domain.Room{
		ID:       id,
		Number:   number,
		Category: domain.RoomCategoryShortStay,
		BaseRate: 250000,
		Status:   domain.RoomStatusAvailable,
	})
	require.NoError(t, err)
}

func TestStore_WithinTx_Commit(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	seedRoom(t, s, "r1", "H01")

	err := s.WithinTx(ctx, func(repos repository.Repositories) error {
		room, err := repos.Rooms.GetByID(ctx, "r1")
		if err != nil {
			return err
		}
		room.Status = domain.RoomStatusBooked
		room.Bookings = append(room.Bookings, domain.Booking{ID: "b1", RoomID: "r1", TenantID: "t1", CheckIn: "2024-09-01"})
		if err := repos.Rooms.Update(ctx, room); err != nil {
			return err
		}
		return repos.Tenants.Create(ctx, &domain.Tenant{ID: "t1", Name: "Budi", RoomID: "r1"})
	})
	require.NoError(t, err)

	room, err := s.Repos().Rooms.GetByID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, domain.RoomStatusBooked, room.Status)
	assert.Len(t, room.Bookings, 1)

	tenant, err := s.Repos().Tenants.GetByID(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "Budi", tenant.Name)
}

func TestStore_WithinTx_RollbackOnError(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	seedRoom(t, s, "r1", "H01")
	boom := errors.New("boom")

	err := s.WithinTx(ctx, func(repos repository.Repositories) error {
		room, _ := repos.Rooms.GetByID(ctx, "r1")
		room.Status = domain.RoomStatusOccupied
		_ = repos.Rooms.Update(ctx, room)
		_ = repos.Tenants.Create(ctx, &domain.Tenant{ID: "t1"})
		_ = repos.Payments.Create(ctx, &domain.Payment{ID: "p1", TenantID: "t1"})
		return boom
	})
	assert.ErrorIs(t, err, boom)

	room, err := s.Repos().Rooms.GetByID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, domain.RoomStatusAvailable, room.Status)

	_, err = s.Repos().Tenants.GetByID(ctx, "t1")
	assert.ErrorIs(t, err, domain.ErrTenantNotFound)

	payments, err := s.Repos().Payments.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, payments)
}

func TestStore_ReadsReturnCopies(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	seedRoom(t, s, "r1", "H01")

	room, err := s.Repos().Rooms.GetByID(ctx, "r1")
	require.NoError(t, err)
	room.Status = domain.RoomStatusOccupied
	room.Facilities = append(room.Facilities, "AC")

	again, err := s.Repos().Rooms.GetByID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, domain.RoomStatusAvailable, again.Status)
	assert.Empty(t, again.Facilities)
}

func TestRoomRepository(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	seedRoom(t, s, "r2", "H02")
	seedRoom(t, s, "r1", "H01")

	t.Run("Duplicate number", func(t *testing.T) {
		err := s.Repos().Rooms.Create(ctx, &domain.Room{ID: "r3", Number: "H01"})
		assert.ErrorIs(t, err, repository.ErrDuplicate)
	})

	t.Run("Get by number", func(t *testing.T) {
		room, err := s.Repos().Rooms.GetByNumber(ctx, "H02")
		require.NoError(t, err)
		assert.Equal(t, "r2", room.ID)
	})

	t.Run("Not found", func(t *testing.T) {
		_, err := s.Repos().Rooms.GetByID(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrRoomNotFound)
		err = s.Repos().Rooms.Update(ctx, &domain.Room{ID: "missing"})
		assert.ErrorIs(t, err, domain.ErrRoomNotFound)
	})

	t.Run("List sorted by number", func(t *testing.T) {
		rooms, err := s.Repos().Rooms.List(ctx)
		require.NoError(t, err)
		require.Len(t, rooms, 2)
		assert.Equal(t, "H01", rooms[0].Number)
		assert.Equal(t, "H02", rooms[1].Number)
	})
}

func TestPaymentRepository(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	repo := s.Repos().Payments

	require.NoError(t, repo.Create(ctx, &domain.Payment{ID: "p2", TenantID: "t1", TenantName: "Budi", Date: "2024-09-01"}))
	require.NoError(t, repo.Create(ctx, &domain.Payment{ID: "p1", TenantID: "t1", TenantName: "Budi", Date: "2024-08-01"}))
	require.NoError(t, repo.Create(ctx, &domain.Payment{ID: "p3", TenantID: "t2", TenantName: "Sari", Date: "2024-08-15"}))
	assert.ErrorIs(t, repo.Create(ctx, &domain.Payment{ID: "p1"}), repository.ErrDuplicate)

	t.Run("List by tenant in date order", func(t *testing.T) {
		payments, err := repo.ListByTenant(ctx, "t1")
		require.NoError(t, err)
		require.Len(t, payments, 2)
		assert.Equal(t, "p1", payments[0].ID)
		assert.Equal(t, "p2", payments[1].ID)
	})

	t.Run("Rename tenant", func(t *testing.T) {
		require.NoError(t, repo.RenameTenant(ctx, "t1", "Budi Santoso"))
		payments, _ := repo.ListByTenant(ctx, "t1")
		for _, p := range payments {
			assert.Equal(t, "Budi Santoso", p.TenantName)
		}
		other, _ := repo.ListByTenant(ctx, "t2")
		assert.Equal(t, "Sari", other[0].TenantName)
	})

	t.Run("Delete by tenant", func(t *testing.T) {
		require.NoError(t, repo.DeleteByTenant(ctx, "t1"))
		payments, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, payments, 1)
		assert.Equal(t, "p3", payments[0].ID)
	})
}

func TestStore_ConcurrentTransactions(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	seedRoom(t, s, "r1", "H01")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.WithinTx(ctx, func(repos repository.Repositories) error {
				room, err := repos.Rooms.GetByID(ctx, "r1")
				if err != nil {
					return err
				}
				room.Floor++
				return repos.Rooms.Update(ctx, room)
			})
		}()
	}
	wg.Wait()

	room, err := s.Repos().Rooms.GetByID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, int32(50), room.Floor)
}

func TestStore_WithinTx_CancelledContext(t *testing.T) {
	s := NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := s.WithinTx(ctx, func(repos repository.Repositories) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestStore_WithinReadTx_RejectsWrites(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	seedRoom(t, s, "r1", "H01")

	err := s.WithinReadTx(ctx, func(repos repository.Repositories) error {
		room, err := repos.Rooms.GetByID(ctx, "r1")
		if err != nil {
			return err
		}
		room.Status = domain.RoomStatusOccupied
		return repos.Rooms.Update(ctx, room)
	})
	assert.ErrorIs(t, err, repository.ErrReadOnly)

	room, err := s.Repos().Rooms.GetByID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, domain.RoomStatusAvailable, room.Status)
}

func TestStore_WithinReadTx_SeesOneSnapshot(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	seedRoom(t, s, "r1", "H01")

	reading := make(chan struct{})
	release := make(chan struct{})
	written := make(chan struct{})

	var before, after *domain.Room
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		err := s.WithinReadTx(ctx, func(repos repository.Repositories) error {
			var err error
			if before, err = repos.Rooms.GetByID(ctx, "r1"); err != nil {
				return err
			}
			close(reading)
			<-release
			after, err = repos.Rooms.GetByID(ctx, "r1")
			return err
		})
		assert.NoError(t, err)
	}()

	<-reading
	go func() {
		defer close(written)
		err := s.WithinTx(ctx, func(repos repository.Repositories) error {
			room, err := repos.Rooms.GetByID(ctx, "r1")
			if err != nil {
				return err
			}
			room.Status = domain.RoomStatusBooked
			return repos.Rooms.Update(ctx, room)
		})
		assert.NoError(t, err)
	}()

	select {
	case <-written:
		t.Fatal("writer committed while a read transaction was open")
	case <-time.After(50 * time.Millisecond):
	}
	close(release)
	wg.Wait()
	<-written

	assert.Equal(t, before.Status, after.Status)
	room, err := s.Repos().Rooms.GetByID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, domain.RoomStatusBooked, room.Status)
}
