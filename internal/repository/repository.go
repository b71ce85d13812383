package repository

import (
	"context"
	"errors"

	"kos-backend-trusted/internal/domain"
)

var (
	// ErrDuplicate is returned when a record with the same key already exists.
	ErrDuplicate = errors.New("record already exists")
	// ErrReadOnly is returned by writes inside a read-only transaction.
	ErrReadOnly = errors.New("write in read-only transaction")
)

// RoomRepository persists rooms together with the bookings they own.
// Update replaces the stored booking set with room.Bookings.
type RoomRepository interface {
	Create(ctx context.Context, room *domain.Room) error
	GetByID(ctx context.Context, id string) (*domain.Room, error)
	GetByNumber(ctx context.Context, number string) (*domain.Room, error)
	Update(ctx context.Context, room *domain.Room) error
	List(ctx context.Context) ([]domain.Room, error)
}

type TenantRepository interface {
	Create(ctx context.Context, tenant *domain.Tenant) error
	GetByID(ctx context.Context, id string) (*domain.Tenant, error)
	Update(ctx context.Context, tenant *domain.Tenant) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Tenant, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	ListByTenant(ctx context.Context, tenantID string) ([]domain.Payment, error)
	List(ctx context.Context) ([]domain.Payment, error)
	// RenameTenant rewrites the denormalized tenant name on every payment of tenantID.
	RenameTenant(ctx context.Context, tenantID, name string) error
	DeleteByTenant(ctx context.Context, tenantID string) error
}

// Repositories groups the repositories bound to one unit of work.
type Repositories struct {
	Rooms    RoomRepository
	Tenants  TenantRepository
	Payments PaymentRepository
}

// TxManager runs fn atomically: either every write fn makes is committed or
// none is. Readers outside the transaction never observe a partial commit.
//
// WithinReadTx runs fn against one committed snapshot; every read fn makes
// sees the same state. Writes through its repositories fail with ErrReadOnly.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(repos Repositories) error) error
	WithinReadTx(ctx context.Context, fn func(repos Repositories) error) error
}

// Store is a storage backend: read access plus transactional writes.
type Store interface {
	TxManager
	Repos() Repositories
	Ping(ctx context.Context) error
	Close() error
}
