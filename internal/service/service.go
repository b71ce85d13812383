package service

import (
	"context"
	"errors"
	"time"

	"kos-backend-trusted/internal/domain"
	"kos-backend-trusted/internal/repository"
	"kos-backend-trusted/internal/utils"
)

// BookingRequest is the input of CreateBooking. RentalMode may be empty: long-stay
// rooms then default to monthly, short-stay rooms are always daily.
type BookingRequest struct {
	TenantName        string
	Phone             string
	CheckIn           string
	CheckOut          *string
	RentalMode        domain.RentalMode
	OverrideDailyRate int64
	Vehicle           *domain.Vehicle
}

// EditTenantRequest changes only the fields that are set.
type EditTenantRequest struct {
	Name         *string
	Phone        *string
	Vehicle      *domain.Vehicle
	ClearVehicle bool
}

// PaymentRequest settles a pending charge. Amount 0 means the full amount owed;
// an empty Date means today.
type PaymentRequest struct {
	Method string
	Date   string
	Amount int64
}

type TenancyService interface {
	CreateBooking(ctx context.Context, roomID string, req BookingRequest) (*domain.Tenant, *domain.Booking, error)
	EditTenant(ctx context.Context, tenantID string, req EditTenantRequest) (*domain.Tenant, error)
	Checkout(ctx context.Context, roomID string) error
	CancelBooking(ctx context.Context, roomID, bookingID string) error
	DeleteTenant(ctx context.Context, tenantID string) error
	ManualCheckIn(ctx context.Context, roomID, bookingID string) (*domain.Tenant, error)
}

type PaymentService interface {
	RecordPayment(ctx context.Context, tenantID string, req PaymentRequest) (*domain.Payment, error)
	OpenCharge(ctx context.Context, tenantID string) (*domain.Tenant, error)
}

type QueryService interface {
	ListRooms(ctx context.Context, filter domain.RoomFilter) ([]domain.Room, error)
	GetRoom(ctx context.Context, roomID string) (*domain.Room, error)
	ListTenants(ctx context.Context, query string) ([]domain.Tenant, error)
	GetTenant(ctx context.Context, tenantID string) (*domain.Tenant, error)
	ListPayments(ctx context.Context, period domain.Period) ([]domain.Payment, error)
	Summary(ctx context.Context, period domain.Period) (*domain.Summary, error)
}

type InventoryService interface {
	ProvisionRooms(ctx context.Context, rooms []domain.Room) (int, error)
}

// Deps wires the services to a store and the business calendar. The services
// returned by New share one set of room locks.
type Deps struct {
	Store         repository.Store
	Location      *time.Location
	Now           func() time.Time
	UpfrontMethod string
	Locks         *RoomLocks
}

func (d Deps) withDefaults() Deps {
	if d.Location == nil {
		d.Location = time.UTC
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.UpfrontMethod == "" {
		d.UpfrontMethod = domain.PaymentMethodUpfront
	}
	if d.Locks == nil {
		d.Locks = NewRoomLocks()
	}
	return d
}

// Services bundles every service over one store.
type Services struct {
	Tenancy   TenancyService
	Payments  PaymentService
	Queries   QueryService
	Inventory InventoryService
}

func New(deps Deps) *Services {
	deps = deps.withDefaults()
	return &Services{
		Tenancy:   NewTenancyService(deps),
		Payments:  NewPaymentService(deps),
		Queries:   NewQueryService(deps),
		Inventory: NewInventoryService(deps),
	}
}

// base holds what every service needs.
type base struct {
	store         repository.Store
	loc           *time.Location
	now           func() time.Time
	upfrontMethod string
	locks         *RoomLocks
}

func newBase(deps Deps) base {
	deps = deps.withDefaults()
	return base{
		store:         deps.Store,
		loc:           deps.Location,
		now:           deps.Now,
		upfrontMethod: deps.UpfrontMethod,
		locks:         deps.Locks,
	}
}

// today is the current calendar date in the business timezone.
func (b base) today() string {
	return utils.FormatDate(b.now(), b.loc)
}

func (b base) timestamp() string {
	return b.now().UTC().Format(time.RFC3339)
}

// resolveRoom accepts either a room id or a room number.
func (b base) resolveRoom(ctx context.Context, repos repository.Repositories, ref string) (*domain.Room, error) {
	room, err := repos.Rooms.GetByID(ctx, ref)
	if errors.Is(err, domain.ErrRoomNotFound) {
		return repos.Rooms.GetByNumber(ctx, ref)
	}
	return room, err
}

// lockRoom resolves ref to a room id and takes that room's lock.
func (b base) lockRoom(ctx context.Context, ref string) (string, func(), error) {
	room, err := b.resolveRoom(ctx, b.store.Repos(), ref)
	if err != nil {
		return "", nil, err
	}
	return room.ID, b.locks.Lock(room.ID), nil
}

// lockTenantRoom takes the lock of the room tenantID lives in.
func (b base) lockTenantRoom(ctx context.Context, tenantID string) (func(), error) {
	tenant, err := b.store.Repos().Tenants.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return b.locks.Lock(tenant.RoomID), nil
}
