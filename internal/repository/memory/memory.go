// Package memory is an in-process storage backend. Every transaction works
// on a private copy of the dataset which replaces the shared one on commit, so
// a failed operation leaves no trace and readers only see committed state.
package memory

import (
	"context"
	"sort"
	"sync"

	"kos-backend-trusted/internal/domain"
	"kos-backend-trusted/internal/repository"
)

type dataset struct {
	rooms    []domain.Room
	tenants  []domain.Tenant
	payments []domain.Payment
}

func (d *dataset) clone() *dataset {
	out := &dataset{
		rooms:    make([]domain.Room, len(d.rooms)),
		tenants:  make([]domain.Tenant, len(d.tenants)),
		payments: append([]domain.Payment(nil), d.payments...),
	}
	for i, r := range d.rooms {
		out.rooms[i] = r.Clone()
	}
	for i, t := range d.tenants {
		out.tenants[i] = t.Clone()
	}
	return out
}

type Store struct {
	mu   sync.RWMutex
	data *dataset
}

func NewStore() *Store {
	return &Store{data: &dataset{}}
}

// WithinTx serializes writers. fn sees a snapshot it may mutate freely; the
// snapshot is published only when fn returns nil.
func (s *Store) WithinTx(ctx context.Context, fn func(repos repository.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.data.clone()
	if err := fn(reposFor(view{store: s, tx: next})); err != nil {
		return err
	}
	s.data = next
	return nil
}

// WithinReadTx holds the read lock while fn runs, so fn sees one committed
// dataset without copying it. Writers wait until fn returns.
func (s *Store) WithinReadTx(ctx context.Context, fn func(repos repository.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	return fn(reposFor(view{store: s, tx: s.data, readOnly: true}))
}

// Repos returns repositories outside any transaction. Each write through them
// commits on its own.
func (s *Store) Repos() repository.Repositories {
	return reposFor(view{store: s})
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) Close() error {
	return nil
}

func reposFor(v view) repository.Repositories {
	return repository.Repositories{
		Rooms:    &roomRepository{v},
		Tenants:  &tenantRepository{v},
		Payments: &paymentRepository{v},
	}
}

// view routes reads and writes either to an open transaction snapshot or to
// the committed dataset.
type view struct {
	store *Store
	tx    *dataset
	// readOnly marks tx as the shared committed dataset.
	readOnly bool
}

func (v view) read(fn func(d *dataset) error) error {
	if v.tx != nil {
		return fn(v.tx)
	}
	v.store.mu.RLock()
	defer v.store.mu.RUnlock()
	return fn(v.store.data)
}

func (v view) write(fn func(d *dataset) error) error {
	if v.readOnly {
		return repository.ErrReadOnly
	}
	if v.tx != nil {
		return fn(v.tx)
	}
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	next := v.store.data.clone()
	if err := fn(next); err != nil {
		return err
	}
	v.store.data = next
	return nil
}

type roomRepository struct {
	v view
}

func (r *roomRepository) Create(ctx context.Context, room *domain.Room) error {
	return r.v.write(func(d *dataset) error {
		for _, existing := range d.rooms {
			if existing.ID == room.ID || existing.Number == room.Number {
				return repository.ErrDuplicate
			}
		}
		d.rooms = append(d.rooms, room.Clone())
		return nil
	})
}

func (r *roomRepository) GetByID(ctx context.Context, id string) (*domain.Room, error) {
	return r.find(func(room *domain.Room) bool { return room.ID == id })
}

func (r *roomRepository) GetByNumber(ctx context.Context, number string) (*domain.Room, error) {
	return r.find(func(room *domain.Room) bool { return room.Number == number })
}

func (r *roomRepository) find(match func(room *domain.Room) bool) (*domain.Room, error) {
	var out *domain.Room
	err := r.v.read(func(d *dataset) error {
		for i := range d.rooms {
			if match(&d.rooms[i]) {
				room := d.rooms[i].Clone()
				out = &room
				return nil
			}
		}
		return domain.ErrRoomNotFound
	})
	return out, err
}

func (r *roomRepository) Update(ctx context.Context, room *domain.Room) error {
	return r.v.write(func(d *dataset) error {
		for i := range d.rooms {
			if d.rooms[i].ID == room.ID {
				d.rooms[i] = room.Clone()
				return nil
			}
		}
		return domain.ErrRoomNotFound
	})
}

func (r *roomRepository) List(ctx context.Context) ([]domain.Room, error) {
	var out []domain.Room
	err := r.v.read(func(d *dataset) error {
		out = make([]domain.Room, len(d.rooms))
		for i, room := range d.rooms {
			out[i] = room.Clone()
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, err
}

type tenantRepository struct {
	v view
}

func (r *tenantRepository) Create(ctx context.Context, tenant *domain.Tenant) error {
	return r.v.write(func(d *dataset) error {
		for _, existing := range d.tenants {
			if existing.ID == tenant.ID {
				return repository.ErrDuplicate
			}
		}
		d.tenants = append(d.tenants, tenant.Clone())
		return nil
	})
}

func (r *tenantRepository) GetByID(ctx context.Context, id string) (*domain.Tenant, error) {
	var out *domain.Tenant
	err := r.v.read(func(d *dataset) error {
		for i := range d.tenants {
			if d.tenants[i].ID == id {
				t := d.tenants[i].Clone()
				out = &t
				return nil
			}
		}
		return domain.ErrTenantNotFound
	})
	return out, err
}

func (r *tenantRepository) Update(ctx context.Context, tenant *domain.Tenant) error {
	return r.v.write(func(d *dataset) error {
		for i := range d.tenants {
			if d.tenants[i].ID == tenant.ID {
				d.tenants[i] = tenant.Clone()
				return nil
			}
		}
		return domain.ErrTenantNotFound
	})
}

func (r *tenantRepository) Delete(ctx context.Context, id string) error {
	return r.v.write(func(d *dataset) error {
		for i := range d.tenants {
			if d.tenants[i].ID == id {
				d.tenants = append(d.tenants[:i], d.tenants[i+1:]...)
				return nil
			}
		}
		return domain.ErrTenantNotFound
	})
}

func (r *tenantRepository) List(ctx context.Context) ([]domain.Tenant, error) {
	var out []domain.Tenant
	err := r.v.read(func(d *dataset) error {
		out = make([]domain.Tenant, len(d.tenants))
		for i, t := range d.tenants {
			out[i] = t.Clone()
		}
		return nil
	})
	return out, err
}

type paymentRepository struct {
	v view
}

func (r *paymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	return r.v.write(func(d *dataset) error {
		for _, existing := range d.payments {
			if existing.ID == payment.ID {
				return repository.ErrDuplicate
			}
		}
		d.payments = append(d.payments, *payment)
		return nil
	})
}

func (r *paymentRepository) ListByTenant(ctx context.Context, tenantID string) ([]domain.Payment, error) {
	return r.filter(func(p *domain.Payment) bool { return p.TenantID == tenantID })
}

func (r *paymentRepository) List(ctx context.Context) ([]domain.Payment, error) {
	return r.filter(func(p *domain.Payment) bool { return true })
}

func (r *paymentRepository) filter(match func(p *domain.Payment) bool) ([]domain.Payment, error) {
	var out []domain.Payment
	err := r.v.read(func(d *dataset) error {
		for i := range d.payments {
			if match(&d.payments[i]) {
				out = append(out, d.payments[i])
			}
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, err
}

func (r *paymentRepository) RenameTenant(ctx context.Context, tenantID, name string) error {
	return r.v.write(func(d *dataset) error {
		for i := range d.payments {
			if d.payments[i].TenantID == tenantID {
				d.payments[i].TenantName = name
			}
		}
		return nil
	})
}

func (r *paymentRepository) DeleteByTenant(ctx context.Context, tenantID string) error {
	return r.v.write(func(d *dataset) error {
		kept := d.payments[:0]
		for _, p := range d.payments {
			if p.TenantID != tenantID {
				kept = append(kept, p)
			}
		}
		d.payments = kept
		return nil
	})
}
