package service

import (
	"context"

	"kos-backend-trusted/internal/domain"
	"kos-backend-trusted/internal/repository"
)

// queryService serves every read from a single read transaction, so a room
// and its bookings always come from the same committed state.
type queryService struct {
	base
}

func NewQueryService(deps Deps) QueryService {
	return &queryService{base: newBase(deps)}
}

func (s *queryService) ListRooms(ctx context.Context, filter domain.RoomFilter) ([]domain.Room, error) {
	var rooms []domain.Room
	err := s.store.WithinReadTx(ctx, func(repos repository.Repositories) error {
		var err error
		rooms, err = repos.Rooms.List(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := make([]domain.Room, 0, len(rooms))
	for _, r := range rooms {
		if domain.MatchRoom(r, filter) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *queryService) GetRoom(ctx context.Context, roomRef string) (*domain.Room, error) {
	var room *domain.Room
	err := s.store.WithinReadTx(ctx, func(repos repository.Repositories) error {
		var err error
		room, err = s.resolveRoom(ctx, repos, roomRef)
		return err
	})
	if err != nil {
		return nil, err
	}
	return room, nil
}

func (s *queryService) ListTenants(ctx context.Context, query string) ([]domain.Tenant, error) {
	var tenants []domain.Tenant
	err := s.store.WithinReadTx(ctx, func(repos repository.Repositories) error {
		var err error
		tenants, err = repos.Tenants.List(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := make([]domain.Tenant, 0, len(tenants))
	for _, t := range tenants {
		if domain.MatchTenant(t, query) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *queryService) GetTenant(ctx context.Context, tenantID string) (*domain.Tenant, error) {
	var tenant *domain.Tenant
	err := s.store.WithinReadTx(ctx, func(repos repository.Repositories) error {
		var err error
		tenant, err = repos.Tenants.GetByID(ctx, tenantID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return tenant, nil
}

func (s *queryService) ListPayments(ctx context.Context, period domain.Period) ([]domain.Payment, error) {
	var payments []domain.Payment
	err := s.store.WithinReadTx(ctx, func(repos repository.Repositories) error {
		var err error
		payments, err = repos.Payments.List(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := make([]domain.Payment, 0, len(payments))
	for _, p := range payments {
		if period.Contains(p.Date) {
			out = append(out, p)
		}
	}
	return out, nil
}

// Summary derives the dashboard numbers from one snapshot.
func (s *queryService) Summary(ctx context.Context, period domain.Period) (*domain.Summary, error) {
	var (
		rooms    []domain.Room
		tenants  []domain.Tenant
		payments []domain.Payment
	)
	err := s.store.WithinReadTx(ctx, func(repos repository.Repositories) error {
		var err error
		if rooms, err = repos.Rooms.List(ctx); err != nil {
			return err
		}
		if tenants, err = repos.Tenants.List(ctx); err != nil {
			return err
		}
		payments, err = repos.Payments.List(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	summary := domain.Summarize(rooms, tenants, payments, period)
	return &summary, nil
}
