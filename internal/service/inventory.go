package service

import (
	"context"
	"errors"
	"fmt"

	"kos-backend-trusted/internal/domain"
	"kos-backend-trusted/internal/logger"
	"kos-backend-trusted/internal/repository"

	"github.com/google/uuid"
)

type inventoryService struct {
	base
}

func NewInventoryService(deps Deps) InventoryService {
	return &inventoryService{base: newBase(deps)}
}

// ProvisionRooms creates the rooms that are not in the store yet, matching by
// room number. Existing rooms are left as they are. It returns how many rooms
// were created.
func (s *inventoryService) ProvisionRooms(ctx context.Context, rooms []domain.Room) (int, error) {
	logger.EnterMethod("inventoryService.ProvisionRooms", "count", len(rooms))

	seen := make(map[string]bool, len(rooms))
	for _, r := range rooms {
		if err := validateRoom(r); err != nil {
			logger.ExitMethodWithError("inventoryService.ProvisionRooms", err, "number", r.Number)
			return 0, err
		}
		if seen[r.Number] {
			err := fmt.Errorf("room %s listed twice: %w", r.Number, repository.ErrDuplicate)
			logger.ExitMethodWithError("inventoryService.ProvisionRooms", err)
			return 0, err
		}
		seen[r.Number] = true
	}

	created := 0
	now := s.timestamp()
	err := s.store.WithinTx(ctx, func(repos repository.Repositories) error {
		for _, r := range rooms {
			_, err := repos.Rooms.GetByNumber(ctx, r.Number)
			if err == nil {
				continue
			}
			if !errors.Is(err, domain.ErrRoomNotFound) {
				return err
			}

			room := r.Clone()
			room.ID = uuid.NewString()
			room.Status = domain.RoomStatusAvailable
			room.Occupant = nil
			room.OccupantTenantID = nil
			room.Bookings = nil
			room.CreatedOn = now
			room.UpdatedOn = now
			if err := repos.Rooms.Create(ctx, &room); err != nil {
				return fmt.Errorf("failed to create room %s: %w", r.Number, err)
			}
			logger.WithRoom(room.ID, room.Number).Info("Room provisioned", "category", room.Category, "base_rate", room.BaseRate)
			created++
		}
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("inventoryService.ProvisionRooms", err)
		return 0, err
	}

	logger.ExitMethod("inventoryService.ProvisionRooms", "created", created)
	return created, nil
}

func validateRoom(r domain.Room) error {
	if r.Number == "" {
		return fmt.Errorf("%w: room number", domain.ErrMissingRequiredField)
	}
	if !r.Category.Valid() {
		return fmt.Errorf("%w: room %s has invalid category %q", domain.ErrMissingRequiredField, r.Number, r.Category)
	}
	if r.BaseRate <= 0 {
		return fmt.Errorf("%w: room %s base rate must be positive", domain.ErrInvalidAmount, r.Number)
	}
	return nil
}
