package service

import (
	"context"
	"fmt"
	"time"

	"bustracker/internal/cache"
	"bustracker/internal/core/model"
	"bustracker/internal/core/repository"
)

type BusService interface {
	CreateBus(input *model.Bus) (*model.Bus, error)
	RegisterBus(input *model.Bus) (*model.Bus, error)
	ListBuses() ([]*model.EnrichedBus, error)
	UpdateBus(busNumber string, patch *model.BusPatch) (int64, error)
	DeleteBus(busNumber string) (int64, error)
}

type busService struct {
	busRepo      repository.BusRepository
	locationRepo repository.LocationRepository
	cache        *cache.Cache
	activeWindow time.Duration
	now          func() time.Time
}

// NewBusService builds the management service. activeWindow is the
// admin-view staleness threshold used for the isActive badge; it is
// shorter than the public one and configured separately.
func NewBusService(busRepo repository.BusRepository, locationRepo repository.LocationRepository, c *cache.Cache, activeWindow time.Duration) BusService {
	return &busService{
		busRepo:      busRepo,
		locationRepo: locationRepo,
		cache:        c,
		activeWindow: activeWindow,
		now:          time.Now,
	}
}

// CreateBus adds a new bus and refuses duplicates.
func (s *busService) CreateBus(input *model.Bus) (*model.Bus, error) {
	if input.BusNumber == "" {
		return nil, fmt.Errorf("%w: bus number is required", model.ErrInvalidInput)
	}

	existing, err := s.busRepo.FindByBusNumber(input.BusNumber)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: bus already exists", model.ErrConflict)
	}

	bus := s.merge(input)
	if err := s.busRepo.Create(bus); err != nil {
		return nil, err
	}
	return bus, nil
}

// RegisterBus is the driver-app variant: re-registering the same bus
// overwrites the earlier record instead of conflicting.
func (s *busService) RegisterBus(input *model.Bus) (*model.Bus, error) {
	if input.BusNumber == "" {
		return nil, fmt.Errorf("%w: bus number is required", model.ErrInvalidInput)
	}

	bus := s.merge(input)
	bus.RegisteredAt = s.now()
	if bus.RouteName == "" {
		bus.RouteName = bus.RouteNumber
	}
	if err := s.busRepo.Upsert(bus); err != nil {
		return nil, err
	}
	return bus, nil
}

func (s *busService) ListBuses() ([]*model.EnrichedBus, error) {
	buses, err := s.busRepo.FindAll()
	if err != nil {
		return nil, err
	}

	now := s.now()
	enriched := make([]*model.EnrichedBus, 0, len(buses))
	for _, bus := range buses {
		last, err := s.locationRepo.FindLatestByBusNumber(bus.BusNumber)
		if err != nil {
			return nil, err
		}
		e := &model.EnrichedBus{Bus: *bus, LastLocation: last}
		if last != nil {
			e.IsActive = model.IsActive(last.Timestamp, now, s.activeWindow)
		}
		enriched = append(enriched, e)
	}
	return enriched, nil
}

func (s *busService) UpdateBus(busNumber string, patch *model.BusPatch) (int64, error) {
	if busNumber == "" {
		return 0, fmt.Errorf("%w: bus number is required", model.ErrInvalidInput)
	}
	return s.busRepo.Update(busNumber, patch)
}

// DeleteBus removes a bus and cascades to its location rows.
func (s *busService) DeleteBus(busNumber string) (int64, error) {
	if busNumber == "" {
		return 0, fmt.Errorf("%w: bus number is required", model.ErrInvalidInput)
	}

	if _, err := s.locationRepo.DeleteByBusNumber(busNumber); err != nil {
		return 0, err
	}
	deleted, err := s.busRepo.Delete(busNumber)
	if err != nil {
		return 0, err
	}
	if deleted == 0 {
		return 0, fmt.Errorf("%w: bus not found", model.ErrNotFound)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = s.cache.Delete(ctx, activeBusesKey)

	return deleted, nil
}

// merge folds caller-supplied fields over the registration defaults.
func (s *busService) merge(input *model.Bus) *model.Bus {
	bus := model.NewBus(input.BusNumber)
	bus.RouteNumber = input.RouteNumber
	bus.RouteName = input.RouteName
	bus.Depot = input.Depot
	bus.DriverName = input.DriverName
	bus.DriverID = input.DriverID
	if input.Capacity > 0 {
		bus.Capacity = input.Capacity
	}
	if input.Type != "" {
		bus.Type = input.Type
	}
	if input.Status != "" {
		bus.Status = input.Status
	}
	return bus
}
