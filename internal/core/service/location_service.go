package service

import (
	"context"
	"fmt"
	"time"

	"bustracker/internal/cache"
	"bustracker/internal/core/model"
	"bustracker/internal/core/repository"
)

const activeBusesKey = "locations:active"

// How long the active-bus list may be served from cache. Positions
// change every few seconds, so this stays short.
const activeBusesTTL = 5 * time.Second

type LocationService interface {
	UpsertFix(fix *model.LocationFix) error
	ActiveBuses() ([]*model.LocationFix, error)
	RemoveBus(busID string) error
}

type locationService struct {
	locationRepo repository.LocationRepository
	cache        *cache.Cache
	activeWindow time.Duration
	now          func() time.Time
}

// NewLocationService builds the write/read service for the public
// location endpoints. activeWindow is the public-view staleness
// threshold, distinct from the admin one.
func NewLocationService(locationRepo repository.LocationRepository, c *cache.Cache, activeWindow time.Duration) LocationService {
	return &locationService{
		locationRepo: locationRepo,
		cache:        c,
		activeWindow: activeWindow,
		now:          time.Now,
	}
}

func (s *locationService) UpsertFix(fix *model.LocationFix) error {
	if err := fix.Validate(); err != nil {
		return err
	}
	fix.ApplyDefaults()

	now := s.now()
	fix.Timestamp = now
	fix.LastUpdated = now

	if err := s.locationRepo.Upsert(fix); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

func (s *locationService) ActiveBuses() ([]*model.LocationFix, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var cached []*model.LocationFix
	if err := s.cache.Get(ctx, activeBusesKey, &cached); err == nil {
		return cached, nil
	}

	fixes, err := s.locationRepo.FindActiveSince(s.now().Add(-s.activeWindow))
	if err != nil {
		return nil, err
	}
	if fixes == nil {
		fixes = []*model.LocationFix{}
	}
	_ = s.cache.Set(ctx, activeBusesKey, fixes, activeBusesTTL)
	return fixes, nil
}

func (s *locationService) RemoveBus(busID string) error {
	if busID == "" {
		return fmt.Errorf("%w: busId is required", model.ErrInvalidInput)
	}
	if _, err := s.locationRepo.DeleteByBusID(busID); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

func (s *locationService) invalidate() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = s.cache.Delete(ctx, activeBusesKey)
}
