package service

import (
	"errors"
	"testing"
	"time"

	"bustracker/internal/cache"
	"bustracker/internal/core/model"
	"bustracker/internal/core/repository"
)

func newTestBusService() (*busService, repository.BusRepository, repository.LocationRepository) {
	busRepo := repository.NewInMemoryBusRepository()
	locationRepo := repository.NewInMemoryLocationRepository()
	s := NewBusService(busRepo, locationRepo, cache.New(""), 5*time.Minute).(*busService)
	return s, busRepo, locationRepo
}

func TestCreateBusDefaults(t *testing.T) {
	s, _, _ := newTestBusService()

	bus, err := s.CreateBus(&model.Bus{BusNumber: "KL15A1234"})
	if err != nil {
		t.Fatalf("CreateBus() error = %v", err)
	}
	if bus.BusID != "KSRTC_KL15A1234" {
		t.Errorf("unexpected busId %q", bus.BusID)
	}
	if bus.Capacity != 50 || bus.Type != "ordinary" || bus.Status != "active" {
		t.Errorf("defaults not applied: %+v", bus)
	}
}

func TestCreateBusRequiresNumber(t *testing.T) {
	s, _, _ := newTestBusService()

	if _, err := s.CreateBus(&model.Bus{}); !errors.Is(err, model.ErrInvalidInput) {
		t.Errorf("CreateBus() error = %v, want ErrInvalidInput", err)
	}
}

func TestCreateBusDuplicate(t *testing.T) {
	s, _, _ := newTestBusService()

	if _, err := s.CreateBus(&model.Bus{BusNumber: "KL15A1234"}); err != nil {
		t.Fatalf("CreateBus() error = %v", err)
	}
	if _, err := s.CreateBus(&model.Bus{BusNumber: "KL15A1234"}); !errors.Is(err, model.ErrConflict) {
		t.Errorf("duplicate CreateBus() error = %v, want ErrConflict", err)
	}
}

func TestRegisterBusOverwrites(t *testing.T) {
	s, busRepo, _ := newTestBusService()

	if _, err := s.RegisterBus(&model.Bus{BusNumber: "KL15B1", RouteNumber: "7"}); err != nil {
		t.Fatalf("RegisterBus() error = %v", err)
	}
	// Re-registering must not conflict.
	if _, err := s.RegisterBus(&model.Bus{BusNumber: "KL15B1", RouteNumber: "12"}); err != nil {
		t.Fatalf("second RegisterBus() error = %v", err)
	}

	stored, err := busRepo.FindByBusNumber("KL15B1")
	if err != nil {
		t.Fatalf("FindByBusNumber() error = %v", err)
	}
	if stored == nil || stored.RouteNumber != "12" {
		t.Errorf("expected latest registration to win, got %+v", stored)
	}
	if stored.RouteName != "12" {
		t.Errorf("expected routeName to default to routeNumber, got %q", stored.RouteName)
	}
}

func TestListBusesActivity(t *testing.T) {
	s, _, locationRepo := newTestBusService()

	now := time.Now()
	s.now = func() time.Time { return now }

	if _, err := s.CreateBus(&model.Bus{BusNumber: "FRESH"}); err != nil {
		t.Fatalf("CreateBus() error = %v", err)
	}
	if _, err := s.CreateBus(&model.Bus{BusNumber: "STALE"}); err != nil {
		t.Fatalf("CreateBus() error = %v", err)
	}
	if _, err := s.CreateBus(&model.Bus{BusNumber: "SILENT"}); err != nil {
		t.Fatalf("CreateBus() error = %v", err)
	}

	locationRepo.Upsert(&model.LocationFix{BusID: "KSRTC_FRESH", BusNumber: "FRESH", Lat: 9, Lng: 76, Timestamp: now.Add(-2 * time.Minute)})
	locationRepo.Upsert(&model.LocationFix{BusID: "KSRTC_STALE", BusNumber: "STALE", Lat: 9, Lng: 76, Timestamp: now.Add(-7 * time.Minute)})

	buses, err := s.ListBuses()
	if err != nil {
		t.Fatalf("ListBuses() error = %v", err)
	}
	if len(buses) != 3 {
		t.Fatalf("expected 3 buses, got %d", len(buses))
	}

	byNumber := make(map[string]*model.EnrichedBus)
	for _, b := range buses {
		byNumber[b.BusNumber] = b
	}
	if !byNumber["FRESH"].IsActive {
		t.Error("bus with a 2-minute-old fix must be active under the 5-minute window")
	}
	if byNumber["STALE"].IsActive {
		t.Error("bus with a 7-minute-old fix must be inactive under the 5-minute window")
	}
	if byNumber["SILENT"].IsActive || byNumber["SILENT"].LastLocation != nil {
		t.Error("bus with no fix must be inactive with no lastLocation")
	}
}

func TestUpdateBusPatch(t *testing.T) {
	s, busRepo, _ := newTestBusService()

	if _, err := s.CreateBus(&model.Bus{BusNumber: "KL15C1", Depot: "Kochi"}); err != nil {
		t.Fatalf("CreateBus() error = %v", err)
	}

	depot := "Thrissur"
	updated, err := s.UpdateBus("KL15C1", &model.BusPatch{Depot: &depot})
	if err != nil {
		t.Fatalf("UpdateBus() error = %v", err)
	}
	if updated != 1 {
		t.Errorf("expected 1 updated, got %d", updated)
	}

	stored, _ := busRepo.FindByBusNumber("KL15C1")
	if stored.Depot != "Thrissur" {
		t.Errorf("expected depot updated, got %q", stored.Depot)
	}
	// Untouched fields survive the patch.
	if stored.Capacity != 50 || stored.Status != "active" {
		t.Errorf("patch must not clobber other fields: %+v", stored)
	}

	if _, err := s.UpdateBus("NOPE", &model.BusPatch{Depot: &depot}); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("UpdateBus(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestDeleteBusCascades(t *testing.T) {
	s, _, locationRepo := newTestBusService()

	if _, err := s.CreateBus(&model.Bus{BusNumber: "KL15D1"}); err != nil {
		t.Fatalf("CreateBus() error = %v", err)
	}
	locationRepo.Upsert(&model.LocationFix{BusID: "KSRTC_KL15D1", BusNumber: "KL15D1", Lat: 9, Lng: 76, Timestamp: time.Now()})

	deleted, err := s.DeleteBus("KL15D1")
	if err != nil {
		t.Fatalf("DeleteBus() error = %v", err)
	}
	if deleted != 1 {
		t.Errorf("expected 1 deleted, got %d", deleted)
	}

	fix, _ := locationRepo.FindLatestByBusNumber("KL15D1")
	if fix != nil {
		t.Errorf("expected location rows cascaded, got %+v", fix)
	}
}

func TestDeleteBusNotFound(t *testing.T) {
	s, _, _ := newTestBusService()

	if _, err := s.DeleteBus("GHOST"); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("DeleteBus(unknown) error = %v, want ErrNotFound", err)
	}
}
