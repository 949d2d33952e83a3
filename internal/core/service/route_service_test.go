package service

import (
	"errors"
	"testing"

	"bustracker/internal/core/model"
	"bustracker/internal/core/repository"
)

func newTestRouteService() (RouteService, repository.RouteRepository, repository.BusRepository) {
	routeRepo := repository.NewInMemoryRouteRepository()
	busRepo := repository.NewInMemoryBusRepository()
	return NewRouteService(routeRepo, busRepo), routeRepo, busRepo
}

func TestCreateRouteDefaults(t *testing.T) {
	s, _, _ := newTestRouteService()

	route, err := s.CreateRoute(&model.Route{Code: "17", Name: "Kochi - Thrissur"})
	if err != nil {
		t.Fatalf("CreateRoute() error = %v", err)
	}
	if route.Frequency != 30 || route.OperatingHours != "06:00-22:00" {
		t.Errorf("defaults not applied: %+v", route)
	}
}

func TestCreateRouteValidation(t *testing.T) {
	s, _, _ := newTestRouteService()

	tests := []struct {
		name  string
		route *model.Route
	}{
		{"missing code", &model.Route{Name: "Somewhere"}},
		{"missing name", &model.Route{Code: "9"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.CreateRoute(tt.route); !errors.Is(err, model.ErrInvalidInput) {
				t.Errorf("CreateRoute() error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestCreateRouteDuplicate(t *testing.T) {
	s, _, _ := newTestRouteService()

	if _, err := s.CreateRoute(&model.Route{Code: "17", Name: "A"}); err != nil {
		t.Fatalf("CreateRoute() error = %v", err)
	}
	if _, err := s.CreateRoute(&model.Route{Code: "17", Name: "B"}); !errors.Is(err, model.ErrConflict) {
		t.Errorf("duplicate CreateRoute() error = %v, want ErrConflict", err)
	}
}

func TestListRoutesSummaries(t *testing.T) {
	s, _, busRepo := newTestRouteService()

	_, err := s.CreateRoute(&model.Route{
		Code: "17",
		Name: "Kochi - Thrissur",
		Stops: []model.Stop{
			{Name: "Kochi", Lat: 9.9312, Lng: 76.2673},
			{Name: "Angamaly", Lat: 10.1960, Lng: 76.3861},
			{Name: "Thrissur", Lat: 10.5276, Lng: 76.2144},
		},
	})
	if err != nil {
		t.Fatalf("CreateRoute() error = %v", err)
	}

	bus := model.NewBus("KL15E1")
	bus.RouteName = "Kochi - Thrissur"
	busRepo.Create(bus)

	summaries, err := s.ListRoutes()
	if err != nil {
		t.Fatalf("ListRoutes() error = %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected 1 summary, got %d", len(summaries))
	}
	got := summaries[0]
	if got.StopCount != 3 {
		t.Errorf("expected 3 stops, got %d", got.StopCount)
	}
	if got.AssignedBusCount != 1 {
		t.Errorf("expected 1 assigned bus, got %d", got.AssignedBusCount)
	}
	if got.DistanceKm <= 0 {
		t.Errorf("expected positive route distance, got %f", got.DistanceKm)
	}
}

func TestDeleteRouteBlockedWhileReferenced(t *testing.T) {
	s, routeRepo, busRepo := newTestRouteService()

	if _, err := s.CreateRoute(&model.Route{Code: "17", Name: "Route 17 Express"}); err != nil {
		t.Fatalf("CreateRoute() error = %v", err)
	}

	bus := model.NewBus("KL15F1")
	bus.RouteName = "Route 17 Express"
	busRepo.Create(bus)

	if _, err := s.DeleteRoute("17"); !errors.Is(err, model.ErrConflict) {
		t.Fatalf("DeleteRoute() error = %v, want ErrConflict", err)
	}
	if route, _ := routeRepo.FindByCode("17"); route == nil {
		t.Fatal("blocked delete must not remove the route")
	}

	// Reassign the bus, then the delete goes through.
	unassigned := ""
	if _, err := busRepo.Update("KL15F1", &model.BusPatch{RouteName: &unassigned}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	deleted, err := s.DeleteRoute("17")
	if err != nil {
		t.Fatalf("DeleteRoute() after reassign error = %v", err)
	}
	if deleted != 1 {
		t.Errorf("expected 1 deleted, got %d", deleted)
	}
}

func TestDeleteRouteNotFound(t *testing.T) {
	s, _, _ := newTestRouteService()

	if _, err := s.DeleteRoute("404"); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("DeleteRoute(unknown) error = %v, want ErrNotFound", err)
	}
}
