package service

import (
	"fmt"

	"bustracker/internal/core/model"
	"bustracker/internal/core/repository"
	"bustracker/internal/geo"
)

type RouteService interface {
	ListRoutes() ([]*model.RouteSummary, error)
	CreateRoute(input *model.Route) (*model.Route, error)
	UpdateRoute(code string, patch *model.RoutePatch) (int64, error)
	DeleteRoute(code string) (int64, error)
}

type routeService struct {
	routeRepo repository.RouteRepository
	busRepo   repository.BusRepository
}

func NewRouteService(routeRepo repository.RouteRepository, busRepo repository.BusRepository) RouteService {
	return &routeService{
		routeRepo: routeRepo,
		busRepo:   busRepo,
	}
}

func (s *routeService) ListRoutes() ([]*model.RouteSummary, error) {
	routes, err := s.routeRepo.FindAll()
	if err != nil {
		return nil, err
	}

	summaries := make([]*model.RouteSummary, 0, len(routes))
	for _, route := range routes {
		busCount, err := s.busRepo.CountByRouteName(route.Name)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, &model.RouteSummary{
			Route:            *route,
			AssignedBusCount: busCount,
			StopCount:        len(route.Stops),
			DistanceKm:       geo.RouteDistanceKm(route.Stops),
		})
	}
	return summaries, nil
}

func (s *routeService) CreateRoute(input *model.Route) (*model.Route, error) {
	if input.Code == "" || input.Name == "" {
		return nil, fmt.Errorf("%w: route code and name are required", model.ErrInvalidInput)
	}

	existing, err := s.routeRepo.FindByCode(input.Code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: route already exists", model.ErrConflict)
	}

	route := model.NewRoute(input.Code, input.Name)
	if len(input.Stops) > 0 {
		route.Stops = input.Stops
	}
	if input.Fare > 0 {
		route.Fare = input.Fare
	}
	if input.Frequency > 0 {
		route.Frequency = input.Frequency
	}
	if input.OperatingHours != "" {
		route.OperatingHours = input.OperatingHours
	}

	if err := s.routeRepo.Create(route); err != nil {
		return nil, err
	}
	return route, nil
}

func (s *routeService) UpdateRoute(code string, patch *model.RoutePatch) (int64, error) {
	if code == "" {
		return 0, fmt.Errorf("%w: route code is required", model.ErrInvalidInput)
	}
	return s.routeRepo.Update(code, patch)
}

// DeleteRoute refuses while buses still reference the route. The
// reference is soft (by name), so the check matches the code inside
// bus route names, case-insensitively.
func (s *routeService) DeleteRoute(code string) (int64, error) {
	if code == "" {
		return 0, fmt.Errorf("%w: route code is required", model.ErrInvalidInput)
	}

	assigned, err := s.busRepo.CountByRouteCode(code)
	if err != nil {
		return 0, err
	}
	if assigned > 0 {
		return 0, fmt.Errorf("%w: cannot delete route, %d bus(es) are assigned to this route", model.ErrConflict, assigned)
	}

	deleted, err := s.routeRepo.Delete(code)
	if err != nil {
		return 0, err
	}
	if deleted == 0 {
		return 0, fmt.Errorf("%w: route not found", model.ErrNotFound)
	}
	return deleted, nil
}
