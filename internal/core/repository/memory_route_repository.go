package repository

import (
	"sort"
	"sync"
	"time"

	"bustracker/internal/core/model"
)

type inMemoryRouteRepository struct {
	routes map[string]*model.Route // keyed by code
	mutex  sync.RWMutex
}

func NewInMemoryRouteRepository() RouteRepository {
	return &inMemoryRouteRepository{
		routes: make(map[string]*model.Route),
	}
}

func (r *inMemoryRouteRepository) Create(route *model.Route) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	copied := *route
	r.routes[route.Code] = &copied
	return nil
}

func (r *inMemoryRouteRepository) Update(code string, patch *model.RoutePatch) (int64, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	route, ok := r.routes[code]
	if !ok {
		return 0, model.ErrNotFound
	}
	if patch.Name != nil {
		route.Name = *patch.Name
	}
	if patch.Stops != nil {
		route.Stops = *patch.Stops
	}
	if patch.Fare != nil {
		route.Fare = *patch.Fare
	}
	if patch.Frequency != nil {
		route.Frequency = *patch.Frequency
	}
	if patch.OperatingHours != nil {
		route.OperatingHours = *patch.OperatingHours
	}
	route.UpdatedAt = time.Now()
	return 1, nil
}

func (r *inMemoryRouteRepository) Delete(code string) (int64, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if _, ok := r.routes[code]; !ok {
		return 0, nil
	}
	delete(r.routes, code)
	return 1, nil
}

func (r *inMemoryRouteRepository) FindByCode(code string) (*model.Route, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	if route, ok := r.routes[code]; ok {
		copied := *route
		return &copied, nil
	}
	return nil, nil
}

func (r *inMemoryRouteRepository) FindAll() ([]*model.Route, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	routes := make([]*model.Route, 0, len(r.routes))
	for _, route := range r.routes {
		copied := *route
		routes = append(routes, &copied)
	}
	sort.Slice(routes, func(i, j int) bool {
		return routes[i].Code < routes[j].Code
	})
	return routes, nil
}

func (r *inMemoryRouteRepository) CountAll() (int64, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return int64(len(r.routes)), nil
}
