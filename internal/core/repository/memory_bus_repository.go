package repository

import (
	"sort"
	"strings"
	"sync"
	"time"

	"bustracker/internal/core/model"
)

type inMemoryBusRepository struct {
	buses map[string]*model.Bus // keyed by busNumber
	mutex sync.RWMutex
}

func NewInMemoryBusRepository() BusRepository {
	return &inMemoryBusRepository{
		buses: make(map[string]*model.Bus),
	}
}

func (r *inMemoryBusRepository) Create(bus *model.Bus) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	copied := *bus
	r.buses[bus.BusNumber] = &copied
	return nil
}

func (r *inMemoryBusRepository) Upsert(bus *model.Bus) error {
	return r.Create(bus)
}

func (r *inMemoryBusRepository) Update(busNumber string, patch *model.BusPatch) (int64, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	bus, ok := r.buses[busNumber]
	if !ok {
		return 0, model.ErrNotFound
	}
	if patch.RouteNumber != nil {
		bus.RouteNumber = *patch.RouteNumber
	}
	if patch.RouteName != nil {
		bus.RouteName = *patch.RouteName
	}
	if patch.Depot != nil {
		bus.Depot = *patch.Depot
	}
	if patch.DriverName != nil {
		bus.DriverName = *patch.DriverName
	}
	if patch.DriverID != nil {
		bus.DriverID = *patch.DriverID
	}
	if patch.Capacity != nil {
		bus.Capacity = *patch.Capacity
	}
	if patch.Type != nil {
		bus.Type = *patch.Type
	}
	if patch.Status != nil {
		bus.Status = *patch.Status
	}
	bus.UpdatedAt = time.Now()
	return 1, nil
}

func (r *inMemoryBusRepository) Delete(busNumber string) (int64, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if _, ok := r.buses[busNumber]; !ok {
		return 0, nil
	}
	delete(r.buses, busNumber)
	return 1, nil
}

func (r *inMemoryBusRepository) FindByBusNumber(busNumber string) (*model.Bus, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	if bus, ok := r.buses[busNumber]; ok {
		copied := *bus
		return &copied, nil
	}
	return nil, nil
}

func (r *inMemoryBusRepository) FindAll() ([]*model.Bus, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	buses := make([]*model.Bus, 0, len(r.buses))
	for _, bus := range r.buses {
		copied := *bus
		buses = append(buses, &copied)
	}
	sort.Slice(buses, func(i, j int) bool {
		return buses[i].BusNumber < buses[j].BusNumber
	})
	return buses, nil
}

func (r *inMemoryBusRepository) CountAll() (int64, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return int64(len(r.buses)), nil
}

func (r *inMemoryBusRepository) CountByRouteName(routeName string) (int64, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	var n int64
	for _, bus := range r.buses {
		if bus.RouteName == routeName {
			n++
		}
	}
	return n, nil
}

func (r *inMemoryBusRepository) CountByRouteCode(code string) (int64, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	var n int64
	for _, bus := range r.buses {
		if strings.Contains(strings.ToLower(bus.RouteName), strings.ToLower(code)) {
			n++
		}
	}
	return n, nil
}

func (r *inMemoryBusRepository) CountByRoute() ([]model.RouteBusCount, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	byRoute := make(map[string]int64)
	for _, bus := range r.buses {
		route := bus.RouteName
		if route == "" {
			route = "Unassigned"
		}
		byRoute[route]++
	}
	counts := make([]model.RouteBusCount, 0, len(byRoute))
	for route, n := range byRoute {
		counts = append(counts, model.RouteBusCount{Route: route, Count: n})
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].Count > counts[j].Count })
	return counts, nil
}

func (r *inMemoryBusRepository) CountByDepot() ([]model.DepotCount, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	byDepot := make(map[string]int64)
	for _, bus := range r.buses {
		depot := bus.Depot
		if depot == "" {
			depot = "Unknown"
		}
		byDepot[depot]++
	}
	counts := make([]model.DepotCount, 0, len(byDepot))
	for depot, n := range byDepot {
		counts = append(counts, model.DepotCount{Depot: depot, Count: n})
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].Count > counts[j].Count })
	return counts, nil
}
