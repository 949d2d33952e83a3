package service

import (
	"context"
	"math"
	"sort"
	"time"

	"bustracker/internal/cache"
	"bustracker/internal/core/model"
	"bustracker/internal/core/repository"
)

const analyticsKey = "analytics:report"
const analyticsTTL = 30 * time.Second

type AnalyticsService interface {
	Report() (*model.AnalyticsReport, error)
}

type analyticsService struct {
	locationRepo repository.LocationRepository
	busRepo      repository.BusRepository
	routeRepo    repository.RouteRepository
	cache        *cache.Cache
	activeWindow time.Duration
	now          func() time.Time
}

func NewAnalyticsService(locationRepo repository.LocationRepository, busRepo repository.BusRepository, routeRepo repository.RouteRepository, c *cache.Cache, activeWindow time.Duration) AnalyticsService {
	return &analyticsService{
		locationRepo: locationRepo,
		busRepo:      busRepo,
		routeRepo:    routeRepo,
		cache:        c,
		activeWindow: activeWindow,
		now:          time.Now,
	}
}

// Report assembles the dashboard aggregates. Every panel is a
// read-only query; the report is cached briefly since the dashboard
// polls it.
func (s *analyticsService) Report() (*model.AnalyticsReport, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var cached model.AnalyticsReport
	if err := s.cache.Get(ctx, analyticsKey, &cached); err == nil {
		return &cached, nil
	}

	now := s.now()

	activeBuses, err := s.locationRepo.CountActiveBuses(now.Add(-s.activeWindow))
	if err != nil {
		return nil, err
	}
	totalBuses, err := s.busRepo.CountAll()
	if err != nil {
		return nil, err
	}
	totalRoutes, err := s.routeRepo.CountAll()
	if err != nil {
		return nil, err
	}
	speed, err := s.locationRepo.SpeedStats(now.Add(-time.Hour))
	if err != nil {
		return nil, err
	}
	perHour, err := s.locationRepo.UpdatesPerHour(now.Add(-24 * time.Hour))
	if err != nil {
		return nil, err
	}
	mostActive, err := s.locationRepo.MostActiveBuses(now.Add(-7*24*time.Hour), 10)
	if err != nil {
		return nil, err
	}
	byRoute, err := s.busRepo.CountByRoute()
	if err != nil {
		return nil, err
	}
	byDepot, err := s.busRepo.CountByDepot()
	if err != nil {
		return nil, err
	}
	routes, err := s.routeRepo.FindAll()
	if err != nil {
		return nil, err
	}

	coverage := make([]model.RouteCoverage, 0, len(routes))
	for _, route := range routes {
		coverage = append(coverage, model.RouteCoverage{
			Code:  route.Code,
			Name:  route.Name,
			Stops: len(route.Stops),
		})
	}
	sort.Slice(coverage, func(i, j int) bool { return coverage[i].Stops > coverage[j].Stops })

	report := &model.AnalyticsReport{
		Summary: model.AnalyticsSummary{
			ActiveBuses: activeBuses,
			TotalBuses:  totalBuses,
			TotalRoutes: totalRoutes,
		},
		Performance: speed,
		Timestamp:   now,
	}
	if totalBuses > 0 {
		report.Summary.ActivePercentage = int64(math.Round(float64(activeBuses) / float64(totalBuses) * 100))
	}
	report.Distribution.BusesByRoute = byRoute
	report.Distribution.ByDepot = byDepot
	report.Activity.UpdatesPerHour = perHour
	report.Activity.MostActiveBuses = mostActive
	report.Routes.Coverage = coverage

	_ = s.cache.Set(ctx, analyticsKey, report, analyticsTTL)
	return report, nil
}
