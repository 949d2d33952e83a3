package repository

import (
	"sort"
	"sync"
	"time"

	"bustracker/internal/core/model"
)

// inMemoryLocationRepository mirrors the Mongo contract for tests and
// TEST_MODE runs: one current fix per busId, overwritten on upsert.
type inMemoryLocationRepository struct {
	fixes map[string]*model.LocationFix
	mutex sync.RWMutex
}

func NewInMemoryLocationRepository() LocationRepository {
	return &inMemoryLocationRepository{
		fixes: make(map[string]*model.LocationFix),
	}
}

func (r *inMemoryLocationRepository) Upsert(fix *model.LocationFix) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	copied := *fix
	r.fixes[fix.BusID] = &copied
	return nil
}

func (r *inMemoryLocationRepository) FindActiveSince(since time.Time) ([]*model.LocationFix, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var result []*model.LocationFix
	for _, fix := range r.fixes {
		if !fix.Timestamp.Before(since) {
			copied := *fix
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Timestamp.After(result[j].Timestamp)
	})
	return result, nil
}

func (r *inMemoryLocationRepository) FindLatestByBusNumber(busNumber string) (*model.LocationFix, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var latest *model.LocationFix
	for _, fix := range r.fixes {
		if fix.BusNumber != busNumber {
			continue
		}
		if latest == nil || fix.Timestamp.After(latest.Timestamp) {
			latest = fix
		}
	}
	if latest == nil {
		return nil, nil
	}
	copied := *latest
	return &copied, nil
}

func (r *inMemoryLocationRepository) DeleteByBusID(busID string) (int64, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if _, ok := r.fixes[busID]; !ok {
		return 0, nil
	}
	delete(r.fixes, busID)
	return 1, nil
}

func (r *inMemoryLocationRepository) DeleteByBusNumber(busNumber string) (int64, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	var deleted int64
	for id, fix := range r.fixes {
		if fix.BusNumber == busNumber {
			delete(r.fixes, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *inMemoryLocationRepository) CountActiveBuses(since time.Time) (int64, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	seen := make(map[string]bool)
	for _, fix := range r.fixes {
		if !fix.Timestamp.Before(since) {
			seen[fix.BusNumber] = true
		}
	}
	return int64(len(seen)), nil
}

func (r *inMemoryLocationRepository) SpeedStats(since time.Time) (model.SpeedStats, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	var sum, max float64
	var n int64
	for _, fix := range r.fixes {
		if fix.Timestamp.Before(since) || fix.Speed <= 0 {
			continue
		}
		sum += fix.Speed
		if fix.Speed > max {
			max = fix.Speed
		}
		n++
	}
	if n == 0 {
		return model.SpeedStats{}, nil
	}
	return model.SpeedStats{
		AverageSpeed: round1(sum / float64(n)),
		MaxSpeed:     round1(max),
	}, nil
}

func (r *inMemoryLocationRepository) UpdatesPerHour(since time.Time) ([]model.HourlyCount, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	buckets := make(map[string]int64)
	for _, fix := range r.fixes {
		if fix.Timestamp.Before(since) {
			continue
		}
		buckets[fix.Timestamp.UTC().Format("2006-01-02-15")]++
	}
	hours := make([]string, 0, len(buckets))
	for h := range buckets {
		hours = append(hours, h)
	}
	sort.Strings(hours)
	counts := make([]model.HourlyCount, 0, len(hours))
	for _, h := range hours {
		counts = append(counts, model.HourlyCount{Hour: h, Count: buckets[h]})
	}
	return counts, nil
}

func (r *inMemoryLocationRepository) MostActiveBuses(since time.Time, limit int) ([]model.BusActivity, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	type agg struct {
		updates int64
		sum     float64
	}
	byBus := make(map[string]*agg)
	for _, fix := range r.fixes {
		if fix.Timestamp.Before(since) {
			continue
		}
		a := byBus[fix.BusNumber]
		if a == nil {
			a = &agg{}
			byBus[fix.BusNumber] = a
		}
		a.updates++
		a.sum += fix.Speed
	}

	activity := make([]model.BusActivity, 0, len(byBus))
	for bus, a := range byBus {
		activity = append(activity, model.BusActivity{
			BusNumber: bus,
			Updates:   a.updates,
			AvgSpeed:  round1(a.sum / float64(a.updates)),
		})
	}
	sort.Slice(activity, func(i, j int) bool {
		return activity[i].Updates > activity[j].Updates
	})
	if len(activity) > limit {
		activity = activity[:limit]
	}
	return activity, nil
}
