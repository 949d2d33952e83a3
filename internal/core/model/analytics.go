package model

import "time"

// Analytics report shapes for the admin dashboard. The layout mirrors
// what the dashboard consumes: one nested document per panel.

type SpeedStats struct {
	AverageSpeed float64 `json:"averageSpeed"`
	MaxSpeed     float64 `json:"maxSpeed"`
}

type HourlyCount struct {
	Hour  string `json:"hour"`
	Count int64  `json:"count"`
}

type BusActivity struct {
	BusNumber string  `json:"busNumber"`
	Updates   int64   `json:"updates"`
	AvgSpeed  float64 `json:"avgSpeed"`
}

type RouteBusCount struct {
	Route string `json:"route"`
	Count int64  `json:"count"`
}

type DepotCount struct {
	Depot string `json:"depot"`
	Count int64  `json:"count"`
}

type RouteCoverage struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Stops int    `json:"stops"`
}

type AnalyticsSummary struct {
	ActiveBuses      int64 `json:"activeBuses"`
	TotalBuses       int64 `json:"totalBuses"`
	TotalRoutes      int64 `json:"totalRoutes"`
	ActivePercentage int64 `json:"activePercentage"`
}

type AnalyticsReport struct {
	Summary     AnalyticsSummary `json:"summary"`
	Performance SpeedStats       `json:"performance"`
	Distribution struct {
		BusesByRoute []RouteBusCount `json:"busesByRoute"`
		ByDepot      []DepotCount    `json:"byDepot"`
	} `json:"distribution"`
	Activity struct {
		UpdatesPerHour  []HourlyCount `json:"updatesPerHour"`
		MostActiveBuses []BusActivity `json:"mostActiveBuses"`
	} `json:"activity"`
	Routes struct {
		Coverage []RouteCoverage `json:"coverage"`
	} `json:"routes"`
	Timestamp time.Time `json:"timestamp"`
}
