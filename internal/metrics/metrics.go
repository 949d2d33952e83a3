package metrics

import (
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	reg *prometheus.Registry

	QueueDepth prometheus.Gauge

	FixesEnqueued  prometheus.Counter
	FixesDelivered prometheus.Counter
	FixesDropped   prometheus.Counter

	Flushes       *prometheus.CounterVec // reason label: sent|online|periodic|manual|push
	FlushFailures prometheus.Counter

	FlushDuration   prometheus.Histogram
	SendDuration    prometheus.Histogram
	FlushIntervalS  prometheus.Gauge
	DeliveryWorkers prometheus.Gauge
}

func NewCollector(flushInterval time.Duration, workers int) *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tracker_agent_queue_depth",
			Help: "Number of fixes waiting in the durable queue.",
		}),
		FixesEnqueued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracker_agent_fixes_enqueued_total",
			Help: "Total fixes buffered into the durable queue.",
		}),
		FixesDelivered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracker_agent_fixes_delivered_total",
			Help: "Total fixes acknowledged by the server.",
		}),
		FixesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracker_agent_fixes_dropped_total",
			Help: "Total fixes dropped after repeated server rejection.",
		}),
		Flushes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tracker_agent_flushes_total",
			Help: "Total flushes, labeled by trigger reason.",
		}, []string{"reason"}),
		FlushFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracker_agent_flush_failures_total",
			Help: "Total flushes that failed with a queue error.",
		}),
		FlushDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tracker_agent_flush_duration_seconds",
			Help:    "Duration of queue drains.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
		}),
		SendDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tracker_agent_send_duration_seconds",
			Help:    "Duration of individual fix deliveries.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 15),
		}),
		FlushIntervalS: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tracker_agent_flush_interval_seconds",
			Help: "Configured periodic flush interval in seconds.",
		}),
		DeliveryWorkers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tracker_agent_delivery_workers",
			Help: "Configured delivery worker pool size.",
		}),
	}

	// Register
	reg.MustRegister(
		c.QueueDepth,
		c.FixesEnqueued, c.FixesDelivered, c.FixesDropped,
		c.Flushes, c.FlushFailures,
		c.FlushDuration, c.SendDuration,
		c.FlushIntervalS, c.DeliveryWorkers,
	)

	c.FlushIntervalS.Set(flushInterval.Seconds())
	c.DeliveryWorkers.Set(float64(workers))

	return c
}

func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }

// Serve starts an HTTP server exposing /metrics on the given address.
func (c *Collector) Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("metrics server error: %v", err)
		}
	}()
	log.Printf("metrics listening on %s", addr)
	return srv
}
