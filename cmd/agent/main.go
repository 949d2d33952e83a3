package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"

	"bustracker/internal/agent"
	"bustracker/internal/agent/delivery"
	"bustracker/internal/agent/queue"
	"bustracker/internal/config"
	"bustracker/internal/core/model"
	"bustracker/internal/metrics"
)

func main() {
	cfg, err := config.LoadAgent()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting delivery agent for %s", cfg.ServerURL)

	q, err := queue.Open(cfg.QueuePath)
	if err != nil {
		log.Fatalf("Failed to open durable queue: %v", err)
	}
	defer q.Close()

	if n, err := q.Len(); err == nil && n > 0 {
		log.Printf("%d buffered fixes pending from a previous run", n)
	}

	collector := metrics.NewCollector(cfg.SyncInterval, cfg.Workers)

	sender := timedSender{delivery.NewHTTPSender(cfg.ServerURL, cfg.SendTimeout), collector}
	flushAgent := delivery.NewAgent(q, sender,
		delivery.WithWorkers(cfg.Workers),
		delivery.WithMaxAttempts(cfg.MaxAttempts),
	)
	scheduler := delivery.NewScheduler(flushAgent, cfg.SyncInterval)
	scheduler.OnResult = func(reason delivery.Reason, res delivery.Result, err error, elapsed time.Duration) {
		collector.Flushes.WithLabelValues(string(reason)).Inc()
		collector.FlushDuration.Observe(elapsed.Seconds())
		if err != nil {
			collector.FlushFailures.Inc()
		}
		collector.FixesDelivered.Add(float64(res.Succeeded))
		collector.FixesDropped.Add(float64(res.Dropped))
		if n, lerr := q.Len(); lerr == nil {
			collector.QueueDepth.Set(float64(n))
		}
	}

	producer := agent.NewProducer(q, sender, scheduler)
	producer.OnEnqueue = func() {
		collector.FixesEnqueued.Inc()
		if n, err := q.Len(); err == nil {
			collector.QueueDepth.Set(float64(n))
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go scheduler.Run(ctx)

	// Drain anything left over from the last run.
	scheduler.Trigger(delivery.ReasonOnline)

	// Optional push wake-ups from the server
	if cfg.NATSURL != "" {
		nc, err := nats.Connect(cfg.NATSURL,
			nats.MaxReconnects(-1),
			nats.ReconnectWait(2*time.Second),
			nats.ReconnectHandler(func(*nats.Conn) {
				log.Println("NATS reconnected")
				scheduler.Trigger(delivery.ReasonOnline)
			}),
			nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
				log.Printf("NATS disconnected: %v", err)
			}),
		)
		if err != nil {
			log.Printf("NATS connect failed, continuing without push wake-ups: %v", err)
		} else {
			defer nc.Drain()
			if _, err := delivery.SubscribeSyncRequests(nc, scheduler); err != nil {
				log.Printf("NATS subscribe failed: %v", err)
			} else {
				log.Printf("Subscribed to sync requests on %s", delivery.SyncSubject)
			}
		}
	}

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		metricsServer = collector.Serve(cfg.MetricsAddr)
	}

	captureServer := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      agent.NewHandler(producer, q),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	go func() {
		log.Printf("Capture endpoint listening on %s", captureServer.Addr)
		if err := captureServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Capture endpoint failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down agent...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := captureServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Capture endpoint forced to shutdown: %v", err)
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("Metrics server forced to shutdown: %v", err)
		}
	}

	log.Println("Agent stopped")
}

// timedSender wraps the HTTP sender to record delivery latency.
type timedSender struct {
	inner     delivery.Sender
	collector *metrics.Collector
}

func (s timedSender) Send(ctx context.Context, fix model.LocationFix) error {
	start := time.Now()
	err := s.inner.Send(ctx, fix)
	s.collector.SendDuration.Observe(time.Since(start).Seconds())
	return err
}
