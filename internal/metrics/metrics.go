package metrics

import (
	"log"
	"net/http"
	"time"

	"github.com/LdDl/osm2ride"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	reg *prometheus.Registry

	Paths         *prometheus.CounterVec // outcome label
	DroppedLegs   prometheus.Counter
	AmbiguousStop prometheus.Counter

	Reconstructions prometheus.Counter
	Cancelled       prometheus.Counter

	RideDuration prometheus.Histogram
	PathLength   prometheus.Histogram

	NATSPublished   prometheus.Counter
	NATSPublishErrs prometheus.Counter
	NATSConnected   prometheus.Gauge
	PublishDuration prometheus.Histogram

	Concurrency  prometheus.Gauge
	QueryTimeout prometheus.Gauge // seconds
}

func NewCollector(concurrency int, queryTimeout time.Duration) *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		Paths: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "osm2ride_paths_total",
			Help: "Reconstructed ride paths by outcome.",
		}, []string{"outcome"}),
		DroppedLegs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "osm2ride_dropped_legs_total",
			Help: "Malformed ride legs dropped by extractor.",
		}),
		AmbiguousStop: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "osm2ride_ambiguous_stops_total",
			Help: "Rides where several nodes shared stop name.",
		}),
		Reconstructions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "osm2ride_reconstructions_total",
			Help: "Completed itinerary reconstructions.",
		}),
		Cancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "osm2ride_reconstructions_cancelled_total",
			Help: "Itinerary reconstructions cancelled before completion.",
		}),
		RideDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "osm2ride_ride_duration_seconds",
			Help:    "Duration of single ride reconstruction (network query included).",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 14),
		}),
		PathLength: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "osm2ride_path_length_meters",
			Help:    "Spherical length of reconstructed paths.",
			Buckets: prometheus.ExponentialBuckets(100, 2, 12),
		}),
		NATSPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "osm2ride_nats_published_total",
			Help: "Total NATS messages published.",
		}),
		NATSPublishErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "osm2ride_nats_publish_errors_total",
			Help: "Total NATS publish errors.",
		}),
		NATSConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "osm2ride_nats_connected",
			Help: "1 if NATS connection is established, 0 otherwise.",
		}),
		PublishDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "osm2ride_publish_duration_seconds",
			Help:    "Duration to marshal and publish a NATS message.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 15),
		}),
		Concurrency: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "osm2ride_concurrency",
			Help: "Max number of rides reconstructed at once.",
		}),
		QueryTimeout: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "osm2ride_query_timeout_seconds",
			Help: "Network query timeout in seconds.",
		}),
	}

	reg.MustRegister(
		c.Paths, c.DroppedLegs, c.AmbiguousStop,
		c.Reconstructions, c.Cancelled,
		c.RideDuration, c.PathLength,
		c.NATSPublished, c.NATSPublishErrs, c.NATSConnected, c.PublishDuration,
		c.Concurrency, c.QueryTimeout,
	)

	c.Concurrency.Set(float64(concurrency))
	c.QueryTimeout.Set(queryTimeout.Seconds())

	return c
}

// ObservePath implements osm2ride.Observer
func (c *Collector) ObservePath(path *osm2ride.ReconstructedPath, elapsed time.Duration) {
	c.Paths.WithLabelValues(path.Outcome.String()).Inc()
	c.RideDuration.Observe(elapsed.Seconds())
	c.PathLength.Observe(path.LengthMeters())
	if path.OriginCandidates > 1 || path.DestinationCandidates > 1 {
		c.AmbiguousStop.Inc()
	}
}

// ObserveDroppedLeg implements osm2ride.Observer
func (c *Collector) ObserveDroppedLeg(err error) {
	c.DroppedLegs.Inc()
}

// ReconstructionDone counts finished reconstruction; cancelled ones are counted separately
func (c *Collector) ReconstructionDone(cancelled bool) {
	if cancelled {
		c.Cancelled.Inc()
		return
	}
	c.Reconstructions.Inc()
}

// NATSPublishedInc counts published path message
func (c *Collector) NATSPublishedInc() {
	c.NATSPublished.Inc()
}

// NATSPublishErrInc counts failed publish
func (c *Collector) NATSPublishErrInc() {
	c.NATSPublishErrs.Inc()
}

// PublishObserve records time spent on publishing paths of one reconstruction
func (c *Collector) PublishObserve(d time.Duration) {
	c.PublishDuration.Observe(d.Seconds())
}

func (c *Collector) NATSSetConnected(connected bool) {
	if connected {
		c.NATSConnected.Set(1)
		return
	}
	c.NATSConnected.Set(0)
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
