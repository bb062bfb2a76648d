package metrics

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/LdDl/osm2ride"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollectorObservePath(t *testing.T) {
	c := NewCollector(2, 25*time.Second)
	c.ObservePath(&osm2ride.ReconstructedPath{
		Points:  []osm2ride.GeoPoint{{Lat: 49.90, Lon: -97.14}, {Lat: 49.89, Lon: -97.15}},
		Outcome: osm2ride.OUTCOME_QUERY_FAILED,
	}, 10*time.Millisecond)
	c.ObservePath(&osm2ride.ReconstructedPath{
		Points:           []osm2ride.GeoPoint{{Lat: 49.90, Lon: -97.14}, {Lat: 49.89, Lon: -97.15}},
		Outcome:          osm2ride.OUTCOME_FULL,
		OriginCandidates: 2,
	}, 10*time.Millisecond)
	c.ObserveDroppedLeg(errors.New("leg 0: malformed"))

	assert.Equal(t, 1.0, testutil.ToFloat64(c.Paths.WithLabelValues("query_failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Paths.WithLabelValues("full")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.AmbiguousStop))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.DroppedLegs))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.Concurrency))
}

func TestCollectorHandler(t *testing.T) {
	c := NewCollector(1, 25*time.Second)
	c.ReconstructionDone(false)
	c.ReconstructionDone(true)
	c.NATSSetConnected(true)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "osm2ride_reconstructions_total 1"))
	assert.True(t, strings.Contains(body, "osm2ride_reconstructions_cancelled_total 1"))
	assert.True(t, strings.Contains(body, "osm2ride_nats_connected 1"))
}

func TestCollectorPublisherMetrics(t *testing.T) {
	c := NewCollector(1, 25*time.Second)
	c.NATSPublishedInc()
	c.NATSPublishedInc()
	c.NATSPublishErrInc()
	c.PublishObserve(15 * time.Millisecond)
	c.NATSSetConnected(false)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.NATSPublished))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.NATSPublishErrs))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.NATSConnected))
	assert.Equal(t, 1, testutil.CollectAndCount(c.PublishDuration))
}
