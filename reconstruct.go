package osm2ride

import (
	"fmt"

	"github.com/paulmach/osm"
	"github.com/pkg/errors"
)

// Outcome tells how path of the Ride has been obtained
type Outcome uint16

const (
	// Path follows route relation
	OUTCOME_FULL = Outcome(iota)
	// Network source failed: straight line between Ride's own coordinates
	OUTCOME_QUERY_FAILED
	// Stop name(s) not found: straight line between Ride's own coordinates
	OUTCOME_UNRESOLVED_STOP
	// No relation visits origin before destination: straight line between resolved nodes
	OUTCOME_NO_RELATION
	// Destination precedes origin along assembled path: straight line between resolved nodes
	OUTCOME_INVERTED_TRIM
	// Trimmed path collapsed to a single point or relation has no way geometry: straight line between resolved nodes
	OUTCOME_DEGENERATE
)

func (iotaIdx Outcome) String() string {
	if int(iotaIdx) >= len(outcomeNames) {
		return "unknown"
	}
	return outcomeNames[iotaIdx]
}

var outcomeNames = [...]string{"full", "query_failed", "unresolved_stop", "no_relation", "inverted_trim", "degenerate"}

// Degraded reports whether path is a straight line fallback
func (iotaIdx Outcome) Degraded() bool {
	return iotaIdx != OUTCOME_FULL
}

// ReconstructedPath is the map-ready geometry of single Ride. Points always has at least two elements
type ReconstructedPath struct {
	Ride        Ride
	Origin      GeoPoint
	Destination GeoPoint
	Points      []GeoPoint
	Outcome     Outcome
	// Zero unless path follows a relation
	RelationID osm.RelationID
	// Number of nodes sharing the stop names (zero when stops have not been resolved)
	OriginCandidates      int
	DestinationCandidates int
	// Cause of degradation. Nil for OUTCOME_FULL
	Err error
}

func (path *ReconstructedPath) String() string {
	return fmt.Sprintf("%s: %s, %d points", path.Ride, path.Outcome, len(path.Points))
}

// LengthMeters returns spherical length of the path
func (path *ReconstructedPath) LengthMeters() float64 {
	return SphericalLength(path.Points)
}

// straightPath returns two-point path between given coordinates
func straightPath(ride Ride, origin, destination GeoPoint, outcome Outcome, cause error) *ReconstructedPath {
	return &ReconstructedPath{
		Ride:        ride,
		Origin:      origin,
		Destination: destination,
		Points:      []GeoPoint{origin, destination},
		Outcome:     outcome,
		Err:         cause,
	}
}

// synthesize runs stop resolution, relation synthesis and trimming over fetched snapshot. Never fails: every
// failure is turned into straight line fallback
func synthesize(snap *Snapshot, ride Ride) *ReconstructedPath {
	stops, err := ResolveStops(snap, ride)
	if err != nil {
		return straightPath(ride, ride.Origin.Coordinate, ride.Destination.Coordinate, OUTCOME_UNRESOLVED_STOP, err)
	}
	origin := nodePoint(stops.Origin)
	destination := nodePoint(stops.Destination)
	withStops := func(path *ReconstructedPath) *ReconstructedPath {
		path.OriginCandidates = stops.OriginCandidates
		path.DestinationCandidates = stops.DestinationCandidates
		return path
	}

	assembled, relation, err := SynthesizePath(snap, stops.Origin.ID, stops.Destination.ID)
	if err != nil {
		return withStops(straightPath(ride, origin, destination, OUTCOME_NO_RELATION, err))
	}

	trimmed, err := TrimPath(assembled, origin, destination)
	if err != nil {
		outcome := OUTCOME_DEGENERATE
		var trimErr *TrimError
		if errors.As(err, &trimErr) {
			outcome = OUTCOME_INVERTED_TRIM
		}
		path := withStops(straightPath(ride, origin, destination, outcome, err))
		path.RelationID = relation.ID
		return path
	}
	if len(trimmed) < 2 {
		path := withStops(straightPath(ride, origin, destination, OUTCOME_DEGENERATE, errors.Errorf("trimmed path of relation %d has %d point(s)", relation.ID, len(trimmed))))
		path.RelationID = relation.ID
		return path
	}
	return withStops(&ReconstructedPath{
		Ride:        ride,
		Origin:      origin,
		Destination: destination,
		Points:      trimmed,
		Outcome:     OUTCOME_FULL,
		RelationID:  relation.ID,
	})
}
