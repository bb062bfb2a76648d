package osm2ride

import (
	"errors"
	"testing"

	"github.com/paulmach/osm"
)

func stopNode(id int64, name string, lat, lon float64) *osm.Node {
	return &osm.Node{ID: osm.NodeID(id), Lat: lat, Lon: lon, Tags: osm.Tags{{Key: "highway", Value: "bus_stop"}, {Key: "name", Value: name}}}
}

var stopsRide = Ride{
	VehicleID:   "60",
	Origin:      RideStop{Name: "Main St", Coordinate: GeoPoint{Lat: 49.90, Lon: -97.14}},
	Destination: RideStop{Name: "Portage Ave", Coordinate: GeoPoint{Lat: 49.89, Lon: -97.15}},
}

func TestResolveStops(t *testing.T) {
	snap := NewSnapshot()
	snap.AddNode(stopNode(1, "Main St", 49.900, -97.140))
	snap.AddNode(stopNode(2, "Portage Ave", 49.890, -97.150))
	snap.AddNode(&osm.Node{ID: 3, Lat: 49.0, Lon: -97.0})
	res, err := ResolveStops(snap, stopsRide)
	if err != nil {
		t.Error(err)
		return
	}
	if res.Origin.ID != 1 || res.Destination.ID != 2 {
		t.Errorf("Stops must be resolved to nodes 1 and 2, but got %d and %d", res.Origin.ID, res.Destination.ID)
	}
	if res.Ambiguous() {
		t.Errorf("Resolution must not be ambiguous")
	}
}

// Paired stops on opposite sides of the road share the name: the last one in snapshot order is taken.
// This is not a nearest-to-route choice, the number of candidates is reported instead.
func TestResolveStopsDuplicateNameLastWins(t *testing.T) {
	snap := NewSnapshot()
	snap.AddNode(stopNode(1, "Main St", 49.9001, -97.1401))
	snap.AddNode(stopNode(2, "Portage Ave", 49.890, -97.150))
	snap.AddNode(stopNode(11, "Main St", 49.8999, -97.1399))
	res, err := ResolveStops(snap, stopsRide)
	if err != nil {
		t.Error(err)
		return
	}
	if res.Origin.ID != 11 {
		t.Errorf("Last node named 'Main St' (11) must be taken, but got %d", res.Origin.ID)
	}
	if res.OriginCandidates != 2 || res.DestinationCandidates != 1 || !res.Ambiguous() {
		t.Errorf("Candidates must be 2 and 1, but got %d and %d", res.OriginCandidates, res.DestinationCandidates)
	}
}

func TestResolveStopsUnresolved(t *testing.T) {
	snap := NewSnapshot()
	snap.AddNode(stopNode(1, "Main St", 49.900, -97.140))
	_, err := ResolveStops(snap, stopsRide)
	if !errors.Is(err, ErrUnresolvedStop) {
		t.Errorf("Error must wrap ErrUnresolvedStop, but got %v", err)
		return
	}
	var stopErr *UnresolvedStopError
	if !errors.As(err, &stopErr) || stopErr.MissingOrigin || !stopErr.MissingDestination {
		t.Errorf("Only destination must be missing, but got %v", err)
	}

	_, err = ResolveStops(NewSnapshot(), stopsRide)
	if !errors.As(err, &stopErr) || !stopErr.MissingOrigin || !stopErr.MissingDestination {
		t.Errorf("Both stops must be missing, but got %v", err)
	}
}
