package osm2ride

import (
	"github.com/paulmach/osm"
)

// StopResolution is result of matching Ride's stop names against snapshot nodes
type StopResolution struct {
	Origin      *osm.Node
	Destination *osm.Node
	// Number of nodes which share the stop name. More than one means the choice has been ambiguous
	OriginCandidates      int
	DestinationCandidates int
}

// Ambiguous reports whether at least one of stops has been picked among several nodes with the same name
func (res StopResolution) Ambiguous() bool {
	return res.OriginCandidates > 1 || res.DestinationCandidates > 1
}

// ResolveStops matches nodes by "name" tag. When several nodes share the name the last one in snapshot order wins.
// Returns *UnresolvedStopError when either stop has no matching node.
//
// Origin and destination with the same name resolve to the same node.
func ResolveStops(snap *Snapshot, ride Ride) (StopResolution, error) {
	res := StopResolution{}
	for _, node := range snap.Nodes {
		name := node.Tags.Find("name")
		if name == "" {
			continue
		}
		if name == ride.Origin.Name {
			res.Origin = node
			res.OriginCandidates++
		}
		if name == ride.Destination.Name {
			res.Destination = node
			res.DestinationCandidates++
		}
	}
	if res.Origin == nil || res.Destination == nil {
		return res, &UnresolvedStopError{
			OriginName:         ride.Origin.Name,
			DestinationName:    ride.Destination.Name,
			MissingOrigin:      res.Origin == nil,
			MissingDestination: res.Destination == nil,
		}
	}
	return res, nil
}

// nodePoint returns coordinates of the node
func nodePoint(node *osm.Node) GeoPoint {
	return GeoPoint{Lat: node.Lat, Lon: node.Lon}
}
