package osm2ride

import (
	"fmt"
)

// RideStop is named boarding or alighting stop
type RideStop struct {
	Name       string
	Coordinate GeoPoint
}

// Ride is one continuous vehicle trip between two named stops
type Ride struct {
	VehicleID   string
	Origin      RideStop
	Destination RideStop
	// LegIndex is index of ride leg in source itinerary
	LegIndex int
	// Times spans boarding of the first merged leg to alighting of the last one
	Times LegTimes
}

func (ride Ride) String() string {
	return fmt.Sprintf("vehicle '%s': '%s' -> '%s'", ride.VehicleID, ride.Origin.Name, ride.Destination.Name)
}

// ExtractRides scans itinerary legs and builds one Ride per vehicle boarding.
//
// Origin stop is taken from "to" descriptor of preceding leg, destination stop from "from" descriptor of following leg.
// Two adjacent ride legs of the same vehicle are merged: the leg after the second one is used for destination and
// the second one is skipped. Back-to-back legs of different vehicles are an interchange at the same stop: the ride
// legs' own "to" / "from" descriptors serve as a fallback, so both rides get the interchange stop instead of overlapping.
// The fallback only applies next to another ride leg: a walk ending at an address never yields a stop.
//
// Malformed ride legs are skipped and reported in returned errors (each one wraps ErrMalformedLeg).
func ExtractRides(it Itinerary) ([]Ride, []error) {
	rides := []Ride{}
	skipped := []error{}
	legs := it.Legs
	skipNext := false
	for i := range legs {
		if skipNext {
			skipNext = false
			continue
		}
		leg := &legs[i]
		if leg.Type != LEG_RIDE {
			continue
		}
		destinationIdx := i + 1
		if destinationIdx < len(legs) && legs[destinationIdx].Type == LEG_RIDE && legs[destinationIdx].RouteKey == leg.RouteKey {
			destinationIdx++
			skipNext = true
		}
		ride, err := extractRide(legs, i, destinationIdx)
		if err != nil {
			skipped = append(skipped, err)
			continue
		}
		rides = append(rides, ride)
	}
	return rides, skipped
}

func extractRide(legs []Leg, i, destinationIdx int) (Ride, error) {
	leg := &legs[i]
	if leg.RouteKey == "" {
		return Ride{}, &MalformedLegError{Index: i, Reason: "missing vehicle identifier"}
	}
	if i == 0 {
		return Ride{}, &MalformedLegError{Index: i, Reason: "no preceding leg to take origin stop from"}
	}
	if destinationIdx >= len(legs) {
		return Ride{}, &MalformedLegError{Index: i, Reason: "no following leg to take destination stop from"}
	}
	originCandidates := []*Location{legs[i-1].To}
	if legs[i-1].Type == LEG_RIDE {
		originCandidates = append(originCandidates, leg.From)
	}
	origin, ok := firstStop(originCandidates...)
	if !ok {
		return Ride{}, &MalformedLegError{Index: i, Reason: "origin stop has no name or coordinates"}
	}
	destinationCandidates := []*Location{legs[destinationIdx].From}
	if legs[destinationIdx].Type == LEG_RIDE {
		destinationCandidates = append(destinationCandidates, legs[destinationIdx-1].To)
	}
	destination, ok := firstStop(destinationCandidates...)
	if !ok {
		return Ride{}, &MalformedLegError{Index: i, Reason: "destination stop has no name or coordinates"}
	}
	return Ride{
		VehicleID:   leg.RouteKey,
		Origin:      origin,
		Destination: destination,
		LegIndex:    i,
		Times:       LegTimes{Start: leg.Times.Start, End: legs[destinationIdx-1].Times.End},
	}, nil
}

// firstStop returns first candidate location which carries both stop name and resolved centre
func firstStop(candidates ...*Location) (RideStop, bool) {
	for _, loc := range candidates {
		if !loc.Resolved() || loc.StopName == "" {
			continue
		}
		return RideStop{Name: loc.StopName, Coordinate: loc.Centre}, true
	}
	return RideStop{}, false
}
