package osm2ride

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrMalformedLeg is returned for ride legs which can't be turned into Ride
	ErrMalformedLeg = errors.New("malformed leg")
	// ErrNetworkQuery is returned when network source can't provide snapshot for Ride
	ErrNetworkQuery = errors.New("network query failed")
	// ErrUnresolvedStop is returned when stop name matches no node in snapshot
	ErrUnresolvedStop = errors.New("unresolved stop")
	// ErrNoMatchingRelation is returned when no relation visits origin before destination
	ErrNoMatchingRelation = errors.New("no matching relation")
	// ErrInvertedTrim is returned when destination lies before origin along the assembled path
	ErrInvertedTrim = errors.New("inverted trim")
	// ErrEmptyPath is returned when there is nothing to trim
	ErrEmptyPath = errors.New("empty path")
)

// MalformedLegError describes why ride leg has been dropped by extractor
type MalformedLegError struct {
	Index  int
	Reason string
}

func (e *MalformedLegError) Error() string {
	return fmt.Sprintf("leg %d: %s: %s", e.Index, ErrMalformedLeg, e.Reason)
}

func (e *MalformedLegError) Unwrap() error {
	return ErrMalformedLeg
}

// NetworkQueryError wraps underlying cause of failed network query
type NetworkQueryError struct {
	VehicleID  string
	StatusCode int
	Cause      error
}

func (e *NetworkQueryError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s for vehicle '%s' (HTTP %d): %v", ErrNetworkQuery, e.VehicleID, e.StatusCode, e.Cause)
	}
	return fmt.Sprintf("%s for vehicle '%s': %v", ErrNetworkQuery, e.VehicleID, e.Cause)
}

// Unwrap allows errors.Is(err, ErrNetworkQuery) and inspection of cause via errors.As
func (e *NetworkQueryError) Unwrap() []error {
	return []error{ErrNetworkQuery, e.Cause}
}

// UnresolvedStopError tells which of stops have no matching node
type UnresolvedStopError struct {
	OriginName         string
	DestinationName    string
	MissingOrigin      bool
	MissingDestination bool
}

func (e *UnresolvedStopError) Error() string {
	switch {
	case e.MissingOrigin && e.MissingDestination:
		return fmt.Sprintf("%s: neither '%s' nor '%s' found", ErrUnresolvedStop, e.OriginName, e.DestinationName)
	case e.MissingOrigin:
		return fmt.Sprintf("%s: origin '%s' not found", ErrUnresolvedStop, e.OriginName)
	default:
		return fmt.Sprintf("%s: destination '%s' not found", ErrUnresolvedStop, e.DestinationName)
	}
}

func (e *UnresolvedStopError) Unwrap() error {
	return ErrUnresolvedStop
}

// TrimError reports indices which have been found by trimmer when they are out of order
type TrimError struct {
	StartIndex int
	EndIndex   int
}

func (e *TrimError) Error() string {
	return fmt.Sprintf("%s: start index %d is after end index %d", ErrInvertedTrim, e.StartIndex, e.EndIndex)
}

func (e *TrimError) Unwrap() error {
	return ErrInvertedTrim
}
