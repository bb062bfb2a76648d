package osm2ride

import (
	"github.com/pkg/errors"
)

// TrimPath cuts the path to inclusive sub-sequence between points nearest to origin and destination.
// Ties keep the first minimum found.
//
// Destination's nearest point preceding origin's one is not fixed silently: *TrimError is returned instead
func TrimPath(path []GeoPoint, origin, destination GeoPoint) ([]GeoPoint, error) {
	if len(path) == 0 {
		return nil, errors.Wrap(ErrEmptyPath, "nothing to trim")
	}
	startIndex := nearestIndex(path, origin)
	endIndex := nearestIndex(path, destination)
	if startIndex > endIndex {
		return nil, &TrimError{StartIndex: startIndex, EndIndex: endIndex}
	}
	return copyLine(path[startIndex : endIndex+1]), nil
}
