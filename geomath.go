package osm2ride

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// GeoPoint representation of point on Earth
type GeoPoint struct {
	Lat float64
	Lon float64
}

// String returns pretty printed value for for GeoPoint
func (gp GeoPoint) String() string {
	return fmt.Sprintf("Lon: %f | Lat: %f", gp.Lon, gp.Lat)
}

// Point returns orb representation of GeoPoint (X == Lon, Y == Lat)
func (gp GeoPoint) Point() orb.Point {
	return orb.Point{gp.Lon, gp.Lat}
}

// squareDistance returns squared Euclidean distance between two points treating degrees as planar units.
// Good enough for nearest-point comparisons inside one city.
func squareDistance(p, q GeoPoint) float64 {
	dlat := p.Lat - q.Lat
	dlon := p.Lon - q.Lon
	return dlat*dlat + dlon*dlon
}

// nearestIndex returns index of the point closest to the target. Ties keep the first minimum.
// Returns -1 for empty line
func nearestIndex(line []GeoPoint, target GeoPoint) int {
	idx := -1
	best := math.Inf(1)
	for i := range line {
		d := squareDistance(line[i], target)
		if d < best {
			best = d
			idx = i
		}
	}
	return idx
}

// reverseLine reverses order of points in given line. Returns new slice
func reverseLine(pts []GeoPoint) []GeoPoint {
	inputLen := len(pts)
	output := make([]GeoPoint, inputLen)
	for i, n := range pts {
		j := inputLen - i - 1
		output[j] = n
	}
	return output
}

// copyLine returns copy of given line
func copyLine(pts []GeoPoint) []GeoPoint {
	output := make([]GeoPoint, len(pts))
	copy(output, pts)
	return output
}

// lineString converts points to orb.LineString
func lineString(pts []GeoPoint) orb.LineString {
	line := make(orb.LineString, len(pts))
	for i := range pts {
		line[i] = pts[i].Point()
	}
	return line
}

// SphericalLength returns length for given line (meters)
func SphericalLength(pts []GeoPoint) float64 {
	if len(pts) < 2 {
		return 0
	}
	return geo.Length(lineString(pts))
}
