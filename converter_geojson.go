package osm2ride

import (
	"fmt"

	geojson "github.com/paulmach/go.geojson"
)

// PrepareGeoJSONLinestring returns GeoJSON representation of LineString
func PrepareGeoJSONLinestring(pts []GeoPoint) string {
	b, err := geojson.NewLineStringGeometry(coordinates(pts)).MarshalJSON()
	if err != nil {
		fmt.Printf("Warning. Can not convert geometry to geojson format: %s", err.Error())
		return ""
	}
	return string(b)
}

// PrepareGeoJSONPoint returns GeoJSON representation of Point
func PrepareGeoJSONPoint(pt GeoPoint) string {
	b, err := geojson.NewPointGeometry([]float64{pt.Lon, pt.Lat}).MarshalJSON()
	if err != nil {
		fmt.Printf("Warning. Can not convert geometry to geojson format: %s", err.Error())
		return ""
	}
	return string(b)
}

func coordinates(pts []GeoPoint) [][]float64 {
	pts2d := make([][]float64, len(pts))
	for i := range pts {
		pts2d[i] = []float64{pts[i].Lon, pts[i].Lat}
	}
	return pts2d
}

// PathsFeatureCollection returns collection with three features per path: the polyline ("kind": "path") and
// two markers ("kind": "origin" / "destination"). Each feature carries path's position and palette color
func PathsFeatureCollection(paths []*ReconstructedPath) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for i, path := range paths {
		if path == nil {
			continue
		}
		color := ColorForIndex(i)
		line := geojson.NewLineStringFeature(coordinates(path.Points))
		setPathProperties(line, path, i, color, "path")
		line.SetProperty("length_meters", path.LengthMeters())
		if path.RelationID != 0 {
			line.SetProperty("relation_id", int64(path.RelationID))
		}
		if path.Err != nil {
			line.SetProperty("error", path.Err.Error())
		}
		fc.AddFeature(line)

		origin := geojson.NewPointFeature([]float64{path.Origin.Lon, path.Origin.Lat})
		setPathProperties(origin, path, i, color, "origin")
		origin.SetProperty("name", path.Ride.Origin.Name)
		fc.AddFeature(origin)

		destination := geojson.NewPointFeature([]float64{path.Destination.Lon, path.Destination.Lat})
		setPathProperties(destination, path, i, color, "destination")
		destination.SetProperty("name", path.Ride.Destination.Name)
		fc.AddFeature(destination)
	}
	return fc
}

func setPathProperties(f *geojson.Feature, path *ReconstructedPath, idx int, color, kind string) {
	f.SetProperty("kind", kind)
	f.SetProperty("index", idx)
	f.SetProperty("color", color)
	f.SetProperty("vehicle", path.Ride.VehicleID)
	f.SetProperty("outcome", path.Outcome.String())
}
