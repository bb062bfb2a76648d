package osm2ride

import (
	"context"
	"testing"
)

func TestFileSource(t *testing.T) {
	verbose := true
	source, err := NewFileSource(context.Background(), "./testdata/sample_60.osm", DefaultQueryConfiguration(), verbose)
	if err != nil {
		t.Error(err)
		return
	}
	if len(source.relations) != 2 {
		t.Errorf("Number of bus relations must be 2, but got %d", len(source.relations))
	}
	if len(source.ways) != 3 {
		t.Errorf("Number of route ways must be 3, but got %d", len(source.ways))
	}
	if len(source.stops) != 3 {
		t.Errorf("Number of stops must be 3, but got %d", len(source.stops))
	}

	snap, err := source.Fetch(context.Background(), ride60)
	if err != nil {
		t.Error(err)
		return
	}
	if len(snap.Nodes) != 2 {
		t.Errorf("Number of stop nodes must be 2, but got %d", len(snap.Nodes))
	}
	if len(snap.Relations) != 1 || snap.Relations[0].ID != 100 {
		t.Errorf("Only relation 100 must be fetched, but got %d relation(s)", len(snap.Relations))
		return
	}

	path := synthesize(snap, ride60)
	if path.Outcome != OUTCOME_FULL {
		t.Errorf("Outcome must be 'full', but got '%s': %v", path.Outcome, path.Err)
		return
	}
	correct := []GeoPoint{{Lat: 49.900, Lon: -97.140}, {Lat: 49.895, Lon: -97.145}, {Lat: 49.890, Lon: -97.150}}
	if len(path.Points) != len(correct) {
		t.Errorf("Path must be %v, but got %v", correct, path.Points)
		return
	}
	for i := range correct {
		if path.Points[i] != correct[i] {
			t.Errorf("Point #%d must be %v, but got %v", i, correct[i], path.Points[i])
		}
	}

	// Opposite direction is served by relation 101 only
	back := Ride{VehicleID: "11", Origin: ride60.Destination, Destination: ride60.Origin}
	snap, err = source.Fetch(context.Background(), back)
	if err != nil {
		t.Error(err)
		return
	}
	if path := synthesize(snap, back); path.Outcome != OUTCOME_FULL || path.RelationID != 101 {
		t.Errorf("Ride of vehicle '11' must follow relation 101, but got %s", path)
	}
}

func TestFileSourceUnknownExtension(t *testing.T) {
	if _, err := NewFileSource(context.Background(), "./testdata/itinerary_60.json", DefaultQueryConfiguration(), false); err == nil {
		t.Errorf("File with unknown extension must be rejected")
	}
}
