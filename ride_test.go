package osm2ride

import (
	"errors"
	"os"
	"strings"
	"testing"
)

func stopLocation(name string, lat, lon float64) *Location {
	return &Location{Kind: LOCATION_STOP, StopName: name, Centre: GeoPoint{Lat: lat, Lon: lon}}
}

func TestExtractRidesNoRideLegs(t *testing.T) {
	it := Itinerary{Legs: []Leg{
		{Type: LEG_WALK, To: stopLocation("Main St", 49.90, -97.14)},
		{Type: LEG_TRANSFER, From: stopLocation("Main St", 49.90, -97.14)},
		{Type: LEG_WALK},
	}}
	rides, skipped := ExtractRides(it)
	if len(rides) != 0 {
		t.Errorf("Number of rides must be 0, but got %d", len(rides))
	}
	if len(skipped) != 0 {
		t.Errorf("Number of skipped legs must be 0, but got %d", len(skipped))
	}
	rides, _ = ExtractRides(Itinerary{})
	if len(rides) != 0 {
		t.Errorf("Number of rides for empty itinerary must be 0, but got %d", len(rides))
	}
}

func TestExtractRidesSingle(t *testing.T) {
	it := Itinerary{Legs: []Leg{
		{Type: LEG_WALK, To: stopLocation("Main St", 49.90, -97.14)},
		{Type: LEG_RIDE, RouteKey: "60"},
		{Type: LEG_WALK, From: stopLocation("Portage Ave", 49.89, -97.15)},
	}}
	rides, skipped := ExtractRides(it)
	if len(skipped) != 0 {
		t.Errorf("No legs must be skipped, but got %v", skipped)
	}
	if len(rides) != 1 {
		t.Errorf("Number of rides must be 1, but got %d", len(rides))
		return
	}
	correct := Ride{
		VehicleID:   "60",
		Origin:      RideStop{Name: "Main St", Coordinate: GeoPoint{Lat: 49.90, Lon: -97.14}},
		Destination: RideStop{Name: "Portage Ave", Coordinate: GeoPoint{Lat: 49.89, Lon: -97.15}},
		LegIndex:    1,
	}
	if rides[0] != correct {
		t.Errorf("Ride must be %v, but got %v", correct, rides[0])
	}
}

func TestExtractRidesInterchange(t *testing.T) {
	it := Itinerary{Legs: []Leg{
		{Type: LEG_WALK, To: stopLocation("Main St", 49.90, -97.14)},
		{Type: LEG_RIDE, RouteKey: "60", To: stopLocation("Broadway", 49.895, -97.145)},
		{Type: LEG_RIDE, RouteKey: "11", From: stopLocation("Broadway", 49.895, -97.145)},
		{Type: LEG_WALK, From: stopLocation("Portage Ave", 49.89, -97.15)},
	}}
	rides, skipped := ExtractRides(it)
	if len(skipped) != 0 {
		t.Errorf("No legs must be skipped, but got %v", skipped)
	}
	if len(rides) != 2 {
		t.Errorf("Number of rides must be 2, but got %d", len(rides))
		return
	}
	correct := [][3]string{
		{"60", "Main St", "Broadway"},
		{"11", "Broadway", "Portage Ave"},
	}
	for i := range correct {
		got := [3]string{rides[i].VehicleID, rides[i].Origin.Name, rides[i].Destination.Name}
		if got != correct[i] {
			t.Errorf("Ride #%d must be %v, but got %v", i, correct[i], got)
		}
	}
	if rides[0].Destination.Name == rides[1].Destination.Name || rides[0].Origin.Name == rides[1].Origin.Name {
		t.Errorf("Rides must not overlap: %v, %v", rides[0], rides[1])
	}
}

func TestExtractRidesInterchangeFallback(t *testing.T) {
	it := Itinerary{Legs: []Leg{
		{Type: LEG_WALK, To: stopLocation("Main St", 49.90, -97.14)},
		{Type: LEG_RIDE, RouteKey: "60"},
		{Type: LEG_RIDE, RouteKey: "11", From: stopLocation("Broadway", 49.895, -97.145)},
		{Type: LEG_WALK, From: stopLocation("Portage Ave", 49.89, -97.15)},
	}}
	rides, skipped := ExtractRides(it)
	if len(skipped) != 0 {
		t.Errorf("No legs must be skipped, but got %v", skipped)
	}
	if len(rides) != 2 {
		t.Errorf("Number of rides must be 2, but got %d", len(rides))
		return
	}
	if rides[0].Destination.Name != "Broadway" {
		t.Errorf("Destination of first ride must be 'Broadway', but got '%s'", rides[0].Destination.Name)
	}
	if rides[1].Origin.Name != "Broadway" {
		t.Errorf("Origin of second ride must be 'Broadway', but got '%s'", rides[1].Origin.Name)
	}
}

func TestExtractRidesMergeSameVehicle(t *testing.T) {
	it := Itinerary{Legs: []Leg{
		{Type: LEG_WALK, To: stopLocation("Main St", 49.90, -97.14)},
		{Type: LEG_RIDE, RouteKey: "60", Times: LegTimes{Start: "2024-05-01T08:10:00", End: "2024-05-01T08:20:00"}},
		{Type: LEG_RIDE, RouteKey: "60", Times: LegTimes{Start: "2024-05-01T08:20:00", End: "2024-05-01T08:31:00"}},
		{Type: LEG_WALK, From: stopLocation("Portage Ave", 49.89, -97.15)},
	}}
	rides, skipped := ExtractRides(it)
	if len(skipped) != 0 {
		t.Errorf("No legs must be skipped, but got %v", skipped)
	}
	if len(rides) != 1 {
		t.Errorf("Number of rides must be 1, but got %d", len(rides))
		return
	}
	if rides[0].Origin.Name != "Main St" || rides[0].Destination.Name != "Portage Ave" {
		t.Errorf("Merged ride must go from 'Main St' to 'Portage Ave', but got %v", rides[0])
	}
	correctTimes := LegTimes{Start: "2024-05-01T08:10:00", End: "2024-05-01T08:31:00"}
	if rides[0].Times != correctTimes {
		t.Errorf("Merged ride times must be %v, but got %v", correctTimes, rides[0].Times)
	}
}

func TestExtractRidesMalformed(t *testing.T) {
	tests := []struct {
		name string
		legs []Leg
	}{
		{"ride at start", []Leg{
			{Type: LEG_RIDE, RouteKey: "60"},
			{Type: LEG_WALK, From: stopLocation("Portage Ave", 49.89, -97.15)},
		}},
		{"ride at end", []Leg{
			{Type: LEG_WALK, To: stopLocation("Main St", 49.90, -97.14)},
			{Type: LEG_RIDE, RouteKey: "60"},
		}},
		{"no vehicle", []Leg{
			{Type: LEG_WALK, To: stopLocation("Main St", 49.90, -97.14)},
			{Type: LEG_RIDE},
			{Type: LEG_WALK, From: stopLocation("Portage Ave", 49.89, -97.15)},
		}},
		{"no stop name", []Leg{
			{Type: LEG_WALK, To: stopLocation("", 49.90, -97.14)},
			{Type: LEG_RIDE, RouteKey: "60"},
			{Type: LEG_WALK, From: stopLocation("Portage Ave", 49.89, -97.15)},
		}},
		{"walks end at addresses", []Leg{
			{Type: LEG_WALK, To: &Location{Kind: LOCATION_ADDRESS, Name: "100 Main St", Centre: GeoPoint{Lat: 49.901, Lon: -97.141}}},
			{Type: LEG_RIDE, RouteKey: "60", From: stopLocation("Main St", 49.90, -97.14), To: stopLocation("Portage Ave", 49.89, -97.15)},
			{Type: LEG_WALK, From: &Location{Kind: LOCATION_ADDRESS, Name: "300 Portage Ave", Centre: GeoPoint{Lat: 49.889, Lon: -97.151}}},
		}},
		{"no coordinates", []Leg{
			{Type: LEG_WALK, To: stopLocation("Main St", 49.90, -97.14)},
			{Type: LEG_RIDE, RouteKey: "60"},
			{Type: LEG_WALK, From: &Location{StopName: "Portage Ave"}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rides, skipped := ExtractRides(Itinerary{Legs: tt.legs})
			if len(rides) != 0 {
				t.Errorf("Number of rides must be 0, but got %d", len(rides))
			}
			if len(skipped) != 1 {
				t.Errorf("Number of skipped legs must be 1, but got %d", len(skipped))
				return
			}
			if !errors.Is(skipped[0], ErrMalformedLeg) {
				t.Errorf("Error must wrap ErrMalformedLeg, but got %v", skipped[0])
			}
		})
	}
}

func TestExtractRidesMalformedDoesNotAbort(t *testing.T) {
	it := Itinerary{Legs: []Leg{
		{Type: LEG_RIDE, RouteKey: "18"},
		{Type: LEG_WALK, To: stopLocation("Main St", 49.90, -97.14)},
		{Type: LEG_RIDE, RouteKey: "60"},
		{Type: LEG_WALK, From: stopLocation("Portage Ave", 49.89, -97.15)},
	}}
	rides, skipped := ExtractRides(it)
	if len(rides) != 1 || rides[0].VehicleID != "60" {
		t.Errorf("Ride of vehicle '60' must be extracted, but got %v", rides)
	}
	if len(skipped) != 1 {
		t.Errorf("Number of skipped legs must be 1, but got %d", len(skipped))
	}
}

func TestDecodeItineraries(t *testing.T) {
	file, err := os.Open("./testdata/itinerary_60.json")
	if err != nil {
		t.Error(err)
		return
	}
	defer file.Close()
	plans, err := DecodeItineraries(file)
	if err != nil {
		t.Error(err)
		return
	}
	if len(plans) != 2 {
		t.Errorf("Number of plans must be 2, but got %d", len(plans))
		return
	}
	legs := plans[0].Legs
	if len(legs) != 3 {
		t.Errorf("Number of legs must be 3, but got %d", len(legs))
		return
	}
	if legs[0].Type != LEG_WALK || legs[1].Type != LEG_RIDE || legs[1].RouteKey != "60" {
		t.Errorf("Unexpected legs: %v / %v '%s'", legs[0].Type, legs[1].Type, legs[1].RouteKey)
	}
	if legs[0].From.Kind != LOCATION_ADDRESS || legs[0].From.Name != "100 Main St" {
		t.Errorf("Walk origin must be address '100 Main St', but got %v '%s'", legs[0].From.Kind, legs[0].From.Name)
	}
	if legs[2].To.Kind != LOCATION_MONUMENT || legs[2].To.Centre != (GeoPoint{Lat: 49.8875, Lon: -97.1310}) {
		t.Errorf("Walk destination must be monument, but got %v %v", legs[2].To.Kind, legs[2].To.Centre)
	}
	rides, _ := ExtractRides(plans[0])
	if len(rides) != 1 || rides[0].Origin.Coordinate != (GeoPoint{Lat: 49.90, Lon: -97.14}) {
		t.Errorf("Unexpected rides: %v", rides)
		return
	}
	correctTimes := LegTimes{Start: "2026-10-17T08:07:00", End: "2026-10-17T08:20:00"}
	if rides[0].Times != correctTimes {
		t.Errorf("Ride times must be %v, but got %v", correctTimes, rides[0].Times)
	}

	single, err := DecodeItineraries(strings.NewReader(`{"segments": [{"type": "walk"}, {"type": "ride", "route": {"key": "BLUE"}}]}`))
	if err != nil {
		t.Error(err)
		return
	}
	if len(single) != 1 || len(single[0].Legs) != 2 || single[0].Legs[1].RouteKey != "BLUE" {
		t.Errorf("Unexpected single plan: %v", single)
	}
	if _, err := DecodeItineraries(strings.NewReader(`{"foo": 1}`)); err == nil {
		t.Errorf("Document without plans and segments must be rejected")
	}
}
