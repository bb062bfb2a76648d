package osm2ride

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"
)

// LocationKind is kind of descriptor which location's centre has been resolved from
type LocationKind uint16

const (
	LOCATION_UNKNOWN = LocationKind(iota)
	LOCATION_STOP
	LOCATION_MONUMENT
	LOCATION_POINT
	LOCATION_ADDRESS
)

func (iotaIdx LocationKind) String() string {
	if int(iotaIdx) >= len(locationKindNames) {
		return "unknown"
	}
	return locationKindNames[iotaIdx]
}

var locationKindNames = [...]string{"unknown", "stop", "monument", "point", "address"}

// Location is a resolved location descriptor of leg's end.
//
// Kind tells which descriptor provided Centre. StopName is filled whenever descriptor references
// transit stop, even if stop itself carries no centre and coordinates came from another descriptor.
type Location struct {
	Kind     LocationKind
	Centre   GeoPoint
	StopKey  string
	StopName string
	Name     string
}

// Resolved reports whether location has geographic centre
func (loc *Location) Resolved() bool {
	return loc != nil && loc.Kind != LOCATION_UNKNOWN
}

// UnmarshalJSON decodes trip-planner location shape:
//
//	{"stop": {"key": 10064, "name": "...", "centre": {"geographic": {"latitude": "49.9", "longitude": "-97.1"}}}}
//	{"origin": {"monument" | "point" | "address": {...}}}
//	{"destination": {"monument" | "point" | "address": {...}}}
func (loc *Location) UnmarshalJSON(data []byte) error {
	raw := rawLocation{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "Can't decode location")
	}
	*loc = resolveLocation(&raw)
	return nil
}

// locationResolver extracts centre and label from one descriptor shape
type locationResolver struct {
	kind    LocationKind
	resolve func(raw *rawLocation) (*rawCentre, string)
}

// locationResolvers are evaluated in order, first one yielding valid centre wins
var locationResolvers = []locationResolver{
	{LOCATION_STOP, func(raw *rawLocation) (*rawCentre, string) {
		if raw.Stop == nil {
			return nil, ""
		}
		return raw.Stop.Centre, raw.Stop.Name
	}},
	{LOCATION_MONUMENT, placeMonument(func(raw *rawLocation) *rawPlace { return raw.Origin })},
	{LOCATION_POINT, placePoint(func(raw *rawLocation) *rawPlace { return raw.Origin })},
	{LOCATION_ADDRESS, placeAddress(func(raw *rawLocation) *rawPlace { return raw.Origin })},
	{LOCATION_MONUMENT, placeMonument(func(raw *rawLocation) *rawPlace { return raw.Destination })},
	{LOCATION_POINT, placePoint(func(raw *rawLocation) *rawPlace { return raw.Destination })},
	{LOCATION_ADDRESS, placeAddress(func(raw *rawLocation) *rawPlace { return raw.Destination })},
}

func placeMonument(pick func(*rawLocation) *rawPlace) func(*rawLocation) (*rawCentre, string) {
	return func(raw *rawLocation) (*rawCentre, string) {
		place := pick(raw)
		if place == nil || place.Monument == nil || place.Monument.Address == nil {
			return nil, ""
		}
		return place.Monument.Address.Centre, place.Monument.Name
	}
}

func placePoint(pick func(*rawLocation) *rawPlace) func(*rawLocation) (*rawCentre, string) {
	return func(raw *rawLocation) (*rawCentre, string) {
		place := pick(raw)
		if place == nil || place.Point == nil {
			return nil, ""
		}
		return place.Point.Centre, ""
	}
}

func placeAddress(pick func(*rawLocation) *rawPlace) func(*rawLocation) (*rawCentre, string) {
	return func(raw *rawLocation) (*rawCentre, string) {
		place := pick(raw)
		if place == nil || place.Address == nil {
			return nil, ""
		}
		return place.Address.Centre, place.Address.label()
	}
}

// resolveLocation runs resolvers in priority order. Never fails: unresolvable descriptor yields LOCATION_UNKNOWN
func resolveLocation(raw *rawLocation) Location {
	loc := Location{}
	if raw.Stop != nil {
		loc.StopKey = string(raw.Stop.Key)
		loc.StopName = raw.Stop.Name
	}
	for _, resolver := range locationResolvers {
		centre, name := resolver.resolve(raw)
		pt, ok := centre.point()
		if !ok {
			continue
		}
		loc.Kind = resolver.kind
		loc.Centre = pt
		loc.Name = name
		return loc
	}
	return loc
}

type rawLocation struct {
	Stop        *rawStop  `json:"stop"`
	Origin      *rawPlace `json:"origin"`
	Destination *rawPlace `json:"destination"`
}

type rawPlace struct {
	Monument *rawMonument `json:"monument"`
	Point    *rawPoint    `json:"point"`
	Address  *rawAddress  `json:"address"`
}

type rawStop struct {
	Key    flexString `json:"key"`
	Name   string     `json:"name"`
	Centre *rawCentre `json:"centre"`
}

type rawMonument struct {
	Key     flexString  `json:"key"`
	Name    string      `json:"name"`
	Address *rawAddress `json:"address"`
}

type rawPoint struct {
	Centre *rawCentre `json:"centre"`
}

type rawAddress struct {
	Key          flexString `json:"key"`
	StreetNumber flexString `json:"street-number"`
	Street       *struct {
		Name string `json:"name"`
	} `json:"street"`
	Centre *rawCentre `json:"centre"`
}

func (addr *rawAddress) label() string {
	if addr.Street == nil || addr.Street.Name == "" {
		return ""
	}
	if addr.StreetNumber == "" {
		return addr.Street.Name
	}
	return string(addr.StreetNumber) + " " + addr.Street.Name
}

type rawCentre struct {
	Geographic *struct {
		Latitude  flexFloat `json:"latitude"`
		Longitude flexFloat `json:"longitude"`
	} `json:"geographic"`
}

func (c *rawCentre) point() (GeoPoint, bool) {
	if c == nil || c.Geographic == nil || !c.Geographic.Latitude.valid || !c.Geographic.Longitude.valid {
		return GeoPoint{}, false
	}
	return GeoPoint{Lat: c.Geographic.Latitude.value, Lon: c.Geographic.Longitude.value}, true
}

// flexFloat accepts both JSON numbers and numeric strings.
// Unparsable values leave it invalid instead of failing the whole document
type flexFloat struct {
	value float64
	valid bool
}

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	v, err := strconv.ParseFloat(string(bytes.Trim(data, `"`)), 64)
	if err != nil {
		return nil
	}
	f.value, f.valid = v, true
	return nil
}

// flexString accepts both JSON strings and numbers
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = flexString(str)
		return nil
	}
	*s = flexString(data)
	return nil
}
