package osm2ride

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// LegType is type of itinerary step
type LegType uint16

const (
	LEG_UNKNOWN = LegType(iota)
	LEG_WALK
	LEG_RIDE
	LEG_TRANSFER
)

func (iotaIdx LegType) String() string {
	if int(iotaIdx) >= len(legTypeNames) {
		return "unknown"
	}
	return legTypeNames[iotaIdx]
}

var legTypeNames = [...]string{"unknown", "walk", "ride", "transfer"}

func parseLegType(s string) LegType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "walk":
		return LEG_WALK
	case "ride":
		return LEG_RIDE
	case "transfer":
		return LEG_TRANSFER
	default:
		return LEG_UNKNOWN
	}
}

// LegTimes is timing of the leg as provided by trip planner (kept verbatim)
type LegTimes struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// Leg is one itinerary step. Only LEG_RIDE legs carry RouteKey
type Leg struct {
	Type     LegType
	RouteKey string
	From     *Location
	To       *Location
	Times    LegTimes
}

// UnmarshalJSON decodes trip-planner segment
func (leg *Leg) UnmarshalJSON(data []byte) error {
	raw := struct {
		Type  string `json:"type"`
		Route *struct {
			Key flexString `json:"key"`
		} `json:"route"`
		From  *Location `json:"from"`
		To    *Location `json:"to"`
		Times LegTimes  `json:"times"`
	}{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "Can't decode leg")
	}
	*leg = Leg{
		Type:  parseLegType(raw.Type),
		From:  raw.From,
		To:    raw.To,
		Times: raw.Times,
	}
	if raw.Route != nil {
		leg.RouteKey = strings.TrimSpace(string(raw.Route.Key))
	}
	return nil
}

// Itinerary is ordered sequence of legs. Treated as read-only
type Itinerary struct {
	Legs []Leg
}

// UnmarshalJSON decodes trip-planner plan ({"segments": [...]})
func (it *Itinerary) UnmarshalJSON(data []byte) error {
	raw := struct {
		Segments []Leg `json:"segments"`
	}{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "Can't decode itinerary")
	}
	it.Legs = raw.Segments
	return nil
}

// DecodeItineraries reads either single plan object or trip-planner response with "plans" array
func DecodeItineraries(r io.Reader) ([]Itinerary, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "Can't read itinerary data")
	}
	probe := struct {
		Plans    json.RawMessage `json:"plans"`
		Segments json.RawMessage `json:"segments"`
	}{}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, errors.Wrap(err, "Can't decode itinerary data")
	}
	if len(probe.Plans) > 0 && !bytes.Equal(probe.Plans, []byte("null")) {
		plans := []Itinerary{}
		if err := json.Unmarshal(probe.Plans, &plans); err != nil {
			return nil, errors.Wrap(err, "Can't decode plans")
		}
		return plans, nil
	}
	if len(probe.Segments) == 0 {
		return nil, errors.New("Neither 'plans' nor 'segments' found")
	}
	it := Itinerary{}
	if err := json.Unmarshal(data, &it); err != nil {
		return nil, err
	}
	return []Itinerary{it}, nil
}
