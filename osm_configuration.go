package osm2ride

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/paulmach/osm"
	"github.com/pkg/errors"
)

const (
	DEFAULT_AREA      = "Winnipeg"
	DEFAULT_ROUTE     = "bus"
	DEFAULT_TIMEOUT   = 25 * time.Second
	DEFAULT_STOP_TAGS = "public_transport=platform,highway=bus_stop"
)

// StopTag is key=value pair which marks node as transit stop
type StopTag struct {
	Key   string
	Value string
}

func (tag StopTag) String() string {
	return tag.Key + "=" + tag.Value
}

// QueryConfiguration scopes network queries: area to search in, route type and tags of stop nodes
type QueryConfiguration struct {
	Area      string
	RouteType string
	StopTags  []StopTag
	Timeout   time.Duration
}

// DefaultQueryConfiguration returns configuration for Winnipeg bus network
func DefaultQueryConfiguration() QueryConfiguration {
	tags, _ := ParseStopTags(DEFAULT_STOP_TAGS)
	return QueryConfiguration{
		Area:      DEFAULT_AREA,
		RouteType: DEFAULT_ROUTE,
		StopTags:  tags,
		Timeout:   DEFAULT_TIMEOUT,
	}
}

// ParseStopTags parses comma separated list of key=value pairs
func ParseStopTags(s string) ([]StopTag, error) {
	tags := []StopTag{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 || strings.TrimSpace(kv[0]) == "" || strings.TrimSpace(kv[1]) == "" {
			return nil, errors.Errorf("bad stop tag '%s', expected key=value", part)
		}
		tags = append(tags, StopTag{Key: strings.TrimSpace(kv[0]), Value: strings.TrimSpace(kv[1])})
	}
	if len(tags) == 0 {
		return nil, errors.New("no stop tags provided")
	}
	return tags, nil
}

// CheckStopTags checks if node tags mark it as transit stop
func (cfg *QueryConfiguration) CheckStopTags(tags osm.Tags) bool {
	for i := range cfg.StopTags {
		if tags.Find(cfg.StopTags[i].Key) == cfg.StopTags[i].Value {
			return true
		}
	}
	return false
}

// CheckRoute checks if relation tags describe route of configured type served by given vehicle
func (cfg *QueryConfiguration) CheckRoute(tags osm.Tags, vehicleID string) bool {
	return tags.Find("type") == "route" && tags.Find("route") == cfg.RouteType && tags.Find("ref") == vehicleID
}

// BuildQuery returns Overpass QL query asking for route relation of the ride's vehicle and stop nodes named as
// ride's origin and destination, all within configured area. Geometry is requested inline ("out geom")
func (cfg *QueryConfiguration) BuildQuery(ride Ride) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[out:json][timeout:%d];\n", cfg.timeoutSeconds())
	fmt.Fprintf(&sb, "area[\"name\"=\"%s\"]->.searchArea;\n(\n", quoteQL(cfg.Area))
	fmt.Fprintf(&sb, "  relation[\"type\"=\"route\"][\"route\"=\"%s\"][\"ref\"=\"%s\"](area.searchArea);\n", quoteQL(cfg.RouteType), quoteQL(ride.VehicleID))
	names := []string{ride.Origin.Name}
	if ride.Destination.Name != ride.Origin.Name {
		names = append(names, ride.Destination.Name)
	}
	for _, name := range names {
		for _, tag := range cfg.StopTags {
			fmt.Fprintf(&sb, "  node[\"%s\"=\"%s\"][\"name\"=\"%s\"](area.searchArea);\n", quoteQL(tag.Key), quoteQL(tag.Value), quoteQL(name))
		}
	}
	sb.WriteString(");\nout geom;\n")
	return sb.String()
}

func (cfg *QueryConfiguration) timeoutSeconds() int {
	if cfg.Timeout <= 0 {
		return int(DEFAULT_TIMEOUT.Seconds())
	}
	return int(math.Ceil(cfg.Timeout.Seconds()))
}

var qlReplacer = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\t", `\t`)

// quoteQL escapes value for double quoted Overpass QL string literal
func quoteQL(s string) string {
	return qlReplacer.Replace(s)
}
