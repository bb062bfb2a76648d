package osm2ride

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/paulmach/osm"
	"github.com/pkg/errors"
)

const (
	DEFAULT_OVERPASS_URL = "https://overpass-api.de/api/interpreter"
)

// NetworkSource provides network snapshot for single Ride
type NetworkSource interface {
	Fetch(ctx context.Context, ride Ride) (*Snapshot, error)
}

// OverpassClient queries Overpass API. Exactly one HTTP request per Ride, no retries
type OverpassClient struct {
	endpoint string
	client   *http.Client
	cfg      QueryConfiguration
}

// NewOverpassClient returns client for given query configuration
func NewOverpassClient(cfg QueryConfiguration, options ...func(*OverpassClient)) *OverpassClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DEFAULT_TIMEOUT
	}
	oc := &OverpassClient{
		endpoint: DEFAULT_OVERPASS_URL,
		client:   &http.Client{},
		cfg:      cfg,
	}
	for _, option := range options {
		option(oc)
	}
	return oc
}

// WithEndpoint sets Overpass interpreter URL
func WithEndpoint(endpoint string) func(*OverpassClient) {
	return func(oc *OverpassClient) {
		oc.endpoint = endpoint
	}
}

// WithHTTPClient sets custom HTTP client. Query timeout is still applied through request context
func WithHTTPClient(client *http.Client) func(*OverpassClient) {
	return func(oc *OverpassClient) {
		oc.client = client
	}
}

// Fetch implements NetworkSource. Any failure is returned as *NetworkQueryError
func (oc *OverpassClient) Fetch(ctx context.Context, ride Ride) (*Snapshot, error) {
	queryErr := func(status int, cause error) error {
		return &NetworkQueryError{VehicleID: ride.VehicleID, StatusCode: status, Cause: cause}
	}

	ctx, cancel := context.WithTimeout(ctx, oc.cfg.Timeout)
	defer cancel()

	form := url.Values{}
	form.Set("data", oc.cfg.BuildQuery(ride))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, oc.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, queryErr(0, errors.Wrap(err, "Can't prepare request"))
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := oc.client.Do(req)
	if err != nil {
		return nil, queryErr(0, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, queryErr(resp.StatusCode, errors.Errorf("unexpected status '%s': %s", resp.Status, strings.TrimSpace(string(body))))
	}

	snap, err := decodeOverpass(resp.Body)
	if err != nil {
		return nil, queryErr(resp.StatusCode, err)
	}
	return snap, nil
}

type overpassResponse struct {
	Remark   string            `json:"remark"`
	Elements []overpassElement `json:"elements"`
}

type overpassLatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type overpassElement struct {
	Type     string            `json:"type"`
	ID       int64             `json:"id"`
	Lat      float64           `json:"lat"`
	Lon      float64           `json:"lon"`
	Tags     map[string]string `json:"tags"`
	Nodes    []int64           `json:"nodes"`
	Geometry []*overpassLatLon `json:"geometry"`
	Members  []overpassMember  `json:"members"`
}

type overpassMember struct {
	Type     string            `json:"type"`
	Ref      int64             `json:"ref"`
	Role     string            `json:"role"`
	Lat      float64           `json:"lat"`
	Lon      float64           `json:"lon"`
	Geometry []*overpassLatLon `json:"geometry"`
}

// decodeOverpass parses Overpass JSON ("out geom") into Snapshot
func decodeOverpass(r io.Reader) (*Snapshot, error) {
	resp := overpassResponse{}
	if err := json.NewDecoder(r).Decode(&resp); err != nil {
		return nil, errors.Wrap(err, "Can't decode Overpass response")
	}
	// Overpass reports query timeouts and memory exhaustion with HTTP 200 and a remark
	if strings.Contains(resp.Remark, "runtime error") {
		return nil, errors.Errorf("Overpass runtime error: %s", resp.Remark)
	}
	snap := NewSnapshot()
	for i := range resp.Elements {
		elem := &resp.Elements[i]
		switch osm.Type(elem.Type) {
		case osm.TypeNode:
			snap.AddNode(&osm.Node{
				ID:   osm.NodeID(elem.ID),
				Lat:  elem.Lat,
				Lon:  elem.Lon,
				Tags: overpassTags(elem.Tags),
			})
		case osm.TypeWay:
			snap.AddWay(&osm.Way{
				ID:    osm.WayID(elem.ID),
				Tags:  overpassTags(elem.Tags),
				Nodes: overpassWayNodes(elem.Nodes, elem.Geometry),
			})
		case osm.TypeRelation:
			relation := &osm.Relation{
				ID:      osm.RelationID(elem.ID),
				Tags:    overpassTags(elem.Tags),
				Members: make(osm.Members, 0, len(elem.Members)),
			}
			for _, m := range elem.Members {
				relation.Members = append(relation.Members, osm.Member{
					Type:  osm.Type(m.Type),
					Ref:   m.Ref,
					Role:  m.Role,
					Lat:   m.Lat,
					Lon:   m.Lon,
					Nodes: overpassWayNodes(nil, m.Geometry),
				})
			}
			snap.AddRelation(relation)
		}
	}
	return snap, nil
}

// overpassTags converts tags map to osm.Tags sorted by key
func overpassTags(m map[string]string) osm.Tags {
	if len(m) == 0 {
		return nil
	}
	tags := make(osm.Tags, 0, len(m))
	for k, v := range m {
		tags = append(tags, osm.Tag{Key: k, Value: v})
	}
	sort.Slice(tags, func(i, j int) bool {
		return tags[i].Key < tags[j].Key
	})
	return tags
}

// overpassWayNodes zips node identifiers with geometry. Null geometry entries (nodes clipped by query area) are skipped
func overpassWayNodes(ids []int64, geometry []*overpassLatLon) osm.WayNodes {
	if len(geometry) == 0 {
		wayNodes := make(osm.WayNodes, len(ids))
		for i, id := range ids {
			wayNodes[i] = osm.WayNode{ID: osm.NodeID(id)}
		}
		return wayNodes
	}
	wayNodes := make(osm.WayNodes, 0, len(geometry))
	for i, pt := range geometry {
		if pt == nil {
			continue
		}
		wn := osm.WayNode{Lat: pt.Lat, Lon: pt.Lon}
		if len(ids) == len(geometry) {
			wn.ID = osm.NodeID(ids[i])
		}
		wayNodes = append(wayNodes, wn)
	}
	return wayNodes
}
