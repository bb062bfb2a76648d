package osm2ride

import (
	"github.com/paulmach/osm"
)

// Snapshot is raw result of one network query: stop nodes, ways and route relations.
//
// Nodes keep the order they've been received in (stop resolution depends on it).
// Relation members may carry inline geometry (Member.Lat/Lon for nodes, Member.Nodes for ways) or be plain
// references to elements of the snapshot.
type Snapshot struct {
	Nodes     []*osm.Node
	Ways      map[osm.WayID]*osm.Way
	Relations []*osm.Relation

	nodesIdx map[osm.NodeID]*osm.Node
}

// NewSnapshot returns empty snapshot
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Nodes:     make([]*osm.Node, 0),
		Ways:      make(map[osm.WayID]*osm.Way),
		Relations: make([]*osm.Relation, 0),
		nodesIdx:  make(map[osm.NodeID]*osm.Node),
	}
}

// AddNode appends node to snapshot
func (snap *Snapshot) AddNode(node *osm.Node) {
	snap.Nodes = append(snap.Nodes, node)
	snap.nodesIdx[node.ID] = node
}

// AddWay registers way in snapshot
func (snap *Snapshot) AddWay(way *osm.Way) {
	snap.Ways[way.ID] = way
}

// AddRelation appends relation to snapshot
func (snap *Snapshot) AddRelation(relation *osm.Relation) {
	snap.Relations = append(snap.Relations, relation)
}

// Node returns node by its identifier
func (snap *Snapshot) Node(id osm.NodeID) (*osm.Node, bool) {
	node, ok := snap.nodesIdx[id]
	return node, ok
}

// memberPoint returns coordinates of node member: inline ones first, then referenced node's
func (snap *Snapshot) memberPoint(member *osm.Member) (GeoPoint, bool) {
	if member.Lat != 0 || member.Lon != 0 {
		return GeoPoint{Lat: member.Lat, Lon: member.Lon}, true
	}
	if node, ok := snap.Node(osm.NodeID(member.Ref)); ok {
		return GeoPoint{Lat: node.Lat, Lon: node.Lon}, true
	}
	return GeoPoint{}, false
}

// memberGeometry returns stored (not yet oriented) geometry of way member: inline one first, then referenced way's
func (snap *Snapshot) memberGeometry(member *osm.Member) []GeoPoint {
	if len(member.Nodes) > 0 {
		return snap.wayNodesGeometry(member.Nodes)
	}
	if way, ok := snap.Ways[osm.WayID(member.Ref)]; ok {
		return snap.wayNodesGeometry(way.Nodes)
	}
	return nil
}

// wayNodesGeometry converts way nodes to points. Nodes without coordinates are looked up in snapshot and skipped
// when they are unknown
func (snap *Snapshot) wayNodesGeometry(wayNodes osm.WayNodes) []GeoPoint {
	pts := make([]GeoPoint, 0, len(wayNodes))
	for _, wn := range wayNodes {
		if wn.Lat != 0 || wn.Lon != 0 {
			pts = append(pts, GeoPoint{Lat: wn.Lat, Lon: wn.Lon})
			continue
		}
		if node, ok := snap.Node(wn.ID); ok {
			pts = append(pts, GeoPoint{Lat: node.Lat, Lon: node.Lon})
		}
	}
	return pts
}
