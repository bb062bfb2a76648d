package osm2ride

import (
	"github.com/paulmach/osm"
	"github.com/pkg/errors"
)

// memberIndex returns position of the node member with given identifier in relation's member list. Returns -1
// when relation does not reference the node
func memberIndex(members osm.Members, nodeID osm.NodeID) int {
	for i := range members {
		if members[i].Type == osm.TypeNode && members[i].Ref == int64(nodeID) {
			return i
		}
	}
	return -1
}

// SelectRelation returns first relation which visits origin node before destination node.
// Relations running in the opposite direction are rejected: they describe another route variant
func SelectRelation(snap *Snapshot, originID, destinationID osm.NodeID) (*osm.Relation, error) {
	for _, relation := range snap.Relations {
		originIdx := memberIndex(relation.Members, originID)
		if originIdx < 0 {
			continue
		}
		destinationIdx := memberIndex(relation.Members, destinationID)
		if destinationIdx < 0 {
			continue
		}
		if originIdx < destinationIdx {
			return relation, nil
		}
	}
	return nil, errors.Wrapf(ErrNoMatchingRelation, "no relation visits node %d before node %d", originID, destinationID)
}

// relationNodes returns coordinates of relation's node members (stops and platforms). Members without known
// coordinates are skipped
func relationNodes(snap *Snapshot, relation *osm.Relation) []GeoPoint {
	pts := []GeoPoint{}
	for i := range relation.Members {
		member := &relation.Members[i]
		if member.Type != osm.TypeNode {
			continue
		}
		if pt, ok := snap.memberPoint(member); ok {
			pts = append(pts, pt)
		}
	}
	return pts
}

// AssembleWays concatenates relation's way members into single line.
//
// Each way is oriented against entry point: first node member of the relation for the first way, last appended
// point for the rest. If way's last point is closer to the entry point than its first one, way is reversed.
// Point equal to previously appended one is not appended twice.
// When relation has no node members, first way keeps its stored orientation.
func AssembleWays(snap *Snapshot, relation *osm.Relation) []GeoPoint {
	path := []GeoPoint{}
	var entry GeoPoint
	hasEntry := false
	if nodes := relationNodes(snap, relation); len(nodes) > 0 {
		entry = nodes[0]
		hasEntry = true
	}
	for i := range relation.Members {
		member := &relation.Members[i]
		if member.Type != osm.TypeWay {
			continue
		}
		geom := snap.memberGeometry(member)
		if len(geom) == 0 {
			continue
		}
		if hasEntry {
			disStart := squareDistance(geom[0], entry)
			disEnd := squareDistance(geom[len(geom)-1], entry)
			if disStart > disEnd {
				geom = reverseLine(geom)
			}
		}
		for _, pt := range geom {
			if len(path) > 0 && path[len(path)-1] == pt {
				continue
			}
			path = append(path, pt)
		}
		entry = path[len(path)-1]
		hasEntry = true
	}
	return path
}

// SynthesizePath selects relation for given stop nodes and assembles its geometry (not trimmed yet)
func SynthesizePath(snap *Snapshot, originID, destinationID osm.NodeID) ([]GeoPoint, *osm.Relation, error) {
	relation, err := SelectRelation(snap, originID, destinationID)
	if err != nil {
		return nil, nil, err
	}
	return AssembleWays(snap, relation), relation, nil
}
