package osm2ride

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"
	"github.com/pkg/errors"
)

type OSMScanner interface {
	Scan() bool
	Close() error
	Err() error
	Object() osm.Object
}

// FileSource serves network snapshots from local OSM extract (*.osm, *.xml or *.osm.pbf) instead of Overpass API.
// File is read once: route relations of configured type, their ways and nodes, and all nodes tagged as stops
// are kept in memory. Each Fetch builds fresh snapshot out of them
type FileSource struct {
	cfg       QueryConfiguration
	relations []*osm.Relation
	ways      map[osm.WayID]*osm.Way
	stops     []*osm.Node
}

func newScanner(ctx context.Context, file io.Reader, filename string) (OSMScanner, error) {
	ext := filepath.Ext(filename)
	switch ext {
	case ".osm", ".xml":
		return osmxml.New(ctx, file), nil
	case ".pbf":
		return osmpbf.New(ctx, file, 4), nil
	default:
		return nil, fmt.Errorf("File extension '%s' for file '%s' is not handled yet", ext, filename)
	}
}

// NewFileSource reads given OSM file
func NewFileSource(ctx context.Context, filename string, cfg QueryConfiguration, verbose bool) (*FileSource, error) {
	if verbose {
		fmt.Printf("Opening file: '%s'...\n", filename)
	}
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	source := &FileSource{
		cfg:       cfg,
		relations: []*osm.Relation{},
		ways:      make(map[osm.WayID]*osm.Way),
		stops:     []*osm.Node{},
	}

	/* Process route relations */
	if verbose {
		fmt.Printf("\tProcessing relations... ")
	}
	st := time.Now()
	waysSeen := make(map[osm.WayID]struct{})
	nodesSeen := make(map[osm.NodeID]struct{})
	err = scanFile(ctx, file, filename, osm.TypeRelation, func(obj osm.Object) {
		relation := obj.(*osm.Relation)
		if relation.Tags.Find("type") != "route" || relation.Tags.Find("route") != cfg.RouteType {
			return
		}
		for _, member := range relation.Members {
			switch member.Type {
			case osm.TypeWay:
				waysSeen[osm.WayID(member.Ref)] = struct{}{}
			case osm.TypeNode:
				nodesSeen[osm.NodeID(member.Ref)] = struct{}{}
			}
		}
		source.relations = append(source.relations, relation)
	})
	if err != nil {
		return nil, errors.Wrap(err, "Can't scan relations")
	}
	if verbose {
		fmt.Printf("Done in %v\n", time.Since(st))
	}

	/* Process ways */
	if verbose {
		fmt.Printf("\tProcessing ways... ")
	}
	st = time.Now()
	err = scanFile(ctx, file, filename, osm.TypeWay, func(obj osm.Object) {
		way := obj.(*osm.Way)
		if _, ok := waysSeen[way.ID]; !ok {
			return
		}
		for _, node := range way.Nodes {
			nodesSeen[node.ID] = struct{}{}
		}
		source.ways[way.ID] = way
	})
	if err != nil {
		return nil, errors.Wrap(err, "Can't scan ways")
	}
	if verbose {
		fmt.Printf("Done in %v\n", time.Since(st))
	}

	/* Process nodes */
	if verbose {
		fmt.Printf("\tProcessing nodes... ")
	}
	st = time.Now()
	coords := make(map[osm.NodeID]GeoPoint)
	err = scanFile(ctx, file, filename, osm.TypeNode, func(obj osm.Object) {
		node := obj.(*osm.Node)
		if _, ok := nodesSeen[node.ID]; ok {
			coords[node.ID] = nodePoint(node)
		}
		if node.Tags.Find("name") != "" && cfg.CheckStopTags(node.Tags) {
			source.stops = append(source.stops, node)
		}
	})
	if err != nil {
		return nil, errors.Wrap(err, "Can't scan nodes")
	}
	if verbose {
		fmt.Printf("Done in %v\n", time.Since(st))
	}

	// Inline coordinates so snapshots don't need geometry nodes
	for _, way := range source.ways {
		for i := range way.Nodes {
			if pt, ok := coords[way.Nodes[i].ID]; ok {
				way.Nodes[i].Lat, way.Nodes[i].Lon = pt.Lat, pt.Lon
			}
		}
	}
	for _, relation := range source.relations {
		for i := range relation.Members {
			member := &relation.Members[i]
			if member.Type != osm.TypeNode {
				continue
			}
			if pt, ok := coords[osm.NodeID(member.Ref)]; ok {
				member.Lat, member.Lon = pt.Lat, pt.Lon
			}
		}
	}

	if verbose {
		fmt.Printf("Number of route relations: %d\n", len(source.relations))
		fmt.Printf("Number of ways: %d\n", len(source.ways))
		fmt.Printf("Number of stops: %d\n", len(source.stops))
	}
	return source, nil
}

// scanFile rewinds the file and calls fn for every object of given type
func scanFile(ctx context.Context, file *os.File, filename string, objType osm.Type, fn func(obj osm.Object)) error {
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return errors.Wrap(err, "Can't seek to file start")
	}
	scanner, err := newScanner(ctx, file, filename)
	if err != nil {
		return err
	}
	defer scanner.Close()
	for scanner.Scan() {
		obj := scanner.Object()
		if obj.ObjectID().Type() != objType {
			continue
		}
		fn(obj)
	}
	return scanner.Err()
}

// Fetch implements NetworkSource
func (source *FileSource) Fetch(ctx context.Context, ride Ride) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, &NetworkQueryError{VehicleID: ride.VehicleID, Cause: err}
	}
	snap := NewSnapshot()
	for _, node := range source.stops {
		name := node.Tags.Find("name")
		if name == "" {
			continue
		}
		if name == ride.Origin.Name || name == ride.Destination.Name {
			snap.AddNode(node)
		}
	}
	for _, relation := range source.relations {
		if !source.cfg.CheckRoute(relation.Tags, ride.VehicleID) {
			continue
		}
		snap.AddRelation(relation)
		for _, member := range relation.Members {
			if member.Type != osm.TypeWay {
				continue
			}
			if way, ok := source.ways[osm.WayID(member.Ref)]; ok {
				snap.AddWay(way)
			}
		}
	}
	return snap, nil
}
