package osm2ride

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	DEFAULT_CONCURRENCY = 1
)

// Observer is notified about every produced path and every dropped leg
type Observer interface {
	ObservePath(path *ReconstructedPath, elapsed time.Duration)
	ObserveDroppedLeg(err error)
}

// Reconstructor turns itineraries into per-ride geometries
type Reconstructor struct {
	source      NetworkSource
	concurrency int
	verbose     bool
	observer    Observer
}

func (rc *Reconstructor) String() string {
	return fmt.Sprintf(`
Reconstructor parameters:
	source: %T
	concurrency: %d
	verbose: %t
	`,
		rc.source,
		rc.concurrency,
		rc.verbose,
	)
}

// NewReconstructor returns reconstructor which fetches network snapshots from given source
func NewReconstructor(source NetworkSource, options ...func(*Reconstructor)) *Reconstructor {
	rc := &Reconstructor{
		source:      source,
		concurrency: DEFAULT_CONCURRENCY,
	}
	for _, option := range options {
		option(rc)
	}
	if rc.concurrency < 1 {
		rc.concurrency = 1
	}
	return rc
}

// WithConcurrency sets max number of rides processed at once. 1 means sequential processing
func WithConcurrency(concurrency int) func(*Reconstructor) {
	return func(rc *Reconstructor) {
		rc.concurrency = concurrency
	}
}

func WithVerbose(verbose bool) func(*Reconstructor) {
	return func(rc *Reconstructor) {
		rc.verbose = verbose
	}
}

func WithObserver(observer Observer) func(*Reconstructor) {
	return func(rc *Reconstructor) {
		rc.observer = observer
	}
}

// Reconstruct extracts rides from itinerary and reconstructs path for each of them.
// Malformed ride legs are dropped. Result is ordered as rides in itinerary.
// Returns context error and no paths when ctx has been cancelled
func (rc *Reconstructor) Reconstruct(ctx context.Context, it Itinerary) ([]*ReconstructedPath, error) {
	rides, dropped := ExtractRides(it)
	for _, err := range dropped {
		if rc.verbose {
			fmt.Printf("[WARNING]: Leg dropped: %s\n", err)
		}
		if rc.observer != nil {
			rc.observer.ObserveDroppedLeg(err)
		}
	}
	return rc.ReconstructRides(ctx, rides)
}

// ReconstructRides reconstructs paths for given rides. Rides are fetched in parallel (bounded by concurrency),
// results keep rides' order
func (rc *Reconstructor) ReconstructRides(ctx context.Context, rides []Ride) ([]*ReconstructedPath, error) {
	if rc.verbose {
		fmt.Printf("Reconstructing %d ride(s)...\n", len(rides))
	}
	st := time.Now()
	paths := make([]*ReconstructedPath, len(rides))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(rc.concurrency)
	for i := range rides {
		i := i
		ride := rides[i]
		g.Go(func() error {
			path, err := rc.ReconstructRide(gctx, ride)
			if err != nil {
				return err
			}
			paths[i] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if rc.verbose {
		fmt.Printf("Done in %v\n", time.Since(st))
	}
	return paths, nil
}

// ReconstructRide fetches network snapshot for the ride and synthesizes its path.
// The only returned error is cancellation of ctx: any other failure degrades to straight line
func (rc *Reconstructor) ReconstructRide(ctx context.Context, ride Ride) (*ReconstructedPath, error) {
	st := time.Now()
	var path *ReconstructedPath
	snap, err := rc.source.Fetch(ctx, ride)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		path = straightPath(ride, ride.Origin.Coordinate, ride.Destination.Coordinate, OUTCOME_QUERY_FAILED, err)
	} else {
		path = synthesize(snap, ride)
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	elapsed := time.Since(st)
	if rc.verbose {
		if path.Err != nil {
			fmt.Printf("\t%s (%v): %s\n", path, elapsed, path.Err)
		} else {
			fmt.Printf("\t%s (%v)\n", path, elapsed)
		}
	}
	if rc.observer != nil {
		rc.observer.ObservePath(path, elapsed)
	}
	return path, nil
}
