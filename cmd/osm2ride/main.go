package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/LdDl/osm2ride"
	"github.com/LdDl/osm2ride/internal/config"
	"github.com/LdDl/osm2ride/internal/httpapi"
	"github.com/LdDl/osm2ride/internal/metrics"
	"github.com/LdDl/osm2ride/internal/publisher"
	"github.com/pkg/errors"
)

var (
	mode          = flag.String("mode", "oneshot", "Mode of work. Expected values: oneshot (read itinerary file, write CSV) / serve (HTTP API)")
	configFile    = flag.String("config", "", "Filename of YAML configuration. Defaults and environment variables are used when empty")
	itineraryFile = flag.String("itinerary", "plan.json", "Filename of trip-planner response (single plan or object with 'plans' array)")
	planIdx       = flag.Int("plan", 0, "Index of plan in 'plans' array")
	osmFileName   = flag.String("osm", "", "Filename of *.osm or *.osm.pbf extract. If empty, Overpass API is queried")
	out           = flag.String("out", "paths.csv", "Filename of 'Comma-Separated Values' (CSV) formatted file. E.g.: if file name is 'paths.csv' then 2 files will be produced: 'paths.csv' (ride paths), 'paths_stops.csv' (boarding and alighting stops)")
	geomFormat    = flag.String("geomf", "wkt", "Format of output geometry. Expected values: wkt / geojson")
	geojsonOut    = flag.String("geojson", "", "Filename of GeoJSON FeatureCollection output (optional)")
	verbose       = flag.Bool("verbose", false, "Print progress of reconstruction")
)

func main() {

	flag.Parse()
	config.InitLogging()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalln(err)
	}
	if *verbose {
		cfg.Reconstruct.Verbose = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	source, err := prepareSource(ctx, cfg)
	if err != nil {
		log.Fatalln(err)
	}

	switch strings.ToLower(*mode) {
	case "serve":
		err = serve(ctx, cfg, source)
	case "oneshot":
		err = oneshot(ctx, cfg, source)
	default:
		err = fmt.Errorf("Mode '%s' is not handled", *mode)
	}
	if err != nil {
		log.Fatalln(err)
	}
}

func prepareSource(ctx context.Context, cfg config.AppConfig) (osm2ride.NetworkSource, error) {
	queryCfg, err := cfg.QueryConfiguration()
	if err != nil {
		return nil, err
	}
	if *osmFileName != "" {
		return osm2ride.NewFileSource(ctx, *osmFileName, queryCfg, cfg.Reconstruct.Verbose)
	}
	return osm2ride.NewOverpassClient(queryCfg, osm2ride.WithEndpoint(cfg.Overpass.URL)), nil
}

func serve(ctx context.Context, cfg config.AppConfig, source osm2ride.NetworkSource) error {
	collector := metrics.NewCollector(cfg.Reconstruct.Concurrency, time.Duration(cfg.Overpass.TimeoutSeconds)*time.Second)
	if cfg.Metrics.Addr != "" {
		metricsSrv := collector.Serve(cfg.Metrics.Addr)
		defer metricsSrv.Close()
	}

	var pub httpapi.PathPublisher
	if cfg.NATS.URL != "" {
		natsPub, err := publisher.NewNATSPublisher(cfg.NATS.URL, cfg.NATS.SubjectPrefix, cfg.Reconstruct.Verbose, collector)
		if err != nil {
			return errors.Wrap(err, "Can't connect to NATS")
		}
		defer natsPub.Close()
		pub = natsPub
	}

	rc := osm2ride.NewReconstructor(
		source,
		osm2ride.WithConcurrency(cfg.Reconstruct.Concurrency),
		osm2ride.WithVerbose(cfg.Reconstruct.Verbose),
		osm2ride.WithObserver(collector),
	)
	if cfg.Reconstruct.Verbose {
		log.Println(rc)
	}
	router := httpapi.NewRouter(httpapi.NewReconstructHandler(rc, pub, collector), cfg.Server.AllowedOrigins, collector.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Server.Port), Handler: router}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Printf("API server starting on :%d", cfg.Server.Port)
	log.Println("  POST /v1/reconstruct")
	log.Println("  GET /health")
	log.Println("  GET /metrics")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func oneshot(ctx context.Context, cfg config.AppConfig, source osm2ride.NetworkSource) error {
	file, err := os.Open(*itineraryFile)
	if err != nil {
		return err
	}
	plans, err := osm2ride.DecodeItineraries(file)
	file.Close()
	if err != nil {
		return err
	}
	if *planIdx < 0 || *planIdx >= len(plans) {
		return fmt.Errorf("Plan index %d is out of range [0, %d)", *planIdx, len(plans))
	}

	rc := osm2ride.NewReconstructor(
		source,
		osm2ride.WithConcurrency(cfg.Reconstruct.Concurrency),
		osm2ride.WithVerbose(cfg.Reconstruct.Verbose),
	)
	paths, err := rc.Reconstruct(ctx, plans[*planIdx])
	if err != nil {
		return errors.Wrap(err, "Reconstruction interrupted")
	}

	fnamePart := strings.Split(*out, ".csv") // to guarantee proper filename and its extension
	fnamePaths := fnamePart[0] + ".csv"
	fnameStops := fnamePart[0] + "_stops.csv"
	if err := writePaths(fnamePaths, paths); err != nil {
		return err
	}
	if err := writeStops(fnameStops, paths); err != nil {
		return err
	}

	if *geojsonOut != "" {
		b, err := osm2ride.PathsFeatureCollection(paths).MarshalJSON()
		if err != nil {
			return errors.Wrap(err, "Can't prepare GeoJSON")
		}
		if err := os.WriteFile(*geojsonOut, b, 0o644); err != nil {
			return err
		}
	}
	fmt.Printf("Done: %d ride path(s) written to '%s'\n", len(paths), fnamePaths)
	return nil
}

func prepareLine(pts []osm2ride.GeoPoint) string {
	if strings.ToLower(*geomFormat) == "geojson" {
		return osm2ride.PrepareGeoJSONLinestring(pts)
	}
	return osm2ride.PrepareWKTLinestring(pts)
}

func preparePoint(pt osm2ride.GeoPoint) string {
	if strings.ToLower(*geomFormat) == "geojson" {
		return osm2ride.PrepareGeoJSONPoint(pt)
	}
	return osm2ride.PrepareWKTPoint(pt)
}

func writePaths(fname string, paths []*osm2ride.ReconstructedPath) error {
	filePaths, err := os.Create(fname)
	if err != nil {
		return err
	}
	defer filePaths.Close()
	writerPaths := csv.NewWriter(filePaths)
	defer writerPaths.Flush()
	writerPaths.Comma = ';'
	// 		ride_index - int, Position of ride in itinerary (defines color)
	// 		vehicle - string, Route identifier
	// 		origin_stop - string, Boarding stop name
	// 		destination_stop - string, Alighting stop name
	// 		outcome - string, How path has been obtained (full or reason of degradation)
	// 		color - string, Palette color
	// 		length_meters - float64, Spherical length of path
	//      geom - geometry (WKT or GeoJSON representation)
	err = writerPaths.Write([]string{"ride_index", "vehicle", "origin_stop", "destination_stop", "outcome", "color", "length_meters", "geom"})
	if err != nil {
		return err
	}
	for i, path := range paths {
		err = writerPaths.Write([]string{
			fmt.Sprintf("%d", i),
			path.Ride.VehicleID,
			path.Ride.Origin.Name,
			path.Ride.Destination.Name,
			path.Outcome.String(),
			osm2ride.ColorForIndex(i),
			fmt.Sprintf("%f", path.LengthMeters()),
			prepareLine(path.Points),
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func writeStops(fname string, paths []*osm2ride.ReconstructedPath) error {
	fileStops, err := os.Create(fname)
	if err != nil {
		return err
	}
	defer fileStops.Close()
	writerStops := csv.NewWriter(fileStops)
	defer writerStops.Flush()
	writerStops.Comma = ';'
	// 		ride_index - int, Position of ride in itinerary
	// 		kind - string, origin / destination
	// 		name - string, Stop name
	// 		candidates - int, Number of network nodes sharing the name
	//      geom - geometry (WKT or GeoJSON representation)
	err = writerStops.Write([]string{"ride_index", "kind", "name", "candidates", "geom"})
	if err != nil {
		return err
	}
	for i, path := range paths {
		err = writerStops.Write([]string{
			fmt.Sprintf("%d", i), "origin", path.Ride.Origin.Name, fmt.Sprintf("%d", path.OriginCandidates), preparePoint(path.Origin),
		})
		if err != nil {
			return err
		}
		err = writerStops.Write([]string{
			fmt.Sprintf("%d", i), "destination", path.Ride.Destination.Name, fmt.Sprintf("%d", path.DestinationCandidates), preparePoint(path.Destination),
		})
		if err != nil {
			return err
		}
	}
	return nil
}
