package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/LdDl/osm2ride"
	"github.com/google/uuid"
)

const (
	maxBodyBytes = 4 << 20
)

// ItineraryReconstructor defines the interface for reconstruction of itinerary paths
type ItineraryReconstructor interface {
	Reconstruct(ctx context.Context, it osm2ride.Itinerary) ([]*osm2ride.ReconstructedPath, error)
}

// PathPublisher forwards reconstructed paths to subscribers
type PathPublisher interface {
	PublishPaths(reconstructionID string, paths []*osm2ride.ReconstructedPath) error
}

// ReconstructionObserver is notified about every finished request
type ReconstructionObserver interface {
	ReconstructionDone(cancelled bool)
}

// ReconstructHandler handles HTTP requests for itinerary reconstruction
type ReconstructHandler struct {
	rc        ItineraryReconstructor
	publisher PathPublisher
	observer  ReconstructionObserver
}

// NewReconstructHandler creates a new handler. Publisher and observer are optional
func NewReconstructHandler(rc ItineraryReconstructor, publisher PathPublisher, observer ReconstructionObserver) *ReconstructHandler {
	return &ReconstructHandler{rc: rc, publisher: publisher, observer: observer}
}

// ErrorResponse is the JSON error response structure
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg string, details map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   msg,
		Details: details,
	})
}

// Reconstruct handles POST /v1/reconstruct
// Body is a trip-planner plan or response with "plans" array (choose one with ?plan=N, default 0).
// Returns GeoJSON FeatureCollection, reconstruction identifier is sent in X-Reconstruction-ID header
func (h *ReconstructHandler) Reconstruct(w http.ResponseWriter, r *http.Request) {
	planIdx := 0
	if v := r.URL.Query().Get("plan"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "Invalid plan index", map[string]interface{}{"plan": v})
			return
		}
		planIdx = n
	}

	plans, err := osm2ride.DecodeItineraries(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid itinerary", map[string]interface{}{"message": err.Error()})
		return
	}
	if planIdx >= len(plans) {
		writeError(w, http.StatusBadRequest, "Plan index out of range", map[string]interface{}{"plan": planIdx, "plans": len(plans)})
		return
	}

	reconstructionID := uuid.NewString()
	st := time.Now()
	paths, err := h.rc.Reconstruct(r.Context(), plans[planIdx])
	if err != nil {
		if h.observer != nil {
			h.observer.ReconstructionDone(true)
		}
		log.Printf("reconstruction %s cancelled: %v", reconstructionID, err)
		writeError(w, http.StatusServiceUnavailable, "Reconstruction cancelled", nil)
		return
	}
	if h.observer != nil {
		h.observer.ReconstructionDone(false)
	}
	log.Printf("reconstruction %s: %d path(s) in %v", reconstructionID, len(paths), time.Since(st))

	if h.publisher != nil {
		if err := h.publisher.PublishPaths(reconstructionID, paths); err != nil {
			log.Printf("reconstruction %s: publish error: %v", reconstructionID, err)
		}
	}

	b, err := osm2ride.PathsFeatureCollection(paths).MarshalJSON()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to encode paths", nil)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.Header().Set("X-Reconstruction-ID", reconstructionID)
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// Health handles GET /health
func Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
	})
}
