package publisher

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/LdDl/osm2ride"
	"github.com/nats-io/nats.go"
)

type NATSPublisher struct {
	nc          *nats.Conn
	prefix      string
	logSubjects bool
	metrics     PublisherMetrics
}

type PublisherMetrics interface {
	NATSPublishedInc()
	NATSPublishErrInc()
	PublishObserve(d time.Duration)
	NATSSetConnected(connected bool)
}

func NewNATSPublisher(url, prefix string, logSubjects bool, m PublisherMetrics) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("osm2ride"),
		nats.DisconnectHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(false)
			}
			log.Printf("nats disconnected")
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(true)
			}
			log.Printf("nats reconnected")
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(false)
			}
			log.Printf("nats closed")
		}),
	)
	if err != nil {
		return nil, err
	}
	if m != nil {
		m.NATSSetConnected(true)
	}
	return &NATSPublisher{nc: nc, prefix: prefix, logSubjects: logSubjects, metrics: m}, nil
}

func (p *NATSPublisher) Close() {
	if p.nc != nil {
		p.nc.Drain()
		p.nc.Close()
	}
}

type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// PathMessage is JSON payload for single reconstructed ride path
type PathMessage struct {
	ReconstructionID string       `json:"reconstructionId"`
	Index            int          `json:"index"`
	Color            string       `json:"color"`
	VehicleID        string       `json:"vehicleId"`
	OriginStop       string       `json:"originStop"`
	DestinationStop  string       `json:"destinationStop"`
	Departure        string       `json:"departure,omitempty"`
	Arrival          string       `json:"arrival,omitempty"`
	Origin           Coordinate   `json:"origin"`
	Destination      Coordinate   `json:"destination"`
	Points           []Coordinate `json:"points"`
	Outcome          string       `json:"outcome"`
	RelationID       int64        `json:"relationId,omitempty"`
	Error            string       `json:"error,omitempty"`
	Timestamp        time.Time    `json:"timestamp"`
}

// NewPathMessage converts path at given position to message
func NewPathMessage(reconstructionID string, idx int, path *osm2ride.ReconstructedPath) PathMessage {
	msg := PathMessage{
		ReconstructionID: reconstructionID,
		Index:            idx,
		Color:            osm2ride.ColorForIndex(idx),
		VehicleID:        path.Ride.VehicleID,
		OriginStop:       path.Ride.Origin.Name,
		DestinationStop:  path.Ride.Destination.Name,
		Departure:        path.Ride.Times.Start,
		Arrival:          path.Ride.Times.End,
		Origin:           Coordinate{Lat: path.Origin.Lat, Lon: path.Origin.Lon},
		Destination:      Coordinate{Lat: path.Destination.Lat, Lon: path.Destination.Lon},
		Points:           make([]Coordinate, len(path.Points)),
		Outcome:          path.Outcome.String(),
		RelationID:       int64(path.RelationID),
		Timestamp:        time.Now().UTC(),
	}
	for i, pt := range path.Points {
		msg.Points[i] = Coordinate{Lat: pt.Lat, Lon: pt.Lon}
	}
	if path.Err != nil {
		msg.Error = path.Err.Error()
	}
	return msg
}

// Subject returns "<prefix>.<reconstructionID>.<index>"
func (p *NATSPublisher) Subject(reconstructionID string, idx int) string {
	return Subject(p.prefix, reconstructionID, idx)
}

func Subject(prefix, reconstructionID string, idx int) string {
	return fmt.Sprintf("%s.%s.%d", subjectToken(prefix), subjectToken(reconstructionID), idx)
}

// PublishPaths publishes every path of reconstruction. Stops on first error
func (p *NATSPublisher) PublishPaths(reconstructionID string, paths []*osm2ride.ReconstructedPath) error {
	for i, path := range paths {
		if err := p.PublishPath(reconstructionID, i, path); err != nil {
			return err
		}
	}
	return nil
}

func (p *NATSPublisher) PublishPath(reconstructionID string, idx int, path *osm2ride.ReconstructedPath) error {
	subject := p.Subject(reconstructionID, idx)
	b, err := json.Marshal(NewPathMessage(reconstructionID, idx, path))
	if err != nil {
		return err
	}
	if p.logSubjects {
		log.Printf("nats publish subject=%s", subject)
	}
	start := time.Now()
	err = p.nc.Publish(subject, b)
	if p.metrics != nil {
		p.metrics.PublishObserve(time.Since(start))
		if err != nil {
			p.metrics.NATSPublishErrInc()
		} else {
			p.metrics.NATSPublishedInc()
		}
	}
	return err
}

func subjectToken(s string) string {
	s = strings.TrimSpace(s)
	// NATS token cannot contain spaces, '>', '*', or trailing '.'
	repl := strings.NewReplacer(" ", "_", ".", "_", ">", "_", "*", "_", "/", "_", "\t", "_")
	s = repl.Replace(s)
	if s == "" {
		s = "_"
	}
	return s
}
