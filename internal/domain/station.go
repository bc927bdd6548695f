package domain

import (
	"context"
	"time"
)

// IDSeparator joins the state, county, and site fields into a station id.
// It does not occur in any AQS source field.
const IDSeparator = "|"

// Station is a validated AQS monitoring site. Immutable once produced by
// ValidateRecord: both coordinates are finite and non-zero.
type Station struct {
	ID  string  `json:"id"`
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// GridPoint is one point of the static analysis grid. The grid is loaded once
// at startup and never mutated, so a single slice is shared by all workers.
type GridPoint struct {
	ID  string  `json:"id"`
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// NeighborAssignment maps one station to every grid point within the cutoff
// radius, with great-circle distances in miles. Neighbors is never nil: a
// station with no grid point in range still produces an assignment with an
// empty map.
type NeighborAssignment struct {
	StationID   string             `json:"station_id"`
	Neighbors   map[string]float64 `json:"neighbors"`
	ProcessedAt time.Time          `json:"processed_at,omitzero"`
}

// RawEvent represents an unprocessed message from the source topic. Value
// holds one raw CSV line of the site registry.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// OutputEvent is the serialized form destined for the sink topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}
