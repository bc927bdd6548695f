package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/couchcryptid/station-grid-etl/internal/domain"
	"github.com/couchcryptid/station-grid-etl/internal/observability"
)

// SiteTransformer implements Transformer for raw AQS site records: split the
// CSV line, validate it into a Station, score it against the grid, and
// serialize the neighbor assignment. The grid slice is shared and read-only.
type SiteTransformer struct {
	grid      []domain.GridPoint
	cutoff    float64
	precision int
	metrics   *observability.Metrics
}

// NewTransformer creates a SiteTransformer over the given grid.
func NewTransformer(grid []domain.GridPoint, cutoffMiles float64, precision int, metrics *observability.Metrics) *SiteTransformer {
	return &SiteTransformer{
		grid:      grid,
		cutoff:    cutoffMiles,
		precision: precision,
		metrics:   metrics,
	}
}

func (t *SiteTransformer) Transform(_ context.Context, raw domain.RawEvent) (domain.OutputEvent, error) {
	fields, err := domain.SplitRecord(string(raw.Value))
	if err != nil {
		return domain.OutputEvent{}, err
	}

	station, err := domain.ValidateRecord(fields)
	if err != nil {
		return domain.OutputEvent{}, err
	}

	assignment := domain.AssignNeighbors(station, t.grid, t.cutoff, t.precision)
	assignment.ProcessedAt = domain.Now()
	t.metrics.NeighborsPerStation.Observe(float64(len(assignment.Neighbors)))

	value, err := json.Marshal(assignment)
	if err != nil {
		return domain.OutputEvent{}, fmt.Errorf("serialize assignment for %s: %w", station.ID, err)
	}

	// Keyed by station id so a compacted sink topic keeps one assignment per
	// station across registry reprocessing.
	return domain.OutputEvent{
		Key:   []byte(station.ID),
		Value: value,
		Headers: map[string]string{
			"station_id":   station.ID,
			"processed_at": assignment.ProcessedAt.Format(time.RFC3339),
		},
	}, nil
}
