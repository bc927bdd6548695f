// Command compile runs the station-to-grid assignment as a one-shot batch
// job: it reads the AQS site registry CSV and the analysis grid JSON, scores
// every valid station against the grid in parallel, and writes the combined
// station → {grid point → distance} mapping as a single JSON document.
//
// Usage:
//
//	go run ./cmd/compile \
//	  -sites aqs_sites.csv \
//	  -grid grid.json \
//	  -out stations.json
package main

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"sync"

	"github.com/couchcryptid/station-grid-etl/internal/domain"
	"github.com/couchcryptid/station-grid-etl/internal/grid"
)

func main() {
	sitesPath := flag.String("sites", "", "path to the AQS site registry CSV")
	gridPath := flag.String("grid", "", "path to the grid JSON file")
	outPath := flag.String("out", "", "output path for the station neighbor JSON")
	workers := flag.Int("workers", runtime.NumCPU(), "number of assignment workers")
	cutoff := flag.Float64("cutoff", domain.DefaultCutoffMiles, "neighbor cutoff radius in miles")
	precision := flag.Int("precision", domain.DefaultDistancePrecision, "decimal places for stored distances")
	flag.Parse()

	if *sitesPath == "" || *gridPath == "" || *outPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if err := run(*sitesPath, *gridPath, *outPath, *workers, *cutoff, *precision); err != nil {
		log.Fatal(err)
	}
}

type stats struct {
	records   int
	stations  int
	rejected  map[domain.RejectReason]int
	failed    int
	duplicate int
}

func run(sitesPath, gridPath, outPath string, workers int, cutoff float64, precision int) error {
	gridPoints, err := grid.Load(gridPath)
	if err != nil {
		return err
	}
	log.Printf("grid: %d points, cutoff %.1f mi", len(gridPoints), cutoff)

	f, err := os.Open(sitesPath)
	if err != nil {
		return fmt.Errorf("open sites file: %w", err)
	}
	defer f.Close()

	st := &stats{rejected: make(map[domain.RejectReason]int)}
	neighbors, err := compile(f, gridPoints, workers, cutoff, precision, st)
	if err != nil {
		return err
	}

	if err := writeJSON(outPath, neighbors); err != nil {
		return err
	}

	log.Printf("records: %d, stations: %d, failed: %d, duplicates: %d",
		st.records, st.stations, st.failed, st.duplicate)
	for reason, n := range st.rejected {
		log.Printf("rejected %s: %d", reason, n)
	}
	log.Printf("wrote %s", outPath)
	return nil
}

// compile validates every record and fans assignment out over a worker pool.
// Validation rejections are tallied; other validation failures are logged and
// counted but do not abort the run. Duplicate station ids keep the first
// record in file order.
func compile(r io.Reader, gridPoints []domain.GridPoint, workers int, cutoff float64, precision int, st *stats) (map[string]map[string]float64, error) {
	if workers < 1 {
		workers = 1
	}

	stations := make(chan domain.Station, workers)
	assignments := make(chan domain.NeighborAssignment, workers)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for station := range stations {
				assignments <- domain.AssignNeighbors(station, gridPoints, cutoff, precision)
			}
		}()
	}
	go func() {
		wg.Wait()
		close(assignments)
	}()

	// Feed the pool from the CSV while collecting results on this goroutine.
	readErr := make(chan error, 1)
	go func() {
		defer close(stations)
		readErr <- feedStations(r, stations, st)
	}()

	out := make(map[string]map[string]float64)
	for a := range assignments {
		out[a.StationID] = a.Neighbors
	}

	if err := <-readErr; err != nil {
		return nil, err
	}
	st.stations = len(out)
	return out, nil
}

// feedStations reads CSV records, validates them, and sends valid stations to
// the pool. Duplicate ids are dropped here, before the pool, so the first
// record in file order wins regardless of worker scheduling. Counts land in
// st; only unreadable input aborts.
func feedStations(r io.Reader, stations chan<- domain.Station, st *stats) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	seen := make(map[string]struct{})

	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read sites csv: %w", err)
		}
		st.records++

		station, err := domain.ValidateRecord(fields)
		if err != nil {
			var rej *domain.RejectionError
			if errors.As(err, &rej) {
				st.rejected[rej.Reason]++
			} else {
				log.Printf("record %d: %v", st.records, err)
				st.failed++
			}
			continue
		}
		if _, ok := seen[station.ID]; ok {
			st.duplicate++
			continue
		}
		seen[station.ID] = struct{}{}
		stations <- station
	}
}

func writeJSON(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
