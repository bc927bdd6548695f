// Command genmock generates deterministic mock fixtures for local runs and
// integration tests: an AQS-style site registry CSV (including the header
// row, excluded territories, zero coordinates, legacy datums, and pre-1980
// closures) and a rectangular grid JSON lattice.
//
// Usage:
//
//	go run ./cmd/genmock -out-dir data/mock -sites 200 -grid-rows 12 -grid-cols 12
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/couchcryptid/station-grid-etl/internal/domain"
)

// Fixed seed so regenerated fixtures diff cleanly.
const seed = 20260426

// Mock stations and grid both live in a box over the southwestern US.
const (
	boxLatMin = 32.0
	boxLatMax = 37.0
	boxLonMin = -120.0
	boxLonMax = -114.0
)

func main() {
	outDir := flag.String("out-dir", "data/mock", "output directory for fixtures")
	sites := flag.Int("sites", 200, "number of site rows to generate")
	gridRows := flag.Int("grid-rows", 12, "grid lattice rows")
	gridCols := flag.Int("grid-cols", 12, "grid lattice columns")
	flag.Parse()

	if err := run(*outDir, *sites, *gridRows, *gridCols); err != nil {
		log.Fatal(err)
	}
}

func run(outDir string, sites, gridRows, gridCols int) error {
	if sites < 1 || gridRows < 2 || gridCols < 2 {
		return fmt.Errorf("need at least 1 site and a 2x2 grid, got %d sites, %dx%d grid", sites, gridRows, gridCols)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	rng := rand.New(rand.NewSource(seed))

	sitesPath := filepath.Join(outDir, "aqs_sites.csv")
	if err := writeSitesCSV(sitesPath, sites, rng); err != nil {
		return err
	}
	log.Printf("wrote %s (%d rows + header)", sitesPath, sites)

	gridPath := filepath.Join(outDir, "grid.json")
	points := makeGrid(gridRows, gridCols)
	if err := writeGridJSON(gridPath, points); err != nil {
		return err
	}
	log.Printf("wrote %s (%d points)", gridPath, len(points))
	return nil
}

var header = []string{
	"State Code", "County Code", "Site Number", "Latitude", "Longitude",
	"Datum", "Elevation", "Land Use", "Location Setting",
	"Site Established Date", "Site Closed Date",
}

// writeSitesCSV emits mostly valid rows with a sprinkling of every rejection
// case, in roughly the proportions the real registry shows.
func writeSitesCSV(path string, n int, rng *rand.Rand) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create sites csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}

	states := []string{"04", "06", "32", "35", "48"}
	landUses := []string{"RESIDENTIAL", "COMMERCIAL", "INDUSTRIAL", "AGRICULTURAL", "DESERT"}
	settings := []string{"URBAN", "SUBURBAN", "RURAL"}

	for i := range n {
		row := []string{
			states[rng.Intn(len(states))],
			fmt.Sprintf("%03d", rng.Intn(200)),
			fmt.Sprintf("%04d", i),
			fmt.Sprintf("%.4f", boxLatMin+rng.Float64()*(boxLatMax-boxLatMin)),
			fmt.Sprintf("%.4f", boxLonMin+rng.Float64()*(boxLonMax-boxLonMin)),
			"NAD83",
			fmt.Sprintf("%d", rng.Intn(2000)),
			landUses[rng.Intn(len(landUses))],
			settings[rng.Intn(len(settings))],
			fmt.Sprintf("%d-%02d-01", 1980+rng.Intn(40), 1+rng.Intn(12)),
			"",
		}

		// Roughly one row in ten exercises a rejection rule.
		switch rng.Intn(50) {
		case 0:
			row[0] = "CC" // Canada
		case 1:
			row[0] = "80" // Mexico
		case 2:
			row[3] = "0" // unrecorded latitude
		case 3:
			row[4] = "0" // unrecorded longitude
		case 4:
			row[5] = "NAD27"
		case 5:
			row[10] = fmt.Sprintf("%d-06-01", 1960+rng.Intn(20)) // closed before 1980
		case 6:
			row[5] = "WGS84" // valid, just the other accepted datum
		case 7:
			row[10] = fmt.Sprintf("%d-06-01", 1985+rng.Intn(30)) // closed, but recent
		}

		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// makeGrid lays out an evenly spaced lattice over the mock bounding box.
func makeGrid(rows, cols int) []domain.GridPoint {
	points := make([]domain.GridPoint, 0, rows*cols)
	for r := range rows {
		for c := range cols {
			points = append(points, domain.GridPoint{
				ID:  fmt.Sprintf("g-%d-%d", r, c),
				Lat: boxLatMin + (boxLatMax-boxLatMin)*float64(r)/float64(rows-1),
				Lon: boxLonMin + (boxLonMax-boxLonMin)*float64(c)/float64(cols-1),
			})
		}
	}
	return points
}

func writeGridJSON(path string, points []domain.GridPoint) error {
	data, err := json.Marshal(points)
	if err != nil {
		return fmt.Errorf("encode grid: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write grid: %w", err)
	}
	return nil
}
