package domain

import (
	"encoding/csv"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// RejectReason identifies which validation rule rejected a record. Reasons
// are stable strings so they can double as metric label values.
type RejectReason string

const (
	ReasonExcludedRegion   RejectReason = "excluded_region"
	ReasonShortRecord      RejectReason = "short_record"
	ReasonInvalidLatitude  RejectReason = "invalid_latitude"
	ReasonInvalidLongitude RejectReason = "invalid_longitude"
	ReasonLegacyDatum      RejectReason = "legacy_datum"
	ReasonClosedTooLong    RejectReason = "closed_too_long"
)

// RejectionError signals that a record was filtered out by a validation rule.
// Rejections are expected and frequent; callers skip the record and continue.
// Anything else returned by ValidateRecord is a genuine per-record failure.
type RejectionError struct {
	Reason RejectReason
	Field  string // offending field value, for diagnostics
}

func (e *RejectionError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("record rejected: %s", e.Reason)
	}
	return fmt.Sprintf("record rejected: %s (%q)", e.Reason, e.Field)
}

func reject(reason RejectReason, field string) error {
	return &RejectionError{Reason: reason, Field: field}
}

// Field indexes into an AQS site record (0-based).
const (
	fieldState     = 0
	fieldCounty    = 1
	fieldSite      = 2
	fieldLatitude  = 3
	fieldLongitude = 4
	fieldDatum     = 5
	fieldClosed    = 10

	minRecordFields = 11
)

// excludedRegions holds first-field values that disqualify a record outright:
// the header row's own label plus the non-CONUS territory codes.
var excludedRegions = map[string]bool{
	"State Code": true, // header row
	"CC":         true, // Canada
	"80":         true, // Mexico
	"78":         true, // US Virgin Islands
	"66":         true, // Guam
}

// acceptedDatums are the geodetic datums comparable against the grid.
var acceptedDatums = map[string]bool{
	"WGS84": true,
	"NAD83": true,
}

// closureCutoff is the earliest closure date still considered relevant.
// Sites closed strictly before this are dropped.
var closureCutoff = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

const closureDateLayout = "2006-01-02"

// SplitRecord splits one raw registry line into fields, honoring RFC 4180
// quoting (site names may contain commas).
func SplitRecord(line string) ([]string, error) {
	r := csv.NewReader(strings.NewReader(line))
	r.FieldsPerRecord = -1
	fields, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("split record: %w", err)
	}
	return fields, nil
}

// ValidateRecord applies the AQS filtering rules to one split record and
// returns the canonical Station. Rules run in order and the first match wins:
//
//  1. excluded region or header row
//  2. too few fields to evaluate the remaining rules
//  3. latitude and longitude must parse as finite non-zero floats
//  4. datum must be WGS84 or NAD83
//  5. a non-empty closure date must be on or after 1980-01-01
//
// Rule hits come back as *RejectionError. A non-empty closure date that does
// not parse is a plain error: fail loud, not a quiet filter.
func ValidateRecord(fields []string) (Station, error) {
	if len(fields) == 0 {
		return Station{}, reject(ReasonShortRecord, "")
	}
	if excludedRegions[fields[fieldState]] {
		return Station{}, reject(ReasonExcludedRegion, fields[fieldState])
	}
	if len(fields) < minRecordFields {
		return Station{}, reject(ReasonShortRecord, strconv.Itoa(len(fields)))
	}

	id := strings.Join([]string{
		fields[fieldState],
		fields[fieldCounty],
		fields[fieldSite],
	}, IDSeparator)

	lat, ok := nonzeroFloat(fields[fieldLatitude])
	if !ok {
		return Station{}, reject(ReasonInvalidLatitude, fields[fieldLatitude])
	}
	lon, ok := nonzeroFloat(fields[fieldLongitude])
	if !ok {
		return Station{}, reject(ReasonInvalidLongitude, fields[fieldLongitude])
	}

	if !acceptedDatums[fields[fieldDatum]] {
		return Station{}, reject(ReasonLegacyDatum, fields[fieldDatum])
	}

	if closed := strings.TrimSpace(fields[fieldClosed]); closed != "" {
		closedDate, err := time.Parse(closureDateLayout, closed)
		if err != nil {
			return Station{}, fmt.Errorf("parse closure date %q: %w", closed, err)
		}
		if closedDate.Before(closureCutoff) {
			return Station{}, reject(ReasonClosedTooLong, closed)
		}
	}

	return Station{ID: id, Lat: lat, Lon: lon}, nil
}

// nonzeroFloat parses a coordinate field. Zero and non-finite values report
// false: AQS writes 0 for coordinates it never recorded.
func nonzeroFloat(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v == 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}
