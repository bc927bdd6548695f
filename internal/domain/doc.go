// Package domain models EPA Air Quality System (AQS) monitoring sites and
// their assignment to analysis grid points.
//
// # Data Source
//
// Site records originate from the EPA AQS site registry (aqs_sites.csv),
// available at https://aqs.epa.gov/aqsweb/airdata/aqs_sites.zip. The upstream
// collector service downloads the registry and publishes each raw CSV line
// (header included) as one message to the Kafka source topic. Filtering
// happens here, during validation.
//
// # AQS Data Conventions
//
// Column layout (1-indexed, ≥11 columns expected):
//
//	1  State Code    two-character FIPS state code, or a territory code
//	2  County Code   three-digit county FIPS code
//	3  Site Number   four-digit site number, unique within the county
//	4  Latitude      decimal degrees; 0 means unrecorded, not the equator
//	5  Longitude     decimal degrees; 0 means unrecorded, not the meridian
//	6  Datum         geodetic datum of the coordinates
//	11 Site Closed Date   YYYY-MM-DD, empty while the site is open
//
// Territory codes excluded from analysis: "CC" (Canada), "80" (Mexico),
// "78" (US Virgin Islands), "66" (Guam). The header row identifies itself by
// the literal first field "State Code" and is excluded the same way.
//
// Datums:
//
//	Only WGS84 and NAD83 coordinates are comparable against the modern grid.
//	Legacy datums (NAD27 and older), "UNKNOWN", and empty values are rejected
//	rather than converted; the registry republishes corrected rows over time.
//
// Closure dates:
//
//	Sites closed before January 1, 1980 predate the analysis window and are
//	rejected. A non-empty closure date that does not parse as YYYY-MM-DD
//	fails the record with an error rather than a rejection, so bad registry
//	exports surface in logs instead of silently shrinking the station set.
//
// # ID Construction
//
// A station id joins state, county, and site codes with "|", e.g.
// "06|037|0002" for a Los Angeles County monitor. The pipe never appears in
// the source fields, so the id splits back losslessly. See [Station].
//
// # Neighbor Assignment
//
// Each validated station is scored against every grid point with the
// haversine great-circle distance (Earth radius 3959 miles). Grid points
// strictly closer than the cutoff (default 30 miles) become neighbors, with
// the distance rounded to one decimal place. Assignment is a pure function of
// the station and the grid, so stations can be processed on any number of
// workers with no coordination. See [AssignNeighbors].
package domain
