// Package domain models the US Accidents dataset and the aggregates computed
// over it.
//
// # Data Source
//
// Records come from the "US Accidents (2016 - 2023)" CSV export
// (US_Accidents_March23.csv), roughly 7.7M rows and 46 columns. Only the 27
// columns listed in [Columns] are projected; everything else is ignored when
// the header is resolved.
//
// # Field Conventions
//
// Start time:
//
//	"2016-02-08 05:46:00", occasionally with a fractional second
//	("2016-02-08 05:46:00.000000000") or an ISO "T" separator.
//	The clock time is local to the accident and is used as written; the
//	Timezone column is not applied. See [parseStartTime].
//
// Severity:
//
//	Integer 1-4, where 1 has the least impact on traffic. Empty means unknown
//	and is stored as 0.
//
// Coordinates:
//
//	Start_Lat / Start_Lng in WGS-84 decimal degrees. Rows without coordinates
//	are still counted but never enter the hotspot sample.
//
// Road features:
//
//	Ten boolean POI annotations (Amenity, Bump, Crossing, ...), serialized as
//	"True"/"False". They mark a feature within the accident's vicinity.
//
// # Aggregation
//
// Each chunk of rows reduces into an [Aggregates] value: an hour x weekday
// matrix, weather-condition value counts, road-feature sums, and a random
// lat/lon/severity sample. Aggregates merge by summation, so chunks can be
// folded in any order. A chunk is merged only if every record in it parsed;
// a bad record rejects the whole chunk.
package domain
