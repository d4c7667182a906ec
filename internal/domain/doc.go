// Package domain models USGS earthquake feed data and the display values
// derived from it.
//
// # Data Source
//
// Events come from the USGS FDSN event web service
// (https://earthquake.usgs.gov/fdsnws/event/1/query) queried with
// format=geojson. The response is a GeoJSON FeatureCollection; only the
// "properties" member of each feature is read:
//
//	{"features":[{"properties":{"mag":6.7,"place":"5km NW of Example City",
//	  "time":1454124312220,"url":"https://earthquake.usgs.gov/..."}}]}
//
// Field rules:
//
//	mag    required, JSON number
//	place  optional, defaults to ""
//	time   required, JSON integer, epoch milliseconds UTC
//	url    required, JSON string
//
// # Parse Failure Policy
//
// Parsing stops at the first structural problem. Records built from earlier
// features are kept and returned with the error; later features are dropped
// even if they are well formed. See [ParseFeed].
//
// # Place Strings
//
// USGS places usually read "<distance> <compass> of <primary location>", e.g.
// "5km NW of Example City". [SplitLocation] splits on the first " of " and
// keeps the separator on the offset half. Places without it (e.g. "Pacific-
// Antarctic Ridge") get the [NearPrefix] offset.
//
// # Magnitude Categories
//
// Magnitudes are floored into ten buckets: ≤1 (including negative values),
// 2 through 9, and ≥10. Each bucket has a fixed display color.
package domain
