package usgs

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/couchcryptid/quake-feed-service/internal/domain"
)

const (
	// DefaultLimit is the number of events requested per load.
	DefaultLimit = 10
	// DefaultFormat is the only feed format the parser understands.
	DefaultFormat = "geojson"
)

// BuildQueryURL adds the feed query parameters to base, keeping any query
// and fragment base already has. Values are URL-encoded; base itself is not
// validated, so a bad base surfaces when the request is made. An empty base
// yields an empty URL.
func BuildQueryURL(base string, cfg domain.LoadConfiguration) string {
	if strings.TrimSpace(base) == "" {
		return ""
	}

	limit := cfg.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	format := cfg.Format
	if format == "" {
		format = DefaultFormat
	}

	// url.Values.Encode sorts keys, which gives format, limit, minmag, orderby.
	params := url.Values{
		"format":  {format},
		"limit":   {strconv.Itoa(limit)},
		"minmag":  {cfg.MinMagnitude},
		"orderby": {cfg.OrderBy},
	}

	query := params.Encode()
	if u, err := url.Parse(base); err == nil {
		if existing := strings.TrimSuffix(u.RawQuery, "&"); existing != "" {
			query = existing + "&" + query
		}
		u.RawQuery = query
		return u.String()
	}

	// Unparseable bases are passed through for the fetcher to reject.
	sep := "?"
	switch {
	case strings.HasSuffix(base, "?"), strings.HasSuffix(base, "&"):
		sep = ""
	case strings.Contains(base, "?"):
		sep = "&"
	}
	return base + sep + query
}
