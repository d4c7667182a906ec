package domain

// Earthquake is one seismic event extracted from the feed. Values are never
// modified after parsing; a new load produces a new slice.
type Earthquake struct {
	Magnitude  float64 `json:"magnitude"`
	Place      string  `json:"place"`
	TimeMillis int64   `json:"time"`       // epoch milliseconds, UTC
	DetailURL  string  `json:"detail_url"` // provider detail page
}

// LoadConfiguration holds the query settings for a single load. It is built
// fresh from the current settings every time a load starts.
type LoadConfiguration struct {
	BaseURL      string
	MinMagnitude string
	OrderBy      string
	Limit        int
	Format       string
}
