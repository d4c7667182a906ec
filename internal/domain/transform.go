package domain

import (
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	// LocationSeparator splits a USGS place into offset and primary location.
	LocationSeparator = " of "

	// NearPrefix is the offset shown when a place has no separator.
	NearPrefix = "Near the"

	dateLayout = "Jan 02, 2006"
	timeLayout = "3:04 PM"
)

// MagnitudeCategory is the display bucket for a magnitude: 1 covers every
// value below 2, 10 covers every value of 10 or more.
type MagnitudeCategory int

const (
	MinCategory MagnitudeCategory = 1
	MaxCategory MagnitudeCategory = 10
)

var categoryColors = [...]string{
	MinCategory: "#4A7BA7",
	2:           "#04B4B3",
	3:           "#10CAC9",
	4:           "#F5A623",
	5:           "#FF7D50",
	6:           "#FC6644",
	7:           "#E75F40",
	8:           "#E13A20",
	9:           "#D93218",
	MaxCategory: "#C03823",
}

// MagnitudeCategoryOf floors mag into its display bucket. NaN falls into the
// lowest bucket.
func MagnitudeCategoryOf(mag float64) MagnitudeCategory {
	floor := math.Floor(mag)
	switch {
	case math.IsNaN(floor) || floor <= float64(MinCategory):
		return MinCategory
	case floor >= float64(MaxCategory):
		return MaxCategory
	default:
		return MagnitudeCategory(floor)
	}
}

// Color returns the bucket's hex color.
func (c MagnitudeCategory) Color() string {
	if c < MinCategory {
		c = MinCategory
	}
	if c > MaxCategory {
		c = MaxCategory
	}
	return categoryColors[c]
}

func (c MagnitudeCategory) String() string {
	switch c {
	case MinCategory:
		return "<=1"
	case MaxCategory:
		return ">=10"
	default:
		return strconv.Itoa(int(c))
	}
}

// SplitLocation splits place on the first LocationSeparator, keeping the
// separator on the offset. Places without one get NearPrefix as offset.
func SplitLocation(place string) (offset, primary string) {
	before, after, found := strings.Cut(place, LocationSeparator)
	if !found {
		return NearPrefix, place
	}
	return before + LocationSeparator, after
}

// FormatDate renders epoch millis as e.g. "Jan 02, 2006" in loc. A nil loc
// means time.Local.
func FormatDate(millis int64, loc *time.Location) string {
	return eventTime(millis, loc).Format(dateLayout)
}

// FormatTime renders epoch millis as a 12-hour clock, e.g. "3:04 PM", in loc.
// A nil loc means time.Local.
func FormatTime(millis int64, loc *time.Location) string {
	return eventTime(millis, loc).Format(timeLayout)
}

func eventTime(millis int64, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.UnixMilli(millis).In(loc)
}

// FormatMagnitude renders mag with exactly one decimal place.
func FormatMagnitude(mag float64) string {
	s := strconv.FormatFloat(mag, 'f', 1, 64)
	if s == "-0.0" {
		return "0.0"
	}
	return s
}

// DisplayRow holds the rendered values for one earthquake.
type DisplayRow struct {
	Magnitude       string            `json:"magnitude"`
	Category        MagnitudeCategory `json:"category"`
	Color           string            `json:"color"`
	LocationOffset  string            `json:"location_offset"`
	PrimaryLocation string            `json:"primary_location"`
	Date            string            `json:"date"`
	Time            string            `json:"time"`
	DetailURL       string            `json:"detail_url"`
}

// Render applies every display transform to q.
func Render(q Earthquake, loc *time.Location) DisplayRow {
	category := MagnitudeCategoryOf(q.Magnitude)
	offset, primary := SplitLocation(q.Place)
	return DisplayRow{
		Magnitude:       FormatMagnitude(q.Magnitude),
		Category:        category,
		Color:           category.Color(),
		LocationOffset:  offset,
		PrimaryLocation: primary,
		Date:            FormatDate(q.TimeMillis, loc),
		Time:            FormatTime(q.TimeMillis, loc),
		DetailURL:       q.DetailURL,
	}
}
