package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const (
	testPlaceWithOffset = "5km NW of Example City"
	testPrimary         = "Example City"
)

func TestMagnitudeCategoryOf(t *testing.T) {
	tests := []struct {
		name     string
		mag      float64
		expected MagnitudeCategory
	}{
		{"negative", -0.5, 1},
		{"zero", 0, 1},
		{"one", 1.0, 1},
		{"just under two", 1.9, 1},
		{"two", 2.0, 2},
		{"four point nine", 4.9, 4},
		{"six point seven", 6.7, 6},
		{"nine point nine", 9.99, 9},
		{"ten", 10.0, 10},
		{"above ten", 10.2, 10},
		{"positive infinity", math.Inf(1), 10},
		{"negative infinity", math.Inf(-1), 1},
		{"NaN", math.NaN(), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MagnitudeCategoryOf(tt.mag))
		})
	}
}

func TestMagnitudeCategory_Boundaries(t *testing.T) {
	assert.Equal(t, MagnitudeCategoryOf(1.9), MagnitudeCategoryOf(1.0))
	assert.NotEqual(t, MagnitudeCategoryOf(9.5), MagnitudeCategoryOf(10.2))
}

func TestMagnitudeCategory_Color(t *testing.T) {
	seen := map[string]MagnitudeCategory{}
	for c := MinCategory; c <= MaxCategory; c++ {
		color := c.Color()
		assert.Regexp(t, `^#[0-9A-F]{6}$`, color)
		if prev, dup := seen[color]; dup {
			t.Fatalf("categories %d and %d share color %s", prev, c, color)
		}
		seen[color] = c
	}

	assert.Equal(t, MinCategory.Color(), MagnitudeCategory(-3).Color())
	assert.Equal(t, MaxCategory.Color(), MagnitudeCategory(42).Color())
	assert.Equal(t, "<=1", MinCategory.String())
	assert.Equal(t, ">=10", MaxCategory.String())
	assert.Equal(t, "7", MagnitudeCategory(7).String())
}

func TestSplitLocation(t *testing.T) {
	tests := []struct {
		name    string
		place   string
		offset  string
		primary string
	}{
		{"with offset", testPlaceWithOffset, "5km NW of ", testPrimary},
		{"no separator", testPrimary, NearPrefix, testPrimary},
		{"empty", "", NearPrefix, ""},
		{"first separator only", "10km S of Isle of Man", "10km S of ", "Isle of Man"},
		{"separator needs spaces", "Southof Nowhere", NearPrefix, "Southof Nowhere"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offset, primary := SplitLocation(tt.place)
			assert.Equal(t, tt.offset, offset)
			assert.Equal(t, tt.primary, primary)
		})
	}
}

func TestFormatDateAndTime(t *testing.T) {
	millis := time.Date(2016, time.January, 30, 3, 25, 12, 0, time.UTC).UnixMilli()

	assert.Equal(t, "Jan 30, 2016", FormatDate(millis, time.UTC))
	assert.Equal(t, "3:25 AM", FormatTime(millis, time.UTC))

	tokyo := time.FixedZone("JST", 9*60*60)
	assert.Equal(t, "Jan 30, 2016", FormatDate(millis, tokyo))
	assert.Equal(t, "12:25 PM", FormatTime(millis, tokyo))

	losAngeles := time.FixedZone("PST", -8*60*60)
	assert.Equal(t, "Jan 29, 2016", FormatDate(millis, losAngeles))
	assert.Equal(t, "7:25 PM", FormatTime(millis, losAngeles))
}

func TestFormatDate_NilLocationUsesLocal(t *testing.T) {
	millis := int64(1454124312220)
	assert.Equal(t, time.UnixMilli(millis).In(time.Local).Format("Jan 02, 2006"), FormatDate(millis, nil))
	assert.Equal(t, time.UnixMilli(millis).In(time.Local).Format("3:04 PM"), FormatTime(millis, nil))
}

func TestFormatMagnitude(t *testing.T) {
	tests := []struct {
		mag      float64
		expected string
	}{
		{6.7, "6.7"},
		{6.73, "6.7"},
		{0, "0.0"},
		{7, "7.0"},
		{-0.04, "0.0"},
		{-1.25, "-1.2"},
		{10.25, "10.2"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatMagnitude(tt.mag))
		})
	}
}

func TestRender(t *testing.T) {
	q := Earthquake{
		Magnitude:  7.2,
		Place:      "88km N of Yelizovo, Russia",
		TimeMillis: time.Date(2016, time.January, 30, 3, 25, 12, 0, time.UTC).UnixMilli(),
		DetailURL:  "https://earthquake.usgs.gov/earthquakes/eventpage/us20004vvx",
	}

	row := Render(q, time.UTC)

	assert.Equal(t, DisplayRow{
		Magnitude:       "7.2",
		Category:        7,
		Color:           "#E75F40",
		LocationOffset:  "88km N of ",
		PrimaryLocation: "Yelizovo, Russia",
		Date:            "Jan 30, 2016",
		Time:            "3:25 AM",
		DetailURL:       q.DetailURL,
	}, row)
}
