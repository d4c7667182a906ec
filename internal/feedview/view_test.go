package feedview

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/quake-feed-service/internal/domain"
	"github.com/couchcryptid/quake-feed-service/internal/loader"
)

func testView() *View {
	return New(time.UTC, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func sampleDelivery(generation uint64) loader.Delivery {
	return loader.Delivery{
		Generation: generation,
		CycleID:    "cycle-1",
		Earthquakes: []domain.Earthquake{
			{Magnitude: 6.7, Place: "5km NW of Example City", TimeMillis: 0, DetailURL: "https://example.test/q1"},
		},
		CompletedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestView_OnDeliveredRendersRows(t *testing.T) {
	v := testView()
	v.SetLoading(true)

	v.OnDelivered(sampleDelivery(0))

	snap := v.Snapshot()
	want := []domain.DisplayRow{{
		Magnitude:       "6.7",
		Category:        6,
		Color:           domain.MagnitudeCategory(6).Color(),
		LocationOffset:  "5km NW of ",
		PrimaryLocation: "Example City",
		Date:            "Jan 01, 1970",
		Time:            "12:00 AM",
		DetailURL:       "https://example.test/q1",
	}}
	if diff := cmp.Diff(want, snap.Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
	assert.False(t, snap.Loading)
	assert.Empty(t, snap.Message)
	assert.Equal(t, "cycle-1", snap.CycleID)
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), snap.UpdatedAt)
}

func TestView_EmptyDeliveryShowsMessage(t *testing.T) {
	for _, tc := range []struct {
		name   string
		quakes []domain.Earthquake
	}{
		{"nil", nil},
		{"empty", []domain.Earthquake{}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			v := testView()
			v.OnDelivered(sampleDelivery(0))
			v.OnDelivered(loader.Delivery{Earthquakes: tc.quakes})

			snap := v.Snapshot()
			assert.Empty(t, snap.Rows, "previous rows are cleared")
			assert.Equal(t, EmptyMessage, snap.Message)
		})
	}
}

func TestView_DeliveryReplacesRows(t *testing.T) {
	v := testView()
	v.OnDelivered(sampleDelivery(0))

	next := sampleDelivery(0)
	next.Earthquakes = []domain.Earthquake{
		{Magnitude: 2.1, Place: "Somewhere", DetailURL: "u2"},
		{Magnitude: 3.3, Place: "Elsewhere", DetailURL: "u3"},
	}
	v.OnDelivered(next)

	rows := v.Snapshot().Rows
	require.Len(t, rows, 2)
	assert.Equal(t, "u2", rows[0].DetailURL)
	assert.Equal(t, domain.NearPrefix, rows[0].LocationOffset)
}

func TestView_InvalidationClearsAndRejectsStale(t *testing.T) {
	v := testView()
	v.OnDelivered(sampleDelivery(0))

	v.OnInvalidated(1)
	snap := v.Snapshot()
	assert.Empty(t, snap.Rows)
	assert.Equal(t, uint64(1), snap.Generation)

	v.OnDelivered(sampleDelivery(0))
	assert.Empty(t, v.Snapshot().Rows, "delivery from an invalidated generation is ignored")

	v.OnDelivered(sampleDelivery(1))
	assert.Len(t, v.Snapshot().Rows, 1)
}

func TestView_ShowOffline(t *testing.T) {
	v := testView()
	v.OnDelivered(sampleDelivery(0))
	v.SetLoading(true)

	v.ShowOffline()

	snap := v.Snapshot()
	assert.Empty(t, snap.Rows)
	assert.False(t, snap.Loading)
	assert.Equal(t, OfflineMessage, snap.Message)
}

func TestView_SnapshotIsCopy(t *testing.T) {
	v := testView()
	v.OnDelivered(sampleDelivery(0))

	snap := v.Snapshot()
	snap.Rows[0].Magnitude = "mutated"

	assert.Equal(t, "6.7", v.Snapshot().Rows[0].Magnitude)
}

func TestView_CheckReadiness(t *testing.T) {
	v := testView()
	require.Error(t, v.CheckReadiness(context.Background()))

	v.OnDelivered(loader.Delivery{})
	require.NoError(t, v.CheckReadiness(context.Background()))
}

func TestNew_NilLocationUsesLocal(t *testing.T) {
	v := New(nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Equal(t, time.Local, v.loc)
}
