// Command quakecheck runs a single feed load and prints the formatted rows.
// It exercises the fetch, parse, and render path without the HTTP server.
//
// Usage:
//
//	go run ./cmd/quakecheck -minmag 4.5 -orderby time -tz America/Los_Angeles
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/couchcryptid/quake-feed-service/internal/adapter/usgs"
	"github.com/couchcryptid/quake-feed-service/internal/config"
	"github.com/couchcryptid/quake-feed-service/internal/domain"
	"github.com/couchcryptid/quake-feed-service/internal/feedview"
	"github.com/couchcryptid/quake-feed-service/internal/loader"
	"github.com/couchcryptid/quake-feed-service/internal/observability"
	"github.com/couchcryptid/quake-feed-service/internal/settings"
)

// loadTimeout covers the worst case of both fetch timeouts plus slack.
const loadTimeout = usgs.DefaultConnectTimeout + usgs.DefaultReadTimeout + 5*time.Second

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("quakecheck", flag.ContinueOnError)
	fs.SetOutput(stderr)
	minMag := fs.String("minmag", settings.DefaultMinMagnitude, "minimum magnitude")
	orderBy := fs.String("orderby", settings.DefaultOrderBy, "ordering: time, time-asc, magnitude, magnitude-asc")
	feedURL := fs.String("url", config.DefaultFeedURL, "feed query endpoint")
	tz := fs.String("tz", "Local", "timezone for dates and times")
	limit := fs.Int("limit", usgs.DefaultLimit, "maximum number of events")
	logLevel := fs.String("log-level", "warn", "log level")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	loc, err := time.LoadLocation(*tz)
	if err != nil {
		fmt.Fprintf(stderr, "invalid -tz %q: %v\n", *tz, err)
		return 2
	}
	store := settings.NewStore(*feedURL, *limit)
	if err := store.SetAll(map[string]string{
		settings.KeyMinMagnitude: *minMag,
		settings.KeyOrderBy:      *orderBy,
	}); err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	logger := observability.NewTextLogger(stderr, *logLevel)
	metrics := observability.NewUnregisteredMetrics()

	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()

	dispatch := loader.NewDispatcher(4)
	go dispatch.Run(ctx)

	view := feedview.New(loc, logger)
	done := make(chan struct{})
	observers := loader.Observers{view, doneObserver(done)}

	client := usgs.NewClient(*feedURL, usgs.DefaultConnectTimeout, usgs.DefaultReadTimeout, metrics, logger)
	l := loader.New(client, store, observers, dispatch, metrics, logger)

	var startErr error
	if err := dispatch.Call(func() { startErr = l.Start(ctx) }); err != nil {
		startErr = err
	}
	if startErr != nil {
		fmt.Fprintln(stderr, startErr)
		return 1
	}

	select {
	case <-done:
	case <-ctx.Done():
		fmt.Fprintln(stderr, errors.New("timed out waiting for the feed"))
		return 1
	}

	printSnapshot(stdout, view.Snapshot())
	return 0
}

// doneObserver closes its channel on the first delivery.
type doneObserver chan struct{}

func (d doneObserver) OnDelivered(loader.Delivery) { close(d) }

func (d doneObserver) OnInvalidated(uint64) {}

func printSnapshot(w io.Writer, snap feedview.Snapshot) {
	if len(snap.Rows) == 0 {
		fmt.Fprintln(w, snap.Message)
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "MAG\tCAT\tOFFSET\tLOCATION\tDATE\tTIME\tURL")
	for _, r := range snap.Rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Magnitude, categoryLabel(r.Category), r.LocationOffset, r.PrimaryLocation, r.Date, r.Time, r.DetailURL)
	}
	tw.Flush() //nolint:errcheck // best-effort output
}

func categoryLabel(c domain.MagnitudeCategory) string {
	return c.String() + " " + c.Color()
}
