package loader

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/couchcryptid/quake-feed-service/internal/domain"
	"github.com/couchcryptid/quake-feed-service/internal/observability"
)

// State is the loader lifecycle state.
type State int

const (
	Idle State = iota
	Loading
	Delivered
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Delivered:
		return "delivered"
	default:
		return "unknown"
	}
}

var (
	// ErrLoadInProgress is returned by Start while a load is in flight.
	ErrLoadInProgress = errors.New("load already in progress")
	// ErrNotStarted is returned by Reset when there is nothing to reset.
	ErrNotStarted = errors.New("loader is idle")
)

// Source builds feed URLs and fetches feed bodies.
type Source interface {
	QueryURL(cfg domain.LoadConfiguration) string
	Fetch(ctx context.Context, rawURL string) (string, error)
}

// ConfigProvider supplies the settings for the next load.
type ConfigProvider interface {
	LoadConfiguration() domain.LoadConfiguration
}

// Loader runs fetch and parse on a worker goroutine and hands the result to
// its observer on the dispatcher. Start, Reset, State, and Generation must be
// called on the dispatcher goroutine; the Loader itself holds no locks.
type Loader struct {
	source   Source
	configs  ConfigProvider
	observer Observer
	dispatch *Dispatcher
	metrics  *observability.Metrics
	logger   *slog.Logger

	state      State
	generation uint64
}

// New creates an idle Loader.
func New(source Source, configs ConfigProvider, observer Observer, dispatch *Dispatcher, metrics *observability.Metrics, logger *slog.Logger) *Loader {
	return &Loader{
		source:   source,
		configs:  configs,
		observer: observer,
		dispatch: dispatch,
		metrics:  metrics,
		logger:   logger,
	}
}

// State returns the current lifecycle state.
func (l *Loader) State() State { return l.state }

// Generation returns the number of resets so far.
func (l *Loader) Generation() uint64 { return l.generation }

// Start begins a new load cycle on a worker goroutine. Every call makes a
// fresh request; earlier results are never reused. ctx bounds the request.
// It returns ErrLoadInProgress, and starts nothing, while a load is in flight.
func (l *Loader) Start(ctx context.Context) error {
	if l.state == Loading {
		l.metrics.LoadsRejected.Inc()
		l.logger.Warn("start ignored, load in progress", "generation", l.generation)
		return ErrLoadInProgress
	}

	cfg := l.configs.LoadConfiguration()
	cycleID := uuid.NewString()
	generation := l.generation

	l.setState(Loading)
	l.metrics.LoadsStarted.Inc()
	l.logger.Info("load started",
		"cycle_id", cycleID,
		"generation", generation,
		"min_magnitude", cfg.MinMagnitude,
		"order_by", cfg.OrderBy,
	)

	go l.work(ctx, generation, cycleID, cfg)
	return nil
}

// Reset invalidates delivered data and returns the loader to Idle. A worker
// already running is not interrupted; its delivery arrives later tagged with
// the old generation.
func (l *Loader) Reset() error {
	if l.state == Idle {
		return ErrNotStarted
	}

	l.generation++
	l.setState(Idle)
	l.logger.Info("loader reset", "generation", l.generation)
	l.observer.OnInvalidated(l.generation)
	return nil
}

func (l *Loader) work(ctx context.Context, generation uint64, cycleID string, cfg domain.LoadConfiguration) {
	d := Delivery{
		Generation:  generation,
		CycleID:     cycleID,
		Earthquakes: l.load(ctx, cycleID, cfg),
		CompletedAt: domain.Now(),
	}
	if !l.dispatch.Post(func() { l.deliver(d) }) {
		l.logger.Warn("dispatcher stopped, dropping delivery", "cycle_id", cycleID)
	}
}

// load runs query, fetch, and parse. Failures are logged and turned into a
// nil or partial result.
func (l *Loader) load(ctx context.Context, cycleID string, cfg domain.LoadConfiguration) []domain.Earthquake {
	rawURL := l.source.QueryURL(cfg)
	if rawURL == "" {
		l.logger.Warn("no feed url configured, skipping request", "cycle_id", cycleID)
		return nil
	}

	body, err := l.source.Fetch(ctx, rawURL)
	if err != nil {
		l.logger.Warn("feed fetch failed", "cycle_id", cycleID, "url", rawURL, "error", err)
	}

	quakes, err := domain.ParseFeed(body)
	if err != nil {
		attrs := []any{"cycle_id", cycleID, "url", rawURL, "kept", len(quakes), "error", err}
		var perr *domain.ParseError
		if errors.As(err, &perr) {
			l.metrics.ParseErrors.WithLabelValues(perr.Kind.String()).Inc()
			attrs = append(attrs, "index", perr.Index, "field", perr.Field)
		}
		l.logger.Warn("feed parse stopped early", attrs...)
	}
	return quakes
}

// deliver runs on the dispatcher.
func (l *Loader) deliver(d Delivery) {
	if d.Generation != l.generation {
		l.metrics.StaleDeliveries.Inc()
		l.logger.Info("stale delivery",
			"cycle_id", d.CycleID,
			"generation", d.Generation,
			"current_generation", l.generation,
		)
	} else if l.state == Loading {
		l.setState(Delivered)
	}

	l.metrics.Deliveries.WithLabelValues(outcome(d.Earthquakes)).Inc()
	l.metrics.RecordsDelivered.Add(float64(len(d.Earthquakes)))
	l.logger.Info("load delivered",
		"cycle_id", d.CycleID,
		"generation", d.Generation,
		"records", len(d.Earthquakes),
	)
	l.observer.OnDelivered(d)
}

func (l *Loader) setState(s State) {
	l.state = s
	l.metrics.LoaderState.Set(float64(s))
}

func outcome(quakes []domain.Earthquake) string {
	switch {
	case quakes == nil:
		return "none"
	case len(quakes) == 0:
		return "empty"
	default:
		return "records"
	}
}
