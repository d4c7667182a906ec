// Package feedview renders loader deliveries into display rows for the API.
package feedview

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/couchcryptid/quake-feed-service/internal/domain"
	"github.com/couchcryptid/quake-feed-service/internal/loader"
)

// Messages shown in place of rows.
const (
	EmptyMessage   = "No earthquakes found."
	OfflineMessage = "No internet connection."
)

var errNotReady = errors.New("no feed delivered yet")

// Snapshot is a point-in-time copy of the view.
type Snapshot struct {
	Rows       []domain.DisplayRow `json:"earthquakes"`
	Loading    bool                `json:"loading"`
	Message    string              `json:"message,omitempty"`
	Generation uint64              `json:"generation"`
	CycleID    string              `json:"cycle_id,omitempty"`
	UpdatedAt  time.Time           `json:"updated_at,omitempty"`
}

// View is the consumer side of the loader. It accepts only deliveries from
// the generation it last saw invalidated.
type View struct {
	mu         sync.RWMutex
	loc        *time.Location
	logger     *slog.Logger
	rows       []domain.DisplayRow
	loading    bool
	message    string
	generation uint64
	cycleID    string
	updatedAt  time.Time
	delivered  bool
}

// New creates an empty View that formats times in loc.
func New(loc *time.Location, logger *slog.Logger) *View {
	if loc == nil {
		loc = time.Local
	}
	return &View{loc: loc, logger: logger}
}

// OnDelivered replaces the rows with the delivered records.
func (v *View) OnDelivered(d loader.Delivery) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if d.Generation != v.generation {
		v.logger.Debug("ignoring stale delivery",
			"cycle_id", d.CycleID,
			"generation", d.Generation,
			"current_generation", v.generation,
		)
		return
	}

	v.rows = nil
	v.loading = false
	v.message = ""
	v.cycleID = d.CycleID
	v.updatedAt = d.CompletedAt
	v.delivered = true

	if len(d.Earthquakes) == 0 {
		v.message = EmptyMessage
		return
	}
	rows := make([]domain.DisplayRow, 0, len(d.Earthquakes))
	for _, q := range d.Earthquakes {
		rows = append(rows, domain.Render(q, v.loc))
	}
	v.rows = rows
}

// OnInvalidated drops the current rows and starts accepting the given
// generation only.
func (v *View) OnInvalidated(generation uint64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.generation = generation
	v.rows = nil
	v.message = ""
	v.cycleID = ""
}

// SetLoading toggles the loading indicator.
func (v *View) SetLoading(loading bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.loading = loading
	if loading {
		v.message = ""
	}
}

// ShowOffline clears the rows and shows the offline message.
func (v *View) ShowOffline() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.rows = nil
	v.loading = false
	v.message = OfflineMessage
}

// Snapshot returns a copy of the current view state.
func (v *View) Snapshot() Snapshot {
	v.mu.RLock()
	defer v.mu.RUnlock()

	rows := make([]domain.DisplayRow, len(v.rows))
	copy(rows, v.rows)
	return Snapshot{
		Rows:       rows,
		Loading:    v.loading,
		Message:    v.message,
		Generation: v.generation,
		CycleID:    v.cycleID,
		UpdatedAt:  v.updatedAt,
	}
}

// CheckReadiness reports ready once any delivery has been applied.
func (v *View) CheckReadiness(_ context.Context) error {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if !v.delivered {
		return errNotReady
	}
	return nil
}
