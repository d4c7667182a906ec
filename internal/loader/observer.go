package loader

import (
	"time"

	"github.com/couchcryptid/quake-feed-service/internal/domain"
)

// Delivery is the result of one completed load cycle.
type Delivery struct {
	// Generation is the loader generation when the cycle started. It differs
	// from the loader's current generation when the cycle was reset before
	// it completed.
	Generation uint64
	CycleID    string
	// Earthquakes is nil when the load produced no data. A non-nil, possibly
	// empty slice is a parsed (possibly partial) result.
	Earthquakes []domain.Earthquake
	CompletedAt time.Time
}

// Observer receives loader callbacks on the controlling context.
type Observer interface {
	// OnDelivered receives every completed cycle, including stale ones.
	// Implementations compare Generation against the last value passed to
	// OnInvalidated and ignore mismatches.
	OnDelivered(d Delivery)
	// OnInvalidated tells the observer to drop previously delivered data.
	// generation is the value fresh deliveries will carry from now on.
	OnInvalidated(generation uint64)
}

// Observers fans callbacks out to several observers in order.
type Observers []Observer

func (o Observers) OnDelivered(d Delivery) {
	for _, obs := range o {
		obs.OnDelivered(d)
	}
}

func (o Observers) OnInvalidated(generation uint64) {
	for _, obs := range o {
		obs.OnInvalidated(generation)
	}
}
