// Package dedup suppresses repeated delivery of the same logical event.
//
// Providers already collapse duplicate client+server signals by event_id;
// this layer is an additive guard against the same beacon arriving twice
// at the server (client retries, sendBeacon double-fire). It is best
// effort: a failing backend reports the event as unseen, because tracking
// must keep working when the dedup store is down.
package dedup

import (
	"context"
	"time"
)

// Window is how long an event ID is remembered. Matches the deduplication
// window Meta applies between pixel and Conversions API events.
const Window = 24 * time.Hour

// Deduper records event IDs and reports repeats.
type Deduper interface {
	// Seen marks id as processed and reports whether it had already been
	// marked within the window. Implementations must fail open: on
	// backend errors they return false.
	Seen(ctx context.Context, id string) bool
}

// Noop never reports a repeat. Used when deduplication is disabled.
type Noop struct{}

func (Noop) Seen(context.Context, string) bool { return false }
