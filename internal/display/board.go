// Package display renders the simulation status board: every resource's
// fill level and every unit's run mode. It is a read-only collaborator; all
// state comes in as snapshots taken under the core's own locks.
package display

import (
	"fmt"
	"io"
	"time"

	"golang.org/x/time/rate"

	"github.com/roach88/voyager/internal/sim"
)

// ANSI control sequences for in-place terminal refresh.
const (
	ansiClear     = "\033[2J"
	ansiHome      = "\033[H"
	ansiClearLine = "\033[K"
)

// Board writes the status board to a writer, at most once per refresh
// interval.
type Board struct {
	w       io.Writer
	limiter *rate.Limiter
	ansi    bool
}

// BoardOption configures a board.
type BoardOption func(*Board)

// WithANSI enables in-place terminal redraw (clear + home + per-line erase)
// instead of appending frames.
func WithANSI() BoardOption {
	return func(b *Board) {
		b.ansi = true
	}
}

// NewBoard creates a board that refreshes at most once per interval.
// A non-positive interval disables rate limiting.
func NewBoard(w io.Writer, interval time.Duration, opts ...BoardOption) *Board {
	b := &Board{w: w}
	if interval > 0 {
		b.limiter = rate.NewLimiter(rate.Every(interval), 1)
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Refresh renders the snapshot unless the previous render was too recent.
// Called from the coordinator's observer hook, so it must not block.
func (b *Board) Refresh(snap sim.Snapshot) {
	if b.limiter != nil && !b.limiter.Allow() {
		return
	}
	b.Render(snap)
}

// Render writes one full frame unconditionally. The final frame after
// termination uses this so the closing state is always shown.
func (b *Board) Render(snap sim.Snapshot) {
	prefix := ""
	if b.ansi {
		fmt.Fprint(b.w, ansiClear, ansiHome)
		prefix = ansiClearLine
	}

	fmt.Fprintf(b.w, "%sCurrent Resource Amounts:\n", prefix)
	fmt.Fprintf(b.w, "%s-------------------------\n", prefix)
	for _, r := range snap.Resources {
		fmt.Fprintf(b.w, "%s%s: %d / %d\n", prefix, r.Name, r.Amount, r.Capacity)
	}

	fmt.Fprintf(b.w, "%s\n", prefix)
	fmt.Fprintf(b.w, "%sUnit Statuses:\n", prefix)
	fmt.Fprintf(b.w, "%s--------------\n", prefix)
	for _, u := range snap.Units {
		fmt.Fprintf(b.w, "%s%-20s: %s\n", prefix, u.Name, u.Mode)
	}
	fmt.Fprintf(b.w, "%s\n", prefix)
}
