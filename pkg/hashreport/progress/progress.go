// Package progress tracks completed work units during a scan and renders
// a terminal progress bar. The count is exact: every Update is recorded
// under the reporter's own lock, while only the rendering is throttled.
package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// renderThrottleMillis limits bar redraws; counting is never throttled.
const renderThrottleMillis = 100

// barWidth is the number of cells in the rendered bar.
const barWidth = 30

var (
	barStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	barRestStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	countStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// Reporter counts completed units of work and optionally renders a
// progress bar to a terminal. It is safe for concurrent use.
type Reporter struct {
	total   int64
	out     io.Writer
	render  bool
	started time.Time

	mu        sync.Mutex
	processed int64

	// lastRender tracks the last redraw time to avoid excessive output.
	lastRender atomic.Int64
}

// New creates a reporter expecting total units. The bar is rendered to
// stderr only when stderr is a terminal; counting works regardless.
func New(total int64) *Reporter {
	return &Reporter{
		total:   total,
		out:     os.Stderr,
		render:  isatty.IsTerminal(os.Stderr.Fd()),
		started: time.Now(),
	}
}

// NewWriter creates a reporter that renders to w unconditionally.
// Used by tests and non-terminal captures.
func NewWriter(total int64, w io.Writer) *Reporter {
	return &Reporter{
		total:   total,
		out:     w,
		render:  true,
		started: time.Now(),
	}
}

// Update records one completed unit. Call it exactly once per unit,
// success or failure alike.
func (r *Reporter) Update() {
	r.mu.Lock()
	r.processed++
	processed := r.processed
	r.mu.Unlock()

	r.draw(processed, false)
}

// Count returns the number of units recorded so far.
func (r *Reporter) Count() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.processed
}

// Total returns the expected number of units.
func (r *Reporter) Total() int64 {
	return r.total
}

// Finish renders the final state and terminates the bar line.
func (r *Reporter) Finish() {
	if !r.render {
		return
	}
	r.draw(r.Count(), true)
	fmt.Fprintln(r.out)
}

// draw renders the bar, throttled unless force is set.
func (r *Reporter) draw(processed int64, force bool) {
	if !r.render {
		return
	}

	if !force {
		now := time.Now().UnixMilli()
		last := r.lastRender.Load()
		if now-last < renderThrottleMillis {
			return
		}
		if !r.lastRender.CompareAndSwap(last, now) {
			return // Another goroutine redrew it.
		}
	} else {
		r.lastRender.Store(time.Now().UnixMilli())
	}

	fmt.Fprintf(r.out, "\r%s %s", r.bar(processed), r.caption(processed))
}

// bar renders the filled and remaining cells for the current fraction.
func (r *Reporter) bar(processed int64) string {
	filled := barWidth
	if r.total > 0 {
		filled = int(float64(barWidth) * float64(processed) / float64(r.total))
		if filled > barWidth {
			filled = barWidth
		}
	}

	return barStyle.Render(strings.Repeat("█", filled)) +
		barRestStyle.Render(strings.Repeat("░", barWidth-filled))
}

// caption renders the numeric summary next to the bar.
func (r *Reporter) caption(processed int64) string {
	elapsed := time.Since(r.started).Seconds()
	rate := 0.0
	if elapsed > 0 {
		rate = float64(processed) / elapsed
	}

	if r.total > 0 {
		percent := 100 * float64(processed) / float64(r.total)
		return countStyle.Render(fmt.Sprintf("%d/%d (%.0f%%) %.0f files/s", processed, r.total, percent, rate))
	}
	return countStyle.Render(fmt.Sprintf("%d %.0f files/s", processed, rate))
}
