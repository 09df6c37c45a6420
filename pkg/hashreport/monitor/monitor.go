// Package monitor provides a background memory sampler that adapts a
// worker pool's concurrency to live memory pressure. Each tick it reads
// the process's memory usage as a fraction of a configured ceiling and
// asks the pool to shed or add one worker.
package monitor

import (
	"errors"
	"runtime"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/madebyjake/hashreport/pkg/hashreport/logging"
)

// Default sampling parameters, overridable via Options.
const (
	// DefaultCeiling is the process memory budget when none is configured.
	DefaultCeiling = 512 * 1024 * 1024

	// DefaultThreshold is the high-water fraction of the ceiling above
	// which workers are reduced.
	DefaultThreshold = 0.85

	// DefaultInterval is the sampling period.
	DefaultInterval = time.Second

	// increaseBand is how far below the threshold usage must fall before
	// workers are raised again, preventing oscillation at the boundary.
	increaseBand = 0.10
)

// Signal classifies one memory sample.
type Signal int

// Signals emitted by the monitor, in rising order of available headroom.
const (
	// SignalReduce means usage exceeds the high-water threshold.
	SignalReduce Signal = iota

	// SignalSteady means usage sits between the two bands; leave the
	// worker count alone.
	SignalSteady

	// SignalIncrease means usage is comfortably below the threshold.
	SignalIncrease
)

// String returns the string representation of the signal.
func (s Signal) String() string {
	switch s {
	case SignalReduce:
		return "reduce"
	case SignalSteady:
		return "steady"
	case SignalIncrease:
		return "increase"
	default:
		return "unknown"
	}
}

// ErrAlreadyRunning is returned by Start when the monitor is running.
var ErrAlreadyRunning = errors.New("monitor already running")

// Options configures a Monitor.
type Options struct {
	// Ceiling is the memory budget in bytes usage is measured against.
	// Values below 1 use DefaultCeiling.
	Ceiling int64

	// Threshold is the high-water fraction of the ceiling. Values outside
	// (0, 1] use DefaultThreshold.
	Threshold float64

	// Interval is the sampling period. Values below 1 use DefaultInterval.
	Interval time.Duration

	// OnReduce is invoked when a sample crosses the threshold.
	OnReduce func()

	// OnIncrease is invoked when a sample shows comfortable headroom.
	OnIncrease func()

	// Sample overrides the memory probe; tests use this to simulate
	// pressure. The default reads the process's heap allocation.
	Sample func() (int64, error)
}

// Monitor samples process memory on a fixed interval and drives the
// pool's worker-count adjustments through the configured callbacks.
// Every Start must be matched by a Stop.
type Monitor struct {
	opts   Options
	logger *logging.Logger

	mu      sync.Mutex
	running bool
	done    chan struct{}
	stopped chan struct{}
}

// New creates a monitor with the given options.
func New(opts Options) *Monitor {
	if opts.Ceiling < 1 {
		opts.Ceiling = DefaultCeiling
	}
	if opts.Threshold <= 0 || opts.Threshold > 1 {
		opts.Threshold = DefaultThreshold
	}
	if opts.Interval < 1 {
		opts.Interval = DefaultInterval
	}
	if opts.Sample == nil {
		opts.Sample = heapSample
	}

	return &Monitor{
		opts:   opts,
		logger: logging.Get("monitor"),
	}
}

// Start launches the background sampling loop.
// It returns ErrAlreadyRunning if the monitor has been started without a
// matching Stop.
func (m *Monitor) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return ErrAlreadyRunning
	}

	m.done = make(chan struct{})
	m.stopped = make(chan struct{})
	m.running = true

	go m.loop(m.done, m.stopped)

	m.logger.Debug("monitor started",
		"ceiling", humanize.IBytes(uint64(m.opts.Ceiling)),
		"threshold", m.opts.Threshold,
		"interval", m.opts.Interval)
	return nil
}

// Stop signals the sampling loop to exit and blocks until it has.
// Stopping a monitor that is not running is a no-op.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	done, stopped := m.done, m.stopped
	m.running = false
	m.mu.Unlock()

	close(done)
	<-stopped
}

// loop runs until done is closed, sampling once per interval.
func (m *Monitor) loop(done <-chan struct{}, stopped chan<- struct{}) {
	defer close(stopped)

	ticker := time.NewTicker(m.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			m.tick()
		}
	}
}

// tick takes one sample and applies the resulting signal.
// Sampling failures are logged and skipped; the monitor keeps running.
func (m *Monitor) tick() {
	usage, err := m.opts.Sample()
	if err != nil {
		m.logger.Warn("memory sample failed", "error", err)
		return
	}

	switch m.Classify(usage) {
	case SignalReduce:
		m.logger.Info("memory pressure high, reducing workers",
			"usage", humanize.IBytes(uint64(usage)),
			"ceiling", humanize.IBytes(uint64(m.opts.Ceiling)))
		if m.opts.OnReduce != nil {
			m.opts.OnReduce()
		}
	case SignalIncrease:
		if m.opts.OnIncrease != nil {
			m.opts.OnIncrease()
		}
	case SignalSteady:
	}
}

// Classify maps a usage sample in bytes to an adjustment signal.
func (m *Monitor) Classify(usage int64) Signal {
	frac := float64(usage) / float64(m.opts.Ceiling)
	switch {
	case frac > m.opts.Threshold:
		return SignalReduce
	case frac < m.opts.Threshold-increaseBand:
		return SignalIncrease
	default:
		return SignalSteady
	}
}

// heapSample reads the process's current heap allocation. Memory-mapped
// file regions are not counted here: they are file-backed pages the
// kernel reclaims under pressure, so they do not threaten the budget
// the way heap growth does.
func heapSample() (int64, error) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return int64(ms.HeapAlloc), nil
}
