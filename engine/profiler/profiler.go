package profiler

import (
	"log/slog"
	"runtime"
	"sync"
	"time"
)

// Stats are the params set update counters accumulated by a Profiler.
type Stats struct {
	// Updates is the number of ParamsSet updates.
	Updates int
	// DataWrites is the number of data parameters copied into block buffers.
	DataWrites int
	// ObjectWrites is the number of textures, buffers and samplers written into per-pass parameters.
	ObjectWrites int
}

// Profiler tracks how much work params set updates perform and logs the rates at a configurable interval.
// It is safe for concurrent use, so both execution views can report into one profiler.
type Profiler struct {
	mu             sync.Mutex
	logger         *slog.Logger
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastTotalAlloc uint64
	window         Stats
	total          Stats
}

// NewProfiler creates a new Profiler. Update interval defaults to 1 second.
//
// Parameters:
//   - options: variadic list of ProfilerBuilderOption functions
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		logger:         slog.Default(),
		lastTime:       time.Now(),
		updateInterval: time.Second,
	}
	for _, option := range options {
		option(p)
	}
	return p
}

// RecordUpdate adds the writes of one params set update.
//
// Parameters:
//   - dataWrites: data parameters copied into block buffers
//   - objectWrites: object parameters written into per-pass parameters
func (p *Profiler) RecordUpdate(dataWrites, objectWrites int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.window.Updates++
	p.window.DataWrites += dataWrites
	p.window.ObjectWrites += objectWrites
	p.total.Updates++
	p.total.DataWrites += dataWrites
	p.total.ObjectWrites += objectWrites
}

// Totals returns the counters accumulated since the profiler was created.
//
// Returns:
//   - Stats: the totals
func (p *Profiler) Totals() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.total
}

// Tick should be called once per frame. Logs update rates and heap statistics when the update interval has
// elapsed.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	currentTime := time.Now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	// TotalAlloc grows forever, the delta tracks allocation churn
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	seconds := elapsed.Seconds()

	p.logger.Info("profiler: params updates",
		"updatesPerSec", float64(p.window.Updates)/seconds,
		"dataWritesPerSec", float64(p.window.DataWrites)/seconds,
		"objectWritesPerSec", float64(p.window.ObjectWrites)/seconds,
		"heapMB", float64(p.memStats.Alloc)/1024/1024,
		"allocRateMB", float64(allocDelta)/1024/1024/seconds,
		"gc", p.memStats.NumGC)

	p.window = Stats{}
	p.lastTime = currentTime
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}
