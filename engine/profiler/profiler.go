package profiler

import (
	"runtime"
	"time"

	"go.uber.org/zap"
)

// Profiler tracks frame rate and memory statistics for performance monitoring.
// Outputs stats to the logger at a configurable interval.
type Profiler struct {
	logger         *zap.Logger
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	lastFPS        float64
}

// NewProfiler creates a new Profiler that reports through the given logger.
// Update interval defaults to 1 second.
//
// Parameters:
//   - logger: the destination for the stats lines; nil discards them
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(logger *zap.Logger) *Profiler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Profiler{
		logger:         logger.Named("profiler"),
		lastTime:       time.Now(),
		updateInterval: time.Second,
	}
}

// SetInterval changes how often stats are reported. Non-positive values report on every tick.
//
// Parameters:
//   - d: the reporting interval
func (p *Profiler) SetInterval(d time.Duration) {
	if d < 0 {
		d = 0
	}
	p.updateInterval = d
}

// FPS returns the frame rate measured over the last completed interval.
//
// Returns:
//   - float64: frames per second, 0 before the first report
func (p *Profiler) FPS() float64 {
	return p.lastFPS
}

// Tick should be called once per frame to track frame timing.
// Logs FPS, heap usage, allocation rate, GC count/pause times and total memory when the
// update interval has elapsed.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.frameCount++
	now := time.Now()
	elapsed := now.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	seconds := elapsed.Seconds()
	if seconds <= 0 {
		seconds = 1e-9
	}
	fps := float64(p.frameCount) / seconds

	runtime.ReadMemStats(&p.memStats)
	allocRateMB := float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / seconds

	// PauseNs is a circular buffer of the last 256 GC pauses.
	gcCount := p.memStats.NumGC
	var lastPause, maxPause time.Duration
	if gcCount > 0 {
		lastPause = time.Duration(p.memStats.PauseNs[(gcCount-1)%256])
		start := p.lastGCCount
		if gcCount-start > 256 {
			start = gcCount - 256
		}
		for i := start; i < gcCount; i++ {
			if pause := time.Duration(p.memStats.PauseNs[i%256]); pause > maxPause {
				maxPause = pause
			}
		}
	}

	p.logger.Info("frame stats",
		zap.Float64("fps", fps),
		zap.Float64("heap_mb", float64(p.memStats.Alloc)/1024/1024),
		zap.Float64("alloc_rate_mb_s", allocRateMB),
		zap.Uint32("gc", gcCount),
		zap.Duration("gc_last_pause", lastPause),
		zap.Duration("gc_max_pause", maxPause),
		zap.Float64("sys_mb", float64(p.memStats.Sys)/1024/1024),
	)

	p.lastFPS = fps
	p.frameCount = 0
	p.lastTime = now
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}
