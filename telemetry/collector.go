package telemetry

// Collector accumulates FrameStats and produces WindowStats every
// windowSize frames.
type Collector struct {
	windowSize int
	frames     []FrameStats
}

// NewCollector creates a collector with the given window size in frames.
func NewCollector(windowSize int) *Collector {
	if windowSize < 1 {
		windowSize = 120
	}
	return &Collector{
		windowSize: windowSize,
		frames:     make([]FrameStats, 0, windowSize),
	}
}

// Record adds one frame. When the window fills it returns the aggregated
// stats and true, and starts a new window.
func (c *Collector) Record(fs FrameStats) (WindowStats, bool) {
	c.frames = append(c.frames, fs)
	if len(c.frames) < c.windowSize {
		return WindowStats{}, false
	}
	ws := aggregate(c.frames)
	c.frames = c.frames[:0]
	return ws, true
}

// Flush aggregates a partially filled window, for end-of-run reporting.
// Returns false if no frames are pending.
func (c *Collector) Flush() (WindowStats, bool) {
	if len(c.frames) == 0 {
		return WindowStats{}, false
	}
	ws := aggregate(c.frames)
	c.frames = c.frames[:0]
	return ws, true
}
