package sim

// An EdgeDetector derives rising-edge events from consecutive samples of a
// clock level.
type EdgeDetector struct {
	prev bool
}

// Rising samples the clock level and reports whether a rising edge occurred,
// which is the case when the previous sample was low and the given level is
// high. The previous sample is updated exactly once per call, after use, so
// sampling the same level again reports no edge.
func (d *EdgeDetector) Rising(level bool) bool {
	rising := !d.prev && level
	d.prev = level

	return rising
}

// Reset forces the previous sample to the given level so that the next call
// to Rising compares against a known state.
func (d *EdgeDetector) Reset(level bool) {
	d.prev = level
}
