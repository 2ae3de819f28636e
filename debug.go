package flourish

import "go.uber.org/zap"

// SetDebugMode enables or disables per-frame stats logging at debug level.
func (s *Stage) SetDebugMode(enabled bool) {
	s.debug = enabled
}

// debugLog writes one frame's timing and loop counts.
func (s *Stage) debugLog(stats FrameStats) {
	if !s.debug {
		return
	}
	s.log.Debug("frame",
		zap.Uint64("frame", stats.Frame),
		zap.Int("ticked", stats.Ticked),
		zap.Int("active", stats.Active),
		zap.Duration("elapsed", stats.Elapsed),
		zap.Int("registered", s.registry.Len()),
	)
}
