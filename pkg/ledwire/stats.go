// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 raziber

package ledwire

import (
	"fmt"
	"time"
)

// Stats tracks per-session link counters and derived rates.
type Stats struct {
	StartTime     time.Time
	LastFrameTime time.Time

	// Counters
	FramesDecoded  uint64
	FramingErrors  uint64
	Timeouts       uint64
	BytesIngested  uint64
	BytesDiscarded uint64

	// Rates (calculated)
	FrameRate float64 // frames/sec
	ErrorRate float64 // framing errors + timeouts /sec
}

func newStats(start time.Time) Stats {
	return Stats{StartTime: start}
}

// CalculateRates fills in FrameRate and ErrorRate from the counters and
// elapsed time.
func (s *Stats) CalculateRates() {
	elapsed := time.Since(s.StartTime).Seconds()
	if elapsed > 0 {
		s.FrameRate = float64(s.FramesDecoded) / elapsed
		s.ErrorRate = float64(s.FramingErrors+s.Timeouts) / elapsed
	}
}

// String returns a formatted statistics summary block.
func (s *Stats) String() string {
	s.CalculateRates()

	candidates := s.FramesDecoded + s.FramingErrors
	var validPercent, errorPercent float64
	if candidates > 0 {
		validPercent = float64(s.FramesDecoded) * 100.0 / float64(candidates)
		errorPercent = float64(s.FramingErrors) * 100.0 / float64(candidates)
	}

	elapsed := time.Since(s.StartTime)

	result := fmt.Sprintf("=== Link Statistics (%.0f seconds) ===\n", elapsed.Seconds())
	result += fmt.Sprintf("Frames Decoded:  %8d (%.1f%%)\n", s.FramesDecoded, validPercent)
	if s.FramingErrors > 0 {
		result += fmt.Sprintf("Framing Errors:  %8d (%.1f%%)\n", s.FramingErrors, errorPercent)
	}
	if s.Timeouts > 0 {
		result += fmt.Sprintf("Timeouts:        %8d\n", s.Timeouts)
	}
	result += fmt.Sprintf("Bytes Ingested:  %8d\n", s.BytesIngested)
	if s.BytesDiscarded > 0 {
		result += fmt.Sprintf("Bytes Discarded: %8d\n", s.BytesDiscarded)
	}
	result += fmt.Sprintf("Frame Rate:      %8.1f frames/sec\n", s.FrameRate)
	result += fmt.Sprintf("Error Rate:      %8.1f errors/sec\n", s.ErrorRate)
	result += "==================================\n"

	return result
}

// Reset zeroes all counters and restarts the rate window.
func (s *Stats) Reset() {
	*s = newStats(time.Now())
}
