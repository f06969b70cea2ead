// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 raziber

package ledwire

import "time"

// Config is the shared transport contract. The sender and every receiver
// must be constructed from identical values; there is no runtime
// negotiation, so a mismatch is undetectable on the wire. Validate before
// letting any data flow.
type Config struct {
	// TotalLEDs is the number of LEDs in one full frame payload.
	TotalLEDs int

	// Segments lists the per-controller LED counts in strip order.
	// The sizes must sum to TotalLEDs exactly.
	Segments []int

	// Frame marker bytes. Sync1 and Sync2 must differ so the scanner can
	// key on the two-byte sequence.
	Sync1     byte
	Sync2     byte
	EndMarker byte

	// Timeout is how long a receiver holds a partial frame before giving
	// up on it and rearming for the next sync sequence.
	Timeout time.Duration
}

// DefaultConfig returns the configuration of the original globe
// installation: 402 LEDs split 220/182 across two controllers.
func DefaultConfig() Config {
	return Config{
		TotalLEDs: DefaultTotalLEDs,
		Segments:  []int{DefaultLEDsA, DefaultLEDsB},
		Sync1:     DefaultSync1,
		Sync2:     DefaultSync2,
		EndMarker: DefaultEndMarker,
		Timeout:   DefaultTimeout,
	}
}

// PayloadSize returns the fixed frame payload length in bytes.
func (c Config) PayloadSize() int {
	return c.TotalLEDs * BytesPerLED
}

// FrameSize returns the full on-wire frame length in bytes.
func (c Config) FrameSize() int {
	return c.PayloadSize() + frameOverhead
}

// Validate checks the invariants the transport depends on. Any returned
// error is a *ConfigError and must halt startup.
func (c Config) Validate() error {
	if c.TotalLEDs < 1 {
		return configErrorf("total_leds", "must be at least 1, got %d", c.TotalLEDs)
	}
	if _, err := Assign(c.TotalLEDs, c.Segments); err != nil {
		return err
	}
	if c.Sync1 == c.Sync2 {
		return configErrorf("sync", "sync bytes must differ, both are 0x%02X", c.Sync1)
	}
	if c.Timeout <= 0 {
		return configErrorf("timeout", "must be positive, got %v", c.Timeout)
	}
	return nil
}

// Assignment builds the segment assignment implied by the configured
// segment sizes.
func (c Config) Assignment() (Assignment, error) {
	return Assign(c.TotalLEDs, c.Segments)
}
