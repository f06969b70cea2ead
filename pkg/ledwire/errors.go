// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 raziber

package ledwire

import (
	"errors"
	"fmt"
)

// Sentinel errors for the transport error classes. FramingError and
// ConfigError carry detail and unwrap to their sentinel, so callers can
// test with errors.Is and still reach the fields with errors.As.
var (
	// ErrIncompleteFrame means the input ends before a frame completes.
	// It is a "not yet", not a failure: keep the bytes and wait for more.
	ErrIncompleteFrame = errors.New("ledwire: incomplete frame")

	// ErrFraming is the class sentinel for *FramingError.
	ErrFraming = errors.New("ledwire: framing error")

	// ErrTimeout is returned by Session.CheckTimeout when the sender has
	// stalled mid-frame longer than Config.Timeout. The session has already
	// recovered by the time the caller sees it; report it and move on.
	ErrTimeout = errors.New("ledwire: link timeout")

	// ErrConfig is the class sentinel for *ConfigError.
	ErrConfig = errors.New("ledwire: invalid configuration")

	// ErrTraceCorrupt is the class sentinel for corrupt trace records.
	ErrTraceCorrupt = errors.New("ledwire: trace record corrupt")
)

// FramingError reports a candidate frame whose end marker did not match:
// bytes were dropped or corrupted somewhere inside the frame. Recovery is
// resynchronization, never abort.
type FramingError struct {
	Offset int  // index of the candidate's SYNC_1 in the scanned input
	Got    byte // byte found in the end marker position
	Want   byte
}

func (e *FramingError) Error() string {
	return fmt.Sprintf("ledwire: bad end marker for frame at offset %d: got 0x%02X, want 0x%02X",
		e.Offset, e.Got, e.Want)
}

func (e *FramingError) Unwrap() error { return ErrFraming }

// ConfigError reports a configuration that must not be allowed to carry
// data, such as segment sizes that do not sum to the LED total. It is
// fatal at startup.
type ConfigError struct {
	Field  string
	Detail string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("ledwire: invalid configuration: %s: %s", e.Field, e.Detail)
}

func (e *ConfigError) Unwrap() error { return ErrConfig }

func configErrorf(field, format string, args ...interface{}) *ConfigError {
	return &ConfigError{Field: field, Detail: fmt.Sprintf(format, args...)}
}
