// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 raziber

// Package ledwire implements the framed serial transport used to stream
// per-LED RGB data from a host to the globe's strip controllers.
//
// A frame on the wire is
//
//	[SYNC_1][SYNC_2][payload][END_MARKER]
//
// where the payload is exactly TotalLEDs*3 bytes, R,G,B per LED in ascending
// index order. There is no length field: both ends are built against the same
// Config and the payload size is implied. Payload bytes are not escaped, so a
// receiver regains alignment after corruption by scanning for the two-byte
// sync sequence rather than by unstuffing.
//
// The package provides three layers:
//
//   - Codec encodes payloads into frames and decodes frames out of a byte
//     buffer, resynchronizing past noise and corrupt candidates.
//   - Assignment maps contiguous LED index ranges onto the strip segments
//     that separate controllers drive.
//   - Session owns one receiver's view of the byte stream: it accumulates
//     bytes as they arrive, emits decoded payloads, recovers from framing
//     errors by dropping a single front byte, and resets itself when the
//     sender stalls longer than Config.Timeout.
//
// Framing errors and timeouts are recovered locally and surface only through
// Stats counters and the CheckTimeout return value. The one fatal error class
// is ConfigError: a Config whose segment sizes do not add up to the LED total
// must stop startup before any data flows.
package ledwire
