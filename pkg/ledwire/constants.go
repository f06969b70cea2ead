// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 raziber

package ledwire

import "time"

// Wire framing bytes shared by the host and every strip controller.
// SYNC_1 followed by SYNC_2 opens a frame; END_MARKER closes it.
const (
	DefaultSync1     = 0xAA
	DefaultSync2     = 0x55
	DefaultEndMarker = 0xBB
)

// BytesPerLED is the number of payload bytes per LED (R, G, B).
const BytesPerLED = 3

// Default installation geometry. The second segment is derived from the
// total, matching how the controller firmware computes its share.
const (
	DefaultTotalLEDs = 402
	DefaultLEDsA     = 220
	DefaultLEDsB     = DefaultTotalLEDs - DefaultLEDsA
)

// Link defaults
const (
	DefaultBaudRate = 115200
	DefaultTimeout  = 200 * time.Millisecond
)

// frameOverhead is the per-frame byte cost beyond the payload:
// two sync bytes plus the end marker.
const frameOverhead = 3

// CRC-16-CCITT configuration (trace file records only; the wire format
// carries no checksum)
const (
	crcPolynomial = 0x1021
	crcInitial    = 0xFFFF
)
