// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 raziber

package ledwire

// Frame is one full frame payload: BytesPerLED bytes per LED, R,G,B in
// ascending LED index order. It is a convenience view over the raw bytes
// the codec and session work with.
type Frame []byte

// NewFrame returns a zeroed (all LEDs off) frame for the given LED count.
func NewFrame(leds int) Frame {
	return make(Frame, leds*BytesPerLED)
}

// LEDs returns the number of LEDs the frame covers.
func (f Frame) LEDs() int { return len(f) / BytesPerLED }

// At returns the color of LED i.
func (f Frame) At(i int) (r, g, b byte) {
	at := i * BytesPerLED
	return f[at], f[at+1], f[at+2]
}

// Set assigns the color of LED i.
func (f Frame) Set(i int, r, g, b byte) {
	at := i * BytesPerLED
	f[at], f[at+1], f[at+2] = r, g, b
}

// Fill assigns the same color to every LED.
func (f Frame) Fill(r, g, b byte) {
	for i := 0; i < f.LEDs(); i++ {
		f.Set(i, r, g, b)
	}
}

// Clone returns an independent copy of the frame.
func (f Frame) Clone() Frame {
	out := make(Frame, len(f))
	copy(out, f)
	return out
}
