// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 raziber

// Package strip drives a local LED strip from decoded frame payloads.
// The globe's strips hang off dedicated controllers in production; this
// package exists so a host can preview segments on its own hardware, or
// dry-run against the Null driver.
package strip

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Driver abstracts an LED output sink.
type Driver interface {
	// Write pushes an RGB frame to hardware. len(rgb) must be 3*N for
	// the N pixels the driver was opened with.
	Write(rgb []byte) error
	// Close releases resources.
	Close() error
}

// Order is the channel order a strip expects on the wire. Payloads are
// always R,G,B; the driver permutes per pixel before writing.
type Order int

const (
	OrderRGB Order = iota
	OrderGRB
	OrderBGR
	OrderBRG
	OrderGBR
	OrderRBG
)

var orderNames = map[Order]string{
	OrderRGB: "RGB",
	OrderGRB: "GRB",
	OrderBGR: "BGR",
	OrderBRG: "BRG",
	OrderGBR: "GBR",
	OrderRBG: "RBG",
}

func (o Order) String() string {
	if s, ok := orderNames[o]; ok {
		return s
	}
	return fmt.Sprintf("Order(%d)", int(o))
}

// ParseOrder parses a channel order name such as "GRB". WS2812-class
// strips almost always want GRB.
func ParseOrder(s string) (Order, error) {
	for o, name := range orderNames {
		if strings.EqualFold(s, name) {
			return o, nil
		}
	}
	return OrderRGB, fmt.Errorf("strip: unknown channel order %q", s)
}

// permute writes src (RGB triples) into dst in the given channel order.
// dst and src must be the same length, a multiple of 3.
func permute(dst, src []byte, o Order) {
	var a, b, c int
	switch o {
	case OrderRGB:
		a, b, c = 0, 1, 2
	case OrderGRB:
		a, b, c = 1, 0, 2
	case OrderBGR:
		a, b, c = 2, 1, 0
	case OrderBRG:
		a, b, c = 2, 0, 1
	case OrderGBR:
		a, b, c = 1, 2, 0
	case OrderRBG:
		a, b, c = 0, 2, 1
	}
	for i := 0; i+2 < len(src); i += 3 {
		dst[i] = src[i+a]
		dst[i+1] = src[i+b]
		dst[i+2] = src[i+c]
	}
}

// Null is a Driver that validates writes and drops them. It stands in
// for hardware in dry runs and tests.
type Null struct {
	pixels int
	writes atomic.Uint64
}

// NewNull returns a Null driver for the given pixel count.
func NewNull(pixels int) *Null {
	return &Null{pixels: pixels}
}

// Write checks the frame length and discards the data.
func (n *Null) Write(rgb []byte) error {
	if len(rgb) != n.pixels*3 {
		return fmt.Errorf("strip: frame is %d bytes, driver expects %d for %d pixels",
			len(rgb), n.pixels*3, n.pixels)
	}
	n.writes.Add(1)
	return nil
}

// Close is a no-op.
func (n *Null) Close() error { return nil }

// Writes returns how many frames have been accepted.
func (n *Null) Writes() uint64 { return n.writes.Load() }
