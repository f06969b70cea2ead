// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 raziber

package ledwire

import (
	"fmt"
	"strings"
)

// Range is a contiguous half-open run of LED indices.
type Range struct {
	Start int
	End   int
}

// Len returns the number of LEDs in the range.
func (r Range) Len() int { return r.End - r.Start }

func (r Range) String() string { return fmt.Sprintf("[%d,%d)", r.Start, r.End) }

// Assignment maps each strip segment to its contiguous LED index range.
// Ranges never overlap and together cover [0, Total) exactly.
type Assignment struct {
	total  int
	ranges []Range
}

// Assign splits total LEDs across the given segment sizes in order. The
// sizes must be positive and sum to total exactly; anything else returns
// a *ConfigError. No silent truncation or padding.
func Assign(total int, sizes []int) (Assignment, error) {
	if total < 1 {
		return Assignment{}, configErrorf("total", "must be at least 1, got %d", total)
	}
	if len(sizes) == 0 {
		return Assignment{}, configErrorf("segments", "at least one segment is required")
	}

	ranges := make([]Range, len(sizes))
	at := 0
	for i, n := range sizes {
		if n < 1 {
			return Assignment{}, configErrorf("segments",
				"segment %s has size %d, must be at least 1", segmentLabel(i), n)
		}
		ranges[i] = Range{Start: at, End: at + n}
		at += n
	}
	if at != total {
		return Assignment{}, configErrorf("segments", "sizes sum to %d, want total %d", at, total)
	}

	return Assignment{total: total, ranges: ranges}, nil
}

// Total returns the LED count the assignment covers.
func (a Assignment) Total() int { return a.total }

// Segments returns the number of segments.
func (a Assignment) Segments() int { return len(a.ranges) }

// Range returns the LED index range of segment i.
func (a Assignment) Range(i int) Range { return a.ranges[i] }

// Label returns the display name of segment i: "A", "B", and so on.
func (a Assignment) Label(i int) string { return segmentLabel(i) }

// Extract returns the payload bytes belonging to segment i. The result
// aliases payload; it is a view, not a copy, and the source is never
// mutated.
func (a Assignment) Extract(payload []byte, i int) ([]byte, error) {
	if i < 0 || i >= len(a.ranges) {
		return nil, fmt.Errorf("ledwire: no segment %d in a %d-segment assignment", i, len(a.ranges))
	}
	if len(payload) != a.total*BytesPerLED {
		return nil, fmt.Errorf("ledwire: payload is %d bytes, assignment covers %d",
			len(payload), a.total*BytesPerLED)
	}
	r := a.ranges[i]
	return payload[r.Start*BytesPerLED : r.End*BytesPerLED], nil
}

func (a Assignment) String() string {
	var b strings.Builder
	for i, r := range a.ranges {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s%s", segmentLabel(i), r)
	}
	return b.String()
}

func segmentLabel(i int) string {
	if i >= 0 && i < 26 {
		return string(rune('A' + i))
	}
	return fmt.Sprintf("S%d", i)
}
