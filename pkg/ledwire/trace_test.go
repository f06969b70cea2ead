// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 raziber

package ledwire

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// ============================================================
// Trace File Tests
// ============================================================

func TestTrace_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	start := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	tw, err := NewTraceWriter(&buf, start)
	if err != nil {
		t.Fatalf("NewTraceWriter error: %v", err)
	}

	chunks := [][]byte{
		{0xAA, 0x55, 0x01},
		{0x02, 0x03},
		{0xBB},
	}
	for i, c := range chunks {
		if err := tw.Record(c, start.Add(time.Duration(i*50)*time.Millisecond)); err != nil {
			t.Fatalf("Record %d error: %v", i, err)
		}
	}

	tr, err := NewTraceReader(&buf)
	if err != nil {
		t.Fatalf("NewTraceReader error: %v", err)
	}
	if !tr.Created().Equal(start) {
		t.Errorf("Created: expected %v, got %v", start, tr.Created())
	}

	for i, want := range chunks {
		rec, err := tr.Next()
		if err != nil {
			t.Fatalf("Next %d error: %v", i, err)
		}
		if rec.OffsetMS != int64(i*50) {
			t.Errorf("record %d offset: expected %d, got %d", i, i*50, rec.OffsetMS)
		}
		if !bytes.Equal(rec.Data, want) {
			t.Errorf("record %d data mismatch", i)
		}
	}

	if _, err := tr.Next(); err != io.EOF {
		t.Errorf("expected io.EOF at end of trace, got %v", err)
	}
}

func TestTrace_SkipsEmptyChunks(t *testing.T) {
	var buf bytes.Buffer
	start := time.Now()
	tw, _ := NewTraceWriter(&buf, start)

	if err := tw.Record(nil, start); err != nil {
		t.Fatalf("Record(nil) error: %v", err)
	}
	if err := tw.Record([]byte{0x01}, start); err != nil {
		t.Fatalf("Record error: %v", err)
	}

	tr, _ := NewTraceReader(&buf)
	rec, err := tr.Next()
	if err != nil {
		t.Fatalf("Next error: %v", err)
	}
	if !bytes.Equal(rec.Data, []byte{0x01}) {
		t.Error("expected the non-empty chunk first")
	}
	if _, err := tr.Next(); err != io.EOF {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

func TestTrace_NegativeOffsetClamped(t *testing.T) {
	var buf bytes.Buffer
	start := time.Now()
	tw, _ := NewTraceWriter(&buf, start)

	if err := tw.Record([]byte{0x05}, start.Add(-time.Second)); err != nil {
		t.Fatalf("Record error: %v", err)
	}

	tr, _ := NewTraceReader(&buf)
	rec, err := tr.Next()
	if err != nil {
		t.Fatalf("Next error: %v", err)
	}
	if rec.OffsetMS != 0 {
		t.Errorf("expected clamped offset 0, got %d", rec.OffsetMS)
	}
}

func TestTrace_CorruptRecord(t *testing.T) {
	var buf bytes.Buffer
	start := time.Now()
	tw, _ := NewTraceWriter(&buf, start)
	if err := tw.Record([]byte{0x01, 0x02}, start); err != nil {
		t.Fatalf("Record error: %v", err)
	}

	// Append a record whose CRC does not match its data, then a valid one.
	enc := cbor.NewEncoder(&buf)
	if err := enc.Encode(TraceRecord{OffsetMS: 10, Data: []byte{0x03}, CRC: 0xDEAD}); err != nil {
		t.Fatalf("encode corrupt record: %v", err)
	}
	if err := tw.Record([]byte{0x04}, start.Add(20*time.Millisecond)); err != nil {
		t.Fatalf("Record error: %v", err)
	}

	tr, err := NewTraceReader(&buf)
	if err != nil {
		t.Fatalf("NewTraceReader error: %v", err)
	}

	if _, err := tr.Next(); err != nil {
		t.Fatalf("first record should be valid, got %v", err)
	}

	rec, err := tr.Next()
	if !errors.Is(err, ErrTraceCorrupt) {
		t.Fatalf("expected ErrTraceCorrupt, got %v", err)
	}
	if rec == nil || !bytes.Equal(rec.Data, []byte{0x03}) {
		t.Error("corrupt record should still be returned for inspection")
	}

	// The stream stays aligned: the next record reads cleanly.
	rec, err = tr.Next()
	if err != nil {
		t.Fatalf("record after corrupt one should decode, got %v", err)
	}
	if !bytes.Equal(rec.Data, []byte{0x04}) {
		t.Error("expected the valid record after the corrupt one")
	}
}

func TestTrace_UnsupportedVersion(t *testing.T) {
	var buf bytes.Buffer
	enc := cbor.NewEncoder(&buf)
	if err := enc.Encode(traceHeader{Version: 99, CreatedMS: time.Now().UnixMilli()}); err != nil {
		t.Fatalf("encode header: %v", err)
	}

	if _, err := NewTraceReader(&buf); err == nil {
		t.Fatal("expected version error, got nil")
	}
}

func TestTrace_TruncatedHeader(t *testing.T) {
	if _, err := NewTraceReader(bytes.NewReader(nil)); err == nil {
		t.Fatal("expected error for empty trace")
	}
}
