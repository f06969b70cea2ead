// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 raziber

package ledwire

import (
	"fmt"
	"io"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// Trace files record the raw bytes seen on a link, chunk by chunk with
// arrival times, so field captures can be replayed against a session with
// the original pacing. The format is a CBOR stream: one header, then one
// record per chunk. Integer keys keep records compact.

// traceVersion is the capture file schema version this package writes.
const traceVersion = 1

type traceHeader struct {
	Version   int64 `cbor:"1,keyasint"`
	CreatedMS int64 `cbor:"2,keyasint"`
}

// TraceRecord is one timestamped chunk of raw link bytes.
type TraceRecord struct {
	// OffsetMS is the chunk's arrival time in milliseconds since the
	// capture started.
	OffsetMS int64 `cbor:"1,keyasint"`

	// Data is the chunk exactly as read from the link.
	Data []byte `cbor:"2,keyasint"`

	// CRC is the CRC-16-CCITT of Data.
	CRC uint16 `cbor:"3,keyasint"`
}

// TraceWriter appends timestamped chunks to a capture stream.
type TraceWriter struct {
	enc   *cbor.Encoder
	start time.Time
}

// NewTraceWriter writes the capture header and returns a writer whose
// record offsets count from now.
func NewTraceWriter(w io.Writer, now time.Time) (*TraceWriter, error) {
	enc := cbor.NewEncoder(w)
	hdr := traceHeader{Version: traceVersion, CreatedMS: now.UnixMilli()}
	if err := enc.Encode(hdr); err != nil {
		return nil, fmt.Errorf("ledwire: write trace header: %w", err)
	}
	return &TraceWriter{enc: enc, start: now}, nil
}

// Record appends one chunk with its arrival time. Empty chunks are
// skipped.
func (tw *TraceWriter) Record(chunk []byte, now time.Time) error {
	if len(chunk) == 0 {
		return nil
	}
	offset := now.Sub(tw.start).Milliseconds()
	if offset < 0 {
		offset = 0
	}
	rec := TraceRecord{OffsetMS: offset, Data: chunk, CRC: CalculateCRC(chunk)}
	if err := tw.enc.Encode(rec); err != nil {
		return fmt.Errorf("ledwire: write trace record: %w", err)
	}
	return nil
}

// TraceReader reads a capture stream record by record.
type TraceReader struct {
	dec     *cbor.Decoder
	created time.Time
}

// NewTraceReader reads and checks the capture header.
func NewTraceReader(r io.Reader) (*TraceReader, error) {
	dec := cbor.NewDecoder(r)
	var hdr traceHeader
	if err := dec.Decode(&hdr); err != nil {
		return nil, fmt.Errorf("ledwire: read trace header: %w", err)
	}
	if hdr.Version != traceVersion {
		return nil, fmt.Errorf("ledwire: unsupported trace version %d (want %d)", hdr.Version, traceVersion)
	}
	return &TraceReader{dec: dec, created: time.UnixMilli(hdr.CreatedMS)}, nil
}

// Created returns the wall time the capture started.
func (tr *TraceReader) Created() time.Time { return tr.created }

// Next returns the next record, or io.EOF at the end of the stream. A
// record whose CRC does not match its data is returned alongside an
// error wrapping ErrTraceCorrupt, so callers can choose to skip it.
func (tr *TraceReader) Next() (*TraceRecord, error) {
	var rec TraceRecord
	if err := tr.dec.Decode(&rec); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("ledwire: read trace record: %w", err)
	}
	if got := CalculateCRC(rec.Data); got != rec.CRC {
		return &rec, fmt.Errorf("%w: record at +%dms: crc 0x%04X, want 0x%04X",
			ErrTraceCorrupt, rec.OffsetMS, got, rec.CRC)
	}
	return &rec, nil
}
