// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 raziber

package ledwire

import (
	"bytes"
	"errors"
	"testing"
	"time"
)

// ============================================================
// Test Helpers
// ============================================================

// testConfig returns a small configuration (4 LEDs split 2/2) so frames
// stay readable in failure output.
func testConfig() Config {
	return Config{
		TotalLEDs: 4,
		Segments:  []int{2, 2},
		Sync1:     DefaultSync1,
		Sync2:     DefaultSync2,
		EndMarker: DefaultEndMarker,
		Timeout:   DefaultTimeout,
	}
}

// testPayload returns a payload for cfg whose bytes avoid the sync and
// end marker values, so tests control exactly where frames appear.
func testPayload(cfg Config) []byte {
	p := make([]byte, cfg.PayloadSize())
	for i := range p {
		p[i] = byte(i%9 + 1)
	}
	return p
}

// mustEncode frames a payload or fails the test.
func mustEncode(t *testing.T, cfg Config, payload []byte) []byte {
	t.Helper()
	codec, err := NewCodec(cfg)
	if err != nil {
		t.Fatalf("NewCodec error: %v", err)
	}
	frame, err := codec.Encode(payload)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	return frame
}

// ============================================================
// Config Tests
// ============================================================

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig should validate, got %v", err)
	}
	if cfg.TotalLEDs != 402 {
		t.Errorf("expected 402 LEDs, got %d", cfg.TotalLEDs)
	}
	if cfg.PayloadSize() != 1206 {
		t.Errorf("expected payload size 1206, got %d", cfg.PayloadSize())
	}
	if cfg.FrameSize() != 1209 {
		t.Errorf("expected frame size 1209, got %d", cfg.FrameSize())
	}
	if got := cfg.Segments[0] + cfg.Segments[1]; got != cfg.TotalLEDs {
		t.Errorf("segments sum to %d, want %d", got, cfg.TotalLEDs)
	}
}

func TestConfigValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero total", func(c *Config) { c.TotalLEDs = 0 }},
		{"no segments", func(c *Config) { c.Segments = nil }},
		{"zero segment", func(c *Config) { c.Segments = []int{4, 0} }},
		{"negative segment", func(c *Config) { c.Segments = []int{5, -1} }},
		{"sum too small", func(c *Config) { c.Segments = []int{2, 1} }},
		{"sum too large", func(c *Config) { c.Segments = []int{2, 3} }},
		{"equal sync bytes", func(c *Config) { c.Sync2 = c.Sync1 }},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !errors.Is(err, ErrConfig) {
				t.Errorf("expected error to wrap ErrConfig, got %v", err)
			}
			var ce *ConfigError
			if !errors.As(err, &ce) {
				t.Errorf("expected *ConfigError, got %T", err)
			}
		})
	}
}

// ============================================================
// Codec Encode Tests
// ============================================================

func TestEncode_Layout(t *testing.T) {
	cfg := testConfig()
	payload := testPayload(cfg)
	frame := mustEncode(t, cfg, payload)

	if len(frame) != cfg.FrameSize() {
		t.Fatalf("frame length: expected %d, got %d", cfg.FrameSize(), len(frame))
	}
	if frame[0] != cfg.Sync1 || frame[1] != cfg.Sync2 {
		t.Errorf("expected sync bytes %02X %02X, got %02X %02X", cfg.Sync1, cfg.Sync2, frame[0], frame[1])
	}
	if !bytes.Equal(frame[2:2+cfg.PayloadSize()], payload) {
		t.Error("payload bytes not copied in index order")
	}
	if frame[len(frame)-1] != cfg.EndMarker {
		t.Errorf("expected end marker %02X, got %02X", cfg.EndMarker, frame[len(frame)-1])
	}
}

func TestEncode_WrongPayloadSize(t *testing.T) {
	codec, err := NewCodec(testConfig())
	if err != nil {
		t.Fatalf("NewCodec error: %v", err)
	}
	for _, n := range []int{0, 1, codec.PayloadSize() - 1, codec.PayloadSize() + 1} {
		if _, err := codec.Encode(make([]byte, n)); err == nil {
			t.Errorf("expected error for %d-byte payload", n)
		}
	}
}

func TestEncode_InvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Segments = []int{2, 1}
	if _, err := NewCodec(cfg); err == nil {
		t.Fatal("expected NewCodec to reject invalid config")
	}
}

func TestAppendFrame_Batches(t *testing.T) {
	cfg := testConfig()
	codec, _ := NewCodec(cfg)
	p1 := testPayload(cfg)
	p2 := bytes.Repeat([]byte{0x07}, cfg.PayloadSize())

	out, err := codec.AppendFrame(nil, p1)
	if err != nil {
		t.Fatalf("AppendFrame error: %v", err)
	}
	out, err = codec.AppendFrame(out, p2)
	if err != nil {
		t.Fatalf("AppendFrame error: %v", err)
	}
	if len(out) != 2*cfg.FrameSize() {
		t.Fatalf("expected %d bytes for two frames, got %d", 2*cfg.FrameSize(), len(out))
	}

	got1, consumed, err := codec.Decode(out)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	got2, _, err := codec.Decode(out[consumed:])
	if err != nil {
		t.Fatalf("Decode error on second frame: %v", err)
	}
	if !bytes.Equal(got1, p1) || !bytes.Equal(got2, p2) {
		t.Error("batched frames did not round-trip in order")
	}
}

// ============================================================
// Codec Decode Tests
// ============================================================

func TestDecode_RoundTrip(t *testing.T) {
	for _, cfg := range []Config{testConfig(), DefaultConfig()} {
		codec, err := NewCodec(cfg)
		if err != nil {
			t.Fatalf("NewCodec error: %v", err)
		}
		payload := testPayload(cfg)
		frame, _ := codec.Encode(payload)

		got, consumed, err := codec.Decode(frame)
		if err != nil {
			t.Fatalf("Decode error: %v", err)
		}
		if consumed != len(frame) {
			t.Errorf("consumed: expected %d, got %d", len(frame), consumed)
		}
		if !bytes.Equal(got, payload) {
			t.Error("decoded payload differs from encoded payload")
		}
	}
}

func TestDecode_ReturnsCopy(t *testing.T) {
	cfg := testConfig()
	codec, _ := NewCodec(cfg)
	frame := mustEncode(t, cfg, testPayload(cfg))

	got, _, err := codec.Decode(frame)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	frame[2] ^= 0xFF
	if got[0] == frame[2] {
		t.Error("decoded payload aliases the input buffer")
	}
}

func TestDecode_NoisePrefix(t *testing.T) {
	cfg := testConfig()
	codec, _ := NewCodec(cfg)
	payload := testPayload(cfg)
	frame, _ := codec.Encode(payload)

	noise := []byte{0x01, 0xBB, 0x55, 0x03, 0xAA, 0x04, 0x55}
	data := append(append([]byte{}, noise...), frame...)

	got, consumed, err := codec.Decode(data)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if consumed != len(data) {
		t.Errorf("consumed: expected %d, got %d", len(data), consumed)
	}
	if !bytes.Equal(got, payload) {
		t.Error("frame after noise did not decode")
	}
}

func TestDecode_Incomplete(t *testing.T) {
	cfg := testConfig()
	codec, _ := NewCodec(cfg)
	frame := mustEncode(t, cfg, testPayload(cfg))

	tests := []struct {
		name     string
		data     []byte
		consumed int
	}{
		{"empty", []byte{}, 0},
		{"noise only", []byte{0x01, 0x02, 0x03}, 3},
		{"trailing sync1", []byte{0x01, 0x02, cfg.Sync1}, 2},
		{"sync pair only", []byte{cfg.Sync1, cfg.Sync2}, 0},
		{"missing end marker", frame[:len(frame)-1], 0},
		{"noise then partial", append([]byte{0x09, 0x08}, frame[:5]...), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, consumed, err := codec.Decode(tt.data)
			if !errors.Is(err, ErrIncompleteFrame) {
				t.Fatalf("expected ErrIncompleteFrame, got %v", err)
			}
			if payload != nil {
				t.Error("expected nil payload")
			}
			if consumed != tt.consumed {
				t.Errorf("consumed: expected %d, got %d", tt.consumed, consumed)
			}
		})
	}
}

func TestDecode_BadEndMarker(t *testing.T) {
	cfg := testConfig()
	codec, _ := NewCodec(cfg)
	frame := mustEncode(t, cfg, testPayload(cfg))
	frame[len(frame)-1] = 0x00

	payload, consumed, err := codec.Decode(frame)
	if payload != nil {
		t.Error("expected nil payload for corrupt frame")
	}
	if !errors.Is(err, ErrFraming) {
		t.Fatalf("expected error to wrap ErrFraming, got %v", err)
	}
	var fe *FramingError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FramingError, got %T", err)
	}
	if fe.Offset != 0 {
		t.Errorf("Offset: expected 0, got %d", fe.Offset)
	}
	if fe.Got != 0x00 || fe.Want != cfg.EndMarker {
		t.Errorf("expected got=0x00 want=0x%02X, got got=0x%02X want=0x%02X",
			cfg.EndMarker, fe.Got, fe.Want)
	}
	if consumed != 1 {
		t.Errorf("consumed: expected 1 (drop the failed SYNC_1), got %d", consumed)
	}
}

func TestDecode_CorruptThenValid(t *testing.T) {
	cfg := testConfig()
	codec, _ := NewCodec(cfg)
	payload := testPayload(cfg)
	good, _ := codec.Encode(payload)
	bad, _ := codec.Encode(bytes.Repeat([]byte{0x02}, cfg.PayloadSize()))
	bad[len(bad)-1] = 0x00

	data := append(append([]byte{}, bad...), good...)
	got, consumed, err := codec.Decode(data)
	if err != nil {
		t.Fatalf("expected the later valid frame to decode, got %v", err)
	}
	if consumed != len(data) {
		t.Errorf("consumed: expected %d, got %d", len(data), consumed)
	}
	if !bytes.Equal(got, payload) {
		t.Error("decoded payload is not the valid frame's payload")
	}
}

// A real frame can start inside a corrupt candidate's payload. The
// scanner must resume from the byte after the failed sync match, not
// from the end of the failed candidate.
func TestDecode_FrameInsideCorruptCandidate(t *testing.T) {
	cfg := testConfig()
	codec, _ := NewCodec(cfg)
	payload := testPayload(cfg)
	frame, _ := codec.Encode(payload)

	data := append([]byte{cfg.Sync1, cfg.Sync2}, frame...)

	got, consumed, err := codec.Decode(data)
	if err != nil {
		t.Fatalf("expected embedded frame to decode, got %v", err)
	}
	if consumed != len(data) {
		t.Errorf("consumed: expected %d, got %d", len(data), consumed)
	}
	if !bytes.Equal(got, payload) {
		t.Error("embedded frame payload mismatch")
	}
}

// ============================================================
// Session Tests
// ============================================================

func TestSession_SingleFrame(t *testing.T) {
	cfg := testConfig()
	s, err := NewSession(cfg)
	if err != nil {
		t.Fatalf("NewSession error: %v", err)
	}
	payload := testPayload(cfg)
	frame := mustEncode(t, cfg, payload)

	out := s.Ingest(frame, time.Now())
	if len(out) != 1 {
		t.Fatalf("expected 1 payload, got %d", len(out))
	}
	if !bytes.Equal(out[0], payload) {
		t.Error("session payload differs from encoded payload")
	}
	if s.State() != StateAwaitingSync {
		t.Errorf("expected StateAwaitingSync after frame, got %v", s.State())
	}
	if s.Buffered() != 0 {
		t.Errorf("expected empty accumulator, got %d bytes", s.Buffered())
	}
	if got := s.Stats().FramesDecoded; got != 1 {
		t.Errorf("FramesDecoded: expected 1, got %d", got)
	}
}

func TestSession_ByteAtATime(t *testing.T) {
	cfg := testConfig()
	s, _ := NewSession(cfg)
	payload := testPayload(cfg)
	frame := mustEncode(t, cfg, payload)

	now := time.Now()
	var out [][]byte
	for i := range frame {
		out = append(out, s.Ingest(frame[i:i+1], now)...)
		now = now.Add(time.Millisecond)
	}

	if len(out) != 1 {
		t.Fatalf("expected exactly 1 payload from byte-at-a-time delivery, got %d", len(out))
	}
	if !bytes.Equal(out[0], payload) {
		t.Error("byte-at-a-time payload differs from all-at-once payload")
	}
}

func TestSession_StateTransitions(t *testing.T) {
	cfg := testConfig()
	s, _ := NewSession(cfg)
	now := time.Now()

	if s.State() != StateAwaitingSync {
		t.Fatalf("initial state: expected StateAwaitingSync, got %v", s.State())
	}

	s.Ingest([]byte{cfg.Sync1}, now)
	if s.State() != StateAwaitingSync {
		t.Errorf("after lone SYNC_1: expected StateAwaitingSync, got %v", s.State())
	}

	s.Ingest([]byte{cfg.Sync2}, now)
	if s.State() != StateAccumulating {
		t.Errorf("after sync pair: expected StateAccumulating, got %v", s.State())
	}

	out := s.Ingest(mustEncode(t, cfg, testPayload(cfg))[2:], now)
	if len(out) != 1 {
		t.Fatalf("expected frame completion, got %d payloads", len(out))
	}
	if s.State() != StateAwaitingSync {
		t.Errorf("after frame: expected StateAwaitingSync, got %v", s.State())
	}
}

func TestSession_MultipleFramesOneIngest(t *testing.T) {
	cfg := testConfig()
	s, _ := NewSession(cfg)
	codec, _ := NewCodec(cfg)

	p1 := testPayload(cfg)
	p2 := bytes.Repeat([]byte{0x05}, cfg.PayloadSize())
	p3 := bytes.Repeat([]byte{0x06}, cfg.PayloadSize())

	var stream []byte
	for _, p := range [][]byte{p1, p2, p3} {
		stream, _ = codec.AppendFrame(stream, p)
	}

	out := s.Ingest(stream, time.Now())
	if len(out) != 3 {
		t.Fatalf("expected 3 payloads, got %d", len(out))
	}
	for i, want := range [][]byte{p1, p2, p3} {
		if !bytes.Equal(out[i], want) {
			t.Errorf("payload %d out of order or corrupted", i)
		}
	}
}

func TestSession_NoiseBetweenFrames(t *testing.T) {
	cfg := testConfig()
	s, _ := NewSession(cfg)
	p1 := testPayload(cfg)
	p2 := bytes.Repeat([]byte{0x04}, cfg.PayloadSize())
	f1 := mustEncode(t, cfg, p1)
	f2 := mustEncode(t, cfg, p2)

	var stream []byte
	stream = append(stream, 0x01, 0x02)
	stream = append(stream, f1...)
	stream = append(stream, 0x9F, 0x03, 0x77)
	stream = append(stream, f2...)

	out := s.Ingest(stream, time.Now())
	if len(out) != 2 {
		t.Fatalf("expected 2 payloads, got %d", len(out))
	}
	if !bytes.Equal(out[0], p1) || !bytes.Equal(out[1], p2) {
		t.Error("payloads around noise did not decode correctly")
	}
	if got := s.Stats().BytesDiscarded; got != 5 {
		t.Errorf("BytesDiscarded: expected 5, got %d", got)
	}
}

func TestSession_CorruptionRecovery(t *testing.T) {
	cfg := testConfig()
	s, _ := NewSession(cfg)
	payload := testPayload(cfg)
	good := mustEncode(t, cfg, payload)
	bad := mustEncode(t, cfg, bytes.Repeat([]byte{0x03}, cfg.PayloadSize()))
	bad[len(bad)-1] = 0x00

	now := time.Now()
	if out := s.Ingest(bad, now); len(out) != 0 {
		t.Fatalf("corrupt frame should emit nothing, got %d payloads", len(out))
	}
	if got := s.Stats().FramingErrors; got != 1 {
		t.Errorf("FramingErrors: expected 1, got %d", got)
	}

	out := s.Ingest(good, now.Add(time.Millisecond))
	if len(out) != 1 {
		t.Fatalf("expected recovery after corruption, got %d payloads", len(out))
	}
	if !bytes.Equal(out[0], payload) {
		t.Error("recovered payload mismatch")
	}
}

func TestSession_FrameInsideCorruptCandidate(t *testing.T) {
	cfg := testConfig()
	s, _ := NewSession(cfg)
	payload := testPayload(cfg)
	frame := mustEncode(t, cfg, payload)

	data := append([]byte{cfg.Sync1, cfg.Sync2}, frame...)
	out := s.Ingest(data, time.Now())
	if len(out) != 1 {
		t.Fatalf("expected embedded frame, got %d payloads", len(out))
	}
	if !bytes.Equal(out[0], payload) {
		t.Error("embedded frame payload mismatch")
	}
	if got := s.Stats().FramingErrors; got != 1 {
		t.Errorf("FramingErrors: expected 1, got %d", got)
	}
}

func TestSession_Timeout(t *testing.T) {
	cfg := testConfig()
	s, _ := NewSession(cfg)
	frame := mustEncode(t, cfg, testPayload(cfg))

	start := time.Now()
	s.Ingest(frame[:4], start)

	if err := s.CheckTimeout(start.Add(cfg.Timeout / 2)); err != nil {
		t.Fatalf("timeout fired too early: %v", err)
	}

	err := s.CheckTimeout(start.Add(cfg.Timeout + time.Millisecond))
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if s.State() != StateAwaitingSync || s.Buffered() != 0 {
		t.Error("timeout should clear the accumulator and rearm")
	}
	if got := s.Stats().Timeouts; got != 1 {
		t.Errorf("Timeouts: expected 1, got %d", got)
	}

	// A full frame afterwards decodes normally.
	payload := testPayload(cfg)
	out := s.Ingest(mustEncode(t, cfg, payload), start.Add(time.Second))
	if len(out) != 1 || !bytes.Equal(out[0], payload) {
		t.Error("frame after timeout did not decode")
	}
}

func TestSession_TimeoutIdle(t *testing.T) {
	cfg := testConfig()
	s, _ := NewSession(cfg)

	// Nothing ingested: never times out, no matter how late.
	if err := s.CheckTimeout(time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("idle session should not time out, got %v", err)
	}

	// A completed frame leaves no partial state behind.
	now := time.Now()
	s.Ingest(mustEncode(t, cfg, testPayload(cfg)), now)
	if err := s.CheckTimeout(now.Add(time.Hour)); err != nil {
		t.Fatalf("empty accumulator should not time out, got %v", err)
	}
}

func TestSession_Reset(t *testing.T) {
	cfg := testConfig()
	s, _ := NewSession(cfg)
	frame := mustEncode(t, cfg, testPayload(cfg))

	s.Ingest(frame[:6], time.Now())
	if s.Buffered() == 0 {
		t.Fatal("expected buffered bytes before reset")
	}
	s.Reset()
	if s.Buffered() != 0 || s.State() != StateAwaitingSync {
		t.Error("Reset should clear the accumulator and state")
	}

	// The dangling frame tail must not produce a payload.
	out := s.Ingest(frame[6:], time.Now())
	if len(out) != 0 {
		t.Errorf("expected no payload after reset, got %d", len(out))
	}
}

func TestSession_InvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Segments = []int{3, 2}
	if _, err := NewSession(cfg); err == nil {
		t.Fatal("expected NewSession to reject invalid config")
	}
}

// ============================================================
// Segment Assignment Tests
// ============================================================

func TestAssign_GlobeSplit(t *testing.T) {
	a, err := Assign(402, []int{220, 182})
	if err != nil {
		t.Fatalf("Assign error: %v", err)
	}
	if a.Segments() != 2 {
		t.Fatalf("expected 2 segments, got %d", a.Segments())
	}
	if got := a.Range(0); got != (Range{Start: 0, End: 220}) {
		t.Errorf("segment A range: expected [0,220), got %v", got)
	}
	if got := a.Range(1); got != (Range{Start: 220, End: 402}) {
		t.Errorf("segment B range: expected [220,402), got %v", got)
	}
	if a.Label(0) != "A" || a.Label(1) != "B" {
		t.Errorf("labels: expected A and B, got %s and %s", a.Label(0), a.Label(1))
	}
	if a.Total() != 402 {
		t.Errorf("total: expected 402, got %d", a.Total())
	}
}

func TestAssign_SumMismatch(t *testing.T) {
	_, err := Assign(402, []int{220, 181})
	if err == nil {
		t.Fatal("expected ConfigError for sizes summing to 401")
	}
	if !errors.Is(err, ErrConfig) {
		t.Errorf("expected error to wrap ErrConfig, got %v", err)
	}
	var ce *ConfigError
	if !errors.As(err, &ce) {
		t.Errorf("expected *ConfigError, got %T", err)
	}
}

func TestAssign_Errors(t *testing.T) {
	tests := []struct {
		name  string
		total int
		sizes []int
	}{
		{"zero total", 0, []int{1}},
		{"no segments", 10, nil},
		{"zero segment", 10, []int{10, 0}},
		{"negative segment", 10, []int{11, -1}},
		{"overshoot", 10, []int{8, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Assign(tt.total, tt.sizes); !errors.Is(err, ErrConfig) {
				t.Errorf("expected ConfigError, got %v", err)
			}
		})
	}
}

func TestAssign_SingleAndMany(t *testing.T) {
	a, err := Assign(7, []int{7})
	if err != nil {
		t.Fatalf("single segment Assign error: %v", err)
	}
	if a.Range(0) != (Range{Start: 0, End: 7}) {
		t.Errorf("single segment range: got %v", a.Range(0))
	}

	a, err = Assign(10, []int{1, 2, 3, 4})
	if err != nil {
		t.Fatalf("four segment Assign error: %v", err)
	}
	want := []Range{{0, 1}, {1, 3}, {3, 6}, {6, 10}}
	for i, w := range want {
		if a.Range(i) != w {
			t.Errorf("segment %d: expected %v, got %v", i, w, a.Range(i))
		}
	}
}

func TestExtract_GlobeSplit(t *testing.T) {
	a, _ := Assign(402, []int{220, 182})
	payload := make([]byte, 402*BytesPerLED)
	for i := range payload {
		payload[i] = byte(i)
	}

	segA, err := a.Extract(payload, 0)
	if err != nil {
		t.Fatalf("Extract A error: %v", err)
	}
	segB, err := a.Extract(payload, 1)
	if err != nil {
		t.Fatalf("Extract B error: %v", err)
	}

	if len(segA) != 220*BytesPerLED {
		t.Errorf("segment A: expected %d bytes, got %d", 220*BytesPerLED, len(segA))
	}
	if len(segB) != 182*BytesPerLED {
		t.Errorf("segment B: expected %d bytes, got %d", 182*BytesPerLED, len(segB))
	}
	if !bytes.Equal(append(append([]byte{}, segA...), segB...), payload) {
		t.Error("segments do not concatenate back to the original payload")
	}
}

func TestExtract_Errors(t *testing.T) {
	a, _ := Assign(4, []int{2, 2})
	payload := make([]byte, 4*BytesPerLED)

	if _, err := a.Extract(payload, -1); err == nil {
		t.Error("expected error for negative segment index")
	}
	if _, err := a.Extract(payload, 2); err == nil {
		t.Error("expected error for out of range segment index")
	}
	if _, err := a.Extract(payload[:5], 0); err == nil {
		t.Error("expected error for short payload")
	}
}

func TestExtract_DoesNotMutate(t *testing.T) {
	a, _ := Assign(4, []int{2, 2})
	payload := bytes.Repeat([]byte{0xAB}, 4*BytesPerLED)
	before := append([]byte{}, payload...)

	if _, err := a.Extract(payload, 1); err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	if !bytes.Equal(payload, before) {
		t.Error("Extract mutated the source payload")
	}
}

func TestAssignmentString(t *testing.T) {
	a, _ := Assign(402, []int{220, 182})
	if got := a.String(); got != "A[0,220) B[220,402)" {
		t.Errorf("String: expected %q, got %q", "A[0,220) B[220,402)", got)
	}
}

// ============================================================
// Frame Helper Tests
// ============================================================

func TestFrame_SetAtFill(t *testing.T) {
	f := NewFrame(3)
	if f.LEDs() != 3 || len(f) != 9 {
		t.Fatalf("NewFrame(3): expected 3 LEDs / 9 bytes, got %d / %d", f.LEDs(), len(f))
	}

	f.Set(1, 10, 20, 30)
	r, g, b := f.At(1)
	if r != 10 || g != 20 || b != 30 {
		t.Errorf("At(1): expected (10,20,30), got (%d,%d,%d)", r, g, b)
	}
	r, g, b = f.At(0)
	if r != 0 || g != 0 || b != 0 {
		t.Errorf("At(0): expected zeros, got (%d,%d,%d)", r, g, b)
	}

	f.Fill(1, 2, 3)
	for i := 0; i < f.LEDs(); i++ {
		if r, g, b := f.At(i); r != 1 || g != 2 || b != 3 {
			t.Fatalf("Fill: LED %d is (%d,%d,%d)", i, r, g, b)
		}
	}
}

func TestFrame_Clone(t *testing.T) {
	f := NewFrame(2)
	f.Set(0, 9, 9, 9)
	c := f.Clone()
	c.Set(0, 1, 1, 1)
	if r, _, _ := f.At(0); r != 9 {
		t.Error("Clone should not share storage with the original")
	}
}

// ============================================================
// CRC Tests
// ============================================================

func TestCalculateCRC_Empty(t *testing.T) {
	if crc := CalculateCRC([]byte{}); crc != crcInitial {
		t.Errorf("CRC of empty data should be initial value, got 0x%04X", crc)
	}
}

func TestCalculateCRC_CheckValue(t *testing.T) {
	// Standard CRC-16-CCITT check value.
	if crc := CalculateCRC([]byte("123456789")); crc != 0x29B1 {
		t.Errorf("CRC mismatch: expected 0x29B1, got 0x%04X", crc)
	}
}

func TestCalculateCRC_Deterministic(t *testing.T) {
	data := []byte{0xAA, 0x55, 0x01, 0x02, 0x03, 0xBB}
	if CalculateCRC(data) != CalculateCRC(data) {
		t.Error("CRC should be deterministic")
	}
}
