// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 raziber

package ledwire

import "time"

// State is the receive state of a Session.
type State int

const (
	// StateAwaitingSync means no frame is in progress; the session is
	// scanning for the sync sequence.
	StateAwaitingSync State = iota

	// StateAccumulating means the sync sequence has been seen and the
	// session is collecting the payload and end marker.
	StateAccumulating
)

func (s State) String() string {
	switch s {
	case StateAwaitingSync:
		return "SYNC"
	case StateAccumulating:
		return "DATA"
	default:
		return "UNKNOWN"
	}
}

// Session is one receiver's view of the byte stream. It accumulates bytes
// as they arrive, emits each decoded payload, resynchronizes past noise
// and corrupt frames, and abandons a stalled partial frame after
// Config.Timeout.
//
// A session is owned by a single reader: Ingest and CheckTimeout are meant
// to be called from one control loop and are not safe for concurrent use.
// Timestamps are passed in rather than read from the clock so the owner
// controls time, in tests and in replay alike.
type Session struct {
	cfg   Config
	buf   []byte
	state State

	lastByte time.Time
	sawByte  bool

	stats Stats
}

// NewSession validates the configuration and returns a session ready to
// ingest bytes.
func NewSession(cfg Config) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Session{
		cfg:   cfg,
		buf:   make([]byte, 0, cfg.FrameSize()*2),
		state: StateAwaitingSync,
		stats: newStats(time.Now()),
	}, nil
}

// Config returns the configuration the session was built with.
func (s *Session) Config() Config { return s.cfg }

// State returns the current receive state.
func (s *Session) State() State { return s.state }

// Buffered returns the number of accumulated bytes awaiting a frame
// boundary.
func (s *Session) Buffered() int { return len(s.buf) }

// Stats returns a snapshot of the session counters with rates filled in.
func (s *Session) Stats() Stats {
	snap := s.stats
	snap.CalculateRates()
	return snap
}

// Reset forces the session back to its initial state, dropping any
// accumulated bytes. This is the owner's cancellation primitive.
func (s *Session) Reset() {
	s.buf = s.buf[:0]
	s.state = StateAwaitingSync
	s.sawByte = false
}

// Ingest appends newly received bytes and returns every payload that
// completed, in arrival order. Framing errors never surface here: the
// session drops the corrupt candidate's first byte, rescans, and counts
// the event in Stats. The returned payloads are copies and remain valid
// after further ingestion.
func (s *Session) Ingest(data []byte, now time.Time) [][]byte {
	if len(data) > 0 {
		s.buf = append(s.buf, data...)
		s.lastByte = now
		s.sawByte = true
		s.stats.BytesIngested += uint64(len(data))
	}
	return s.drain()
}

// CheckTimeout abandons a stalled partial frame. If more than
// Config.Timeout has passed since the last byte while the session holds
// partial state, the accumulator is cleared, the session rearms for the
// next sync sequence, and ErrTimeout is returned for the caller's
// telemetry. The error is a report, not a failure: the session has
// already recovered.
func (s *Session) CheckTimeout(now time.Time) error {
	if s.state == StateAwaitingSync && len(s.buf) == 0 {
		return nil
	}
	if !s.sawByte || now.Sub(s.lastByte) <= s.cfg.Timeout {
		return nil
	}
	s.stats.Timeouts++
	s.stats.BytesDiscarded += uint64(len(s.buf))
	s.Reset()
	return ErrTimeout
}

// drain consumes as many complete frames as the accumulator holds.
func (s *Session) drain() [][]byte {
	var out [][]byte

	for {
		// Drop leading bytes that cannot start a frame.
		at := indexSyncPair(s.buf, s.cfg.Sync1, s.cfg.Sync2)
		if at < 0 {
			keep := 0
			if n := len(s.buf); n > 0 && s.buf[n-1] == s.cfg.Sync1 {
				keep = 1
			}
			s.discard(len(s.buf) - keep)
			s.state = StateAwaitingSync
			return out
		}
		s.discard(at)
		s.state = StateAccumulating

		if len(s.buf) < s.cfg.FrameSize() {
			return out
		}

		endAt := 2 + s.cfg.PayloadSize()
		if s.buf[endAt] != s.cfg.EndMarker {
			// Corrupt candidate. Drop only its SYNC_1 and rescan: the rest
			// of the candidate may hide the start of a real frame.
			s.stats.FramingErrors++
			s.discard(1)
			s.state = StateAwaitingSync
			continue
		}

		payload := make([]byte, s.cfg.PayloadSize())
		copy(payload, s.buf[2:endAt])
		out = append(out, payload)
		s.consume(s.cfg.FrameSize())
		s.state = StateAwaitingSync
		s.stats.FramesDecoded++
		s.stats.LastFrameTime = s.lastByte
	}
}

// discard removes n front bytes as noise, counting them.
func (s *Session) discard(n int) {
	if n <= 0 {
		return
	}
	s.stats.BytesDiscarded += uint64(n)
	s.consume(n)
}

// consume removes n front bytes without counting them as discarded.
func (s *Session) consume(n int) {
	s.buf = s.buf[:copy(s.buf, s.buf[n:])]
}
