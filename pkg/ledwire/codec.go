// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 raziber

package ledwire

import "fmt"

// Codec encodes payloads into wire frames and decodes frames back out of
// byte buffers. It is stateless; Session adds the streaming state on top.
type Codec struct {
	cfg Config
}

// NewCodec validates the configuration and returns a codec bound to it.
func NewCodec(cfg Config) (*Codec, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Codec{cfg: cfg}, nil
}

// Config returns the configuration the codec was built with.
func (c *Codec) Config() Config { return c.cfg }

// PayloadSize returns the fixed payload length in bytes.
func (c *Codec) PayloadSize() int { return c.cfg.PayloadSize() }

// FrameSize returns the full on-wire frame length in bytes.
func (c *Codec) FrameSize() int { return c.cfg.FrameSize() }

// Encode frames a payload for transmission. The payload must be exactly
// PayloadSize bytes; the output is always FrameSize bytes.
func (c *Codec) Encode(payload []byte) ([]byte, error) {
	return c.AppendFrame(make([]byte, 0, c.cfg.FrameSize()), payload)
}

// AppendFrame appends the framed payload to dst and returns the extended
// slice, for callers that batch several frames into one write.
func (c *Codec) AppendFrame(dst, payload []byte) ([]byte, error) {
	if len(payload) != c.cfg.PayloadSize() {
		return nil, fmt.Errorf("ledwire: payload is %d bytes, frame carries exactly %d",
			len(payload), c.cfg.PayloadSize())
	}
	dst = append(dst, c.cfg.Sync1, c.cfg.Sync2)
	dst = append(dst, payload...)
	dst = append(dst, c.cfg.EndMarker)
	return dst, nil
}

// Decode scans data for the first decodable frame.
//
// On success it returns a copy of the payload and the number of leading
// bytes consumed, counted one past the frame's end marker. The caller
// should drop consumed bytes and call again for further frames.
//
// On ErrIncompleteFrame, consumed counts leading bytes that can never
// start a frame; the caller drops them, keeps the rest, and retries once
// more data arrives.
//
// On *FramingError a complete candidate frame failed its end marker
// check and no later frame decoded. consumed reaches one past the failed
// candidate's SYNC_1, so dropping consumed bytes lets the next scan see
// any sync sequence hidden inside the corrupt candidate's payload.
func (c *Codec) Decode(data []byte) (payload []byte, consumed int, err error) {
	tail := c.cfg.PayloadSize() + 1 // bytes required after the sync pair
	search := 0
	var failed *FramingError

	for {
		at := indexSyncPair(data[search:], c.cfg.Sync1, c.cfg.Sync2)
		if at < 0 {
			break
		}
		at += search

		if len(data)-at-2 < tail {
			if failed != nil {
				return nil, failed.Offset + 1, failed
			}
			return nil, at, ErrIncompleteFrame
		}

		endAt := at + 2 + c.cfg.PayloadSize()
		if data[endAt] != c.cfg.EndMarker {
			if failed == nil {
				failed = &FramingError{Offset: at, Got: data[endAt], Want: c.cfg.EndMarker}
			}
			// Rescan from the byte after the sync match, not from the end
			// of the failed candidate: a real frame may start inside it.
			search = at + 1
			continue
		}

		payload = make([]byte, c.cfg.PayloadSize())
		copy(payload, data[at+2:endAt])
		return payload, endAt + 1, nil
	}

	if failed != nil {
		return nil, failed.Offset + 1, failed
	}

	// No sync pair anywhere. Everything is droppable except a trailing
	// SYNC_1, which may pair with the first byte of the next read.
	n := len(data)
	if n > 0 && data[n-1] == c.cfg.Sync1 {
		n--
	}
	return nil, n, ErrIncompleteFrame
}

// indexSyncPair returns the index of the first sync1 byte immediately
// followed by sync2, or -1 if the pair does not occur.
func indexSyncPair(data []byte, sync1, sync2 byte) int {
	for i := 0; i+1 < len(data); i++ {
		if data[i] == sync1 && data[i+1] == sync2 {
			return i
		}
	}
	return -1
}
