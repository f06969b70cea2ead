// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 raziber

package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/raziber/globe/pkg/ledwire"
)

const (
	sourceDialTimeout    = 5 * time.Second
	sourceBackoffInitial = 1 * time.Second
	sourceBackoffMax     = 30 * time.Second

	// Lines carry one JSON array per frame; 402 LEDs is ~6 KB, so the
	// scanner limit leaves plenty of headroom for larger strips.
	sourceMaxLine = 1 << 20
)

// frameSource pulls LED frames from a TCP server emitting newline
// delimited JSON arrays of [r,g,b] triples. It keeps exactly one frame
// pending: when the link is slower than the source, older frames are
// dropped so the strip always shows the newest state.
type frameSource struct {
	addr   string
	total  int
	frames chan ledwire.Frame
	log    zerolog.Logger

	received   atomic.Uint64
	dropped    atomic.Uint64
	rejected   atomic.Uint64
	reconnects atomic.Uint64
}

func newFrameSource(addr string, total int, log zerolog.Logger) *frameSource {
	return &frameSource{
		addr:   addr,
		total:  total,
		frames: make(chan ledwire.Frame, 1),
		log:    log.With().Str("source", addr).Logger(),
	}
}

// run maintains the source connection until ctx is canceled,
// reconnecting with doubling backoff after any failure.
func (fs *frameSource) run(ctx context.Context) {
	backoff := sourceBackoffInitial
	for first := true; ; first = false {
		if !first {
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > sourceBackoffMax {
				backoff = sourceBackoffMax
			}
		}

		conn, err := fs.dial(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			fs.log.Warn().Err(err).Msg("source connect failed")
			continue
		}

		backoff = sourceBackoffInitial
		fs.log.Info().Msg("source connected")

		err = fs.read(ctx, conn)
		conn.Close()
		if ctx.Err() != nil {
			return
		}
		fs.reconnects.Add(1)
		fs.log.Warn().Err(err).Msg("source connection lost")
	}
}

func (fs *frameSource) dial(ctx context.Context) (net.Conn, error) {
	d := net.Dialer{Timeout: sourceDialTimeout}
	return d.DialContext(ctx, "tcp", fs.addr)
}

// read consumes frames from one connection until it fails or ctx is
// canceled. Malformed lines are logged and skipped; the connection
// stays up.
func (fs *frameSource) read(ctx context.Context, conn net.Conn) error {
	readDone := make(chan struct{})
	defer close(readDone)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-readDone:
		}
	}()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 64*1024), sourceMaxLine)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		frame, err := parseFrameLine(line, fs.total)
		if err != nil {
			fs.rejected.Add(1)
			fs.log.Warn().Err(err).Msg("rejected source frame")
			continue
		}
		fs.push(frame)
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return fmt.Errorf("source closed the connection")
}

// push replaces any pending frame with the newer one.
func (fs *frameSource) push(frame ledwire.Frame) {
	fs.received.Add(1)
	for {
		select {
		case fs.frames <- frame:
			return
		default:
		}
		select {
		case <-fs.frames:
			fs.dropped.Add(1)
		default:
		}
	}
}

// parseFrameLine decodes one JSON frame line: an array of exactly total
// [r,g,b] triples with channel values 0..255.
func parseFrameLine(line []byte, total int) (ledwire.Frame, error) {
	var triples [][]int
	if err := json.Unmarshal(line, &triples); err != nil {
		return nil, fmt.Errorf("bad frame JSON: %w", err)
	}
	if len(triples) != total {
		return nil, fmt.Errorf("frame has %d LEDs, expected %d", len(triples), total)
	}

	frame := ledwire.NewFrame(total)
	for i, rgb := range triples {
		if len(rgb) != 3 {
			return nil, fmt.Errorf("LED %d has %d channels, expected 3", i, len(rgb))
		}
		for c, v := range rgb {
			if v < 0 || v > 255 {
				return nil, fmt.Errorf("LED %d channel %d is %d, expected 0..255", i, c, v)
			}
			frame[i*ledwire.BytesPerLED+c] = byte(v)
		}
	}
	return frame, nil
}
