// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 raziber

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/raziber/globe/pkg/ledwire"
)

var (
	forwardSourceAddr string
	forwardInterval   time.Duration
	forwardMQTTBroker string
	forwardMQTTTopic  string
)

var forwardCmd = &cobra.Command{
	Use:   "forward",
	Short: "Bridge a TCP frame source onto the LED link",
	Long: `Forward LED frames from a TCP source to the connected controllers.

The source emits newline-delimited JSON arrays, one frame per line, each
an array of [r,g,b] triples covering every LED:

  [[255,0,0],[0,255,0], ... ]

Frames are validated, framed and written to the serial link (or
WebSocket). When the source outpaces the link, only the newest frame is
kept. The source connection reconnects automatically with backoff; the
bridge keeps running across source outages.

With an MQTT broker configured, link statistics are published
periodically as JSON for remote monitoring.`,
	RunE: runForward,
}

func init() {
	rootCmd.AddCommand(forwardCmd)
	forwardCmd.Flags().StringVar(&forwardSourceAddr, "source", "", "TCP frame source address (host:port)")
	forwardCmd.Flags().DurationVar(&forwardInterval, "min-interval", 50*time.Millisecond, "Minimum delay between frame sends")
	forwardCmd.Flags().StringVar(&forwardMQTTBroker, "mqtt-broker", "", "MQTT broker URL for stats publishing")
	forwardCmd.Flags().StringVar(&forwardMQTTTopic, "mqtt-topic", "", "MQTT topic for stats")
}

// forwardStats is the telemetry snapshot published over MQTT and logged
// on shutdown.
type forwardStats struct {
	UptimeS          int64  `json:"uptime_s"`
	FramesSent       uint64 `json:"frames_sent"`
	FramesReceived   uint64 `json:"frames_received"`
	FramesDropped    uint64 `json:"frames_dropped"`
	FramesRejected   uint64 `json:"frames_rejected"`
	SourceReconnects uint64 `json:"source_reconnects"`
	BytesWritten     uint64 `json:"bytes_written"`
}

func runForward(cmd *cobra.Command, args []string) error {
	cfg, err := settings.wireConfig()
	if err != nil {
		return err
	}

	addr := settings.Source.Addr
	if cmd.Flags().Changed("source") {
		addr = forwardSourceAddr
	}
	if addr == "" {
		return fmt.Errorf("no frame source: use --source or set source.addr in %s", configPathHint())
	}

	codec, err := ledwire.NewCodec(cfg)
	if err != nil {
		return err
	}

	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := log.With().Str("conn", connInfo).Logger()
	logger.Info().
		Int("leds", cfg.TotalLEDs).
		Int("frame_bytes", cfg.FrameSize()).
		Dur("min_interval", forwardInterval).
		Msg("forwarding frames")

	source := newFrameSource(addr, cfg.TotalLEDs, logger)
	go source.run(ctx)

	start := time.Now()
	var sent, bytesWritten atomic.Uint64
	snapshot := func() any {
		return forwardStats{
			UptimeS:          int64(time.Since(start).Seconds()),
			FramesSent:       sent.Load(),
			FramesReceived:   source.received.Load(),
			FramesDropped:    source.dropped.Load(),
			FramesRejected:   source.rejected.Load(),
			SourceReconnects: source.reconnects.Load(),
			BytesWritten:     bytesWritten.Load(),
		}
	}

	broker := settings.MQTT.Broker
	if cmd.Flags().Changed("mqtt-broker") {
		broker = forwardMQTTBroker
	}
	topic := settings.MQTT.Topic
	if cmd.Flags().Changed("mqtt-topic") {
		topic = forwardMQTTTopic
	}
	if broker != "" {
		interval := time.Duration(settings.MQTT.IntervalS) * time.Second
		pub, err := newStatsPublisher(broker, topic, interval, snapshot, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("stats publishing disabled")
		} else {
			go pub.run(ctx)
		}
	}

	progress := time.NewTicker(30 * time.Second)
	defer progress.Stop()

	var lastSend time.Time
	for {
		select {
		case <-ctx.Done():
			logger.Info().
				Uint64("frames_sent", sent.Load()).
				Uint64("frames_dropped", source.dropped.Load()).
				Uint64("source_reconnects", source.reconnects.Load()).
				Msg("shutting down")
			return nil

		case <-progress.C:
			logger.Info().
				Uint64("frames_sent", sent.Load()).
				Uint64("frames_received", source.received.Load()).
				Uint64("frames_dropped", source.dropped.Load()).
				Msg("forwarding")

		case frame := <-source.frames:
			if wait := forwardInterval - time.Since(lastSend); wait > 0 {
				select {
				case <-ctx.Done():
					continue
				case <-time.After(wait):
				}
			}

			wire, err := codec.Encode(frame)
			if err != nil {
				// Source frames are validated, so this means the
				// config changed under us. Treat as fatal.
				return fmt.Errorf("encode frame: %w", err)
			}
			n, err := conn.Write(wire)
			if err != nil {
				return fmt.Errorf("link write: %w", err)
			}
			if n < len(wire) {
				return fmt.Errorf("link write: short write (%d of %d bytes)", n, len(wire))
			}
			sent.Add(1)
			bytesWritten.Add(uint64(n))
			lastSend = time.Now()
		}
	}
}
