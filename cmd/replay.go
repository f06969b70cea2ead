// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 raziber

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/raziber/globe/pkg/ledwire"
)

var replaySpeed float64

var replayCmd = &cobra.Command{
	Use:   "replay <trace-file>",
	Short: "Play a recorded trace back into the link",
	Long: `Replay a trace recorded with 'globe capture', preserving the original
chunk boundaries and timing.

This reproduces field captures against real hardware: the controllers
see the same byte stream, gaps and all. Use --speed to compress or
stretch time (2.0 plays twice as fast, 0.5 half speed).

Records that fail their checksum are skipped with a warning; the rest
of the trace still plays.`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)
	replayCmd.Flags().Float64Var(&replaySpeed, "speed", 1.0, "Playback speed multiplier")
}

func runReplay(cmd *cobra.Command, args []string) error {
	if replaySpeed <= 0 {
		return fmt.Errorf("--speed must be positive, got %g", replaySpeed)
	}

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	reader, err := ledwire.NewTraceReader(f)
	if err != nil {
		return fmt.Errorf("open trace %s: %w", args[0], err)
	}

	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().
		Str("conn", connInfo).
		Str("file", args[0]).
		Time("captured", reader.Created()).
		Float64("speed", replaySpeed).
		Msg("replaying")

	start := time.Now()
	var records, bytes, skipped uint64
	for {
		rec, err := reader.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			if errors.Is(err, ledwire.ErrTraceCorrupt) {
				skipped++
				log.Warn().Err(err).Msg("skipping corrupt record")
				continue
			}
			return fmt.Errorf("read trace: %w", err)
		}

		due := time.Duration(float64(rec.OffsetMS)/replaySpeed) * time.Millisecond
		if wait := due - time.Since(start); wait > 0 {
			select {
			case <-ctx.Done():
				log.Info().Msg("replay interrupted")
				return nil
			case <-time.After(wait):
			}
		}

		if _, err := conn.Write(rec.Data); err != nil {
			return fmt.Errorf("link write: %w", err)
		}
		records++
		bytes += uint64(len(rec.Data))
	}

	log.Info().
		Uint64("records", records).
		Uint64("bytes", bytes).
		Uint64("skipped", skipped).
		Dur("took", time.Since(start)).
		Msg("replay complete")
	return nil
}
