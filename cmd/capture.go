// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 raziber

package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/raziber/globe/pkg/ledwire"
)

var (
	captureOut      string
	captureDuration time.Duration
)

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Record raw link traffic to a trace file",
	Long: `Record every byte received on the link, with arrival timestamps,
into a trace file for later analysis or replay.

Traces preserve chunk boundaries and timing, so a replayed trace
reproduces the byte stream the way it actually arrived, including any
noise or partial frames. Each record carries a checksum so file
corruption is detected on read.

Stop with Ctrl+C, or use --duration for unattended captures. Inspect
traces with 'globe replay' or decode them with 'globe dump --file'
after replaying into a file.`,
	RunE: runCapture,
}

func init() {
	rootCmd.AddCommand(captureCmd)
	captureCmd.Flags().StringVar(&captureOut, "out", "", "Trace file to write (required)")
	captureCmd.Flags().DurationVar(&captureDuration, "duration", 0, "Stop after this long (0 = until interrupted)")
	captureCmd.MarkFlagRequired("out")
}

func runCapture(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	f, err := os.Create(captureOut)
	if err != nil {
		return err
	}
	defer f.Close()

	buffered := bufio.NewWriter(f)
	writer, err := ledwire.NewTraceWriter(buffered, time.Now())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if captureDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, captureDuration)
		defer cancel()
	}

	log.Info().Str("conn", connInfo).Str("file", captureOut).Msg("capturing")

	chunks := make(chan []byte, 10)
	readErr := make(chan error, 1)
	go func() {
		buf := make([]byte, 4096)
		for {
			n, err := conn.Read(buf)
			if err != nil {
				readErr <- err
				return
			}
			data := make([]byte, n)
			copy(data, buf[:n])
			select {
			case chunks <- data:
			case <-ctx.Done():
				return
			}
		}
	}()

	var records, bytes uint64
	finish := func() error {
		if err := buffered.Flush(); err != nil {
			return err
		}
		log.Info().
			Uint64("records", records).
			Uint64("bytes", bytes).
			Str("file", captureOut).
			Msg("capture complete")
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return finish()

		case err := <-readErr:
			if errors.Is(err, ErrLinkClosed) {
				log.Warn().Msg("link closed")
				return finish()
			}
			buffered.Flush()
			return fmt.Errorf("link read: %w", err)

		case data := <-chunks:
			if err := writer.Record(data, time.Now()); err != nil {
				buffered.Flush()
				return fmt.Errorf("write trace: %w", err)
			}
			records++
			bytes += uint64(len(data))
		}
	}
}
