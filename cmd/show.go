// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 raziber

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/raziber/globe/pkg/ledwire"
	"github.com/raziber/globe/pkg/strip"
)

var (
	showSegment string
	showSPI     string
	showOrder   string
	showDryRun  bool
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Drive a local LED strip from decoded frames",
	Long: `Decode incoming frames and push them to an LED strip attached to this
machine over SPI.

By default the whole frame is shown, which needs a strip as long as the
full installation. With --segment, only that segment's slice is shown,
so a controller's share can be previewed on a short bench strip.

With --dry-run (or an empty --spi on a machine without SPI), frames are
validated and counted but no hardware is touched.`,
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().StringVar(&showSegment, "segment", "", "Show only this segment (A, B, ...)")
	showCmd.Flags().StringVar(&showSPI, "spi", "", "SPI port name (default from config, \"\" = first available)")
	showCmd.Flags().StringVar(&showOrder, "order", "", "Strip channel order (default from config)")
	showCmd.Flags().BoolVar(&showDryRun, "dry-run", false, "Validate and count frames without hardware")
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg, err := settings.wireConfig()
	if err != nil {
		return err
	}
	assignment, err := cfg.Assignment()
	if err != nil {
		return err
	}

	// -1 means the whole frame.
	segment := -1
	if showSegment != "" {
		segment, err = findSegment(assignment, showSegment)
		if err != nil {
			return err
		}
	}

	pixels := cfg.TotalLEDs
	if segment >= 0 {
		pixels = assignment.Range(segment).Len()
	}

	orderName := settings.Strip.Order
	if cmd.Flags().Changed("order") {
		orderName = showOrder
	}
	order, err := strip.ParseOrder(orderName)
	if err != nil {
		return err
	}

	spiPort := settings.Strip.SPI
	if cmd.Flags().Changed("spi") {
		spiPort = showSPI
	}

	var driver strip.Driver
	if showDryRun {
		driver = strip.NewNull(pixels)
	} else {
		driver, err = strip.OpenNRZ(spiPort, pixels, order)
		if err != nil {
			return err
		}
	}
	defer driver.Close()

	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	session, err := ledwire.NewSession(cfg)
	if err != nil {
		return err
	}

	logger := log.With().Str("conn", connInfo).Logger()
	ev := logger.Info().Int("pixels", pixels).Str("order", order.String())
	if segment >= 0 {
		ev = ev.Str("segment", assignment.Label(segment))
	}
	if showDryRun {
		ev = ev.Bool("dry_run", true)
	}
	ev.Msg("showing frames")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	timeoutTicker := time.NewTicker(cfg.Timeout / 2)
	defer timeoutTicker.Stop()

	var shown uint64
	for {
		select {
		case <-ctx.Done():
			stats := session.Stats()
			logger.Info().
				Uint64("frames_shown", shown).
				Uint64("framing_errors", stats.FramingErrors).
				Uint64("timeouts", stats.Timeouts).
				Msg("stopped")
			return nil

		case err := <-readErr:
			if errors.Is(err, ErrLinkClosed) {
				return fmt.Errorf("link closed")
			}
			return fmt.Errorf("link read: %w", err)

		case now := <-timeoutTicker.C:
			if err := session.CheckTimeout(now); err != nil {
				logger.Warn().Msg("link idle, receive state cleared")
			}

		case data := <-chunks:
			for _, payload := range session.Ingest(data, time.Now()) {
				out := payload
				if segment >= 0 {
					out, err = assignment.Extract(payload, segment)
					if err != nil {
						return err
					}
				}
				if err := driver.Write(out); err != nil {
					return fmt.Errorf("strip write: %w", err)
				}
				shown++
			}
		}
	}
}

// findSegment resolves a segment label ("A", "B", ...) to its index.
func findSegment(assignment ledwire.Assignment, label string) (int, error) {
	for i := 0; i < assignment.Segments(); i++ {
		if strings.EqualFold(assignment.Label(i), label) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("no segment %q (assignment: %s)", label, assignment.String())
}
