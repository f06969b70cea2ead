// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 raziber

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/raziber/globe/pkg/ledwire"
)

var (
	monitorShowAll       bool
	monitorStatsInterval int
	monitorNoTUI         bool
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Watch LED link health in real time",
	Long: `Attach to the link and track frame traffic without driving anything.

Every received byte runs through the frame decoder. The monitor reports
decoded frames, framing errors with automatic resync, idle timeouts, and
running statistics (frame rate, error rate, discarded bytes).

With a terminal attached this runs a full-screen UI including a live
color preview of each LED segment. Use --no-tui (or redirect stdout) for
plain text output suitable for logging.`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
	monitorCmd.Flags().BoolVar(&monitorShowAll, "show-all", false, "Report every frame (not just errors)")
	monitorCmd.Flags().IntVar(&monitorStatsInterval, "stats-interval", 10, "Statistics summary interval (seconds)")
	monitorCmd.Flags().BoolVar(&monitorNoTUI, "no-tui", false, "Plain text output even on a terminal")
}

func runMonitor(cmd *cobra.Command, args []string) error {
	cfg, err := settings.wireConfig()
	if err != nil {
		return err
	}

	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	if !monitorNoTUI && term.IsTerminal(int(os.Stdout.Fd())) {
		return runMonitorTUI(conn, connInfo, cfg)
	}
	return runMonitorText(conn, connInfo, cfg)
}

// runMonitorText streams monitor output as plain lines.
func runMonitorText(conn Connection, connInfo string, cfg ledwire.Config) error {
	session, err := ledwire.NewSession(cfg)
	if err != nil {
		return err
	}
	assignment, err := cfg.Assignment()
	if err != nil {
		return err
	}

	fmt.Printf("Globe - Link Monitor\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Frame: %d LEDs, %d bytes on the wire\n", cfg.TotalLEDs, cfg.FrameSize())
	fmt.Printf("Segments: %s\n", assignment.String())
	fmt.Printf("Statistics interval: %d seconds\n", monitorStatsInterval)
	if monitorShowAll {
		fmt.Printf("Mode: All frames\n")
	} else {
		fmt.Printf("Mode: Errors only\n")
	}
	fmt.Printf("Press Ctrl+C to exit\n\n")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Channel for non-blocking link reads
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

	statsTicker := time.NewTicker(time.Duration(monitorStatsInterval) * time.Second)
	defer statsTicker.Stop()
	timeoutTicker := time.NewTicker(cfg.Timeout / 2)
	defer timeoutTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			fmt.Println()
			stats := session.Stats()
			stats.CalculateRates()
			fmt.Print(stats.String())
			return nil

		case err := <-readErr:
			if errors.Is(err, ErrLinkClosed) {
				return fmt.Errorf("link closed")
			}
			return fmt.Errorf("link read: %w", err)

		case data := <-chunks:
			before := session.Stats()
			frames := session.Ingest(data, time.Now())
			after := session.Stats()

			if n := after.FramingErrors - before.FramingErrors; n > 0 {
				timestamp := time.Now().Format("15:04:05.000")
				fmt.Printf("[%s] \033[1;31mFRAMING ERROR:\033[0m %d bad candidate(s), resynchronized\n", timestamp, n)
			}
			if monitorShowAll {
				for _, payload := range frames {
					printFrameSummary(payload, assignment)
				}
			}

		case now := <-timeoutTicker.C:
			if err := session.CheckTimeout(now); err != nil {
				timestamp := now.Format("15:04:05.000")
				fmt.Printf("[%s] \033[1;33mTIMEOUT:\033[0m link idle, receive state cleared\n", timestamp)
			}

		case <-statsTicker.C:
			fmt.Println()
			stats := session.Stats()
			stats.CalculateRates()
			fmt.Print(stats.String())
			fmt.Println()
		}
	}
}

// printFrameSummary prints one line per decoded frame with the first
// LED color of each segment.
func printFrameSummary(payload []byte, assignment ledwire.Assignment) {
	timestamp := time.Now().Format("15:04:05.000")
	fmt.Printf("[%s] FRAME %d bytes  %s\n", timestamp, len(payload), segmentColors(payload, assignment))
}
