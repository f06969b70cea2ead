// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 raziber

package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/raziber/globe/pkg/ledwire"
)

var (
	dumpFile  string
	dumpLimit int
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Decode and print raw frame traffic",
	Long: `Continuously decode the link and print one line per frame, with
framing errors called out as they happen.

With --file, decodes a captured byte stream offline instead of opening a
connection. The file is scanned exactly like live traffic: noise is
skipped, corrupt frame candidates are reported with their offset, and a
summary is printed at the end.`,
	RunE: runDump,
}

func init() {
	rootCmd.AddCommand(dumpCmd)
	dumpCmd.Flags().StringVar(&dumpFile, "file", "", "Decode this capture file instead of a live connection")
	dumpCmd.Flags().IntVar(&dumpLimit, "limit", 0, "Stop after N frames (0 = unlimited)")
}

func runDump(cmd *cobra.Command, args []string) error {
	cfg, err := settings.wireConfig()
	if err != nil {
		return err
	}

	if dumpFile != "" {
		return dumpFromFile(cfg, dumpFile)
	}
	return dumpLive(cfg)
}

// dumpFromFile scans a captured byte stream and reports every frame and
// framing error with its file offset.
func dumpFromFile(cfg ledwire.Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	codec, err := ledwire.NewCodec(cfg)
	if err != nil {
		return err
	}
	assignment, err := cfg.Assignment()
	if err != nil {
		return err
	}

	fmt.Printf("Globe - Frame Dump\n")
	fmt.Printf("File: %s (%d bytes)\n", path, len(data))
	fmt.Printf("Frame: %d LEDs, %d bytes on the wire\n\n", cfg.TotalLEDs, cfg.FrameSize())

	var frames, framingErrors int
	offset := 0
	for offset < len(data) {
		payload, consumed, err := codec.Decode(data[offset:])
		switch {
		case err == nil:
			frames++
			fmt.Printf("frame %4d @ %6d: %d bytes  %s\n",
				frames, offset, len(payload), segmentColors(payload, assignment))
			if dumpLimit > 0 && frames >= dumpLimit {
				fmt.Printf("\n(limit reached)\n")
				offset = len(data)
				continue
			}

		case errors.Is(err, ledwire.ErrFraming):
			framingErrors++
			var fe *ledwire.FramingError
			if errors.As(err, &fe) {
				fmt.Printf("\033[1;31merror\033[0m      @ %6d: end marker 0x%02X, want 0x%02X\n",
					offset+fe.Offset, fe.Got, fe.Want)
			} else {
				fmt.Printf("\033[1;31merror\033[0m      @ %6d: %v\n", offset, err)
			}

		case errors.Is(err, ledwire.ErrIncompleteFrame):
			if rest := len(data) - offset - consumed; rest > 0 {
				fmt.Printf("\n%d trailing bytes do not form a complete frame\n", rest)
			}
			offset = len(data)
			continue
		}

		if consumed == 0 {
			break
		}
		offset += consumed
	}

	fmt.Printf("\n%d frames, %d framing errors\n", frames, framingErrors)
	if framingErrors == 0 && frames > 0 {
		fmt.Printf("\033[1;32mstream OK\033[0m\n")
	} else if frames == 0 {
		fmt.Printf("\033[1;31mno valid frames found\033[0m\n")
	}
	return nil
}

// dumpLive decodes the connection until the limit is hit or the link
// closes.
func dumpLive(cfg ledwire.Config) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	session, err := ledwire.NewSession(cfg)
	if err != nil {
		return err
	}
	assignment, err := cfg.Assignment()
	if err != nil {
		return err
	}

	fmt.Printf("Globe - Frame Dump\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Press Ctrl+C to exit\n\n")

	var frames int
	buf := make([]byte, 4096)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			if errors.Is(err, ErrLinkClosed) {
				fmt.Printf("\nConnection closed\n")
				return nil
			}
			return fmt.Errorf("link read: %w", err)
		}

		now := time.Now()
		before := session.Stats()
		decoded := session.Ingest(buf[:n], now)
		after := session.Stats()

		if errs := after.FramingErrors - before.FramingErrors; errs > 0 {
			fmt.Printf("[%s] \033[1;31mframing error\033[0m x%d, resynchronized\n",
				now.Format("15:04:05.000"), errs)
		}
		for _, payload := range decoded {
			frames++
			fmt.Printf("[%s] frame %4d: %d bytes  %s\n",
				now.Format("15:04:05.000"), frames, len(payload), segmentColors(payload, assignment))
			if dumpLimit > 0 && frames >= dumpLimit {
				fmt.Println()
				stats := session.Stats()
				stats.CalculateRates()
				fmt.Print(stats.String())
				return nil
			}
		}
	}
}

// segmentColors renders the first LED color of each segment, e.g.
// "A[0,220) #FF0000  B[220,402) #00FF00".
func segmentColors(payload []byte, assignment ledwire.Assignment) string {
	out := ""
	for i := 0; i < assignment.Segments(); i++ {
		seg, err := assignment.Extract(payload, i)
		if err != nil || len(seg) < ledwire.BytesPerLED {
			continue
		}
		if i > 0 {
			out += "  "
		}
		out += fmt.Sprintf("%s%s #%02X%02X%02X",
			assignment.Label(i), assignment.Range(i), seg[0], seg[1], seg[2])
	}
	return out
}
