// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 raziber

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/raziber/globe/pkg/ledwire"
)

var (
	patternColor    string
	patternInterval time.Duration
	patternCycles   int
	patternLength   int
)

var patternCmd = &cobra.Command{
	Use:   "pattern <snake|wipe|rainbow|static>",
	Short: "Stream a built-in test pattern to the LEDs",
	Long: `Generate test frames locally and stream them to the connected
controllers. No frame source is needed; this is the quickest way to
verify the link and the strip wiring end to end.

Patterns:
  snake    a red runner on a blue background, wrapping around the strip
  wipe     fills the strip one LED at a time, then starts over
  rainbow  a rotating hue wheel across the whole strip
  static   fixed color blocks (or one color with --color)

Runs until interrupted unless --cycles limits the frame count.`,
	Args: cobra.ExactArgs(1),
	RunE: runPattern,
}

func init() {
	rootCmd.AddCommand(patternCmd)
	patternCmd.Flags().StringVar(&patternColor, "color", "", "Override pattern color (RRGGBB hex)")
	patternCmd.Flags().DurationVar(&patternInterval, "interval", 50*time.Millisecond, "Delay between frames")
	patternCmd.Flags().IntVar(&patternCycles, "cycles", 0, "Number of frames to send (0 = until interrupted)")
	patternCmd.Flags().IntVar(&patternLength, "length", 25, "Snake length in LEDs")
}

// patternFunc renders one frame of an animation. step increases by one
// per frame.
type patternFunc func(frame ledwire.Frame, step int)

func runPattern(cmd *cobra.Command, args []string) error {
	cfg, err := settings.wireConfig()
	if err != nil {
		return err
	}

	var color [3]byte
	hasColor := patternColor != ""
	if hasColor {
		color, err = parseHexColor(patternColor)
		if err != nil {
			return err
		}
	}

	var render patternFunc
	switch args[0] {
	case "snake":
		snake := color
		if !hasColor {
			snake = [3]byte{255, 0, 0}
		}
		render = func(frame ledwire.Frame, step int) {
			snakeFrame(frame, step, patternLength, snake, [3]byte{0, 0, 255})
		}
	case "wipe":
		wipe := color
		if !hasColor {
			wipe = [3]byte{255, 255, 255}
		}
		render = func(frame ledwire.Frame, step int) {
			wipeFrame(frame, step, wipe)
		}
	case "rainbow":
		render = rainbowFrame
	case "static":
		if hasColor {
			render = func(frame ledwire.Frame, _ int) {
				frame.Fill(color[0], color[1], color[2])
			}
		} else {
			render = func(frame ledwire.Frame, _ int) {
				staticGroupsFrame(frame)
			}
		}
	default:
		return fmt.Errorf("unknown pattern %q (want snake, wipe, rainbow or static)", args[0])
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

	log.Info().
		Str("conn", connInfo).
		Str("pattern", args[0]).
		Dur("interval", patternInterval).
		Msg("streaming pattern")

	frame := ledwire.NewFrame(cfg.TotalLEDs)
	ticker := time.NewTicker(patternInterval)
	defer ticker.Stop()

	for step := 0; ; step++ {
		if patternCycles > 0 && step >= patternCycles {
			return nil
		}

		render(frame, step)
		wire, err := codec.Encode(frame)
		if err != nil {
			return err
		}
		if _, err := conn.Write(wire); err != nil {
			return fmt.Errorf("link write: %w", err)
		}

		select {
		case <-ctx.Done():
			log.Info().Int("frames", step+1).Msg("pattern stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// snakeFrame draws a runner of the given length starting at step%leds,
// wrapping around the end of the strip.
func snakeFrame(frame ledwire.Frame, step, length int, snake, background [3]byte) {
	leds := frame.LEDs()
	if leds == 0 {
		return
	}
	head := step % leds
	frame.Fill(background[0], background[1], background[2])
	for i := 0; i < length && i < leds; i++ {
		frame.Set((head+i)%leds, snake[0], snake[1], snake[2])
	}
}

// wipeFrame lights the first step%(leds+1) LEDs, so the strip fills up
// and then clears.
func wipeFrame(frame ledwire.Frame, step int, color [3]byte) {
	leds := frame.LEDs()
	lit := step % (leds + 1)
	for i := 0; i < leds; i++ {
		if i < lit {
			frame.Set(i, color[0], color[1], color[2])
		} else {
			frame.Set(i, 0, 0, 0)
		}
	}
}

// rainbowFrame spreads the hue wheel across the strip and rotates it
// one LED per step.
func rainbowFrame(frame ledwire.Frame, step int) {
	leds := frame.LEDs()
	for i := 0; i < leds; i++ {
		hue := float64((i+step)%leds) / float64(leds) * 360
		r, g, b := hueRGB(hue)
		frame.Set(i, r, g, b)
	}
}

// staticGroupsFrame paints alternating red, blue and green blocks of 20
// LEDs, dimmed for bench use.
func staticGroupsFrame(frame ledwire.Frame) {
	const groupSize = 20
	const brightness = 30
	colors := [3][3]byte{{255, 0, 0}, {0, 0, 255}, {0, 255, 0}}
	for i := 0; i < frame.LEDs(); i++ {
		c := colors[(i/groupSize)%len(colors)]
		frame.Set(i, scale(c[0], brightness), scale(c[1], brightness), scale(c[2], brightness))
	}
}

func scale(v byte, brightness int) byte {
	return byte(int(v) * brightness / 255)
}

// hueRGB converts a hue in degrees to a fully saturated RGB color.
func hueRGB(hue float64) (r, g, b byte) {
	ramp := func(x float64) byte { return byte(x / 60 * 255) }
	switch {
	case hue < 60:
		return 255, ramp(hue), 0
	case hue < 120:
		return ramp(120 - hue), 255, 0
	case hue < 180:
		return 0, 255, ramp(hue - 120)
	case hue < 240:
		return 0, ramp(240 - hue), 255
	case hue < 300:
		return ramp(hue - 240), 0, 255
	default:
		return 255, 0, ramp(360 - hue)
	}
}

// parseHexColor parses RRGGBB (with optional leading #) into RGB bytes.
func parseHexColor(s string) ([3]byte, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return [3]byte{}, fmt.Errorf("color %q: want RRGGBB hex", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return [3]byte{}, fmt.Errorf("color %q: %v", s, err)
	}
	return [3]byte{byte(v >> 16), byte(v >> 8), byte(v)}, nil
}
