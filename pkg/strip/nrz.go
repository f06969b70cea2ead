// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 raziber

package strip

import (
	"fmt"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/host/v3"
)

// nrzFreq is the SPI clock for NRZ bit expansion: 2.5 MHz carries the
// 800 kHz WS2812-class waveform at 3 SPI bits per strip bit.
const nrzFreq = 2500 * physic.KiloHertz

// NRZ drives a WS2812-class strip over SPI via periph.io.
type NRZ struct {
	dev     *nrzled.Dev
	closer  spi.PortCloser
	pixels  int
	order   Order
	scratch []byte
}

// NewNRZ builds a driver on an already open SPI port. The caller keeps
// ownership of the port; Close only halts the strip.
func NewNRZ(port spi.Port, pixels int, order Order) (*NRZ, error) {
	opts := nrzled.Opts{NumPixels: pixels, Channels: 3, Freq: nrzFreq}
	dev, err := nrzled.NewSPI(port, &opts)
	if err != nil {
		return nil, fmt.Errorf("strip: nrzled init: %w", err)
	}
	return &NRZ{
		dev:     dev,
		pixels:  pixels,
		order:   order,
		scratch: make([]byte, pixels*3),
	}, nil
}

// OpenNRZ initializes the periph host, opens the named SPI port ("" for
// the first available), and builds a driver that owns the port.
func OpenNRZ(portName string, pixels int, order Order) (*NRZ, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("strip: host init: %w", err)
	}
	port, err := spireg.Open(portName)
	if err != nil {
		return nil, fmt.Errorf("strip: open SPI port %q: %w", portName, err)
	}
	d, err := NewNRZ(port, pixels, order)
	if err != nil {
		port.Close()
		return nil, err
	}
	d.closer = port
	return d, nil
}

// Write permutes the RGB payload into the strip's channel order and
// pushes it out.
func (d *NRZ) Write(rgb []byte) error {
	if len(rgb) != d.pixels*3 {
		return fmt.Errorf("strip: frame is %d bytes, driver expects %d for %d pixels",
			len(rgb), d.pixels*3, d.pixels)
	}
	permute(d.scratch, rgb, d.order)
	n, err := d.dev.Write(d.scratch)
	if err != nil {
		return fmt.Errorf("strip: spi write: %w", err)
	}
	if n != len(d.scratch) {
		return fmt.Errorf("strip: short spi write: %d of %d bytes", n, len(d.scratch))
	}
	return nil
}

// Close blanks the strip and releases the SPI port if this driver
// opened it.
func (d *NRZ) Close() error {
	if err := d.dev.Halt(); err != nil {
		if d.closer != nil {
			d.closer.Close()
		}
		return fmt.Errorf("strip: halt: %w", err)
	}
	if d.closer != nil {
		return d.closer.Close()
	}
	return nil
}
