// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 raziber

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/raziber/globe/pkg/ledwire"
)

// settingsVersion is the config file schema this build understands.
// Bumping it is how incompatible installs fail loudly instead of
// silently disagreeing about the wire format.
const settingsVersion = 1

// defaultConfigPath is tried when --config is not given.
const defaultConfigPath = "globe.yaml"

type SerialSettings struct {
	Port string `yaml:"port"`
	Baud int    `yaml:"baud"`
}

type SourceSettings struct {
	Addr string `yaml:"addr"` // TCP frame source, host:port
}

type ProtocolSettings struct {
	TotalLEDs int   `yaml:"total_leds"`
	Segments  []int `yaml:"segments"`
	Sync1     uint8 `yaml:"sync1"`
	Sync2     uint8 `yaml:"sync2"`
	EndMarker uint8 `yaml:"end_marker"`
	TimeoutMS int   `yaml:"timeout_ms"`
}

type StripSettings struct {
	SPI   string `yaml:"spi"`   // SPI port name, "" for first available
	Order string `yaml:"order"` // channel order, e.g. GRB
}

type MQTTSettings struct {
	Broker    string `yaml:"broker"` // tcp://host:1883, empty disables
	Topic     string `yaml:"topic"`
	IntervalS int    `yaml:"interval_s"`
}

// Settings is the merged runtime configuration: file values overlaid on
// defaults, flags overlaid on both.
type Settings struct {
	Version  int              `yaml:"version"`
	Serial   SerialSettings   `yaml:"serial"`
	Source   SourceSettings   `yaml:"source"`
	Protocol ProtocolSettings `yaml:"protocol"`
	Strip    StripSettings    `yaml:"strip"`
	MQTT     MQTTSettings     `yaml:"mqtt"`
}

// settings holds the resolved configuration for the running command.
// Populated by the root command before any RunE executes.
var settings Settings

func defaultSettings() Settings {
	def := ledwire.DefaultConfig()
	return Settings{
		Version: settingsVersion,
		Serial:  SerialSettings{Baud: ledwire.DefaultBaudRate},
		Protocol: ProtocolSettings{
			TotalLEDs: def.TotalLEDs,
			Segments:  append([]int{}, def.Segments...),
			Sync1:     def.Sync1,
			Sync2:     def.Sync2,
			EndMarker: def.EndMarker,
			TimeoutMS: int(def.Timeout / time.Millisecond),
		},
		Strip: StripSettings{Order: "GRB"},
		MQTT:  MQTTSettings{Topic: "globe/stats", IntervalS: 10},
	}
}

// loadSettings reads the YAML config at path over the defaults. An
// empty path falls back to globe.yaml when present, otherwise pure
// defaults.
func loadSettings(path string) (Settings, error) {
	s := defaultSettings()

	explicit := path != ""
	if !explicit {
		path = defaultConfigPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return s, nil
		}
		return s, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parse config %s: %w", path, err)
	}
	if s.Version != settingsVersion {
		return s, fmt.Errorf("config %s has version %d, this build understands %d",
			path, s.Version, settingsVersion)
	}
	return s, nil
}

// resolveSettings merges file settings with command line flags. Flags
// the user set win over the file.
func resolveSettings(cmd *cobra.Command) (Settings, error) {
	s, err := loadSettings(configPath)
	if err != nil {
		return s, err
	}

	flags := cmd.Flags()
	if flags.Changed("port") {
		s.Serial.Port = portName
	}
	if flags.Changed("baud") {
		s.Serial.Baud = baudRate
	}

	if s.Serial.Baud <= 0 {
		return s, fmt.Errorf("serial baud rate must be positive, got %d", s.Serial.Baud)
	}
	if _, err := s.wireConfig(); err != nil {
		return s, err
	}
	return s, nil
}

// wireConfig builds the validated transport configuration. Any error is
// fatal at startup: a bad segment split must never reach the link.
func (s Settings) wireConfig() (ledwire.Config, error) {
	cfg := ledwire.Config{
		TotalLEDs: s.Protocol.TotalLEDs,
		Segments:  s.Protocol.Segments,
		Sync1:     s.Protocol.Sync1,
		Sync2:     s.Protocol.Sync2,
		EndMarker: s.Protocol.EndMarker,
		Timeout:   time.Duration(s.Protocol.TimeoutMS) * time.Millisecond,
	}
	if err := cfg.Validate(); err != nil {
		return ledwire.Config{}, err
	}
	return cfg, nil
}

func configPathHint() string {
	if configPath != "" {
		return configPath
	}
	return defaultConfigPath
}
