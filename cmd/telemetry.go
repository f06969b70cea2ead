// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 raziber

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
)

// statsPublisher pushes periodic JSON stats snapshots to an MQTT topic.
// QoS 0: stats are best effort and a slow broker must never stall the
// bridge.
type statsPublisher struct {
	client   paho.Client
	topic    string
	interval time.Duration
	snapshot func() any
	log      zerolog.Logger
}

func newStatsPublisher(broker, topic string, interval time.Duration, snapshot func() any, log zerolog.Logger) (*statsPublisher, error) {
	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(fmt.Sprintf("globe-%d", os.Getpid())).
		SetAutoReconnect(true).
		SetCleanSession(true).
		SetConnectTimeout(5 * time.Second)

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		client.Disconnect(0)
		return nil, fmt.Errorf("mqtt connect to %s timed out", broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect to %s: %w", broker, err)
	}

	return &statsPublisher{
		client:   client,
		topic:    topic,
		interval: interval,
		snapshot: snapshot,
		log:      log.With().Str("broker", broker).Str("topic", topic).Logger(),
	}, nil
}

// run publishes until ctx is canceled, then disconnects.
func (sp *statsPublisher) run(ctx context.Context) {
	sp.log.Info().Dur("interval", sp.interval).Msg("stats publishing enabled")

	ticker := time.NewTicker(sp.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			sp.client.Disconnect(250)
			return
		case <-ticker.C:
			sp.publish()
		}
	}
}

func (sp *statsPublisher) publish() {
	payload, err := json.Marshal(sp.snapshot())
	if err != nil {
		sp.log.Error().Err(err).Msg("stats marshal failed")
		return
	}
	token := sp.client.Publish(sp.topic, 0, false, payload)
	if token.WaitTimeout(time.Second) {
		if err := token.Error(); err != nil {
			sp.log.Warn().Err(err).Msg("stats publish failed")
		}
	}
}
