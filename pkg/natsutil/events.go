/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package natsutil publishes health transition events to NATS JetStream
// as CloudEvents-wrapped JSON.
package natsutil

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/code-watch/monit/pkg/config"
	"github.com/code-watch/monit/pkg/logger"
	"github.com/code-watch/monit/pkg/models"
)

const eventSource = "monit/monitord"

// EventPublisher publishes health transition CloudEvents to a JetStream
// stream.
type EventPublisher struct {
	js      jetstream.JetStream
	subject string
	log     logger.Logger
}

// NewEventPublisher wraps an existing JetStream context.
func NewEventPublisher(js jetstream.JetStream, subject string, log logger.Logger) *EventPublisher {
	return &EventPublisher{
		js:      js,
		subject: subject,
		log:     log.WithComponent("events"),
	}
}

// PublishHealthEvent wraps the transition in a CloudEvents v1.0 envelope
// and publishes it. The broker acknowledgement is awaited so the caller
// learns about a down broker immediately.
func (p *EventPublisher) PublishHealthEvent(ctx context.Context, data models.HealthEventData) error {
	event := newHealthEvent(p.subject, data)

	eventBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal health event: %w", err)
	}

	ack, err := p.js.Publish(ctx, p.subject, eventBytes)
	if err != nil {
		return fmt.Errorf("failed to publish health event: %w", err)
	}

	p.log.Debug().
		Str("event_id", event.ID).
		Str("entity", data.Entity).
		Str("subject", p.subject).
		Uint64("sequence", ack.Sequence).
		Msg("Published health event")

	return nil
}

// newHealthEvent wraps the transition data in a CloudEvents v1.0 envelope.
func newHealthEvent(subject string, data models.HealthEventData) models.CloudEvent {
	return models.CloudEvent{
		SpecVersion:     "1.0",
		ID:              uuid.New().String(),
		Source:          eventSource,
		Type:            "com.codewatch.monit.health",
		DataContentType: "application/json",
		Subject:         subject,
		Time:            &data.Timestamp,
		Data:            data,
	}
}

// Connect dials the broker, ensures the configured stream exists and
// returns a publisher bound to it. The returned connection is owned by
// the caller and must be closed on shutdown.
func Connect(ctx context.Context, cfg config.EventsConfig, log logger.Logger) (*EventPublisher, *nats.Conn, error) {
	opts := []nats.Option{
		nats.Name("monitord"),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	}

	if cfg.TLS != nil {
		tlsConf, err := TLSConfig(cfg.TLS)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to build NATS TLS config: %w", err)
		}

		opts = append(opts, nats.Secure(tlsConf))
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	if err := ensureStream(ctx, js, cfg); err != nil {
		nc.Close()
		return nil, nil, err
	}

	return NewEventPublisher(js, cfg.Subject, log), nc, nil
}

func ensureStream(ctx context.Context, js jetstream.JetStream, cfg config.EventsConfig) error {
	if _, err := js.Stream(ctx, cfg.Stream); err == nil {
		return nil
	}

	streamConfig := jetstream.StreamConfig{
		Name:     cfg.Stream,
		Subjects: []string{cfg.Subject},
	}

	if _, err := js.CreateOrUpdateStream(ctx, streamConfig); err != nil {
		return fmt.Errorf("failed to create or get stream %s: %w", cfg.Stream, err)
	}

	return nil
}
