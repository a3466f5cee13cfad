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

// Package logger provides JSON structured logging using zerolog, with an
// optional OTLP/gRPC export bridge for shipping daemon logs to a collector.
package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Config controls log level and destinations.
type Config struct {
	Level      string     `json:"level"`
	Debug      bool       `json:"debug"`
	Output     string     `json:"output"` // "stdout" or "stderr"
	TimeFormat string     `json:"time_format"`
	OTel       OTelConfig `json:"otel"`
}

// ShutdownFunc flushes buffered log export state; callers invoke it on
// daemon shutdown. It is a no-op when OTel export is disabled.
type ShutdownFunc func(ctx context.Context) error

// New builds a Logger from config. When OTel export is enabled the console
// stream and the OTLP exporter are teed through a zerolog multi-writer.
func New(ctx context.Context, config Config) (Logger, ShutdownFunc, error) {
	var output io.Writer = os.Stdout
	if config.Output == "stderr" {
		output = os.Stderr
	}

	level := zerolog.InfoLevel

	if config.Debug {
		level = zerolog.DebugLevel
	} else if config.Level != "" {
		parsed, err := zerolog.ParseLevel(config.Level)
		if err != nil {
			return nil, nil, err
		}

		level = parsed
	}

	if config.TimeFormat != "" {
		zerolog.TimeFieldFormat = config.TimeFormat
	} else {
		zerolog.TimeFieldFormat = time.RFC3339
	}

	shutdown := ShutdownFunc(func(context.Context) error { return nil })

	if config.OTel.Enabled {
		otelWriter, err := NewOTelWriter(ctx, config.OTel)
		if err != nil {
			return nil, nil, err
		}

		output = zerolog.MultiLevelWriter(output, otelWriter)
		shutdown = otelWriter.Shutdown
	}

	log := zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger()

	return &zerologLogger{log: log}, shutdown, nil
}

// DefaultConfig returns the stdout/info configuration used when the config
// file leaves the logger section empty.
func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Output: "stdout",
	}
}
