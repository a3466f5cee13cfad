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

package logger

import (
	"io"

	"github.com/rs/zerolog"
)

// Logger is the structured logging interface every component takes as a
// dependency. Implementations wrap zerolog so call sites use the fluent
// event API directly.
type Logger interface {
	Trace() *zerolog.Event
	Debug() *zerolog.Event
	Info() *zerolog.Event
	Warn() *zerolog.Event
	Error() *zerolog.Event
	Fatal() *zerolog.Event
	With() zerolog.Context
	WithComponent(component string) Logger
	SetLevel(level zerolog.Level)
}

type zerologLogger struct {
	log zerolog.Logger
}

func (z *zerologLogger) Trace() *zerolog.Event { return z.log.Trace() }
func (z *zerologLogger) Debug() *zerolog.Event { return z.log.Debug() }
func (z *zerologLogger) Info() *zerolog.Event  { return z.log.Info() }
func (z *zerologLogger) Warn() *zerolog.Event  { return z.log.Warn() }
func (z *zerologLogger) Error() *zerolog.Event { return z.log.Error() }
func (z *zerologLogger) Fatal() *zerolog.Event { return z.log.Fatal() }
func (z *zerologLogger) With() zerolog.Context { return z.log.With() }

func (z *zerologLogger) WithComponent(component string) Logger {
	return &zerologLogger{log: z.log.With().Str("component", component).Logger()}
}

func (z *zerologLogger) SetLevel(level zerolog.Level) {
	z.log = z.log.Level(level)
}

// NewTestLogger returns a logger that discards all output, for tests.
func NewTestLogger() Logger {
	return &zerologLogger{log: zerolog.New(io.Discard).Level(zerolog.Disabled)}
}

// NewTestLoggerWithOutput returns a logger writing JSON lines to w, for
// tests that assert on emitted log records.
func NewTestLoggerWithOutput(w io.Writer) Logger {
	return &zerologLogger{log: zerolog.New(w).Level(zerolog.DebugLevel)}
}
