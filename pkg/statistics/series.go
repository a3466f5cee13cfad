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

// Package statistics converts cumulative kernel counters into rates.
//
// Kernel counters (bytes transferred, operations issued, busy time) are
// monotonic since boot but the daemon samples them at irregular intervals,
// and a counter can restart from zero when a device is reattached or the
// kernel resets its accounting. A Series keeps the minimal state needed to
// turn two consecutive samples into a rate while absorbing those anomalies.
package statistics

// Series holds the previous sample of one cumulative counter. The zero
// value is ready to use and reports no rate until two samples exist.
type Series struct {
	value     uint64
	timestamp int64 // milliseconds
	valid     bool
}

// Sample is the delta between two consecutive counter readings.
type Sample struct {
	Delta     uint64
	ElapsedMs int64
}

// PerSecond returns the delta normalized to one second.
func (s Sample) PerSecond() float64 {
	return float64(s.Delta) / (float64(s.ElapsedMs) / 1000.0)
}

// Percent interprets the delta as milliseconds spent busy within the
// elapsed window and returns it as a percentage, capped at 100.
func (s Sample) Percent() float64 {
	p := 100.0 * float64(s.Delta) / float64(s.ElapsedMs)
	if p > 100.0 {
		p = 100.0
	}

	return p
}

// Update records a new counter reading taken at nowMillis and returns the
// delta against the previous reading. ok is false when no rate can be
// derived: on the first sample after (re)acquisition, and when the clock
// did not advance. A counter value below the previous one is treated as a
// restart from zero, so the delta is the new value itself, never a
// negative underflow. The stored sample advances on every call, anomaly
// paths included, so the next cycle has a consistent baseline.
func (s *Series) Update(nowMillis int64, value uint64) (sample Sample, ok bool) {
	prevValue, prevTime, prevValid := s.value, s.timestamp, s.valid

	s.value = value
	s.timestamp = nowMillis
	s.valid = true

	if !prevValid {
		return Sample{}, false
	}

	elapsed := nowMillis - prevTime
	if elapsed <= 0 {
		return Sample{}, false
	}

	delta := value
	if value >= prevValue {
		delta = value - prevValue
	}

	return Sample{Delta: delta, ElapsedMs: elapsed}, true
}

// Reset drops the stored sample. The next Update behaves like a first
// sample: callers invoke Reset when the underlying resource went away so a
// later reattachment cannot produce a rate against stale state.
func (s *Series) Reset() {
	*s = Series{}
}

// Valid reports whether a previous sample is stored.
func (s *Series) Valid() bool {
	return s.valid
}

// Last returns the most recent raw counter value, or 0 when none is stored.
func (s *Series) Last() uint64 {
	return s.value
}
