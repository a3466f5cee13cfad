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

package statistics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstSampleYieldsNoRate(t *testing.T) {
	t.Parallel()

	var s Series

	_, ok := s.Update(1000, 500)
	assert.False(t, ok, "first sample must not produce a rate")
	assert.True(t, s.Valid())
	assert.Equal(t, uint64(500), s.Last())
}

func TestRateFromTwoSamples(t *testing.T) {
	t.Parallel()

	var s Series

	_, ok := s.Update(0, 1000)
	require.False(t, ok)

	sample, ok := s.Update(2000, 3000)
	require.True(t, ok)
	assert.Equal(t, uint64(2000), sample.Delta)
	assert.Equal(t, int64(2000), sample.ElapsedMs)
	assert.InDelta(t, 1000.0, sample.PerSecond(), 1e-9)
}

func TestMonotonicSequenceExactRates(t *testing.T) {
	t.Parallel()

	var s Series

	samples := []struct {
		at    int64
		value uint64
		rate  float64
	}{
		{at: 1000, value: 100},
		{at: 2000, value: 600, rate: 500},
		{at: 4500, value: 5600, rate: 2000},
		{at: 5000, value: 5650, rate: 100},
	}

	for i, in := range samples {
		sample, ok := s.Update(in.at, in.value)
		if i == 0 {
			require.False(t, ok)
			continue
		}

		require.True(t, ok, "sample %d", i)
		assert.InDelta(t, in.rate, sample.PerSecond(), 1e-9, "sample %d", i)
	}
}

func TestCounterDecreaseTreatedAsRestart(t *testing.T) {
	t.Parallel()

	var s Series

	s.Update(0, 10000)

	sample, ok := s.Update(1000, 300)
	require.True(t, ok)
	assert.Equal(t, uint64(300), sample.Delta, "restart from zero, not unsigned underflow")
}

func TestNonAdvancingClockYieldsNoRate(t *testing.T) {
	t.Parallel()

	var s Series

	s.Update(5000, 100)

	_, ok := s.Update(5000, 200)
	assert.False(t, ok, "equal timestamps")

	_, ok = s.Update(4000, 300)
	assert.False(t, ok, "backward timestamp")

	// The baseline still advanced: the next well-ordered sample rates
	// against the value stored on the anomaly path.
	sample, ok := s.Update(5000, 400)
	require.True(t, ok)
	assert.Equal(t, uint64(100), sample.Delta)
	assert.Equal(t, int64(1000), sample.ElapsedMs)
}

func TestResetForcesFirstSample(t *testing.T) {
	t.Parallel()

	var s Series

	s.Update(0, 100)
	s.Update(1000, 200)
	s.Reset()

	require.False(t, s.Valid())

	_, ok := s.Update(2000, 50)
	assert.False(t, ok, "first sample after reset must not rate against stale state")
}

func TestBusyTimePercent(t *testing.T) {
	t.Parallel()

	var s Series

	s.Update(0, 0)

	// 250ms busy within a 1000ms window.
	sample, ok := s.Update(1000, 250)
	require.True(t, ok)
	assert.InDelta(t, 25.0, sample.Percent(), 1e-9)

	// Busy time can outrun wall time on multi-queue devices; cap at 100.
	sample, ok = s.Update(1500, 1250)
	require.True(t, ok)
	assert.InDelta(t, 100.0, sample.Percent(), 1e-9)
}
