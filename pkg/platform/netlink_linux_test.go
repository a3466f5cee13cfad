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

package platform

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-watch/monit/pkg/logger"
	"github.com/code-watch/monit/pkg/models"
)

// fakeInterface materializes a sysfs-style interface directory.
func fakeInterface(t *testing.T, sysPath, name string, attrs, stats map[string]string) {
	t.Helper()

	base := filepath.Join(sysPath, name)
	require.NoError(t, os.MkdirAll(filepath.Join(base, "statistics"), 0o755))

	for file, content := range attrs {
		require.NoError(t, os.WriteFile(filepath.Join(base, file), []byte(content+"\n"), 0o600))
	}

	for file, content := range stats {
		require.NoError(t, os.WriteFile(filepath.Join(base, "statistics", file), []byte(content+"\n"), 0o600))
	}
}

func defaultStats() map[string]string {
	return map[string]string{
		"rx_bytes": "1000", "tx_bytes": "500",
		"rx_packets": "10", "tx_packets": "5",
		"rx_errors": "0", "tx_errors": "0",
	}
}

func newTestLinkBackend(t *testing.T, clock *int64) *LinkBackend {
	t.Helper()

	b := NewLinkBackend(logger.NewTestLogger())
	b.sysPath = t.TempDir()
	b.clock = func() int64 { return *clock }

	return b
}

func TestLinkRefresh(t *testing.T) {
	t.Parallel()

	now := int64(0)
	b := newTestLinkBackend(t, &now)
	fakeInterface(t, b.sysPath, "eth0",
		map[string]string{"operstate": "up", "speed": "1000", "duplex": "full"},
		defaultStats())

	link := &models.NetworkLinkInfo{Name: "eth0"}
	require.NoError(t, b.Refresh(context.Background(), link))

	assert.Equal(t, models.LinkStateUp, link.State)
	assert.Equal(t, models.DuplexFull, link.Duplex)
	assert.Equal(t, int64(1_000_000_000), link.Speed, "1000 Mbit normalized to bits/sec")
	assert.False(t, link.RxBytesPerSec.Valid, "no rate from a single sample")

	// rx_bytes 1000 -> 3000 over 2000ms: 1000 bytes/sec.
	fakeInterface(t, b.sysPath, "eth0", nil, map[string]string{"rx_bytes": "3000"})

	now = 2000

	require.NoError(t, b.Refresh(context.Background(), link))
	require.True(t, link.RxBytesPerSec.Valid)
	assert.InDelta(t, 1000.0, link.RxBytesPerSec.Value, 1e-9)
	assert.Equal(t, int64(0), link.Last)
	assert.Equal(t, int64(2000), link.Now)
}

func TestLinkAliasSharesKernelRecord(t *testing.T) {
	t.Parallel()

	now := int64(0)
	b := newTestLinkBackend(t, &now)
	fakeInterface(t, b.sysPath, "eth0",
		map[string]string{"operstate": "up"},
		defaultStats())

	link := &models.NetworkLinkInfo{Name: "eth0:0"}
	require.NoError(t, b.Refresh(context.Background(), link))

	assert.Equal(t, "eth0:0", link.Name, "alias spelling preserved for reporting")
	assert.Equal(t, models.LinkStateUp, link.State)
	assert.Equal(t, uint64(1000), link.RxBytes.Last(), "counters come from the eth0 record")
}

func TestLinkSpeedSentinels(t *testing.T) {
	t.Parallel()

	now := int64(0)
	b := newTestLinkBackend(t, &now)

	for name, speed := range map[string]string{
		"s16": "65535",
		"s32": "4294967295",
		"neg": "-1",
	} {
		fakeInterface(t, b.sysPath, name, map[string]string{"speed": speed}, defaultStats())

		link := &models.NetworkLinkInfo{Name: name}
		require.NoError(t, b.Refresh(context.Background(), link))
		assert.Equal(t, models.SpeedUnknown, link.Speed, "raw %s must not be multiplied into garbage", speed)
	}
}

func TestLinkOptionalFieldsAbsent(t *testing.T) {
	t.Parallel()

	now := int64(0)
	b := newTestLinkBackend(t, &now)

	// Counters only: no operstate, carrier, speed or duplex attribute.
	fakeInterface(t, b.sysPath, "veth0", nil, defaultStats())

	link := &models.NetworkLinkInfo{Name: "veth0"}
	require.NoError(t, b.Refresh(context.Background(), link), "absent optional facilities must not fail the cycle")

	assert.Equal(t, models.LinkStateUnknown, link.State, "unknown, never down")
	assert.Equal(t, models.SpeedUnknown, link.Speed)
	assert.Equal(t, models.DuplexUnknown, link.Duplex)
	assert.True(t, link.RxBytes.Valid())
}

func TestLinkDuplexUnknownLiteral(t *testing.T) {
	t.Parallel()

	now := int64(0)
	b := newTestLinkBackend(t, &now)
	fakeInterface(t, b.sysPath, "wlan0", map[string]string{"duplex": "unknown"}, defaultStats())

	link := &models.NetworkLinkInfo{Name: "wlan0"}
	require.NoError(t, b.Refresh(context.Background(), link))
	assert.Equal(t, models.DuplexUnknown, link.Duplex)

	fakeInterface(t, b.sysPath, "wlan0", map[string]string{"duplex": "half"}, nil)
	require.NoError(t, b.Refresh(context.Background(), link))
	assert.Equal(t, models.DuplexHalf, link.Duplex, "half is distinct from unknown")
}

func TestLinkOperStateCarrierFallback(t *testing.T) {
	t.Parallel()

	now := int64(0)
	b := newTestLinkBackend(t, &now)
	fakeInterface(t, b.sysPath, "bond0",
		map[string]string{"operstate": "unknown", "carrier": "1"},
		defaultStats())

	link := &models.NetworkLinkInfo{Name: "bond0"}
	require.NoError(t, b.Refresh(context.Background(), link))
	assert.Equal(t, models.LinkStateUp, link.State, "carrier refines an unknown operstate")
}

func TestLinkMandatoryCounterFailure(t *testing.T) {
	t.Parallel()

	now := int64(0)
	b := newTestLinkBackend(t, &now)

	stats := defaultStats()
	delete(stats, "tx_errors")
	fakeInterface(t, b.sysPath, "eth1", map[string]string{"operstate": "up"}, stats)

	link := &models.NetworkLinkInfo{Name: "eth1"}
	err := b.Refresh(context.Background(), link)
	require.Error(t, err, "a missing mandatory counter fails the whole refresh")

	assert.Equal(t, models.LinkStateUnknown, link.State, "reset to unavailable on failure")
	assert.False(t, link.RxBytes.Valid())
}

func TestLinkMissingInterface(t *testing.T) {
	t.Parallel()

	now := int64(0)
	b := newTestLinkBackend(t, &now)

	link := &models.NetworkLinkInfo{Name: "eth9"}
	err := b.Refresh(context.Background(), link)
	require.ErrorIs(t, err, errLinkNotFound)
}

func TestKernelName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "eth0", kernelName("eth0:0"))
	assert.Equal(t, "eth0", kernelName("eth0:1"))
	assert.Equal(t, "eth0", kernelName("eth0"))
	assert.Equal(t, "bond0", kernelName("bond0:backup"))
}
