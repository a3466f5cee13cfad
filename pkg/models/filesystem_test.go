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

package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveUsage(t *testing.T) {
	t.Parallel()

	fs := FilesystemInfo{
		Blocks:          1000,
		BlocksFree:      200,
		BlocksFreeTotal: 250,
		Inodes:          400,
		InodesFree:      100,
	}

	fs.DeriveUsage()

	assert.Equal(t, uint64(750), fs.BlocksUsed)
	assert.Equal(t, uint64(300), fs.InodesUsed)
	assert.InDelta(t, 75.0, fs.SpaceUsedPercent, 1e-9)
	assert.InDelta(t, 75.0, fs.InodeUsedPercent, 1e-9)
}

func TestDeriveUsageZeroTotals(t *testing.T) {
	t.Parallel()

	// Pseudo and network filesystems report f_files == 0; the percent must
	// degrade to 0, not divide by zero.
	fs := FilesystemInfo{Blocks: 0, Inodes: 0}
	fs.DeriveUsage()

	assert.Zero(t, fs.SpaceUsedPercent)
	assert.Zero(t, fs.InodeUsedPercent)
}

func TestResetActivityKeepsUsage(t *testing.T) {
	t.Parallel()

	fs := FilesystemInfo{Blocks: 1000, BlocksFreeTotal: 100}
	fs.DeriveUsage()

	fs.ReadBytes.Update(0, 100)
	fs.ReadBytes.Update(1000, 200)
	fs.ReadBytesPerSec = Rate{Value: 100, Valid: true}

	fs.ResetActivity()

	assert.False(t, fs.ReadBytes.Valid())
	assert.False(t, fs.ReadBytesPerSec.Valid)
	assert.Equal(t, uint64(900), fs.BlocksUsed, "usage retains last known value")
}

func TestLinkReset(t *testing.T) {
	t.Parallel()

	link := NetworkLinkInfo{
		Name:   "eth0:0",
		State:  LinkStateUp,
		Duplex: DuplexFull,
		Speed:  1_000_000_000,
	}
	link.RxBytes.Update(0, 1)
	link.RxBytesPerSec = Rate{Value: 1, Valid: true}

	link.Reset()

	assert.Equal(t, LinkStateUnknown, link.State)
	assert.Equal(t, DuplexUnknown, link.Duplex)
	assert.Equal(t, SpeedUnknown, link.Speed)
	assert.False(t, link.RxBytes.Valid())
	assert.False(t, link.RxBytesPerSec.Valid)
	assert.Equal(t, "eth0:0", link.Name, "configured name survives reset")
}

func TestLinkSaturation(t *testing.T) {
	t.Parallel()

	link := NetworkLinkInfo{Speed: 100_000_000} // 100 Mbit
	link.RxBytesPerSec = Rate{Value: 1_000_000, Valid: true}
	link.TxBytesPerSec = Rate{Value: 2_500_000, Valid: true}

	sat := link.Saturation()
	require.True(t, sat.Valid)
	assert.InDelta(t, 20.0, sat.Value, 1e-9, "busier direction: 2.5MB/s = 20Mbit on 100Mbit")

	link.Speed = SpeedUnknown
	assert.False(t, link.Saturation().Valid)
}
