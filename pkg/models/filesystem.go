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

// Package models holds the OS-independent records the platform backends
// populate and the monitoring engine reads. The backends translate whatever
// the kernel exposes (procfs text, sysfs attributes, sysctl structures)
// into these structs; everything above this package is platform-agnostic.
//
// A recurring concern in these types is distinguishing "the metric is zero"
// from "the metric could not be read this cycle." Rates carry an explicit
// Valid flag and descriptive fields carry Unknown states for that reason;
// consumers must never treat an invalid rate or an Unknown state as a real
// negative reading.
package models

import "github.com/code-watch/monit/pkg/statistics"

// SpeedUnknown is the sentinel for an unreadable negotiated link speed.
const SpeedUnknown int64 = -1

// Rate is a derived per-second (or percent) value. Valid is false until
// two counter samples exist, and after the underlying resource was lost.
type Rate struct {
	Value float64 `json:"value"`
	Valid bool    `json:"valid"`
}

// FilesystemInfo is the unified record for one monitored mountpoint or
// device. It lives for the daemon's lifetime: the filesystem backend
// mutates it in place every monitoring cycle, and usage fields keep their
// last known value across cycles where the filesystem cannot be resolved
// while activity is reset to unavailable.
type FilesystemInfo struct {
	// Identity.
	Path   string `json:"path"`   // as configured: mountpoint or device
	Device string `json:"device"` // resolved backing device
	Type   string `json:"type"`   // resolved filesystem type

	// Ownership and mode of the configured path, populated only when the
	// path stats as a real filesystem object.
	Mode uint32 `json:"mode"`
	UID  uint32 `json:"uid"`
	GID  uint32 `json:"gid"`

	// Usage, from statfs. BlocksFree is the unprivileged-available count
	// (f_bavail); BlocksFreeTotal includes root-reserved space (f_bfree).
	BlockSize       int64  `json:"block_size"`
	Blocks          uint64 `json:"blocks"`
	BlocksFree      uint64 `json:"blocks_free"`
	BlocksFreeTotal uint64 `json:"blocks_free_total"`
	Inodes          uint64 `json:"inodes"`
	InodesFree      uint64 `json:"inodes_free"`

	// Raw mount flags from the current and the previous cycle, kept so the
	// engine can notice remount transitions (for example rw -> ro).
	Flags     uint64 `json:"flags"`
	PrevFlags uint64 `json:"prev_flags"`

	// Derived usage.
	BlocksUsed       uint64  `json:"blocks_used"`
	InodesUsed       uint64  `json:"inodes_used"`
	SpaceUsedPercent float64 `json:"space_used_percent"`
	InodeUsedPercent float64 `json:"inode_used_percent"`

	// Cumulative I/O counter series, fed by the backend each cycle.
	ReadBytes  statistics.Series `json:"-"`
	WriteBytes statistics.Series `json:"-"`
	ReadOps    statistics.Series `json:"-"`
	WriteOps   statistics.Series `json:"-"`
	BusyTime   statistics.Series `json:"-"` // milliseconds the device spent busy

	// Derived activity rates.
	ReadBytesPerSec  Rate `json:"read_bytes_per_sec"`
	WriteBytesPerSec Rate `json:"write_bytes_per_sec"`
	ReadOpsPerSec    Rate `json:"read_ops_per_sec"`
	WriteOpsPerSec   Rate `json:"write_ops_per_sec"`
	BusyPercent      Rate `json:"busy_percent"`
}

// DeriveUsage recomputes the used counts and percentages from the raw
// statfs fields. A filesystem reporting zero total blocks or inodes (some
// pseudo and network filesystems do) yields 0 percent, not a division
// error.
func (f *FilesystemInfo) DeriveUsage() {
	f.BlocksUsed = f.Blocks - f.BlocksFreeTotal
	f.InodesUsed = f.Inodes - f.InodesFree

	if f.Blocks > 0 {
		f.SpaceUsedPercent = 100.0 * float64(f.BlocksUsed) / float64(f.Blocks)
	} else {
		f.SpaceUsedPercent = 0
	}

	if f.Inodes > 0 {
		f.InodeUsedPercent = 100.0 * float64(f.InodesUsed) / float64(f.Inodes)
	} else {
		f.InodeUsedPercent = 0
	}
}

// ResetActivity marks every activity metric unavailable and drops the
// counter baselines. Called when the backing device cannot be resolved or
// its accounting cannot be read; usage fields are deliberately left at
// their last known values.
func (f *FilesystemInfo) ResetActivity() {
	f.ReadBytes.Reset()
	f.WriteBytes.Reset()
	f.ReadOps.Reset()
	f.WriteOps.Reset()
	f.BusyTime.Reset()

	f.ReadBytesPerSec = Rate{}
	f.WriteBytesPerSec = Rate{}
	f.ReadOpsPerSec = Rate{}
	f.WriteOpsPerSec = Rate{}
	f.BusyPercent = Rate{}
}
