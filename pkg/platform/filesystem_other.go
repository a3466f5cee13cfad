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

//go:build !linux && !windows

package platform

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"unicode"

	"github.com/shirou/gopsutil/v3/disk"

	"github.com/code-watch/monit/pkg/models"
)

// readUsage fills the capacity fields through gopsutil, which wraps the
// per-BSD statfs/sysctl variants. Byte totals are reported with a block
// size of one; mount flags are not exposed through this facility and keep
// their prior values.
func readUsage(mountpoint string, info *models.FilesystemInfo) error {
	usage, err := disk.Usage(mountpoint)
	if err != nil {
		return err
	}

	info.BlockSize = 1
	info.Blocks = usage.Total
	info.BlocksFree = usage.Free
	info.BlocksFreeTotal = usage.Total - usage.Used
	info.Inodes = usage.InodesTotal
	info.InodesFree = usage.InodesFree

	return nil
}

func (b *FilesystemBackend) readActivity(info *models.FilesystemInfo, entry mountEntry) error {
	device := deviceName(entry.Device)
	if device == "" {
		info.ResetActivity()
		return nil
	}

	now := b.clock()

	counters, ok, err := b.disks.lookup(now, device)
	if err != nil {
		return fmt.Errorf("cannot read disk statistics for %q: %w", info.Path, err)
	}

	if !ok {
		b.log.Debug().Str("device", device).Str("path", info.Path).
			Msg("Device missing from disk accounting table")
		info.ResetActivity()

		return nil
	}

	info.ReadBytesPerSec = applyRate(&info.ReadBytes, now, counters.readBytes)
	info.WriteBytesPerSec = applyRate(&info.WriteBytes, now, counters.writeBytes)
	info.ReadOpsPerSec = applyRate(&info.ReadOps, now, counters.readOps)
	info.WriteOpsPerSec = applyRate(&info.WriteOps, now, counters.writeOps)
	info.BusyPercent = applyPercent(&info.BusyTime, now, counters.busyMs)

	return nil
}

// deviceName maps a mount source to its accounting record name. Sources
// outside /dev have no record; partition suffixes fall back to the whole
// disk (sd0a matches sd0) the way the BSD accounting tables expect.
func deviceName(device string) string {
	if !strings.HasPrefix(device, "/dev/") {
		return ""
	}

	return filepath.Base(device)
}

// trimPartition cuts a trailing partition letter suffix: everything after
// the last digit goes (sd0a -> sd0, disk1s1 is left alone).
func trimPartition(name string) string {
	for i := len(name) - 1; i >= 0; i-- {
		if unicode.IsDigit(rune(name[i])) {
			return name[:i+1]
		}
	}

	return name
}

type diskCounters struct {
	readOps    uint64
	readBytes  uint64
	writeOps   uint64
	writeBytes uint64
	busyMs     uint64
}

// diskCache snapshots the whole-system I/O accounting table through
// gopsutil, shared by all filesystems within one cycle under the same
// staleness rule as the Linux backend.
type diskCache struct {
	mu        sync.Mutex
	timestamp int64
	stats     map[string]diskCounters
}

func newDiskCache() *diskCache {
	return &diskCache{}
}

func (c *diskCache) lookup(now int64, device string) (diskCounters, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stats == nil || now > c.timestamp+cacheMaxAgeMs || now < c.timestamp-cacheMaxAgeMs {
		raw, err := disk.IOCounters()
		if err != nil {
			return diskCounters{}, false, err
		}

		stats := make(map[string]diskCounters, len(raw))
		for name, io := range raw {
			stats[name] = diskCounters{
				readOps:    io.ReadCount,
				readBytes:  io.ReadBytes,
				writeOps:   io.WriteCount,
				writeBytes: io.WriteBytes,
				busyMs:     io.IoTime,
			}
		}

		c.stats = stats
		c.timestamp = now
	}

	counters, ok := c.stats[device]
	if !ok {
		counters, ok = c.stats[trimPartition(device)]
	}

	return counters, ok, nil
}
