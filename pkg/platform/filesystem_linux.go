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
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/code-watch/monit/pkg/models"
)

// Sector counts in /proc/diskstats are always in 512-byte units regardless
// of the device's logical block size.
const sectorSize = 512

// readUsage fills the capacity fields from statfs. BlocksFree is the
// unprivileged-available count (f_bavail); BlocksFreeTotal includes the
// root-reserved blocks (f_bfree). The previous cycle's mount flags are
// kept so the engine can detect remount transitions.
func readUsage(mountpoint string, info *models.FilesystemInfo) error {
	var st unix.Statfs_t
	if err := unix.Statfs(mountpoint, &st); err != nil {
		return err
	}

	info.BlockSize = st.Bsize
	info.Blocks = st.Blocks
	info.BlocksFree = uint64(st.Bavail)
	info.BlocksFreeTotal = st.Bfree
	info.Inodes = st.Files
	info.InodesFree = st.Ffree
	info.PrevFlags = info.Flags
	info.Flags = uint64(st.Flags)

	return nil
}

func (b *FilesystemBackend) readActivity(info *models.FilesystemInfo, entry mountEntry) error {
	device := diskstatsName(entry.Device)
	if device == "" {
		// Mount sources without a kernel block device (NFS, CIFS, SSHFS)
		// have no per-device accounting; activity is unavailable, which
		// is not a refresh failure.
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

// diskstatsName maps a mount source to the device name used in
// /proc/diskstats: strip /dev/, resolving symlinks first so mapper and
// by-uuid paths land on their dm-N or sdXN record. Sources outside /dev
// have no accounting record and map to "".
func diskstatsName(device string) string {
	if !strings.HasPrefix(device, "/dev/") {
		return ""
	}

	if resolved, err := filepath.EvalSymlinks(device); err == nil {
		device = resolved
	}

	return filepath.Base(device)
}

type diskCounters struct {
	readOps    uint64
	readBytes  uint64
	writeOps   uint64
	writeBytes uint64
	busyMs     uint64
}

// diskCache is a whole-system snapshot of /proc/diskstats shared by all
// filesystems refreshed within one cycle. Refreshed when older than one
// second, and unconditionally on backward clock jumps.
type diskCache struct {
	mu        sync.Mutex
	path      string
	timestamp int64
	stats     map[string]diskCounters
}

func newDiskCache() *diskCache {
	return &diskCache{path: "/proc/diskstats"}
}

func (c *diskCache) lookup(now int64, device string) (diskCounters, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stats == nil || now > c.timestamp+cacheMaxAgeMs || now < c.timestamp-cacheMaxAgeMs {
		stats, err := parseDiskstats(c.path)
		if err != nil {
			return diskCounters{}, false, err
		}

		c.stats = stats
		c.timestamp = now
	}

	counters, ok := c.stats[device]

	return counters, ok, nil
}

// parseDiskstats reads the kernel disk statistics table.
//
// Row layout: major minor name, then reads completed, reads merged,
// sectors read, ms reading, writes completed, writes merged, sectors
// written, ms writing, I/Os in progress, ms doing I/O, weighted ms. Newer
// kernels append discard and flush fields, which are ignored here.
func parseDiskstats(path string) (map[string]diskCounters, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stats := make(map[string]diskCounters)
	scanner := bufio.NewScanner(file)

	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 14 {
			continue
		}

		parse := func(i int) uint64 {
			v, _ := strconv.ParseUint(fields[i], 10, 64)
			return v
		}

		stats[fields[2]] = diskCounters{
			readOps:    parse(3),
			readBytes:  parse(5) * sectorSize,
			writeOps:   parse(7),
			writeBytes: parse(9) * sectorSize,
			busyMs:     parse(12),
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}
