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
	"fmt"

	"github.com/shirou/gopsutil/v3/disk"
)

// mountEntry is one row of the currently mounted filesystem table.
type mountEntry struct {
	Device     string
	Mountpoint string
	Type       string
}

// listMounts enumerates currently mounted filesystems. It is called fresh
// on every resolution: mounts appear and disappear between monitoring
// cycles, so the table must never be cached across them. Swappable for
// tests.
var listMounts = func(ctx context.Context) ([]mountEntry, error) {
	partitions, err := disk.PartitionsWithContext(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate mounted filesystems: %w", err)
	}

	entries := make([]mountEntry, 0, len(partitions))
	for _, p := range partitions {
		entries = append(entries, mountEntry{
			Device:     p.Device,
			Mountpoint: p.Mountpoint,
			Type:       p.Fstype,
		})
	}

	return entries, nil
}

// findByMountpoint matches on the recorded mount path. Matching is exact:
// callers resolve symlinks before lookup and no slash normalization
// happens here.
func findByMountpoint(entries []mountEntry, mountpoint string) (mountEntry, bool) {
	for _, e := range entries {
		if e.Mountpoint == mountpoint {
			return e, true
		}
	}

	return mountEntry{}, false
}

// findByDevice matches on the recorded source field. The source need not
// be a block device node: NFS/CIFS/SSHFS-style connection strings match
// here too.
func findByDevice(entries []mountEntry, device string) (mountEntry, bool) {
	for _, e := range entries {
		if e.Device == device {
			return e, true
		}
	}

	return mountEntry{}, false
}
