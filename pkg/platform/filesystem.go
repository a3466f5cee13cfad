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
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/code-watch/monit/pkg/logger"
	"github.com/code-watch/monit/pkg/models"
	"github.com/code-watch/monit/pkg/statistics"
)

var (
	errFilesystemNotFound = errors.New("filesystem not found in mount table")
	errNotMountedObject   = errors.New("path is neither a mountpoint nor a device")
)

// FilesystemBackend resolves configured filesystem paths to kernel records
// and refreshes their usage and activity metrics. One backend serves all
// configured filesystems; the only state it owns is the per-cycle disk
// accounting snapshot.
type FilesystemBackend struct {
	log   logger.Logger
	clock func() int64
	disks *diskCache
}

func NewFilesystemBackend(log logger.Logger) *FilesystemBackend {
	return &FilesystemBackend{
		log:   log.WithComponent("filesystem"),
		clock: nowMillis,
		disks: newDiskCache(),
	}
}

// Refresh mutates info in place for the current cycle. On failure the
// usage fields keep their last known value while every activity metric is
// reset to unavailable, so the engine sees an explicit gap rather than a
// false "no traffic" reading.
func (b *FilesystemBackend) Refresh(ctx context.Context, info *models.FilesystemInfo) error {
	if err := b.refresh(ctx, info); err != nil {
		info.ResetActivity()
		return err
	}

	return nil
}

func (b *FilesystemBackend) refresh(ctx context.Context, info *models.FilesystemInfo) error {
	path := info.Path

	st, statErr := os.Lstat(path)
	if statErr == nil && st.Mode()&os.ModeSymlink != 0 {
		resolved, err := filepath.EvalSymlinks(path)
		if err != nil {
			return fmt.Errorf("cannot dereference filesystem %q: %w", info.Path, err)
		}

		path = resolved
		st, statErr = os.Stat(path)
	}

	// The table is re-enumerated on every refresh; mounts can change
	// between cycles.
	mounts, err := listMounts(ctx)
	if err != nil {
		return err
	}

	var (
		entry mountEntry
		found bool
	)

	if statErr != nil {
		// Not a stat-able object. The configured string can still be a
		// mount source: an NFS/CIFS/SSHFS connection string, a deleted
		// mountpoint, or a hotplug device currently unconfigured.
		entry, found = findByDevice(mounts, path)
	} else {
		if mode, uid, gid, ok := fileOwner(st); ok {
			info.Mode, info.UID, info.GID = mode, uid, gid
		}

		switch {
		case st.IsDir():
			entry, found = findByMountpoint(mounts, path)
		case st.Mode()&os.ModeDevice != 0:
			entry, found = findByDevice(mounts, path)
		default:
			return fmt.Errorf("%w: %s", errNotMountedObject, info.Path)
		}
	}

	if !found {
		return fmt.Errorf("%w: %s", errFilesystemNotFound, info.Path)
	}

	info.Device = entry.Device
	info.Type = entry.Type

	if err := readUsage(entry.Mountpoint, info); err != nil {
		return fmt.Errorf("cannot read usage of filesystem %q: %w", info.Path, err)
	}

	info.DeriveUsage()

	return b.readActivity(info, entry)
}

// applyRate feeds one counter sample through its series and derives the
// per-second rate, unavailable until two valid samples exist.
func applyRate(series *statistics.Series, now int64, value uint64) models.Rate {
	sample, ok := series.Update(now, value)
	if !ok {
		return models.Rate{}
	}

	return models.Rate{Value: sample.PerSecond(), Valid: true}
}

// applyPercent is applyRate for counters measured in milliseconds of busy
// time: the delta is expressed as a percentage of the elapsed window.
func applyPercent(series *statistics.Series, now int64, value uint64) models.Rate {
	sample, ok := series.Update(now, value)
	if !ok {
		return models.Rate{}
	}

	return models.Rate{Value: sample.Percent(), Valid: true}
}
