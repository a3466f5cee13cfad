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
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/code-watch/monit/pkg/models"
)

// Sentinel raw speed values some drivers report instead of failing the
// read: all bits set in the 16- or 32-bit speed register.
const (
	speedSentinel16 = 65535
	speedSentinel32 = 4294967295
)

func (b *LinkBackend) refresh(_ context.Context, link *models.NetworkLinkInfo) error {
	base := filepath.Join(b.sysPath, kernelName(link.Name))

	if _, err := os.Stat(base); err != nil {
		return fmt.Errorf("%w: %s", errLinkNotFound, link.Name)
	}

	// Optional descriptive fields first; their absence must not abort the
	// counter reads below.
	link.State = readOperState(base)
	link.Speed = readSpeed(base)
	link.Duplex = readDuplex(base)

	now := b.clock()

	var raw [6]uint64

	for i, file := range [6]string{"rx_bytes", "tx_bytes", "rx_packets", "tx_packets", "rx_errors", "tx_errors"} {
		value, err := readSysfsUint(filepath.Join(base, "statistics", file))
		if err != nil {
			return fmt.Errorf("cannot read %s of interface %s: %w", file, link.Name, err)
		}

		raw[i] = value
	}

	link.RxBytesPerSec = applyRate(&link.RxBytes, now, raw[0])
	link.TxBytesPerSec = applyRate(&link.TxBytes, now, raw[1])
	link.RxPacketsPerSec = applyRate(&link.RxPackets, now, raw[2])
	link.TxPacketsPerSec = applyRate(&link.TxPackets, now, raw[3])
	link.RxErrorsPerSec = applyRate(&link.RxErrors, now, raw[4])
	link.TxErrorsPerSec = applyRate(&link.TxErrors, now, raw[5])

	link.Last = link.Now
	link.Now = now

	return nil
}

// readOperState maps the sysfs operational state onto the tri-state model.
// An "unknown" operstate is refined through the carrier attribute when
// present; an absent facility reads as unknown, never as down.
func readOperState(base string) models.LinkState {
	state, err := readSysfsString(filepath.Join(base, "operstate"))
	if err != nil {
		return models.LinkStateUnknown
	}

	switch state {
	case "up":
		return models.LinkStateUp
	case "down", "lowerlayerdown", "dormant":
		return models.LinkStateDown
	default:
		carrier, err := readSysfsString(filepath.Join(base, "carrier"))
		if err != nil {
			return models.LinkStateUnknown
		}

		switch carrier {
		case "1":
			return models.LinkStateUp
		case "0":
			return models.LinkStateDown
		default:
			return models.LinkStateUnknown
		}
	}
}

// readSpeed normalizes the sysfs speed attribute (Mbit/s) to bits/sec.
// Reading the file fails with EINVAL while the link is down; drivers that
// cannot report a speed return -1 or an all-bits-set register value. All
// of those mean unknown, never zero.
func readSpeed(base string) int64 {
	text, err := readSysfsString(filepath.Join(base, "speed"))
	if err != nil {
		return models.SpeedUnknown
	}

	speed, err := strconv.ParseInt(text, 10, 64)
	if err != nil || speed < 0 || speed == speedSentinel16 || speed == speedSentinel32 {
		return models.SpeedUnknown
	}

	return speed * 1_000_000
}

// readDuplex maps the sysfs duplex attribute; the kernel's literal
// "unknown" is distinct from half.
func readDuplex(base string) models.Duplex {
	duplex, err := readSysfsString(filepath.Join(base, "duplex"))
	if err != nil {
		return models.DuplexUnknown
	}

	switch duplex {
	case "full":
		return models.DuplexFull
	case "half":
		return models.DuplexHalf
	default:
		return models.DuplexUnknown
	}
}

func readSysfsString(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(data)), nil
}

func readSysfsUint(path string) (uint64, error) {
	text, err := readSysfsString(path)
	if err != nil {
		return 0, err
	}

	return strconv.ParseUint(text, 10, 64)
}
