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
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v3/net"

	"github.com/code-watch/monit/pkg/models"
)

func (b *LinkBackend) refresh(ctx context.Context, link *models.NetworkLinkInfo) error {
	name := kernelName(link.Name)

	// Per-interface counters are the mandatory facility on every platform.
	counters, err := net.IOCountersWithContext(ctx, true)
	if err != nil {
		return fmt.Errorf("cannot read interface statistics for %s: %w", link.Name, err)
	}

	var (
		io    net.IOCountersStat
		found bool
	)

	for i := range counters {
		if counters[i].Name == name {
			io = counters[i]
			found = true

			break
		}
	}

	if !found {
		return fmt.Errorf("%w: %s", errLinkNotFound, link.Name)
	}

	// Administrative up/down from the interface flag word; negotiated
	// speed and duplex have no portable facility here and stay unknown.
	link.State = readLinkState(ctx, name)
	link.Speed = models.SpeedUnknown
	link.Duplex = models.DuplexUnknown

	now := b.clock()

	link.RxBytesPerSec = applyRate(&link.RxBytes, now, io.BytesRecv)
	link.TxBytesPerSec = applyRate(&link.TxBytes, now, io.BytesSent)
	link.RxPacketsPerSec = applyRate(&link.RxPackets, now, io.PacketsRecv)
	link.TxPacketsPerSec = applyRate(&link.TxPackets, now, io.PacketsSent)
	link.RxErrorsPerSec = applyRate(&link.RxErrors, now, io.Errin)
	link.TxErrorsPerSec = applyRate(&link.TxErrors, now, io.Errout)

	link.Last = link.Now
	link.Now = now

	return nil
}

func readLinkState(ctx context.Context, name string) models.LinkState {
	ifaces, err := net.InterfacesWithContext(ctx)
	if err != nil {
		return models.LinkStateUnknown
	}

	for _, iface := range ifaces {
		if iface.Name != name {
			continue
		}

		for _, flag := range iface.Flags {
			if flag == "up" {
				return models.LinkStateUp
			}
		}

		return models.LinkStateDown
	}

	return models.LinkStateUnknown
}
