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
	"strings"

	"github.com/code-watch/monit/pkg/logger"
	"github.com/code-watch/monit/pkg/models"
)

var errLinkNotFound = errors.New("network interface not found")

// LinkBackend resolves configured interface names to kernel records and
// refreshes their state, speed, duplex and traffic metrics.
type LinkBackend struct {
	log     logger.Logger
	clock   func() int64
	sysPath string
}

func NewLinkBackend(log logger.Logger) *LinkBackend {
	return &LinkBackend{
		log:     log.WithComponent("netlink"),
		clock:   nowMillis,
		sysPath: "/sys/class/net",
	}
}

// Refresh mutates link in place for the current cycle. The six traffic
// counters are mandatory: failure to read any of them fails the whole
// call and resets the link to its unavailable state. Missing state, speed
// or duplex facilities degrade to unknown without failing the cycle.
func (b *LinkBackend) Refresh(ctx context.Context, link *models.NetworkLinkInfo) error {
	if err := b.refresh(ctx, link); err != nil {
		link.Reset()
		return err
	}

	return nil
}

// kernelName strips the IP-alias suffix for kernel lookups: eth0:0 shares
// the kernel record of eth0. The configured spelling stays in the model
// for reporting.
func kernelName(name string) string {
	if i := strings.IndexByte(name, ':'); i >= 0 {
		return name[:i]
	}

	return name
}
