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
	"errors"
	"fmt"

	"github.com/code-watch/monit/pkg/statistics"
)

var (
	errBadLinkState = errors.New("invalid link state")
	errBadDuplex    = errors.New("invalid duplex mode")
)

// LinkState is the tri-state operational state of a network interface.
// Unknown means the kernel does not expose the state on this platform,
// which must never be conflated with a real Down reading.
type LinkState int

const (
	LinkStateUnknown LinkState = iota
	LinkStateDown
	LinkStateUp
)

func (s LinkState) String() string {
	switch s {
	case LinkStateDown:
		return "down"
	case LinkStateUp:
		return "up"
	default:
		return "unknown"
	}
}

// MarshalText renders the state for JSON status output.
func (s LinkState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses the textual state, so status payloads round-trip
// through JSON consumers.
func (s *LinkState) UnmarshalText(text []byte) error {
	switch string(text) {
	case "up":
		*s = LinkStateUp
	case "down":
		*s = LinkStateDown
	case "unknown":
		*s = LinkStateUnknown
	default:
		return fmt.Errorf("%w: %q", errBadLinkState, text)
	}

	return nil
}

// Duplex is the negotiated duplex mode of a link. Unknown is distinct from
// Half: the kernel reports the literal string "unknown" for links that are
// down or virtual.
type Duplex int

const (
	DuplexUnknown Duplex = iota
	DuplexHalf
	DuplexFull
)

func (d Duplex) String() string {
	switch d {
	case DuplexHalf:
		return "half"
	case DuplexFull:
		return "full"
	default:
		return "unknown"
	}
}

// MarshalText renders the duplex mode for JSON status output.
func (d Duplex) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText parses the textual duplex mode.
func (d *Duplex) UnmarshalText(text []byte) error {
	switch string(text) {
	case "half":
		*d = DuplexHalf
	case "full":
		*d = DuplexFull
	case "unknown":
		*d = DuplexUnknown
	default:
		return fmt.Errorf("%w: %q", errBadDuplex, text)
	}

	return nil
}

// NetworkLinkInfo is the unified record for one monitored network
// interface. Name keeps the configured spelling, IP-alias suffix included
// (`eth0:0`); the backend strips the suffix for kernel lookups only.
type NetworkLinkInfo struct {
	Name string `json:"name"`

	State  LinkState `json:"state"`
	Duplex Duplex    `json:"duplex"`
	Speed  int64     `json:"speed"` // bits/sec, SpeedUnknown when not readable

	// Sample times in milliseconds; advanced unconditionally at the end of
	// every successful refresh.
	Last int64 `json:"last"`
	Now  int64 `json:"now"`

	// Cumulative counter series (since interface initialization).
	RxBytes   statistics.Series `json:"-"`
	TxBytes   statistics.Series `json:"-"`
	RxPackets statistics.Series `json:"-"`
	TxPackets statistics.Series `json:"-"`
	RxErrors  statistics.Series `json:"-"`
	TxErrors  statistics.Series `json:"-"`

	// Derived rates.
	RxBytesPerSec   Rate `json:"rx_bytes_per_sec"`
	TxBytesPerSec   Rate `json:"tx_bytes_per_sec"`
	RxPacketsPerSec Rate `json:"rx_packets_per_sec"`
	TxPacketsPerSec Rate `json:"tx_packets_per_sec"`
	RxErrorsPerSec  Rate `json:"rx_errors_per_sec"`
	TxErrorsPerSec  Rate `json:"tx_errors_per_sec"`
}

// Saturation returns the busier direction's throughput as a percentage of
// the negotiated speed. Unavailable when the speed is unknown or no byte
// rate exists yet.
func (n *NetworkLinkInfo) Saturation() Rate {
	if n.Speed <= 0 || !n.RxBytesPerSec.Valid || !n.TxBytesPerSec.Valid {
		return Rate{}
	}

	busiest := n.RxBytesPerSec.Value
	if n.TxBytesPerSec.Value > busiest {
		busiest = n.TxBytesPerSec.Value
	}

	return Rate{Value: 100.0 * busiest * 8 / float64(n.Speed), Valid: true}
}

// Reset returns every kernel-derived field to its unavailable state. Called
// when the interface cannot be found this cycle; the next successful
// refresh starts counter baselines from scratch.
func (n *NetworkLinkInfo) Reset() {
	n.State = LinkStateUnknown
	n.Duplex = DuplexUnknown
	n.Speed = SpeedUnknown

	n.RxBytes.Reset()
	n.TxBytes.Reset()
	n.RxPackets.Reset()
	n.TxPackets.Reset()
	n.RxErrors.Reset()
	n.TxErrors.Reset()

	n.RxBytesPerSec = Rate{}
	n.TxBytesPerSec = Rate{}
	n.RxPacketsPerSec = Rate{}
	n.TxPacketsPerSec = Rate{}
	n.RxErrorsPerSec = Rate{}
	n.TxErrorsPerSec = Rate{}
}
