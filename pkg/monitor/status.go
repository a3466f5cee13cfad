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

package monitor

import (
	"time"

	"github.com/code-watch/monit/pkg/models"
)

// EntityStatus is one monitored entity as exposed over the status API.
// Exactly one of Filesystem or Link is set, matching Kind.
type EntityStatus struct {
	Kind       string                  `json:"kind"`
	Health     string                  `json:"health"`
	Reason     string                  `json:"reason,omitempty"`
	Failures   int                     `json:"failures"` // consecutive failed cycles
	Filesystem *models.FilesystemInfo  `json:"filesystem,omitempty"`
	Link       *models.NetworkLinkInfo `json:"link,omitempty"`
}

// Snapshot is a point-in-time copy of the engine state.
type Snapshot struct {
	GeneratedAt time.Time      `json:"generated_at"`
	LastCycle   time.Time      `json:"last_cycle"`
	Host        *HostSnapshot  `json:"host,omitempty"`
	Entities    []EntityStatus `json:"entities"`
}

// Snapshot copies the current entity state under the read lock. The
// returned models are detached copies; callers may serialize them without
// racing the next cycle.
func (e *Engine) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()

	snap := Snapshot{
		GeneratedAt: time.Now().UTC(),
		LastCycle:   e.lastCycle,
		Entities:    make([]EntityStatus, 0, len(e.filesystems)+len(e.netlinks)),
	}

	for _, entity := range e.filesystems {
		infoCopy := *entity.info
		snap.Entities = append(snap.Entities, EntityStatus{
			Kind:       "filesystem",
			Health:     entity.health,
			Reason:     entity.reason,
			Failures:   entity.failures,
			Filesystem: &infoCopy,
		})
	}

	for _, entity := range e.netlinks {
		infoCopy := *entity.info
		snap.Entities = append(snap.Entities, EntityStatus{
			Kind:     "network",
			Health:   entity.health,
			Reason:   entity.reason,
			Failures: entity.failures,
			Link:     &infoCopy,
		})
	}

	return snap
}
