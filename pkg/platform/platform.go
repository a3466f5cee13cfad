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

// Package platform reads raw resource state from the kernel and normalizes
// it into the unified model in pkg/models.
//
// The package is the daemon's only platform-specific layer. Linux backends
// read procfs and sysfs directly; every other unix goes through gopsutil,
// which wraps the per-BSD sysctl variants behind one API. The build tag on
// each file selects the implementation, so a running daemon carries exactly
// one backend per concern and no runtime dispatch.
//
// Backends are synchronous and perform no retries: a failed read leaves
// the entity's metrics explicitly unavailable for this cycle and the next
// cycle starts over. Whole-system snapshots (the disk accounting table)
// are cached behind a staleness rule so concurrently refreshed entities
// within one cycle do not re-read the table once per entity.
package platform

import "time"

// Snapshot staleness bound, following the 1-second rule used for the disk
// accounting table: refresh when older than a second, and refresh on
// backward clock jumps too.
const cacheMaxAgeMs = 1000

func nowMillis() int64 {
	return time.Now().UnixMilli()
}
