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

import "time"

// Health states as reported by the monitoring engine. A freshly configured
// entity is unknown until its first successful refresh and evaluation.
const (
	HealthUnknown = "unknown"
	HealthHealthy = "healthy"
	HealthFailed  = "failed"
)

// CloudEvent is a CloudEvents v1.0 envelope for events published to the
// broker.
type CloudEvent struct {
	SpecVersion     string      `json:"specversion"`
	ID              string      `json:"id"`
	Source          string      `json:"source"`
	Type            string      `json:"type"`
	DataContentType string      `json:"datacontenttype"`
	Subject         string      `json:"subject,omitempty"`
	Time            *time.Time  `json:"time,omitempty"`
	Data            interface{} `json:"data,omitempty"`
}

// HealthEventData is the payload of an entity health transition event.
type HealthEventData struct {
	Entity        string    `json:"entity"` // configured path or interface name
	Kind          string    `json:"kind"`   // "filesystem" or "network"
	PreviousState string    `json:"previous_state"`
	CurrentState  string    `json:"current_state"`
	Reason        string    `json:"reason,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
	Host          string    `json:"host,omitempty"`
}
