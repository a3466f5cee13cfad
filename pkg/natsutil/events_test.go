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

package natsutil

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-watch/monit/pkg/models"
)

func sampleTransition() models.HealthEventData {
	return models.HealthEventData{
		Entity:        "/srv/data",
		Kind:          "filesystem",
		PreviousState: models.HealthHealthy,
		CurrentState:  models.HealthFailed,
		Reason:        "space usage 95.0% exceeds limit 90.0%",
		Timestamp:     time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Host:          "node-1",
	}
}

func TestNewHealthEventEnvelope(t *testing.T) {
	t.Parallel()

	data := sampleTransition()
	event := newHealthEvent("events.monitor.health", data)

	assert.Equal(t, "1.0", event.SpecVersion)
	assert.Equal(t, eventSource, event.Source)
	assert.Equal(t, "com.codewatch.monit.health", event.Type)
	assert.Equal(t, "application/json", event.DataContentType)
	assert.Equal(t, "events.monitor.health", event.Subject)

	require.NotNil(t, event.Time)
	assert.Equal(t, data.Timestamp, *event.Time)

	_, err := uuid.Parse(event.ID)
	assert.NoError(t, err)
}

func TestNewHealthEventUniqueIDs(t *testing.T) {
	t.Parallel()

	data := sampleTransition()
	first := newHealthEvent("events.monitor.health", data)
	second := newHealthEvent("events.monitor.health", data)

	assert.NotEqual(t, first.ID, second.ID)
}

func TestHealthEventRoundTrip(t *testing.T) {
	t.Parallel()

	event := newHealthEvent("events.monitor.health", sampleTransition())

	raw, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded struct {
		SpecVersion string                 `json:"specversion"`
		Data        models.HealthEventData `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, "1.0", decoded.SpecVersion)
	assert.Equal(t, "/srv/data", decoded.Data.Entity)
	assert.Equal(t, models.HealthFailed, decoded.Data.CurrentState)
	assert.Equal(t, "node-1", decoded.Data.Host)
}
