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

package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-watch/monit/pkg/logger"
	"github.com/code-watch/monit/pkg/models"
	"github.com/code-watch/monit/pkg/monitor"
)

type fakeStatusSource struct {
	snap monitor.Snapshot
}

func (f *fakeStatusSource) Snapshot() monitor.Snapshot {
	return f.snap
}

func testSnapshot() monitor.Snapshot {
	return monitor.Snapshot{
		GeneratedAt: time.Now().UTC(),
		LastCycle:   time.Now().UTC(),
		Entities: []monitor.EntityStatus{
			{
				Kind:       "filesystem",
				Health:     models.HealthHealthy,
				Filesystem: &models.FilesystemInfo{Path: "/data", Device: "/dev/sda1", Type: "ext4"},
			},
			{
				Kind:   "network",
				Health: models.HealthFailed,
				Reason: "link is down",
				Link:   &models.NetworkLinkInfo{Name: "eth0", State: models.LinkStateDown},
			},
		},
	}
}

func TestHandleStatus(t *testing.T) {
	t.Parallel()

	server := NewServer("127.0.0.1:0", "", &fakeStatusSource{snap: testSnapshot()}, logger.NewTestLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/status", http.NoBody)
	rec := httptest.NewRecorder()
	server.srv.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var snap monitor.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	require.Len(t, snap.Entities, 2)

	assert.Equal(t, "filesystem", snap.Entities[0].Kind)
	assert.Equal(t, "/data", snap.Entities[0].Filesystem.Path)
	assert.Equal(t, "link is down", snap.Entities[1].Reason)
	assert.NotNil(t, snap.Host)
}

func TestHandleStatusRequiresKey(t *testing.T) {
	t.Parallel()

	server := NewServer("127.0.0.1:0", "secret", &fakeStatusSource{snap: testSnapshot()}, logger.NewTestLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/status", http.NoBody)
	rec := httptest.NewRecorder()
	server.srv.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHealthzBypassesKey(t *testing.T) {
	t.Parallel()

	server := NewServer("127.0.0.1:0", "secret", &fakeStatusSource{snap: testSnapshot()}, logger.NewTestLogger())

	req := httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody)
	rec := httptest.NewRecorder()
	server.srv.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUnknownPathNotFound(t *testing.T) {
	t.Parallel()

	server := NewServer("127.0.0.1:0", "", &fakeStatusSource{snap: testSnapshot()}, logger.NewTestLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/nope", http.NoBody)
	rec := httptest.NewRecorder()
	server.srv.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatusRejectsPost(t *testing.T) {
	t.Parallel()

	server := NewServer("127.0.0.1:0", "", &fakeStatusSource{snap: testSnapshot()}, logger.NewTestLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/status", http.NoBody)
	rec := httptest.NewRecorder()
	server.srv.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
