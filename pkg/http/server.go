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
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/code-watch/monit/pkg/logger"
	"github.com/code-watch/monit/pkg/monitor"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// StatusSource provides the current monitoring snapshot.
type StatusSource interface {
	Snapshot() monitor.Snapshot
}

// Server exposes the status API over plain HTTP.
type Server struct {
	log    logger.Logger
	source StatusSource
	srv    *http.Server
}

// NewServer wires the routes and middleware. The server does not listen
// until Start is called.
func NewServer(addr, apiKey string, source StatusSource, log logger.Logger) *Server {
	s := &Server{
		log:    log.WithComponent("http"),
		source: source,
	}

	router := mux.NewRouter()
	router.Use(RequestLogMiddleware(s.log))
	router.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)

	protected := router.PathPrefix("/api").Subrouter()
	protected.Use(APIKeyMiddleware(apiKey, s.log))
	protected.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)

	s.srv = &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	return s
}

// Start serves until the context is canceled, then drains connections.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.log.Info().Str("addr", s.srv.Addr).Msg("Status API listening")

		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return s.srv.Shutdown(shutdownCtx)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap := s.source.Snapshot()
	snap.Host = monitor.CollectHost(r.Context())

	s.writeJSON(w, http.StatusOK, snap)
}

// handleHealthz reports daemon liveness only; it says nothing about the
// health of monitored entities and is never behind the API key.
func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode response")
	}
}
