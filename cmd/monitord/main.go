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

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/code-watch/monit/pkg/config"
	monithttp "github.com/code-watch/monit/pkg/http"
	"github.com/code-watch/monit/pkg/logger"
	"github.com/code-watch/monit/pkg/models"
	"github.com/code-watch/monit/pkg/monitor"
	"github.com/code-watch/monit/pkg/natsutil"
	"github.com/code-watch/monit/pkg/platform"
)

// hostTaggingPublisher stamps the local hostname onto every event before
// it reaches the broker.
type hostTaggingPublisher struct {
	inner *natsutil.EventPublisher
	host  string
}

func (p *hostTaggingPublisher) PublishHealthEvent(ctx context.Context, data models.HealthEventData) error {
	if data.Host == "" {
		data.Host = p.host
	}

	return p.inner.PublishHealthEvent(ctx, data)
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := flag.String("config", "/etc/monit/monitord.json", "Path to monitord config file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx, *configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logInstance, logShutdown, err := logger.New(ctx, cfg.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		if err := logShutdown(context.Background()); err != nil {
			log.Printf("Logger shutdown error: %v", err)
		}
	}()

	hostname, _ := os.Hostname()
	logInstance.Info().
		Str("host", hostname).
		Str("config", *configPath).
		Int("filesystems", len(cfg.Filesystems)).
		Int("links", len(cfg.Links)).
		Msg("Starting monitord")

	var publisher monitor.EventPublisher

	if cfg.Events.Enabled {
		eventPublisher, nc, err := natsutil.Connect(ctx, cfg.Events, logInstance)
		if err != nil {
			return fmt.Errorf("failed to set up event publishing: %w", err)
		}
		defer nc.Close()

		publisher = &hostTaggingPublisher{inner: eventPublisher, host: hostname}

		logInstance.Info().Str("url", cfg.Events.URL).Str("stream", cfg.Events.Stream).Msg("Event publishing enabled")
	}

	fsBackend := platform.NewFilesystemBackend(logInstance)
	linkBackend := platform.NewLinkBackend(logInstance)

	engine := monitor.New(cfg, logInstance, fsBackend, linkBackend, publisher)
	server := monithttp.NewServer(cfg.ListenAddr, cfg.APIKey, engine, logInstance)

	errCh := make(chan error, 2)

	go func() {
		if err := engine.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- fmt.Errorf("monitor engine failed: %w", err)
		}
	}()

	go func() {
		if err := server.Start(ctx); err != nil {
			errCh <- fmt.Errorf("status server failed: %w", err)
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logInstance.Info().Msg("Shutting down")
		return nil
	}
}
