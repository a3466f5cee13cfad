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

// Package monitor drives the per-cycle refresh of every configured entity
// and turns the refreshed model into health decisions.
//
// Entities are independent: a cycle refreshes them concurrently, and a
// failure for one entity in one cycle never blocks the others. The engine
// only tracks health transitions; honest unavailability signaling is the
// backends' job, and repeated unavailability becomes a Failed state here.
package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/code-watch/monit/pkg/config"
	"github.com/code-watch/monit/pkg/logger"
	"github.com/code-watch/monit/pkg/models"
)

// FilesystemRefresher is the filesystem backend contract.
type FilesystemRefresher interface {
	Refresh(ctx context.Context, info *models.FilesystemInfo) error
}

// LinkRefresher is the network link backend contract.
type LinkRefresher interface {
	Refresh(ctx context.Context, link *models.NetworkLinkInfo) error
}

// EventPublisher receives health transition events. Implementations must
// tolerate broker outages; publish failures are logged and dropped.
type EventPublisher interface {
	PublishHealthEvent(ctx context.Context, data models.HealthEventData) error
}

// Engine owns the monitored entities for the daemon's lifetime.
type Engine struct {
	log       logger.Logger
	interval  time.Duration
	fs        FilesystemRefresher
	links     LinkRefresher
	publisher EventPublisher // nil when event publishing is disabled

	mu          sync.RWMutex
	filesystems []*filesystemEntity
	netlinks    []*linkEntity
	lastCycle   time.Time
}

// New builds the engine and its entity set from configuration. Entities
// are created once and live until the daemon reconfigures.
func New(cfg *config.Config, log logger.Logger, fs FilesystemRefresher, links LinkRefresher, publisher EventPublisher) *Engine {
	e := &Engine{
		log:       log.WithComponent("monitor"),
		interval:  time.Duration(cfg.PollInterval),
		fs:        fs,
		links:     links,
		publisher: publisher,
	}

	for _, fsCfg := range cfg.Filesystems {
		e.filesystems = append(e.filesystems, &filesystemEntity{
			cfg:    fsCfg,
			info:   &models.FilesystemInfo{Path: fsCfg.Path},
			health: models.HealthUnknown,
		})
	}

	for _, linkCfg := range cfg.Links {
		e.netlinks = append(e.netlinks, &linkEntity{
			cfg:    linkCfg,
			info:   &models.NetworkLinkInfo{Name: linkCfg.Name, Speed: models.SpeedUnknown},
			health: models.HealthUnknown,
		})
	}

	return e
}

// Run executes monitoring cycles until the context is canceled. The first
// cycle starts immediately.
func (e *Engine) Run(ctx context.Context) error {
	e.Cycle(ctx)

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			e.Cycle(ctx)
		}
	}
}

// Cycle refreshes and evaluates every entity once. Entities are refreshed
// concurrently; the write lock is held for the whole cycle so snapshots
// never observe a half-updated model.
func (e *Engine) Cycle(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var wg sync.WaitGroup

	for _, entity := range e.filesystems {
		wg.Add(1)

		go func(entity *filesystemEntity) {
			defer wg.Done()
			e.refreshFilesystem(ctx, entity)
		}(entity)
	}

	for _, entity := range e.netlinks {
		wg.Add(1)

		go func(entity *linkEntity) {
			defer wg.Done()
			e.refreshLink(ctx, entity)
		}(entity)
	}

	wg.Wait()

	e.lastCycle = time.Now()
}

func (e *Engine) refreshFilesystem(ctx context.Context, entity *filesystemEntity) {
	err := e.fs.Refresh(ctx, entity.info)
	if err != nil {
		e.log.Warn().Err(err).Str("path", entity.cfg.Path).Msg("Filesystem refresh failed")
	}

	if err == nil {
		// The backend rotates Flags into PrevFlags on every refresh, so a
		// remount shows up as the two fields disagreeing. The first refresh
		// has no previous cycle to compare against.
		if entity.seeded && entity.info.Flags != entity.info.PrevFlags {
			e.log.Warn().
				Str("path", entity.cfg.Path).
				Uint64("previous_flags", entity.info.PrevFlags).
				Uint64("flags", entity.info.Flags).
				Msg("Filesystem mount flags changed")
		}

		entity.seeded = true
	}

	health, reason := entity.evaluate(err)
	if health == models.HealthFailed {
		entity.failures++
		if entity.failures < entity.cfg.FailureTolerance {
			// Within the tolerance the entity keeps its previous state. The
			// failures counter still climbs, and the reason shows what is
			// brewing.
			health = entity.health
		}
	} else {
		entity.failures = 0
	}

	e.transition(ctx, &entity.health, &entity.reason, health, reason, entity.cfg.Path, "filesystem")
}

func (e *Engine) refreshLink(ctx context.Context, entity *linkEntity) {
	err := e.links.Refresh(ctx, entity.info)
	if err != nil {
		e.log.Warn().Err(err).Str("link", entity.cfg.Name).Msg("Link refresh failed")
	}

	health, reason := entity.evaluate(err)
	if health == models.HealthFailed {
		entity.failures++
		if entity.failures < entity.cfg.FailureTolerance {
			health = entity.health
		}
	} else {
		entity.failures = 0
	}

	e.transition(ctx, &entity.health, &entity.reason, health, reason, entity.cfg.Name, "network")
}

// transition records a health change and publishes it. No-op when the
// state is unchanged.
func (e *Engine) transition(ctx context.Context, health, reason *string, newHealth, newReason, name, kind string) {
	*reason = newReason

	if *health == newHealth {
		return
	}

	previous := *health
	*health = newHealth

	event := e.log.Info()
	if newHealth == models.HealthFailed {
		event = e.log.Error()
	}

	event.Str("entity", name).
		Str("kind", kind).
		Str("previous", previous).
		Str("current", newHealth).
		Str("reason", newReason).
		Msg("Health state changed")

	if e.publisher == nil {
		return
	}

	data := models.HealthEventData{
		Entity:        name,
		Kind:          kind,
		PreviousState: previous,
		CurrentState:  newHealth,
		Reason:        newReason,
		Timestamp:     time.Now().UTC(),
	}

	if err := e.publisher.PublishHealthEvent(ctx, data); err != nil {
		e.log.Warn().Err(err).Str("entity", name).Msg("Failed to publish health event")
	}
}
