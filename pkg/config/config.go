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

// Package config loads the daemon's JSON configuration file: the entities
// to monitor with their thresholds, plus logging, status API and event
// broker settings.
package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/code-watch/monit/pkg/logger"
)

const (
	defaultPollInterval = 30 * time.Second
	defaultListenAddr   = "127.0.0.1:2812"
)

var (
	errNoEntities          = errors.New("configuration lists no filesystems or links to monitor")
	errFilesystemNoPath    = errors.New("filesystem entry missing path")
	errLinkNoName          = errors.New("link entry missing name")
	errEventsNoURL         = errors.New("events enabled but no broker url configured")
	errEventsTLSIncomplete = errors.New("events tls requires ca_file, cert_file and key_file")
	errDuplicateEntity     = errors.New("duplicate monitored entity")
	errNegativeThreshold   = errors.New("threshold percentages must be within 0-100")
	errNegativeTolerance   = errors.New("failure_tolerance must not be negative")
)

// Config is the daemon's top-level configuration.
type Config struct {
	PollInterval Duration           `json:"poll_interval"`
	ListenAddr   string             `json:"listen_addr"`
	APIKey       string             `json:"api_key,omitempty"`
	Logger       logger.Config      `json:"logger"`
	Events       EventsConfig       `json:"events"`
	Filesystems  []FilesystemConfig `json:"filesystems"`
	Links        []LinkConfig       `json:"links"`
}

// FilesystemConfig declares one monitored mountpoint or device. Threshold
// values of zero disable the corresponding check.
type FilesystemConfig struct {
	Path             string  `json:"path"`
	SpaceUsedLimit   float64 `json:"space_used_limit,omitempty"` // percent
	InodeUsedLimit   float64 `json:"inode_used_limit,omitempty"` // percent
	UID              *uint32 `json:"uid,omitempty"`
	GID              *uint32 `json:"gid,omitempty"`
	FailureTolerance int     `json:"failure_tolerance,omitempty"` // consecutive failed cycles before the entity goes failed
}

// LinkConfig declares one monitored network interface, by name with an
// optional IP-alias suffix.
type LinkConfig struct {
	Name             string  `json:"name"`
	RequireUp        bool    `json:"require_up"`
	SaturationLimit  float64 `json:"saturation_limit,omitempty"` // percent of negotiated speed
	ErrorRateLimit   float64 `json:"error_rate_limit,omitempty"` // errors/sec, either direction
	FailureTolerance int     `json:"failure_tolerance,omitempty"` // consecutive failed cycles before the entity goes failed
}

// EventsConfig controls health-transition event publishing to NATS
// JetStream. Disabled by default; the daemon is fully functional without a
// broker.
type EventsConfig struct {
	Enabled bool       `json:"enabled"`
	URL     string     `json:"url,omitempty"`
	Stream  string     `json:"stream,omitempty"`
	Subject string     `json:"subject,omitempty"`
	TLS     *TLSConfig `json:"tls,omitempty"`
}

// TLSConfig holds the mTLS material for the broker connection. All three
// files must be set when TLS is configured.
type TLSConfig struct {
	CAFile     string `json:"ca_file"`
	CertFile   string `json:"cert_file"`
	KeyFile    string `json:"key_file"`
	ServerName string `json:"server_name,omitempty"`
}

// Load reads, overlays and validates the configuration from a JSON file.
func Load(ctx context.Context, path string) (*Config, error) {
	var cfg Config

	loader := &FileConfigLoader{}
	if err := loader.Load(ctx, path, &cfg); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %q: %w", path, err)
	}

	return &cfg, nil
}

// Validate applies defaults and rejects configurations the daemon could
// not act on.
func (c *Config) Validate() error {
	if time.Duration(c.PollInterval) <= 0 {
		c.PollInterval = Duration(defaultPollInterval)
	}

	if c.ListenAddr == "" {
		c.ListenAddr = defaultListenAddr
	}

	if c.Logger.Level == "" && c.Logger.Output == "" {
		c.Logger = logger.DefaultConfig()
	}

	if len(c.Filesystems) == 0 && len(c.Links) == 0 {
		return errNoEntities
	}

	seen := make(map[string]struct{}, len(c.Filesystems)+len(c.Links))

	for i := range c.Filesystems {
		fs := &c.Filesystems[i]
		if fs.Path == "" {
			return errFilesystemNoPath
		}

		if err := checkPercent(fs.SpaceUsedLimit); err != nil {
			return fmt.Errorf("%w: filesystem %s", err, fs.Path)
		}

		if err := checkPercent(fs.InodeUsedLimit); err != nil {
			return fmt.Errorf("%w: filesystem %s", err, fs.Path)
		}

		if fs.FailureTolerance < 0 {
			return fmt.Errorf("%w: filesystem %s", errNegativeTolerance, fs.Path)
		}

		if _, dup := seen["fs:"+fs.Path]; dup {
			return fmt.Errorf("%w: filesystem %s", errDuplicateEntity, fs.Path)
		}

		seen["fs:"+fs.Path] = struct{}{}
	}

	for i := range c.Links {
		link := &c.Links[i]
		if link.Name == "" {
			return errLinkNoName
		}

		if err := checkPercent(link.SaturationLimit); err != nil {
			return fmt.Errorf("%w: link %s", err, link.Name)
		}

		if link.FailureTolerance < 0 {
			return fmt.Errorf("%w: link %s", errNegativeTolerance, link.Name)
		}

		if _, dup := seen["link:"+link.Name]; dup {
			return fmt.Errorf("%w: link %s", errDuplicateEntity, link.Name)
		}

		seen["link:"+link.Name] = struct{}{}
	}

	if c.Events.Enabled {
		if c.Events.URL == "" {
			return errEventsNoURL
		}

		if c.Events.Stream == "" {
			c.Events.Stream = "events"
		}

		if c.Events.Subject == "" {
			c.Events.Subject = "events.monitor.health"
		}

		if tlsCfg := c.Events.TLS; tlsCfg != nil {
			if tlsCfg.CAFile == "" || tlsCfg.CertFile == "" || tlsCfg.KeyFile == "" {
				return errEventsTLSIncomplete
			}
		}
	}

	return nil
}

func checkPercent(v float64) error {
	if v < 0 || v > 100 {
		return errNegativeThreshold
	}

	return nil
}
