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
	"fmt"

	"github.com/code-watch/monit/pkg/config"
	"github.com/code-watch/monit/pkg/models"
)

type filesystemEntity struct {
	cfg      config.FilesystemConfig
	info     *models.FilesystemInfo
	health   string
	reason   string
	failures int  // consecutive failed cycles
	seeded   bool // at least one successful refresh behind us
}

// evaluate maps the refreshed filesystem model onto a health state.
// A refresh error means the filesystem is unavailable, which is itself
// a failure; threshold checks only run on a successful refresh.
func (f *filesystemEntity) evaluate(refreshErr error) (string, string) {
	if refreshErr != nil {
		return models.HealthFailed, fmt.Sprintf("unavailable: %v", refreshErr)
	}

	if f.cfg.SpaceUsedLimit > 0 && f.info.SpaceUsedPercent > f.cfg.SpaceUsedLimit {
		return models.HealthFailed, fmt.Sprintf("space usage %.1f%% exceeds limit %.1f%%",
			f.info.SpaceUsedPercent, f.cfg.SpaceUsedLimit)
	}

	if f.cfg.InodeUsedLimit > 0 && f.info.InodeUsedPercent > f.cfg.InodeUsedLimit {
		return models.HealthFailed, fmt.Sprintf("inode usage %.1f%% exceeds limit %.1f%%",
			f.info.InodeUsedPercent, f.cfg.InodeUsedLimit)
	}

	if f.cfg.UID != nil && f.info.UID != *f.cfg.UID {
		return models.HealthFailed, fmt.Sprintf("owner uid %d does not match expected %d",
			f.info.UID, *f.cfg.UID)
	}

	if f.cfg.GID != nil && f.info.GID != *f.cfg.GID {
		return models.HealthFailed, fmt.Sprintf("owner gid %d does not match expected %d",
			f.info.GID, *f.cfg.GID)
	}

	return models.HealthHealthy, ""
}

type linkEntity struct {
	cfg      config.LinkConfig
	info     *models.NetworkLinkInfo
	health   string
	reason   string
	failures int // consecutive failed cycles
}

// evaluate maps the refreshed link model onto a health state. An Unknown
// operational state is not a failure; only a definite Down trips the
// require_up check.
func (l *linkEntity) evaluate(refreshErr error) (string, string) {
	if refreshErr != nil {
		return models.HealthFailed, fmt.Sprintf("unavailable: %v", refreshErr)
	}

	if l.cfg.RequireUp && l.info.State == models.LinkStateDown {
		return models.HealthFailed, "link is down"
	}

	if l.cfg.SaturationLimit > 0 {
		if saturation := l.info.Saturation(); saturation.Valid && saturation.Value > l.cfg.SaturationLimit {
			return models.HealthFailed, fmt.Sprintf("saturation %.1f%% exceeds limit %.1f%%",
				saturation.Value, l.cfg.SaturationLimit)
		}
	}

	if l.cfg.ErrorRateLimit > 0 {
		errorRate := 0.0
		if l.info.RxErrorsPerSec.Valid {
			errorRate += l.info.RxErrorsPerSec.Value
		}

		if l.info.TxErrorsPerSec.Valid {
			errorRate += l.info.TxErrorsPerSec.Value
		}

		if errorRate > l.cfg.ErrorRateLimit {
			return models.HealthFailed, fmt.Sprintf("error rate %.1f/s exceeds limit %.1f/s",
				errorRate, l.cfg.ErrorRateLimit)
		}
	}

	return models.HealthHealthy, ""
}
