//*****************************************************************************
// Copyright 2025 Intel Corporation
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//*****************************************************************************

package server

import (
	"context"
	"time"

	"github.com/rustlens/rustlens/internal/api/dto"
	"github.com/rustlens/rustlens/internal/logger"
	"github.com/rustlens/rustlens/internal/manager"
	"github.com/rustlens/rustlens/internal/utils"
	"github.com/rustlens/rustlens/internal/utils/bcode"
)

const (
	HealthStatusUp       = "UP"
	HealthStatusDegraded = "DEGRADED"
)

type Health interface {
	HealthHeader(ctx context.Context) (*dto.GetServerHealthResponse, error)
}

type HealthImpl struct {
	Cache       *manager.Cache
	ModelsDir   string
	HistoryOpen bool
	StartedAt   time.Time
}

func NewHealth(cache *manager.Cache, modelsDir string, historyOpen bool) Health {
	return &HealthImpl{
		Cache:       cache,
		ModelsDir:   modelsDir,
		HistoryOpen: historyOpen,
		StartedAt:   time.Now().UTC(),
	}
}

// HealthHeader reports UP only when no model has failed to load.
func (h *HealthImpl) HealthHeader(ctx context.Context) (*dto.GetServerHealthResponse, error) {
	stats := h.Cache.GetStats()
	data := dto.HealthData{
		Status:      HealthStatusUp,
		Models:      stats,
		MemoryFree:  utils.AvailableMemoryGB(),
		GPU:         utils.DetectGpuModel(),
		StartedAt:   h.StartedAt,
		HistoryOpen: h.HistoryOpen,
	}
	if stats[manager.ModelStatusFailed.String()] > 0 {
		data.Status = HealthStatusDegraded
	}

	if h.ModelsDir != "" {
		disk, err := utils.SystemDiskSize(h.ModelsDir)
		if err != nil {
			logger.ApiLogger.Debug("[Health] disk usage unavailable", "path", h.ModelsDir, "error", err)
		} else {
			data.Disk = disk
		}
	}

	return &dto.GetServerHealthResponse{
		Bcode: *bcode.SuccessCode,
		Data:  data,
	}, nil
}
