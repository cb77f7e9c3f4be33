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

package process

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rustlens/rustlens/internal/logger"
	"github.com/rustlens/rustlens/internal/types"
)

// Preloader loads models ahead of the first request.
type Preloader interface {
	Preload(ctx context.Context, descs ...types.ModelDescriptor) error
}

type namedCloser struct {
	name  string
	close func() error
}

// ServiceManager owns the lifecycle of the in-process services behind the HTTP server:
// the model cache, the history store and the inference runtime.
type ServiceManager struct {
	mu         sync.RWMutex
	status     ServiceStatus
	startTime  time.Time
	shutdownCh chan struct{}

	preloader Preloader
	models    []types.ModelDescriptor
	closers   []namedCloser
}

func NewServiceManager(preloader Preloader, models []types.ModelDescriptor) *ServiceManager {
	return &ServiceManager{
		status:     ServiceStatusStopped,
		shutdownCh: make(chan struct{}),
		preloader:  preloader,
		models:     models,
	}
}

// AddCloser registers a resource released by StopServices. Resources are released in
// reverse registration order.
func (m *ServiceManager) AddCloser(name string, closeFn func() error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closers = append(m.closers, namedCloser{name: name, close: closeFn})
}

// StartServices preloads every configured model. A model that fails to load only fails
// start-up when requireModels is set; otherwise the server starts degraded and requests
// needing that model answer ModelUnavailable.
func (m *ServiceManager) StartServices(ctx context.Context, requireModels bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.status == ServiceStatusRunning {
		logger.EngineLogger.Info("[Service] services are already running")
		return nil
	}

	m.status = ServiceStatusStarting
	m.startTime = time.Now()
	logger.EngineLogger.Info("[Service] Starting services...", "models", len(m.models))

	if m.preloader != nil && len(m.models) > 0 {
		if err := m.preloader.Preload(ctx, m.models...); err != nil {
			if requireModels {
				m.status = ServiceStatusError
				return fmt.Errorf("preload models: %w", err)
			}
			logger.EngineLogger.Warn("[Service] some models failed to load, serving degraded", "error", err)
		}
	}

	m.status = ServiceStatusRunning
	logger.EngineLogger.Info("[Service] services started", "elapsed", time.Since(m.startTime).String())
	return nil
}

// StopServices releases every registered resource. It is safe to call more than once.
func (m *ServiceManager) StopServices() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.status == ServiceStatusStopped {
		return nil
	}
	m.status = ServiceStatusStopping
	logger.EngineLogger.Info("[Service] Gracefully stopping services...")

	select {
	case <-m.shutdownCh:
	default:
		close(m.shutdownCh)
	}

	var errs []error
	for i := len(m.closers) - 1; i >= 0; i-- {
		c := m.closers[i]
		if err := c.close(); err != nil {
			logger.EngineLogger.Error("[Service] close failed", "resource", c.name, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", c.name, err))
		}
	}
	m.closers = nil

	m.status = ServiceStatusStopped
	logger.EngineLogger.Info("[Service] services stopped")
	return errors.Join(errs...)
}

// WaitForShutdown is closed once StopServices has begun.
func (m *ServiceManager) WaitForShutdown() <-chan struct{} {
	return m.shutdownCh
}

func (m *ServiceManager) GetStatus() ServiceStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *ServiceManager) StartTime() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.startTime
}
