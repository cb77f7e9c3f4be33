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

package manager

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rustlens/rustlens/internal/logger"
	"github.com/rustlens/rustlens/internal/types"
	"github.com/rustlens/rustlens/internal/utils/bcode"
	"golang.org/x/sync/errgroup"
)

// ErrCacheClosed is returned by Get after Close.
var ErrCacheClosed = errors.New("model cache closed")

// Cache loads each model id at most once for its lifetime. Handles are never evicted and a
// failed handle is never retried; build a new Cache to start over.
type Cache struct {
	resolver Resolver
	load     LoadFunc

	mutex   sync.Mutex
	handles map[string]*Handle
	closed  bool
}

// NewCache creates an empty cache that resolves artifacts with resolver and loads them with load.
func NewCache(resolver Resolver, load LoadFunc) *Cache {
	return &Cache{
		resolver: resolver,
		load:     load,
		handles:  make(map[string]*Handle),
	}
}

// Get returns the handle for desc.ID, starting its load on first use and waiting for a
// terminal state. The returned handle may be failed; the error is non-nil only when ctx
// ends before the load finishes or the cache is closed.
func (c *Cache) Get(ctx context.Context, desc types.ModelDescriptor) (*Handle, error) {
	c.mutex.Lock()
	if c.closed {
		c.mutex.Unlock()
		return nil, ErrCacheClosed
	}
	h, exists := c.handles[desc.ID]
	if !exists {
		h = newHandle(desc)
		c.handles[desc.ID] = h
	}
	c.mutex.Unlock()

	if h.begin() {
		// the load is detached from the caller's cancellation
		go c.loadModel(context.WithoutCancel(ctx), h)
	}

	if err := h.Wait(ctx); err != nil {
		logger.LogicLogger.Debug("[Cache] wait abandoned", "model", desc.ID, "error", err)
		return nil, err
	}
	return h, nil
}

// loadModel runs the resolve and load steps for one handle.
func (c *Cache) loadModel(ctx context.Context, h *Handle) {
	desc := h.Descriptor()
	start := time.Now()

	logger.LogicLogger.Info("[Cache] Loading model", "model", desc.ID, "kind", desc.Kind)

	path, err := c.resolver.Resolve(ctx, desc)
	if err != nil {
		logger.LogicLogger.Error("[Cache] Failed to resolve artifact", "model", desc.ID, "error", err)
		h.finish("", nil, err)
		return
	}
	h.setPath(path)

	session, err := c.load(desc, path)
	if err != nil {
		logger.LogicLogger.Error("[Cache] Failed to load model", "model", desc.ID, "path", path, "error", err)
		h.finish(path, nil, bcode.NewModelError(bcode.ErrModelUnavailable, desc.ID, err))
		return
	}

	c.mutex.Lock()
	if c.closed {
		c.mutex.Unlock()
		_ = session.Close()
		h.finish(path, nil, bcode.NewModelError(bcode.ErrModelUnavailable, desc.ID, ErrCacheClosed))
		return
	}
	h.finish(path, session, nil)
	c.mutex.Unlock()

	logger.LogicLogger.Info("[Cache] Model loaded successfully", "model", desc.ID,
		"path", path, "elapsed", time.Since(start).String())
}

// Preload loads every descriptor concurrently and waits for all of them. It returns the
// joined errors of the handles that failed.
func (c *Cache) Preload(ctx context.Context, descs ...types.ModelDescriptor) error {
	handles := make([]*Handle, len(descs))
	g, gctx := errgroup.WithContext(ctx)
	for i, desc := range descs {
		g.Go(func() error {
			h, err := c.Get(gctx, desc)
			if err != nil {
				return err
			}
			handles[i] = h
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var errs []error
	for _, h := range handles {
		if err := h.Err(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", h.Descriptor().ID, err))
		}
	}
	return errors.Join(errs...)
}

// Lookup returns the handle for id without starting a load.
func (c *Cache) Lookup(id string) (*Handle, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	h, ok := c.handles[id]
	return h, ok
}

// Snapshot returns the state of every known handle ordered by id.
func (c *Cache) Snapshot() []HandleState {
	c.mutex.Lock()
	handles := make([]*Handle, 0, len(c.handles))
	for _, h := range c.handles {
		handles = append(handles, h)
	}
	c.mutex.Unlock()

	states := make([]HandleState, 0, len(handles))
	for _, h := range handles {
		states = append(states, h.State())
	}
	sort.Slice(states, func(i, j int) bool { return states[i].ID < states[j].ID })
	return states
}

// GetStats returns counts of handles by status.
func (c *Cache) GetStats() map[string]int {
	stats := map[string]int{}
	for _, st := range c.Snapshot() {
		stats[st.Status.String()]++
	}
	return stats
}

// Close releases every ready session. Loads still running release their session when they
// finish. Get fails with ErrCacheClosed afterwards.
func (c *Cache) Close() error {
	c.mutex.Lock()
	if c.closed {
		c.mutex.Unlock()
		return nil
	}
	c.closed = true
	handles := make([]*Handle, 0, len(c.handles))
	for _, h := range c.handles {
		handles = append(handles, h)
	}
	c.mutex.Unlock()

	var errs []error
	for _, h := range handles {
		session, err := h.Session()
		if err != nil {
			continue
		}
		if err := session.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", h.Descriptor().ID, err))
		}
		logger.LogicLogger.Info("[Cache] Model unloaded", "model", h.Descriptor().ID)
	}
	return errors.Join(errs...)
}
