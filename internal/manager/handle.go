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
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rustlens/rustlens/internal/engine"
	"github.com/rustlens/rustlens/internal/types"
)

// ModelStatus is the lifecycle state of a Handle. Ready and failed are terminal.
type ModelStatus int

const (
	ModelStatusUnloaded ModelStatus = iota
	ModelStatusLoading
	ModelStatusReady
	ModelStatusFailed
)

func (s ModelStatus) String() string {
	switch s {
	case ModelStatusUnloaded:
		return "unloaded"
	case ModelStatusLoading:
		return "loading"
	case ModelStatusReady:
		return "ready"
	case ModelStatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

func (s ModelStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *ModelStatus) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for _, candidate := range []ModelStatus{ModelStatusUnloaded, ModelStatusLoading, ModelStatusReady, ModelStatusFailed} {
		if candidate.String() == name {
			*s = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown model status %q", name)
}

// ErrNotReady is returned when a session is requested from a handle that is not ready.
var ErrNotReady = errors.New("model not ready")

// Handle is a cached model reference. Adapters borrow it for one inference call.
type Handle struct {
	desc types.ModelDescriptor
	done chan struct{}

	mu           sync.RWMutex
	status       ModelStatus
	session      engine.Session
	path         string
	err          error
	loadedTime   time.Time
	lastUsedTime time.Time
	refCount     int
}

func newHandle(desc types.ModelDescriptor) *Handle {
	return &Handle{
		desc:   desc,
		done:   make(chan struct{}),
		status: ModelStatusUnloaded,
	}
}

// NewReadyHandle wraps an already loaded session. It is used by tests and by callers that
// manage sessions outside a Cache.
func NewReadyHandle(desc types.ModelDescriptor, session engine.Session) *Handle {
	h := newHandle(desc)
	h.finish("", session, nil)
	return h
}

// NewFailedHandle returns a handle in the failed state carrying err.
func NewFailedHandle(desc types.ModelDescriptor, err error) *Handle {
	h := newHandle(desc)
	h.finish("", nil, err)
	return h
}

func (h *Handle) Descriptor() types.ModelDescriptor {
	return h.desc
}

// Status returns the current state (thread-safe)
func (h *Handle) Status() ModelStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.status
}

// Err returns the load error of a failed handle, nil otherwise.
func (h *Handle) Err() error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.err
}

// Path returns the resolved artifact path once known.
func (h *Handle) Path() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.path
}

// Session returns the executable model of a ready handle.
func (h *Handle) Session() (engine.Session, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.status != ModelStatusReady {
		return nil, ErrNotReady
	}
	return h.session, nil
}

// Done is closed once the handle reaches a terminal state.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the handle is terminal or ctx is done. A cancelled wait leaves the
// handle untouched.
func (h *Handle) Wait(ctx context.Context) error {
	select {
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Acquire marks the handle as borrowed by one inference call.
func (h *Handle) Acquire() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.refCount++
	h.lastUsedTime = time.Now()
}

// Release ends a borrow started by Acquire.
func (h *Handle) Release() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.refCount > 0 {
		h.refCount--
	}
	h.lastUsedTime = time.Now()
}

// RefCount returns the number of in-flight borrows (thread-safe)
func (h *Handle) RefCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.refCount
}

func (h *Handle) begin() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.status != ModelStatusUnloaded {
		return false
	}
	h.status = ModelStatusLoading
	return true
}

func (h *Handle) setPath(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.path = path
}

func (h *Handle) finish(path string, session engine.Session, err error) {
	h.mu.Lock()
	if path != "" {
		h.path = path
	}
	if err != nil {
		h.status = ModelStatusFailed
		h.err = err
	} else {
		h.status = ModelStatusReady
		h.session = session
		h.loadedTime = time.Now()
	}
	h.mu.Unlock()
	close(h.done)
}

// HandleState is a point-in-time view of a Handle for status listings.
type HandleState struct {
	ID           string          `json:"id"`
	Kind         types.ModelKind `json:"kind"`
	Status       ModelStatus     `json:"status"`
	Path         string          `json:"path"`
	Source       string          `json:"source,omitempty"`
	LoadedTime   time.Time       `json:"loaded_time,omitempty"`
	LastUsedTime time.Time       `json:"last_used_time,omitempty"`
	InFlight     int             `json:"in_flight"`
	Error        string          `json:"error,omitempty"`
}

func (h *Handle) State() HandleState {
	h.mu.RLock()
	defer h.mu.RUnlock()
	st := HandleState{
		ID:           h.desc.ID,
		Kind:         h.desc.Kind,
		Status:       h.status,
		Path:         h.path,
		Source:       h.desc.Source,
		LoadedTime:   h.loadedTime,
		LastUsedTime: h.lastUsedTime,
		InFlight:     h.refCount,
	}
	if st.Path == "" {
		st.Path = h.desc.Path
	}
	if h.err != nil {
		st.Error = h.err.Error()
	}
	return st
}
