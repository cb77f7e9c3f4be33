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

package inference

import (
	"fmt"
	"image"

	"github.com/rustlens/rustlens/internal/engine"
	"github.com/rustlens/rustlens/internal/manager"
	"github.com/rustlens/rustlens/internal/types"
	"github.com/rustlens/rustlens/internal/utils/bcode"
)

// Adapter runs one kind of model against an image and reports a Verdict. Implementations
// never retain the handle beyond the call.
type Adapter interface {
	Kind() types.ModelKind
	Run(h *manager.Handle, img image.Image) (types.Verdict, error)
}

// inferenceError tags err with the pathway it happened on.
func inferenceError(kind types.ModelKind, err error) error {
	return bcode.NewModelError(bcode.ErrInference, string(kind), err)
}

// borrow returns the session of a ready handle and marks it in use. Callers must call the
// returned release func.
func borrow(kind types.ModelKind, h *manager.Handle) (engine.Session, func(), error) {
	if h == nil {
		return nil, nil, inferenceError(kind, fmt.Errorf("no model handle"))
	}
	session, err := h.Session()
	if err != nil {
		return nil, nil, inferenceError(kind, fmt.Errorf("%s is %s: %w", h.Descriptor().ID, h.Status(), err))
	}
	h.Acquire()
	return session, h.Release, nil
}
