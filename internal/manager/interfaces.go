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

	"github.com/rustlens/rustlens/internal/engine"
	"github.com/rustlens/rustlens/internal/types"
)

// Resolver maps a descriptor to a local artifact file.
type Resolver interface {
	Resolve(ctx context.Context, desc types.ModelDescriptor) (string, error)
}

// LoadFunc turns a local artifact into an executable session.
type LoadFunc func(desc types.ModelDescriptor, path string) (engine.Session, error)

// ONNXLoader returns a LoadFunc backed by the onnxruntime engine.
func ONNXLoader(opts engine.Options) LoadFunc {
	return func(desc types.ModelDescriptor, path string) (engine.Session, error) {
		return engine.NewONNXSession(desc, path, opts)
	}
}
