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

package engine

import (
	"fmt"

	"github.com/rustlens/rustlens/internal/types"
)

// Session is one executable model loaded into memory. Run may be called from several
// goroutines; implementations serialize access to any shared buffers themselves.
type Session interface {
	Run(input *types.Tensor) (*types.Tensor, error)
	Close() error
}

// Options configures the inference runtime.
type Options struct {
	LibraryPath    string
	IntraOpThreads int
}

// CheckInput reports whether input matches the shape a descriptor declares.
func CheckInput(desc types.ModelDescriptor, input *types.Tensor) error {
	if input == nil {
		return fmt.Errorf("%s: nil input tensor", desc.ID)
	}
	want := types.ElementCount(desc.InputShape)
	if len(input.Data) != want {
		return fmt.Errorf("%s: input has %d elements, model expects %d %v", desc.ID, len(input.Data), want, desc.InputShape)
	}
	return nil
}
