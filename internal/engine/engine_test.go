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
	"testing"

	"github.com/rustlens/rustlens/internal/types"
	"github.com/stretchr/testify/require"
)

func TestCheckInput(t *testing.T) {
	desc := types.ModelDescriptor{ID: "cnn", InputShape: []int64{1, 4, 4, 3}}

	require.NoError(t, CheckInput(desc, types.NewTensor(1, 4, 4, 3)))
	require.ErrorContains(t, CheckInput(desc, nil), "nil input")
	require.ErrorContains(t, CheckInput(desc, types.NewTensor(1, 3, 4, 4, 2)), "model expects 48")
}

func TestNewONNXSession_MissingShapes(t *testing.T) {
	if err := InitRuntime(""); err != nil {
		t.Skipf("onnxruntime not available: %v", err)
	}
	_, err := NewONNXSession(types.ModelDescriptor{ID: "cnn"}, "/nonexistent.onnx", Options{})
	require.Error(t, err)
}
