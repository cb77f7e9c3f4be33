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

package model

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rustlens/rustlens/config"
	"github.com/rustlens/rustlens/internal/types"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func testCommand() (*cobra.Command, *bytes.Buffer) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	return cmd, &out
}

func TestPull_FromFileSource(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "cnn.onnx"), []byte("classifier-bytes"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(src, "yolo.onnx"), []byte("detector-bytes"), 0o600))

	env := config.Default()
	env.ModelsDir = t.TempDir()
	env.Classifier.Path = filepath.Join(env.ModelsDir, "cnn.onnx")
	env.Classifier.Source = "file://" + filepath.ToSlash(filepath.Join(src, "cnn.onnx"))
	env.Detector.Path = filepath.Join(env.ModelsDir, "yolo.onnx")
	env.Detector.Source = "file://" + filepath.ToSlash(filepath.Join(src, "yolo.onnx"))

	cmd, out := testCommand()
	require.NoError(t, Pull(cmd, env, env.Descriptors()))

	data, err := os.ReadFile(env.Detector.Path)
	require.NoError(t, err)
	require.Equal(t, "detector-bytes", string(data))
	require.FileExists(t, env.Classifier.Path)
	require.Contains(t, out.String(), env.ModelsDir)
}

func TestPull_MissingSource(t *testing.T) {
	env := config.Default()
	env.ModelsDir = t.TempDir()
	env.Classifier.Path = filepath.Join(env.ModelsDir, "cnn.onnx")
	env.Detector.Path = filepath.Join(env.ModelsDir, "yolo.onnx")

	cmd, _ := testCommand()
	descs := filterKind(env.Descriptors(), types.ModelKindDetector)
	require.Len(t, descs, 1)
	require.ErrorContains(t, Pull(cmd, env, descs), "pull model failed")
}
