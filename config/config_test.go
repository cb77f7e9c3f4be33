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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	base := "models_dir: " + filepath.Join(dir, "models") + "\n" +
		"log_dir: " + filepath.Join(dir, "logs") + "\n" +
		"history:\n  enabled: true\n  path: " + filepath.Join(dir, "history.db") + "\n"
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(base+body), 0o600))
	return path, dir
}

func TestLoad_Defaults(t *testing.T) {
	path, dir := writeConfig(t, "")

	env, err := Load(path, nil)
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:16690", env.Host)
	require.Equal(t, []string{LabelHealthy, LabelDiseased}, env.Classifier.Labels)
	require.Equal(t, filepath.Join(dir, "models", DefaultClassifierFile), env.Classifier.Path)
	require.Equal(t, DefaultFetchTimeout, env.Fetch.Timeout)
	require.Equal(t, path, env.ConfigFile)
	require.Zero(t, env.Detector.HealthyConfidence)
}

func TestLoad_YAMLThenEnvThenFlags(t *testing.T) {
	path, _ := writeConfig(t, `
host: 0.0.0.0:9000
fetch:
  timeout: 30s
classifier:
  input_width: 128
  input_height: 96
  labels: [sehat, rust]
detector:
  healthy_confidence: 0.5
`)
	t.Setenv(EnvHealthyConfidence, "0.25")
	t.Setenv(EnvFetchTimeout, "45s")

	fss := Flags()
	fs := fss.GetFlagSet("generic")
	require.NoError(t, fs.Parse([]string{"--fetch-timeout=1m"}))

	env, err := Load(path, fs)
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0:9000", env.Host)
	require.Equal(t, "http://127.0.0.1:9000", env.BaseURL().String())
	require.Equal(t, []string{"sehat", "rust"}, env.Classifier.Labels)
	require.InDelta(t, 0.25, env.Detector.HealthyConfidence, 1e-9)
	require.Equal(t, time.Minute, env.Fetch.Timeout)

	desc := env.ClassifierDescriptor()
	require.Equal(t, []int64{1, 96, 128, 3}, desc.InputShape)
	require.Equal(t, []int64{1, 2}, desc.OutputShape)

	det := env.DetectorDescriptor()
	require.Equal(t, []int64{1, 3, 640, 640}, det.InputShape)
	require.Equal(t, []int64{1, 5, 8400}, det.OutputShape)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"three labels":       "classifier:\n  labels: [a, b, c]\n",
		"duplicate labels":   "classifier:\n  labels: [a, a]\n",
		"zero width":         "classifier:\n  input_width: 0\n",
		"threshold above 1":  "detector:\n  confidence_threshold: 1.5\n",
		"sentinel below 0":   "detector:\n  healthy_confidence: -0.1\n",
		"same ids":           "detector:\n  id: cnn_soybean_rust\n",
		"unknown key":        "colour: blue\n",
		"bad resample":       "classifier:\n  resample: box\n",
		"source without url": "detector:\n  source: best.onnx\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path, _ := writeConfig(t, body)
			_, err := Load(path, nil)
			require.Error(t, err)
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.Error(t, err)
}
