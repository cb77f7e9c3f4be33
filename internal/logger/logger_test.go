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

package logger

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetLoggerLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelWarn,
		"":        slog.LevelWarn,
	}
	for in, want := range cases {
		require.Equal(t, want, GetLoggerLevel(in), "level %q", in)
	}
}

func TestNewLogManagerWritesNamedFiles(t *testing.T) {
	dir := t.TempDir()
	lm := NewLogManager(LogConfig{LogLevel: "info", LogPath: dir})

	lm.GetLogger("engine").Info("[Test] hello", "model", "classifier")

	data, err := os.ReadFile(filepath.Join(dir, "engine.log"))
	require.NoError(t, err)
	require.Contains(t, string(data), `"model":"classifier"`)
}

func TestGetLoggerUnknownFallsBack(t *testing.T) {
	lm := NewLogManager(LogConfig{LogLevel: "info", LogPath: t.TempDir()})
	require.NotNil(t, lm.GetLogger("nope"))
}
