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

package common

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rustlens/rustlens/config"
	"github.com/rustlens/rustlens/internal/client"
	"github.com/rustlens/rustlens/internal/logger"
	"github.com/rustlens/rustlens/internal/types"
	"github.com/spf13/cobra"
)

const (
	FlagConfig = "config"

	clientTimeout = 2 * time.Minute
)

// LoadEnvironment resolves the configuration for cmd and sets up logging. It runs before
// every subcommand.
func LoadEnvironment(cmd *cobra.Command, args []string) error {
	path, err := cmd.Flags().GetString(FlagConfig)
	if err != nil {
		return err
	}
	env, err := config.Load(path, cmd.Flags())
	if err != nil {
		return err
	}

	config.GlobalEnvironment = env
	logger.InitLogger(logger.LogConfig{LogLevel: env.LogLevel, LogPath: env.LogDir})
	env.SetSlogColor()
	return nil
}

// NewClient returns a client for the server named by the loaded configuration.
func NewClient() *client.Client {
	return client.NewClient(config.GlobalEnvironment.BaseURL(), &http.Client{Timeout: clientTimeout})
}

// CheckServer fails when no rustlens server answers on the configured address.
func CheckServer(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 3*time.Second)
	defer cancel()
	if _, err := NewClient().Health(ctx); err != nil {
		return fmt.Errorf("rustlens server is not running at %s, please run 'rustlens server start' first",
			config.GlobalEnvironment.BaseURL())
	}
	return nil
}

// PrintRecord writes one comparison as a small table.
func PrintRecord(w io.Writer, rec *types.ComparisonRecord) {
	fmt.Fprintf(w, "%-12s %s\n", "ID", rec.ID)
	fmt.Fprintf(w, "%-12s %dx%d\n", "IMAGE", rec.ImageWidth, rec.ImageHeight)
	fmt.Fprintf(w, "%-12s %-30s %-12s %-10s %s\n", "PATHWAY", "MODEL", "LABEL", "CONFIDENCE", "DETAIL")
	for _, v := range []types.Verdict{rec.Classifier, rec.Detector} {
		fmt.Fprintf(w, "%-12s %-30s %-12s %-10.3f %s\n", v.Kind, v.Model, v.Label, v.Confidence, verdictDetail(v))
	}
	agree := "no"
	if rec.Agree() {
		agree = "yes"
	}
	fmt.Fprintf(w, "%-12s %s\n", "AGREE", agree)
}

func verdictDetail(v types.Verdict) string {
	if v.Kind == types.ModelKindDetector {
		return fmt.Sprintf("%d boxes", len(v.Detections))
	}
	return ""
}
