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

package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/rustlens/rustlens/config"
	"github.com/rustlens/rustlens/internal/api"
	"github.com/rustlens/rustlens/internal/constants"
	"github.com/rustlens/rustlens/internal/engine"
	"github.com/rustlens/rustlens/internal/logger"
	"github.com/rustlens/rustlens/internal/process"
	"github.com/rustlens/rustlens/internal/server"
	"github.com/spf13/cobra"
)

// NewApiserverCommand creates the server management command
func NewApiserverCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Manage " + constants.AppName + " server",
		Long:  "Manage " + constants.AppName + " server",
	}

	cmd.AddCommand(
		NewStartApiServerCommand(),
	)

	return cmd
}

// NewStartApiServerCommand creates the start server command
func NewStartApiServerCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the rustlens HTTP server",
		Long: `Start the rustlens HTTP server in the foreground. Both models are loaded before the
listener opens. A model that fails to load leaves the server degraded unless
--require-models is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			requireModels, err := cmd.Flags().GetBool("require-models")
			if err != nil {
				return err
			}
			isDebug, err := cmd.Flags().GetBool("verbose")
			if err != nil {
				return err
			}

			env := config.GlobalEnvironment
			if isDebug {
				env.LogLevel = config.LogLevelDebug
				logger.InitLogger(logger.LogConfig{LogLevel: env.LogLevel, LogPath: env.LogDir})
				env.SetSlogColor()
			}

			return Run(cmd.Context(), env, requireModels)
		},
	}

	cmd.Flags().Bool("require-models", false, "Exit when either model fails to load")
	cmd.Flags().BoolP("verbose", "v", false, "Enable debug mode")
	return cmd
}

// Run starts the rustlens server and blocks until SIGINT or SIGTERM.
func Run(ctx context.Context, env *config.Environment, requireModels bool) error {
	stopBanner := config.Banner()
	defer stopBanner()

	p, err := server.NewPipeline(env, nil, true)
	if err != nil {
		logger.LogicLogger.Error("[Init] Failed to build pipeline", "error", err)
		return err
	}

	sm := process.NewServiceManager(p.Cache, p.Descriptors)
	sm.AddCloser("onnxruntime", engine.ShutdownRuntime)
	sm.AddCloser("pipeline", p.Close)
	defer func() {
		if err := sm.StopServices(); err != nil {
			logger.LogicLogger.Error("[Run] Failed to stop services", "error", err)
		}
	}()

	if err := sm.StartServices(ctx, requireModels); err != nil {
		logger.LogicLogger.Error("[Init] Failed to start services", "error", err)
		return err
	}

	coreServer := api.NewRustlensCoreServer(
		server.NewComparison(p.Comparator, p.History),
		server.NewModel(p.Cache, p.Descriptors),
		server.NewHistory(p.History),
		server.NewHealth(p.Cache, env.ModelsDir, p.History != nil),
		env.Upload.MaxBytes,
	)

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	_, _ = color.New(color.FgHiGreen).Println("rustlens listening on", env.BaseURL().String())
	logger.LogicLogger.Info("start_app", "host", env.Host, "models_dir", env.ModelsDir)

	if err := coreServer.Run(ctx, env.Host); err != nil {
		logger.LogicLogger.Error("[Run] Failed to run server", "error", err)
		return err
	}
	return nil
}
