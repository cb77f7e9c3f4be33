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

package cli

import (
	"github.com/rustlens/rustlens/cmd/cli/core/common"
	"github.com/rustlens/rustlens/cmd/cli/core/compare"
	"github.com/rustlens/rustlens/cmd/cli/core/history"
	"github.com/rustlens/rustlens/cmd/cli/core/model"
	"github.com/rustlens/rustlens/cmd/cli/core/server"
	"github.com/rustlens/rustlens/config"
	"github.com/rustlens/rustlens/internal/constants"
	"github.com/spf13/cobra"
)

// NewCommand creates the root rustlens command with all subcommands
func NewCommand() *cobra.Command {
	cmds := &cobra.Command{
		Use:   constants.AppName,
		Short: "rustlens - soybean rust checker comparing a CNN classifier with a YOLOv8 detector",
		Long: `rustlens runs two independently trained models over the same leaf image and
reports both verdicts side by side.

Common commands:
  rustlens server start             Start the HTTP server
  rustlens compare leaf.jpg         Compare both models on one image
  rustlens model pull               Download missing model artifacts
  rustlens get models               Show model load state on a running server
  rustlens get history              List recent comparisons on a running server

Use 'rustlens <command> --help' for more information about a command.`,
		SilenceUsage:      true,
		PersistentPreRunE: common.LoadEnvironment,
	}

	cmds.PersistentFlags().StringP(common.FlagConfig, "c", "", "Path of the YAML config file")
	fss := config.Flags()
	for _, name := range fss.Order {
		cmds.PersistentFlags().AddFlagSet(fss.GetFlagSet(name))
	}

	cmds.AddCommand(
		// Server management
		server.NewApiserverCommand(),

		// Common commands
		common.NewVersionCommand(),
		compare.NewCompareCommand(),

		// Resource management
		NewGetCommand(),
		model.NewModelCommand(),
	)

	return cmds
}

// NewGetCommand creates the get command with subcommands
func NewGetCommand() *cobra.Command {
	getCmd := &cobra.Command{
		Use:   "get",
		Short: "Display resource information",
		Long:  "Display information about models and comparison history held by a running rustlens server.",
	}
	getCmd.AddCommand(
		model.NewListModelsCommand(),
		history.NewListHistoryCommand(),
	)

	return getCmd
}
