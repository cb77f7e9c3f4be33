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
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rustlens/rustlens/cmd/cli/core/common"
	"github.com/spf13/cobra"
)

// NewListModelsCommand creates the list models command
func NewListModelsCommand() *cobra.Command {
	listModelCmd := &cobra.Command{
		Use:     "models",
		Short:   "List configured models and their load state",
		Long:    `List both configured models with their load state on the running server.`,
		Args:    cobra.NoArgs,
		PreRunE: common.CheckServer,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			states, err := common.NewClient().GetModels(ctx)
			if err != nil {
				return fmt.Errorf("get model list failed: %w", err)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%-30s %-12s %-10s %-10s %-25s\n", "MODEL ID", "KIND", "STATUS", "IN FLIGHT", "LOADED AT") // Table header
			for _, m := range states {
				loaded := "-"
				if !m.LoadedTime.IsZero() {
					loaded = m.LoadedTime.Format(time.RFC3339)
				}
				fmt.Fprintf(w, "%-30s %-12s %-10s %-10d %-25s\n", m.ID, m.Kind, m.Status, m.InFlight, loaded)
				if m.Error != "" {
					fmt.Fprintf(os.Stderr, "  %s: %s\n", m.ID, m.Error)
				}
			}
			return nil
		},
	}

	return listModelCmd
}
