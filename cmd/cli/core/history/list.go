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

package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rustlens/rustlens/cmd/cli/core/common"
	"github.com/spf13/cobra"
)

// NewListHistoryCommand creates the list history command
func NewListHistoryCommand() *cobra.Command {
	var (
		limit        int
		onlyDisagree bool
		asJSON       bool
	)

	listHistoryCmd := &cobra.Command{
		Use:   "history [id]",
		Short: "List recent comparisons, or show one by id",
		Long:  `List recent comparisons stored by the running server, newest first. With an id, print that comparison.`,
		Args:  cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := common.ValidateLimit(limit); err != nil {
				return err
			}
			return common.CheckServer(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			c := common.NewClient()
			w := cmd.OutOrStdout()

			if len(args) == 1 {
				rec, err := c.GetHistoryRecord(ctx, args[0])
				if err != nil {
					return fmt.Errorf("get history record failed: %w", err)
				}
				if asJSON {
					return json.NewEncoder(w).Encode(rec)
				}
				common.PrintRecord(w, rec)
				return nil
			}

			records, err := c.GetHistory(ctx, limit, onlyDisagree)
			if err != nil {
				return fmt.Errorf("get history failed: %w", err)
			}
			if asJSON {
				return json.NewEncoder(w).Encode(records)
			}

			fmt.Fprintf(w, "%-38s %-22s %-20s %-20s %-6s\n", "ID", "CREATED AT", "CLASSIFIER", "DETECTOR", "AGREE") // Table header
			for _, rec := range records {
				fmt.Fprintf(w, "%-38s %-22s %-20s %-20s %-6t\n",
					rec.ID,
					rec.CreatedAt.Local().Format(time.DateTime),
					fmt.Sprintf("%s %.2f", rec.Classifier.Label, rec.Classifier.Confidence),
					fmt.Sprintf("%s %.2f", rec.Detector.Label, rec.Detector.Confidence),
					rec.Agree(),
				)
			}
			return nil
		},
	}

	listHistoryCmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of records, 0 uses the server default")
	listHistoryCmd.Flags().BoolVar(&onlyDisagree, "disagree", false, "Only list comparisons where the models disagree")
	listHistoryCmd.Flags().BoolVar(&asJSON, "json", false, "Print records as JSON")

	return listHistoryCmd
}
