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

package compare

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rustlens/rustlens/cmd/cli/core/common"
	"github.com/rustlens/rustlens/config"
	"github.com/rustlens/rustlens/internal/engine"
	"github.com/rustlens/rustlens/internal/server"
	"github.com/rustlens/rustlens/internal/types"
	"github.com/spf13/cobra"
)

type options struct {
	annotate string
	remote   bool
	record   bool
	asJSON   bool
}

// NewCompareCommand creates the compare command
func NewCompareCommand() *cobra.Command {
	var opts options

	compareCmd := &cobra.Command{
		Use:   "compare <image>",
		Short: "Run both models on one image and print their verdicts",
		Long: `Run the classifier and the detector on one leaf image and print both verdicts.
By default the models run in this process; --remote sends the image to a running server.`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := common.ValidateImageFile(args[0]); err != nil {
				return err
			}
			if opts.remote {
				return common.CheckServer(cmd, args)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			var (
				rec  *types.ComparisonRecord
				jpeg []byte
			)
			if opts.remote {
				rec, jpeg, err = compareRemote(cmd, filepath.Base(args[0]), data, opts)
			} else {
				rec, jpeg, err = compareLocal(cmd, data, opts)
			}
			if err != nil {
				return fmt.Errorf("compare failed: %w", err)
			}

			if opts.annotate != "" {
				if err := os.WriteFile(opts.annotate, jpeg, 0o644); err != nil {
					return err
				}
			}

			if opts.asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(rec)
			}
			if rec != nil {
				common.PrintRecord(cmd.OutOrStdout(), rec)
			}
			if opts.annotate != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "annotated image written to %s\n", opts.annotate)
			}
			return nil
		},
	}

	compareCmd.Flags().StringVarP(&opts.annotate, "annotate", "a", "", "Write the image with detector boxes drawn to this JPEG file")
	compareCmd.Flags().BoolVarP(&opts.remote, "remote", "r", false, "Send the image to a running rustlens server")
	compareCmd.Flags().BoolVar(&opts.record, "record", false, "Store the result in the local history database")
	compareCmd.Flags().BoolVar(&opts.asJSON, "json", false, "Print the comparison record as JSON")

	return compareCmd
}

func compareLocal(cmd *cobra.Command, data []byte, opts options) (*types.ComparisonRecord, []byte, error) {
	env := config.GlobalEnvironment
	p, err := server.NewPipeline(env, nil, opts.record)
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		_ = p.Close()
		_ = engine.ShutdownRuntime()
	}()

	cmp := server.NewComparison(p.Comparator, p.History)
	if opts.annotate != "" {
		jpeg, rec, err := cmp.CompareAnnotated(cmd.Context(), data)
		return rec, jpeg, err
	}
	resp, err := cmp.Compare(cmd.Context(), data)
	if err != nil {
		return nil, nil, err
	}
	return resp.Data, nil, nil
}

// compareRemote posts the image to the server. An annotated request only carries the
// record id in its headers, so the full record is fetched from history when possible.
func compareRemote(cmd *cobra.Command, name string, data []byte, opts options) (*types.ComparisonRecord, []byte, error) {
	c := common.NewClient()
	ctx := cmd.Context()
	if opts.annotate == "" {
		rec, err := c.Compare(ctx, name, bytes.NewReader(data))
		return rec, nil, err
	}

	res, err := c.CompareAnnotated(ctx, name, bytes.NewReader(data))
	if err != nil {
		return nil, nil, err
	}
	rec, err := c.GetHistoryRecord(ctx, res.RecordID)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "record %s (agree=%t)\n", res.RecordID, res.Agree)
		return nil, res.JPEG, nil
	}
	return rec, res.JPEG, nil
}
