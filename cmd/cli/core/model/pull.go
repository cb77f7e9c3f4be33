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
	"fmt"
	"os"

	"github.com/rustlens/rustlens/config"
	"github.com/rustlens/rustlens/internal/artifact"
	"github.com/rustlens/rustlens/internal/types"
	"github.com/rustlens/rustlens/internal/utils"
	"github.com/rustlens/rustlens/internal/utils/progress"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// NewModelCommand creates the model management command
func NewModelCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "model",
		Short: "Manage local model artifacts",
	}
	cmd.AddCommand(NewPullModelCommand())
	return cmd
}

// NewPullModelCommand creates the pull model command
func NewPullModelCommand() *cobra.Command {
	pullModelCmd := &cobra.Command{
		Use:       "pull [classifier|detector]",
		Short:     "Download missing model artifacts",
		Long:      `Download the configured artifacts that are not present locally. Without an argument both models are pulled.`,
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{string(types.ModelKindClassifier), string(types.ModelKindDetector)},
		RunE: func(cmd *cobra.Command, args []string) error {
			env := config.GlobalEnvironment
			descs := env.Descriptors()
			if len(args) == 1 {
				descs = filterKind(descs, types.ModelKind(args[0]))
			}
			return Pull(cmd, env, descs)
		},
	}

	return pullModelCmd
}

func filterKind(descs []types.ModelDescriptor, kind types.ModelKind) []types.ModelDescriptor {
	var out []types.ModelDescriptor
	for _, d := range descs {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}

// Pull resolves every descriptor concurrently with a spinner per model.
func Pull(cmd *cobra.Command, env *config.Environment, descs []types.ModelDescriptor) error {
	store := artifact.NewStore(artifact.DefaultFetcher(), env.Fetch.Timeout)

	p := progress.NewProgress(cmd.ErrOrStderr())
	spinners := make([]*progress.Spinner, len(descs))
	for i, d := range descs {
		spinners[i] = progress.NewSpinner(fmt.Sprintf("pulling %s", d.ID), 48)
		p.Add(spinners[i])
	}

	g, ctx := errgroup.WithContext(cmd.Context())
	for i, d := range descs {
		g.Go(func() error {
			path, err := store.Resolve(ctx, d)
			if err != nil {
				spinners[i].SetMessage(fmt.Sprintf("%s failed", d.ID))
				return err
			}
			size := int64(0)
			if info, err := os.Stat(path); err == nil {
				size = info.Size()
			}
			spinners[i].SetMessage(fmt.Sprintf("%s ready (%s)", d.ID, progress.HumanBytes(size)))
			return nil
		})
	}
	err := g.Wait()
	p.Stop()
	if err != nil {
		return fmt.Errorf("pull model failed: %w", err)
	}

	if disk, err := utils.SystemDiskSize(env.ModelsDir); err == nil {
		fmt.Fprintf(cmd.OutOrStdout(), "models stored in %s, %.1f GiB free\n", env.ModelsDir, disk.FreeSize)
	}
	return nil
}
