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
	"errors"
	"fmt"

	"github.com/rustlens/rustlens/config"
	"github.com/rustlens/rustlens/internal/artifact"
	"github.com/rustlens/rustlens/internal/compare"
	"github.com/rustlens/rustlens/internal/datastore"
	"github.com/rustlens/rustlens/internal/datastore/sqlite"
	"github.com/rustlens/rustlens/internal/engine"
	"github.com/rustlens/rustlens/internal/inference"
	"github.com/rustlens/rustlens/internal/logger"
	"github.com/rustlens/rustlens/internal/manager"
	"github.com/rustlens/rustlens/internal/types"
	"github.com/rustlens/rustlens/internal/vision"
)

// Pipeline is everything a comparison needs, built once from the environment.
type Pipeline struct {
	Store       *artifact.Store
	Cache       *manager.Cache
	Comparator  *compare.Comparator
	History     datastore.HistoryStore
	Descriptors []types.ModelDescriptor
}

// NewPipeline wires artifact store, model cache, adapters and comparator. A nil load uses
// the onnxruntime engine. The history store is opened only when withHistory is set and
// history is enabled in env.
func NewPipeline(env *config.Environment, load manager.LoadFunc, withHistory bool) (*Pipeline, error) {
	if load == nil {
		load = manager.ONNXLoader(engine.Options{
			LibraryPath:    env.Runtime.LibraryPath,
			IntraOpThreads: env.Runtime.IntraOpThreads,
		})
	}

	store := artifact.NewStore(artifact.DefaultFetcher(), env.Fetch.Timeout)
	cache := manager.NewCache(store, load)

	classifier, err := ClassifierAdapter(env)
	if err != nil {
		return nil, err
	}
	detector, err := DetectorAdapter(env)
	if err != nil {
		return nil, err
	}

	clsDesc, detDesc := env.ClassifierDescriptor(), env.DetectorDescriptor()
	comparator, err := compare.NewComparator(cache,
		compare.Pathway{Descriptor: clsDesc, Adapter: classifier},
		compare.Pathway{Descriptor: detDesc, Adapter: detector})
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		Store:       store,
		Cache:       cache,
		Comparator:  comparator,
		Descriptors: []types.ModelDescriptor{clsDesc, detDesc},
	}

	if withHistory && env.History.Enabled {
		ds, err := sqlite.New(env.History.Path)
		if err != nil {
			_ = cache.Close()
			return nil, fmt.Errorf("open history: %w", err)
		}
		p.History = ds
		logger.LogicLogger.Info("[Init] history store opened", "path", env.History.Path)
	}
	return p, nil
}

func ClassifierAdapter(env *config.Environment) (*inference.ClassifierAdapter, error) {
	c := env.Classifier
	return inference.NewClassifierAdapter(inference.ClassifierOptions{
		Labels:  c.Labels,
		Width:   c.InputWidth,
		Height:  c.InputHeight,
		Filter:  vision.Filter(c.Resample),
		Softmax: c.Softmax,
	})
}

func DetectorAdapter(env *config.Environment) (*inference.DetectorAdapter, error) {
	d := env.Detector
	return inference.NewDetectorAdapter(inference.DetectorOptions{
		InputSize: d.InputSize,
		Decode: vision.DecodeOptions{
			NumClasses:          d.NumClasses,
			ConfidenceThreshold: d.ConfidenceThreshold,
			IoUThreshold:        d.IoUThreshold,
			MaxDetections:       d.MaxDetections,
		},
		PositiveLabel:     d.PositiveLabel,
		NegativeLabel:     d.NegativeLabel,
		HealthyConfidence: d.HealthyConfidence,
	})
}

// Close releases cached sessions and the history store.
func (p *Pipeline) Close() error {
	var errs []error
	if err := p.Cache.Close(); err != nil {
		errs = append(errs, err)
	}
	if p.History != nil {
		if err := p.History.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
