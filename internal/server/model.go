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

	"github.com/rustlens/rustlens/internal/api/dto"
	"github.com/rustlens/rustlens/internal/manager"
	"github.com/rustlens/rustlens/internal/types"
	"github.com/rustlens/rustlens/internal/utils/bcode"
)

type Model interface {
	GetModels(ctx context.Context) (*dto.GetModelsResponse, error)
}

type ModelImpl struct {
	Cache       *manager.Cache
	Descriptors []types.ModelDescriptor
}

func NewModel(cache *manager.Cache, descs []types.ModelDescriptor) Model {
	return &ModelImpl{
		Cache:       cache,
		Descriptors: descs,
	}
}

// GetModels lists every configured model, including ones no request has touched yet.
func (s *ModelImpl) GetModels(ctx context.Context) (*dto.GetModelsResponse, error) {
	states := make([]manager.HandleState, 0, len(s.Descriptors))
	for _, desc := range s.Descriptors {
		if h, ok := s.Cache.Lookup(desc.ID); ok {
			states = append(states, h.State())
			continue
		}
		states = append(states, manager.HandleState{
			ID:     desc.ID,
			Kind:   desc.Kind,
			Status: manager.ModelStatusUnloaded,
			Path:   desc.Path,
			Source: desc.Source,
		})
	}
	return &dto.GetModelsResponse{
		Bcode: *bcode.SuccessCode,
		Data:  states,
	}, nil
}
