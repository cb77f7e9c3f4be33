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
	"github.com/rustlens/rustlens/internal/utils/bcode"
	"github.com/rustlens/rustlens/version"
)

type Version interface {
	GetVersion(ctx context.Context) (*dto.GetVersionResponse, error)
}

type VersionImpl struct{}

func NewVersion() Version {
	return &VersionImpl{}
}

func (v *VersionImpl) GetVersion(ctx context.Context) (*dto.GetVersionResponse, error) {
	return &dto.GetVersionResponse{
		Bcode: *bcode.SuccessCode,
		Data: dto.GetVersionResponseData{
			Version: version.RustlensVersion,
			Commit:  version.Commit,
		},
	}, nil
}
