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

package dto

import (
	"time"

	"github.com/rustlens/rustlens/internal/manager"
	"github.com/rustlens/rustlens/internal/types"
	"github.com/rustlens/rustlens/internal/utils"
	"github.com/rustlens/rustlens/internal/utils/bcode"
)

type CompareResponse struct {
	bcode.Bcode
	Data *types.ComparisonRecord `json:"data"`
}

type GetModelsResponse struct {
	bcode.Bcode
	Data []manager.HandleState `json:"data"`
}

type GetHistoryRequest struct {
	Limit        int  `form:"limit" json:"limit" validate:"gte=0,lte=500"`
	OnlyDisagree bool `form:"only_disagree" json:"only_disagree"`
}

type GetHistoryResponse struct {
	bcode.Bcode
	Data []*types.ComparisonRecord `json:"data"`
}

type GetHistoryRecordRequest struct {
	ID string `uri:"id" json:"id" validate:"required,uuid"`
}

type GetHistoryRecordResponse struct {
	bcode.Bcode
	Data *types.ComparisonRecord `json:"data"`
}

type HealthData struct {
	Status      string          `json:"status"`
	Models      map[string]int  `json:"models"`
	Disk        *utils.DiskInfo `json:"disk,omitempty"`
	MemoryFree  float64         `json:"memory_free_gb"`
	GPU         string          `json:"gpu"`
	StartedAt   time.Time       `json:"started_at"`
	HistoryOpen bool            `json:"history"`
}

type GetServerHealthResponse struct {
	bcode.Bcode
	Data HealthData `json:"data"`
}

type GetVersionResponseData struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
}

type GetVersionResponse struct {
	bcode.Bcode
	Data GetVersionResponseData `json:"data"`
}
