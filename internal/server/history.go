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
	"errors"

	"github.com/rustlens/rustlens/internal/api/dto"
	"github.com/rustlens/rustlens/internal/datastore"
	"github.com/rustlens/rustlens/internal/utils/bcode"
)

type History interface {
	GetHistory(ctx context.Context, request *dto.GetHistoryRequest) (*dto.GetHistoryResponse, error)
	GetHistoryRecord(ctx context.Context, request *dto.GetHistoryRecordRequest) (*dto.GetHistoryRecordResponse, error)
}

type HistoryImpl struct {
	Ds datastore.HistoryStore
}

func NewHistory(ds datastore.HistoryStore) History {
	return &HistoryImpl{Ds: ds}
}

func (s *HistoryImpl) GetHistory(ctx context.Context, request *dto.GetHistoryRequest) (*dto.GetHistoryResponse, error) {
	if s.Ds == nil {
		return nil, bcode.ErrHistoryDisabled
	}
	records, err := s.Ds.List(ctx, datastore.ListOptions{
		Limit:        request.Limit,
		OnlyDisagree: request.OnlyDisagree,
	})
	if err != nil {
		return nil, bcode.LogAndReturnError(bcode.ErrServer, err, "op", "list")
	}
	return &dto.GetHistoryResponse{
		Bcode: *bcode.SuccessCode,
		Data:  records,
	}, nil
}

func (s *HistoryImpl) GetHistoryRecord(ctx context.Context, request *dto.GetHistoryRecordRequest) (*dto.GetHistoryRecordResponse, error) {
	if s.Ds == nil {
		return nil, bcode.ErrHistoryDisabled
	}
	record, err := s.Ds.Get(ctx, request.ID)
	if errors.Is(err, datastore.ErrRecordNotExist) {
		return nil, bcode.ErrHistoryNotFound
	}
	if err != nil {
		return nil, bcode.LogAndReturnError(bcode.ErrServer, err, "op", "get", "id", request.ID)
	}
	return &dto.GetHistoryRecordResponse{
		Bcode: *bcode.SuccessCode,
		Data:  record,
	}, nil
}
