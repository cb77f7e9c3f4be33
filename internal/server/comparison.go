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
	"bytes"
	"context"
	"image"

	"github.com/rustlens/rustlens/internal/api/dto"
	"github.com/rustlens/rustlens/internal/compare"
	"github.com/rustlens/rustlens/internal/datastore"
	"github.com/rustlens/rustlens/internal/logger"
	"github.com/rustlens/rustlens/internal/types"
	"github.com/rustlens/rustlens/internal/utils/bcode"
	"github.com/rustlens/rustlens/internal/vision"
)

const annotatedJPEGQuality = 90

type Comparison interface {
	Compare(ctx context.Context, data []byte) (*dto.CompareResponse, error)
	CompareAnnotated(ctx context.Context, data []byte) ([]byte, *types.ComparisonRecord, error)
}

type ComparisonImpl struct {
	Comparator *compare.Comparator
	History    datastore.HistoryStore
}

// NewComparison wires the comparator to an optional history store; a nil store disables
// recording.
func NewComparison(comparator *compare.Comparator, history datastore.HistoryStore) Comparison {
	return &ComparisonImpl{
		Comparator: comparator,
		History:    history,
	}
}

func (s *ComparisonImpl) Compare(ctx context.Context, data []byte) (*dto.CompareResponse, error) {
	_, record, err := s.run(ctx, data)
	if err != nil {
		return nil, err
	}
	return &dto.CompareResponse{
		Bcode: *bcode.SuccessCode,
		Data:  record,
	}, nil
}

func (s *ComparisonImpl) CompareAnnotated(ctx context.Context, data []byte) ([]byte, *types.ComparisonRecord, error) {
	img, record, err := s.run(ctx, data)
	if err != nil {
		return nil, nil, err
	}

	annotated, err := vision.Annotate(img, record.Detector.Detections)
	if err != nil {
		return nil, nil, err
	}
	var buf bytes.Buffer
	if err := vision.EncodeJPEG(&buf, annotated, annotatedJPEGQuality); err != nil {
		return nil, nil, err
	}
	return buf.Bytes(), record, nil
}

func (s *ComparisonImpl) run(ctx context.Context, data []byte) (image.Image, *types.ComparisonRecord, error) {
	if len(data) == 0 {
		return nil, nil, bcode.ErrImageBadRequest.SetMessage("image is empty")
	}
	img, err := vision.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, nil, bcode.ErrImageBadRequest.SetMessage(err.Error())
	}

	record, err := s.Comparator.Compare(ctx, img)
	if err != nil {
		return nil, nil, err
	}

	if s.History != nil {
		// history failures are logged, not returned
		if err := s.History.Put(ctx, record); err != nil {
			logger.LogicLogger.Error("[Compare] failed to record history", "id", record.ID, "error", err)
		}
	}
	return img, record, nil
}
