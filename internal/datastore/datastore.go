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

package datastore

import (
	"context"
	"errors"

	"github.com/rustlens/rustlens/internal/types"
)

var (
	// ErrRecordNotExist means the requested record is not in the store
	ErrRecordNotExist = errors.New("data record not exist")
	// ErrPrimaryEmpty means the record has no primary key
	ErrPrimaryEmpty = errors.New("entity primary is empty")
)

// ListOptions filters and bounds a history listing. Results are newest first.
type ListOptions struct {
	Limit        int
	OnlyDisagree bool
}

// HistoryStore persists comparison records produced by the HTTP surface.
type HistoryStore interface {
	Put(ctx context.Context, record *types.ComparisonRecord) error
	Get(ctx context.Context, id string) (*types.ComparisonRecord, error)
	List(ctx context.Context, opts ListOptions) ([]*types.ComparisonRecord, error)
	Close() error
}
