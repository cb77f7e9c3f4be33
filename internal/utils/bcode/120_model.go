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

package bcode

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// Model artifact errors (12001-12099)
	ErrArtifactMissing     = NewBcode(http.StatusServiceUnavailable, 12001, "Model artifact missing")
	ErrArtifactFetchFailed = NewBcode(http.StatusBadGateway, 12002, "Model artifact fetch failed")

	// Model runtime errors (12101-12199)
	ErrModelUnavailable = NewBcode(http.StatusServiceUnavailable, 12101, "Model unavailable")
	ErrInference        = NewBcode(http.StatusInternalServerError, 12102, "Inference failed")

	// Request errors (12201-12299)
	ErrImageBadRequest   = NewBcode(http.StatusBadRequest, 12201, "Invalid image")
	ErrHistoryNotFound   = NewBcode(http.StatusNotFound, 12202, "Comparison record not found")
	ErrHistoryDisabled   = NewBcode(http.StatusNotImplemented, 12203, "Comparison history is disabled")
	ErrHistoryBadRequest = NewBcode(http.StatusBadRequest, 12204, "Invalid history query")
)

// ModelError attributes a coded failure to one model path ("classifier" or "detector").
type ModelError struct {
	Code  *Bcode
	Model string
	Err   error
}

// NewModelError builds a ModelError. A nil cause is allowed.
func NewModelError(code *Bcode, model string, err error) *ModelError {
	return &ModelError{Code: code, Model: model, Err: err}
}

func (e *ModelError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Code.Message, e.Model)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code.Message, e.Model, e.Err)
}

func (e *ModelError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Code}
	}
	return []error{e.Code, e.Err}
}

// ModelOf returns the model path named by err, if any.
func ModelOf(err error) string {
	var modelErr *ModelError
	if errors.As(err, &modelErr) {
		return modelErr.Model
	}
	return ""
}
