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

package common

import (
	"fmt"
	"os"
)

// ValidateImageFile validates that path names a non-empty regular file
func ValidateImageFile(path string) error {
	if path == "" {
		return fmt.Errorf("image path is required")
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("image %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("image %s is not a regular file", path)
	}
	if info.Size() == 0 {
		return fmt.Errorf("image %s is empty", path)
	}
	return nil
}

// ValidateLimit validates the page size accepted by the history endpoint
func ValidateLimit(limit int) error {
	if limit < 0 || limit > 500 {
		return fmt.Errorf("invalid limit %d, allowed range is 0-500", limit)
	}
	return nil
}
