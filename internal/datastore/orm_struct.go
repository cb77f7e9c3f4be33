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
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/rustlens/rustlens/internal/types"
)

type DetectionList []types.Detection

// Value converts a DetectionList to a JSON text column
func (d DetectionList) Value() (driver.Value, error) {
	if d == nil {
		return "[]", nil
	}
	b, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan converts a database value to a DetectionList
func (d *DetectionList) Scan(value interface{}) error {
	b, err := columnBytes(value)
	if err != nil {
		return err
	}
	if len(b) == 0 {
		*d = DetectionList{}
		return nil
	}
	return json.Unmarshal(b, d)
}

type ScoreMap map[string]float64

func (s ScoreMap) Value() (driver.Value, error) {
	if s == nil {
		return "{}", nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *ScoreMap) Scan(value interface{}) error {
	b, err := columnBytes(value)
	if err != nil {
		return err
	}
	if len(b) == 0 {
		*s = ScoreMap{}
		return nil
	}
	return json.Unmarshal(b, s)
}

func columnBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported type: %T", value)
	}
}
