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

package types

import (
	"fmt"
	"time"
)

// ModelKind identifies which of the two inference pathways a model serves.
type ModelKind string

const (
	ModelKindClassifier ModelKind = "classifier"
	ModelKindDetector   ModelKind = "detector"
)

func (k ModelKind) Valid() bool {
	return k == ModelKindClassifier || k == ModelKindDetector
}

// ModelDescriptor describes one model artifact and how to feed it. It is built once from
// configuration at process start and never modified afterwards.
type ModelDescriptor struct {
	ID          string    `json:"id"`
	Kind        ModelKind `json:"kind"`
	Path        string    `json:"path"`
	Source      string    `json:"source,omitempty"`
	SHA256      string    `json:"sha256,omitempty"`
	InputName   string    `json:"input_name"`
	OutputName  string    `json:"output_name"`
	InputShape  []int64   `json:"input_shape"`
	OutputShape []int64   `json:"output_shape"`
}

func (d ModelDescriptor) String() string {
	return fmt.Sprintf("%s(%s)", d.ID, d.Kind)
}

// Tensor is a dense float32 tensor in row-major order.
type Tensor struct {
	Shape []int64
	Data  []float32
}

// NewTensor allocates a zeroed tensor of the given shape.
func NewTensor(shape ...int64) *Tensor {
	return &Tensor{
		Shape: append([]int64(nil), shape...),
		Data:  make([]float32, ElementCount(shape)),
	}
}

// ElementCount returns the number of elements a tensor of the given shape holds.
func ElementCount(shape []int64) int {
	if len(shape) == 0 {
		return 0
	}
	n := int64(1)
	for _, dim := range shape {
		n *= dim
	}
	return int(n)
}

// Box is an axis-aligned bounding box in pixel coordinates of the submitted image.
type Box struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

func (b Box) Width() float64  { return b.X2 - b.X1 }
func (b Box) Height() float64 { return b.Y2 - b.Y1 }

func (b Box) Area() float64 {
	if b.X2 <= b.X1 || b.Y2 <= b.Y1 {
		return 0
	}
	return b.Width() * b.Height()
}

// IoU returns the intersection over union of two boxes.
func (b Box) IoU(o Box) float64 {
	inter := Box{
		X1: max(b.X1, o.X1),
		Y1: max(b.Y1, o.Y1),
		X2: min(b.X2, o.X2),
		Y2: min(b.Y2, o.Y2),
	}.Area()
	union := b.Area() + o.Area() - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

// Detection is one box found by the detector with its confidence in [0,1].
type Detection struct {
	Box        Box     `json:"box"`
	Confidence float64 `json:"confidence"`
	ClassID    int     `json:"class_id"`
}

// Verdict is the unified result of one model path. Both adapters produce the same shape;
// only the detector fills Detections and only the classifier fills Scores.
type Verdict struct {
	Model      string             `json:"model"`
	Kind       ModelKind          `json:"kind"`
	Label      string             `json:"label"`
	Confidence float64            `json:"confidence"`
	Scores     map[string]float64 `json:"scores,omitempty"`
	Detections []Detection        `json:"detections,omitempty"`
}

// ComparisonRecord pairs the two verdicts computed from one submitted image.
type ComparisonRecord struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	ImageWidth  int       `json:"image_width"`
	ImageHeight int       `json:"image_height"`
	Classifier  Verdict   `json:"classifier"`
	Detector    Verdict   `json:"detector"`
}

// Agree reports whether both pathways reached the same label.
func (r *ComparisonRecord) Agree() bool {
	return r.Classifier.Label == r.Detector.Label
}
