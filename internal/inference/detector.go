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

package inference

import (
	"fmt"
	"image"

	"github.com/rustlens/rustlens/internal/logger"
	"github.com/rustlens/rustlens/internal/manager"
	"github.com/rustlens/rustlens/internal/types"
	"github.com/rustlens/rustlens/internal/vision"
)

// DetectorOptions configures the bounding-box detector path. HealthyConfidence is the
// confidence reported when nothing is detected; the model has no native score for that case.
type DetectorOptions struct {
	InputSize         int
	Decode            vision.DecodeOptions
	PositiveLabel     string
	NegativeLabel     string
	HealthyConfidence float64
}

// DetectorAdapter labels an image positive when the detector finds at least one box.
type DetectorAdapter struct {
	opts DetectorOptions
}

func NewDetectorAdapter(opts DetectorOptions) (*DetectorAdapter, error) {
	if opts.InputSize <= 0 {
		return nil, fmt.Errorf("invalid detector input size %d", opts.InputSize)
	}
	if opts.Decode.NumClasses <= 0 {
		return nil, fmt.Errorf("invalid detector class count %d", opts.Decode.NumClasses)
	}
	if opts.PositiveLabel == "" || opts.NegativeLabel == "" || opts.PositiveLabel == opts.NegativeLabel {
		return nil, fmt.Errorf("detector labels must be distinct and non-empty")
	}
	if opts.HealthyConfidence < 0 || opts.HealthyConfidence > 1 {
		return nil, fmt.Errorf("healthy confidence %v outside [0,1]", opts.HealthyConfidence)
	}
	return &DetectorAdapter{opts: opts}, nil
}

func (a *DetectorAdapter) Kind() types.ModelKind {
	return types.ModelKindDetector
}

func (a *DetectorAdapter) Run(h *manager.Handle, img image.Image) (types.Verdict, error) {
	kind := a.Kind()
	session, release, err := borrow(kind, h)
	if err != nil {
		return types.Verdict{}, err
	}
	defer release()

	input, lb, err := vision.Letterbox(img, a.opts.InputSize)
	if err != nil {
		return types.Verdict{}, inferenceError(kind, err)
	}

	out, err := session.Run(input)
	if err != nil {
		return types.Verdict{}, inferenceError(kind, err)
	}

	dets, err := vision.DecodeYOLO(out, a.opts.Decode, lb)
	if err != nil {
		return types.Verdict{}, inferenceError(kind, err)
	}

	v := a.Aggregate(dets)
	v.Model = h.Descriptor().ID
	logger.LogicLogger.Debug("[Detector] verdict", "model", v.Model, "label", v.Label,
		"confidence", v.Confidence, "detections", len(v.Detections))
	return v, nil
}

// Aggregate collapses detections into a Verdict: the positive label with the highest
// detection confidence when any exist, otherwise the negative label with HealthyConfidence.
// Detections are copied and sorted by descending confidence.
func (a *DetectorAdapter) Aggregate(dets []types.Detection) types.Verdict {
	sorted := append([]types.Detection{}, dets...)
	vision.SortDetections(sorted)

	v := types.Verdict{
		Kind:       a.Kind(),
		Label:      a.opts.NegativeLabel,
		Confidence: a.opts.HealthyConfidence,
		Detections: sorted,
	}
	if len(sorted) > 0 {
		v.Label = a.opts.PositiveLabel
		v.Confidence = sorted[0].Confidence
	}
	return v
}
