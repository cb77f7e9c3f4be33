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
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
	"github.com/rustlens/rustlens/internal/logger"
	"github.com/rustlens/rustlens/internal/manager"
	"github.com/rustlens/rustlens/internal/types"
	"github.com/rustlens/rustlens/internal/vision"
)

// ClassifierOptions configures the whole-image classifier path. The zero Filter resamples
// with nearest neighbour.
type ClassifierOptions struct {
	Labels  []string
	Width   int
	Height  int
	Filter  imaging.ResampleFilter
	Softmax bool
}

// ClassifierAdapter maps a probability vector over a fixed label sequence to a Verdict.
type ClassifierAdapter struct {
	opts ClassifierOptions
}

func NewClassifierAdapter(opts ClassifierOptions) (*ClassifierAdapter, error) {
	if len(opts.Labels) != 2 {
		return nil, fmt.Errorf("classifier needs exactly two labels, got %d", len(opts.Labels))
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("invalid classifier resolution %dx%d", opts.Width, opts.Height)
	}
	opts.Labels = append([]string(nil), opts.Labels...)
	return &ClassifierAdapter{opts: opts}, nil
}

func (a *ClassifierAdapter) Kind() types.ModelKind {
	return types.ModelKindClassifier
}

func (a *ClassifierAdapter) Run(h *manager.Handle, img image.Image) (types.Verdict, error) {
	kind := a.Kind()
	session, release, err := borrow(kind, h)
	if err != nil {
		return types.Verdict{}, err
	}
	defer release()

	input, err := vision.PrepareForClassifier(img, a.opts.Width, a.opts.Height, a.opts.Filter)
	if err != nil {
		return types.Verdict{}, inferenceError(kind, err)
	}

	out, err := session.Run(input)
	if err != nil {
		return types.Verdict{}, inferenceError(kind, err)
	}
	if out == nil || len(out.Data) != len(a.opts.Labels) {
		n := 0
		if out != nil {
			n = len(out.Data)
		}
		return types.Verdict{}, inferenceError(kind,
			fmt.Errorf("output has %d values for %d labels", n, len(a.opts.Labels)))
	}

	probs, err := a.probabilities(out.Data)
	if err != nil {
		return types.Verdict{}, inferenceError(kind, err)
	}

	best := 0
	scores := make(map[string]float64, len(probs))
	for i, p := range probs {
		scores[a.opts.Labels[i]] = p
		if p > probs[best] {
			best = i
		}
	}

	v := types.Verdict{
		Model:      h.Descriptor().ID,
		Kind:       kind,
		Label:      a.opts.Labels[best],
		Confidence: probs[best],
		Scores:     scores,
	}
	logger.LogicLogger.Debug("[Classifier] verdict", "model", v.Model, "label", v.Label, "confidence", v.Confidence)
	return v, nil
}

func (a *ClassifierAdapter) probabilities(raw []float32) ([]float64, error) {
	probs := make([]float64, len(raw))
	for i, v := range raw {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, errors.New("output contains non-finite values")
		}
		probs[i] = f
	}

	if a.opts.Softmax {
		return softmax(probs), nil
	}
	for _, p := range probs {
		if p < 0 || p > 1 {
			return nil, fmt.Errorf("output value %v outside [0,1]; enable softmax for logit outputs", p)
		}
	}
	return probs, nil
}

func softmax(logits []float64) []float64 {
	m := logits[0]
	for _, v := range logits[1:] {
		m = math.Max(m, v)
	}
	sum := 0.0
	out := make([]float64, len(logits))
	for i, v := range logits {
		out[i] = math.Exp(v - m)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
