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

package vision

import (
	"fmt"
	"sort"

	"github.com/rustlens/rustlens/internal/types"
)

// DecodeOptions controls YOLO output decoding.
type DecodeOptions struct {
	NumClasses          int
	ConfidenceThreshold float64
	IoUThreshold        float64
	MaxDetections       int
}

// DecodeYOLO turns a YOLOv8 head output of shape (1, 4+nc, N) into detections in source
// image pixels. Each column holds cx, cy, w, h followed by nc class scores. Candidates
// scoring at or below the confidence threshold are dropped and the rest go through
// class-wise non-maximum suppression.
func DecodeYOLO(out *types.Tensor, opts DecodeOptions, lb LetterboxInfo) ([]types.Detection, error) {
	if out == nil {
		return nil, fmt.Errorf("nil detector output")
	}
	if len(out.Shape) != 3 || out.Shape[0] != 1 {
		return nil, fmt.Errorf("unexpected detector output shape %v", out.Shape)
	}
	rows, n := int(out.Shape[1]), int(out.Shape[2])
	if rows != 4+opts.NumClasses {
		return nil, fmt.Errorf("detector output has %d rows, want %d for %d classes", rows, 4+opts.NumClasses, opts.NumClasses)
	}
	if len(out.Data) != rows*n {
		return nil, fmt.Errorf("detector output has %d values, shape %v needs %d", len(out.Data), out.Shape, rows*n)
	}

	at := func(row, col int) float64 { return float64(out.Data[row*n+col]) }

	var candidates []types.Detection
	for i := 0; i < n; i++ {
		classID, score := 0, at(4, i)
		for c := 1; c < opts.NumClasses; c++ {
			if s := at(4+c, i); s > score {
				classID, score = c, s
			}
		}
		if score <= opts.ConfidenceThreshold {
			continue
		}
		if score > 1 {
			score = 1
		}

		cx, cy, w, h := at(0, i), at(1, i), at(2, i), at(3, i)
		box := lb.Unscale(types.Box{X1: cx - w/2, Y1: cy - h/2, X2: cx + w/2, Y2: cy + h/2})
		if box.Area() <= 0 {
			continue
		}
		candidates = append(candidates, types.Detection{Box: box, Confidence: score, ClassID: classID})
	}

	return NMS(candidates, opts.IoUThreshold, opts.MaxDetections), nil
}

// NMS keeps the highest scoring detections, dropping any that overlap a kept detection of
// the same class by more than iouThreshold. A positive limit caps the result size. The
// result is ordered by SortDetections.
func NMS(dets []types.Detection, iouThreshold float64, limit int) []types.Detection {
	sorted := append([]types.Detection(nil), dets...)
	SortDetections(sorted)

	kept := make([]types.Detection, 0, len(sorted))
	for _, d := range sorted {
		if limit > 0 && len(kept) >= limit {
			break
		}
		suppressed := false
		for _, k := range kept {
			if k.ClassID == d.ClassID && k.Box.IoU(d.Box) > iouThreshold {
				suppressed = true
				break
			}
		}
		if !suppressed {
			kept = append(kept, d)
		}
	}
	return kept
}

// SortDetections orders detections by descending confidence, breaking ties by position
// (top-left first) so equal inputs always produce equal output.
func SortDetections(dets []types.Detection) {
	sort.SliceStable(dets, func(i, j int) bool {
		a, b := dets[i], dets[j]
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		if a.Box.Y1 != b.Box.Y1 {
			return a.Box.Y1 < b.Box.Y1
		}
		if a.Box.X1 != b.Box.X1 {
			return a.Box.X1 < b.Box.X1
		}
		return a.ClassID < b.ClassID
	})
}
