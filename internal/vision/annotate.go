//go:build !gocv
// +build !gocv

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
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/rustlens/rustlens/internal/types"
)

// Annotate returns a copy of img with every detection outlined. img is not modified.
func Annotate(img image.Image, dets []types.Detection) (image.Image, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, ErrEmptyImage
	}
	out := imaging.Clone(img)
	thickness := max(2, min(out.Bounds().Dx(), out.Bounds().Dy())/200)
	for _, d := range dets {
		drawRect(out, d.Box, boxColor, thickness)
	}
	return out, nil
}

func drawRect(img *image.NRGBA, b types.Box, c color.NRGBA, thickness int) {
	bounds := img.Bounds()
	r := image.Rect(int(b.X1), int(b.Y1), int(b.X2), int(b.Y2)).Intersect(bounds)
	if r.Empty() {
		return
	}
	for t := 0; t < thickness; t++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetNRGBA(x, r.Min.Y+t, c)
			img.SetNRGBA(x, r.Max.Y-1-t, c)
		}
		for y := r.Min.Y; y < r.Max.Y; y++ {
			img.SetNRGBA(r.Min.X+t, y, c)
			img.SetNRGBA(r.Max.X-1-t, y, c)
		}
	}
}
