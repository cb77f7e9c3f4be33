//go:build gocv
// +build gocv

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
	"image"
	"image/color"

	"github.com/rustlens/rustlens/internal/types"
	"gocv.io/x/gocv"
)

// Annotate returns a copy of img with every detection outlined and labelled with its score.
func Annotate(img image.Image, dets []types.Detection) (image.Image, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, ErrEmptyImage
	}

	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("convert image: %w", err)
	}
	defer mat.Close()

	c := color.RGBA(boxColor)
	origin := img.Bounds().Min
	for _, d := range dets {
		rect := image.Rect(int(d.Box.X1), int(d.Box.Y1), int(d.Box.X2), int(d.Box.Y2)).Sub(origin)
		gocv.Rectangle(&mat, rect, c, 2)
		label := fmt.Sprintf("%.2f", d.Confidence)
		gocv.PutText(&mat, label, image.Pt(rect.Min.X, max(rect.Min.Y-6, 12)),
			gocv.FontHersheySimplex, 0.6, c, 2)
	}

	return mat.ToImage()
}
