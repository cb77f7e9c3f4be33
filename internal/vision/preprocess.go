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
	"errors"
	"fmt"
	"image"
	"io"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/rustlens/rustlens/internal/types"
)

// ErrEmptyImage is returned for rasters with no pixels.
var ErrEmptyImage = errors.New("empty image")

// Filter maps a configured resampling name to an imaging filter. Unknown names fall back to
// Catmull-Rom.
func Filter(name string) imaging.ResampleFilter {
	switch strings.ToLower(name) {
	case "nearest":
		return imaging.NearestNeighbor
	case "linear":
		return imaging.Linear
	case "lanczos":
		return imaging.Lanczos
	default:
		return imaging.CatmullRom
	}
}

// Decode reads a JPEG, PNG, GIF, BMP or TIFF image and applies its EXIF orientation.
func Decode(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if img.Bounds().Empty() {
		return nil, ErrEmptyImage
	}
	return img, nil
}

// PrepareForClassifier stretches img to width x height and returns an NHWC tensor of shape
// (1, height, width, 3) with RGB values scaled into [0,1]. img is not modified.
func PrepareForClassifier(img image.Image, width, height int, filter imaging.ResampleFilter) (*types.Tensor, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, ErrEmptyImage
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid classifier resolution %dx%d", width, height)
	}

	resized := imaging.Resize(img, width, height, filter)

	t := types.NewTensor(1, int64(height), int64(width), 3)
	i := 0
	for y := 0; y < height; y++ {
		row := resized.Pix[y*resized.Stride : y*resized.Stride+width*4]
		for x := 0; x < width; x++ {
			p := row[x*4 : x*4+3]
			t.Data[i] = float32(p[0]) / 255
			t.Data[i+1] = float32(p[1]) / 255
			t.Data[i+2] = float32(p[2]) / 255
			i += 3
		}
	}
	return t, nil
}
