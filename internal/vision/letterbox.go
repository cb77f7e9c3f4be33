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
	"math"

	"github.com/disintegration/imaging"
	"github.com/rustlens/rustlens/internal/types"
)

var padColor = color.NRGBA{R: 114, G: 114, B: 114, A: 255}

// LetterboxInfo records how an image was fitted into the square detector input so boxes
// can be mapped back to source pixels.
type LetterboxInfo struct {
	Size      int
	Scale     float64
	PadX      int
	PadY      int
	SrcWidth  int
	SrcHeight int
}

// Letterbox scales img to fit a size x size square preserving aspect ratio, pads with gray
// and returns an NCHW tensor of shape (1, 3, size, size) scaled into [0,1].
func Letterbox(img image.Image, size int) (*types.Tensor, LetterboxInfo, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, LetterboxInfo{}, ErrEmptyImage
	}

	b := img.Bounds()
	srcW, srcH := b.Dx(), b.Dy()
	scale := math.Min(float64(size)/float64(srcW), float64(size)/float64(srcH))
	newW := max(1, int(math.Round(float64(srcW)*scale)))
	newH := max(1, int(math.Round(float64(srcH)*scale)))

	info := LetterboxInfo{
		Size:      size,
		Scale:     scale,
		PadX:      (size - newW) / 2,
		PadY:      (size - newH) / 2,
		SrcWidth:  srcW,
		SrcHeight: srcH,
	}

	resized := imaging.Resize(img, newW, newH, imaging.Linear)
	canvas := imaging.New(size, size, padColor)
	canvas = imaging.Paste(canvas, resized, image.Pt(info.PadX, info.PadY))

	plane := size * size
	t := types.NewTensor(1, 3, int64(size), int64(size))
	for y := 0; y < size; y++ {
		row := canvas.Pix[y*canvas.Stride : y*canvas.Stride+size*4]
		for x := 0; x < size; x++ {
			p := row[x*4 : x*4+3]
			idx := y*size + x
			t.Data[idx] = float32(p[0]) / 255
			t.Data[plane+idx] = float32(p[1]) / 255
			t.Data[2*plane+idx] = float32(p[2]) / 255
		}
	}
	return t, info, nil
}

// Unscale maps a box in letterboxed input coordinates back to source pixels, clipped to
// the source image.
func (l LetterboxInfo) Unscale(b types.Box) types.Box {
	if l.Scale <= 0 {
		return b
	}
	w, h := float64(l.SrcWidth), float64(l.SrcHeight)
	return types.Box{
		X1: clamp((b.X1-float64(l.PadX))/l.Scale, 0, w),
		Y1: clamp((b.Y1-float64(l.PadY))/l.Scale, 0, h),
		X2: clamp((b.X2-float64(l.PadX))/l.Scale, 0, w),
		Y2: clamp((b.Y2-float64(l.PadY))/l.Scale, 0, h),
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
