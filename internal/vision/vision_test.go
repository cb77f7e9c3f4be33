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
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/rustlens/rustlens/internal/types"
	"github.com/stretchr/testify/require"
)

func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: 200, A: 255})
		}
	}
	return img
}

func TestPrepareForClassifier(t *testing.T) {
	cases := []struct {
		name          string
		srcW, srcH    int
		width, height int
	}{
		{"downscale square", 640, 480, 224, 224},
		{"upscale", 50, 30, 224, 224},
		{"non square target", 300, 300, 128, 96},
		{"single pixel", 1, 1, 224, 224},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			src := gradient(tc.srcW, tc.srcH)
			before := append([]uint8(nil), src.Pix...)

			tensor, err := PrepareForClassifier(src, tc.width, tc.height, Filter("catmullrom"))
			require.NoError(t, err)
			require.Equal(t, []int64{1, int64(tc.height), int64(tc.width), 3}, tensor.Shape)
			require.Len(t, tensor.Data, tc.height*tc.width*3)
			for _, v := range tensor.Data {
				require.GreaterOrEqual(t, v, float32(0))
				require.LessOrEqual(t, v, float32(1))
			}
			require.Equal(t, before, src.Pix)
		})
	}
}

func TestPrepareForClassifier_Deterministic(t *testing.T) {
	src := gradient(320, 200)
	a, err := PrepareForClassifier(src, 224, 224, Filter(""))
	require.NoError(t, err)
	b, err := PrepareForClassifier(src, 224, 224, Filter(""))
	require.NoError(t, err)
	require.Equal(t, a.Data, b.Data)
}

func TestPrepareForClassifier_Invalid(t *testing.T) {
	_, err := PrepareForClassifier(image.NewNRGBA(image.Rect(0, 0, 0, 0)), 224, 224, imaging.Linear)
	require.ErrorIs(t, err, ErrEmptyImage)

	_, err = PrepareForClassifier(gradient(10, 10), 0, 224, imaging.Linear)
	require.Error(t, err)
}

func TestLetterbox(t *testing.T) {
	src := gradient(640, 320)
	tensor, info, err := Letterbox(src, 640)
	require.NoError(t, err)
	require.Equal(t, []int64{1, 3, 640, 640}, tensor.Shape)
	require.InDelta(t, 1.0, info.Scale, 1e-9)
	require.Equal(t, 0, info.PadX)
	require.Equal(t, 160, info.PadY)

	// top-left pixel lies in the padding band
	require.InDelta(t, 114.0/255, tensor.Data[0], 1e-6)

	box := info.Unscale(types.Box{X1: 10, Y1: 170, X2: 110, Y2: 270})
	require.InDelta(t, 10, box.X1, 1e-9)
	require.InDelta(t, 10, box.Y1, 1e-9)
	require.InDelta(t, 110, box.Y2, 1e-9)

	clipped := info.Unscale(types.Box{X1: -50, Y1: 0, X2: 700, Y2: 640})
	require.Equal(t, types.Box{X1: 0, Y1: 0, X2: 640, Y2: 320}, clipped)
}

// yoloOutput builds a (1, 4+nc, n) tensor from per-anchor columns.
func yoloOutput(nc int, cols ...[]float32) *types.Tensor {
	rows := 4 + nc
	t := types.NewTensor(1, int64(rows), int64(len(cols)))
	for i, col := range cols {
		for r := 0; r < rows; r++ {
			t.Data[r*len(cols)+i] = col[r]
		}
	}
	return t
}

func TestDecodeYOLO(t *testing.T) {
	lb := LetterboxInfo{Size: 640, Scale: 1, SrcWidth: 640, SrcHeight: 640}
	opts := DecodeOptions{NumClasses: 1, ConfidenceThreshold: 0.25, IoUThreshold: 0.7, MaxDetections: 300}

	out := yoloOutput(1,
		[]float32{100, 100, 40, 40, 0.40},
		[]float32{300, 300, 60, 60, 0.91},
		[]float32{102, 101, 40, 40, 0.35}, // overlaps the first, suppressed
		[]float32{500, 500, 20, 20, 0.10}, // below threshold
	)

	dets, err := DecodeYOLO(out, opts, lb)
	require.NoError(t, err)
	require.Len(t, dets, 2)
	require.InDelta(t, 0.91, dets[0].Confidence, 1e-6)
	require.InDelta(t, 0.40, dets[1].Confidence, 1e-6)
	require.InDelta(t, 270, dets[0].Box.X1, 1e-4)
	require.InDelta(t, 330, dets[0].Box.Y2, 1e-4)
}

func TestDecodeYOLO_MaxDetections(t *testing.T) {
	lb := LetterboxInfo{Size: 640, Scale: 1, SrcWidth: 640, SrcHeight: 640}
	out := yoloOutput(1,
		[]float32{50, 50, 20, 20, 0.5},
		[]float32{150, 150, 20, 20, 0.6},
		[]float32{250, 250, 20, 20, 0.7},
	)
	dets, err := DecodeYOLO(out, DecodeOptions{NumClasses: 1, ConfidenceThreshold: 0.25, IoUThreshold: 0.7, MaxDetections: 2}, lb)
	require.NoError(t, err)
	require.Len(t, dets, 2)
	require.InDelta(t, 0.7, dets[0].Confidence, 1e-6)
}

func TestDecodeYOLO_ShapeMismatch(t *testing.T) {
	out := types.NewTensor(1, 6, 10)
	_, err := DecodeYOLO(out, DecodeOptions{NumClasses: 1}, LetterboxInfo{})
	require.Error(t, err)

	_, err = DecodeYOLO(&types.Tensor{Shape: []int64{1, 5, 10}, Data: make([]float32, 3)}, DecodeOptions{NumClasses: 1}, LetterboxInfo{})
	require.Error(t, err)
}

func TestNMS_ClassWise(t *testing.T) {
	box := types.Box{X1: 0, Y1: 0, X2: 10, Y2: 10}
	dets := []types.Detection{
		{Box: box, Confidence: 0.9, ClassID: 0},
		{Box: box, Confidence: 0.8, ClassID: 1},
		{Box: box, Confidence: 0.7, ClassID: 0},
	}
	kept := NMS(dets, 0.5, 0)
	require.Len(t, kept, 2)
	require.Equal(t, 0, kept[0].ClassID)
	require.Equal(t, 1, kept[1].ClassID)
}

func TestSortDetections_TiesByPosition(t *testing.T) {
	dets := []types.Detection{
		{Box: types.Box{X1: 50, Y1: 10}, Confidence: 0.5},
		{Box: types.Box{X1: 5, Y1: 10}, Confidence: 0.5},
		{Box: types.Box{X1: 0, Y1: 0}, Confidence: 0.9},
	}
	SortDetections(dets)
	require.InDelta(t, 0.9, dets[0].Confidence, 1e-9)
	require.InDelta(t, 5, dets[1].Box.X1, 1e-9)
	require.InDelta(t, 50, dets[2].Box.X1, 1e-9)
}

func TestAnnotateAndEncode(t *testing.T) {
	src := gradient(100, 80)
	before := append([]uint8(nil), src.Pix...)

	out, err := Annotate(src, []types.Detection{{Box: types.Box{X1: 10, Y1: 10, X2: 60, Y2: 50}, Confidence: 0.9}})
	require.NoError(t, err)
	require.Equal(t, src.Bounds().Size(), out.Bounds().Size())
	require.Equal(t, before, src.Pix)

	var buf bytes.Buffer
	require.NoError(t, EncodeJPEG(&buf, out, 90))

	decoded, err := Decode(&buf)
	require.NoError(t, err)
	require.Equal(t, 100, decoded.Bounds().Dx())
}
