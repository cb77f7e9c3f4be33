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

package compare

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/rustlens/rustlens/internal/engine"
	"github.com/rustlens/rustlens/internal/manager"
	"github.com/rustlens/rustlens/internal/types"
	"github.com/rustlens/rustlens/internal/utils/bcode"
	"github.com/stretchr/testify/require"
)

type stubAdapter struct {
	kind    types.ModelKind
	verdict types.Verdict
	err     error
	calls   atomic.Int32

	mu     sync.Mutex
	images []image.Image
}

func (a *stubAdapter) Kind() types.ModelKind { return a.kind }

func (a *stubAdapter) Run(h *manager.Handle, img image.Image) (types.Verdict, error) {
	a.calls.Add(1)
	a.mu.Lock()
	a.images = append(a.images, img)
	a.mu.Unlock()
	if a.err != nil {
		return types.Verdict{}, a.err
	}
	v := a.verdict
	v.Model = h.Descriptor().ID
	return v, nil
}

type stubSource map[string]*manager.Handle

func (s stubSource) Get(_ context.Context, desc types.ModelDescriptor) (*manager.Handle, error) {
	return s[desc.ID], nil
}

type resolverFunc func(desc types.ModelDescriptor) (string, error)

func (f resolverFunc) Resolve(_ context.Context, desc types.ModelDescriptor) (string, error) {
	return f(desc)
}

type nopSession struct{}

func (nopSession) Run(in *types.Tensor) (*types.Tensor, error) { return in, nil }
func (nopSession) Close() error                                { return nil }

var (
	cnnDesc  = types.ModelDescriptor{ID: "cnn", Kind: types.ModelKindClassifier}
	yoloDesc = types.ModelDescriptor{ID: "yolo", Kind: types.ModelKindDetector}
)

func fixture(t *testing.T, source stubSource) (*Comparator, *stubAdapter, *stubAdapter) {
	t.Helper()
	cls := &stubAdapter{kind: types.ModelKindClassifier, verdict: types.Verdict{
		Kind: types.ModelKindClassifier, Label: "diseased", Confidence: 0.8,
	}}
	det := &stubAdapter{kind: types.ModelKindDetector, verdict: types.Verdict{
		Kind: types.ModelKindDetector, Label: "diseased", Confidence: 0.91,
		Detections: []types.Detection{{Box: types.Box{X1: 1, Y1: 1, X2: 5, Y2: 5}, Confidence: 0.91}},
	}}
	c, err := NewComparator(source, Pathway{Descriptor: cnnDesc, Adapter: cls}, Pathway{Descriptor: yoloDesc, Adapter: det})
	require.NoError(t, err)
	return c, cls, det
}

func ready() stubSource {
	return stubSource{
		"cnn":  manager.NewReadyHandle(cnnDesc, nopSession{}),
		"yolo": manager.NewReadyHandle(yoloDesc, nopSession{}),
	}
}

func leaf() image.Image {
	return imaging.New(64, 48, color.NRGBA{G: 200, A: 255})
}

func TestCompare_PairsVerdicts(t *testing.T) {
	c, cls, det := fixture(t, ready())
	img := leaf()

	rec, err := c.Compare(context.Background(), img)
	require.NoError(t, err)
	require.NotEmpty(t, rec.ID)
	require.Equal(t, 64, rec.ImageWidth)
	require.Equal(t, 48, rec.ImageHeight)
	require.Equal(t, "cnn", rec.Classifier.Model)
	require.Equal(t, "yolo", rec.Detector.Model)
	require.True(t, rec.Agree())

	// both pathways saw the very same image value
	require.Same(t, img.(*image.NRGBA), cls.images[0].(*image.NRGBA))
	require.Same(t, img.(*image.NRGBA), det.images[0].(*image.NRGBA))
}

func TestCompare_Deterministic(t *testing.T) {
	c, _, _ := fixture(t, ready())
	img := leaf()

	a, err := c.Compare(context.Background(), img)
	require.NoError(t, err)
	b, err := c.Compare(context.Background(), img)
	require.NoError(t, err)

	require.Equal(t, a.Classifier.Label, b.Classifier.Label)
	require.Equal(t, a.Classifier.Confidence, b.Classifier.Confidence)
	require.Equal(t, a.Detector.Label, b.Detector.Label)
	require.Equal(t, a.Detector.Confidence, b.Detector.Confidence)
	require.NotEqual(t, a.ID, b.ID)
}

// rendezvousSource blocks each Get until both descriptors have been requested.
type rendezvousSource struct {
	handles stubSource
	wg      sync.WaitGroup
}

func (s *rendezvousSource) Get(ctx context.Context, desc types.ModelDescriptor) (*manager.Handle, error) {
	s.wg.Done()
	waited := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(waited)
	}()
	select {
	case <-waited:
		return s.handles[desc.ID], nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestCompare_AcquiresHandlesConcurrently(t *testing.T) {
	source := &rendezvousSource{handles: ready()}
	source.wg.Add(2)
	cls := &stubAdapter{kind: types.ModelKindClassifier}
	det := &stubAdapter{kind: types.ModelKindDetector}
	c, err := NewComparator(source, Pathway{Descriptor: cnnDesc, Adapter: cls}, Pathway{Descriptor: yoloDesc, Adapter: det})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err = c.Compare(ctx, leaf())
	require.NoError(t, err)
	require.EqualValues(t, 1, cls.calls.Load())
	require.EqualValues(t, 1, det.calls.Load())
}

func TestCompare_FailedDetectorFailsFast(t *testing.T) {
	source := ready()
	source["yolo"] = manager.NewFailedHandle(yoloDesc, bcode.NewModelError(bcode.ErrArtifactMissing, "yolo", nil))
	c, cls, det := fixture(t, source)

	rec, err := c.Compare(context.Background(), leaf())
	require.Nil(t, rec)
	require.ErrorIs(t, err, bcode.ErrModelUnavailable)
	require.ErrorIs(t, err, bcode.ErrArtifactMissing)
	require.Equal(t, "detector", bcode.ModelOf(err))
	require.Zero(t, cls.calls.Load())
	require.Zero(t, det.calls.Load())
}

func TestCompare_FailedClassifierNamesClassifier(t *testing.T) {
	source := ready()
	source["cnn"] = manager.NewFailedHandle(cnnDesc, errors.New("bad graph"))
	c, _, _ := fixture(t, source)

	_, err := c.Compare(context.Background(), leaf())
	require.ErrorIs(t, err, bcode.ErrModelUnavailable)
	require.Equal(t, "classifier", bcode.ModelOf(err))
}

func TestCompare_InferenceErrorPropagates(t *testing.T) {
	c, cls, _ := fixture(t, ready())
	cls.err = bcode.NewModelError(bcode.ErrInference, "classifier", errors.New("shape"))

	rec, err := c.Compare(context.Background(), leaf())
	require.Nil(t, rec)
	require.ErrorIs(t, err, bcode.ErrInference)
}

func TestCompare_RejectsEmptyImage(t *testing.T) {
	c, _, _ := fixture(t, ready())
	_, err := c.Compare(context.Background(), image.NewNRGBA(image.Rect(0, 0, 0, 0)))
	require.ErrorIs(t, err, bcode.ErrImageBadRequest)
}

func TestCompare_WithCache(t *testing.T) {
	loads := atomic.Int32{}
	cache := manager.NewCache(resolverFunc(func(desc types.ModelDescriptor) (string, error) {
		return desc.ID + ".onnx", nil
	}), func(desc types.ModelDescriptor, path string) (engine.Session, error) {
		loads.Add(1)
		return nopSession{}, nil
	})
	c, _, _ := fixture(t, nil)
	c.source = cache

	for i := 0; i < 3; i++ {
		_, err := c.Compare(context.Background(), leaf())
		require.NoError(t, err)
	}
	require.Equal(t, int32(2), loads.Load())
}

func TestNewComparator_KindMismatch(t *testing.T) {
	cls := &stubAdapter{kind: types.ModelKindDetector}
	det := &stubAdapter{kind: types.ModelKindDetector}
	_, err := NewComparator(ready(), Pathway{Descriptor: cnnDesc, Adapter: cls}, Pathway{Descriptor: yoloDesc, Adapter: det})
	require.Error(t, err)
}
