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

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/rustlens/rustlens/internal/compare"
	"github.com/rustlens/rustlens/internal/datastore/sqlite"
	"github.com/rustlens/rustlens/internal/engine"
	"github.com/rustlens/rustlens/internal/inference"
	"github.com/rustlens/rustlens/internal/manager"
	"github.com/rustlens/rustlens/internal/server"
	"github.com/rustlens/rustlens/internal/types"
	"github.com/rustlens/rustlens/internal/utils/bcode"
	"github.com/rustlens/rustlens/internal/vision"
	"github.com/stretchr/testify/require"
)

type staticSession struct {
	out *types.Tensor
}

func (s staticSession) Run(*types.Tensor) (*types.Tensor, error) { return s.out, nil }
func (s staticSession) Close() error                             { return nil }

type pathResolver struct{}

func (pathResolver) Resolve(_ context.Context, desc types.ModelDescriptor) (string, error) {
	if desc.Source == "missing" {
		return "", bcode.NewModelError(bcode.ErrArtifactMissing, desc.ID, errors.New("no file"))
	}
	return desc.Path, nil
}

var (
	cnnDesc  = types.ModelDescriptor{ID: "cnn", Kind: types.ModelKindClassifier, Path: "/models/cnn.onnx"}
	yoloDesc = types.ModelDescriptor{ID: "yolo", Kind: types.ModelKindDetector, Path: "/models/yolo.onnx"}
)

func yoloOutput() *types.Tensor {
	// one anchor with a 0.91 box at the image centre, one below threshold
	t := types.NewTensor(1, 5, 2)
	copy(t.Data, []float32{
		320, 10,
		320, 10,
		100, 4,
		100, 4,
		0.91, 0.01,
	})
	return t
}

type testEnv struct {
	server *RustlensCoreServer
	cache  *manager.Cache
}

func newTestEnv(t *testing.T, detector types.ModelDescriptor, maxUpload int64) *testEnv {
	t.Helper()

	cache := manager.NewCache(pathResolver{}, func(desc types.ModelDescriptor, path string) (engine.Session, error) {
		if desc.Kind == types.ModelKindClassifier {
			return staticSession{out: &types.Tensor{Shape: []int64{1, 2}, Data: []float32{0.2, 0.8}}}, nil
		}
		return staticSession{out: yoloOutput()}, nil
	})
	t.Cleanup(func() { _ = cache.Close() })

	cls, err := inference.NewClassifierAdapter(inference.ClassifierOptions{
		Labels: []string{"healthy", "diseased"}, Width: 32, Height: 32, Filter: imaging.Linear,
	})
	require.NoError(t, err)
	det, err := inference.NewDetectorAdapter(inference.DetectorOptions{
		InputSize: 640,
		Decode: vision.DecodeOptions{
			NumClasses: 1, ConfidenceThreshold: 0.25, IoUThreshold: 0.7, MaxDetections: 300,
		},
		PositiveLabel: "diseased",
		NegativeLabel: "healthy",
	})
	require.NoError(t, err)

	comparator, err := compare.NewComparator(cache,
		compare.Pathway{Descriptor: cnnDesc, Adapter: cls},
		compare.Pathway{Descriptor: detector, Adapter: det})
	require.NoError(t, err)

	history, err := sqlite.New(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = history.Close() })

	descs := []types.ModelDescriptor{cnnDesc, detector}
	s := NewRustlensCoreServer(
		server.NewComparison(comparator, history),
		server.NewModel(cache, descs),
		server.NewHistory(history),
		server.NewHealth(cache, t.TempDir(), true),
		maxUpload,
	)
	return &testEnv{server: s, cache: cache}
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, imaging.New(w, h, color.NRGBA{R: 90, G: 140, B: 40, A: 255})))
	return buf.Bytes()
}

func multipartRequest(t *testing.T, path string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("image", "leaf.png")
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(s *RustlensCoreServer, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)
	return w
}

type recordEnvelope struct {
	BusinessCode int32                  `json:"business_code"`
	Data         types.ComparisonRecord `json:"data"`
}

type errorEnvelope struct {
	BusinessCode int32  `json:"business_code"`
	Message      string `json:"message"`
	Model        string `json:"model"`
}

func TestCompare_AndHistory(t *testing.T) {
	env := newTestEnv(t, yoloDesc, 1<<20)

	w := serve(env.server, multipartRequest(t, "/rustlens/v1/compare", pngBytes(t, 640, 640)))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp recordEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	rec := resp.Data
	require.Equal(t, "diseased", rec.Classifier.Label)
	require.InDelta(t, 0.8, rec.Classifier.Confidence, 1e-6)
	require.Equal(t, "diseased", rec.Detector.Label)
	require.InDelta(t, 0.91, rec.Detector.Confidence, 1e-6)
	require.Len(t, rec.Detector.Detections, 1)
	require.Equal(t, 640, rec.ImageWidth)

	w = serve(env.server, httptest.NewRequest(http.MethodGet, "/rustlens/v1/history", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Data []types.ComparisonRecord `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Data, 1)
	require.Equal(t, rec.ID, list.Data[0].ID)

	w = serve(env.server, httptest.NewRequest(http.MethodGet, "/rustlens/v1/history/"+rec.ID, nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = serve(env.server, httptest.NewRequest(http.MethodGet, "/rustlens/v1/history/"+uuid.NewString(), nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	w = serve(env.server, httptest.NewRequest(http.MethodGet, "/rustlens/v1/history/not-a-uuid", nil))
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(env.server, httptest.NewRequest(http.MethodGet, "/rustlens/v1/history?limit=9999", nil))
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCompare_RawBody(t *testing.T) {
	env := newTestEnv(t, yoloDesc, 1<<20)

	req := httptest.NewRequest(http.MethodPost, "/rustlens/v1/compare", bytes.NewReader(pngBytes(t, 200, 100)))
	req.Header.Set("Content-Type", "image/png")
	w := serve(env.server, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestCompare_BadImage(t *testing.T) {
	env := newTestEnv(t, yoloDesc, 1<<20)

	w := serve(env.server, multipartRequest(t, "/rustlens/v1/compare", []byte("definitely not an image")))
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp errorEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, bcode.ErrImageBadRequest.BusinessCode, resp.BusinessCode)
}

func TestCompare_TooLarge(t *testing.T) {
	env := newTestEnv(t, yoloDesc, 16)

	req := httptest.NewRequest(http.MethodPost, "/rustlens/v1/compare", bytes.NewReader(pngBytes(t, 300, 300)))
	req.Header.Set("Content-Type", "image/png")
	w := serve(env.server, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCompare_ModelUnavailable(t *testing.T) {
	broken := yoloDesc
	broken.Source = "missing"
	env := newTestEnv(t, broken, 1<<20)

	w := serve(env.server, multipartRequest(t, "/rustlens/v1/compare", pngBytes(t, 64, 64)))
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp errorEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, bcode.ErrModelUnavailable.BusinessCode, resp.BusinessCode)
	require.Equal(t, "detector", resp.Model)

	w = serve(env.server, httptest.NewRequest(http.MethodGet, "/rustlens/v1/models", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var models struct {
		Data []struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &models))
	require.Len(t, models.Data, 2)
	require.Equal(t, "ready", models.Data[0].Status)
	require.Equal(t, "failed", models.Data[1].Status)

	w = serve(env.server, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), server.HealthStatusDegraded)
}

func TestCompareAnnotated(t *testing.T) {
	env := newTestEnv(t, yoloDesc, 1<<20)

	w := serve(env.server, multipartRequest(t, "/rustlens/v1/compare/annotated", pngBytes(t, 640, 640)))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))
	require.NotEmpty(t, w.Header().Get(HeaderRecordID))
	require.Equal(t, "true", w.Header().Get(HeaderAgree))

	img, _, err := image.Decode(w.Body)
	require.NoError(t, err)
	require.Equal(t, 640, img.Bounds().Dx())
}

func TestModelsBeforeFirstUse(t *testing.T) {
	env := newTestEnv(t, yoloDesc, 1<<20)

	w := serve(env.server, httptest.NewRequest(http.MethodGet, "/rustlens/v1/models", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"status":"unloaded"`)
}

func TestMiscRoutes(t *testing.T) {
	env := newTestEnv(t, yoloDesc, 1<<20)

	require.Equal(t, http.StatusOK, serve(env.server, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
	require.Equal(t, http.StatusOK, serve(env.server, httptest.NewRequest(http.MethodGet, "/version", nil)).Code)
	require.Equal(t, http.StatusNotFound, serve(env.server, httptest.NewRequest(http.MethodGet, "/nope", nil)).Code)
}
